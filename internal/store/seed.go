package store

import "time"

// Demo shelf shipped with a fresh session so the dashboard is never
// empty before the first save.
const (
	demoOwner       = "Alex Rivera"
	demoBookTitle   = "Explorations in Environmental Science"
	demoDescription = "A personal journey through ecology and earth systems."
)

// NewSeeded returns a State populated with the demo book, its pages,
// the starter roadmaps, and the public community shelf.
func NewSeeded() *State {
	s := New()

	s.books = []Book{
		{
			ID:          "b1",
			Owner:       demoOwner,
			Title:       demoBookTitle,
			Description: demoDescription,
			Chapters: []Chapter{
				{ID: "c1", Title: "Biology Basics", BookID: "b1", LessonIDs: []string{"1", "2"}},
				{ID: "c2", Title: "Ecology", BookID: "b1", LessonIDs: []string{"3"}},
			},
			IsPublic:     true,
			AllowCloning: true,
			Likes:        12,
		},
		{
			ID: "p1", Owner: "Sarah Chen", Title: "Molecular Gastronomy",
			Description: "The science behind high-end cooking techniques.",
			Chapters:    []Chapter{}, IsPublic: true, AllowCloning: true, Likes: 245,
		},
		{
			ID: "p2", Owner: "Marc Andreessen", Title: "Venture Capital 101",
			Description: "Personal notes on identifying market shifts.",
			Chapters:    []Chapter{}, IsPublic: true, AllowCloning: false, Likes: 1890,
		},
		{
			ID: "p3", Owner: "Elena Vu", Title: "Linguistics of SE Asia",
			Description: "A deep dive into tonal language evolution.",
			Chapters:    []Chapter{}, IsPublic: true, AllowCloning: true, Likes: 56,
		},
	}

	for _, p := range seedPages() {
		// Every seeded page starts fully retained; decay takes over
		// from LastUpdated once a session goes active.
		p.Retention = 100
		s.pages[p.ID] = p
	}

	s.roadmaps = []Roadmap{
		{
			ID: "r1", Name: "Ecology Fundamentals", ColorTheme: "stone",
			Description: "Core concepts of how organisms interact with their environment.",
			PageIDs:     []string{"1", "2", "3"},
		},
		{
			ID: "r2", Name: "Climate Systems", ColorTheme: "blue",
			Description: "Advanced study of Earth Atmosphere and Ocean interaction.",
			PageIDs:     []string{"3"},
		},
	}

	return s
}

func seedPages() []KnowledgePage {
	return []KnowledgePage{
		{
			ID:    "1",
			Title: "Cellular Respiration",
			Content: "The process by which cells break down glucose to produce ATP energy. " +
				"It involves glycolysis in the cytoplasm and the Krebs cycle in the mitochondria.",
			LastUpdated:   time.Date(2023, 10, 15, 0, 0, 0, 0, time.UTC),
			Understanding: WellUnderstood,
			Prerequisites: []string{},
			Feedback: &Feedback{
				Gaps:            []string{},
				Suggestions:     []string{"Consider adding more detail on the electron transport chain."},
				ReasoningScore:  85,
				ClarityFeedback: "Excellent conceptual grasp.",
			},
		},
		{
			ID:    "2",
			Title: "The Nitrogen Cycle",
			Content: "Nitrogen moves through the environment. It starts with fixation where " +
				"bacteria turn nitrogen gas into ammonia. Then plants take it up.",
			LastUpdated:   time.Date(2023, 11, 2, 0, 0, 0, 0, time.UTC),
			Understanding: Partial,
			Prerequisites: []string{},
			Feedback: &Feedback{
				Gaps:            []string{"Missed the denitrification phase.", "Role of lightning in fixation not mentioned."},
				Suggestions:     []string{"Review the role of atmospheric nitrogen vs soil-based nitrogen."},
				ReasoningScore:  60,
				ClarityFeedback: "Good start, but missing the cycle closure.",
			},
		},
		{
			ID:    "3",
			Title: "Carbon Sink Dynamics",
			Content: "Forests and oceans act as carbon sinks because they absorb more CO2 than " +
				"they release. This is crucial for global temperature regulation.",
			LastUpdated:   time.Date(2023, 11, 20, 0, 0, 0, 0, time.UTC),
			Understanding: NeedsReview,
			Prerequisites: []string{"2"},
			Feedback: &Feedback{
				Gaps:            []string{"Incomplete explanation of ocean acidification.", "Missed seasonal variations in carbon uptake."},
				Suggestions:     []string{"Check the connection between the nitrogen cycle and carbon sink efficiency."},
				ReasoningScore:  35,
				ClarityFeedback: "High level only; needs deeper technical explanation.",
			},
		},
	}
}
