package server

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/bookself/bookself/internal/store"
)

func quizQuestions(n int) []store.QuizQuestion {
	qs := make([]store.QuizQuestion, n)
	for i := range qs {
		qs[i] = store.QuizQuestion{
			Question:     fmt.Sprintf("Q%d", i+1),
			Options:      []string{"a", "b", "c", "d"},
			CorrectIndex: 0,
			Explanation:  "E",
		}
	}
	return qs
}

func TestQuizOverHTTP(t *testing.T) {
	srv, client := testServer(t)
	activate(t, srv)
	client.Quiz = quizQuestions(10)

	w := do(t, srv, "POST", "/api/pages/1/quiz", `{}`)
	if w.Code != http.StatusOK {
		t.Fatalf("start status = %d; body: %s", w.Code, w.Body.String())
	}
	if resp := decode(t, w); resp["active"] != true {
		t.Fatalf("snapshot = %v, want active", resp)
	}

	// Correct answer advances.
	w = do(t, srv, "POST", "/api/quiz/answer", `{"option":0}`)
	resp := decode(t, w)
	if resp["correct"] != true || resp["index"] != float64(1) {
		t.Errorf("answer = %v", resp)
	}

	// Option 0 is always correct in this stub, so a zero answer to each
	// remaining question finishes with a full score.
	for i := 0; i < 9; i++ {
		w = do(t, srv, "POST", "/api/quiz/answer", `{"option":0}`)
		resp = decode(t, w)
	}
	if resp["done"] != true || resp["score"] != float64(10) {
		t.Errorf("final answer = %v, want done with score 10", resp)
	}

	// The session returned to Inactive.
	w = do(t, srv, "GET", "/api/quiz", "")
	if resp := decode(t, w); resp["active"] != false {
		t.Errorf("snapshot after run = %v, want inactive", resp)
	}
}

func TestQuizCancelOverHTTP(t *testing.T) {
	srv, client := testServer(t)
	activate(t, srv)
	client.Quiz = quizQuestions(10)

	do(t, srv, "POST", "/api/pages/1/quiz", `{}`)
	w := do(t, srv, "POST", "/api/quiz/cancel", "")
	if resp := decode(t, w); resp["active"] != false {
		t.Errorf("snapshot after cancel = %v, want inactive", resp)
	}

	w = do(t, srv, "POST", "/api/quiz/answer", `{"option":0}`)
	if w.Code != http.StatusConflict {
		t.Errorf("answer after cancel status = %d, want %d", w.Code, http.StatusConflict)
	}
}

func TestQuizStartUnknownPage(t *testing.T) {
	srv, client := testServer(t)
	activate(t, srv)
	client.Quiz = quizQuestions(10)

	w := do(t, srv, "POST", "/api/pages/ghost/quiz", `{}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestQuizGenerationFailure(t *testing.T) {
	srv, client := testServer(t)
	activate(t, srv)
	client.Err = http.ErrHandlerTimeout

	w := do(t, srv, "POST", "/api/pages/1/quiz", `{}`)
	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadGateway)
	}
}

func roadmapItems(n int) []store.RoadmapItem {
	items := make([]store.RoadmapItem, n)
	for i := range items {
		items[i] = store.RoadmapItem{ID: fmt.Sprintf("s%d", i+1), Title: fmt.Sprintf("Step %d", i+1)}
	}
	return items
}

func TestRoadmapWizardOverHTTP(t *testing.T) {
	srv, client := testServer(t)
	activate(t, srv)
	client.Roadmap = roadmapItems(3)

	w := do(t, srv, "POST", "/api/roadmap/setup", `{"subject":"Quantum Computing","level":"beginner","goal":"Understand qubits"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("setup status = %d; body: %s", w.Code, w.Body.String())
	}

	w = do(t, srv, "POST", "/api/roadmap/generate", "")
	if w.Code != http.StatusOK {
		t.Fatalf("generate status = %d; body: %s", w.Code, w.Body.String())
	}
	if resp := decode(t, w); resp["state"] != "preview" {
		t.Fatalf("state = %v, want preview", resp["state"])
	}

	// Editing: rename one step, drop another, append a phase.
	do(t, srv, "POST", "/api/roadmap/edit", "")
	w = do(t, srv, "PUT", "/api/roadmap/items/0", `{"title":"Foundations"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update item status = %d; body: %s", w.Code, w.Body.String())
	}
	w = do(t, srv, "DELETE", "/api/roadmap/items/1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("remove item status = %d; body: %s", w.Code, w.Body.String())
	}
	w = do(t, srv, "POST", "/api/roadmap/items", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("add phase status = %d; body: %s", w.Code, w.Body.String())
	}

	w = do(t, srv, "POST", "/api/roadmap/save", "")
	if resp := decode(t, w); resp["state"] != "saved" {
		t.Fatalf("state after save = %v, want saved", resp["state"])
	}
	items := decode(t, w)["items"].([]any)
	if len(items) != 3 {
		t.Errorf("items = %d, want 3", len(items))
	}

	// Refine reopens the edit loop over the saved sequence.
	w = do(t, srv, "POST", "/api/roadmap/refine", "")
	if resp := decode(t, w); resp["state"] != "editing" {
		t.Errorf("state after refine = %v, want editing", resp["state"])
	}
}

func TestRoadmapSetupWithoutGoal(t *testing.T) {
	srv, client := testServer(t)
	activate(t, srv)
	client.Advice.SuggestedPrerequisites = []string{"Linear Algebra", "Complex Numbers"}

	// The goal can still be blank while the form is being filled in;
	// only Generate demands all three fields.
	w := do(t, srv, "POST", "/api/roadmap/setup", `{"subject":"Quantum Computing","level":"beginner","goal":""}`)
	if w.Code != http.StatusOK {
		t.Fatalf("setup status = %d; body: %s", w.Code, w.Body.String())
	}

	// The prerequisite hints fire off that partial setup.
	deadline := time.Now().Add(time.Second)
	for {
		w = do(t, srv, "GET", "/api/roadmap/hints", "")
		if hints, ok := decode(t, w)["hints"].([]any); ok && len(hints) == 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("hints never arrived")
		}
		time.Sleep(5 * time.Millisecond)
	}

	w = do(t, srv, "POST", "/api/roadmap/generate", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("generate without goal status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestRoadmapEditNamingMissingItem(t *testing.T) {
	srv, client := testServer(t)
	activate(t, srv)
	client.Roadmap = roadmapItems(3)

	do(t, srv, "POST", "/api/roadmap/setup", `{"subject":"Quantum Computing","level":"beginner","goal":"Understand qubits"}`)
	do(t, srv, "POST", "/api/roadmap/generate", "")
	do(t, srv, "POST", "/api/roadmap/edit", "")

	// An edit naming an item that doesn't exist is the caller's
	// mistake, not a collaborator failure.
	w := do(t, srv, "PUT", "/api/roadmap/items/99", `{"title":"Foundations"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("update missing item status = %d, want %d; body: %s", w.Code, http.StatusBadRequest, w.Body.String())
	}
	w = do(t, srv, "DELETE", "/api/roadmap/items/99", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("remove missing item status = %d, want %d; body: %s", w.Code, http.StatusBadRequest, w.Body.String())
	}

	// A valid edit still lands.
	w = do(t, srv, "PUT", "/api/roadmap/items/0", `{"title":"Foundations"}`)
	if w.Code != http.StatusOK {
		t.Errorf("update status = %d; body: %s", w.Code, w.Body.String())
	}
}

func TestRoadmapGenerateWithoutSetup(t *testing.T) {
	srv, _ := testServer(t)
	activate(t, srv)

	w := do(t, srv, "POST", "/api/roadmap/generate", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestRoadmapEditFromSetupRejected(t *testing.T) {
	srv, _ := testServer(t)
	activate(t, srv)

	w := do(t, srv, "POST", "/api/roadmap/edit", "")
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Code, http.StatusConflict)
	}
}

func TestRoadmapSetupInvalidLevel(t *testing.T) {
	srv, _ := testServer(t)
	activate(t, srv)

	w := do(t, srv, "POST", "/api/roadmap/setup", `{"subject":"X","level":"expert","goal":"y"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestReview(t *testing.T) {
	srv, _ := testServer(t)
	activate(t, srv)

	w := do(t, srv, "GET", "/api/review", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", w.Code, w.Body.String())
	}
	resp := decode(t, w)
	// Seed data: pages 2 and 3 are short of WellUnderstood, page 1 is
	// mastered; roadmaps r1 and r2 are both present.
	if got := len(resp["debt"].([]any)); got != 2 {
		t.Errorf("debt = %d, want 2", got)
	}
	if got := len(resp["mastered"].([]any)); got != 1 {
		t.Errorf("mastered = %d, want 1", got)
	}
	if got := len(resp["roadmaps"].([]any)); got != 2 {
		t.Errorf("roadmaps = %d, want 2", got)
	}
}

func TestAdvice(t *testing.T) {
	srv, client := testServer(t)
	activate(t, srv)
	client.Advice.Advice = "Start with thermodynamics."

	w := do(t, srv, "POST", "/api/advice", `{"goal":"Understand climate models"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", w.Code, w.Body.String())
	}
	if resp := decode(t, w); resp["advice"] != "Start with thermodynamics." {
		t.Errorf("advice = %v", resp["advice"])
	}
}

func TestCommunitySearch(t *testing.T) {
	srv, _ := testServer(t)
	activate(t, srv)

	w := do(t, srv, "GET", "/api/community?q=gastronomy", "")
	books := decode(t, w)["books"].([]any)
	if len(books) != 1 {
		t.Fatalf("books = %d, want 1", len(books))
	}

	w = do(t, srv, "GET", "/api/community", "")
	if books := decode(t, w)["books"].([]any); len(books) != 4 {
		t.Errorf("all public books = %d, want 4", len(books))
	}
}

func TestCloneAndLike(t *testing.T) {
	srv, _ := testServer(t)
	activate(t, srv)

	w := do(t, srv, "POST", "/api/community/p1/clone", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("clone status = %d; body: %s", w.Code, w.Body.String())
	}

	// p2 disallows cloning.
	w = do(t, srv, "POST", "/api/community/p2/clone", "")
	if w.Code != http.StatusConflict {
		t.Errorf("clone p2 status = %d, want %d", w.Code, http.StatusConflict)
	}

	w = do(t, srv, "POST", "/api/community/p1/like", "")
	if resp := decode(t, w); resp["liked"] != true {
		t.Errorf("liked = %v, want true", resp["liked"])
	}
	w = do(t, srv, "POST", "/api/community/p1/like", "")
	if resp := decode(t, w); resp["liked"] != false {
		t.Errorf("second like = %v, want false", resp["liked"])
	}
}

func TestBookLifecycleOverHTTP(t *testing.T) {
	srv, _ := testServer(t)
	activate(t, srv)

	w := do(t, srv, "POST", "/api/books", `{"title":"Astronomy","description":"Night sky notes"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d; body: %s", w.Code, w.Body.String())
	}
	bookID := decode(t, w)["id"].(string)

	w = do(t, srv, "POST", "/api/books/"+bookID+"/chapters", `{"title":"Stars"}`)
	chapterID := decode(t, w)["id"].(string)

	w = do(t, srv, "POST", "/api/books/"+bookID+"/chapters/"+chapterID+"/lessons", "")
	lessonID := decode(t, w)["id"].(string)

	// The reserved slot dangles until the page is saved.
	w = do(t, srv, "GET", "/api/books/"+bookID, "")
	chapters := decode(t, w)["chapters"].([]any)
	pages := chapters[0].(map[string]any)["pages"]
	if pages != nil {
		t.Fatalf("pages before save = %v, want none", pages)
	}

	do(t, srv, "PUT", "/api/pages/"+lessonID,
		`{"title":"Stellar Fusion","content":"Stars fuse hydrogen.","chapterId":"`+chapterID+`"}`)

	w = do(t, srv, "GET", "/api/books/"+bookID, "")
	chapters = decode(t, w)["chapters"].([]any)
	resolved := chapters[0].(map[string]any)["pages"].([]any)
	if len(resolved) != 1 {
		t.Fatalf("resolved pages = %d, want 1", len(resolved))
	}
}

func TestUpdateProfileOverHTTP(t *testing.T) {
	srv, _ := testServer(t)
	activate(t, srv)

	w := do(t, srv, "PUT", "/api/profile", `{"displayName":"Alicia","bio":"Learning in public."}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", w.Code, w.Body.String())
	}
	resp := decode(t, w)
	if resp["displayName"] != "Alicia" || resp["username"] != "zz9_new" {
		t.Errorf("profile = %v", resp)
	}
}
