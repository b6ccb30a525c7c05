package engine

import (
	"sort"
	"time"

	"github.com/bookself/bookself/internal/store"
)

// Forgetting-curve approximation: retention drops by floor(hours * rate)
// points since the last review, floored at 1 so a page is never fully
// forgotten. A zero LastUpdated means the page was never reviewed; it
// keeps full retention rather than decaying from the epoch.
const decayRatePerHour = 0.166

// Retention computes the retention value for a page last reviewed at
// lastUpdated, observed at now. Pure function of its inputs.
func Retention(lastUpdated, now time.Time) int {
	if lastUpdated.IsZero() || !now.After(lastUpdated) {
		return 100
	}
	hours := now.Sub(lastUpdated).Hours()
	decay := int(hours * decayRatePerHour)
	r := 100 - decay
	if r < 1 {
		r = 1
	}
	return r
}

// DecayPages recomputes retention for every page against now and
// returns a fresh mapping plus the number of pages whose retention
// changed. The input mapping is never modified; with zero elapsed time
// the returned mapping carries identical values (no compounding).
func DecayPages(pages map[string]store.KnowledgePage, now time.Time) (map[string]store.KnowledgePage, int) {
	next := make(map[string]store.KnowledgePage, len(pages))
	changed := 0
	for id, p := range pages {
		r := Retention(p.LastUpdated, now)
		if r != p.Retention {
			p.Retention = r
			changed++
		}
		next[id] = p
	}
	return next, changed
}

// ReviewBuckets splits pages into learning debt (anything short of
// WellUnderstood) and mastered foundations. Both lists are ordered by
// LastUpdated then id so repeated calls render identically.
func ReviewBuckets(pages map[string]store.KnowledgePage) (debt, mastered []store.KnowledgePage) {
	for _, p := range pages {
		if p.Understanding == store.WellUnderstood {
			mastered = append(mastered, p)
		} else {
			debt = append(debt, p)
		}
	}
	sortPages(debt)
	sortPages(mastered)
	return debt, mastered
}

// RoadmapProgress derives a roadmap's completion as the fraction of its
// referenced pages that are WellUnderstood. References with no page are
// skipped; a roadmap with no resolvable pages reports zero.
func RoadmapProgress(r store.Roadmap, pages map[string]store.KnowledgePage) float64 {
	total := 0
	done := 0
	for _, id := range r.PageIDs {
		p, ok := pages[id]
		if !ok {
			continue
		}
		total++
		if p.Understanding == store.WellUnderstood {
			done++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(done) / float64(total)
}

func sortPages(pages []store.KnowledgePage) {
	sort.Slice(pages, func(i, j int) bool {
		if !pages[i].LastUpdated.Equal(pages[j].LastUpdated) {
			return pages[i].LastUpdated.Before(pages[j].LastUpdated)
		}
		return pages[i].ID < pages[j].ID
	})
}
