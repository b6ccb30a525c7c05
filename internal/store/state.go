package store

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is the process-wide application state: every book, page,
// roadmap, and the current profile live here for the lifetime of the
// process. Nothing is persisted; a restart starts from the seed.
//
// All mutation is copy-on-write: writers build a replacement map or
// slice and swap it in under the lock, so a snapshot handed to a reader
// is never edited underneath it. Ordering between writers is simply
// last write wins.
type State struct {
	mu       sync.RWMutex
	books    []Book
	pages    map[string]KnowledgePage
	roadmaps []Roadmap
	liked    map[string]bool
	profile  *UserProfile
}

// New returns an empty State.
func New() *State {
	return &State{
		pages: make(map[string]KnowledgePage),
		liked: make(map[string]bool),
	}
}

// Pages returns the current page snapshot. Callers must treat it as
// read-only; the engine and save paths swap in fresh maps.
func (s *State) Pages() map[string]KnowledgePage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pages
}

// GetPage looks up a page by id.
func (s *State) GetPage(id string) (KnowledgePage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pages[id]
	return p, ok
}

// ReplacePages swaps in a whole new page mapping. The decay engine uses
// this after recomputing retention for every page.
func (s *State) ReplacePages(pages map[string]KnowledgePage) {
	s.mu.Lock()
	s.pages = pages
	s.mu.Unlock()
}

// SavePage records a page from the editor flow. Saving always resets
// retention to 100, understanding to WellUnderstood, and LastUpdated to
// now, regardless of prior values. When the page carries a chapter id,
// the page is linked into that chapter's lesson list if not already
// present.
func (s *State) SavePage(page KnowledgePage, now time.Time) error {
	if page.ID == "" {
		return fmt.Errorf("save page: missing id")
	}
	if page.Title == "" {
		return fmt.Errorf("save page: missing title")
	}

	page.Retention = 100
	page.Understanding = WellUnderstood
	page.LastUpdated = now
	if page.Prerequisites == nil {
		page.Prerequisites = []string{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]KnowledgePage, len(s.pages)+1)
	for id, p := range s.pages {
		next[id] = p
	}
	next[page.ID] = page
	s.pages = next

	if page.ChapterID != "" {
		s.linkLessonLocked(page.ChapterID, page.ID)
	}
	return nil
}

// AttachFeedback stores AI reflection analysis on an existing page.
// Unknown ids are ignored rather than treated as errors.
func (s *State) AttachFeedback(pageID string, fb Feedback) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pages[pageID]
	if !ok {
		return
	}
	p.Feedback = &fb

	next := make(map[string]KnowledgePage, len(s.pages))
	for id, page := range s.pages {
		next[id] = page
	}
	next[pageID] = p
	s.pages = next
}

// PageTitles returns every recorded page title, ordered by page id.
// This is the "known topics" input to the AI collaborator.
func (s *State) PageTitles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.pages))
	for id := range s.pages {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	titles := make([]string, 0, len(ids))
	for _, id := range ids {
		titles = append(titles, s.pages[id].Title)
	}
	return titles
}

// Books returns the current book snapshot.
func (s *State) Books() []Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.books
}

// BookByID looks up a book.
func (s *State) BookByID(id string) (Book, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.books {
		if b.ID == id {
			return b, true
		}
	}
	return Book{}, false
}

// CreateBook appends a fresh untitled, private, non-cloneable book and
// returns its id.
func (s *State) CreateBook(owner, ownerDisplayName, title, description string) string {
	book := Book{
		ID:               "b_" + uuid.NewString(),
		Owner:            owner,
		OwnerDisplayName: ownerDisplayName,
		Title:            title,
		Description:      description,
		Chapters:         []Chapter{},
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.books = appendBook(s.books, book)
	return book.ID
}

// AdoptShelf reassigns the seeded demo books to a freshly set-up
// profile so the first dashboard is never empty. Community books keep
// their owners.
func (s *State) AdoptShelf(owner, ownerDisplayName string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]Book, len(s.books))
	copy(next, s.books)
	for i := range next {
		if next[i].Owner == demoOwner {
			next[i].Owner = owner
			next[i].OwnerDisplayName = ownerDisplayName
		}
	}
	s.books = next
}

// BookSettings is the editable subset of a book.
type BookSettings struct {
	Title        string
	Description  string
	IsPublic     bool
	AllowCloning bool
}

// UpdateBookSettings rewrites a book's settings.
func (s *State) UpdateBookSettings(bookID string, set BookSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rewriteBookLocked(bookID, func(b Book) Book {
		b.Title = set.Title
		b.Description = set.Description
		b.IsPublic = set.IsPublic
		b.AllowCloning = set.AllowCloning
		return b
	})
}

// SetBookCover stores a generated cover image on a book.
func (s *State) SetBookCover(bookID, coverImage string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rewriteBookLocked(bookID, func(b Book) Book {
		b.CoverImage = coverImage
		return b
	})
}

// AddChapter appends a chapter to a book and returns the chapter id.
// Chapter ids are unique within a book by construction.
func (s *State) AddChapter(bookID, title string) (string, error) {
	chapterID := "c_" + uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.rewriteBookLocked(bookID, func(b Book) Book {
		chapters := make([]Chapter, len(b.Chapters), len(b.Chapters)+1)
		copy(chapters, b.Chapters)
		b.Chapters = append(chapters, Chapter{
			ID:        chapterID,
			Title:     title,
			BookID:    bookID,
			LessonIDs: []string{},
		})
		return b
	})
	if err != nil {
		return "", err
	}
	return chapterID, nil
}

// AddLesson reserves a fresh lesson id in a chapter and returns it. The
// page itself does not exist until the editor saves it; until then the
// reference dangles, which every consumer tolerates.
func (s *State) AddLesson(bookID, chapterID string) (string, error) {
	lessonID := "l_" + uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	err := s.rewriteBookLocked(bookID, func(b Book) Book {
		chapters := make([]Chapter, len(b.Chapters))
		copy(chapters, b.Chapters)
		for i, c := range chapters {
			if c.ID != chapterID {
				continue
			}
			found = true
			lessons := make([]string, len(c.LessonIDs), len(c.LessonIDs)+1)
			copy(lessons, c.LessonIDs)
			c.LessonIDs = append(lessons, lessonID)
			chapters[i] = c
		}
		b.Chapters = chapters
		return b
	})
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("chapter %s not found in book %s", chapterID, bookID)
	}
	return lessonID, nil
}

// CloneBook copies a public, cloneable book into the given owner's
// shelf and returns the new book id.
func (s *State) CloneBook(bookID, owner, ownerDisplayName string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var src *Book
	for i := range s.books {
		if s.books[i].ID == bookID {
			src = &s.books[i]
			break
		}
	}
	if src == nil {
		return "", fmt.Errorf("book %s not found", bookID)
	}
	if !src.AllowCloning {
		return "", fmt.Errorf("book %s does not allow cloning", bookID)
	}

	clone := *src
	clone.ID = "cloned_" + uuid.NewString()
	clone.Owner = owner
	clone.OwnerDisplayName = ownerDisplayName
	clone.IsPublic = false
	clone.Likes = 0
	clone.Chapters = make([]Chapter, len(src.Chapters))
	for i, c := range src.Chapters {
		lessons := make([]string, len(c.LessonIDs))
		copy(lessons, c.LessonIDs)
		c.LessonIDs = lessons
		c.BookID = clone.ID
		clone.Chapters[i] = c
	}

	s.books = appendBook(s.books, clone)
	return clone.ID, nil
}

// ToggleLike flips the liked flag for a book and adjusts its like
// count. Returns the new liked status.
func (s *State) ToggleLike(bookID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	liked := make(map[string]bool, len(s.liked)+1)
	for id, v := range s.liked {
		liked[id] = v
	}

	nowLiked := !liked[bookID]
	if nowLiked {
		liked[bookID] = true
	} else {
		delete(liked, bookID)
	}

	delta := 1
	if !nowLiked {
		delta = -1
	}
	if err := s.rewriteBookLocked(bookID, func(b Book) Book {
		b.Likes += delta
		if b.Likes < 0 {
			b.Likes = 0
		}
		return b
	}); err != nil {
		return false, err
	}

	s.liked = liked
	return nowLiked, nil
}

// LikedBooks returns the ids of liked books, sorted.
func (s *State) LikedBooks() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.liked))
	for id := range s.liked {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Roadmaps returns the named roadmap snapshot.
func (s *State) Roadmaps() []Roadmap {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roadmaps
}

// Profile returns the current profile, or nil for an anonymous session.
func (s *State) Profile() *UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// SetProfile replaces the current profile.
func (s *State) SetProfile(p UserProfile) {
	s.mu.Lock()
	s.profile = &p
	s.mu.Unlock()
}

// ClearProfile discards the profile entirely (sign-out).
func (s *State) ClearProfile() {
	s.mu.Lock()
	s.profile = nil
	s.mu.Unlock()
}

// ChapterPages resolves a chapter's lesson references against the
// global page mapping, silently skipping ids with no page.
func (s *State) ChapterPages(c Chapter) []KnowledgePage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var pages []KnowledgePage
	for _, id := range c.LessonIDs {
		if p, ok := s.pages[id]; ok {
			pages = append(pages, p)
		}
	}
	return pages
}

// linkLessonLocked appends a page id to a chapter's lesson list if not
// already present. Callers hold the write lock; an unknown chapter is
// left alone, which keeps saving a free-standing page valid.
func (s *State) linkLessonLocked(chapterID, pageID string) {
	for i := range s.books {
		for j := range s.books[i].Chapters {
			if s.books[i].Chapters[j].ID != chapterID {
				continue
			}
			for _, id := range s.books[i].Chapters[j].LessonIDs {
				if id == pageID {
					return
				}
			}
			bookID := s.books[i].ID
			s.rewriteBookLocked(bookID, func(b Book) Book {
				chapters := make([]Chapter, len(b.Chapters))
				copy(chapters, b.Chapters)
				lessons := make([]string, len(chapters[j].LessonIDs), len(chapters[j].LessonIDs)+1)
				copy(lessons, chapters[j].LessonIDs)
				chapters[j].LessonIDs = append(lessons, pageID)
				b.Chapters = chapters
				return b
			})
			return
		}
	}
}

// rewriteBookLocked replaces one book via copy-on-write. Callers hold
// the write lock.
func (s *State) rewriteBookLocked(bookID string, fn func(Book) Book) error {
	idx := -1
	for i := range s.books {
		if s.books[i].ID == bookID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("book %s not found", bookID)
	}

	next := make([]Book, len(s.books))
	copy(next, s.books)
	next[idx] = fn(next[idx])
	s.books = next
	return nil
}

func appendBook(books []Book, b Book) []Book {
	next := make([]Book, len(books), len(books)+1)
	copy(next, books)
	return append(next, b)
}
