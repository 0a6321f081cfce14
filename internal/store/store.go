// Package store holds the client-side snapshot of the task collection
// and derives the searched, paginated view from it.
package store

import (
	"strings"

	"go.uber.org/zap"

	"github.com/taskdeck/taskdeck/internal/task"
)

// Phase is the collection-load lifecycle state.
type Phase int

const (
	// PhaseEmpty is the initial state before any load has started.
	PhaseEmpty Phase = iota
	// PhaseLoading means a load is in flight.
	PhaseLoading
	// PhaseLoaded means the snapshot reflects a successful load.
	PhaseLoaded
	// PhaseFailed means the most recent load failed.
	PhaseFailed
)

// String returns the phase name for logs and status bars.
func (p Phase) String() string {
	switch p {
	case PhaseEmpty:
		return "empty"
	case PhaseLoading:
		return "loading"
	case PhaseLoaded:
		return "loaded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// LoadToken identifies one load attempt. Only the most recently issued
// token may update the snapshot: completion order never matters.
type LoadToken uint64

// View is the derived projection the presentation layer renders.
type View struct {
	Phase      Phase
	Tasks      []task.Task // current page of the filtered sequence
	Page       int
	TotalPages int
	TotalCount int // filtered count, not snapshot size
	Err        error
}

// Store owns the task snapshot. It is not safe for concurrent use; the
// single-threaded UI event loop is its only caller.
type Store struct {
	pageSize int
	log      *zap.Logger

	phase    Phase
	snapshot []task.Task
	err      error

	search string
	page   int

	latest LoadToken
}

// New creates an empty Store with the given page size.
func New(pageSize int, log *zap.Logger) *Store {
	if pageSize < 1 {
		pageSize = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{pageSize: pageSize, log: log}
}

// Phase returns the current lifecycle state.
func (s *Store) Phase() Phase { return s.phase }

// Snapshot returns the raw snapshot in server order.
func (s *Store) Snapshot() []task.Task { return s.snapshot }

// Search returns the active search term.
func (s *Store) Search() string { return s.search }

// BeginLoad moves the store to Loading and returns the token the
// finished load must present. Starting a new load invalidates every
// token issued before it.
func (s *Store) BeginLoad() LoadToken {
	s.latest++
	s.phase = PhaseLoading
	s.log.Debug("load started", zap.Uint64("token", uint64(s.latest)))
	return s.latest
}

// FinishLoad applies a completed load. Results carrying a superseded
// token are discarded so a slow response can never clobber a newer one.
// It reports whether the result was applied.
func (s *Store) FinishLoad(tok LoadToken, tasks []task.Task, err error) bool {
	if tok != s.latest {
		s.log.Debug("stale load discarded",
			zap.Uint64("token", uint64(tok)),
			zap.Uint64("latest", uint64(s.latest)))
		return false
	}
	if err != nil {
		s.phase = PhaseFailed
		s.err = err
		s.log.Warn("load failed", zap.Error(err))
		return true
	}
	s.phase = PhaseLoaded
	s.err = nil
	s.snapshot = tasks
	s.clampPage()
	s.log.Debug("load applied", zap.Int("count", len(tasks)))
	return true
}

// SetSearch updates the search term and resets the page to 0.
func (s *Store) SetSearch(term string) {
	if term == s.search {
		return
	}
	s.search = term
	s.page = 0
}

// SetPage moves to page n; out-of-range values are a no-op.
func (s *Store) SetPage(n int) bool {
	if n < 0 || n >= s.totalPages() {
		return false
	}
	s.page = n
	return true
}

// Page returns the current page index.
func (s *Store) Page() int { return s.page }

// ReplaceTask swaps the record with the same ID in place. Used after an
// update whose response carries the full authoritative record.
func (s *Store) ReplaceTask(t task.Task) bool {
	for i := range s.snapshot {
		if s.snapshot[i].ID == t.ID {
			s.snapshot[i] = t
			return true
		}
	}
	return false
}

// RemoveTask drops the record with the given ID from the snapshot
// without a refetch. Used after a confirmed delete.
func (s *Store) RemoveTask(id int64) bool {
	for i := range s.snapshot {
		if s.snapshot[i].ID == id {
			s.snapshot = append(s.snapshot[:i], s.snapshot[i+1:]...)
			s.clampPage()
			return true
		}
	}
	return false
}

// View derives the visible page. The derivation is pure over
// (snapshot, search, page); calling it has no side effects.
func (s *Store) View() View {
	filtered := s.filtered()
	total := totalPages(len(filtered), s.pageSize)

	page := s.page
	if page > total-1 {
		page = total - 1
	}
	if page < 0 {
		page = 0
	}

	start := page * s.pageSize
	end := start + s.pageSize
	if start > len(filtered) {
		start = len(filtered)
	}
	if end > len(filtered) {
		end = len(filtered)
	}

	return View{
		Phase:      s.phase,
		Tasks:      filtered[start:end],
		Page:       page,
		TotalPages: total,
		TotalCount: len(filtered),
		Err:        s.err,
	}
}

// filtered returns the candidate sequence: the full snapshot in server
// order when the term is empty, otherwise the case-insensitive
// substring matches on title, description, or assignee.
func (s *Store) filtered() []task.Task {
	term := strings.TrimSpace(s.search)
	if term == "" {
		return s.snapshot
	}
	q := strings.ToLower(term)
	var out []task.Task
	for _, t := range s.snapshot {
		if Matches(t, q) {
			out = append(out, t)
		}
	}
	return out
}

// Matches reports whether the lowercased term is a substring of the
// task's title, description, or assignee. An absent assignee never
// matches on that field.
func Matches(t task.Task, lowerTerm string) bool {
	if strings.Contains(strings.ToLower(t.Title), lowerTerm) {
		return true
	}
	if t.Description != "" && strings.Contains(strings.ToLower(t.Description), lowerTerm) {
		return true
	}
	if t.Assignee != "" && strings.Contains(strings.ToLower(t.Assignee), lowerTerm) {
		return true
	}
	return false
}

func (s *Store) totalPages() int {
	return totalPages(len(s.filtered()), s.pageSize)
}

// clampPage keeps the page index inside [0, totalPages-1] after
// snapshot or filter changes shrink the sequence.
func (s *Store) clampPage() {
	total := s.totalPages()
	if s.page > total-1 {
		s.page = total - 1
	}
	if s.page < 0 {
		s.page = 0
	}
}

// totalPages is max(1, ceil(n/pageSize)): an empty sequence still has
// one (empty) page.
func totalPages(n, pageSize int) int {
	if n <= 0 {
		return 1
	}
	return (n + pageSize - 1) / pageSize
}
