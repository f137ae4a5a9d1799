// Package page implements the worker list page: a pure state reducer, a controller
// that drives it from URL changes and backend fetches, and the view derived from it.
package page

import (
	"time"

	"github.com/JakeFAU/workerlist/internal/workers"
)

// User-visible page messages.
const (
	MsgNoCategory  = "No category selected"
	MsgFetchFailed = "Failed to load workers. Please try again later."
	MsgNoWorkers   = "No workers found in this category. " +
		"Please check if the category name matches exactly with what was used when creating the worker."
)

// State is the page-local record of loading, error and result status.
// Loading implies an empty Error and an empty Workers slice.
type State struct {
	SortOption  workers.SortOption
	Workers     []workers.Worker
	Loading     bool
	Error       string
	Token       string
	Category    string
	Seq         uint64
	FetchedAt   time.Time
	ScrollToTop bool

	// matched keeps the filtered collection in backend order so SortNone can
	// restore it after another option was applied.
	matched []workers.Worker
}

// InitialState is the state of a freshly mounted page.
func InitialState() State {
	return State{Loading: true, Workers: []workers.Worker{}}
}

// Event drives a State transition.
type Event interface {
	isEvent()
}

// CategoryRequested is raised when the page mounts or its query changes.
// Seq identifies the fetch that will follow; an empty Token means no category.
type CategoryRequested struct {
	Token string
	Seq   uint64
}

// FetchCompleted carries the outcome of the fetch started for Seq.
type FetchCompleted struct {
	Seq     uint64
	Workers []workers.Worker
	Err     error
	At      time.Time
}

// SortChanged is raised by the sort control.
type SortChanged struct {
	Option workers.SortOption
}

func (CategoryRequested) isEvent() {}
func (FetchCompleted) isEvent()    {}
func (SortChanged) isEvent()       {}

// Reduce applies ev to s and returns the next state. It never mutates s.
func Reduce(s State, ev Event) State {
	switch e := ev.(type) {
	case CategoryRequested:
		s.Seq = e.Seq
		s.Token = e.Token
		s.Workers = []workers.Worker{}
		s.matched = nil
		s.FetchedAt = time.Time{}
		s.ScrollToTop = true
		if e.Token == "" {
			s.Category = ""
			s.Loading = false
			s.Error = MsgNoCategory
			return s
		}
		s.Category = workers.ResolveCategory(e.Token)
		s.Loading = true
		s.Error = ""
		return s

	case FetchCompleted:
		// Only the latest request may commit; a stale response is dropped.
		if e.Seq != s.Seq || !s.Loading {
			return s
		}
		s.Loading = false
		s.FetchedAt = e.At
		if e.Err != nil {
			s.Error = MsgFetchFailed
			s.Workers = []workers.Worker{}
			return s
		}
		s.matched = workers.FilterByCategory(e.Workers, s.Category)
		s.Workers = workers.Sort(s.matched, s.SortOption)
		return s

	case SortChanged:
		s.SortOption = e.Option
		if !s.Loading && s.Error == "" {
			s.Workers = workers.Sort(s.matched, e.Option)
		}
		return s
	}
	return s
}
