package page

import (
	"time"

	"github.com/JakeFAU/workerlist/internal/workers"
)

// Branch names the single section of the page that is rendered.
type Branch string

// Rendering branches, mutually exclusive.
const (
	BranchError   Branch = "error"
	BranchLoading Branch = "loading"
	BranchEmpty   Branch = "empty"
	BranchResults Branch = "results"
)

// Card is one rendered worker with its navigation target.
type Card struct {
	Worker     workers.Worker `json:"worker"`
	DetailPath string         `json:"detail_path"`
}

// View is the render-ready projection of State.
type View struct {
	Branch      Branch               `json:"branch"`
	Message     string               `json:"message,omitempty"`
	Count       int                  `json:"count"`
	Token       string               `json:"token,omitempty"`
	Category    string               `json:"category,omitempty"`
	SortOption  workers.SortOption   `json:"sort"`
	SortChoices []workers.SortChoice `json:"sort_choices"`
	Cards       []Card               `json:"cards"`
	FetchedAt   *time.Time           `json:"fetched_at,omitempty"`
	ScrollToTop bool                 `json:"scroll_to_top"`
}

// Render projects s onto a View. Count always equals len(s.Workers).
func Render(s State) View {
	v := View{
		Count:       len(s.Workers),
		Token:       s.Token,
		Category:    s.Category,
		SortOption:  s.SortOption,
		SortChoices: workers.SortChoices(),
		Cards:       []Card{},
		ScrollToTop: s.ScrollToTop,
	}
	if !s.FetchedAt.IsZero() {
		at := s.FetchedAt
		v.FetchedAt = &at
	}

	switch {
	case s.Error != "":
		v.Branch = BranchError
		v.Message = s.Error
	case s.Loading:
		v.Branch = BranchLoading
	case len(s.Workers) == 0:
		v.Branch = BranchEmpty
		v.Message = MsgNoWorkers
	default:
		v.Branch = BranchResults
		for _, w := range s.Workers {
			v.Cards = append(v.Cards, Card{Worker: w, DetailPath: DetailPath(w.ID)})
		}
	}
	return v
}
