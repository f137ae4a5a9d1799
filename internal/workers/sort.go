package workers

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

// SortOption selects the ordering of the rendered list.
type SortOption string

// Sort options offered by the page. SortNone keeps backend order.
const (
	SortNone          SortOption = ""
	SortPopular       SortOption = "popular"
	SortHighestReview SortOption = "highest_review"
	SortOldest        SortOption = "oldest"
)

// ErrUnknownSort is returned for sort values outside the offered set.
var ErrUnknownSort = errors.New("unknown sort option")

// SortChoice is a selectable entry of the sort control.
type SortChoice struct {
	Value SortOption `json:"value"`
	Label string     `json:"label"`
}

// SortChoices lists the sort control entries in display order.
func SortChoices() []SortChoice {
	return []SortChoice{
		{Value: SortNone, Label: "Sort by"},
		{Value: SortPopular, Label: "Most Popular"},
		{Value: SortHighestReview, Label: "Highest Review"},
		{Value: SortOldest, Label: "Oldest Worker"},
	}
}

// ParseSortOption validates a raw sort value.
func ParseSortOption(raw string) (SortOption, error) {
	switch opt := SortOption(raw); opt {
	case SortNone, SortPopular, SortHighestReview, SortOldest:
		return opt, nil
	default:
		return SortNone, fmt.Errorf("%w: %q", ErrUnknownSort, raw)
	}
}

// Sort returns a stably sorted copy of list.
func Sort(list []Worker, opt SortOption) []Worker {
	out := slices.Clone(list)
	if out == nil {
		out = []Worker{}
	}
	switch opt {
	case SortPopular:
		slices.SortStableFunc(out, func(a, b Worker) int {
			return cmp.Compare(b.Reviews, a.Reviews)
		})
	case SortHighestReview:
		slices.SortStableFunc(out, func(a, b Worker) int {
			if c := cmp.Compare(b.Rating, a.Rating); c != 0 {
				return c
			}
			return cmp.Compare(b.Reviews, a.Reviews)
		})
	case SortOldest:
		slices.SortStableFunc(out, compareOldest)
	}
	return out
}

// compareOldest orders by CreatedAt ascending with unknown timestamps last.
func compareOldest(a, b Worker) int {
	switch {
	case a.CreatedAt.IsZero() && b.CreatedAt.IsZero():
		return 0
	case a.CreatedAt.IsZero():
		return 1
	case b.CreatedAt.IsZero():
		return -1
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}
