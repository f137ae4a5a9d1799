package page

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/workerlist/internal/workers"
)

func backendWorkers() []workers.Worker {
	return []workers.Worker{
		{ID: "1", Category: "Old Care", Reviews: 3},
		{ID: "2", Category: "Cook"},
		{ID: "3", Category: "Old Care", Reviews: 9},
	}
}

func TestInitialStateIsLoading(t *testing.T) {
	t.Parallel()

	s := InitialState()
	require.True(t, s.Loading)
	require.Empty(t, s.Error)
	require.Equal(t, BranchLoading, Render(s).Branch)
	require.Equal(t, 0, Render(s).Count)
}

func TestReduce_MissingCategory(t *testing.T) {
	t.Parallel()

	s := Reduce(InitialState(), CategoryRequested{Token: "", Seq: 1})
	require.False(t, s.Loading)
	require.Equal(t, MsgNoCategory, s.Error)

	v := Render(s)
	require.Equal(t, BranchError, v.Branch)
	require.Equal(t, MsgNoCategory, v.Message)
	require.Zero(t, v.Count)
	require.Empty(t, v.Cards)
}

func TestReduce_FilterByAlias(t *testing.T) {
	t.Parallel()

	s := Reduce(InitialState(), CategoryRequested{Token: "oldcare", Seq: 1})
	require.True(t, s.Loading)
	require.Equal(t, "Old Care", s.Category)

	at := time.Unix(100, 0).UTC()
	s = Reduce(s, FetchCompleted{Seq: 1, Workers: backendWorkers(), At: at})
	require.False(t, s.Loading)
	require.Empty(t, s.Error)
	require.Len(t, s.Workers, 2)
	require.Equal(t, at, s.FetchedAt)

	v := Render(s)
	require.Equal(t, BranchResults, v.Branch)
	require.Equal(t, 2, v.Count)
	require.Equal(t, "/workerdetails/1", v.Cards[0].DetailPath)
}

func TestReduce_ConcreteScenario(t *testing.T) {
	t.Parallel()

	s := Reduce(InitialState(), CategoryRequested{Token: "oldcare", Seq: 1})
	s = Reduce(s, FetchCompleted{Seq: 1, Workers: []workers.Worker{
		{ID: "1", Category: "Old Care"},
		{ID: "2", Category: "Cook"},
	}})

	v := Render(s)
	require.Equal(t, BranchResults, v.Branch)
	require.Equal(t, 1, v.Count)
	require.Len(t, v.Cards, 1)
	require.Equal(t, "1", v.Cards[0].Worker.ID)
}

func TestReduce_UnknownTokenMatchesVerbatim(t *testing.T) {
	t.Parallel()

	list := []workers.Worker{{ID: "g", Category: "Gardening"}, {ID: "c", Category: "Cook"}}
	s := Reduce(InitialState(), CategoryRequested{Token: "Gardening", Seq: 1})
	s = Reduce(s, FetchCompleted{Seq: 1, Workers: list})
	require.Len(t, s.Workers, 1)
	require.Equal(t, "g", s.Workers[0].ID)

	s = Reduce(s, CategoryRequested{Token: "gardening", Seq: 2})
	s = Reduce(s, FetchCompleted{Seq: 2, Workers: list})
	require.Empty(t, s.Workers)
}

func TestReduce_EmptyResultIsNotError(t *testing.T) {
	t.Parallel()

	s := Reduce(InitialState(), CategoryRequested{Token: "physiotherapist", Seq: 1})
	s = Reduce(s, FetchCompleted{Seq: 1, Workers: backendWorkers()})

	v := Render(s)
	require.Equal(t, BranchEmpty, v.Branch)
	require.Equal(t, MsgNoWorkers, v.Message)
	require.Zero(t, v.Count)
}

func TestReduce_FetchFailure(t *testing.T) {
	t.Parallel()

	s := Reduce(InitialState(), CategoryRequested{Token: "cook", Seq: 1})
	s = Reduce(s, FetchCompleted{Seq: 1, Err: errors.New("connection refused")})

	v := Render(s)
	require.Equal(t, BranchError, v.Branch)
	require.Equal(t, MsgFetchFailed, v.Message)
	require.Empty(t, v.Cards)
	require.Zero(t, v.Count)
}

func TestReduce_StaleCompletionIgnored(t *testing.T) {
	t.Parallel()

	s := Reduce(InitialState(), CategoryRequested{Token: "cook", Seq: 1})
	s = Reduce(s, CategoryRequested{Token: "oldcare", Seq: 2})
	s = Reduce(s, FetchCompleted{Seq: 2, Workers: backendWorkers()})
	require.Len(t, s.Workers, 2)

	after := Reduce(s, FetchCompleted{Seq: 1, Err: errors.New("late failure")})
	require.Equal(t, s, after)
}

func TestReduce_NewRequestClearsPreviousError(t *testing.T) {
	t.Parallel()

	s := Reduce(InitialState(), CategoryRequested{Seq: 1})
	require.Equal(t, MsgNoCategory, s.Error)

	s = Reduce(s, CategoryRequested{Token: "cook", Seq: 2})
	require.True(t, s.Loading)
	require.Empty(t, s.Error)
	require.Equal(t, BranchLoading, Render(s).Branch)
}

func TestReduce_SortChanged(t *testing.T) {
	t.Parallel()

	s := Reduce(InitialState(), CategoryRequested{Token: "oldcare", Seq: 1})
	s = Reduce(s, FetchCompleted{Seq: 1, Workers: backendWorkers()})
	require.Equal(t, "1", s.Workers[0].ID)

	s = Reduce(s, SortChanged{Option: workers.SortPopular})
	require.Equal(t, workers.SortPopular, s.SortOption)
	require.Equal(t, "3", s.Workers[0].ID)

	s = Reduce(s, SortChanged{Option: workers.SortNone})
	require.Equal(t, "1", s.Workers[0].ID, "none restores backend order")
}

func TestReduce_SortAppliedToLaterFetch(t *testing.T) {
	t.Parallel()

	s := Reduce(InitialState(), SortChanged{Option: workers.SortPopular})
	s = Reduce(s, CategoryRequested{Token: "oldcare", Seq: 1})
	s = Reduce(s, FetchCompleted{Seq: 1, Workers: backendWorkers()})
	require.Equal(t, "3", s.Workers[0].ID)
}
