package page

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/workerlist/internal/workers"
)

// ErrNoNavigator is returned by SelectWorker when no Navigator was injected.
var ErrNoNavigator = errors.New("navigator not configured")

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// Controller owns the state of one page view. Loads may overlap; each one is
// tagged with a sequence number and only the most recent may commit its result.
type Controller struct {
	source workers.Source
	nav    Navigator
	clock  Clock
	logger *zap.Logger

	mu    sync.Mutex
	state State
	seq   uint64
}

// NewController builds a Controller in the initial loading state.
func NewController(source workers.Source, nav Navigator, clock Clock, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		source: source,
		nav:    nav,
		clock:  clock,
		logger: logger,
		state:  InitialState(),
	}
}

// Load reacts to a mount or query change. Without a category no fetch is made.
// A fetch failure is recorded in the state, never returned.
func (c *Controller) Load(ctx context.Context, query url.Values) State {
	token := query.Get("category")

	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.state = Reduce(c.state, CategoryRequested{Token: token, Seq: seq})
	c.mu.Unlock()

	if token == "" {
		c.logger.Debug("no category in query")
		return c.State()
	}

	c.logger.Debug("fetching workers",
		zap.String("token", token),
		zap.String("category", workers.ResolveCategory(token)),
		zap.Uint64("seq", seq),
	)
	list, err := c.source.ListWorkers(ctx)
	if err != nil {
		c.logger.Warn("fetch workers failed", zap.Uint64("seq", seq), zap.Error(err))
		err = fmt.Errorf("list workers: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		c.logger.Debug("discarding stale fetch", zap.Uint64("seq", seq), zap.Uint64("latest", c.seq))
	}
	c.state = Reduce(c.state, FetchCompleted{Seq: seq, Workers: list, Err: err, At: c.now()})
	return c.state
}

// SetSort applies a sort option to the current and future results.
func (c *Controller) SetSort(opt workers.SortOption) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Reduce(c.state, SortChanged{Option: opt})
	return c.state
}

// State returns a snapshot of the page state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// View renders the current state.
func (c *Controller) View() View {
	return Render(c.State())
}

// SelectWorker navigates to the detail view of workerID.
func (c *Controller) SelectWorker(ctx context.Context, workerID string) error {
	if c.nav == nil {
		return ErrNoNavigator
	}
	if err := c.nav.Navigate(ctx, DetailPath(workerID)); err != nil {
		return fmt.Errorf("navigate to worker %q: %w", workerID, err)
	}
	return nil
}

func (c *Controller) now() time.Time {
	if c.clock == nil {
		return time.Now().UTC()
	}
	return c.clock.Now()
}
