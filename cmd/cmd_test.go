package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/workerlist/internal/config"
	"github.com/JakeFAU/workerlist/internal/page"
	"github.com/JakeFAU/workerlist/internal/workers"
)

type fakeApp struct {
	cfg    config.Config
	source workers.Source
	closed bool
}

func (f *fakeApp) Close()                    { f.closed = true }
func (f *fakeApp) GetConfig() config.Config  { return f.cfg }
func (f *fakeApp) GetLogger() *zap.Logger    { return zap.NewNop() }
func (f *fakeApp) GetSource() workers.Source { return f.source }

// useFakeApp swaps the application factory for the duration of the test.
func useFakeApp(t *testing.T, fake *fakeApp) {
	t.Helper()
	orig := newApp
	newApp = func(_ context.Context, cfg config.Config, _ *zap.Logger) (App, error) {
		fake.cfg = cfg
		return fake, nil
	}
	prevNoColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() {
		newApp = orig
		color.NoColor = prevNoColor
	})
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := runRootWithStderr(t, args...)
	return out, err
}

func runRootWithStderr(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func marketplace() workers.Source {
	return workers.SourceFunc(func(context.Context) ([]workers.Worker, error) {
		return []workers.Worker{
			{ID: "a", Name: "Asha", Category: "Old Care", Reviews: 3, Rating: 4.1},
			{ID: "b", Name: "Ravi", Category: "Cook", Reviews: 9},
			{ID: "c", Name: "Meera", Category: "Old Care", Reviews: 12, Rating: 4.8},
		}, nil
	})
}

func TestListCommandPrintsFilteredSortedWorkers(t *testing.T) {
	fake := &fakeApp{source: marketplace()}
	useFakeApp(t, fake)

	out, err := runRoot(t, "list", "--category", "oldcare", "--sort", "popular")
	require.NoError(t, err)
	require.Contains(t, out, "Old Care (2 results)")
	require.NotContains(t, out, "Ravi")
	require.Less(t, bytes.Index([]byte(out), []byte("Meera")), bytes.Index([]byte(out), []byte("Asha")))
	require.Contains(t, out, "/workerdetails/c")
	require.True(t, fake.closed, "app closed after the command")
	require.Equal(t, config.SourceHTTP, fake.cfg.Source.Kind, "defaults loaded without a config file")
}

func TestListCommandJSON(t *testing.T) {
	useFakeApp(t, &fakeApp{source: marketplace()})

	out, err := runRoot(t, "list", "-c", "babysitting", "--json")
	require.NoError(t, err)

	var view page.View
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	require.Equal(t, page.BranchEmpty, view.Branch)
	require.Equal(t, "Baby Sitting", view.Category)
	require.Zero(t, view.Count)
}

func TestListCommandErrors(t *testing.T) {
	useFakeApp(t, &fakeApp{source: marketplace()})

	out, errOut, err := runRootWithStderr(t, "list")
	require.EqualError(t, err, page.MsgNoCategory)
	require.Equal(t, 1, strings.Count(out+errOut, page.MsgNoCategory), "message printed once")

	_, errOut, err = runRootWithStderr(t, "list", "-c", "cook", "--sort", "newest")
	require.ErrorIs(t, err, workers.ErrUnknownSort)
	require.Contains(t, errOut, "unknown sort option", "flag errors still reported by cobra")

	failing := workers.SourceFunc(func(context.Context) ([]workers.Worker, error) {
		return nil, errors.New("backend down")
	})
	useFakeApp(t, &fakeApp{source: failing})
	out, errOut, err = runRootWithStderr(t, "list", "-c", "cook")
	require.EqualError(t, err, page.MsgFetchFailed)
	require.NotContains(t, out, page.MsgNoWorkers)
	require.Equal(t, 1, strings.Count(out+errOut, page.MsgFetchFailed))
}

func TestCategoriesCommand(t *testing.T) {
	useFakeApp(t, &fakeApp{source: marketplace()})

	out, err := runRoot(t, "categories")
	require.NoError(t, err)
	require.Contains(t, out, "hometution")
	require.Contains(t, out, "Home Tution")
	require.Contains(t, out, "highest_review")
	require.NotContains(t, out, "Sort by")
}

func TestRootFailsOnMissingConfigFile(t *testing.T) {
	useFakeApp(t, &fakeApp{source: marketplace()})

	_, err := runRoot(t, "--config", t.TempDir()+"/missing.yaml", "categories")
	require.ErrorContains(t, err, "load config")
}

func TestRootFailsWhenAppInitFails(t *testing.T) {
	orig := newApp
	newApp = func(context.Context, config.Config, *zap.Logger) (App, error) {
		return nil, errors.New("no backend")
	}
	t.Cleanup(func() { newApp = orig })

	_, err := runRoot(t, "categories")
	require.ErrorContains(t, err, "failed to initialize application services")
}

func TestResolveAppMissing(t *testing.T) {
	_, err := resolveApp(context.Background())
	require.Error(t, err)
}

func TestServeUntilDoneStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := &http.Server{Addr: "127.0.0.1:0", ReadHeaderTimeout: time.Second}

	done := make(chan error, 1)
	go func() { done <- serveUntilDone(ctx, srv, zap.NewNop()) }()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServeUntilDoneReportsListenError(t *testing.T) {
	srv := &http.Server{Addr: "127.0.0.1:-1", ReadHeaderTimeout: time.Second}
	err := serveUntilDone(context.Background(), srv, zap.NewNop())
	require.ErrorContains(t, err, "http server")
}
