package page

import (
	"context"
	"net/url"
)

// Navigator moves the user to another route.
type Navigator interface {
	Navigate(ctx context.Context, path string) error
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, path string) error

// Navigate calls f.
func (f NavigatorFunc) Navigate(ctx context.Context, path string) error {
	return f(ctx, path)
}

// DetailPath is the route of a worker's detail view.
func DetailPath(workerID string) string {
	return "/workerdetails/" + url.PathEscape(workerID)
}
