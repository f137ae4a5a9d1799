// Package api hosts the HTTP server, middleware, and handlers for the worker
// listing. Notable routes:
//   - GET /healthz / readyz for Kubernetes probes.
//   - GET /metrics for Prometheus scraping.
//   - GET /workers?category=&sort= renders the listing page.
//   - GET /workers/{worker_id}/select redirects to the worker's detail page.
//   - GET /workerdetails/{worker_id} renders a single worker.
//   - GET /api/v1/workers and /api/v1/categories return the same data as JSON.
package api
