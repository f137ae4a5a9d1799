// Package collysource implements workers.Source against the marketplace backend
// using gocolly.
package collysource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/JakeFAU/workerlist/internal/metrics"
	"github.com/JakeFAU/workerlist/internal/workers"
)

// SourceName labels this source in metrics.
const SourceName = "http"

// Config controls collector behavior.
type Config struct {
	BaseURL     string
	WorkersPath string
	UserAgent   string
	// Timeout bounds one request; zero disables the client timeout.
	Timeout     time.Duration
	MaxBodySize int
}

// Source fetches the full worker collection with a single GET.
type Source struct {
	endpoint      string
	baseCollector *colly.Collector
	logger        *zap.Logger
}

type collectorHooks interface {
	OnRequest(colly.RequestCallback)
	OnResponse(colly.ResponseCallback)
	OnError(colly.ErrorCallback)
}

// New builds a Source for cfg.
func New(cfg Config, logger *zap.Logger) (*Source, error) {
	endpoint, err := buildEndpoint(cfg.BaseURL, cfg.WorkersPath)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := colly.NewCollector(colly.Async(false), colly.AllowURLRevisit())
	c.IgnoreRobotsTxt = true
	if cfg.UserAgent != "" {
		c.UserAgent = cfg.UserAgent
	}
	if cfg.MaxBodySize > 0 {
		c.MaxBodySize = cfg.MaxBodySize
	}
	c.WithTransport(newHTTPTransport())
	c.SetRequestTimeout(cfg.Timeout)

	return &Source{
		endpoint:      endpoint,
		baseCollector: c,
		logger:        logger,
	}, nil
}

// Endpoint is the URL requested by ListWorkers.
func (s *Source) Endpoint() string {
	return s.endpoint
}

// ListWorkers performs one GET and decodes the JSON array it returns.
// No query parameters are sent and failures are not retried.
func (s *Source) ListWorkers(ctx context.Context) ([]workers.Worker, error) {
	start := time.Now()
	list, err := s.fetch(ctx)
	metrics.ObserveFetch(SourceName, err, time.Since(start))
	if err != nil {
		return nil, err
	}
	s.logger.Debug("fetched workers",
		zap.String("endpoint", s.endpoint),
		zap.Int("count", len(list)),
		zap.Duration("duration", time.Since(start)),
	)
	return list, nil
}

func (s *Source) fetch(ctx context.Context) ([]workers.Worker, error) {
	var (
		body     []byte
		fetchErr error
	)
	collector := s.baseCollector.Clone()
	configureCollectorHooks(collector, &body, &fetchErr)

	if err := runCollector(ctx, collector, s.endpoint, &fetchErr); err != nil {
		return nil, err
	}
	return decodeWorkers(body)
}

func configureCollectorHooks(hooks collectorHooks, body *[]byte, fetchErr *error) {
	hooks.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "application/json")
	})

	hooks.OnResponse(func(r *colly.Response) {
		*body = append([]byte(nil), r.Body...)
	})

	hooks.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 {
			*fetchErr = fmt.Errorf("status %d: %w", r.StatusCode, err)
			return
		}
		*fetchErr = err
	})
}

func runCollector(ctx context.Context, collector *colly.Collector, target string, fetchErr *error) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(target)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("colly fetch canceled: %w", ctx.Err())
	case err := <-done:
		if *fetchErr != nil {
			return fmt.Errorf("colly response failed: %w", *fetchErr)
		}
		if err != nil {
			return fmt.Errorf("colly visit failed: %w", err)
		}
		return nil
	}
}

func decodeWorkers(body []byte) ([]workers.Worker, error) {
	if len(body) == 0 {
		return nil, errors.New("empty response body")
	}
	var list []workers.Worker
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("decode workers: %w", err)
	}
	if list == nil {
		list = []workers.Worker{}
	}
	return list, nil
}

func buildEndpoint(baseURL, path string) (string, error) {
	if baseURL == "" {
		return "", errors.New("upstream base url is required")
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse upstream base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return "", fmt.Errorf("upstream base url must be http(s), got %q", baseURL)
	}
	base.Path = strings.TrimRight(base.Path, "/") + "/" + strings.TrimLeft(path, "/")
	base.RawQuery = ""
	return base.String(), nil
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
