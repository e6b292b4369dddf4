package pagination

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ErrNoData is returned when a successful response carries no item list.
// It signals a schema or shape mismatch rather than a transient fault.
var ErrNoData = errors.New("response carried no item list")

// Config holds fetcher configuration.
type Config struct {
	// MaxConcurrency caps the number of parallel page requests beyond page 1.
	MaxConcurrency int
	// Timeout per page fetch. It must cover the fetch function's own retry
	// envelope, or retries are cut short by the page context.
	Timeout time.Duration
}

// DefaultConfig returns safe defaults for the start.gg API. The page timeout
// allows for three 30s request attempts plus backoff.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 4,
		Timeout:        2 * time.Minute,
	}
}

// Page is one bounded chunk of a paginated result list.
//
// Items == nil means the response carried no item list at all; an empty
// non-nil slice is a legitimately empty page. TotalPages is the declared
// page count, 0 when the response did not include one.
type Page[T any] struct {
	Items      []T
	TotalPages int
}

// FetchFunc fetches a single 1-based page.
type FetchFunc[T any] func(ctx context.Context, page int) (Page[T], error)

// FetchAll fetches every page of a query and concatenates the items in page
// order. The contract is all-or-nothing: an error on page 1 (including an
// application-level query error from the remote service) fails immediately
// before any further page is requested, and a failure on any page >= 2
// discards the whole result rather than returning a partial list.
// Within-page item order is preserved.
func FetchAll[T any](ctx context.Context, cfg Config, fetch FetchFunc[T]) ([]T, error) {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 4
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}

	start := time.Now()

	first, err := fetchPage(ctx, cfg, fetch, 1)
	if err != nil {
		return nil, fmt.Errorf("fetch page 1: %w", err)
	}
	if first.Items == nil {
		return nil, ErrNoData
	}

	totalPages := first.TotalPages
	if totalPages <= 1 {
		return first.Items, nil
	}

	log.Debug().
		Int("total_pages", totalPages).
		Msg("Fetching remaining pages")

	// Slot per page keeps page order independent of completion order.
	pages := make([][]T, totalPages+1)
	pages[1] = first.Items

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.MaxConcurrency)
	for page := 2; page <= totalPages; page++ {
		g.Go(func() error {
			res, err := fetchPage(gctx, cfg, fetch, page)
			if err != nil {
				return fmt.Errorf("fetch page %d: %w", page, err)
			}
			if res.Items == nil {
				return fmt.Errorf("page %d: %w", page, ErrNoData)
			}
			pages[page] = res.Items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, p := range pages[1:] {
		total += len(p)
	}
	items := make([]T, 0, total)
	for _, p := range pages[1:] {
		items = append(items, p...)
	}

	log.Debug().
		Int("pages", totalPages).
		Int("items", len(items)).
		Dur("duration", time.Since(start)).
		Msg("Paged fetch complete")

	return items, nil
}

func fetchPage[T any](ctx context.Context, cfg Config, fetch FetchFunc[T], page int) (Page[T], error) {
	pageCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	return fetch(pageCtx, page)
}
