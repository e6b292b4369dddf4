package pagination

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func testConfig() Config {
	return Config{MaxConcurrency: 4, Timeout: 5 * time.Second}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.MaxConcurrency != 4 {
		t.Errorf("MaxConcurrency = %d, want 4", cfg.MaxConcurrency)
	}
	// The page timeout must outlast the HTTP client's full retry envelope
	// (three 30s attempts plus backoff), or retries never get to run.
	if cfg.Timeout < 100*time.Second {
		t.Errorf("Timeout = %v, want at least 100s to cover request retries", cfg.Timeout)
	}
}

func TestFetchAllSinglePage(t *testing.T) {
	fetch := func(ctx context.Context, page int) (Page[int], error) {
		if page != 1 {
			t.Errorf("Unexpected fetch of page %d", page)
		}
		return Page[int]{Items: []int{1, 2, 3}, TotalPages: 1}, nil
	}

	items, err := FetchAll(context.Background(), testConfig(), fetch)
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if len(items) != 3 {
		t.Errorf("Items = %v, want 3 items", items)
	}
}

func TestFetchAllPreservesPageOrder(t *testing.T) {
	const totalPages = 8
	fetch := func(ctx context.Context, page int) (Page[int], error) {
		// Later pages return faster to exercise out-of-order completion.
		time.Sleep(time.Duration(totalPages-page) * 5 * time.Millisecond)
		return Page[int]{
			Items:      []int{page * 10, page*10 + 1},
			TotalPages: totalPages,
		}, nil
	}

	items, err := FetchAll(context.Background(), testConfig(), fetch)
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}

	if len(items) != totalPages*2 {
		t.Fatalf("Items count = %d, want %d", len(items), totalPages*2)
	}
	for i, item := range items {
		page := i/2 + 1
		want := page*10 + i%2
		if item != want {
			t.Fatalf("items[%d] = %d, want %d (page order violated)", i, item, want)
		}
	}
}

func TestFetchAllPage1ErrorShortCircuits(t *testing.T) {
	fetchErr := errors.New("boom")
	var calls int32
	fetch := func(ctx context.Context, page int) (Page[int], error) {
		atomic.AddInt32(&calls, 1)
		return Page[int]{}, fetchErr
	}

	_, err := FetchAll(context.Background(), testConfig(), fetch)
	if !errors.Is(err, fetchErr) {
		t.Fatalf("Error = %v, want wrapped %v", err, fetchErr)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("Fetch calls = %d, want 1 (no pages after a failed page 1)", got)
	}
}

func TestFetchAllNoData(t *testing.T) {
	fetch := func(ctx context.Context, page int) (Page[int], error) {
		return Page[int]{Items: nil, TotalPages: 3}, nil
	}

	_, err := FetchAll(context.Background(), testConfig(), fetch)
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("Error = %v, want ErrNoData", err)
	}
}

func TestFetchAllEmptyPageIsNotNoData(t *testing.T) {
	fetch := func(ctx context.Context, page int) (Page[int], error) {
		return Page[int]{Items: []int{}, TotalPages: 1}, nil
	}

	items, err := FetchAll(context.Background(), testConfig(), fetch)
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Errorf("Items = %v, want empty non-nil result", items)
	}
}

func TestFetchAllLaterPageFailureDiscardsEverything(t *testing.T) {
	fetchErr := errors.New("page exploded")
	fetch := func(ctx context.Context, page int) (Page[int], error) {
		if page == 3 {
			return Page[int]{}, fetchErr
		}
		return Page[int]{Items: []int{page}, TotalPages: 5}, nil
	}

	items, err := FetchAll(context.Background(), testConfig(), fetch)
	if !errors.Is(err, fetchErr) {
		t.Fatalf("Error = %v, want wrapped %v", err, fetchErr)
	}
	if items != nil {
		t.Errorf("Items = %v, want nil on partial failure", items)
	}
	if want := "fetch page 3"; err != nil && !strings.Contains(err.Error(), want) {
		t.Errorf("Error %q does not name the failing page (%q)", err.Error(), want)
	}
}

func TestFetchAllLaterPageNoDataFails(t *testing.T) {
	fetch := func(ctx context.Context, page int) (Page[int], error) {
		if page == 2 {
			return Page[int]{Items: nil, TotalPages: 2}, nil
		}
		return Page[int]{Items: []int{page}, TotalPages: 2}, nil
	}

	_, err := FetchAll(context.Background(), testConfig(), fetch)
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("Error = %v, want ErrNoData", err)
	}
}

func TestFetchAllRespectsConcurrencyCap(t *testing.T) {
	const limit = 2

	var mu sync.Mutex
	inFlight, maxInFlight := 0, 0

	fetch := func(ctx context.Context, page int) (Page[int], error) {
		if page > 1 {
			mu.Lock()
			inFlight++
			if inFlight > maxInFlight {
				maxInFlight = inFlight
			}
			mu.Unlock()

			time.Sleep(10 * time.Millisecond)

			mu.Lock()
			inFlight--
			mu.Unlock()
		}
		return Page[int]{Items: []int{page}, TotalPages: 10}, nil
	}

	cfg := Config{MaxConcurrency: limit, Timeout: 5 * time.Second}
	if _, err := FetchAll(context.Background(), cfg, fetch); err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}

	if maxInFlight > limit {
		t.Errorf("Max in-flight pages = %d, want <= %d", maxInFlight, limit)
	}
}

func TestFetchAllContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	fetch := func(fctx context.Context, page int) (Page[int], error) {
		if page == 1 {
			return Page[int]{Items: []int{1}, TotalPages: 4}, nil
		}
		cancel()
		<-fctx.Done()
		return Page[int]{}, fctx.Err()
	}

	_, err := FetchAll(ctx, testConfig(), fetch)
	if err == nil {
		t.Fatal("Expected error after cancellation")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Error = %v, want context.Canceled in chain", err)
	}
}
