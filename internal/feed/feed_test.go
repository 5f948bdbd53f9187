package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domerrors "github.com/xuanlung-gov/tthc-assistant/internal/errors"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// scriptedFetcher returns bodies/errors in order and counts calls.
type scriptedFetcher struct {
	mu      sync.Mutex
	calls   atomic.Int32
	bodies  []string
	errs    []error
	gate    chan struct{} // when set, Fetch blocks until closed
	started chan struct{}
}

func (f *scriptedFetcher) Fetch(ctx context.Context, _ string) ([]byte, error) {
	n := int(f.calls.Add(1)) - 1
	if f.started != nil {
		select {
		case f.started <- struct{}{}:
		default:
		}
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if n < len(f.errs) && f.errs[n] != nil {
		return nil, f.errs[n]
	}
	if n >= len(f.bodies) {
		n = len(f.bodies) - 1
	}
	return []byte(f.bodies[n]), nil
}

type item struct{ Name string }

func decodeItems(rows []Row) []item {
	var out []item
	for _, r := range rows {
		if name := r.Get("name"); name != "" {
			out = append(out, item{Name: name})
		}
	}
	return out
}

func newTestFeed(fetcher Fetcher, clock Clock, url string) *Feed[item] {
	return New(fetcher, decodeItems, Options{
		Name:    "test",
		URL:     url,
		TTL:     5 * time.Minute,
		Timeout: time.Second,
		Clock:   clock,
	})
}

func TestFeed_EmptyURLNeverFetches(t *testing.T) {
	fetcher := &scriptedFetcher{bodies: []string{"name\na\n"}}
	f := newTestFeed(fetcher, newFakeClock(), "")

	records, err := f.Records(context.Background())
	require.NoError(t, err)
	assert.Nil(t, records)
	assert.Zero(t, fetcher.calls.Load())
	assert.False(t, f.Configured())

	_, err = f.Refresh(context.Background())
	assert.ErrorIs(t, err, domerrors.ErrFeedUnavailable)
	assert.Zero(t, fetcher.calls.Load())
}

func TestFeed_CachesWithinTTL(t *testing.T) {
	clock := newFakeClock()
	fetcher := &scriptedFetcher{bodies: []string{"name\na\nb\n", "name\nc\n"}}
	f := newTestFeed(fetcher, clock, "https://sheet.example/a.csv")
	ctx := context.Background()

	first, err := f.Records(ctx)
	require.NoError(t, err)
	require.Len(t, first, 2)

	clock.Advance(4*time.Minute + 59*time.Second)
	second, err := f.Records(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), fetcher.calls.Load(), "second call within TTL must not fetch")
	assert.Same(t, &first[0], &second[0], "cache hit must return the identical slice")

	clock.Advance(time.Second)
	third, err := f.Records(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), fetcher.calls.Load(), "expired cache must refetch")
	assert.Equal(t, []item{{Name: "c"}}, third)
}

func TestFeed_FailedRefreshKeepsPreviousCache(t *testing.T) {
	clock := newFakeClock()
	fetcher := &scriptedFetcher{
		bodies: []string{"name\na\n", "", "name\nz\n"},
		errs:   []error{nil, &StatusError{StatusCode: http.StatusBadGateway}},
	}
	f := newTestFeed(fetcher, clock, "https://sheet.example/a.csv")
	ctx := context.Background()

	_, err := f.Records(ctx)
	require.NoError(t, err)
	fetchedAt := f.Status().FetchedAt

	clock.Advance(6 * time.Minute)
	records, err := f.Records(ctx)
	assert.Nil(t, records)

	var fe *domerrors.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, http.StatusBadGateway, fe.StatusCode)
	assert.Equal(t, "test", fe.Feed)

	status := f.Status()
	assert.Equal(t, 1, status.Records, "previous records must survive a failed refresh")
	assert.Equal(t, fetchedAt, status.FetchedAt, "timestamp must not move on failure")
	assert.False(t, status.Fresh)

	// The next request retries and succeeds.
	records, err = f.Records(ctx)
	require.NoError(t, err)
	assert.Equal(t, []item{{Name: "z"}}, records)
}

func TestFeed_EmptyDocument(t *testing.T) {
	clock := newFakeClock()
	fetcher := &scriptedFetcher{bodies: []string{"name\n", "name\nq\n"}}
	f := newTestFeed(fetcher, clock, "https://sheet.example/a.csv")
	ctx := context.Background()

	records, err := f.Records(ctx)
	require.NoError(t, err)
	assert.NotNil(t, records, "an empty feed is distinct from an unavailable one")
	assert.Empty(t, records)

	// Nothing was cached, so the next request fetches again.
	records, err = f.Records(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, int32(2), fetcher.calls.Load())
}

func TestFeed_RefreshForcesDownload(t *testing.T) {
	fetcher := &scriptedFetcher{bodies: []string{"name\na\n", "name\na\nb\nc\n"}}
	f := newTestFeed(fetcher, newFakeClock(), "https://sheet.example/a.csv")
	ctx := context.Background()

	_, err := f.Records(ctx)
	require.NoError(t, err)

	n, err := f.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, int32(2), fetcher.calls.Load())
}

func TestFeed_ConcurrentMissesShareOneFetch(t *testing.T) {
	fetcher := &scriptedFetcher{
		bodies:  []string{"name\na\n"},
		gate:    make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	f := newTestFeed(fetcher, newFakeClock(), "https://sheet.example/a.csv")

	const callers = 8
	var wg sync.WaitGroup
	results := make([][]item, callers)
	for i := range callers {
		wg.Go(func() {
			records, err := f.Records(context.Background())
			assert.NoError(t, err)
			results[i] = records
		})
	}

	<-fetcher.started
	time.Sleep(20 * time.Millisecond) // let the other callers join the flight
	close(fetcher.gate)
	wg.Wait()

	assert.Equal(t, int32(1), fetcher.calls.Load())
	for _, r := range results {
		assert.Equal(t, []item{{Name: "a"}}, r)
	}
}

func TestFeed_CallerCancellationDoesNotAbortSharedFetch(t *testing.T) {
	fetcher := &scriptedFetcher{
		bodies:  []string{"name\na\n"},
		gate:    make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	f := newTestFeed(fetcher, newFakeClock(), "https://sheet.example/a.csv")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := f.Records(ctx)
		done <- err
	}()

	<-fetcher.started
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	close(fetcher.gate)
	require.Eventually(t, func() bool { return f.Status().Records == 1 }, time.Second, 5*time.Millisecond)
}

func TestFeed_DownloadTimeout(t *testing.T) {
	fetcher := &scriptedFetcher{bodies: []string{"name\na\n"}, gate: make(chan struct{})}
	f := New(fetcher, decodeItems, Options{
		Name:    "slow",
		URL:     "https://sheet.example/a.csv",
		Timeout: 20 * time.Millisecond,
		Clock:   newFakeClock(),
	})

	_, err := f.Records(context.Background())
	var fe *domerrors.FetchError
	require.ErrorAs(t, err, &fe)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	close(fetcher.gate)
}

func TestFeed_EndToEndOverHTTP(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("name,other\nalpha,1\n,2\nbeta,3\n"))
	}))
	defer srv.Close()

	f := newTestFeed(NewClient(time.Second), newFakeClock(), srv.URL)
	records, err := f.Records(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []item{{Name: "alpha"}, {Name: "beta"}}, records)

	_, err = f.Records(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())
}
