package typesense

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/charwatch/charwatch/internal/domain/search"
)

type sleepRecorder struct {
	delays []time.Duration
}

func (s *sleepRecorder) sleep(d time.Duration) {
	s.delays = append(s.delays, d)
}

func newTestClient(t *testing.T, endpoint string) (*Client, *sleepRecorder) {
	t.Helper()
	rec := &sleepRecorder{}
	c := New(Config{
		Endpoint: endpoint,
		APIKey:   "test-key",
		Sleep:    rec.sleep,
		Logger:   zap.NewNop(),
	})
	return c, rec
}

func testSearch() search.Search {
	return search.Search{
		Collection: "public_characters_alias",
		Query:      "*",
		QueryBy:    "character_id",
		Page:       1,
		PerPage:    10,
	}
}

func TestSearch_SucceedsFirstAttempt(t *testing.T) {
	var calls int
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		gotKey = r.Header.Get(APIKeyHeader)
		_, _ = w.Write([]byte(`{"results":[{"hits":[{"document":{"character_id":"abc"}}]}]}`))
	}))
	defer srv.Close()

	c, rec := newTestClient(t, srv.URL)
	resp := c.Search(context.Background(), "test", testSearch())

	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
	if gotKey != "test-key" {
		t.Errorf("expected API key header, got %q", gotKey)
	}
	hits := resp.FirstHits()
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	if id := hits[0].Document().ID(); id != "abc" {
		t.Errorf("expected hit id abc, got %q", id)
	}
	if len(rec.delays) != 0 {
		t.Errorf("expected no backoff sleeps, got %v", rec.delays)
	}
}

func TestSearch_FailTwiceThenSucceed(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"results":[{"hits":[{"document":{"character_id":"x1"}}]}]}`))
	}))
	defer srv.Close()

	c, rec := newTestClient(t, srv.URL)
	resp := c.Search(context.Background(), "test", testSearch())

	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
	if len(resp.FirstHits()) != 1 {
		t.Fatalf("expected the 3rd-attempt result to be returned")
	}
	want := []time.Duration{2 * time.Second, 2 * time.Second}
	if len(rec.delays) != len(want) {
		t.Fatalf("expected %d sleeps, got %v", len(want), rec.delays)
	}
	for i, d := range want {
		if rec.delays[i] != d {
			t.Errorf("sleep %d: expected %v, got %v", i, d, rec.delays[i])
		}
	}
}

func TestSearch_AlwaysRateLimited(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, rec := newTestClient(t, srv.URL)
	resp := c.Search(context.Background(), "test", testSearch())

	if calls != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", calls)
	}
	if hits := resp.FirstHits(); len(hits) != 0 {
		t.Fatalf("expected empty response after exhaustion, got %d hits", len(hits))
	}
	want := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
	if len(rec.delays) != len(want) {
		t.Fatalf("expected exponential backoff %v, got %v", want, rec.delays)
	}
	for i, d := range want {
		if rec.delays[i] != d {
			t.Errorf("sleep %d: expected %v, got %v", i, d, rec.delays[i])
		}
	}
}

func TestSearch_MalformedBodyRetriesWithFlatBackoff(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(`this is not json`))
	}))
	defer srv.Close()

	c, rec := newTestClient(t, srv.URL)
	resp := c.Search(context.Background(), "test", testSearch())

	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
	if len(resp.FirstHits()) != 0 {
		t.Fatal("expected empty response")
	}
	for i, d := range rec.delays {
		if d != 2*time.Second {
			t.Errorf("sleep %d: expected flat 2s backoff, got %v", i, d)
		}
	}
}

func TestSearch_NonArrayBodyIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[1,2,3]`))
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL)
	resp := c.Search(context.Background(), "test", testSearch())
	if len(resp.FirstHits()) != 0 {
		t.Fatal("expected empty response for a non-object body")
	}
}

func TestSearch_NetworkErrorDegradesToEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // immediate refusal on every dial

	c, rec := newTestClient(t, srv.URL)
	resp := c.Search(context.Background(), "test", testSearch())

	if len(resp.FirstHits()) != 0 {
		t.Fatal("expected empty response")
	}
	if len(rec.delays) != 3 {
		t.Fatalf("expected 3 backoff sleeps, got %d", len(rec.delays))
	}
}
