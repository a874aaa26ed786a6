package lookup

import (
	"context"
	"encoding/json"
	"strconv"
	"testing"

	"go.uber.org/zap"

	"github.com/charwatch/charwatch/internal/domain/search"
)

// mockSearcher implements the consumer interface for tests.
type mockSearcher struct {
	searchFn func(op string, s search.Search) search.Response
	calls    []search.Search
	ops      []string
}

func (m *mockSearcher) Search(_ context.Context, op string, s search.Search) search.Response {
	m.calls = append(m.calls, s)
	m.ops = append(m.ops, op)
	if m.searchFn != nil {
		return m.searchFn(op, s)
	}
	return search.Empty()
}

func newTestRepo(t *testing.T) (*Repo, *mockSearcher) {
	t.Helper()
	ms := &mockSearcher{}
	return New(ms, "public_characters_alias", zap.NewNop()), ms
}

// respWithDocs builds a single-result-set response carrying the given
// documents.
func respWithDocs(t *testing.T, docs ...map[string]any) search.Response {
	t.Helper()
	hits := make([]map[string]any, len(docs))
	for i, d := range docs {
		hits[i] = map[string]any{"document": d}
	}
	body, err := json.Marshal(map[string]any{
		"results": []map[string]any{{"hits": hits}},
	})
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	resp, err := search.Parse(body)
	if err != nil {
		t.Fatalf("parse response: %v", err)
	}
	return resp
}

// idsFromFilter decodes the JSON-array ID window out of a filter predicate.
func idsFromFilter(t *testing.T, filterBy string) []string {
	t.Helper()
	const prefix = "character_id:="
	if len(filterBy) <= len(prefix) || filterBy[:len(prefix)] != prefix {
		t.Fatalf("unexpected filter predicate %q", filterBy)
	}
	var ids []string
	if err := json.Unmarshal([]byte(filterBy[len(prefix):]), &ids); err != nil {
		t.Fatalf("decode filter window: %v", err)
	}
	return ids
}

func makeIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = "id-" + strconv.Itoa(i)
	}
	return ids
}
