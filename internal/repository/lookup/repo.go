// Package lookup resolves per-document attributes (tags, ratings,
// created_at) for arbitrary ID lists by chunked point queries against the
// hosted index.
package lookup

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/charwatch/charwatch/internal/domain/search"
)

// chunkSize is the ID window per remote call.
const chunkSize = 80

const lookupQueryBy = "name,title,tags,character_id"

// searcher is the consumer interface for the multi-search transport.
type searcher interface {
	Search(ctx context.Context, op string, s search.Search) search.Response
}

// Repo performs batched attribute lookups.
type Repo struct {
	ts         searcher
	collection string
	logger     *zap.Logger
	schemaOnce sync.Once
}

// New creates a lookup repository querying the given collection for tag and
// rating lookups. created_at lookups take their own collection list per call.
func New(ts searcher, collection string, logger *zap.Logger) *Repo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repo{ts: ts, collection: collection, logger: logger}
}

// Tags resolves ID → tag list. IDs the index cannot resolve are absent from
// the result, never mapped to an empty list.
func (r *Repo) Tags(ctx context.Context, ids []string) map[string][]string {
	ids = sanitizeIDs(ids)
	if len(ids) == 0 {
		return map[string][]string{}
	}

	out := make(map[string][]string)
	for _, chunk := range chunks(ids) {
		resp := r.ts.Search(ctx, "lookup_tags", search.Search{
			Collection:      r.collection,
			Query:           "*",
			QueryBy:         lookupQueryBy,
			FilterBy:        search.IDFilter(chunk),
			IncludeFields:   "character_id,tags",
			PerPage:         len(chunk),
			Page:            1,
			HighlightFields: "none",
		})
		for _, h := range resp.FirstHits() {
			doc := h.Document()
			r.logSchemaOnce(doc)
			cid := doc.ID()
			if cid == "" {
				continue
			}
			tags := doc.Strings("tags")
			if tags == nil {
				tags = []string{}
			}
			out[cid] = tags
		}
	}

	r.logger.Info("Fetched tags by ID",
		zap.Int("resolved", len(out)), zap.Int("requested", len(ids)))
	return out
}

// Ratings resolves ID → rating score. A present key with a nil value means
// the index resolved the ID but carried no usable numeric rating; an absent
// key means the ID was not resolved at all.
func (r *Repo) Ratings(ctx context.Context, ids []string) map[string]*float64 {
	ids = sanitizeIDs(ids)
	if len(ids) == 0 {
		return map[string]*float64{}
	}

	out := make(map[string]*float64)
	for _, chunk := range chunks(ids) {
		resp := r.ts.Search(ctx, "lookup_ratings", search.Search{
			Collection:      r.collection,
			Query:           "*",
			QueryBy:         lookupQueryBy,
			FilterBy:        search.IDFilter(chunk),
			IncludeFields:   "character_id,rating_score",
			PerPage:         len(chunk),
			Page:            1,
			HighlightFields: "none",
		})
		for _, h := range resp.FirstHits() {
			doc := h.Document()
			r.logSchemaOnce(doc)
			cid := doc.ID()
			if cid == "" {
				continue
			}
			if f, ok := doc.Float("rating_score"); ok {
				out[cid] = &f
			} else {
				out[cid] = nil
			}
		}
	}

	r.logger.Info("Fetched ratings by ID",
		zap.Int("resolved", len(out)), zap.Int("requested", len(ids)))
	return out
}

// CreatedAt resolves ID → raw created_at scalar, consulting collections in
// priority order: each collection is only queried for IDs the earlier ones
// left unresolved, and iteration stops once nothing remains.
func (r *Repo) CreatedAt(ctx context.Context, ids, collections []string) map[string]any {
	ids = sanitizeIDs(ids)
	if len(ids) == 0 {
		r.logger.Info("created_at lookup: no IDs provided")
		return map[string]any{}
	}

	r.logger.Info("created_at lookup start", zap.Int("ids", len(ids)))

	out := make(map[string]any)
	for _, coll := range collections {
		remaining := make([]string, 0, len(ids))
		for _, id := range ids {
			if _, done := out[id]; !done {
				remaining = append(remaining, id)
			}
		}
		if len(remaining) == 0 {
			break
		}

		r.logger.Info("created_at lookup: trying collection",
			zap.String("collection", coll), zap.Int("remaining", len(remaining)))

		for i, chunk := range chunks(remaining) {
			resp := r.ts.Search(ctx, "lookup_created_at", search.Search{
				Collection:      coll,
				Query:           "*",
				QueryBy:         "character_id",
				FilterBy:        search.IDFilter(chunk),
				IncludeFields:   "character_id,created_at",
				PerPage:         len(chunk),
				Page:            1,
				HighlightFields: "none",
			})
			hits := resp.FirstHits()
			r.logger.Debug("created_at lookup chunk",
				zap.String("collection", coll),
				zap.Int("chunk", i+1),
				zap.Int("ids", len(chunk)),
				zap.Int("hits", len(hits)))

			for _, h := range hits {
				doc := h.Document()
				r.logSchemaOnce(doc)
				cid := doc.ID()
				if cid == "" {
					continue
				}
				if ca, ok := doc.Value("created_at"); ok && !isEmptyScalar(ca) {
					out[cid] = ca
				}
			}
		}

		r.logger.Info("created_at lookup: collection done",
			zap.String("collection", coll), zap.Int("accumulated", len(out)))
	}

	r.logger.Info("created_at lookup complete",
		zap.Int("resolved", len(out)), zap.Int("requested", len(ids)))
	return out
}

// logSchemaOnce logs the observed document field names the first time any
// hit is seen, as a diagnostic aid against upstream schema drift.
func (r *Repo) logSchemaOnce(doc search.Document) {
	r.schemaOnce.Do(func() {
		r.logger.Info("Observed document fields", zap.Strings("keys", doc.Keys()))
	})
}

// sanitizeIDs drops empty entries, preserving order.
func sanitizeIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}

// chunks slices ids into fixed windows of chunkSize.
func chunks(ids []string) [][]string {
	var out [][]string
	for start := 0; start < len(ids); start += chunkSize {
		end := start + chunkSize
		if end > len(ids) {
			end = len(ids)
		}
		out = append(out, ids[start:end])
	}
	return out
}

// isEmptyScalar mirrors the "skip falsy created_at" rule: nil, empty string,
// and numeric zero do not count as a resolved timestamp.
func isEmptyScalar(v any) bool {
	switch s := v.(type) {
	case nil:
		return true
	case string:
		return s == ""
	case float64:
		return s == 0
	default:
		return false
	}
}
