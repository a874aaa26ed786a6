package search

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// Response is a multi-search response body. The remote payload is treated as
// untrusted, partially-shaped data: every accessor tolerates absent keys and
// wrong types, so callers never need to guard individual field reads.
type Response struct {
	raw map[string]any
}

// Parse decodes a response body. It fails if the body is not a JSON object;
// any object, even an empty one, is accepted.
func Parse(data []byte) (Response, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Response{}, err
	}
	return Response{raw: raw}, nil
}

// Empty returns a well-formed response with zero hits. The transport falls
// back to it after exhausting retries, so callers can treat every response
// uniformly.
func Empty() Response {
	return Response{}
}

// FirstHits returns the hits of the first result set, or nil when the
// response carries no results. Multi-search sends one search per call, so
// only the first result set is ever meaningful.
func (r Response) FirstHits() []Hit {
	results, ok := r.raw["results"].([]any)
	if !ok || len(results) == 0 {
		return nil
	}
	first, ok := results[0].(map[string]any)
	if !ok {
		return nil
	}
	rawHits, ok := first["hits"].([]any)
	if !ok {
		return nil
	}
	hits := make([]Hit, 0, len(rawHits))
	for _, h := range rawHits {
		m, ok := h.(map[string]any)
		if !ok {
			continue
		}
		hits = append(hits, Hit{raw: m})
	}
	return hits
}

// Hit is one matched document wrapped with match metadata.
type Hit struct {
	raw map[string]any
}

// Document returns the hit's document mapping. Never nil-panics: a hit
// without a document yields an empty Document.
func (h Hit) Document() Document {
	doc, ok := h.raw["document"].(map[string]any)
	if !ok {
		return Document{}
	}
	return Document{raw: doc}
}

// Document is a field-name to value mapping. Unknown fields are ignored by
// construction; accessors return zero values for absent or mistyped fields.
type Document struct {
	raw map[string]any
}

// NewDocument wraps a raw field mapping (used by tests and converters).
func NewDocument(fields map[string]any) Document {
	return Document{raw: fields}
}

// ID returns the document's character_id coerced to a trimmed string.
// An empty result disqualifies the document from contributing to any output.
func (d Document) ID() string {
	return strings.TrimSpace(coerceString(d.raw["character_id"]))
}

// Str returns a string field, or "" when absent or not a string-like value.
func (d Document) Str(key string) string {
	return coerceString(d.raw[key])
}

// Strings returns a string-list field, or nil when absent or mistyped.
// Non-string elements are skipped.
func (d Document) Strings(key string) []string {
	items, ok := d.raw[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Int64 returns a numeric field truncated to int64, or 0 when absent.
func (d Document) Int64(key string) int64 {
	f, ok := d.Float(key)
	if !ok {
		return 0
	}
	return int64(f)
}

// Float returns a numeric field. The second return is false when the field
// is absent or not coercible to a number.
func (d Document) Float(key string) (float64, bool) {
	switch v := d.raw[key].(type) {
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Bool returns a boolean field, false when absent or mistyped.
func (d Document) Bool(key string) bool {
	b, ok := d.raw[key].(bool)
	return ok && b
}

// Value returns the raw field value and whether it is present.
func (d Document) Value(key string) (any, bool) {
	v, ok := d.raw[key]
	return v, ok
}

// Keys returns the document's field names, sorted. Used for the one-time
// schema diagnostic log.
func (d Document) Keys() []string {
	keys := make([]string, 0, len(d.raw))
	for k := range d.raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// coerceString stringifies the scalar shapes the remote index is known to
// emit for ID-like fields.
func coerceString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		// IDs occasionally arrive as numbers; render integral values without
		// a fractional part.
		if s == float64(int64(s)) {
			return strconv.FormatInt(int64(s), 10)
		}
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return ""
	}
}
