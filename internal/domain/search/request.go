// Package search defines the multi-search wire types: the request payload
// sent to the hosted index and the tolerant response wrappers read back.
package search

import "encoding/json"

// Search is one search inside a multi-search payload. The remote endpoint
// accepts a list, but this client always sends exactly one search per call.
type Search struct {
	Collection        string `json:"collection"`
	Query             string `json:"q"`
	QueryBy           string `json:"query_by"`
	FilterBy          string `json:"filter_by,omitempty"`
	IncludeFields     string `json:"include_fields,omitempty"`
	Page              int    `json:"page"`
	PerPage           int    `json:"per_page"`
	SortBy            string `json:"sort_by,omitempty"`
	FacetBy           string `json:"facet_by,omitempty"`
	MaxFacetValues    int    `json:"max_facet_values,omitempty"`
	HighlightFields   string `json:"highlight_fields,omitempty"`
	EnableHighlightV1 bool   `json:"enable_highlight_v1"`
	UseCache          bool   `json:"use_cache,omitempty"`
}

// Payload is the multi-search request body.
type Payload struct {
	Searches []Search `json:"searches"`
}

// NewPayload wraps a single search into a multi-search payload.
func NewPayload(s Search) Payload {
	return Payload{Searches: []Search{s}}
}

// IDFilter builds a filter predicate matching any of the given IDs on the
// character_id field, encoding the ID window as a JSON array.
func IDFilter(ids []string) string {
	encoded, err := json.Marshal(ids)
	if err != nil {
		// []string marshaling cannot fail; keep the predicate well-formed anyway.
		return `character_id:=[]`
	}
	return "character_id:=" + string(encoded)
}
