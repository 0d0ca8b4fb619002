package main

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"digests-ingest/core/domain"
)

// newEncoder writes JSON without HTML escaping so URLs and markup stay readable
func newEncoder(w io.Writer) *json.Encoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc
}

// writeIndented writes v as indented JSON followed by a newline
func writeIndented(w io.Writer, v interface{}) error {
	enc := newEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// jsonSink writes each batch as one JSON line
type jsonSink struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func newJSONSink(w io.Writer) *jsonSink {
	return &jsonSink{enc: newEncoder(w)}
}

func (s *jsonSink) Store(_ context.Context, batch *domain.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Encode(batch)
}
