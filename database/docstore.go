package database

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no document exists under the
// requested collection and key.
var ErrNotFound = errors.New("document not found")

// UpdateFunc receives the raw current document (nil if it does not
// exist yet) and returns the replacement document to persist.
type UpdateFunc func(raw []byte) (any, error)

// DocumentStore is the persistence abstraction behind the analytics
// stores. Collections are slash-separated paths, so a hierarchical
// layout like "sessions/<id>/events" maps naturally onto it.
//
// Update must serialize read-modify-write cycles per document, so
// concurrent counter updates against the same session or product never
// lose an increment.
type DocumentStore interface {
	Put(ctx context.Context, collection, key string, doc any) error
	Get(ctx context.Context, collection, key string, out any) error
	List(ctx context.Context, collection string) ([][]byte, error)
	Keys(ctx context.Context, collection string) ([]string, error)
	Update(ctx context.Context, collection, key string, apply UpdateFunc) error
}
