// Package store persists chat transcripts.
package store

import (
	"context"

	"go.uber.org/multierr"

	"github.com/autodocx/relay-api/internal/model"
)

// Store appends chat messages to a transcript backend.
type Store interface {
	Insert(ctx context.Context, msg *model.ChatMessage) error
	Ping(ctx context.Context) error
	Close() error
}

// Multi writes every message to all of its stores. A failing store does
// not stop the others; the returned error combines every failure.
type Multi struct {
	stores []Store
}

// NewMulti combines stores, skipping nil entries.
func NewMulti(stores ...Store) *Multi {
	m := &Multi{}
	for _, s := range stores {
		if s != nil {
			m.stores = append(m.stores, s)
		}
	}
	return m
}

// Len returns the number of wrapped stores.
func (m *Multi) Len() int {
	return len(m.stores)
}

func (m *Multi) Insert(ctx context.Context, msg *model.ChatMessage) error {
	var err error
	for _, s := range m.stores {
		err = multierr.Append(err, s.Insert(ctx, msg))
	}
	return err
}

func (m *Multi) Ping(ctx context.Context) error {
	var err error
	for _, s := range m.stores {
		err = multierr.Append(err, s.Ping(ctx))
	}
	return err
}

func (m *Multi) Close() error {
	var err error
	for _, s := range m.stores {
		err = multierr.Append(err, s.Close())
	}
	return err
}
