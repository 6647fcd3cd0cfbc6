package cache

import (
	"context"
	"time"
)

// NullCache drops every write, so each Get is a miss. The CLI uses it for
// --no-cache and for graphs read from local files.
type NullCache struct{}

// NewNullCache returns a [NullCache].
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }
