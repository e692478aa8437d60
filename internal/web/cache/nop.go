package cache

import (
	"context"
	"time"
)

// Nop is a Cache that stores nothing. Every Get misses.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, error) { return nil, ErrMiss }

func (Nop) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (Nop) Delete(context.Context, string) error { return nil }

func (Nop) Close() error { return nil }
