package store

import (
	"time"

	"github.com/google/uuid"
)

type options struct {
	now   func() time.Time
	newID func() string
}

// Option customizes a store.
type Option func(*options)

// WithClock sets the time source used for AddedAt.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator sets the cart item ID generator.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) { o.newID = fn }
}

func buildOptions(opts []Option) options {
	o := options{
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
