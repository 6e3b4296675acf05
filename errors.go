package msgcache

import (
	"errors"
	"fmt"

	"github.com/hupe1980/msgcache/internal/waitq"
)

var (
	// ErrClosed is returned when operating on a closed cache.
	ErrClosed = errors.New("cache is closed")

	// ErrInvalidCapacity is returned when constructing a cache with a
	// non-positive capacity.
	ErrInvalidCapacity = errors.New("capacity must be positive")

	// ErrInvalidSize is returned by the blocking allocation path for a
	// non-positive slot size.
	ErrInvalidSize = errors.New("slot size must be positive")
)

// ErrTooLarge indicates a request that no release could ever satisfy:
// it exceeds the per-slot limit of the cache.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrTooLarge struct {
	Requested int
	Limit     int
	cause     error
}

func (e *ErrTooLarge) Error() string {
	return fmt.Sprintf("request of %d bytes exceeds the per-slot limit of %d", e.Requested, e.Limit)
}

func (e *ErrTooLarge) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, waitq.ErrClosed) {
		return fmt.Errorf("%w: %w", ErrClosed, err)
	}

	return err
}
