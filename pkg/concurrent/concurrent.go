package concurrent

import (
	"context"

	"github.com/zeusync/compose/pkg/sequence"
	"golang.org/x/sync/errgroup"
)

// ForEach runs action for every element of the iterator, at most limit at a
// time (limit <= 0 means unbounded). The context handed to action is
// cancelled as soon as one action fails; ForEach returns the first error.
func ForEach[T any](ctx context.Context, i *sequence.Iterator[T], limit int, action func(context.Context, T) error) error {
	group, groupCtx := errgroup.WithContext(ctx)
	if limit > 0 {
		group.SetLimit(limit)
	}

	for value := range i.Seq() {
		if groupCtx.Err() != nil {
			break
		}
		group.Go(func() error {
			return action(groupCtx, value)
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// Concurrent runs action for each element in its own goroutine and returns
// the first error encountered.
func Concurrent[T any](i *sequence.Iterator[T], action func(T) error) error {
	return ForEach(context.Background(), i, 0, func(_ context.Context, value T) error {
		return action(value)
	})
}
