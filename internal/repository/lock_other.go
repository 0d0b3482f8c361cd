//go:build !unix

package repository

import "context"

// Lock is a no-op where flock(2) is unavailable; callers still serialize
// within the process.
func (r *fileIdeaRepo) Lock(ctx context.Context, user string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return func() {}, nil
}
