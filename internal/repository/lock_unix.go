//go:build unix

package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"
)

// lockRetryInterval is how often a contended document lock is retried
const lockRetryInterval = 10 * time.Millisecond

// Lock takes an advisory flock(2) on <document>.lock. The lock is held by the
// open file, so a crashed process never leaves it behind.
func (r *fileIdeaRepo) Lock(ctx context.Context, user string) (func(), error) {
	f, err := os.OpenFile(r.Path(user)+lockExt, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	ticker := time.NewTicker(lockRetryInterval)
	defer ticker.Stop()
	for {
		err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
		if err == nil {
			return func() {
				_ = syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
				f.Close()
			}, nil
		}
		if !errors.Is(err, syscall.EWOULDBLOCK) {
			f.Close()
			return nil, fmt.Errorf("lock ideas document: %w", err)
		}
		select {
		case <-ctx.Done():
			f.Close()
			return nil, fmt.Errorf("lock ideas document: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}
