package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"pontual-runner/internal/store"
)

var openSQLite = store.OpenSQLite

// openStoreWithRetry opens the local state database, retrying briefly: on a
// fresh device the file may live on storage that is still mounting.
func openStoreWithRetry(ctx context.Context, path string, retries int, delay time.Duration) (*store.SQLite, error) {
	var lastErr error
	for i := 1; i <= retries; i++ {
		st, err := openSQLite(path)
		if err == nil {
			log.Printf("state store opened on attempt %d", i)
			return st, nil
		}
		lastErr = err
		log.Printf("state store open failed (attempt %d/%d): %v", i, retries, err)
		if i < retries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return nil, fmt.Errorf("state store open failed after %d attempts: %w", retries, lastErr)
}
