// Package storage holds artifact payloads (uploaded images and CSV files)
// outside the metadata tables.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrBlobNotFound = errors.New("blob not found")

type BlobStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// NewKey returns a fresh key partitioned by owner and upload day.
func NewKey(userID int64, kind string) string {
	d := time.Now().UTC()
	return fmt.Sprintf("users/%d/%s/%04d/%02d/%02d/%s", userID, kind, d.Year(), d.Month(), d.Day(), uuid.NewString())
}
