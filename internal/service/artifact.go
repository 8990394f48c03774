package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/analytica/backend/internal/db"
	"github.com/analytica/backend/internal/model"
	"github.com/analytica/backend/internal/storage"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrPayloadMissing = errors.New("stored payload missing")
)

// lookupErr maps a scoped row lookup failure. A row owned by another
// account is indistinguishable from a missing one.
func lookupErr(err error) error {
	if db.IsNoRows(err) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
}

func storageErr(err error) error {
	return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
}

// loadBlob reads an artifact payload. A row whose payload is gone is
// reported as ErrPayloadMissing rather than a storage outage.
func loadBlob(ctx context.Context, blobs storage.BlobStore, key string, logger *zap.Logger) ([]byte, error) {
	data, err := blobs.Get(ctx, key)
	if errors.Is(err, storage.ErrBlobNotFound) {
		logger.Error("artifact row has no stored payload", zap.String("storage_key", key))
		return nil, fmt.Errorf("%w: %s", ErrPayloadMissing, key)
	}
	if err != nil {
		return nil, storageErr(err)
	}
	return data, nil
}

func requireUser(user *model.AuthUser) error {
	if user == nil || user.ID == 0 {
		return ErrInvalidCredentials
	}
	return nil
}

// dropBlob removes a payload whose row is already gone; failures only leak
// an orphaned object, so they are logged rather than returned.
func dropBlob(ctx context.Context, blobs storage.BlobStore, key string, logger *zap.Logger) {
	if key == "" {
		return
	}
	if err := blobs.Delete(ctx, key); err != nil {
		logger.Warn("failed to delete blob", zap.String("storage_key", key), zap.Error(err))
	}
}
