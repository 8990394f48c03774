package db

import (
	"context"

	"github.com/analytica/backend/internal/storage"
)

// BlobStore keeps artifact payloads in the blobs table.
type BlobStore struct {
	db *Postgres
}

var _ storage.BlobStore = (*BlobStore)(nil)

func NewBlobStore(db *Postgres) *BlobStore {
	return &BlobStore{db: db}
}

func (s *BlobStore) Put(ctx context.Context, key, contentType string, data []byte) error {
	query := `
		INSERT INTO blobs (storage_key, content_type, data, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (storage_key) DO UPDATE SET content_type = EXCLUDED.content_type, data = EXCLUDED.data
	`
	_, err := s.db.Pool.Exec(ctx, query, key, contentType, data)
	return err
}

func (s *BlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.db.Pool.QueryRow(ctx, `SELECT data FROM blobs WHERE storage_key = $1`, key).Scan(&data)
	if err != nil {
		if IsNoRows(err) {
			return nil, storage.ErrBlobNotFound
		}
		return nil, err
	}
	return data, nil
}

func (s *BlobStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.Pool.Exec(ctx, `DELETE FROM blobs WHERE storage_key = $1`, key)
	return err
}
