package db

import (
	"context"

	"github.com/analytica/backend/internal/model"
)

const imageColumns = `id, user_id, image_name, storage_key, created_at`

func scanImage(row interface{ Scan(...any) error }) (*model.Image, error) {
	var img model.Image
	if err := row.Scan(&img.ID, &img.UserID, &img.Name, &img.StorageKey, &img.CreatedAt); err != nil {
		return nil, err
	}
	return &img, nil
}

func (db *Postgres) CreateImage(ctx context.Context, userID int64, name, storageKey string) (*model.Image, error) {
	query := `
		INSERT INTO images (user_id, image_name, storage_key, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING ` + imageColumns
	return scanImage(db.Pool.QueryRow(ctx, query, userID, name, storageKey))
}

func (db *Postgres) GetImage(ctx context.Context, userID, id int64) (*model.Image, error) {
	query := `SELECT ` + imageColumns + ` FROM images WHERE id = $1 AND user_id = $2`
	return scanImage(db.Pool.QueryRow(ctx, query, id, userID))
}

func (db *Postgres) ListImages(ctx context.Context, userID int64) ([]model.Image, error) {
	query := `SELECT ` + imageColumns + ` FROM images WHERE user_id = $1 ORDER BY id`
	rows, err := db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []model.Image
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		images = append(images, *img)
	}
	return images, rows.Err()
}

func (db *Postgres) UpdateImage(ctx context.Context, img *model.Image) error {
	query := `
		UPDATE images
		SET image_name = $3, storage_key = $4
		WHERE id = $1 AND user_id = $2
		RETURNING id
	`
	var id int64
	return db.Pool.QueryRow(ctx, query, img.ID, img.UserID, img.Name, img.StorageKey).Scan(&id)
}

// DeleteImage removes the caller's row and returns it so the blob can be dropped.
func (db *Postgres) DeleteImage(ctx context.Context, userID, id int64) (*model.Image, error) {
	query := `DELETE FROM images WHERE id = $1 AND user_id = $2 RETURNING ` + imageColumns
	return scanImage(db.Pool.QueryRow(ctx, query, id, userID))
}
