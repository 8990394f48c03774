package db

import (
	"context"

	"github.com/analytica/backend/internal/model"
)

const tabularColumns = `id, user_id, tabular_name, storage_key, created_at`

func scanTabular(row interface{ Scan(...any) error }) (*model.Tabular, error) {
	var tab model.Tabular
	if err := row.Scan(&tab.ID, &tab.UserID, &tab.Name, &tab.StorageKey, &tab.CreatedAt); err != nil {
		return nil, err
	}
	return &tab, nil
}

func (db *Postgres) CreateTabular(ctx context.Context, userID int64, name, storageKey string) (*model.Tabular, error) {
	query := `
		INSERT INTO tabular_data (user_id, tabular_name, storage_key, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING ` + tabularColumns
	return scanTabular(db.Pool.QueryRow(ctx, query, userID, name, storageKey))
}

func (db *Postgres) GetTabular(ctx context.Context, userID, id int64) (*model.Tabular, error) {
	query := `SELECT ` + tabularColumns + ` FROM tabular_data WHERE id = $1 AND user_id = $2`
	return scanTabular(db.Pool.QueryRow(ctx, query, id, userID))
}

func (db *Postgres) ListTabular(ctx context.Context, userID int64) ([]model.Tabular, error) {
	query := `SELECT ` + tabularColumns + ` FROM tabular_data WHERE user_id = $1 ORDER BY id`
	rows, err := db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.Tabular
	for rows.Next() {
		tab, err := scanTabular(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *tab)
	}
	return items, rows.Err()
}

func (db *Postgres) UpdateTabular(ctx context.Context, tab *model.Tabular) error {
	query := `
		UPDATE tabular_data
		SET tabular_name = $3, storage_key = $4
		WHERE id = $1 AND user_id = $2
		RETURNING id
	`
	var id int64
	return db.Pool.QueryRow(ctx, query, tab.ID, tab.UserID, tab.Name, tab.StorageKey).Scan(&id)
}

func (db *Postgres) DeleteTabular(ctx context.Context, userID, id int64) (*model.Tabular, error) {
	query := `DELETE FROM tabular_data WHERE id = $1 AND user_id = $2 RETURNING ` + tabularColumns
	return scanTabular(db.Pool.QueryRow(ctx, query, id, userID))
}
