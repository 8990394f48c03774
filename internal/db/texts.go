package db

import (
	"context"

	"github.com/pgvector/pgvector-go"

	"github.com/analytica/backend/internal/model"
)

const textColumns = `id, user_id, headline, text_body, model, created_at`

func scanText(row interface{ Scan(...any) error }) (*model.Text, error) {
	var text model.Text
	if err := row.Scan(&text.ID, &text.UserID, &text.Headline, &text.Body, &text.Model, &text.CreatedAt); err != nil {
		return nil, err
	}
	return &text, nil
}

// CreateText stores a document. vector may be nil when no embedder is configured.
func (db *Postgres) CreateText(ctx context.Context, userID int64, headline, body, modelName string, vector []float32) (*model.Text, error) {
	var embedding any
	var modelArg any
	if len(vector) > 0 {
		embedding = pgvector.NewVector(vector)
		modelArg = modelName
	}
	query := `
		INSERT INTO texts (user_id, headline, text_body, embedding, model, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING ` + textColumns
	return scanText(db.Pool.QueryRow(ctx, query, userID, headline, body, embedding, modelArg))
}

func (db *Postgres) GetText(ctx context.Context, userID, id int64) (*model.Text, error) {
	query := `SELECT ` + textColumns + ` FROM texts WHERE id = $1 AND user_id = $2`
	return scanText(db.Pool.QueryRow(ctx, query, id, userID))
}

func (db *Postgres) ListTexts(ctx context.Context, userID int64) ([]model.Text, error) {
	query := `SELECT ` + textColumns + ` FROM texts WHERE user_id = $1 ORDER BY id`
	rows, err := db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var texts []model.Text
	for rows.Next() {
		text, err := scanText(rows)
		if err != nil {
			return nil, err
		}
		texts = append(texts, *text)
	}
	return texts, rows.Err()
}

func (db *Postgres) DeleteText(ctx context.Context, userID, id int64) error {
	var deleted int64
	return db.Pool.QueryRow(ctx, `DELETE FROM texts WHERE id = $1 AND user_id = $2 RETURNING id`, id, userID).Scan(&deleted)
}

// SimilarTexts ranks the caller's other embedded documents by cosine distance
// to the document identified by id.
func (db *Postgres) SimilarTexts(ctx context.Context, userID, id int64, limit int) ([]model.SimilarTextResponse, error) {
	query := `
		SELECT t.id, t.headline, t.embedding <=> src.embedding AS distance
		FROM texts t
		JOIN texts src ON src.id = $1 AND src.user_id = $2
		WHERE t.user_id = $2
		  AND t.id <> src.id
		  AND t.embedding IS NOT NULL
		  AND src.embedding IS NOT NULL
		  AND vector_dims(t.embedding) = vector_dims(src.embedding)
		ORDER BY distance
		LIMIT $3
	`
	rows, err := db.Pool.Query(ctx, query, id, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.SimilarTextResponse
	for rows.Next() {
		var item model.SimilarTextResponse
		if err := rows.Scan(&item.ID, &item.Headline, &item.Distance); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}
