// Package repo implements the domain repositories on PostgreSQL through the
// inline SQL runner.
package repo

import (
	"context"

	"deckgen/internal/domain"
	"deckgen/internal/infra"
	"deckgen/internal/sqlinline"
)

// ImageRepositoryPG implements domain.ImageRepository using PostgreSQL.
type ImageRepositoryPG struct {
	db infra.SQLExecutor
}

func NewImageRepository(db infra.SQLExecutor) *ImageRepositoryPG {
	return &ImageRepositoryPG{db: db}
}

// Replace removes any existing record for the slide and inserts the new one
// in a single statement.
func (r *ImageRepositoryPG) Replace(ctx context.Context, rec domain.ImageRecord) (domain.ImageRecord, error) {
	row := r.db.QueryRow(ctx, sqlinline.QImageReplace, rec.ID, rec.PresentationID, rec.SlideIndex, rec.URL)
	var stored domain.ImageRecord
	if err := row.Scan(&stored.ID, &stored.PresentationID, &stored.SlideIndex, &stored.URL, &stored.CreatedAt); err != nil {
		return domain.ImageRecord{}, err
	}
	return stored, nil
}

func (r *ImageRepositoryPG) DeleteForPresentation(ctx context.Context, presentationID string) error {
	_, err := r.db.Exec(ctx, sqlinline.QImageDeleteForPresentation, presentationID)
	return err
}

func (r *ImageRepositoryPG) ListForPresentation(ctx context.Context, presentationID string) ([]domain.ImageRecord, error) {
	rows, err := r.db.Query(ctx, sqlinline.QImageListForPresentation, presentationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.ImageRecord
	for rows.Next() {
		var rec domain.ImageRecord
		if err := rows.Scan(&rec.ID, &rec.PresentationID, &rec.SlideIndex, &rec.URL, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

var _ domain.ImageRepository = (*ImageRepositoryPG)(nil)
