package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/autonotes/internal/common"
	"github.com/dmitrijs2005/autonotes/internal/dbx"
	"github.com/dmitrijs2005/autonotes/internal/server/migrations"
	"github.com/dmitrijs2005/autonotes/internal/server/models"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// RunMigrations sets up goose with the embedded migrations and runs them.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

func (r *PostgresRepository) CreateWithImages(ctx context.Context, note *models.Note, images []*models.ImageRef) (*models.Note, error) {

	if len(images) == 0 {
		return nil, fmt.Errorf("%w: note must have at least one image", common.ErrValidation)
	}

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {

		noteQuery :=
			`INSERT INTO notes (id, owner_id, title, status, summary_text)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING created_at, updated_at
			`

		err := tx.QueryRowContext(ctx, noteQuery, note.ID, note.OwnerID, note.Title, note.Status, note.SummaryText).
			Scan(&note.CreatedAt, &note.UpdatedAt)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}

		imageQuery :=
			`INSERT INTO note_images (id, note_id, object_key, original_file_name, content_type, order_index, size_bytes)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			`

		for _, img := range images {
			_, err := tx.ExecContext(ctx, imageQuery, img.ID, img.NoteID, img.ObjectKey, img.OriginalFileName, img.ContentType, img.OrderIndex, img.SizeBytes)
			if err != nil {
				return fmt.Errorf("db error: %w", err)
			}
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	note.Images = images
	return note, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, ownerID, id string) (*models.Note, error) {

	query :=
		`SELECT id, owner_id, title, status, summary_text, created_at, updated_at
		FROM notes
		WHERE id = $1 AND owner_id = $2
		`

	return r.findOne(ctx, query, id, ownerID)
}

func (r *PostgresRepository) FindForProcessing(ctx context.Context, id string) (*models.Note, error) {

	query :=
		`SELECT id, owner_id, title, status, summary_text, created_at, updated_at
		FROM notes
		WHERE id = $1
		`

	return r.findOne(ctx, query, id)
}

func (r *PostgresRepository) findOne(ctx context.Context, query string, args ...any) (*models.Note, error) {

	note := &models.Note{}
	err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&note.ID, &note.OwnerID, &note.Title, &note.Status, &note.SummaryText, &note.CreatedAt, &note.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	images, err := r.loadImages(ctx, note.ID)
	if err != nil {
		return nil, err
	}
	note.Images = images

	return note, nil
}

func (r *PostgresRepository) loadImages(ctx context.Context, noteID string) ([]*models.ImageRef, error) {

	query :=
		`SELECT id, note_id, object_key, original_file_name, content_type, order_index, size_bytes
		FROM note_images
		WHERE note_id = $1
		ORDER BY order_index
		`

	rows, err := r.db.QueryContext(ctx, query, noteID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.ImageRef
	for rows.Next() {
		img := &models.ImageRef{}
		err := rows.Scan(&img.ID, &img.NoteID, &img.ObjectKey, &img.OriginalFileName, &img.ContentType, &img.OrderIndex, &img.SizeBytes)
		if err != nil {
			return nil, err
		}
		result = append(result, img)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Note, error) {

	query :=
		`SELECT id, owner_id, title, status, summary_text, created_at, updated_at
		FROM notes
		WHERE owner_id = $1
		ORDER BY created_at DESC
		`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Note
	for rows.Next() {
		note := &models.Note{}
		err := rows.Scan(&note.ID, &note.OwnerID, &note.Title, &note.Status, &note.SummaryText, &note.CreatedAt, &note.UpdatedAt)
		if err != nil {
			return nil, err
		}
		result = append(result, note)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, expected, next models.NoteStatus, summary string) error {

	query :=
		`UPDATE notes
		SET status = $1, summary_text = $2, updated_at = now()
		WHERE id = $3 AND status = $4
		`

	res, err := r.db.ExecContext(ctx, query, next, summary, id, expected)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}

	switch n {
	case 1:
		return nil
	case 0:
		// Either the record is gone or another writer already transitioned it.
		var one int
		err := r.db.QueryRowContext(ctx, `SELECT 1 FROM notes WHERE id = $1`, id).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		return common.ErrConflict
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

func (r *PostgresRepository) Delete(ctx context.Context, ownerID, id string) error {

	query := `DELETE FROM notes WHERE id = $1 AND owner_id = $2`

	res, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}

	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *PostgresRepository) IsReferenced(ctx context.Context, objectKey string) (bool, error) {

	query := `SELECT 1 FROM note_images WHERE object_key = $1 LIMIT 1`

	var one int
	err := r.db.QueryRowContext(ctx, query, objectKey).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return true, nil
}

func (r *PostgresRepository) ListStuck(ctx context.Context, olderThan time.Time, limit int) ([]string, error) {

	query :=
		`SELECT id FROM notes
		WHERE status = $1 AND updated_at < $2
		ORDER BY updated_at
		LIMIT $3
		`

	rows, err := r.db.QueryContext(ctx, query, models.StatusProcessing, olderThan, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}
