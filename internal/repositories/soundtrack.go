package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/downbeats/internal/models"
)

// SoundtrackRepository persists [models.Soundtrack] rows.
type SoundtrackRepository struct {
	db *sql.DB
}

// NewSoundtrackRepository creates a new SoundtrackRepository with the given database connection
func NewSoundtrackRepository(db *sql.DB) *SoundtrackRepository {
	return &SoundtrackRepository{db: db}
}

const soundtrackSelect = `SELECT id, title, description, url, thumbnail, category_id, subcategory_id FROM soundtracks`

func scanSoundtrack(row rowScanner) (*models.Soundtrack, error) {
	var (
		st          models.Soundtrack
		thumbnail   sql.NullString
		subcategory sql.NullInt64
	)
	if err := row.Scan(&st.ID, &st.Title, &st.Description, &st.URL, &thumbnail, &st.Category, &subcategory); err != nil {
		return nil, err
	}
	st.Thumbnail = stringPtr(thumbnail)
	st.Subcategory = intPtr(subcategory)
	return &st, nil
}

// validateOwner checks that the category exists and that the subcategory, when set, belongs to it.
func (r *SoundtrackRepository) validateOwner(ctx context.Context, categoryID int64, subcategoryID *int64) error {
	found, err := exists(ctx, r.db, "categories", categoryID)
	if err != nil {
		return err
	}
	if !found {
		return invalid("category", "Category %d does not exist", categoryID)
	}

	if subcategoryID == nil {
		return nil
	}

	var owner int64
	err = r.db.QueryRowContext(ctx, `SELECT category_id FROM subcategories WHERE id = ?`, *subcategoryID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return invalid("subcategory", "Subcategory %d does not exist", *subcategoryID)
	}
	if err != nil {
		return fmt.Errorf("failed to check subcategory: %w", err)
	}
	if owner != categoryID {
		return invalid("subcategory", "Subcategory %d does not belong to category %d", *subcategoryID, categoryID)
	}
	return nil
}

// Create inserts a soundtrack and sets its ID.
func (r *SoundtrackRepository) Create(ctx context.Context, st *models.Soundtrack) error {
	if err := r.validateOwner(ctx, st.Category, st.Subcategory); err != nil {
		return err
	}

	query := `
		INSERT INTO soundtracks (category_id, subcategory_id, title, description, url, thumbnail, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now()
	result, err := r.db.ExecContext(ctx, query,
		st.Category, nullInt(st.Subcategory), st.Title, st.Description, st.URL, nullString(st.Thumbnail), now, now)
	if err != nil {
		return fmt.Errorf("failed to insert soundtrack: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get soundtrack id: %w", err)
	}
	st.ID = id
	return nil
}

// Get retrieves a soundtrack by ID.
func (r *SoundtrackRepository) Get(ctx context.Context, id int64) (*models.Soundtrack, error) {
	st, err := scanSoundtrack(r.db.QueryRowContext(ctx, soundtrackSelect+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("soundtrack", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan soundtrack: %w", err)
	}
	return st, nil
}

// ListByCategory returns the soundtracks attached directly to a category, outside any subcategory.
func (r *SoundtrackRepository) ListByCategory(ctx context.Context, categoryID int64) ([]models.Soundtrack, error) {
	return r.list(ctx, " WHERE category_id = ? AND subcategory_id IS NULL ORDER BY id ASC", categoryID)
}

// ListBySubcategory returns the soundtracks attached directly to a subcategory.
func (r *SoundtrackRepository) ListBySubcategory(ctx context.Context, subcategoryID int64) ([]models.Soundtrack, error) {
	return r.list(ctx, " WHERE subcategory_id = ? ORDER BY id ASC", subcategoryID)
}

func (r *SoundtrackRepository) list(ctx context.Context, where string, args ...any) ([]models.Soundtrack, error) {
	rows, err := r.db.QueryContext(ctx, soundtrackSelect+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query soundtracks: %w", err)
	}
	defer rows.Close()

	tracks := []models.Soundtrack{}
	for rows.Next() {
		st, err := scanSoundtrack(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan soundtrack: %w", err)
		}
		tracks = append(tracks, *st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return tracks, nil
}

// Update replaces the soundtrack's fields. A nil Thumbnail keeps the stored one.
func (r *SoundtrackRepository) Update(ctx context.Context, st *models.Soundtrack) error {
	found, err := exists(ctx, r.db, "soundtracks", st.ID)
	if err != nil {
		return err
	}
	if !found {
		return notFound("soundtrack", st.ID)
	}

	if err := r.validateOwner(ctx, st.Category, st.Subcategory); err != nil {
		return err
	}

	query := `
		UPDATE soundtracks
		SET title = ?, description = ?, url = ?, category_id = ?, subcategory_id = ?,
			thumbnail = COALESCE(?, thumbnail), updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		st.Title, st.Description, st.URL, st.Category, nullInt(st.Subcategory), nullString(st.Thumbnail), time.Now(), st.ID)
	if err != nil {
		return fmt.Errorf("failed to update soundtrack: %w", err)
	}
	if err := checkAffected(result, "soundtrack", st.ID); err != nil {
		return err
	}

	stored, err := r.Get(ctx, st.ID)
	if err != nil {
		return err
	}
	st.Thumbnail = stored.Thumbnail
	return nil
}

// Delete removes a soundtrack.
func (r *SoundtrackRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM soundtracks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete soundtrack: %w", err)
	}
	return checkAffected(result, "soundtrack", id)
}
