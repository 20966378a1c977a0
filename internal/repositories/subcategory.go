package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/downbeats/internal/models"
)

// SubcategoryRepository persists [models.Subcategory] rows. Nested Subcategories and Soundtracks
// are never populated here; callers assemble one level with ListChildren and the soundtrack repository.
type SubcategoryRepository struct {
	db *sql.DB
}

// NewSubcategoryRepository creates a new SubcategoryRepository with the given database connection
func NewSubcategoryRepository(db *sql.DB) *SubcategoryRepository {
	return &SubcategoryRepository{db: db}
}

const subcategorySelect = `
	SELECT s.id, s.name, s.description, s.category_id, c.name, s.thumbnail, s.parent_id, COALESCE(p.name, '')
	FROM subcategories s
	JOIN categories c ON c.id = s.category_id
	LEFT JOIN subcategories p ON p.id = s.parent_id
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubcategory(row rowScanner) (*models.Subcategory, error) {
	var (
		s         models.Subcategory
		thumbnail sql.NullString
		parent    sql.NullInt64
	)
	if err := row.Scan(&s.ID, &s.Name, &s.Description, &s.Category, &s.CategoryName, &thumbnail, &parent, &s.ParentName); err != nil {
		return nil, err
	}
	s.Thumbnail = stringPtr(thumbnail)
	s.Parent = intPtr(parent)
	return &s, nil
}

// validateOwner checks that the category exists and that the parent, when set, belongs to it.
func (r *SubcategoryRepository) validateOwner(ctx context.Context, q querier, categoryID int64, parentID *int64) error {
	found, err := exists(ctx, q, "categories", categoryID)
	if err != nil {
		return err
	}
	if !found {
		return invalid("category", "Category %d does not exist", categoryID)
	}

	if parentID == nil {
		return nil
	}

	var parentCategory int64
	err = q.QueryRowContext(ctx, `SELECT category_id FROM subcategories WHERE id = ?`, *parentID).Scan(&parentCategory)
	if errors.Is(err, sql.ErrNoRows) {
		return invalid("subcategory", "Subcategory %d does not exist", *parentID)
	}
	if err != nil {
		return fmt.Errorf("failed to check parent subcategory: %w", err)
	}
	if parentCategory != categoryID {
		return invalid("subcategory", "Subcategory %d does not belong to category %d", *parentID, categoryID)
	}
	return nil
}

// Create inserts a subcategory and sets its ID.
func (r *SubcategoryRepository) Create(ctx context.Context, s *models.Subcategory) error {
	if err := r.validateOwner(ctx, r.db, s.Category, s.Parent); err != nil {
		return err
	}

	query := `
		INSERT INTO subcategories (category_id, parent_id, name, description, thumbnail, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now()
	result, err := r.db.ExecContext(ctx, query, s.Category, nullInt(s.Parent), s.Name, s.Description, nullString(s.Thumbnail), now, now)
	if err != nil {
		return fmt.Errorf("failed to insert subcategory: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get subcategory id: %w", err)
	}
	s.ID = id
	return nil
}

// Get retrieves a subcategory by ID with its denormalized category and parent names.
func (r *SubcategoryRepository) Get(ctx context.Context, id int64) (*models.Subcategory, error) {
	s, err := scanSubcategory(r.db.QueryRowContext(ctx, subcategorySelect+" WHERE s.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("subcategory", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan subcategory: %w", err)
	}
	return s, nil
}

// ListTopLevel returns the subcategories of a category that have no parent.
func (r *SubcategoryRepository) ListTopLevel(ctx context.Context, categoryID int64) ([]models.Subcategory, error) {
	return r.list(ctx, " WHERE s.category_id = ? AND s.parent_id IS NULL ORDER BY s.id ASC", categoryID)
}

// ListChildren returns the immediate children of a subcategory.
func (r *SubcategoryRepository) ListChildren(ctx context.Context, parentID int64) ([]models.Subcategory, error) {
	return r.list(ctx, " WHERE s.parent_id = ? ORDER BY s.id ASC", parentID)
}

func (r *SubcategoryRepository) list(ctx context.Context, where string, args ...any) ([]models.Subcategory, error) {
	rows, err := r.db.QueryContext(ctx, subcategorySelect+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query subcategories: %w", err)
	}
	defer rows.Close()

	subs := []models.Subcategory{}
	for rows.Next() {
		s, err := scanSubcategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subcategory: %w", err)
		}
		subs = append(subs, *s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return subs, nil
}

// Update replaces the subcategory's fields. A nil Thumbnail keeps the stored one.
//
// Moving a subcategory to another category moves its whole subtree and the soundtracks in it.
// A subcategory cannot become its own ancestor.
func (r *SubcategoryRepository) Update(ctx context.Context, s *models.Subcategory) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	found, err := exists(ctx, tx, "subcategories", s.ID)
	if err != nil {
		return err
	}
	if !found {
		return notFound("subcategory", s.ID)
	}

	if err := r.validateOwner(ctx, tx, s.Category, s.Parent); err != nil {
		return err
	}

	if s.Parent != nil {
		var cycle bool
		query := subtreeCTE + `SELECT EXISTS(SELECT 1 FROM tree WHERE id = ?)`
		if err := tx.QueryRowContext(ctx, query, s.ID, *s.Parent).Scan(&cycle); err != nil {
			return fmt.Errorf("failed to check subcategory ancestry: %w", err)
		}
		if cycle {
			return invalid("subcategory", "Subcategory %d cannot be nested under itself or its descendants", s.ID)
		}
	}

	now := time.Now()
	query := `
		UPDATE subcategories
		SET name = ?, description = ?, category_id = ?, parent_id = ?, thumbnail = COALESCE(?, thumbnail), updated_at = ?
		WHERE id = ?
	`
	if _, err := tx.ExecContext(ctx, query, s.Name, s.Description, s.Category, nullInt(s.Parent), nullString(s.Thumbnail), now, s.ID); err != nil {
		return fmt.Errorf("failed to update subcategory: %w", err)
	}

	move := []string{
		subtreeCTE + `UPDATE subcategories SET category_id = ?, updated_at = ? WHERE id IN (SELECT id FROM tree) AND category_id != ?`,
		subtreeCTE + `UPDATE soundtracks SET category_id = ?, updated_at = ? WHERE subcategory_id IN (SELECT id FROM tree) AND category_id != ?`,
	}
	for _, q := range move {
		if _, err := tx.ExecContext(ctx, q, s.ID, s.Category, now, s.Category); err != nil {
			return fmt.Errorf("failed to move subtree: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit subcategory update: %w", err)
	}

	stored, err := r.Get(ctx, s.ID)
	if err != nil {
		return err
	}
	s.CategoryName = stored.CategoryName
	s.ParentName = stored.ParentName
	s.Thumbnail = stored.Thumbnail
	return nil
}

// Delete removes a subcategory, its descendants and their soundtracks.
func (r *SubcategoryRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM subcategories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete subcategory: %w", err)
	}
	return checkAffected(result, "subcategory", id)
}

// DeleteImpact counts descendant subcategories and the soundtracks in the subtree.
func (r *SubcategoryRepository) DeleteImpact(ctx context.Context, id int64) (*models.DeleteImpact, error) {
	found, err := exists(ctx, r.db, "subcategories", id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, notFound("subcategory", id)
	}

	query := subtreeCTE + `
		SELECT
			(SELECT COUNT(*) FROM tree) - 1,
			(SELECT COUNT(*) FROM soundtracks WHERE subcategory_id IN (SELECT id FROM tree))
	`

	var impact models.DeleteImpact
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&impact.SubcategoriesCount, &impact.SoundtracksCount); err != nil {
		return nil, fmt.Errorf("failed to count subcategory impact: %w", err)
	}
	return &impact, nil
}
