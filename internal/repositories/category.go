package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/downbeats/internal/models"
)

// CategoryRepository persists [models.Category] rows.
type CategoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new CategoryRepository with the given database connection
func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create inserts a category and sets its ID.
func (r *CategoryRepository) Create(ctx context.Context, c *models.Category) error {
	query := `
		INSERT INTO categories (name, description, thumbnail, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`

	now := time.Now()
	result, err := r.db.ExecContext(ctx, query, c.Name, c.Description, nullString(c.Thumbnail), now, now)
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get category id: %w", err)
	}
	c.ID = id
	return nil
}

// Get retrieves a category by ID.
func (r *CategoryRepository) Get(ctx context.Context, id int64) (*models.Category, error) {
	query := `SELECT id, name, description, thumbnail FROM categories WHERE id = ?`

	var (
		c         models.Category
		thumbnail sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.Description, &thumbnail)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("category", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan category: %w", err)
	}
	c.Thumbnail = stringPtr(thumbnail)
	return &c, nil
}

// List retrieves all categories in creation order.
func (r *CategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	query := `SELECT id, name, description, thumbnail FROM categories ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var (
			c         models.Category
			thumbnail sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &thumbnail); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		c.Thumbnail = stringPtr(thumbnail)
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return categories, nil
}

// Update replaces name and description. A nil Thumbnail keeps the stored one; c.Thumbnail is
// refreshed with the stored value afterwards.
func (r *CategoryRepository) Update(ctx context.Context, c *models.Category) error {
	query := `
		UPDATE categories
		SET name = ?, description = ?, thumbnail = COALESCE(?, thumbnail), updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, c.Name, c.Description, nullString(c.Thumbnail), time.Now(), c.ID)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	if err := checkAffected(result, "category", c.ID); err != nil {
		return err
	}

	stored, err := r.Get(ctx, c.ID)
	if err != nil {
		return err
	}
	c.Thumbnail = stored.Thumbnail
	return nil
}

// Delete removes a category together with its subcategories and soundtracks.
func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return checkAffected(result, "category", id)
}

// DeleteImpact counts the subcategories (at any depth) and soundtracks that deleting the category removes.
func (r *CategoryRepository) DeleteImpact(ctx context.Context, id int64) (*models.DeleteImpact, error) {
	found, err := exists(ctx, r.db, "categories", id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, notFound("category", id)
	}

	query := `
		SELECT
			(SELECT COUNT(*) FROM subcategories WHERE category_id = ?),
			(SELECT COUNT(*) FROM soundtracks WHERE category_id = ?)
	`

	var impact models.DeleteImpact
	if err := r.db.QueryRowContext(ctx, query, id, id).Scan(&impact.SubcategoriesCount, &impact.SoundtracksCount); err != nil {
		return nil, fmt.Errorf("failed to count category impact: %w", err)
	}
	return &impact, nil
}
