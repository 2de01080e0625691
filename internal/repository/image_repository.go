package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"shop-catalog/internal/domain"
)

// ImageFilter narrows an image listing
type ImageFilter struct {
	domain.ListParams
	ProductID *int64
}

// ImageRepository defines the interface for image data access
type ImageRepository interface {
	Create(ctx context.Context, image *domain.Image) error
	Update(ctx context.Context, image *domain.Image) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*domain.Image, error)
	List(ctx context.Context, filter ImageFilter) ([]*domain.Image, int, error)
	NameTaken(ctx context.Context, name string, excludeID int64) (bool, error)
}

type imageRepository struct {
	db *sql.DB
}

// NewImageRepository creates a new instance of ImageRepository
func NewImageRepository(db *sql.DB) ImageRepository {
	return &imageRepository{db: db}
}

const imageColumns = `id, name, product_id, created_at`

func scanImage(row rowScanner) (*domain.Image, error) {
	image := &domain.Image{}
	if err := row.Scan(&image.ID, &image.Name, &image.ProductID, &image.CreatedAt); err != nil {
		return nil, err
	}
	return image, nil
}

// imageWriteError maps the unique name index and the product foreign key
func imageWriteError(err error, image *domain.Image) error {
	if _, ok := isViolation(err, pgUniqueViolation); ok {
		return domain.NewValidationError("name", image.Name, domain.ErrDuplicateImageName)
	}
	if _, ok := isViolation(err, pgForeignKeyViolation); ok {
		return domain.NewValidationError("product_id", image.ProductID, domain.ErrProductNotFound)
	}
	return nil
}

func (r *imageRepository) Create(ctx context.Context, image *domain.Image) error {
	query := `
		INSERT INTO images (name, product_id)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query, image.Name, image.ProductID).Scan(&image.ID, &image.CreatedAt)
	if err != nil {
		if mapped := imageWriteError(err, image); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to create image: %w", err)
	}

	return nil
}

func (r *imageRepository) Update(ctx context.Context, image *domain.Image) error {
	query := `
		UPDATE images
		SET name = $2, product_id = $3
		WHERE id = $1
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, query, image.ID, image.Name, image.ProductID).Scan(&image.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.ErrImageNotFound
		}
		if mapped := imageWriteError(err, image); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to update image: %w", err)
	}

	return nil
}

func (r *imageRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM images WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return domain.ErrImageNotFound
	}

	return nil
}

func (r *imageRepository) FindByID(ctx context.Context, id int64) (*domain.Image, error) {
	query := `SELECT ` + imageColumns + ` FROM images WHERE id = $1`

	image, err := scanImage(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrImageNotFound
		}
		return nil, fmt.Errorf("failed to find image by ID: %w", err)
	}

	return image, nil
}

// List returns one page of images ordered by id, filtered by name and owning product
func (r *imageRepository) List(ctx context.Context, filter ImageFilter) ([]*domain.Image, int, error) {
	conditions := []string{}
	args := []interface{}{}

	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, likePattern(search))
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if filter.ProductID != nil {
		args = append(args, *filter.ProductID)
		conditions = append(conditions, fmt.Sprintf("product_id = $%d", len(args)))
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM images %s", whereClause)
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count images: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM images
		%s
		ORDER BY id
		LIMIT $%d OFFSET $%d
	`, imageColumns, whereClause, len(args)+1, len(args)+2)

	args = append(args, filter.Limit, filter.Skip)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list images: %w", err)
	}
	defer rows.Close()

	images := []*domain.Image{}
	for rows.Next() {
		image, err := scanImage(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan image: %w", err)
		}
		images = append(images, image)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating images: %w", err)
	}

	return images, total, nil
}

// NameTaken reports whether an image other than excludeID already uses name.
// Pass 0 as excludeID when checking a new image.
func (r *imageRepository) NameTaken(ctx context.Context, name string, excludeID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM images WHERE name = $1 AND id <> $2)`
	if err := r.db.QueryRowContext(ctx, query, name, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check image name: %w", err)
	}
	return exists, nil
}

// listImagesByProducts loads the images of several products in insertion order
func listImagesByProducts(ctx context.Context, q querier, productIDs []int64) ([]*domain.Image, error) {
	query := `SELECT ` + imageColumns + ` FROM images WHERE product_id = ANY($1) ORDER BY id`

	rows, err := q.QueryContext(ctx, query, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load product images: %w", err)
	}
	defer rows.Close()

	images := []*domain.Image{}
	for rows.Next() {
		image, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		images = append(images, image)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating images: %w", err)
	}

	return images, nil
}
