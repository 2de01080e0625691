package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"shop-catalog/internal/domain"
)

// BrandRepository defines the interface for brand data access
type BrandRepository interface {
	Create(ctx context.Context, brand *domain.Brand) error
	Update(ctx context.Context, brand *domain.Brand) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*domain.Brand, error)
	List(ctx context.Context, params domain.ListParams) ([]*domain.Brand, int, error)
	HasProducts(ctx context.Context, id int64) (bool, error)
}

type brandRepository struct {
	db *sql.DB
}

// NewBrandRepository creates a new instance of BrandRepository
func NewBrandRepository(db *sql.DB) BrandRepository {
	return &brandRepository{db: db}
}

func (r *brandRepository) Create(ctx context.Context, brand *domain.Brand) error {
	query := `
		INSERT INTO brands (name)
		VALUES ($1)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query, brand.Name).Scan(&brand.ID, &brand.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create brand: %w", err)
	}

	return nil
}

func (r *brandRepository) Update(ctx context.Context, brand *domain.Brand) error {
	query := `
		UPDATE brands
		SET name = $2
		WHERE id = $1
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, query, brand.ID, brand.Name).Scan(&brand.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.ErrBrandNotFound
		}
		return fmt.Errorf("failed to update brand: %w", err)
	}

	return nil
}

// Delete removes a brand; a brand still referenced by products yields domain.ErrBrandInUse
func (r *brandRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM brands WHERE id = $1`, id)
	if err != nil {
		if _, ok := isViolation(err, pgForeignKeyViolation); ok {
			return domain.ErrBrandInUse
		}
		return fmt.Errorf("failed to delete brand: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return domain.ErrBrandNotFound
	}

	return nil
}

func (r *brandRepository) FindByID(ctx context.Context, id int64) (*domain.Brand, error) {
	query := `
		SELECT id, name, created_at
		FROM brands
		WHERE id = $1
	`

	brand := &domain.Brand{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&brand.ID,
		&brand.Name,
		&brand.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrBrandNotFound
		}
		return nil, fmt.Errorf("failed to find brand by ID: %w", err)
	}

	return brand, nil
}

func (r *brandRepository) List(ctx context.Context, params domain.ListParams) ([]*domain.Brand, int, error) {
	whereClause := ""
	args := []interface{}{}

	if search := strings.TrimSpace(params.Search); search != "" {
		whereClause = "WHERE name ILIKE $1"
		args = append(args, likePattern(search))
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM brands %s", whereClause)
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count brands: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, name, created_at
		FROM brands
		%s
		ORDER BY id
		LIMIT $%d OFFSET $%d
	`, whereClause, len(args)+1, len(args)+2)

	args = append(args, params.Limit, params.Skip)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list brands: %w", err)
	}
	defer rows.Close()

	brands := []*domain.Brand{}
	for rows.Next() {
		brand := &domain.Brand{}
		if err := rows.Scan(&brand.ID, &brand.Name, &brand.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan brand: %w", err)
		}
		brands = append(brands, brand)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating brands: %w", err)
	}

	return brands, total, nil
}

func (r *brandRepository) HasProducts(ctx context.Context, id int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM products WHERE brand_id = $1)`
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check brand references: %w", err)
	}
	return exists, nil
}
