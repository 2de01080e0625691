package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"shop-catalog/internal/domain"
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, params domain.ListParams) ([]*domain.Product, int, error)
	Count(ctx context.Context) (int, error)
	DecrementCount(ctx context.Context, id int64, quantity int) (*domain.Product, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, title, description, price, count, category_id, brand_id, created_at, updated_at`

func scanProduct(row rowScanner) (*domain.Product, error) {
	product := &domain.Product{}
	err := row.Scan(
		&product.ID,
		&product.Title,
		&product.Description,
		&product.Price,
		&product.Count,
		&product.CategoryID,
		&product.BrandID,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	product.Images = []*domain.Image{}
	return product, nil
}

// productWriteError maps constraint violations raised by INSERT/UPDATE on products
func productWriteError(err error, product *domain.Product) error {
	if constraint, ok := isViolation(err, pgForeignKeyViolation); ok {
		switch constraint {
		case "fk_products_category":
			return domain.NewValidationError("category_id", product.CategoryID, domain.ErrCategoryNotFound)
		case "fk_products_brand":
			return domain.NewValidationError("brand_id", product.BrandID, domain.ErrBrandNotFound)
		}
	}
	if constraint, ok := isViolation(err, pgCheckViolation); ok {
		switch constraint {
		case "chk_products_count":
			return domain.NewValidationError("count", product.Count, domain.ErrInvalidCount)
		case "chk_products_price":
			return domain.NewValidationError("price", product.Price, domain.ErrInvalidPrice)
		}
	}
	if _, ok := isViolation(err, pgNumericOutOfRange); ok {
		return domain.NewValidationError("price", product.Price, domain.ErrInvalidPrice)
	}
	return nil
}

// Create inserts a new product; ID and timestamps are filled from the database
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (title, description, price, count, category_id, brand_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, price, created_at, updated_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		product.Title,
		product.Description,
		product.Price,
		product.Count,
		product.CategoryID,
		product.BrandID,
	).Scan(&product.ID, &product.Price, &product.CreatedAt, &product.UpdatedAt)

	if err != nil {
		if mapped := productWriteError(err, product); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	if product.Images == nil {
		product.Images = []*domain.Image{}
	}
	return nil
}

// Update writes every column of an existing product
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET title = $2, description = $3, price = $4, count = $5, category_id = $6, brand_id = $7
		WHERE id = $1
		RETURNING price, updated_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		product.ID,
		product.Title,
		product.Description,
		product.Price,
		product.Count,
		product.CategoryID,
		product.BrandID,
	).Scan(&product.Price, &product.UpdatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return domain.ErrProductNotFound
		}
		if mapped := productWriteError(err, product); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to update product: %w", err)
	}

	return nil
}

// Delete removes the product's images and then the product in a single transaction.
// The product row is locked first so a concurrent image insert waits and then
// fails its foreign key check instead of slipping in between the two deletes.
func (r *productRepository) Delete(ctx context.Context, id int64) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		var locked int64
		err := tx.QueryRowContext(ctx, `SELECT id FROM products WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
		if err != nil {
			if err == sql.ErrNoRows {
				return domain.ErrProductNotFound
			}
			return fmt.Errorf("failed to lock product: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM images WHERE product_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete product images: %w", err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}

		if rowsAffected == 0 {
			return domain.ErrProductNotFound
		}

		return nil
	})
}

// FindByID retrieves a product with its images
func (r *productRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	if err := r.attachImages(ctx, []*domain.Product{product}); err != nil {
		return nil, err
	}

	return product, nil
}

// List returns one page of products ordered by id, plus the total number of matches.
// A non-empty Search filters on title, case-insensitively.
func (r *productRepository) List(ctx context.Context, params domain.ListParams) ([]*domain.Product, int, error) {
	whereClause := ""
	args := []interface{}{}

	if search := strings.TrimSpace(params.Search); search != "" {
		whereClause = "WHERE title ILIKE $1"
		args = append(args, likePattern(search))
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM products %s", whereClause)
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		%s
		ORDER BY id
		LIMIT $%d OFFSET $%d
	`, productColumns, whereClause, len(args)+1, len(args)+2)

	args = append(args, params.Limit, params.Skip)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating products: %w", err)
	}

	if err := r.attachImages(ctx, products); err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// Count returns the number of products, ignoring any search filter
func (r *productRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return total, nil
}

// DecrementCount atomically takes quantity units from the product's stock.
// It never lets count drop below zero: when stock is short, nothing is written
// and domain.ErrInsufficientStock is returned.
func (r *productRepository) DecrementCount(ctx context.Context, id int64, quantity int) (*domain.Product, error) {
	query := `
		UPDATE products
		SET count = count - $2
		WHERE id = $1 AND count >= $2
		RETURNING ` + productColumns

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id, quantity))
	if err != nil {
		if err != sql.ErrNoRows {
			return nil, fmt.Errorf("failed to decrement product count: %w", err)
		}

		var exists bool
		if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`, id).Scan(&exists); err != nil {
			return nil, fmt.Errorf("failed to check product existence: %w", err)
		}
		if !exists {
			return nil, domain.ErrProductNotFound
		}
		return nil, domain.ErrInsufficientStock
	}

	if err := r.attachImages(ctx, []*domain.Product{product}); err != nil {
		return nil, err
	}

	return product, nil
}

// attachImages loads the images of all given products with one query
func (r *productRepository) attachImages(ctx context.Context, products []*domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(products))
	byID := make(map[int64]*domain.Product, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
		byID[p.ID] = p
	}

	images, err := listImagesByProducts(ctx, r.db, ids)
	if err != nil {
		return err
	}

	for _, image := range images {
		if p, ok := byID[image.ProductID]; ok {
			p.Images = append(p.Images, image)
		}
	}

	return nil
}
