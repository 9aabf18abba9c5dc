package repository

import (
	"context"
	"fmt"

	"github.com/acoder25/Electronics-marketplace/internal/models"
)

type CreateProductInput struct {
	Title       string
	Description *string
	Price       float64
	Category    string
	Condition   string
	ImageURL    *string
	SellerID    int64
}

type UpdateProductInput struct {
	Title       string
	Description *string
	Price       float64
	Category    string
	Condition   string
	ImageURL    *string
}

type ProductRepository struct {
	db DBTX
}

func NewProductRepository(db DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(
	ctx context.Context,
	input CreateProductInput,
) (*models.Product, error) {
	query := `
		INSERT INTO products (title, description, price, category, condition, image_url, seller_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, title, description, price, category, condition, image_url, seller_id, status, created_at
	`

	var product models.Product
	err := r.db.QueryRow(
		ctx,
		query,
		input.Title,
		input.Description,
		input.Price,
		input.Category,
		input.Condition,
		input.ImageURL,
		input.SellerID,
	).Scan(
		&product.ID,
		&product.Title,
		&product.Description,
		&product.Price,
		&product.Category,
		&product.Condition,
		&product.ImageURL,
		&product.SellerID,
		&product.Status,
		&product.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &product, nil
}

func (r *ProductRepository) ListAvailable(
	ctx context.Context,
	filter models.ProductFilter,
) ([]models.Product, error) {
	query := `
		SELECT p.id, p.title, p.description, p.price, p.category, p.condition,
		       p.image_url, p.seller_id, u.username AS seller_name, p.status, p.created_at
		FROM products p
		JOIN users u ON u.id = p.seller_id
		WHERE p.status = 'available'
	`
	args := make([]any, 0, 6)
	add := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Category != "" {
		query += " AND p.category = " + add(filter.Category)
	}
	if filter.Condition != "" {
		query += " AND p.condition = " + add(filter.Condition)
	}
	if filter.MinPrice != nil {
		query += " AND p.price >= " + add(*filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query += " AND p.price <= " + add(*filter.MaxPrice)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		first := add(pattern)
		second := add(pattern)
		query += " AND (p.title ILIKE " + first + " OR p.description ILIKE " + second + ")"
	}

	query += " ORDER BY p.created_at DESC, p.id DESC"

	return r.list(ctx, query, args...)
}

func (r *ProductRepository) GetByID(ctx context.Context, productID int64) (*models.Product, error) {
	query := `
		SELECT p.id, p.title, p.description, p.price, p.category, p.condition,
		       p.image_url, p.seller_id, u.username AS seller_name, p.status, p.created_at
		FROM products p
		JOIN users u ON u.id = p.seller_id
		WHERE p.id = $1
	`

	var product models.Product
	err := r.db.QueryRow(ctx, query, productID).Scan(
		&product.ID,
		&product.Title,
		&product.Description,
		&product.Price,
		&product.Category,
		&product.Condition,
		&product.ImageURL,
		&product.SellerID,
		&product.SellerName,
		&product.Status,
		&product.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &product, nil
}

func (r *ProductRepository) ListBySellerID(ctx context.Context, sellerID int64) ([]models.Product, error) {
	query := `
		SELECT p.id, p.title, p.description, p.price, p.category, p.condition,
		       p.image_url, p.seller_id, u.username AS seller_name, p.status, p.created_at
		FROM products p
		JOIN users u ON u.id = p.seller_id
		WHERE p.seller_id = $1
		ORDER BY p.created_at DESC, p.id DESC
	`
	return r.list(ctx, query, sellerID)
}

// Update touches only rows owned by sellerID; a zero row count means the
// product does not exist or belongs to someone else.
func (r *ProductRepository) Update(
	ctx context.Context,
	productID int64,
	sellerID int64,
	input UpdateProductInput,
) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET title = $1, description = $2, price = $3, category = $4, condition = $5, image_url = $6
		WHERE id = $7 AND seller_id = $8
	`,
		input.Title,
		input.Description,
		input.Price,
		input.Category,
		input.Condition,
		input.ImageURL,
		productID,
		sellerID,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *ProductRepository) Delete(ctx context.Context, productID int64, sellerID int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM products
		WHERE id = $1 AND seller_id = $2
	`, productID, sellerID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *ProductRepository) list(
	ctx context.Context,
	query string,
	args ...any,
) ([]models.Product, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]models.Product, 0)
	for rows.Next() {
		var product models.Product
		if err := rows.Scan(
			&product.ID,
			&product.Title,
			&product.Description,
			&product.Price,
			&product.Category,
			&product.Condition,
			&product.ImageURL,
			&product.SellerID,
			&product.SellerName,
			&product.Status,
			&product.CreatedAt,
		); err != nil {
			return nil, err
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}
