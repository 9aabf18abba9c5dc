package services

import (
	"context"
	"errors"
	"strings"

	"github.com/acoder25/Electronics-marketplace/internal/models"
	"github.com/acoder25/Electronics-marketplace/internal/repository"
	"github.com/jackc/pgx/v5"
)

var productConditions = map[string]struct{}{
	"new":       {},
	"like-new":  {},
	"good":      {},
	"fair":      {},
	"for-parts": {},
}

type productRepo interface {
	Create(ctx context.Context, input repository.CreateProductInput) (*models.Product, error)
	ListAvailable(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	GetByID(ctx context.Context, productID int64) (*models.Product, error)
	ListBySellerID(ctx context.Context, sellerID int64) ([]models.Product, error)
	Update(ctx context.Context, productID int64, sellerID int64, input repository.UpdateProductInput) (int64, error)
	Delete(ctx context.Context, productID int64, sellerID int64) (int64, error)
}

type ProductService struct {
	products productRepo
}

func NewProductService(products productRepo) *ProductService {
	return &ProductService{products: products}
}

func (s *ProductService) Create(
	ctx context.Context,
	sellerID int64,
	input repository.CreateProductInput,
) (*models.Product, error) {
	input.SellerID = sellerID
	if err := validateProductInput(input.Title, input.Price, input.Category, input.Condition); err != nil {
		return nil, err
	}

	return s.products.Create(ctx, input)
}

func (s *ProductService) List(
	ctx context.Context,
	filter models.ProductFilter,
) ([]models.Product, error) {
	return s.products.ListAvailable(ctx, filter)
}

func (s *ProductService) Get(ctx context.Context, productID int64) (*models.Product, error) {
	if productID <= 0 {
		return nil, ErrInvalidInput
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	return product, nil
}

func (s *ProductService) ListMine(ctx context.Context, sellerID int64) ([]models.Product, error) {
	return s.products.ListBySellerID(ctx, sellerID)
}

func (s *ProductService) Update(
	ctx context.Context,
	productID int64,
	sellerID int64,
	input repository.UpdateProductInput,
) error {
	if productID <= 0 {
		return ErrInvalidInput
	}
	if err := validateProductInput(input.Title, input.Price, input.Category, input.Condition); err != nil {
		return err
	}

	affected, err := s.products.Update(ctx, productID, sellerID, input)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrForbidden
	}
	return nil
}

func (s *ProductService) Delete(ctx context.Context, productID int64, sellerID int64) error {
	if productID <= 0 {
		return ErrInvalidInput
	}

	affected, err := s.products.Delete(ctx, productID, sellerID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrForbidden
	}
	return nil
}

func validateProductInput(title string, price float64, category string, condition string) error {
	if strings.TrimSpace(title) == "" {
		return ErrInvalidInput
	}
	if price <= 0 {
		return ErrInvalidInput
	}
	if strings.TrimSpace(category) == "" {
		return ErrInvalidInput
	}
	if _, ok := productConditions[condition]; !ok {
		return ErrInvalidInput
	}
	return nil
}
