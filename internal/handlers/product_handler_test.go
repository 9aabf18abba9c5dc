package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/acoder25/Electronics-marketplace/internal/models"
	"github.com/acoder25/Electronics-marketplace/internal/repository"
	"github.com/acoder25/Electronics-marketplace/internal/services"
	"github.com/gofiber/fiber/v2"
)

type stubProductService struct {
	createResult *models.Product
	createErr    error
	listResult   []models.Product
	listErr      error
	getResult    *models.Product
	getErr       error
	updateErr    error
	deleteErr    error
	lastSellerID int64
	lastID       int64
	lastFilter   models.ProductFilter
	lastCreate   repository.CreateProductInput
	lastUpdate   repository.UpdateProductInput
}

func (s *stubProductService) Create(_ context.Context, sellerID int64, input repository.CreateProductInput) (*models.Product, error) {
	s.lastSellerID = sellerID
	s.lastCreate = input
	return s.createResult, s.createErr
}

func (s *stubProductService) List(_ context.Context, filter models.ProductFilter) ([]models.Product, error) {
	s.lastFilter = filter
	return s.listResult, s.listErr
}

func (s *stubProductService) Get(_ context.Context, productID int64) (*models.Product, error) {
	s.lastID = productID
	return s.getResult, s.getErr
}

func (s *stubProductService) ListMine(_ context.Context, sellerID int64) ([]models.Product, error) {
	s.lastSellerID = sellerID
	return s.listResult, s.listErr
}

func (s *stubProductService) Update(_ context.Context, productID int64, sellerID int64, input repository.UpdateProductInput) error {
	s.lastID = productID
	s.lastSellerID = sellerID
	s.lastUpdate = input
	return s.updateErr
}

func (s *stubProductService) Delete(_ context.Context, productID int64, sellerID int64) error {
	s.lastID = productID
	s.lastSellerID = sellerID
	return s.deleteErr
}

func newProductTestApp(handler *ProductHandler, userID string) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		return c.Next()
	})
	app.Get("/api/products", handler.ListProducts)
	app.Get("/api/products/:id", handler.GetProduct)
	app.Post("/api/v1/products", handler.CreateProduct)
	app.Get("/api/v1/users/products", handler.MyProducts)
	app.Put("/api/v1/products/:id", handler.UpdateProduct)
	app.Delete("/api/v1/products/:id", handler.DeleteProduct)
	return app
}

func productForm(fields map[string]string) *strings.Reader {
	values := url.Values{}
	for key, value := range fields {
		values.Set(key, value)
	}
	return strings.NewReader(values.Encode())
}

func TestListProductsForwardsFilters(t *testing.T) {
	service := &stubProductService{listResult: []models.Product{{ID: 1, Title: "Oscilloscope"}}}
	app := newProductTestApp(NewProductHandler(service, nil), "42")

	req := httptest.NewRequest(http.MethodGet, "/api/products?category=audio&condition=good&minPrice=10&maxPrice=250&search=amp", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastFilter.Category != "audio" || service.lastFilter.Condition != "good" || service.lastFilter.Search != "amp" {
		t.Fatalf("unexpected filter: %+v", service.lastFilter)
	}
	if service.lastFilter.MinPrice == nil || *service.lastFilter.MinPrice != 10 {
		t.Fatalf("minPrice not forwarded: %+v", service.lastFilter.MinPrice)
	}
	if service.lastFilter.MaxPrice == nil || *service.lastFilter.MaxPrice != 250 {
		t.Fatalf("maxPrice not forwarded: %+v", service.lastFilter.MaxPrice)
	}
}

func TestListProductsRejectsBadPriceFilter(t *testing.T) {
	app := newProductTestApp(NewProductHandler(&stubProductService{}, nil), "42")

	req := httptest.NewRequest(http.MethodGet, "/api/products?minPrice=cheap", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCreateProductStampsSeller(t *testing.T) {
	service := &stubProductService{
		createResult: &models.Product{ID: 3, Title: "Soldering station", Price: 45, SellerID: 42},
	}
	app := newProductTestApp(NewProductHandler(service, nil), "42")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", productForm(map[string]string{
		"title":     "Soldering station",
		"price":     "45",
		"category":  "tools",
		"condition": "good",
	}))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastSellerID != 42 {
		t.Fatalf("unexpected seller id: %d", service.lastSellerID)
	}
	if service.lastCreate.Title != "Soldering station" || service.lastCreate.Price != 45 {
		t.Fatalf("unexpected input: %+v", service.lastCreate)
	}

	var body struct {
		Product models.Product `json:"product"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if body.Product.ID != 3 {
		t.Fatalf("unexpected product: %+v", body.Product)
	}
}

func TestCreateProductRejectsBadPrice(t *testing.T) {
	app := newProductTestApp(NewProductHandler(&stubProductService{}, nil), "42")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", productForm(map[string]string{
		"title": "Soldering station",
		"price": "free",
	}))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestGetProductNotFound(t *testing.T) {
	service := &stubProductService{getErr: services.ErrProductNotFound}
	app := newProductTestApp(NewProductHandler(service, nil), "42")

	req := httptest.NewRequest(http.MethodGet, "/api/products/99", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestUpdateProductNotOwner(t *testing.T) {
	service := &stubProductService{updateErr: services.ErrForbidden}
	app := newProductTestApp(NewProductHandler(service, nil), "42")

	req := httptest.NewRequest(http.MethodPut, "/api/v1/products/7", productForm(map[string]string{
		"title":     "Soldering station",
		"price":     "45",
		"category":  "tools",
		"condition": "good",
	}))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
	if service.lastID != 7 || service.lastSellerID != 42 {
		t.Fatalf("unexpected ownership check: id=%d seller=%d", service.lastID, service.lastSellerID)
	}
}

func TestDeleteProduct(t *testing.T) {
	service := &stubProductService{}
	app := newProductTestApp(NewProductHandler(service, nil), "42")

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/products/7", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastID != 7 {
		t.Fatalf("unexpected product id: %d", service.lastID)
	}
}
