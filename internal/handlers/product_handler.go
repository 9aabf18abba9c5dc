package handlers

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/acoder25/Electronics-marketplace/internal/models"
	"github.com/acoder25/Electronics-marketplace/internal/repository"
	"github.com/acoder25/Electronics-marketplace/internal/services"
	"github.com/gofiber/fiber/v2"
)

const maxImageBytes = 5 * 1024 * 1024

type productApplicationService interface {
	Create(ctx context.Context, sellerID int64, input repository.CreateProductInput) (*models.Product, error)
	List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	Get(ctx context.Context, productID int64) (*models.Product, error)
	ListMine(ctx context.Context, sellerID int64) ([]models.Product, error)
	Update(ctx context.Context, productID int64, sellerID int64, input repository.UpdateProductInput) error
	Delete(ctx context.Context, productID int64, sellerID int64) error
}

type ProductHandler struct {
	service productApplicationService
	storage services.StorageService
}

func NewProductHandler(service productApplicationService, storage services.StorageService) *ProductHandler {
	return &ProductHandler{
		service: service,
		storage: storage,
	}
}

func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	sellerID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(c.FormValue("price")), 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid price"})
	}

	imageURL, status, msg := h.saveImage(c)
	if status != 0 {
		return c.Status(status).JSON(fiber.Map{"error": msg})
	}

	input := repository.CreateProductInput{
		Title:       strings.TrimSpace(c.FormValue("title")),
		Description: optionalFormValue(c, "description"),
		Price:       price,
		Category:    strings.TrimSpace(c.FormValue("category")),
		Condition:   strings.TrimSpace(c.FormValue("condition")),
		ImageURL:    imageURL,
	}

	product, err := h.service.Create(c.Context(), sellerID, input)
	if err != nil {
		return mapProductError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"product": product})
}

func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	filter := models.ProductFilter{
		Category:  strings.TrimSpace(c.Query("category")),
		Condition: strings.TrimSpace(c.Query("condition")),
		Search:    strings.TrimSpace(c.Query("search")),
	}
	if raw := strings.TrimSpace(c.Query("minPrice")); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid minPrice"})
		}
		filter.MinPrice = &value
	}
	if raw := strings.TrimSpace(c.Query("maxPrice")); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid maxPrice"})
		}
		filter.MaxPrice = &value
	}

	products, err := h.service.List(c.Context(), filter)
	if err != nil {
		return mapProductError(c, err)
	}

	return c.JSON(fiber.Map{"products": products})
}

func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	productID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || productID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid product id"})
	}

	product, err := h.service.Get(c.Context(), productID)
	if err != nil {
		return mapProductError(c, err)
	}

	return c.JSON(fiber.Map{"product": product})
}

func (h *ProductHandler) MyProducts(c *fiber.Ctx) error {
	sellerID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	products, err := h.service.ListMine(c.Context(), sellerID)
	if err != nil {
		return mapProductError(c, err)
	}

	return c.JSON(fiber.Map{"products": products})
}

func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	sellerID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	productID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || productID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid product id"})
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(c.FormValue("price")), 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid price"})
	}

	imageURL, status, msg := h.saveImage(c)
	if status != 0 {
		return c.Status(status).JSON(fiber.Map{"error": msg})
	}
	if imageURL == nil {
		imageURL = optionalFormValue(c, "image_url")
	}

	input := repository.UpdateProductInput{
		Title:       strings.TrimSpace(c.FormValue("title")),
		Description: optionalFormValue(c, "description"),
		Price:       price,
		Category:    strings.TrimSpace(c.FormValue("category")),
		Condition:   strings.TrimSpace(c.FormValue("condition")),
		ImageURL:    imageURL,
	}

	if err := h.service.Update(c.Context(), productID, sellerID, input); err != nil {
		return mapProductError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Product updated successfully"})
}

func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	sellerID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	productID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || productID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid product id"})
	}

	if err := h.service.Delete(c.Context(), productID, sellerID); err != nil {
		return mapProductError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Product deleted successfully"})
}

// saveImage stores an optional multipart "image" part and returns its public
// URL, or nil when the request has no image. A non-zero status means the
// request must be rejected with that status and message.
func (h *ProductHandler) saveImage(c *fiber.Ctx) (*string, int, string) {
	header, err := c.FormFile("image")
	if err != nil {
		return nil, 0, ""
	}

	if header.Size > maxImageBytes {
		return nil, fiber.StatusBadRequest, "Image exceeds the 5MB limit"
	}
	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		return nil, fiber.StatusBadRequest, "Only image files are allowed"
	}
	if h.storage == nil {
		return nil, fiber.StatusServiceUnavailable, "Image storage is not configured"
	}

	file, err := header.Open()
	if err != nil {
		return nil, fiber.StatusInternalServerError, "Failed to read image"
	}
	defer file.Close()

	filename := fmt.Sprintf("%d%s", time.Now().UnixMilli(), filepath.Ext(header.Filename))
	url, err := h.storage.UploadFile(c.Context(), file, filename, "products")
	if err != nil {
		return nil, fiber.StatusInternalServerError, "Failed to store image"
	}

	return &url, 0, ""
}

func optionalFormValue(c *fiber.Ctx, key string) *string {
	value := strings.TrimSpace(c.FormValue(key))
	if value == "" {
		return nil
	}
	return &value
}

func mapProductError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not authorized to modify this product"})
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	case errors.Is(err, services.ErrProductNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Product not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process product request"})
	}
}
