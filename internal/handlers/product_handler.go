package handlers

import (
	"fmt"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/minhdang03/server/internal/models"
	"github.com/minhdang03/server/internal/repositories"
	"github.com/minhdang03/server/internal/services"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the public, read-only product routes.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
}

// RegisterAdminRoutes registers the product management routes.
func (h *ProductHandler) RegisterAdminRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// HandleGetProducts retrieves a page of products.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	query := repositories.ProductQuery{
		Search:     c.Query("search"),
		CategoryID: c.Query("category_id"),
		BrandID:    c.Query("brand_id"),
		Page:       c.QueryInt("page", 1),
		Limit:      c.QueryInt("limit", 10),
	}

	products, total, err := h.service.GetProducts(query)
	if err != nil {
		log.Printf("Error getting products: %v", err)
		return fail(c, fiber.StatusInternalServerError, "Could not retrieve products")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    products,
		"total":   total,
		"page":    query.Page,
	})
}

// HandleGetProductByID retrieves a single product with its variants.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	productID := c.Params("id")
	product, err := h.service.GetProductByID(productID)
	if err != nil {
		log.Printf("Error getting product by ID %s: %v", productID, err)
		return fail(c, statusForError(err), fmt.Sprintf("Product %s not found", productID))
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    product,
	})
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		log.Printf("Error parsing product request body: %v", err)
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if err := h.validate.Struct(product); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}

	if err := h.service.CreateProduct(&product); err != nil {
		log.Printf("Error creating product: %v", err)
		return fail(c, statusForError(err), err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    product,
	})
}

// HandleUpdateProduct updates an existing product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		log.Printf("Error parsing product request body: %v", err)
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	product.ID = c.Params("id")

	if err := h.service.UpdateProduct(&product); err != nil {
		log.Printf("Error updating product %s: %v", product.ID, err)
		return fail(c, statusForError(err), err.Error())
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    product,
	})
}

// HandleDeleteProduct deletes a product by its ID.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	productID := c.Params("id")
	if err := h.service.DeleteProduct(productID); err != nil {
		log.Printf("Error deleting product %s: %v", productID, err)
		return fail(c, statusForError(err), err.Error())
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("Product %s deleted successfully", productID),
	})
}
