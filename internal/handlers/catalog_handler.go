package handlers

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/minhdang03/server/internal/models"
	"github.com/minhdang03/server/internal/services"
)

// CatalogHandler handles HTTP requests for brands and categories.
type CatalogHandler struct {
	service  *services.CatalogService
	validate *validator.Validate
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(service *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the public, read-only catalog routes.
func (h *CatalogHandler) RegisterRoutes(router fiber.Router) {
	brandRoutes := router.Group("/brands")
	brandRoutes.Get("/", h.HandleGetBrands)
	brandRoutes.Get("/featured", h.HandleGetFeaturedBrands)
	brandRoutes.Get("/:id", h.HandleGetBrandByID)

	categoryRoutes := router.Group("/categories")
	categoryRoutes.Get("/", h.HandleGetCategories)
	categoryRoutes.Get("/:id", h.HandleGetCategoryByID)
}

// RegisterAdminRoutes registers the brand and category management routes.
func (h *CatalogHandler) RegisterAdminRoutes(router fiber.Router) {
	brandRoutes := router.Group("/brands")
	brandRoutes.Post("/", h.HandleCreateBrand)
	brandRoutes.Put("/:id", h.HandleUpdateBrand)
	brandRoutes.Delete("/:id", h.HandleDeleteBrand)

	categoryRoutes := router.Group("/categories")
	categoryRoutes.Post("/", h.HandleCreateCategory)
	categoryRoutes.Put("/:id", h.HandleUpdateCategory)
	categoryRoutes.Delete("/:id", h.HandleDeleteCategory)
}

func (h *CatalogHandler) HandleGetBrands(c *fiber.Ctx) error {
	brands, err := h.service.GetBrands()
	if err != nil {
		log.Printf("Error getting brands: %v", err)
		return fail(c, fiber.StatusInternalServerError, "Could not retrieve brands")
	}
	return c.JSON(fiber.Map{"success": true, "data": brands})
}

func (h *CatalogHandler) HandleGetFeaturedBrands(c *fiber.Ctx) error {
	brands, err := h.service.GetFeaturedBrands()
	if err != nil {
		log.Printf("Error getting featured brands: %v", err)
		return fail(c, fiber.StatusInternalServerError, "Could not retrieve brands")
	}
	return c.JSON(fiber.Map{"success": true, "data": brands})
}

func (h *CatalogHandler) HandleGetBrandByID(c *fiber.Ctx) error {
	brand, err := h.service.GetBrandByID(c.Params("id"))
	if err != nil {
		log.Printf("Error getting brand %s: %v", c.Params("id"), err)
		return fail(c, statusForError(err), "Brand not found")
	}
	return c.JSON(fiber.Map{"success": true, "data": brand})
}

func (h *CatalogHandler) HandleCreateBrand(c *fiber.Ctx) error {
	var brand models.Brand
	if err := c.BodyParser(&brand); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.validate.Struct(brand); err != nil {
		return fail(c, fiber.StatusBadRequest, "Validation failed: "+err.Error())
	}
	if err := h.service.CreateBrand(&brand); err != nil {
		log.Printf("Error creating brand: %v", err)
		return fail(c, statusForError(err), err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": brand})
}

func (h *CatalogHandler) HandleUpdateBrand(c *fiber.Ctx) error {
	var brand models.Brand
	if err := c.BodyParser(&brand); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	brand.ID = c.Params("id")
	if err := h.service.UpdateBrand(&brand); err != nil {
		log.Printf("Error updating brand %s: %v", brand.ID, err)
		return fail(c, statusForError(err), err.Error())
	}
	return c.JSON(fiber.Map{"success": true, "data": brand})
}

func (h *CatalogHandler) HandleDeleteBrand(c *fiber.Ctx) error {
	if err := h.service.DeleteBrand(c.Params("id")); err != nil {
		log.Printf("Error deleting brand %s: %v", c.Params("id"), err)
		return fail(c, statusForError(err), err.Error())
	}
	return c.JSON(fiber.Map{"success": true, "message": "Brand deleted successfully"})
}

func (h *CatalogHandler) HandleGetCategories(c *fiber.Ctx) error {
	categories, err := h.service.GetCategories()
	if err != nil {
		log.Printf("Error getting categories: %v", err)
		return fail(c, fiber.StatusInternalServerError, "Could not retrieve categories")
	}
	return c.JSON(fiber.Map{"success": true, "data": categories})
}

func (h *CatalogHandler) HandleGetCategoryByID(c *fiber.Ctx) error {
	category, err := h.service.GetCategoryByID(c.Params("id"))
	if err != nil {
		log.Printf("Error getting category %s: %v", c.Params("id"), err)
		return fail(c, statusForError(err), "Category not found")
	}
	return c.JSON(fiber.Map{"success": true, "data": category})
}

func (h *CatalogHandler) HandleCreateCategory(c *fiber.Ctx) error {
	var category models.Category
	if err := c.BodyParser(&category); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.validate.Struct(category); err != nil {
		return fail(c, fiber.StatusBadRequest, "Validation failed: "+err.Error())
	}
	if err := h.service.CreateCategory(&category); err != nil {
		log.Printf("Error creating category: %v", err)
		return fail(c, statusForError(err), err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": category})
}

func (h *CatalogHandler) HandleUpdateCategory(c *fiber.Ctx) error {
	var category models.Category
	if err := c.BodyParser(&category); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	category.ID = c.Params("id")
	if err := h.service.UpdateCategory(&category); err != nil {
		log.Printf("Error updating category %s: %v", category.ID, err)
		return fail(c, statusForError(err), err.Error())
	}
	return c.JSON(fiber.Map{"success": true, "data": category})
}

func (h *CatalogHandler) HandleDeleteCategory(c *fiber.Ctx) error {
	if err := h.service.DeleteCategory(c.Params("id")); err != nil {
		log.Printf("Error deleting category %s: %v", c.Params("id"), err)
		return fail(c, statusForError(err), err.Error())
	}
	return c.JSON(fiber.Map{"success": true, "message": "Category deleted successfully"})
}
