package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/minhdang03/server/internal/handlers"
	"github.com/minhdang03/server/internal/middleware"
	"github.com/minhdang03/server/internal/models"
	"github.com/minhdang03/server/internal/repositories"
	"github.com/minhdang03/server/internal/services"
)

// setupApp builds the full route tree over an in-memory SQLite database,
// mirroring the wiring in main.go. An admin account (admin/admin123) is
// seeded.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Brand{},
		&models.Category{},
		&models.Product{},
		&models.Variant{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	userRepo := repositories.NewGORMUserRepository(db)
	brandRepo := repositories.NewGORMBrandRepository(db)
	categoryRepo := repositories.NewGORMCategoryRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)

	hashed, _ := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err := userRepo.Create(&models.User{
		Username: "admin",
		Email:    "admin@localhost",
		Password: string(hashed),
		Role:     models.RoleAdmin,
	}); err != nil {
		t.Fatalf("failed to seed admin: %v", err)
	}

	authService := services.NewAuthService(userRepo, "test_jwt_secret")
	catalogService := services.NewCatalogService(brandRepo, categoryRepo)
	productService := services.NewProductService(productRepo)
	orderService := services.NewOrderService(orderRepo, productRepo, productRepo, nil)

	authHandler := handlers.NewAuthHandler(authService)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	productHandler := handlers.NewProductHandler(productService)
	orderHandler := handlers.NewOrderHandler(orderService)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")

	authHandler.RegisterRoutes(apiV1)
	productHandler.RegisterRoutes(apiV1)
	catalogHandler.RegisterRoutes(apiV1)

	authed := apiV1.Group("", middleware.AuthRequired(authService))
	orderHandler.RegisterRoutes(authed)

	admin := apiV1.Group("/admin", middleware.AuthRequired(authService), middleware.AdminRequired())
	authHandler.RegisterAdminRoutes(admin)
	productHandler.RegisterAdminRoutes(admin)
	catalogHandler.RegisterAdminRoutes(admin)
	orderHandler.RegisterAdminRoutes(admin)

	return app
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Token   string          `json:"token"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	_ = json.NewDecoder(resp.Body).Decode(&env)
	return resp.StatusCode, env
}

func login(t *testing.T, app *fiber.App, username, password string) string {
	t.Helper()
	status, env := doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", fiber.Map{
		"username": username,
		"password": password,
	})
	assert.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, env.Token)
	return env.Token
}

func registerCustomer(t *testing.T, app *fiber.App, username string) string {
	t.Helper()
	status, _ := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", fiber.Map{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusCreated, status)
	return login(t, app, username, "password123")
}

// seedCatalog creates a brand, a category and a product with two variants
// through the admin API and returns the created product.
func seedCatalog(t *testing.T, app *fiber.App, adminToken string, stockA, stockB int) models.Product {
	t.Helper()

	status, env := doJSON(t, app, http.MethodPost, "/api/v1/admin/brands", adminToken, fiber.Map{
		"name": "Acme " + uuid.New().String(),
	})
	assert.Equal(t, http.StatusCreated, status)
	var brand models.Brand
	assert.NoError(t, json.Unmarshal(env.Data, &brand))

	status, env = doJSON(t, app, http.MethodPost, "/api/v1/admin/categories", adminToken, fiber.Map{
		"name": "Shoes " + uuid.New().String(),
	})
	assert.Equal(t, http.StatusCreated, status)
	var category models.Category
	assert.NoError(t, json.Unmarshal(env.Data, &category))

	status, env = doJSON(t, app, http.MethodPost, "/api/v1/admin/products", adminToken, fiber.Map{
		"name":        "Runner",
		"description": "Daily trainer",
		"brand_id":    brand.ID,
		"category_id": category.ID,
		"images":      []string{"runner.jpg"},
		"variants": []fiber.Map{
			{"sku": "RUN-41-" + uuid.New().String(), "attributes": fiber.Map{"SIZE": "41"}, "price": 100000, "cost_price": 60000, "stock": stockA},
			{"sku": "RUN-42-" + uuid.New().String(), "attributes": fiber.Map{"SIZE": "42"}, "price": 50000, "cost_price": 30000, "stock": stockB},
		},
	})
	assert.Equal(t, http.StatusCreated, status)

	var product models.Product
	assert.NoError(t, json.Unmarshal(env.Data, &product))
	assert.Len(t, product.Variants, 2)
	return product
}

func variantStock(t *testing.T, app *fiber.App, productID, variantID string) int {
	t.Helper()
	status, env := doJSON(t, app, http.MethodGet, "/api/v1/products/"+productID, "", nil)
	assert.Equal(t, http.StatusOK, status)
	var product models.Product
	assert.NoError(t, json.Unmarshal(env.Data, &product))
	for _, v := range product.Variants {
		if v.ID == variantID {
			return v.Stock
		}
	}
	t.Fatalf("variant %s not found on product %s", variantID, productID)
	return 0
}

func TestOrderWorkflow(t *testing.T) {
	app := setupApp(t)
	adminToken := login(t, app, "admin", "admin123")
	product := seedCatalog(t, app, adminToken, 5, 3)
	va, vb := product.Variants[0], product.Variants[1]

	customerToken := registerCustomer(t, app, "shopper")

	// Place an order: 2 x 100000 + 1 x 50000 = 250000.
	status, env := doJSON(t, app, http.MethodPost, "/api/v1/orders", customerToken, fiber.Map{
		"items": []fiber.Map{
			{"product_id": product.ID, "variant_id": va.ID, "quantity": 2},
			{"product_id": product.ID, "variant_id": vb.ID, "quantity": 1},
		},
		"shipping_address": "12 Ly Thuong Kiet",
		"payment_method":   "COD",
	})
	assert.Equal(t, http.StatusCreated, status)
	assert.True(t, env.Success)

	var order models.Order
	assert.NoError(t, json.Unmarshal(env.Data, &order))
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, 250000.0, order.TotalAmount)
	assert.Len(t, order.Items, 2)
	assert.NotEmpty(t, order.TrackingCode)

	// Stock was reserved.
	assert.Equal(t, 3, variantStock(t, app, product.ID, va.ID))
	assert.Equal(t, 2, variantStock(t, app, product.ID, vb.ID))

	// The owner can read the order.
	status, _ = doJSON(t, app, http.MethodGet, "/api/v1/orders/"+order.ID, customerToken, nil)
	assert.Equal(t, http.StatusOK, status)

	// Another customer cannot.
	otherToken := registerCustomer(t, app, "stranger")
	status, _ = doJSON(t, app, http.MethodGet, "/api/v1/orders/"+order.ID, otherToken, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/orders/"+order.ID+"/cancel", otherToken, nil)
	assert.Equal(t, http.StatusNotFound, status)

	// Cancelling returns every unit.
	status, env = doJSON(t, app, http.MethodPost, "/api/v1/orders/"+order.ID+"/cancel", customerToken, nil)
	assert.Equal(t, http.StatusOK, status)
	var cancelled models.Order
	assert.NoError(t, json.Unmarshal(env.Data, &cancelled))
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)

	assert.Equal(t, 5, variantStock(t, app, product.ID, va.ID))
	assert.Equal(t, 3, variantStock(t, app, product.ID, vb.ID))

	// A second cancel is rejected.
	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/orders/"+order.ID+"/cancel", customerToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestOrderValidationFailures(t *testing.T) {
	app := setupApp(t)
	adminToken := login(t, app, "admin", "admin123")
	product := seedCatalog(t, app, adminToken, 2, 3)
	va := product.Variants[0]

	customerToken := registerCustomer(t, app, "shopper")

	// Empty cart.
	status, _ := doJSON(t, app, http.MethodPost, "/api/v1/orders", customerToken, fiber.Map{
		"items": []fiber.Map{},
	})
	assert.Equal(t, http.StatusBadRequest, status)

	// Unknown variant: whole order rejected, no stock mutated.
	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/orders", customerToken, fiber.Map{
		"items": []fiber.Map{
			{"product_id": product.ID, "variant_id": va.ID, "quantity": 1},
			{"product_id": product.ID, "variant_id": "no-such-variant", "quantity": 1},
		},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, 2, variantStock(t, app, product.ID, va.ID))

	// More than available.
	status, env := doJSON(t, app, http.MethodPost, "/api/v1/orders", customerToken, fiber.Map{
		"items": []fiber.Map{{"product_id": product.ID, "variant_id": va.ID, "quantity": 99}},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, env.Success)
	assert.Equal(t, 2, variantStock(t, app, product.ID, va.ID))

	// Unauthenticated checkout.
	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/orders", "", fiber.Map{
		"items": []fiber.Map{{"product_id": product.ID, "variant_id": va.ID, "quantity": 1}},
	})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAdminOrderLifecycle(t *testing.T) {
	app := setupApp(t)
	adminToken := login(t, app, "admin", "admin123")
	product := seedCatalog(t, app, adminToken, 5, 5)
	customerToken := registerCustomer(t, app, "shopper")

	status, env := doJSON(t, app, http.MethodPost, "/api/v1/orders", customerToken, fiber.Map{
		"items": []fiber.Map{{"product_id": product.ID, "variant_id": product.Variants[0].ID, "quantity": 1}},
	})
	assert.Equal(t, http.StatusCreated, status)
	var order models.Order
	assert.NoError(t, json.Unmarshal(env.Data, &order))

	// pending -> confirmed -> shipping -> completed
	for _, next := range []string{models.StatusConfirmed, models.StatusShipping, models.StatusCompleted} {
		status, env = doJSON(t, app, http.MethodPut, "/api/v1/admin/orders/"+order.ID+"/status", adminToken, fiber.Map{
			"status": next,
		})
		assert.Equal(t, http.StatusOK, status, "transition to %s", next)
	}
	var completed models.Order
	assert.NoError(t, json.Unmarshal(env.Data, &completed))
	assert.NotNil(t, completed.ConfirmedAt)
	assert.NotNil(t, completed.ShippedAt)
	assert.NotNil(t, completed.CompletedAt)

	// Terminal orders cannot be reopened or cancelled.
	status, _ = doJSON(t, app, http.MethodPut, "/api/v1/admin/orders/"+order.ID+"/status", adminToken, fiber.Map{
		"status": models.StatusPending,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = doJSON(t, app, http.MethodPost, "/api/v1/orders/"+order.ID+"/cancel", customerToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	// A completed order kept its stock reservation.
	assert.Equal(t, 4, variantStock(t, app, product.ID, product.Variants[0].ID))

	// Unknown status value.
	status, _ = doJSON(t, app, http.MethodPut, "/api/v1/admin/orders/"+order.ID+"/status", adminToken, fiber.Map{
		"status": "delivered",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	// Payment and shipping updates.
	status, env = doJSON(t, app, http.MethodPut, "/api/v1/admin/orders/"+order.ID+"/payment", adminToken, fiber.Map{
		"payment_status": models.PaymentPaid,
	})
	assert.Equal(t, http.StatusOK, status)
	var paid models.Order
	assert.NoError(t, json.Unmarshal(env.Data, &paid))
	assert.Equal(t, models.PaymentPaid, paid.PaymentStatus)

	status, env = doJSON(t, app, http.MethodPut, "/api/v1/admin/orders/"+order.ID+"/shipping", adminToken, fiber.Map{
		"tracking_code": "TRKTEST123",
		"shipping_unit": "GHN",
	})
	assert.Equal(t, http.StatusOK, status)
	var shipped models.Order
	assert.NoError(t, json.Unmarshal(env.Data, &shipped))
	assert.Equal(t, "TRKTEST123", shipped.TrackingCode)
	assert.Equal(t, "GHN", shipped.ShippingUnit)

	// Admin cancelling a fresh pending order releases its stock.
	status, env = doJSON(t, app, http.MethodPost, "/api/v1/orders", customerToken, fiber.Map{
		"items": []fiber.Map{{"product_id": product.ID, "variant_id": product.Variants[1].ID, "quantity": 2}},
	})
	assert.Equal(t, http.StatusCreated, status)
	var second models.Order
	assert.NoError(t, json.Unmarshal(env.Data, &second))
	assert.Equal(t, 3, variantStock(t, app, product.ID, product.Variants[1].ID))

	status, _ = doJSON(t, app, http.MethodPut, "/api/v1/admin/orders/"+second.ID+"/status", adminToken, fiber.Map{
		"status": models.StatusCancelled,
	})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 5, variantStock(t, app, product.ID, product.Variants[1].ID))

	// Stats reflect the two orders.
	status, env = doJSON(t, app, http.MethodGet, "/api/v1/admin/orders/stats", adminToken, nil)
	assert.Equal(t, http.StatusOK, status)
	var stats []repositories.StatusStat
	assert.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.NotEmpty(t, stats)
}

func TestAdminProductUpdate(t *testing.T) {
	app := setupApp(t)
	adminToken := login(t, app, "admin", "admin123")
	product := seedCatalog(t, app, adminToken, 5, 3)

	// Edit the product keeping the existing SKUs, as the admin UI does.
	variants := make([]fiber.Map, 0, len(product.Variants))
	for _, v := range product.Variants {
		variants = append(variants, fiber.Map{
			"sku":        v.SKU,
			"attributes": v.Attributes,
			"price":      v.Price + 10000,
			"cost_price": v.CostPrice,
			"stock":      v.Stock,
		})
	}
	status, env := doJSON(t, app, http.MethodPut, "/api/v1/admin/products/"+product.ID, adminToken, fiber.Map{
		"name":        "Runner v2",
		"description": "Daily trainer, updated",
		"brand_id":    product.BrandID,
		"category_id": product.CategoryID,
		"images":      []string{"runner-v2.jpg"},
		"variants":    variants,
	})
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)

	status, env = doJSON(t, app, http.MethodGet, "/api/v1/products/"+product.ID, "", nil)
	assert.Equal(t, http.StatusOK, status)
	var updated models.Product
	assert.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "Runner v2", updated.Name)
	assert.Len(t, updated.Variants, 2)
	priceBySKU := make(map[string]float64)
	for _, v := range updated.Variants {
		priceBySKU[v.SKU] = v.Price
	}
	for _, v := range product.Variants {
		assert.Equal(t, v.Price+10000, priceBySKU[v.SKU])
	}
}

func TestAdminGate(t *testing.T) {
	app := setupApp(t)
	customerToken := registerCustomer(t, app, "shopper")

	// Customers cannot reach admin routes.
	status, _ := doJSON(t, app, http.MethodGet, "/api/v1/admin/orders", customerToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// Anonymous requests are rejected earlier.
	status, _ = doJSON(t, app, http.MethodGet, "/api/v1/admin/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	// Public catalog stays open.
	status, _ = doJSON(t, app, http.MethodGet, "/api/v1/products", "", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestAdminUserManagement(t *testing.T) {
	app := setupApp(t)
	adminToken := login(t, app, "admin", "admin123")

	status, env := doJSON(t, app, http.MethodPost, "/api/v1/admin/users", adminToken, fiber.Map{
		"username": "staff",
		"email":    "staff@example.com",
		"password": "password123",
		"role":     models.RoleAdmin,
	})
	assert.Equal(t, http.StatusCreated, status)
	var staff models.User
	assert.NoError(t, json.Unmarshal(env.Data, &staff))
	assert.Equal(t, models.RoleAdmin, staff.Role)

	// The new admin can log in and use admin routes.
	staffToken := login(t, app, "staff", "password123")
	status, _ = doJSON(t, app, http.MethodGet, "/api/v1/admin/users", staffToken, nil)
	assert.Equal(t, http.StatusOK, status)

	// Demote, then the gate closes.
	status, _ = doJSON(t, app, http.MethodPut, "/api/v1/admin/users/"+staff.ID, adminToken, fiber.Map{
		"role": models.RoleCustomer,
	})
	assert.Equal(t, http.StatusOK, status)

	demotedToken := login(t, app, "staff", "password123")
	status, _ = doJSON(t, app, http.MethodGet, "/api/v1/admin/users", demotedToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
}
