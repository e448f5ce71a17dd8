package handlers

import (
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/minhdang03/server/internal/models"
	"github.com/minhdang03/server/internal/repositories"
	"github.com/minhdang03/server/internal/services"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the customer order routes. The group must
// already be behind AuthRequired.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Get("/", h.HandleGetMyOrders)
	orderRoutes.Get("/:id", h.HandleGetOrder)
	orderRoutes.Post("/:id/cancel", h.HandleCancelOrder)
}

// RegisterAdminRoutes registers the admin order routes. The group must be
// behind AuthRequired and AdminRequired.
func (h *OrderHandler) RegisterAdminRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleListOrders)
	orderRoutes.Get("/stats", h.HandleGetStats)
	orderRoutes.Get("/:id", h.HandleGetOrderAdmin)
	orderRoutes.Put("/:id/status", h.HandleUpdateStatus)
	orderRoutes.Put("/:id/payment", h.HandleUpdatePayment)
	orderRoutes.Put("/:id/shipping", h.HandleUpdateShipping)
}

// CreateOrderBody is the request body for order creation.
type CreateOrderBody struct {
	Items           []services.OrderLineRequest `json:"items" validate:"required,min=1,dive"`
	CustomerInfo    models.CustomerInfo         `json:"customer_info"`
	ShippingAddress string                      `json:"shipping_address"`
	PaymentMethod   string                      `json:"payment_method" validate:"omitempty,oneof=COD bank_transfer"`
}

// HandleCreateOrder places an order for the authenticated user.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var body CreateOrderBody
	if err := c.BodyParser(&body); err != nil {
		log.Printf("Error parsing order request body: %v", err)
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.validate.Struct(body); err != nil {
		return fail(c, fiber.StatusBadRequest, fmt.Sprintf("Validation failed: %v", err))
	}

	userID, _ := c.Locals("user_id").(string)

	order, err := h.service.CreateOrder(services.CreateOrderRequest{
		UserID:          userID,
		CustomerInfo:    body.CustomerInfo,
		Items:           body.Items,
		ShippingAddress: body.ShippingAddress,
		PaymentMethod:   body.PaymentMethod,
	})
	if err != nil {
		log.Printf("Error creating order: %v", err)
		status := statusForError(err)
		if status == fiber.StatusNotFound {
			// A cart naming an unknown product or variant is a bad request,
			// not a missing resource.
			status = fiber.StatusBadRequest
		}
		return fail(c, status, err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    order,
	})
}

// HandleGetMyOrders lists the authenticated user's orders.
func (h *OrderHandler) HandleGetMyOrders(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)

	orders, total, err := h.service.GetMyOrders(userID, page, limit)
	if err != nil {
		log.Printf("Error getting orders for user %s: %v", userID, err)
		return fail(c, fiber.StatusInternalServerError, "Could not retrieve orders")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
		"total":   total,
		"page":    page,
	})
}

// HandleGetOrder returns one of the authenticated user's orders.
func (h *OrderHandler) HandleGetOrder(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	order, err := h.service.GetOrderForUser(c.Params("id"), userID)
	if err != nil {
		log.Printf("Error getting order %s: %v", c.Params("id"), err)
		return fail(c, statusForError(err), "Order not found")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    order,
	})
}

// HandleCancelOrder cancels one of the authenticated user's pending orders.
func (h *OrderHandler) HandleCancelOrder(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	order, err := h.service.CancelOrder(c.Params("id"), userID)
	if err != nil {
		log.Printf("Error cancelling order %s: %v", c.Params("id"), err)
		return fail(c, statusForError(err), err.Error())
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Order cancelled",
		"data":    order,
	})
}

// HandleListOrders lists orders for the admin view with optional filters.
func (h *OrderHandler) HandleListOrders(c *fiber.Ctx) error {
	filter := repositories.OrderFilter{
		Status: c.Query("status"),
		Phone:  c.Query("phone"),
		Page:   c.QueryInt("page", 1),
		Limit:  c.QueryInt("limit", 10),
	}
	if from := c.Query("from_date"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return fail(c, fiber.StatusBadRequest, "Invalid from_date")
		}
		filter.FromDate = &t
	}
	if to := c.Query("to_date"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return fail(c, fiber.StatusBadRequest, "Invalid to_date")
		}
		filter.ToDate = &t
	}
	if filter.Status != "" && !models.ValidStatus(filter.Status) {
		return fail(c, fiber.StatusBadRequest, "Invalid status filter")
	}

	orders, total, err := h.service.ListOrders(filter)
	if err != nil {
		log.Printf("Error listing orders: %v", err)
		return fail(c, fiber.StatusInternalServerError, "Could not retrieve orders")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
		"total":   total,
		"page":    filter.Page,
	})
}

// HandleGetStats aggregates order counts and revenue by status.
func (h *OrderHandler) HandleGetStats(c *fiber.Ctx) error {
	stats, err := h.service.GetStats()
	if err != nil {
		log.Printf("Error getting order stats: %v", err)
		return fail(c, fiber.StatusInternalServerError, "Could not retrieve order stats")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    stats,
	})
}

// HandleGetOrderAdmin returns any order by ID.
func (h *OrderHandler) HandleGetOrderAdmin(c *fiber.Ctx) error {
	order, err := h.service.GetOrderByID(c.Params("id"))
	if err != nil {
		log.Printf("Error getting order %s: %v", c.Params("id"), err)
		return fail(c, statusForError(err), "Order not found")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    order,
	})
}

// HandleUpdateStatus applies an admin status change.
func (h *OrderHandler) HandleUpdateStatus(c *fiber.Ctx) error {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if body.Status == "" {
		return fail(c, fiber.StatusBadRequest, "Status is required")
	}

	order, err := h.service.UpdateOrderStatus(c.Params("id"), body.Status)
	if err != nil {
		log.Printf("Error updating status of order %s: %v", c.Params("id"), err)
		return fail(c, statusForError(err), err.Error())
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("Order status updated to %s", order.Status),
		"data":    order,
	})
}

// HandleUpdatePayment applies an admin payment status change.
func (h *OrderHandler) HandleUpdatePayment(c *fiber.Ctx) error {
	var body struct {
		PaymentStatus string `json:"payment_status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if body.PaymentStatus == "" {
		return fail(c, fiber.StatusBadRequest, "Payment status is required")
	}

	order, err := h.service.UpdatePaymentStatus(c.Params("id"), body.PaymentStatus)
	if err != nil {
		log.Printf("Error updating payment status of order %s: %v", c.Params("id"), err)
		return fail(c, statusForError(err), err.Error())
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Payment status updated",
		"data":    order,
	})
}

// HandleUpdateShipping attaches tracking details to an order.
func (h *OrderHandler) HandleUpdateShipping(c *fiber.Ctx) error {
	var body struct {
		TrackingCode string `json:"tracking_code"`
		ShippingUnit string `json:"shipping_unit"`
	}
	if err := c.BodyParser(&body); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	order, err := h.service.UpdateShippingInfo(c.Params("id"), body.TrackingCode, body.ShippingUnit)
	if err != nil {
		log.Printf("Error updating shipping info of order %s: %v", c.Params("id"), err)
		return fail(c, statusForError(err), err.Error())
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Shipping info updated",
		"data":    order,
	})
}
