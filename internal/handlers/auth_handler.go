package handlers

import (
	"fmt"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/minhdang03/server/internal/models"
	"github.com/minhdang03/server/internal/services"
)

// AuthHandler handles HTTP requests for authentication and user management.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the public authentication routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
}

// RegisterAdminRoutes registers the user management routes.
func (h *AuthHandler) RegisterAdminRoutes(router fiber.Router) {
	userRoutes := router.Group("/users")
	userRoutes.Get("/", h.HandleGetUsers)
	userRoutes.Get("/:id", h.HandleGetUserByID)
	userRoutes.Post("/", h.HandleCreateUser)
	userRoutes.Put("/:id", h.HandleUpdateUser)
	userRoutes.Delete("/:id", h.HandleDeleteUser)
}

// HandleRegister handles new user registration. Self-registered accounts
// are always customers; the role field in the payload is ignored.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var user models.User
	if err := c.BodyParser(&user); err != nil {
		log.Printf("Error parsing register request body: %v", err)
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	user.Role = models.RoleCustomer

	// Validate the user struct
	if err := h.validate.Struct(user); err != nil {
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

	if err := h.authService.RegisterUser(&user); err != nil {
		log.Printf("Error registering user: %v", err)
		if strings.Contains(err.Error(), "already taken") || strings.Contains(err.Error(), "already registered") {
			return fail(c, fiber.StatusConflict, err.Error())
		}
		return fail(c, fiber.StatusInternalServerError, "Could not register user")
	}

	// For security, do not return the password hash
	user.Password = ""
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "User registered successfully",
		"data":    user,
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin handles user login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing login request body: %v", err)
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if err := h.validate.Struct(req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Username and password are required")
	}

	token, user, err := h.authService.LoginUser(req.Username, req.Password)
	if err != nil {
		log.Printf("Error during login for user %s: %v", req.Username, err)
		return fail(c, fiber.StatusUnauthorized, "Authentication failed")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Login successful",
		"token":   token,
		"data":    user,
	})
}

// HandleGetUsers lists all accounts.
func (h *AuthHandler) HandleGetUsers(c *fiber.Ctx) error {
	users, err := h.authService.GetUsers()
	if err != nil {
		log.Printf("Error getting users: %v", err)
		return fail(c, fiber.StatusInternalServerError, "Could not retrieve users")
	}
	return c.JSON(fiber.Map{"success": true, "data": users})
}

// HandleGetUserByID retrieves one account.
func (h *AuthHandler) HandleGetUserByID(c *fiber.Ctx) error {
	user, err := h.authService.GetUserByID(c.Params("id"))
	if err != nil {
		log.Printf("Error getting user %s: %v", c.Params("id"), err)
		return fail(c, statusForError(err), "User not found")
	}
	return c.JSON(fiber.Map{"success": true, "data": user})
}

// HandleCreateUser creates an account with an explicit role.
func (h *AuthHandler) HandleCreateUser(c *fiber.Ctx) error {
	var user models.User
	if err := c.BodyParser(&user); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.validate.Struct(user); err != nil {
		return fail(c, fiber.StatusBadRequest, "Validation failed: "+err.Error())
	}
	if err := h.authService.CreateUser(&user); err != nil {
		log.Printf("Error creating user: %v", err)
		if strings.Contains(err.Error(), "already taken") || strings.Contains(err.Error(), "already registered") {
			return fail(c, fiber.StatusConflict, err.Error())
		}
		return fail(c, statusForError(err), err.Error())
	}
	user.Password = ""
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": user})
}

// HandleUpdateUser updates an account, including its role.
func (h *AuthHandler) HandleUpdateUser(c *fiber.Ctx) error {
	var body models.User
	if err := c.BodyParser(&body); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}
	user, err := h.authService.UpdateUser(c.Params("id"), &body)
	if err != nil {
		log.Printf("Error updating user %s: %v", c.Params("id"), err)
		return fail(c, statusForError(err), err.Error())
	}
	return c.JSON(fiber.Map{"success": true, "data": user})
}

// HandleDeleteUser removes an account.
func (h *AuthHandler) HandleDeleteUser(c *fiber.Ctx) error {
	if err := h.authService.DeleteUser(c.Params("id")); err != nil {
		log.Printf("Error deleting user %s: %v", c.Params("id"), err)
		return fail(c, statusForError(err), err.Error())
	}
	return c.JSON(fiber.Map{"success": true, "message": "User deleted successfully"})
}
