package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"alfredoptarigan/resume-matcher/internal/models"
	"alfredoptarigan/resume-matcher/internal/repositories"
)

type AuthHandler struct {
	userRepo   repositories.UserRepository
	middleware *AuthMiddleware
	tokenTTL   time.Duration
}

func NewAuthHandler(
	userRepo repositories.UserRepository,
	middleware *AuthMiddleware,
	tokenTTL time.Duration,
) *AuthHandler {
	return &AuthHandler{
		userRepo:   userRepo,
		middleware: middleware,
		tokenTTL:   tokenTTL,
	}
}

// HandleSignUp handles POST /auth/sign-up.
func (h *AuthHandler) HandleSignUp(c *fiber.Ctx) error {
	var req models.SignUpRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request payload",
		})
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "a valid email is required",
		})
	}
	if len(req.Password) < 8 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "password must be at least 8 characters",
		})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create user",
		})
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        req.Email,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: string(hash),
		Plan:         models.PlanFree,
	}

	if err := h.userRepo.Create(user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "email already registered",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create user",
		})
	}

	token, err := h.middleware.IssueToken(user, h.tokenTTL)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to issue token",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(models.AuthResponse{
		Token: token,
		User:  *user,
	})
}

// HandleSignIn handles POST /auth/sign-in.
func (h *AuthHandler) HandleSignIn(c *fiber.Ctx) error {
	var req models.SignInRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request payload",
		})
	}

	user, err := h.userRepo.FindByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid email or password",
		})
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid email or password",
		})
	}

	token, err := h.middleware.IssueToken(user, h.tokenTTL)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to issue token",
		})
	}

	return c.JSON(models.AuthResponse{
		Token: token,
		User:  *user,
	})
}
