package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"alfredoptarigan/resume-matcher/internal/models"
	"alfredoptarigan/resume-matcher/internal/repositories"
)

const sessionKey = "session"

// Session is the resolved identity for the current request. Plan is read
// fresh from the user row so billing-webhook plan changes apply immediately.
type Session struct {
	UserID uuid.UUID
	Plan   models.Plan
	Email  string
	Name   string
}

type AuthMiddleware struct {
	userRepo  repositories.UserRepository
	jwtSecret []byte
}

func NewAuthMiddleware(userRepo repositories.UserRepository, jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
	}
}

// RequireAuth resolves the bearer token into a Session or rejects with 401.
func (m *AuthMiddleware) RequireAuth(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(header, "Bearer ") {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "unauthorized",
		})
	}

	tokenStr := strings.TrimPrefix(header, "Bearer ")
	token, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "unauthorized",
		})
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "unauthorized",
		})
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "unauthorized",
		})
	}

	user, err := m.userRepo.FindByID(userID)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "unauthorized",
		})
	}

	c.Locals(sessionKey, &Session{
		UserID: user.ID,
		Plan:   user.Plan,
		Email:  user.Email,
		Name:   user.Name,
	})

	return c.Next()
}

// IssueToken signs a JWT for the given user.
func (m *AuthMiddleware) IssueToken(user *models.User, ttl time.Duration) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.jwtSecret)
}

// currentSession returns the session set by RequireAuth.
func currentSession(c *fiber.Ctx) *Session {
	session, _ := c.Locals(sessionKey).(*Session)
	return session
}
