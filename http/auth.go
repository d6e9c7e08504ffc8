// server/http/auth.go
package http

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/lumina-notes/lumina-server/domain"
	"github.com/lumina-notes/lumina-server/identity"
)

func (s *Server) handleRoot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"name":   "Lumina",
		"status": "online",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleAbout(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"name":        "Lumina",
		"description": "Note-taking for people who think in connections.",
	})
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleSignUp registers a local user. In deployments fronted by the external
// identity provider this route goes unused; users arrive via the webhook.
func (s *Server) handleSignUp(c *fiber.Ctx) error {
	var req credentials
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid request body")
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		return c.Status(fiber.StatusBadRequest).SendString("Email is required")
	}
	if len(req.Password) < 8 {
		return c.Status(fiber.StatusBadRequest).SendString("Password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return s.internal(c, "sign_up", err)
	}

	userID := "user_" + uuid.NewString()
	if err := s.users.CreateLocalUser(c.Context(), userID, req.Email, string(hash)); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return c.Status(fiber.StatusConflict).SendString("Email already registered")
		}
		return s.internal(c, "sign_up", err)
	}

	token, err := s.ident.IssueToken(userID, req.Email)
	if err != nil {
		return s.internal(c, "sign_up", err)
	}
	return c.JSON(fiber.Map{"token": token, "userId": userID})
}

func (s *Server) handleSignIn(c *fiber.Ctx) error {
	var req credentials
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid request body")
	}

	user, hash, err := s.users.LocalUserByEmail(c.Context(), strings.TrimSpace(req.Email))
	if errors.Is(err, domain.ErrNotFound) {
		return c.Status(fiber.StatusUnauthorized).SendString("Invalid credentials")
	}
	if err != nil {
		return s.internal(c, "sign_in", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		return c.Status(fiber.StatusUnauthorized).SendString("Invalid credentials")
	}

	token, err := s.ident.IssueToken(user.ID, user.Email)
	if err != nil {
		return s.internal(c, "sign_in", err)
	}
	return c.JSON(fiber.Map{"token": token, "userId": user.ID})
}

type webhookEvent struct {
	Type string `json:"type"`
	Data struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"data"`
}

// handleIdentityWebhook receives user events from the identity provider and
// corrects the placeholder emails note creation leaves behind.
func (s *Server) handleIdentityWebhook(c *fiber.Ctx) error {
	body := c.Body()
	sig := c.Get("X-Webhook-Signature")
	if !identity.VerifyWebhookSignature(s.webhookSecret, body, sig) {
		return c.Status(fiber.StatusUnauthorized).SendString("Invalid signature")
	}

	var ev webhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid payload")
	}

	switch ev.Type {
	case "user.created", "user.updated":
		if ev.Data.ID == "" || ev.Data.Email == "" {
			return c.Status(fiber.StatusBadRequest).SendString("Invalid payload")
		}
		if err := s.users.UpsertUser(c.Context(), ev.Data.ID, ev.Data.Email); err != nil {
			return s.internal(c, "webhook_identity", err)
		}
	default:
		// Unknown event types are acknowledged so the provider stops retrying.
	}

	return c.JSON(fiber.Map{"received": true})
}
