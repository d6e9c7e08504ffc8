// server/http/server.go
package http

import (
	"context"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/lumina-notes/lumina-server/domain"
	"github.com/lumina-notes/lumina-server/identity"
)

// NoteStore is the slice of the store the note handlers need.
type NoteStore interface {
	EnsureUser(ctx context.Context, userID string) error
	ListNotes(ctx context.Context, userID string) ([]domain.Note, error)
	CreateNote(ctx context.Context, userID, title, content string) (domain.Note, error)
	GetNote(ctx context.Context, id, userID string) (domain.NoteDetail, error)
	UpdateNote(ctx context.Context, id, userID string, patch domain.NotePatch) (domain.Note, error)
	DeleteNote(ctx context.Context, id, userID string) (domain.Note, error)
	SearchNotes(ctx context.Context, userID, query string) ([]domain.Note, error)
}

// UserStore backs the local credential flow and the identity webhook.
type UserStore interface {
	UpsertUser(ctx context.Context, userID, email string) error
	CreateLocalUser(ctx context.Context, userID, email, passwordHash string) error
	LocalUserByEmail(ctx context.Context, email string) (domain.User, string, error)
}

// Broadcaster delivers note lifecycle events to the owner's connections.
type Broadcaster interface {
	Broadcast(userID, msgType string, note *domain.Note)
}

type Server struct {
	notes         NoteStore
	users         UserStore
	ident         *identity.Service
	hub           Broadcaster
	log           zerolog.Logger
	webhookSecret string
	allowOrigins  string
}

type Options struct {
	Notes         NoteStore
	Users         UserStore
	Identity      *identity.Service
	Hub           Broadcaster
	Logger        zerolog.Logger
	WebhookSecret string
	AllowOrigins  string
}

func NewServer(opts Options) *Server {
	return &Server{
		notes:         opts.Notes,
		users:         opts.Users,
		ident:         opts.Identity,
		hub:           opts.Hub,
		log:           opts.Logger,
		webhookSecret: opts.WebhookSecret,
		allowOrigins:  opts.AllowOrigins,
	}
}

// App builds the Fiber application with the full route surface.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			if code == fiber.StatusInternalServerError {
				s.log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
				return c.Status(code).SendString("Internal Error")
			}
			return c.Status(code).SendString(err.Error())
		},
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: s.allowOrigins,
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	app.Use(s.ident.Middleware(identity.MiddlewareConfig{
		PublicRoutes:    []string{"/", "/sign-in", "/sign-up", "/about"},
		IgnoredPrefixes: []string{"/api/webhook", "/static"},
	}))

	app.Get("/", s.handleRoot)
	app.Get("/about", s.handleAbout)
	app.Post("/sign-up", s.handleSignUp)
	app.Post("/sign-in", s.handleSignIn)
	app.Post("/api/webhook/identity", s.handleIdentityWebhook)

	api := app.Group("/api")
	api.Get("/notes", s.handleListNotes)
	api.Post("/notes", s.handleCreateNote)
	api.Get("/notes/search", s.handleSearchNotes)
	api.Get("/notes/:id", s.handleGetNote)
	api.Patch("/notes/:id", s.handleUpdateNote)
	api.Delete("/notes/:id", s.handleDeleteNote)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(s.handleWebSocket))

	return app
}

// internal logs the cause under an operation tag and hides it from the
// response body.
func (s *Server) internal(c *fiber.Ctx, op string, err error) error {
	s.log.Error().Err(err).Str("op", op).Msg("request failed")
	return c.Status(fiber.StatusInternalServerError).SendString("Internal Error")
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
}
