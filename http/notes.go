// server/http/notes.go
package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/lumina-notes/lumina-server/domain"
	"github.com/lumina-notes/lumina-server/identity"
)

func (s *Server) handleListNotes(c *fiber.Ctx) error {
	ident, ok := identity.FromContext(c)
	if !ok {
		return unauthorized(c)
	}

	notes, err := s.notes.ListNotes(c.Context(), ident.UserID)
	if err != nil {
		return s.internal(c, "notes_get", err)
	}
	return c.JSON(notes)
}

func (s *Server) handleCreateNote(c *fiber.Ctx) error {
	ident, ok := identity.FromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid request body")
	}
	if strings.TrimSpace(req.Title) == "" {
		return c.Status(fiber.StatusBadRequest).SendString("Title is required")
	}

	// The identity provider's webhook may not have delivered the user yet;
	// creation must not depend on it.
	if err := s.notes.EnsureUser(c.Context(), ident.UserID); err != nil {
		return s.internal(c, "notes_post", err)
	}

	note, err := s.notes.CreateNote(c.Context(), ident.UserID, req.Title, req.Content)
	if err != nil {
		return s.internal(c, "notes_post", err)
	}

	s.hub.Broadcast(ident.UserID, "note_created", &note)
	return c.JSON(note)
}

func (s *Server) handleGetNote(c *fiber.Ctx) error {
	ident, ok := identity.FromContext(c)
	if !ok {
		return unauthorized(c)
	}

	detail, err := s.notes.GetNote(c.Context(), c.Params("id"), ident.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).SendString("Note not found")
	}
	if err != nil {
		return s.internal(c, "note_get", err)
	}
	return c.JSON(detail)
}

func (s *Server) handleUpdateNote(c *fiber.Ctx) error {
	ident, ok := identity.FromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var patch domain.NotePatch
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid request body")
	}

	note, err := s.notes.UpdateNote(c.Context(), c.Params("id"), ident.UserID, patch)
	if errors.Is(err, domain.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).SendString("Note not found")
	}
	if err != nil {
		return s.internal(c, "note_patch", err)
	}

	s.hub.Broadcast(ident.UserID, "note_updated", &note)
	return c.JSON(note)
}

func (s *Server) handleDeleteNote(c *fiber.Ctx) error {
	ident, ok := identity.FromContext(c)
	if !ok {
		return unauthorized(c)
	}

	note, err := s.notes.DeleteNote(c.Context(), c.Params("id"), ident.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).SendString("Note not found")
	}
	if err != nil {
		return s.internal(c, "note_delete", err)
	}

	s.hub.Broadcast(ident.UserID, "note_deleted", &note)
	return c.JSON(note)
}

func (s *Server) handleSearchNotes(c *fiber.Ctx) error {
	ident, ok := identity.FromContext(c)
	if !ok {
		return unauthorized(c)
	}

	query := c.Query("q")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).SendString("Search query is required")
	}

	notes, err := s.notes.SearchNotes(c.Context(), ident.UserID, query)
	if err != nil {
		return s.internal(c, "notes_search", err)
	}
	return c.JSON(notes)
}
