package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/custodia-labs/pdfboard/internal/core/domain"
)

// parseBody decodes and validates the request body into v.
func parseBody(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return ErrBadRequest()
	}
	if errs := validateRequest(v); len(errs) > 0 {
		return NewValidationError(errs)
	}
	return nil
}

func (s *Server) handleHealthy(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"result": "ok"})
}

func (s *Server) handleListChunks(c *fiber.Ctx) error {
	nodes, err := s.board.Nodes(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"chunks": nodes, "count": len(nodes)})
}

func (s *Server) handleSubmit(c *fiber.Ctx) error {
	var req SubmitRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	kind, err := domain.ParseContentKind(req.Kind)
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	chunk, err := s.board.Submit(ctx, req.Query, kind)
	if err != nil {
		return err
	}
	if !req.Wait {
		return c.Status(fiber.StatusAccepted).JSON(chunk)
	}

	settled, err := s.board.AwaitChunk(ctx, chunk.ID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(settled)
}

func (s *Server) handleGetChunk(c *fiber.Ctx) error {
	chunk, err := s.board.Chunk(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(chunk)
}

func (s *Server) handleSelect(c *fiber.Ctx) error {
	ctx := c.UserContext()
	matches, err := s.board.Select(ctx, c.Params("id"))
	if err != nil {
		return err
	}
	view, err := s.board.View(ctx)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"page": view.CurrentPage, "matches": matches})
}

func (s *Server) handleClearSelection(c *fiber.Ctx) error {
	if err := s.board.ClearSelection(c.UserContext()); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handlePosition(c *fiber.Ctx) error {
	var req PositionRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	ctx := c.UserContext()
	id := c.Params("id")
	pos := domain.Position{X: req.X, Y: req.Y}

	var err error
	switch req.Phase {
	case "begin":
		if err = s.board.BeginDrag(ctx, id); err == nil {
			err = s.board.Drag(ctx, id, pos)
		}
	case "drag":
		err = s.board.Drag(ctx, id, pos)
	case "end":
		err = s.board.EndDrag(ctx, id, pos)
	default:
		err = s.board.Move(ctx, id, pos)
	}
	if err != nil {
		return err
	}
	return s.respondChunk(c, id)
}

func (s *Server) handleResize(c *fiber.Ctx) error {
	var req ResizeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	id := c.Params("id")
	if err := s.board.Resize(c.UserContext(), id, req.Direction); err != nil {
		return err
	}
	return s.respondChunk(c, id)
}

func (s *Server) handleFont(c *fiber.Ctx) error {
	var req FontRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	id := c.Params("id")
	if err := s.board.AdjustFont(c.UserContext(), id, req.Delta); err != nil {
		return err
	}
	return s.respondChunk(c, id)
}

func (s *Server) handleRecolor(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := s.board.Recolor(c.UserContext(), id); err != nil {
		return err
	}
	return s.respondChunk(c, id)
}

// respondChunk writes the chunk's current state. Mutations on a chunk that
// was removed meanwhile succeed as no-ops, so a missing chunk is a 404 here.
func (s *Server) respondChunk(c *fiber.Ctx, id string) error {
	chunk, err := s.board.Chunk(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(chunk)
}

func (s *Server) handleRequestDelete(c *fiber.Ctx) error {
	id := c.Params("id")
	ctx := c.UserContext()
	if _, err := s.board.Chunk(ctx, id); err != nil {
		return err
	}
	if err := s.board.RequestDelete(ctx, id); err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"id": id, "pending": true})
}

func (s *Server) handlePendingDelete(c *fiber.Ctx) error {
	id, pending, err := s.board.PendingDelete(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"id": id, "pending": pending})
}

func (s *Server) handleConfirmDelete(c *fiber.Ctx) error {
	id, err := s.board.ConfirmDelete(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"id": id, "removed": true})
}

func (s *Server) handleCancelDelete(c *fiber.Ctx) error {
	if err := s.board.CancelDelete(c.UserContext()); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleGraph(c *fiber.Ctx) error {
	ctx := c.UserContext()
	nodes, err := s.board.Nodes(ctx)
	if err != nil {
		return err
	}
	edges, err := s.board.Edges(ctx)
	if err != nil {
		return err
	}
	selected, err := s.board.Selected(ctx)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"nodes": nodes, "edges": edges, "selected": selected})
}

func (s *Server) handleConnect(c *fiber.Ctx) error {
	var req ConnectRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	edge, err := s.board.Connect(c.UserContext(), req.Source, req.Target)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(edge)
}

func (s *Server) handleDisconnect(c *fiber.Ctx) error {
	if err := s.board.Disconnect(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleDocument(c *fiber.Ctx) error {
	ctx := c.UserContext()
	view, err := s.board.View(ctx)
	if err != nil {
		return err
	}
	_, runs, err := s.board.Surface(ctx)
	if err != nil {
		return err
	}
	upload, err := s.board.UploadStatus(ctx)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"path":         view.Path,
		"page_count":   view.PageCount,
		"current_page": view.CurrentPage,
		"runs":         runs,
		"upload":       upload,
	})
}

func (s *Server) handleOpenDocument(c *fiber.Ctx) error {
	var req OpenRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	view, err := s.board.OpenDocument(c.UserContext(), req.Path)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(view)
}

func (s *Server) handleSetPage(c *fiber.Ctx) error {
	var req PageRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ctx := c.UserContext()
	if err := s.board.SetPage(ctx, req.Page); err != nil {
		return err
	}
	view, err := s.board.View(ctx)
	if err != nil {
		return err
	}
	return c.JSON(view)
}
