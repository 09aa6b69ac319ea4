// Package httpapi exposes the board over a JSON HTTP API built on fiber.
//
// Domain errors are mapped to status codes by ErrorHandler; request bodies
// are validated with go-playground/validator and rejected with 422.
package httpapi

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/pdfboard/internal/core/ports/driving"
	"github.com/custodia-labs/pdfboard/internal/logger"
)

// ErrMissingBoard is returned when the server is built without a board.
var ErrMissingBoard = errors.New("httpapi: board service is required")

// Server serves the board API.
type Server struct {
	app   *fiber.App
	board driving.BoardService
}

// New creates the server and registers every route. gatherer may be nil, in
// which case /metrics is not served.
func New(board driving.BoardService, gatherer prometheus.Gatherer) (*Server, error) {
	if board == nil {
		return nil, ErrMissingBoard
	}

	s := &Server{
		app: fiber.New(fiber.Config{
			ErrorHandler:          ErrorHandler,
			DisableStartupMessage: true,
		}),
		board: board,
	}
	s.routes(gatherer)
	return s, nil
}

func (s *Server) routes(gatherer prometheus.Gatherer) {
	var (
		check = s.app.Group("/check")
		apiv1 = s.app.Group("/api/v1")
	)

	check.Get("/healthy", s.handleHealthy)

	if gatherer != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{
			EnableOpenMetrics: true,
		})))
	}

	apiv1.Get("/chunks", s.handleListChunks)
	apiv1.Post("/chunks", s.handleSubmit)
	apiv1.Get("/chunks/:id", s.handleGetChunk)
	apiv1.Post("/chunks/:id/select", s.handleSelect)
	apiv1.Patch("/chunks/:id/position", s.handlePosition)
	apiv1.Post("/chunks/:id/resize", s.handleResize)
	apiv1.Post("/chunks/:id/font", s.handleFont)
	apiv1.Post("/chunks/:id/recolor", s.handleRecolor)
	apiv1.Post("/chunks/:id/delete-request", s.handleRequestDelete)

	apiv1.Delete("/selection", s.handleClearSelection)

	apiv1.Get("/delete", s.handlePendingDelete)
	apiv1.Post("/delete/confirm", s.handleConfirmDelete)
	apiv1.Post("/delete/cancel", s.handleCancelDelete)

	apiv1.Get("/graph", s.handleGraph)
	apiv1.Post("/edges", s.handleConnect)
	apiv1.Delete("/edges/:id", s.handleDisconnect)

	apiv1.Get("/document", s.handleDocument)
	apiv1.Put("/document", s.handleOpenDocument)
	apiv1.Put("/document/page", s.handleSetPage)
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run listens on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http api listening on %s", addr)
		errCh <- s.app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("http api shutting down")
		return s.app.Shutdown()
	}
}
