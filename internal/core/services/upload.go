package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/pdfboard/internal/core/domain"
	"github.com/custodia-labs/pdfboard/internal/core/ports/driven"
	"github.com/custodia-labs/pdfboard/internal/logger"
)

// UploadTracker runs the upload lifecycle: Idle -> Uploading -> {Ready | Failed}.
// Page texts are gathered on the loop; the file is read and sent on a
// goroutine whose completion is posted back.
type UploadTracker struct {
	backend  driven.InferenceBackend
	renderer driven.DocumentRenderer
	poster   Poster

	status   domain.UploadStatus
	onChange func(domain.UploadStatus)

	ctx     context.Context
	cancel  context.CancelFunc
	running *inflight
}

// NewUploadTracker creates a tracker in the Idle state.
func NewUploadTracker(backend driven.InferenceBackend, renderer driven.DocumentRenderer, poster Poster) *UploadTracker {
	ctx, cancel := context.WithCancel(context.Background())
	return &UploadTracker{
		backend:  backend,
		renderer: renderer,
		poster:   poster,
		status:   domain.UploadStatus{State: domain.UploadIdle},
		ctx:      ctx,
		cancel:   cancel,
		running:  newInflight(),
	}
}

// OnChange registers the callback run on the loop after each transition.
func (u *UploadTracker) OnChange(fn func(domain.UploadStatus)) {
	u.onChange = fn
}

// Status returns the current lifecycle state.
func (u *UploadTracker) Status() domain.UploadStatus {
	return u.status
}

// Start uploads path to the backend. Returns domain.ErrUploadInProgress if an
// upload is already running.
func (u *UploadTracker) Start(ctx context.Context, path string) error {
	if !u.status.State.CanTransition(domain.UploadUploading) {
		return domain.ErrUploadInProgress
	}
	if u.backend == nil {
		return domain.ErrBackendUnavailable
	}

	pages, err := u.pageTexts(ctx)
	if err != nil {
		return fmt.Errorf("collect page text: %w", err)
	}
	if !u.running.start() {
		return domain.ErrBoardClosed
	}

	u.transition(domain.UploadStatus{State: domain.UploadUploading})
	logger.Info("upload: sending %s (%d pages)", filepath.Base(path), len(pages))

	go func() {
		defer u.running.finish()
		err := u.send(path, pages)
		if !u.poster.Post(func() { u.finish(err) }) {
			logger.Debug("upload: loop closed, result discarded")
		}
	}()
	return nil
}

// Reset returns to Idle unless an upload is running.
func (u *UploadTracker) Reset() {
	if u.status.State == domain.UploadUploading {
		return
	}
	u.transition(domain.UploadStatus{State: domain.UploadIdle})
}

// Wait blocks until the running upload, if any, has produced its result.
func (u *UploadTracker) Wait(ctx context.Context) error {
	return u.running.wait(ctx)
}

// Close abandons a running upload and waits for its goroutine.
func (u *UploadTracker) Close() {
	u.cancel()
	u.running.close()
}

func (u *UploadTracker) pageTexts(ctx context.Context) ([]string, error) {
	view := u.renderer.View()
	pages := make([]string, 0, view.PageCount)
	for p := 1; p <= view.PageCount; p++ {
		text, err := u.renderer.PageText(ctx, p)
		if err != nil {
			return nil, err
		}
		pages = append(pages, text)
	}
	return pages, nil
}

func (u *UploadTracker) send(path string, pages []string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}
	return u.backend.UploadDocument(u.ctx, driven.UploadedDocument{
		Name:  filepath.Base(path),
		Data:  data,
		Pages: pages,
	})
}

// finish runs on the loop.
func (u *UploadTracker) finish(err error) {
	if err != nil {
		logger.Warn("upload: %v", err)
		u.transition(domain.UploadStatus{State: domain.UploadFailed, Error: err.Error()})
		return
	}
	logger.Info("upload: document ready")
	u.transition(domain.UploadStatus{State: domain.UploadReady})
}

func (u *UploadTracker) transition(next domain.UploadStatus) {
	if !u.status.State.CanTransition(next.State) {
		return
	}
	u.status = next
	if u.onChange != nil {
		u.onChange(next)
	}
}
