package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/pdfboard/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/pdfboard/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/pdfboard/internal/adapters/driving/tui/components/page"
	"github.com/custodia-labs/pdfboard/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/pdfboard/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/pdfboard/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/pdfboard/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/pdfboard/internal/core/domain"
)

// Actions reported through messages.ActionCompleted.
const (
	actionResize        = "resize"
	actionFont          = "font"
	actionRecolor       = "recolor"
	actionConnect       = "connect"
	actionDisconnect    = "disconnect"
	actionClear         = "clear selection"
	actionRequestDelete = "request delete"
	actionConfirmDelete = "delete"
	actionCancelDelete  = "keep"
	actionPage          = "page"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to the board.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	styles *styles.Styles
	keymap *keymap.KeyMap

	chunks    *list.ChunkList
	page      *page.Panel
	input     *input.QueryInput
	statusBar *status.Bar

	// mode decides what keys drive.
	mode messages.Mode

	// snapshot is the last board state read.
	snapshot messages.Snapshot

	// events is the board subscription, re-armed after every event.
	events      <-chan domain.Event
	unsubscribe func()

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:     ports,
		ctx:       context.Background(),
		styles:    s,
		keymap:    km,
		chunks:    list.NewChunkList(s),
		page:      page.NewPanel(s),
		input:     input.NewQueryInput(s),
		statusBar: status.NewBar(s, km),
		mode:      messages.ModeBoard,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
// It subscribes to board events and loads the first snapshot.
func (a *App) Init() tea.Cmd {
	if a.events == nil {
		a.events, a.unsubscribe = a.ports.Board.Subscribe()
	}
	return tea.Batch(
		tea.SetWindowTitle("pdfboard"),
		a.loadBoard(),
		waitForEvent(a.events),
	)
}

// Close unsubscribes from board events.
func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
}

// Update implements tea.Model.
// It handles messages and updates the model state.
//
//nolint:gocyclo // central message handler
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a, a.handleKey(msg)

	case messages.BoardLoaded:
		if msg.Err != nil {
			a.setError(msg.Err)
			return a, nil
		}
		a.applySnapshot(msg.Snapshot)
		return a, nil

	case messages.BoardChanged:
		return a, tea.Batch(a.loadBoard(), waitForEvent(a.events))

	case messages.QuerySubmitted:
		if msg.Err != nil {
			a.setError(msg.Err)
			return a, nil
		}
		a.statusBar.SetState(status.StateInfo)
		a.statusBar.SetMessage("Asked: " + msg.Chunk.Content.Query)
		a.chunks.MoveToID(msg.Chunk.ID)
		return a, nil

	case messages.ChunkSelected:
		if msg.Err != nil {
			a.setError(msg.Err)
			return a, nil
		}
		a.statusBar.SetState(status.StateInfo)
		switch msg.Matches {
		case 0:
			a.statusBar.SetMessage("No passage found")
		case 1:
			a.statusBar.SetMessage("1 passage highlighted")
		default:
			a.statusBar.SetMessage(fmt.Sprintf("%d passages highlighted", msg.Matches))
		}
		return a, nil

	case messages.ActionCompleted:
		if msg.Err != nil {
			a.setError(fmt.Errorf("%s: %w", msg.Action, msg.Err))
			if msg.Action == actionRequestDelete {
				a.setMode(messages.ModeBoard)
			}
			return a, nil
		}
		a.err = nil
		a.statusBar.Clear()
		if msg.Action == actionRequestDelete {
			a.setMode(messages.ModeConfirmDelete)
		}
		return a, nil

	case messages.ModeChanged:
		a.setMode(msg.Mode)
		return a, nil

	case messages.ErrorOccurred:
		a.setError(msg.Err)
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	if a.mode == messages.ModeInput {
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return a, cmd
	}
	return a, nil
}

// handleKey dispatches a key press by mode.
func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch a.mode {
	case messages.ModeInput:
		return a.handleInputKey(msg)
	case messages.ModeLink:
		return a.handleLinkKey(msg)
	case messages.ModeConfirmDelete:
		return a.handleConfirmKey(msg)
	case messages.ModeHelp:
		switch {
		case key.Matches(msg, a.keymap.Quit):
			return tea.Quit
		case key.Matches(msg, a.keymap.Help), key.Matches(msg, a.keymap.Cancel):
			a.setMode(messages.ModeBoard)
		}
		return nil
	default:
		return a.handleBoardKey(msg)
	}
}

//nolint:gocyclo // one case per binding
func (a *App) handleBoardKey(msg tea.KeyMsg) tea.Cmd {
	id := a.chunks.CursorID()

	switch {
	case key.Matches(msg, a.keymap.Quit):
		return tea.Quit
	case key.Matches(msg, a.keymap.Help):
		a.setMode(messages.ModeHelp)
	case key.Matches(msg, a.keymap.Up):
		a.chunks.MoveUp()
	case key.Matches(msg, a.keymap.Down):
		a.chunks.MoveDown()
	case key.Matches(msg, a.keymap.NewQuery):
		a.setMode(messages.ModeInput)
		return a.input.Focus()
	case key.Matches(msg, a.keymap.Cancel):
		return a.action(actionClear, func(ctx context.Context) error {
			return a.ports.Board.ClearSelection(ctx)
		})
	case key.Matches(msg, a.keymap.PrevPage):
		return a.turnPage(-1)
	case key.Matches(msg, a.keymap.NextPage):
		return a.turnPage(1)
	}

	if id == "" {
		return nil
	}

	switch {
	case key.Matches(msg, a.keymap.Select):
		return a.selectChunk(id)
	case key.Matches(msg, a.keymap.Grow):
		return a.action(actionResize, func(ctx context.Context) error {
			return a.ports.Board.Resize(ctx, id, 1)
		})
	case key.Matches(msg, a.keymap.Shrink):
		return a.action(actionResize, func(ctx context.Context) error {
			return a.ports.Board.Resize(ctx, id, -1)
		})
	case key.Matches(msg, a.keymap.FontUp):
		return a.action(actionFont, func(ctx context.Context) error {
			return a.ports.Board.AdjustFont(ctx, id, domain.FontStep)
		})
	case key.Matches(msg, a.keymap.FontDown):
		return a.action(actionFont, func(ctx context.Context) error {
			return a.ports.Board.AdjustFont(ctx, id, -domain.FontStep)
		})
	case key.Matches(msg, a.keymap.Recolor):
		return a.action(actionRecolor, func(ctx context.Context) error {
			return a.ports.Board.Recolor(ctx, id)
		})
	case key.Matches(msg, a.keymap.Link):
		a.chunks.SetMarkedID(id)
		a.setMode(messages.ModeLink)
	case key.Matches(msg, a.keymap.Delete):
		return a.action(actionRequestDelete, func(ctx context.Context) error {
			if _, err := a.ports.Board.Chunk(ctx, id); err != nil {
				return err
			}
			return a.ports.Board.RequestDelete(ctx, id)
		})
	}
	return nil
}

func (a *App) handleInputKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, a.keymap.Cancel):
		a.input.Reset()
		a.input.Blur()
		a.setMode(messages.ModeBoard)
		return nil
	case key.Matches(msg, a.keymap.ToggleKind):
		a.input.ToggleKind()
		return nil
	case key.Matches(msg, a.keymap.Submit):
		query := strings.TrimSpace(a.input.Value())
		if query == "" {
			return nil
		}
		kind := a.input.Kind()
		a.input.Reset()
		a.input.Blur()
		a.setMode(messages.ModeBoard)
		a.statusBar.SetState(status.StateBusy)
		a.statusBar.SetMessage("Asking...")
		return a.submit(query, kind)
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return cmd
}

func (a *App) handleLinkKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, a.keymap.Cancel):
		a.chunks.SetMarkedID("")
		a.setMode(messages.ModeBoard)
	case key.Matches(msg, a.keymap.Up):
		a.chunks.MoveUp()
	case key.Matches(msg, a.keymap.Down):
		a.chunks.MoveDown()
	case key.Matches(msg, a.keymap.Select):
		source, target := a.chunks.MarkedID(), a.chunks.CursorID()
		if target == "" || target == source {
			a.statusBar.SetState(status.StateInfo)
			a.statusBar.SetMessage("Pick another chunk to link to")
			return nil
		}
		a.chunks.SetMarkedID("")
		a.setMode(messages.ModeBoard)
		return a.toggleEdge(source, target)
	}
	return nil
}

func (a *App) handleConfirmKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, a.keymap.Confirm):
		a.setMode(messages.ModeBoard)
		return a.action(actionConfirmDelete, func(ctx context.Context) error {
			_, err := a.ports.Board.ConfirmDelete(ctx)
			return err
		})
	case key.Matches(msg, a.keymap.Deny):
		a.setMode(messages.ModeBoard)
		return a.action(actionCancelDelete, func(ctx context.Context) error {
			return a.ports.Board.CancelDelete(ctx)
		})
	}
	return nil
}

// toggleEdge connects two chunks, or disconnects them if already linked.
func (a *App) toggleEdge(source, target string) tea.Cmd {
	for _, e := range a.snapshot.Edges {
		if e.Connects(source, target) {
			edgeID := e.ID
			return a.action(actionDisconnect, func(ctx context.Context) error {
				return a.ports.Board.Disconnect(ctx, edgeID)
			})
		}
	}
	return a.action(actionConnect, func(ctx context.Context) error {
		_, err := a.ports.Board.Connect(ctx, source, target)
		return err
	})
}

func (a *App) turnPage(delta int) tea.Cmd {
	view := a.snapshot.View
	if !view.IsOpen() {
		return nil
	}
	next := view.ClampPage(view.CurrentPage + delta)
	if next == view.CurrentPage {
		return nil
	}
	return a.action(actionPage, func(ctx context.Context) error {
		return a.ports.Board.SetPage(ctx, next)
	})
}

func (a *App) setMode(mode messages.Mode) {
	a.mode = mode
	a.statusBar.SetMode(mode)
}

func (a *App) setError(err error) {
	a.err = err
	a.statusBar.SetState(status.StateError)
	a.statusBar.SetMessage(err.Error())
}

// applySnapshot pushes a board snapshot into every component.
func (a *App) applySnapshot(s messages.Snapshot) {
	a.snapshot = s
	a.chunks.SetNodes(s.Nodes, s.Edges)
	a.chunks.SetSelectedID(s.Selected)
	a.page.SetPage(s.View, s.Runs)
	a.page.SetUpload(s.Upload)
	a.statusBar.SetDocument(s.View, s.Upload)

	pending := 0
	for _, n := range s.Nodes {
		if n.Payload.Status == domain.StatusPending {
			pending++
		}
	}
	a.statusBar.SetPending(pending)

	// Deletes can be requested from other surfaces.
	switch {
	case s.Pending != "" && a.mode == messages.ModeBoard:
		a.setMode(messages.ModeConfirmDelete)
	case s.Pending == "" && a.mode == messages.ModeConfirmDelete:
		a.setMode(messages.ModeBoard)
	}
}

// View implements tea.Model.
// It renders the board as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}
	if a.mode == messages.ModeHelp {
		return lipgloss.JoinVertical(lipgloss.Left, a.viewHelp(), a.statusBar.View())
	}

	header := a.styles.Title.Render("pdfboard")
	if path := a.snapshot.View.Path; path != "" {
		header += "  " + a.styles.Muted.Render(filepath.Base(path))
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		a.styles.Panel.Render(a.chunks.View()),
		a.styles.Panel.Render(a.page.View()),
	)

	sections := []string{header, body}
	if a.mode == messages.ModeConfirmDelete {
		sections = append(sections, a.viewConfirm())
	}
	sections = append(sections, a.input.View(), a.statusBar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (a *App) viewConfirm() string {
	label := a.snapshot.Pending
	for _, n := range a.snapshot.Nodes {
		if n.ID == a.snapshot.Pending {
			label = fmt.Sprintf("[%s] %s", n.Label, n.Payload.Query)
			break
		}
	}
	return a.styles.Modal.Render(fmt.Sprintf("Delete %s?  y: delete  n: keep", label))
}

func (a *App) viewHelp() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Help"))
	b.WriteString("\n\n")
	for _, group := range a.keymap.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			fmt.Fprintf(&b, "  %-10s %s\n", h.Key, h.Desc)
		}
		b.WriteString("\n")
	}
	return a.styles.Help.Render(b.String())
}

// Run starts the TUI application and blocks until it exits.
func (a *App) Run() error {
	defer a.Close()
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// Mode returns the current mode.
func (a *App) Mode() messages.Mode {
	return a.mode
}

// Snapshot returns the last board snapshot applied.
func (a *App) Snapshot() messages.Snapshot {
	return a.snapshot
}

// CursorID returns the id of the chunk under the cursor.
func (a *App) CursorID() string {
	return a.chunks.CursorID()
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions and lays out the panels.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true

	// Header, input and status bar take three lines; panel borders two more.
	panelHeight := max(height-7, 4)
	listWidth := max(width*2/5, 30)
	a.chunks.SetDimensions(listWidth, panelHeight)
	a.page.SetDimensions(max(width-listWidth-6, 20), panelHeight)
	a.input.SetWidth(width)
	a.statusBar.SetWidth(width)
}

// Commands

// loadBoard reads everything the TUI renders.
func (a *App) loadBoard() tea.Cmd {
	board := a.ports.Board
	ctx := a.ctx
	return func() tea.Msg {
		var s messages.Snapshot
		var err, e error

		s.Nodes, e = board.Nodes(ctx)
		err = errors.Join(err, e)
		s.Edges, e = board.Edges(ctx)
		err = errors.Join(err, e)
		s.Selected, e = board.Selected(ctx)
		err = errors.Join(err, e)
		s.Pending, _, e = board.PendingDelete(ctx)
		err = errors.Join(err, e)
		s.View, e = board.View(ctx)
		err = errors.Join(err, e)
		_, s.Runs, e = board.Surface(ctx)
		err = errors.Join(err, e)
		s.Upload, e = board.UploadStatus(ctx)
		err = errors.Join(err, e)

		return messages.BoardLoaded{Snapshot: s, Err: err}
	}
}

func (a *App) submit(query string, kind domain.ContentKind) tea.Cmd {
	board := a.ports.Board
	ctx := a.ctx
	return func() tea.Msg {
		c, err := board.Submit(ctx, query, kind)
		return messages.QuerySubmitted{Chunk: c, Err: err}
	}
}

func (a *App) selectChunk(id string) tea.Cmd {
	board := a.ports.Board
	ctx := a.ctx
	return func() tea.Msg {
		n, err := board.Select(ctx, id)
		return messages.ChunkSelected{ChunkID: id, Matches: n, Err: err}
	}
}

// action runs a board mutation; the board event that follows reloads the view.
func (a *App) action(name string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		return messages.ActionCompleted{Action: name, Err: fn(ctx)}
	}
}

// waitForEvent blocks on the next board event. A closed subscription ends
// the wait without a message.
func waitForEvent(events <-chan domain.Event) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return messages.BoardChanged{Event: ev}
	}
}
