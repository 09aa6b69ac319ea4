package domain

import (
	"math/rand/v2"
	"strings"
	"time"
)

// Geometry and style bounds.
const (
	// MinChunkSize is the smallest width or height a chunk may have.
	MinChunkSize = 150

	// ResizeStep is how much one resize action grows or shrinks a chunk.
	ResizeStep = 50

	// MinFontSize is the smallest font size a chunk may have.
	MinFontSize = 10

	// FontStep is how much one font action changes the font size.
	FontStep = 2

	// DefaultFontSize is the font size of a freshly submitted chunk.
	DefaultFontSize = 12
)

// Placeholder layout for new chunks.
const (
	layoutOrigin = 50
	layoutOffset = 30

	defaultChunkWidth = 300
	textChunkHeight   = 150
	imageChunkHeight  = 300
)

// FailedAnswerPrefix marks the answer of a chunk whose request failed.
const FailedAnswerPrefix = "generation failed: "

// Palette is the fixed set of chunk background colours.
var Palette = []string{
	"#fefcbf",
	"#c6f6d5",
	"#bee3f8",
	"#fbd38d",
	"#fed7e2",
	"#e9d8fd",
}

// ContentKind is what a chunk's answer holds.
type ContentKind string

// Available content kinds.
const (
	KindText  ContentKind = "text"
	KindImage ContentKind = "image"
)

// IsValid returns true if the kind is recognised.
func (k ContentKind) IsValid() bool {
	return k == KindText || k == KindImage
}

// String returns the string representation.
func (k ContentKind) String() string {
	return string(k)
}

// ParseContentKind converts user input into a ContentKind.
func ParseContentKind(s string) (ContentKind, error) {
	k := ContentKind(strings.ToLower(strings.TrimSpace(s)))
	if k == "" {
		return KindText, nil
	}
	if !k.IsValid() {
		return "", ErrUnsupportedKind
	}
	return k, nil
}

// Status is the generation status of a chunk's content.
type Status string

// Available statuses.
const (
	StatusPending   Status = "pending"
	StatusFulfilled Status = "fulfilled"
	StatusFailed    Status = "failed"
)

// String returns the string representation.
func (s Status) String() string {
	return string(s)
}

// Position is a point on the board.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is the extent of a chunk on the board.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Geometry is where a chunk sits on the board and how big it is.
type Geometry struct {
	Position
	Size
}

// Resized returns the geometry grown (direction > 0) or shrunk (direction < 0)
// by one ResizeStep per unit, never below MinChunkSize.
func (g Geometry) Resized(direction int) Geometry {
	delta := float64(ResizeStep * direction)
	g.Width = max(MinChunkSize, g.Width+delta)
	g.Height = max(MinChunkSize, g.Height+delta)
	return g
}

// Style is how a chunk is painted.
type Style struct {
	Color    string `json:"color"`
	FontSize int    `json:"font_size"`
}

// FontAdjusted returns the style with the font size changed by delta,
// never below MinFontSize.
func (s Style) FontAdjusted(delta int) Style {
	s.FontSize = max(MinFontSize, s.FontSize+delta)
	return s
}

// Recolored returns the style with the next palette colour.
func (s Style) Recolored() Style {
	s.Color = NextColor(s.Color)
	return s
}

// NextColor returns the palette colour after c. Unknown colours restart the cycle.
func NextColor(c string) string {
	for i, p := range Palette {
		if p == c {
			return Palette[(i+1)%len(Palette)]
		}
	}
	return Palette[0]
}

// RandomColor picks a palette colour.
func RandomColor() string {
	return Palette[rand.IntN(len(Palette))]
}

// Content is the query/answer pair held by a chunk.
type Content struct {
	// Query is what the user asked.
	Query string `json:"query"`

	// Answer is text or, for image chunks, an image URL.
	Answer string `json:"answer"`

	// Kind selects how the answer is interpreted.
	Kind ContentKind `json:"kind"`

	// Status is the generation status.
	Status Status `json:"status"`
}

// Reference anchors a chunk to a page and a text span in the document.
type Reference struct {
	Page int    `json:"page"`
	Text string `json:"text"`
}

// IsZero returns true if the reference points nowhere.
func (r Reference) IsZero() bool {
	return r.Page == 0 && r.Text == ""
}

// Chunk is the unit of annotation.
type Chunk struct {
	// ID is assigned at creation and never reused.
	ID string `json:"id"`

	Geometry  Geometry  `json:"geometry"`
	Style     Style     `json:"style"`
	Content   Content   `json:"content"`
	Reference Reference `json:"reference"`

	// CreatedAt is when the chunk was inserted.
	CreatedAt time.Time `json:"created_at"`
}

// ChunkDraft is everything a chunk needs except its identity.
type ChunkDraft struct {
	Geometry  Geometry
	Style     Style
	Content   Content
	Reference Reference
}

// NewPendingDraft lays out the placeholder for a fresh submission.
// existing is the number of chunks already on the board; page is the page
// the user was looking at, used as the reference of image chunks.
func NewPendingDraft(query string, kind ContentKind, existing, page int) ChunkDraft {
	offset := float64(layoutOrigin + existing*layoutOffset)
	height := float64(textChunkHeight)
	if kind == KindImage {
		height = imageChunkHeight
	}

	draft := ChunkDraft{
		Geometry: Geometry{
			Position: Position{X: offset, Y: offset},
			Size:     Size{Width: defaultChunkWidth, Height: height},
		},
		Style: Style{Color: RandomColor(), FontSize: DefaultFontSize},
		Content: Content{
			Query:  query,
			Kind:   kind,
			Status: StatusPending,
		},
	}
	if kind == KindImage {
		draft.Reference = Reference{Page: max(page, 1), Text: query}
	}
	return draft
}

// ChunkPatch is a partial update. Nil fields are left untouched.
type ChunkPatch struct {
	Position  *Position
	Size      *Size
	Style     *Style
	Answer    *string
	Reference *Reference
	Status    *Status
}

// IsEmpty returns true if the patch changes nothing.
func (p ChunkPatch) IsEmpty() bool {
	return p.Position == nil && p.Size == nil && p.Style == nil &&
		p.Answer == nil && p.Reference == nil && p.Status == nil
}

// Apply returns c with the patch applied.
func (p ChunkPatch) Apply(c Chunk) Chunk {
	if p.Position != nil {
		c.Geometry.Position = *p.Position
	}
	if p.Size != nil {
		c.Geometry.Size = *p.Size
	}
	if p.Style != nil {
		c.Style = *p.Style
	}
	if p.Answer != nil {
		c.Content.Answer = *p.Answer
	}
	if p.Reference != nil {
		c.Reference = *p.Reference
	}
	if p.Status != nil {
		c.Content.Status = *p.Status
	}
	return c
}
