package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseContentKind(t *testing.T) {
	tests := []struct {
		input   string
		want    ContentKind
		wantErr error
	}{
		{"text", KindText, nil},
		{"IMAGE", KindImage, nil},
		{"  image ", KindImage, nil},
		{"", KindText, nil},
		{"video", "", ErrUnsupportedKind},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseContentKind(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGeometry_Resized_NeverBelowMinimum(t *testing.T) {
	g := Geometry{Size: Size{Width: 300, Height: 150}}

	for i := 0; i < 20; i++ {
		g = g.Resized(-1)
		assert.GreaterOrEqual(t, g.Width, float64(MinChunkSize))
		assert.GreaterOrEqual(t, g.Height, float64(MinChunkSize))
	}
	assert.Equal(t, float64(MinChunkSize), g.Width)
	assert.Equal(t, float64(MinChunkSize), g.Height)
}

func TestGeometry_Resized_Grow(t *testing.T) {
	g := Geometry{Position: Position{X: 10, Y: 20}, Size: Size{Width: 300, Height: 150}}

	got := g.Resized(1)

	assert.Equal(t, 350.0, got.Width)
	assert.Equal(t, 200.0, got.Height)
	assert.Equal(t, g.Position, got.Position)
}

func TestStyle_FontAdjusted_NeverBelowMinimum(t *testing.T) {
	s := Style{FontSize: DefaultFontSize}

	for i := 0; i < 10; i++ {
		s = s.FontAdjusted(-FontStep)
		assert.GreaterOrEqual(t, s.FontSize, MinFontSize)
	}
	assert.Equal(t, MinFontSize, s.FontSize)

	assert.Equal(t, 14, Style{FontSize: 12}.FontAdjusted(FontStep).FontSize)
}

func TestNextColor(t *testing.T) {
	for i, c := range Palette {
		assert.Equal(t, Palette[(i+1)%len(Palette)], NextColor(c))
	}
	assert.Equal(t, Palette[0], NextColor("#000000"))
}

func TestStyle_Recolored(t *testing.T) {
	s := Style{Color: Palette[len(Palette)-1], FontSize: 14}

	got := s.Recolored()

	assert.Equal(t, Palette[0], got.Color)
	assert.Equal(t, 14, got.FontSize)
}

func TestRandomColor_FromPalette(t *testing.T) {
	for i := 0; i < 50; i++ {
		assert.Contains(t, Palette, RandomColor())
	}
}

func TestNewPendingDraft(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		d := NewPendingDraft("What is X?", KindText, 2, 4)

		assert.Equal(t, 110.0, d.Geometry.X)
		assert.Equal(t, 110.0, d.Geometry.Y)
		assert.Equal(t, 300.0, d.Geometry.Width)
		assert.Equal(t, 150.0, d.Geometry.Height)
		assert.Equal(t, DefaultFontSize, d.Style.FontSize)
		assert.Contains(t, Palette, d.Style.Color)
		assert.Equal(t, StatusPending, d.Content.Status)
		assert.Equal(t, "What is X?", d.Content.Query)
		assert.True(t, d.Reference.IsZero())
	})

	t.Run("image", func(t *testing.T) {
		d := NewPendingDraft("a cat", KindImage, 0, 4)

		assert.Equal(t, 50.0, d.Geometry.X)
		assert.Equal(t, 300.0, d.Geometry.Height)
		assert.Equal(t, Reference{Page: 4, Text: "a cat"}, d.Reference)
	})

	t.Run("image without page", func(t *testing.T) {
		d := NewPendingDraft("a cat", KindImage, 0, 0)
		assert.Equal(t, 1, d.Reference.Page)
	})
}

func TestChunkPatch_Apply(t *testing.T) {
	c := Chunk{
		ID:       "c-1",
		Geometry: Geometry{Position: Position{X: 1, Y: 2}, Size: Size{Width: 300, Height: 150}},
		Style:    Style{Color: Palette[0], FontSize: 12},
		Content:  Content{Query: "q", Kind: KindText, Status: StatusPending},
	}

	answer := "X is Y"
	status := StatusFulfilled
	ref := Reference{Page: 3, Text: "X is defined"}
	got := ChunkPatch{Answer: &answer, Status: &status, Reference: &ref}.Apply(c)

	assert.Equal(t, "X is Y", got.Content.Answer)
	assert.Equal(t, StatusFulfilled, got.Content.Status)
	assert.Equal(t, ref, got.Reference)
	assert.Equal(t, c.Geometry, got.Geometry)
	assert.Equal(t, c.Style, got.Style)
	assert.Equal(t, "q", got.Content.Query)
}

func TestChunkPatch_IsEmpty(t *testing.T) {
	assert.True(t, ChunkPatch{}.IsEmpty())
	pos := Position{X: 1}
	assert.False(t, ChunkPatch{Position: &pos}.IsEmpty())
}
