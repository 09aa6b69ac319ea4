package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentView_IsOpen(t *testing.T) {
	assert.False(t, DocumentView{}.IsOpen())
	assert.False(t, DocumentView{Path: "a.pdf"}.IsOpen())
	assert.True(t, DocumentView{Path: "a.pdf", PageCount: 3, CurrentPage: 1}.IsOpen())
}

func TestDocumentView_ValidPage(t *testing.T) {
	v := DocumentView{Path: "a.pdf", PageCount: 3, CurrentPage: 1}

	tests := []struct {
		page int
		want bool
	}{
		{0, false},
		{1, true},
		{3, true},
		{4, false},
		{-2, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, v.ValidPage(tt.page), "page %d", tt.page)
	}
}

func TestDocumentView_ClampPage(t *testing.T) {
	v := DocumentView{PageCount: 5}

	assert.Equal(t, 1, v.ClampPage(0))
	assert.Equal(t, 1, v.ClampPage(-7))
	assert.Equal(t, 4, v.ClampPage(4))
	assert.Equal(t, 5, v.ClampPage(9))
}

func TestTextRun_Highlighted(t *testing.T) {
	plain := TextRun{Text: "X is defined", Markup: "X is defined"}
	marked := TextRun{Text: "X is defined", Markup: MarkText("X is defined", "#fefcbf")}

	assert.False(t, plain.Highlighted())
	assert.True(t, marked.Highlighted())
}
