package page

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/pdfboard/internal/core/domain"
)

func openView() domain.DocumentView {
	return domain.DocumentView{Path: "paper.pdf", PageCount: 4, CurrentPage: 3}
}

func TestPanel_NoDocument(t *testing.T) {
	p := NewPanel(nil)

	assert.Contains(t, p.View(), "No document open")
}

func TestPanel_RendersRunsWithoutMarkup(t *testing.T) {
	p := NewPanel(nil)
	p.SetPage(openView(), []domain.TextRun{
		{Text: "Fish & chips", Markup: domain.EscapeText("Fish & chips")},
	})

	view := p.View()

	assert.Contains(t, view, "Page 3 of 4")
	assert.Contains(t, view, "Fish & chips")
	assert.NotContains(t, view, "&amp;")
	assert.False(t, p.Marked())
}

func TestPanel_RendersMarkedPassage(t *testing.T) {
	text := "Formally, X is defined as the fixed point."
	markup := domain.MarkSpans(text, []domain.Span{{Start: 10, End: 22}}, domain.Palette[2])

	p := NewPanel(nil)
	p.SetPage(openView(), []domain.TextRun{{Text: text, Markup: markup}})

	view := p.View()

	assert.Contains(t, view, "X is defined")
	assert.NotContains(t, view, "<mark")
	assert.True(t, p.Marked())
}

func TestPanel_RendersMultilineMark(t *testing.T) {
	text := "X is\ndefined here"
	markup := domain.MarkSpans(text, []domain.Span{{Start: 0, End: 12}}, domain.Palette[0])

	p := NewPanel(nil)
	p.SetPage(openView(), []domain.TextRun{{Text: text, Markup: markup}})

	view := p.View()

	assert.Contains(t, view, "defined")
	assert.NotContains(t, view, "<mark")
	assert.NotContains(t, view, "</mark>")
	assert.True(t, p.Marked())
}

func TestPanel_UploadState(t *testing.T) {
	tests := []struct {
		state    domain.UploadState
		expected string
	}{
		{domain.UploadUploading, "Uploading document"},
		{domain.UploadFailed, "Upload failed"},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			p := NewPanel(nil)
			p.SetPage(openView(), nil)
			p.SetUpload(domain.UploadStatus{State: tt.state})

			assert.Contains(t, p.View(), tt.expected)
		})
	}

	p := NewPanel(nil)
	p.SetPage(openView(), nil)
	p.SetUpload(domain.UploadStatus{State: domain.UploadReady})
	assert.NotContains(t, p.View(), "Document ready")
}

func TestPanel_ScrollsToFirstHighlight(t *testing.T) {
	runs := make([]domain.TextRun, 0, 30)
	for i := range 30 {
		text := fmt.Sprintf("line %d", i)
		runs = append(runs, domain.TextRun{Text: text, Markup: domain.EscapeText(text)})
	}
	runs[25].Markup = domain.MarkText("line 25", domain.Palette[0])

	p := NewPanel(nil)
	p.SetDimensions(40, 8)
	p.SetPage(openView(), runs)

	view := p.View()

	assert.Contains(t, view, "line 25")
	assert.NotContains(t, view, "line 10")
}
