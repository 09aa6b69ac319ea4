package domain

// DocumentView is the renderer's pagination state as the core sees it.
type DocumentView struct {
	// Path is the file currently open. Empty when nothing is open.
	Path string `json:"path"`

	// PageCount is zero until the renderer has loaded the document.
	PageCount int `json:"page_count"`

	// CurrentPage is 1-based.
	CurrentPage int `json:"current_page"`
}

// IsOpen returns true if a document is loaded.
func (v DocumentView) IsOpen() bool {
	return v.Path != "" && v.PageCount > 0
}

// ValidPage returns true if page is within [1, PageCount].
func (v DocumentView) ValidPage(page int) bool {
	return page >= 1 && page <= v.PageCount
}

// ClampPage returns page clamped to [1, PageCount].
func (v DocumentView) ClampPage(page int) int {
	if page < 1 {
		return 1
	}
	if v.PageCount > 0 && page > v.PageCount {
		return v.PageCount
	}
	return page
}

// TextRun is one addressable piece of a page's text surface.
type TextRun struct {
	// Text is the plain text of the run.
	Text string `json:"text"`

	// Markup is what the surface displays. It equals the escaped Text
	// unless highlight marks have been applied.
	Markup string `json:"markup"`
}

// Highlighted returns true if the run carries highlight markup.
func (r TextRun) Highlighted() bool {
	return containsMark(r.Markup)
}
