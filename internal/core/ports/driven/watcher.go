package driven

import "context"

// DocumentWatcher reports changes to the open document file.
type DocumentWatcher interface {
	// Watch calls onChange whenever path is written or replaced, until ctx
	// is cancelled or Close is called. It returns once watching has started.
	Watch(ctx context.Context, path string, onChange func(path string)) error

	// Close stops watching.
	Close() error
}
