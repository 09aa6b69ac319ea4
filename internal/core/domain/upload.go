package domain

// UploadState is the lifecycle of sending the open document to the backend.
type UploadState string

// Upload lifecycle states.
const (
	UploadIdle      UploadState = "idle"
	UploadUploading UploadState = "uploading"
	UploadReady     UploadState = "ready"
	UploadFailed    UploadState = "failed"
)

// String returns the string representation.
func (s UploadState) String() string {
	return string(s)
}

// CanTransition reports whether the lifecycle allows moving from s to next.
// Any state may start a new upload except one already uploading.
func (s UploadState) CanTransition(next UploadState) bool {
	switch next {
	case UploadUploading:
		return s != UploadUploading
	case UploadReady, UploadFailed:
		return s == UploadUploading
	case UploadIdle:
		return true
	default:
		return false
	}
}

// Description returns a human-readable description of the state.
func (s UploadState) Description() string {
	switch s {
	case UploadIdle:
		return "No document uploaded"
	case UploadUploading:
		return "Uploading document"
	case UploadReady:
		return "Document ready"
	case UploadFailed:
		return "Upload failed"
	default:
		return unknownDescription
	}
}

// UploadStatus is the upload state plus the last failure, if any.
type UploadStatus struct {
	State UploadState `json:"state"`
	Error string      `json:"error,omitempty"`
}
