package domain

import "context"

// Catalog lists and searches dishes. It sits outside the session core.
type Catalog interface {
	List(ctx context.Context) ([]RecipeSummary, error)
	Search(ctx context.Context, query string) ([]RecipeSummary, error)
}

// DetailFetcher loads the full cooking guide for a dish. Implementations
// return ErrNoContent when the backend answers with nothing.
type DetailFetcher interface {
	FetchRecipeDetail(ctx context.Context, name string) (*RecipeDetail, error)
}

// SpeechGenerator synthesizes narration. The payload is base64-encoded
// 16-bit little-endian mono PCM at 24 kHz. ErrNoContent means no
// narration was produced and is not treated as a failure.
type SpeechGenerator interface {
	GenerateSpeech(ctx context.Context, text string) (string, error)
}

// ImageGenerator renders a visual prompt into an image reference
// (typically a data URL). ErrNoContent means no image was produced.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string, aspect AspectRatio) (string, error)
}

// DishGrader scores a JPEG photo of the finished dish.
type DishGrader interface {
	GradeDish(ctx context.Context, image []byte, recipeName string) (*GradingResult, error)
}

// Camera hands out a live capture stream. Every stream returned by Open
// must be closed, including on cancellation paths.
type Camera interface {
	Open(ctx context.Context) (CameraStream, error)
}

// CameraStream is an acquired capture device.
type CameraStream interface {
	// Capture grabs a single still frame encoded as JPEG.
	Capture(ctx context.Context) ([]byte, error)
	Close() error
}

// Narrator speaks cue text. Speak is fire-and-forget and reports whether
// the request was accepted; requests arriving while another narration is
// in flight are dropped.
type Narrator interface {
	Speak(ctx context.Context, text string) bool
}

// SessionStore keeps the latest snapshot of each session for observers.
type SessionStore interface {
	Save(ctx context.Context, snap *Snapshot) error
	Load(ctx context.Context, id string) (*Snapshot, error)
	Delete(ctx context.Context, id string) error
	ListOpen(ctx context.Context) ([]*Snapshot, error)
}
