package ports

import (
	"context"
	"io"

	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/nn"
)

// ModelStore persists model artifacts.
type ModelStore interface {
	// Exists reports whether an artifact file is present at path
	Exists(ctx context.Context, path string) (bool, error)

	// Load reads and decodes the artifact at path
	Load(ctx context.Context, path string) (*nn.Sequential, error)

	// Save encodes model to path, replacing any existing file
	Save(ctx context.Context, path string, model *nn.Sequential) error

	// Import validates an uploaded artifact and stores it at path.
	// At most limit bytes are read from r.
	Import(ctx context.Context, path string, r io.Reader, limit int64) error
}
