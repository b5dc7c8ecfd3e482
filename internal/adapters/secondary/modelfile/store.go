package modelfile

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/core/domain"
	ports "github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/core/ports/output"
	"github.com/Lemme-lab/MLMDP-Machine-Learning-Model-Deploy-Platform/internal/nn"
)

type store struct {
	fs afero.Fs
}

// NewStore creates an artifact store on top of fs (afero.NewOsFs() in production).
func NewStore(fs afero.Fs) ports.ModelStore {
	return &store{fs: fs}
}

func (s *store) Exists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	info, err := s.fs.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	return !info.IsDir(), nil
}

func (s *store) Load(ctx context.Context, path string) (*nn.Sequential, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := s.fs.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrModelNotFound
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	model, err := nn.Decode(bufio.NewReader(f))
	if err != nil {
		if errors.Is(err, nn.ErrInvalidArtifact) {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArtifact, err)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return model, nil
}

func (s *store) Save(ctx context.Context, path string, model *nn.Sequential) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := nn.Encode(&buf, model); err != nil {
		return err
	}
	return s.writeAtomic(path, buf.Bytes())
}

func (s *store) Import(ctx context.Context, path string, r io.Reader, limit int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > limit {
		return domain.ErrUploadTooLarge
	}
	if len(data) == 0 {
		return domain.ErrMissingModelFile
	}
	if _, err := nn.Decode(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidArtifact, err)
	}
	return s.writeAtomic(path, data)
}

// writeAtomic replaces path by renaming a fully written temp file over it,
// so a concurrent reader never sees a partial artifact.
func (s *store) writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := afero.TempFile(s.fs, dir, ".model-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		s.fs.Remove(tmpName)
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		s.fs.Remove(tmpName)
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := s.fs.Rename(tmpName, path); err != nil {
		s.fs.Remove(tmpName)
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}

// Ensure interface compliance
var _ ports.ModelStore = (*store)(nil)
