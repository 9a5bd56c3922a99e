package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sahemlabs/maktaba/internal/interfaces"
)

// FileSource resolves source references against a base directory on the
// local filesystem. References are relative paths; anything escaping the
// base directory is rejected.
type FileSource struct {
	baseDir string
}

var _ interfaces.ByteSource = (*FileSource)(nil)

// NewFileSource creates a filesystem-backed byte source rooted at baseDir.
func NewFileSource(baseDir string) *FileSource {
	return &FileSource{baseDir: baseDir}
}

func (f *FileSource) Open(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ref == "" {
		return nil, fmt.Errorf("%w: empty source reference", ErrSourceUnavailable)
	}

	path := filepath.Join(f.baseDir, filepath.Clean("/"+ref))
	if !strings.HasPrefix(path, filepath.Clean(f.baseDir)+string(os.PathSeparator)) {
		return nil, fmt.Errorf("%w: reference escapes source root", ErrSourceUnavailable)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSourceUnavailable, ref)
	}
	return data, nil
}
