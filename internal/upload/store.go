package upload

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/anuvataru/jewelry-catalog/internal/config"
)

// Store persists accepted images and hands back the reference saved on the product.
type Store interface {
	Save(ctx context.Context, img Image) (string, error)
	// Delete removes a stored image. Unknown references are ignored.
	Delete(ctx context.Context, ref string) error
}

// NewStore builds the store selected by UPLOAD_DRIVER.
func NewStore(ctx context.Context, cfg config.Config) (Store, error) {
	switch cfg.UploadDriver {
	case config.UploadS3:
		return NewS3Store(ctx, cfg.S3)
	case config.UploadLocal, "":
		return NewLocalStore(cfg.UploadDir), nil
	default:
		return nil, fmt.Errorf("upload: unknown driver %q", cfg.UploadDriver)
	}
}

// PublicPrefix is where the local store's files are served from.
const PublicPrefix = "/uploads"

type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{dir: dir}
}

func (s *LocalStore) Save(_ context.Context, img Image) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("upload/local: mkdir: %w", err)
	}
	name := "product-" + uuid.NewString() + img.Ext
	if err := os.WriteFile(filepath.Join(s.dir, name), img.Data, 0o644); err != nil {
		return "", fmt.Errorf("upload/local: write %s: %w", name, err)
	}
	return path.Join(PublicPrefix, name), nil
}

// Delete removes a file this store wrote. Anything else, including refs that
// name the upload directory itself, is ignored.
func (s *LocalStore) Delete(_ context.Context, ref string) error {
	name, ok := strings.CutPrefix(ref, PublicPrefix+"/")
	if !ok || name == "" || strings.HasPrefix(name, ".") || strings.ContainsAny(name, `/\`) {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("upload/local: delete %s: %w", name, err)
	}
	return nil
}
