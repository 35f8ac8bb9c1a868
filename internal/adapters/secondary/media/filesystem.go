package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/nmashkov/yatube-project/internal/core/domain"
)

const msgEmptyFile = "The submitted file is empty."

// Extensions whose decoders are registered above.
var allowedExtensions = map[string]bool{
	".gif":  true,
	".jpeg": true,
	".jpg":  true,
	".png":  true,
}

// FileStore keeps uploads under Root and returns slash-separated paths relative to it.
type FileStore struct {
	Root string
}

func NewFileStore(root string) (*FileStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve media root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}
	return &FileStore{Root: abs}, nil
}

func (s *FileStore) ValidateImage(up *domain.Upload) error {
	if len(up.Content) == 0 {
		return errors.New(msgEmptyFile)
	}

	// Le contenu d'abord : un fichier qui n'est pas une image est refusé comme tel, quelle que soit son extension
	if !strings.HasPrefix(mimetype.Detect(up.Content).String(), "image/") {
		return errors.New(domain.MsgNotAnImage)
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(up.Content)); err != nil {
		return errors.New(domain.MsgNotAnImage)
	}

	ext := strings.ToLower(filepath.Ext(up.Filename))
	if !allowedExtensions[ext] {
		return fmt.Errorf("File extension \"%s\" is not allowed.", strings.TrimPrefix(ext, "."))
	}
	return nil
}

// Save writes the upload as <namespace>/<uuid><ext>.
func (s *FileStore) Save(_ context.Context, namespace string, up *domain.Upload) (string, error) {
	ext := strings.ToLower(filepath.Ext(up.Filename))
	rel := path.Join(namespace, uuid.NewString()+ext)

	dst, err := s.resolve(rel)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}
	if err := os.WriteFile(dst, up.Content, 0o644); err != nil {
		return "", fmt.Errorf("write media: %w", err)
	}
	return rel, nil
}

// Remove is a no-op for files that are already gone.
func (s *FileStore) Remove(_ context.Context, rel string) error {
	dst, err := s.resolve(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(dst); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *FileStore) resolve(rel string) (string, error) {
	dst := filepath.Join(s.Root, filepath.FromSlash(path.Clean("/"+rel)))
	if !strings.HasPrefix(dst, s.Root+string(filepath.Separator)) {
		return "", fmt.Errorf("media path %q escapes root", rel)
	}
	return dst, nil
}
