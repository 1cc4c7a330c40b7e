package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vbonduro/gonext/internal/domain"
)

const defaultExt = "jpg"

var allowedExts = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"webp": true,
	"gif":  true,
}

// LocalFileStore copies photos into a single managed directory.
type LocalFileStore struct {
	basePath string
	now      func() time.Time
}

func NewLocalFileStore(basePath string) (*LocalFileStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, domain.E(domain.KindIO, "failed to create photo directory", err)
	}
	absBase, err := filepath.Abs(basePath)
	if err != nil {
		return nil, domain.E(domain.KindIO, "invalid photo directory", err)
	}
	return &LocalFileStore{basePath: absBase, now: time.Now}, nil
}

// Import copies the image at sourceURI (a path or a file:// URI) into the
// managed directory and returns its new absolute path.
func (s *LocalFileStore) Import(ctx context.Context, sourceURI string) (string, error) {
	src, err := sourcePath(sourceURI)
	if err != nil {
		return "", err
	}

	f, err := os.Open(src)
	if err != nil {
		return "", domain.E(domain.KindIO, "failed to open source photo", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			slog.Error("failed to close source photo", "source", src, "error", cerr)
		}
	}()

	return s.write(extension(src), f)
}

// sourcePath turns a plain path or a file:// URI into a filesystem path,
// percent-decoding the URI. Other schemes are rejected.
func sourcePath(sourceURI string) (string, error) {
	if sourceURI == "" {
		return "", domain.E(domain.KindValidation, "import photo", errors.New("empty source"))
	}
	if !strings.Contains(sourceURI, "://") {
		return sourceURI, nil
	}

	u, err := url.Parse(sourceURI)
	if err != nil {
		return "", domain.E(domain.KindValidation, "import photo", err)
	}
	if u.Scheme != "file" {
		return "", domain.E(domain.KindValidation, "import photo", fmt.Errorf("unsupported source scheme %q", u.Scheme))
	}
	if u.Path == "" {
		return "", domain.E(domain.KindValidation, "import photo", errors.New("empty source path"))
	}
	return filepath.FromSlash(u.Path), nil
}

// Save writes r into the managed directory, naming the file after filename's
// extension.
func (s *LocalFileStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	return s.write(extension(filename), r)
}

func (s *LocalFileStore) write(ext string, r io.Reader) (string, error) {
	filePath := filepath.Join(s.basePath, s.fileName(ext))

	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return "", domain.E(domain.KindIO, "failed to create file", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		if cerr := f.Close(); cerr != nil {
			slog.Error("failed to close file after write error", "error", cerr)
		}
		if rerr := os.Remove(filePath); rerr != nil {
			slog.Error("failed to remove file after write error", "error", rerr)
		}
		return "", domain.E(domain.KindIO, "failed to write file", err)
	}
	if err := f.Close(); err != nil {
		if rerr := os.Remove(filePath); rerr != nil {
			slog.Error("failed to remove file after close error", "error", rerr)
		}
		return "", domain.E(domain.KindIO, "failed to close file", err)
	}
	return filePath, nil
}

// fileName is <unix millis>-<8 random hex chars>.<ext>.
func (s *LocalFileStore) fileName(ext string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%d-%s.%s", s.now().UnixMilli(), suffix, ext)
}

func (s *LocalFileStore) Open(ctx context.Context, filePath string) (io.ReadCloser, string, error) {
	resolved, err := s.resolve(filePath)
	if err != nil {
		return nil, "", err
	}

	f, err := os.Open(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", domain.E(domain.KindNotFound, "open photo", err)
		}
		return nil, "", domain.E(domain.KindIO, "failed to open file", err)
	}
	return f, extToMimeType(resolved), nil
}

func (s *LocalFileStore) Delete(ctx context.Context, filePath string) error {
	resolved, err := s.resolve(filePath)
	if err != nil {
		return err
	}

	if err := os.Remove(resolved); err != nil && !os.IsNotExist(err) {
		return domain.E(domain.KindIO, "failed to delete file", err)
	}
	return nil
}

// resolve maps a stored path (absolute, or relative to the managed directory)
// to an absolute path and rejects anything outside the managed directory.
func (s *LocalFileStore) resolve(filePath string) (string, error) {
	if !filepath.IsAbs(filePath) {
		filePath = filepath.Join(s.basePath, filePath)
	}

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", domain.E(domain.KindValidation, "invalid path", err)
	}

	if !strings.HasPrefix(absPath, s.basePath+string(filepath.Separator)) {
		return "", domain.E(domain.KindValidation, "resolve photo path", errors.New("path outside photo directory"))
	}
	return absPath, nil
}

// extension returns the lower-cased image extension of source, or jpg when it
// has none or an unsupported one (content:// URIs carry no extension).
func extension(source string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filepath.ToSlash(source)), "."))
	if allowedExts[ext] {
		return ext
	}
	return defaultExt
}

func extToMimeType(filePath string) string {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
