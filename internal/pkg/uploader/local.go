package uploader

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultBaseDir    = "./uploads"
	DefaultStaticBase = "/static/uploads"
)

// Artifact is the result of handing a staged file to the upload backend.
// URL is always resolvable when the upload succeeded.
type Artifact struct {
	URL  string
	Path string
	Size int64
}

// Local stores media on the local filesystem and serves it over a static
// route. It fills the media-service seam: move a staged temp file into the
// media tree and hand back a public URL.
type Local struct {
	baseDir    string // absolute path to uploads dir
	staticBase string // URL prefix for serving files
}

func NewLocal(baseDir, staticBase string) *Local {
	if baseDir == "" {
		baseDir = DefaultBaseDir
	}
	if staticBase == "" {
		staticBase = DefaultStaticBase
	}
	return &Local{baseDir: baseDir, staticBase: staticBase}
}

// Upload moves a locally-staged file into the media tree and returns its
// artifact. The staged file is consumed on success. Errors leave the staged
// file in place for the caller's temp-dir lifecycle to clean up.
func (l *Local) Upload(ctx context.Context, localPath string) (*Artifact, error) {
	if localPath == "" {
		return nil, fmt.Errorf("no file staged")
	}

	src, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open staged file: %w", err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat staged file: %w", err)
	}

	// Build directory: uploads/YYYY/MM/DD/
	now := time.Now()
	relDir := fmt.Sprintf("%d/%02d/%02d", now.Year(), now.Month(), now.Day())
	absDir := filepath.Join(l.baseDir, relDir)
	if err := os.MkdirAll(absDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	filename := fmt.Sprintf("%s_%s%s",
		uuid.New().String(),
		sanitizeName(localPath),
		filepath.Ext(localPath),
	)

	absPath := filepath.Join(absDir, filename)
	dst, err := os.Create(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(absPath)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	_ = os.Remove(localPath) // staged copy is no longer needed

	relPath := filepath.Join(relDir, filename)
	return &Artifact{
		URL:  l.staticBase + "/" + strings.ReplaceAll(relPath, "\\", "/"),
		Path: relPath,
		Size: info.Size(),
	}, nil
}

func sanitizeName(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return '_'
	}, name)
	if len(name) > 40 {
		name = name[:40]
	}
	if name == "" {
		return "file"
	}
	return name
}
