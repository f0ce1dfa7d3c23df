// Package storage keeps uploaded blobs (menu images) on local disk under the
// directory gin serves as static files.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"bitesquicky/internal/logger"
)

const uploadsPrefix = "uploads"

var ErrOutsideRoot = errors.New("path outside upload root")

type Local struct {
	root    string
	baseURL string
}

// NewLocal stores files under root/uploads and addresses them as
// baseURL/uploads/... in public URLs.
func NewLocal(root, baseURL string) *Local {
	return &Local{root: filepath.Clean(root), baseURL: strings.TrimRight(baseURL, "/")}
}

func cleanRel(bucket, name string) (string, error) {
	rel := path.Clean("/" + path.Join(uploadsPrefix, bucket, name))
	rel = strings.TrimPrefix(rel, "/")
	if !strings.HasPrefix(rel, uploadsPrefix+"/"+bucket+"/") || bucket == "" || strings.Contains(bucket, "/") {
		return "", fmt.Errorf("%w: %s/%s", ErrOutsideRoot, bucket, name)
	}
	return rel, nil
}

func (l *Local) abs(rel string) (string, error) {
	target := filepath.Clean(filepath.Join(l.root, filepath.FromSlash(rel)))
	if !strings.HasPrefix(target, l.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, rel)
	}
	return target, nil
}

// Upload writes r to bucket/name and returns its public URL.
func (l *Local) Upload(bucket, name string, r io.Reader) (string, error) {
	log := logger.Area("UPLOAD")

	rel, err := cleanRel(bucket, name)
	if err != nil {
		return "", err
	}
	target, err := l.abs(rel)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		log.Error("create directory failed", zap.String("path", filepath.Dir(target)), zap.Error(err))
		return "", err
	}

	out, err := os.Create(target)
	if err != nil {
		log.Error("create file failed", zap.String("path", target), zap.Error(err))
		return "", err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		_ = os.Remove(target)
		log.Error("write file failed", zap.String("path", target), zap.Error(err))
		return "", err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(target)
		return "", err
	}

	log.Info("stored upload", zap.String("path", rel))
	return l.baseURL + "/" + rel, nil
}

// Delete removes the file behind a URL returned by Upload. Unknown or already
// missing files are not an error; paths outside the upload root are refused.
func (l *Local) Delete(publicURL string) error {
	trimmed := strings.TrimSpace(publicURL)
	if trimmed == "" {
		return nil
	}
	rel := strings.TrimPrefix(trimmed, l.baseURL)
	rel = strings.TrimPrefix(path.Clean("/"+strings.TrimPrefix(rel, "/")), "/")
	if !strings.HasPrefix(rel, uploadsPrefix+"/") {
		return fmt.Errorf("%w: %s", ErrOutsideRoot, publicURL)
	}
	target, err := l.abs(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
