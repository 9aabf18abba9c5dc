package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
)

type StorageService interface {
	UploadFile(ctx context.Context, file multipart.File, filename string, folder string) (string, error)
	DeleteFile(ctx context.Context, fileURL string) error
}

// LocalStorageService keeps uploads on the local filesystem under baseDir and
// returns URLs beneath publicPrefix, which the server exposes as a static
// route.
type LocalStorageService struct {
	baseDir      string
	publicPrefix string
}

func NewLocalStorageService(baseDir string, publicPrefix string) (*LocalStorageService, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	return &LocalStorageService{
		baseDir:      baseDir,
		publicPrefix: "/" + strings.Trim(publicPrefix, "/"),
	}, nil
}

func (s *LocalStorageService) UploadFile(
	_ context.Context,
	file multipart.File,
	filename string,
	folder string,
) (string, error) {
	cleanName := filepath.Base(filename)
	cleanFolder := strings.Trim(folder, "/")

	dir := s.baseDir
	if cleanFolder != "" {
		dir = filepath.Join(s.baseDir, cleanFolder)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create upload folder: %w", err)
		}
	}

	dst, err := os.Create(filepath.Join(dir, cleanName))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", fmt.Errorf("write upload file: %w", err)
	}

	return path.Join(s.publicPrefix, cleanFolder, cleanName), nil
}

func (s *LocalStorageService) DeleteFile(_ context.Context, fileURL string) error {
	relative := strings.TrimPrefix(fileURL, s.publicPrefix)
	relative = strings.TrimPrefix(relative, "/")
	if relative == "" || strings.Contains(relative, "..") {
		return fmt.Errorf("file url does not belong to the upload dir")
	}

	if err := os.Remove(filepath.Join(s.baseDir, filepath.FromSlash(relative))); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return nil
}
