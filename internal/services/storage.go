package services

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// StorageService is the object-storage collaborator, backed by local disk.
// Extraction runs on the in-memory buffer before the file is saved, so
// storage only ever sees already-validated uploads.
type StorageService interface {
	Save(data []byte, originalName string) (url string, path string, err error)
	Delete(path string) error
	EnsureUploadDir() error
}

type storageService struct {
	uploadPath string
}

func NewStorageService(uploadPath string) StorageService {
	return &storageService{uploadPath: uploadPath}
}

// EnsureUploadDir implements StorageService.
func (s *storageService) EnsureUploadDir() error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}
	return nil
}

// Save implements StorageService. Files get a generated name; the original
// name lives on the resume record only.
func (s *storageService) Save(data []byte, originalName string) (string, string, error) {
	ext := filepath.Ext(originalName)
	uniqueName := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	filePath := filepath.Join(s.uploadPath, uniqueName)

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", "", fmt.Errorf("failed to save file: %w", err)
	}

	return fmt.Sprintf("/uploads/resumes/%s", uniqueName), filePath, nil
}

// Delete implements StorageService. Accepts either the stored path or the
// public URL; both resolve to the same file name under the upload dir.
func (s *storageService) Delete(path string) error {
	local := filepath.Join(s.uploadPath, filepath.Base(path))
	if err := os.Remove(local); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
