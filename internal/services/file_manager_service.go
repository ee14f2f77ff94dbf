package services

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"collabCanvas/internal/enums"
	"collabCanvas/internal/errs"
	"collabCanvas/internal/interfaces"

	"github.com/google/uuid"
)

var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true, ".bmp": true,
}

type FileManagerService struct {
	fileManager interfaces.FileManager
}

func NewFileManagerService(fileManager interfaces.FileManager) *FileManagerService {
	return &FileManagerService{
		fileManager: fileManager,
	}
}

// UploadCanvasImage stores an image under a random object name and returns
// a URL that can be used as an image payload.
func (fs *FileManagerService) UploadCanvasImage(ctx context.Context, originalName string, file io.Reader, fileSize int64, contentType string) (string, error) {
	if fs.fileManager == nil {
		return "", errs.ErrFileStorageOff
	}
	ext := strings.ToLower(filepath.Ext(originalName))
	if !imageExtensions[ext] || !strings.HasPrefix(contentType, "image/") || fileSize <= 0 {
		return "", errs.ErrInvalidFile
	}
	fileName := "canvas_image_" + uuid.NewString() + ext
	return fs.fileManager.UploadFile(ctx, fileName, file, fileSize, contentType, enums.FILE_BUCKET_CANVAS_IMAGES)
}
