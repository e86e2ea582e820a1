package storage

import (
	"context"
	"fmt"
	"os"

	"velora/utils"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const uploadQuality = 82

// UploadImage compresses the image and uploads it into the given folder.
func (s *CloudinaryStorageService) UploadImage(ctx context.Context, localFilePath, destFolder string) (string, string, error) {
	if !utils.IsSupportedImage(localFilePath) {
		return "", "", fmt.Errorf("storage: unsupported image type: %s", localFilePath)
	}

	compressed, err := utils.CompressImage(localFilePath, uploadQuality)
	if err != nil {
		return "", "", fmt.Errorf("storage: failed to compress image: %w", err)
	}
	defer os.Remove(compressed)

	result, err := s.cld.Upload.Upload(ctx, compressed, uploader.UploadParams{Folder: destFolder})
	if err != nil {
		return "", "", fmt.Errorf("storage: failed to upload file: %w", err)
	}
	if result.PublicID == "" {
		return "", "", fmt.Errorf("storage: no public ID returned")
	}
	return result.SecureURL, result.PublicID, nil
}

// DeleteFile removes a file from storage given its public ID.
func (s *CloudinaryStorageService) DeleteFile(ctx context.Context, publicID string) error {
	if _, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return fmt.Errorf("storage: failed to delete file: %w", err)
	}
	return nil
}
