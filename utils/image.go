// File: velora/utils/image.go
package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// Maximum edge length for uploaded gallery photos. Larger images are
// downscaled before they ever reach the CDN.
const maxImageEdge = 1600

// CompressImage opens the image at srcPath, downscales it so its longest
// edge is at most maxImageEdge, re-encodes it as JPEG at the given quality,
// and writes the result to a temp file. It returns the temp file path;
// the caller owns cleanup.
func CompressImage(srcPath string, quality int) (string, error) {
	img, err := imaging.Open(srcPath, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("failed to open image %s: %w", srcPath, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxImageEdge || bounds.Dy() > maxImageEdge {
		if bounds.Dx() >= bounds.Dy() {
			img = imaging.Resize(img, maxImageEdge, 0, imaging.Lanczos)
		} else {
			img = imaging.Resize(img, 0, maxImageEdge, imaging.Lanczos)
		}
	}

	out, err := os.CreateTemp("", "velora-img-*.jpg")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer out.Close()

	if err := imaging.Encode(out, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		os.Remove(out.Name())
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	return out.Name(), nil
}

// IsSupportedImage reports whether the filename has an extension we accept
// for gallery and avatar uploads.
func IsSupportedImage(name string) bool {
	switch filepath.Ext(name) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}
