package storage

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"socialnet/internal/model"
)

// Upload is an image file received from a client.
type Upload struct {
	Body        io.Reader
	Filename    string
	ContentType string
	Size        int64
}

// ReadImage loads the upload into memory with size, extension and type checks.
// It returns the bytes and the effective content type.
func ReadImage(u Upload, maxSize int64) ([]byte, string, error) {
	if u.Size > maxSize {
		return nil, "", model.ErrFileTooLarge
	}
	if !model.IsAllowedImageExt(u.Filename) {
		return nil, "", model.ErrInvalidImageType
	}

	data, err := io.ReadAll(io.LimitReader(u.Body, maxSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > maxSize {
		return nil, "", model.ErrFileTooLarge
	}

	contentType := u.ContentType
	if (contentType == "" || contentType == "application/octet-stream") && len(data) > 0 {
		contentType = http.DetectContentType(data[:min(len(data), 512)])
	}
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = strings.TrimSpace(contentType[:idx])
	}
	if !model.IsAllowedImageType(contentType) {
		return nil, "", model.ErrInvalidImageType
	}

	return data, contentType, nil
}

// ResizeToJPEG center-crops to the target size and encodes as JPEG.
func ResizeToJPEG(data []byte, width, height, quality int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidImageType, err)
	}

	resized := imaging.Fill(img, width, height, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// ExtFor returns the file extension stored for a content type.
func ExtFor(contentType string) string {
	switch contentType {
	case model.ContentTypePNG:
		return ".png"
	case model.ContentTypeGIF:
		return ".gif"
	case model.ContentTypeWebP:
		return ".webp"
	default:
		return ".jpg"
	}
}
