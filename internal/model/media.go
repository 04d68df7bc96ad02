package model

import (
	"errors"
	"path/filepath"
	"strings"
)

const (
	MaxImageSizeBytes = 5 * 1024 * 1024 // 5MB limit per upload
	AvatarWidth       = 200
	AvatarHeight      = 200
	AvatarJPEGQuality = 85
	AvatarFolder      = "avatars"
	PostImageFolder   = "posts"
	AvatarExt         = ".jpg"
	ImageCacheControl = "public, max-age=31536000" // 1 year
)

// Supported image content types for upload validation
const (
	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"
	ContentTypeGIF  = "image/gif"
	ContentTypeWebP = "image/webp"
)

var allowedImageTypes = map[string]struct{}{
	ContentTypeJPEG: {},
	ContentTypePNG:  {},
	ContentTypeGIF:  {},
	ContentTypeWebP: {},
}

var allowedImageExts = map[string]struct{}{
	".jpeg": {},
	".jpg":  {},
	".png":  {},
	".gif":  {},
	".webp": {},
}

// Error codes for HTTP responses
const (
	CodeFileTooLarge     = "FILE_TOO_LARGE"
	CodeInvalidImageType = "INVALID_IMAGE_TYPE"
)

// Domain errors for media operations
var (
	ErrFileTooLarge     = errors.New("file too large")
	ErrInvalidImageType = errors.New("only image files are allowed (jpeg, jpg, png, gif, webp)")
	ErrNoFile           = errors.New("no file uploaded")
)

// UploadResult represents the stored object location.
// URL is the path or absolute URL clients use; Key locates the object for deletes.
type UploadResult struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// IsAllowedImageType reports if the provided content type is supported
func IsAllowedImageType(contentType string) bool {
	_, ok := allowedImageTypes[contentType]
	return ok
}

// IsAllowedImageExt reports if the file name carries a supported image extension
func IsAllowedImageExt(filename string) bool {
	_, ok := allowedImageExts[strings.ToLower(filepath.Ext(filename))]
	return ok
}
