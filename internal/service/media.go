package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"socialnet/internal/model"
	"socialnet/internal/storage"
)

// MediaService validates image uploads and hands them to the configured store.
type MediaService struct {
	store storage.ImageStore
	log   logrus.FieldLogger
}

func NewMediaService(store storage.ImageStore, log logrus.FieldLogger) *MediaService {
	return &MediaService{store: store, log: log}
}

// UploadAvatar enforces size/type, normalizes to a 200x200 JPEG and stores it.
func (s *MediaService) UploadAvatar(ctx context.Context, upload storage.Upload) (*model.UploadResult, error) {
	data, _, err := storage.ReadImage(upload, model.MaxImageSizeBytes)
	if err != nil {
		return nil, err
	}

	jpegBytes, err := storage.ResizeToJPEG(data, model.AvatarWidth, model.AvatarHeight, model.AvatarJPEGQuality)
	if err != nil {
		return nil, err
	}

	return s.store.Put(ctx, model.AvatarFolder, model.AvatarExt, model.ContentTypeJPEG, jpegBytes)
}

// UploadPostImage stores a post image as uploaded.
func (s *MediaService) UploadPostImage(ctx context.Context, upload storage.Upload) (*model.UploadResult, error) {
	data, contentType, err := storage.ReadImage(upload, model.MaxImageSizeBytes)
	if err != nil {
		return nil, err
	}
	return s.store.Put(ctx, model.PostImageFolder, storage.ExtFor(contentType), contentType, data)
}

// Remove deletes a previously stored image. Failures are logged, never returned:
// an orphaned file is harmless while a failed request after commit is not.
func (s *MediaService) Remove(ctx context.Context, url string) {
	if url == "" {
		return
	}
	key, ok := s.store.KeyFromURL(url)
	if !ok {
		return
	}
	if err := s.store.Delete(ctx, key); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("failed to remove stored image")
	}
}
