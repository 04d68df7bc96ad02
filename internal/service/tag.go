package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"socialnet/internal/cache"
	"socialnet/internal/model"
	"socialnet/internal/repository"
)

// TagService serves the tag list, read-through cached when a cache is configured.
type TagService struct {
	repo  repository.TagRepository
	cache cache.TagCache
	log   logrus.FieldLogger
}

// NewTagService creates the service. tagCache may be nil.
func NewTagService(repo repository.TagRepository, tagCache cache.TagCache, log logrus.FieldLogger) *TagService {
	return &TagService{repo: repo, cache: tagCache, log: log}
}

// List returns all tags alphabetically. Cache errors fall back to the database.
func (s *TagService) List(ctx context.Context) ([]model.Tag, error) {
	if s.cache != nil {
		tags, found, err := s.cache.Get(ctx)
		if err != nil {
			s.log.WithError(err).Warn("tag cache read failed")
		} else if found {
			return tags, nil
		}
	}

	tags, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, tags); err != nil {
			s.log.WithError(err).Warn("tag cache write failed")
		}
	}
	return tags, nil
}

// Seed inserts missing tag names and drops the cached list.
func (s *TagService) Seed(ctx context.Context, names []string) (int, error) {
	inserted, err := s.repo.Upsert(ctx, names)
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.log.WithError(err).Warn("tag cache invalidation failed")
		}
	}

	s.log.WithFields(logrus.Fields{"inserted": inserted, "total": len(names)}).Info("tags seeded")
	return inserted, nil
}
