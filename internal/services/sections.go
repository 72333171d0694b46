package services

import (
	"context"
	"log/slog"

	"github.com/m3rciful/storebot/core/logger"
	"github.com/m3rciful/storebot/internal/models"
)

// SectionStore is the persistence contract for singleton content sections.
type SectionStore interface {
	ByKey(ctx context.Context, key string) (*models.Section, error)
	Update(ctx context.Context, key, content string, photoPath *string) error
}

// FileRemover removes a stored photo; missing files are not an error.
type FileRemover interface {
	Remove(path string) error
}

// SectionService reads and updates the about/promotions content blocks.
type SectionService struct {
	sections SectionStore
	files    FileRemover
}

// NewSectionService wires the section service.
func NewSectionService(sections SectionStore, files FileRemover) *SectionService {
	return &SectionService{sections: sections, files: files}
}

// Section returns a section by key or ErrNotFound.
func (s *SectionService) Section(ctx context.Context, key string) (*models.Section, error) {
	sec, err := s.sections.ByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if sec == nil {
		return nil, ErrNotFound
	}
	return sec, nil
}

// Update replaces section content and photo. The previous photo file is
// removed best-effort once the row is updated.
func (s *SectionService) Update(ctx context.Context, key, content string, photoPath *string) error {
	prev, err := s.Section(ctx, key)
	if err != nil {
		return err
	}
	if err := s.sections.Update(ctx, key, content, photoPath); err != nil {
		return err
	}
	if prev.PhotoPath != nil && s.files != nil {
		samePhoto := photoPath != nil && *photoPath == *prev.PhotoPath
		if !samePhoto {
			if err := s.files.Remove(*prev.PhotoPath); err != nil {
				logger.Warn(ctx, "service.sections", "section.photo_cleanup_failed",
					slog.String("section", key),
					slog.String("err", err.Error()),
				)
			}
		}
	}
	logger.Info(ctx, "service.sections", "section.updated",
		slog.String("section", key),
		slog.Bool("has_photo", photoPath != nil),
	)
	return nil
}
