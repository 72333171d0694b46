package services

import (
	"context"
	"errors"
	"testing"

	"github.com/m3rciful/storebot/internal/models"
)

func TestSectionNotFound(t *testing.T) {
	svc := NewSectionService(newMemSections(), &fakeFiles{})
	if _, err := svc.Section(context.Background(), models.SectionAbout); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateReplacesPhotoAndCleansOld(t *testing.T) {
	sections := newMemSections()
	files := &fakeFiles{}
	svc := NewSectionService(sections, files)
	ctx := context.Background()

	oldPhoto := "sections/about-old.jpg"
	if err := sections.Update(ctx, models.SectionAbout, "Old text", &oldPhoto); err != nil {
		t.Fatalf("seed: %v", err)
	}

	newPhoto := "sections/about-new.jpg"
	if err := svc.Update(ctx, models.SectionAbout, "New text", &newPhoto); err != nil {
		t.Fatalf("update: %v", err)
	}

	sec, err := svc.Section(ctx, models.SectionAbout)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if sec.Content != "New text" || sec.PhotoPath == nil || *sec.PhotoPath != newPhoto {
		t.Fatalf("section = %+v", sec)
	}
	if len(files.removed) != 1 || files.removed[0] != oldPhoto {
		t.Fatalf("removed = %v, want old photo only", files.removed)
	}
}

func TestUpdateDropPhoto(t *testing.T) {
	sections := newMemSections()
	files := &fakeFiles{}
	svc := NewSectionService(sections, files)
	ctx := context.Background()

	photo := "sections/promo.jpg"
	if err := sections.Update(ctx, models.SectionPromotions, "Deals", &photo); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := svc.Update(ctx, models.SectionPromotions, "Text only now", nil); err != nil {
		t.Fatalf("update: %v", err)
	}

	sec, _ := svc.Section(ctx, models.SectionPromotions)
	if sec.PhotoPath != nil {
		t.Fatalf("photo path = %v, want nil", sec.PhotoPath)
	}
	if len(files.removed) != 1 || files.removed[0] != photo {
		t.Fatalf("removed = %v", files.removed)
	}
}

func TestUpdateKeepsSamePhoto(t *testing.T) {
	sections := newMemSections()
	files := &fakeFiles{}
	svc := NewSectionService(sections, files)
	ctx := context.Background()

	photo := "sections/about.jpg"
	if err := sections.Update(ctx, models.SectionAbout, "Text", &photo); err != nil {
		t.Fatalf("seed: %v", err)
	}
	same := photo
	if err := svc.Update(ctx, models.SectionAbout, "Edited text", &same); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(files.removed) != 0 {
		t.Fatalf("removed = %v, want nothing removed when photo unchanged", files.removed)
	}
}

func TestUpdateSurvivesCleanupFailure(t *testing.T) {
	sections := newMemSections()
	svc := NewSectionService(sections, &fakeFiles{fail: true})
	ctx := context.Background()

	photo := "sections/about.jpg"
	if err := sections.Update(ctx, models.SectionAbout, "Text", &photo); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := svc.Update(ctx, models.SectionAbout, "New", nil); err != nil {
		t.Fatalf("update should not fail on cleanup error: %v", err)
	}
}
