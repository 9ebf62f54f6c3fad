package repository

import (
	"testing"
)

func TestTagCreateByNameIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewTagRepository(db)

	first, err := repo.CreateByName("Street Photography")
	if err != nil {
		t.Fatalf("CreateByName: %v", err)
	}
	if first.Slug != "street-photography" {
		t.Errorf("slug = %q", first.Slug)
	}

	// different spelling, same slug
	second, err := repo.CreateByName("street  photography!")
	if err != nil {
		t.Fatalf("CreateByName again: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("got a new tag %d, want existing %d", second.ID, first.ID)
	}

	tags, err := repo.ListAll()
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(tags) != 1 {
		t.Errorf("tag count = %d, want 1", len(tags))
	}
}

func TestTagCreateByNameRejectsEmptySlug(t *testing.T) {
	db := newTestDB(t)
	repo := NewTagRepository(db)

	if _, err := repo.CreateByName("!!!"); err == nil {
		t.Error("expected error for a name with no slug content")
	}
}

func TestSetPhotoTagsReplacesAssignments(t *testing.T) {
	db := newTestDB(t)
	tagRepo := NewTagRepository(db)
	photoRepo := NewPhotoRepository(db)

	photo := seedPhoto(t, photoRepo, "/photos/a.jpg", nil, 100, nil)
	street, _ := tagRepo.CreateByName("street")
	night, _ := tagRepo.CreateByName("night")
	film, _ := tagRepo.CreateByName("film")

	if err := tagRepo.SetPhotoTags(photo.ID, []int64{street.ID, night.ID}); err != nil {
		t.Fatalf("SetPhotoTags: %v", err)
	}
	tags, err := tagRepo.ListByPhoto(photo.ID)
	if err != nil {
		t.Fatalf("ListByPhoto: %v", err)
	}
	if len(tags) != 2 {
		t.Fatalf("tag count = %d, want 2", len(tags))
	}

	if err := tagRepo.SetPhotoTags(photo.ID, []int64{film.ID}); err != nil {
		t.Fatalf("SetPhotoTags replace: %v", err)
	}
	tags, err = tagRepo.ListByPhoto(photo.ID)
	if err != nil {
		t.Fatalf("ListByPhoto: %v", err)
	}
	if len(tags) != 1 || tags[0].ID != film.ID {
		t.Errorf("replacement did not stick: %+v", tags)
	}

	if err := tagRepo.SetPhotoTags(photo.ID, nil); err != nil {
		t.Fatalf("SetPhotoTags clear: %v", err)
	}
	tags, err = tagRepo.ListByPhoto(photo.ID)
	if err != nil {
		t.Fatalf("ListByPhoto: %v", err)
	}
	if len(tags) != 0 {
		t.Errorf("clearing left %d tags", len(tags))
	}
}
