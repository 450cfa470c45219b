package database

import (
	"context"
	"testing"
	"time"
)

func TestAnnouncementRepository_ListAnnouncements(t *testing.T) {
	db := newTestDB(t)
	repo := NewAnnouncementRepository(db)

	older := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	newer := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)

	_, err := db.Exec(`INSERT INTO announcements (id, title, content, priority, images, files, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?), (?, ?, ?, ?, ?, ?, ?)`,
		"a1", "Eski duyuru", "<p>eski</p>", 0, `[]`, `["https://cdn.example/form.pdf"]`, older,
		"a2", "Yeni duyuru", "<p>yeni</p>", 2, `["https://cdn.example/a.jpg"]`, ``, newer,
	)
	if err != nil {
		t.Fatalf("Failed to seed announcements: %v", err)
	}

	list, err := repo.ListAnnouncements(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListAnnouncements failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("Expected 2 announcements, got %d", len(list))
	}

	if list[0].ID != "a2" {
		t.Errorf("Expected newest first, got %s", list[0].ID)
	}
	if list[0].Priority != 2 {
		t.Errorf("Expected priority 2, got %d", list[0].Priority)
	}
	if len(list[0].Images) != 1 || list[0].Images[0] != "https://cdn.example/a.jpg" {
		t.Errorf("Unexpected images: %v", list[0].Images)
	}
	if list[0].Files == nil || len(list[0].Files) != 0 {
		t.Errorf("Expected empty non-nil files, got %v", list[0].Files)
	}
	if len(list[1].Files) != 1 {
		t.Errorf("Expected 1 file, got %v", list[1].Files)
	}
	if !list[1].CreatedAt.Equal(older) {
		t.Errorf("Expected created_at %v, got %v", older, list[1].CreatedAt)
	}
}
