package database

import (
	"context"
	"encoding/json"
	"fmt"
)

type announcementRepository struct {
	db *DB
}

func NewAnnouncementRepository(db *DB) AnnouncementRepository {
	return &announcementRepository{db: db}
}

func (r *announcementRepository) ListAnnouncements(ctx context.Context, limit int) ([]Announcement, error) {
	query := `SELECT id, title, content, priority, images, files, created_at
		FROM announcements ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list announcements: %w", err)
	}
	defer rows.Close()

	var announcements []Announcement
	for rows.Next() {
		var a Announcement
		var imagesJSON, filesJSON string

		if err := rows.Scan(&a.ID, &a.Title, &a.Content, &a.Priority, &imagesJSON, &filesJSON, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan announcement: %w", err)
		}

		if a.Images, err = decodeStringList(imagesJSON); err != nil {
			return nil, fmt.Errorf("failed to decode images of %s: %w", a.ID, err)
		}
		if a.Files, err = decodeStringList(filesJSON); err != nil {
			return nil, fmt.Errorf("failed to decode files of %s: %w", a.ID, err)
		}

		announcements = append(announcements, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate announcements: %w", err)
	}

	return announcements, nil
}

func decodeStringList(raw string) ([]string, error) {
	list := []string{}
	if raw == "" {
		return list, nil
	}
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, err
	}
	return list, nil
}
