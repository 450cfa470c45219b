package database

import (
	"context"
)

type PostRepository interface {
	GetPost(ctx context.Context, sourceURL string) (*CachedPost, error)
	ListPosts(ctx context.Context, limit int) ([]CachedPost, error)
	GetPostCount(ctx context.Context) (int, error)
	GetStaleCount(ctx context.Context) (int, error)

	UpsertPost(ctx context.Context, post PostUpsert) error
	InsertPlaceholder(ctx context.Context, post PostUpsert) (bool, error)
}

type AnnouncementRepository interface {
	ListAnnouncements(ctx context.Context, limit int) ([]Announcement, error)
}
