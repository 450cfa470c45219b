package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type postRepository struct {
	db *DB
}

func NewPostRepository(db *DB) PostRepository {
	return &postRepository{db: db}
}

// NormalizeSourceURL is the identity key of a cached post: surrounding
// whitespace and trailing slashes are not significant.
func NormalizeSourceURL(raw string) string {
	return strings.TrimRight(strings.TrimSpace(raw), "/")
}

const postColumns = `id, source_url, title, date_text, content, image_url,
	has_full_content, content_schema_version, published_at, created_at, updated_at`

func (r *postRepository) GetPost(ctx context.Context, sourceURL string) (*CachedPost, error) {
	query := `SELECT ` + postColumns + ` FROM cached_posts WHERE source_url = ?`

	post, err := scanPost(r.db.QueryRowContext(ctx, query, NormalizeSourceURL(sourceURL)))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return post, nil
}

func (r *postRepository) ListPosts(ctx context.Context, limit int) ([]CachedPost, error) {
	query := `SELECT ` + postColumns + ` FROM cached_posts
		ORDER BY published_at DESC, created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var posts []CachedPost
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, *post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate posts: %w", err)
	}

	return posts, nil
}

func (r *postRepository) GetPostCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cached_posts`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get post count: %w", err)
	}
	return count, nil
}

func (r *postRepository) GetStaleCount(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM cached_posts
		WHERE has_full_content = 0 OR content_schema_version < ?`

	var count int
	if err := r.db.QueryRowContext(ctx, query, CurrentContentSchemaVersion).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get stale count: %w", err)
	}
	return count, nil
}

// UpsertPost inserts the post or overwrites the existing row with the same
// source URL. Empty title, date text and image keep the stored values.
func (r *postRepository) UpsertPost(ctx context.Context, post PostUpsert) error {
	sourceURL := NormalizeSourceURL(post.SourceURL)
	if sourceURL == "" {
		return fmt.Errorf("failed to upsert post: empty source url")
	}

	now := time.Now().UTC()
	var publishedAt any
	if post.PublishedAt != nil {
		publishedAt = post.PublishedAt.UTC()
	}

	schemaVersion := 0
	if post.HasFullContent {
		schemaVersion = CurrentContentSchemaVersion
	}

	query := `
		INSERT INTO cached_posts (` + postColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, COALESCE(?, ?), ?, ?)
		ON CONFLICT(source_url) DO UPDATE SET
			title = COALESCE(NULLIF(excluded.title, ''), cached_posts.title),
			date_text = COALESCE(NULLIF(excluded.date_text, ''), cached_posts.date_text),
			content = excluded.content,
			image_url = COALESCE(NULLIF(excluded.image_url, ''), cached_posts.image_url),
			has_full_content = excluded.has_full_content,
			content_schema_version = excluded.content_schema_version,
			published_at = COALESCE(?, cached_posts.published_at),
			updated_at = excluded.updated_at`

	_, err := r.db.ExecContext(ctx, query,
		uuid.NewString(), sourceURL, post.Title, post.DateText, post.Content, post.ImageURL,
		post.HasFullContent, schemaVersion, publishedAt, now, now, now,
		publishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert post: %w", err)
	}

	return nil
}

// InsertPlaceholder records a first sighting of a post. It never touches an
// existing row and reports whether a row was created.
func (r *postRepository) InsertPlaceholder(ctx context.Context, post PostUpsert) (bool, error) {
	sourceURL := NormalizeSourceURL(post.SourceURL)
	if sourceURL == "" {
		return false, fmt.Errorf("failed to insert placeholder: empty source url")
	}

	now := time.Now().UTC()
	publishedAt := now
	if post.PublishedAt != nil {
		publishedAt = post.PublishedAt.UTC()
	}

	query := `
		INSERT INTO cached_posts (` + postColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, 0, 0, ?, ?, ?)
		ON CONFLICT(source_url) DO NOTHING`

	result, err := r.db.ExecContext(ctx, query,
		uuid.NewString(), sourceURL, post.Title, post.DateText, post.Content, post.ImageURL,
		publishedAt, now, now,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert placeholder: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return affected > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*CachedPost, error) {
	var post CachedPost
	err := row.Scan(
		&post.ID, &post.SourceURL, &post.Title, &post.DateText, &post.Content, &post.ImageURL,
		&post.HasFullContent, &post.ContentSchemaVersion, &post.PublishedAt, &post.CreatedAt, &post.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &post, nil
}
