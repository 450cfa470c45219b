package feed

import (
	"sort"

	"github.com/google/uuid"

	"github.com/lysyi3m/duyuru/app/database"
)

// Merge combines first-party announcements, cached posts and listing items
// that are not cached yet into one view, newest first. Listing items are
// matched against cached posts by normalized link.
func Merge(announcements []database.Announcement, posts []database.CachedPost, listing []ItemSummary, normalizer *DateNormalizer) []AnnouncementView {
	views := make([]AnnouncementView, 0, len(announcements)+len(posts)+len(listing))

	for _, a := range announcements {
		views = append(views, AnnouncementView{
			ID:       a.ID,
			Title:    a.Title,
			Content:  a.Content,
			Date:     a.CreatedAt,
			Priority: a.Priority,
			Images:   nonNil(a.Images),
			Files:    nonNil(a.Files),
		})
	}

	seen := make(map[string]bool, len(posts))
	for _, p := range posts {
		seen[p.SourceURL] = true
		views = append(views, AnnouncementView{
			ID:      p.ID,
			Title:   p.Title,
			Content: p.Content,
			Date:    p.PublishedAt,
			Images:  imageList(p.ImageURL),
			Files:   []string{},
			Source:  p.SourceURL,
		})
	}

	for _, item := range listing {
		link := database.NormalizeSourceURL(item.Link)
		if link == "" || seen[link] {
			continue
		}
		seen[link] = true

		views = append(views, AnnouncementView{
			ID:      uuid.NewSHA1(uuid.NameSpaceURL, []byte(link)).String(),
			Title:   item.Title,
			Content: item.Excerpt,
			Date:    normalizer.Normalize(item.DateText),
			Images:  imageList(item.ImageURL),
			Files:   []string{},
			Source:  link,
		})
	}

	sort.SliceStable(views, func(i, j int) bool {
		if !views[i].Date.Equal(views[j].Date) {
			return views[i].Date.After(views[j].Date)
		}
		return views[i].Priority > views[j].Priority
	})

	return views
}

func imageList(imageURL string) []string {
	if imageURL == "" {
		return []string{}
	}
	return []string{imageURL}
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
