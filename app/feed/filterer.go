package feed

import (
	"log/slog"
	"strings"
)

// Filterer drops listing entries according to the include/exclude rules.
type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

func (f *Filterer) Run(items []ItemSummary, filters []ConfigFilter) []ItemSummary {
	if len(filters) == 0 {
		return items
	}

	kept := make([]ItemSummary, 0, len(items))
	for _, item := range items {
		if isFiltered, reason := f.applyFilters(item, filters); isFiltered {
			slog.Debug("Listing entry filtered", "link", item.Link, "reason", reason)
			continue
		}
		kept = append(kept, item)
	}

	return kept
}

func (f *Filterer) applyFilters(item ItemSummary, filters []ConfigFilter) (bool, string) {
	for _, filter := range filters {
		value := f.getFieldValue(item, filter.Field)

		for _, exclude := range filter.Excludes {
			if f.matchesFilter(value, exclude) {
				return true, "excluded by " + filter.Field + " filter: contains '" + exclude + "'"
			}
		}

		if len(filter.Includes) > 0 {
			matched := false
			for _, include := range filter.Includes {
				if f.matchesFilter(value, include) {
					matched = true
					break
				}
			}
			if !matched {
				return true, "excluded by " + filter.Field + " filter: no include rule matched"
			}
		}
	}

	return false, ""
}

func (f *Filterer) matchesFilter(value, pattern string) bool {
	return strings.Contains(lowerTurkish(value), lowerTurkish(pattern))
}

func (f *Filterer) getFieldValue(item ItemSummary, field string) string {
	switch field {
	case "title":
		return item.Title
	case "excerpt":
		return item.Excerpt
	case "link":
		return item.Link
	default:
		return ""
	}
}
