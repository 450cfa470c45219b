package feed

import (
	"testing"
)

func TestFilterer_NoFilters(t *testing.T) {
	filterer := NewFilterer()

	items := []ItemSummary{
		{Title: "Sınav Duyurusu", Link: "https://ydyo.ankaramedipol.edu.tr/p/1"},
		{Title: "Etkinlik", Link: "https://ydyo.ankaramedipol.edu.tr/p/2"},
	}

	result := filterer.Run(items, nil)

	if len(result) != 2 {
		t.Errorf("Expected 2 items, got %d", len(result))
	}
}

func TestFilterer_TitleExclude(t *testing.T) {
	filterer := NewFilterer()

	items := []ItemSummary{
		{Title: "Sınav Duyurusu", Link: "https://ydyo.ankaramedipol.edu.tr/p/1"},
		{Title: "REKLAM: Yaz Okulu", Link: "https://ydyo.ankaramedipol.edu.tr/p/2"},
	}

	filters := []ConfigFilter{{Field: "title", Excludes: []string{"reklam"}}}

	result := filterer.Run(items, filters)

	if len(result) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(result))
	}
	if result[0].Title != "Sınav Duyurusu" {
		t.Errorf("Expected 'Sınav Duyurusu' to be kept, got '%s'", result[0].Title)
	}
}

func TestFilterer_IncludeIsTurkishCaseInsensitive(t *testing.T) {
	filterer := NewFilterer()

	items := []ItemSummary{
		{Title: "SINAV SONUÇLARI", Link: "https://ydyo.ankaramedipol.edu.tr/p/1"},
		{Title: "İngilizce Hazırlık", Link: "https://ydyo.ankaramedipol.edu.tr/p/2"},
		{Title: "Kampüs Etkinliği", Link: "https://ydyo.ankaramedipol.edu.tr/p/3"},
	}

	filters := []ConfigFilter{{Field: "title", Includes: []string{"sınav", "ingilizce"}}}

	result := filterer.Run(items, filters)

	if len(result) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(result))
	}
	if result[0].Link != "https://ydyo.ankaramedipol.edu.tr/p/1" || result[1].Link != "https://ydyo.ankaramedipol.edu.tr/p/2" {
		t.Errorf("Unexpected items kept: %+v", result)
	}
}

func TestFilterer_UnknownFieldExcludesWhenIncludeSet(t *testing.T) {
	filterer := NewFilterer()

	items := []ItemSummary{{Title: "Sınav", Link: "https://ydyo.ankaramedipol.edu.tr/p/1"}}
	filters := []ConfigFilter{{Field: "authors", Includes: []string{"x"}}}

	result := filterer.Run(items, filters)

	if len(result) != 0 {
		t.Errorf("Expected item to be filtered, got %d items", len(result))
	}
}
