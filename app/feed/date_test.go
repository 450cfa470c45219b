package feed

import (
	"testing"
	"time"
)

func fixedNormalizer(now time.Time) *DateNormalizer {
	n := NewDateNormalizer()
	n.now = func() time.Time { return now }
	return n
}

func TestDateNormalizer_TurkishMonths(t *testing.T) {
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	n := fixedNormalizer(now)

	months := []string{"Ocak", "Şubat", "Mart", "Nisan", "Mayıs", "Haziran",
		"Temmuz", "Ağustos", "Eylül", "Ekim", "Kasım", "Aralık"}

	for i, name := range months {
		input := "5 " + name + " 2024"
		got := n.Normalize(input)
		expected := time.Date(2024, time.Month(i+1), 5, 0, 0, 0, 0, time.UTC)
		if !got.Equal(expected) {
			t.Errorf("Normalize(%q): expected %v, got %v", input, expected, got)
		}
	}
}

func TestDateNormalizer_Variants(t *testing.T) {
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	n := fixedNormalizer(now)

	tests := []struct {
		input    string
		expected time.Time
	}{
		{"MAYIS 2024 tarihli, 17 MAYIS", time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC)},
		{"  12 ARALIK 2023 ", time.Date(2023, 12, 12, 0, 0, 0, 0, time.UTC)},
		{"Yayın: 3 İkinci 1 Eylül 2022", time.Date(2022, 9, 1, 0, 0, 0, 0, time.UTC)},
		{"9 agustos 2021", time.Date(2021, 8, 9, 0, 0, 0, 0, time.UTC)},
		{"2024-03-15", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"2024-03-15T10:30:00+03:00", time.Date(2024, 3, 15, 7, 30, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		got := n.Normalize(tt.input)
		if !got.Equal(tt.expected) {
			t.Errorf("Normalize(%q): expected %v, got %v", tt.input, tt.expected, got)
		}
		if got.Location() != time.UTC {
			t.Errorf("Normalize(%q): expected UTC location, got %v", tt.input, got.Location())
		}
	}
}

func TestDateNormalizer_FallbackToNow(t *testing.T) {
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	n := fixedNormalizer(now)

	inputs := []string{
		"",
		"   ",
		"dün",
		"15 Mart",
		"Mart 2024",
		"31 Şubat 2024",
		"15 Brumaire 2024",
	}

	for _, input := range inputs {
		got := n.Normalize(input)
		if got.IsZero() {
			t.Errorf("Normalize(%q): expected non-zero time", input)
		}
		if !got.Equal(now) {
			t.Errorf("Normalize(%q): expected fallback %v, got %v", input, now, got)
		}
	}
}
