package feed

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var turkishMonths = map[string]time.Month{
	"ocak":    time.January,
	"şubat":   time.February,
	"mart":    time.March,
	"nisan":   time.April,
	"mayıs":   time.May,
	"haziran": time.June,
	"temmuz":  time.July,
	"ağustos": time.August,
	"eylül":   time.September,
	"ekim":    time.October,
	"kasım":   time.November,
	"aralık":  time.December,

	// ASCII spellings seen on pages that strip diacritics
	"subat":   time.February,
	"mayis":   time.May,
	"agustos": time.August,
	"eylul":   time.September,
	"kasim":   time.November,
	"aralik":  time.December,
}

var directLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
	"02.01.2006",
}

var (
	dayMonthPattern = regexp.MustCompile(`(\d{1,2})\s+([\p{L}]+)`)
	yearPattern     = regexp.MustCompile(`\b(\d{4})\b`)
)

// DateNormalizer turns upstream date text into an absolute timestamp.
// It never fails: unusable text resolves to the current time.
type DateNormalizer struct {
	now func() time.Time
}

func NewDateNormalizer() *DateNormalizer {
	return &DateNormalizer{now: time.Now}
}

func (n *DateNormalizer) Normalize(text string) time.Time {
	text = strings.TrimSpace(text)

	if text != "" {
		if t, ok := parseDirect(text); ok {
			return t
		}
		if t, ok := n.parseLocalized(text); ok {
			return t
		}
	}

	return n.now().UTC()
}

func parseDirect(text string) (time.Time, bool) {
	for _, layout := range directLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func (n *DateNormalizer) parseLocalized(text string) (time.Time, bool) {
	lowered := lowerTurkish(text)

	var day int
	var month time.Month
	for _, m := range dayMonthPattern.FindAllStringSubmatch(lowered, -1) {
		if mon, ok := turkishMonths[m[2]]; ok {
			day, _ = strconv.Atoi(m[1])
			month = mon
			break
		}
	}

	yearMatch := yearPattern.FindStringSubmatch(lowered)
	if day == 0 || month == 0 || yearMatch == nil {
		return time.Time{}, false
	}

	year, _ := strconv.Atoi(yearMatch[1])
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)

	// time.Date normalizes overflow (31 Şubat -> March); reject it
	if t.Day() != day || t.Month() != month {
		return time.Time{}, false
	}

	return t, true
}

// lowerTurkish maps İ->i and I->ı. A Caser is stateful, so one is built per call.
func lowerTurkish(s string) string {
	return cases.Lower(language.Turkish).String(s)
}
