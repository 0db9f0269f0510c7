// Package dates parses the date formats the upstream menu sources publish:
// Czech free-text titles ("Pondělí 11. března 2024"), permissive numeric
// lines ("2. 9. 2026") and strict DD.MM.YYYY headers. All results are
// calendar dates at midnight UTC.
package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Genitive forms appear after a day number ("11. března"), nominative forms
// show up in bare headings. Both map to the same month.
var czechMonths = map[string]time.Month{
	"ledna": time.January, "leden": time.January,
	"února": time.February, "únor": time.February,
	"března": time.March, "březen": time.March,
	"dubna": time.April, "duben": time.April,
	"května": time.May, "květen": time.May,
	"června": time.June, "červen": time.June,
	"července": time.July, "červenec": time.July,
	"srpna": time.August, "srpen": time.August,
	"září": time.September,
	"října": time.October, "říjen": time.October,
	"listopadu": time.November, "listopad": time.November,
	"prosince": time.December, "prosinec": time.December,
}

var (
	czechTextRe = regexp.MustCompile(`(\d{1,2})\.?\s+(\p{L}+)\s+(\d{4})`)
	numericRe   = regexp.MustCompile(`(\d{1,2})\.\s*(\d{1,2})\.\s*(\d{4})`)
)

// ParseCzech extracts a date from free Czech text such as a feed item title.
// The weekday prefix is optional and ignored; month names match in either
// genitive or nominative form, case-insensitively.
func ParseCzech(s string) (time.Time, error) {
	m := czechTextRe.FindStringSubmatch(strings.ToLower(s))
	if m == nil {
		return time.Time{}, fmt.Errorf("no Czech date in %q", s)
	}

	day, err := strconv.Atoi(m[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day in %q: %w", s, err)
	}

	month, ok := czechMonths[m[2]]
	if !ok {
		return time.Time{}, fmt.Errorf("unknown Czech month %q in %q", m[2], s)
	}

	year, err := strconv.Atoi(m[3])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid year in %q: %w", s, err)
	}

	return newDate(year, month, day, s)
}

// ParseNumeric finds a D(D).M(M).YYYY date anywhere in the line, tolerating
// whitespace after the dots. Used on the PDF bulletin's date lines.
func ParseNumeric(s string) (time.Time, error) {
	m := numericRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, fmt.Errorf("no numeric date in %q", s)
	}

	day, _ := strconv.Atoi(m[1])
	monthNum, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])

	if monthNum < 1 || monthNum > 12 {
		return time.Time{}, fmt.Errorf("month out of range in %q", s)
	}

	return newDate(year, time.Month(monthNum), day, s)
}

// ParseStrict parses a header date after stripping every rune that is not a
// digit or a dot. An empty or malformed residue is an error; callers skip
// the section it came from.
func ParseStrict(s string) (time.Time, error) {
	cleaned := stripNonDate(s)
	if cleaned == "" {
		return time.Time{}, fmt.Errorf("no date digits in %q", s)
	}

	t, err := time.Parse("2.1.2006", cleaned)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse header date %q: %w", cleaned, err)
	}

	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

func stripNonDate(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func newDate(year int, month time.Month, day int, src string) (time.Time, error) {
	if day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("day out of range in %q", src)
	}

	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (e.g. 31.2. becomes 2.3.), which would
	// silently accept a misparsed line.
	if t.Day() != day || t.Month() != month {
		return time.Time{}, fmt.Errorf("impossible date in %q", src)
	}
	return t, nil
}
