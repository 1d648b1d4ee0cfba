package timezones

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Search returns up to limit zones matching query. Matching ignores case and
// accents and treats spaces as underscores, so "sao paulo" and "São Paulo"
// both find "America/Sao_Paulo". Matches on the city segment rank before
// other substring matches; ties sort alphabetically.
func Search(zones []string, query string, limit int, opts Options) []string {
	limit = clampLimit(limit, opts)
	if limit == 0 {
		return nil
	}

	q := fold(query)
	if q == "" {
		if opts.EmptySearchMode == EmptySearchTop {
			if len(zones) <= limit {
				return append([]string{}, zones...)
			}
			return append([]string{}, zones[:limit]...)
		}
		return nil
	}

	matches := make([]matchedZone, 0, 16)
	for _, zone := range zones {
		folded := fold(zone)
		if !strings.Contains(folded, q) {
			continue
		}
		matches = append(matches, matchedZone{
			name:   zone,
			onCity: strings.HasPrefix(citySegment(folded), q),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].onCity != matches[j].onCity {
			return matches[i].onCity
		}
		return matches[i].name < matches[j].name
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]string, 0, len(matches))
	for _, match := range matches {
		out = append(out, match.name)
	}
	return out
}

type matchedZone struct {
	name   string
	onCity bool
}

func citySegment(zone string) string {
	if idx := strings.LastIndex(zone, "/"); idx >= 0 {
		return zone[idx+1:]
	}
	return zone
}

var stripMarks = runes.Remove(runes.In(unicode.Mn))

func fold(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, stripMarks, norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	out = strings.ToLower(out)
	return strings.ReplaceAll(out, " ", "_")
}
