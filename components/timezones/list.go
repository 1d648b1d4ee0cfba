package timezones

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
	"sync"
)

//go:embed data/iana_timezones.txt
var dataFS embed.FS

const defaultListPath = "data/iana_timezones.txt"

var (
	defaultOnce  sync.Once
	defaultZones []string
	defaultErr   error
)

// zonePattern accepts Region/City and Region/Sub/City identifiers.
var zonePattern = regexp.MustCompile(`^[A-Za-z]+(?:/[A-Za-z0-9][A-Za-z0-9_+\-]*)+$`)

// ValidName reports whether zone is syntactically a region/city pair such as
// "America/Sao_Paulo". It does not consult the zone list.
func ValidName(zone string) bool {
	return zonePattern.MatchString(strings.TrimSpace(zone))
}

// DefaultZones returns a copy of the embedded zone list, sorted.
func DefaultZones() ([]string, error) {
	defaultOnce.Do(func() {
		f, err := dataFS.Open(defaultListPath)
		if err != nil {
			defaultErr = err
			return
		}
		defer func() { _ = f.Close() }()

		zones, err := LoadZones(f)
		if err != nil {
			defaultErr = err
			return
		}
		defaultZones = zones
	})

	if defaultErr != nil {
		return nil, defaultErr
	}
	return append([]string{}, defaultZones...), nil
}

// Known reports whether zone is present in the sorted zones slice.
func Known(zones []string, zone string) bool {
	zone = strings.TrimSpace(zone)
	idx := sort.SearchStrings(zones, zone)
	return idx < len(zones) && zones[idx] == zone
}

// LoadZones reads one zone per line, skipping blanks and # comments, and
// returns the deduplicated names sorted.
func LoadZones(r io.Reader) ([]string, error) {
	if r == nil {
		return nil, fmt.Errorf("timezones: missing reader")
	}

	scanner := bufio.NewScanner(r)
	zones := make([]string, 0, 128)
	seen := map[string]struct{}{}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		zones = append(zones, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("timezones: scan: %w", err)
	}

	sort.Strings(zones)
	return zones, nil
}
