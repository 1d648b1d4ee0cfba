// Command generate-timezones rebuilds the embedded IANA zone list from the
// system tz database (zone1970.tab):
//
//	go run ./scripts/generate-timezones
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/goliatone/go-tripform/components/timezones"
)

const header = "# Curated IANA zone names used for origin timezone suggestions.\n"

func main() {
	var (
		zoneinfo = flag.String("zoneinfo", "/usr/share/zoneinfo", "tz database directory containing zone1970.tab")
		output   = flag.String("output", "components/timezones/data/iana_timezones.txt", "output path for the zone list")
		extra    = flag.String("extra", "UTC", "comma separated zones to add to the table entries")
	)
	flag.Parse()

	f, err := os.Open(filepath.Join(*zoneinfo, "zone1970.tab"))
	if err != nil {
		log.Fatalf("open zone table: %v", err)
	}
	defer func() { _ = f.Close() }()

	zones, err := parseZoneTable(f)
	if err != nil {
		log.Fatalf("parse zone table: %v", err)
	}
	for _, z := range strings.Split(*extra, ",") {
		if z = strings.TrimSpace(z); z != "" {
			zones = append(zones, z)
		}
	}
	zones = usable(zones)

	var b strings.Builder
	b.WriteString(header)
	for _, z := range zones {
		b.WriteString(z)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(*output, []byte(b.String()), 0o644); err != nil {
		log.Fatalf("write output: %v", err)
	}
	fmt.Printf("Wrote %d zones to %s\n", len(zones), *output)
}

// parseZoneTable returns the TZ column of a zone1970.tab style table.
func parseZoneTable(r io.Reader) ([]string, error) {
	var zones []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") || strings.TrimSpace(line) == "" {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) < 3 {
			return nil, fmt.Errorf("malformed line %q", line)
		}
		zones = append(zones, strings.TrimSpace(cols[2]))
	}
	return zones, scanner.Err()
}

// usable keeps the zones the runtime can load, deduplicated and sorted. UTC
// is kept even though it has no region.
func usable(zones []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(zones))
	for _, z := range zones {
		if _, ok := seen[z]; ok {
			continue
		}
		if z != "UTC" && !timezones.ValidName(z) {
			continue
		}
		if _, err := time.LoadLocation(z); err != nil {
			continue
		}
		seen[z] = struct{}{}
		out = append(out, z)
	}
	sort.Strings(out)
	return out
}
