package report

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-tripform/pkg/trip"
)

//go:embed templates/*.tpl
var templateFS embed.FS

const defaultTemplate = "plan.tpl"

// Option configures a Renderer.
type Option func(*config)

type config struct {
	source     string
	timeLayout string
	labels     map[string]string
}

// WithTemplateSource replaces the embedded template with src.
func WithTemplateSource(src string) Option {
	return func(cfg *config) {
		cfg.source = src
	}
}

// WithTimeLayout sets the layout used for the leave-home time.
func WithTimeLayout(layout string) Option {
	return func(cfg *config) {
		if strings.TrimSpace(layout) != "" {
			cfg.timeLayout = layout
		}
	}
}

// WithLabels overrides display labels for breakdown keys.
func WithLabels(labels map[string]string) Option {
	return func(cfg *config) {
		for k, v := range labels {
			cfg.labels[k] = v
		}
	}
}

// Renderer renders plans. It is safe for concurrent use.
type Renderer struct {
	tpl        *pongo2.Template
	timeLayout string
	labels     map[string]string
}

// New compiles the report template.
func New(options ...Option) (*Renderer, error) {
	cfg := &config{
		timeLayout: "Mon 02 Jan 2006 15:04",
		labels: map[string]string{
			"prevoo":        "pre-flight",
			"drive":         "drive",
			"deslocamento":  "drive",
			"check_in":      "check-in",
			"seguranca":     "security",
			"imigracao":     "immigration",
			"contingencia":  "contingency",
			"pico":          "peak hours",
			"bagagem":       "baggage drop",
			"embarque":      "boarding",
			"sem_assento":   "seat selection",
			"internacional": "international",
		},
	}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}

	set := pongo2.NewSet("tripform", pongo2.NewFSLoader(templateFS))
	var (
		tpl *pongo2.Template
		err error
	)
	if cfg.source != "" {
		tpl, err = set.FromString(cfg.source)
	} else {
		tpl, err = set.FromFile("templates/" + defaultTemplate)
	}
	if err != nil {
		return nil, fmt.Errorf("report: compile template: %w", err)
	}
	return &Renderer{tpl: tpl, timeLayout: cfg.timeLayout, labels: cfg.labels}, nil
}

// Render returns the text report for result. req is optional and only adds
// the origin and destination heading.
func (r *Renderer) Render(req *trip.TripRequest, result trip.PlanResult) (string, error) {
	var b strings.Builder
	if err := r.Write(&b, req, result); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Write renders the report to w.
func (r *Renderer) Write(w io.Writer, req *trip.TripRequest, result trip.PlanResult) error {
	if r == nil || r.tpl == nil {
		return errors.New("report: renderer is nil")
	}
	if err := r.tpl.ExecuteWriter(r.context(req, result), w); err != nil {
		return fmt.Errorf("report: execute template: %w", err)
	}
	return nil
}

type breakdownItem struct {
	Label   string
	Minutes string
}

func (r *Renderer) context(req *trip.TripRequest, result trip.PlanResult) pongo2.Context {
	ctx := pongo2.Context{
		"leave_at":  formatLeaveAt(result.DepartureAdvice.LeaveAtLocal, r.timeLayout),
		"checklist": Sanitize(result.ChecklistMarkdown),
	}
	if req != nil {
		ctx["trip"] = map[string]any{
			"origin":      Sanitize(req.OriginAddress),
			"destination": Sanitize(strings.TrimSpace(req.DestinationCity + ", " + req.DestinationCountry)),
		}
	}
	if a := result.Airport; a != nil && a.IATA != "" {
		ctx["airport"] = Sanitize(trip.AirportCandidate{
			IATA:    a.IATA,
			Name:    a.Name,
			City:    a.City,
			Country: a.Country,
		}.Label())
	}
	if items := r.breakdown(result.DepartureAdvice.BreakdownMin); len(items) > 0 {
		list := make([]map[string]any, 0, len(items))
		for _, item := range items {
			list = append(list, map[string]any{"label": item.Label, "minutes": item.Minutes})
		}
		ctx["breakdown"] = list
	}
	if c := result.Climate; c != nil {
		ctx["climate"] = map[string]any{
			"months":      Sanitize(strings.Join(c.MonthNames, ", ")),
			"tmin":        c.TMinC,
			"tavg":        c.TAvgC,
			"tmax":        c.TMaxC,
			"prcp":        c.PrcpMM,
			"rainy_class": Sanitize(c.RainyClass),
			"temp_class":  Sanitize(c.TempClass),
		}
	}
	return ctx
}

// breakdown lists entries alphabetically by key, with the drive time last.
func (r *Renderer) breakdown(minutes map[string]float64) []breakdownItem {
	keys := make([]string, 0, len(minutes))
	for k := range minutes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		di, dj := isDrive(keys[i]), isDrive(keys[j])
		if di != dj {
			return dj
		}
		return keys[i] < keys[j]
	})

	items := make([]breakdownItem, 0, len(keys))
	for _, k := range keys {
		label := r.labels[k]
		if label == "" {
			label = strings.ReplaceAll(k, "_", " ")
		}
		items = append(items, breakdownItem{
			Label:   label,
			Minutes: strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.1f", minutes[k]), "0"), "."),
		})
	}
	return items
}

func isDrive(key string) bool {
	return key == "drive" || key == "deslocamento"
}

var leaveAtLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

func formatLeaveAt(raw, layout string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "unknown"
	}
	for _, l := range leaveAtLayouts {
		if t, err := time.Parse(l, value); err == nil {
			return t.Format(layout)
		}
	}
	return Sanitize(value)
}
