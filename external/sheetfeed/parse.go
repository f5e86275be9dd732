package sheetfeed

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/cricket-odds/internal/usecase"
)

const (
	colEventName = "event_name"
	colCommence  = "commence"
	colStatus    = "status"
	colBookmaker = "bookmaker"
	colHomeOdds  = "odd_1"
	colAwayOdds  = "odd_2"
)

var requiredColumns = []string{colEventName, colCommence, colStatus, colBookmaker, colHomeOdds, colAwayOdds}

var usDateRegex = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2}|\d{4})(?:[ T]+(\d{1,2}):(\d{2})(?::(\d{2}))?)?$`)

var genericLayouts = []struct {
	layout string
	zoned  bool
}{
	{time.RFC3339Nano, true},
	{time.RFC3339, true},
	{time.RFC1123Z, true},
	{time.RFC1123, true},
	{"2006-01-02T15:04:05", false},
	{"2006-01-02 15:04:05", false},
	{"2006-01-02T15:04", false},
	{"2006-01-02 15:04", false},
	{"Jan 2, 2006 15:04", false},
	{"Jan 2, 2006", false},
	{"2 Jan 2006", false},
}

type table struct {
	index map[string]int
	rowsV [][]any
}

type droppedRow struct {
	rowNumber int
	eventName string
	reason    string
}

// newTable indexes the header row. Every required column must be present.
func newTable(values [][]any) (*table, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: odds feed has no header row", usecase.ErrFeedConfiguration)
	}

	index := make(map[string]int, len(values[0]))
	for i, cell := range values[0] {
		name := strings.ToLower(strings.TrimSpace(cellString(cell)))
		if name == "" {
			continue
		}
		if _, exists := index[name]; !exists {
			index[name] = i
		}
	}

	missing := make([]string, 0)
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s", usecase.ErrFeedConfiguration, strings.Join(missing, ","))
	}

	return &table{index: index, rowsV: values[1:]}, nil
}

func (t *table) cell(row []any, column string) string {
	i, ok := t.index[column]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(cellString(row[i]))
}

func (t *table) rows(loc *time.Location, now time.Time) ([]usecase.ExternalOddsRow, []droppedRow) {
	out := make([]usecase.ExternalOddsRow, 0, len(t.rowsV))
	dropped := make([]droppedRow, 0)
	for i, raw := range t.rowsV {
		// Sheet row numbers are 1-based and the header takes row 1.
		rowNumber := i + 2
		if isBlankRow(raw) {
			continue
		}

		eventName := t.cell(raw, colEventName)
		home, away, ok := splitEventName(eventName)
		if !ok {
			dropped = append(dropped, droppedRow{rowNumber: rowNumber, eventName: eventName, reason: "event_name has no team separator"})
			continue
		}

		scheduledAt, fallback := parseCommence(t.cell(raw, colCommence), loc, now)
		out = append(out, usecase.ExternalOddsRow{
			RowNumber:    rowNumber,
			EventName:    eventName,
			HomeTeam:     home,
			AwayTeam:     away,
			ScheduledAt:  scheduledAt,
			DateFallback: fallback,
			Status:       t.cell(raw, colStatus),
			Bookmaker:    t.cell(raw, colBookmaker),
			HomeOdds:     parsePrice(t.cell(raw, colHomeOdds)),
			AwayOdds:     parsePrice(t.cell(raw, colAwayOdds)),
		})
	}
	return out, dropped
}

// splitEventName splits on " vs " and falls back to the first underscore.
func splitEventName(name string) (string, string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", false
	}

	var parts []string
	if strings.Contains(name, " vs ") {
		parts = strings.SplitN(name, " vs ", 2)
	} else if strings.Contains(name, "_") {
		parts = strings.SplitN(name, "_", 2)
	} else {
		return "", "", false
	}

	home, away := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if home == "" || away == "" {
		return "", "", false
	}
	return home, away, true
}

// parseCommence returns nil for an empty cell. A value that matches no known
// format falls back to now and reports fallback=true.
func parseCommence(value string, loc *time.Location, now time.Time) (*time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, false
	}
	if loc == nil {
		loc = time.UTC
	}

	if t, ok := parseUSDate(value, loc); ok {
		return &t, false
	}
	if t, err := time.ParseInLocation(time.DateOnly, value, loc); err == nil {
		t = t.UTC()
		return &t, false
	}
	for _, candidate := range genericLayouts {
		var (
			t   time.Time
			err error
		)
		if candidate.zoned {
			t, err = time.Parse(candidate.layout, value)
		} else {
			t, err = time.ParseInLocation(candidate.layout, value, loc)
		}
		if err == nil {
			t = t.UTC()
			return &t, false
		}
	}

	fallback := now.UTC()
	return &fallback, true
}

func parseUSDate(value string, loc *time.Location) (time.Time, bool) {
	m := usDateRegex.FindStringSubmatch(value)
	if m == nil {
		return time.Time{}, false
	}

	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if len(m[3]) == 2 {
		year += 2000
	}
	hour, minute, second := 0, 0, 0
	if m[4] != "" {
		hour, _ = strconv.Atoi(m[4])
		minute, _ = strconv.Atoi(m[5])
		if m[6] != "" {
			second, _ = strconv.Atoi(m[6])
		}
	}
	if month < 1 || month > 12 || hour > 23 || minute > 59 || second > 59 {
		return time.Time{}, false
	}

	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, loc)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// parsePrice coerces a cell to decimal odds. Anything non-numeric is NaN so
// the reconciler can reject the row.
func parsePrice(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func cellString(cell any) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

func isBlankRow(row []any) bool {
	for _, cell := range row {
		if strings.TrimSpace(cellString(cell)) != "" {
			return false
		}
	}
	return true
}
