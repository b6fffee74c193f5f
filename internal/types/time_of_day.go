package types

import (
	"fmt"
	"time"

	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"
)

const minutesPerDay = 24 * 60

// TimeOfDay is a wall-clock time with minute resolution, stored as minutes after midnight.
type TimeOfDay int

func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// ParseTimeOfDay parses "HH:MM".
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	parsed, err := time.Parse("15:04", value)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q, expected HH:MM: %w", value, err)
	}

	return NewTimeOfDay(parsed.Hour(), parsed.Minute()), nil
}

// TimeOfDayOf truncates t to its wall-clock minute.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return NewTimeOfDay(t.Hour(), t.Minute())
}

func (t TimeOfDay) Hour() int {
	return int(t) / 60
}

func (t TimeOfDay) Minute() int {
	return int(t) % 60
}

// Shift moves the time by whole hours, wrapping around midnight.
func (t TimeOfDay) Shift(hours int) TimeOfDay {
	shifted := (int(t) + hours*60) % minutesPerDay
	if shifted < 0 {
		shifted += minutesPerDay
	}

	return TimeOfDay(shifted)
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// UnmarshalYAML accepts either "HH:MM" or a mapping with hour and minute keys.
func (t *TimeOfDay) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.MappingNode {
		var window struct {
			Hour   int `yaml:"hour"`
			Minute int `yaml:"minute"`
		}

		if err := value.Decode(&window); err != nil {
			return err
		}

		if window.Hour < 0 || window.Hour > 23 || window.Minute < 0 || window.Minute > 59 {
			return fmt.Errorf("invalid time of day %02d:%02d", window.Hour, window.Minute)
		}

		*t = NewTimeOfDay(window.Hour, window.Minute)

		return nil
	}

	parsed, err := ParseTimeOfDay(value.Value)
	if err != nil {
		return err
	}

	*t = parsed

	return nil
}

func (t TimeOfDay) MarshalYAML() (any, error) {
	return t.String(), nil
}

// JSONSchema describes TimeOfDay as an HH:MM string.
func (TimeOfDay) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:    "string",
		Pattern: `^([01]\d|2[0-3]):[0-5]\d$`,
	}
}

// TimeWindow is the half-open interval [Start, End) of a trading day.
// A window whose start is after its end wraps past midnight.
type TimeWindow struct {
	Start TimeOfDay
	End   TimeOfDay
}

func (w TimeWindow) Contains(t time.Time) bool {
	tod := TimeOfDayOf(t)
	if w.Start <= w.End {
		return tod >= w.Start && tod < w.End
	}

	return tod >= w.Start || tod < w.End
}

// Length is the number of minutes in the window.
func (w TimeWindow) Length() int {
	return (int(w.End) - int(w.Start) + minutesPerDay) % minutesPerDay
}

// Covers reports whether other lies entirely inside w.
func (w TimeWindow) Covers(other TimeWindow) bool {
	offset := (int(other.Start) - int(w.Start) + minutesPerDay) % minutesPerDay

	return offset+other.Length() <= w.Length()
}

func (w TimeWindow) String() string {
	return fmt.Sprintf("[%s, %s)", w.Start, w.End)
}
