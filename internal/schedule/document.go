package schedule

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Block names. Exactly two blocks partition a day.
const (
	BlockOffPeak = "off_peak"
	BlockPeak    = "peak"
)

// TimeBlock is one named time-of-day window, "HH:MM" inclusive on both
// ends for the off-peak block.
type TimeBlock struct {
	From string `mapstructure:"from"`
	To   string `mapstructure:"to"`
}

// WeekSchedule maps lowercase weekday name -> block name -> ordered map
// identifiers.
type WeekSchedule map[string]map[string][]string

// Document is the parsed weekly rotation file. It either carries a direct
// Schedule or one or more rotation_<name> sections from which the active
// schedule is derived by cycle selection.
type Document struct {
	TimeBlocks       map[string]TimeBlock
	Schedule         WeekSchedule
	Rotations        map[string]WeekSchedule
	RotationOrder    []string
	CycleLengthWeeks int
	CycleAnchor      string
}

// RotationNames returns the declared rotation section names in sorted
// order, giving cycle selection a deterministic natural ordering.
func (d Document) RotationNames() []string {
	names := make([]string, 0, len(d.Rotations))
	for name := range d.Rotations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

const rotationPrefix = "rotation_"

// reservedRotationKeys are top-level keys that share the rotation_ prefix
// but are not schedule sections.
var reservedRotationKeys = map[string]bool{
	"rotation_order": true,
}

// decodeDocument builds a Document from a settings map (viper's
// AllSettings shape, all keys lowercased).
func decodeDocument(settings map[string]any) (Document, error) {
	type fileConfig struct {
		TimeBlocks       map[string]TimeBlock `mapstructure:"time_blocks"`
		Schedule         WeekSchedule         `mapstructure:"schedule"`
		RotationOrder    []string             `mapstructure:"rotation_order"`
		CycleLengthWeeks int                  `mapstructure:"cycle_length_weeks"`
		CycleAnchor      string               `mapstructure:"cycle_anchor"`
	}
	var known fileConfig
	if err := weakDecode(settings, &known); err != nil {
		return Document{}, fmt.Errorf("parsing schedule document failed: %w", err)
	}
	doc := Document{
		TimeBlocks:       known.TimeBlocks,
		Schedule:         normalizeWeek(known.Schedule),
		RotationOrder:    known.RotationOrder,
		CycleLengthWeeks: known.CycleLengthWeeks,
		CycleAnchor:      strings.TrimSpace(known.CycleAnchor),
	}
	for key, value := range settings {
		if !strings.HasPrefix(key, rotationPrefix) || reservedRotationKeys[key] {
			continue
		}
		var week WeekSchedule
		if err := weakDecode(value, &week); err != nil {
			return Document{}, fmt.Errorf("parsing section %s failed: %w", key, err)
		}
		if doc.Rotations == nil {
			doc.Rotations = make(map[string]WeekSchedule)
		}
		doc.Rotations[key] = normalizeWeek(week)
	}
	return doc, nil
}

func weakDecode(input, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// normalizeWeek lowercases weekday and block keys and guarantees both
// blocks exist for every declared day (an absent block means an empty
// pool).
func normalizeWeek(week WeekSchedule) WeekSchedule {
	if week == nil {
		return nil
	}
	out := make(WeekSchedule, len(week))
	for day, blocks := range week {
		normalized := map[string][]string{
			BlockOffPeak: nil,
			BlockPeak:    nil,
		}
		for block, pool := range blocks {
			normalized[strings.ToLower(strings.TrimSpace(block))] = pool
		}
		out[strings.ToLower(strings.TrimSpace(day))] = normalized
	}
	return out
}
