package schedule

import (
	"fmt"
	"strings"
	"time"

	"hllrotate/internal/logger"
)

// Default windows when the document declares no time_blocks. Any instant
// outside the off-peak window belongs to the peak block.
var defaultTimeBlocks = map[string]TimeBlock{
	BlockOffPeak: {From: "00:00", To: "14:30"},
	BlockPeak:    {From: "14:31", To: "23:59"},
}

// defaultCycleAnchor anchors multi-week cycle counting when neither the
// document nor the process configuration provides a date.
var defaultCycleAnchor = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

// DocumentSource supplies the current weekly rotation document.
type DocumentSource interface {
	Snapshot() Snapshot
}

// ResolverParams configures a Resolver.
type ResolverParams struct {
	Source DocumentSource
	// Location is the time zone all block and weekday decisions use.
	Location *time.Location
	// RotationOverride, when set, names the rotation section to use
	// regardless of cycle arithmetic. Invalid names are ignored with a
	// warning.
	RotationOverride string
	// AnchorOverride is an ISO date overriding the default cycle anchor
	// when the document declares none.
	AnchorOverride string
}

// Resolver answers the schedule questions enforcement asks: which block
// is active now, which maps belong to it, and when the next transition
// happens. The derived schedule is cached and re-derived only when the
// document version or the selected cycle can have changed.
type Resolver struct {
	source         DocumentSource
	loc            *time.Location
	override       string
	anchorOverride string

	derivedVersion int64
	derivedDay     string
	activeRotation string
	activeSchedule WeekSchedule
	blocks         windows
}

type windows struct {
	offFrom, offTo, peakFrom int // minutes of day
}

// NewResolver constructs a resolver. Location defaults to UTC.
func NewResolver(p ResolverParams) (*Resolver, error) {
	if p.Source == nil {
		return nil, fmt.Errorf("resolver requires a document source")
	}
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Resolver{
		source:         p.Source,
		loc:            loc,
		override:       strings.TrimSpace(p.RotationOverride),
		anchorOverride: strings.TrimSpace(p.AnchorOverride),
		derivedVersion: -1,
		blocks:         parseWindows(nil),
	}, nil
}

// CurrentBlock returns off_peak iff now's time of day falls inside the
// off-peak window, inclusive on both ends; every other instant is peak.
func (r *Resolver) CurrentBlock(now time.Time) string {
	local := now.In(r.loc)
	m := local.Hour()*60 + local.Minute()
	w := r.blocks
	if w.offFrom <= m && m <= w.offTo {
		return BlockOffPeak
	}
	return BlockPeak
}

// NextTransition returns the earliest upcoming block boundary, strictly
// after now.
func (r *Resolver) NextTransition(now time.Time) time.Time {
	local := now.In(r.loc)
	w := r.blocks
	earliest := time.Time{}
	for _, start := range []int{w.offFrom, w.peakFrom} {
		candidate := time.Date(local.Year(), local.Month(), local.Day(), start/60, start%60, 0, 0, r.loc)
		if !candidate.After(local) {
			candidate = candidate.AddDate(0, 0, 1)
		}
		if earliest.IsZero() || candidate.Before(earliest) {
			earliest = candidate
		}
	}
	return earliest
}

// TargetPool returns the map pool for now's weekday and block. A missing
// weekday is a structural configuration defect; a missing or empty block
// list means "clear the rotation".
func (r *Resolver) TargetPool(now time.Time) ([]string, error) {
	if err := r.EnsureSchedule(now); err != nil {
		return nil, err
	}
	weekday := strings.ToLower(now.In(r.loc).Weekday().String())
	day, ok := r.activeSchedule[weekday]
	if !ok {
		return nil, &Error{Kind: MissingDay, Detail: weekday}
	}
	return day[r.CurrentBlock(now)], nil
}

// Weekday returns now's lowercase English weekday name in the resolver's
// time zone, the key the weekly schedule is indexed by.
func (r *Resolver) Weekday(now time.Time) string {
	return strings.ToLower(now.In(r.loc).Weekday().String())
}

// ActiveRotation names the rotation section the current schedule was
// derived from; empty for documents with a direct schedule.
func (r *Resolver) ActiveRotation() string {
	return r.activeRotation
}

// EnsureSchedule derives the active weekly schedule, reusing the cached
// derivation while the document version and the calendar day are
// unchanged (cycle selection is deterministic within a day).
func (r *Resolver) EnsureSchedule(now time.Time) error {
	snap := r.source.Snapshot()
	day := now.In(r.loc).Format(time.DateOnly)
	if r.activeSchedule != nil && snap.Version == r.derivedVersion && day == r.derivedDay {
		return nil
	}
	doc := snap.Doc
	r.blocks = parseWindows(doc.TimeBlocks)

	switch {
	case doc.Schedule != nil:
		r.activeSchedule = doc.Schedule
		r.activeRotation = ""
	case len(doc.Rotations) > 0:
		name := r.selectRotation(doc, now)
		week, ok := doc.Rotations[name]
		if !ok {
			return &Error{Kind: MissingSchedule, Detail: "rotation section " + name + " missing"}
		}
		if name != r.activeRotation {
			logger.Infof("schedule: using rotation section %s", name)
		}
		r.activeSchedule = week
		r.activeRotation = name
	default:
		return &Error{Kind: MissingSchedule}
	}
	r.derivedVersion = snap.Version
	r.derivedDay = day
	return nil
}

// selectRotation picks the active rotation section: an explicit override
// when valid, otherwise floor(weeks_since_anchor / cycle_length) modulo
// the declared ordering.
func (r *Resolver) selectRotation(doc Document, now time.Time) string {
	names := doc.RotationNames()
	if r.override != "" {
		if key := normalizeRotationKey(r.override, names); key != "" {
			logger.Debugf("schedule: rotation override selects %s", key)
			return key
		}
		logger.Warnf("schedule: rotation override %q is not a declared section, ignoring", r.override)
	}

	sequence := r.orderedSequence(doc, names)
	length := doc.CycleLengthWeeks
	if length < 1 {
		length = 1
	}
	anchor := r.parseAnchor(doc.CycleAnchor)
	weeks := floorDiv(daysBetween(anchor, now.In(r.loc)), 7)
	index := floorMod(floorDiv(weeks, length), len(sequence))
	return sequence[index]
}

func (r *Resolver) orderedSequence(doc Document, names []string) []string {
	var ordered []string
	for _, entry := range doc.RotationOrder {
		if key := normalizeRotationKey(entry, names); key != "" {
			ordered = append(ordered, key)
		} else {
			logger.Warnf("schedule: rotation_order entry %q not recognized", entry)
		}
	}
	if len(ordered) > 0 {
		return ordered
	}
	return names
}

func (r *Resolver) parseAnchor(docAnchor string) time.Time {
	raw := docAnchor
	if raw == "" {
		raw = r.anchorOverride
	}
	if raw == "" {
		return defaultCycleAnchor
	}
	parsed, err := time.ParseInLocation(time.DateOnly, raw, r.loc)
	if err != nil {
		logger.Warnf("schedule: invalid cycle anchor %q, using %s", raw, defaultCycleAnchor.Format(time.DateOnly))
		return defaultCycleAnchor
	}
	return parsed
}

// normalizeRotationKey matches a rotation name with or without the
// rotation_ prefix against the declared sections.
func normalizeRotationKey(name string, names []string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ""
	}
	candidates := []string{name}
	if !strings.HasPrefix(name, rotationPrefix) {
		candidates = append(candidates, rotationPrefix+name)
	}
	for _, candidate := range candidates {
		for _, declared := range names {
			if candidate == declared {
				return declared
			}
		}
	}
	return ""
}

// parseWindows folds the configured time blocks over the defaults. Only
// the off-peak bounds and the peak start participate in block decisions.
func parseWindows(blocks map[string]TimeBlock) windows {
	off, okOff := blocks[BlockOffPeak]
	peak, okPeak := blocks[BlockPeak]
	if !okOff || !okPeak {
		if len(blocks) > 0 {
			logger.Infof("schedule: incomplete time_blocks, using defaults")
		}
		off = defaultTimeBlocks[BlockOffPeak]
		peak = defaultTimeBlocks[BlockPeak]
	}
	return windows{
		offFrom:  minutesOfDay(off.From, 0),
		offTo:    minutesOfDay(off.To, 14*60+30),
		peakFrom: minutesOfDay(peak.From, 14*60+31),
	}
}

func minutesOfDay(hhmm string, fallback int) int {
	parsed, err := time.Parse("15:04", strings.TrimSpace(hhmm))
	if err != nil {
		logger.Warnf("schedule: invalid time %q, using default", hhmm)
		return fallback
	}
	return parsed.Hour()*60 + parsed.Minute()
}

// daysBetween counts calendar days from a to b in b's location.
func daysBetween(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bd.Sub(ad).Hours() / 24)
}

// floorDiv and floorMod give Python-style floored results so cycle
// arithmetic stays stable for dates before the anchor.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return ((a % b) + b) % b
}
