// Package cycle names the calendar buckets ("cycles") of an index store.
//
// A cycle is a whole number of fixed-length periods since the Unix epoch.
// Each cycle owns one directory whose name is the cycle's start time
// formatted in UTC, e.g. "20240101" for a daily cycle. Cycles whose start
// falls outside the years 1 to 9999 cannot be written with a four digit
// year and are named by their count instead, e.g. "c00020240101".
package cycle

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// Length is the duration of one cycle together with its directory layout.
type Length struct {
	Name     string
	Layout   string
	Duration time.Duration
}

var (
	// Daily cycles are named yyyyMMdd.
	Daily = Length{Name: "DAILY", Layout: "20060102", Duration: 24 * time.Hour}
	// Hourly cycles are named yyyyMMdd-HH.
	Hourly = Length{Name: "HOURLY", Layout: "20060102-15", Duration: time.Hour}
	// Minutely cycles are named yyyyMMdd-HHmm.
	Minutely = Length{Name: "MINUTELY", Layout: "20060102-1504", Duration: time.Minute}
)

// ParseError reports a directory name that does not follow the layout.
type ParseError struct {
	Name   string
	Layout string
	cause  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cycle: %q does not match layout %q", e.Name, e.Layout)
}

func (e *ParseError) Unwrap() error { return e.cause }

const memoSize = 64

// countPrefix marks directory names that carry a raw cycle count.
const countPrefix = "c"

var (
	minTime = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
	maxTime = time.Date(9999, time.December, 31, 23, 59, 59, 999_000_000, time.UTC)
)

type memo struct {
	cycle int
	name  string
}

// Naming formats and parses cycle directory names. It is safe for concurrent use.
type Naming struct {
	length Length
	// Cycles in [minCycle, maxCycle] are named by their start time.
	minCycle, maxCycle int64
	// Recently formatted names, indexed by cycle modulo memoSize.
	memo [memoSize]atomic.Pointer[memo]
}

// New returns a Naming for the given cycle length.
func New(length Length) *Naming {
	ms := length.Duration.Milliseconds()
	return &Naming{
		length: length,
		// Truncating division rounds the negative bound up and the positive one down.
		minCycle: minTime.UnixMilli() / ms,
		maxCycle: maxTime.UnixMilli() / ms,
	}
}

// Length returns the cycle length.
func (n *Naming) Length() Length {
	return n.length
}

// FormatFor returns the directory name of cycle c.
func (n *Naming) FormatFor(c int) string {
	slot := &n.memo[uint(c)%memoSize]
	if m := slot.Load(); m != nil && m.cycle == c {
		return m.name
	}
	var name string
	if n.dated(c) {
		name = time.UnixMilli(int64(c) * n.length.Duration.Milliseconds()).UTC().Format(n.length.Layout)
	} else {
		name = fmt.Sprintf("%s%011d", countPrefix, c)
	}
	slot.Store(&memo{cycle: c, name: name})
	return name
}

// ParseCount returns the cycle whose directory is called name. It accepts
// exactly the names FormatFor produces.
func (n *Naming) ParseCount(name string) (int, error) {
	if rest, ok := strings.CutPrefix(name, countPrefix); ok {
		c, err := strconv.Atoi(rest)
		if err != nil || n.dated(c) || n.FormatFor(c) != name {
			return 0, &ParseError{Name: name, Layout: countPrefix + "<count>", cause: err}
		}
		return c, nil
	}

	t, err := time.ParseInLocation(n.length.Layout, name, time.UTC)
	if err != nil {
		return 0, &ParseError{Name: name, Layout: n.length.Layout, cause: err}
	}
	c := int(t.UnixMilli() / n.length.Duration.Milliseconds())
	if !n.dated(c) {
		return 0, &ParseError{Name: name, Layout: n.length.Layout}
	}
	return c, nil
}

func (n *Naming) dated(c int) bool {
	return int64(c) >= n.minCycle && int64(c) <= n.maxCycle
}

// CycleFor returns the cycle containing t.
func (n *Naming) CycleFor(t time.Time) int {
	return int(t.UnixMilli() / n.length.Duration.Milliseconds())
}
