// Package temporal grounds prompts in the caller's real "now".
//
// Times are rendered at a fixed +05:30 offset (Indian Standard Time). The
// offset is applied arithmetically, so the result does not depend on the
// host timezone database or TZ setting.
package temporal

import "time"

const (
	// Offset is the fixed civil offset from UTC.
	Offset = 5*time.Hour + 30*time.Minute

	zoneName = "IST"
	layout   = "2006-01-02 15:04:05 MST (UTC-07:00)"
)

var zone = time.FixedZone(zoneName, int(Offset/time.Second))

// Context is the temporal grounding injected into the generation prompt.
type Context struct {
	NowText string
	Year    int
}

// Clock returns the current instant. time.Now satisfies it.
type Clock func() time.Time

// Now renders the clock's instant at the fixed offset.
func Now(clock Clock) Context {
	if clock == nil {
		clock = time.Now
	}
	t := In(clock())
	return Context{
		NowText: t.Format(layout),
		Year:    t.Year(),
	}
}

// In converts t to the fixed offset.
func In(t time.Time) time.Time {
	return t.UTC().In(zone)
}
