// Package clock reports the current time in an IANA time zone.
package clock

import (
	"context"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/Cyclone1070/turnkit/internal/tool"
)

// MsgInvalidTimezone is returned for zones time.LoadLocation rejects.
const MsgInvalidTimezone = "Invalid timezone. Please provide a valid timezone (e.g., 'America/New_York')."

const layout = "03:04 PM MST"

// Request is the argument of get_time.
type Request struct {
	Timezone string `json:"timezone" description:"IANA time zone, e.g. America/New_York"`
}

func (r Request) String() string { return r.Timezone }

// Clock formats the current time. Now is injectable for tests.
type Clock struct {
	Now func() time.Time
}

// New returns a Clock using time.Now.
func New() *Clock {
	return &Clock{Now: time.Now}
}

// In returns the current-time line for the zone tz.
func (c *Clock) In(tz string) string {
	tz = strings.TrimSpace(tz)
	// LoadLocation maps "" to UTC; an empty zone is a user mistake here.
	if tz == "" {
		return MsgInvalidTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return MsgInvalidTimezone
	}
	return fmt.Sprintf("The current time in %s is %s.", tz, c.Now().In(loc).Format(layout))
}

// Tool returns get_time backed by c.
func (c *Clock) Tool() tool.Tool {
	return tool.NewFunction("get_time", "Get the current time in a time zone.",
		func(_ context.Context, req Request) (string, error) {
			return c.In(req.Timezone), nil
		})
}
