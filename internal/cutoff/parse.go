package cutoff

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// wall clock layouts accepted by Parse, month first.
var localLayouts = []string{
	"01-02-2006 15:04:05",
	"01-02-2006 15:04",
	"01-02-2006",
}

// InputHelp describes the input accepted by Parse.
const InputHelp = `positive number of days (e.g. 30), timestamp MM-DD-YYYY[ hh:mm[:ss]] (e.g. 04-19-2025 11:30), or "all"/0 to delete all`

// Parse sets the policy from user input:
//
//   - "all" or "0" enables the delete-all mode;
//   - positive integer is a number of days;
//   - MM-DD-YYYY[ hh:mm[:ss]] is a local wall clock time;
//   - RFC3339 timestamp is an absolute instant.
//
// On error the policy is not modified.
func (p *Policy) Parse(input string) error {
	s := strings.TrimSpace(input)
	if s == "" {
		return fmt.Errorf("%w: empty cutoff", ErrInvalidArgument)
	}
	if strings.EqualFold(s, "all") || s == "0" {
		p.SetDeleteAll()
		return nil
	}
	if days, err := strconv.Atoi(s); err == nil {
		return p.SetDays(days)
	}
	for _, layout := range localLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			p.SetCutoffLocal(t)
			return nil
		}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		p.SetCutoff(t)
		return nil
	}
	return fmt.Errorf("%w: %q, expected %s", ErrInvalidArgument, s, InputHelp)
}
