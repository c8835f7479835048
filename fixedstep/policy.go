package fixedstep

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownPolicy = errors.New("unknown overrun policy")

// OverrunPolicy decides what a Timer does when more ticks are due in one
// render window than its update limit allows.
type OverrunPolicy int

const (
	// OverrunDiscard drops the whole backlog once the limit is exceeded and
	// starts a fresh window. Simulation time falls behind real time but the
	// loop always gets back to rendering. This is frame skipping.
	OverrunDiscard OverrunPolicy = iota

	// OverrunCarry stops firing ticks for the rest of the window but keeps
	// the backlog, which is worked off at up to limit ticks per window.
	// No simulation time is lost; a loop that is persistently too slow
	// never catches up.
	OverrunCarry
)

func (p OverrunPolicy) String() string {
	switch p {
	case OverrunDiscard:
		return "discard"
	case OverrunCarry:
		return "carry"
	default:
		return fmt.Sprintf("OverrunPolicy(%d)", int(p))
	}
}

func (p OverrunPolicy) valid() bool {
	return p == OverrunDiscard || p == OverrunCarry
}

// ParseOverrunPolicy accepts "discard" (or "skip") and "carry" (or "cap"),
// case insensitively.
func ParseOverrunPolicy(s string) (OverrunPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "discard", "skip":
		return OverrunDiscard, nil
	case "carry", "cap":
		return OverrunCarry, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}
