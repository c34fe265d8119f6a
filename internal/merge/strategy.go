package merge

import "fmt"

// Strategy selects how scalar conflicts are resolved.
type Strategy string

const (
	// StrategyOurs resolves every conflict in favor of ours.
	StrategyOurs Strategy = "ours"

	// StrategyTheirs resolves every conflict in favor of theirs.
	StrategyTheirs Strategy = "theirs"

	// StrategyBase resolves every conflict by keeping the base value.
	StrategyBase Strategy = "base"

	// StrategyManual keeps the base value and marks the conflict for
	// out-of-band resolution. This is the conservative default.
	StrategyManual Strategy = "manual"

	// StrategyAuto resolves conflicts deterministically (prefer theirs)
	// and synthesizes merge provenance when both sides carry it.
	StrategyAuto Strategy = "auto"
)

var validStrategies = map[Strategy]bool{
	StrategyOurs:   true,
	StrategyTheirs: true,
	StrategyBase:   true,
	StrategyManual: true,
	StrategyAuto:   true,
}

// Valid reports whether s is a recognized strategy tag.
func (s Strategy) Valid() bool {
	return validStrategies[s]
}

// ParseStrategy converts a string tag to a Strategy, rejecting
// unrecognized tags.
func ParseStrategy(tag string) (Strategy, error) {
	s := Strategy(tag)
	if !s.Valid() {
		return "", fmt.Errorf("unknown merge strategy %q", tag)
	}
	return s, nil
}

// Resolution records how one conflict was settled.
type Resolution string

const (
	ResolutionTookOurs       Resolution = "took_ours"
	ResolutionTookTheirs     Resolution = "took_theirs"
	ResolutionKeptBase       Resolution = "kept_base"
	ResolutionManualRequired Resolution = "manual_required"
	ResolutionMerged         Resolution = "merged"
)

var validResolutions = map[Resolution]bool{
	ResolutionTookOurs:       true,
	ResolutionTookTheirs:     true,
	ResolutionKeptBase:       true,
	ResolutionManualRequired: true,
	ResolutionMerged:         true,
}

// Valid reports whether r is a recognized resolution tag.
func (r Resolution) Valid() bool {
	return validResolutions[r]
}

// ParseResolution converts a string tag to a Resolution, rejecting
// unrecognized tags.
func ParseResolution(tag string) (Resolution, error) {
	r := Resolution(tag)
	if !r.Valid() {
		return "", fmt.Errorf("unknown conflict resolution %q", tag)
	}
	return r, nil
}

// autoResolved reports whether r is one of the three side-picking
// resolutions. Conflicts settled any other way still demand attention.
func (r Resolution) autoResolved() bool {
	switch r {
	case ResolutionTookOurs, ResolutionTookTheirs, ResolutionKeptBase:
		return true
	default:
		return false
	}
}
