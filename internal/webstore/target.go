package webstore

import "fmt"

// Target selects the audience of a publish call.
type Target int

const (
	// TargetDefault publishes to everyone.
	TargetDefault Target = iota
	// TargetTrustedTesters publishes to the item's trusted testers only.
	// The store rejects this once the item is public.
	TargetTrustedTesters
)

// String returns the wire value of the publishTarget query parameter.
func (t Target) String() string {
	switch t {
	case TargetTrustedTesters:
		return "trustedTesters"
	default:
		return "default"
	}
}

// ParseTarget accepts the wire names. An empty string means TargetDefault.
func ParseTarget(s string) (Target, error) {
	switch s {
	case "", "default":
		return TargetDefault, nil
	case "trustedTesters":
		return TargetTrustedTesters, nil
	}
	return TargetDefault, fmt.Errorf("unknown publish target %q: must be 'default' or 'trustedTesters'", s)
}

// TargetFor maps the legacy "publish to testers" boolean.
func TargetFor(testers bool) Target {
	if testers {
		return TargetTrustedTesters
	}
	return TargetDefault
}
