package ats

import "fmt"

// TransitionPolicy restricts which statuses a candidate may move to. A source
// status missing from the table may move anywhere, so the zero value allows
// every transition.
type TransitionPolicy map[Status][]Status

// AnyToAny is the default policy.
var AnyToAny = TransitionPolicy(nil)

// NewTransitionPolicy builds a policy from status names, as read from
// configuration.
func NewTransitionPolicy(table map[string][]string) (TransitionPolicy, error) {
	if len(table) == 0 {
		return AnyToAny, nil
	}
	policy := make(TransitionPolicy, len(table))
	for from, targets := range table {
		src, err := ParseStatus(from)
		if err != nil {
			return nil, fmt.Errorf("transition source: %w", err)
		}
		allowed := make([]Status, 0, len(targets))
		for _, to := range targets {
			dst, err := ParseStatus(to)
			if err != nil {
				return nil, fmt.Errorf("transition target from %s: %w", src, err)
			}
			allowed = append(allowed, dst)
		}
		policy[src] = allowed
	}
	return policy, nil
}

// Allows reports whether moving from one status to another is permitted.
func (p TransitionPolicy) Allows(from, to Status) bool {
	allowed, restricted := p[from]
	if !restricted {
		return true
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Check returns a validation error when the transition is not allowed.
func (p TransitionPolicy) Check(from, to Status) error {
	if !p.Allows(from, to) {
		return fmt.Errorf("%w: transition %s -> %s is not allowed", ErrValidation, from, to)
	}
	return nil
}
