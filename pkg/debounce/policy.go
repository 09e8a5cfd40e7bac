package debounce

import (
	"fmt"
	"strings"
)

// kindSet is a bit set of transition kinds.
type kindSet uint8

func kinds(ks ...Kind) kindSet {
	var s kindSet
	for _, k := range ks {
		s |= 1 << k
	}
	return s
}

func (s kindSet) has(k Kind) bool {
	return s&(1<<k) != 0
}

// Policy is the rule table deciding what "too soon" means. For each incoming
// transition kind it lists the last accepted kinds on the same channel that
// the transition is measured against; any one of them closer than the
// threshold suppresses the transition.
type Policy struct {
	name  string
	rules [numKinds]kindSet
}

var (
	// PolicyCrossCheck measures a press against the previous accepted press,
	// and a release against both the previous accepted release and press.
	PolicyCrossCheck = Policy{
		name: "cross-check",
		rules: [numKinds]kindSet{
			Down: kinds(Down),
			Up:   kinds(Up, Down),
		},
	}

	// PolicyIndependent measures each kind only against its own kind.
	PolicyIndependent = Policy{
		name: "independent",
		rules: [numKinds]kindSet{
			Down: kinds(Down),
			Up:   kinds(Up),
		},
	}

	// PolicyReleaseGuard measures a press against the previous accepted
	// release and never suppresses releases.
	PolicyReleaseGuard = Policy{
		name: "release-guard",
		rules: [numKinds]kindSet{
			Down: kinds(Up),
		},
	}

	// DefaultPolicy is used when Options.Policy is the zero value.
	DefaultPolicy = PolicyCrossCheck
)

var policies = []Policy{PolicyCrossCheck, PolicyIndependent, PolicyReleaseGuard}

// Policies lists the built-in policies.
func Policies() []Policy {
	return append([]Policy(nil), policies...)
}

// ParsePolicy resolves a policy by name. The empty string selects DefaultPolicy.
func ParsePolicy(name string) (Policy, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return DefaultPolicy, nil
	}
	for _, p := range policies {
		if p.name == normalized {
			return p, nil
		}
	}
	return Policy{}, fmt.Errorf("unknown debounce policy %q", name)
}

// Name returns the policy identifier used in configuration.
func (p Policy) Name() string {
	return p.name
}

// Checks reports whether an incoming transition of kind k is measured against
// the last accepted transition of kind against.
func (p Policy) Checks(k, against Kind) bool {
	if k >= numKinds || against >= numKinds {
		return false
	}
	return p.rules[k].has(against)
}

// Against lists the kinds an incoming transition of kind k is measured against.
func (p Policy) Against(k Kind) []Kind {
	var out []Kind
	for against := Kind(0); against < numKinds; against++ {
		if p.Checks(k, against) {
			out = append(out, against)
		}
	}
	return out
}

func (p Policy) isZero() bool {
	return p.name == "" && p.rules == [numKinds]kindSet{}
}
