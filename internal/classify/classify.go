// Package classify maps runner output lines to diagnostic hints.
// The classifier holds an ordered rule list; the first rule whose matcher
// accepts the line wins. Classification is pure: no state is carried
// between calls, so the same line always yields the same hint.
package classify

import (
	"strings"
)

// Category identifies a class of runner failure.
type Category string

const (
	CategoryRunnerInstall   Category = "runner-install"
	CategoryElementNotFound Category = "element-not-found"
	CategoryTimeout         Category = "timeout"
	CategoryNotVisible      Category = "not-visible"
	CategoryAssertion       Category = "assertion"
	CategoryNetwork         Category = "network"
	CategoryRunnerConfig    Category = "runner-config"
	CategoryEncoding        Category = "encoding"
)

// Hint is a short diagnostic attached to a matched output line.
type Hint struct {
	Category Category `json:"category"`
	Advice   string   `json:"advice"`
}

// Rule pairs a matcher with the hint it produces.
type Rule struct {
	Name    string
	Matches func(line string) bool
	Hint    Hint
}

// Classifier evaluates rules in declaration order. It is immutable after
// construction and safe for concurrent use.
type Classifier struct {
	rules []Rule
}

// New creates a classifier with the given rules. Rule order is preserved;
// ties between overlapping matchers resolve to the earlier rule.
func New(rules []Rule) *Classifier {
	c := &Classifier{rules: make([]Rule, len(rules))}
	copy(c.rules, rules)
	return c
}

// Default returns a classifier loaded with the standard rule set.
func Default() *Classifier {
	return New(DefaultRules())
}

// Classify returns the hint for the first matching rule, or ok=false when
// no rule matches. A non-matching line is not an error.
func (c *Classifier) Classify(line string) (Hint, bool) {
	for _, r := range c.rules {
		if r.Matches(line) {
			return r.Hint, true
		}
	}
	return Hint{}, false
}

// Rules returns a copy of the rule list.
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// containsAny reports whether the lowercased line contains any needle.
func containsAny(line string, needles ...string) bool {
	l := strings.ToLower(line)
	for _, n := range needles {
		if strings.Contains(l, n) {
			return true
		}
	}
	return false
}

// containsAll reports whether the lowercased line contains every needle.
func containsAll(line string, needles ...string) bool {
	l := strings.ToLower(line)
	for _, n := range needles {
		if !strings.Contains(l, n) {
			return false
		}
	}
	return true
}

// DefaultRules returns the standard ordered rule set. Installation problems
// are checked first: a missing runner binary also produces "not found" text
// that would otherwise be mistaken for a selector failure.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name: "runner-install",
			Matches: func(line string) bool {
				return containsAny(line,
					"cypress could not verify", "cypress verification",
					"command not found", "is not recognized",
					"executable doesn't exist", "browsers are not installed",
					"no such file or directory",
				)
			},
			Hint: Hint{
				Category: CategoryRunnerInstall,
				Advice:   "runner binary missing or broken; install the framework (npx cypress install / npx playwright install / npm install)",
			},
		},
		{
			Name: "element-not-found",
			Matches: func(line string) bool {
				if containsAll(line, "not found", "element") || containsAll(line, "not found", "selector") {
					return true
				}
				return containsAny(line, "never found it", "waiting for locator", "expected to find element")
			},
			Hint: Hint{
				Category: CategoryElementNotFound,
				Advice:   "element not found; check CSS selectors or add an explicit wait for dynamic content",
			},
		},
		{
			Name: "timeout",
			Matches: func(line string) bool {
				return containsAny(line, "timed out", "timeout", "timeouterror")
			},
			Hint: Hint{
				Category: CategoryTimeout,
				Advice:   "operation timed out; raise the step timeout or wait for the page to settle before asserting",
			},
		},
		{
			Name: "not-visible",
			Matches: func(line string) bool {
				return containsAny(line, "not visible", "not actionable", "element is hidden", "intercepts pointer events")
			},
			Hint: Hint{
				Category: CategoryNotVisible,
				Advice:   "element not visible or not actionable; scroll it into view or check whether it is hidden/covered",
			},
		},
		{
			Name: "assertion",
			Matches: func(line string) bool {
				return containsAny(line, "assertionerror", "assertion failed", "expected", "tohave", "tobe", "toequal")
			},
			Hint: Hint{
				Category: CategoryAssertion,
				Advice:   "assertion mismatch; compare the expected value against the actual text or element state",
			},
		},
		{
			Name: "network",
			Matches: func(line string) bool {
				return containsAny(line, "econnrefused", "enotfound", "net::err", "network error", "fetch failed", "getaddrinfo")
			},
			Hint: Hint{
				Category: CategoryNetwork,
				Advice:   "network failure; check connectivity, the base URL, or stub the request",
			},
		},
		{
			Name: "runner-config",
			Matches: func(line string) bool {
				return containsAny(line, "cypress.config", "playwright.config", "jest.config", "no tests found", "configuration error")
			},
			Hint: Hint{
				Category: CategoryRunnerConfig,
				Advice:   "runner configuration problem; check the config file and baseUrl settings",
			},
		},
		{
			Name: "encoding",
			Matches: func(line string) bool {
				return containsAny(line, "unicodedecodeerror", "invalid utf-8", "encoding error")
			},
			Hint: Hint{
				Category: CategoryEncoding,
				Advice:   "output encoding problem; force UTF-8 in the runner environment",
			},
		},
	}
}
