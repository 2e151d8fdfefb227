package command

import "strings"

// Classifier maps server rejection text onto a RejectedReason. The default
// pattern lists cover the phrasings CRCON is known to emit; operators can
// extend them from configuration because the server's wording is not a
// stable contract.
type Classifier struct {
	notApplicable []string
	invalidName   []string
}

var defaultNotApplicable = []string{
	"not in rotation",
	"not found in rotation",
	"already in rotation",
	"already present",
}

var defaultInvalidName = []string{
	"invalid map",
	"unknown map",
	"does not exist",
	"request was invalid",
	"invalid",
}

// NewClassifier builds a classifier from the default patterns plus any
// operator-supplied extras. Matching is case-insensitive substring search;
// not-applicable patterns win over invalid-name patterns.
func NewClassifier(extraNotApplicable, extraInvalid []string) *Classifier {
	c := &Classifier{
		notApplicable: appendPatterns(defaultNotApplicable, extraNotApplicable),
		invalidName:   appendPatterns(defaultInvalidName, extraInvalid),
	}
	return c
}

func appendPatterns(base, extra []string) []string {
	out := append([]string(nil), base...)
	for _, p := range extra {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Classify returns the reason encoded in the server's rejection text.
func (c *Classifier) Classify(body string) RejectedReason {
	if c == nil {
		return ReasonUnknown
	}
	lowered := strings.ToLower(body)
	for _, p := range c.notApplicable {
		if strings.Contains(lowered, p) {
			return ReasonNotApplicable
		}
	}
	for _, p := range c.invalidName {
		if strings.Contains(lowered, p) {
			return ReasonInvalidName
		}
	}
	return ReasonUnknown
}
