package feed

import (
	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer strips unsafe markup from item HTML before it is stored.
type Sanitizer struct {
	policy *bluemonday.Policy
}

func NewSanitizer() *Sanitizer {
	return &Sanitizer{
		policy: bluemonday.UGCPolicy(),
	}
}

func (s *Sanitizer) Run(html string) string {
	if html == "" {
		return ""
	}
	return s.policy.Sanitize(html)
}
