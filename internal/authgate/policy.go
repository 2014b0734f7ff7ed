package authgate

import "strings"

// Policy is the admin allow-list. Emails are compared case-sensitively.
type Policy struct {
	admins map[string]struct{}
}

// NewPolicy builds a policy from a list of admin emails. Blank entries are ignored.
func NewPolicy(emails []string) *Policy {
	p := &Policy{admins: make(map[string]struct{}, len(emails))}
	for _, e := range emails {
		e = strings.TrimSpace(e)
		if e != "" {
			p.admins[e] = struct{}{}
		}
	}
	return p
}

// IsAdmin reports whether email is on the allow-list.
func (p *Policy) IsAdmin(email string) bool {
	if p == nil {
		return false
	}
	_, ok := p.admins[email]
	return ok
}

// Len returns the number of admins.
func (p *Policy) Len() int {
	if p == nil {
		return 0
	}
	return len(p.admins)
}
