// Package auth implements the allow-list authentication gate. There are no
// passwords or tokens: a user id either is or is not on the study roster.
// This is intentionally not a security boundary.
package auth

import "strings"

// Gate validates user ids against a fixed allow-list.
type Gate struct {
	allowed map[string]struct{}
}

// NewGate builds a gate from the given roster. Ids are trimmed; empty entries
// are dropped.
func NewGate(userIDs []string) *Gate {
	g := &Gate{allowed: make(map[string]struct{}, len(userIDs))}
	for _, id := range userIDs {
		id = strings.TrimSpace(id)
		if id != "" {
			g.allowed[id] = struct{}{}
		}
	}
	return g
}

// Validate reports whether the user id is on the roster. Surrounding
// whitespace is ignored.
func (g *Gate) Validate(userID string) bool {
	_, ok := g.allowed[strings.TrimSpace(userID)]
	return ok
}

// UserIDs returns the roster.
func (g *Gate) UserIDs() []string {
	out := make([]string, 0, len(g.allowed))
	for id := range g.allowed {
		out = append(out, id)
	}
	return out
}
