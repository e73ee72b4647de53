package baseline

import (
	"sort"
	"strings"
)

// Set holds principal names keyed case-insensitively, since AD treats UPNs that way.
// Values keep the first spelling added.
type Set map[string]string

func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func key(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// Add ignores blank identifiers.
func (s Set) Add(id string) {
	k := key(id)
	if k == "" {
		return
	}
	if _, ok := s[k]; !ok {
		s[k] = strings.TrimSpace(id)
	}
}

func (s Set) Contains(id string) bool {
	_, ok := s[key(id)]
	return ok
}

func (s Set) Len() int {
	return len(s)
}

// Identifiers returns the stored spellings sorted case-insensitively.
func (s Set) Identifiers() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ids := make([]string, len(keys))
	for i, k := range keys {
		ids[i] = s[k]
	}
	return ids
}

// Dedupe keeps the first spelling of each identifier in input order and drops blanks.
func Dedupe(ids []string) []string {
	seen := make(Set, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen.Contains(id) {
			continue
		}
		seen.Add(id)
		out = append(out, id)
	}
	return out
}
