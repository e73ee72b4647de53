package ldaphelpers

import (
	"fmt"
	"strings"

	"github.com/go-ldap/ldap/v3"
)

type Filter interface {
	String() string
}

type rawFilter string

func (f rawFilter) String() string {
	return string(f)
}

// Logical operators
type andFilter struct {
	parts []Filter
}

func And(filters ...Filter) Filter {
	return andFilter{parts: filters}
}
func (f andFilter) String() string {
	var parts []string
	for _, p := range f.parts {
		parts = append(parts, p.String())
	}
	return "(&" + strings.Join(parts, "") + ")"
}

type notFilter struct {
	part Filter
}

func Not(f Filter) Filter {
	return notFilter{part: f}
}
func (f notFilter) String() string {
	return "(!" + f.part.String() + ")"
}

// bitAndFilter matches when every bit of mask is set on the attribute (LDAP_MATCHING_RULE_BIT_AND)
type bitAndFilter struct {
	attr string
	mask int64
}

func BitAnd(attr string, mask int64) Filter {
	return bitAndFilter{attr: attr, mask: mask}
}
func (f bitAndFilter) String() string {
	return fmt.Sprintf("(%s:%s:=%d)", f.attr, MatchingRuleBitAnd, f.mask)
}

// Eq escapes value, so it cannot express wildcard matches.
func Eq(attr, value string) Filter {
	return rawFilter("(" + attr + "=" + ldap.EscapeFilter(value) + ")")
}

// PasswordNeverExpiresFilter selects user objects with DONT_EXPIRE_PASSWORD set.
// enabledOnly additionally excludes accounts with ACCOUNTDISABLE set.
func PasswordNeverExpiresFilter(enabledOnly bool) Filter {
	parts := []Filter{
		Eq("objectCategory", "person"),
		Eq("objectClass", "user"),
		BitAnd("userAccountControl", UACDontExpirePassword),
	}
	if enabledOnly {
		parts = append(parts, Not(BitAnd("userAccountControl", UACAccountDisable)))
	}
	return And(parts...)
}
