package ldaphelpers_test

import (
	"testing"

	"f0oster/pneaudit/activedirectory/ldaphelpers"

	"github.com/stretchr/testify/assert"
)

func TestFilterComposition(t *testing.T) {
	f := ldaphelpers.And(
		ldaphelpers.Eq("cn", "a"),
		ldaphelpers.Not(ldaphelpers.And(ldaphelpers.Eq("sn", "b"), ldaphelpers.BitAnd("userAccountControl", 2))),
	)
	assert.Equal(t, "(&(cn=a)(!(&(sn=b)(userAccountControl:1.2.840.113556.1.4.803:=2))))", f.String())
}

func TestEqEscapesValue(t *testing.T) {
	assert.Equal(t, `(cn=a\2ab)`, ldaphelpers.Eq("cn", "a*b").String())
}

func TestPasswordNeverExpiresFilter(t *testing.T) {
	tests := []struct {
		name        string
		enabledOnly bool
		want        string
	}{
		{
			name: "all accounts",
			want: "(&(objectCategory=person)(objectClass=user)(userAccountControl:1.2.840.113556.1.4.803:=65536))",
		},
		{
			name:        "enabled only",
			enabledOnly: true,
			want:        "(&(objectCategory=person)(objectClass=user)(userAccountControl:1.2.840.113556.1.4.803:=65536)(!(userAccountControl:1.2.840.113556.1.4.803:=2)))",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ldaphelpers.PasswordNeverExpiresFilter(tt.enabledOnly).String())
		})
	}
}
