package diff_test

import (
	"testing"

	"f0oster/pneaudit/activedirectory"
	"f0oster/pneaudit/baseline"
	"f0oster/pneaudit/diff"

	"github.com/stretchr/testify/assert"
)

func accounts(ids ...string) []activedirectory.Account {
	out := make([]activedirectory.Account, len(ids))
	for i, id := range ids {
		out[i] = activedirectory.Account{UserPrincipalName: id, SAMAccountName: id}
	}
	return out
}

func upns(accts []activedirectory.Account) []string {
	var out []string
	for _, a := range accts {
		out = append(out, a.UserPrincipalName)
	}
	return out
}

func TestFindNew(t *testing.T) {
	tests := []struct {
		name     string
		previous []string
		current  []string
		want     []string
	}{
		{
			name:     "one new account",
			previous: []string{"alice@x.com"},
			current:  []string{"alice@x.com", "bob@x.com"},
			want:     []string{"bob@x.com"},
		},
		{
			name:    "empty baseline reports everything",
			current: []string{"carol@x.com"},
			want:    []string{"carol@x.com"},
		},
		{
			name:     "nothing new",
			previous: []string{"alice@x.com", "bob@x.com"},
			current:  []string{"bob@x.com"},
		},
		{
			name:     "order of current preserved",
			previous: []string{"b@x.com"},
			current:  []string{"d@x.com", "a@x.com", "b@x.com", "c@x.com"},
			want:     []string{"d@x.com", "a@x.com", "c@x.com"},
		},
		{
			name:    "duplicates in current reported once",
			current: []string{"dave@x.com", "DAVE@x.com", "erin@x.com", "dave@x.com"},
			want:    []string{"dave@x.com", "erin@x.com"},
		},
		{
			name:     "case-insensitive match against baseline",
			previous: []string{"Alice@X.com"},
			current:  []string{"alice@x.com"},
		},
		{
			name:     "empty current",
			previous: []string{"alice@x.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := diff.FindNew(baseline.NewSet(tt.previous...), accounts(tt.current...))
			assert.Equal(t, tt.want, upns(got))
		})
	}
}

func TestFindNew_Properties(t *testing.T) {
	previous := baseline.NewSet("a@x.com", "c@x.com", "e@x.com")
	current := accounts("a@x.com", "b@x.com", "c@x.com", "d@x.com", "b@x.com")

	got := diff.FindNew(previous, current)

	for _, account := range got {
		assert.False(t, previous.Contains(account.UserPrincipalName), "%s was in the baseline", account.UserPrincipalName)
	}
	for _, account := range current {
		if previous.Contains(account.UserPrincipalName) {
			assert.NotContains(t, upns(got), account.UserPrincipalName)
		}
	}

	// no side effects: same inputs give the same answer
	assert.Equal(t, got, diff.FindNew(previous, current))
	assert.Equal(t, 3, previous.Len())
	assert.Len(t, current, 5)
}

func TestFindNew_KeepsRecordFields(t *testing.T) {
	current := []activedirectory.Account{{
		UserPrincipalName: "bob@x.com",
		DisplayName:       "Bob",
		SAMAccountName:    "bob",
		Enabled:           true,
	}}

	got := diff.FindNew(baseline.NewSet(), current)
	assert.Equal(t, current, got)
}

func TestFindRemoved(t *testing.T) {
	previous := baseline.NewSet("alice@x.com", "Zed@x.com", "bob@x.com")
	got := diff.FindRemoved(previous, accounts("BOB@x.com", "carol@x.com"))
	assert.Equal(t, []string{"alice@x.com", "Zed@x.com"}, got)
}

func TestCompare(t *testing.T) {
	c := diff.Compare(baseline.NewSet("alice@x.com"), accounts("bob@x.com"))
	assert.Equal(t, []string{"bob@x.com"}, upns(c.New))
	assert.Equal(t, []string{"alice@x.com"}, c.Removed)
}
