package diff

import (
	"f0oster/pneaudit/activedirectory"
	"f0oster/pneaudit/baseline"
)

// FindNew returns the accounts in current whose principal name is absent from previous,
// in the order they appear in current. An identifier repeated in current is reported once.
func FindNew(previous baseline.Set, current []activedirectory.Account) []activedirectory.Account {
	var added []activedirectory.Account
	reported := baseline.NewSet()

	for _, account := range current {
		id := account.UserPrincipalName
		if previous.Contains(id) || reported.Contains(id) {
			continue
		}
		reported.Add(id)
		added = append(added, account)
	}

	return added
}

// FindRemoved returns the baseline identifiers that are no longer flagged, sorted.
func FindRemoved(previous baseline.Set, current []activedirectory.Account) []string {
	present := baseline.NewSet()
	for _, account := range current {
		present.Add(account.UserPrincipalName)
	}

	var removed []string
	for _, id := range previous.Identifiers() {
		if !present.Contains(id) {
			removed = append(removed, id)
		}
	}
	return removed
}

// Compare runs FindNew and FindRemoved together.
func Compare(previous baseline.Set, current []activedirectory.Account) Comparison {
	return Comparison{
		New:     FindNew(previous, current),
		Removed: FindRemoved(previous, current),
	}
}
