package snapshot

import (
	"time"

	"f0oster/pneaudit/activedirectory"

	"github.com/google/uuid"
)

// Snapshot is the set of flagged accounts observed by one run.
type Snapshot struct {
	// RunID identifies the run that took the snapshot
	RunID uuid.UUID

	// Accounts is deduplicated by principal name, first occurrence wins
	Accounts []activedirectory.Account

	// Duplicates counts records dropped during deduplication
	Duplicates int

	// Timestamp records when this snapshot was created
	Timestamp time.Time
}

// Identifiers returns the principal names in snapshot order, ready to persist as the baseline.
func (s *Snapshot) Identifiers() []string {
	ids := make([]string, len(s.Accounts))
	for i, account := range s.Accounts {
		ids[i] = account.UserPrincipalName
	}
	return ids
}
