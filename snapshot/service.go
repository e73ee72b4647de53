package snapshot

import (
	"strings"
	"time"

	"f0oster/pneaudit/activedirectory"
	"f0oster/pneaudit/baseline"
	"f0oster/pneaudit/diff"

	"github.com/google/uuid"
)

// Service builds snapshots from query results and compares them against a baseline.
type Service struct {
	now func() time.Time
}

func NewService() *Service {
	return &Service{now: time.Now}
}

// NewServiceWithClock is NewService with a fixed time source.
func NewServiceWithClock(now func() time.Time) *Service {
	return &Service{now: now}
}

// CreateSnapshot deduplicates accounts by principal name and stamps the result with a new run ID.
func (s *Service) CreateSnapshot(accounts []activedirectory.Account) *Snapshot {
	seen := baseline.NewSet()
	kept := make([]activedirectory.Account, 0, len(accounts))
	duplicates := 0

	for _, account := range accounts {
		account.UserPrincipalName = strings.TrimSpace(account.UserPrincipalName)
		if seen.Contains(account.UserPrincipalName) {
			duplicates++
			continue
		}
		seen.Add(account.UserPrincipalName)
		kept = append(kept, account)
	}

	return &Snapshot{
		RunID:      uuid.New(),
		Accounts:   kept,
		Duplicates: duplicates,
		Timestamp:  s.now(),
	}
}

// CompareSnapshots reconciles a snapshot against the previous baseline.
func (s *Service) CompareSnapshots(previous baseline.Set, snap *Snapshot) diff.Comparison {
	return diff.Compare(previous, snap.Accounts)
}
