package monitor

import (
	"context"
	"errors"
	"time"

	"f0oster/pneaudit/activedirectory"
	"f0oster/pneaudit/auditlog"
	"f0oster/pneaudit/baseline"
	"f0oster/pneaudit/database"

	"github.com/google/uuid"
)

// Mode selects what a run does.
type Mode string

const (
	ModeInitialize Mode = "initialize"
	ModeCheck      Mode = "check"
)

// Fatal run errors. Each is wrapped with the underlying cause.
var (
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrQueryFailed        = errors.New("directory query failed")
	ErrBaselineUnreadable = errors.New("baseline unreadable")
	ErrPersistFailed      = errors.New("baseline write failed")
	ErrUnknownMode        = errors.New("unknown run mode")
)

// Directory returns the accounts currently flagged with password never expires.
type Directory interface {
	FetchFlaggedAccounts(ctx context.Context, enabledOnly bool) ([]activedirectory.Account, error)
}

// Store loads and replaces the baseline.
type Store interface {
	Load() (baseline.Set, error)
	Save(ids []string) error
}

// AuditLog receives operational events and findings.
type AuditLog interface {
	Log(sev auditlog.Severity, message string) error
}

// Notifier is told about newly flagged accounts after a check.
type Notifier interface {
	NotifyNewAccounts(ctx context.Context, runID uuid.UUID, accounts []activedirectory.Account) error
}

// RunRecorder keeps a history of completed runs.
type RunRecorder interface {
	RecordRun(ctx context.Context, rec *database.RunRecord) error
}

// Result describes a completed run.
type Result struct {
	RunID       uuid.UUID
	Mode        Mode
	EnabledOnly bool
	Current     []activedirectory.Account
	New         []activedirectory.Account
	Removed     []string
	StartedAt   time.Time
	FinishedAt  time.Time
}
