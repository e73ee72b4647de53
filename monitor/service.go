package monitor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"f0oster/pneaudit/activedirectory"
	"f0oster/pneaudit/activedirectory/transformers"
	"f0oster/pneaudit/auditlog"
	"f0oster/pneaudit/baseline"
	"f0oster/pneaudit/database"
	"f0oster/pneaudit/snapshot"

	"go.uber.org/zap"
)

// Service runs one initialize or check pass: query the directory, reconcile against
// the baseline, log findings and replace the baseline.
type Service struct {
	directory Directory
	store     Store
	audit     AuditLog
	snapshots *snapshot.Service
	console   *zap.Logger
	notifier  Notifier
	recorder  RunRecorder
	now       func() time.Time
	host      string
}

type Option func(*Service)

// WithConsole sets the operator-facing logger that reports secondary failures.
func WithConsole(logger *zap.Logger) Option {
	return func(s *Service) { s.console = logger }
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithRecorder(r RunRecorder) Option {
	return func(s *Service) { s.recorder = r }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithHost(host string) Option {
	return func(s *Service) { s.host = host }
}

func NewService(directory Directory, store Store, audit AuditLog, opts ...Option) *Service {
	s := &Service{
		directory: directory,
		store:     store,
		audit:     audit,
		console:   zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.host == "" {
		s.host, _ = os.Hostname()
	}
	s.snapshots = snapshot.NewServiceWithClock(s.now)
	return s
}

// Run dispatches to Initialize or Check.
func (s *Service) Run(ctx context.Context, mode Mode, enabledOnly bool) (*Result, error) {
	switch mode {
	case ModeInitialize:
		return s.Initialize(ctx, enabledOnly)
	case ModeCheck:
		return s.Check(ctx, enabledOnly)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

// Initialize replaces the baseline with the current flagged accounts without comparing.
func (s *Service) Initialize(ctx context.Context, enabledOnly bool) (*Result, error) {
	started := s.now()
	s.record(auditlog.Info, "Initializing baseline")

	snap, err := s.query(ctx, enabledOnly)
	if err != nil {
		return nil, err
	}

	if err := s.persist(snap); err != nil {
		return nil, err
	}
	s.record(auditlog.Info, fmt.Sprintf("Baseline initialized with %d accounts", len(snap.Accounts)))

	result := &Result{
		RunID:       snap.RunID,
		Mode:        ModeInitialize,
		EnabledOnly: enabledOnly,
		Current:     snap.Accounts,
		StartedAt:   started,
		FinishedAt:  s.now(),
	}
	s.recordRun(ctx, result)
	return result, nil
}

// Check requires an existing baseline, reports accounts flagged since it was written
// and then replaces it with the current snapshot.
func (s *Service) Check(ctx context.Context, enabledOnly bool) (*Result, error) {
	started := s.now()

	previous, err := s.store.Load()
	if err != nil {
		if errors.Is(err, baseline.ErrNotInitialized) {
			s.record(auditlog.Critical, "Baseline file not found. Run with --init first to create the baseline")
			return nil, fmt.Errorf("%w: %w", ErrPreconditionFailed, err)
		}
		s.record(auditlog.Critical, fmt.Sprintf("Failed to load baseline: %v", err))
		return nil, fmt.Errorf("%w: %w", ErrBaselineUnreadable, err)
	}
	s.record(auditlog.Debug, fmt.Sprintf("Loaded baseline with %d accounts", previous.Len()))

	snap, err := s.query(ctx, enabledOnly)
	if err != nil {
		return nil, err
	}

	comparison := s.snapshots.CompareSnapshots(previous, snap)
	for _, account := range comparison.New {
		s.record(auditlog.Critical, describeNewAccount(account))
	}
	for _, id := range comparison.Removed {
		s.record(auditlog.Info, fmt.Sprintf("Account no longer has password never expires set: %s", id))
	}

	if s.notifier != nil && len(comparison.New) > 0 {
		if err := s.notifier.NotifyNewAccounts(ctx, snap.RunID, comparison.New); err != nil {
			s.console.Warn("new account notification failed", zap.Error(err), zap.Stringer("run_id", snap.RunID))
			s.record(auditlog.Warning, fmt.Sprintf("Notification failed: %v", err))
		}
	}

	if err := s.persist(snap); err != nil {
		return nil, err
	}

	if len(comparison.New) == 0 {
		s.record(auditlog.Info, "No new accounts with password never expires found")
	}
	s.record(auditlog.Info, fmt.Sprintf("Check complete: %d flagged, %d new, %d no longer flagged",
		len(snap.Accounts), len(comparison.New), len(comparison.Removed)))

	result := &Result{
		RunID:       snap.RunID,
		Mode:        ModeCheck,
		EnabledOnly: enabledOnly,
		Current:     snap.Accounts,
		New:         comparison.New,
		Removed:     comparison.Removed,
		StartedAt:   started,
		FinishedAt:  s.now(),
	}
	s.recordRun(ctx, result)
	return result, nil
}

func (s *Service) query(ctx context.Context, enabledOnly bool) (*snapshot.Snapshot, error) {
	accounts, err := s.directory.FetchFlaggedAccounts(ctx, enabledOnly)
	if err != nil {
		s.record(auditlog.Critical, fmt.Sprintf("Directory query failed: %v", err))
		return nil, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}

	snap := s.snapshots.CreateSnapshot(accounts)
	if snap.Duplicates > 0 {
		s.record(auditlog.Warning, fmt.Sprintf("Directory returned %d duplicate principal names, ignoring repeats", snap.Duplicates))
	}
	s.record(auditlog.Debug, fmt.Sprintf("Found %d accounts with password never expires (enabled only: %t)", len(snap.Accounts), enabledOnly))
	return snap, nil
}

func (s *Service) persist(snap *snapshot.Snapshot) error {
	if err := s.store.Save(snap.Identifiers()); err != nil {
		s.record(auditlog.Critical, fmt.Sprintf("Failed to save baseline: %v", err))
		return fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}
	return nil
}

// record writes to the audit log. A failed write goes to the console and does not
// affect the run.
func (s *Service) record(sev auditlog.Severity, message string) {
	if err := s.audit.Log(sev, message); err != nil {
		s.console.Error("audit log write failed", zap.Error(err), zap.String("entry", message))
	}
}

// recordRun stores run history when a recorder is configured. Failures are reported
// and otherwise ignored.
func (s *Service) recordRun(ctx context.Context, result *Result) {
	if s.recorder == nil {
		return
	}

	rec := &database.RunRecord{
		RunID:        result.RunID,
		Mode:         string(result.Mode),
		Host:         s.host,
		EnabledOnly:  result.EnabledOnly,
		StartedAt:    result.StartedAt,
		FinishedAt:   result.FinishedAt,
		FlaggedCount: len(result.Current),
	}
	for _, account := range result.New {
		rec.Observations = append(rec.Observations, database.Observation{
			UserPrincipalName: account.UserPrincipalName,
			DisplayName:       account.DisplayName,
			SAMAccountName:    account.SAMAccountName,
			LastLogon:         account.LastLogon,
			Change:            database.ChangeNew,
		})
	}
	for _, id := range result.Removed {
		rec.Observations = append(rec.Observations, database.Observation{
			UserPrincipalName: id,
			Change:            database.ChangeRemoved,
		})
	}

	if err := s.recorder.RecordRun(ctx, rec); err != nil {
		s.console.Warn("run history not recorded", zap.Error(err), zap.Stringer("run_id", result.RunID))
	}
}

func describeNewAccount(a activedirectory.Account) string {
	return fmt.Sprintf("New account with password never expires: UserPrincipalName=%s, DisplayName=%s, SamAccountName=%s, LastLogon=%s",
		a.UserPrincipalName, a.DisplayName, a.SAMAccountName, transformers.FormatFileTime(a.LastLogon))
}
