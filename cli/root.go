package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"f0oster/pneaudit/auditlog"
	"f0oster/pneaudit/baseline"
	"f0oster/pneaudit/config"
	"f0oster/pneaudit/database"
	"f0oster/pneaudit/monitor"
	"f0oster/pneaudit/notify"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// directory is a monitor.Directory holding a connection that must be released.
type directory interface {
	monitor.Directory
	Close()
}

type dependencies struct {
	newDirectory func(cfg config.PNEAuditConfiguration, console *zap.Logger) directory
	newConsole   func(level string) *zap.Logger
}

func defaultDependencies() dependencies {
	return dependencies{
		newDirectory: newLDAPDirectory,
		newConsole:   newConsoleLogger,
	}
}

type options struct {
	initialize  bool
	check       bool
	enabledOnly bool
	envFile     string
	baseline    string
	logFile     string
	logLevel    string
}

func newRootCmd(deps dependencies) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "pneaudit (--init | --check) [--enabled-only]",
		Short: "Audit Active Directory for accounts whose password never expires",
		Long: `pneaudit finds user accounts with "password never expires" set and
reports accounts that gained the flag since the previous run.

Run once with --init to record the baseline, then schedule --check runs.
Each check logs newly flagged accounts at CRITICAL and replaces the baseline.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd, deps, opts)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&opts.initialize, "init", false, "create or replace the baseline from the current directory state")
	flags.BoolVar(&opts.check, "check", false, "report accounts flagged since the baseline and update it")
	flags.BoolVar(&opts.enabledOnly, "enabled-only", false, "only consider enabled accounts")
	flags.StringVar(&opts.envFile, "env-file", "settings.env", "env file with LDAP and output settings")
	flags.StringVar(&opts.baseline, "baseline", "", "baseline file path (overrides PNE_BASELINE_PATH)")
	flags.StringVar(&opts.logFile, "log-file", "", "audit log file path (overrides PNE_LOG_PATH)")
	flags.StringVar(&opts.logLevel, "log-level", "", "minimum severity: debug, info, warning, critical (overrides PNE_LOG_LEVEL)")
	cmd.MarkFlagsMutuallyExclusive("init", "check")
	cmd.MarkFlagsOneRequired("init", "check")

	return cmd
}

func run(ctx context.Context, cmd *cobra.Command, deps dependencies, opts *options) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.LoadEnvConfig(opts.envFile)
	if err != nil {
		return err
	}
	if opts.baseline != "" {
		cfg.BaselinePath = opts.baseline
	}
	if opts.logFile != "" {
		cfg.LogPath = opts.logFile
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	minSeverity, err := auditlog.ParseSeverity(cfg.LogLevel)
	if err != nil {
		return err
	}

	console := deps.newConsole(cfg.LogLevel)
	defer console.Sync()

	audit, err := auditlog.New(auditlog.Config{Path: cfg.LogPath, MinSeverity: minSeverity})
	if err != nil {
		return err
	}

	host, _ := os.Hostname()
	dir := deps.newDirectory(cfg, console)
	defer dir.Close()

	svcOpts := []monitor.Option{monitor.WithConsole(console), monitor.WithHost(host)}
	if cfg.SlackEnabled() {
		svcOpts = append(svcOpts, monitor.WithNotifier(notify.NewSlackNotifierFromToken(cfg.SlackBotToken, cfg.SlackChannelID, host)))
	}
	if cfg.AdSpyDsn != "" {
		if db := openRunHistory(ctx, cfg.AdSpyDsn, console); db != nil {
			defer db.Close()
			svcOpts = append(svcOpts, monitor.WithRecorder(db))
		}
	}

	svc := monitor.NewService(dir, baseline.NewFileStore(cfg.BaselinePath), audit, svcOpts...)

	mode := monitor.ModeCheck
	if opts.initialize {
		mode = monitor.ModeInitialize
	}

	result, err := svc.Run(ctx, mode, opts.enabledOnly)
	if err != nil {
		console.Error("run failed", zap.String("mode", string(mode)), zap.Error(err))
		if errors.Is(err, monitor.ErrPreconditionFailed) {
			return fmt.Errorf("%w (run with --init first)", err)
		}
		return err
	}

	printResult(cmd.OutOrStdout(), result, cfg.BaselinePath)
	return nil
}

// openRunHistory returns nil when the history database is unavailable; the audit
// itself does not depend on it.
func openRunHistory(ctx context.Context, dsn string, console *zap.Logger) *database.Database {
	db := database.NewDatabase(dsn)
	if err := db.Connect(ctx); err != nil {
		console.Warn("run history disabled", zap.Error(err))
		return nil
	}
	if err := db.EnsureSchema(ctx); err != nil {
		console.Warn("run history disabled", zap.Error(err))
		db.Close()
		return nil
	}
	return db
}

func printResult(w io.Writer, result *monitor.Result, baselinePath string) {
	switch result.Mode {
	case monitor.ModeInitialize:
		fmt.Fprintf(w, "Baseline initialized with %d accounts in %s\n", len(result.Current), baselinePath)
	case monitor.ModeCheck:
		if len(result.New) == 0 {
			fmt.Fprintf(w, "No new accounts with password never expires (%d flagged)\n", len(result.Current))
			return
		}
		fmt.Fprintf(w, "%d new account(s) with password never expires:\n", len(result.New))
		for _, a := range result.New {
			fmt.Fprintf(w, "  %s\t%s\t%s\n", a.UserPrincipalName, a.DisplayName, a.SAMAccountName)
		}
	}
}

// Execute runs the root command.
func Execute() {
	if err := newRootCmd(defaultDependencies()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
