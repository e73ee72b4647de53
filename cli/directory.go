package cli

import (
	"context"

	"f0oster/pneaudit/activedirectory"
	"f0oster/pneaudit/config"

	"go.uber.org/zap"
)

// ldapDirectory connects to the domain controller on first use, so a check that fails
// its baseline precondition never touches the directory.
type ldapDirectory struct {
	cfg     config.PNEAuditConfiguration
	console *zap.Logger
	ad      *activedirectory.ActiveDirectoryInstance
}

func newLDAPDirectory(cfg config.PNEAuditConfiguration, console *zap.Logger) directory {
	return &ldapDirectory{cfg: cfg, console: console}
}

func (d *ldapDirectory) FetchFlaggedAccounts(ctx context.Context, enabledOnly bool) ([]activedirectory.Account, error) {
	if d.ad == nil {
		ad := activedirectory.NewActiveDirectoryInstance(d.cfg.BaseDN, d.cfg.DcFQDN, d.cfg.PageSize)
		ad.UseTLS = d.cfg.UseTLS
		ad.InsecureSkipVerify = d.cfg.InsecureSkipVerify
		if err := ad.Connect(d.cfg.Username, d.cfg.Password); err != nil {
			return nil, err
		}
		d.console.Info("connected to domain controller",
			zap.String("dc", d.cfg.DcFQDN), zap.String("bound_as", ad.BoundAs))
		d.ad = ad
	}
	return d.ad.FetchFlaggedAccounts(ctx, enabledOnly)
}

func (d *ldapDirectory) Close() {
	if d.ad != nil {
		d.ad.Close()
	}
}
