package activedirectory

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"

	"f0oster/pneaudit/activedirectory/ldaphelpers"

	"github.com/go-ldap/ldap/v3"
)

var ErrNotConnected = errors.New("not connected to a domain controller")

func NewActiveDirectoryInstance(baseDn string, domainControllerFQDN string, pageSize uint32) *ActiveDirectoryInstance {
	return &ActiveDirectoryInstance{
		BaseDn:               baseDn,
		DomainControllerFQDN: domainControllerFQDN,
		PageSize:             pageSize,
	}
}

// NewWithSearcher builds an instance on an existing search connection.
func NewWithSearcher(baseDn string, pageSize uint32, searcher Searcher) *ActiveDirectoryInstance {
	ad := NewActiveDirectoryInstance(baseDn, "", pageSize)
	ad.searcher = searcher
	return ad
}

func (ad *ActiveDirectoryInstance) url() string {
	if ad.UseTLS {
		return fmt.Sprintf("ldaps://%s:636", ad.DomainControllerFQDN)
	}
	return fmt.Sprintf("ldap://%s:389", ad.DomainControllerFQDN)
}

// Connect to the Active Directory Domain Controller
func (ad *ActiveDirectoryInstance) Connect(username, password string) error {
	bindString := ad.url()

	var opts []ldap.DialOpt
	if ad.UseTLS {
		opts = append(opts, ldap.DialWithTLSConfig(&tls.Config{
			ServerName:         ad.DomainControllerFQDN,
			InsecureSkipVerify: ad.InsecureSkipVerify,
		}))
	}

	conn, err := ldap.DialURL(bindString, opts...)
	if err != nil {
		return fmt.Errorf("failed to connect to LDAP server %s: %w", bindString, err)
	}

	// TODO: IWA/GSSAPI bind
	if err := conn.Bind(username, password); err != nil {
		conn.Close()
		return fmt.Errorf("failed to bind to LDAP server %s: %w", bindString, err)
	}

	res, err := conn.WhoAmI(nil)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to call WhoAmI(): %w", err)
	}
	ad.BoundAs = res.AuthzID

	ad.ldapConnection = conn
	ad.searcher = conn
	return nil
}

func (ad *ActiveDirectoryInstance) Close() {
	if ad.ldapConnection != nil {
		ad.ldapConnection.Close()
		ad.ldapConnection = nil
	}
	ad.searcher = nil
}

// FetchFlaggedAccounts returns every account with DONT_EXPIRE_PASSWORD set. A failed
// page or an unparseable entry fails the whole query.
func (ad *ActiveDirectoryInstance) FetchFlaggedAccounts(ctx context.Context, enabledOnly bool) ([]Account, error) {
	filter := ldaphelpers.PasswordNeverExpiresFilter(enabledOnly).String()

	var accounts []Account
	err := ad.FetchPagedEntriesWithCallback(ctx, filter, accountAttributes, func(entries []*ldap.Entry) error {
		for _, result := range ParseEntries(entries) {
			if result.Error != nil {
				return fmt.Errorf("entry %s: %w", result.DN, result.Error)
			}
			if result.Skipped {
				continue
			}
			// the enabled predicate is pushed down, this guards directories that ignore it
			if enabledOnly && !result.Account.Enabled {
				continue
			}
			accounts = append(accounts, *result.Account)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return accounts, nil
}

// perform a paged LDAP query and callback per page
func (ad *ActiveDirectoryInstance) FetchPagedEntriesWithCallback(
	ctx context.Context, filter string, attributes []string, processPage func(entries []*ldap.Entry) error,
) error {
	if ad.searcher == nil {
		return ErrNotConnected
	}

	pageControl := ldap.NewControlPaging(ad.PageSize)
	pageRequest := ldap.NewSearchRequest(
		ad.BaseDn,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		0, 0, false,
		filter,
		attributes,
		[]ldap.Control{pageControl},
	)

	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("LDAP search cancelled: %w", err)
		}

		searchResults, err := ad.searcher.Search(pageRequest)
		if err != nil {
			return fmt.Errorf("LDAP search failed: %w", err)
		}

		if err := processPage(searchResults.Entries); err != nil {
			return fmt.Errorf("processing page failed: %w", err)
		}

		// Check if there's a next page
		pagingControl, ok := ldap.FindControl(searchResults.Controls, ldap.ControlTypePaging).(*ldap.ControlPaging)
		if !ok || len(pagingControl.Cookie) == 0 {
			break
		}
		pageControl.SetCookie(pagingControl.Cookie)
	}

	return nil
}
