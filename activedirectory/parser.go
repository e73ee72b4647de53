package activedirectory

import (
	"fmt"
	"strings"

	"f0oster/pneaudit/activedirectory/ldaphelpers"
	"f0oster/pneaudit/activedirectory/transformers"

	"github.com/go-ldap/ldap/v3"
)

// attributes requested for each flagged account
var accountAttributes = []string{
	"userPrincipalName",
	"displayName",
	"sAMAccountName",
	"lastLogonTimestamp",
	"userAccountControl",
}

// ParseResult holds either a parsed account or the reason the entry was skipped.
type ParseResult struct {
	Account *Account
	DN      string // Always populated for error reporting
	Skipped bool   // entry has no userPrincipalName
	Error   error
}

// ParseEntries converts LDAP entries into accounts, one result per entry.
func ParseEntries(entries []*ldap.Entry) []*ParseResult {
	results := make([]*ParseResult, 0, len(entries))

	for _, entry := range entries {
		result := &ParseResult{DN: entry.DN}

		account, err := parseEntry(entry)
		switch {
		case err != nil:
			result.Error = err
		case account == nil:
			result.Skipped = true
		default:
			result.Account = account
		}

		results = append(results, result)
	}

	return results
}

// parseEntry returns nil, nil for entries without a userPrincipalName.
func parseEntry(entry *ldap.Entry) (*Account, error) {
	upn := strings.TrimSpace(entry.GetAttributeValue("userPrincipalName"))
	if upn == "" {
		return nil, nil
	}

	uac, err := transformers.ParseUserAccountControl(entry.GetAttributeValue("userAccountControl"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse userAccountControl: %w", err)
	}

	lastLogon, err := transformers.FromFileTime(entry.GetAttributeValue("lastLogonTimestamp"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse lastLogonTimestamp: %w", err)
	}

	return &Account{
		DN:                entry.DN,
		UserPrincipalName: upn,
		DisplayName:       entry.GetAttributeValue("displayName"),
		SAMAccountName:    entry.GetAttributeValue("sAMAccountName"),
		LastLogon:         lastLogon,
		Enabled:           uac&ldaphelpers.UACAccountDisable == 0,
	}, nil
}
