package activedirectory

import (
	"time"

	"github.com/go-ldap/ldap/v3"
)

// Searcher is the subset of *ldap.Conn used to query the directory.
type Searcher interface {
	Search(searchRequest *ldap.SearchRequest) (*ldap.SearchResult, error)
}

type ActiveDirectoryInstance struct {
	BaseDn               string
	DomainControllerFQDN string
	PageSize             uint32
	UseTLS               bool
	InsecureSkipVerify   bool
	BoundAs              string // authzid reported by WhoAmI after Connect
	ldapConnection       *ldap.Conn
	searcher             Searcher
}

// Account is a flagged user as returned by a single query. UserPrincipalName is the
// only field used for baseline comparison.
type Account struct {
	DN                string
	UserPrincipalName string
	DisplayName       string
	SAMAccountName    string
	LastLogon         *time.Time
	Enabled           bool
}
