package ldaphelpers

const MatchingRuleBitAnd = "1.2.840.113556.1.4.803"

// userAccountControl flags
// https://learn.microsoft.com/en-us/troubleshoot/windows-server/active-directory/useraccountcontrol-manipulate-account-properties
const (
	UACAccountDisable     int64 = 0x0002
	UACDontExpirePassword int64 = 0x10000
)
