package diff

import "f0oster/pneaudit/activedirectory"

// Comparison is the outcome of reconciling a snapshot against the baseline.
type Comparison struct {
	New     []activedirectory.Account
	Removed []string
}
