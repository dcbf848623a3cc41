package commit

import "fmt"

// Scope identifies the tenant and workspace a commit targets. The primary
// and audit data live in separate store datasets derived from the scope, so
// audit facts never mix with graph facts.
type Scope struct {
	Tenant    string
	Workspace string
}

// Ref returns the human-readable scope reference.
func (s Scope) Ref() string {
	return s.Tenant + "/" + s.Workspace
}

// Dataset returns the primary data dataset name for the store.
func (s Scope) Dataset() string {
	return s.Tenant + "-" + s.Workspace
}

// AuditDataset returns the audit dataset name for the store.
func (s Scope) AuditDataset() string {
	return s.Dataset() + "-audit"
}

// Validate checks that both scope components are set.
func (s Scope) Validate() error {
	if s.Tenant == "" || s.Workspace == "" {
		return fmt.Errorf("scope requires tenant and workspace, got %q/%q", s.Tenant, s.Workspace)
	}
	return nil
}
