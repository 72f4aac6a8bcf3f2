package provisioning

import "fmt"

// DependencyError reports that a provisioning step failed and names it, so
// a partially built environment can be diagnosed and repaired by rerunning.
type DependencyError struct {
	Step string
	Err  error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("provisioning step %q failed: %v", e.Step, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}

// MismatchError reports that an existing resource is wired to a different
// VPC than the one being provisioned. Retrying cannot fix this; the
// conflicting resource has to be removed or renamed first.
type MismatchError struct {
	Resource string
	Detail   string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s does not belong to this environment: %s", e.Resource, e.Detail)
}
