package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Status reports whether an external binary factwatch shells out to can be run.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// lookup resolves binary on PATH (or as a path) and fills Available and
// Command. A blank binary is reported as not configured.
func lookup(status Status, binary string) Status {
	binary = strings.TrimSpace(binary)
	status.Command = binary
	if binary == "" {
		status.Detail = "command not configured"
		return status
	}
	resolved, err := exec.LookPath(binary)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", binary)
		return status
	}
	status.Command = resolved
	status.Available = true
	return status
}
