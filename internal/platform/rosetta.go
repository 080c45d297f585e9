package platform

import (
	"context"
	"os/exec"
	"strings"
)

// procTranslatedProperty is the macOS sysctl property that reports
// whether the current process runs translated under Rosetta 2.
const procTranslatedProperty = "sysctl.proc_translated"

// sysctlTranslationProbe asks the kernel whether the process is running
// under Rosetta 2. The property exists only on macOS hosts with Rosetta
// installed; any failure to read it (missing binary, unknown property,
// non-"1" value) means the process is native.
func sysctlTranslationProbe(ctx context.Context) bool {
	out, err := exec.CommandContext(ctx, "sysctl", "-n", procTranslatedProperty).Output()
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(out)) == "1"
}
