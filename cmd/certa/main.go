// certa is the command-line front end of the compatibility core.
//
// Usage:
//
//	certa assess   --fluid hf-48 --temp 25 --unit C -m carbon-steel -m ptfe [--record] [--archive]
//	certa serve    [--skip-gate]
//	certa golden   [-f fixture.json ...] [--workers N]
//	certa inspect  materials|runs|run|promotions|certificate
//	certa export   --out cases.json [--last N] [--merge existing.json]
//	certa promote  [-m monel-400 ...] [--out certs/] [--dry-run]
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps a failed gate to 2 so deployment scripts can tell a
// blocked release from an operational error.
func exitCode(err error) int {
	if errors.Is(err, errGateFailed) {
		return 2
	}
	return 1
}
