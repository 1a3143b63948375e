package deskforge

import (
	"fmt"
	"os"
)

// requireRoot verifies the single privilege precondition. Package
// installation, service management and the reboot all need root, so the whole
// run does; checked once at startup rather than per operation.
func requireRoot() error {
	if os.Geteuid() == 0 {
		return nil
	}
	return fmt.Errorf("deskforge must be run as root (try: sudo deskforge)")
}
