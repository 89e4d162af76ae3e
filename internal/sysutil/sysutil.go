// Package sysutil wraps the platform specific commands needed around a
// benchmark run, most notably flushing the OS DNS cache before cold tests.
package sysutil

import (
	"context"
	"os/exec"
	"time"
)

const commandTimeout = 10 * time.Second

// runCommand executes the given command and reports whether it exited
// successfully.
func runCommand(name string, args ...string) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	return exec.CommandContext(ctx, name, args...).Run()
}
