//go:build darwin

package sysutil

import "fmt"

// FlushDNSCache flushes the OS DNS cache. Typically requires elevated
// privileges.
func FlushDNSCache() (string, error) {
	if err := runCommand("dscacheutil", "-flushcache"); err != nil {
		return "", fmt.Errorf("could not flush DNS cache: %w", err)
	}
	// ignored on purpose, mDNSResponder is not present on all versions
	_ = runCommand("killall", "-HUP", "mDNSResponder")
	return "DNS cache flushed (dscacheutil)", nil
}
