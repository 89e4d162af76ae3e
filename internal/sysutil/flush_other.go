//go:build !(linux || darwin || windows)

package sysutil

import (
	"fmt"
	"runtime"
)

// FlushDNSCache flushes the OS DNS cache.
func FlushDNSCache() (string, error) {
	return "", fmt.Errorf("flushing DNS cache is not supported on %s", runtime.GOOS)
}
