//go:build windows

package sysutil

import "fmt"

// FlushDNSCache flushes the OS DNS cache.
func FlushDNSCache() (string, error) {
	if err := runCommand("ipconfig", "/flushdns"); err != nil {
		return "", fmt.Errorf("could not flush DNS cache: %w", err)
	}
	return "DNS cache flushed (ipconfig /flushdns)", nil
}
