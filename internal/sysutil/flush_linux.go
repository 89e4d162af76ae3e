//go:build linux

package sysutil

import "fmt"

// FlushDNSCache flushes the OS DNS cache. It tries the systemd resolver
// first and falls back to restarting nscd on older systems. Typically
// requires elevated privileges.
func FlushDNSCache() (string, error) {
	if err := runCommand("resolvectl", "flush-caches"); err == nil {
		return "DNS cache flushed (resolvectl)", nil
	}
	if err := runCommand("systemd-resolve", "--flush-caches"); err == nil {
		return "DNS cache flushed (systemd-resolve)", nil
	}
	if err := runCommand("service", "nscd", "restart"); err == nil {
		return "DNS cache flushed (nscd restart)", nil
	}
	return "", fmt.Errorf("could not flush DNS cache, try manually")
}
