// Package format provides helpers for formatting network addresses.
package format

import (
	"fmt"
	"strings"
)

// Addr joins host and port into a dialable address, bracketing IPv6
// literals.
func Addr(host string, port int) string {
	if strings.ContainsAny(host, ":") { // IPv6
		return fmt.Sprintf("[%s]:%d", host, port)
	} else { // IPv4 or hostname
		return fmt.Sprintf("%s:%d", host, port)
	}
}

// BareHost strips the brackets from an IPv6 literal. TLS server names
// and certificate verification want the bare form.
func BareHost(host string) string {
	return strings.Trim(host, "[]")
}
