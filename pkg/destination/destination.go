// Package destination resolves request targets into the (scheme, host,
// port) tuple the connector dials. Whether a URI scheme means a plain
// or a TLS-secured connection is decided by a caller-supplied Policy.
package destination

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"maybetls/pkg/format"
)

// Scheme classifies a destination as plaintext or TLS-secured.
type Scheme int

const (
	// SchemePlain means the raw transport connection is used as is.
	SchemePlain Scheme = iota
	// SchemeSecure means a TLS handshake is performed on top of the
	// raw transport connection.
	SchemeSecure
)

// String returns a human-readable scheme class name.
func (s Scheme) String() string {
	switch s {
	case SchemeSecure:
		return "secure"
	default:
		return "plain"
	}
}

// Errors returned by Resolve.
var (
	// ErrMissingScheme is returned when the target URL has no scheme.
	ErrMissingScheme = errors.New("destination: missing scheme")

	// ErrMissingHost is returned when the target URL has no host.
	ErrMissingHost = errors.New("destination: missing host")

	// ErrSchemeNotAllowed is returned when the policy does not accept
	// the target's scheme.
	ErrSchemeNotAllowed = errors.New("destination: scheme not allowed")
)

// Destination is a resolved connection target. It is immutable once
// constructed; build one per connection attempt via Resolve.
type Destination struct {
	Scheme    Scheme
	Host      string // bare host, IPv6 without brackets, used as SNI
	Port      int
	Authority string // dialable host:port with IPv6 brackets
}

// String returns the authority prefixed with the scheme class.
func (d Destination) String() string {
	return d.Scheme.String() + "://" + d.Authority
}

// Resolve parses a target URL and classifies its scheme through the
// policy (nil means DefaultPolicy). The port defaults to the scheme's
// standard port when absent.
func Resolve(rawURL string, policy Policy) (Destination, error) {
	var out Destination

	if policy == nil {
		policy = DefaultPolicy
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return out, fmt.Errorf("parsing %s: %w", rawURL, err)
	}

	if u.Scheme == "" {
		return out, ErrMissingScheme
	}
	scheme := strings.ToLower(u.Scheme)

	host := format.BareHost(u.Hostname())
	if host == "" {
		return out, ErrMissingHost
	}

	class, ok := policy(scheme)
	if !ok {
		return out, fmt.Errorf("%w: %q", ErrSchemeNotAllowed, scheme)
	}

	port := defaultPort(scheme, class)
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil || port < 1 || port > 65535 {
			return out, fmt.Errorf("parsing %s: invalid port %q", rawURL, p)
		}
	}

	return Destination{
		Scheme:    class,
		Host:      host,
		Port:      port,
		Authority: format.Addr(host, port),
	}, nil
}

// defaultPort returns the standard port for well-known schemes, falling
// back to 443 for secure and 80 for plain classes.
func defaultPort(scheme string, class Scheme) int {
	switch scheme {
	case "http", "ws":
		return 80
	case "https", "wss":
		return 443
	}

	if class == SchemeSecure {
		return 443
	}
	return 80
}
