package destination

// Policy decides whether a URI scheme gets a plain or a TLS-secured
// connection. It receives the scheme lowercased and reports ok=false
// for schemes it does not accept.
type Policy func(scheme string) (Scheme, bool)

// DefaultPolicy treats https and wss as secure, and http, ws, tcp and
// kcp as plain. Anything else is rejected.
func DefaultPolicy(scheme string) (Scheme, bool) {
	switch scheme {
	case "https", "wss":
		return SchemeSecure, true
	case "http", "ws", "tcp", "kcp":
		return SchemePlain, true
	default:
		return 0, false
	}
}

// SecureOnly wraps a policy so that schemes the inner policy classifies
// as plain are rejected instead. Useful for clients that must never
// fall back to plaintext.
func SecureOnly(policy Policy) Policy {
	if policy == nil {
		policy = DefaultPolicy
	}
	return func(scheme string) (Scheme, bool) {
		class, ok := policy(scheme)
		if !ok || class != SchemeSecure {
			return 0, false
		}
		return SchemeSecure, true
	}
}
