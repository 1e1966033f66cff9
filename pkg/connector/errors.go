package connector

import "fmt"

// DestinationError reports a malformed or rejected connection target.
// The resolver's error is preserved as the cause.
type DestinationError struct {
	Target string
	Err    error
}

// Error implements the error interface.
func (e *DestinationError) Error() string {
	return fmt.Sprintf("connector: resolving %q: %v", e.Target, e.Err)
}

// Unwrap returns the underlying cause.
func (e *DestinationError) Unwrap() error { return e.Err }

// Is implements error matching for DestinationError.
func (e *DestinationError) Is(target error) bool {
	_, ok := target.(*DestinationError)
	return ok
}

// TransportError reports a failed transport dial. The transport's error
// is preserved verbatim as the cause.
type TransportError struct {
	Authority string
	Err       error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("connector: dialing %s: %v", e.Authority, e.Err)
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error { return e.Err }

// Is implements error matching for TransportError.
func (e *TransportError) Is(target error) bool {
	_, ok := target.(*TransportError)
	return ok
}

// HandshakeError reports a failed TLS negotiation on an established
// transport connection. The engine's error is preserved verbatim as the
// cause. Callers should treat it like a connection refusal: the
// destination is currently unreachable over a secure channel.
type HandshakeError struct {
	Host string
	Err  error
}

// Error implements the error interface.
func (e *HandshakeError) Error() string {
	return fmt.Sprintf("connector: TLS handshake with %s: %v", e.Host, e.Err)
}

// Unwrap returns the underlying cause.
func (e *HandshakeError) Unwrap() error { return e.Err }

// Is implements error matching for HandshakeError.
func (e *HandshakeError) Is(target error) bool {
	_, ok := target.(*HandshakeError)
	return ok
}
