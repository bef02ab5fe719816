package contracts

import "errors"

// Error taxonomy for connection lifecycle operations. Fallible operations
// return wrapped forms of these sentinels; match with errors.Is.
var (
	// ErrFailedConnect covers resource creation, source resolution and the
	// platform connect call failing.
	ErrFailedConnect = errors.New("midi: failed to connect")
	// ErrNotConnected is returned by operations that require an active
	// connection.
	ErrNotConnected = errors.New("midi: not connected")
)
