package rtde

import "errors"

// Error taxonomy. Callers branch on these with errors.Is to decide whether
// to reconnect (ErrConnection, ErrProtocol), reconfigure (ErrConfig,
// ErrSerialization) or retry the call (ErrTimeout).
var (
	// ErrConfig reports an invalid recipe definition (unknown type name,
	// duplicate field name). Raised before any network interaction.
	ErrConfig = errors.New("rtde: invalid recipe configuration")

	// ErrSerialization reports an encode/decode size or type mismatch.
	// No partial write reaches the wire.
	ErrSerialization = errors.New("rtde: serialization mismatch")

	// ErrProtocol reports a protocol violation: an out-of-order operation,
	// a rejected request, a malformed frame or unexpected wire content.
	ErrProtocol = errors.New("rtde: protocol violation")

	// ErrTimeout reports that the controller did not answer within the
	// caller's deadline. The session state is unchanged.
	ErrTimeout = errors.New("rtde: deadline exceeded")

	// ErrConnection reports a transport open/send/receive failure.
	ErrConnection = errors.New("rtde: connection failure")
)
