// Defines constants representing the types
// of errors that the server may return to a client.

package protocol

// An ErrorCode implements the built-in error interface type.
type ErrorCode int

// These codes indicate the status of a client-server message exchange.
// Codes prefixed by "Req" indicate status of the request, codes prefixed
// by "Err" indicate an error that occurred while it was being handled.
const (
	ReqSuccess ErrorCode = iota + 100

	ErrDirectory
	ErrMalformedMessage
	ErrUnauthorized
)

// Errors contains codes indicating an error; ReqSuccess is not one.
var Errors = map[ErrorCode]bool{
	ErrDirectory:        true,
	ErrMalformedMessage: true,
	ErrUnauthorized:     true,
}

var errorMessages = map[ErrorCode]string{
	ReqSuccess: "[zksmt] Successful request",

	ErrDirectory:        "[zksmt] Directory error",
	ErrMalformedMessage: "[zksmt] Malformed message",
	ErrUnauthorized:     "[zksmt] Operation not allowed on this address",
}

// Error returns the message of an ErrorCode.
func (e ErrorCode) Error() string {
	if msg, ok := errorMessages[e]; ok {
		return msg
	}
	return errorMessages[ErrDirectory]
}
