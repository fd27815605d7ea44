package integra

import "errors"

var (
	ErrConnection            = errors.New("connection failed")
	ErrFraming               = errors.New("invalid frame")
	ErrChecksumMismatch      = errors.New("checksum mismatch")
	ErrEmptyResponse         = errors.New("empty response")
	ErrUnknownOpcode         = errors.New("no decoder for opcode")
	ErrUnsupportedResultCode = errors.New("unsupported result code")
	ErrInvalidPayload        = errors.New("invalid payload")
	ErrUnexpectedReply       = errors.New("unexpected reply")

	// ErrBusy is returned once the module kept answering "Busy!" for all the
	// allowed retries.
	ErrBusy = errors.New("module is busy")
)
