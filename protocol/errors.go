package protocol

import "errors"

var (
	// ErrRadio marks a failure in the radio path (transceiver refused a
	// command or reported a hardware fault).
	ErrRadio = errors.New("radio failure")
	// ErrSession marks a failure inside an established session (MIC
	// mismatch, frame counter rollback).
	ErrSession = errors.New("session failure")
	// ErrNoSession marks an operation that requires a session while none
	// is established.
	ErrNoSession = errors.New("no session established")

	// ErrMalformedFrame is returned when a downlink frame is too short or
	// structurally invalid.
	ErrMalformedFrame = errors.New("malformed downlink frame")
	// ErrMalformedPayload is returned when the frame header parses but the
	// application payload cannot be decoded.
	ErrMalformedPayload = errors.New("malformed frame payload")
)
