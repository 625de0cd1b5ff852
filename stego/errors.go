package stego

import (
	"errors"
	"fmt"
)

// Kind classifies codec failures. The string value is the error code reported
// to clients.
type Kind string

const (
	KindUnsupportedFormat    Kind = "UNSUPPORTED_FORMAT"
	KindInsufficientCapacity Kind = "INSUFFICIENT_CAPACITY"
	KindCorruptedData        Kind = "CORRUPTED_DATA"
	KindInvalidInput         Kind = "VALIDATION_ERROR"
	KindInternal             Kind = "INTERNAL_ERROR"
)

// Stage is the orchestrator step an operation was in.
type Stage int

const (
	StageIdle Stage = iota
	StageValidating
	StageEncrypting
	StageFraming
	StageLoading
	StageCapacityChecking
	StageEmbedding
	StageExtracting
	StageSerializing
	StageDecrypting
	StageDone
)

var stageNames = [...]string{
	StageIdle:             "idle",
	StageValidating:       "validating",
	StageEncrypting:       "encrypting",
	StageFraming:          "framing",
	StageLoading:          "loading",
	StageCapacityChecking: "capacity-checking",
	StageEmbedding:        "embedding",
	StageExtracting:       "extracting",
	StageSerializing:      "serializing",
	StageDecrypting:       "decrypting",
	StageDone:             "done",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

// corruptedMessage is shared by every corrupted-data failure so callers cannot
// tell a bad length header from a wrong passphrase.
const corruptedMessage = "no valid hidden message found or wrong passphrase"

// Error is returned by every codec operation.
type Error struct {
	Kind    Kind
	Stage   Stage
	Message string

	// Required and Available are in bytes and set for KindInsufficientCapacity.
	Required  int
	Available int

	Cause error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindInsufficientCapacity:
		return fmt.Sprintf("%s: message requires %d bytes, carrier holds %d bytes", e.Kind, e.Required, e.Available)
	case e.Kind == KindCorruptedData || e.Cause == nil:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	default:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// IsKind reports whether err is a codec error of the given kind.
func IsKind(err error, kind Kind) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == kind
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

func unsupportedFormat(stage Stage, cause error, format string, args ...any) *Error {
	return &Error{Kind: KindUnsupportedFormat, Stage: stage, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func insufficientCapacity(stage Stage, required, available int) *Error {
	return &Error{
		Kind:      KindInsufficientCapacity,
		Stage:     stage,
		Message:   "message too large for carrier",
		Required:  required,
		Available: available,
	}
}

func corruptedData(stage Stage, cause error) *Error {
	return &Error{Kind: KindCorruptedData, Stage: stage, Message: corruptedMessage, Cause: cause}
}

func invalidInput(message string) *Error {
	return &Error{Kind: KindInvalidInput, Stage: StageValidating, Message: message}
}

func payloadTooLong(bits uint64) *Error {
	return &Error{
		Kind:    KindInvalidInput,
		Stage:   StageFraming,
		Message: fmt.Sprintf("payload of %d bits does not fit the %d-bit length prefix", bits, LengthPrefixBits),
	}
}

func internalError(stage Stage, cause error, message string) *Error {
	return &Error{Kind: KindInternal, Stage: stage, Message: message, Cause: cause}
}
