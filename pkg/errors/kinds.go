package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies a failure by how it must be reported to the user
type Kind int

const (
	// KindInternal is anything unclassified. Reported generically.
	KindInternal Kind = iota
	// KindInput is a bad argument. Reported inline, the command stays usable.
	KindInput
	// KindPermission covers missing platform permissions, unauthorized
	// callers and hierarchy failures. Nothing was changed.
	KindPermission
	// KindCollaborator is a failed platform call that was the primary deliverable.
	KindCollaborator
	// KindPersistence is a store failure. The counter was not modified.
	KindPersistence
)

// String returns the label used in metrics
func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindPermission:
		return "permission"
	case KindCollaborator:
		return "collaborator"
	case KindPersistence:
		return "persistence"
	default:
		return "internal"
	}
}

// Error is a classified error carrying the message shown to the user
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Input builds a user input error
func Input(message string) error {
	return &Error{Kind: KindInput, Message: message}
}

// Permission builds a permission error wrapping cause (may be nil)
func Permission(message string, cause error) error {
	return &Error{Kind: KindPermission, Message: message, Err: cause}
}

// Collaborator wraps a failed platform call
func Collaborator(message string, cause error) error {
	return &Error{Kind: KindCollaborator, Message: message, Err: cause}
}

// Persistence wraps a store failure
func Persistence(cause error) error {
	return &Error{Kind: KindPersistence, Err: cause}
}

// KindOf returns the kind of the first classified error in the chain
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// UserMessage returns the text shown to the invoking user for err
func UserMessage(err error) string {
	var e *Error
	if !stderrors.As(err, &e) {
		return "❌ Something went wrong while running this command."
	}

	switch e.Kind {
	case KindPersistence:
		return "⚠️ Something went wrong while saving. Please try again."
	case KindInput:
		return "❌ " + e.Message
	case KindPermission:
		if e.Message == "" {
			return "❌ I don't have permission to do that."
		}
		return "❌ " + e.Message
	case KindCollaborator:
		if e.Message == "" {
			return "❌ Discord rejected the request. Please try again later."
		}
		return "❌ " + e.Message
	default:
		return "❌ Something went wrong while running this command."
	}
}
