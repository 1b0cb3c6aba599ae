package access

import (
	"errors"
	"fmt"
)

// AuthStatus is the verification state of an authorization card.
type AuthStatus string

const (
	// AuthPending means the card was scanned but verification has not started.
	AuthPending AuthStatus = "pending"
	// AuthLoading means verification is running and completion is awaited.
	AuthLoading AuthStatus = "loading"
	// AuthAuthorized means verification completed successfully.
	AuthAuthorized AuthStatus = "authorized"
	// AuthDenied is defined for content that rejects a card. No shipped
	// scenario drives into it.
	AuthDenied AuthStatus = "denied"
)

var (
	// ErrAuthInProgress is returned when a verification is already running.
	ErrAuthInProgress = errors.New("access: authorization already in progress")
	// ErrAuthFinished is returned when the card has already been verified or denied.
	ErrAuthFinished = errors.New("access: authorization already finished")
	// ErrStaleTicket is returned for a completion that belongs to an aborted run.
	ErrStaleTicket = errors.New("access: stale authorization ticket")
)

// Ticket identifies one verification run. Completions carrying an older ticket
// are discarded.
type Ticket uint64

// Authorization is the Pending -> Loading -> Authorized|Denied sub-machine.
// There is no timeout: completion is signalled by an external timer.
type Authorization struct {
	status AuthStatus
	ticket Ticket
}

// Status returns the current state, defaulting to pending.
func (a *Authorization) Status() AuthStatus {
	if a.status == "" {
		return AuthPending
	}
	return a.status
}

// Start moves Pending -> Loading and returns the ticket the completion must
// present. Concurrent starts are rejected.
func (a *Authorization) Start() (Ticket, error) {
	switch a.Status() {
	case AuthLoading:
		return 0, ErrAuthInProgress
	case AuthAuthorized, AuthDenied:
		return 0, fmt.Errorf("%w: %s", ErrAuthFinished, a.Status())
	}
	a.ticket++
	a.status = AuthLoading
	return a.ticket, nil
}

// Complete finishes a running verification.
func (a *Authorization) Complete(t Ticket, granted bool) error {
	if a.Status() != AuthLoading || t != a.ticket {
		return fmt.Errorf("%w: %d", ErrStaleTicket, t)
	}
	if granted {
		a.status = AuthAuthorized
	} else {
		a.status = AuthDenied
	}
	return nil
}

// Abort drops a running verification so its completion is ignored.
func (a *Authorization) Abort() {
	if a.Status() == AuthLoading {
		a.ticket++
		a.status = AuthPending
	}
}

// Reset returns to Pending and invalidates any outstanding ticket.
func (a *Authorization) Reset() {
	a.ticket++
	a.status = AuthPending
}

// Label is the status text printed on the card.
func (a *Authorization) Label() string {
	switch a.Status() {
	case AuthLoading:
		return "Verifying..."
	case AuthAuthorized:
		return "Authorized"
	case AuthDenied:
		return "Denied"
	}
	return "Pending"
}
