package dashboard

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrBusy is returned when an update is already in flight.
	ErrBusy = errors.New("verification update in progress")
	// ErrNotConfirming is returned by Confirm when Request was not called first.
	ErrNotConfirming = errors.New("verification change was not requested")
)

// FlowState is the step of the verification toggle.
type FlowState int

const (
	FlowIdle FlowState = iota
	FlowConfirming
	FlowUpdating
)

// UpdateFunc writes the new verification flag to the backend.
type UpdateFunc func(ctx context.Context, verified bool) error

// VerificationFlow is the confirm-then-update toggle of one farmer's
// verification flag. The local flag changes only after update succeeds.
type VerificationFlow struct {
	mu       sync.Mutex
	verified bool
	state    FlowState
}

// NewVerificationFlow starts idle with the flag as last fetched.
func NewVerificationFlow(verified bool) *VerificationFlow {
	return &VerificationFlow{verified: verified}
}

// Request opens the confirmation step.
func (v *VerificationFlow) Request() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state == FlowUpdating {
		return ErrBusy
	}
	v.state = FlowConfirming
	return nil
}

// Cancel closes the confirmation step without changes.
func (v *VerificationFlow) Cancel() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state == FlowConfirming {
		v.state = FlowIdle
	}
}

// Confirm sends the flipped flag through update. On success the local flag
// flips; on failure it is left as it was and the error is returned. Either
// way the flow ends idle.
func (v *VerificationFlow) Confirm(ctx context.Context, update UpdateFunc) error {
	v.mu.Lock()
	switch v.state {
	case FlowUpdating:
		v.mu.Unlock()
		return ErrBusy
	case FlowIdle:
		v.mu.Unlock()
		return ErrNotConfirming
	}
	v.state = FlowUpdating
	target := !v.verified
	v.mu.Unlock()

	err := update(ctx, target)

	v.mu.Lock()
	defer v.mu.Unlock()
	if err == nil {
		v.verified = target
	}
	v.state = FlowIdle
	return err
}

// Verified returns the local flag.
func (v *VerificationFlow) Verified() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.verified
}

// State returns the current step.
func (v *VerificationFlow) State() FlowState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Disabled reports whether the action control must be inert.
func (v *VerificationFlow) Disabled() bool {
	return v.State() == FlowUpdating
}

// ActionLabel is the caption of the action button.
func (v *VerificationFlow) ActionLabel() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	switch {
	case v.state == FlowUpdating:
		return "Updating..."
	case v.verified:
		return "Revoke Verification"
	default:
		return "Verify Farmer"
	}
}

// StatusLabel describes the current flag.
func (v *VerificationFlow) StatusLabel() string {
	return StatusLabel(v.Verified())
}

// Prompt is the confirmation question for the pending transition.
func (v *VerificationFlow) Prompt() string {
	if v.Verified() {
		return "Are you sure you want to revoke verification from this farmer?"
	}
	return "Are you sure you want to verify this farmer?"
}

// StatusLabel describes a verification flag.
func StatusLabel(verified bool) string {
	if verified {
		return "Verified ✓"
	}
	return "Not Verified ✗"
}
