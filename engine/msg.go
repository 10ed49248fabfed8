package engine

import (
	"bytes"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/registry"
)

const (
	pathAddMember       = "quorum/add_member"
	pathRemoveMember    = "quorum/remove_member"
	pathSwapMember      = "quorum/swap_member"
	pathChangeWeights   = "quorum/change_weights"
	pathChangeThreshold = "quorum/change_threshold"
	pathCancel          = "quorum/cancel"
	pathTransfer        = "quorum/transfer"
	pathExecute         = "quorum/execute"
)

// Msg is one governed action request. Each kind has a unique path that is
// part of the signed commitment, so signatures over one action kind can
// never authorize another.
type Msg interface {
	// Path returns the routing identifier of this action kind.
	Path() string
	// Validate returns an error if the message fields cannot possibly be
	// applied. Full state dependent validation happens at dispatch time.
	Validate() error
	// encode appends the canonical representation of all semantic fields.
	encode(w *bytes.Buffer)
}

// AddMemberMsg links a new member in and overwrites all weights with the
// supplied post state vector.
type AddMemberMsg struct {
	Member  quorum.Identity
	Owners  []quorum.Identity
	Weights []registry.Weight
}

var _ Msg = (*AddMemberMsg)(nil)

func (AddMemberMsg) Path() string {
	return pathAddMember
}

func (m *AddMemberMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Member", m.Member.Validate())
	errs = errors.Append(errs, validateVector(m.Owners, m.Weights))
	return errs
}

func (m *AddMemberMsg) encode(w *bytes.Buffer) {
	writeIdentity(w, m.Member)
	writeMembers(w, m.Owners, m.Weights)
}

// RemoveMemberMsg unlinks a member. Prev must be the exact predecessor of
// the member in the list, since removal is an O(1) unlink and not a search.
type RemoveMemberMsg struct {
	Prev    quorum.Identity
	Member  quorum.Identity
	Owners  []quorum.Identity
	Weights []registry.Weight
}

var _ Msg = (*RemoveMemberMsg)(nil)

func (RemoveMemberMsg) Path() string {
	return pathRemoveMember
}

func (m *RemoveMemberMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Member", m.Member.Validate())
	errs = errors.Append(errs, validateVector(m.Owners, m.Weights))
	return errs
}

func (m *RemoveMemberMsg) encode(w *bytes.Buffer) {
	writeIdentity(w, m.Prev)
	writeIdentity(w, m.Member)
	writeMembers(w, m.Owners, m.Weights)
}

// SwapMemberMsg atomically replaces the Old member with New, keeping the
// list position.
type SwapMemberMsg struct {
	Prev    quorum.Identity
	Old     quorum.Identity
	New     quorum.Identity
	Owners  []quorum.Identity
	Weights []registry.Weight
}

var _ Msg = (*SwapMemberMsg)(nil)

func (SwapMemberMsg) Path() string {
	return pathSwapMember
}

func (m *SwapMemberMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Old", m.Old.Validate())
	errs = errors.AppendField(errs, "New", m.New.Validate())
	errs = errors.Append(errs, validateVector(m.Owners, m.Weights))
	return errs
}

func (m *SwapMemberMsg) encode(w *bytes.Buffer) {
	writeIdentity(w, m.Prev)
	writeIdentity(w, m.Old)
	writeIdentity(w, m.New)
	writeMembers(w, m.Owners, m.Weights)
}

// ChangeWeightsMsg overwrites all member weights.
type ChangeWeightsMsg struct {
	Owners  []quorum.Identity
	Weights []registry.Weight
}

var _ Msg = (*ChangeWeightsMsg)(nil)

func (ChangeWeightsMsg) Path() string {
	return pathChangeWeights
}

func (m *ChangeWeightsMsg) Validate() error {
	return validateVector(m.Owners, m.Weights)
}

func (m *ChangeWeightsMsg) encode(w *bytes.Buffer) {
	writeMembers(w, m.Owners, m.Weights)
}

// ChangeThresholdMsg sets a new required aggregate weight.
type ChangeThresholdMsg struct {
	Threshold registry.Weight
}

var _ Msg = (*ChangeThresholdMsg)(nil)

func (ChangeThresholdMsg) Path() string {
	return pathChangeThreshold
}

func (m *ChangeThresholdMsg) Validate() error {
	return errors.Field("Threshold", m.Threshold.Validate(), "")
}

func (m *ChangeThresholdMsg) encode(w *bytes.Buffer) {
	writeUint32(w, uint32(m.Threshold))
}

// CancelMsg authorizes no state change beyond the nonce increment. Signers
// use it to void a previously signed but not yet submitted message for the
// current nonce.
type CancelMsg struct{}

var _ Msg = (*CancelMsg)(nil)

func (CancelMsg) Path() string {
	return pathCancel
}

func (CancelMsg) Validate() error {
	return nil
}

func (CancelMsg) encode(*bytes.Buffer) {}

// TransferMsg moves value out of the instance. A zero Token means the
// native asset, anything else designates a fungible token contract.
type TransferMsg struct {
	Token quorum.Identity
	To    quorum.Identity
	Value uint64
}

var _ Msg = (*TransferMsg)(nil)

func (TransferMsg) Path() string {
	return pathTransfer
}

func (m *TransferMsg) Validate() error {
	return errors.Field("To", m.To.Validate(), "")
}

func (m *TransferMsg) encode(w *bytes.Buffer) {
	writeIdentity(w, m.Token)
	writeIdentity(w, m.To)
	writeUint64(w, m.Value)
}

// ExecuteMsg invokes an arbitrary target with value and an opaque payload.
type ExecuteMsg struct {
	To      quorum.Identity
	Value   uint64
	Payload []byte
}

var _ Msg = (*ExecuteMsg)(nil)

func (ExecuteMsg) Path() string {
	return pathExecute
}

func (m *ExecuteMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "To", m.To.Validate())
	if len(m.Payload) == 0 {
		errs = errors.AppendField(errs, "Payload", errors.Wrap(errors.ErrMalformedInput, "empty payload"))
	}
	return errs
}

func (m *ExecuteMsg) encode(w *bytes.Buffer) {
	writeIdentity(w, m.To)
	writeUint64(w, m.Value)
	writeBytes(w, m.Payload)
}

// validateVector performs the cheap structural checks of a full post state
// weight vector. The registry re-validates the complete set of rules at
// dispatch time.
func validateVector(owners []quorum.Identity, weights []registry.Weight) error {
	var errs error
	if len(owners) == 0 {
		errs = errors.AppendField(errs, "Owners", errors.Wrap(errors.ErrMalformedInput, "no members"))
	}
	if len(owners) != len(weights) {
		errs = errors.AppendField(errs, "Weights", errors.Wrapf(errors.ErrMalformedInput, "%d owners but %d weights", len(owners), len(weights)))
	}
	return errs
}
