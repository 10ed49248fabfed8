package registry

import (
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

const (
	// TotalWeight is the weight of the whole member set. Weights are
	// percentages of the total voting power, so every full weight vector
	// must sum to exactly this value.
	TotalWeight = 100

	// To avoid burning CPU, this is the maximum number of members allowed
	// in a single instance.
	maxMembersAllowed = 100
)

// Weight represents the strength of a member vote, as a percent of the
// total voting power.
type Weight uint32

func (w Weight) Validate() error {
	if w < 1 {
		return errors.Wrap(errors.ErrMalformedInput, "weight must be greater than 0")
	}
	if w > TotalWeight {
		return errors.Wrapf(errors.ErrMalformedInput, "weight is %d and must not be greater than %d", w, TotalWeight)
	}
	return nil
}

// Registry is the ordered membership and weight state of one instance.
//
// The member list is circular: next maps every member to its successor and
// the sentinel to the head. A member is present exactly when its successor
// is not the zero identity. Weights of removed members may keep a stale map
// entry but are never read because every read is gated by IsMember.
type Registry struct {
	self        quorum.Identity
	next        map[quorum.Identity]quorum.Identity
	weights     map[quorum.Identity]Weight
	memberCount int
	threshold   Weight
	events      EventSink
}

// NewRegistry performs the one time setup of an instance membership. It
// fails if weights do not sum to TotalWeight, the threshold is out of the
// [1, TotalWeight] range, or any identity is reserved, duplicated or equal
// to the instance own identity. The sink may be nil to discard events.
func NewRegistry(self quorum.Identity, owners []quorum.Identity, weights []Weight, threshold Weight, sink EventSink) (*Registry, error) {
	if err := self.Validate(); err != nil {
		return nil, errors.Wrap(err, "self identity")
	}
	if err := threshold.Validate(); err != nil {
		return nil, errors.Wrap(err, "threshold")
	}
	if err := validateMembers(self, owners, weights); err != nil {
		return nil, err
	}
	if sink == nil {
		sink = NopSink{}
	}

	r := &Registry{
		self:      self,
		next:      make(map[quorum.Identity]quorum.Identity),
		weights:   make(map[quorum.Identity]Weight),
		threshold: threshold,
		events:    sink,
	}
	r.next[quorum.Sentinel] = quorum.Sentinel
	for _, owner := range owners {
		r.insertHead(owner)
	}
	r.memberCount = len(owners)
	r.setWeights(owners, weights)
	return r, nil
}

// insertHead links the given identity in as the new head of the list.
func (r *Registry) insertHead(id quorum.Identity) {
	r.next[id] = r.next[quorum.Sentinel]
	r.next[quorum.Sentinel] = id
}

func (r *Registry) setWeights(owners []quorum.Identity, weights []Weight) {
	for i, owner := range owners {
		r.weights[owner] = weights[i]
	}
}

// IsMember returns true iff the given identity is currently linked into the
// member list. The sentinel is never a member.
func (r *Registry) IsMember(id quorum.Identity) bool {
	return id != quorum.Sentinel && !r.next[id].IsZero()
}

// Weight returns the voting weight of a member, or zero for a non member.
func (r *Registry) Weight(id quorum.Identity) Weight {
	if !r.IsMember(id) {
		return 0
	}
	return r.weights[id]
}

// Threshold returns the aggregate weight required to authorize an action.
func (r *Registry) Threshold() Weight {
	return r.threshold
}

// MemberCount returns the number of current members.
func (r *Registry) MemberCount() int {
	return r.memberCount
}

// Members returns all current members in list order, most recently added
// first.
func (r *Registry) Members() []quorum.Identity {
	members := make([]quorum.Identity, 0, r.memberCount)
	for id := r.next[quorum.Sentinel]; id != quorum.Sentinel; id = r.next[id] {
		members = append(members, id)
	}
	return members
}

// AddMember links a new member in at the head of the list and overwrites
// all weights with the supplied post state vector.
//
// The supplied owners vector is authoritative and is not cross checked
// against "old members plus the new one". Its correctness is delegated to
// the authorizers that signed this change.
func (r *Registry) AddMember(newID quorum.Identity, owners []quorum.Identity, weights []Weight) error {
	if err := r.validateNewMember(newID); err != nil {
		return errors.Wrap(err, "new member")
	}
	if err := validateMembers(r.self, owners, weights); err != nil {
		return err
	}

	r.insertHead(newID)
	r.memberCount++
	r.setWeights(owners, weights)

	// The supplied vector is authoritative for the reported weight. The
	// weights map may hold a value for newID even when the vector omits
	// it, since vectors are trusted and not cross checked against the
	// member set.
	var w Weight
	for i, owner := range owners {
		if owner == newID {
			w = weights[i]
			break
		}
	}
	r.events.Emit(MemberAdded{Member: newID, Weight: w})
	r.events.Emit(WeightsChanged{Members: owners, Weights: weights})
	return nil
}

// RemoveMember unlinks a member given its exact predecessor, zeroes its
// stored weight and overwrites the remaining weights. Supplying anything
// but the true predecessor fails without touching the list.
func (r *Registry) RemoveMember(prevID, id quorum.Identity, owners []quorum.Identity, weights []Weight) error {
	if err := id.Validate(); err != nil {
		return errors.Wrap(err, "member")
	}
	if !r.IsMember(id) {
		return errors.Wrapf(errors.ErrInvalidIdentity, "%s is not a member", id)
	}
	if r.next[prevID] != id {
		return errors.Wrapf(errors.ErrInvalidIdentity, "%s is not the predecessor of %s", prevID, id)
	}
	if err := validateMembers(r.self, owners, weights); err != nil {
		return err
	}

	r.next[prevID] = r.next[id]
	delete(r.next, id)
	delete(r.weights, id)
	r.memberCount--
	r.setWeights(owners, weights)

	r.events.Emit(MemberRemoved{Member: id})
	r.events.Emit(WeightsChanged{Members: owners, Weights: weights})
	return nil
}

// SwapMember atomically replaces one member with another, keeping the list
// position, then overwrites all weights.
func (r *Registry) SwapMember(prevID, oldID, newID quorum.Identity, owners []quorum.Identity, weights []Weight) error {
	if err := r.validateNewMember(newID); err != nil {
		return errors.Wrap(err, "new member")
	}
	if err := oldID.Validate(); err != nil {
		return errors.Wrap(err, "old member")
	}
	if !r.IsMember(oldID) {
		return errors.Wrapf(errors.ErrInvalidIdentity, "%s is not a member", oldID)
	}
	if r.next[prevID] != oldID {
		return errors.Wrapf(errors.ErrInvalidIdentity, "%s is not the predecessor of %s", prevID, oldID)
	}
	if err := validateMembers(r.self, owners, weights); err != nil {
		return err
	}

	r.next[newID] = r.next[oldID]
	r.next[prevID] = newID
	delete(r.next, oldID)
	r.setWeights(owners, weights)

	r.events.Emit(MemberSwapped{Old: oldID, New: newID})
	r.events.Emit(WeightsChanged{Members: owners, Weights: weights})
	return nil
}

// ChangeWeights overwrites all weights with the supplied vector.
func (r *Registry) ChangeWeights(owners []quorum.Identity, weights []Weight) error {
	if err := validateMembers(r.self, owners, weights); err != nil {
		return err
	}
	r.setWeights(owners, weights)
	r.events.Emit(WeightsChanged{Members: owners, Weights: weights})
	return nil
}

// ChangeThreshold sets a new required aggregate weight.
func (r *Registry) ChangeThreshold(t Weight) error {
	if err := t.Validate(); err != nil {
		return errors.Wrap(err, "threshold")
	}
	r.threshold = t
	r.events.Emit(ThresholdChanged{Threshold: t})
	return nil
}

func (r *Registry) validateNewMember(id quorum.Identity) error {
	if err := id.Validate(); err != nil {
		return err
	}
	if id == r.self {
		return errors.Wrap(errors.ErrInvalidIdentity, "instance own identity")
	}
	if r.IsMember(id) {
		return errors.Wrapf(errors.ErrInvalidIdentity, "%s is already a member", id)
	}
	return nil
}

// validateMembers returns an error if the given owners and weights
// configuration is not a valid full post state: equal length, at least one
// member, no reserved or duplicate identity, every weight in range and the
// vector summing to exactly TotalWeight.
func validateMembers(self quorum.Identity, owners []quorum.Identity, weights []Weight) error {
	if len(owners) != len(weights) {
		return errors.Wrapf(errors.ErrMalformedInput, "%d owners but %d weights", len(owners), len(weights))
	}
	switch n := len(owners); {
	case n == 0:
		return errors.Wrap(errors.ErrMalformedInput, "no members")
	case n > maxMembersAllowed:
		return errors.Wrap(errors.ErrMalformedInput, "too many members")
	}

	seen := make(map[quorum.Identity]struct{}, len(owners))
	var total Weight
	for i, owner := range owners {
		if err := owner.Validate(); err != nil {
			return errors.Wrapf(err, "owner %s", owner)
		}
		if owner == self {
			return errors.Wrap(errors.ErrInvalidIdentity, "instance own identity")
		}
		if _, ok := seen[owner]; ok {
			return errors.Wrapf(errors.ErrInvalidIdentity, "duplicate owner %s", owner)
		}
		seen[owner] = struct{}{}

		if err := weights[i].Validate(); err != nil {
			return errors.Wrapf(err, "owner %s", owner)
		}
		total += weights[i]
	}

	if total != TotalWeight {
		return errors.Wrapf(errors.ErrMalformedInput, "weights sum to %d, not %d", total, TotalWeight)
	}
	return nil
}
