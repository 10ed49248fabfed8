package registry

import "github.com/iov-one/quorum"

// Event is a notification about a registry mutation. Events are emitted for
// external observers and carry no further obligation for this package.
type Event interface {
	// Type returns a short identifier of the event kind.
	Type() string
}

// EventSink receives registry change notifications. Implementations must
// not fail and must not call back into the registry.
type EventSink interface {
	Emit(Event)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Emit(Event) {}

type MemberAdded struct {
	Member quorum.Identity
	Weight Weight
}

func (MemberAdded) Type() string { return "registry/member_added" }

type MemberRemoved struct {
	Member quorum.Identity
}

func (MemberRemoved) Type() string { return "registry/member_removed" }

type MemberSwapped struct {
	Old quorum.Identity
	New quorum.Identity
}

func (MemberSwapped) Type() string { return "registry/member_swapped" }

type WeightsChanged struct {
	Members []quorum.Identity
	Weights []Weight
}

func (WeightsChanged) Type() string { return "registry/weights_changed" }

type ThresholdChanged struct {
	Threshold Weight
}

func (ThresholdChanged) Type() string { return "registry/threshold_changed" }
