package registry_test

import (
	"testing"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/quorumtest"
	"github.com/iov-one/quorum/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	self = quorum.Identity{0xff, 0xee}

	alice = quorumtest.SignerFromSeed("alice").ID
	bob   = quorumtest.SignerFromSeed("bob").ID
	carol = quorumtest.SignerFromSeed("carol").ID
	dave  = quorumtest.SignerFromSeed("dave").ID
	erin  = quorumtest.SignerFromSeed("erin").ID
)

func weights(ws ...registry.Weight) []registry.Weight {
	return ws
}

func owners(ids ...quorum.Identity) []quorum.Identity {
	return ids
}

func TestNewRegistry(t *testing.T) {
	cases := map[string]struct {
		owners    []quorum.Identity
		weights   []registry.Weight
		threshold registry.Weight
		wantErr   *errors.Error
	}{
		"valid": {
			owners:    owners(alice, bob, carol),
			weights:   weights(60, 30, 10),
			threshold: 70,
		},
		"single member holding all power": {
			owners:    owners(alice),
			weights:   weights(100),
			threshold: 100,
		},
		"weights sum below 100": {
			owners:    owners(alice, bob),
			weights:   weights(60, 39),
			threshold: 50,
			wantErr:   errors.ErrMalformedInput,
		},
		"weights sum above 100": {
			owners:    owners(alice, bob),
			weights:   weights(60, 41),
			threshold: 50,
			wantErr:   errors.ErrMalformedInput,
		},
		"zero weight": {
			owners:    owners(alice, bob),
			weights:   weights(100, 0),
			threshold: 50,
			wantErr:   errors.ErrMalformedInput,
		},
		"length mismatch": {
			owners:    owners(alice, bob),
			weights:   weights(100),
			threshold: 50,
			wantErr:   errors.ErrMalformedInput,
		},
		"no members": {
			owners:    nil,
			weights:   nil,
			threshold: 50,
			wantErr:   errors.ErrMalformedInput,
		},
		"threshold zero": {
			owners:    owners(alice),
			weights:   weights(100),
			threshold: 0,
			wantErr:   errors.ErrMalformedInput,
		},
		"threshold above 100": {
			owners:    owners(alice),
			weights:   weights(100),
			threshold: 101,
			wantErr:   errors.ErrMalformedInput,
		},
		"duplicate owner": {
			owners:    owners(alice, alice),
			weights:   weights(50, 50),
			threshold: 50,
			wantErr:   errors.ErrInvalidIdentity,
		},
		"zero owner": {
			owners:    owners(alice, quorum.Identity{}),
			weights:   weights(50, 50),
			threshold: 50,
			wantErr:   errors.ErrInvalidIdentity,
		},
		"sentinel owner": {
			owners:    owners(alice, quorum.Sentinel),
			weights:   weights(50, 50),
			threshold: 50,
			wantErr:   errors.ErrInvalidIdentity,
		},
		"instance own identity as owner": {
			owners:    owners(alice, self),
			weights:   weights(50, 50),
			threshold: 50,
			wantErr:   errors.ErrInvalidIdentity,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			reg, err := registry.NewRegistry(self, tc.owners, tc.weights, tc.threshold, nil)
			if tc.wantErr != nil {
				require.True(t, tc.wantErr.Is(err), "unexpected error: %+v", err)
				return
			}
			require.NoError(t, err)
			assertListShape(t, reg)
			for i, owner := range tc.owners {
				assert.True(t, reg.IsMember(owner))
				assert.Equal(t, tc.weights[i], reg.Weight(owner))
			}
			assert.Equal(t, tc.threshold, reg.Threshold())
		})
	}
}

func TestMembersOrder(t *testing.T) {
	reg, err := registry.NewRegistry(self,
		owners(alice, bob, carol), weights(60, 30, 10), 70, nil)
	require.NoError(t, err)

	// Insertion is always at the head, so enumeration returns the most
	// recently added member first.
	assert.Equal(t, owners(carol, bob, alice), reg.Members())

	assert.False(t, reg.IsMember(quorum.Sentinel))
	assert.False(t, reg.IsMember(quorum.Identity{}))
	assert.False(t, reg.IsMember(dave))
	assert.Equal(t, registry.Weight(0), reg.Weight(dave))
}

func TestAddMember(t *testing.T) {
	reg, events := newTestRegistry(t)

	require.NoError(t, reg.AddMember(dave,
		owners(dave, alice, bob, carol), weights(25, 45, 20, 10)))

	assert.Equal(t, owners(dave, carol, bob, alice), reg.Members())
	assert.Equal(t, 4, reg.MemberCount())
	assert.Equal(t, registry.Weight(25), reg.Weight(dave))
	assert.Equal(t, registry.Weight(45), reg.Weight(alice))
	assertListShape(t, reg)

	assert.Equal(t, []string{
		"registry/member_added",
		"registry/weights_changed",
	}, events.Types())

	// A second add of the same member must fail and change nothing.
	err := reg.AddMember(dave, owners(dave, alice, bob, carol), weights(25, 45, 20, 10))
	require.True(t, errors.ErrInvalidIdentity.Is(err), "unexpected error: %+v", err)
	assert.Equal(t, 4, reg.MemberCount())
}

func TestAddMemberEventWeight(t *testing.T) {
	reg, events := newTestRegistry(t)

	require.NoError(t, reg.AddMember(dave,
		owners(dave, alice, bob, carol), weights(25, 45, 20, 10)))
	added, ok := events.Events[0].(registry.MemberAdded)
	require.True(t, ok, "unexpected event %T", events.Events[0])
	assert.Equal(t, registry.Weight(25), added.Weight)
}

func TestAddMemberEventWeightOmittedFromVector(t *testing.T) {
	reg, events := newTestRegistry(t)

	// Vectors are trusted, so a weight can be set for erin before she is
	// a member and the add vector can omit her again. The event must
	// report what the add vector says (nothing), not the stale map entry.
	require.NoError(t, reg.ChangeWeights(
		owners(alice, bob, carol, erin), weights(30, 30, 20, 20)))
	require.NoError(t, reg.AddMember(erin,
		owners(alice, bob, carol), weights(60, 30, 10)))

	added, ok := events.Events[1].(registry.MemberAdded)
	require.True(t, ok, "unexpected event %T", events.Events[1])
	assert.Equal(t, registry.Weight(0), added.Weight)
}

func TestAddMemberRejectsReserved(t *testing.T) {
	reg, _ := newTestRegistry(t)

	for name, id := range map[string]quorum.Identity{
		"zero":     {},
		"sentinel": quorum.Sentinel,
		"self":     self,
	} {
		t.Run(name, func(t *testing.T) {
			err := reg.AddMember(id, owners(id, alice, bob, carol), weights(25, 45, 20, 10))
			require.True(t, errors.ErrInvalidIdentity.Is(err), "unexpected error: %+v", err)
			assert.Equal(t, 3, reg.MemberCount())
		})
	}
}

func TestRemoveMember(t *testing.T) {
	reg, events := newTestRegistry(t)

	// List order is [carol, bob, alice], so bob's predecessor is carol.
	require.NoError(t, reg.RemoveMember(carol, bob,
		owners(alice, carol), weights(80, 20)))

	assert.Equal(t, owners(carol, alice), reg.Members())
	assert.Equal(t, 2, reg.MemberCount())
	assert.False(t, reg.IsMember(bob))
	assert.Equal(t, registry.Weight(0), reg.Weight(bob))
	assert.Equal(t, registry.Weight(80), reg.Weight(alice))
	assertListShape(t, reg)

	assert.Equal(t, []string{
		"registry/member_removed",
		"registry/weights_changed",
	}, events.Types())
}

func TestRemoveMemberWrongPredecessor(t *testing.T) {
	reg, events := newTestRegistry(t)

	// alice is not bob's predecessor.
	err := reg.RemoveMember(alice, bob, owners(alice, carol), weights(80, 20))
	require.True(t, errors.ErrInvalidIdentity.Is(err), "unexpected error: %+v", err)

	// Membership must be completely unchanged.
	assert.Equal(t, owners(carol, bob, alice), reg.Members())
	assert.Equal(t, 3, reg.MemberCount())
	assert.True(t, reg.IsMember(bob))
	assert.Empty(t, events.Types())
}

func TestRemoveHead(t *testing.T) {
	reg, _ := newTestRegistry(t)

	// The head's predecessor is the sentinel.
	require.NoError(t, reg.RemoveMember(quorum.Sentinel, carol,
		owners(alice, bob), weights(70, 30)))
	assert.Equal(t, owners(bob, alice), reg.Members())
	assertListShape(t, reg)
}

func TestRemoveLastMember(t *testing.T) {
	reg, err := registry.NewRegistry(self, owners(alice), weights(100), 100, nil)
	require.NoError(t, err)

	// There is no valid post state without members.
	err = reg.RemoveMember(quorum.Sentinel, alice, nil, nil)
	require.True(t, errors.ErrMalformedInput.Is(err), "unexpected error: %+v", err)
	assert.True(t, reg.IsMember(alice))
}

func TestSwapMember(t *testing.T) {
	reg, events := newTestRegistry(t)

	// Replace bob with dave, keeping the position: [carol, dave, alice].
	require.NoError(t, reg.SwapMember(carol, bob, dave,
		owners(alice, dave, carol), weights(60, 30, 10)))

	assert.Equal(t, owners(carol, dave, alice), reg.Members())
	assert.Equal(t, 3, reg.MemberCount())
	assert.False(t, reg.IsMember(bob))
	assert.True(t, reg.IsMember(dave))
	assert.Equal(t, registry.Weight(30), reg.Weight(dave))
	assertListShape(t, reg)

	assert.Equal(t, []string{
		"registry/member_swapped",
		"registry/weights_changed",
	}, events.Types())
}

func TestSwapMemberValidation(t *testing.T) {
	reg, _ := newTestRegistry(t)

	// New member already present.
	err := reg.SwapMember(carol, bob, alice, owners(alice, carol), weights(80, 20))
	require.True(t, errors.ErrInvalidIdentity.Is(err), "unexpected error: %+v", err)

	// Old member not present.
	err = reg.SwapMember(carol, dave, erin, owners(alice, bob, carol), weights(60, 30, 10))
	require.True(t, errors.ErrInvalidIdentity.Is(err), "unexpected error: %+v", err)

	// Wrong predecessor.
	err = reg.SwapMember(alice, bob, erin, owners(alice, erin, carol), weights(60, 30, 10))
	require.True(t, errors.ErrInvalidIdentity.Is(err), "unexpected error: %+v", err)

	assert.Equal(t, owners(carol, bob, alice), reg.Members())
}

func TestChangeWeights(t *testing.T) {
	reg, events := newTestRegistry(t)

	require.NoError(t, reg.ChangeWeights(owners(alice, bob, carol), weights(40, 40, 20)))
	assert.Equal(t, registry.Weight(40), reg.Weight(alice))
	assert.Equal(t, registry.Weight(20), reg.Weight(carol))
	assert.Equal(t, []string{"registry/weights_changed"}, events.Types())

	err := reg.ChangeWeights(owners(alice, bob, carol), weights(40, 40, 40))
	require.True(t, errors.ErrMalformedInput.Is(err), "unexpected error: %+v", err)
	assert.Equal(t, registry.Weight(40), reg.Weight(alice))
}

func TestChangeThreshold(t *testing.T) {
	reg, events := newTestRegistry(t)

	require.NoError(t, reg.ChangeThreshold(90))
	assert.Equal(t, registry.Weight(90), reg.Threshold())
	assert.Equal(t, []string{"registry/threshold_changed"}, events.Types())

	require.True(t, errors.ErrMalformedInput.Is(reg.ChangeThreshold(0)))
	require.True(t, errors.ErrMalformedInput.Is(reg.ChangeThreshold(101)))
	assert.Equal(t, registry.Weight(90), reg.Threshold())
}

func TestMutationSequenceKeepsShape(t *testing.T) {
	reg, _ := newTestRegistry(t)

	require.NoError(t, reg.AddMember(dave,
		owners(dave, alice, bob, carol), weights(25, 25, 25, 25)))
	assertListShape(t, reg)

	require.NoError(t, reg.SwapMember(quorum.Sentinel, dave, erin,
		owners(erin, alice, bob, carol), weights(25, 25, 25, 25)))
	assertListShape(t, reg)

	require.NoError(t, reg.RemoveMember(erin, carol,
		owners(erin, alice, bob), weights(40, 30, 30)))
	assertListShape(t, reg)

	require.NoError(t, reg.RemoveMember(quorum.Sentinel, erin,
		owners(alice, bob), weights(50, 50)))
	assertListShape(t, reg)

	assert.Equal(t, owners(bob, alice), reg.Members())
}

// newTestRegistry returns a registry with alice (60), bob (30) and carol
// (10) and a threshold of 70, list order [carol, bob, alice].
func newTestRegistry(t *testing.T) (*registry.Registry, *quorumtest.Events) {
	t.Helper()
	var events quorumtest.Events
	reg, err := registry.NewRegistry(self,
		owners(alice, bob, carol), weights(60, 30, 10), 70, &events)
	require.NoError(t, err)
	return reg, &events
}

// assertListShape verifies the core list invariant: following the
// successor chain from the sentinel visits exactly MemberCount distinct
// members and returns to the sentinel.
func assertListShape(t *testing.T, reg *registry.Registry) {
	t.Helper()
	members := reg.Members()
	require.Equal(t, reg.MemberCount(), len(members))
	seen := make(map[quorum.Identity]struct{}, len(members))
	for _, m := range members {
		if _, ok := seen[m]; ok {
			t.Fatalf("member %s visited twice", m)
		}
		seen[m] = struct{}{}
		require.True(t, reg.IsMember(m))
	}
}
