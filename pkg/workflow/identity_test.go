package workflow

import (
	"testing"

	"github.com/practicanteticPX/DocuPrex-sub000/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyChallenge(t *testing.T) {
	cases := []struct {
		name       string
		registered string
		supplied   string
		want       bool
	}{
		{"Match", "4321", "4321", true},
		{"MatchTrimmed", " 4321", "4321 ", true},
		{"Mismatch", "4321", "4322", false},
		{"ShorterSupplied", "4321", "321", false},
		{"NonDigits", "4321", "43a1", false},
		{"EmptyRegistry", "", "", false},
		{"EmptySupplied", "4321", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, VerifyChallenge(tc.registered, tc.supplied))
		})
	}
}

func TestResolveEligibleActors(t *testing.T) {
	grp := domain.SignerSlot{Kind: domain.SlotGroup, TargetID: "G1"}
	members := []domain.GroupMember{{MemberUserID: "b"}, {MemberUserID: "a"}, {MemberUserID: "b"}, {MemberUserID: " "}}
	assert.Equal(t, []string{"a", "b"}, ResolveEligibleActors(grp, members))

	ind := domain.SignerSlot{Kind: domain.SlotIndividual, TargetID: "u1"}
	assert.Equal(t, []string{"u1"}, ResolveEligibleActors(ind, members))
}

func TestGroupAttribution(t *testing.T) {
	slot := domain.SignerSlot{OrderPosition: 1, Kind: domain.SlotGroup, TargetID: "G1", Status: domain.SlotPending}
	eligible := []string{"B", "D"}

	t.Run("ValidClaimAttributesRealActor", func(t *testing.T) {
		doc := newDoc(t, group("G1"))
		by, err := Attribute(slot, "shared", Claim{ActorID: "B", LastDigits: "0099"}, eligible, "0099")
		require.NoError(t, err)
		assert.Equal(t, "B", by.ActorID)
		assert.Empty(t, by.ActorName)
		assert.True(t, by.OnBehalf())
		by.ActorName = "Beatriz"

		require.NoError(t, Sign(&doc, 1, by, testNow))
		got := doc.Slot(1)
		assert.Equal(t, "B", got.ResolvedActorID)
		assert.NotEqual(t, "G1", got.ResolvedActorID)
		assert.NotEqual(t, "shared", got.ResolvedActorID)

		events := EventsFor(Transition{Kind: TransitionSign, Document: doc, Position: 1, By: by, At: testNow}, GroupExpander{"G1": eligible})
		require.NotEmpty(t, events)
		for _, ev := range events {
			assert.Equal(t, "Beatriz", ev.RealActorName)
			assert.Equal(t, "B", ev.ActorID)
		}
	})

	t.Run("InvalidChallengeLeavesSlotPending", func(t *testing.T) {
		doc := newDoc(t, group("G1"))
		_, err := Attribute(slot, "shared", Claim{ActorID: "B", LastDigits: "1111"}, eligible, "0099")
		assert.True(t, IsKind(err, KindIdentityMismatch), "got %v", err)
		assert.Equal(t, domain.SlotPending, doc.Slot(1).Status)
	})

	t.Run("MissingClaim", func(t *testing.T) {
		_, err := Attribute(slot, "shared", Claim{}, eligible, "0099")
		assert.True(t, IsKind(err, KindIdentityMismatch))
	})

	t.Run("NotAMember", func(t *testing.T) {
		_, err := Attribute(slot, "shared", Claim{ActorID: "Z", LastDigits: "0099"}, eligible, "0099")
		assert.True(t, IsKind(err, KindNotAuthorized))
	})

	t.Run("IndividualSlotRequiresAssignedPrincipal", func(t *testing.T) {
		ind := domain.SignerSlot{Kind: domain.SlotIndividual, TargetID: "u1"}
		_, err := Attribute(ind, "u2", Claim{}, []string{"u1"}, "")
		assert.True(t, IsKind(err, KindNotAuthorized))

		by, err := Attribute(ind, "u1", Claim{}, []string{"u1"}, "")
		require.NoError(t, err)
		assert.Equal(t, "u1", by.ActorID)
		assert.Empty(t, by.ActorName)
		assert.False(t, by.OnBehalf())
	})
}
