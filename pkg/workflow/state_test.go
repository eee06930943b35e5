package workflow

import (
	"fmt"
	"testing"

	"github.com/practicanteticPX/DocuPrex-sub000/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSign(t *testing.T) {
	t.Run("SetsResolution", func(t *testing.T) {
		doc := newDoc(t, individuals(2)...)
		require.NoError(t, Sign(&doc, 1, as(userID(1)), testNow))

		slot := doc.Slot(1)
		assert.Equal(t, domain.SlotSigned, slot.Status)
		assert.Equal(t, userID(1), slot.ResolvedActorID)
		require.NotNil(t, slot.ResolvedAt)
		assert.True(t, slot.ResolvedAt.Equal(testNow))
		assert.Equal(t, domain.DocumentPending, doc.Status)
	})

	t.Run("NotYourTurn", func(t *testing.T) {
		doc := newDoc(t, individuals(2)...)
		err := Sign(&doc, 2, as(userID(2)), testNow)
		assert.True(t, IsKind(err, KindNotActionable), "got %v", err)
		assert.Equal(t, domain.SlotPending, doc.Slot(2).Status)
	})

	t.Run("DuplicateSignFailsCleanly", func(t *testing.T) {
		doc := newDoc(t, individuals(2)...)
		require.NoError(t, Sign(&doc, 1, as(userID(1)), testNow))
		before := *doc.Slot(1)

		err := Sign(&doc, 1, as(userID(1)), testNow.Add(1))
		assert.True(t, IsKind(err, KindAlreadyResolved), "got %v", err)
		assert.Equal(t, before, *doc.Slot(1))
	})

	t.Run("UnknownPosition", func(t *testing.T) {
		doc := newDoc(t, individuals(1)...)
		err := Sign(&doc, 9, as(userID(1)), testNow)
		assert.True(t, IsKind(err, KindInvalidPosition))
	})
}

func TestReject(t *testing.T) {
	t.Run("ReasonTooShort", func(t *testing.T) {
		doc := newDoc(t, individuals(1)...)
		for _, reason := range []string{"", "    ", "no", "  abcd  "} {
			err := Reject(&doc, 1, as(userID(1)), reason, testNow)
			assert.True(t, IsKind(err, KindInvalidReason), "reason %q: %v", reason, err)
		}
		assert.Equal(t, domain.SlotPending, doc.Slot(1).Status)
	})

	t.Run("AccentedReasonCountsCharacters", func(t *testing.T) {
		doc := newDoc(t, individuals(1)...)
		assert.NoError(t, Reject(&doc, 1, as(userID(1)), "añoñé", testNow))
	})

	t.Run("TerminatesDocumentKeepingEarlierSignatures", func(t *testing.T) {
		doc := newDoc(t, individuals(4)...)
		require.NoError(t, Sign(&doc, 1, as(userID(1)), testNow))
		require.NoError(t, Reject(&doc, 2, as(userID(2)), "  valor errado ", testNow))

		assert.Equal(t, domain.DocumentRejected, doc.Status)
		assert.Equal(t, "valor errado", doc.RejectionReason)
		assert.Equal(t, "valor errado", doc.Slot(2).RejectionReason)
		assert.Equal(t, domain.SlotSigned, doc.Slot(1).Status)
		assert.Equal(t, userID(1), doc.Slot(1).ResolvedActorID)
	})
}

func TestRejectionTerminality(t *testing.T) {
	for n := 2; n <= 8; n++ {
		for rejectAt := 1; rejectAt <= n; rejectAt++ {
			t.Run(fmt.Sprintf("n=%d/reject=%d", n, rejectAt), func(t *testing.T) {
				doc := newDoc(t, individuals(n)...)
				for p := 1; p < rejectAt; p++ {
					require.NoError(t, Sign(&doc, p, as(userID(p)), testNow))
				}
				require.NoError(t, Reject(&doc, rejectAt, as(userID(rejectAt)), "documento incompleto", testNow))

				for p := rejectAt + 1; p <= n; p++ {
					err := Sign(&doc, p, as(userID(p)), testNow)
					assert.True(t, IsKind(err, KindNotActionable), "sign %d: %v", p, err)
					err = Reject(&doc, p, as(userID(p)), "otro motivo", testNow)
					assert.True(t, IsKind(err, KindNotActionable), "reject %d: %v", p, err)
					assert.Equal(t, domain.SlotPending, doc.Slot(p).Status)
				}
				assert.Equal(t, domain.DocumentRejected, doc.Status)
			})
		}
	}
}

func TestCompletion(t *testing.T) {
	for n := 1; n <= 20; n++ {
		doc := newDoc(t, individuals(n)...)
		for p := 1; p <= n; p++ {
			require.Equal(t, domain.DocumentPending, doc.Status, "n=%d before signing %d", n, p)
			require.NoError(t, Sign(&doc, p, as(userID(p)), testNow))
		}
		assert.Equal(t, domain.DocumentCompleted, doc.Status, "n=%d", n)
		assert.Equal(t, domain.DocumentCompleted, DeriveStatus(doc))
	}
}

func TestDeriveStatus(t *testing.T) {
	assert.Equal(t, domain.DocumentDraft, DeriveStatus(domain.Document{}))

	doc := newDoc(t, individuals(3)...)
	assert.Equal(t, domain.DocumentPending, DeriveStatus(doc))

	doc.Signers[2].Status = domain.SlotRejected
	assert.Equal(t, domain.DocumentRejected, DeriveStatus(doc))
}

func TestScenario(t *testing.T) {
	doc := newDoc(t, individual("A"), group("G1"), individual("C"))
	members := []domain.GroupMember{{MemberUserID: "B", DisplayCargo: "Contador"}, {MemberUserID: "D"}}

	require.NoError(t, Sign(&doc, 1, as("A"), testNow))
	assert.True(t, IsActionable(doc.Signers, 2))
	assert.False(t, IsActionable(doc.Signers, 3))

	slot := *doc.Slot(2)
	eligible := ResolveEligibleActors(slot, members)
	by, err := Attribute(slot, "shared-account", Claim{ActorID: "B", LastDigits: "4321"}, eligible, "4321")
	require.NoError(t, err)
	require.NoError(t, Sign(&doc, 2, by, testNow))
	assert.Equal(t, "B", doc.Slot(2).ResolvedActorID)
	assert.Equal(t, "shared-account", doc.Slot(2).ResolvedByPrincipalID)
	assert.True(t, IsActionable(doc.Signers, 3))
	assert.Equal(t, domain.DocumentPending, doc.Status)

	require.NoError(t, Reject(&doc, 3, as("C"), "wrong amount", testNow))
	assert.Equal(t, domain.DocumentRejected, doc.Status)

	err = Reorder(&doc, []int{3, 1, 2})
	assert.True(t, IsKind(err, KindInvalidPosition), "got %v", err)
}
