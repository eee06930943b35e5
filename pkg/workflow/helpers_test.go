package workflow

import (
	"testing"
	"time"

	"github.com/practicanteticPX/DocuPrex-sub000/pkg/domain"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 2, 15, 4, 5, 0, time.UTC)

func newDoc(t *testing.T, specs ...domain.SlotSpec) domain.Document {
	t.Helper()
	doc := domain.Document{ID: "doc-1", OwnerID: "uploader", Status: domain.DocumentDraft}
	require.NoError(t, AssignRoster(&doc, specs))
	return doc
}

func individual(id string) domain.SlotSpec {
	return domain.SlotSpec{Kind: domain.SlotIndividual, TargetID: id}
}

func group(code string) domain.SlotSpec {
	return domain.SlotSpec{Kind: domain.SlotGroup, TargetID: code}
}

func as(id string) Attribution {
	return Attribution{PrincipalID: id, ActorID: id}
}

func individuals(n int) []domain.SlotSpec {
	specs := make([]domain.SlotSpec, n)
	for i := range specs {
		specs[i] = individual(userID(i + 1))
	}
	return specs
}

func userID(pos int) string {
	return "user-" + string(rune('a'+pos-1))
}
