package workflow

import (
	"sort"
	"strings"

	"github.com/practicanteticPX/DocuPrex-sub000/pkg/domain"
)

// ResolveEligibleActors expande un firmante en el conjunto de personas que pueden
// actuar por él. Para grupos se usa la membresía vigente al momento de actuar,
// nunca una copia guardada en el firmante.
func ResolveEligibleActors(slot domain.SignerSlot, members []domain.GroupMember) []string {
	if slot.Kind != domain.SlotGroup {
		return []string{slot.TargetID}
	}
	set := make(map[string]struct{}, len(members))
	for _, m := range members {
		id := strings.TrimSpace(m.MemberUserID)
		if id == "" {
			continue
		}
		set[id] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
