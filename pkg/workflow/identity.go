package workflow

import (
	"crypto/subtle"
	"strings"

	"github.com/practicanteticPX/DocuPrex-sub000/pkg/domain"
)

// Claim es la persona real que dice estar detrás de una cuenta compartida,
// junto con los últimos dígitos de su documento. El nombre no se acepta del
// cliente: sale del registro de identidad una vez verificado el actor.
type Claim struct {
	ActorID    string
	LastDigits string
}

// VerifyChallenge compara los dígitos entregados contra los registrados sin
// revelar más que el resultado.
func VerifyChallenge(registered, supplied string) bool {
	registered = strings.TrimSpace(registered)
	supplied = strings.TrimSpace(supplied)
	if registered == "" || supplied == "" || !onlyDigits(supplied) {
		return false
	}
	if len(registered) != len(supplied) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(registered), []byte(supplied)) == 1
}

func onlyDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Attribute decide quién actúa en el firmante. eligible debe venir de
// ResolveEligibleActors y registeredDigits del registro de identidad del
// actor reclamado (solo se usa en firmantes de grupo).
func Attribute(slot domain.SignerSlot, principalID string, claim Claim, eligible []string, registeredDigits string) (Attribution, error) {
	const op = "workflow.attribute"
	principalID = strings.TrimSpace(principalID)
	if principalID == "" {
		return Attribution{}, NewError(KindNotAuthorized, op, "principal is required", nil)
	}

	if slot.Kind != domain.SlotGroup {
		if principalID != slot.TargetID {
			return Attribution{}, NewError(KindNotAuthorized, op, "principal is not the assigned signer", nil)
		}
		return Attribution{PrincipalID: principalID, ActorID: principalID}, nil
	}

	actorID := strings.TrimSpace(claim.ActorID)
	if actorID == "" {
		return Attribution{}, NewError(KindIdentityMismatch, op, "group signers must declare the real actor", nil)
	}
	if !contains(eligible, actorID) {
		return Attribution{}, NewError(KindNotAuthorized, op, "actor is not a member of group "+slot.TargetID, nil)
	}
	if !VerifyChallenge(registeredDigits, claim.LastDigits) {
		return Attribution{}, NewError(KindIdentityMismatch, op, "identity challenge failed", nil)
	}
	return Attribution{PrincipalID: principalID, ActorID: actorID}, nil
}
