package workflow

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/practicanteticPX/DocuPrex-sub000/pkg/domain"
)

// MinRejectReasonLength es la longitud mínima (en caracteres, sin espacios
// extremos) del motivo de rechazo.
const MinRejectReasonLength = 5

// DeriveStatus calcula el estado del documento a partir de sus firmantes.
func DeriveStatus(doc domain.Document) domain.DocumentStatus {
	if len(doc.Signers) == 0 {
		return domain.DocumentDraft
	}
	allSigned := true
	for _, s := range doc.Signers {
		switch s.Status {
		case domain.SlotRejected:
			return domain.DocumentRejected
		case domain.SlotPending:
			allSigned = false
		}
	}
	if allSigned {
		return domain.DocumentCompleted
	}
	return domain.DocumentPending
}

// checkTurn valida que el firmante exista, siga pendiente y sea su turno.
func checkTurn(op string, doc *domain.Document, position int) (*domain.SignerSlot, error) {
	slot := doc.Slot(position)
	if slot == nil {
		return nil, NewError(KindInvalidPosition, op, "no signer at that position", nil)
	}
	if slot.Resolved() {
		return nil, NewError(KindAlreadyResolved, op, "signer already "+string(slot.Status), nil)
	}
	if doc.Status.Closed() {
		return nil, NewError(KindNotActionable, op, "document is "+string(doc.Status), nil)
	}
	if !IsActionable(doc.Signers, position) {
		return nil, NewError(KindNotActionable, op, "previous signers have not signed yet", nil)
	}
	return slot, nil
}

// CheckTurn expone la validación de turno sin aplicar cambios.
func CheckTurn(doc domain.Document, position int) error {
	_, err := checkTurn("workflow.check_turn", &doc, position)
	return err
}

// Sign marca como firmado el firmante en position.
func Sign(doc *domain.Document, position int, by Attribution, now time.Time) error {
	const op = "workflow.sign"
	slot, err := checkTurn(op, doc, position)
	if err != nil {
		return err
	}
	if strings.TrimSpace(by.ActorID) == "" {
		return NewError(KindValidation, op, "actor is required", nil)
	}
	at := now.UTC()
	slot.Status = domain.SlotSigned
	slot.ResolvedActorID = by.ActorID
	slot.ResolvedByPrincipalID = by.PrincipalID
	slot.ResolvedAt = &at
	doc.Status = DeriveStatus(*doc)
	return nil
}

// Reject rechaza el documento desde el firmante en position. Un solo rechazo
// termina el documento; las firmas anteriores se conservan.
func Reject(doc *domain.Document, position int, by Attribution, reason string, now time.Time) error {
	const op = "workflow.reject"
	reason = strings.TrimSpace(reason)
	if utf8.RuneCountInString(reason) < MinRejectReasonLength {
		return NewError(KindInvalidReason, op, "rejection reason too short", nil)
	}
	slot, err := checkTurn(op, doc, position)
	if err != nil {
		return err
	}
	if strings.TrimSpace(by.ActorID) == "" {
		return NewError(KindValidation, op, "actor is required", nil)
	}
	at := now.UTC()
	slot.Status = domain.SlotRejected
	slot.ResolvedActorID = by.ActorID
	slot.ResolvedByPrincipalID = by.PrincipalID
	slot.ResolvedAt = &at
	slot.RejectionReason = reason
	doc.RejectionReason = reason
	doc.Status = DeriveStatus(*doc)
	return nil
}
