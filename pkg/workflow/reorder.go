package workflow

import (
	"fmt"

	"github.com/practicanteticPX/DocuPrex-sub000/pkg/domain"
)

// Reorder aplica un nuevo orden de firmantes. newOrder lista las posiciones
// actuales en el orden deseado. Los firmantes resueltos forman un prefijo
// inmutable: conservan su orden relativo y ningún pendiente puede quedar antes
// del último resuelto. Si alguna regla falla no se aplica ningún cambio.
func Reorder(doc *domain.Document, newOrder []int) error {
	const op = "workflow.reorder"
	n := len(doc.Signers)
	if n == 0 {
		return NewError(KindValidation, op, "roster not assigned", nil)
	}
	if len(newOrder) != n {
		return NewError(KindInvalidPosition, op, fmt.Sprintf("expected %d positions, got %d", n, len(newOrder)), nil)
	}
	seen := make([]bool, n+1)
	for _, p := range newOrder {
		if p < 1 || p > n || seen[p] {
			return NewError(KindInvalidPosition, op, fmt.Sprintf("position %d is not a valid permutation entry", p), nil)
		}
		seen[p] = true
	}

	maxResolved := maxResolvedPosition(doc.Signers)
	lastResolved := 0
	out := make([]domain.SignerSlot, 0, n)
	for i, p := range newOrder {
		slot := doc.Slot(p)
		if slot == nil {
			return NewError(KindInvalidPosition, op, fmt.Sprintf("no signer at position %d", p), nil)
		}
		newPos := i + 1
		if slot.Resolved() {
			if p < lastResolved {
				return NewError(KindInvalidPosition, op, fmt.Sprintf("signer at position %d is already %s and cannot change order", p, slot.Status), nil)
			}
			lastResolved = p
		} else if newPos <= maxResolved {
			return NewError(KindInvalidPosition, op, fmt.Sprintf("pending signer cannot move before resolved position %d", maxResolved), nil)
		}
		out = append(out, *slot)
	}
	renumber(out)
	doc.Signers = out
	return nil
}
