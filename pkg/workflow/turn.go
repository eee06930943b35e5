package workflow

import "github.com/practicanteticPX/DocuPrex-sub000/pkg/domain"

// IsActionable indica si el firmante en position puede actuar ahora: sigue
// pendiente y todos los firmantes con posición menor ya firmaron.
func IsActionable(roster []domain.SignerSlot, position int) bool {
	found := false
	for _, s := range roster {
		switch {
		case s.OrderPosition == position:
			if s.Status != domain.SlotPending {
				return false
			}
			found = true
		case s.OrderPosition < position && s.Status != domain.SlotSigned:
			return false
		}
	}
	return found
}

// NextActionable devuelve el firmante al que le toca actuar, si existe.
func NextActionable(roster []domain.SignerSlot) (domain.SignerSlot, bool) {
	for _, s := range SortedSlots(roster) {
		switch s.Status {
		case domain.SlotSigned:
			continue
		case domain.SlotPending:
			return s, true
		default:
			return domain.SignerSlot{}, false
		}
	}
	return domain.SignerSlot{}, false
}
