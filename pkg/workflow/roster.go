package workflow

import (
	"sort"
	"strings"

	"github.com/practicanteticPX/DocuPrex-sub000/pkg/domain"
)

// Attribution separa la cuenta autenticada (PrincipalID) de la persona que
// realmente actuó (ActorID). En firmantes individuales ambos coinciden.
type Attribution struct {
	PrincipalID string
	ActorID     string
	ActorName   string
}

// OnBehalf indica si la acción se hizo desde una cuenta distinta a la persona real.
func (a Attribution) OnBehalf() bool {
	return a.PrincipalID != "" && a.PrincipalID != a.ActorID
}

// BuildRoster valida las especificaciones y crea la lista completa de firmantes
// pendientes con posiciones 1..N.
func BuildRoster(specs []domain.SlotSpec) ([]domain.SignerSlot, error) {
	const op = "workflow.build_roster"
	if len(specs) == 0 {
		return nil, NewError(KindValidation, op, "roster must have at least one signer", nil)
	}
	seen := make(map[string]struct{}, len(specs))
	slots := make([]domain.SignerSlot, 0, len(specs))
	for i, spec := range specs {
		slot, err := newPendingSlot(spec, i+1)
		if err != nil {
			return nil, err
		}
		key := string(slot.Kind) + ":" + slot.TargetID
		if _, dup := seen[key]; dup {
			return nil, NewError(KindValidation, op, "duplicate signer "+slot.TargetID, nil)
		}
		seen[key] = struct{}{}
		slots = append(slots, slot)
	}
	return slots, nil
}

func newPendingSlot(spec domain.SlotSpec, position int) (domain.SignerSlot, error) {
	kind := domain.SlotKind(strings.TrimSpace(string(spec.Kind)))
	if kind == "" {
		kind = domain.SlotIndividual
	}
	if !kind.Valid() {
		return domain.SignerSlot{}, NewError(KindValidation, "workflow.slot", "invalid slot kind "+string(spec.Kind), nil)
	}
	target := strings.TrimSpace(spec.TargetID)
	if target == "" {
		return domain.SignerSlot{}, NewError(KindValidation, "workflow.slot", "slot target is required", nil)
	}
	return domain.SignerSlot{
		OrderPosition: position,
		Kind:          kind,
		TargetID:      target,
		RoleLabel:     strings.TrimSpace(spec.RoleLabel),
		Status:        domain.SlotPending,
	}, nil
}

// AssignRoster crea la lista de firmantes de un documento en borrador y lo pasa a pendiente.
func AssignRoster(doc *domain.Document, specs []domain.SlotSpec) error {
	const op = "workflow.assign_roster"
	if doc.Status.Closed() {
		return NewError(KindDocumentClosed, op, "document is "+string(doc.Status), nil)
	}
	if len(doc.Signers) > 0 {
		return NewError(KindValidation, op, "roster already assigned", nil)
	}
	slots, err := BuildRoster(specs)
	if err != nil {
		return err
	}
	doc.Signers = slots
	doc.Status = DeriveStatus(*doc)
	return nil
}

// SortedSlots devuelve una copia de la lista ordenada por posición.
func SortedSlots(roster []domain.SignerSlot) []domain.SignerSlot {
	out := make([]domain.SignerSlot, len(roster))
	copy(out, roster)
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderPosition < out[j].OrderPosition })
	return out
}

func renumber(slots []domain.SignerSlot) {
	for i := range slots {
		slots[i].OrderPosition = i + 1
	}
}

// maxResolvedPosition devuelve la mayor posición ocupada por un firmante resuelto, o 0.
func maxResolvedPosition(roster []domain.SignerSlot) int {
	max := 0
	for _, s := range roster {
		if s.Resolved() && s.OrderPosition > max {
			max = s.OrderPosition
		}
	}
	return max
}

// ValidPositions verifica que las posiciones sean una permutación contigua de 1..N.
func ValidPositions(roster []domain.SignerSlot) bool {
	seen := make([]bool, len(roster)+1)
	for _, s := range roster {
		if s.OrderPosition < 1 || s.OrderPosition > len(roster) || seen[s.OrderPosition] {
			return false
		}
		seen[s.OrderPosition] = true
	}
	return true
}

// AddSlot inserta un firmante pendiente. position 0 lo agrega al final; cualquier
// otra posición debe quedar después de todos los firmantes ya resueltos.
func AddSlot(doc *domain.Document, spec domain.SlotSpec, position int) error {
	const op = "workflow.add_slot"
	if doc.Status.Closed() {
		return NewError(KindDocumentClosed, op, "document is "+string(doc.Status), nil)
	}
	if len(doc.Signers) == 0 {
		return NewError(KindValidation, op, "roster not assigned", nil)
	}
	n := len(doc.Signers)
	if position == 0 {
		position = n + 1
	}
	if position < 1 || position > n+1 {
		return NewError(KindInvalidPosition, op, "position out of range", nil)
	}
	if position <= maxResolvedPosition(doc.Signers) {
		return NewError(KindInvalidPosition, op, "cannot insert before a resolved signer", nil)
	}
	slot, err := newPendingSlot(spec, position)
	if err != nil {
		return err
	}
	for _, s := range doc.Signers {
		if s.Kind == slot.Kind && s.TargetID == slot.TargetID {
			return NewError(KindValidation, op, "duplicate signer "+slot.TargetID, nil)
		}
	}
	sorted := SortedSlots(doc.Signers)
	out := make([]domain.SignerSlot, 0, n+1)
	out = append(out, sorted[:position-1]...)
	out = append(out, slot)
	out = append(out, sorted[position-1:]...)
	renumber(out)
	doc.Signers = out
	doc.Status = DeriveStatus(*doc)
	return nil
}

// RemoveSlot elimina un firmante que sigue pendiente.
func RemoveSlot(doc *domain.Document, position int) error {
	const op = "workflow.remove_slot"
	if doc.Status.Closed() {
		return NewError(KindDocumentClosed, op, "document is "+string(doc.Status), nil)
	}
	slot := doc.Slot(position)
	if slot == nil {
		return NewError(KindInvalidPosition, op, "no signer at that position", nil)
	}
	if slot.Resolved() {
		return NewError(KindAlreadyResolved, op, "signer already "+string(slot.Status), nil)
	}
	if len(doc.Signers) == 1 {
		return NewError(KindValidation, op, "roster must keep at least one signer", nil)
	}
	sorted := SortedSlots(doc.Signers)
	out := make([]domain.SignerSlot, 0, len(sorted)-1)
	for _, s := range sorted {
		if s.OrderPosition != position {
			out = append(out, s)
		}
	}
	renumber(out)
	doc.Signers = out
	doc.Status = DeriveStatus(*doc)
	return nil
}
