package workflow

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/practicanteticPX/DocuPrex-sub000/pkg/domain"
)

type TransitionKind string

const (
	TransitionAssign TransitionKind = "assign"
	TransitionSign   TransitionKind = "sign"
	TransitionReject TransitionKind = "reject"
	TransitionDelete TransitionKind = "delete"
)

// Transition describe un cambio ya aplicado sobre el documento.
type Transition struct {
	Kind     TransitionKind
	Document domain.Document // estado después del cambio
	Position int
	By       Attribution
	At       time.Time
}

// TargetExpander convierte un firmante en los usuarios a notificar.
type TargetExpander interface {
	Expand(slot domain.SignerSlot) []string
}

type ExpanderFunc func(slot domain.SignerSlot) []string

func (f ExpanderFunc) Expand(slot domain.SignerSlot) []string { return f(slot) }

// GroupExpander expande grupos con una membresía ya consultada.
type GroupExpander map[string][]string

func (g GroupExpander) Expand(slot domain.SignerSlot) []string {
	if slot.Kind == domain.SlotGroup {
		return g[slot.TargetID]
	}
	return []string{slot.TargetID}
}

// EventsFor traduce una transición en los eventos de notificación a entregar.
// No entrega nada: el que llama decide a quién se los pasa.
func EventsFor(t Transition, expander TargetExpander) []domain.NotificationEvent {
	if expander == nil {
		expander = GroupExpander(nil)
	}
	doc := t.Document
	at := t.At
	if at.IsZero() {
		at = time.Now()
	}
	at = at.UTC()

	newEvent := func(typ domain.EventType, targets targetSet) domain.NotificationEvent {
		ev := domain.NotificationEvent{
			ID:            uuid.New().String(),
			Type:          typ,
			DocumentID:    doc.ID,
			Position:      t.Position,
			ActorID:       t.By.ActorID,
			TargetUserIDs: targets.list(),
			CreatedAt:     at,
		}
		if t.By.ActorName != "" {
			ev.RealActorName = t.By.ActorName
		}
		return ev
	}

	var events []domain.NotificationEvent
	switch t.Kind {
	case TransitionAssign:
		if next, ok := NextActionable(doc.Signers); ok {
			targets := newTargetSet()
			targets.add(expander.Expand(next)...)
			ev := newEvent(domain.EventAssigned, targets)
			ev.Position = next.OrderPosition
			events = append(events, ev)
		}

	case TransitionSign:
		targets := newTargetSet()
		targets.add(doc.OwnerID)
		for _, s := range doc.Signers {
			if s.Status == domain.SlotPending {
				targets.add(expander.Expand(s)...)
			}
		}
		targets.remove(t.By.ActorID, t.By.PrincipalID)
		events = append(events, newEvent(domain.EventSigned, targets))

		if doc.Status == domain.DocumentCompleted {
			all := allSigners(doc, expander)
			all.add(doc.OwnerID)
			ev := newEvent(domain.EventCompleted, all)
			ev.Position = 0
			events = append(events, ev)
		} else if next, ok := NextActionable(doc.Signers); ok {
			nextTargets := newTargetSet()
			nextTargets.add(expander.Expand(next)...)
			ev := newEvent(domain.EventAssigned, nextTargets)
			ev.Position = next.OrderPosition
			events = append(events, ev)
		}

	case TransitionReject:
		targets := allSigners(doc, expander)
		targets.add(doc.OwnerID)
		targets.remove(t.By.ActorID, t.By.PrincipalID)
		events = append(events, newEvent(domain.EventRejected, targets))

	case TransitionDelete:
		targets := allSigners(doc, expander)
		ev := newEvent(domain.EventDeleted, targets)
		ev.Position = 0
		events = append(events, ev)
	}

	out := events[:0]
	for _, ev := range events {
		if len(ev.TargetUserIDs) > 0 {
			out = append(out, ev)
		}
	}
	return out
}

// allSigners reúne a todos los firmantes. Para firmantes resueltos se usa la
// persona que actuó, no el grupo completo.
func allSigners(doc domain.Document, expander TargetExpander) targetSet {
	targets := newTargetSet()
	for _, s := range doc.Signers {
		if s.Resolved() && s.ResolvedActorID != "" {
			targets.add(s.ResolvedActorID)
			continue
		}
		targets.add(expander.Expand(s)...)
	}
	return targets
}

type targetSet map[string]struct{}

func newTargetSet() targetSet { return targetSet{} }

func (t targetSet) add(ids ...string) {
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id != "" {
			t[id] = struct{}{}
		}
	}
}

func (t targetSet) remove(ids ...string) {
	for _, id := range ids {
		delete(t, id)
	}
}

func (t targetSet) list() []string {
	out := make([]string, 0, len(t))
	for id := range t {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
