package domain

import "time"

type SlotKind string

const (
	SlotIndividual SlotKind = "individual"
	SlotGroup      SlotKind = "group"
)

func (k SlotKind) Valid() bool {
	return k == SlotIndividual || k == SlotGroup
}

type SlotStatus string

const (
	SlotPending  SlotStatus = "pending"
	SlotSigned   SlotStatus = "signed"
	SlotRejected SlotStatus = "rejected"
)

// SignerSlot es una posición de la lista ordenada de firmantes de un documento.
// TargetID es un ID de usuario para firmantes individuales y un código de grupo
// para firmantes de grupo.
type SignerSlot struct {
	OrderPosition         int        `json:"orderPosition"`
	Kind                  SlotKind   `json:"kind"`
	TargetID              string     `json:"targetId"`
	RoleLabel             string     `json:"roleLabel,omitempty"`
	Status                SlotStatus `json:"status"`
	ResolvedActorID       string     `json:"resolvedActorId,omitempty"`
	ResolvedByPrincipalID string     `json:"resolvedByPrincipalId,omitempty"`
	ResolvedAt            *time.Time `json:"resolvedAt,omitempty"`
	RejectionReason       string     `json:"rejectionReason,omitempty"`
}

func (s SignerSlot) Resolved() bool {
	return s.Status != SlotPending
}

// SlotSpec describe un firmante al momento de asignar o editar la lista.
type SlotSpec struct {
	Kind      SlotKind `json:"kind"`
	TargetID  string   `json:"targetId"`
	RoleLabel string   `json:"roleLabel,omitempty"`
}
