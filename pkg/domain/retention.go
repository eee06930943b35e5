package domain

import "time"

// ControlRow es una fila de control financiero: la asignación de un centro de
// costo a la posición de un firmante.
type ControlRow struct {
	SlotPosition         int     `json:"slotPosition"`
	CostCenter           string  `json:"costCenter"`
	Description          string  `json:"description,omitempty"`
	AllocationPercentage float64 `json:"allocationPercentage"`
}

type RetentionRecord struct {
	ID                  string    `json:"id"`
	CostCenterSlotIndex int       `json:"costCenterSlotIndex"`
	PercentageRetained  float64   `json:"percentageRetained"`
	Reason              string    `json:"reason"`
	RecordedByActorID   string    `json:"recordedByActorId"`
	RecordedAt          time.Time `json:"recordedAt"`
	Active              bool      `json:"active"`
}

// FinancialMetadata es la porción de metadatos del documento que maneja el flujo.
type FinancialMetadata struct {
	ControlRows []ControlRow      `json:"filasControl,omitempty"`
	Retentions  []RetentionRecord `json:"retenciones,omitempty"`
}
