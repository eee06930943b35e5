package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/practicanteticPX/DocuPrex-sub000/pkg/domain"
)

// ControlRowFor busca la fila de control asignada a la posición del firmante.
func ControlRowFor(fin domain.FinancialMetadata, slotIndex int) (domain.ControlRow, bool) {
	for _, row := range fin.ControlRows {
		if row.SlotPosition == slotIndex {
			return row, true
		}
	}
	return domain.ControlRow{}, false
}

// ActiveRetention devuelve la retención vigente del firmante, si existe.
func ActiveRetention(fin domain.FinancialMetadata, slotIndex int) (domain.RetentionRecord, bool) {
	for i := len(fin.Retentions) - 1; i >= 0; i-- {
		r := fin.Retentions[i]
		if r.CostCenterSlotIndex == slotIndex && r.Active {
			return r, true
		}
	}
	return domain.RetentionRecord{}, false
}

// RecordRetention registra una retención sobre la asignación del firmante. No
// reemplaza la firma: se guarda en los metadatos junto a ella. Las retenciones
// anteriores del mismo firmante quedan inactivas pero se conservan.
func RecordRetention(doc *domain.Document, slotIndex int, percentage float64, reason, actorID string, now time.Time) (domain.RetentionRecord, error) {
	const op = "workflow.record_retention"
	if doc.Slot(slotIndex) == nil {
		return domain.RetentionRecord{}, NewError(KindInvalidPosition, op, "no signer at that position", nil)
	}
	fin, err := DecodeFinancial(doc.Metadata)
	if err != nil {
		return domain.RetentionRecord{}, err
	}
	row, ok := ControlRowFor(fin, slotIndex)
	if !ok {
		return domain.RetentionRecord{}, NewError(KindInvalidPosition, op, "signer has no cost-center allocation", nil)
	}
	if percentage < 1 || percentage > row.AllocationPercentage {
		return domain.RetentionRecord{}, NewError(KindInvalidPercentage, op,
			fmt.Sprintf("percentage must be between 1 and %g", row.AllocationPercentage), nil)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return domain.RetentionRecord{}, NewError(KindInvalidRetentionReason, op, "retention reason is required", nil)
	}

	for i := range fin.Retentions {
		if fin.Retentions[i].CostCenterSlotIndex == slotIndex {
			fin.Retentions[i].Active = false
		}
	}
	rec := domain.RetentionRecord{
		ID:                  uuid.New().String(),
		CostCenterSlotIndex: slotIndex,
		PercentageRetained:  percentage,
		Reason:              reason,
		RecordedByActorID:   actorID,
		RecordedAt:          now.UTC(),
		Active:              true,
	}
	fin.Retentions = append(fin.Retentions, rec)

	meta, err := EncodeFinancial(doc.Metadata, fin)
	if err != nil {
		return domain.RetentionRecord{}, err
	}
	doc.Metadata = meta
	return rec, nil
}
