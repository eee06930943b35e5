package domain

import "time"

// DocumentStatus es el estado derivado de un documento dentro del flujo de firmas.
type DocumentStatus string

const (
	DocumentDraft     DocumentStatus = "draft"
	DocumentPending   DocumentStatus = "pending"
	DocumentCompleted DocumentStatus = "completed"
	DocumentRejected  DocumentStatus = "rejected"
)

// Closed indica si el documento ya no admite cambios en su lista de firmantes.
func (s DocumentStatus) Closed() bool {
	return s == DocumentCompleted || s == DocumentRejected
}

type Document struct {
	ID              string         `json:"id"`
	FileName        string         `json:"fileName"`
	S3Key           string         `json:"s3Key"`
	UploadDate      time.Time      `json:"uploadDate"`
	Status          DocumentStatus `json:"status"`
	OwnerID         string         `json:"ownerId"` // quien subió el documento
	DocumentType    string         `json:"documentType"`
	Signers         []SignerSlot   `json:"signers"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	RejectionReason string         `json:"rejectionReason,omitempty"`
	Version         int            `json:"version"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

// Slot devuelve un puntero al firmante en la posición indicada, o nil.
func (d *Document) Slot(position int) *SignerSlot {
	for i := range d.Signers {
		if d.Signers[i].OrderPosition == position {
			return &d.Signers[i]
		}
	}
	return nil
}

// Clone copia el documento para que las transiciones no muten el snapshot original.
func (d Document) Clone() Document {
	out := d
	out.Signers = make([]SignerSlot, len(d.Signers))
	copy(out.Signers, d.Signers)
	if d.Metadata != nil {
		out.Metadata = make(map[string]any, len(d.Metadata))
		for k, v := range d.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}
