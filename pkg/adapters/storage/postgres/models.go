package postgres

import (
	"time"

	"gorm.io/datatypes"

	"github.com/practicanteticPX/DocuPrex-sub000/pkg/domain"
)

type DocumentRecord struct {
	ID              string                             `gorm:"primaryKey;size:64"`
	FileName        string                             `gorm:"size:255"`
	S3Key           string                             `gorm:"size:512"`
	UploadDate      time.Time                          `gorm:"not null"`
	Status          string                             `gorm:"size:16;index"`
	OwnerID         string                             `gorm:"size:64;index"`
	DocumentType    string                             `gorm:"size:64"`
	Metadata        datatypes.JSONType[map[string]any] `gorm:"type:jsonb"`
	RejectionReason string                             `gorm:"type:text"`
	Version         int                                `gorm:"not null"`
	UpdatedAt       time.Time                          `gorm:"autoUpdateTime:false"`
	Signers         []SignerSlotRecord                 `gorm:"foreignKey:DocumentID"`
}

func (DocumentRecord) TableName() string { return "documents" }

// SignerSlotRecord es una fila por firmante; la clave es (documento, posición).
type SignerSlotRecord struct {
	DocumentID            string `gorm:"primaryKey;size:64"`
	OrderPosition         int    `gorm:"primaryKey"`
	Kind                  string `gorm:"size:16"`
	TargetID              string `gorm:"size:64;index"`
	RoleLabel             string `gorm:"size:128"`
	Status                string `gorm:"size:16"`
	ResolvedActorID       string `gorm:"size:64"`
	ResolvedByPrincipalID string `gorm:"size:64"`
	ResolvedAt            *time.Time
	RejectionReason       string `gorm:"type:text"`
}

func (SignerSlotRecord) TableName() string { return "document_signers" }

type EmployeeRecord struct {
	ID           string `gorm:"primaryKey;size:64"`
	Name         string `gorm:"size:255"`
	Email        string `gorm:"size:255"`
	Status       string `gorm:"size:32"`
	LinkDate     time.Time
	Cargo        string `gorm:"size:128"`
	IDLastDigits string `gorm:"size:16"`
}

func (EmployeeRecord) TableName() string { return "employees" }

type GroupRecord struct {
	Code        string              `gorm:"primaryKey;size:64"`
	Name        string              `gorm:"size:255"`
	Description string              `gorm:"type:text"`
	Members     []GroupMemberRecord `gorm:"foreignKey:GroupCode"`
}

func (GroupRecord) TableName() string { return "signer_groups" }

type GroupMemberRecord struct {
	GroupCode    string `gorm:"primaryKey;size:64"`
	MemberUserID string `gorm:"primaryKey;size:64"`
	DisplayCargo string `gorm:"size:128"`
}

func (GroupMemberRecord) TableName() string { return "signer_group_members" }

func toDocumentRecord(doc *domain.Document) *DocumentRecord {
	return &DocumentRecord{
		ID:              doc.ID,
		FileName:        doc.FileName,
		S3Key:           doc.S3Key,
		UploadDate:      doc.UploadDate.UTC(),
		Status:          string(doc.Status),
		OwnerID:         doc.OwnerID,
		DocumentType:    doc.DocumentType,
		Metadata:        datatypes.NewJSONType(doc.Metadata),
		RejectionReason: doc.RejectionReason,
		Version:         doc.Version,
		UpdatedAt:       doc.UpdatedAt.UTC(),
		Signers:         toSlotRecords(doc.ID, doc.Signers),
	}
}

func toSlotRecords(documentID string, slots []domain.SignerSlot) []SignerSlotRecord {
	records := make([]SignerSlotRecord, len(slots))
	for i, s := range slots {
		records[i] = SignerSlotRecord{
			DocumentID:            documentID,
			OrderPosition:         s.OrderPosition,
			Kind:                  string(s.Kind),
			TargetID:              s.TargetID,
			RoleLabel:             s.RoleLabel,
			Status:                string(s.Status),
			ResolvedActorID:       s.ResolvedActorID,
			ResolvedByPrincipalID: s.ResolvedByPrincipalID,
			RejectionReason:       s.RejectionReason,
		}
		if s.ResolvedAt != nil {
			at := s.ResolvedAt.UTC()
			records[i].ResolvedAt = &at
		}
	}
	return records
}

func toDomainDocument(rec *DocumentRecord) *domain.Document {
	return &domain.Document{
		ID:              rec.ID,
		FileName:        rec.FileName,
		S3Key:           rec.S3Key,
		UploadDate:      rec.UploadDate.UTC(),
		Status:          domain.DocumentStatus(rec.Status),
		OwnerID:         rec.OwnerID,
		DocumentType:    rec.DocumentType,
		Signers:         toDomainSlots(rec.Signers),
		Metadata:        rec.Metadata.Data(),
		RejectionReason: rec.RejectionReason,
		Version:         rec.Version,
		UpdatedAt:       rec.UpdatedAt.UTC(),
	}
}

func toDomainSlots(records []SignerSlotRecord) []domain.SignerSlot {
	slots := make([]domain.SignerSlot, len(records))
	for i, r := range records {
		slots[i] = domain.SignerSlot{
			OrderPosition:         r.OrderPosition,
			Kind:                  domain.SlotKind(r.Kind),
			TargetID:              r.TargetID,
			RoleLabel:             r.RoleLabel,
			Status:                domain.SlotStatus(r.Status),
			ResolvedActorID:       r.ResolvedActorID,
			ResolvedByPrincipalID: r.ResolvedByPrincipalID,
			RejectionReason:       r.RejectionReason,
		}
		if r.ResolvedAt != nil {
			at := r.ResolvedAt.UTC()
			slots[i].ResolvedAt = &at
		}
	}
	return slots
}
