package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/practicanteticPX/DocuPrex-sub000/pkg/domain"
	"github.com/practicanteticPX/DocuPrex-sub000/pkg/ports"
	"github.com/practicanteticPX/DocuPrex-sub000/pkg/workflow"
)

type DocumentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository crea el repositorio SQL de documentos. También
// implementa ports.RosterRepository.
func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Save implementa ports.DocumentRepository.
func (r *DocumentRepository) Save(ctx context.Context, doc *domain.Document) error {
	rec := toDocumentRecord(doc)
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return workflow.NewError(workflow.KindConflict, "postgres.save_document", "document "+doc.ID+" already exists", err)
		}
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

// FindByID implementa ports.DocumentRepository.
func (r *DocumentRepository) FindByID(ctx context.Context, id string) (*domain.Document, error) {
	var rec DocumentRecord
	err := r.db.WithContext(ctx).
		Preload("Signers", func(tx *gorm.DB) *gorm.DB { return tx.Order("order_position") }).
		First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // No encontrado
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find document: %w", err)
	}
	return toDomainDocument(&rec), nil
}

// Update implementa ports.DocumentRepository. Compara la versión y reemplaza
// la lista de firmantes en la misma transacción.
func (r *DocumentRepository) Update(ctx context.Context, doc *domain.Document) error {
	const op = "postgres.update_document"
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&DocumentRecord{}).
			Where("id = ? AND version = ?", doc.ID, doc.Version-1).
			Updates(map[string]any{
				"file_name":        doc.FileName,
				"s3_key":           doc.S3Key,
				"upload_date":      doc.UploadDate.UTC(),
				"status":           string(doc.Status),
				"owner_id":         doc.OwnerID,
				"document_type":    doc.DocumentType,
				"metadata":         datatypes.NewJSONType(doc.Metadata),
				"rejection_reason": doc.RejectionReason,
				"version":          doc.Version,
				"updated_at":       doc.UpdatedAt.UTC(),
			})
		if res.Error != nil {
			return fmt.Errorf("failed to update document: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			exists, err := documentExists(tx, doc.ID)
			if err != nil {
				return err
			}
			if !exists {
				return workflow.NewError(workflow.KindNotFound, op, "document "+doc.ID+" not found", nil)
			}
			return workflow.NewError(workflow.KindConflict, op, "document was modified concurrently", nil)
		}
		return replaceSlots(tx, doc.ID, doc.Signers)
	})
}

// Delete implementa ports.DocumentRepository.
func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", id).Delete(&SignerSlotRecord{}).Error; err != nil {
			return fmt.Errorf("failed to delete signers: %w", err)
		}
		if err := tx.Where("id = ?", id).Delete(&DocumentRecord{}).Error; err != nil {
			return fmt.Errorf("failed to delete document: %w", err)
		}
		return nil
	})
}

// LoadRoster implementa ports.RosterRepository.
func (r *DocumentRepository) LoadRoster(ctx context.Context, documentID string) ([]domain.SignerSlot, error) {
	var records []SignerSlotRecord
	err := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("order_position").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}
	if len(records) == 0 {
		exists, err := documentExists(r.db.WithContext(ctx), documentID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, workflow.NewError(workflow.KindNotFound, "postgres.load_roster", "document "+documentID+" not found", nil)
		}
		return []domain.SignerSlot{}, nil
	}
	return toDomainSlots(records), nil
}

// SaveRoster implementa ports.RosterRepository.
func (r *DocumentRepository) SaveRoster(ctx context.Context, documentID string, slots []domain.SignerSlot) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := documentExists(tx, documentID)
		if err != nil {
			return err
		}
		if !exists {
			return workflow.NewError(workflow.KindNotFound, "postgres.save_roster", "document "+documentID+" not found", nil)
		}
		return replaceSlots(tx, documentID, slots)
	})
}

func documentExists(tx *gorm.DB, id string) (bool, error) {
	var count int64
	if err := tx.Model(&DocumentRecord{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check document: %w", err)
	}
	return count > 0, nil
}

// replaceSlots borra y vuelve a insertar la lista; las posiciones cambian al
// reordenar, así que no se actualiza fila por fila.
func replaceSlots(tx *gorm.DB, documentID string, slots []domain.SignerSlot) error {
	if err := tx.Where("document_id = ?", documentID).Delete(&SignerSlotRecord{}).Error; err != nil {
		return fmt.Errorf("failed to clear signers: %w", err)
	}
	if len(slots) == 0 {
		return nil
	}
	records := toSlotRecords(documentID, slots)
	if err := tx.Create(&records).Error; err != nil {
		return fmt.Errorf("failed to insert signers: %w", err)
	}
	return nil
}

var (
	_ ports.DocumentRepository = (*DocumentRepository)(nil)
	_ ports.RosterRepository   = (*DocumentRepository)(nil)
)
