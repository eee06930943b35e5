package memory

import (
	"context"
	"sync"

	"github.com/practicanteticPX/DocuPrex-sub000/pkg/domain"
	"github.com/practicanteticPX/DocuPrex-sub000/pkg/ports"
	"github.com/practicanteticPX/DocuPrex-sub000/pkg/workflow"
)

// DocumentStore guarda documentos en memoria. Sirve para desarrollo local y pruebas.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]domain.Document
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]domain.Document)}
}

// Save implementa ports.DocumentRepository.
func (s *DocumentStore) Save(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.docs[doc.ID]; exists {
		return workflow.NewError(workflow.KindConflict, "memory.save_document", "document "+doc.ID+" already exists", nil)
	}
	s.docs[doc.ID] = doc.Clone()
	return nil
}

// FindByID implementa ports.DocumentRepository.
func (s *DocumentStore) FindByID(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, nil // No encontrado
	}
	out := doc.Clone()
	return &out, nil
}

// Update implementa ports.DocumentRepository.
func (s *DocumentStore) Update(_ context.Context, doc *domain.Document) error {
	const op = "memory.update_document"
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.docs[doc.ID]
	if !ok {
		return workflow.NewError(workflow.KindNotFound, op, "document "+doc.ID+" not found", nil)
	}
	if current.Version != doc.Version-1 {
		return workflow.NewError(workflow.KindConflict, op, "document was modified concurrently", nil)
	}
	s.docs[doc.ID] = doc.Clone()
	return nil
}

// Delete implementa ports.DocumentRepository.
func (s *DocumentStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
	return nil
}

// LoadRoster implementa ports.RosterRepository.
func (s *DocumentStore) LoadRoster(_ context.Context, documentID string) ([]domain.SignerSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[documentID]
	if !ok {
		return nil, workflow.NewError(workflow.KindNotFound, "memory.load_roster", "document "+documentID+" not found", nil)
	}
	return doc.Clone().Signers, nil
}

// SaveRoster implementa ports.RosterRepository.
func (s *DocumentStore) SaveRoster(_ context.Context, documentID string, slots []domain.SignerSlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[documentID]
	if !ok {
		return workflow.NewError(workflow.KindNotFound, "memory.save_roster", "document "+documentID+" not found", nil)
	}
	doc = doc.Clone()
	doc.Signers = append([]domain.SignerSlot(nil), slots...)
	s.docs[documentID] = doc
	return nil
}

var (
	_ ports.DocumentRepository = (*DocumentStore)(nil)
	_ ports.RosterRepository   = (*DocumentStore)(nil)
)
