package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/practicanteticPX/DocuPrex-sub000/pkg/domain"
	"github.com/practicanteticPX/DocuPrex-sub000/pkg/ports"
	"github.com/practicanteticPX/DocuPrex-sub000/pkg/workflow"
)

type createDocumentBody struct {
	FileName     string         `json:"fileName"`
	S3Key        string         `json:"s3Key"`
	DocumentType string         `json:"documentType"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

type signersBody struct {
	Signers []domain.SlotSpec `json:"signers"`
}

type addSignerBody struct {
	domain.SlotSpec
	Position int `json:"position"`
}

type reorderBody struct {
	Order []int `json:"order"`
}

// claimBody identifica a la persona real detrás de una cuenta compartida.
type claimBody struct {
	ActorID    string `json:"actorId"`
	LastDigits string `json:"lastDigits,omitempty"`
}

func (c *claimBody) claim() workflow.Claim {
	if c == nil {
		return workflow.Claim{}
	}
	return workflow.Claim{ActorID: c.ActorID, LastDigits: c.LastDigits}
}

type retentionBody struct {
	Percentage float64 `json:"percentage"`
	Reason     string  `json:"reason"`
}

type signBody struct {
	Claim     *claimBody     `json:"claim,omitempty"`
	Retention *retentionBody `json:"retention,omitempty"`
}

type rejectBody struct {
	Claim  *claimBody `json:"claim,omitempty"`
	Reason string     `json:"reason"`
}

type recordRetentionBody struct {
	Claim *claimBody `json:"claim,omitempty"`
	retentionBody
}

func (s *server) createDocument(w http.ResponseWriter, r *http.Request) {
	owner, ok := principal(w, r)
	if !ok {
		return
	}
	var body createDocumentBody
	if err := readJSON(w, r, &body); err != nil {
		writeBadBody(w, err)
		return
	}
	doc, err := s.approval.CreateDocument(r.Context(), domain.Document{
		FileName:     body.FileName,
		S3Key:        body.S3Key,
		DocumentType: body.DocumentType,
		OwnerID:      owner,
		Metadata:     body.Metadata,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (s *server) getDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.approval.GetDocument(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *server) deleteDocument(w http.ResponseWriter, r *http.Request) {
	who, ok := principal(w, r)
	if !ok {
		return
	}
	if err := s.approval.DeleteDocument(r.Context(), chi.URLParam(r, "id"), who); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) assignRoster(w http.ResponseWriter, r *http.Request) {
	who, ok := principal(w, r)
	if !ok {
		return
	}
	var body signersBody
	if err := readJSON(w, r, &body); err != nil {
		writeBadBody(w, err)
		return
	}
	doc, err := s.approval.AssignRoster(r.Context(), chi.URLParam(r, "id"), who, body.Signers)
	s.respondDocument(w, r, doc, err)
}

func (s *server) addSigner(w http.ResponseWriter, r *http.Request) {
	who, ok := principal(w, r)
	if !ok {
		return
	}
	var body addSignerBody
	if err := readJSON(w, r, &body); err != nil {
		writeBadBody(w, err)
		return
	}
	doc, err := s.approval.AddSigner(r.Context(), chi.URLParam(r, "id"), who, body.SlotSpec, body.Position)
	s.respondDocument(w, r, doc, err)
}

func (s *server) removeSigner(w http.ResponseWriter, r *http.Request) {
	who, ok := principal(w, r)
	if !ok {
		return
	}
	pos, ok := positionParam(w, r)
	if !ok {
		return
	}
	doc, err := s.approval.RemoveSigner(r.Context(), chi.URLParam(r, "id"), who, pos)
	s.respondDocument(w, r, doc, err)
}

func (s *server) reorder(w http.ResponseWriter, r *http.Request) {
	who, ok := principal(w, r)
	if !ok {
		return
	}
	var body reorderBody
	if err := readJSON(w, r, &body); err != nil {
		writeBadBody(w, err)
		return
	}
	doc, err := s.approval.Reorder(r.Context(), chi.URLParam(r, "id"), who, body.Order)
	s.respondDocument(w, r, doc, err)
}

func (s *server) canAct(w http.ResponseWriter, r *http.Request) {
	pos, ok := positionParam(w, r)
	if !ok {
		return
	}
	actionable, err := s.approval.CanAct(r.Context(), chi.URLParam(r, "id"), pos)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"position": pos, "actionable": actionable})
}

func (s *server) sign(w http.ResponseWriter, r *http.Request) {
	who, ok := principal(w, r)
	if !ok {
		return
	}
	pos, ok := positionParam(w, r)
	if !ok {
		return
	}
	var body signBody
	if err := readJSON(w, r, &body); err != nil {
		writeBadBody(w, err)
		return
	}
	req := ports.SignRequest{
		DocumentID:  chi.URLParam(r, "id"),
		Position:    pos,
		PrincipalID: who,
		Claim:       body.Claim.claim(),
	}
	if body.Retention != nil {
		req.Retention = &ports.RetentionInput{Percentage: body.Retention.Percentage, Reason: body.Retention.Reason}
	}
	doc, err := s.approval.Sign(r.Context(), req)
	s.respondDocument(w, r, doc, err)
}

func (s *server) reject(w http.ResponseWriter, r *http.Request) {
	who, ok := principal(w, r)
	if !ok {
		return
	}
	pos, ok := positionParam(w, r)
	if !ok {
		return
	}
	var body rejectBody
	if err := readJSON(w, r, &body); err != nil {
		writeBadBody(w, err)
		return
	}
	doc, err := s.approval.Reject(r.Context(), ports.RejectRequest{
		DocumentID:  chi.URLParam(r, "id"),
		Position:    pos,
		PrincipalID: who,
		Claim:       body.Claim.claim(),
		Reason:      body.Reason,
	})
	s.respondDocument(w, r, doc, err)
}

func (s *server) recordRetention(w http.ResponseWriter, r *http.Request) {
	who, ok := principal(w, r)
	if !ok {
		return
	}
	pos, ok := positionParam(w, r)
	if !ok {
		return
	}
	var body recordRetentionBody
	if err := readJSON(w, r, &body); err != nil {
		writeBadBody(w, err)
		return
	}
	rec, err := s.approval.RecordRetention(r.Context(), ports.RetentionRequest{
		DocumentID:     chi.URLParam(r, "id"),
		Position:       pos,
		PrincipalID:    who,
		Claim:          body.Claim.claim(),
		RetentionInput: ports.RetentionInput{Percentage: body.Percentage, Reason: body.Reason},
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *server) respondDocument(w http.ResponseWriter, r *http.Request, doc *domain.Document, err error) {
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if workflow.KindOf(err) == "" {
		s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeServiceError(w, err)
}
