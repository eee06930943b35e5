package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/practicanteticPX/DocuPrex-sub000/pkg/domain"
	"github.com/practicanteticPX/DocuPrex-sub000/pkg/logger"
	"github.com/practicanteticPX/DocuPrex-sub000/pkg/ports"
	"github.com/practicanteticPX/DocuPrex-sub000/pkg/workflow"
)

// ApprovalDeps agrupa los colaboradores del servicio de aprobación. Observer y
// Limiter son opcionales.
type ApprovalDeps struct {
	Documents  ports.DocumentRepository
	Rosters    ports.RosterRepository
	Groups     ports.GroupDirectory
	Identities ports.IdentityRegistry
	Dispatcher *Dispatcher
	Observer   ports.OperationObserver
	Limiter    ports.ChallengeLimiter
	Log        *logger.Logger
	Clock      func() time.Time
}

type approvalService struct {
	docs       ports.DocumentRepository
	rosters    ports.RosterRepository
	groups     ports.GroupDirectory
	identities ports.IdentityRegistry
	dispatcher *Dispatcher
	observer   ports.OperationObserver
	limiter    ports.ChallengeLimiter
	log        *logger.Logger
	clock      func() time.Time
	locks      *docLocks
}

// NewApprovalService crea una nueva instancia de ApprovalService
func NewApprovalService(deps ApprovalDeps) ports.ApprovalService {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &approvalService{
		docs:       deps.Documents,
		rosters:    deps.Rosters,
		groups:     deps.Groups,
		identities: deps.Identities,
		dispatcher: deps.Dispatcher,
		observer:   deps.Observer,
		limiter:    deps.Limiter,
		log:        log.With("service", "approval"),
		clock:      clock,
		locks:      newDocLocks(),
	}
}

// CreateDocument implementa ports.ApprovalService.
func (s *approvalService) CreateDocument(ctx context.Context, doc domain.Document) (_ *domain.Document, err error) {
	const op = "services.create_document"
	defer s.observe(op, time.Now(), &err)

	if strings.TrimSpace(doc.OwnerID) == "" {
		return nil, workflow.NewError(workflow.KindValidation, op, "ownerId is required", nil)
	}
	if len(doc.Signers) > 0 {
		return nil, workflow.NewError(workflow.KindValidation, op, "signers are assigned through AssignRoster", nil)
	}
	if _, err := workflow.DecodeFinancial(doc.Metadata); err != nil {
		return nil, err
	}

	now := s.clock().UTC()
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.UploadDate.IsZero() {
		doc.UploadDate = now
	}
	doc.Status = domain.DocumentDraft
	doc.RejectionReason = ""
	doc.Version = 1
	doc.UpdatedAt = now

	if err := s.docs.Save(ctx, &doc); err != nil {
		return nil, fmt.Errorf("failed to save document: %w", err)
	}
	s.log.Info("document created", "document_id", doc.ID, "owner_id", doc.OwnerID)
	return &doc, nil
}

// GetDocument implementa ports.ApprovalService.
func (s *approvalService) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	return s.load(ctx, "services.get_document", id)
}

// AssignRoster implementa ports.ApprovalService.
func (s *approvalService) AssignRoster(ctx context.Context, documentID, principalID string, specs []domain.SlotSpec) (*domain.Document, error) {
	const op = "services.assign_roster"
	return s.mutate(ctx, op, documentID, func(doc *domain.Document, now time.Time) (*workflow.Transition, error) {
		if err := requireOwner(op, *doc, principalID); err != nil {
			return nil, err
		}
		if err := workflow.AssignRoster(doc, specs); err != nil {
			return nil, err
		}
		return &workflow.Transition{
			Kind: workflow.TransitionAssign,
			By:   workflow.Attribution{PrincipalID: principalID, ActorID: principalID},
			At:   now,
		}, nil
	})
}

// CanAct implementa ports.ApprovalService. Consulta una foto de la lista sin
// tomar el candado; las mutaciones vuelven a validar el turno.
func (s *approvalService) CanAct(ctx context.Context, documentID string, position int) (bool, error) {
	roster, err := s.rosters.LoadRoster(ctx, documentID)
	if err != nil {
		return false, fmt.Errorf("failed to load roster: %w", err)
	}
	return workflow.IsActionable(roster, position), nil
}

// Sign implementa ports.ApprovalService.
func (s *approvalService) Sign(ctx context.Context, req ports.SignRequest) (*domain.Document, error) {
	const op = "services.sign"
	return s.mutate(ctx, op, req.DocumentID, func(doc *domain.Document, now time.Time) (*workflow.Transition, error) {
		by, err := s.actorFor(ctx, *doc, req.Position, req.PrincipalID, req.Claim, now)
		if err != nil {
			return nil, err
		}
		if req.Retention != nil {
			record, err := workflow.RecordRetention(doc, req.Position, req.Retention.Percentage, req.Retention.Reason, by.ActorID, now)
			if err != nil {
				return nil, err
			}
			s.log.Info("retention recorded", "document_id", doc.ID, "position", req.Position, "retention_id", record.ID)
		}
		if err := workflow.Sign(doc, req.Position, by, now); err != nil {
			return nil, err
		}
		return &workflow.Transition{Kind: workflow.TransitionSign, Position: req.Position, By: by, At: now}, nil
	})
}

// Reject implementa ports.ApprovalService.
func (s *approvalService) Reject(ctx context.Context, req ports.RejectRequest) (*domain.Document, error) {
	const op = "services.reject"
	return s.mutate(ctx, op, req.DocumentID, func(doc *domain.Document, now time.Time) (*workflow.Transition, error) {
		by, err := s.actorFor(ctx, *doc, req.Position, req.PrincipalID, req.Claim, now)
		if err != nil {
			return nil, err
		}
		if err := workflow.Reject(doc, req.Position, by, req.Reason, now); err != nil {
			return nil, err
		}
		return &workflow.Transition{Kind: workflow.TransitionReject, Position: req.Position, By: by, At: now}, nil
	})
}

// RecordRetention implementa ports.ApprovalService. Solo el firmante en turno
// puede registrar una retención sobre su propia fila de control.
func (s *approvalService) RecordRetention(ctx context.Context, req ports.RetentionRequest) (*domain.RetentionRecord, error) {
	const op = "services.record_retention"
	var record domain.RetentionRecord
	_, err := s.mutate(ctx, op, req.DocumentID, func(doc *domain.Document, now time.Time) (*workflow.Transition, error) {
		by, err := s.actorFor(ctx, *doc, req.Position, req.PrincipalID, req.Claim, now)
		if err != nil {
			return nil, err
		}
		record, err = workflow.RecordRetention(doc, req.Position, req.Percentage, req.Reason, by.ActorID, now)
		return nil, err
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Reorder implementa ports.ApprovalService.
func (s *approvalService) Reorder(ctx context.Context, documentID, principalID string, newOrder []int) (*domain.Document, error) {
	const op = "services.reorder"
	return s.mutate(ctx, op, documentID, func(doc *domain.Document, now time.Time) (*workflow.Transition, error) {
		if err := requireOwner(op, *doc, principalID); err != nil {
			return nil, err
		}
		before, hadTurn := workflow.NextActionable(doc.Signers)
		if err := workflow.Reorder(doc, newOrder); err != nil {
			return nil, err
		}
		return turnChange(before, hadTurn, *doc, principalID, now), nil
	})
}

// AddSigner implementa ports.ApprovalService.
func (s *approvalService) AddSigner(ctx context.Context, documentID, principalID string, spec domain.SlotSpec, position int) (*domain.Document, error) {
	const op = "services.add_signer"
	return s.mutate(ctx, op, documentID, func(doc *domain.Document, now time.Time) (*workflow.Transition, error) {
		if err := requireOwner(op, *doc, principalID); err != nil {
			return nil, err
		}
		before, hadTurn := workflow.NextActionable(doc.Signers)
		if err := workflow.AddSlot(doc, spec, position); err != nil {
			return nil, err
		}
		return turnChange(before, hadTurn, *doc, principalID, now), nil
	})
}

// RemoveSigner implementa ports.ApprovalService.
func (s *approvalService) RemoveSigner(ctx context.Context, documentID, principalID string, position int) (*domain.Document, error) {
	const op = "services.remove_signer"
	return s.mutate(ctx, op, documentID, func(doc *domain.Document, now time.Time) (*workflow.Transition, error) {
		if err := requireOwner(op, *doc, principalID); err != nil {
			return nil, err
		}
		before, hadTurn := workflow.NextActionable(doc.Signers)
		if err := workflow.RemoveSlot(doc, position); err != nil {
			return nil, err
		}
		return turnChange(before, hadTurn, *doc, principalID, now), nil
	})
}

// DeleteDocument implementa ports.ApprovalService.
func (s *approvalService) DeleteDocument(ctx context.Context, documentID, principalID string) (err error) {
	const op = "services.delete_document"
	defer s.observe(op, time.Now(), &err)

	unlock := s.locks.lock(documentID)
	defer unlock()

	doc, err := s.load(ctx, op, documentID)
	if err != nil {
		return err
	}
	if err := requireOwner(op, *doc, principalID); err != nil {
		return err
	}
	if err := s.docs.Delete(ctx, documentID); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	s.log.Info("document deleted", "document_id", documentID)
	s.emit(workflow.Transition{
		Kind:     workflow.TransitionDelete,
		Document: *doc,
		By:       workflow.Attribution{PrincipalID: principalID, ActorID: principalID},
		At:       s.clock(),
	})
	return nil
}

// mutate carga el documento bajo su candado, aplica fn sobre una copia y la
// guarda con la versión siguiente. Si fn devuelve una transición, sus eventos
// se despachan después de guardar.
func (s *approvalService) mutate(ctx context.Context, op, documentID string, fn func(doc *domain.Document, now time.Time) (*workflow.Transition, error)) (_ *domain.Document, err error) {
	defer s.observe(op, time.Now(), &err)

	unlock := s.locks.lock(documentID)
	defer unlock()

	current, err := s.load(ctx, op, documentID)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	next := current.Clone()
	transition, err := fn(&next, now)
	if err != nil {
		s.log.Debug("operation refused", "op", op, "document_id", documentID, "kind", workflow.KindOf(err), "error", err)
		return nil, err
	}

	next.Version = current.Version + 1
	next.UpdatedAt = now.UTC()
	if err := s.docs.Update(ctx, &next); err != nil {
		if workflow.IsKind(err, workflow.KindConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update document: %w", err)
	}
	s.log.Info("document updated", "op", op, "document_id", next.ID, "status", next.Status, "version", next.Version)

	if transition != nil {
		transition.Document = next.Clone()
		s.emit(*transition)
	}
	return &next, nil
}

func (s *approvalService) load(ctx context.Context, op, id string) (*domain.Document, error) {
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find document by ID: %w", err)
	}
	if doc == nil {
		return nil, workflow.NewError(workflow.KindNotFound, op, "document "+id+" not found", nil)
	}
	return doc, nil
}

// actorFor valida el turno y decide quién actúa en el firmante. Para grupos
// consulta la membresía vigente y los dígitos registrados del actor reclamado.
// El nombre del actor siempre sale del registro de identidad.
func (s *approvalService) actorFor(ctx context.Context, doc domain.Document, position int, principalID string, claim workflow.Claim, now time.Time) (workflow.Attribution, error) {
	by, err := s.attribute(ctx, doc, position, principalID, claim, now)
	if err != nil {
		return workflow.Attribution{}, err
	}
	name, err := s.identities.LookupName(ctx, by.ActorID)
	if err != nil {
		return workflow.Attribution{}, fmt.Errorf("failed to lookup actor name: %w", err)
	}
	by.ActorName = name
	return by, nil
}

func (s *approvalService) attribute(ctx context.Context, doc domain.Document, position int, principalID string, claim workflow.Claim, now time.Time) (workflow.Attribution, error) {
	if err := workflow.CheckTurn(doc, position); err != nil {
		return workflow.Attribution{}, err
	}
	slot := *doc.Slot(position)
	if slot.Kind != domain.SlotGroup {
		return workflow.Attribute(slot, principalID, claim, nil, "")
	}

	actorID := strings.TrimSpace(claim.ActorID)
	if actorID != "" && s.limiter != nil && !s.limiter.Allow(actorID, now) {
		return workflow.Attribution{}, workflow.NewError(workflow.KindTooManyAttempts, "services.attribute", "too many identity attempts for "+actorID, nil)
	}

	members, err := s.groups.LoadGroupMembers(ctx, slot.TargetID)
	if err != nil {
		return workflow.Attribution{}, fmt.Errorf("failed to load group members: %w", err)
	}
	eligible := workflow.ResolveEligibleActors(slot, members)

	var digits string
	if actorID != "" && containsID(eligible, actorID) {
		digits, err = s.identities.LookupLastDigits(ctx, actorID)
		if err != nil {
			return workflow.Attribution{}, fmt.Errorf("failed to lookup identity digits: %w", err)
		}
	}
	by, err := workflow.Attribute(slot, principalID, claim, eligible, digits)
	if err != nil {
		s.log.Warn("group attribution refused",
			"document_id", doc.ID,
			"position", position,
			"group", slot.TargetID,
			"principal_id", principalID,
			"actor_id", actorID,
			"kind", workflow.KindOf(err),
		)
	}
	return by, err
}

// emit calcula y entrega los eventos de la transición en segundo plano. Los
// grupos se expanden con su membresía al momento del envío.
func (s *approvalService) emit(t workflow.Transition) {
	s.dispatcher.Dispatch(t.Document.ID, func(ctx context.Context) []domain.NotificationEvent {
		expander := workflow.GroupExpander{}
		for _, slot := range t.Document.Signers {
			if slot.Kind != domain.SlotGroup {
				continue
			}
			if _, seen := expander[slot.TargetID]; seen {
				continue
			}
			members, err := s.groups.LoadGroupMembers(ctx, slot.TargetID)
			if err != nil {
				s.log.Warn("failed to expand group for notification", "group", slot.TargetID, "error", err)
				continue
			}
			expander[slot.TargetID] = workflow.ResolveEligibleActors(slot, members)
		}
		return workflow.EventsFor(t, expander)
	})
}

func (s *approvalService) observe(op string, start time.Time, errp *error) {
	if s.observer == nil {
		return
	}
	outcome := "ok"
	if errp != nil && *errp != nil {
		outcome = string(workflow.KindOf(*errp))
		if outcome == "" {
			outcome = "error"
		}
	}
	s.observer.ObserveOperation(op, outcome, time.Since(start))
}

func requireOwner(op string, doc domain.Document, principalID string) error {
	if strings.TrimSpace(principalID) == "" || principalID != doc.OwnerID {
		return workflow.NewError(workflow.KindNotAuthorized, op, "only the uploader can manage the signer list", nil)
	}
	return nil
}

// turnChange devuelve una transición de asignación si la edición cambió a
// quién le toca firmar.
func turnChange(before domain.SignerSlot, hadTurn bool, doc domain.Document, principalID string, now time.Time) *workflow.Transition {
	after, hasTurn := workflow.NextActionable(doc.Signers)
	if !hasTurn {
		return nil
	}
	if hadTurn && before.Kind == after.Kind && before.TargetID == after.TargetID {
		return nil
	}
	return &workflow.Transition{
		Kind: workflow.TransitionAssign,
		By:   workflow.Attribution{PrincipalID: principalID, ActorID: principalID},
		At:   now,
	}
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Asegurarse de que approvalService implementa ports.ApprovalService
var _ ports.ApprovalService = (*approvalService)(nil)
