package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/practicanteticPX/DocuPrex-sub000/pkg/adapters/storage/memory"
	"github.com/practicanteticPX/DocuPrex-sub000/pkg/domain"
	"github.com/practicanteticPX/DocuPrex-sub000/pkg/ports"
	"github.com/practicanteticPX/DocuPrex-sub000/pkg/ratelimiter"
	"github.com/practicanteticPX/DocuPrex-sub000/pkg/workflow"
)

var fixedNow = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.NotificationEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev domain.NotificationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) take() []domain.NotificationEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.events
	p.events = nil
	return out
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes map[string][]string
	events   map[domain.EventType]int
}

func (o *recordingObserver) ObserveOperation(op, outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.outcomes == nil {
		o.outcomes = map[string][]string{}
	}
	o.outcomes[op] = append(o.outcomes[op], outcome)
}

func (o *recordingObserver) ObserveEvent(t domain.EventType, _ error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.events == nil {
		o.events = map[domain.EventType]int{}
	}
	o.events[t]++
}

type fixture struct {
	svc        ports.ApprovalService
	docs       *memory.DocumentStore
	groups     *memory.GroupStore
	publisher  *recordingPublisher
	observer   *recordingObserver
	dispatcher *Dispatcher
}

func newFixture(t *testing.T, limiter ports.ChallengeLimiter) *fixture {
	t.Helper()
	f := &fixture{
		docs: memory.NewDocumentStore(),
		groups: memory.NewGroupStore(domain.Group{
			Code:    "finanzas",
			Name:    "Finanzas",
			Members: []domain.GroupMember{{MemberUserID: "luis"}, {MemberUserID: "maria"}},
		}),
		publisher: &recordingPublisher{},
		observer:  &recordingObserver{},
	}
	employees := memory.NewEmployeeStore(
		domain.Employee{ID: "luis", Name: "Luis Pérez", IDLastDigits: "1234"},
		domain.Employee{ID: "maria", Name: "María Gómez", IDLastDigits: "5678"},
		domain.Employee{ID: "carlos", Name: "Carlos Ruiz"},
	)
	f.dispatcher = NewDispatcher(f.publisher, f.observer, nil, time.Second)
	f.svc = NewApprovalService(ApprovalDeps{
		Documents:  f.docs,
		Rosters:    f.docs,
		Groups:     f.groups,
		Identities: employees,
		Dispatcher: f.dispatcher,
		Observer:   f.observer,
		Limiter:    limiter,
		Clock:      func() time.Time { return fixedNow },
	})
	return f
}

// pendingDoc crea un documento con la lista ana → finanzas → carlos.
func (f *fixture) pendingDoc(t *testing.T) *domain.Document {
	t.Helper()
	ctx := context.Background()
	doc, err := f.svc.CreateDocument(ctx, domain.Document{FileName: "factura.pdf", OwnerID: "owner"})
	require.NoError(t, err)
	doc, err = f.svc.AssignRoster(ctx, doc.ID, "owner", []domain.SlotSpec{
		{TargetID: "ana"},
		{Kind: domain.SlotGroup, TargetID: "finanzas", RoleLabel: "Aprobación financiera"},
		{TargetID: "carlos"},
	})
	require.NoError(t, err)
	f.dispatcher.Wait()
	f.publisher.take()
	return doc
}

func eventTypes(events []domain.NotificationEvent) []domain.EventType {
	out := make([]domain.EventType, len(events))
	for i, ev := range events {
		out[i] = ev.Type
	}
	return out
}

func luisClaim() workflow.Claim {
	return workflow.Claim{ActorID: "luis", LastDigits: "1234"}
}

func TestCreateDocument(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	doc, err := f.svc.CreateDocument(ctx, domain.Document{FileName: "a.pdf", OwnerID: "owner", Status: domain.DocumentCompleted})
	require.NoError(t, err)
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, domain.DocumentDraft, doc.Status)
	assert.Equal(t, 1, doc.Version)
	assert.Equal(t, fixedNow, doc.UploadDate)

	_, err = f.svc.CreateDocument(ctx, domain.Document{FileName: "a.pdf"})
	assert.True(t, workflow.IsKind(err, workflow.KindValidation))

	_, err = f.svc.GetDocument(ctx, "missing")
	assert.True(t, workflow.IsKind(err, workflow.KindNotFound))
}

func TestApprovalFlowToCompletion(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	doc, err := f.svc.CreateDocument(ctx, domain.Document{FileName: "factura.pdf", OwnerID: "owner"})
	require.NoError(t, err)
	doc, err = f.svc.AssignRoster(ctx, doc.ID, "owner", []domain.SlotSpec{
		{TargetID: "ana"},
		{Kind: domain.SlotGroup, TargetID: "finanzas"},
		{TargetID: "carlos"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentPending, doc.Status)

	f.dispatcher.Wait()
	events := f.publisher.take()
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventAssigned, events[0].Type)
	assert.Equal(t, []string{"ana"}, events[0].TargetUserIDs)

	can, err := f.svc.CanAct(ctx, doc.ID, 1)
	require.NoError(t, err)
	assert.True(t, can)
	can, err = f.svc.CanAct(ctx, doc.ID, 2)
	require.NoError(t, err)
	assert.False(t, can)

	_, err = f.svc.Sign(ctx, ports.SignRequest{DocumentID: doc.ID, Position: 1, PrincipalID: "ana"})
	require.NoError(t, err)
	f.dispatcher.Wait()
	events = f.publisher.take()
	assert.Equal(t, []domain.EventType{domain.EventSigned, domain.EventAssigned}, eventTypes(events))
	assert.Equal(t, []string{"luis", "maria"}, events[1].TargetUserIDs)

	doc, err = f.svc.Sign(ctx, ports.SignRequest{DocumentID: doc.ID, Position: 2, PrincipalID: "finanzas-shared", Claim: luisClaim()})
	require.NoError(t, err)
	slot := doc.Slot(2)
	assert.Equal(t, "luis", slot.ResolvedActorID)
	assert.Equal(t, "finanzas-shared", slot.ResolvedByPrincipalID)
	f.dispatcher.Wait()
	events = f.publisher.take()
	require.Len(t, events, 2)
	assert.Equal(t, "Luis Pérez", events[0].RealActorName)
	assert.Equal(t, []string{"carlos", "owner"}, events[0].TargetUserIDs)

	doc, err = f.svc.Sign(ctx, ports.SignRequest{DocumentID: doc.ID, Position: 3, PrincipalID: "carlos"})
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentCompleted, doc.Status)
	assert.Equal(t, 5, doc.Version)

	f.dispatcher.Wait()
	events = f.publisher.take()
	assert.Equal(t, []domain.EventType{domain.EventSigned, domain.EventCompleted}, eventTypes(events))
	assert.Equal(t, []string{"ana", "carlos", "luis", "owner"}, events[1].TargetUserIDs)

	f.observer.mu.Lock()
	defer f.observer.mu.Unlock()
	assert.Equal(t, []string{"ok", "ok", "ok"}, f.observer.outcomes["services.sign"])
	assert.Equal(t, 1, f.observer.events[domain.EventCompleted])
}

func TestSignOutOfTurn(t *testing.T) {
	f := newFixture(t, nil)
	doc := f.pendingDoc(t)

	_, err := f.svc.Sign(context.Background(), ports.SignRequest{DocumentID: doc.ID, Position: 3, PrincipalID: "carlos"})
	assert.True(t, workflow.IsKind(err, workflow.KindNotActionable))

	_, err = f.svc.Sign(context.Background(), ports.SignRequest{DocumentID: doc.ID, Position: 1, PrincipalID: "carlos"})
	assert.True(t, workflow.IsKind(err, workflow.KindNotAuthorized))

	got, err := f.svc.GetDocument(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.Version, got.Version)
}

func TestConcurrentDuplicateSign(t *testing.T) {
	f := newFixture(t, nil)
	doc := f.pendingDoc(t)

	const attempts = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		kinds     []workflow.Kind
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Sign(context.Background(), ports.SignRequest{DocumentID: doc.ID, Position: 1, PrincipalID: "ana"})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
				return
			}
			kinds = append(kinds, workflow.KindOf(err))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	require.Len(t, kinds, attempts-1)
	for _, k := range kinds {
		assert.Equal(t, workflow.KindAlreadyResolved, k)
	}

	got, err := f.svc.GetDocument(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.Version+1, got.Version)
	assert.Equal(t, 0, f.svc.(*approvalService).locks.size())
}

func TestGroupAttribution(t *testing.T) {
	ctx := context.Background()

	t.Run("WrongDigits", func(t *testing.T) {
		f := newFixture(t, nil)
		doc := f.pendingDoc(t)
		_, err := f.svc.Sign(ctx, ports.SignRequest{DocumentID: doc.ID, Position: 1, PrincipalID: "ana"})
		require.NoError(t, err)

		claim := luisClaim()
		claim.LastDigits = "9999"
		_, err = f.svc.Sign(ctx, ports.SignRequest{DocumentID: doc.ID, Position: 2, PrincipalID: "finanzas-shared", Claim: claim})
		assert.True(t, workflow.IsKind(err, workflow.KindIdentityMismatch))

		got, err := f.svc.GetDocument(ctx, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.SlotPending, got.Slot(2).Status)
	})

	t.Run("NotAMember", func(t *testing.T) {
		f := newFixture(t, nil)
		doc := f.pendingDoc(t)
		_, err := f.svc.Sign(ctx, ports.SignRequest{DocumentID: doc.ID, Position: 1, PrincipalID: "ana"})
		require.NoError(t, err)

		claim := workflow.Claim{ActorID: "ana", LastDigits: "1234"}
		_, err = f.svc.Sign(ctx, ports.SignRequest{DocumentID: doc.ID, Position: 2, PrincipalID: "finanzas-shared", Claim: claim})
		assert.True(t, workflow.IsKind(err, workflow.KindNotAuthorized))
	})

	t.Run("MembershipReadAtActTime", func(t *testing.T) {
		f := newFixture(t, nil)
		doc := f.pendingDoc(t)
		_, err := f.svc.Sign(ctx, ports.SignRequest{DocumentID: doc.ID, Position: 1, PrincipalID: "ana"})
		require.NoError(t, err)

		require.NoError(t, f.groups.Save(ctx, &domain.Group{Code: "finanzas", Members: []domain.GroupMember{{MemberUserID: "maria"}}}))
		_, err = f.svc.Sign(ctx, ports.SignRequest{DocumentID: doc.ID, Position: 2, PrincipalID: "finanzas-shared", Claim: luisClaim()})
		assert.True(t, workflow.IsKind(err, workflow.KindNotAuthorized))

		maria := workflow.Claim{ActorID: "maria", LastDigits: "5678"}
		got, err := f.svc.Sign(ctx, ports.SignRequest{DocumentID: doc.ID, Position: 2, PrincipalID: "finanzas-shared", Claim: maria})
		require.NoError(t, err)
		assert.Equal(t, "maria", got.Slot(2).ResolvedActorID)
	})

	t.Run("Throttled", func(t *testing.T) {
		f := newFixture(t, ratelimiter.New(0.001, 2, time.Minute))
		doc := f.pendingDoc(t)
		_, err := f.svc.Sign(ctx, ports.SignRequest{DocumentID: doc.ID, Position: 1, PrincipalID: "ana"})
		require.NoError(t, err)

		claim := luisClaim()
		claim.LastDigits = "0000"
		for i := 0; i < 2; i++ {
			_, err = f.svc.Sign(ctx, ports.SignRequest{DocumentID: doc.ID, Position: 2, PrincipalID: "finanzas-shared", Claim: claim})
			assert.True(t, workflow.IsKind(err, workflow.KindIdentityMismatch))
		}
		_, err = f.svc.Sign(ctx, ports.SignRequest{DocumentID: doc.ID, Position: 2, PrincipalID: "finanzas-shared", Claim: luisClaim()})
		assert.True(t, workflow.IsKind(err, workflow.KindTooManyAttempts))
	})
}

func TestRejectStopsTheChain(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	doc := f.pendingDoc(t)

	_, err := f.svc.Sign(ctx, ports.SignRequest{DocumentID: doc.ID, Position: 1, PrincipalID: "ana"})
	require.NoError(t, err)
	f.dispatcher.Wait()
	f.publisher.take()

	_, err = f.svc.Reject(ctx, ports.RejectRequest{DocumentID: doc.ID, Position: 2, PrincipalID: "finanzas-shared", Claim: luisClaim(), Reason: "no"})
	assert.True(t, workflow.IsKind(err, workflow.KindInvalidReason))

	doc, err = f.svc.Reject(ctx, ports.RejectRequest{DocumentID: doc.ID, Position: 2, PrincipalID: "finanzas-shared", Claim: luisClaim(), Reason: "Valor no coincide"})
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentRejected, doc.Status)
	assert.Equal(t, "Valor no coincide", doc.RejectionReason)
	assert.Equal(t, domain.SlotSigned, doc.Slot(1).Status)

	f.dispatcher.Wait()
	events := f.publisher.take()
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventRejected, events[0].Type)
	assert.Equal(t, []string{"ana", "carlos", "owner"}, events[0].TargetUserIDs)

	_, err = f.svc.Sign(ctx, ports.SignRequest{DocumentID: doc.ID, Position: 3, PrincipalID: "carlos"})
	assert.True(t, workflow.IsKind(err, workflow.KindNotActionable))
}

func TestSignWithRetention(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	doc, err := f.svc.CreateDocument(ctx, domain.Document{
		FileName: "factura.pdf",
		OwnerID:  "owner",
		Metadata: map[string]any{
			"proveedor": "ACME",
			"filasControl": []any{
				map[string]any{"slotPosition": 1, "costCenter": "CC-10", "allocationPercentage": 60},
			},
		},
	})
	require.NoError(t, err)
	_, err = f.svc.AssignRoster(ctx, doc.ID, "owner", []domain.SlotSpec{{TargetID: "ana"}, {TargetID: "carlos"}})
	require.NoError(t, err)

	_, err = f.svc.Sign(ctx, ports.SignRequest{
		DocumentID:  doc.ID,
		Position:    1,
		PrincipalID: "ana",
		Retention:   &ports.RetentionInput{Percentage: 61, Reason: "Falta soporte"},
	})
	assert.True(t, workflow.IsKind(err, workflow.KindInvalidPercentage))

	got, err := f.svc.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SlotPending, got.Slot(1).Status, "failed retention leaves the signature uncommitted")

	got, err = f.svc.Sign(ctx, ports.SignRequest{
		DocumentID:  doc.ID,
		Position:    1,
		PrincipalID: "ana",
		Retention:   &ports.RetentionInput{Percentage: 20, Reason: "Falta soporte"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SlotSigned, got.Slot(1).Status)
	assert.Equal(t, "ACME", got.Metadata["proveedor"])

	fin, err := workflow.DecodeFinancial(got.Metadata)
	require.NoError(t, err)
	active, ok := workflow.ActiveRetention(fin, 1)
	require.True(t, ok)
	assert.Equal(t, 20.0, active.PercentageRetained)
	assert.Equal(t, "ana", active.RecordedByActorID)
}

func TestRecordRetentionStandalone(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	doc, err := f.svc.CreateDocument(ctx, domain.Document{
		OwnerID: "owner",
		Metadata: map[string]any{"filasControl": []any{
			map[string]any{"slotPosition": 2, "costCenter": "CC-20", "allocationPercentage": 40},
		}},
	})
	require.NoError(t, err)
	_, err = f.svc.AssignRoster(ctx, doc.ID, "owner", []domain.SlotSpec{{TargetID: "ana"}, {TargetID: "carlos"}})
	require.NoError(t, err)

	_, err = f.svc.RecordRetention(ctx, ports.RetentionRequest{DocumentID: doc.ID, Position: 2, PrincipalID: "carlos",
		RetentionInput: ports.RetentionInput{Percentage: 10, Reason: "Pendiente"}})
	assert.True(t, workflow.IsKind(err, workflow.KindNotActionable))

	_, err = f.svc.Sign(ctx, ports.SignRequest{DocumentID: doc.ID, Position: 1, PrincipalID: "ana"})
	require.NoError(t, err)

	first, err := f.svc.RecordRetention(ctx, ports.RetentionRequest{DocumentID: doc.ID, Position: 2, PrincipalID: "carlos",
		RetentionInput: ports.RetentionInput{Percentage: 10, Reason: "Pendiente"}})
	require.NoError(t, err)
	second, err := f.svc.RecordRetention(ctx, ports.RetentionRequest{DocumentID: doc.ID, Position: 2, PrincipalID: "carlos",
		RetentionInput: ports.RetentionInput{Percentage: 40, Reason: "Ajuste"}})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	got, err := f.svc.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	fin, err := workflow.DecodeFinancial(got.Metadata)
	require.NoError(t, err)
	require.Len(t, fin.Retentions, 2)
	assert.False(t, fin.Retentions[0].Active)
	assert.True(t, fin.Retentions[1].Active)
	assert.Equal(t, domain.SlotPending, got.Slot(2).Status)
}

func TestRosterEditing(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	doc := f.pendingDoc(t)

	_, err := f.svc.AddSigner(ctx, doc.ID, "ana", domain.SlotSpec{TargetID: "diana"}, 0)
	assert.True(t, workflow.IsKind(err, workflow.KindNotAuthorized))

	doc, err = f.svc.AddSigner(ctx, doc.ID, "owner", domain.SlotSpec{TargetID: "diana"}, 1)
	require.NoError(t, err)
	require.Len(t, doc.Signers, 4)
	assert.Equal(t, "diana", doc.Slot(1).TargetID)

	f.dispatcher.Wait()
	events := f.publisher.take()
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventAssigned, events[0].Type)
	assert.Equal(t, []string{"diana"}, events[0].TargetUserIDs)

	doc, err = f.svc.Reorder(ctx, doc.ID, "owner", []int{2, 1, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, "ana", doc.Slot(1).TargetID)

	doc, err = f.svc.RemoveSigner(ctx, doc.ID, "owner", 2)
	require.NoError(t, err)
	require.Len(t, doc.Signers, 3)
	assert.Equal(t, "finanzas", doc.Slot(2).TargetID)

	_, err = f.svc.Sign(ctx, ports.SignRequest{DocumentID: doc.ID, Position: 1, PrincipalID: "ana"})
	require.NoError(t, err)
	_, err = f.svc.Reorder(ctx, doc.ID, "owner", []int{2, 1, 3})
	assert.True(t, workflow.IsKind(err, workflow.KindInvalidPosition))
	_, err = f.svc.RemoveSigner(ctx, doc.ID, "owner", 1)
	assert.True(t, workflow.IsKind(err, workflow.KindAlreadyResolved))
}

func TestDeleteDocument(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	doc := f.pendingDoc(t)

	assert.True(t, workflow.IsKind(f.svc.DeleteDocument(ctx, doc.ID, "ana"), workflow.KindNotAuthorized))
	require.NoError(t, f.svc.DeleteDocument(ctx, doc.ID, "owner"))

	f.dispatcher.Wait()
	events := f.publisher.take()
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventDeleted, events[0].Type)
	assert.Equal(t, []string{"ana", "carlos", "luis", "maria"}, events[0].TargetUserIDs)

	_, err := f.svc.GetDocument(ctx, doc.ID)
	assert.True(t, workflow.IsKind(err, workflow.KindNotFound))
	assert.True(t, workflow.IsKind(f.svc.DeleteDocument(ctx, doc.ID, "owner"), workflow.KindNotFound))
}

func TestDeliveryFailureDoesNotFailOperation(t *testing.T) {
	f := newFixture(t, nil)
	f.publisher.err = errors.New("socket closed")
	doc := f.pendingDoc(t)

	got, err := f.svc.Sign(context.Background(), ports.SignRequest{DocumentID: doc.ID, Position: 1, PrincipalID: "ana"})
	require.NoError(t, err)
	assert.Equal(t, domain.SlotSigned, got.Slot(1).Status)

	require.Eventually(t, func() bool {
		f.publisher.mu.Lock()
		defer f.publisher.mu.Unlock()
		return len(f.publisher.events) == 2
	}, time.Second, 10*time.Millisecond)
}

func TestRealActorNameComesFromDirectory(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	doc := f.pendingDoc(t)

	_, err := f.svc.Sign(ctx, ports.SignRequest{DocumentID: doc.ID, Position: 1, PrincipalID: "ana"})
	require.NoError(t, err)
	f.dispatcher.Wait()
	events := f.publisher.take()
	require.NotEmpty(t, events)
	assert.Empty(t, events[0].RealActorName, "ana is not in the directory")

	_, err = f.svc.Sign(ctx, ports.SignRequest{
		DocumentID:  doc.ID,
		Position:    2,
		PrincipalID: "finanzas-shared",
		Claim:       workflow.Claim{ActorID: "maria", LastDigits: "5678"},
	})
	require.NoError(t, err)
	f.dispatcher.Wait()
	events = f.publisher.take()
	require.NotEmpty(t, events)
	assert.Equal(t, domain.EventSigned, events[0].Type)
	assert.Equal(t, "maria", events[0].ActorID)
	assert.Equal(t, "María Gómez", events[0].RealActorName)

	_, err = f.svc.Reject(ctx, ports.RejectRequest{DocumentID: doc.ID, Position: 3, PrincipalID: "carlos", Reason: "Valor no coincide"})
	require.NoError(t, err)
	f.dispatcher.Wait()
	events = f.publisher.take()
	require.NotEmpty(t, events)
	assert.Equal(t, "Carlos Ruiz", events[0].RealActorName)
}

func TestCanActUnknownDocument(t *testing.T) {
	f := newFixture(t, nil)

	can, err := f.svc.CanAct(context.Background(), "missing", 1)
	assert.True(t, workflow.IsKind(err, workflow.KindNotFound), "got %v", err)
	assert.False(t, can)
}
