package ports

import (
	"context"
	"time"

	"github.com/practicanteticPX/DocuPrex-sub000/pkg/domain"
	"github.com/practicanteticPX/DocuPrex-sub000/pkg/workflow"
)

// Primary Port (Interfaces para el servicio de aplicación)

// SignRequest es una firma enviada por la cuenta PrincipalID. Para firmantes
// de grupo Claim identifica a la persona real. Retention, si viene, se
// registra junto con la firma en el mismo guardado.
type SignRequest struct {
	DocumentID  string
	Position    int
	PrincipalID string
	Claim       workflow.Claim
	Retention   *RetentionInput
}

type RetentionInput struct {
	Percentage float64
	Reason     string
}

type RejectRequest struct {
	DocumentID  string
	Position    int
	PrincipalID string
	Claim       workflow.Claim
	Reason      string
}

type RetentionRequest struct {
	DocumentID  string
	Position    int
	PrincipalID string
	Claim       workflow.Claim
	RetentionInput
}

type ApprovalService interface {
	CreateDocument(ctx context.Context, doc domain.Document) (*domain.Document, error)
	GetDocument(ctx context.Context, id string) (*domain.Document, error)
	AssignRoster(ctx context.Context, documentID, principalID string, specs []domain.SlotSpec) (*domain.Document, error)
	CanAct(ctx context.Context, documentID string, position int) (bool, error)
	Sign(ctx context.Context, req SignRequest) (*domain.Document, error)
	Reject(ctx context.Context, req RejectRequest) (*domain.Document, error)
	RecordRetention(ctx context.Context, req RetentionRequest) (*domain.RetentionRecord, error)
	Reorder(ctx context.Context, documentID, principalID string, newOrder []int) (*domain.Document, error)
	AddSigner(ctx context.Context, documentID, principalID string, spec domain.SlotSpec, position int) (*domain.Document, error)
	RemoveSigner(ctx context.Context, documentID, principalID string, position int) (*domain.Document, error)
	DeleteDocument(ctx context.Context, documentID, principalID string) error
}

type EmployeeService interface {
	CreateEmployee(ctx context.Context, employee domain.Employee) (*domain.Employee, error)
	GetEmployeeByID(ctx context.Context, id string) (*domain.Employee, error)
	GetAllEmployees(ctx context.Context) ([]domain.Employee, error)
	UpdateEmployee(ctx context.Context, id string, employee domain.Employee) (*domain.Employee, error)
	DeleteEmployee(ctx context.Context, id string) error
}

type GroupService interface {
	CreateGroup(ctx context.Context, group domain.Group) (*domain.Group, error)
	GetGroupByCode(ctx context.Context, code string) (*domain.Group, error)
	GetAllGroups(ctx context.Context) ([]domain.Group, error)
	UpdateGroup(ctx context.Context, code string, group domain.Group) (*domain.Group, error)
	SetMembers(ctx context.Context, code string, members []domain.GroupMember) (*domain.Group, error)
	DeleteGroup(ctx context.Context, code string) error
}

// Secondary Port (Interfaces para adaptadores de infraestructura)

// DocumentRepository guarda el agregado completo: lista de firmantes y
// metadatos incluidos. Update es optimista: falla con workflow.KindConflict si
// la versión guardada no es doc.Version-1.
type DocumentRepository interface {
	Save(ctx context.Context, doc *domain.Document) error
	FindByID(ctx context.Context, id string) (*domain.Document, error)
	Update(ctx context.Context, doc *domain.Document) error
	Delete(ctx context.Context, id string) error
}

// RosterRepository lee y escribe solo la lista de firmantes. SaveRoster es
// atómico. Ambos fallan con workflow.KindNotFound si el documento no existe.
type RosterRepository interface {
	LoadRoster(ctx context.Context, documentID string) ([]domain.SignerSlot, error)
	SaveRoster(ctx context.Context, documentID string, slots []domain.SignerSlot) error
}

type EmployeeRepository interface {
	Save(ctx context.Context, employee *domain.Employee) error
	FindByID(ctx context.Context, id string) (*domain.Employee, error)
	FindAll(ctx context.Context) ([]domain.Employee, error)
	Update(ctx context.Context, employee *domain.Employee) error
	Delete(ctx context.Context, id string) error
}

type GroupRepository interface {
	Save(ctx context.Context, group *domain.Group) error
	FindByCode(ctx context.Context, code string) (*domain.Group, error)
	FindAll(ctx context.Context) ([]domain.Group, error)
	Update(ctx context.Context, group *domain.Group) error
	Delete(ctx context.Context, code string) error
}

// GroupDirectory resuelve la membresía vigente de un grupo al momento de actuar.
type GroupDirectory interface {
	LoadGroupMembers(ctx context.Context, groupCode string) ([]domain.GroupMember, error)
}

// IdentityRegistry devuelve los datos registrados de un usuario: sus últimos
// dígitos y su nombre, o "" si no los tiene.
type IdentityRegistry interface {
	LookupLastDigits(ctx context.Context, userID string) (string, error)
	LookupName(ctx context.Context, userID string) (string, error)
}

type NotificationPublisher interface {
	Publish(ctx context.Context, event domain.NotificationEvent) error
}

type OperationObserver interface {
	ObserveOperation(op, outcome string, elapsed time.Duration)
	ObserveEvent(eventType domain.EventType, err error)
}

type ChallengeLimiter interface {
	Allow(key string, now time.Time) bool
}
