package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/practicanteticPX/DocuPrex-sub000/pkg/domain"
	"github.com/practicanteticPX/DocuPrex-sub000/pkg/ports"
)

// EmployeeStore es el directorio de empleados en memoria; también responde el
// registro de dígitos de identidad.
type EmployeeStore struct {
	mu        sync.RWMutex
	employees map[string]domain.Employee
}

func NewEmployeeStore(seed ...domain.Employee) *EmployeeStore {
	s := &EmployeeStore{employees: make(map[string]domain.Employee, len(seed))}
	for _, e := range seed {
		s.employees[e.ID] = e
	}
	return s
}

// Save implementa ports.EmployeeRepository.
func (s *EmployeeStore) Save(_ context.Context, employee *domain.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[employee.ID] = *employee
	return nil
}

// FindByID implementa ports.EmployeeRepository.
func (s *EmployeeStore) FindByID(_ context.Context, id string) (*domain.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.employees[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

// FindAll implementa ports.EmployeeRepository.
func (s *EmployeeStore) FindAll(_ context.Context) ([]domain.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Employee, 0, len(s.employees))
	for _, e := range s.employees {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Update implementa ports.EmployeeRepository.
func (s *EmployeeStore) Update(ctx context.Context, employee *domain.Employee) error {
	return s.Save(ctx, employee)
}

// Delete implementa ports.EmployeeRepository.
func (s *EmployeeStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.employees, id)
	return nil
}

// LookupLastDigits implementa ports.IdentityRegistry.
func (s *EmployeeStore) LookupLastDigits(_ context.Context, userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.employees[userID].IDLastDigits, nil
}

// LookupName implementa ports.IdentityRegistry.
func (s *EmployeeStore) LookupName(_ context.Context, userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.employees[userID].Name, nil
}

// GroupStore guarda grupos y responde la membresía vigente.
type GroupStore struct {
	mu     sync.RWMutex
	groups map[string]domain.Group
}

func NewGroupStore(seed ...domain.Group) *GroupStore {
	s := &GroupStore{groups: make(map[string]domain.Group, len(seed))}
	for _, g := range seed {
		s.groups[g.Code] = cloneGroup(g)
	}
	return s
}

// Save implementa ports.GroupRepository.
func (s *GroupStore) Save(_ context.Context, group *domain.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups[group.Code] = cloneGroup(*group)
	return nil
}

// FindByCode implementa ports.GroupRepository.
func (s *GroupStore) FindByCode(_ context.Context, code string) (*domain.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[code]
	if !ok {
		return nil, nil
	}
	out := cloneGroup(g)
	return &out, nil
}

// FindAll implementa ports.GroupRepository.
func (s *GroupStore) FindAll(_ context.Context) ([]domain.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Group, 0, len(s.groups))
	for _, g := range s.groups {
		out = append(out, cloneGroup(g))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// Update implementa ports.GroupRepository.
func (s *GroupStore) Update(ctx context.Context, group *domain.Group) error {
	return s.Save(ctx, group)
}

// Delete implementa ports.GroupRepository.
func (s *GroupStore) Delete(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.groups, code)
	return nil
}

// LoadGroupMembers implementa ports.GroupDirectory. Un grupo inexistente no
// tiene miembros.
func (s *GroupStore) LoadGroupMembers(_ context.Context, groupCode string) ([]domain.GroupMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.GroupMember(nil), s.groups[groupCode].Members...), nil
}

func cloneGroup(g domain.Group) domain.Group {
	g.Members = append([]domain.GroupMember(nil), g.Members...)
	return g
}

var (
	_ ports.EmployeeRepository = (*EmployeeStore)(nil)
	_ ports.IdentityRegistry   = (*EmployeeStore)(nil)
	_ ports.GroupRepository    = (*GroupStore)(nil)
	_ ports.GroupDirectory     = (*GroupStore)(nil)
)
