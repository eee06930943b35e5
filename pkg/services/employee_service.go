package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/practicanteticPX/DocuPrex-sub000/pkg/domain"
	"github.com/practicanteticPX/DocuPrex-sub000/pkg/ports"
	"github.com/practicanteticPX/DocuPrex-sub000/pkg/workflow"
)

type employeeService struct {
	repo ports.EmployeeRepository
}

// NewEmployeeService crea una nueva instancia de EmployeeService
func NewEmployeeService(repo ports.EmployeeRepository) ports.EmployeeService {
	return &employeeService{
		repo: repo,
	}
}

// CreateEmployee implementa ports.EmployeeService.
func (s *employeeService) CreateEmployee(ctx context.Context, employee domain.Employee) (*domain.Employee, error) {
	const op = "services.create_employee"
	if strings.TrimSpace(employee.Name) == "" {
		return nil, workflow.NewError(workflow.KindValidation, op, "name is required", nil)
	}
	if err := validateDigits(op, employee.IDLastDigits); err != nil {
		return nil, err
	}
	if employee.ID == "" {
		employee.ID = uuid.New().String()
	}
	if employee.LinkDate.IsZero() {
		employee.LinkDate = time.Now().UTC()
	}
	if employee.Status == "" {
		employee.Status = "Activo" // Estado por defecto
	}

	err := s.repo.Save(ctx, &employee)
	if err != nil {
		return nil, fmt.Errorf("failed to save employee: %w", err)
	}
	return &employee, nil
}

// GetEmployeeByID implementa ports.EmployeeService.
func (s *employeeService) GetEmployeeByID(ctx context.Context, id string) (*domain.Employee, error) {
	employee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find employee by ID: %w", err)
	}
	if employee == nil {
		return nil, workflow.NewError(workflow.KindNotFound, "services.get_employee", "employee "+id+" not found", nil)
	}
	return employee, nil
}

// GetAllEmployees implementa ports.EmployeeService.
func (s *employeeService) GetAllEmployees(ctx context.Context) ([]domain.Employee, error) {
	employees, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get all employees: %w", err)
	}
	return employees, nil
}

// UpdateEmployee implementa ports.EmployeeService.
func (s *employeeService) UpdateEmployee(ctx context.Context, id string, employee domain.Employee) (*domain.Employee, error) {
	const op = "services.update_employee"
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find existing employee for update: %w", err)
	}
	if existing == nil {
		return nil, workflow.NewError(workflow.KindNotFound, op, "employee "+id+" not found", nil)
	}

	// Actualizar solo los campos proporcionados
	if employee.Name != "" {
		existing.Name = employee.Name
	}
	if employee.Email != "" {
		existing.Email = employee.Email
	}
	if employee.Status != "" {
		existing.Status = employee.Status
	}
	if employee.Cargo != "" {
		existing.Cargo = employee.Cargo
	}
	if employee.IDLastDigits != "" {
		if err := validateDigits(op, employee.IDLastDigits); err != nil {
			return nil, err
		}
		existing.IDLastDigits = employee.IDLastDigits
	}

	err = s.repo.Update(ctx, existing)
	if err != nil {
		return nil, fmt.Errorf("failed to update employee: %w", err)
	}
	return existing, nil
}

// DeleteEmployee implementa ports.EmployeeService.
func (s *employeeService) DeleteEmployee(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	return nil
}

// validateDigits acepta vacío (sin reto registrado) o solo dígitos.
func validateDigits(op, digits string) error {
	for _, r := range digits {
		if r < '0' || r > '9' {
			return workflow.NewError(workflow.KindValidation, op, "idLastDigits must contain only digits", nil)
		}
	}
	return nil
}

// Asegurarse de que employeeService implementa ports.EmployeeService
var _ ports.EmployeeService = (*employeeService)(nil)
