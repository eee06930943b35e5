package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/practicanteticPX/DocuPrex-sub000/pkg/domain"
	"github.com/practicanteticPX/DocuPrex-sub000/pkg/ports"
)

type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

func toEmployeeRecord(e *domain.Employee) *EmployeeRecord {
	return &EmployeeRecord{
		ID:           e.ID,
		Name:         e.Name,
		Email:        e.Email,
		Status:       e.Status,
		LinkDate:     e.LinkDate.UTC(),
		Cargo:        e.Cargo,
		IDLastDigits: e.IDLastDigits,
	}
}

func toDomainEmployee(r *EmployeeRecord) domain.Employee {
	return domain.Employee{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		Status:       r.Status,
		LinkDate:     r.LinkDate.UTC(),
		Cargo:        r.Cargo,
		IDLastDigits: r.IDLastDigits,
	}
}

// Save implementa ports.EmployeeRepository.
func (r *EmployeeRepository) Save(ctx context.Context, employee *domain.Employee) error {
	if err := r.db.WithContext(ctx).Save(toEmployeeRecord(employee)).Error; err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	return nil
}

// FindByID implementa ports.EmployeeRepository.
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*domain.Employee, error) {
	var rec EmployeeRecord
	err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find employee: %w", err)
	}
	emp := toDomainEmployee(&rec)
	return &emp, nil
}

// FindAll implementa ports.EmployeeRepository.
func (r *EmployeeRepository) FindAll(ctx context.Context) ([]domain.Employee, error) {
	var records []EmployeeRecord
	if err := r.db.WithContext(ctx).Order("id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	out := make([]domain.Employee, len(records))
	for i := range records {
		out[i] = toDomainEmployee(&records[i])
	}
	return out, nil
}

// Update implementa ports.EmployeeRepository.
func (r *EmployeeRepository) Update(ctx context.Context, employee *domain.Employee) error {
	return r.Save(ctx, employee)
}

// Delete implementa ports.EmployeeRepository.
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&EmployeeRecord{}).Error; err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	return nil
}

// LookupLastDigits implementa ports.IdentityRegistry.
func (r *EmployeeRepository) LookupLastDigits(ctx context.Context, userID string) (string, error) {
	var digits []string
	err := r.db.WithContext(ctx).
		Model(&EmployeeRecord{}).
		Where("id = ?", userID).
		Pluck("id_last_digits", &digits).Error
	if err != nil {
		return "", fmt.Errorf("failed to lookup identity digits: %w", err)
	}
	if len(digits) == 0 {
		return "", nil
	}
	return digits[0], nil
}

// LookupName implementa ports.IdentityRegistry.
func (r *EmployeeRepository) LookupName(ctx context.Context, userID string) (string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Model(&EmployeeRecord{}).
		Where("id = ?", userID).
		Pluck("name", &names).Error
	if err != nil {
		return "", fmt.Errorf("failed to lookup employee name: %w", err)
	}
	if len(names) == 0 {
		return "", nil
	}
	return names[0], nil
}

type GroupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

func toGroupRecord(g *domain.Group) *GroupRecord {
	return &GroupRecord{
		Code:        g.Code,
		Name:        g.Name,
		Description: g.Description,
		Members:     toMemberRecords(g.Code, g.Members),
	}
}

func toMemberRecords(code string, members []domain.GroupMember) []GroupMemberRecord {
	out := make([]GroupMemberRecord, len(members))
	for i, m := range members {
		out[i] = GroupMemberRecord{GroupCode: code, MemberUserID: m.MemberUserID, DisplayCargo: m.DisplayCargo}
	}
	return out
}

func toDomainMembers(records []GroupMemberRecord) []domain.GroupMember {
	out := make([]domain.GroupMember, len(records))
	for i, m := range records {
		out[i] = domain.GroupMember{MemberUserID: m.MemberUserID, DisplayCargo: m.DisplayCargo}
	}
	return out
}

func preloadMembers(tx *gorm.DB) *gorm.DB { return tx.Order("member_user_id") }

// Save implementa ports.GroupRepository.
func (r *GroupRepository) Save(ctx context.Context, group *domain.Group) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec := toGroupRecord(group)
		members := rec.Members
		rec.Members = nil
		if err := tx.Save(rec).Error; err != nil {
			return fmt.Errorf("failed to save group: %w", err)
		}
		return replaceMembers(tx, group.Code, members)
	})
}

// FindByCode implementa ports.GroupRepository.
func (r *GroupRepository) FindByCode(ctx context.Context, code string) (*domain.Group, error) {
	var rec GroupRecord
	err := r.db.WithContext(ctx).Preload("Members", preloadMembers).First(&rec, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find group: %w", err)
	}
	return &domain.Group{
		Code:        rec.Code,
		Name:        rec.Name,
		Description: rec.Description,
		Members:     toDomainMembers(rec.Members),
	}, nil
}

// FindAll implementa ports.GroupRepository.
func (r *GroupRepository) FindAll(ctx context.Context) ([]domain.Group, error) {
	var records []GroupRecord
	if err := r.db.WithContext(ctx).Preload("Members", preloadMembers).Order("code").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	out := make([]domain.Group, len(records))
	for i, rec := range records {
		out[i] = domain.Group{
			Code:        rec.Code,
			Name:        rec.Name,
			Description: rec.Description,
			Members:     toDomainMembers(rec.Members),
		}
	}
	return out, nil
}

// Update implementa ports.GroupRepository.
func (r *GroupRepository) Update(ctx context.Context, group *domain.Group) error {
	return r.Save(ctx, group)
}

// Delete implementa ports.GroupRepository.
func (r *GroupRepository) Delete(ctx context.Context, code string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_code = ?", code).Delete(&GroupMemberRecord{}).Error; err != nil {
			return fmt.Errorf("failed to delete group members: %w", err)
		}
		if err := tx.Where("code = ?", code).Delete(&GroupRecord{}).Error; err != nil {
			return fmt.Errorf("failed to delete group: %w", err)
		}
		return nil
	})
}

// LoadGroupMembers implementa ports.GroupDirectory.
func (r *GroupRepository) LoadGroupMembers(ctx context.Context, groupCode string) ([]domain.GroupMember, error) {
	var records []GroupMemberRecord
	err := r.db.WithContext(ctx).
		Where("group_code = ?", groupCode).
		Order("member_user_id").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load group members: %w", err)
	}
	return toDomainMembers(records), nil
}

func replaceMembers(tx *gorm.DB, code string, members []GroupMemberRecord) error {
	if err := tx.Where("group_code = ?", code).Delete(&GroupMemberRecord{}).Error; err != nil {
		return fmt.Errorf("failed to clear group members: %w", err)
	}
	if len(members) == 0 {
		return nil
	}
	if err := tx.Create(&members).Error; err != nil {
		return fmt.Errorf("failed to insert group members: %w", err)
	}
	return nil
}

var (
	_ ports.EmployeeRepository = (*EmployeeRepository)(nil)
	_ ports.IdentityRegistry   = (*EmployeeRepository)(nil)
	_ ports.GroupRepository    = (*GroupRepository)(nil)
	_ ports.GroupDirectory     = (*GroupRepository)(nil)
)
