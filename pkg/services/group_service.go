package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/practicanteticPX/DocuPrex-sub000/pkg/domain"
	"github.com/practicanteticPX/DocuPrex-sub000/pkg/ports"
	"github.com/practicanteticPX/DocuPrex-sub000/pkg/workflow"
)

type groupService struct {
	repo ports.GroupRepository
}

// NewGroupService crea una nueva instancia de GroupService
func NewGroupService(repo ports.GroupRepository) ports.GroupService {
	return &groupService{
		repo: repo,
	}
}

// CreateGroup implementa ports.GroupService.
func (s *groupService) CreateGroup(ctx context.Context, group domain.Group) (*domain.Group, error) {
	const op = "services.create_group"
	group.Code = strings.TrimSpace(group.Code)
	if group.Code == "" {
		return nil, workflow.NewError(workflow.KindValidation, op, "group code is required", nil)
	}
	existing, err := s.repo.FindByCode(ctx, group.Code)
	if err != nil {
		return nil, fmt.Errorf("failed to find group by code: %w", err)
	}
	if existing != nil {
		return nil, workflow.NewError(workflow.KindConflict, op, "group "+group.Code+" already exists", nil)
	}
	members, err := normalizeMembers(op, group.Members)
	if err != nil {
		return nil, err
	}
	group.Members = members

	err = s.repo.Save(ctx, &group)
	if err != nil {
		return nil, fmt.Errorf("failed to save group: %w", err)
	}
	return &group, nil
}

// GetGroupByCode implementa ports.GroupService.
func (s *groupService) GetGroupByCode(ctx context.Context, code string) (*domain.Group, error) {
	group, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to find group by code: %w", err)
	}
	if group == nil {
		return nil, workflow.NewError(workflow.KindNotFound, "services.get_group", "group "+code+" not found", nil)
	}
	return group, nil
}

// GetAllGroups implementa ports.GroupService.
func (s *groupService) GetAllGroups(ctx context.Context) ([]domain.Group, error) {
	groups, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get all groups: %w", err)
	}
	return groups, nil
}

// UpdateGroup implementa ports.GroupService. Los miembros se cambian con SetMembers.
func (s *groupService) UpdateGroup(ctx context.Context, code string, group domain.Group) (*domain.Group, error) {
	existing, err := s.GetGroupByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	// Actualizar solo los campos proporcionados
	if group.Name != "" {
		existing.Name = group.Name
	}
	if group.Description != "" {
		existing.Description = group.Description
	}

	err = s.repo.Update(ctx, existing)
	if err != nil {
		return nil, fmt.Errorf("failed to update group: %w", err)
	}
	return existing, nil
}

// SetMembers reemplaza la membresía del grupo. Los firmantes de grupo
// pendientes ven el cambio en su siguiente acción.
func (s *groupService) SetMembers(ctx context.Context, code string, members []domain.GroupMember) (*domain.Group, error) {
	const op = "services.set_group_members"
	existing, err := s.GetGroupByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	normalized, err := normalizeMembers(op, members)
	if err != nil {
		return nil, err
	}
	existing.Members = normalized

	err = s.repo.Update(ctx, existing)
	if err != nil {
		return nil, fmt.Errorf("failed to update group members: %w", err)
	}
	return existing, nil
}

// DeleteGroup implementa ports.GroupService.
func (s *groupService) DeleteGroup(ctx context.Context, code string) error {
	err := s.repo.Delete(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	return nil
}

func normalizeMembers(op string, members []domain.GroupMember) ([]domain.GroupMember, error) {
	seen := make(map[string]struct{}, len(members))
	out := make([]domain.GroupMember, 0, len(members))
	for _, m := range members {
		m.MemberUserID = strings.TrimSpace(m.MemberUserID)
		if m.MemberUserID == "" {
			return nil, workflow.NewError(workflow.KindValidation, op, "memberUserId is required", nil)
		}
		if _, dup := seen[m.MemberUserID]; dup {
			continue
		}
		seen[m.MemberUserID] = struct{}{}
		out = append(out, m)
	}
	return out, nil
}

// Asegurarse de que groupService implementa ports.GroupService
var _ ports.GroupService = (*groupService)(nil)
