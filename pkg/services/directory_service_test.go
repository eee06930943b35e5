package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/practicanteticPX/DocuPrex-sub000/pkg/adapters/storage/memory"
	"github.com/practicanteticPX/DocuPrex-sub000/pkg/domain"
	"github.com/practicanteticPX/DocuPrex-sub000/pkg/workflow"
)

func TestEmployeeService(t *testing.T) {
	ctx := context.Background()
	svc := NewEmployeeService(memory.NewEmployeeStore())

	_, err := svc.CreateEmployee(ctx, domain.Employee{Name: "Luis", IDLastDigits: "12a4"})
	assert.True(t, workflow.IsKind(err, workflow.KindValidation))

	created, err := svc.CreateEmployee(ctx, domain.Employee{Name: "Luis", Email: "luis@example.com", IDLastDigits: "1234"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Activo", created.Status)
	assert.False(t, created.LinkDate.IsZero())

	updated, err := svc.UpdateEmployee(ctx, created.ID, domain.Employee{Cargo: "Contador", IDLastDigits: "9876"})
	require.NoError(t, err)
	assert.Equal(t, "Luis", updated.Name)
	assert.Equal(t, "Contador", updated.Cargo)
	assert.Equal(t, "9876", updated.IDLastDigits)

	all, err := svc.GetAllEmployees(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, svc.DeleteEmployee(ctx, created.ID))
	_, err = svc.GetEmployeeByID(ctx, created.ID)
	assert.True(t, workflow.IsKind(err, workflow.KindNotFound))
	_, err = svc.UpdateEmployee(ctx, created.ID, domain.Employee{Name: "x"})
	assert.True(t, workflow.IsKind(err, workflow.KindNotFound))
}

func TestGroupService(t *testing.T) {
	ctx := context.Background()
	store := memory.NewGroupStore()
	svc := NewGroupService(store)

	_, err := svc.CreateGroup(ctx, domain.Group{Name: "Sin código"})
	assert.True(t, workflow.IsKind(err, workflow.KindValidation))

	created, err := svc.CreateGroup(ctx, domain.Group{
		Code: " finanzas ",
		Name: "Finanzas",
		Members: []domain.GroupMember{
			{MemberUserID: "luis", DisplayCargo: "Contador"},
			{MemberUserID: "luis"},
			{MemberUserID: "maria"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "finanzas", created.Code)
	assert.Len(t, created.Members, 2)

	_, err = svc.CreateGroup(ctx, domain.Group{Code: "finanzas"})
	assert.True(t, workflow.IsKind(err, workflow.KindConflict))

	_, err = svc.SetMembers(ctx, "finanzas", []domain.GroupMember{{MemberUserID: " "}})
	assert.True(t, workflow.IsKind(err, workflow.KindValidation))

	_, err = svc.SetMembers(ctx, "finanzas", []domain.GroupMember{{MemberUserID: "pedro"}})
	require.NoError(t, err)
	members, err := store.LoadGroupMembers(ctx, "finanzas")
	require.NoError(t, err)
	assert.Equal(t, []domain.GroupMember{{MemberUserID: "pedro"}}, members)

	updated, err := svc.UpdateGroup(ctx, "finanzas", domain.Group{Description: "Área financiera"})
	require.NoError(t, err)
	assert.Equal(t, "Finanzas", updated.Name)
	assert.Equal(t, "Área financiera", updated.Description)

	require.NoError(t, svc.DeleteGroup(ctx, "finanzas"))
	_, err = svc.GetGroupByCode(ctx, "finanzas")
	assert.True(t, workflow.IsKind(err, workflow.KindNotFound))
}
