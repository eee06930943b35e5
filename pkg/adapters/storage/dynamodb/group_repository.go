package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/practicanteticPX/DocuPrex-sub000/pkg/domain"
	"github.com/practicanteticPX/DocuPrex-sub000/pkg/ports"
)

// GroupItem representa la estructura del ítem de DynamoDB para un Group
type GroupItem struct {
	Code        string       `dynamodbav:"code"`
	Name        string       `dynamodbav:"name"`
	Description string       `dynamodbav:"description"`
	Members     []MemberItem `dynamodbav:"members"`
}

type MemberItem struct {
	MemberUserID string `dynamodbav:"memberUserId"`
	DisplayCargo string `dynamodbav:"displayCargo,omitempty"`
}

type GroupRepository struct {
	client    Client
	tableName string
}

// NewGroupRepository crea una nueva instancia de GroupRepository
func NewGroupRepository(client Client, tableName string) *GroupRepository {
	return &GroupRepository{
		client:    client,
		tableName: tableName,
	}
}

// toGroupItem convierte un domain.Group a GroupItem
func toGroupItem(group *domain.Group) *GroupItem {
	members := make([]MemberItem, len(group.Members))
	for i, m := range group.Members {
		members[i] = MemberItem{MemberUserID: m.MemberUserID, DisplayCargo: m.DisplayCargo}
	}
	return &GroupItem{
		Code:        group.Code,
		Name:        group.Name,
		Description: group.Description,
		Members:     members,
	}
}

// toDomainGroup convierte un GroupItem a domain.Group
func toDomainGroup(item *GroupItem) *domain.Group {
	return &domain.Group{
		Code:        item.Code,
		Name:        item.Name,
		Description: item.Description,
		Members:     toDomainMembers(item.Members),
	}
}

func toDomainMembers(items []MemberItem) []domain.GroupMember {
	members := make([]domain.GroupMember, len(items))
	for i, m := range items {
		members[i] = domain.GroupMember{MemberUserID: m.MemberUserID, DisplayCargo: m.DisplayCargo}
	}
	return members
}

// Save implementa ports.GroupRepository.
func (r *GroupRepository) Save(ctx context.Context, group *domain.Group) error {
	av, err := attributevalue.MarshalMap(toGroupItem(group))
	if err != nil {
		return fmt.Errorf("failed to marshal group item: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("failed to put item in DynamoDB: %w", err)
	}
	return nil
}

// FindByCode implementa ports.GroupRepository.
func (r *GroupRepository) FindByCode(ctx context.Context, code string) (*domain.Group, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       stringKey("code", code),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get item from DynamoDB: %w", err)
	}
	if result.Item == nil {
		return nil, nil // No encontrado
	}

	var item GroupItem
	err = attributevalue.UnmarshalMap(result.Item, &item)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal group item: %w", err)
	}
	return toDomainGroup(&item), nil
}

// FindAll implementa ports.GroupRepository.
func (r *GroupRepository) FindAll(ctx context.Context) ([]domain.Group, error) {
	items, err := scanAll(ctx, r.client, r.tableName)
	if err != nil {
		return nil, err
	}

	var groupItems []GroupItem
	err = attributevalue.UnmarshalListOfMaps(items, &groupItems)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal group items: %w", err)
	}

	groups := make([]domain.Group, len(groupItems))
	for i := range groupItems {
		groups[i] = *toDomainGroup(&groupItems[i])
	}
	return groups, nil
}

// Update implementa ports.GroupRepository.
func (r *GroupRepository) Update(ctx context.Context, group *domain.Group) error {
	item := toGroupItem(group)

	update := expression.Set(expression.Name("name"), expression.Value(item.Name))
	update.Set(expression.Name("description"), expression.Value(item.Description))
	update.Set(expression.Name("members"), expression.Value(item.Members))

	expr, err := expression.NewBuilder().WithUpdate(update).Build()
	if err != nil {
		return fmt.Errorf("failed to build expression: %w", err)
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       stringKey("code", item.Code),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		UpdateExpression:          expr.Update(),
	})
	if err != nil {
		return fmt.Errorf("failed to update item in DynamoDB: %w", err)
	}
	return nil
}

// Delete implementa ports.GroupRepository.
func (r *GroupRepository) Delete(ctx context.Context, code string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       stringKey("code", code),
	})
	if err != nil {
		return fmt.Errorf("failed to delete item from DynamoDB: %w", err)
	}
	return nil
}

// LoadGroupMembers implementa ports.GroupDirectory. Un grupo inexistente no
// tiene miembros.
func (r *GroupRepository) LoadGroupMembers(ctx context.Context, groupCode string) ([]domain.GroupMember, error) {
	expr, err := expression.NewBuilder().
		WithProjection(expression.NamesList(expression.Name("members"))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      stringKey("code", groupCode),
		ProjectionExpression:     expr.Projection(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get group members from DynamoDB: %w", err)
	}
	if result.Item == nil {
		return nil, nil
	}

	var item struct {
		Members []MemberItem `dynamodbav:"members"`
	}
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal group members: %w", err)
	}
	return toDomainMembers(item.Members), nil
}

// Asegurarse de que GroupRepository implementa los puertos
var (
	_ ports.GroupRepository = (*GroupRepository)(nil)
	_ ports.GroupDirectory  = (*GroupRepository)(nil)
)
