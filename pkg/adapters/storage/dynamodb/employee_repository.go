package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/practicanteticPX/DocuPrex-sub000/pkg/domain"
	"github.com/practicanteticPX/DocuPrex-sub000/pkg/ports"
)

// EmployeeItem representa la estructura del ítem de DynamoDB para un Employee
type EmployeeItem struct {
	ID           string `dynamodbav:"id"`
	Name         string `dynamodbav:"name"`
	Email        string `dynamodbav:"email"`
	Status       string `dynamodbav:"status"`
	LinkDate     string `dynamodbav:"linkDate"` // Almacenar la fecha como string ISO 8601
	Cargo        string `dynamodbav:"cargo,omitempty"`
	IDLastDigits string `dynamodbav:"idLastDigits,omitempty"`
}

type EmployeeRepository struct {
	client    Client
	tableName string
}

// NewEmployeeRepository crea una nueva instancia de EmployeeRepository. También
// sirve como registro de dígitos de identidad.
func NewEmployeeRepository(client Client, tableName string) *EmployeeRepository {
	return &EmployeeRepository{
		client:    client,
		tableName: tableName,
	}
}

// toEmployeeItem convierte un domain.Employee a EmployeeItem
func toEmployeeItem(emp *domain.Employee) *EmployeeItem {
	return &EmployeeItem{
		ID:           emp.ID,
		Name:         emp.Name,
		Email:        emp.Email,
		Status:       emp.Status,
		LinkDate:     emp.LinkDate.UTC().Format(time.RFC3339),
		Cargo:        emp.Cargo,
		IDLastDigits: emp.IDLastDigits,
	}
}

// toDomainEmployee convierte un EmployeeItem a domain.Employee
func toDomainEmployee(item *EmployeeItem) (*domain.Employee, error) {
	linkDate, err := time.Parse(time.RFC3339, item.LinkDate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse LinkDate: %w", err)
	}
	return &domain.Employee{
		ID:           item.ID,
		Name:         item.Name,
		Email:        item.Email,
		Status:       item.Status,
		LinkDate:     linkDate,
		Cargo:        item.Cargo,
		IDLastDigits: item.IDLastDigits,
	}, nil
}

// Save implementa ports.EmployeeRepository.
func (r *EmployeeRepository) Save(ctx context.Context, employee *domain.Employee) error {
	av, err := attributevalue.MarshalMap(toEmployeeItem(employee))
	if err != nil {
		return fmt.Errorf("failed to marshal employee item: %w", err)
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

// FindByID implementa ports.EmployeeRepository.
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*domain.Employee, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       stringKey("id", id),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get item from DynamoDB: %w", err)
	}
	if result.Item == nil {
		return nil, nil // No encontrado
	}

	var item EmployeeItem
	err = attributevalue.UnmarshalMap(result.Item, &item)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal employee item: %w", err)
	}

	return toDomainEmployee(&item)
}

// FindAll implementa ports.EmployeeRepository.
func (r *EmployeeRepository) FindAll(ctx context.Context) ([]domain.Employee, error) {
	items, err := scanAll(ctx, r.client, r.tableName)
	if err != nil {
		return nil, err
	}

	var employeeItems []EmployeeItem
	err = attributevalue.UnmarshalListOfMaps(items, &employeeItems)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal employee items: %w", err)
	}

	employees := make([]domain.Employee, len(employeeItems))
	for i := range employeeItems {
		emp, err := toDomainEmployee(&employeeItems[i])
		if err != nil {
			return nil, fmt.Errorf("failed to convert item to domain employee: %w", err)
		}
		employees[i] = *emp
	}
	return employees, nil
}

// Update implementa ports.EmployeeRepository.
func (r *EmployeeRepository) Update(ctx context.Context, employee *domain.Employee) error {
	item := toEmployeeItem(employee)

	update := expression.Set(expression.Name("name"), expression.Value(item.Name))
	update.Set(expression.Name("email"), expression.Value(item.Email))
	update.Set(expression.Name("status"), expression.Value(item.Status))
	update.Set(expression.Name("linkDate"), expression.Value(item.LinkDate))
	update.Set(expression.Name("cargo"), expression.Value(item.Cargo))
	update.Set(expression.Name("idLastDigits"), expression.Value(item.IDLastDigits))

	expr, err := expression.NewBuilder().WithUpdate(update).Build()
	if err != nil {
		return fmt.Errorf("failed to build expression: %w", err)
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       stringKey("id", item.ID),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		UpdateExpression:          expr.Update(),
	})
	if err != nil {
		return fmt.Errorf("failed to update item in DynamoDB: %w", err)
	}
	return nil
}

// Delete implementa ports.EmployeeRepository.
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       stringKey("id", id),
	})
	if err != nil {
		return fmt.Errorf("failed to delete item from DynamoDB: %w", err)
	}
	return nil
}

// LookupLastDigits implementa ports.IdentityRegistry. Solo lee el atributo
// de los dígitos.
func (r *EmployeeRepository) LookupLastDigits(ctx context.Context, userID string) (string, error) {
	expr, err := expression.NewBuilder().
		WithProjection(expression.NamesList(expression.Name("idLastDigits"))).
		Build()
	if err != nil {
		return "", fmt.Errorf("failed to build expression: %w", err)
	}

	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      stringKey("id", userID),
		ProjectionExpression:     expr.Projection(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get identity digits from DynamoDB: %w", err)
	}
	if result.Item == nil {
		return "", nil
	}

	var item struct {
		IDLastDigits string `dynamodbav:"idLastDigits"`
	}
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return "", fmt.Errorf("failed to unmarshal identity digits: %w", err)
	}
	return item.IDLastDigits, nil
}

// LookupName implementa ports.IdentityRegistry.
func (r *EmployeeRepository) LookupName(ctx context.Context, userID string) (string, error) {
	expr, err := expression.NewBuilder().
		WithProjection(expression.NamesList(expression.Name("name"))).
		Build()
	if err != nil {
		return "", fmt.Errorf("failed to build expression: %w", err)
	}

	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      stringKey("id", userID),
		ProjectionExpression:     expr.Projection(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get employee name from DynamoDB: %w", err)
	}
	if result.Item == nil {
		return "", nil
	}

	var item struct {
		Name string `dynamodbav:"name"`
	}
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return "", fmt.Errorf("failed to unmarshal employee name: %w", err)
	}
	return item.Name, nil
}

// Asegurarse de que EmployeeRepository implementa los puertos
var (
	_ ports.EmployeeRepository = (*EmployeeRepository)(nil)
	_ ports.IdentityRegistry   = (*EmployeeRepository)(nil)
)
