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
	"github.com/practicanteticPX/DocuPrex-sub000/pkg/workflow"
)

// DocumentItem representa la estructura del ítem de DynamoDB para un Document.
// La lista de firmantes y los metadatos viajan en el mismo ítem, así un
// guardado del agregado es atómico.
type DocumentItem struct {
	ID              string         `dynamodbav:"id"`
	FileName        string         `dynamodbav:"fileName"`
	S3Key           string         `dynamodbav:"s3Key"`
	UploadDate      string         `dynamodbav:"uploadDate"` // Almacenar la fecha como string ISO 8601
	Status          string         `dynamodbav:"status"`
	OwnerID         string         `dynamodbav:"ownerId"`
	DocumentType    string         `dynamodbav:"documentType"`
	Signers         []SignerItem   `dynamodbav:"signers"`
	Metadata        map[string]any `dynamodbav:"metadata,omitempty"`
	RejectionReason string         `dynamodbav:"rejectionReason,omitempty"`
	Version         int            `dynamodbav:"version"`
	UpdatedAt       string         `dynamodbav:"updatedAt"`
}

type SignerItem struct {
	OrderPosition         int    `dynamodbav:"orderPosition"`
	Kind                  string `dynamodbav:"kind"`
	TargetID              string `dynamodbav:"targetId"`
	RoleLabel             string `dynamodbav:"roleLabel,omitempty"`
	Status                string `dynamodbav:"status"`
	ResolvedActorID       string `dynamodbav:"resolvedActorId,omitempty"`
	ResolvedByPrincipalID string `dynamodbav:"resolvedByPrincipalId,omitempty"`
	ResolvedAt            string `dynamodbav:"resolvedAt,omitempty"`
	RejectionReason       string `dynamodbav:"rejectionReason,omitempty"`
}

type DocumentRepository struct {
	client    Client
	tableName string
}

// NewDocumentRepository crea una nueva instancia de DocumentRepository. El
// valor devuelto también implementa ports.RosterRepository.
func NewDocumentRepository(client Client, tableName string) *DocumentRepository {
	return &DocumentRepository{
		client:    client,
		tableName: tableName,
	}
}

// toDocumentItem convierte un domain.Document a DocumentItem
func toDocumentItem(doc *domain.Document) *DocumentItem {
	return &DocumentItem{
		ID:              doc.ID,
		FileName:        doc.FileName,
		S3Key:           doc.S3Key,
		UploadDate:      doc.UploadDate.UTC().Format(time.RFC3339),
		Status:          string(doc.Status),
		OwnerID:         doc.OwnerID,
		DocumentType:    doc.DocumentType,
		Signers:         toSignerItems(doc.Signers),
		Metadata:        doc.Metadata,
		RejectionReason: doc.RejectionReason,
		Version:         doc.Version,
		UpdatedAt:       doc.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toSignerItems(slots []domain.SignerSlot) []SignerItem {
	items := make([]SignerItem, len(slots))
	for i, s := range slots {
		items[i] = SignerItem{
			OrderPosition:         s.OrderPosition,
			Kind:                  string(s.Kind),
			TargetID:              s.TargetID,
			RoleLabel:             s.RoleLabel,
			Status:                string(s.Status),
			ResolvedActorID:       s.ResolvedActorID,
			ResolvedByPrincipalID: s.ResolvedByPrincipalID,
			RejectionReason:       s.RejectionReason,
		}
		if s.ResolvedAt != nil {
			items[i].ResolvedAt = s.ResolvedAt.UTC().Format(time.RFC3339Nano)
		}
	}
	return items
}

// toDomainDocument convierte un DocumentItem a domain.Document
func toDomainDocument(item *DocumentItem) (*domain.Document, error) {
	uploadDate, err := time.Parse(time.RFC3339, item.UploadDate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse UploadDate: %w", err)
	}
	var updatedAt time.Time
	if item.UpdatedAt != "" {
		updatedAt, err = time.Parse(time.RFC3339Nano, item.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse UpdatedAt: %w", err)
		}
	}
	signers, err := toDomainSigners(item.Signers)
	if err != nil {
		return nil, err
	}
	return &domain.Document{
		ID:              item.ID,
		FileName:        item.FileName,
		S3Key:           item.S3Key,
		UploadDate:      uploadDate,
		Status:          domain.DocumentStatus(item.Status),
		OwnerID:         item.OwnerID,
		DocumentType:    item.DocumentType,
		Signers:         signers,
		Metadata:        item.Metadata,
		RejectionReason: item.RejectionReason,
		Version:         item.Version,
		UpdatedAt:       updatedAt,
	}, nil
}

func toDomainSigners(items []SignerItem) ([]domain.SignerSlot, error) {
	slots := make([]domain.SignerSlot, len(items))
	for i, it := range items {
		slots[i] = domain.SignerSlot{
			OrderPosition:         it.OrderPosition,
			Kind:                  domain.SlotKind(it.Kind),
			TargetID:              it.TargetID,
			RoleLabel:             it.RoleLabel,
			Status:                domain.SlotStatus(it.Status),
			ResolvedActorID:       it.ResolvedActorID,
			ResolvedByPrincipalID: it.ResolvedByPrincipalID,
			RejectionReason:       it.RejectionReason,
		}
		if it.ResolvedAt != "" {
			at, err := time.Parse(time.RFC3339Nano, it.ResolvedAt)
			if err != nil {
				return nil, fmt.Errorf("failed to parse ResolvedAt: %w", err)
			}
			slots[i].ResolvedAt = &at
		}
	}
	return slots, nil
}

// Save implementa ports.DocumentRepository.
func (r *DocumentRepository) Save(ctx context.Context, doc *domain.Document) error {
	av, err := attributevalue.MarshalMap(toDocumentItem(doc))
	if err != nil {
		return fmt.Errorf("failed to marshal document item: %w", err)
	}

	expr, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name("id"))).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build expression: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.tableName),
		Item:                     av,
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		if isConditionFailed(err) {
			return workflow.NewError(workflow.KindConflict, "dynamodb.save_document", "document "+doc.ID+" already exists", err)
		}
		return fmt.Errorf("failed to put item in DynamoDB: %w", err)
	}
	return nil
}

// FindByID implementa ports.DocumentRepository.
func (r *DocumentRepository) FindByID(ctx context.Context, id string) (*domain.Document, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            stringKey("id", id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get item from DynamoDB: %w", err)
	}
	if result.Item == nil {
		return nil, nil // No encontrado
	}

	var item DocumentItem
	err = attributevalue.UnmarshalMap(result.Item, &item)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal document item: %w", err)
	}

	return toDomainDocument(&item)
}

// Update implementa ports.DocumentRepository. Solo escribe si la versión
// guardada es la anterior a doc.Version.
func (r *DocumentRepository) Update(ctx context.Context, doc *domain.Document) error {
	item := toDocumentItem(doc)

	update := expression.Set(expression.Name("fileName"), expression.Value(item.FileName))
	update.Set(expression.Name("s3Key"), expression.Value(item.S3Key))
	update.Set(expression.Name("uploadDate"), expression.Value(item.UploadDate))
	update.Set(expression.Name("status"), expression.Value(item.Status))
	update.Set(expression.Name("ownerId"), expression.Value(item.OwnerID))
	update.Set(expression.Name("documentType"), expression.Value(item.DocumentType))
	update.Set(expression.Name("signers"), expression.Value(item.Signers))
	update.Set(expression.Name("metadata"), expression.Value(item.Metadata))
	update.Set(expression.Name("rejectionReason"), expression.Value(item.RejectionReason))
	update.Set(expression.Name("version"), expression.Value(item.Version))
	update.Set(expression.Name("updatedAt"), expression.Value(item.UpdatedAt))

	cond := expression.Name("version").Equal(expression.Value(doc.Version - 1))

	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("failed to build expression: %w", err)
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       stringKey("id", item.ID),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
	})
	if err != nil {
		if isConditionFailed(err) {
			return workflow.NewError(workflow.KindConflict, "dynamodb.update_document", "document was modified concurrently", err)
		}
		return fmt.Errorf("failed to update item in DynamoDB: %w", err)
	}
	return nil
}

// Delete implementa ports.DocumentRepository.
func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       stringKey("id", id),
	})
	if err != nil {
		return fmt.Errorf("failed to delete item from DynamoDB: %w", err)
	}
	return nil
}

// LoadRoster implementa ports.RosterRepository.
func (r *DocumentRepository) LoadRoster(ctx context.Context, documentID string) ([]domain.SignerSlot, error) {
	proj := expression.NamesList(expression.Name("signers"))
	expr, err := expression.NewBuilder().WithProjection(proj).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      stringKey("id", documentID),
		ProjectionExpression:     expr.Projection(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get roster from DynamoDB: %w", err)
	}
	if result.Item == nil {
		return nil, workflow.NewError(workflow.KindNotFound, "dynamodb.load_roster", "document "+documentID+" not found", nil)
	}

	var item struct {
		Signers []SignerItem `dynamodbav:"signers"`
	}
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal roster: %w", err)
	}
	return toDomainSigners(item.Signers)
}

// SaveRoster implementa ports.RosterRepository. Reemplaza la lista completa en
// una sola escritura.
func (r *DocumentRepository) SaveRoster(ctx context.Context, documentID string, slots []domain.SignerSlot) error {
	expr, err := expression.NewBuilder().
		WithUpdate(expression.Set(expression.Name("signers"), expression.Value(toSignerItems(slots)))).
		WithCondition(expression.AttributeExists(expression.Name("id"))).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build expression: %w", err)
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       stringKey("id", documentID),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
	})
	if err != nil {
		if isConditionFailed(err) {
			return workflow.NewError(workflow.KindNotFound, "dynamodb.save_roster", "document "+documentID+" not found", err)
		}
		return fmt.Errorf("failed to save roster in DynamoDB: %w", err)
	}
	return nil
}

// Asegurarse de que DocumentRepository implementa los puertos
var (
	_ ports.DocumentRepository = (*DocumentRepository)(nil)
	_ ports.RosterRepository   = (*DocumentRepository)(nil)
)
