package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/practicanteticPX/DocuPrex-sub000/pkg/adapters/awsutil"
	"github.com/practicanteticPX/DocuPrex-sub000/pkg/domain"
	"github.com/practicanteticPX/DocuPrex-sub000/pkg/ports"
)

// putObjectAPI es el subconjunto de *s3.Client que usa el archivo.
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// EventArchive guarda cada evento de notificación como un objeto JSON, de modo
// que queda un rastro de auditoría por documento aunque la entrega falle.
type EventArchive struct {
	client     putObjectAPI
	bucketName string
}

// NewEventArchive crea una nueva instancia de EventArchive
func NewEventArchive(ctx context.Context, bucketName string, local bool) (*EventArchive, error) {
	cfg, err := awsutil.LoadConfig(ctx, local)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		// LocalStack no resuelve buckets como subdominio
		o.UsePathStyle = local
	})
	return newEventArchive(client, bucketName), nil
}

func newEventArchive(client putObjectAPI, bucketName string) *EventArchive {
	return &EventArchive{client: client, bucketName: bucketName}
}

// EventKey arma la clave del objeto: events/<documento>/<fecha>_<evento>.json
func EventKey(event domain.NotificationEvent) string {
	return fmt.Sprintf("events/%s/%s_%s.json",
		event.DocumentID,
		event.CreatedAt.UTC().Format("20060102T150405.000000000Z"),
		event.ID,
	)
}

// Publish implementa ports.NotificationPublisher.
func (a *EventArchive) Publish(ctx context.Context, event domain.NotificationEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucketName),
		Key:         aws.String(EventKey(event)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"event-type":  string(event.Type),
			"document-id": event.DocumentID,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to put event object: %w", err)
	}
	return nil
}

// Asegurarse de que EventArchive implementa ports.NotificationPublisher
var _ ports.NotificationPublisher = (*EventArchive)(nil)
