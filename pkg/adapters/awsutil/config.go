package awsutil

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const (
	localDynamoDBEndpoint = "http://host.docker.internal:8000"
	localS3Endpoint       = "http://host.docker.internal:4566" // LocalStack
	localRegion           = "us-east-1"
)

// LoadConfig carga la configuración del SDK. Con local=true (AWS_SAM_LOCAL)
// apunta DynamoDB y S3 a los emuladores locales con credenciales de prueba.
func LoadConfig(ctx context.Context, local bool) (aws.Config, error) {
	var cfg aws.Config
	var err error

	if local {
		customResolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			switch service {
			case dynamodb.ServiceID:
				return aws.Endpoint{PartitionID: "aws", URL: localDynamoDBEndpoint, SigningRegion: localRegion}, nil
			case s3.ServiceID:
				return aws.Endpoint{PartitionID: "aws", URL: localS3Endpoint, SigningRegion: localRegion}, nil
			}
			return aws.Endpoint{}, &aws.EndpointNotFoundError{}
		})

		cfg, err = config.LoadDefaultConfig(ctx,
			config.WithRegion(localRegion),
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("test", "test", "test")),
			config.WithEndpointResolverWithOptions(customResolver),
		)
	} else {
		cfg, err = config.LoadDefaultConfig(ctx)
	}

	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}
	return cfg, nil
}
