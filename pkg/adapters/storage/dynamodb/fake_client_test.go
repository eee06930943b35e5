package dynamodb

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeClient guarda ítems por clave. No evalúa expresiones: UpdateItem solo
// registra la entrada y devuelve updateErr.
type fakeClient struct {
	mu        sync.Mutex
	keyName   string
	items     map[string]map[string]types.AttributeValue
	updates   []*dynamodb.UpdateItemInput
	putErr    error
	updateErr error
}

func newFakeClient(keyName string) *fakeClient {
	return &fakeClient{keyName: keyName, items: map[string]map[string]types.AttributeValue{}}
}

func (f *fakeClient) key(m map[string]types.AttributeValue) string {
	if s, ok := m[f.keyName].(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func (f *fakeClient) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return nil, f.putErr
	}
	f.items[f.key(in.Item)] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeClient) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &dynamodb.GetItemOutput{Item: f.items[f.key(in.Key)]}, nil
}

func (f *fakeClient) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, in)
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &dynamodb.UpdateItemOutput{}, nil
}

func (f *fakeClient) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, f.key(in.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeClient) Scan(_ context.Context, _ *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := &dynamodb.ScanOutput{}
	for _, item := range f.items {
		out.Items = append(out.Items, item)
	}
	return out, nil
}
