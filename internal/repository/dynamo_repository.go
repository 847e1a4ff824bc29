package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"catalog-sync-service/internal/models"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoAPI is the subset of the DynamoDB client used by the repository
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

var _ DynamoAPI = (*dynamodb.Client)(nil)

type DynamoCatalogRepository struct {
	client DynamoAPI
	tables Tables
	now    func() time.Time
}

func NewDynamoCatalogRepository(client DynamoAPI, tables Tables) *DynamoCatalogRepository {
	return &DynamoCatalogRepository{
		client: client,
		tables: tables,
		now:    time.Now,
	}
}

func (r *DynamoCatalogRepository) put(ctx context.Context, table string, item interface{}) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item for %s: %w", table, err)
	}
	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(table),
		Item:      av,
	}); err != nil {
		return fmt.Errorf("failed to put item into %s: %w", table, err)
	}
	return nil
}

// queryFirst runs an equality query (optionally on an index) and decodes the first match into out.
// It reports whether anything matched.
func (r *DynamoCatalogRepository) queryFirst(ctx context.Context, table, index, attribute, value string, out interface{}) (bool, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(table),
		KeyConditionExpression: aws.String("#k = :v"),
		ExpressionAttributeNames: map[string]string{
			"#k": attribute,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberS{Value: value},
		},
	}
	if index != "" {
		input.IndexName = aws.String(index)
	}

	result, err := r.client.Query(ctx, input)
	if err != nil {
		return false, fmt.Errorf("failed to query %s by %s: %w", table, attribute, err)
	}
	if len(result.Items) == 0 {
		return false, nil
	}
	if err := attributevalue.UnmarshalMap(result.Items[0], out); err != nil {
		return false, fmt.Errorf("failed to unmarshal item from %s: %w", table, err)
	}
	return true, nil
}

func (r *DynamoCatalogRepository) FindBrandByName(ctx context.Context, name string) (*models.Brand, error) {
	var brand models.Brand
	found, err := r.queryFirst(ctx, r.tables.Brand, IndexByName, "name", name, &brand)
	if err != nil || !found {
		return nil, err
	}
	return &brand, nil
}

func (r *DynamoCatalogRepository) CreateBrand(ctx context.Context, brand *models.Brand) error {
	return r.put(ctx, r.tables.Brand, brand)
}

func (r *DynamoCatalogRepository) FindProductByDefaultSku(ctx context.Context, defaultSku string) (*models.Product, error) {
	var product models.Product
	found, err := r.queryFirst(ctx, r.tables.Product, IndexByDefaultSku, "defaultSkuId", defaultSku, &product)
	if err != nil || !found {
		return nil, err
	}
	return &product, nil
}

func (r *DynamoCatalogRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	return r.put(ctx, r.tables.Product, product)
}

func (r *DynamoCatalogRepository) IncrementProductRevisions(ctx context.Context, existing *models.Product) (*models.RevisionUpdate, error) {
	next := strconv.Itoa(existing.RevisionCount() + 1)

	result, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tables.Product),
		Key: map[string]types.AttributeValue{
			"id":      &types.AttributeValueMemberS{Value: existing.ID},
			"version": &types.AttributeValueMemberN{Value: strconv.Itoa(existing.Version)},
		},
		UpdateExpression:    aws.String("SET #revisions = :revisions, #updatedAt = :updatedAt"),
		ConditionExpression: aws.String("attribute_exists(id)"),
		ExpressionAttributeNames: map[string]string{
			"#revisions": "revisions",
			"#updatedAt": "updatedAt",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":revisions": &types.AttributeValueMemberS{Value: next},
			":updatedAt": &types.AttributeValueMemberS{Value: models.Timestamp(r.now())},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil, fmt.Errorf("product %s version %d: %w", existing.ID, existing.Version, ErrConditionFailed)
		}
		return nil, fmt.Errorf("failed to update product %s: %w", existing.ID, err)
	}

	update := &models.RevisionUpdate{Version: existing.Version, Revisions: next}
	if len(result.Attributes) > 0 {
		if err := attributevalue.UnmarshalMap(result.Attributes, update); err != nil {
			return nil, fmt.Errorf("failed to unmarshal updated product %s: %w", existing.ID, err)
		}
	}
	return update, nil
}

func (r *DynamoCatalogRepository) CreateVariation(ctx context.Context, variation *models.Variation) error {
	return r.put(ctx, r.tables.Variation, variation)
}

func (r *DynamoCatalogRepository) CreateProductOption(ctx context.Context, option *models.ProductOption) error {
	return r.put(ctx, r.tables.ProductOption, option)
}

func (r *DynamoCatalogRepository) FindSku(ctx context.Context, id string) (*models.Sku, error) {
	var sku models.Sku
	found, err := r.queryFirst(ctx, r.tables.Sku, "", "id", id, &sku)
	if err != nil || !found {
		return nil, err
	}
	return &sku, nil
}

func (r *DynamoCatalogRepository) CreateSku(ctx context.Context, sku *models.Sku) error {
	return r.put(ctx, r.tables.Sku, sku)
}

func (r *DynamoCatalogRepository) CreateProductOptionSku(ctx context.Context, link *models.ProductOptionSku) error {
	return r.put(ctx, r.tables.ProductOptionSku, link)
}

func (r *DynamoCatalogRepository) VerifyTables(ctx context.Context) error {
	for _, table := range r.tables.All() {
		_, err := r.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(table)})
		if err == nil {
			continue
		}
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return missingTable(table)
		}
		return fmt.Errorf("failed to describe table %s: %w", table, err)
	}
	return nil
}
