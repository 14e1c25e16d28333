// Package integration drives the emulator with unmodified AWS SDK v2
// clients pointed at an httptest server, covering the wire-format contract
// end to end.
package integration

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamotypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appdynamo "localaws/application/dynamo"
	apps3 "localaws/application/s3"
	apphttp "localaws/interfaces/http"
	dynamohttp "localaws/interfaces/http/dynamo"
	s3http "localaws/interfaces/http/s3"
)

func startServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := zap.NewNop()
	router := apphttp.NewRouter(
		dynamohttp.NewHandler(appdynamo.NewProvider("us-east-1", logger), logger),
		s3http.NewHandler(apps3.NewProvider("us-east-1", logger), logger),
		logger,
		false,
	)
	server := httptest.NewServer(router.Setup())
	t.Cleanup(server.Close)
	return server
}

func sdkConfig(t *testing.T) aws.Config {
	t.Helper()
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion("us-east-1"),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("test", "test", "")),
	)
	require.NoError(t, err)
	return cfg
}

func dynamoClient(t *testing.T, server *httptest.Server) *awsdynamodb.Client {
	t.Helper()
	return awsdynamodb.NewFromConfig(sdkConfig(t), func(o *awsdynamodb.Options) {
		o.BaseEndpoint = aws.String(server.URL)
	})
}

func s3Client(t *testing.T, server *httptest.Server) *awss3.Client {
	t.Helper()
	return awss3.NewFromConfig(sdkConfig(t), func(o *awss3.Options) {
		o.BaseEndpoint = aws.String(server.URL)
		o.UsePathStyle = true
	})
}

func TestSDKDynamoPutGetQuery(t *testing.T) {
	server := startServer(t)
	client := dynamoClient(t, server)
	ctx := context.Background()

	_, err := client.CreateTable(ctx, &awsdynamodb.CreateTableInput{
		TableName: aws.String("events"),
		AttributeDefinitions: []dynamotypes.AttributeDefinition{
			{AttributeName: aws.String("pk"), AttributeType: dynamotypes.ScalarAttributeTypeS},
			{AttributeName: aws.String("sk"), AttributeType: dynamotypes.ScalarAttributeTypeN},
		},
		KeySchema: []dynamotypes.KeySchemaElement{
			{AttributeName: aws.String("pk"), KeyType: dynamotypes.KeyTypeHash},
			{AttributeName: aws.String("sk"), KeyType: dynamotypes.KeyTypeRange},
		},
		BillingMode: dynamotypes.BillingModePayPerRequest,
	})
	require.NoError(t, err)

	type event struct {
		PK   string `dynamodbav:"pk"`
		SK   int    `dynamodbav:"sk"`
		Name string `dynamodbav:"name"`
	}
	for i := 1; i <= 5; i++ {
		item, err := attributevalue.MarshalMap(event{PK: "x", SK: i, Name: "Alice"})
		require.NoError(t, err)
		_, err = client.PutItem(ctx, &awsdynamodb.PutItemInput{
			TableName: aws.String("events"),
			Item:      item,
		})
		require.NoError(t, err)
	}

	get, err := client.GetItem(ctx, &awsdynamodb.GetItemInput{
		TableName: aws.String("events"),
		Key: map[string]dynamotypes.AttributeValue{
			"pk": &dynamotypes.AttributeValueMemberS{Value: "x"},
			"sk": &dynamotypes.AttributeValueMemberN{Value: "3"},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, get.Item)
	var decoded event
	require.NoError(t, attributevalue.UnmarshalMap(get.Item, &decoded))
	assert.Equal(t, "Alice", decoded.Name)

	query, err := client.Query(ctx, &awsdynamodb.QueryInput{
		TableName:              aws.String("events"),
		KeyConditionExpression: aws.String("pk = :p AND sk BETWEEN :lo AND :hi"),
		ExpressionAttributeValues: map[string]dynamotypes.AttributeValue{
			":p":  &dynamotypes.AttributeValueMemberS{Value: "x"},
			":lo": &dynamotypes.AttributeValueMemberN{Value: "2"},
			":hi": &dynamotypes.AttributeValueMemberN{Value: "4"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int32(3), query.Count)
	assert.Len(t, query.Items, 3)

	// The conditional-check failure surfaces as the SDK's typed error.
	item, err := attributevalue.MarshalMap(event{PK: "x", SK: 3, Name: "Bob"})
	require.NoError(t, err)
	_, err = client.PutItem(ctx, &awsdynamodb.PutItemInput{
		TableName:           aws.String("events"),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(pk)"),
	})
	require.Error(t, err)
	var conditionFailed *dynamotypes.ConditionalCheckFailedException
	assert.ErrorAs(t, err, &conditionFailed)
}

func TestSDKDynamoUpdateItem(t *testing.T) {
	server := startServer(t)
	client := dynamoClient(t, server)
	ctx := context.Background()

	_, err := client.CreateTable(ctx, &awsdynamodb.CreateTableInput{
		TableName: aws.String("users"),
		AttributeDefinitions: []dynamotypes.AttributeDefinition{
			{AttributeName: aws.String("pk"), AttributeType: dynamotypes.ScalarAttributeTypeS},
		},
		KeySchema: []dynamotypes.KeySchemaElement{
			{AttributeName: aws.String("pk"), KeyType: dynamotypes.KeyTypeHash},
		},
		BillingMode: dynamotypes.BillingModePayPerRequest,
	})
	require.NoError(t, err)

	_, err = client.PutItem(ctx, &awsdynamodb.PutItemInput{
		TableName: aws.String("users"),
		Item: map[string]dynamotypes.AttributeValue{
			"pk":   &dynamotypes.AttributeValueMemberS{Value: "k1"},
			"name": &dynamotypes.AttributeValueMemberS{Value: "Alice"},
			"age":  &dynamotypes.AttributeValueMemberN{Value: "30"},
		},
	})
	require.NoError(t, err)

	update, err := client.UpdateItem(ctx, &awsdynamodb.UpdateItemInput{
		TableName: aws.String("users"),
		Key: map[string]dynamotypes.AttributeValue{
			"pk": &dynamotypes.AttributeValueMemberS{Value: "k1"},
		},
		UpdateExpression:         aws.String("SET #n = :v1, email = :v2"),
		ExpressionAttributeNames: map[string]string{"#n": "name"},
		ExpressionAttributeValues: map[string]dynamotypes.AttributeValue{
			":v1": &dynamotypes.AttributeValueMemberS{Value: "Bob"},
			":v2": &dynamotypes.AttributeValueMemberS{Value: "bob@x"},
		},
		ReturnValues: dynamotypes.ReturnValueUpdatedOld,
	})
	require.NoError(t, err)
	require.Len(t, update.Attributes, 1)
	name, ok := update.Attributes["name"].(*dynamotypes.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, "Alice", name.Value)
}

func TestSDKS3ObjectsAndVersioning(t *testing.T) {
	server := startServer(t)
	client := s3Client(t, server)
	ctx := context.Background()

	_, err := client.CreateBucket(ctx, &awss3.CreateBucketInput{Bucket: aws.String("b")})
	require.NoError(t, err)

	_, err = client.PutBucketVersioning(ctx, &awss3.PutBucketVersioningInput{
		Bucket: aws.String("b"),
		VersioningConfiguration: &s3types.VersioningConfiguration{
			Status: s3types.BucketVersioningStatusEnabled,
		},
	})
	require.NoError(t, err)

	put1, err := client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket: aws.String("b"),
		Key:    aws.String("k"),
		Body:   bytes.NewReader([]byte("v1")),
	})
	require.NoError(t, err)
	require.NotNil(t, put1.VersionId)

	put2, err := client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket: aws.String("b"),
		Key:    aws.String("k"),
		Body:   bytes.NewReader([]byte("v2")),
	})
	require.NoError(t, err)
	assert.NotEqual(t, *put1.VersionId, *put2.VersionId)

	got, err := client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String("b"), Key: aws.String("k"),
	})
	require.NoError(t, err)
	body, err := io.ReadAll(got.Body)
	require.NoError(t, err)
	assert.Equal(t, "v2", string(body))

	old, err := client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String("b"), Key: aws.String("k"), VersionId: put1.VersionId,
	})
	require.NoError(t, err)
	body, err = io.ReadAll(old.Body)
	require.NoError(t, err)
	assert.Equal(t, "v1", string(body))

	del, err := client.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String("b"), Key: aws.String("k"),
	})
	require.NoError(t, err)
	assert.NotNil(t, del.DeleteMarker)

	_, err = client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String("b"), Key: aws.String("k"),
	})
	require.Error(t, err)
	var noSuchKey *s3types.NoSuchKey
	assert.ErrorAs(t, err, &noSuchKey)

	versions, err := client.ListObjectVersions(ctx, &awss3.ListObjectVersionsInput{
		Bucket: aws.String("b"),
	})
	require.NoError(t, err)
	assert.Len(t, versions.Versions, 2)
	assert.Len(t, versions.DeleteMarkers, 1)
}

func TestSDKS3Multipart(t *testing.T) {
	server := startServer(t)
	client := s3Client(t, server)
	ctx := context.Background()

	_, err := client.CreateBucket(ctx, &awss3.CreateBucketInput{Bucket: aws.String("b")})
	require.NoError(t, err)

	initiate, err := client.CreateMultipartUpload(ctx, &awss3.CreateMultipartUploadInput{
		Bucket: aws.String("b"), Key: aws.String("big"),
	})
	require.NoError(t, err)

	part2, err := client.UploadPart(ctx, &awss3.UploadPartInput{
		Bucket: aws.String("b"), Key: aws.String("big"),
		UploadId:   initiate.UploadId,
		PartNumber: aws.Int32(2),
		Body:       bytes.NewReader([]byte("world")),
	})
	require.NoError(t, err)

	part1, err := client.UploadPart(ctx, &awss3.UploadPartInput{
		Bucket: aws.String("b"), Key: aws.String("big"),
		UploadId:   initiate.UploadId,
		PartNumber: aws.Int32(1),
		Body:       bytes.NewReader([]byte("hello ")),
	})
	require.NoError(t, err)

	complete, err := client.CompleteMultipartUpload(ctx, &awss3.CompleteMultipartUploadInput{
		Bucket: aws.String("b"), Key: aws.String("big"),
		UploadId: initiate.UploadId,
		MultipartUpload: &s3types.CompletedMultipartUpload{
			Parts: []s3types.CompletedPart{
				{PartNumber: aws.Int32(1), ETag: part1.ETag},
				{PartNumber: aws.Int32(2), ETag: part2.ETag},
			},
		},
	})
	require.NoError(t, err)
	assert.Contains(t, *complete.ETag, "-2")

	got, err := client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String("b"), Key: aws.String("big"),
	})
	require.NoError(t, err)
	body, err := io.ReadAll(got.Body)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(body))
}
