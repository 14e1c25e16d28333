package s3

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTrip[T any](t *testing.T, value *T) *T {
	t.Helper()
	data, err := Marshal(value)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), `<?xml version="1.0" encoding="UTF-8"?>`))

	decoded := new(T)
	require.NoError(t, Unmarshal(data, decoded))
	return decoded
}

func TestListAllMyBucketsRoundTrip(t *testing.T) {
	doc := &ListAllMyBucketsResult{
		Xmlns: Namespace,
		Owner: DefaultOwner(),
		Buckets: []BucketInfo{
			{Name: "alpha", CreationDate: NewTimestamp(time.Date(2024, 3, 1, 12, 30, 45, 123000000, time.UTC))},
			{Name: "beta", CreationDate: NewTimestamp(time.Date(2024, 4, 2, 8, 0, 0, 0, time.UTC))},
		},
	}
	decoded := roundTrip(t, doc)
	assert.Equal(t, doc.Owner.ID, decoded.Owner.ID)
	require.Len(t, decoded.Buckets, 2)
	assert.Equal(t, doc.Buckets[0], decoded.Buckets[0])
	assert.Equal(t, Namespace, decoded.Xmlns)
}

func TestTimestampWireFormat(t *testing.T) {
	doc := &CopyObjectResult{
		Xmlns:        Namespace,
		ETag:         `"abc"`,
		LastModified: NewTimestamp(time.Date(2024, 3, 1, 12, 30, 45, 123000000, time.UTC)),
	}
	data, err := Marshal(doc)
	require.NoError(t, err)
	assert.Contains(t, string(data), "2024-03-01T12:30:45.123Z")

	decoded := roundTrip(t, doc)
	assert.True(t, decoded.LastModified.Equal(doc.LastModified.Time))
}

func TestBooleansAreLowercase(t *testing.T) {
	doc := &ListBucketResult{
		Xmlns:       Namespace,
		Name:        "b",
		MaxKeys:     1000,
		IsTruncated: true,
	}
	data, err := Marshal(doc)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<IsTruncated>true</IsTruncated>")
}

func TestVersioningConfigurationRoundTrip(t *testing.T) {
	doc := &VersioningConfiguration{Xmlns: Namespace, Status: VersioningEnabled}
	decoded := roundTrip(t, doc)
	assert.Equal(t, VersioningEnabled, decoded.Status)
}

func TestUnknownEnumDecodesToDefault(t *testing.T) {
	var status VersioningStatus
	input := `<VersioningConfiguration><Status>Bogus</Status></VersioningConfiguration>`
	var cfg VersioningConfiguration
	require.NoError(t, Unmarshal([]byte(input), &cfg))
	assert.Equal(t, status, cfg.Status, "unknown status decodes to the zero default")

	var entry ObjectEntry
	require.NoError(t, Unmarshal([]byte(
		`<Contents><Key>k</Key><StorageClass>SHINY_NEW_CLASS</StorageClass></Contents>`), &entry))
	assert.Equal(t, StorageClassStandard, entry.StorageClass)
}

func TestGranteeEmitsXSIType(t *testing.T) {
	doc := DefaultACL()
	data, err := Marshal(doc)
	require.NoError(t, err)
	body := string(data)
	assert.Contains(t, body, `xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"`)
	assert.Contains(t, body, `xsi:type="CanonicalUser"`)

	var decoded AccessControlPolicy
	require.NoError(t, Unmarshal(data, &decoded))
	require.Len(t, decoded.Grants, 1)
	assert.Equal(t, GranteeCanonicalUser, decoded.Grants[0].Grantee.Type)
	assert.Equal(t, doc.Grants[0].Grantee.ID, decoded.Grants[0].Grantee.ID)
	assert.Equal(t, PermissionFullControl, decoded.Grants[0].Permission)
}

func TestCompleteMultipartUploadRequestParsing(t *testing.T) {
	input := `<CompleteMultipartUpload>
  <Part><PartNumber>1</PartNumber><ETag>"aaa"</ETag></Part>
  <Part><PartNumber>2</PartNumber><ETag>"bbb"</ETag></Part>
</CompleteMultipartUpload>`
	var doc CompleteMultipartUpload
	require.NoError(t, Unmarshal([]byte(input), &doc))
	require.Len(t, doc.Parts, 2)
	assert.Equal(t, 1, doc.Parts[0].PartNumber)
	assert.Equal(t, `"bbb"`, doc.Parts[1].ETag)
}

func TestDeleteRequestParsing(t *testing.T) {
	input := `<Delete>
  <Object><Key>a</Key></Object>
  <Object><Key>b</Key><VersionId>v1</VersionId></Object>
  <Quiet>true</Quiet>
</Delete>`
	var doc Delete
	require.NoError(t, Unmarshal([]byte(input), &doc))
	require.Len(t, doc.Objects, 2)
	assert.True(t, doc.Quiet)
	assert.Equal(t, "v1", doc.Objects[1].VersionID)
}

func TestCORSConfigurationRoundTrip(t *testing.T) {
	maxAge := 3600
	doc := &CORSConfiguration{
		Xmlns: Namespace,
		Rules: []CORSRule{{
			AllowedOrigins: []string{"https://example.com"},
			AllowedMethods: []string{"GET", "PUT"},
			AllowedHeaders: []string{"*"},
			MaxAgeSeconds:  &maxAge,
		}},
	}
	decoded := roundTrip(t, doc)
	require.Len(t, decoded.Rules, 1)
	assert.Equal(t, doc.Rules[0].AllowedOrigins, decoded.Rules[0].AllowedOrigins)
	require.NotNil(t, decoded.Rules[0].MaxAgeSeconds)
	assert.Equal(t, 3600, *decoded.Rules[0].MaxAgeSeconds)
}

func TestTaggingRoundTrip(t *testing.T) {
	doc := &Tagging{
		Xmlns:  Namespace,
		TagSet: []TagEntry{{Key: "env", Value: "dev"}, {Key: "team", Value: "core"}},
	}
	decoded := roundTrip(t, doc)
	assert.Equal(t, doc.TagSet, decoded.TagSet)
}

func TestOptionalFieldsAreOmitted(t *testing.T) {
	doc := &ListVersionsResult{Xmlns: Namespace, Name: "b", MaxKeys: 1000}
	data, err := Marshal(doc)
	require.NoError(t, err)
	body := string(data)
	assert.NotContains(t, body, "NextKeyMarker")
	assert.NotContains(t, body, "Delimiter")
}

func TestLifecycleConfigurationRoundTrip(t *testing.T) {
	days := 30
	prefix := "logs/"
	doc := &LifecycleConfiguration{
		Xmlns: Namespace,
		Rules: []LifecycleRule{{
			ID:         "expire-logs",
			Prefix:     &prefix,
			Status:     LifecycleRuleEnabled,
			Expiration: &LifecycleExpiration{Days: &days},
		}},
	}
	decoded := roundTrip(t, doc)
	require.Len(t, decoded.Rules, 1)
	assert.Equal(t, "expire-logs", decoded.Rules[0].ID)
	require.NotNil(t, decoded.Rules[0].Expiration.Days)
	assert.Equal(t, 30, *decoded.Rules[0].Expiration.Days)
}

func TestPublicAccessBlockRoundTrip(t *testing.T) {
	doc := &PublicAccessBlockConfiguration{
		Xmlns:             Namespace,
		BlockPublicAcls:   true,
		IgnorePublicAcls:  true,
		BlockPublicPolicy: false,
	}
	decoded := roundTrip(t, doc)
	assert.Equal(t, doc.BlockPublicAcls, decoded.BlockPublicAcls)
	assert.Equal(t, doc.BlockPublicPolicy, decoded.BlockPublicPolicy)
}

func TestOwnershipControlsWireSpelling(t *testing.T) {
	doc := &OwnershipControls{
		Xmlns: Namespace,
		Rules: []OwnershipControlsRule{{ObjectOwnership: OwnershipBucketOwnerEnforced}},
	}
	data, err := Marshal(doc)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<ObjectOwnership>BucketOwnerEnforced</ObjectOwnership>")
}

func TestErrorDocumentShape(t *testing.T) {
	doc := &ErrorDocument{
		Code:      "NoSuchKey",
		Message:   "The specified key does not exist.",
		RequestID: "req-1",
	}
	data, err := Marshal(doc)
	require.NoError(t, err)
	body := string(data)
	assert.Contains(t, body, "<Code>NoSuchKey</Code>")
	assert.Contains(t, body, "<RequestId>req-1</RequestId>")
}
