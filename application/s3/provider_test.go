package s3

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	s3model "localaws/domain/s3"
	apperrors "localaws/pkg/errors"
)

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	return NewProvider("us-east-1", zap.NewNop())
}

func createBucket(t *testing.T, p *Provider, name string) {
	t.Helper()
	require.NoError(t, p.CreateBucket(&CreateBucketInput{Bucket: name}))
}

func enableVersioning(t *testing.T, p *Provider, bucket string) {
	t.Helper()
	require.NoError(t, p.PutBucketVersioning(bucket, &s3model.VersioningConfiguration{
		Status: s3model.VersioningEnabled,
	}))
}

func quotedMD5(body string) string {
	sum := md5.Sum([]byte(body))
	return `"` + hex.EncodeToString(sum[:]) + `"`
}

func requireS3Code(t *testing.T, err error, code apperrors.S3ErrorCode) {
	t.Helper()
	require.Error(t, err)
	s3Err, ok := err.(*apperrors.S3Error)
	require.True(t, ok, "expected S3Error, got %T: %v", err, err)
	assert.Equal(t, code, s3Err.Code)
}

func TestBucketLifecycle(t *testing.T) {
	p := newTestProvider(t)
	createBucket(t, p, "bkt")

	err := p.CreateBucket(&CreateBucketInput{Bucket: "bkt"})
	requireS3Code(t, err, apperrors.S3BucketAlreadyOwnedByYou)

	require.NoError(t, p.HeadBucket("bkt"))
	requireS3Code(t, p.HeadBucket("nope"), apperrors.S3NoSuchBucket)

	list := p.ListBuckets()
	require.Len(t, list.Buckets, 1)
	assert.Equal(t, "bkt", list.Buckets[0].Name)

	// Non-empty buckets cannot be deleted.
	_, err = p.PutObject(&PutObjectInput{Bucket: "bkt", Key: "k", Body: []byte("x")})
	require.NoError(t, err)
	requireS3Code(t, p.DeleteBucket("bkt"), apperrors.S3BucketNotEmpty)

	_, err = p.DeleteObject(&DeleteObjectInput{Bucket: "bkt", Key: "k"})
	require.NoError(t, err)
	require.NoError(t, p.DeleteBucket("bkt"))
}

func TestPutGetObject(t *testing.T) {
	p := newTestProvider(t)
	createBucket(t, p, "bkt")

	put, err := p.PutObject(&PutObjectInput{
		Bucket:      "bkt",
		Key:         "greeting.txt",
		Body:        []byte("hello"),
		ContentType: "text/plain",
		Metadata:    map[string]string{"Purpose": "demo"},
	})
	require.NoError(t, err)
	assert.Equal(t, quotedMD5("hello"), put.ETag)
	assert.Empty(t, put.VersionID, "unversioned buckets expose no version id")

	got, err := p.GetObject(&GetObjectInput{Bucket: "bkt", Key: "greeting.txt"})
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got.Body)
	assert.Equal(t, "text/plain", got.Object.ContentType)
	assert.Equal(t, "demo", got.Object.Metadata["Purpose"])

	_, err = p.GetObject(&GetObjectInput{Bucket: "bkt", Key: "missing"})
	requireS3Code(t, err, apperrors.S3NoSuchKey)
}

func TestRangedRead(t *testing.T) {
	p := newTestProvider(t)
	createBucket(t, p, "bkt")
	_, err := p.PutObject(&PutObjectInput{Bucket: "bkt", Key: "k", Body: []byte("0123456789")})
	require.NoError(t, err)

	got, err := p.GetObject(&GetObjectInput{Bucket: "bkt", Key: "k", Range: "bytes=2-5"})
	require.NoError(t, err)
	assert.True(t, got.PartialBody)
	assert.Equal(t, []byte("2345"), got.Body)
	assert.Equal(t, "bytes 2-5/10", got.ContentRange)

	got, err = p.GetObject(&GetObjectInput{Bucket: "bkt", Key: "k", Range: "bytes=-3"})
	require.NoError(t, err)
	assert.Equal(t, []byte("789"), got.Body)

	got, err = p.GetObject(&GetObjectInput{Bucket: "bkt", Key: "k", Range: "bytes=7-"})
	require.NoError(t, err)
	assert.Equal(t, []byte("789"), got.Body)

	_, err = p.GetObject(&GetObjectInput{Bucket: "bkt", Key: "k", Range: "bytes=99-"})
	requireS3Code(t, err, apperrors.S3InvalidRange)
}

func TestConditionalReads(t *testing.T) {
	p := newTestProvider(t)
	createBucket(t, p, "bkt")
	put, err := p.PutObject(&PutObjectInput{Bucket: "bkt", Key: "k", Body: []byte("v")})
	require.NoError(t, err)

	_, err = p.GetObject(&GetObjectInput{
		Bucket: "bkt", Key: "k",
		Conditions: Conditions{IfMatch: put.ETag},
	})
	require.NoError(t, err)

	_, err = p.GetObject(&GetObjectInput{
		Bucket: "bkt", Key: "k",
		Conditions: Conditions{IfMatch: `"wrong"`},
	})
	requireS3Code(t, err, apperrors.S3PreconditionFailed)

	_, err = p.GetObject(&GetObjectInput{
		Bucket: "bkt", Key: "k",
		Conditions: Conditions{IfNoneMatch: put.ETag},
	})
	requireS3Code(t, err, apperrors.S3NotModified)
}

func TestVersionedOverwrite(t *testing.T) {
	p := newTestProvider(t)
	createBucket(t, p, "bkt")
	enableVersioning(t, p, "bkt")

	put1, err := p.PutObject(&PutObjectInput{Bucket: "bkt", Key: "k", Body: []byte("v1")})
	require.NoError(t, err)
	assert.Equal(t, quotedMD5("v1"), put1.ETag)
	require.NotEmpty(t, put1.VersionID)

	put2, err := p.PutObject(&PutObjectInput{Bucket: "bkt", Key: "k", Body: []byte("v2")})
	require.NoError(t, err)
	require.NotEmpty(t, put2.VersionID)
	assert.NotEqual(t, put1.VersionID, put2.VersionID)

	// Latest read returns v2; the old version stays addressable.
	got, err := p.GetObject(&GetObjectInput{Bucket: "bkt", Key: "k"})
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got.Body)

	got, err = p.GetObject(&GetObjectInput{Bucket: "bkt", Key: "k", VersionID: put1.VersionID})
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got.Body)

	// Delete inserts a marker; plain reads now miss.
	del, err := p.DeleteObject(&DeleteObjectInput{Bucket: "bkt", Key: "k"})
	require.NoError(t, err)
	assert.True(t, del.DeleteMarker)
	require.NotEmpty(t, del.VersionID)

	_, err = p.GetObject(&GetObjectInput{Bucket: "bkt", Key: "k"})
	requireS3Code(t, err, apperrors.S3NoSuchKey)

	// Three entries: both versions plus the marker; latest flags correct.
	versions, err := p.ListObjectVersions(&ListObjectVersionsInput{Bucket: "bkt"})
	require.NoError(t, err)
	require.Len(t, versions.Versions, 2)
	require.Len(t, versions.DeleteMarkers, 1)
	assert.True(t, versions.DeleteMarkers[0].IsLatest)
	for _, v := range versions.Versions {
		assert.False(t, v.IsLatest)
	}
	// Newest first within the key.
	assert.Equal(t, put2.VersionID, versions.Versions[0].VersionID)
	assert.Equal(t, put1.VersionID, versions.Versions[1].VersionID)
}

func TestSuspendedVersioningOverwritesNullVersion(t *testing.T) {
	p := newTestProvider(t)
	createBucket(t, p, "bkt")
	enableVersioning(t, p, "bkt")

	put1, err := p.PutObject(&PutObjectInput{Bucket: "bkt", Key: "k", Body: []byte("v1")})
	require.NoError(t, err)

	require.NoError(t, p.PutBucketVersioning("bkt", &s3model.VersioningConfiguration{
		Status: s3model.VersioningSuspended,
	}))

	put2, err := p.PutObject(&PutObjectInput{Bucket: "bkt", Key: "k", Body: []byte("v2")})
	require.NoError(t, err)
	assert.Equal(t, s3model.NullVersionID, put2.VersionID)

	// Another suspended write replaces the null version instead of
	// appending.
	_, err = p.PutObject(&PutObjectInput{Bucket: "bkt", Key: "k", Body: []byte("v3")})
	require.NoError(t, err)

	versions, err := p.ListObjectVersions(&ListObjectVersionsInput{Bucket: "bkt"})
	require.NoError(t, err)
	assert.Len(t, versions.Versions, 2, "one real version plus one null version")

	got, err := p.GetObject(&GetObjectInput{Bucket: "bkt", Key: "k", VersionID: put1.VersionID})
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got.Body)
}

func TestDeleteSpecificVersion(t *testing.T) {
	p := newTestProvider(t)
	createBucket(t, p, "bkt")
	enableVersioning(t, p, "bkt")

	put1, err := p.PutObject(&PutObjectInput{Bucket: "bkt", Key: "k", Body: []byte("v1")})
	require.NoError(t, err)
	_, err = p.PutObject(&PutObjectInput{Bucket: "bkt", Key: "k", Body: []byte("v2")})
	require.NoError(t, err)

	_, err = p.DeleteObject(&DeleteObjectInput{Bucket: "bkt", Key: "k", VersionID: put1.VersionID})
	require.NoError(t, err)

	_, err = p.GetObject(&GetObjectInput{Bucket: "bkt", Key: "k", VersionID: put1.VersionID})
	requireS3Code(t, err, apperrors.S3NoSuchVersion)

	got, err := p.GetObject(&GetObjectInput{Bucket: "bkt", Key: "k"})
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got.Body)
}

func TestCopyObject(t *testing.T) {
	p := newTestProvider(t)
	createBucket(t, p, "src")
	createBucket(t, p, "dst")
	_, err := p.PutObject(&PutObjectInput{
		Bucket: "src", Key: "orig", Body: []byte("data"),
		Metadata: map[string]string{"From": "source"},
	})
	require.NoError(t, err)

	out, err := p.CopyObject(&CopyObjectInput{
		Bucket: "dst", Key: "copy",
		SourceBucket: "src", SourceKey: "orig",
	})
	require.NoError(t, err)
	assert.Equal(t, quotedMD5("data"), out.Result.ETag)

	got, err := p.GetObject(&GetObjectInput{Bucket: "dst", Key: "copy"})
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), got.Body)
	assert.Equal(t, "source", got.Object.Metadata["From"], "COPY directive keeps metadata")

	// Self-copy without REPLACE is illegal.
	_, err = p.CopyObject(&CopyObjectInput{
		Bucket: "src", Key: "orig",
		SourceBucket: "src", SourceKey: "orig",
	})
	requireS3Code(t, err, apperrors.S3InvalidRequest)

	// Self-copy with REPLACE swaps metadata.
	_, err = p.CopyObject(&CopyObjectInput{
		Bucket: "src", Key: "orig",
		SourceBucket: "src", SourceKey: "orig",
		MetadataDirective: "REPLACE",
		Metadata:          map[string]string{"From": "replaced"},
	})
	require.NoError(t, err)
	got, err = p.GetObject(&GetObjectInput{Bucket: "src", Key: "orig"})
	require.NoError(t, err)
	assert.Equal(t, "replaced", got.Object.Metadata["From"])
}

func TestDeleteObjects(t *testing.T) {
	p := newTestProvider(t)
	createBucket(t, p, "bkt")
	for _, key := range []string{"a", "b", "c"} {
		_, err := p.PutObject(&PutObjectInput{Bucket: "bkt", Key: key, Body: []byte(key)})
		require.NoError(t, err)
	}

	result, err := p.DeleteObjects(&DeleteObjectsInput{
		Bucket: "bkt",
		Delete: &s3model.Delete{Objects: []s3model.ObjectIdentifier{
			{Key: "a"}, {Key: "b"}, {Key: "never-existed"},
		}},
	})
	require.NoError(t, err)
	assert.Len(t, result.Deleted, 3, "deleting a missing key still succeeds")
	assert.Empty(t, result.Errors)

	_, err = p.GetObject(&GetObjectInput{Bucket: "bkt", Key: "a"})
	requireS3Code(t, err, apperrors.S3NoSuchKey)
	_, err = p.GetObject(&GetObjectInput{Bucket: "bkt", Key: "c"})
	require.NoError(t, err)

	// Quiet mode suppresses success entries.
	result, err = p.DeleteObjects(&DeleteObjectsInput{
		Bucket: "bkt",
		Delete: &s3model.Delete{
			Objects: []s3model.ObjectIdentifier{{Key: "c"}},
			Quiet:   true,
		},
	})
	require.NoError(t, err)
	assert.Empty(t, result.Deleted)
}

func TestListObjects(t *testing.T) {
	p := newTestProvider(t)
	createBucket(t, p, "bkt")
	for _, key := range []string{"docs/a.txt", "docs/b.txt", "images/c.png", "top.txt"} {
		_, err := p.PutObject(&PutObjectInput{Bucket: "bkt", Key: key, Body: []byte("x")})
		require.NoError(t, err)
	}

	all, err := p.ListObjects(&ListObjectsInput{Bucket: "bkt"})
	require.NoError(t, err)
	assert.Len(t, all.Contents, 4)
	assert.False(t, all.IsTruncated)

	prefixed, err := p.ListObjects(&ListObjectsInput{Bucket: "bkt", Prefix: "docs/"})
	require.NoError(t, err)
	assert.Len(t, prefixed.Contents, 2)

	delimited, err := p.ListObjects(&ListObjectsInput{Bucket: "bkt", Delimiter: "/"})
	require.NoError(t, err)
	assert.Len(t, delimited.Contents, 1, "only top.txt is not rolled up")
	require.Len(t, delimited.CommonPrefixes, 2)
	assert.Equal(t, "docs/", delimited.CommonPrefixes[0].Prefix)
	assert.Equal(t, "images/", delimited.CommonPrefixes[1].Prefix)

	paged, err := p.ListObjects(&ListObjectsInput{Bucket: "bkt", MaxKeys: 2})
	require.NoError(t, err)
	assert.Len(t, paged.Contents, 2)
	assert.True(t, paged.IsTruncated)
	require.NotEmpty(t, paged.NextMarker)

	rest, err := p.ListObjects(&ListObjectsInput{Bucket: "bkt", Marker: paged.NextMarker})
	require.NoError(t, err)
	assert.Len(t, rest.Contents, 2)
}

func TestListObjectsV2(t *testing.T) {
	p := newTestProvider(t)
	createBucket(t, p, "bkt")
	for _, key := range []string{"a", "b", "c", "d"} {
		_, err := p.PutObject(&PutObjectInput{Bucket: "bkt", Key: key, Body: []byte("x")})
		require.NoError(t, err)
	}

	page, err := p.ListObjectsV2(&ListObjectsV2Input{Bucket: "bkt", MaxKeys: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, page.KeyCount)
	assert.True(t, page.IsTruncated)
	require.NotEmpty(t, page.NextContinuationToken)

	rest, err := p.ListObjectsV2(&ListObjectsV2Input{
		Bucket:            "bkt",
		ContinuationToken: page.NextContinuationToken,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, rest.KeyCount)
	assert.Equal(t, "d", rest.Contents[0].Key)
}

func TestMultipartUpload(t *testing.T) {
	p := newTestProvider(t)
	createBucket(t, p, "bkt")

	initiate, err := p.CreateMultipartUpload(&CreateMultipartUploadInput{Bucket: "bkt", Key: "big"})
	require.NoError(t, err)
	uploadID := initiate.UploadID
	require.NotEmpty(t, uploadID)

	// Parts can arrive out of order.
	part2, err := p.UploadPart(&UploadPartInput{
		Bucket: "bkt", Key: "big", UploadID: uploadID, PartNumber: 2, Body: []byte("world"),
	})
	require.NoError(t, err)
	part1, err := p.UploadPart(&UploadPartInput{
		Bucket: "bkt", Key: "big", UploadID: uploadID, PartNumber: 1, Body: []byte("hello "),
	})
	require.NoError(t, err)

	out, err := p.CompleteMultipartUpload(&CompleteMultipartUploadInput{
		Bucket: "bkt", Key: "big", UploadID: uploadID,
		Parts: &s3model.CompleteMultipartUpload{Parts: []s3model.CompletedPart{
			{PartNumber: 1, ETag: part1.ETag},
			{PartNumber: 2, ETag: part2.ETag},
		}},
	})
	require.NoError(t, err)

	// Composite etag: md5 of concatenated binary part digests, dash, count.
	digest1 := md5.Sum([]byte("hello "))
	digest2 := md5.Sum([]byte("world"))
	composite := md5.Sum(append(digest1[:], digest2[:]...))
	assert.Equal(t, fmt.Sprintf(`"%s-2"`, hex.EncodeToString(composite[:])), out.Result.ETag)

	got, err := p.GetObject(&GetObjectInput{Bucket: "bkt", Key: "big"})
	require.NoError(t, err)
	assert.Equal(t, []byte("hello world"), got.Body)
	assert.Equal(t, out.Result.ETag, got.Object.ETag)

	// The upload is gone after completion.
	_, err = p.ListParts(&ListPartsInput{Bucket: "bkt", Key: "big", UploadID: uploadID})
	requireS3Code(t, err, apperrors.S3NoSuchUpload)
}

func TestMultipartUploadValidation(t *testing.T) {
	p := newTestProvider(t)
	createBucket(t, p, "bkt")
	initiate, err := p.CreateMultipartUpload(&CreateMultipartUploadInput{Bucket: "bkt", Key: "k"})
	require.NoError(t, err)
	uploadID := initiate.UploadID

	part1, err := p.UploadPart(&UploadPartInput{
		Bucket: "bkt", Key: "k", UploadID: uploadID, PartNumber: 1, Body: []byte("only"),
	})
	require.NoError(t, err)

	// A part that was never uploaded.
	_, err = p.CompleteMultipartUpload(&CompleteMultipartUploadInput{
		Bucket: "bkt", Key: "k", UploadID: uploadID,
		Parts: &s3model.CompleteMultipartUpload{Parts: []s3model.CompletedPart{
			{PartNumber: 1, ETag: part1.ETag},
			{PartNumber: 9, ETag: `"nothing"`},
		}},
	})
	requireS3Code(t, err, apperrors.S3InvalidPart)

	// Parts out of ascending order.
	_, err = p.CompleteMultipartUpload(&CompleteMultipartUploadInput{
		Bucket: "bkt", Key: "k", UploadID: uploadID,
		Parts: &s3model.CompleteMultipartUpload{Parts: []s3model.CompletedPart{
			{PartNumber: 2, ETag: part1.ETag},
			{PartNumber: 1, ETag: part1.ETag},
		}},
	})
	requireS3Code(t, err, apperrors.S3InvalidPartOrder)

	// Part numbers out of range.
	_, err = p.UploadPart(&UploadPartInput{
		Bucket: "bkt", Key: "k", UploadID: uploadID, PartNumber: 10001, Body: []byte("x"),
	})
	requireS3Code(t, err, apperrors.S3InvalidArgument)

	// Unknown upload id.
	_, err = p.UploadPart(&UploadPartInput{
		Bucket: "bkt", Key: "k", UploadID: "bogus", PartNumber: 1, Body: []byte("x"),
	})
	requireS3Code(t, err, apperrors.S3NoSuchUpload)

	// Abort removes the upload.
	require.NoError(t, p.AbortMultipartUpload(&AbortMultipartUploadInput{
		Bucket: "bkt", Key: "k", UploadID: uploadID,
	}))
	requireS3Code(t, p.AbortMultipartUpload(&AbortMultipartUploadInput{
		Bucket: "bkt", Key: "k", UploadID: uploadID,
	}), apperrors.S3NoSuchUpload)
}

func TestUploadPartReplacement(t *testing.T) {
	p := newTestProvider(t)
	createBucket(t, p, "bkt")
	initiate, err := p.CreateMultipartUpload(&CreateMultipartUploadInput{Bucket: "bkt", Key: "k"})
	require.NoError(t, err)

	_, err = p.UploadPart(&UploadPartInput{
		Bucket: "bkt", Key: "k", UploadID: initiate.UploadID, PartNumber: 1, Body: []byte("first"),
	})
	require.NoError(t, err)
	replaced, err := p.UploadPart(&UploadPartInput{
		Bucket: "bkt", Key: "k", UploadID: initiate.UploadID, PartNumber: 1, Body: []byte("second"),
	})
	require.NoError(t, err)

	parts, err := p.ListParts(&ListPartsInput{Bucket: "bkt", Key: "k", UploadID: initiate.UploadID})
	require.NoError(t, err)
	require.Len(t, parts.Parts, 1)
	assert.Equal(t, replaced.ETag, parts.Parts[0].ETag)
}

func TestConfigurationSlots(t *testing.T) {
	p := newTestProvider(t)
	createBucket(t, p, "bkt")

	// Absent slots answer with their dedicated error kinds.
	_, err := p.GetBucketCors("bkt")
	requireS3Code(t, err, apperrors.S3NoSuchCORSConfiguration)
	_, err = p.GetBucketLifecycle("bkt")
	requireS3Code(t, err, apperrors.S3NoSuchLifecycleConfiguration)
	_, err = p.GetBucketTagging("bkt")
	requireS3Code(t, err, apperrors.S3NoSuchTagSet)
	_, err = p.GetBucketPolicy("bkt")
	requireS3Code(t, err, apperrors.S3NoSuchBucketPolicy)
	_, err = p.GetBucketEncryption("bkt")
	requireS3Code(t, err, apperrors.S3SSEConfigurationNotFound)
	_, err = p.GetBucketWebsite("bkt")
	requireS3Code(t, err, apperrors.S3NoSuchWebsiteConfiguration)
	_, err = p.GetPublicAccessBlock("bkt")
	requireS3Code(t, err, apperrors.S3NoSuchPublicAccessBlockConfiguration)

	// Round trip one slot.
	require.NoError(t, p.PutBucketCors("bkt", &s3model.CORSConfiguration{
		Rules: []s3model.CORSRule{{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET"},
		}},
	}))
	cors, err := p.GetBucketCors("bkt")
	require.NoError(t, err)
	require.Len(t, cors.Rules, 1)

	// DELETE is idempotent.
	require.NoError(t, p.DeleteBucketCors("bkt"))
	require.NoError(t, p.DeleteBucketCors("bkt"))
	_, err = p.GetBucketCors("bkt")
	requireS3Code(t, err, apperrors.S3NoSuchCORSConfiguration)

	// Policy text is stored verbatim.
	policy := `{"Version":"2012-10-17","Statement":[]}`
	require.NoError(t, p.PutBucketPolicy("bkt", policy))
	got, err := p.GetBucketPolicy("bkt")
	require.NoError(t, err)
	assert.Equal(t, policy, got)
}

func TestObjectTagging(t *testing.T) {
	p := newTestProvider(t)
	createBucket(t, p, "bkt")
	_, err := p.PutObject(&PutObjectInput{Bucket: "bkt", Key: "k", Body: []byte("x")})
	require.NoError(t, err)

	require.NoError(t, p.PutObjectTagging(&ObjectTaggingInput{
		Bucket: "bkt", Key: "k",
		Tagging: &s3model.Tagging{TagSet: []s3model.TagEntry{
			{Key: "env", Value: "dev"},
			{Key: "app", Value: "demo"},
		}},
	}))

	tags, err := p.GetObjectTagging(&ObjectTaggingInput{Bucket: "bkt", Key: "k"})
	require.NoError(t, err)
	require.Len(t, tags.TagSet, 2)
	// Sorted by key for deterministic output.
	assert.Equal(t, "app", tags.TagSet[0].Key)

	require.NoError(t, p.DeleteObjectTagging(&ObjectTaggingInput{Bucket: "bkt", Key: "k"}))
	tags, err = p.GetObjectTagging(&ObjectTaggingInput{Bucket: "bkt", Key: "k"})
	require.NoError(t, err)
	assert.Empty(t, tags.TagSet)
}

func TestGetBucketLocation(t *testing.T) {
	p := NewProvider("eu-west-1", zap.NewNop())
	require.NoError(t, p.CreateBucket(&CreateBucketInput{Bucket: "bkt"}))

	location, err := p.GetBucketLocation("bkt")
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", location.Location)

	east := NewProvider("us-east-1", zap.NewNop())
	require.NoError(t, east.CreateBucket(&CreateBucketInput{Bucket: "bkt"}))
	location, err = east.GetBucketLocation("bkt")
	require.NoError(t, err)
	assert.Empty(t, location.Location, "us-east-1 renders as an empty constraint")
}

func TestPostObjectBehavesAsPut(t *testing.T) {
	p := newTestProvider(t)
	createBucket(t, p, "bkt")

	out, err := p.PostObject(&PostObjectInput{
		Bucket:              "bkt",
		Key:                 "form-upload",
		Body:                []byte("posted"),
		SuccessActionStatus: 201,
	})
	require.NoError(t, err)
	assert.Equal(t, 201, out.Status)
	require.NotNil(t, out.Response)
	assert.Equal(t, "form-upload", out.Response.Key)
	assert.Equal(t, quotedMD5("posted"), out.Response.ETag)

	got, err := p.GetObject(&GetObjectInput{Bucket: "bkt", Key: "form-upload"})
	require.NoError(t, err)
	assert.Equal(t, []byte("posted"), got.Body)

	// Default response shape is an empty 204.
	out, err = p.PostObject(&PostObjectInput{Bucket: "bkt", Key: "quiet", Body: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, 204, out.Status)
	assert.Nil(t, out.Response)
}
