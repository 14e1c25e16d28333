package s3

import (
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apps3 "localaws/application/s3"
	s3model "localaws/domain/s3"
	apperrors "localaws/pkg/errors"
)

// binder extracts typed operation inputs from one HTTP request. Bucket and
// key are resolved by the router and passed in.
type binder struct {
	r      *http.Request
	bucket string
	key    string
}

// metadataPrefix marks user metadata headers; the prefix is stripped and
// the remainder kept in the canonical form net/http gives header names
// (x-amz-meta-myKey is stored as Mykey), not in the case as sent.
const metadataPrefix = "x-amz-meta-"

func (b *binder) headerStr(name string) string {
	return b.r.Header.Get(name)
}

// headerBool accepts true/TRUE/True; anything else is false.
func (b *binder) headerBool(name string) bool {
	return strings.EqualFold(b.r.Header.Get(name), "true")
}

// headerTime parses the timestamp formats clients send: RFC 3339, RFC 1123
// and RFC 2822 dates.
func (b *binder) headerTime(name string) *time.Time {
	raw := b.r.Header.Get(name)
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, http.TimeFormat, time.RFC1123Z, time.RFC822Z} {
		if t, err := time.Parse(layout, raw); err == nil {
			utc := t.UTC()
			return &utc
		}
	}
	return nil
}

func (b *binder) queryStr(name string) string {
	return b.r.URL.Query().Get(name)
}

func (b *binder) queryInt(name string) int {
	n, err := strconv.Atoi(b.r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return n
}

// collectMetadata gathers every x-amz-meta-* header with the prefix
// stripped.
func (b *binder) collectMetadata() map[string]string {
	metadata := map[string]string{}
	for name, values := range b.r.Header {
		lower := strings.ToLower(name)
		if strings.HasPrefix(lower, metadataPrefix) && len(values) > 0 {
			metadata[name[len(metadataPrefix):]] = values[0]
		}
	}
	if len(metadata) == 0 {
		return nil
	}
	return metadata
}

func (b *binder) requireBucket() (string, error) {
	if b.bucket == "" {
		return "", apperrors.NewInvalidRequestError("Missing bucket name")
	}
	return b.bucket, nil
}

func (b *binder) requireKey() (string, error) {
	if b.key == "" {
		return "", apperrors.NewInvalidRequestError("Missing object key")
	}
	return b.key, nil
}

func (b *binder) readBody() ([]byte, error) {
	body, err := io.ReadAll(b.r.Body)
	if err != nil {
		return nil, apperrors.NewInvalidRequestError("Unable to read request body")
	}
	return body, nil
}

// parseXMLBody decodes the request body into an S3 XML document.
func parseXMLBody[T any](b *binder) (*T, error) {
	body, err := b.readBody()
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, apperrors.NewMalformedXMLError()
	}
	doc := new(T)
	if err := s3model.Unmarshal(body, doc); err != nil {
		return nil, apperrors.NewMalformedXMLError()
	}
	return doc, nil
}

// parseTaggingHeader splits the x-amz-tagging query-encoded header.
func parseTaggingHeader(raw string) map[string]string {
	if raw == "" {
		return nil
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return nil
	}
	tags := map[string]string{}
	for key := range values {
		tags[key] = values.Get(key)
	}
	return tags
}

// bindPutObject builds a PutObjectInput from headers and body.
func (b *binder) bindPutObject() (*apps3.PutObjectInput, error) {
	bucket, err := b.requireBucket()
	if err != nil {
		return nil, err
	}
	key, err := b.requireKey()
	if err != nil {
		return nil, err
	}
	body, err := b.readBody()
	if err != nil {
		return nil, err
	}

	input := &apps3.PutObjectInput{
		Bucket:             bucket,
		Key:                key,
		Body:               body,
		ContentType:        b.headerStr("Content-Type"),
		ContentEncoding:    b.headerStr("Content-Encoding"),
		ContentLanguage:    b.headerStr("Content-Language"),
		ContentDisposition: b.headerStr("Content-Disposition"),
		CacheControl:       b.headerStr("Cache-Control"),
		Expires:            b.headerStr("Expires"),
		Metadata:           b.collectMetadata(),
		StorageClass:       s3model.StorageClass(b.headerStr("x-amz-storage-class")),
		Tagging:            parseTaggingHeader(b.headerStr("x-amz-tagging")),
		ACL:                b.headerStr("x-amz-acl"),
		SSEAlgorithm:       s3model.ServerSideEncryption(b.headerStr("x-amz-server-side-encryption")),
		SSEKMSKeyID:        b.headerStr("x-amz-server-side-encryption-aws-kms-key-id"),
		ObjectLockMode:     s3model.ObjectLockMode(b.headerStr("x-amz-object-lock-mode")),
		LegalHold:          s3model.LegalHoldStatus(b.headerStr("x-amz-object-lock-legal-hold")),
	}
	if retain := b.headerTime("x-amz-object-lock-retain-until-date"); retain != nil {
		input.ObjectLockRetainTill = retain
	}
	if algorithm := b.headerStr("x-amz-sdk-checksum-algorithm"); algorithm != "" {
		input.ChecksumAlgorithm = s3model.ChecksumAlgorithm(algorithm)
		input.ChecksumValue = b.headerStr("x-amz-checksum-" + strings.ToLower(algorithm))
	}
	return input, nil
}

// bindGetObject builds a GetObjectInput from headers and query.
func (b *binder) bindGetObject() (*apps3.GetObjectInput, error) {
	bucket, err := b.requireBucket()
	if err != nil {
		return nil, err
	}
	key, err := b.requireKey()
	if err != nil {
		return nil, err
	}
	return &apps3.GetObjectInput{
		Bucket:    bucket,
		Key:       key,
		VersionID: b.queryStr("versionId"),
		Range:     b.headerStr("Range"),
		Conditions: apps3.Conditions{
			IfMatch:           b.headerStr("If-Match"),
			IfNoneMatch:       b.headerStr("If-None-Match"),
			IfModifiedSince:   b.headerTime("If-Modified-Since"),
			IfUnmodifiedSince: b.headerTime("If-Unmodified-Since"),
		},
	}, nil
}

// bindCopyObject parses x-amz-copy-source into source bucket, key and
// version.
func (b *binder) bindCopyObject() (*apps3.CopyObjectInput, error) {
	bucket, err := b.requireBucket()
	if err != nil {
		return nil, err
	}
	key, err := b.requireKey()
	if err != nil {
		return nil, err
	}
	source := b.headerStr("x-amz-copy-source")
	if source == "" {
		return nil, apperrors.NewInvalidRequestError("Missing required header: x-amz-copy-source")
	}
	sourceBucket, sourceKey, sourceVersion, err := parseCopySource(source)
	if err != nil {
		return nil, err
	}
	return &apps3.CopyObjectInput{
		Bucket:            bucket,
		Key:               key,
		SourceBucket:      sourceBucket,
		SourceKey:         sourceKey,
		SourceVersionID:   sourceVersion,
		MetadataDirective: b.headerStr("x-amz-metadata-directive"),
		Metadata:          b.collectMetadata(),
		ContentType:       b.headerStr("Content-Type"),
		StorageClass:      s3model.StorageClass(b.headerStr("x-amz-storage-class")),
		Conditions: apps3.Conditions{
			IfMatch:           b.headerStr("x-amz-copy-source-if-match"),
			IfNoneMatch:       b.headerStr("x-amz-copy-source-if-none-match"),
			IfModifiedSince:   b.headerTime("x-amz-copy-source-if-modified-since"),
			IfUnmodifiedSince: b.headerTime("x-amz-copy-source-if-unmodified-since"),
		},
	}, nil
}

// parseCopySource splits "/bucket/key?versionId=..." (the leading slash is
// optional; the value may be URL-encoded).
func parseCopySource(source string) (string, string, string, error) {
	if decoded, err := url.QueryUnescape(source); err == nil {
		source = decoded
	}
	versionID := ""
	if idx := strings.Index(source, "?"); idx >= 0 {
		if values, err := url.ParseQuery(source[idx+1:]); err == nil {
			versionID = values.Get("versionId")
		}
		source = source[:idx]
	}
	source = strings.TrimPrefix(source, "/")
	parts := strings.SplitN(source, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", "", apperrors.NewInvalidArgumentError("Invalid copy source object key")
	}
	return parts[0], parts[1], versionID, nil
}

// bindUploadPart requires partNumber and uploadId.
func (b *binder) bindUploadPart() (*apps3.UploadPartInput, error) {
	bucket, err := b.requireBucket()
	if err != nil {
		return nil, err
	}
	key, err := b.requireKey()
	if err != nil {
		return nil, err
	}
	uploadID := b.queryStr("uploadId")
	partNumberRaw := b.queryStr("partNumber")
	if uploadID == "" || partNumberRaw == "" {
		return nil, apperrors.NewInvalidRequestError("Missing required parameters: partNumber, uploadId")
	}
	partNumber, err := strconv.Atoi(partNumberRaw)
	if err != nil {
		return nil, apperrors.NewInvalidArgumentError("Part number must be an integer")
	}
	body, err := b.readBody()
	if err != nil {
		return nil, err
	}
	return &apps3.UploadPartInput{
		Bucket:     bucket,
		Key:        key,
		UploadID:   uploadID,
		PartNumber: partNumber,
		Body:       body,
	}, nil
}
