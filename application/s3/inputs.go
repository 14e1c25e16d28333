package s3

import (
	"time"

	s3model "localaws/domain/s3"
)

// Typed operation inputs. The HTTP binder maps headers, query parameters,
// URI labels and bodies onto these; the provider consumes them.

// CreateBucketInput carries the CreateBucket parameters.
type CreateBucketInput struct {
	Bucket             string
	Region             string
	ObjectLockEnabled  bool
	ObjectOwnership    s3model.ObjectOwnership
	ACL                string
}

// PutObjectInput carries the PutObject parameters.
type PutObjectInput struct {
	Bucket             string
	Key                string
	Body               []byte
	ContentType        string
	ContentEncoding    string
	ContentLanguage    string
	ContentDisposition string
	CacheControl       string
	Expires            string
	Metadata           map[string]string
	StorageClass       s3model.StorageClass
	Tagging            map[string]string
	ACL                string

	SSEAlgorithm s3model.ServerSideEncryption
	SSEKMSKeyID  string

	ObjectLockMode       s3model.ObjectLockMode
	ObjectLockRetainTill *time.Time
	LegalHold            s3model.LegalHoldStatus

	ChecksumAlgorithm s3model.ChecksumAlgorithm
	ChecksumValue     string
}

// PutObjectOutput echoes the stored object's identity.
type PutObjectOutput struct {
	ETag         string
	VersionID    string
	SSEAlgorithm s3model.ServerSideEncryption
}

// Conditions carries the conditional-read headers.
type Conditions struct {
	IfMatch           string
	IfNoneMatch       string
	IfModifiedSince   *time.Time
	IfUnmodifiedSince *time.Time
}

// GetObjectInput carries the GetObject/HeadObject parameters.
type GetObjectInput struct {
	Bucket     string
	Key        string
	VersionID  string
	Range      string
	Conditions Conditions
}

// GetObjectOutput is a read object plus the response framing the handler
// needs.
type GetObjectOutput struct {
	Object        *s3model.Object
	VersionID     string
	Body          []byte
	ContentRange  string
	PartialBody   bool
	DeleteMarker  bool
	TaggingCount  int
}

// DeleteObjectInput carries the DeleteObject parameters.
type DeleteObjectInput struct {
	Bucket    string
	Key       string
	VersionID string
}

// DeleteObjectOutput reports what the delete produced.
type DeleteObjectOutput struct {
	DeleteMarker bool
	VersionID    string
}

// DeleteObjectsInput carries the DeleteObjects parameters.
type DeleteObjectsInput struct {
	Bucket string
	Delete *s3model.Delete
}

// CopyObjectInput carries the CopyObject parameters.
type CopyObjectInput struct {
	Bucket            string
	Key               string
	SourceBucket      string
	SourceKey         string
	SourceVersionID   string
	MetadataDirective string
	Metadata          map[string]string
	ContentType       string
	StorageClass      s3model.StorageClass
	Conditions        Conditions
}

// CopyObjectOutput is the copy result plus the new version id.
type CopyObjectOutput struct {
	Result    *s3model.CopyObjectResult
	VersionID string
}

// ListObjectsInput carries ListObjects (V1) parameters.
type ListObjectsInput struct {
	Bucket       string
	Prefix       string
	Delimiter    string
	Marker       string
	MaxKeys      int
	EncodingType string
}

// ListObjectsV2Input carries ListObjectsV2 parameters.
type ListObjectsV2Input struct {
	Bucket            string
	Prefix            string
	Delimiter         string
	StartAfter        string
	ContinuationToken string
	MaxKeys           int
	EncodingType      string
	FetchOwner        bool
}

// ListObjectVersionsInput carries ListObjectVersions parameters.
type ListObjectVersionsInput struct {
	Bucket          string
	Prefix          string
	Delimiter       string
	KeyMarker       string
	VersionIDMarker string
	MaxKeys         int
}

// CreateMultipartUploadInput carries CreateMultipartUpload parameters.
type CreateMultipartUploadInput struct {
	Bucket            string
	Key               string
	ContentType       string
	Metadata          map[string]string
	StorageClass      s3model.StorageClass
	Tagging           map[string]string
	ChecksumAlgorithm s3model.ChecksumAlgorithm
	ChecksumType      s3model.ChecksumType
}

// UploadPartInput carries UploadPart parameters.
type UploadPartInput struct {
	Bucket     string
	Key        string
	UploadID   string
	PartNumber int
	Body       []byte
}

// UploadPartOutput echoes the part's etag.
type UploadPartOutput struct {
	ETag string
}

// CompleteMultipartUploadInput carries CompleteMultipartUpload parameters.
type CompleteMultipartUploadInput struct {
	Bucket   string
	Key      string
	UploadID string
	Parts    *s3model.CompleteMultipartUpload
}

// CompleteMultipartUploadOutput is the completion document plus version id.
type CompleteMultipartUploadOutput struct {
	Result    *s3model.CompleteMultipartUploadResult
	VersionID string
}

// AbortMultipartUploadInput carries AbortMultipartUpload parameters.
type AbortMultipartUploadInput struct {
	Bucket   string
	Key      string
	UploadID string
}

// ListPartsInput carries ListParts parameters.
type ListPartsInput struct {
	Bucket           string
	Key              string
	UploadID         string
	MaxParts         int
	PartNumberMarker int
}

// ListMultipartUploadsInput carries ListMultipartUploads parameters.
type ListMultipartUploadsInput struct {
	Bucket     string
	Prefix     string
	Delimiter  string
	MaxUploads int
}

// ObjectTaggingInput addresses an object's tag set.
type ObjectTaggingInput struct {
	Bucket    string
	Key       string
	VersionID string
	Tagging   *s3model.Tagging
}

// ObjectACLInput addresses an object's ACL.
type ObjectACLInput struct {
	Bucket    string
	Key       string
	VersionID string
	ACL       *s3model.AccessControlPolicy
	CannedACL string
}

// ObjectRetentionInput addresses an object's retention.
type ObjectRetentionInput struct {
	Bucket    string
	Key       string
	VersionID string
	Retention *s3model.Retention
}

// ObjectLegalHoldInput addresses an object's legal hold.
type ObjectLegalHoldInput struct {
	Bucket    string
	Key       string
	VersionID string
	LegalHold *s3model.LegalHold
}

// PostObjectInput carries the POST Object form fields.
type PostObjectInput struct {
	Bucket              string
	Key                 string
	Body                []byte
	ContentType         string
	Metadata            map[string]string
	SuccessActionStatus int
}

// PostObjectOutput is the POST Object result.
type PostObjectOutput struct {
	ETag     string
	Location string
	Response *s3model.PostResponse
	Status   int
}
