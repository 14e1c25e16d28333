package errors

import (
	"fmt"
	"net/http"
)

// S3ErrorCode identifies an S3 wire-level error kind. The string value is
// the Code element rendered in the XML error body.
type S3ErrorCode string

const (
	S3NoSuchBucket           S3ErrorCode = "NoSuchBucket"
	S3NoSuchKey              S3ErrorCode = "NoSuchKey"
	S3NoSuchVersion          S3ErrorCode = "NoSuchVersion"
	S3NoSuchUpload           S3ErrorCode = "NoSuchUpload"
	S3BucketAlreadyOwnedByYou S3ErrorCode = "BucketAlreadyOwnedByYou"
	S3BucketAlreadyExists    S3ErrorCode = "BucketAlreadyExists"
	S3BucketNotEmpty         S3ErrorCode = "BucketNotEmpty"
	S3InvalidRequest         S3ErrorCode = "InvalidRequest"
	S3InvalidArgument        S3ErrorCode = "InvalidArgument"
	S3InvalidPart            S3ErrorCode = "InvalidPart"
	S3InvalidPartOrder       S3ErrorCode = "InvalidPartOrder"
	S3InvalidRange           S3ErrorCode = "InvalidRange"
	S3MalformedXML           S3ErrorCode = "MalformedXML"
	S3EntityTooLarge         S3ErrorCode = "EntityTooLarge"
	S3EntityTooSmall         S3ErrorCode = "EntityTooSmall"
	S3PreconditionFailed     S3ErrorCode = "PreconditionFailed"
	S3NotModified            S3ErrorCode = "NotModified"
	S3AccessDenied           S3ErrorCode = "AccessDenied"
	S3InternalError          S3ErrorCode = "InternalError"
	S3NotImplemented         S3ErrorCode = "NotImplemented"

	// Absent per-bucket configuration slots each have a dedicated code.
	S3NoSuchCORSConfiguration      S3ErrorCode = "NoSuchCORSConfiguration"
	S3NoSuchLifecycleConfiguration S3ErrorCode = "NoSuchLifecycleConfiguration"
	S3NoSuchTagSet                 S3ErrorCode = "NoSuchTagSet"
	S3NoSuchBucketPolicy           S3ErrorCode = "NoSuchBucketPolicy"
	S3NoSuchWebsiteConfiguration   S3ErrorCode = "NoSuchWebsiteConfiguration"
	S3SSEConfigurationNotFound     S3ErrorCode = "ServerSideEncryptionConfigurationNotFoundError"
	S3ObjectLockConfigurationNotFound S3ErrorCode = "ObjectLockConfigurationNotFoundError"
	S3NoSuchPublicAccessBlockConfiguration S3ErrorCode = "NoSuchPublicAccessBlockConfiguration"
	S3OwnershipControlsNotFound    S3ErrorCode = "OwnershipControlsNotFoundError"
)

// s3StatusCodes maps each error code to the HTTP status it renders with.
var s3StatusCodes = map[S3ErrorCode]int{
	S3NoSuchBucket:            http.StatusNotFound,
	S3NoSuchKey:               http.StatusNotFound,
	S3NoSuchVersion:           http.StatusNotFound,
	S3NoSuchUpload:            http.StatusNotFound,
	S3BucketAlreadyOwnedByYou: http.StatusConflict,
	S3BucketAlreadyExists:     http.StatusConflict,
	S3BucketNotEmpty:          http.StatusConflict,
	S3InvalidRequest:          http.StatusBadRequest,
	S3InvalidArgument:         http.StatusBadRequest,
	S3InvalidPart:             http.StatusBadRequest,
	S3InvalidPartOrder:        http.StatusBadRequest,
	S3InvalidRange:            http.StatusRequestedRangeNotSatisfiable,
	S3MalformedXML:            http.StatusBadRequest,
	S3EntityTooLarge:          http.StatusBadRequest,
	S3EntityTooSmall:          http.StatusBadRequest,
	S3PreconditionFailed:      http.StatusPreconditionFailed,
	S3NotModified:             http.StatusNotModified,
	S3AccessDenied:            http.StatusForbidden,
	S3InternalError:           http.StatusInternalServerError,
	S3NotImplemented:          http.StatusNotImplemented,

	S3NoSuchCORSConfiguration:              http.StatusNotFound,
	S3NoSuchLifecycleConfiguration:         http.StatusNotFound,
	S3NoSuchTagSet:                         http.StatusNotFound,
	S3NoSuchBucketPolicy:                   http.StatusNotFound,
	S3NoSuchWebsiteConfiguration:           http.StatusNotFound,
	S3SSEConfigurationNotFound:             http.StatusNotFound,
	S3ObjectLockConfigurationNotFound:      http.StatusNotFound,
	S3NoSuchPublicAccessBlockConfiguration: http.StatusNotFound,
	S3OwnershipControlsNotFound:            http.StatusNotFound,
}

// S3Error is a wire-renderable S3 error.
type S3Error struct {
	Code    S3ErrorCode
	Message string
	// Resource names the bucket or key the error refers to, when known.
	Resource string
}

// Error implements the error interface.
func (e *S3Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// HTTPStatus maps the error code to its HTTP status.
func (e *S3Error) HTTPStatus() int {
	if status, ok := s3StatusCodes[e.Code]; ok {
		return status
	}
	return http.StatusBadRequest
}

// WithResource attaches the bucket or key the error refers to.
func (e *S3Error) WithResource(resource string) *S3Error {
	e.Resource = resource
	return e
}

// NewS3Error creates an error with an explicit code and message.
func NewS3Error(code S3ErrorCode, message string) *S3Error {
	return &S3Error{Code: code, Message: message}
}

// NewNoSuchBucketError is raised when a request names an unknown bucket.
func NewNoSuchBucketError(bucket string) *S3Error {
	return &S3Error{
		Code:     S3NoSuchBucket,
		Message:  "The specified bucket does not exist",
		Resource: bucket,
	}
}

// NewNoSuchKeyError is raised when a request names an unknown key, or the
// latest version of the key is a delete marker.
func NewNoSuchKeyError(key string) *S3Error {
	return &S3Error{
		Code:     S3NoSuchKey,
		Message:  "The specified key does not exist.",
		Resource: key,
	}
}

// NewNoSuchVersionError is raised when a versionId does not name a stored
// version of the key.
func NewNoSuchVersionError(key string) *S3Error {
	return &S3Error{
		Code:     S3NoSuchVersion,
		Message:  "The specified version does not exist.",
		Resource: key,
	}
}

// NewNoSuchUploadError is raised when an uploadId does not name an
// in-progress multipart upload.
func NewNoSuchUploadError() *S3Error {
	return &S3Error{
		Code:    S3NoSuchUpload,
		Message: "The specified upload does not exist. The upload ID may be invalid, or the upload may have been aborted or completed.",
	}
}

// NewBucketAlreadyOwnedByYouError is raised on duplicate bucket creation.
func NewBucketAlreadyOwnedByYouError(bucket string) *S3Error {
	return &S3Error{
		Code:     S3BucketAlreadyOwnedByYou,
		Message:  "Your previous request to create the named bucket succeeded and you already own it.",
		Resource: bucket,
	}
}

// NewBucketNotEmptyError is raised when deleting a bucket that still holds
// objects or in-progress uploads.
func NewBucketNotEmptyError(bucket string) *S3Error {
	return &S3Error{
		Code:     S3BucketNotEmpty,
		Message:  "The bucket you tried to delete is not empty",
		Resource: bucket,
	}
}

// NewInvalidRequestError is raised when a required header, query parameter
// or body is missing or malformed.
func NewInvalidRequestError(message string) *S3Error {
	return &S3Error{Code: S3InvalidRequest, Message: message}
}

// NewInvalidArgumentError is raised for a present-but-invalid argument.
func NewInvalidArgumentError(message string) *S3Error {
	return &S3Error{Code: S3InvalidArgument, Message: message}
}

// NewMalformedXMLError is raised when a request body fails XML decoding.
func NewMalformedXMLError() *S3Error {
	return &S3Error{
		Code:    S3MalformedXML,
		Message: "The XML you provided was not well-formed or did not validate against our published schema",
	}
}

// NewPreconditionFailedError is raised by conditional reads and writes.
func NewPreconditionFailedError(condition string) *S3Error {
	return &S3Error{
		Code:    S3PreconditionFailed,
		Message: fmt.Sprintf("At least one of the pre-conditions you specified did not hold: %s", condition),
	}
}

// NewNotModifiedError is the 304 response to If-None-Match / If-Modified-Since.
func NewNotModifiedError() *S3Error {
	return &S3Error{Code: S3NotModified, Message: "Not Modified"}
}

// NewInvalidPartError is raised when CompleteMultipartUpload names a part
// that was never uploaded or whose ETag does not match.
func NewInvalidPartError() *S3Error {
	return &S3Error{
		Code:    S3InvalidPart,
		Message: "One or more of the specified parts could not be found.  The part may not have been uploaded, or the specified entity tag may not match the part's entity tag.",
	}
}

// NewInvalidPartOrderError is raised when CompleteMultipartUpload lists
// parts out of ascending order.
func NewInvalidPartOrderError() *S3Error {
	return &S3Error{
		Code:    S3InvalidPartOrder,
		Message: "The list of parts was not in ascending order. Parts must be ordered by part number.",
	}
}

// NewInvalidRangeError is raised for an unsatisfiable Range header.
func NewInvalidRangeError() *S3Error {
	return &S3Error{
		Code:    S3InvalidRange,
		Message: "The requested range is not satisfiable",
	}
}

// NewInternalS3Error wraps an unexpected failure.
func NewInternalS3Error(cause error) *S3Error {
	return &S3Error{Code: S3InternalError, Message: cause.Error()}
}
