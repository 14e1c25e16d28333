package s3

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	s3model "localaws/domain/s3"
	apperrors "localaws/pkg/errors"
)

const (
	minPartNumber = 1
	maxPartNumber = 10000
)

// CreateMultipartUpload registers a new staged upload and returns its id.
func (p *Provider) CreateMultipartUpload(input *CreateMultipartUploadInput) (*s3model.InitiateMultipartUploadResult, error) {
	bucket, err := p.state.GetBucket(input.Bucket)
	if err != nil {
		return nil, err
	}
	storageClass := input.StorageClass
	if storageClass == "" {
		storageClass = s3model.StorageClassStandard
	}
	upload := &s3model.MultipartUpload{
		UploadID:          uuid.NewString(),
		Key:               input.Key,
		Initiated:         time.Now().UTC(),
		Initiator:         s3model.DefaultOwner(),
		Owner:             s3model.DefaultOwner(),
		StorageClass:      storageClass,
		ContentType:       input.ContentType,
		Metadata:          input.Metadata,
		Tagging:           input.Tagging,
		ChecksumAlgorithm: input.ChecksumAlgorithm,
		ChecksumType:      input.ChecksumType,
		Parts:             map[int]*s3model.UploadPart{},
	}
	bucket.uploads.Store(upload.UploadID, upload)

	return &s3model.InitiateMultipartUploadResult{
		Xmlns:    s3model.Namespace,
		Bucket:   input.Bucket,
		Key:      input.Key,
		UploadID: upload.UploadID,
	}, nil
}

// UploadPart stores one part, replacing any previous upload of the same
// part number.
func (p *Provider) UploadPart(input *UploadPartInput) (*UploadPartOutput, error) {
	bucket, err := p.state.GetBucket(input.Bucket)
	if err != nil {
		return nil, err
	}
	if input.PartNumber < minPartNumber || input.PartNumber > maxPartNumber {
		return nil, apperrors.NewInvalidArgumentError(fmt.Sprintf(
			"Part number must be an integer between %d and %d, inclusive", minPartNumber, maxPartNumber))
	}
	upload, err := findUpload(bucket, input.UploadID)
	if err != nil {
		return nil, err
	}

	part := &s3model.UploadPart{
		PartNumber:   input.PartNumber,
		Body:         input.Body,
		ETag:         computeETag(input.Body),
		Size:         int64(len(input.Body)),
		LastModified: time.Now().UTC(),
	}
	bucket.objMu.Lock()
	upload.Parts[input.PartNumber] = part
	bucket.objMu.Unlock()

	return &UploadPartOutput{ETag: part.ETag}, nil
}

// CompleteMultipartUpload validates the part list, concatenates bodies in
// part-number order, stores the assembled object with the documented
// composite etag, and discards the upload.
func (p *Provider) CompleteMultipartUpload(input *CompleteMultipartUploadInput) (*CompleteMultipartUploadOutput, error) {
	bucket, err := p.state.GetBucket(input.Bucket)
	if err != nil {
		return nil, err
	}
	if input.Parts == nil || len(input.Parts.Parts) == 0 {
		return nil, apperrors.NewMalformedXMLError()
	}
	upload, err := findUpload(bucket, input.UploadID)
	if err != nil {
		return nil, err
	}

	bucket.objMu.Lock()
	defer bucket.objMu.Unlock()

	previous := 0
	for _, completed := range input.Parts.Parts {
		if completed.PartNumber <= previous {
			return nil, apperrors.NewInvalidPartOrderError()
		}
		previous = completed.PartNumber
	}

	parts := make([]*s3model.UploadPart, 0, len(input.Parts.Parts))
	for _, completed := range input.Parts.Parts {
		part, ok := upload.Parts[completed.PartNumber]
		if !ok || !etagMatches(strings.Trim(completed.ETag, `"`), part.ETag) {
			return nil, apperrors.NewInvalidPartError()
		}
		parts = append(parts, part)
	}

	var body bytes.Buffer
	var partDigests []byte
	for _, part := range parts {
		body.Write(part.Body)
		digest := md5.Sum(part.Body)
		partDigests = append(partDigests, digest[:]...)
	}

	composite := md5.Sum(partDigests)
	etag := fmt.Sprintf(`"%s-%d"`, hex.EncodeToString(composite[:]), len(input.Parts.Parts))

	object := &s3model.Object{
		Key:               upload.Key,
		Body:              body.Bytes(),
		ETag:              etag,
		LastModified:      time.Now().UTC(),
		ContentType:       upload.ContentType,
		Metadata:          upload.Metadata,
		StorageClass:      upload.StorageClass,
		Tagging:           upload.Tagging,
		ChecksumAlgorithm: upload.ChecksumAlgorithm,
		ChecksumType:      upload.ChecksumType,
		PartsCount:        len(input.Parts.Parts),
	}
	versionID := p.insertObject(bucket, upload.Key, object)
	bucket.uploads.Delete(input.UploadID)

	return &CompleteMultipartUploadOutput{
		Result: &s3model.CompleteMultipartUploadResult{
			Xmlns:    s3model.Namespace,
			Location: p.objectLocation(input.Bucket, upload.Key),
			Bucket:   input.Bucket,
			Key:      upload.Key,
			ETag:     etag,
		},
		VersionID: versionID,
	}, nil
}

// AbortMultipartUpload discards an in-progress upload and its parts.
func (p *Provider) AbortMultipartUpload(input *AbortMultipartUploadInput) error {
	bucket, err := p.state.GetBucket(input.Bucket)
	if err != nil {
		return err
	}
	if _, err := findUpload(bucket, input.UploadID); err != nil {
		return err
	}
	bucket.uploads.Delete(input.UploadID)
	return nil
}

// ListParts pages through an upload's parts by part number.
func (p *Provider) ListParts(input *ListPartsInput) (*s3model.ListPartsResult, error) {
	bucket, err := p.state.GetBucket(input.Bucket)
	if err != nil {
		return nil, err
	}
	upload, err := findUpload(bucket, input.UploadID)
	if err != nil {
		return nil, err
	}
	maxParts := input.MaxParts
	if maxParts <= 0 {
		maxParts = 1000
	}

	bucket.objMu.Lock()
	numbers := make([]int, 0, len(upload.Parts))
	for number := range upload.Parts {
		numbers = append(numbers, number)
	}
	sort.Ints(numbers)

	result := &s3model.ListPartsResult{
		Xmlns:            s3model.Namespace,
		Bucket:           input.Bucket,
		Key:              upload.Key,
		UploadID:         input.UploadID,
		PartNumberMarker: input.PartNumberMarker,
		MaxParts:         maxParts,
		Initiator:        upload.Initiator,
		Owner:            upload.Owner,
		StorageClass:     upload.StorageClass,
	}
	for _, number := range numbers {
		if number <= input.PartNumberMarker {
			continue
		}
		if len(result.Parts) == maxParts {
			result.IsTruncated = true
			break
		}
		part := upload.Parts[number]
		result.Parts = append(result.Parts, s3model.PartEntry{
			PartNumber:   number,
			LastModified: s3model.NewTimestamp(part.LastModified),
			ETag:         part.ETag,
			Size:         part.Size,
		})
		result.NextPartNumberMarker = number
	}
	bucket.objMu.Unlock()

	if !result.IsTruncated {
		result.NextPartNumberMarker = 0
	}
	return result, nil
}

// ListMultipartUploads lists in-progress uploads ordered by key then
// upload id.
func (p *Provider) ListMultipartUploads(input *ListMultipartUploadsInput) (*s3model.ListMultipartUploadsResult, error) {
	bucket, err := p.state.GetBucket(input.Bucket)
	if err != nil {
		return nil, err
	}
	maxUploads := input.MaxUploads
	if maxUploads <= 0 {
		maxUploads = 1000
	}

	var uploads []*s3model.MultipartUpload
	bucket.uploads.Range(func(_, value interface{}) bool {
		uploads = append(uploads, value.(*s3model.MultipartUpload))
		return true
	})
	sort.Slice(uploads, func(i, j int) bool {
		if uploads[i].Key != uploads[j].Key {
			return uploads[i].Key < uploads[j].Key
		}
		return uploads[i].UploadID < uploads[j].UploadID
	})

	result := &s3model.ListMultipartUploadsResult{
		Xmlns:      s3model.Namespace,
		Bucket:     input.Bucket,
		MaxUploads: maxUploads,
		Prefix:     input.Prefix,
		Delimiter:  input.Delimiter,
	}
	for _, upload := range uploads {
		if input.Prefix != "" && !strings.HasPrefix(upload.Key, input.Prefix) {
			continue
		}
		if len(result.Uploads) == maxUploads {
			result.IsTruncated = true
			break
		}
		result.Uploads = append(result.Uploads, s3model.UploadEntry{
			Key:          upload.Key,
			UploadID:     upload.UploadID,
			Initiated:    s3model.NewTimestamp(upload.Initiated),
			Initiator:    upload.Initiator,
			Owner:        upload.Owner,
			StorageClass: upload.StorageClass,
		})
		result.NextKeyMarker = upload.Key
		result.NextUploadIDMarker = upload.UploadID
	}
	if !result.IsTruncated {
		result.NextKeyMarker = ""
		result.NextUploadIDMarker = ""
	}
	return result, nil
}

func findUpload(bucket *Bucket, uploadID string) (*s3model.MultipartUpload, error) {
	value, ok := bucket.uploads.Load(uploadID)
	if !ok {
		return nil, apperrors.NewNoSuchUploadError()
	}
	return value.(*s3model.MultipartUpload), nil
}
