package s3

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	s3model "localaws/domain/s3"
	apperrors "localaws/pkg/errors"
)

// PutObject stores a new object or version per the bucket's versioning
// state and returns its etag and version id.
func (p *Provider) PutObject(input *PutObjectInput) (*PutObjectOutput, error) {
	bucket, err := p.state.GetBucket(input.Bucket)
	if err != nil {
		return nil, err
	}

	object := p.buildObject(input)

	bucket.objMu.Lock()
	defer bucket.objMu.Unlock()

	versionID := p.insertObject(bucket, input.Key, object)

	return &PutObjectOutput{
		ETag:         object.ETag,
		VersionID:    versionID,
		SSEAlgorithm: object.SSEAlgorithm,
	}, nil
}

func (p *Provider) buildObject(input *PutObjectInput) *s3model.Object {
	storageClass := input.StorageClass
	if storageClass == "" {
		storageClass = s3model.StorageClassStandard
	}
	return &s3model.Object{
		Key:                input.Key,
		Body:               input.Body,
		ETag:               computeETag(input.Body),
		LastModified:       time.Now().UTC(),
		ContentType:        input.ContentType,
		ContentEncoding:    input.ContentEncoding,
		ContentLanguage:    input.ContentLanguage,
		ContentDisposition: input.ContentDisposition,
		CacheControl:       input.CacheControl,
		Expires:            input.Expires,
		Metadata:           input.Metadata,
		StorageClass:       storageClass,
		Tagging:            input.Tagging,
		SSEAlgorithm:       input.SSEAlgorithm,
		SSEKMSKeyID:        input.SSEKMSKeyID,
		ObjectLockMode:     input.ObjectLockMode,
		ObjectLockRetainTill: input.ObjectLockRetainTill,
		LegalHold:          input.LegalHold,
		ChecksumAlgorithm:  input.ChecksumAlgorithm,
		ChecksumValue:      input.ChecksumValue,
	}
}

// insertObject writes an object into a key's history per the bucket's
// versioning state and returns the version id exposed to the client (empty
// for unversioned buckets). Caller holds objMu.
func (p *Provider) insertObject(bucket *Bucket, key string, object *s3model.Object) string {
	now := object.LastModified
	switch bucket.VersioningStatus() {
	case s3model.VersioningEnabled:
		versionID := newVersionID()
		bucket.versions[key] = append(bucket.versions[key], &s3model.VersionEntry{
			VersionID:    versionID,
			Object:       object,
			LastModified: now,
		})
		return versionID
	case s3model.VersioningSuspended:
		history := removeNullVersion(bucket.versions[key])
		bucket.versions[key] = append(history, &s3model.VersionEntry{
			VersionID:    s3model.NullVersionID,
			Object:       object,
			LastModified: now,
		})
		return s3model.NullVersionID
	default:
		bucket.versions[key] = []*s3model.VersionEntry{{
			VersionID:    s3model.NullVersionID,
			Object:       object,
			LastModified: now,
		}}
		return ""
	}
}

// GetObject reads an object (or a specific version), honoring conditional
// and ranged reads.
func (p *Provider) GetObject(input *GetObjectInput) (*GetObjectOutput, error) {
	out, err := p.headObject(input)
	if err != nil {
		return nil, err
	}
	body := out.Object.Body
	if input.Range != "" {
		start, end, err := parseRange(input.Range, int64(len(body)))
		if err != nil {
			return nil, err
		}
		out.Body = body[start : end+1]
		out.ContentRange = fmt.Sprintf("bytes %d-%d/%d", start, end, len(body))
		out.PartialBody = true
	} else {
		out.Body = body
	}
	return out, nil
}

// HeadObject reads an object's metadata without its body.
func (p *Provider) HeadObject(input *GetObjectInput) (*GetObjectOutput, error) {
	return p.headObject(input)
}

func (p *Provider) headObject(input *GetObjectInput) (*GetObjectOutput, error) {
	bucket, err := p.state.GetBucket(input.Bucket)
	if err != nil {
		return nil, err
	}

	bucket.objMu.Lock()
	defer bucket.objMu.Unlock()

	entry, versionID, err := p.resolveVersion(bucket, input.Key, input.VersionID)
	if err != nil {
		return nil, err
	}
	object := entry.Object
	if err := checkConditions(input.Conditions, object.ETag, object.LastModified); err != nil {
		return nil, err
	}
	return &GetObjectOutput{
		Object:       object,
		VersionID:    versionID,
		TaggingCount: len(object.Tagging),
	}, nil
}

// resolveVersion locates a key's entry: the latest one, or the named
// version. A delete-marker latest reads as NoSuchKey. Caller holds objMu.
func (p *Provider) resolveVersion(bucket *Bucket, key, versionID string) (*s3model.VersionEntry, string, error) {
	history := bucket.versions[key]
	if versionID == "" {
		entry := latestEntry(history)
		if entry == nil {
			return nil, "", apperrors.NewNoSuchKeyError(key)
		}
		if entry.IsDeleteMark {
			return nil, "", apperrors.NewNoSuchKeyError(key)
		}
		exposed := entry.VersionID
		if bucket.VersioningStatus() == s3model.VersioningUnversioned {
			exposed = ""
		}
		return entry, exposed, nil
	}
	_, entry := findVersion(history, versionID)
	if entry == nil {
		return nil, "", apperrors.NewNoSuchVersionError(key)
	}
	if entry.IsDeleteMark {
		return nil, "", apperrors.NewNoSuchKeyError(key)
	}
	return entry, entry.VersionID, nil
}

// DeleteObject deletes a key (inserting a delete marker under versioning)
// or removes one specific version.
func (p *Provider) DeleteObject(input *DeleteObjectInput) (*DeleteObjectOutput, error) {
	bucket, err := p.state.GetBucket(input.Bucket)
	if err != nil {
		return nil, err
	}

	bucket.objMu.Lock()
	defer bucket.objMu.Unlock()

	return p.deleteLocked(bucket, input.Key, input.VersionID)
}

// deleteLocked performs one key/version delete. Caller holds objMu.
func (p *Provider) deleteLocked(bucket *Bucket, key, versionID string) (*DeleteObjectOutput, error) {
	history := bucket.versions[key]

	if versionID != "" {
		idx, entry := findVersion(history, versionID)
		if entry == nil {
			// Deleting a missing version succeeds silently, like S3.
			return &DeleteObjectOutput{}, nil
		}
		remaining := append(history[:idx], history[idx+1:]...)
		if len(remaining) == 0 {
			delete(bucket.versions, key)
		} else {
			bucket.versions[key] = remaining
		}
		return &DeleteObjectOutput{DeleteMarker: entry.IsDeleteMark, VersionID: versionID}, nil
	}

	switch bucket.VersioningStatus() {
	case s3model.VersioningEnabled:
		markerID := newVersionID()
		bucket.versions[key] = append(history, &s3model.VersionEntry{
			VersionID:    markerID,
			IsDeleteMark: true,
			LastModified: time.Now().UTC(),
		})
		return &DeleteObjectOutput{DeleteMarker: true, VersionID: markerID}, nil
	case s3model.VersioningSuspended:
		trimmed := removeNullVersion(history)
		bucket.versions[key] = append(trimmed, &s3model.VersionEntry{
			VersionID:    s3model.NullVersionID,
			IsDeleteMark: true,
			LastModified: time.Now().UTC(),
		})
		return &DeleteObjectOutput{DeleteMarker: true, VersionID: s3model.NullVersionID}, nil
	default:
		delete(bucket.versions, key)
		return &DeleteObjectOutput{}, nil
	}
}

// DeleteObjects deletes a batch of keys, reporting per-key results. Quiet
// mode suppresses successful entries.
func (p *Provider) DeleteObjects(input *DeleteObjectsInput) (*s3model.DeleteResult, error) {
	bucket, err := p.state.GetBucket(input.Bucket)
	if err != nil {
		return nil, err
	}
	if input.Delete == nil || len(input.Delete.Objects) == 0 {
		return nil, apperrors.NewMalformedXMLError()
	}

	bucket.objMu.Lock()
	defer bucket.objMu.Unlock()

	result := &s3model.DeleteResult{Xmlns: s3model.Namespace}
	for _, target := range input.Delete.Objects {
		out, err := p.deleteLocked(bucket, target.Key, target.VersionID)
		if err != nil {
			s3Err, ok := err.(*apperrors.S3Error)
			if !ok {
				return nil, err
			}
			result.Errors = append(result.Errors, s3model.DeleteError{
				Key:       target.Key,
				VersionID: target.VersionID,
				Code:      string(s3Err.Code),
				Message:   s3Err.Message,
			})
			continue
		}
		if input.Delete.Quiet {
			continue
		}
		deleted := s3model.DeletedObject{Key: target.Key, VersionID: target.VersionID}
		if out.DeleteMarker {
			deleted.DeleteMarker = true
			deleted.DeleteMarkerVersionID = out.VersionID
		}
		result.Deleted = append(result.Deleted, deleted)
	}
	return result, nil
}

// CopyObject copies a source object (or version) to a destination key.
// Copying an object onto itself requires the REPLACE metadata directive or
// a new storage class.
func (p *Provider) CopyObject(input *CopyObjectInput) (*CopyObjectOutput, error) {
	sourceBucket, err := p.state.GetBucket(input.SourceBucket)
	if err != nil {
		return nil, err
	}

	sourceBucket.objMu.Lock()
	entry, _, err := p.resolveVersion(sourceBucket, input.SourceKey, input.SourceVersionID)
	if err != nil {
		sourceBucket.objMu.Unlock()
		return nil, err
	}
	source := entry.Object
	if err := checkConditions(input.Conditions, source.ETag, source.LastModified); err != nil {
		sourceBucket.objMu.Unlock()
		return nil, err
	}
	copied := *source
	copied.Body = append([]byte(nil), source.Body...)
	sourceBucket.objMu.Unlock()

	replace := strings.EqualFold(input.MetadataDirective, "REPLACE")
	selfCopy := input.Bucket == input.SourceBucket && input.Key == input.SourceKey && input.SourceVersionID == ""
	if selfCopy && !replace && input.StorageClass == "" {
		return nil, apperrors.NewInvalidRequestError(
			"This copy request is illegal because it is trying to copy an object to itself without changing the object's metadata, storage class, website redirect location or encryption attributes.")
	}

	destBucket, err := p.state.GetBucket(input.Bucket)
	if err != nil {
		return nil, err
	}

	copied.Key = input.Key
	copied.LastModified = time.Now().UTC()
	if replace {
		copied.Metadata = input.Metadata
		if input.ContentType != "" {
			copied.ContentType = input.ContentType
		}
	}
	if input.StorageClass != "" {
		copied.StorageClass = input.StorageClass
	}

	destBucket.objMu.Lock()
	versionID := p.insertObject(destBucket, input.Key, &copied)
	destBucket.objMu.Unlock()

	return &CopyObjectOutput{
		Result: &s3model.CopyObjectResult{
			Xmlns:        s3model.Namespace,
			ETag:         copied.ETag,
			LastModified: s3model.NewTimestamp(copied.LastModified),
		},
		VersionID: versionID,
	}, nil
}

// parseRange interprets a `bytes=a-b` range (with suffix and open forms)
// against a body size, returning inclusive bounds.
func parseRange(spec string, size int64) (int64, int64, error) {
	if !strings.HasPrefix(spec, "bytes=") {
		return 0, 0, apperrors.NewInvalidRangeError()
	}
	spec = strings.TrimPrefix(spec, "bytes=")
	parts := strings.SplitN(spec, "-", 2)
	if len(parts) != 2 {
		return 0, 0, apperrors.NewInvalidRangeError()
	}

	// Suffix form: bytes=-N means the final N bytes.
	if parts[0] == "" {
		n, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil || n <= 0 {
			return 0, 0, apperrors.NewInvalidRangeError()
		}
		if n > size {
			n = size
		}
		return size - n, size - 1, nil
	}

	start, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || start < 0 || start >= size {
		return 0, 0, apperrors.NewInvalidRangeError()
	}
	end := size - 1
	if parts[1] != "" {
		end, err = strconv.ParseInt(parts[1], 10, 64)
		if err != nil || end < start {
			return 0, 0, apperrors.NewInvalidRangeError()
		}
		if end > size-1 {
			end = size - 1
		}
	}
	return start, end, nil
}
