package s3

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	s3model "localaws/domain/s3"
	apperrors "localaws/pkg/errors"
)

// Provider implements every S3 operation against the service state.
type Provider struct {
	state  *State
	region string
	logger *zap.Logger
}

// NewProvider creates a provider for the given region.
func NewProvider(region string, logger *zap.Logger) *Provider {
	return &Provider{
		state:  NewState(),
		region: region,
		logger: logger,
	}
}

// CreateBucket registers a new bucket with its initial configuration.
func (p *Provider) CreateBucket(input *CreateBucketInput) error {
	region := input.Region
	if region == "" {
		region = p.region
	}
	bucket, err := p.state.CreateBucket(input.Bucket, region)
	if err != nil {
		return err
	}
	bucket.acl.set(s3model.DefaultACL())
	if input.ObjectOwnership != "" {
		bucket.ownership.set(&s3model.OwnershipControls{
			Xmlns: s3model.Namespace,
			Rules: []s3model.OwnershipControlsRule{{ObjectOwnership: input.ObjectOwnership}},
		})
	}
	if input.ObjectLockEnabled {
		bucket.objectLock.set(&s3model.ObjectLockConfiguration{
			Xmlns:             s3model.Namespace,
			ObjectLockEnabled: "Enabled",
		})
		// Object lock requires versioning.
		bucket.versioning.set(&s3model.VersioningConfiguration{
			Xmlns:  s3model.Namespace,
			Status: s3model.VersioningEnabled,
		})
	}
	p.logger.Info("bucket created", zap.String("bucket", input.Bucket))
	return nil
}

// DeleteBucket removes an empty bucket.
func (p *Provider) DeleteBucket(name string) error {
	if err := p.state.DeleteBucket(name); err != nil {
		return err
	}
	p.logger.Info("bucket deleted", zap.String("bucket", name))
	return nil
}

// HeadBucket checks bucket existence.
func (p *Provider) HeadBucket(name string) error {
	_, err := p.state.GetBucket(name)
	return err
}

// ListBuckets returns the ListAllMyBucketsResult document.
func (p *Provider) ListBuckets() *s3model.ListAllMyBucketsResult {
	buckets := p.state.ListBuckets()
	result := &s3model.ListAllMyBucketsResult{
		Xmlns: s3model.Namespace,
		Owner: s3model.DefaultOwner(),
	}
	for _, b := range buckets {
		result.Buckets = append(result.Buckets, s3model.BucketInfo{
			Name:         b.Name,
			CreationDate: s3model.NewTimestamp(b.CreationDate),
		})
	}
	return result
}

// GetBucketLocation returns the bucket's region document. us-east-1 renders
// as an empty LocationConstraint per the S3 contract.
func (p *Provider) GetBucketLocation(name string) (*s3model.LocationConstraint, error) {
	bucket, err := p.state.GetBucket(name)
	if err != nil {
		return nil, err
	}
	location := bucket.Region
	if location == "us-east-1" {
		location = ""
	}
	return &s3model.LocationConstraint{Xmlns: s3model.Namespace, Location: location}, nil
}

// computeETag renders the quoted MD5 etag of a body.
func computeETag(body []byte) string {
	sum := md5.Sum(body)
	return `"` + hex.EncodeToString(sum[:]) + `"`
}

// newVersionID mints an opaque unique version id.
func newVersionID() string {
	return uuid.NewString()
}

// latestEntry returns a key's latest version entry.
func latestEntry(history []*s3model.VersionEntry) *s3model.VersionEntry {
	if len(history) == 0 {
		return nil
	}
	return history[len(history)-1]
}

// findVersion locates a version entry and its index by id.
func findVersion(history []*s3model.VersionEntry, versionID string) (int, *s3model.VersionEntry) {
	for i, entry := range history {
		if entry.VersionID == versionID {
			return i, entry
		}
	}
	return -1, nil
}

// removeNullVersion drops a key's "null" entry, used before re-inserting it
// as latest under suspended versioning.
func removeNullVersion(history []*s3model.VersionEntry) []*s3model.VersionEntry {
	out := history[:0]
	for _, entry := range history {
		if entry.VersionID != s3model.NullVersionID {
			out = append(out, entry)
		}
	}
	return out
}

// checkConditions evaluates the conditional-read headers against an
// object's etag and modification time.
func checkConditions(cond Conditions, etag string, lastModified time.Time) error {
	if cond.IfMatch != "" && !etagMatches(cond.IfMatch, etag) {
		return apperrors.NewPreconditionFailedError("If-Match")
	}
	if cond.IfUnmodifiedSince != nil && lastModified.After(*cond.IfUnmodifiedSince) {
		if cond.IfMatch == "" {
			return apperrors.NewPreconditionFailedError("If-Unmodified-Since")
		}
	}
	if cond.IfNoneMatch != "" && etagMatches(cond.IfNoneMatch, etag) {
		return apperrors.NewNotModifiedError()
	}
	if cond.IfModifiedSince != nil && !lastModified.Truncate(time.Second).After(*cond.IfModifiedSince) {
		if cond.IfNoneMatch == "" {
			return apperrors.NewNotModifiedError()
		}
	}
	return nil
}

func etagMatches(candidate, etag string) bool {
	if candidate == "*" {
		return true
	}
	return candidate == etag || `"`+candidate+`"` == etag
}

// objectLocation renders the Location for completion and POST responses.
func (p *Provider) objectLocation(bucket, key string) string {
	return fmt.Sprintf("http://%s.s3.amazonaws.com/%s", bucket, key)
}
