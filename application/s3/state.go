// Package s3 implements the S3 provider: the concurrent service state
// (buckets, objects, versions, multipart uploads) and every operation the
// handler dispatches to.
package s3

import (
	"sort"
	"sync"
	"time"

	s3model "localaws/domain/s3"
	apperrors "localaws/pkg/errors"
)

// configSlot is one independently-locked per-bucket configuration value, so
// reading one slot never blocks writers of another.
type configSlot[T any] struct {
	mu    sync.RWMutex
	value *T
}

func (s *configSlot[T]) get() *T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

func (s *configSlot[T]) set(v *T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = v
}

func (s *configSlot[T]) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = nil
}

// Bucket is one bucket's objects, versions, uploads and configuration
// slots. The object store serializes through objMu across read-modify-write
// steps; each configuration slot has its own lock.
type Bucket struct {
	Name         string
	CreationDate time.Time
	Region       string

	// objMu guards versions for every object-store operation.
	objMu sync.Mutex
	// versions holds each key's history, oldest first; the last entry is
	// latest. Unversioned and suspended writes use the "null" version id.
	versions map[string][]*s3model.VersionEntry

	// uploads is the in-progress multipart table, keyed by upload id.
	uploads sync.Map

	versioning     configSlot[s3model.VersioningConfiguration]
	encryption     configSlot[s3model.ServerSideEncryptionConfiguration]
	cors           configSlot[s3model.CORSConfiguration]
	lifecycle      configSlot[s3model.LifecycleConfiguration]
	policy         configSlot[string]
	tagging        configSlot[s3model.Tagging]
	notification   configSlot[s3model.NotificationConfiguration]
	logging        configSlot[s3model.BucketLoggingStatus]
	publicAccess   configSlot[s3model.PublicAccessBlockConfiguration]
	ownership      configSlot[s3model.OwnershipControls]
	objectLock     configSlot[s3model.ObjectLockConfiguration]
	accelerate     configSlot[s3model.AccelerateConfiguration]
	requestPayment configSlot[s3model.RequestPaymentConfiguration]
	website        configSlot[s3model.WebsiteConfiguration]
	acl            configSlot[s3model.AccessControlPolicy]
}

// VersioningStatus returns the bucket's current versioning state.
func (b *Bucket) VersioningStatus() s3model.VersioningStatus {
	cfg := b.versioning.get()
	if cfg == nil {
		return s3model.VersioningUnversioned
	}
	return cfg.Status
}

// isEmpty reports whether the bucket holds no object versions and no
// in-progress uploads.
func (b *Bucket) isEmpty() bool {
	b.objMu.Lock()
	empty := len(b.versions) == 0
	b.objMu.Unlock()
	if !empty {
		return false
	}
	hasUploads := false
	b.uploads.Range(func(_, _ interface{}) bool {
		hasUploads = true
		return false
	})
	return !hasUploads
}

// State is the service-level bucket table.
type State struct {
	mu      sync.RWMutex
	buckets map[string]*Bucket
}

// NewState creates an empty service state.
func NewState() *State {
	return &State{buckets: map[string]*Bucket{}}
}

// CreateBucket registers a new bucket. Names are globally unique.
func (s *State) CreateBucket(name, region string) (*Bucket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.buckets[name]; exists {
		return nil, apperrors.NewBucketAlreadyOwnedByYouError(name)
	}
	bucket := &Bucket{
		Name:         name,
		CreationDate: time.Now().UTC(),
		Region:       region,
		versions:     map[string][]*s3model.VersionEntry{},
	}
	s.buckets[name] = bucket
	return bucket, nil
}

// GetBucket looks up a bucket by name.
func (s *State) GetBucket(name string) (*Bucket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bucket, ok := s.buckets[name]
	if !ok {
		return nil, apperrors.NewNoSuchBucketError(name)
	}
	return bucket, nil
}

// DeleteBucket removes an empty bucket.
func (s *State) DeleteBucket(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket, ok := s.buckets[name]
	if !ok {
		return apperrors.NewNoSuchBucketError(name)
	}
	if !bucket.isEmpty() {
		return apperrors.NewBucketNotEmptyError(name)
	}
	delete(s.buckets, name)
	return nil
}

// ListBuckets returns all buckets sorted by name.
func (s *State) ListBuckets() []*Bucket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	buckets := make([]*Bucket, 0, len(s.buckets))
	for _, b := range s.buckets {
		buckets = append(buckets, b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Name < buckets[j].Name })
	return buckets
}
