package s3

import (
	"sort"

	s3model "localaws/domain/s3"
	apperrors "localaws/pkg/errors"
)

// Bucket configuration slot operations. GETs of absent configurations
// return the slot's dedicated error kind, except for the versioning,
// notification, logging, accelerate, request-payment and ACL slots, whose
// GETs return an empty or default document; DELETEs are idempotent.

// PutBucketVersioning sets the versioning state. Enabled and Suspended are
// the only transitions; a bucket never returns to unversioned.
func (p *Provider) PutBucketVersioning(bucket string, cfg *s3model.VersioningConfiguration) error {
	b, err := p.state.GetBucket(bucket)
	if err != nil {
		return err
	}
	if cfg == nil || (cfg.Status != s3model.VersioningEnabled && cfg.Status != s3model.VersioningSuspended) {
		return apperrors.NewMalformedXMLError()
	}
	cfg.Xmlns = s3model.Namespace
	b.versioning.set(cfg)
	return nil
}

// GetBucketVersioning returns the versioning document; an unconfigured
// bucket returns an empty configuration, not an error.
func (p *Provider) GetBucketVersioning(bucket string) (*s3model.VersioningConfiguration, error) {
	b, err := p.state.GetBucket(bucket)
	if err != nil {
		return nil, err
	}
	cfg := b.versioning.get()
	if cfg == nil {
		return &s3model.VersioningConfiguration{Xmlns: s3model.Namespace}, nil
	}
	return cfg, nil
}

// PutBucketEncryption sets the default-encryption configuration.
func (p *Provider) PutBucketEncryption(bucket string, cfg *s3model.ServerSideEncryptionConfiguration) error {
	b, err := p.state.GetBucket(bucket)
	if err != nil {
		return err
	}
	cfg.Xmlns = s3model.Namespace
	b.encryption.set(cfg)
	return nil
}

// GetBucketEncryption returns the default-encryption configuration.
func (p *Provider) GetBucketEncryption(bucket string) (*s3model.ServerSideEncryptionConfiguration, error) {
	b, err := p.state.GetBucket(bucket)
	if err != nil {
		return nil, err
	}
	cfg := b.encryption.get()
	if cfg == nil {
		return nil, apperrors.NewS3Error(apperrors.S3SSEConfigurationNotFound,
			"The server side encryption configuration was not found")
	}
	return cfg, nil
}

// DeleteBucketEncryption clears the default-encryption configuration.
func (p *Provider) DeleteBucketEncryption(bucket string) error {
	b, err := p.state.GetBucket(bucket)
	if err != nil {
		return err
	}
	b.encryption.clear()
	return nil
}

// PutBucketCors sets the CORS rules.
func (p *Provider) PutBucketCors(bucket string, cfg *s3model.CORSConfiguration) error {
	b, err := p.state.GetBucket(bucket)
	if err != nil {
		return err
	}
	cfg.Xmlns = s3model.Namespace
	b.cors.set(cfg)
	return nil
}

// GetBucketCors returns the CORS rules.
func (p *Provider) GetBucketCors(bucket string) (*s3model.CORSConfiguration, error) {
	b, err := p.state.GetBucket(bucket)
	if err != nil {
		return nil, err
	}
	cfg := b.cors.get()
	if cfg == nil {
		return nil, apperrors.NewS3Error(apperrors.S3NoSuchCORSConfiguration,
			"The CORS configuration does not exist")
	}
	return cfg, nil
}

// DeleteBucketCors clears the CORS rules.
func (p *Provider) DeleteBucketCors(bucket string) error {
	b, err := p.state.GetBucket(bucket)
	if err != nil {
		return err
	}
	b.cors.clear()
	return nil
}

// PutBucketLifecycle sets the lifecycle configuration.
func (p *Provider) PutBucketLifecycle(bucket string, cfg *s3model.LifecycleConfiguration) error {
	b, err := p.state.GetBucket(bucket)
	if err != nil {
		return err
	}
	cfg.Xmlns = s3model.Namespace
	b.lifecycle.set(cfg)
	return nil
}

// GetBucketLifecycle returns the lifecycle configuration.
func (p *Provider) GetBucketLifecycle(bucket string) (*s3model.LifecycleConfiguration, error) {
	b, err := p.state.GetBucket(bucket)
	if err != nil {
		return nil, err
	}
	cfg := b.lifecycle.get()
	if cfg == nil {
		return nil, apperrors.NewS3Error(apperrors.S3NoSuchLifecycleConfiguration,
			"The lifecycle configuration does not exist")
	}
	return cfg, nil
}

// DeleteBucketLifecycle clears the lifecycle configuration.
func (p *Provider) DeleteBucketLifecycle(bucket string) error {
	b, err := p.state.GetBucket(bucket)
	if err != nil {
		return err
	}
	b.lifecycle.clear()
	return nil
}

// PutBucketPolicy stores the policy JSON verbatim.
func (p *Provider) PutBucketPolicy(bucket string, policy string) error {
	b, err := p.state.GetBucket(bucket)
	if err != nil {
		return err
	}
	b.policy.set(&policy)
	return nil
}

// GetBucketPolicy returns the policy JSON.
func (p *Provider) GetBucketPolicy(bucket string) (string, error) {
	b, err := p.state.GetBucket(bucket)
	if err != nil {
		return "", err
	}
	policy := b.policy.get()
	if policy == nil {
		return "", apperrors.NewS3Error(apperrors.S3NoSuchBucketPolicy,
			"The bucket policy does not exist")
	}
	return *policy, nil
}

// DeleteBucketPolicy clears the policy.
func (p *Provider) DeleteBucketPolicy(bucket string) error {
	b, err := p.state.GetBucket(bucket)
	if err != nil {
		return err
	}
	b.policy.clear()
	return nil
}

// PutBucketTagging sets the bucket tag set.
func (p *Provider) PutBucketTagging(bucket string, cfg *s3model.Tagging) error {
	b, err := p.state.GetBucket(bucket)
	if err != nil {
		return err
	}
	cfg.Xmlns = s3model.Namespace
	b.tagging.set(cfg)
	return nil
}

// GetBucketTagging returns the bucket tag set.
func (p *Provider) GetBucketTagging(bucket string) (*s3model.Tagging, error) {
	b, err := p.state.GetBucket(bucket)
	if err != nil {
		return nil, err
	}
	cfg := b.tagging.get()
	if cfg == nil {
		return nil, apperrors.NewS3Error(apperrors.S3NoSuchTagSet, "The TagSet does not exist")
	}
	return cfg, nil
}

// DeleteBucketTagging clears the bucket tag set.
func (p *Provider) DeleteBucketTagging(bucket string) error {
	b, err := p.state.GetBucket(bucket)
	if err != nil {
		return err
	}
	b.tagging.clear()
	return nil
}

// PutBucketNotification sets the notification configuration; events are
// never emitted.
func (p *Provider) PutBucketNotification(bucket string, cfg *s3model.NotificationConfiguration) error {
	b, err := p.state.GetBucket(bucket)
	if err != nil {
		return err
	}
	cfg.Xmlns = s3model.Namespace
	b.notification.set(cfg)
	return nil
}

// GetBucketNotification returns the notification configuration; absent
// reads as an empty document.
func (p *Provider) GetBucketNotification(bucket string) (*s3model.NotificationConfiguration, error) {
	b, err := p.state.GetBucket(bucket)
	if err != nil {
		return nil, err
	}
	cfg := b.notification.get()
	if cfg == nil {
		return &s3model.NotificationConfiguration{Xmlns: s3model.Namespace}, nil
	}
	return cfg, nil
}

// PutBucketLogging sets the access-logging target; no logs are delivered.
func (p *Provider) PutBucketLogging(bucket string, cfg *s3model.BucketLoggingStatus) error {
	b, err := p.state.GetBucket(bucket)
	if err != nil {
		return err
	}
	cfg.Xmlns = s3model.Namespace
	b.logging.set(cfg)
	return nil
}

// GetBucketLogging returns the logging document; absent reads as empty.
func (p *Provider) GetBucketLogging(bucket string) (*s3model.BucketLoggingStatus, error) {
	b, err := p.state.GetBucket(bucket)
	if err != nil {
		return nil, err
	}
	cfg := b.logging.get()
	if cfg == nil {
		return &s3model.BucketLoggingStatus{Xmlns: s3model.Namespace}, nil
	}
	return cfg, nil
}

// PutPublicAccessBlock sets the public-access block.
func (p *Provider) PutPublicAccessBlock(bucket string, cfg *s3model.PublicAccessBlockConfiguration) error {
	b, err := p.state.GetBucket(bucket)
	if err != nil {
		return err
	}
	cfg.Xmlns = s3model.Namespace
	b.publicAccess.set(cfg)
	return nil
}

// GetPublicAccessBlock returns the public-access block.
func (p *Provider) GetPublicAccessBlock(bucket string) (*s3model.PublicAccessBlockConfiguration, error) {
	b, err := p.state.GetBucket(bucket)
	if err != nil {
		return nil, err
	}
	cfg := b.publicAccess.get()
	if cfg == nil {
		return nil, apperrors.NewS3Error(apperrors.S3NoSuchPublicAccessBlockConfiguration,
			"The public access block configuration was not found")
	}
	return cfg, nil
}

// DeletePublicAccessBlock clears the public-access block.
func (p *Provider) DeletePublicAccessBlock(bucket string) error {
	b, err := p.state.GetBucket(bucket)
	if err != nil {
		return err
	}
	b.publicAccess.clear()
	return nil
}

// PutBucketOwnershipControls sets the ownership controls.
func (p *Provider) PutBucketOwnershipControls(bucket string, cfg *s3model.OwnershipControls) error {
	b, err := p.state.GetBucket(bucket)
	if err != nil {
		return err
	}
	cfg.Xmlns = s3model.Namespace
	b.ownership.set(cfg)
	return nil
}

// GetBucketOwnershipControls returns the ownership controls.
func (p *Provider) GetBucketOwnershipControls(bucket string) (*s3model.OwnershipControls, error) {
	b, err := p.state.GetBucket(bucket)
	if err != nil {
		return nil, err
	}
	cfg := b.ownership.get()
	if cfg == nil {
		return nil, apperrors.NewS3Error(apperrors.S3OwnershipControlsNotFound,
			"The bucket ownership controls were not found")
	}
	return cfg, nil
}

// DeleteBucketOwnershipControls clears the ownership controls.
func (p *Provider) DeleteBucketOwnershipControls(bucket string) error {
	b, err := p.state.GetBucket(bucket)
	if err != nil {
		return err
	}
	b.ownership.clear()
	return nil
}

// PutObjectLockConfiguration sets the bucket object-lock document.
func (p *Provider) PutObjectLockConfiguration(bucket string, cfg *s3model.ObjectLockConfiguration) error {
	b, err := p.state.GetBucket(bucket)
	if err != nil {
		return err
	}
	cfg.Xmlns = s3model.Namespace
	b.objectLock.set(cfg)
	return nil
}

// GetObjectLockConfiguration returns the bucket object-lock document.
func (p *Provider) GetObjectLockConfiguration(bucket string) (*s3model.ObjectLockConfiguration, error) {
	b, err := p.state.GetBucket(bucket)
	if err != nil {
		return nil, err
	}
	cfg := b.objectLock.get()
	if cfg == nil {
		return nil, apperrors.NewS3Error(apperrors.S3ObjectLockConfigurationNotFound,
			"Object Lock configuration does not exist for this bucket")
	}
	return cfg, nil
}

// PutBucketAccelerate sets the transfer-acceleration status.
func (p *Provider) PutBucketAccelerate(bucket string, cfg *s3model.AccelerateConfiguration) error {
	b, err := p.state.GetBucket(bucket)
	if err != nil {
		return err
	}
	cfg.Xmlns = s3model.Namespace
	b.accelerate.set(cfg)
	return nil
}

// GetBucketAccelerate returns the transfer-acceleration status; absent
// reads as an empty document.
func (p *Provider) GetBucketAccelerate(bucket string) (*s3model.AccelerateConfiguration, error) {
	b, err := p.state.GetBucket(bucket)
	if err != nil {
		return nil, err
	}
	cfg := b.accelerate.get()
	if cfg == nil {
		return &s3model.AccelerateConfiguration{Xmlns: s3model.Namespace}, nil
	}
	return cfg, nil
}

// PutBucketRequestPayment sets the request-payment payer.
func (p *Provider) PutBucketRequestPayment(bucket string, cfg *s3model.RequestPaymentConfiguration) error {
	b, err := p.state.GetBucket(bucket)
	if err != nil {
		return err
	}
	cfg.Xmlns = s3model.Namespace
	b.requestPayment.set(cfg)
	return nil
}

// GetBucketRequestPayment returns the payer; absent defaults to the bucket
// owner.
func (p *Provider) GetBucketRequestPayment(bucket string) (*s3model.RequestPaymentConfiguration, error) {
	b, err := p.state.GetBucket(bucket)
	if err != nil {
		return nil, err
	}
	cfg := b.requestPayment.get()
	if cfg == nil {
		return &s3model.RequestPaymentConfiguration{Xmlns: s3model.Namespace, Payer: s3model.PayerBucketOwner}, nil
	}
	return cfg, nil
}

// PutBucketWebsite sets the website configuration.
func (p *Provider) PutBucketWebsite(bucket string, cfg *s3model.WebsiteConfiguration) error {
	b, err := p.state.GetBucket(bucket)
	if err != nil {
		return err
	}
	cfg.Xmlns = s3model.Namespace
	b.website.set(cfg)
	return nil
}

// GetBucketWebsite returns the website configuration.
func (p *Provider) GetBucketWebsite(bucket string) (*s3model.WebsiteConfiguration, error) {
	b, err := p.state.GetBucket(bucket)
	if err != nil {
		return nil, err
	}
	cfg := b.website.get()
	if cfg == nil {
		return nil, apperrors.NewS3Error(apperrors.S3NoSuchWebsiteConfiguration,
			"The specified bucket does not have a website configuration")
	}
	return cfg, nil
}

// DeleteBucketWebsite clears the website configuration.
func (p *Provider) DeleteBucketWebsite(bucket string) error {
	b, err := p.state.GetBucket(bucket)
	if err != nil {
		return err
	}
	b.website.clear()
	return nil
}

// PutBucketAcl sets the bucket ACL document.
func (p *Provider) PutBucketAcl(bucket string, acl *s3model.AccessControlPolicy) error {
	b, err := p.state.GetBucket(bucket)
	if err != nil {
		return err
	}
	if acl == nil {
		acl = s3model.DefaultACL()
	}
	acl.Xmlns = s3model.Namespace
	b.acl.set(acl)
	return nil
}

// GetBucketAcl returns the bucket ACL document.
func (p *Provider) GetBucketAcl(bucket string) (*s3model.AccessControlPolicy, error) {
	b, err := p.state.GetBucket(bucket)
	if err != nil {
		return nil, err
	}
	acl := b.acl.get()
	if acl == nil {
		return s3model.DefaultACL(), nil
	}
	return acl, nil
}

// ---------------------------------------------------------------------------
// Per-object sub-resources
// ---------------------------------------------------------------------------

// GetObjectTagging returns an object's tag set.
func (p *Provider) GetObjectTagging(input *ObjectTaggingInput) (*s3model.Tagging, error) {
	object, err := p.lookupObject(input.Bucket, input.Key, input.VersionID)
	if err != nil {
		return nil, err
	}
	tagging := &s3model.Tagging{Xmlns: s3model.Namespace, TagSet: []s3model.TagEntry{}}
	for _, key := range sortedTagKeys(object.Tagging) {
		tagging.TagSet = append(tagging.TagSet, s3model.TagEntry{Key: key, Value: object.Tagging[key]})
	}
	return tagging, nil
}

// PutObjectTagging replaces an object's tag set.
func (p *Provider) PutObjectTagging(input *ObjectTaggingInput) error {
	object, err := p.lookupObject(input.Bucket, input.Key, input.VersionID)
	if err != nil {
		return err
	}
	if input.Tagging == nil {
		return apperrors.NewMalformedXMLError()
	}
	tags := map[string]string{}
	for _, tag := range input.Tagging.TagSet {
		tags[tag.Key] = tag.Value
	}
	object.Tagging = tags
	return nil
}

// DeleteObjectTagging clears an object's tag set.
func (p *Provider) DeleteObjectTagging(input *ObjectTaggingInput) error {
	object, err := p.lookupObject(input.Bucket, input.Key, input.VersionID)
	if err != nil {
		return err
	}
	object.Tagging = nil
	return nil
}

// GetObjectAcl returns an object's ACL document.
func (p *Provider) GetObjectAcl(input *ObjectACLInput) (*s3model.AccessControlPolicy, error) {
	object, err := p.lookupObject(input.Bucket, input.Key, input.VersionID)
	if err != nil {
		return nil, err
	}
	if object.ACL == nil {
		return s3model.DefaultACL(), nil
	}
	return object.ACL, nil
}

// PutObjectAcl sets an object's ACL document.
func (p *Provider) PutObjectAcl(input *ObjectACLInput) error {
	object, err := p.lookupObject(input.Bucket, input.Key, input.VersionID)
	if err != nil {
		return err
	}
	acl := input.ACL
	if acl == nil {
		acl = s3model.DefaultACL()
	}
	acl.Xmlns = s3model.Namespace
	object.ACL = acl
	return nil
}

// GetObjectRetention returns an object's retention document.
func (p *Provider) GetObjectRetention(input *ObjectRetentionInput) (*s3model.Retention, error) {
	object, err := p.lookupObject(input.Bucket, input.Key, input.VersionID)
	if err != nil {
		return nil, err
	}
	if object.ObjectLockMode == "" {
		return nil, apperrors.NewS3Error(apperrors.S3ObjectLockConfigurationNotFound,
			"The specified object does not have a ObjectLock configuration")
	}
	retention := &s3model.Retention{Xmlns: s3model.Namespace, Mode: object.ObjectLockMode}
	if object.ObjectLockRetainTill != nil {
		ts := s3model.NewTimestamp(*object.ObjectLockRetainTill)
		retention.RetainUntilDate = &ts
	}
	return retention, nil
}

// PutObjectRetention sets an object's retention.
func (p *Provider) PutObjectRetention(input *ObjectRetentionInput) error {
	object, err := p.lookupObject(input.Bucket, input.Key, input.VersionID)
	if err != nil {
		return err
	}
	if input.Retention == nil {
		return apperrors.NewMalformedXMLError()
	}
	object.ObjectLockMode = input.Retention.Mode
	if input.Retention.RetainUntilDate != nil {
		t := input.Retention.RetainUntilDate.Time
		object.ObjectLockRetainTill = &t
	}
	return nil
}

// GetObjectLegalHold returns an object's legal-hold document.
func (p *Provider) GetObjectLegalHold(input *ObjectLegalHoldInput) (*s3model.LegalHold, error) {
	object, err := p.lookupObject(input.Bucket, input.Key, input.VersionID)
	if err != nil {
		return nil, err
	}
	status := object.LegalHold
	if status == "" {
		status = s3model.LegalHoldOff
	}
	return &s3model.LegalHold{Xmlns: s3model.Namespace, Status: status}, nil
}

// PutObjectLegalHold sets an object's legal hold.
func (p *Provider) PutObjectLegalHold(input *ObjectLegalHoldInput) error {
	object, err := p.lookupObject(input.Bucket, input.Key, input.VersionID)
	if err != nil {
		return err
	}
	if input.LegalHold == nil {
		return apperrors.NewMalformedXMLError()
	}
	object.LegalHold = input.LegalHold.Status
	return nil
}

// PostObject stores a browser form upload, behaving as PutObject with the
// form-selected response shape.
func (p *Provider) PostObject(input *PostObjectInput) (*PostObjectOutput, error) {
	put := &PutObjectInput{
		Bucket:      input.Bucket,
		Key:         input.Key,
		Body:        input.Body,
		ContentType: input.ContentType,
		Metadata:    input.Metadata,
	}
	result, err := p.PutObject(put)
	if err != nil {
		return nil, err
	}

	out := &PostObjectOutput{
		ETag:     result.ETag,
		Location: p.objectLocation(input.Bucket, input.Key),
		Status:   input.SuccessActionStatus,
	}
	if out.Status == 0 {
		out.Status = 204
	}
	if out.Status == 200 || out.Status == 201 {
		out.Response = &s3model.PostResponse{
			Location: out.Location,
			Bucket:   input.Bucket,
			Key:      input.Key,
			ETag:     result.ETag,
		}
	}
	return out, nil
}

func (p *Provider) lookupObject(bucket, key, versionID string) (*s3model.Object, error) {
	b, err := p.state.GetBucket(bucket)
	if err != nil {
		return nil, err
	}
	b.objMu.Lock()
	defer b.objMu.Unlock()
	entry, _, err := p.resolveVersion(b, key, versionID)
	if err != nil {
		return nil, err
	}
	return entry.Object, nil
}

func sortedTagKeys(tags map[string]string) []string {
	keys := make([]string, 0, len(tags))
	for key := range tags {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
