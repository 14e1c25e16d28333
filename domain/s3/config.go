package s3

import "encoding/xml"

// VersioningConfiguration is the bucket versioning document.
type VersioningConfiguration struct {
	XMLName   xml.Name         `xml:"VersioningConfiguration"`
	Xmlns     string           `xml:"xmlns,attr,omitempty"`
	Status    VersioningStatus `xml:"Status,omitempty"`
	MFADelete MFADeleteStatus  `xml:"MfaDelete,omitempty"`
}

// CORSRule is one rule of a CORS configuration.
type CORSRule struct {
	ID             string   `xml:"ID,omitempty"`
	AllowedOrigins []string `xml:"AllowedOrigin"`
	AllowedMethods []string `xml:"AllowedMethod"`
	AllowedHeaders []string `xml:"AllowedHeader,omitempty"`
	ExposeHeaders  []string `xml:"ExposeHeader,omitempty"`
	MaxAgeSeconds  *int     `xml:"MaxAgeSeconds,omitempty"`
}

// CORSConfiguration is the bucket CORS document.
type CORSConfiguration struct {
	XMLName xml.Name   `xml:"CORSConfiguration"`
	Xmlns   string     `xml:"xmlns,attr,omitempty"`
	Rules   []CORSRule `xml:"CORSRule"`
}

// LifecycleExpiration configures when a lifecycle rule expires objects.
type LifecycleExpiration struct {
	Days                      *int       `xml:"Days,omitempty"`
	Date                      *Timestamp `xml:"Date,omitempty"`
	ExpiredObjectDeleteMarker *bool      `xml:"ExpiredObjectDeleteMarker,omitempty"`
}

// LifecycleTransition configures a storage-class transition.
type LifecycleTransition struct {
	Days         *int         `xml:"Days,omitempty"`
	Date         *Timestamp   `xml:"Date,omitempty"`
	StorageClass StorageClass `xml:"StorageClass,omitempty"`
}

// LifecycleRuleFilter scopes a lifecycle rule.
type LifecycleRuleFilter struct {
	Prefix                *string `xml:"Prefix,omitempty"`
	Tag                   *TagEntry `xml:"Tag,omitempty"`
	ObjectSizeGreaterThan *int64  `xml:"ObjectSizeGreaterThan,omitempty"`
	ObjectSizeLessThan    *int64  `xml:"ObjectSizeLessThan,omitempty"`
}

// LifecycleRule is one rule of a lifecycle configuration.
type LifecycleRule struct {
	ID          string               `xml:"ID,omitempty"`
	Prefix      *string              `xml:"Prefix,omitempty"`
	Filter      *LifecycleRuleFilter `xml:"Filter,omitempty"`
	Status      LifecycleRuleStatus  `xml:"Status"`
	Expiration  *LifecycleExpiration `xml:"Expiration,omitempty"`
	Transitions []LifecycleTransition `xml:"Transition,omitempty"`
	AbortIncompleteMultipartUpload *AbortIncompleteMultipartUpload `xml:"AbortIncompleteMultipartUpload,omitempty"`
}

// AbortIncompleteMultipartUpload expires stale multipart uploads.
type AbortIncompleteMultipartUpload struct {
	DaysAfterInitiation int `xml:"DaysAfterInitiation"`
}

// LifecycleConfiguration is the bucket lifecycle document.
type LifecycleConfiguration struct {
	XMLName xml.Name        `xml:"LifecycleConfiguration"`
	Xmlns   string          `xml:"xmlns,attr,omitempty"`
	Rules   []LifecycleRule `xml:"Rule"`
}

// TagEntry is one Tag element.
type TagEntry struct {
	Key   string `xml:"Key"`
	Value string `xml:"Value"`
}

// Tagging is the bucket and object tagging document.
type Tagging struct {
	XMLName xml.Name   `xml:"Tagging"`
	Xmlns   string     `xml:"xmlns,attr,omitempty"`
	TagSet  []TagEntry `xml:"TagSet>Tag"`
}

// SSERule is one rule of an encryption configuration.
type SSERule struct {
	ApplyServerSideEncryptionByDefault *SSEByDefault `xml:"ApplyServerSideEncryptionByDefault,omitempty"`
	BucketKeyEnabled                   *bool         `xml:"BucketKeyEnabled,omitempty"`
}

// SSEByDefault is the default encryption applied to new objects.
type SSEByDefault struct {
	SSEAlgorithm   ServerSideEncryption `xml:"SSEAlgorithm"`
	KMSMasterKeyID string               `xml:"KMSMasterKeyID,omitempty"`
}

// ServerSideEncryptionConfiguration is the bucket encryption document.
type ServerSideEncryptionConfiguration struct {
	XMLName xml.Name  `xml:"ServerSideEncryptionConfiguration"`
	Xmlns   string    `xml:"xmlns,attr,omitempty"`
	Rules   []SSERule `xml:"Rule"`
}

// PublicAccessBlockConfiguration is the public-access block document.
type PublicAccessBlockConfiguration struct {
	XMLName               xml.Name `xml:"PublicAccessBlockConfiguration"`
	Xmlns                 string   `xml:"xmlns,attr,omitempty"`
	BlockPublicAcls       bool     `xml:"BlockPublicAcls"`
	IgnorePublicAcls      bool     `xml:"IgnorePublicAcls"`
	BlockPublicPolicy     bool     `xml:"BlockPublicPolicy"`
	RestrictPublicBuckets bool     `xml:"RestrictPublicBuckets"`
}

// OwnershipControlsRule is one rule of ownership controls.
type OwnershipControlsRule struct {
	ObjectOwnership ObjectOwnership `xml:"ObjectOwnership"`
}

// OwnershipControls is the bucket ownership-controls document.
type OwnershipControls struct {
	XMLName xml.Name                `xml:"OwnershipControls"`
	Xmlns   string                  `xml:"xmlns,attr,omitempty"`
	Rules   []OwnershipControlsRule `xml:"Rule"`
}

// DefaultRetention is the object-lock default retention period.
type DefaultRetention struct {
	Mode  ObjectLockMode `xml:"Mode,omitempty"`
	Days  *int           `xml:"Days,omitempty"`
	Years *int           `xml:"Years,omitempty"`
}

// ObjectLockRule wraps the default retention.
type ObjectLockRule struct {
	DefaultRetention *DefaultRetention `xml:"DefaultRetention,omitempty"`
}

// ObjectLockConfiguration is the bucket object-lock document.
type ObjectLockConfiguration struct {
	XMLName           xml.Name        `xml:"ObjectLockConfiguration"`
	Xmlns             string          `xml:"xmlns,attr,omitempty"`
	ObjectLockEnabled string          `xml:"ObjectLockEnabled,omitempty"`
	Rule              *ObjectLockRule `xml:"Rule,omitempty"`
}

// Retention is the per-object retention document.
type Retention struct {
	XMLName         xml.Name       `xml:"Retention"`
	Xmlns           string         `xml:"xmlns,attr,omitempty"`
	Mode            ObjectLockMode `xml:"Mode,omitempty"`
	RetainUntilDate *Timestamp     `xml:"RetainUntilDate,omitempty"`
}

// LegalHold is the per-object legal hold document.
type LegalHold struct {
	XMLName xml.Name        `xml:"LegalHold"`
	Xmlns   string          `xml:"xmlns,attr,omitempty"`
	Status  LegalHoldStatus `xml:"Status,omitempty"`
}

// IndexDocument names the website index suffix.
type IndexDocument struct {
	Suffix string `xml:"Suffix"`
}

// WebsiteErrorDocument names the website error key.
type WebsiteErrorDocument struct {
	Key string `xml:"Key"`
}

// RedirectAllRequestsTo redirects the whole website endpoint.
type RedirectAllRequestsTo struct {
	HostName string `xml:"HostName"`
	Protocol string `xml:"Protocol,omitempty"`
}

// WebsiteConfiguration is the bucket website document.
type WebsiteConfiguration struct {
	XMLName               xml.Name               `xml:"WebsiteConfiguration"`
	Xmlns                 string                 `xml:"xmlns,attr,omitempty"`
	IndexDocument         *IndexDocument         `xml:"IndexDocument,omitempty"`
	ErrorDocument         *WebsiteErrorDocument  `xml:"ErrorDocument,omitempty"`
	RedirectAllRequestsTo *RedirectAllRequestsTo `xml:"RedirectAllRequestsTo,omitempty"`
}

// LoggingEnabled is the target of bucket access logging.
type LoggingEnabled struct {
	TargetBucket string `xml:"TargetBucket"`
	TargetPrefix string `xml:"TargetPrefix"`
}

// BucketLoggingStatus is the bucket logging document.
type BucketLoggingStatus struct {
	XMLName        xml.Name        `xml:"BucketLoggingStatus"`
	Xmlns          string          `xml:"xmlns,attr,omitempty"`
	LoggingEnabled *LoggingEnabled `xml:"LoggingEnabled,omitempty"`
}

// TopicConfiguration is one SNS target of a notification configuration.
type TopicConfiguration struct {
	ID     string   `xml:"Id,omitempty"`
	Topic  string   `xml:"Topic"`
	Events []string `xml:"Event"`
}

// QueueConfiguration is one SQS target of a notification configuration.
type QueueConfiguration struct {
	ID     string   `xml:"Id,omitempty"`
	Queue  string   `xml:"Queue"`
	Events []string `xml:"Event"`
}

// NotificationConfiguration is the bucket notification document. Accepted
// and echoed; events are never emitted.
type NotificationConfiguration struct {
	XMLName             xml.Name             `xml:"NotificationConfiguration"`
	Xmlns               string               `xml:"xmlns,attr,omitempty"`
	TopicConfigurations []TopicConfiguration `xml:"TopicConfiguration"`
	QueueConfigurations []QueueConfiguration `xml:"QueueConfiguration"`
}

// AccelerateConfiguration is the bucket transfer-acceleration document.
type AccelerateConfiguration struct {
	XMLName xml.Name         `xml:"AccelerateConfiguration"`
	Xmlns   string           `xml:"xmlns,attr,omitempty"`
	Status  AccelerateStatus `xml:"Status,omitempty"`
}

// RequestPaymentConfiguration is the bucket request-payment document.
type RequestPaymentConfiguration struct {
	XMLName xml.Name `xml:"RequestPaymentConfiguration"`
	Xmlns   string   `xml:"xmlns,attr,omitempty"`
	Payer   Payer    `xml:"Payer"`
}
