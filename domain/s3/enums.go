// Package s3 holds the S3 model and wire types: buckets, objects, versions,
// multipart uploads, and every XML document the emulator reads or writes,
// with the S3 namespace, timestamp format and wire-spelling enums.
package s3

import "encoding/xml"

// Namespace is the S3 document namespace carried on every response root.
const Namespace = "http://s3.amazonaws.com/doc/2006-03-01/"

// enumSet backs the forward-compatible enum decoding: unknown wire strings
// decode to the type's default rather than failing.
type enumSet struct {
	valid map[string]bool
	def   string
}

func newEnumSet(def string, values ...string) enumSet {
	valid := make(map[string]bool, len(values))
	for _, v := range values {
		valid[v] = true
	}
	return enumSet{valid: valid, def: def}
}

func (s enumSet) decode(d *xml.Decoder, start xml.StartElement) (string, error) {
	var raw string
	if err := d.DecodeElement(&raw, &start); err != nil {
		return "", err
	}
	if s.valid[raw] {
		return raw, nil
	}
	return s.def, nil
}

// StorageClass is an object storage class.
type StorageClass string

const (
	StorageClassStandard           StorageClass = "STANDARD"
	StorageClassReducedRedundancy  StorageClass = "REDUCED_REDUNDANCY"
	StorageClassStandardIA         StorageClass = "STANDARD_IA"
	StorageClassOneZoneIA          StorageClass = "ONEZONE_IA"
	StorageClassIntelligentTiering StorageClass = "INTELLIGENT_TIERING"
	StorageClassGlacier            StorageClass = "GLACIER"
	StorageClassGlacierIR          StorageClass = "GLACIER_IR"
	StorageClassDeepArchive        StorageClass = "DEEP_ARCHIVE"
)

var storageClasses = newEnumSet(string(StorageClassStandard),
	"STANDARD", "REDUCED_REDUNDANCY", "STANDARD_IA", "ONEZONE_IA",
	"INTELLIGENT_TIERING", "GLACIER", "GLACIER_IR", "DEEP_ARCHIVE")

// UnmarshalXML decodes unknown storage classes to STANDARD.
func (s *StorageClass) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	v, err := storageClasses.decode(d, start)
	if err != nil {
		return err
	}
	*s = StorageClass(v)
	return nil
}

// VersioningStatus is a bucket's versioning state. The zero value means the
// bucket has never had versioning configured.
type VersioningStatus string

const (
	VersioningUnversioned VersioningStatus = ""
	VersioningEnabled     VersioningStatus = "Enabled"
	VersioningSuspended   VersioningStatus = "Suspended"
)

var versioningStatuses = newEnumSet("", "Enabled", "Suspended")

// UnmarshalXML decodes unknown statuses to the unversioned default.
func (s *VersioningStatus) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	v, err := versioningStatuses.decode(d, start)
	if err != nil {
		return err
	}
	*s = VersioningStatus(v)
	return nil
}

// Permission is an ACL grant permission.
type Permission string

const (
	PermissionFullControl Permission = "FULL_CONTROL"
	PermissionRead        Permission = "READ"
	PermissionWrite       Permission = "WRITE"
	PermissionReadACP     Permission = "READ_ACP"
	PermissionWriteACP    Permission = "WRITE_ACP"
)

var permissions = newEnumSet(string(PermissionFullControl),
	"FULL_CONTROL", "READ", "WRITE", "READ_ACP", "WRITE_ACP")

// UnmarshalXML decodes unknown permissions to FULL_CONTROL.
func (p *Permission) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	v, err := permissions.decode(d, start)
	if err != nil {
		return err
	}
	*p = Permission(v)
	return nil
}

// ObjectOwnership is a bucket ownership-controls rule value.
type ObjectOwnership string

const (
	OwnershipBucketOwnerPreferred ObjectOwnership = "BucketOwnerPreferred"
	OwnershipObjectWriter         ObjectOwnership = "ObjectWriter"
	OwnershipBucketOwnerEnforced  ObjectOwnership = "BucketOwnerEnforced"
)

var objectOwnerships = newEnumSet(string(OwnershipBucketOwnerEnforced),
	"BucketOwnerPreferred", "ObjectWriter", "BucketOwnerEnforced")

// UnmarshalXML decodes unknown ownership values to BucketOwnerEnforced.
func (o *ObjectOwnership) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	v, err := objectOwnerships.decode(d, start)
	if err != nil {
		return err
	}
	*o = ObjectOwnership(v)
	return nil
}

// ServerSideEncryption is an SSE algorithm.
type ServerSideEncryption string

const (
	SSEAlgorithmAES256 ServerSideEncryption = "AES256"
	SSEAlgorithmKMS    ServerSideEncryption = "aws:kms"
	SSEAlgorithmKMSDSS ServerSideEncryption = "aws:kms:dsse"
)

var sseAlgorithms = newEnumSet(string(SSEAlgorithmAES256), "AES256", "aws:kms", "aws:kms:dsse")

// UnmarshalXML decodes unknown algorithms to AES256.
func (s *ServerSideEncryption) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	v, err := sseAlgorithms.decode(d, start)
	if err != nil {
		return err
	}
	*s = ServerSideEncryption(v)
	return nil
}

// ObjectLockMode is a retention mode.
type ObjectLockMode string

const (
	ObjectLockGovernance ObjectLockMode = "GOVERNANCE"
	ObjectLockCompliance ObjectLockMode = "COMPLIANCE"
)

var objectLockModes = newEnumSet(string(ObjectLockGovernance), "GOVERNANCE", "COMPLIANCE")

// UnmarshalXML decodes unknown modes to GOVERNANCE.
func (m *ObjectLockMode) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	v, err := objectLockModes.decode(d, start)
	if err != nil {
		return err
	}
	*m = ObjectLockMode(v)
	return nil
}

// LegalHoldStatus is an object legal-hold state.
type LegalHoldStatus string

const (
	LegalHoldOn  LegalHoldStatus = "ON"
	LegalHoldOff LegalHoldStatus = "OFF"
)

var legalHoldStatuses = newEnumSet(string(LegalHoldOff), "ON", "OFF")

// UnmarshalXML decodes unknown statuses to OFF.
func (s *LegalHoldStatus) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	v, err := legalHoldStatuses.decode(d, start)
	if err != nil {
		return err
	}
	*s = LegalHoldStatus(v)
	return nil
}

// AccelerateStatus is a bucket transfer-acceleration state.
type AccelerateStatus string

const (
	AccelerateEnabled   AccelerateStatus = "Enabled"
	AccelerateSuspended AccelerateStatus = "Suspended"
)

var accelerateStatuses = newEnumSet(string(AccelerateSuspended), "Enabled", "Suspended")

// UnmarshalXML decodes unknown statuses to Suspended.
func (s *AccelerateStatus) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	v, err := accelerateStatuses.decode(d, start)
	if err != nil {
		return err
	}
	*s = AccelerateStatus(v)
	return nil
}

// Payer is a request-payment configuration value.
type Payer string

const (
	PayerRequester   Payer = "Requester"
	PayerBucketOwner Payer = "BucketOwner"
)

var payers = newEnumSet(string(PayerBucketOwner), "Requester", "BucketOwner")

// UnmarshalXML decodes unknown payers to BucketOwner.
func (p *Payer) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	v, err := payers.decode(d, start)
	if err != nil {
		return err
	}
	*p = Payer(v)
	return nil
}

// LifecycleRuleStatus is a lifecycle rule's enablement state.
type LifecycleRuleStatus string

const (
	LifecycleRuleEnabled  LifecycleRuleStatus = "Enabled"
	LifecycleRuleDisabled LifecycleRuleStatus = "Disabled"
)

var lifecycleRuleStatuses = newEnumSet(string(LifecycleRuleDisabled), "Enabled", "Disabled")

// UnmarshalXML decodes unknown statuses to Disabled.
func (s *LifecycleRuleStatus) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	v, err := lifecycleRuleStatuses.decode(d, start)
	if err != nil {
		return err
	}
	*s = LifecycleRuleStatus(v)
	return nil
}

// ChecksumAlgorithm is an object checksum algorithm.
type ChecksumAlgorithm string

const (
	ChecksumCRC32     ChecksumAlgorithm = "CRC32"
	ChecksumCRC32C    ChecksumAlgorithm = "CRC32C"
	ChecksumCRC64NVME ChecksumAlgorithm = "CRC64NVME"
	ChecksumSHA1      ChecksumAlgorithm = "SHA1"
	ChecksumSHA256    ChecksumAlgorithm = "SHA256"
)

var checksumAlgorithms = newEnumSet(string(ChecksumCRC32),
	"CRC32", "CRC32C", "CRC64NVME", "SHA1", "SHA256")

// UnmarshalXML decodes unknown algorithms to CRC32.
func (a *ChecksumAlgorithm) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	v, err := checksumAlgorithms.decode(d, start)
	if err != nil {
		return err
	}
	*a = ChecksumAlgorithm(v)
	return nil
}

// ChecksumType reports how a multipart checksum was computed.
type ChecksumType string

const (
	ChecksumTypeComposite  ChecksumType = "COMPOSITE"
	ChecksumTypeFullObject ChecksumType = "FULL_OBJECT"
)

var checksumTypes = newEnumSet(string(ChecksumTypeComposite), "COMPOSITE", "FULL_OBJECT")

// UnmarshalXML decodes unknown types to COMPOSITE.
func (t *ChecksumType) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	v, err := checksumTypes.decode(d, start)
	if err != nil {
		return err
	}
	*t = ChecksumType(v)
	return nil
}

// MFADeleteStatus is the MfaDelete element of a versioning configuration.
type MFADeleteStatus string

const (
	MFADeleteEnabled  MFADeleteStatus = "Enabled"
	MFADeleteDisabled MFADeleteStatus = "Disabled"
)

var mfaDeleteStatuses = newEnumSet(string(MFADeleteDisabled), "Enabled", "Disabled")

// UnmarshalXML decodes unknown statuses to Disabled.
func (s *MFADeleteStatus) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	v, err := mfaDeleteStatuses.decode(d, start)
	if err != nil {
		return err
	}
	*s = MFADeleteStatus(v)
	return nil
}
