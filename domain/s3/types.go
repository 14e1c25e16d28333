package s3

import (
	"encoding/xml"
	"time"
)

// Owner identifies a bucket or object owner. The emulator has a single
// fixed principal.
type Owner struct {
	ID          string `xml:"ID"`
	DisplayName string `xml:"DisplayName,omitempty"`
}

// DefaultOwner is the emulator's sole principal.
func DefaultOwner() *Owner {
	return &Owner{ID: "localaws", DisplayName: "localaws"}
}

// Grantee is the target of an ACL grant. The xsi:type attribute mirrors the
// variant: CanonicalUser carries ID/DisplayName, Group carries URI,
// AmazonCustomerByEmail carries EmailAddress.
type Grantee struct {
	Type         string
	ID           string
	DisplayName  string
	URI          string
	EmailAddress string
}

// Grantee xsi:type values.
const (
	GranteeCanonicalUser = "CanonicalUser"
	GranteeGroup         = "Group"
	GranteeByEmail       = "AmazonCustomerByEmail"
)

const xsiNamespace = "http://www.w3.org/2001/XMLSchema-instance"

// MarshalXML emits the xmlns:xsi and xsi:type attributes alongside the
// variant's fields.
func (g Grantee) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Attr = append(start.Attr,
		xml.Attr{Name: xml.Name{Local: "xmlns:xsi"}, Value: xsiNamespace},
		xml.Attr{Name: xml.Name{Local: "xsi:type"}, Value: g.Type},
	)
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	encodeStringElement := func(name, value string) error {
		if value == "" {
			return nil
		}
		return e.EncodeElement(value, xml.StartElement{Name: xml.Name{Local: name}})
	}
	if err := encodeStringElement("ID", g.ID); err != nil {
		return err
	}
	if err := encodeStringElement("DisplayName", g.DisplayName); err != nil {
		return err
	}
	if err := encodeStringElement("URI", g.URI); err != nil {
		return err
	}
	if err := encodeStringElement("EmailAddress", g.EmailAddress); err != nil {
		return err
	}
	return e.EncodeToken(start.End())
}

// UnmarshalXML reads the xsi:type attribute and the variant fields.
func (g *Grantee) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, attr := range start.Attr {
		if attr.Name.Local == "type" {
			g.Type = attr.Value
		}
	}
	var fields struct {
		ID           string `xml:"ID"`
		DisplayName  string `xml:"DisplayName"`
		URI          string `xml:"URI"`
		EmailAddress string `xml:"EmailAddress"`
	}
	if err := d.DecodeElement(&fields, &start); err != nil {
		return err
	}
	g.ID = fields.ID
	g.DisplayName = fields.DisplayName
	g.URI = fields.URI
	g.EmailAddress = fields.EmailAddress
	return nil
}

// Grant pairs a grantee with a permission.
type Grant struct {
	Grantee    Grantee    `xml:"Grantee"`
	Permission Permission `xml:"Permission"`
}

// AccessControlPolicy is the ACL document for buckets and objects.
type AccessControlPolicy struct {
	XMLName xml.Name `xml:"AccessControlPolicy"`
	Xmlns   string   `xml:"xmlns,attr,omitempty"`
	Owner   *Owner   `xml:"Owner,omitempty"`
	Grants  []Grant  `xml:"AccessControlList>Grant"`
}

// DefaultACL grants the owner full control.
func DefaultACL() *AccessControlPolicy {
	owner := DefaultOwner()
	return &AccessControlPolicy{
		Xmlns: Namespace,
		Owner: owner,
		Grants: []Grant{{
			Grantee:    Grantee{Type: GranteeCanonicalUser, ID: owner.ID, DisplayName: owner.DisplayName},
			Permission: PermissionFullControl,
		}},
	}
}

// Object is one stored object body plus its metadata.
type Object struct {
	Key                string
	Body               []byte
	ETag               string
	LastModified       time.Time
	ContentType        string
	ContentEncoding    string
	ContentLanguage    string
	ContentDisposition string
	CacheControl       string
	Expires            string
	Metadata           map[string]string
	StorageClass       StorageClass
	ACL                *AccessControlPolicy
	Tagging            map[string]string

	SSEAlgorithm ServerSideEncryption
	SSEKMSKeyID  string

	ObjectLockMode       ObjectLockMode
	ObjectLockRetainTill *time.Time
	LegalHold            LegalHoldStatus

	ChecksumAlgorithm ChecksumAlgorithm
	ChecksumType      ChecksumType
	ChecksumValue     string

	// PartsCount is positive for objects assembled by multipart completion.
	PartsCount int
}

// Size returns the body length.
func (o *Object) Size() int64 { return int64(len(o.Body)) }

// VersionEntry is one entry of a versioned key's history: either an object
// or a delete marker tombstone.
type VersionEntry struct {
	VersionID    string
	IsDeleteMark bool
	Object       *Object
	LastModified time.Time
}

// NullVersionID is the version id S3 assigns to objects written while
// versioning is suspended or before it was enabled.
const NullVersionID = "null"

// UploadPart is one uploaded part of a multipart upload.
type UploadPart struct {
	PartNumber   int
	Body         []byte
	ETag         string
	Size         int64
	LastModified time.Time
}

// MultipartUpload is an in-progress staged upload.
type MultipartUpload struct {
	UploadID          string
	Key               string
	Initiated         time.Time
	Initiator         *Owner
	Owner             *Owner
	StorageClass      StorageClass
	ContentType       string
	Metadata          map[string]string
	Tagging           map[string]string
	ChecksumAlgorithm ChecksumAlgorithm
	ChecksumType      ChecksumType
	// Parts are keyed by part number; re-upload replaces.
	Parts map[int]*UploadPart
}
