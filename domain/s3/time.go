package s3

import (
	"encoding/xml"
	"time"
)

// timestampFormat is the wire format for every timestamp the emulator
// emits: millisecond precision, Zulu suffix.
const timestampFormat = "2006-01-02T15:04:05.000Z"

// Timestamp wraps time.Time with the S3 XML wire format.
type Timestamp struct {
	time.Time
}

// NewTimestamp truncates to millisecond precision so rendered values
// round-trip exactly.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{t.UTC().Truncate(time.Millisecond)}
}

// MarshalXML renders the wire format.
func (t Timestamp) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if t.IsZero() {
		return nil
	}
	return e.EncodeElement(t.UTC().Format(timestampFormat), start)
}

// UnmarshalXML accepts the wire format plus plain RFC 3339.
func (t *Timestamp) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var raw string
	if err := d.DecodeElement(&raw, &start); err != nil {
		return err
	}
	for _, layout := range []string{timestampFormat, time.RFC3339Nano, time.RFC3339} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			*t = NewTimestamp(parsed)
			return nil
		}
	}
	return xml.UnmarshalError("invalid timestamp: " + raw)
}
