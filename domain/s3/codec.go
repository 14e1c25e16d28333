package s3

import (
	"bytes"
	"encoding/xml"
)

// Marshal renders a wire document with the XML declaration. Root types
// carry the namespace via their Xmlns field; constructors and the provider
// set it before serialization.
func Marshal(v interface{}) ([]byte, error) {
	body, err := xml.Marshal(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.Write(body)
	return buf.Bytes(), nil
}

// Unmarshal decodes a request document.
func Unmarshal(data []byte, v interface{}) error {
	return xml.Unmarshal(data, v)
}
