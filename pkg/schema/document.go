package schema

import "errors"

// Document wraps a raw schema (or config) payload and the place it came from.
type Document struct {
	source Source
	raw    []byte
	format Format
}

// NewDocument constructs a Document wrapper while validating the inputs.
func NewDocument(src Source, raw []byte) (Document, error) {
	if src == nil {
		return Document{}, errors.New("schema: source is required")
	}
	if len(raw) == 0 {
		return Document{}, errors.New("schema: raw document is empty")
	}

	clone := append([]byte(nil), raw...)
	return Document{source: src, raw: clone}, nil
}

// MustNewDocument panics if the document cannot be created. Useful for tests.
func MustNewDocument(src Source, raw []byte) Document {
	doc, err := NewDocument(src, raw)
	if err != nil {
		panic(err)
	}
	return doc
}

// WithFormat returns a copy of d decoded as f instead of sniffing.
func (d Document) WithFormat(f Format) Document {
	d.format = f
	return d
}

// Format reports the declared encoding, FormatAuto when unknown.
func (d Document) Format() Format {
	return d.format
}

// Source returns the origin metadata for the document.
func (d Document) Source() Source {
	return d.source
}

// Raw returns a copy of the payload.
func (d Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

// Location returns the string identifier for the origin.
func (d Document) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}

// Parse decodes the payload as JSON or YAML, honouring a declared format.
// Objects come back as *Map so the declaration order of properties survives.
func (d Document) Parse() (any, error) {
	return d.format.Decode(d.raw)
}

// ParseObject decodes the payload and requires the top-level value to be an
// object.
func (d Document) ParseObject() (*Map, error) {
	value, err := d.Parse()
	if err != nil {
		return nil, err
	}
	obj, ok := value.(*Map)
	if !ok {
		return nil, errors.New("schema: document root is not an object")
	}
	return obj, nil
}
