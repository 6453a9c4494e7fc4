package schema

import (
	"mime"
	"path"
	"strings"
)

// Format names the encoding of a document payload.
type Format string

const (
	// FormatAuto sniffs the payload: '{' or '[' means JSON, anything else YAML.
	FormatAuto Format = ""
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath infers the format from a file or URL path extension.
func FormatFromPath(name string) Format {
	if idx := strings.IndexAny(name, "?#"); idx >= 0 {
		name = name[:idx]
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatAuto
	}
}

// FormatFromMediaType infers the format from a Content-Type header value.
// Structured suffixes such as application/schema+json count.
func FormatFromMediaType(value string) Format {
	mediaType, _, err := mime.ParseMediaType(value)
	if err != nil {
		return FormatAuto
	}
	switch {
	case mediaType == "application/json", strings.HasSuffix(mediaType, "+json"):
		return FormatJSON
	case strings.Contains(mediaType, "yaml"):
		return FormatYAML
	default:
		return FormatAuto
	}
}

// Decode parses raw according to f.
func (f Format) Decode(raw []byte) (any, error) {
	switch f {
	case FormatJSON:
		return DecodeJSON(raw)
	case FormatYAML:
		return DecodeYAML(raw)
	default:
		return Decode(raw)
	}
}
