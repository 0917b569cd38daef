package assembly

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ParseRequest decodes a YAML build request. Unknown document fields are
// rejected so a typo in a part stanza fails loudly instead of silently
// dropping a dimension.
func ParseRequest(r io.Reader) (BuildRequest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var req BuildRequest
	if err := dec.Decode(&req); err != nil {
		return BuildRequest{}, fmt.Errorf("assembly: decoding request: %w", err)
	}
	if req.Vessel == "" {
		return BuildRequest{}, fmt.Errorf("assembly: request names no vessel")
	}
	return req, nil
}
