package storage

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// VersionWrapper wraps a stored value with the version of its encoding so that
// changes to the encoding can be decoded.
type VersionWrapper struct {
	Version int             `json:"version"`
	Value   json.RawMessage `json:"value"`
}

// VersionJSONEncode encodes o as JSON wrapped in a VersionWrapper.
func VersionJSONEncode(version int, o interface{}) ([]byte, error) {
	raw, err := json.Marshal(o)
	if err != nil {
		return nil, errors.Wrap(err, "encoding value")
	}
	return json.Marshal(VersionWrapper{
		Version: version,
		Value:   raw,
	})
}

// VersionJSONDecode decodes data produced by VersionJSONEncode, decF is called with the
// stored version and a decoder positioned on the wrapped value.
func VersionJSONDecode(data []byte, decF func(version int, dec *json.Decoder) error) error {
	var wrapper VersionWrapper
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return errors.Wrap(err, "decoding version wrapper")
	}
	if len(wrapper.Value) == 0 {
		return errors.New("empty value")
	}
	return decF(wrapper.Version, json.NewDecoder(bytes.NewReader(wrapper.Value)))
}
