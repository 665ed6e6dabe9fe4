package device

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/conn-castle/ota-layer/internal/messages"
)

// ErrProfileValidation wraps profile problems that are not TOML syntax or
// filesystem errors.
var ErrProfileValidation = errors.New("device profile validation failed")

// Load reads and validates the profile at path.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf(messages.DeviceMissingProfileFmt, path, err)
	}
	return Parse(data, path)
}

// Default returns the embedded default profile.
func Default() (*Profile, error) {
	return Parse(defaultProfile, "embedded device.toml")
}

// DefaultBytes returns a copy of the embedded default profile text.
func DefaultBytes() []byte {
	out := make([]byte, len(defaultProfile))
	copy(out, defaultProfile)
	return out
}

// LoadOrDefault loads path, or the embedded default when path is empty.
func LoadOrDefault(path string) (*Profile, error) {
	if path == "" {
		return Default()
	}
	return Load(path)
}

// Parse decodes and validates profile TOML. source names the data in errors.
func Parse(data []byte, source string) (*Profile, error) {
	var p Profile
	if err := toml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf(messages.DeviceInvalidProfileFmt, source, err)
	}
	if err := decodeStrict(data); err != nil {
		return nil, fmt.Errorf("%w: "+messages.DeviceUnrecognizedKeysFmt+" "+messages.DeviceValidationGuidance, ErrProfileValidation, source, err)
	}
	if err := p.Validate(source); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProfileValidation, err)
	}
	return &p, nil
}

// decodeStrict re-decodes data rejecting keys the profile does not define,
// which toml.Unmarshal otherwise drops silently.
func decodeStrict(data []byte) error {
	var p Profile
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	return decoder.Decode(&p)
}
