package config

import (
	"bytes"

	"github.com/BurntSushi/toml"
)

// TOML is a koanf parser for TOML config files.
type TOML struct{}

// TOMLParser returns the TOML parser.
func TOMLParser() *TOML {
	return &TOML{}
}

// Unmarshal parses TOML bytes into a nested map.
func (p *TOML) Unmarshal(b []byte) (map[string]interface{}, error) {
	out := make(map[string]interface{})
	if _, err := toml.Decode(string(b), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Marshal encodes a nested map as TOML.
func (p *TOML) Marshal(m map[string]interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
