package config

import (
	"io"

	"github.com/BurntSushi/toml"
)

// tomlEncoder returns a closure matching the shape GenerateSample
// expects, keeping the BurntSushi/toml import isolated to this file.
func tomlEncoder(w io.Writer) func(any) error {
	enc := toml.NewEncoder(w)
	return enc.Encode
}
