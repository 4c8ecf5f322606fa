package confkit

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// DecodeYAML unmarshals r into dst, leaving any fields already set on dst
// untouched when the YAML document omits the corresponding key. Callers
// should pre-populate dst with defaults before calling this.
func DecodeYAML(r io.Reader, dst any) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("confkit: read yaml: %w", err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := yaml.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("confkit: decode yaml: %w", err)
	}
	return nil
}
