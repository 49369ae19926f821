// Package loader reads an sff source document from disk, accepting either
// YAML or JSON (format inferred from the file extension, defaulting to
// YAML).
package loader

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/flowlane/sff/pkg/model"
	"gopkg.in/yaml.v3"
)

// LoadDocument reads an sff document from path. The format is inferred
// from the file extension (.json for JSON, anything else for YAML).
func LoadDocument(path string) (*model.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sff source %s: %w", path, err)
	}
	data = stripBOM(data)

	var doc model.Document
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing sff JSON %s: %w", path, err)
		}
		return &doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing sff YAML %s: %w", path, err)
	}
	return &doc, nil
}

// stripBOM removes a UTF-8 byte order mark if present.
func stripBOM(b []byte) []byte {
	if bytes.HasPrefix(b, []byte{0xEF, 0xBB, 0xBF}) {
		return b[3:]
	}
	return b
}
