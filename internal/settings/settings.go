// Package settings persists operator calibration between runs.
//
// The store is a small YAML file (~/.config/groundctl/settings.yaml by
// default). Writes go through yaml.Node so unrelated keys and comments in
// the file survive a save.
package settings

import (
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/groundctl/groundctl/internal/errors"
	"gopkg.in/yaml.v3"
)

const (
	// FileName is the settings file name inside the config directory.
	FileName = "settings.yaml"

	// KeyReferencePressure stores the calibration value in hPa.
	KeyReferencePressure = "gc_reference_pressure"
)

// Store reads and writes the settings file.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore returns a store backed by path. The file need not exist.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// ReferencePressure returns the stored calibration, or 0 when none is set.
// A missing file is not an error.
func (s *Store) ReferencePressure() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	root, err := s.read()
	if err != nil {
		return 0, err
	}
	node := findMapValue(docMapping(root), KeyReferencePressure)
	if node == nil || node.Kind != yaml.ScalarNode || node.Value == "" {
		return 0, nil
	}

	v, err := strconv.ParseFloat(node.Value, 64)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrSettings,
			"Stored reference pressure is not a number: "+node.Value,
			"Fix or remove "+KeyReferencePressure+" in "+s.path)
	}
	return Sanitize(v), nil
}

// SetReferencePressure stores v. Non-positive values clear the calibration.
func (s *Store) SetReferencePressure(v float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	root, err := s.read()
	if err != nil {
		return err
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		root = &yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}},
		}
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return errors.New(errors.ErrSettings,
			"Settings file is not a YAML mapping: "+s.path,
			"Delete the file and set the reference pressure again")
	}

	value := strconv.FormatFloat(Sanitize(v), 'f', -1, 64)
	if node := findMapValue(doc, KeyReferencePressure); node != nil {
		node.Kind = yaml.ScalarNode
		node.Tag = ""
		node.Style = 0
		node.Value = value
		node.Content = nil
	} else {
		doc.Content = append(doc.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: KeyReferencePressure},
			&yaml.Node{Kind: yaml.ScalarNode, Value: value},
		)
	}

	return s.write(root)
}

// Sanitize maps any value that cannot serve as a calibration (NaN, Inf,
// zero, negative) to 0, meaning "not set".
func Sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0
	}
	return v
}

func (s *Store) read() (*yaml.Node, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &yaml.Node{}, nil
		}
		return nil, errors.WrapWithCode(err, errors.ErrSettings,
			"Can't read settings file "+s.path,
			"Check file permissions")
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrSettings,
			"Settings file is not valid YAML: "+s.path,
			"Fix the syntax or delete the file")
	}
	return &root, nil
}

func (s *Store) write(root *yaml.Node) error {
	var buf strings.Builder
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(root); err != nil {
		return errors.WrapWithCode(err, errors.ErrSettings, "Failed to encode settings", "")
	}
	encoder.Close()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return errors.WrapWithCode(err, errors.ErrSettings,
			"Can't create settings directory "+filepath.Dir(s.path),
			"Check directory permissions")
	}

	// Write a sibling temp file, then rename it into place.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(buf.String()), 0644); err != nil {
		return errors.WrapWithCode(err, errors.ErrSettings,
			"Can't write settings file "+s.path,
			"Check file permissions")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return errors.WrapWithCode(err, errors.ErrSettings,
			"Can't replace settings file "+s.path,
			"Check file permissions")
	}
	return nil
}

func docMapping(root *yaml.Node) *yaml.Node {
	if root == nil || root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil
	}
	return root.Content[0]
}

// findMapValue finds a value in a mapping node by key name.
func findMapValue(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i < len(node.Content)-1; i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}
