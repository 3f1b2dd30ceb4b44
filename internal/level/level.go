// Package level loads the scene catalog played by the game.
package level

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/frudas24/gazewaldo/internal/coords"
	"gopkg.in/yaml.v3"
)

// Scene is one playable picture with the hidden target region in surface coordinates.
type Scene struct {
	Filename string      `json:"filename" yaml:"filename"`
	Target   coords.Rect `json:"waldo_location" yaml:"waldo_location"`
}

// placeholderTarget is the region written for generated scenes until edited.
var placeholderTarget = coords.Rect{X: 0, Y: 0, W: 10, H: 10}

// Load reads a catalog from a JSON or YAML file. A missing file yields an empty catalog.
func Load(path string) ([]Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	// YAML is a superset of JSON, so one decoder serves both formats.
	var scenes []Scene
	if err := yaml.Unmarshal(data, &scenes); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for i, s := range scenes {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("scene %d: %w", i, err)
		}
	}
	return scenes, nil
}

// Save writes the catalog, as YAML for .yaml/.yml paths and indented JSON otherwise.
func Save(path string, scenes []Scene) error {
	if scenes == nil {
		scenes = []Scene{}
	}
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(scenes)
	} else {
		data, err = json.MarshalIndent(scenes, "", "  ")
	}
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Generate lists .png and .jpg files in dir as scenes with a placeholder target.
func Generate(dir string) ([]Scene, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var scenes []Scene
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".png", ".jpg":
			scenes = append(scenes, Scene{
				Filename: filepath.ToSlash(filepath.Join(dir, e.Name())),
				Target:   placeholderTarget,
			})
		}
	}
	sort.Slice(scenes, func(i, j int) bool { return scenes[i].Filename < scenes[j].Filename })
	return scenes, nil
}

// Validate checks the filename and target rectangle.
func (s Scene) Validate() error {
	if strings.TrimSpace(s.Filename) == "" {
		return errors.New("filename is required")
	}
	r := s.Target
	for _, v := range []float64{r.X, r.Y, r.W, r.H} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: target rect %+v", coords.ErrInvalidDimension, r)
		}
	}
	if r.W <= 0 || r.H <= 0 {
		return fmt.Errorf("%w: target rect %+v", coords.ErrInvalidDimension, r)
	}
	return nil
}

// isYAML reports whether path has a YAML extension.
func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
