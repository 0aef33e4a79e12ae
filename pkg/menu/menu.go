// Package menu turns a user's menu permission tree into routable pages and
// sidebar sections.
package menu

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Sidebar section names.
const (
	SectionMain     = "main"
	SectionSettings = "settings"
)

// Node is one entry of the menu tree. Nodes without a Path are containers:
// they contribute no route but their children are still visited.
type Node struct {
	ID       string `json:"id,omitempty" yaml:"id,omitempty"`
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Path     string `json:"path,omitempty" yaml:"path,omitempty"`
	Icon     string `json:"icon,omitempty" yaml:"icon,omitempty"`
	Section  string `json:"section,omitempty" yaml:"section,omitempty"`
	Children []Node `json:"children,omitempty" yaml:"children,omitempty"`
}

// UnmarshalJSON accepts numeric ids, which the menu API returns, as well as
// strings.
func (n *Node) UnmarshalJSON(data []byte) error {
	type plain Node
	var raw struct {
		plain
		ID json.RawMessage `json:"id,omitempty"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*n = Node(raw.plain)
	n.ID = ""
	if len(raw.ID) > 0 && string(raw.ID) != "null" {
		var s string
		if err := json.Unmarshal(raw.ID, &s); err == nil {
			n.ID = s
		} else {
			n.ID = strings.TrimSpace(string(raw.ID))
		}
	}
	return nil
}

// Walk visits every node of tree in depth-first pre-order. It uses an
// explicit stack, so deep trees do not grow the goroutine stack.
// Returning false from fn stops the walk.
func Walk(tree []Node, fn func(n *Node) bool) {
	stack := make([]*Node, 0, len(tree))
	for i := len(tree) - 1; i >= 0; i-- {
		stack = append(stack, &tree[i])
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(n) {
			return
		}
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, &n.Children[i])
		}
	}
}

// Paths returns every non-empty path in tree, in traversal order.
func Paths(tree []Node) []string {
	var paths []string
	Walk(tree, func(n *Node) bool {
		if n.Path != "" {
			paths = append(paths, n.Path)
		}
		return true
	})
	return paths
}

// Errors returned by LoadFile.
var (
	ErrFileNotFound = errors.New("menu file not found")
	ErrEmptyFile    = errors.New("menu file is empty")
)

// File is the on-disk shape of a static menu file.
type File struct {
	Menus []Node `json:"menus" yaml:"menus"`
}

// LoadFile reads a menu tree from a YAML (.yaml, .yml) or JSON file.
func LoadFile(path string) ([]Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to read menu file: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	var f File
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("invalid menu YAML in %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("invalid menu JSON in %s: %w", path, err)
		}
	}
	return f.Menus, nil
}
