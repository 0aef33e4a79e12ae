package menu

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalk_PreOrder(t *testing.T) {
	tree := []Node{
		{ID: "a", Children: []Node{{ID: "a1"}, {ID: "a2", Children: []Node{{ID: "a2x"}}}}},
		{ID: "b"},
	}

	var seen []string
	Walk(tree, func(n *Node) bool {
		seen = append(seen, n.ID)
		return true
	})

	assert.Equal(t, []string{"a", "a1", "a2", "a2x", "b"}, seen)
}

func TestWalk_Stop(t *testing.T) {
	tree := []Node{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	var seen []string
	Walk(tree, func(n *Node) bool {
		seen = append(seen, n.ID)
		return n.ID != "b"
	})

	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestPaths(t *testing.T) {
	tree := []Node{{ID: "g", Children: []Node{{Path: "/x"}, {Path: "/y"}}}, {Path: "/z"}}
	assert.Equal(t, []string{"/x", "/y", "/z"}, Paths(tree))
}

func TestNode_UnmarshalJSON(t *testing.T) {
	data := `[{"id": 7, "name": "Master", "children": [{"id": "u", "path": "/master_uom"}, {"path": "/master_io", "id": null}]}]`

	var tree []Node
	require.NoError(t, json.Unmarshal([]byte(data), &tree))

	require.Len(t, tree, 1)
	assert.Equal(t, "7", tree[0].ID)
	assert.Equal(t, "Master", tree[0].Name)
	require.Len(t, tree[0].Children, 2)
	assert.Equal(t, "u", tree[0].Children[0].ID)
	assert.Equal(t, "/master_uom", tree[0].Children[0].Path)
	assert.Equal(t, "", tree[0].Children[1].ID)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "menus.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`menus:
  - id: "1"
    name: Master
    children:
      - id: "11"
        name: UOM
        path: /master_uom
  - id: "2"
    name: Users
    path: /master_user
    section: settings
`), 0o644))

	jsonPath := filepath.Join(dir, "menus.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"menus": [{"id": 1, "path": "/master_uom"}]}`), 0o644))

	t.Run("yaml", func(t *testing.T) {
		tree, err := LoadFile(yamlPath)
		require.NoError(t, err)
		require.Len(t, tree, 2)
		assert.Equal(t, []string{"/master_uom", "/master_user"}, Paths(tree))
		assert.Equal(t, SectionSettings, tree[1].Section)
	})

	t.Run("json", func(t *testing.T) {
		tree, err := LoadFile(jsonPath)
		require.NoError(t, err)
		require.Len(t, tree, 1)
		assert.Equal(t, "1", tree[0].ID)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(dir, "nope.yaml"))
		assert.True(t, errors.Is(err, ErrFileNotFound))
	})

	t.Run("empty", func(t *testing.T) {
		empty := filepath.Join(dir, "empty.yaml")
		require.NoError(t, os.WriteFile(empty, []byte("  \n"), 0o644))
		_, err := LoadFile(empty)
		assert.True(t, errors.Is(err, ErrEmptyFile))
	})

	t.Run("invalid", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
		_, err := LoadFile(bad)
		assert.Error(t, err)
	})
}
