package menu

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPage is a comparable page with a stable name.
type stubPage struct {
	name string
}

func (p *stubPage) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte(p.name))
}

func (p *stubPage) PageName() string { return p.name }

func TestBuild_SingleNode(t *testing.T) {
	pageA := &stubPage{name: "user"}
	b := &Builder{Pages: map[string]http.Handler{"/master_user": pageA}}

	routes := b.Build([]Node{{ID: "a", Path: "/master_user"}})

	require.Len(t, routes, 1)
	assert.Equal(t, "a", routes[0].ID)
	assert.Equal(t, "/master_user", routes[0].Path)
	assert.Same(t, pageA, routes[0].Page)
}

func TestBuild_ManualChildren(t *testing.T) {
	role := &stubPage{name: "role"}
	create := &stubPage{name: "role-create"}
	update := &stubPage{name: "role-update"}
	b := &Builder{
		Pages: map[string]http.Handler{"/master_role": role},
		Children: map[string][]ChildRoute{
			"/master_role": {
				{Path: "create", Page: create},
				{Path: "update", Page: update},
			},
		},
	}

	routes := b.Build([]Node{{ID: "r", Path: "/master_role"}})

	require.Len(t, routes, 3)
	assert.Equal(t, []string{"/master_role", "/master_role/create", "/master_role/update"},
		[]string{routes[0].Path, routes[1].Path, routes[2].Path})
	assert.Equal(t, []string{"r", "/master_role-create", "/master_role-update"},
		[]string{routes[0].ID, routes[1].ID, routes[2].ID})
	assert.Same(t, role, routes[0].Page)
	assert.Same(t, create, routes[1].Page)
	assert.Same(t, update, routes[2].Page)
}

func TestBuild_UnknownPathUsesPlaceholder(t *testing.T) {
	t.Run("default placeholder", func(t *testing.T) {
		b := &Builder{}
		routes := b.Build([]Node{{ID: "x", Path: "/master_unknown"}})

		require.Len(t, routes, 1)
		require.NotNil(t, routes[0].Page)
		assert.Same(t, UnderDevelopment, routes[0].Page)

		rec := httptest.NewRecorder()
		routes[0].Page.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/master_unknown", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "under development")
	})

	t.Run("custom placeholder", func(t *testing.T) {
		custom := &stubPage{name: "soon"}
		b := &Builder{Placeholder: custom}
		routes := b.Build([]Node{{ID: "x", Path: "/master_unknown"}})

		require.Len(t, routes, 1)
		assert.Same(t, custom, routes[0].Page)
	})
}

func TestBuild_ContainerWithoutPath(t *testing.T) {
	x := &stubPage{name: "x"}
	b := &Builder{Pages: map[string]http.Handler{"/x": x}}

	routes := b.Build([]Node{{ID: "group", Name: "Master", Children: []Node{{ID: "leaf", Path: "/x"}}}})

	require.Len(t, routes, 1)
	assert.Equal(t, "/x", routes[0].Path)
	assert.Equal(t, "leaf", routes[0].ID)
}

func TestBuild_ChildrenOfRoutedNodeAreVisited(t *testing.T) {
	b := &Builder{}
	routes := b.Build([]Node{{ID: "p", Path: "/parent", Children: []Node{{ID: "c", Path: "/child"}}}})

	require.Len(t, routes, 2)
	assert.Equal(t, "/parent", routes[0].Path)
	assert.Equal(t, "/child", routes[1].Path)
}

func TestBuild_IDFallsBackToPath(t *testing.T) {
	routes := (&Builder{}).Build([]Node{{Path: "/master_io"}})

	require.Len(t, routes, 1)
	assert.Equal(t, "/master_io", routes[0].ID)
}

func TestBuild_EmptyTree(t *testing.T) {
	routes := (&Builder{}).Build(nil)
	assert.Empty(t, routes)
}

func TestBuild_DuplicatePathsAreKept(t *testing.T) {
	routes := (&Builder{}).Build([]Node{{ID: "1", Path: "/dup"}, {ID: "2", Path: "/dup"}})

	require.Len(t, routes, 2)
	assert.Equal(t, "1", routes[0].ID)
	assert.Equal(t, "2", routes[1].ID)
}

func TestBuild_DeepTree(t *testing.T) {
	// A chain deep enough that a naive recursion would be noticeable.
	const depth = 10000
	root := Node{ID: "n0", Path: "/n0"}
	cur := &root
	for i := 1; i < depth; i++ {
		cur.Children = []Node{{Path: "/deep"}}
		cur = &cur.Children[0]
	}

	routes := (&Builder{}).Build([]Node{root})
	assert.Len(t, routes, depth)
}

func TestBuild_Golden(t *testing.T) {
	tree := []Node{
		{ID: "1", Name: "Master", Children: []Node{
			{ID: "11", Name: "UOM", Path: "/master_uom"},
			{ID: "12", Name: "Role", Path: "/master_role"},
		}},
		{ID: "2", Name: "Inbound", Path: "/inbound_planning"},
		{Name: "Reports", Path: "/reports"},
	}
	b := &Builder{
		Pages: map[string]http.Handler{
			"/master_uom":       &stubPage{name: "uom"},
			"/master_role":      &stubPage{name: "role"},
			"/inbound_planning": &stubPage{name: "inbound"},
		},
		Children: map[string][]ChildRoute{
			"/master_role": {
				{Path: "create", Page: &stubPage{name: "role-create"}},
				{Path: "update", Page: &stubPage{name: "role-update"}},
			},
			"/inbound_planning": {
				{Path: "create", Page: &stubPage{name: "inbound-create"}},
			},
		},
	}

	data, err := json.MarshalIndent(Describe(b.Build(tree)), "", "  ")
	require.NoError(t, err)

	g := goldie.New(t, goldie.WithFixtureDir("testdata"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "route_table", append(data, '\n'))
}

func TestPageName(t *testing.T) {
	assert.Equal(t, "<nil>", PageName(nil))
	assert.Equal(t, "placeholder", PageName(UnderDevelopment))
	assert.Equal(t, "uom", PageName(&stubPage{name: "uom"}))
	assert.True(t, strings.HasPrefix(PageName(http.NotFoundHandler()), "http."))
}
