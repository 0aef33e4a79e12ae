package wms

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/master_uom", "Master Uom"},
		{"max_weight", "Max Weight"},
		{"/inbound_planning", "Inbound Planning"},
		{"/menu/parent", "Menu Parent"},
		{"MASTER_IO", "Master Io"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Title(tt.in))
		})
	}
}

func TestCatalog_UniqueEndpointsAndPages(t *testing.T) {
	endpoints := map[string]bool{}
	pages := map[string]bool{}
	for _, e := range Catalog {
		assert.False(t, endpoints[e.Endpoint], "duplicate endpoint %s", e.Endpoint)
		endpoints[e.Endpoint] = true
		if e.Page != "" {
			assert.False(t, pages[e.Page], "duplicate page %s", e.Page)
			pages[e.Page] = true
		}
		assert.NotEmpty(t, e.Columns, e.Name)
	}
}

func TestByPage(t *testing.T) {
	e, ok := ByPage(PageInboundPlanning)
	require.True(t, ok)
	assert.Equal(t, EndpointInboundPlanning, e.Endpoint)
	assert.Equal(t, "Inbound Planning", e.Title())

	_, ok = ByPage("")
	assert.False(t, ok, "lookup-only entities have no page")

	_, ok = ByPage("/reports")
	assert.False(t, ok)
}

func TestByEndpoint(t *testing.T) {
	e, ok := ByEndpoint(EndpointParentMenu)
	require.True(t, ok)
	assert.Empty(t, e.Page)
	assert.Equal(t, "Parent Menu", e.Title())
}

func TestAudit_ZeroTimesOmitted(t *testing.T) {
	data, err := json.Marshal(Uom{ID: 1, Code: "PCS", Name: "Pieces"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"code":"PCS","name":"Pieces","is_active":false}`, string(data))
}

func TestMenu_ParentID(t *testing.T) {
	var m Menu
	require.NoError(t, json.Unmarshal([]byte(`{"id":3,"name":"UOM","parent_id":1}`), &m))
	require.NotNil(t, m.ParentID)
	assert.Equal(t, int64(1), *m.ParentID)

	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"name":"Master"}`), &m))
	assert.Equal(t, int64(1), m.ID)
}
