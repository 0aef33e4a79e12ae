package wms

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// API endpoints, relative to the API base URL.
const (
	EndpointUom             = "/master-uom"
	EndpointPallet          = "/master-pallet"
	EndpointSupplier        = "/master-supplier"
	EndpointIo              = "/master-io"
	EndpointWarehouse       = "/master-warehouse"
	EndpointMenu            = "/menu"
	EndpointParentMenu      = "/menu/parent"
	EndpointItem            = "/master-item"
	EndpointInboundPlanning = "/inbound-plan"
	EndpointUser            = "/user"
	EndpointRole            = "/role"
)

// Console page paths as they appear in menu trees.
const (
	PageUom             = "/master_uom"
	PagePallet          = "/master_pallet"
	PageSupplier        = "/master_supplier"
	PageIo              = "/master_io"
	PageWarehouse       = "/master_warehouse"
	PageMenu            = "/master_menu"
	PageItem            = "/master_item"
	PageUser            = "/master_user"
	PageRole            = "/master_role"
	PageInboundPlanning = "/inbound_planning"
)

// Entity describes one master-data kind.
type Entity struct {
	// Name is the store name used in notifications, e.g. "Uom".
	Name string
	// Endpoint is the REST collection path.
	Endpoint string
	// Page is the console page path. Empty for lookup-only entities.
	Page string
	// Columns lists the JSON keys shown in table views, in order.
	Columns []string
}

// Title is the human title of the entity's page.
func (e Entity) Title() string {
	if e.Page == "" {
		return Title(e.Name)
	}
	return Title(e.Page)
}

// Catalog lists every entity the console manages.
var Catalog = []Entity{
	{Name: "Uom", Endpoint: EndpointUom, Page: PageUom, Columns: []string{"id", "code", "name", "description", "is_active"}},
	{Name: "Pallet", Endpoint: EndpointPallet, Page: PagePallet, Columns: []string{"id", "code", "name", "length", "width", "height", "max_weight"}},
	{Name: "Supplier", Endpoint: EndpointSupplier, Page: PageSupplier, Columns: []string{"id", "code", "name", "phone", "email"}},
	{Name: "Io", Endpoint: EndpointIo, Page: PageIo, Columns: []string{"id", "code", "name", "direction"}},
	{Name: "Warehouse", Endpoint: EndpointWarehouse, Page: PageWarehouse, Columns: []string{"id", "code", "name", "city", "is_active"}},
	{Name: "Menu", Endpoint: EndpointMenu, Page: PageMenu, Columns: []string{"id", "name", "path", "section", "order"}},
	{Name: "Parent menu", Endpoint: EndpointParentMenu, Columns: []string{"id", "name", "path"}},
	{Name: "Item", Endpoint: EndpointItem, Page: PageItem, Columns: []string{"id", "code", "name", "barcode", "uom_id"}},
	{Name: "Inbound planning", Endpoint: EndpointInboundPlanning, Page: PageInboundPlanning, Columns: []string{"id", "plan_no", "plan_date", "status"}},
	{Name: "User", Endpoint: EndpointUser, Page: PageUser, Columns: []string{"id", "username", "email", "full_name", "is_active"}},
	{Name: "Role", Endpoint: EndpointRole, Page: PageRole, Columns: []string{"id", "name", "description"}},
}

// ByPage returns the entity served at a console page path.
func ByPage(page string) (Entity, bool) {
	for _, e := range Catalog {
		if e.Page != "" && e.Page == page {
			return e, true
		}
	}
	return Entity{}, false
}

// ByEndpoint returns the entity behind an API endpoint.
func ByEndpoint(endpoint string) (Entity, bool) {
	for _, e := range Catalog {
		if e.Endpoint == endpoint {
			return e, true
		}
	}
	return Entity{}, false
}

// Title turns a path or JSON key into a heading: "/master_uom" becomes
// "Master Uom" and "max_weight" becomes "Max Weight". A Caser keeps state, so
// each call builds its own.
func Title(s string) string {
	s = strings.Trim(s, "/")
	s = strings.NewReplacer("_", " ", "-", " ", "/", " ").Replace(s)
	return cases.Title(language.English).String(strings.Join(strings.Fields(s), " "))
}
