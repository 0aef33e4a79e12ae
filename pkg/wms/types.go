// Package wms defines the warehouse master-data entities, their create and
// update payloads, and the API endpoint and console page each one lives at.
package wms

import "time"

// Audit holds the bookkeeping columns the API returns on every record.
type Audit struct {
	CreatedAt time.Time `json:"created_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
	CreatedBy string    `json:"created_by,omitempty"`
	UpdatedBy string    `json:"updated_by,omitempty"`
}

// Uom is a unit of measure.
type Uom struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"is_active"`
	Audit
}

// CreateUom is the payload for creating a Uom.
type CreateUom struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// UpdateUom is the payload for updating a Uom.
type UpdateUom struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"is_active"`
}

// Pallet is a pallet type.
type Pallet struct {
	ID        int64   `json:"id"`
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Length    float64 `json:"length"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	MaxWeight float64 `json:"max_weight"`
	IsActive  bool    `json:"is_active"`
	Audit
}

// CreatePallet is the payload for creating a Pallet.
type CreatePallet struct {
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Length    float64 `json:"length"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	MaxWeight float64 `json:"max_weight"`
}

// UpdatePallet is the payload for updating a Pallet.
type UpdatePallet struct {
	Name      string  `json:"name"`
	Length    float64 `json:"length"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	MaxWeight float64 `json:"max_weight"`
	IsActive  bool    `json:"is_active"`
}

// Supplier is a goods supplier.
type Supplier struct {
	ID       int64  `json:"id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Address  string `json:"address,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
	IsActive bool   `json:"is_active"`
	Audit
}

// CreateSupplier is the payload for creating a Supplier.
type CreateSupplier struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
}

// UpdateSupplier is the payload for updating a Supplier.
type UpdateSupplier struct {
	Name     string `json:"name"`
	Address  string `json:"address,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
	IsActive bool   `json:"is_active"`
}

// Io is an inbound/outbound movement type.
type Io struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Direction   string `json:"direction"`
	Description string `json:"description,omitempty"`
	Audit
}

// CreateIo is the payload for creating an Io.
type CreateIo struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Direction   string `json:"direction"`
	Description string `json:"description,omitempty"`
}

// UpdateIo is the payload for updating an Io.
type UpdateIo struct {
	Name        string `json:"name"`
	Direction   string `json:"direction"`
	Description string `json:"description,omitempty"`
}

// Warehouse is a physical storage site.
type Warehouse struct {
	ID       int64  `json:"id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Address  string `json:"address,omitempty"`
	City     string `json:"city,omitempty"`
	IsActive bool   `json:"is_active"`
	Audit
}

// CreateWarehouse is the payload for creating a Warehouse.
type CreateWarehouse struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
}

// UpdateWarehouse is the payload for updating a Warehouse.
type UpdateWarehouse struct {
	Name     string `json:"name"`
	Address  string `json:"address,omitempty"`
	City     string `json:"city,omitempty"`
	IsActive bool   `json:"is_active"`
}

// Menu is a stored navigation entry. ParentID is nil for top-level menus.
type Menu struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Path     string `json:"path,omitempty"`
	Icon     string `json:"icon,omitempty"`
	ParentID *int64 `json:"parent_id,omitempty"`
	Section  string `json:"section,omitempty"`
	Order    int    `json:"order"`
	Audit
}

// CreateMenu is the payload for creating a Menu.
type CreateMenu struct {
	Name     string `json:"name"`
	Path     string `json:"path,omitempty"`
	Icon     string `json:"icon,omitempty"`
	ParentID *int64 `json:"parent_id,omitempty"`
	Section  string `json:"section,omitempty"`
	Order    int    `json:"order"`
}

// UpdateMenu is the payload for updating a Menu.
type UpdateMenu = CreateMenu

// Item is a stocked product.
type Item struct {
	ID          int64   `json:"id"`
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Barcode     string  `json:"barcode,omitempty"`
	UomID       int64   `json:"uom_id"`
	SupplierID  int64   `json:"supplier_id,omitempty"`
	Weight      float64 `json:"weight,omitempty"`
	Description string  `json:"description,omitempty"`
	IsActive    bool    `json:"is_active"`
	Audit
}

// CreateItem is the payload for creating an Item.
type CreateItem struct {
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Barcode     string  `json:"barcode,omitempty"`
	UomID       int64   `json:"uom_id"`
	SupplierID  int64   `json:"supplier_id,omitempty"`
	Weight      float64 `json:"weight,omitempty"`
	Description string  `json:"description,omitempty"`
}

// UpdateItem is the payload for updating an Item.
type UpdateItem struct {
	Name        string  `json:"name"`
	Barcode     string  `json:"barcode,omitempty"`
	UomID       int64   `json:"uom_id"`
	SupplierID  int64   `json:"supplier_id,omitempty"`
	Weight      float64 `json:"weight,omitempty"`
	Description string  `json:"description,omitempty"`
	IsActive    bool    `json:"is_active"`
}

// InboundPlanning is an expected receipt of goods from a supplier.
type InboundPlanning struct {
	ID          int64                 `json:"id"`
	PlanNo      string                `json:"plan_no"`
	SupplierID  int64                 `json:"supplier_id"`
	WarehouseID int64                 `json:"warehouse_id"`
	PlanDate    string                `json:"plan_date"`
	Status      string                `json:"status"`
	Remarks     string                `json:"remarks,omitempty"`
	Items       []InboundPlanningLine `json:"items,omitempty"`
	Audit
}

// InboundPlanningLine is one planned item of an InboundPlanning.
type InboundPlanningLine struct {
	ItemID   int64   `json:"item_id"`
	Quantity float64 `json:"quantity"`
	UomID    int64   `json:"uom_id"`
}

// CreateInboundPlanning is the payload for creating an InboundPlanning.
type CreateInboundPlanning struct {
	SupplierID  int64                 `json:"supplier_id"`
	WarehouseID int64                 `json:"warehouse_id"`
	PlanDate    string                `json:"plan_date"`
	Remarks     string                `json:"remarks,omitempty"`
	Items       []InboundPlanningLine `json:"items"`
}

// UpdateInboundPlanning is the payload for updating an InboundPlanning.
type UpdateInboundPlanning struct {
	PlanDate string                `json:"plan_date"`
	Status   string                `json:"status"`
	Remarks  string                `json:"remarks,omitempty"`
	Items    []InboundPlanningLine `json:"items"`
}

// User is a console account.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
	RoleID   int64  `json:"role_id"`
	IsActive bool   `json:"is_active"`
	Audit
}

// CreateUser is the payload for creating a User.
type CreateUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
	Password string `json:"password"`
	RoleID   int64  `json:"role_id"`
}

// UpdateUser is the payload for updating a User. An empty Password keeps the
// current one.
type UpdateUser struct {
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
	Password string `json:"password,omitempty"`
	RoleID   int64  `json:"role_id"`
	IsActive bool   `json:"is_active"`
}

// Role groups the menus a user may open.
type Role struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	MenuIDs     []int64 `json:"menu_ids,omitempty"`
	Audit
}

// CreateRole is the payload for creating a Role.
type CreateRole struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	MenuIDs     []int64 `json:"menu_ids"`
}

// UpdateRole is the payload for updating a Role.
type UpdateRole = CreateRole
