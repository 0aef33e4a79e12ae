package console

import (
	"github.com/nna-wms/wmsconsole/pkg/crud"
	"github.com/nna-wms/wmsconsole/pkg/restclient"
	"github.com/nna-wms/wmsconsole/pkg/wms"
)

// Stores is the set of entity stores of one workspace.
type Stores struct {
	Uom             *crud.Store[wms.Uom, wms.CreateUom, wms.UpdateUom]
	Pallet          *crud.Store[wms.Pallet, wms.CreatePallet, wms.UpdatePallet]
	Supplier        *crud.Store[wms.Supplier, wms.CreateSupplier, wms.UpdateSupplier]
	Io              *crud.Store[wms.Io, wms.CreateIo, wms.UpdateIo]
	Warehouse       *crud.Store[wms.Warehouse, wms.CreateWarehouse, wms.UpdateWarehouse]
	Menu            *crud.Store[wms.Menu, wms.CreateMenu, wms.UpdateMenu]
	ParentMenu      *crud.Store[wms.Menu, wms.CreateMenu, wms.UpdateMenu]
	Item            *crud.Store[wms.Item, wms.CreateItem, wms.UpdateItem]
	InboundPlanning *crud.Store[wms.InboundPlanning, wms.CreateInboundPlanning, wms.UpdateInboundPlanning]
	User            *crud.Store[wms.User, wms.CreateUser, wms.UpdateUser]
	Role            *crud.Store[wms.Role, wms.CreateRole, wms.UpdateRole]
}

// NewStores creates one store per catalog entity, each backed by a REST
// resource on client.
func NewStores(client *restclient.Client, opts ...crud.Option) *Stores {
	return &Stores{
		Uom:             newStore[wms.Uom, wms.CreateUom, wms.UpdateUom](client, wms.EndpointUom, opts),
		Pallet:          newStore[wms.Pallet, wms.CreatePallet, wms.UpdatePallet](client, wms.EndpointPallet, opts),
		Supplier:        newStore[wms.Supplier, wms.CreateSupplier, wms.UpdateSupplier](client, wms.EndpointSupplier, opts),
		Io:              newStore[wms.Io, wms.CreateIo, wms.UpdateIo](client, wms.EndpointIo, opts),
		Warehouse:       newStore[wms.Warehouse, wms.CreateWarehouse, wms.UpdateWarehouse](client, wms.EndpointWarehouse, opts),
		Menu:            newStore[wms.Menu, wms.CreateMenu, wms.UpdateMenu](client, wms.EndpointMenu, opts),
		ParentMenu:      newStore[wms.Menu, wms.CreateMenu, wms.UpdateMenu](client, wms.EndpointParentMenu, opts),
		Item:            newStore[wms.Item, wms.CreateItem, wms.UpdateItem](client, wms.EndpointItem, opts),
		InboundPlanning: newStore[wms.InboundPlanning, wms.CreateInboundPlanning, wms.UpdateInboundPlanning](client, wms.EndpointInboundPlanning, opts),
		User:            newStore[wms.User, wms.CreateUser, wms.UpdateUser](client, wms.EndpointUser, opts),
		Role:            newStore[wms.Role, wms.CreateRole, wms.UpdateRole](client, wms.EndpointRole, opts),
	}
}

func newStore[TData, TCreate, TUpdate any](client *restclient.Client, endpoint string, opts []crud.Option) *crud.Store[TData, TCreate, TUpdate] {
	name := endpoint
	if e, ok := wms.ByEndpoint(endpoint); ok {
		name = e.Name
	}
	svc := restclient.NewResource[TData, TCreate, TUpdate](client, endpoint)
	return crud.New[TData, TCreate, TUpdate](name, svc, opts...)
}
