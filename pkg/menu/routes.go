package menu

import (
	"fmt"
	"html"
	"net/http"
)

// Route is a resolved (id, path, page) entry ready to be mounted on a router.
type Route struct {
	ID   string       `json:"id"`
	Path string       `json:"path"`
	Page http.Handler `json:"-"`
}

// ChildRoute is a sub-page declared by hand under a parent menu path, such as
// the create form of an entity. It is not part of the menu tree.
type ChildRoute struct {
	Path string
	Page http.Handler
}

// Builder resolves menu trees into routes.
type Builder struct {
	// Pages maps a menu path to its page.
	Pages map[string]http.Handler

	// Children maps a parent menu path to the sub-pages mounted under it.
	Children map[string][]ChildRoute

	// Placeholder is used for menu paths missing from Pages.
	// Defaults to UnderDevelopment.
	Placeholder http.Handler
}

// Build walks tree depth-first and returns one route per node with a path,
// followed by that node's manual children. Output order follows the walk.
// Duplicate paths are kept; the router decides which registration wins.
func (b *Builder) Build(tree []Node) []Route {
	var placeholder http.Handler = UnderDevelopment
	if b.Placeholder != nil {
		placeholder = b.Placeholder
	}

	routes := make([]Route, 0, len(tree))
	Walk(tree, func(n *Node) bool {
		if n.Path == "" {
			return true
		}

		page, ok := b.Pages[n.Path]
		if !ok || page == nil {
			page = placeholder
		}
		id := n.ID
		if id == "" {
			id = n.Path
		}
		routes = append(routes, Route{ID: id, Path: n.Path, Page: page})

		for _, child := range b.Children[n.Path] {
			routes = append(routes, Route{
				ID:   n.Path + "-" + child.Path,
				Path: n.Path + "/" + child.Path,
				Page: child.Page,
			})
		}
		return true
	})
	return routes
}

// PlaceholderPage is a page that only announces that it is not built yet.
type PlaceholderPage struct {
	Title string
}

// ServeHTTP implements http.Handler.
func (p *PlaceholderPage) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, `<div style="text-align:center;margin-top:50px"><h1>%s</h1></div>`, html.EscapeString(p.Title))
}

// PageName implements Named.
func (p *PlaceholderPage) PageName() string {
	return "placeholder"
}

// UnderDevelopment is the default placeholder page.
var UnderDevelopment = &PlaceholderPage{Title: "This page is still under development"}

// Named is implemented by pages that can describe themselves in route
// listings.
type Named interface {
	PageName() string
}

// PageName returns a printable name for a page.
func PageName(h http.Handler) string {
	if h == nil {
		return "<nil>"
	}
	if n, ok := h.(Named); ok {
		return n.PageName()
	}
	return fmt.Sprintf("%T", h)
}

// RouteInfo is the printable form of a Route.
type RouteInfo struct {
	ID   string `json:"id"`
	Path string `json:"path"`
	Page string `json:"page"`
}

// Describe converts routes to their printable form.
func Describe(routes []Route) []RouteInfo {
	infos := make([]RouteInfo, len(routes))
	for i, r := range routes {
		infos[i] = RouteInfo{ID: r.ID, Path: r.Path, Page: PageName(r.Page)}
	}
	return infos
}
