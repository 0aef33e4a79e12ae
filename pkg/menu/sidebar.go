package menu

// Item is one sidebar entry.
type Item struct {
	Name     string `json:"name"`
	Path     string `json:"path,omitempty"`
	Icon     string `json:"icon,omitempty"`
	Active   bool   `json:"active,omitempty"`
	Open     bool   `json:"open,omitempty"`
	SubItems []Item `json:"subItems,omitempty"`
}

// Section is a titled group of sidebar items.
type Section struct {
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

// Sidebar groups the top-level nodes of tree into the main and settings
// sections. A node's submenu lists every routable descendant; the submenu
// holding activePath is marked open and the matching entry active.
// Nodes with neither a path nor routable descendants are skipped.
func Sidebar(tree []Node, activePath string) []Section {
	main := Section{Name: SectionMain, Items: []Item{}}
	settings := Section{Name: SectionSettings, Items: []Item{}}

	for i := range tree {
		n := &tree[i]
		item, ok := sidebarItem(n, activePath)
		if !ok {
			continue
		}
		if n.Section == SectionSettings {
			settings.Items = append(settings.Items, item)
		} else {
			main.Items = append(main.Items, item)
		}
	}
	return []Section{main, settings}
}

func sidebarItem(n *Node, activePath string) (Item, bool) {
	item := Item{
		Name:   displayName(n),
		Path:   n.Path,
		Icon:   n.Icon,
		Active: n.Path != "" && n.Path == activePath,
	}

	Walk(n.Children, func(c *Node) bool {
		if c.Path == "" {
			return true
		}
		sub := Item{
			Name:   displayName(c),
			Path:   c.Path,
			Icon:   c.Icon,
			Active: c.Path == activePath,
		}
		if sub.Active {
			item.Open = true
		}
		item.SubItems = append(item.SubItems, sub)
		return true
	})

	if item.Path == "" && len(item.SubItems) == 0 {
		return Item{}, false
	}
	return item, true
}

func displayName(n *Node) string {
	switch {
	case n.Name != "":
		return n.Name
	case n.Path != "":
		return n.Path
	default:
		return n.ID
	}
}
