// Package common provides the page shell and helpers shared by UI features.
package common

// NavItem is one entry of the top navigation.
type NavItem struct {
	Label  string
	Path   string
	Active bool
}

// Page is the data every full page is rendered with. Data holds the
// feature's own view model and is what its "content" template sees as
// .Data.
type Page struct {
	Title       string
	CurrentPath string
	Nav         []NavItem
	Data        any
}

// NewPage builds the page shell data for path.
func NewPage(title, path string, data any) Page {
	nav := []NavItem{
		{Label: "Prédiction", Path: "/"},
		{Label: "Historique", Path: "/history"},
	}
	for i := range nav {
		nav[i].Active = nav[i].Path == path
	}
	return Page{Title: title, CurrentPath: path, Nav: nav, Data: data}
}
