package router

import (
	"errors"
	"fmt"
	"sort"
)

// Page identifiers of the built-in routes.
const (
	PageDashboard  = "dashboard"
	PageLogin      = "login"
	PageRegister   = "register"
	PageForms      = "forms"
	PageRecipients = "recipients"
	PageTracking   = "tracking"
	PageExtraction = "extraction"
	PageSettings   = "settings"
)

// DefaultPath is the fallback route for unknown paths.
const DefaultPath = "/"

// Route maps a path to a page.
type Route struct {
	Path         string
	Page         string
	Title        string
	RequiresAuth bool
	// Order positions the route in the navigation bar.
	Order int
}

// Table is the static route map, keyed by exact path.
type Table map[string]Route

func DefaultTable() Table {
	return Table{
		"/":           {Path: "/", Page: PageDashboard, Title: "Dashboard", RequiresAuth: true, Order: 1},
		"/login":      {Path: "/login", Page: PageLogin, Title: "Login"},
		"/register":   {Path: "/register", Page: PageRegister, Title: "Register"},
		"/forms":      {Path: "/forms", Page: PageForms, Title: "Forms", RequiresAuth: true, Order: 2},
		"/recipients": {Path: "/recipients", Page: PageRecipients, Title: "Recipients", RequiresAuth: true, Order: 3},
		"/tracking":   {Path: "/tracking", Page: PageTracking, Title: "Tracking", RequiresAuth: true, Order: 4},
		"/extraction": {Path: "/extraction", Page: PageExtraction, Title: "Data Extraction", RequiresAuth: true, Order: 5},
		"/settings":   {Path: "/settings", Page: PageSettings, Title: "Settings", RequiresAuth: true, Order: 6},
	}
}

var errNoLoginRoute = errors.New("route table has no login route")

// Validate rejects tables whose auth redirect could loop: the login and
// register pages must be reachable without a session.
func (t Table) Validate() error {
	var hasLogin bool
	for path, r := range t {
		if r.Path != path {
			return fmt.Errorf("route %q: path field is %q", path, r.Path)
		}
		if r.Page == PageLogin || r.Page == PageRegister {
			if r.RequiresAuth {
				return fmt.Errorf("route %q: %s page must not require auth", path, r.Page)
			}
			if r.Page == PageLogin {
				hasLogin = true
			}
		}
	}
	if !hasLogin {
		return errNoLoginRoute
	}
	return nil
}

// LoginPath returns the path of the login route.
func (t Table) LoginPath() string {
	for path, r := range t {
		if r.Page == PageLogin {
			return path
		}
	}
	return "/login"
}

// Nav lists the routes shown in the navigation bar.
func (t Table) Nav() []Route {
	var out []Route
	for _, r := range t {
		if r.RequiresAuth {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].Path < out[j].Path
	})
	return out
}
