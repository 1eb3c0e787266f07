package ui

import (
	"fmt"
	"strings"

	"github.com/desertthunder/soundscript/internal/shared"
)

const (
	RouteHome       = "home"
	RouteTranscript = "transcript_summary"
)

// Route is a navigation destination.
type Route struct {
	Name      string
	ContentID string
}

func HomeRoute() Route { return Route{Name: RouteHome} }

func TranscriptRoute(contentID string) Route {
	return Route{Name: RouteTranscript, ContentID: contentID}
}

// String renders the route path, e.g. transcript_summary/abc.
func (r Route) String() string {
	if r.Name == RouteTranscript {
		return RouteTranscript + "/" + r.ContentID
	}
	return r.Name
}

// ParseRoute is the inverse of [Route.String].
func ParseRoute(path string) (Route, error) {
	name, id, _ := strings.Cut(strings.Trim(path, "/"), "/")
	switch {
	case name == RouteHome && id == "":
		return HomeRoute(), nil
	case name == RouteTranscript && id != "":
		return TranscriptRoute(id), nil
	}
	return Route{}, fmt.Errorf("%w: unknown route %q", shared.ErrInvalidArgument, path)
}

// navigator is a back stack rooted at home.
type navigator struct {
	stack []Route
}

func newNavigator() *navigator {
	return &navigator{stack: []Route{HomeRoute()}}
}

func (n *navigator) Navigate(r Route) {
	n.stack = append(n.stack, r)
}

// Back pops the current route. The root is never popped.
func (n *navigator) Back() bool {
	if len(n.stack) <= 1 {
		return false
	}
	n.stack = n.stack[:len(n.stack)-1]
	return true
}

func (n *navigator) Current() Route { return n.stack[len(n.stack)-1] }

func (n *navigator) Depth() int { return len(n.stack) }
