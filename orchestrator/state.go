package orchestrator

import "maps-directions/entities"

// State is everything the directions screen knows. Transitions return a new
// value and never mutate the receiver.
type State struct {
	Start        *entities.PlaceSelection `json:"start,omitempty"`
	End          *entities.PlaceSelection `json:"end,omitempty"`
	CurrentRoute *entities.Route          `json:"current_route,omitempty"`
	// Generation identifies the latest directions request.
	Generation uint64 `json:"generation"`
}

func (s State) WithStart(sel entities.PlaceSelection) State {
	s.Start = &sel
	return s
}

func (s State) WithEnd(sel entities.PlaceSelection) State {
	s.End = &sel
	return s
}

// Complete reports whether a route can be requested.
func (s State) Complete() bool {
	return s.Start != nil && s.End != nil
}

// Annotations lists the pins for whatever selections are set, start first.
func (s State) Annotations() []entities.Annotation {
	var out []entities.Annotation
	if s.Start != nil {
		out = append(out, entities.Annotation{Coordinates: s.Start.Location, Label: s.Start.Name, Role: entities.RoleStart})
	}
	if s.End != nil {
		out = append(out, entities.Annotation{Coordinates: s.End.Location, Label: s.End.Name, Role: entities.RoleEnd})
	}
	return out
}

// NextRequest bumps the generation for a new directions request.
func (s State) NextRequest() State {
	s.Generation++
	return s
}

type Outcome int

const (
	// OutcomeRouted: a candidate was selected and should be drawn.
	OutcomeRouted Outcome = iota
	// OutcomeNoRoute: the service answered with zero candidates.
	OutcomeNoRoute
	OutcomeFailed
	// OutcomeStale: the response belongs to a superseded request.
	OutcomeStale
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRouted:
		return "routed"
	case OutcomeNoRoute:
		return "no_route"
	case OutcomeFailed:
		return "failed"
	case OutcomeStale:
		return "stale"
	default:
		return "unknown"
	}
}

// Resolve applies the response of request gen. The first candidate wins.
// A failure leaves CurrentRoute untouched; zero candidates clear it.
func (s State) Resolve(gen uint64, routes []entities.Route, err error, policy StalePolicy) (State, Outcome) {
	if policy == DiscardStale && gen != s.Generation {
		return s, OutcomeStale
	}
	if err != nil {
		return s, OutcomeFailed
	}
	if len(routes) == 0 {
		s.CurrentRoute = nil
		return s, OutcomeNoRoute
	}
	first := routes[0]
	s.CurrentRoute = &first
	return s, OutcomeRouted
}

// VisibleSteps drops steps without instruction text, keeping order.
func VisibleSteps(route *entities.Route) []entities.Step {
	out := []entities.Step{}
	if route == nil {
		return out
	}
	for _, step := range route.Steps {
		if step.Instructions != "" {
			out = append(out, step)
		}
	}
	return out
}
