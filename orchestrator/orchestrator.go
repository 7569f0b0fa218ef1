// Package orchestrator drives the directions screen: it keeps the start and
// end selections, requests a route whenever either changes, and pushes the
// result to the map renderer and the step list.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"maps-directions/entities"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DirectionsService computes candidate routes for a pair of places.
type DirectionsService interface {
	Directions(ctx context.Context, start, end entities.PlaceSelection) ([]entities.Route, error)
}

// Renderer is the map surface.
type Renderer interface {
	AddAnnotation(a entities.Annotation)
	RemoveAllAnnotations()
	SetOverlay(path []entities.Coordinates)
	ClearOverlay()
	FitToAnnotations()
}

// LoadingIndicator is implemented by renderers that can show progress.
type LoadingIndicator interface {
	ShowLoading(label string)
	HideLoading()
}

// StepSink displays the instruction list of a route.
type StepSink interface {
	ShowSteps(route *entities.Route, steps []entities.Step)
}

type FailureReporter interface {
	ReportFailure(ctx context.Context, err error, start, end entities.PlaceSelection)
}

type StalePolicy int

const (
	// DiscardStale cancels the previous request and ignores any response
	// that does not belong to the latest one.
	DiscardStale StalePolicy = iota
	// LastResolvedWins applies every response in the order it arrives.
	LastResolvedWins
)

func ParseStalePolicy(s string) (StalePolicy, error) {
	switch strings.ToLower(s) {
	case "", "discard", "discard_stale":
		return DiscardStale, nil
	case "last", "last_resolved_wins":
		return LastResolvedWins, nil
	default:
		return 0, fmt.Errorf("unknown stale policy %q", s)
	}
}

// Resolution describes how one directions request ended.
type Resolution struct {
	RequestID  uuid.UUID
	Generation uint64
	Start      entities.PlaceSelection
	End        entities.PlaceSelection
	Outcome    Outcome
	Route      *entities.Route
	Err        error
}

type Option func(*Orchestrator)

func WithStalePolicy(p StalePolicy) Option {
	return func(o *Orchestrator) { o.policy = p }
}

// WithRequestTimeout bounds each directions request. Zero leaves it to the
// service.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = d }
}

func WithStepSink(s StepSink) Option {
	return func(o *Orchestrator) { o.steps = s }
}

func WithFailureReporter(r FailureReporter) Option {
	return func(o *Orchestrator) { o.reporter = r }
}

// WithResolvedHook is called after every request completes, stale ones
// included, outside the orchestrator's lock.
func WithResolvedHook(fn func(Resolution)) Option {
	return func(o *Orchestrator) { o.onResolved = fn }
}

const loadingLabel = "Routing..."

type Orchestrator struct {
	directions DirectionsService
	renderer   Renderer
	steps      StepSink
	reporter   FailureReporter
	onResolved func(Resolution)
	logger     *zap.Logger
	policy     StalePolicy
	timeout    time.Duration

	mu       sync.Mutex
	state    State
	cancel   context.CancelFunc
	pending  int
	closed   bool
	inflight sync.WaitGroup
}

func New(directions DirectionsService, renderer Renderer, logger *zap.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		directions: directions,
		renderer:   renderer,
		steps:      nopSink{},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// SetStart stores the start selection and refreshes the map.
func (o *Orchestrator) SetStart(ctx context.Context, sel entities.PlaceSelection) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = o.state.WithStart(sel)
	o.logger.Info("start selected", zap.String("name", sel.Name), zap.Stringer("location", sel.Location))
	o.refreshLocked(ctx)
}

// SetEnd stores the end selection and refreshes the map.
func (o *Orchestrator) SetEnd(ctx context.Context, sel entities.PlaceSelection) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = o.state.WithEnd(sel)
	o.logger.Info("end selected", zap.String("name", sel.Name), zap.Stringer("location", sel.Location))
	o.refreshLocked(ctx)
}

// Recompute redraws the pins and, when both selections are set, issues one
// directions request. It returns without waiting for the response.
func (o *Orchestrator) Recompute(ctx context.Context) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.refreshLocked(ctx)
}

func (o *Orchestrator) refreshLocked(ctx context.Context) {
	o.renderer.RemoveAllAnnotations()
	o.renderer.ClearOverlay()
	for _, a := range o.state.Annotations() {
		o.renderer.AddAnnotation(a)
	}
	o.requestLocked(ctx)
	o.renderer.FitToAnnotations()
}

func (o *Orchestrator) requestLocked(ctx context.Context) {
	if o.closed || !o.state.Complete() {
		return
	}
	o.state = o.state.NextRequest()
	gen := o.state.Generation
	start, end := *o.state.Start, *o.state.End
	id := uuid.New()

	if o.policy == DiscardStale && o.cancel != nil {
		o.cancel()
	}
	reqCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	if o.timeout > 0 {
		reqCtx, cancel = withTimeout(reqCtx, cancel, o.timeout)
	}
	o.cancel = cancel

	if li, ok := o.renderer.(LoadingIndicator); ok {
		li.ShowLoading(loadingLabel)
	}
	o.pending++
	o.inflight.Add(1)

	o.logger.Debug("requesting directions",
		zap.String("request_id", id.String()),
		zap.Uint64("generation", gen),
		zap.Stringer("start", start.Location),
		zap.Stringer("end", end.Location),
	)

	go func() {
		defer o.inflight.Done()
		defer cancel()
		routes, err := o.directions.Directions(reqCtx, start, end)
		o.resolve(context.WithoutCancel(reqCtx), Resolution{
			RequestID:  id,
			Generation: gen,
			Start:      start,
			End:        end,
			Err:        err,
		}, routes)
	}()
}

func withTimeout(ctx context.Context, cancel context.CancelFunc, d time.Duration) (context.Context, context.CancelFunc) {
	tctx, tcancel := context.WithTimeout(ctx, d)
	return tctx, func() {
		tcancel()
		cancel()
	}
}

func (o *Orchestrator) resolve(ctx context.Context, res Resolution, routes []entities.Route) {
	o.mu.Lock()
	o.pending--
	next, outcome := o.state.Resolve(res.Generation, routes, res.Err, o.policy)
	if o.closed {
		outcome = OutcomeStale
	}
	if outcome != OutcomeStale {
		o.state = next
	}
	res.Outcome = outcome
	res.Route = o.state.CurrentRoute

	log := o.logger.With(
		zap.String("request_id", res.RequestID.String()),
		zap.Uint64("generation", res.Generation),
	)
	switch outcome {
	case OutcomeRouted:
		o.renderer.SetOverlay(next.CurrentRoute.Path)
		log.Info("route drawn",
			zap.Int("candidates", len(routes)),
			zap.Int("steps", len(next.CurrentRoute.Steps)),
			zap.Int("distance_meters", next.CurrentRoute.DistanceMeters),
		)
	case OutcomeNoRoute:
		log.Info("directions returned no routes")
	case OutcomeFailed:
		log.Error("failed to find routing info", zap.Error(res.Err))
	case OutcomeStale:
		log.Debug("discarding stale directions response", zap.Error(res.Err))
	}
	if outcome != OutcomeStale && (o.policy == DiscardStale || o.pending == 0) {
		if li, ok := o.renderer.(LoadingIndicator); ok {
			li.HideLoading()
		}
	}
	o.mu.Unlock()

	if outcome == OutcomeFailed && o.reporter != nil {
		o.reporter.ReportFailure(ctx, res.Err, res.Start, res.End)
	}
	if o.onResolved != nil {
		o.onResolved(res)
	}
}

// ViewRouteSteps hands the current route's non-empty steps to the step sink
// and returns them. With no route the list is empty.
func (o *Orchestrator) ViewRouteSteps(ctx context.Context) (*entities.Route, []entities.Step) {
	o.mu.Lock()
	route := o.state.CurrentRoute
	o.mu.Unlock()

	steps := VisibleSteps(route)
	o.steps.ShowSteps(route, steps)
	return route, steps
}

// Snapshot returns the current state. The pointed-to values are never
// modified after being stored, so sharing them is safe.
func (o *Orchestrator) Snapshot() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Pending is the number of directions requests still in flight.
func (o *Orchestrator) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.pending
}

// Wait blocks until every in-flight request has resolved.
func (o *Orchestrator) Wait() {
	o.inflight.Wait()
}

// Close cancels the in-flight request and waits for all of them.
// Responses arriving after Close are discarded.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	o.closed = true
	if o.cancel != nil {
		o.cancel()
	}
	o.mu.Unlock()
	o.inflight.Wait()
}

type nopSink struct{}

func (nopSink) ShowSteps(*entities.Route, []entities.Step) {}
