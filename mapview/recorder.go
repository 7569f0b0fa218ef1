package mapview

import (
	"sync"

	"maps-directions/entities"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// fitPadding leaves a margin around the annotations when fitting.
const fitPadding = 1.2

// MapState is what a map surface currently shows.
type MapState struct {
	Annotations  []entities.Annotation  `json:"annotations"`
	Overlay      []entities.Coordinates `json:"overlay,omitempty"`
	Viewport     Region                 `json:"viewport"`
	Style        Style                  `json:"style"`
	Loading      bool                   `json:"loading"`
	LoadingLabel string                 `json:"loading_label,omitempty"`
	Steps        []entities.Step        `json:"steps,omitempty"`
}

// Recorder is an in-memory map surface. It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	region Region
	state  MapState
}

func NewRecorder(style Style, region Region) *Recorder {
	return &Recorder{
		region: region,
		state:  MapState{Viewport: region, Style: style},
	}
}

func (r *Recorder) AddAnnotation(a entities.Annotation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Annotations = append(r.state.Annotations, a)
}

func (r *Recorder) RemoveAllAnnotations() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Annotations = nil
}

func (r *Recorder) SetOverlay(path []entities.Coordinates) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Overlay = append([]entities.Coordinates(nil), path...)
}

func (r *Recorder) ClearOverlay() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Overlay = nil
}

func (r *Recorder) FitToAnnotations() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Viewport = Fit(r.state.Annotations, r.region)
}

func (r *Recorder) ShowLoading(label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Loading = true
	r.state.LoadingLabel = label
}

func (r *Recorder) HideLoading() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Loading = false
	r.state.LoadingLabel = ""
}

func (r *Recorder) ShowSteps(_ *entities.Route, steps []entities.Step) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Steps = append([]entities.Step(nil), steps...)
}

// Snapshot returns a copy of the current surface.
func (r *Recorder) Snapshot() MapState {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.state
	s.Annotations = append([]entities.Annotation(nil), s.Annotations...)
	s.Overlay = append([]entities.Coordinates(nil), s.Overlay...)
	s.Steps = append([]entities.Step(nil), s.Steps...)
	return s
}

// GeoJSON renders the annotations as points and the overlay as a styled
// line string.
func (r *Recorder) GeoJSON() ([]byte, error) {
	return ToGeoJSON(r.Snapshot()).MarshalJSON()
}

func ToGeoJSON(s MapState) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, a := range s.Annotations {
		f := geojson.NewFeature(orb.Point{a.Coordinates.Lng, a.Coordinates.Lat})
		f.Properties["label"] = a.Label
		f.Properties["role"] = string(a.Role)
		fc.Append(f)
	}
	if len(s.Overlay) > 0 {
		line := make(orb.LineString, len(s.Overlay))
		for i, c := range s.Overlay {
			line[i] = orb.Point{c.Lng, c.Lat}
		}
		f := geojson.NewFeature(line)
		f.Properties["kind"] = "route"
		f.Properties["stroke"] = s.Style.StrokeColor
		f.Properties["stroke-width"] = s.Style.LineWidth
		fc.Append(f)
	}
	return fc
}

// Fit returns the region showing every annotation. With no annotations it
// returns fallback. An axis with no extent takes fallback's span.
func Fit(annotations []entities.Annotation, fallback Region) Region {
	if len(annotations) == 0 {
		return fallback
	}
	mp := make(orb.MultiPoint, len(annotations))
	for i, a := range annotations {
		mp[i] = orb.Point{a.Coordinates.Lng, a.Coordinates.Lat}
	}
	b := mp.Bound()
	center := b.Center()
	region := Region{
		Center:  entities.Coordinates{Lat: center.Lat(), Lng: center.Lon()},
		LatSpan: (b.Top() - b.Bottom()) * fitPadding,
		LngSpan: (b.Right() - b.Left()) * fitPadding,
	}
	if region.LatSpan == 0 {
		region.LatSpan = fallback.LatSpan
	}
	if region.LngSpan == 0 {
		region.LngSpan = fallback.LngSpan
	}
	return region
}
