package orchestrator

import "maps-directions/entities"

// MultiRenderer draws on several surfaces at once. Loading calls reach only
// the members that implement LoadingIndicator.
type MultiRenderer []Renderer

func (m MultiRenderer) AddAnnotation(a entities.Annotation) {
	for _, r := range m {
		r.AddAnnotation(a)
	}
}

func (m MultiRenderer) RemoveAllAnnotations() {
	for _, r := range m {
		r.RemoveAllAnnotations()
	}
}

func (m MultiRenderer) SetOverlay(path []entities.Coordinates) {
	for _, r := range m {
		r.SetOverlay(path)
	}
}

func (m MultiRenderer) ClearOverlay() {
	for _, r := range m {
		r.ClearOverlay()
	}
}

func (m MultiRenderer) FitToAnnotations() {
	for _, r := range m {
		r.FitToAnnotations()
	}
}

func (m MultiRenderer) ShowLoading(label string) {
	for _, r := range m {
		if li, ok := r.(LoadingIndicator); ok {
			li.ShowLoading(label)
		}
	}
}

func (m MultiRenderer) HideLoading() {
	for _, r := range m {
		if li, ok := r.(LoadingIndicator); ok {
			li.HideLoading()
		}
	}
}

type MultiStepSink []StepSink

func (m MultiStepSink) ShowSteps(route *entities.Route, steps []entities.Step) {
	for _, s := range m {
		s.ShowSteps(route, steps)
	}
}
