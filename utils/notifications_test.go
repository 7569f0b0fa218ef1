package utils

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"maps-directions/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type posted struct {
	path string
	body string
}

func ntfyServer(t *testing.T, status int) (*httptest.Server, func() []posted) {
	t.Helper()
	var (
		mu  sync.Mutex
		got []posted
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		got = append(got, posted{path: r.URL.Path, body: string(b)})
		mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []posted {
		mu.Lock()
		defer mu.Unlock()
		return append([]posted(nil), got...)
	}
}

func TestReportFailure_PostsWithoutErrorLog(t *testing.T) {
	srv, got := ntfyServer(t, http.StatusOK)
	core, logs := observer.New(zap.DebugLevel)
	n := NewNotifier(&Config{NtfyBaseURL: srv.URL + "/", NtfyErrorTopic: "route-errors"}, zap.New(core))

	start := entities.PlaceSelection{Name: "A", Location: entities.Coordinates{Lat: 1, Lng: 2}}
	end := entities.PlaceSelection{Name: "B", Location: entities.Coordinates{Lat: 3, Lng: 4}}
	n.ReportFailure(context.Background(), errors.New("no route found"), start, end)

	assert.Zero(t, logs.FilterLevelExact(zap.ErrorLevel).Len())
	assert.Equal(t, 1, logs.FilterMessage("publishing route failure").Len())

	posts := got()
	require.Len(t, posts, 1)
	assert.Equal(t, "/route-errors", posts[0].path)
	assert.True(t, strings.HasPrefix(posts[0].body, "Error occurred: no route found | Context: Route 1.000000,2.000000 -> 3.000000,4.000000"))
	assert.Contains(t, posts[0].body, "\nTime: ")
}

func TestNotifier_NoTopicOnlyLogs(t *testing.T) {
	srv, got := ntfyServer(t, http.StatusOK)
	core, logs := observer.New(zap.InfoLevel)
	n := NewNotifier(&Config{NtfyBaseURL: srv.URL}, zap.New(core))

	n.Info(context.Background(), "Route request processed", "Route Handler")

	assert.Empty(t, got())
	assert.Equal(t, 1, logs.FilterMessage("Route request processed").Len())
}

func TestSendNotification_BadStatus(t *testing.T) {
	srv, _ := ntfyServer(t, http.StatusTooManyRequests)
	n := NewNotifier(&Config{NtfyBaseURL: srv.URL, NtfyInfoTopic: "route-info"}, zap.NewNop())

	err := n.SendNotification(context.Background(), n.FormatInfoNotification("hello", "test"))
	assert.ErrorContains(t, err, "429")
}
