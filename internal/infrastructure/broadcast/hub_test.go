package broadcast

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"sentinlk/internal/domain"
)

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitForSubscribers(t *testing.T, hub *Hub, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Subscribers() != want {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d subscribers, got %d", want, hub.Subscribers())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHubPublishReachesSubscriber(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	server := httptest.NewServer(hub)
	defer server.Close()

	conn := dial(t, server)
	waitForSubscribers(t, hub, 1)

	signal := domain.Signal{
		Link:      "https://example.org/port-strike",
		Headline:  "[Ada Derana] Port workers announce strike",
		RiskScore: 75,
		Priority:  domain.PriorityHigh,
	}

	if err := hub.Publish(context.Background(), signal); err != nil {
		t.Fatalf("Publish error: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var received map[string]any
	if err := conn.ReadJSON(&received); err != nil {
		t.Fatalf("read: %v", err)
	}

	if received["link"] != signal.Link {
		t.Fatalf("unexpected link: %v", received["link"])
	}
	if received["risk_score"] != float64(75) {
		t.Fatalf("unexpected risk score: %v", received["risk_score"])
	}
}

func TestHubPrunesDeadSubscribers(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	server := httptest.NewServer(hub)
	defer server.Close()

	conn := dial(t, server)
	waitForSubscribers(t, hub, 1)

	_ = conn.Close()
	waitForSubscribers(t, hub, 0)

	// Publishing with no subscribers is a no-op, never an error.
	if err := hub.Publish(context.Background(), domain.Signal{Link: "x"}); err != nil {
		t.Fatalf("Publish error: %v", err)
	}
}

func TestHubPublishSurvivesMixedSubscribers(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	server := httptest.NewServer(hub)
	defer server.Close()

	healthy := dial(t, server)
	dying := dial(t, server)
	waitForSubscribers(t, hub, 2)

	_ = dying.Close()
	waitForSubscribers(t, hub, 1)

	if err := hub.Publish(context.Background(), domain.Signal{Link: "y"}); err != nil {
		t.Fatalf("Publish error: %v", err)
	}

	_ = healthy.SetReadDeadline(time.Now().Add(2 * time.Second))
	var received map[string]any
	if err := healthy.ReadJSON(&received); err != nil {
		t.Fatalf("healthy subscriber must still receive: %v", err)
	}
}
