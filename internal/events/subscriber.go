// Package events subscribes to the backend's reservation change feed so a
// listing refreshes when another manager touches a reservation. The feed
// is advisory: losing it degrades to manual refresh, never to an error.
package events

import (
	"context"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const reconnectDelay = 5 * time.Second

// Subscriber maintains a websocket connection to the change feed and
// invokes the handler for every notice.
type Subscriber struct {
	url     string
	handler func()
}

// NewSubscriber prepares a subscriber for the backend at baseURL. The
// token travels in the query string since websocket dials cannot carry
// headers from a browser, and the simulator mirrors that.
func NewSubscriber(baseURL, token string, handler func()) *Subscriber {
	return &Subscriber{
		url:     feedURL(baseURL, token),
		handler: handler,
	}
}

// Run dials the feed and dispatches notices until the context is
// cancelled, reconnecting after failures. Meant to run on its own
// goroutine.
func (s *Subscriber) Run(ctx context.Context) {
	for {
		if err := s.listen(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn().Err(err).Msg("Change feed disconnected, retrying")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (s *Subscriber) listen(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	log.Debug().Msg("Change feed connected")
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return err
		}
		// Any notice means the listing may be stale; the payload itself
		// carries nothing the re-fetch will not return fresher.
		s.handler()
	}
}

func feedURL(baseURL, token string) string {
	u := strings.TrimRight(baseURL, "/")
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + "/ws/reservations?token=" + token
}
