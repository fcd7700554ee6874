// Package http provides http transport for the event outbox and live stream
package http

import (
	"context"
	stdhttp "net/http"
	"strconv"
	"time"

	"allocvault/internal/modkit/httpkit"
	perr "allocvault/internal/platform/errors"
	"allocvault/internal/platform/logger"
	"allocvault/internal/services/events/domain"

	"github.com/gorilla/websocket"
)

// StreamConfig tunes the websocket stream
type StreamConfig struct {
	PingEvery    time.Duration
	WriteTimeout time.Duration
}

// Service is what the handlers need
type Service interface {
	domain.ReaderPort
	domain.Subscriber
}

// Register mounts the events endpoints
func Register(r httpkit.Router, s Service, cfg StreamConfig) {
	if cfg.PingEvery <= 0 {
		cfg.PingEvery = 30 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	h := &handlers{
		svc: s,
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// bearer auth already ran; browsers cannot attach it cross origin anyway
			CheckOrigin: func(*stdhttp.Request) bool { return true },
		},
	}
	httpkit.Get(r, "/events", h.page)
	r.Get("/events/stream", h.stream)
}

type handlers struct {
	svc      Service
	cfg      StreamConfig
	upgrader websocket.Upgrader
}

// @Summary Page through the event outbox
// @Tags Events
// @Produce json
// @Param after query int false "Return events with seq greater than this"
// @Param limit query int false "Page size, 1..500"
// @Success 200 {object} domain.Page
// @Router /events [get]
func (h *handlers) page(r *stdhttp.Request) (any, error) {
	in := domain.PageInput{}
	var err error
	if s := r.URL.Query().Get("after"); s != "" {
		if in.After, err = strconv.ParseInt(s, 10, 64); err != nil {
			return nil, perr.WithField(perr.Newf(perr.ErrorCodeValidation, "after must be an integer"), "after")
		}
	}
	if s := r.URL.Query().Get("limit"); s != "" {
		if in.Limit, err = strconv.Atoi(s); err != nil {
			return nil, perr.WithField(perr.Newf(perr.ErrorCodeValidation, "limit must be an integer"), "limit")
		}
	}
	return h.svc.Page(r.Context(), in)
}

// @Summary Live event stream over websocket
// @Tags Events
// @Success 101
// @Router /events/stream [get]
func (h *handlers) stream(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already answered the client
		return
	}
	defer func() { _ = conn.Close() }()

	log := logger.C(r.Context())
	ch, cancel := h.svc.Subscribe()
	defer cancel()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// drain client frames so close and pong are processed
	go func() {
		defer stop()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(h.cfg.PingEvery)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				log.Debug().Err(err).Msg("event stream write failed")
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(h.cfg.WriteTimeout)); err != nil {
				return
			}
		}
	}
}
