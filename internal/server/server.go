package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/tartampluch/go-daytime/internal/config"
	"github.com/tartampluch/go-daytime/internal/day"
	"github.com/tartampluch/go-daytime/internal/engine"
)

// cacheItem stores the rendered calendar and its metadata for HTTP caching.
type cacheItem struct {
	data         []byte
	etag         string
	lastModified string // RFC1123 format required by HTTP headers
}

// GreetingServer serves the generated ICS feed and the greeting entries via HTTP.
type GreetingServer struct {
	// Both caches use atomic.Pointer for lock-free reads: they are read on every
	// request and replaced only when the feed is regenerated.
	cache   atomic.Pointer[cacheItem]
	entries atomic.Pointer[[]engine.GreetingEntry]

	Port      string
	RateLimit int // Requests per IP per config.RateLimitWindow.
}

// NewGreetingServer creates a new instance of the server.
func NewGreetingServer(port string) *GreetingServer {
	return &GreetingServer{
		Port:      port,
		RateLimit: config.DefaultRateLimit,
	}
}

// Handler builds the router serving all routes.
func (s *GreetingServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if s.RateLimit > 0 {
		r.Use(httprate.Limit(s.RateLimit, config.RateLimitWindow, httprate.WithKeyFuncs(httprate.KeyByIP)))
	}

	r.MethodNotAllowed(handleMethodNotAllowed)

	for _, route := range []string{config.RouteRoot, config.RouteCalendar} {
		r.Get(route, s.handleCalendarRequest)
		r.Head(route, s.handleCalendarRequest)
	}
	r.Get(config.RouteDays, s.handleDays)
	r.Get(config.RouteDay, s.handleDay)

	return r
}

// Start initializes the HTTP server and blocks until the context is cancelled.
func (s *GreetingServer) Start(ctx context.Context) error {
	if err := config.ValidatePort(s.Port); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         config.LocalhostBindAddr + config.AddrSeparator + s.Port,
		Handler:      s.Handler(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyPort, s.Port,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// Update atomically replaces the served calendar.
func (s *GreetingServer) Update(data []byte) {
	hash := sha256.Sum256(data)
	etag := fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))

	item := &cacheItem{
		data:         data,
		etag:         etag,
		lastModified: time.Now().UTC().Format(http.TimeFormat),
	}
	s.cache.Store(item)

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, etag,
	)
}

// UpdateEntries atomically replaces the entries served on /days.
func (s *GreetingServer) UpdateEntries(entries []engine.GreetingEntry) {
	cp := append([]engine.GreetingEntry(nil), entries...)
	s.entries.Store(&cp)

	slog.Debug(config.MsgEntriesUpdate,
		config.LogKeyComponent, config.CompServer,
		config.LogKeyCount, len(cp),
	)
}

func handleMethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set(config.HeaderAllow, config.AllowedMethods)
	http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
}

func writeInitializing(w http.ResponseWriter) {
	w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
	http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
}

// handleCalendarRequest serves the ICS content with HTTP caching support.
func (s *GreetingServer) handleCalendarRequest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		handleMethodNotAllowed(w, r)
		return
	}

	item := s.cache.Load()
	if item == nil {
		writeInitializing(w)
		return
	}

	w.Header().Set(config.HeaderContentType, config.MimeTextCalendar)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderETag, item.etag)
	w.Header().Set(config.HeaderLastModified, item.lastModified)

	if match := r.Header.Get(config.HeaderIfNoneMatch); match == item.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if since := r.Header.Get(config.HeaderIfModifiedSince); since != "" {
		if clientTime, err := time.Parse(http.TimeFormat, since); err == nil {
			if serverTime, err := time.Parse(http.TimeFormat, item.lastModified); err == nil {
				if !serverTime.After(clientTime) {
					w.WriteHeader(http.StatusNotModified)
					return
				}
			}
		}
	}

	if r.Method == http.MethodGet {
		if _, err := io.Copy(w, bytes.NewReader(item.data)); err != nil {
			slog.Error(config.ErrWriteResp,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyError, err,
			)
		}
	}
}

// handleDays serves every entry as a JSON array.
func (s *GreetingServer) handleDays(w http.ResponseWriter, _ *http.Request) {
	entries := s.entries.Load()
	if entries == nil {
		writeInitializing(w)
		return
	}
	writeJSON(w, *entries)
}

// handleDay serves a single entry selected by period name.
func (s *GreetingServer) handleDay(w http.ResponseWriter, r *http.Request) {
	d, err := day.Parse(chi.URLParam(r, config.RouteParamDay))
	if err != nil {
		http.Error(w, config.HTTPMsgNotFound, http.StatusNotFound)
		return
	}

	entries := s.entries.Load()
	if entries == nil {
		writeInitializing(w)
		return
	}

	for _, e := range *entries {
		if e.Day == d {
			slog.Debug(config.MsgDayServed,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyDay, d.String(),
			)
			writeJSON(w, e)
			return
		}
	}
	http.Error(w, config.HTTPMsgNotFound, http.StatusNotFound)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error(config.ErrWriteResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}
}
