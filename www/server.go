package www

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/angas/powerprice-go/config"
	"github.com/angas/powerprice-go/database"
	"github.com/angas/powerprice-go/prices"
)

type Server struct {
	logger  *slog.Logger
	cnfg    *config.AppConfig
	db      *database.Database
	fetcher *prices.Fetcher
	hub     *Hub
	mux     *http.ServeMux
	version string
}

func StartServer(db *database.Database, fetcher *prices.Fetcher, cnfg *config.AppConfig, version string) *Server {
	logger := slog.Default().With("module", "www")

	s := &Server{
		logger:  logger,
		cnfg:    cnfg,
		db:      db,
		fetcher: fetcher,
		hub:     NewHub(logger),
		mux:     http.NewServeMux(),
		version: version,
	}

	go s.hub.Run()

	logReqMW := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s.logger.Debug("http request",
				slog.String("method", r.Method),
				slog.String("url", r.URL.String()),
				slog.String("remoteAddr", r.RemoteAddr))
			next.ServeHTTP(w, r)
		})
	}

	registry := fetcher.Registry()

	s.mux.HandleFunc("/", s.infoHandler())
	s.mux.Handle("/health", logReqMW(NewHealthHandler(registry)))

	s.mux.Handle("/zones", logReqMW(s.withAuth(NewZonesHandler(
		logger.With(slog.String("handler", "zones")),
		registry))))

	s.mux.Handle("GET /zones/{zone}/prices", logReqMW(s.withAuth(NewZonePricesHandler(
		logger.With(slog.String("handler", "zone_prices")),
		cnfg,
		fetcher))))

	s.mux.Handle("/prices", logReqMW(s.withAuth(NewPricesHandler(
		logger.With(slog.String("handler", "prices")),
		cnfg,
		fetcher))))

	s.mux.Handle("/prices/current", logReqMW(s.withAuth(NewCurrentPricesHandler(
		logger.With(slog.String("handler", "current_prices")),
		cnfg,
		fetcher))))

	s.mux.Handle("/log", logReqMW(s.withAuth(NewLogHandler(
		logger.With(slog.String("handler", "log")),
		db))))

	s.mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		name := r.Header.Get("User-Agent")
		client, err := NewClient(s.hub, w, r, name)
		if err != nil {
			s.logger.Error("new websocket client failed", slog.Any("error", err))
			return
		}
		s.hub.Register <- client
		go client.WritePump()
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) infoHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		writeJson(w, http.StatusOK, map[string]any{
			"name":    "powerprice",
			"version": s.version,
			"status":  "running",
			"endpoints": map[string]string{
				"zones":          "/zones",
				"prices":         "/prices",
				"zone_prices":    "/zones/{zone}/prices",
				"current_prices": "/prices/current",
				"health":         "/health",
				"log":            "/log",
				"websocket":      "/ws",
			},
		})
	}
}

// withAuth guards a handler with the configured bearer token. With no
// token configured the handler is open.
func (s *Server) withAuth(next http.Handler) http.Handler {
	token := s.cnfg.Api.AuthToken
	if token == nil || *token == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+*token {
			writeJsonError(w, http.StatusUnauthorized, "missing or invalid bearer token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) Run(ctx context.Context) {
	s.logger.Info("starting server...", "port", s.cnfg.Api.Port)
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.cnfg.Api.Address, s.cnfg.Api.Port),
		Handler: s,
	}

	srvErrors := make(chan error, 1)

	go func() {
		srvErrors <- srv.ListenAndServe()
	}()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	// Keeping state to avoid spamming logs
	broadcastErrorState := false

	for {
		select {
		case err := <-srvErrors:
			if err != nil {
				s.logger.Error("server error", slog.Any("error", err))
			}

		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("server shutdown failed", slog.Any("error", err))
			}
			return

		case <-ticker.C:
			msg, err := s.currentPricesMessage(ctx)
			if err != nil {
				if !broadcastErrorState {
					broadcastErrorState = true
					s.logger.Warn("failed to build price broadcast", slog.Any("error", err))
				}
				continue
			}
			broadcastErrorState = false
			s.hub.Broadcast <- msg
		}
	}
}

// currentPricesMessage snapshots the latest price per default zone. The
// fetch is served from cache between refreshes so the ticker stays cheap.
func (s *Server) currentPricesMessage(ctx context.Context) ([]byte, error) {
	zoneIds := s.cnfg.Service.DefaultZones
	if len(zoneIds) == 0 {
		return nil, fmt.Errorf("no default zones configured")
	}

	now := time.Now()
	results, err := s.fetcher.Fetch(ctx, zoneIds, now.AddDate(0, 0, -1), now, false)
	if err != nil {
		return nil, err
	}

	latest := make(map[string]currentPrice, len(results))
	for id, res := range results {
		if res.Err != nil {
			continue
		}
		if pt := res.Series.Latest(); pt.IsValid() {
			p := pt.Value()
			latest[id] = currentPrice{
				Zone:      id,
				ZoneName:  res.Series.ZoneName,
				Timestamp: p.Timestamp,
				Price:     p.Price,
				Hour:      p.Hour,
				Date:      p.Date,
			}
		}
	}

	return json.Marshal(map[string]any{
		"timestamp": now,
		"prices":    latest,
	})
}
