package www

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/icodeforyou/mipi-go/config"
	"github.com/icodeforyou/mipi-go/database"
	"github.com/icodeforyou/mipi-go/task"
)

type Server struct {
	logger *slog.Logger
	config config.AppConfigApi
	db     *database.Database
	hub    *Hub
	mux    *http.ServeMux
}

//go:embed static
var embeddedStaticDir embed.FS

func StartServer(db *database.Database, tasks *task.Tasks, config config.AppConfigApi) *Server {
	logger := slog.Default().With("module", "www")

	s := &Server{
		logger: logger,
		config: config,
		db:     db,
		hub:    NewHub(logger),
		mux:    http.NewServeMux(),
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

	s.mux.Handle("/", staticFilesHandler())

	s.mux.Handle("/reports", logReqMW(NewReportsHandler(
		logger.With(slog.String("handler", "reports")),
		s.db)))

	s.mux.Handle("/values", logReqMW(NewValuesHandler(
		logger.With(slog.String("handler", "values")),
		s.db)))

	s.mux.Handle("/chart", logReqMW(NewChartHandler(
		logger.With(slog.String("handler", "chart")),
		s.db)))

	s.mux.Handle("/sync", logReqMW(NewSyncHandler(
		logger.With(slog.String("handler", "sync")),
		tasks.ReportSyncTask)))

	s.mux.Handle("/log", logReqMW(NewLogHandler(
		logger.With(slog.String("handler", "log")),
		s.db)))

	s.mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		name := r.Header.Get("User-Agent")
		client, err := NewClient(s.hub, w, r, name)
		if err != nil {
			s.logger.Error("new websocket client failed", slog.Any("error", err))
			return
		}
		s.hub.Register <- client
		go client.WritePump()
		go client.ReadPump()
	})

	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) Hub() *Hub {
	return s.hub
}

func (s *Server) Run(ctx context.Context) {
	s.logger.Info("starting server...", "port", s.config.Port)
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.config.Address, s.config.Port),
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErrors := make(chan error, 1)

	go func() {
		srvErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-srvErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server error", slog.Any("error", err))
		}

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("server shutdown failed", slog.Any("error", err))
		}
	}
}

func staticFilesHandler() http.Handler {
	fsys, err := fs.Sub(embeddedStaticDir, "static")
	if err != nil {
		log.Panic(err)
	}
	return http.FileServer(http.FS(fsys))
}
