package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"tabsync/internal/config"
	"tabsync/internal/constants"
	"tabsync/internal/protocol"
	"tabsync/internal/security"
	"tabsync/internal/session"
)

type Server struct {
	Config      config.Config
	Store       session.StoreInterface
	Registry    *session.Registry
	Validator   *protocol.Validator
	ConnLimiter *security.ConnectionLimiter
}

func NewServer(cfg config.Config) (*Server, error) {
	store, err := session.NewStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session store: %w", err)
	}

	s := &Server{
		Config:   cfg,
		Store:    store,
		Registry: session.NewRegistry(),
		Validator: protocol.NewValidator(protocol.Limits{
			MaxItemName: cfg.MaxItemNameLength,
			MaxNotes:    cfg.MaxNotesLength,
			MaxPrice:    cfg.MaxItemPrice,
			MaxTax:      cfg.MaxTaxPercent,
		}),
		ConnLimiter: security.NewConnectionLimiter(cfg.MaxConnectionsPerIP),
	}

	// The callback can fire from inside a message handler that holds the
	// session's room lock, so the notify-and-close runs on its own goroutine.
	s.Store.OnExpire(func(code string) {
		go func() {
			s.Registry.CloseRoom(code, protocol.NewSessionExpiredMessage())
			log.Printf("🗑 Session expired, clients disconnected: %s", code)
		}()
	})

	return s, nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(constants.EndpointSessions, s.HandleCreateSession)
	mux.HandleFunc(constants.EndpointSessionBy, s.HandleSessionInfo)
	mux.HandleFunc(constants.EndpointWebSocket, s.HandleWebSocket)

	var handler http.Handler = mux
	handler = RecoveryMiddleware(handler)
	handler = CorsMiddleware(handler)

	return h2c.NewHandler(handler, &http2.Server{})
}

func (s *Server) Run() {
	server := &http.Server{
		Addr:              ":" + s.Config.Port,
		Handler:           s.Handler(),
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	log.Printf("🚀 tabsync server starting on :%s", s.Config.Port)

	<-sigChan
	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	s.Store.Close()
	log.Println("✅ Server stopped")
}
