package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"tabsync/internal/constants"
	"tabsync/internal/protocol"
	"tabsync/internal/session"
	"tabsync/internal/utils"
)

// HandleCreateSession allocates a fresh session and hands back its code.
func (s *Server) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, constants.MsgMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	sess, err := s.Store.Create()
	if err != nil {
		log.Printf("❌ Session create failed: %v", err)
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	log.Printf("🔔 Session registered: %s", sess.Code)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(protocol.SessionCreatedResponse{SessionID: sess.Code})
}

// HandleSessionInfo reports whether a session code is joinable. Looking up
// an expired session evicts it.
func (s *Server) HandleSessionInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, constants.MsgMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, constants.EndpointSessionBy)
	path = strings.TrimSuffix(path, "/")

	if code, ok := strings.CutSuffix(path, "/qr"); ok {
		s.handleSessionQR(w, r, code)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	_, err := s.Store.Get(path)
	switch {
	case err == nil:
		json.NewEncoder(w).Encode(protocol.SessionInfoResponse{Exists: true})
	case errors.Is(err, session.ErrExpired):
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(protocol.SessionInfoResponse{Exists: false, Reason: protocol.ReasonExpired})
	default:
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(protocol.SessionInfoResponse{Exists: false, Reason: protocol.ReasonNotFound})
	}
}

// handleSessionQR renders a QR code for the session's join URL so a code on
// one phone can be scanned by the rest of the table.
func (s *Server) handleSessionQR(w http.ResponseWriter, r *http.Request, code string) {
	if _, err := s.Store.Get(code); err != nil {
		http.Error(w, "Session not found or expired", http.StatusNotFound)
		return
	}

	joinURL := utils.ConstructURL(utils.GetScheme(r), s.Config.Host, code)
	png, err := qrcode.Encode(joinURL, qrcode.Medium, 256)
	if err != nil {
		log.Printf("❌ QR encode failed for %s: %v", code, err)
		http.Error(w, "Failed to render QR code", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}
