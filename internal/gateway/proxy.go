package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/ishiasaka/labshop/internal/config"
)

// Request headers copied through to the upstream. Everything else —
// cookies, hop-by-hop headers, transport details — stays on this side
// of the boundary.
var forwardedHeaders = []string{
	"Content-Type",
	"Accept",
	"Accept-Language",
}

func (s *Server) upstreamLogin(ctx context.Context, req loginRequest) (int, string, []byte, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return 0, "", nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.UpstreamURL+"/admin/login", bytes.NewReader(payload))
	if err != nil {
		return 0, "", nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return 0, "", nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, "", nil, err
	}
	return resp.StatusCode, resp.Header.Get("Content-Type"), body, nil
}

// handleProxy relays an authenticated /api/* call: the /api prefix is
// stripped, the stored credential is attached, and the upstream status,
// content type, and body come back byte-for-byte.
func (s *Server) handleProxy(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())

	target := s.cfg.UpstreamURL + strings.TrimPrefix(r.URL.Path, "/api")
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}

	var body io.Reader
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		body = r.Body
	}

	req, err := http.NewRequestWithContext(r.Context(), r.Method, target, body)
	if err != nil {
		log.Printf("api proxy error: %v", err)
		writeDetail(w, http.StatusInternalServerError, "API proxy failed")
		return
	}

	for _, name := range forwardedHeaders {
		if value := r.Header.Get(name); value != "" {
			req.Header.Set(name, value)
		}
	}
	switch s.cfg.AuthVariant {
	case config.AuthHeaders:
		req.Header.Set("admin-id", sess.AdminID)
		req.Header.Set("admin-name", sess.AdminName)
	default:
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("api proxy error: %s %s: %v", r.Method, r.URL.Path, err)
		writeDetail(w, http.StatusInternalServerError, "API proxy failed")
		return
	}
	defer resp.Body.Close()

	if contentType := resp.Header.Get("Content-Type"); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		log.Printf("api proxy error: copy response: %v", err)
	}
}
