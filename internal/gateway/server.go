package gateway

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ishiasaka/labshop/internal/config"
	"github.com/ishiasaka/labshop/internal/session"
)

// Server terminates browser cookie sessions and relays /api/* calls to
// the upstream lab-shop API with the credential stored at login.
type Server struct {
	cfg      config.Gateway
	sessions session.Store
	client   *http.Client
	now      func() time.Time
}

func NewServer(cfg config.Gateway, sessions session.Store) *Server {
	return &Server{
		cfg:      cfg,
		sessions: sessions,
		client:   &http.Client{Timeout: 15 * time.Second},
		now:      time.Now,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	staticDir := http.Dir(filepath.Join(s.cfg.StaticDir, "static"))
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(staticDir)))

	r.Get("/", s.handleIndex)
	r.Get("/login", s.handleLoginPage)
	r.With(s.requireAuthPage).Get("/admin", s.handleAdminPage)

	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)

	r.With(s.requireAuthAPI).Get("/api/me", s.handleMe)
	r.With(s.requireAuthAPI).Handle("/api/*", http.HandlerFunc(s.handleProxy))

	return r
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if _, err := s.currentSession(r); err == nil {
		http.Redirect(w, r, "/admin", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, filepath.Join(s.cfg.StaticDir, "login.html"))
}

func (s *Server) handleAdminPage(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, filepath.Join(s.cfg.StaticDir, "index.html"))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		writeDetail(w, http.StatusBadRequest, "username and password required")
		return
	}

	status, contentType, body, err := s.upstreamLogin(r.Context(), req)
	if err != nil {
		log.Printf("login proxy error: %v", err)
		writeDetail(w, http.StatusInternalServerError, "Login proxy failed")
		return
	}
	if status < 200 || status >= 300 {
		relayBody(w, status, contentType, body)
		return
	}

	var result struct {
		AdminID  string `json:"admin_id"`
		FullName string `json:"full_name"`
		Token    string `json:"token"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		log.Printf("login proxy error: decode upstream response: %v", err)
		writeDetail(w, http.StatusInternalServerError, "Login proxy failed")
		return
	}

	id := uuid.NewString()
	sess := session.Session{
		AdminID:   result.AdminID,
		AdminName: result.FullName,
		Expiry:    s.sessionExpiry(result.Token),
	}
	if s.cfg.AuthVariant == config.AuthBearer {
		sess.Token = result.Token
	}
	if err := s.sessions.Put(r.Context(), id, sess); err != nil {
		log.Printf("login proxy error: store session: %v", err)
		writeDetail(w, http.StatusInternalServerError, "Login proxy failed")
		return
	}

	s.setSessionCookie(w, id, sess.Expiry)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(s.cfg.CookieName); err == nil {
		if err := s.sessions.Delete(r.Context(), cookie.Value); err != nil {
			log.Printf("logout: delete session: %v", err)
		}
	}
	s.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{
		"admin_id":   sess.AdminID,
		"admin_name": sess.AdminName,
	})
}

func (s *Server) requireAuthPage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.currentSession(r)
		if err != nil {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), sess)))
	})
}

func (s *Server) requireAuthAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.currentSession(r)
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "Not logged in")
			return
		}
		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), sess)))
	})
}

func (s *Server) currentSession(r *http.Request) (session.Session, error) {
	cookie, err := r.Cookie(s.cfg.CookieName)
	if err != nil {
		return session.Session{}, err
	}
	return s.sessions.Get(r.Context(), cookie.Value)
}

// sessionExpiry applies the configured TTL, capped by the upstream
// token's own exp claim when the token is a JWT. The gateway does not
// hold the signing key, so the claim is read without verification.
func (s *Server) sessionExpiry(token string) time.Time {
	expiry := s.now().Add(s.cfg.SessionTTL)
	if token == "" {
		return expiry
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return expiry
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return expiry
	}
	if exp.Time.Before(expiry) {
		return exp.Time
	}
	return expiry
}

func (s *Server) setSessionCookie(w http.ResponseWriter, id string, expiry time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(time.Until(expiry).Seconds()),
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

type sessionCtxKey struct{}

func withSession(ctx context.Context, sess session.Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, sess)
}

func sessionFromContext(ctx context.Context) session.Session {
	sess, _ := ctx.Value(sessionCtxKey{}).(session.Session)
	return sess
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func relayBody(w http.ResponseWriter, status int, contentType string, body []byte) {
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
