package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	goGate "github.com/MrEthical07/goGate"
	"github.com/MrEthical07/goGate/internal/content"
	"github.com/MrEthical07/goGate/internal/rate"
	"github.com/MrEthical07/goGate/middleware"
	"github.com/MrEthical07/goGate/permission"
	"github.com/MrEthical07/goGate/session"
)

const maxBodyBytes = 64 << 10

// Router builds the HTTP surface.
func (a *app) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(a.requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": a.engine.Status().String()})
	})
	if a.exporter != nil {
		r.Method(http.MethodGet, "/metrics", a.exporter.Handler())
	}

	authenticated := middleware.RequireAPI(a.engine, goGate.Requirement{})
	r.Route("/api", func(r chi.Router) {
		r.Post("/login", a.login)
		r.Post("/logout", a.logout)
		r.Get("/session", a.sessionView)
		r.Get("/access", a.access)
		r.With(authenticated).Patch("/session/user", a.updateUser)
		r.With(authenticated).Get("/token", a.introspectToken)

		r.Route("/content", func(r chi.Router) {
			r.With(a.require(permission.ReadContent)).Get("/", a.listContent)
			r.With(a.require(permission.CreateContent)).Post("/", a.createContent)
			r.With(a.require(permission.ReadContent)).Get("/{id}", a.getContent)
			r.With(a.require(permission.UpdateContent)).Put("/{id}", a.updateContent)
			r.With(a.require(permission.DeleteContent)).Delete("/{id}", a.deleteContent)
		})
	})

	r.Get("/login", a.loginPage)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Protect(a.engine, a.routes, a.engine.Config().Routing.DefaultFallback))
		r.Get("/dashboard", a.dashboardPage)
		r.Get("/profile", a.profilePage)
		r.Get("/admin", a.adminPage)
		r.Get("/admin/*", a.adminPage)
		r.Get("/create", a.simplePage("Create content"))
		r.Get("/edit", a.simplePage("Edit content"))
		r.Get("/edit/*", a.simplePage("Edit content"))
	})

	return r
}

func (a *app) require(p permission.Permission) func(http.Handler) http.Handler {
	return middleware.RequireAPI(a.engine, permission.RequirePermission(p))
}

func (a *app) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}
		r = r.WithContext(goGate.WithClientIP(r.Context(), ip))

		next.ServeHTTP(ww, r)
		a.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", chimw.GetReqID(r.Context())),
		)
	})
}

/*
====================================
SESSION API
====================================
*/

type sessionResponse struct {
	Status        string        `json:"status"`
	Authenticated bool          `json:"authenticated"`
	User          *session.User `json:"user,omitempty"`
	Permissions   []string      `json:"permissions"`
	Persisted     *bool         `json:"persisted,omitempty"`
}

func (a *app) snapshot(persistErr error) sessionResponse {
	state := a.engine.Session()
	resp := sessionResponse{
		Status:        a.engine.Status().String(),
		Authenticated: state.IsAuthenticated(),
		Permissions:   state.Permissions().Strings(),
	}
	if u, ok := state.User(); ok {
		resp.User = &u
	}
	if resp.Permissions == nil {
		resp.Permissions = []string{}
	}
	if persistErr != nil {
		persisted := false
		resp.Persisted = &persisted
	}
	return resp
}

func (a *app) login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &creds) {
		return
	}

	_, err := a.engine.Login(r.Context(), goGate.Credentials{Email: creds.Email, Password: creds.Password})
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, a.snapshot(nil))
	case errors.Is(err, goGate.ErrPersistenceWriteFailure):
		writeJSON(w, http.StatusOK, a.snapshot(err))
	case errors.Is(err, goGate.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, rate.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "too many failed attempts, try again later")
	default:
		a.logger.Warn("login failed", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "login unavailable")
	}
}

func (a *app) logout(w http.ResponseWriter, r *http.Request) {
	err := a.engine.Logout(r.Context())
	if err != nil && !errors.Is(err, goGate.ErrPersistenceWriteFailure) {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, a.snapshot(err))
}

func (a *app) sessionView(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.snapshot(nil))
}

func (a *app) updateUser(w http.ResponseWriter, r *http.Request) {
	var patch session.UserPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	ev, _ := middleware.EvaluatorFromContext(r.Context())
	if patch.ChangesRole() && !ev.HasPermission(permission.ManageRoles) {
		writeError(w, http.StatusForbidden, "changing roles requires manage_roles")
		return
	}

	_, err := a.engine.UpdateUser(r.Context(), patch)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, a.snapshot(nil))
	case errors.Is(err, goGate.ErrPersistenceWriteFailure):
		writeJSON(w, http.StatusOK, a.snapshot(err))
	case errors.Is(err, goGate.ErrNoActiveSession):
		writeError(w, http.StatusUnauthorized, "no active session")
	case errors.Is(err, goGate.ErrInvalidUserUpdate), errors.Is(err, goGate.ErrUnknownRole):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// access answers an ad-hoc isAllowed query, e.g.
// /api/access?permissions=read_content&permissions=create_content&requireAll=true&role=user
//
// permission is the single-permission clause and permissions the list
// clause. A repeated permission key is folded into the list.
func (a *app) access(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := goGate.Requirement{
		Permission: permission.Permission(q.Get("permission")),
		Role:       permission.Role(q.Get("role")),
	}
	if perms := q["permission"]; len(perms) > 1 {
		req.Permission = ""
		for _, p := range perms {
			req.Permissions = append(req.Permissions, permission.Permission(p))
		}
	}
	for _, p := range q["permissions"] {
		req.Permissions = append(req.Permissions, permission.Permission(p))
	}
	for _, role := range q["roles"] {
		req.Roles = append(req.Roles, permission.Role(role))
	}
	if raw := q.Get("requireAll"); raw != "" {
		all, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "requireAll must be a boolean")
			return
		}
		req.RequireAll = all
	}

	writeJSON(w, http.StatusOK, map[string]bool{"allowed": a.engine.IsAllowed(req)})
}

func (a *app) introspectToken(w http.ResponseWriter, _ *http.Request) {
	if a.tokens == nil {
		writeError(w, http.StatusNotFound, "token introspection requires GOGATE_TOKEN_SECRET")
		return
	}
	claims, err := a.tokens.Parse(a.engine.Session().Token())
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	resp := map[string]any{
		"subject": claims.Subject,
		"email":   claims.Email,
		"role":    claims.Role,
		"id":      claims.ID,
	}
	if claims.ExpiresAt != nil {
		resp["expiresAt"] = claims.ExpiresAt.Time
	}
	writeJSON(w, http.StatusOK, resp)
}

/*
====================================
CONTENT API
====================================
*/

func (a *app) listContent(w http.ResponseWriter, r *http.Request) {
	limit := -1
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	items, err := a.content.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (a *app) getContent(w http.ResponseWriter, r *http.Request) {
	item, err := a.content.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeContentError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (a *app) createContent(w http.ResponseWriter, r *http.Request) {
	var draft content.Draft
	if !decodeJSON(w, r, &draft) {
		return
	}
	author, _ := a.engine.Session().User()
	item, err := a.content.Create(r.Context(), author, draft)
	if err != nil {
		writeContentError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (a *app) updateContent(w http.ResponseWriter, r *http.Request) {
	var draft content.Draft
	if !decodeJSON(w, r, &draft) {
		return
	}
	item, err := a.content.Update(r.Context(), chi.URLParam(r, "id"), draft)
	if err != nil {
		writeContentError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (a *app) deleteContent(w http.ResponseWriter, r *http.Request) {
	if err := a.content.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeContentError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeContentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, content.ErrNotFound):
		writeError(w, http.StatusNotFound, "content not found")
	case errors.Is(err, content.ErrInvalidDraft):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

/*
====================================
PAGES
====================================
*/

func (a *app) loginPage(w http.ResponseWriter, r *http.Request) {
	var b strings.Builder
	b.WriteString("Sign in\n\nDemo accounts:\n")
	b.WriteString("  admin@example.com / admin123\n  user@example.com / user123\n  guest@example.com / guest123\n")
	if next := r.URL.Query().Get("next"); next != "" {
		fmt.Fprintf(&b, "\nAfter signing in, continue to %s\n", next)
	}
	writeText(w, b.String())
}

func (a *app) dashboardPage(w http.ResponseWriter, r *http.Request) {
	ev, _ := middleware.EvaluatorFromContext(r.Context())
	user, _ := ev.Session().User()

	var b strings.Builder
	fmt.Fprintf(&b, "Dashboard\n\nWelcome, %s (%s)\n\n", user.Name, user.Role)
	b.WriteString(goGate.Gate(ev, permission.RequirePermission(permission.CreateContent), "[Create content]\n"))
	b.WriteString(goGate.Gate(ev, permission.RequirePermission(permission.DeleteContent), "[Delete content]\n"))
	b.WriteString(goGate.Gate(ev, permission.RequirePermission(permission.DeleteUser), "[Delete users]\n"))
	b.WriteString(goGate.Gate(ev, permission.RequireAnyRole(permission.RoleAdmin),
		"[Admin panel]\n", "Admin tools are available to administrators only.\n"))

	items, err := a.content.Recent(r.Context(), 5)
	if err == nil && len(items) > 0 {
		b.WriteString("\nRecent activity:\n")
		for _, it := range items {
			fmt.Fprintf(&b, "  Content created: %s (%s)\n", it.Title, it.CreatedAt.Format(time.RFC3339))
		}
	}
	writeText(w, b.String())
}

func (a *app) profilePage(w http.ResponseWriter, r *http.Request) {
	ev, _ := middleware.EvaluatorFromContext(r.Context())
	user, _ := ev.Session().User()

	var b strings.Builder
	fmt.Fprintf(&b, "Profile\n\nName: %s\nEmail: %s\nRole: %s\n", user.Name, user.Email, user.Role)
	for _, field := range []struct{ label, value string }{
		{"Bio", user.Bio}, {"Phone", user.Phone}, {"Location", user.Location},
	} {
		if field.value != "" {
			fmt.Fprintf(&b, "%s: %s\n", field.label, field.value)
		}
	}
	b.WriteString(goGate.Gate(ev, permission.RequirePermission(permission.EditProfile), "\n[Edit profile]\n"))
	writeText(w, b.String())
}

func (a *app) adminPage(w http.ResponseWriter, r *http.Request) {
	ev, _ := middleware.EvaluatorFromContext(r.Context())

	var b strings.Builder
	b.WriteString("Admin\n\n")
	b.WriteString(goGate.Gate(ev, permission.RequirePermission(permission.ManageRoles), "Roles:\n"))
	if ev.HasPermission(permission.ManageRoles) {
		for _, role := range a.engine.Policy().Roles() {
			fmt.Fprintf(&b, "  %s: %s\n", role, strings.Join(a.engine.Policy().PermissionsFor(role).Strings(), ", "))
		}
	}
	b.WriteString(goGate.Gate(ev, permission.RequirePermission(permission.ViewAnalytics), "\n[Analytics]\n"))
	b.WriteString(goGate.Gate(ev, permission.RequirePermission(permission.SystemSettings), "[System settings]\n"))
	writeText(w, b.String())
}

func (a *app) simplePage(title string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeText(w, title+"\n")
	}
}

/*
====================================
HELPERS
====================================
*/

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeText(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(body))
}
