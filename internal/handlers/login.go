package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/accounts"
	mw "github.com/Mujtaba-Syed/QnH-Enterprises/internal/middleware"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/view"
)

// Login messages not owned by the accounts package.
const (
	MessageLoggedOut     = "You have been logged out."
	MessageOAuthFailed   = "Google login did not return a session. Please try again."
	MessageCredentialsIn = "Please enter your username and password."
)

// LoginView backs the login page and form fragment.
type LoginView struct {
	Lang     string
	Username string
	Error    string
	Next     string
	CSRF     string
}

func (h *Handlers) newLoginView(r *http.Request, username, problem string) *LoginView {
	return &LoginView{
		Lang:     mw.Lang(r),
		Username: username,
		Error:    problem,
		Next:     mw.SafeNext(r.FormValue("next"), ""),
		CSRF:     mw.CSRFToken(r.Context()),
	}
}

// LoginPage renders GET /login/. Signed-in visitors go straight to next.
func (h *Handlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	if credentials(r).Authenticated() {
		http.Redirect(w, r, mw.SafeNext(r.URL.Query().Get("next"), "/"), http.StatusSeeOther)
		return
	}
	h.renderLogin(w, r, h.newLoginView(r, "", ""), http.StatusOK)
}

// Login handles POST /login/.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		h.notify().Error(ctx, MessageCredentialsIn)
		h.renderLogin(w, r, h.newLoginView(r, username, MessageCredentialsIn), http.StatusOK)
		return
	}

	tokens, err := h.deps.Accounts.Login(ctx, username, password)
	if err != nil {
		msg := accounts.LoginErrorMessage(err)
		logger(ctx).Info("login failed", zap.String("username", username), zap.Error(err))
		h.notify().Error(ctx, msg)
		h.renderLogin(w, r, h.newLoginView(r, username, msg), http.StatusOK)
		return
	}
	sess := currentSession(r)
	if sess == nil {
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}
	sess.SetTokens(tokens.Access, tokens.Refresh)
	sess.RegenerateID()
	h.notify().Success(ctx, accounts.MessageLoginSuccess)
	mw.Redirect(w, r, mw.SafeNext(r.PostFormValue("next"), "/"))
}

func (h *Handlers) renderLogin(w http.ResponseWriter, r *http.Request, lv *LoginView, status int) {
	if mw.HTMXFromContext(r.Context()).Partial() {
		h.renderFragment(w, r, status, view.Part{Name: "login_form", Data: lv})
		return
	}
	vm := h.newPage(r, h.t(r, "login.title"), h.t(r, "login.description"))
	vm.SEO.Robots = "noindex"
	vm.Login = lv
	h.renderPage(w, r, status, "login", vm)
}

// GoogleLogin handles GET /login/google by sending the visitor to the consent screen.
func (h *Handlers) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	target, err := h.deps.Accounts.GoogleAuthURL(r.Context())
	if err != nil {
		logger(r.Context()).Warn("google oauth initiate", zap.Error(err))
		h.notify().Error(r.Context(), accounts.MessageGoogleFailed)
		mw.Redirect(w, r, mw.LoginPath)
		return
	}
	mw.Redirect(w, r, target)
}

// OAuthSuccess handles GET /oauth-success/, where the backend's OAuth callback lands with the
// issued token pair.
func (h *Handlers) OAuthSuccess(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	access := strings.TrimSpace(q.Get("access"))
	if access == "" {
		h.notify().Error(r.Context(), MessageOAuthFailed)
		http.Redirect(w, r, mw.LoginPath, http.StatusSeeOther)
		return
	}
	sess := currentSession(r)
	if sess == nil {
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}
	sess.SetTokens(access, strings.TrimSpace(q.Get("refresh")))
	sess.RegenerateID()
	h.notify().Success(r.Context(), accounts.MessageLoginSuccess)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout handles POST /logout/ and drops every visitor token.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if sess := currentSession(r); sess != nil {
		sess.Logout()
	}
	h.notify().Info(r.Context(), MessageLoggedOut)
	mw.Redirect(w, r, "/")
}
