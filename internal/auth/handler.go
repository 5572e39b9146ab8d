package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/fairdesk/fairdesk/internal/backend"
	"github.com/fairdesk/fairdesk/internal/shared"
	"github.com/fairdesk/fairdesk/internal/view"
)

// Session keys used by the create-password flow.
const (
	keySetupStep  = "passwordSetup.step"
	keySetupEmail = "passwordSetup.email"
	keySetupToken = "passwordSetup.token"
	keySetupOTP   = "passwordSetup.otp"
)

// Steps of the create-password flow.
const (
	StepEmail    = "email"
	StepOTP      = "otp"
	StepPassword = "password"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger     *slog.Logger
	service    *Service
	pages      *view.Responder
	sessions   *shared.SessionManager
	csrf       *shared.CSRFManager
	loginLimit func(http.Handler) http.Handler
}

// NewHandler constructs a Handler instance. loginAttempts caps credential
// submissions per client IP and minute; zero disables the limit.
func NewHandler(logger *slog.Logger, service *Service, pages *view.Responder, sessions *shared.SessionManager, csrf *shared.CSRFManager, loginAttempts int) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	limit := func(next http.Handler) http.Handler { return next }
	if loginAttempts > 0 {
		limit = httprate.Limit(loginAttempts, time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				shared.RedirectWithFlash(w, r, r.URL.Path, shared.FlashError, "Too many attempts. Please wait a minute and try again.")
			}),
		)
	}
	return &Handler{
		logger:     logger,
		service:    service,
		pages:      pages,
		sessions:   sessions,
		csrf:       csrf,
		loginLimit: limit,
	}
}

// MountRoutes registers login and logout under the admin prefix.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/login", h.showLogin)
	r.With(h.loginLimit).Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
}

// MountPasswordRoutes registers the invitation flow.
func (h *Handler) MountPasswordRoutes(r chi.Router) {
	r.Get("/create-password", h.showCreatePassword)
	r.With(h.loginLimit).Post("/create-password", h.handleCreatePassword)
}

type loginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

type loginPageData struct {
	Form   loginForm
	Errors shared.ValidationErrors
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	if _, err := resolve(r); err == nil {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	h.renderLogin(w, r, http.StatusOK, loginPageData{})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := loginForm{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}
	if errs := shared.FieldErrors(shared.ValidateStruct(form)); errs != nil {
		h.renderLogin(w, r, http.StatusUnprocessableEntity, loginPageData{Form: loginForm{Username: form.Username}, Errors: errs})
		return
	}

	tokens, err := h.service.Login(r.Context(), form.Username, form.Password)
	if err != nil {
		status, message := http.StatusUnprocessableEntity, "Invalid username or password."
		if !errors.Is(err, ErrInvalidCredentials) {
			h.logger.Error("login request failed", slog.Any("error", err))
			status, message = http.StatusBadGateway, "Sign in failed: "+backend.Message(err)+"."
		}
		errs := shared.ValidationErrors{}
		errs.Add("general", message)
		h.renderLogin(w, r, status, loginPageData{Form: loginForm{Username: form.Username}, Errors: errs})
		return
	}

	principal, ok := h.startSession(w, r, tokens)
	if !ok {
		return
	}
	h.logger.Info("user signed in", slog.String("username", principal.Username), slog.String("role", string(principal.Role)))
	shared.RedirectWithFlash(w, r, "/admin", shared.FlashSuccess, "Welcome back.")
}

// startSession persists tokens into a renewed session. It writes the error
// response itself and reports false when the token carries no usable role.
func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, tokens Tokens) (Principal, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during login")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return Principal{}, false
	}
	sess.Renew()
	principal, err := NewSession(sess).Init(tokens)
	if err != nil {
		h.logger.Warn("login token refused", slog.Any("error", err))
		shared.RedirectWithFlash(w, r, LoginPath, shared.FlashError, "This account has no access to the dashboard.")
		return Principal{}, false
	}
	if h.csrf != nil {
		if _, err := h.csrf.Rotate(sess); err != nil {
			h.logger.Warn("rotate csrf token", slog.Any("error", err))
		}
	}
	return principal, true
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		NewSession(sess).Clear()
		h.sessions.Destroy(sess)
	}
	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, status int, data loginPageData) {
	h.pages.Render(w, r, view.Page{Name: "pages/login.html", Title: "Sign in", Status: status, Data: data})
}

type setupEmailForm struct {
	Email string `form:"email" validate:"required,email"`
}

type setupOTPForm struct {
	OTP string `form:"otp" validate:"required,numeric"`
}

type setupPasswordForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required,min=8"`
	Confirm  string `form:"confirm_password" validate:"required,eqfield=Password"`
}

type passwordPageData struct {
	Step     string
	Email    string
	Username string
	Errors   shared.ValidationErrors
}

func (h *Handler) showCreatePassword(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if token := r.URL.Query().Get("token"); token != "" {
		resetSetup(sess)
		sess.Set(keySetupToken, token)
		sess.Set(keySetupStep, StepEmail)
	}
	if sess.Get(keySetupToken) == "" {
		shared.RedirectWithFlash(w, r, LoginPath, shared.FlashError, "The invitation link is invalid or incomplete.")
		return
	}
	h.renderSetup(w, r, http.StatusOK, passwordPageData{Step: setupStep(sess), Email: sess.Get(keySetupEmail)})
}

func (h *Handler) handleCreatePassword(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.Get(keySetupToken) == "" {
		shared.RedirectWithFlash(w, r, LoginPath, shared.FlashError, "The invitation link is invalid or incomplete.")
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	switch setupStep(sess) {
	case StepEmail:
		h.submitSetupEmail(w, r, sess)
	case StepOTP:
		h.submitSetupOTP(w, r, sess)
	default:
		h.submitSetupPassword(w, r, sess)
	}
}

func (h *Handler) submitSetupEmail(w http.ResponseWriter, r *http.Request, sess *shared.Session) {
	form := setupEmailForm{Email: strings.TrimSpace(r.PostFormValue("email"))}
	data := passwordPageData{Step: StepEmail, Email: form.Email}
	if data.Errors = shared.FieldErrors(shared.ValidateStruct(form)); data.Errors != nil {
		h.renderSetup(w, r, http.StatusUnprocessableEntity, data)
		return
	}
	if err := h.service.SendOTP(r.Context(), form.Email, sess.Get(keySetupToken)); err != nil {
		h.setupFailed(w, r, data, "send the code", err)
		return
	}
	sess.Set(keySetupEmail, form.Email)
	sess.Set(keySetupStep, StepOTP)
	shared.RedirectWithFlash(w, r, "/create-password", shared.FlashInfo, "A verification code was sent to "+form.Email+".")
}

func (h *Handler) submitSetupOTP(w http.ResponseWriter, r *http.Request, sess *shared.Session) {
	form := setupOTPForm{OTP: strings.TrimSpace(r.PostFormValue("otp"))}
	email := sess.Get(keySetupEmail)
	data := passwordPageData{Step: StepOTP, Email: email}
	if data.Errors = shared.FieldErrors(shared.ValidateStruct(form)); data.Errors != nil {
		h.renderSetup(w, r, http.StatusUnprocessableEntity, data)
		return
	}
	if err := h.service.VerifyOTP(r.Context(), email, form.OTP); err != nil {
		h.setupFailed(w, r, data, "verify the code", err)
		return
	}
	sess.Set(keySetupOTP, form.OTP)
	sess.Set(keySetupStep, StepPassword)
	shared.RedirectWithFlash(w, r, "/create-password", shared.FlashSuccess, "Code verified. Choose your username and password.")
}

func (h *Handler) submitSetupPassword(w http.ResponseWriter, r *http.Request, sess *shared.Session) {
	form := setupPasswordForm{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
		Confirm:  r.PostFormValue("confirm_password"),
	}
	data := passwordPageData{Step: StepPassword, Email: sess.Get(keySetupEmail), Username: form.Username}
	if data.Errors = shared.FieldErrors(shared.ValidateStruct(form)); data.Errors != nil {
		h.renderSetup(w, r, http.StatusUnprocessableEntity, data)
		return
	}

	tokens, err := h.service.CreatePassword(r.Context(), PasswordSetup{
		Email:    data.Email,
		Username: form.Username,
		OTP:      sess.Get(keySetupOTP),
		Password: form.Password,
		Token:    sess.Get(keySetupToken),
	})
	if err != nil {
		h.setupFailed(w, r, data, "create the password", err)
		return
	}
	resetSetup(sess)
	if tokens.Access == "" {
		shared.RedirectWithFlash(w, r, LoginPath, shared.FlashSuccess, "Password created. Please sign in.")
		return
	}
	if _, ok := h.startSession(w, r, tokens); !ok {
		return
	}
	shared.RedirectWithFlash(w, r, "/admin", shared.FlashSuccess, "Password created. Welcome aboard.")
}

func (h *Handler) setupFailed(w http.ResponseWriter, r *http.Request, data passwordPageData, action string, err error) {
	status := http.StatusUnprocessableEntity
	if !errors.Is(err, backend.ErrValidation) {
		h.logger.Error("create password step failed", slog.String("step", data.Step), slog.Any("error", err))
		status = http.StatusBadGateway
	}
	data.Errors = shared.ValidationErrors{}
	data.Errors.Add("general", "Failed to "+action+": "+backend.Message(err))
	h.renderSetup(w, r, status, data)
}

func (h *Handler) renderSetup(w http.ResponseWriter, r *http.Request, status int, data passwordPageData) {
	h.pages.Render(w, r, view.Page{Name: "pages/create_password.html", Title: "Create password", Status: status, Data: data})
}

func setupStep(sess *shared.Session) string {
	switch step := sess.Get(keySetupStep); step {
	case StepOTP, StepPassword:
		return step
	}
	return StepEmail
}

func resetSetup(sess *shared.Session) {
	for _, key := range []string{keySetupStep, keySetupEmail, keySetupToken, keySetupOTP} {
		sess.Delete(key)
	}
}
