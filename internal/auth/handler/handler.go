package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"mailchimp-auth/internal/auth"
	"mailchimp-auth/internal/auth/provider"
	"mailchimp-auth/internal/auth/provider/mailchimp"
	"mailchimp-auth/internal/auth/resolver"
	"mailchimp-auth/internal/auth/state"
	"mailchimp-auth/internal/logger"
	"mailchimp-auth/internal/session"
	"mailchimp-auth/internal/utils"

	"github.com/gin-gonic/gin"
)

// loginPage is where failed attempts land. Deliberately generic: the
// reasons for NotConfigured / InvalidState stay server-side.
const loginPage = "/login"

const sessionLifetime = 24 * time.Hour

// AvatarIngestor is the best-effort avatar collaborator. Errors from it
// are logged and swallowed, never propagated as login failures.
type AvatarIngestor interface {
	Ingest(ctx context.Context, userID string, avatarURL string) error
}

type Handler struct {
	providers         *provider.Registry
	states            state.Store
	sessionStore      session.Store
	resolver          resolver.Resolver
	credentialService CredentialService
	avatars           AvatarIngestor
}

func NewHandler(
	registry *provider.Registry,
	states state.Store,
	sessionStore session.Store,
	resolver resolver.Resolver,
	credentialService CredentialService,
	avatars AvatarIngestor,
) *Handler {
	return &Handler{
		providers:         registry,
		states:            states,
		sessionStore:      sessionStore,
		resolver:          resolver,
		credentialService: credentialService,
		avatars:           avatars,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/oauth/login/:provider", h.login)
	r.GET("/oauth/callback/:provider", h.callback)

	// Callback path registered with MailChimp out-of-band.
	r.GET(mailchimp.CallbackPath, func(c *gin.Context) {
		c.Params = append(c.Params, gin.Param{Key: "provider", Value: "mailchimp"})
		h.callback(c)
	})

	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/logout", h.Logout)
}

// login starts the authorization-code flow: persist a one-shot
// authorization request and redirect the browser to the provider.
func (h *Handler) login(c *gin.Context) {
	providerName := c.Param("provider")

	p, err := h.providers.Get(providerName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unknown oauth provider",
		})
		return
	}

	// Never send the browser to a provider with incomplete credentials.
	if !p.Configured() {
		logger.Warn("oauth login refused, provider not configured", map[string]any{
			"provider": providerName,
		})
		c.Redirect(http.StatusFound, loginPage)
		return
	}

	stateValue := utils.RandomString(32)
	verifier, challenge := generatePKCE()

	req := state.AuthorizationRequest{
		State:        stateValue,
		Provider:     providerName,
		ReturnURL:    safeReturnURL(c.Query("return_url")),
		CodeVerifier: verifier,
		CreatedAt:    time.Now(),
	}

	if err := h.states.Save(c.Request.Context(), req); err != nil {
		logger.Error("failed to persist authorization request", map[string]any{
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "login unavailable",
		})
		return
	}

	// Bind the attempt to this browser; see state.go.
	setStateCookie(c, stateValue)

	c.Redirect(http.StatusFound, p.AuthCodeURL(stateValue, challenge))
}

// callback finishes the flow: validate state, exchange the code, map the
// identity, resolve the local account, issue a session. Each step
// short-circuits on first error; nothing is retried.
func (h *Handler) callback(c *gin.Context) {
	providerName := c.Param("provider")

	p, err := h.providers.Get(providerName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unknown oauth provider",
		})
		return
	}

	// State first, regardless of what else the query carries.
	req := h.consumeState(c, providerName)
	if req == nil {
		logger.Warn("oauth callback with invalid state", map[string]any{
			"provider": providerName,
		})
		c.Redirect(http.StatusFound, loginPage)
		return
	}

	// Provider-reported error (user cancelled, consent denied, ...).
	if errParam := c.Query("error"); errParam != "" {
		logger.Warn("oauth callback returned error", map[string]any{
			"provider": providerName,
			"error":    errParam,
			"desc":     c.Query("error_description"),
		})
		c.Redirect(http.StatusFound, loginPage)
		return
	}

	code := c.Query("code")
	if code == "" {
		logger.Error("oauth callback missing code and error", nil)
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	identity, err := p.ExchangeCode(
		c.Request.Context(),
		code,
		req.CodeVerifier,
	)
	if err != nil {
		h.failCallback(c, providerName, err)
		return
	}

	userID, created, err := h.resolver.Resolve(c.Request.Context(), identity)
	if err != nil {
		logger.Error("failed to resolve user", map[string]any{
			"provider": providerName,
			"error":    err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to resolve user",
		})
		return
	}

	if err := h.issueSession(c, userID); err != nil {
		logger.Error("failed to create session", map[string]any{
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to create session",
		})
		return
	}

	// One-time registration side effect. Never fails the login.
	if created && identity.AvatarURL != "" && h.avatars != nil {
		if err := h.avatars.Ingest(c.Request.Context(), userID, identity.AvatarURL); err != nil {
			logger.Warn("avatar ingestion failed", map[string]any{
				"provider": providerName,
				"user_id":  userID,
				"error":    err.Error(),
			})
		}
	}

	logger.Info("external login succeeded", map[string]any{
		"provider": providerName,
		"user_id":  userID,
		"created":  created,
	})

	c.Redirect(http.StatusFound, req.ReturnURL)
}

// consumeState fetches-and-deletes the pending authorization request and
// checks it is live, bound to this provider, and bound to this browser.
// Returns nil on any mismatch; the caller treats that as InvalidState.
func (h *Handler) consumeState(c *gin.Context, providerName string) *state.AuthorizationRequest {
	stateValue := c.Query("state")
	if stateValue == "" {
		return nil
	}

	// A state issued to another browser must not validate here, however
	// real the code may be. This is the login-CSRF check.
	if !matchStateCookie(c, stateValue) {
		return nil
	}

	req, err := h.states.Consume(c.Request.Context(), stateValue)
	if err != nil {
		logger.Error("state store lookup failed", map[string]any{
			"error": err.Error(),
		})
		return nil
	}
	if req == nil || req.Provider != providerName || req.Expired(time.Now()) {
		return nil
	}

	// One-shot: the record is consumed, the cookie goes with it.
	clearStateCookie(c)
	return req
}

// failCallback maps provider-step failures onto responses. Full detail
// is logged server-side; the user only ever sees a generic failure.
func (h *Handler) failCallback(c *gin.Context, providerName string, err error) {
	fields := map[string]any{
		"provider": providerName,
		"error":    err.Error(),
	}

	var rejected *auth.ProviderRejected
	if errors.As(err, &rejected) {
		fields["status"] = rejected.Status
		fields["body"] = rejected.Body
	}

	switch {
	case errors.Is(err, auth.ErrNotConfigured):
		logger.Warn("oauth exchange refused, provider not configured", fields)
		c.Redirect(http.StatusFound, loginPage)
	case errors.Is(err, auth.ErrIdentityIncomplete):
		logger.Error("provider identity incomplete", fields)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication failed"})
	default:
		logger.Error("oauth exchange failed", fields)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication failed"})
	}
}

func (h *Handler) Logout(c *gin.Context) {
	cookie, err := c.Request.Cookie(session.CookieName)
	if err == nil && cookie.Value != "" {
		// best-effort delete; the cookie is cleared either way
		_ = h.sessionStore.Delete(c.Request.Context(), cookie.Value)
	}

	session.ClearCookie(c.Writer, session.CookieOptions{
		Path:     "/",
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	c.Status(http.StatusNoContent)
}

// safeReturnURL confines post-login redirects to local paths. Browsers
// normalize backslashes to slashes, so /\host is protocol-relative too.
func safeReturnURL(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") ||
		strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, `/\`) {
		return "/"
	}
	return raw
}
