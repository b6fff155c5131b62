package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/middleware"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/models"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/service"
)

type signupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	AccountType string `json:"accountType"`
	Role        string `json:"role"`
	VendorName  string `json:"vendorName"`
}

func (r *signupRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required, validation.Length(3, 254), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Role, validation.In(
			string(models.UserRoleOwner),
			string(models.UserRolePublicVendor),
		)),
		validation.Field(&r.VendorName, validation.Length(0, 200)),
	)
}

type signupResponse struct {
	User         userResponse    `json:"user"`
	Vendor       *vendorResponse `json:"vendor,omitempty"`
	EmailSkipped bool            `json:"emailSkipped"`
	Warning      string          `json:"warning,omitempty"`
}

func (h HandlerSet) Signup(c *gin.Context) {
	var req signupRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Signup(c.Request.Context(), service.SignupInput{
		Email:       req.Email,
		Password:    req.Password,
		Name:        req.Name,
		AccountType: req.AccountType,
		Role:        models.UserRole(req.Role),
		VendorName:  req.VendorName,
	})
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	resp := signupResponse{
		User:         toUser(result.User),
		EmailSkipped: result.Email.Skipped,
		Warning:      result.Email.Warning,
	}
	if result.Vendor != nil {
		v := toVendor(*result.Vendor)
		resp.Vendor = &v
	}
	c.JSON(http.StatusCreated, resp)
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *signinRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

type signinResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      userResponse `json:"user"`
}

func (h HandlerSet) Signin(c *gin.Context) {
	var req signinRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Signin(c.Request.Context(), service.SigninInput{
		Email:     req.Email,
		Password:  req.Password,
		IPAddress: c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	})
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	maxAge := int(time.Until(result.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.Security.CookieName, result.Token, maxAge, "/", "", h.cfg.Security.CookieSecure, true)

	c.JSON(http.StatusOK, signinResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      toUser(result.User),
	})
}

// Signout is reachable only through the gate, so a session token is
// always present.
func (h HandlerSet) Signout(c *gin.Context) {
	if err := h.authService.Signout(c.Request.Context(), middleware.SessionToken(c)); err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.SetCookie(h.cfg.Security.CookieName, "", -1, "/", "", h.cfg.Security.CookieSecure, true)
	c.Status(http.StatusNoContent)
}

type tokenRequest struct {
	Token string `json:"token" form:"token"`
}

func (r *tokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Token, validation.Required, validation.Length(1, 256)),
	)
}

// VerifyEmail accepts the token as ?token= (the mailed link) or in a JSON
// body.
func (h HandlerSet) VerifyEmail(c *gin.Context) {
	var req tokenRequest
	if c.Request.Method == http.MethodGet {
		req.Token = c.Query("token")
		if err := req.Validate(); err != nil {
			middleware.AbortWithError(c, validationError(err))
			return
		}
	} else if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.VerifyEmail(c.Request.Context(), req.Token)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": toUser(user)})
}

type emailRequest struct {
	Email string `json:"email"`
}

func (r *emailRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (h HandlerSet) ResendVerification(c *gin.Context) {
	var req emailRequest
	if !bindJSON(c, &req) {
		return
	}

	delivery, err := h.authService.ResendVerification(c.Request.Context(), req.Email)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	resp := gin.H{"sent": delivery.Sent, "skipped": delivery.Skipped}
	if delivery.Warning != "" {
		resp["warning"] = delivery.Warning
	}
	c.JSON(http.StatusOK, resp)
}

func (h HandlerSet) Me(c *gin.Context) {
	user, err := h.authService.Me(c.Request.Context(), middleware.PrincipalID(c))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": toUser(user)})
}

func (h HandlerSet) ListSessions(c *gin.Context) {
	sessions, err := h.authService.Sessions(c.Request.Context(), middleware.PrincipalID(c))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	current := middleware.SessionToken(c)
	resp := make([]sessionResponse, 0, len(sessions))
	for _, s := range sessions {
		resp = append(resp, sessionResponse{
			ID:         s.ID,
			IPAddress:  s.IPAddress,
			UserAgent:  s.UserAgent,
			IsActive:   s.IsActive,
			CreatedAt:  s.CreatedAt,
			LastActive: s.LastActive,
			ExpiresAt:  s.ExpiresAt,
			Current:    s.SessionToken == current,
		})
	}
	c.JSON(http.StatusOK, gin.H{"sessions": resp})
}

type validateSessionRequest struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

func (r *validateSessionRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Token, validation.Length(0, 256)),
		validation.Field(&r.UserID, validation.Length(0, 64)),
	)
}

// ValidateSession answers the authoritative liveness question. An empty body
// checks the caller's own session; only a master admin may ask about someone
// else's. Store failures are returned as errors, never as "valid".
func (h HandlerSet) ValidateSession(c *gin.Context) {
	var req validateSessionRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	if req.Token == "" {
		req.Token = middleware.SessionToken(c)
	}
	if req.UserID == "" {
		req.UserID = middleware.PrincipalID(c)
	}
	if req.UserID != middleware.PrincipalID(c) {
		if _, err := h.approvals.RequireMasterAdmin(c.Request.Context(), middleware.PrincipalID(c)); err != nil {
			middleware.AbortWithError(c, err)
			return
		}
	}

	valid, err := h.authService.ValidateSession(c.Request.Context(), req.Token, req.UserID)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": valid})
}
