package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/approval"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/config"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/middleware"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/notify"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/permission"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/repository"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/security"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/service"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/session"
)

// Dependencies are the infrastructure pieces the handlers are built on.
// Cache, Notifier and Audit are optional.
type Dependencies struct {
	Store    repository.Store
	Cache    *redis.Client
	Notifier notify.Notifier
	Audit    approval.AuditSink
	Hasher   security.Hasher
}

type HandlerSet struct {
	log            zerolog.Logger
	cfg            *config.AppConfig
	store          repository.Store
	cache          *redis.Client
	sessions       *session.Registry
	checker        *permission.Checker
	approvals      *approval.Service
	authService    *service.AuthService
	adminService   *service.AdminService
	teamService    *service.TeamService
	catalogService *service.CatalogService
}

func NewHandlerSet(log zerolog.Logger, cfg *config.AppConfig, deps Dependencies) HandlerSet {
	hasher := deps.Hasher
	if hasher == nil {
		hasher = security.NewArgon2Hasher(security.DefaultArgon2Params)
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = notify.NewQueueNotifier(nil, false, log)
	}

	sessions := session.NewRegistry(deps.Store, session.Options{
		TTL:         cfg.Security.SessionTTL,
		MaxSessions: cfg.Security.MaxSessions,
	}, log)
	checker := permission.NewChecker(deps.Store.Users())
	approvals := approval.NewService(deps.Store, deps.Audit, log)

	auth := service.NewAuthService(deps.Store, sessions, hasher, notifier, service.AuthOptions{
		JWTSecret:       cfg.Security.JWTSecret,
		VerificationTTL: cfg.Security.VerificationTTL,
	}, log)

	return HandlerSet{
		log:            log,
		cfg:            cfg,
		store:          deps.Store,
		cache:          deps.Cache,
		sessions:       sessions,
		checker:        checker,
		approvals:      approvals,
		authService:    auth,
		adminService:   service.NewAdminService(deps.Store, approvals, sessions, log),
		teamService:    service.NewTeamService(deps.Store, checker, sessions, hasher, notifier, log),
		catalogService: service.NewCatalogService(deps.Store, checker, log),
	}
}

// Gate is the request gate for the whole engine. Paths on the public list
// pass through untouched.
func (h HandlerSet) Gate() gin.HandlerFunc {
	return middleware.Gate(middleware.GateConfig{
		JWTSecret:  h.cfg.Security.JWTSecret,
		CookieName: h.cfg.Security.CookieName,
	}, h.sessions)
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/signup", h.Signup)
		auth.POST("/signin", h.Signin)
		auth.POST("/signout", h.Signout)
		auth.GET("/verify-email", h.VerifyEmail)
		auth.POST("/verify-email", h.VerifyEmail)
		auth.POST("/resend-verification", h.ResendVerification)
		auth.GET("/me", h.Me)
		auth.GET("/sessions", h.ListSessions)
		auth.POST("/validate-session", h.ValidateSession)
	}

	v1.POST("/permissions/check", h.CheckPermission)

	admin := v1.Group("/admin")
	admin.Use(middleware.RequireMasterAdmin(h.approvals))
	{
		admin.GET("/accounts/pending", h.ListPendingAccounts)
		admin.POST("/accounts/:id/approve", h.ApproveUser)
		admin.POST("/accounts/:id/reject", h.RejectUser)
		admin.POST("/accounts/:id/block", h.BlockUser)
		admin.POST("/accounts/:id/unblock", h.UnblockUser)
		admin.DELETE("/accounts/:id", h.DeleteUser)

		admin.GET("/vendors/pending", h.ListPendingVendors)
		admin.POST("/vendors/:id/approve", h.ApproveVendor)
		admin.POST("/vendors/:id/reject", h.RejectVendor)
		admin.PUT("/vendors/:id/auto-approve", h.ToggleAutoApprove)

		admin.GET("/products/pending", h.ListPendingProducts)
		admin.POST("/products/approve", h.ApproveProducts)
		admin.POST("/products/reject", h.RejectProducts)
	}

	v1.POST("/team/accept", h.AcceptInvite)
	team := v1.Group("/team")
	team.Use(middleware.RequirePermission(h.checker, permission.ModuleTeam))
	{
		team.GET("/members", h.ListTeam)
		team.POST("/invite", h.InviteMember)
		team.PUT("/members/:id/permissions", h.UpdateMemberPermissions)
		team.POST("/members/:id/deactivate", h.DeactivateMember)
	}

	vendors := v1.Group("/vendors")
	vendors.Use(middleware.RequirePermission(h.checker, permission.ModuleVendors))
	{
		vendors.GET("", h.ListVendors)
		vendors.POST("", h.CreateVendor)
	}

	products := v1.Group("/products")
	products.Use(middleware.RequirePermission(h.checker, permission.ModuleInventory))
	{
		products.GET("", h.ListProducts)
		products.POST("", h.CreateProduct)
	}
}
