package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/middleware"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/models"
	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/service"
)

// validPermissions adapts service.ValidatePermissions to a validation rule.
var validPermissions = validation.By(func(value interface{}) error {
	perms, _ := value.(models.Permissions)
	return service.ValidatePermissions(perms)
})

func (h HandlerSet) ListTeam(c *gin.Context) {
	members, err := h.teamService.List(c.Request.Context(), middleware.PrincipalID(c))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	items := make([]memberResponse, 0, len(members))
	for _, m := range members {
		items = append(items, toMember(m))
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type inviteRequest struct {
	Email       string             `json:"email"`
	Name        string             `json:"name"`
	Permissions models.Permissions `json:"permissions"`
}

func (r *inviteRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Name, validation.Length(0, 200)),
		validation.Field(&r.Permissions, validPermissions),
	)
}

func (h HandlerSet) InviteMember(c *gin.Context) {
	var req inviteRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.teamService.Invite(c.Request.Context(), middleware.PrincipalID(c), service.InviteInput{
		Email:       req.Email,
		Name:        req.Name,
		Permissions: req.Permissions,
	})
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	resp := gin.H{"member": toMember(result.Member), "emailSkipped": result.Email.Skipped}
	if result.Email.Warning != "" {
		resp["warning"] = result.Email.Warning
	}
	c.JSON(http.StatusCreated, resp)
}

type acceptRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (r *acceptRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Token, validation.Required, validation.Length(1, 256)),
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.Name, validation.Length(0, 200)),
	)
}

func (h HandlerSet) AcceptInvite(c *gin.Context) {
	var req acceptRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.teamService.Accept(c.Request.Context(), service.AcceptInput{
		Token:    req.Token,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": toUser(user)})
}

type permissionsRequest struct {
	Permissions models.Permissions `json:"permissions"`
}

func (r *permissionsRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Permissions, validation.NotNil, validPermissions),
	)
}

func (h HandlerSet) UpdateMemberPermissions(c *gin.Context) {
	var req permissionsRequest
	if !bindJSON(c, &req) {
		return
	}

	member, err := h.teamService.UpdatePermissions(c.Request.Context(), middleware.PrincipalID(c), c.Param("id"), req.Permissions)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"member": toMember(member)})
}

func (h HandlerSet) DeactivateMember(c *gin.Context) {
	member, err := h.teamService.Deactivate(c.Request.Context(), middleware.PrincipalID(c), c.Param("id"))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"member": toMember(member)})
}
