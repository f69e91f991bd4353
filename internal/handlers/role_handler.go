package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campus-qa/access-control-service/internal/models"
	"github.com/campus-qa/access-control-service/internal/services"
	"github.com/campus-qa/access-control-service/internal/utils"
	"github.com/campus-qa/access-control-service/internal/validator"
)

type RoleHandler struct {
	BaseHandler
	roleService services.RoleRegistryService
	gateService services.ModerationGateService
}

func NewRoleHandler(
	roleService services.RoleRegistryService,
	gateService services.ModerationGateService,
	logger utils.Logger,
) *RoleHandler {
	return &RoleHandler{
		BaseHandler: NewBaseHandler(logger),
		roleService: roleService,
		gateService: gateService,
	}
}

// RegisterIdentity seeds an identity row
// @Summary Register identity
// @Tags identities
// @Accept json
// @Produce json
// @Param identity body validator.RegisterIdentityRequest true "Identity data"
// @Success 201 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /identities [post]
func (h *RoleHandler) RegisterIdentity(c *gin.Context) {
	var req validator.RegisterIdentityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Registering identity", "username", req.Username)

	capabilities := make([]models.Capability, 0, len(req.Roles))
	for _, role := range req.Roles {
		capabilities = append(capabilities, models.Capability(role))
	}

	if err := h.roleService.Register(c.Request.Context(), req.Username, capabilities); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{Message: "Identity registered"})
}

// GetCapabilities lists an identity's capabilities
// @Summary Get capabilities
// @Tags identities
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} models.CapabilityListing
// @Failure 404 {object} ErrorResponse
// @Router /identities/{username}/capabilities [get]
func (h *RoleHandler) GetCapabilities(c *gin.Context) {
	username := c.Param("username")
	h.LogRequest(c, "Getting capabilities", "username", username)

	listing, err := h.roleService.CapabilitiesOf(c.Request.Context(), username)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

// GrantCapability adds a capability to an identity
// @Summary Grant capability
// @Tags identities
// @Accept json
// @Produce json
// @Param username path string true "Username"
// @Param capability body validator.GrantCapabilityRequest true "Capability"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /identities/{username}/capabilities [post]
func (h *RoleHandler) GrantCapability(c *gin.Context) {
	username := c.Param("username")

	var req validator.GrantCapabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Granting capability", "username", username, "capability", req.Capability)

	if err := h.roleService.Grant(c.Request.Context(), username, models.Capability(req.Capability)); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Capability granted"})
}

// RevokeCapability removes a capability from an identity
// @Summary Revoke capability
// @Tags identities
// @Produce json
// @Param username path string true "Username"
// @Param capability path string true "Capability"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /identities/{username}/capabilities/{capability} [delete]
func (h *RoleHandler) RevokeCapability(c *gin.Context) {
	username := c.Param("username")
	capability := c.Param("capability")

	h.LogRequest(c, "Revoking capability", "username", username, "capability", capability)

	if err := h.roleService.Revoke(c.Request.Context(), username, models.Capability(capability)); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Capability revoked"})
}

// SetRestriction sets or clears the restriction overlay
// @Summary Set restriction
// @Tags identities
// @Accept json
// @Produce json
// @Param username path string true "Username"
// @Param restriction body validator.SetRestrictedRequest true "Restriction flag"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /identities/{username}/restriction [put]
func (h *RoleHandler) SetRestriction(c *gin.Context) {
	username := c.Param("username")

	var req validator.SetRestrictedRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Restricted == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
		})
		return
	}

	h.LogRequest(c, "Setting restriction", "username", username, "restricted", *req.Restricted)

	if err := h.roleService.SetRestricted(c.Request.Context(), username, *req.Restricted); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Restriction updated"})
}

// CanMutate reports whether an identity may perform mutating actions
// @Summary Check mutation permission
// @Tags identities
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} map[string]bool
// @Failure 404 {object} ErrorResponse
// @Router /identities/{username}/can-mutate [get]
func (h *RoleHandler) CanMutate(c *gin.Context) {
	username := c.Param("username")

	allowed, err := h.gateService.CanMutate(c.Request.Context(), username)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"username": username, "can_mutate": allowed})
}
