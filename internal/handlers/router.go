package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campus-qa/access-control-service/internal/services"
	"github.com/campus-qa/access-control-service/internal/utils"
)

type HandlerManager struct {
	roleHandler    *RoleHandler
	requestHandler *AccessRequestHandler
	trustHandler   *TrustHandler
	flagHandler    *FlagHandler

	serviceManager services.ServiceManager
	gate           gin.HandlerFunc
}

func NewHandlerManager(serviceManager services.ServiceManager, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		roleHandler: NewRoleHandler(
			serviceManager.GetRoleRegistryService(),
			serviceManager.GetModerationGateService(),
			logger,
		),
		requestHandler: NewAccessRequestHandler(
			serviceManager.GetAccessRequestService(),
			serviceManager.GetExportService(),
			logger,
		),
		trustHandler: NewTrustHandler(serviceManager.GetTrustWeightService(), logger),
		flagHandler: NewFlagHandler(
			serviceManager.GetContentFlagService(),
			serviceManager.GetExportService(),
			logger,
		),
		serviceManager: serviceManager,
		gate:           ModerationGateMiddleware(serviceManager.GetModerationGateService(), logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.healthCheck)

	v1 := router.Group("/api/v1")
	{
		// Identity and capability routes
		identities := v1.Group("/identities")
		{
			identities.POST("", hm.roleHandler.RegisterIdentity)
			identities.GET("/:username/capabilities", hm.roleHandler.GetCapabilities)
			identities.POST("/:username/capabilities", hm.roleHandler.GrantCapability)
			identities.DELETE("/:username/capabilities/:capability", hm.roleHandler.RevokeCapability)
			identities.PUT("/:username/restriction", hm.roleHandler.SetRestriction)
			identities.GET("/:username/can-mutate", hm.roleHandler.CanMutate)
		}

		// Access request routes. Submitting goes through the moderation
		// gate; reviewer actions do not.
		requests := v1.Group("/access-requests")
		{
			requests.POST("", hm.gate, hm.requestHandler.SubmitRequest)
			requests.GET("/pending", hm.requestHandler.ListPending)
			requests.GET("/closed", hm.requestHandler.ListClosed)
			requests.GET("/closed/export", hm.requestHandler.ExportClosed)
			requests.GET("/:id", hm.requestHandler.GetRequest)
			requests.POST("/:id/reopen", hm.requestHandler.ReopenRequest)
			requests.PUT("/:id/description", hm.gate, hm.requestHandler.UpdateDescription)
			requests.POST("/close", hm.requestHandler.CloseAccess)
			requests.POST("/approve/:username", hm.requestHandler.ApproveRequest)
			requests.POST("/deny/:username", hm.requestHandler.DenyRequest)
		}

		// Trust weight routes
		trust := v1.Group("/trust")
		{
			trust.PUT("", hm.gate, hm.trustHandler.SetWeight)
			trust.GET("/:truster", hm.trustHandler.ListTrusted)
			trust.GET("/:truster/:trustee", hm.trustHandler.GetWeight)
		}

		// Moderation flag routes
		flags := v1.Group("/flags")
		{
			flags.POST("", hm.gate, hm.flagHandler.FlagContent)
			flags.GET("", hm.flagHandler.ListFlags)
			flags.GET("/unresolved", hm.flagHandler.ListUnresolved)
			flags.GET("/export", hm.flagHandler.ExportFlags)
			flags.POST("/:id/resolve", hm.flagHandler.ResolveFlag)
		}
	}
}

func (hm *HandlerManager) healthCheck(c *gin.Context) {
	if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "unhealthy",
			"error":     err.Error(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "access-control-service",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
