package handler

import (
	"InsightLedger/internal/pkg/response"
	"InsightLedger/internal/service"

	"github.com/gin-gonic/gin"
)

type SyncHandler struct {
	syncSvc service.SyncService
}

func NewSyncHandler(syncSvc service.SyncService) *SyncHandler {
	return &SyncHandler{
		syncSvc: syncSvc,
	}
}

func (s *SyncHandler) SyncInsights(c *gin.Context) {
	out, err := s.syncSvc.SyncInsights(c.Request.Context(), c.Param("account_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, out)
}

func (s *SyncHandler) SyncDemographics(c *gin.Context) {
	out, err := s.syncSvc.SyncDemographics(c.Request.Context(), c.Param("account_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, out)
}

func (s *SyncHandler) SyncPosts(c *gin.Context) {
	out, err := s.syncSvc.SyncPosts(c.Request.Context(), c.Param("account_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, out)
}

func (s *SyncHandler) SyncAll(c *gin.Context) {
	out, err := s.syncSvc.SyncAll(c.Request.Context(), c.Param("account_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, out)
}

// ListAccounts 已配置的账号
func (s *SyncHandler) ListAccounts(c *gin.Context) {
	response.Success(c, s.syncSvc.Accounts())
}
