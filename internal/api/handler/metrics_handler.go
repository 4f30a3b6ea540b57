package handler

import (
	"InsightLedger/internal/api/dto"
	"InsightLedger/internal/pkg/consts"
	"InsightLedger/internal/pkg/response"
	"InsightLedger/internal/pkg/util"
	"InsightLedger/internal/service"
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

type MetricsHandler struct {
	trendSvc service.TrendService
}

func NewMetricsHandler(trendSvc service.TrendService) *MetricsHandler {
	return &MetricsHandler{
		trendSvc: trendSvc,
	}
}

func (s *MetricsHandler) GetAccountTrend(c *gin.Context) {
	query, ok := bindTrendQuery(c, consts.TrendDays7)
	if !ok {
		return
	}
	trend, err := s.trendSvc.GetAccountTrend(c.Request.Context(), c.Param("account_id"), query.Days)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, trend)
}

func (s *MetricsHandler) GetPostTrend(c *gin.Context) {
	query, ok := bindTrendQuery(c, consts.TrendDays7)
	if !ok {
		return
	}
	trend, err := s.trendSvc.GetPostTrend(c.Request.Context(), c.Param("account_id"), c.Param("post_id"), query.Days)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, trend)
}

// ExportAccount 导出账号每日增量 CSV
func (s *MetricsHandler) ExportAccount(c *gin.Context) {
	query, ok := bindTrendQuery(c, consts.TrendDays30)
	if !ok {
		return
	}
	accountID := c.Param("account_id")

	var buf bytes.Buffer
	if err := s.trendSvc.ExportAccountCSV(c.Request.Context(), accountID, query.Days, &buf); err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="account_%s_%dd.csv"`, accountID, query.Days))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func bindTrendQuery(c *gin.Context, defaultDays int) (*dto.TrendQueryDTO, bool) {
	query := dto.TrendQueryDTO{Days: defaultDays}
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Fail(c, response.BadRequest, service.ErrParamInvalid.Error())
		return nil, false
	}
	if err := util.ValidateDTO(&query); err != nil {
		response.Fail(c, response.BadRequest, err.Error())
		return nil, false
	}
	return &query, true
}
