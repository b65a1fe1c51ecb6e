package apis

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bujia-iot/tg-sms/internal/app/service"
	"github.com/bujia-iot/tg-sms/pkg/constants"
	apperrors "github.com/bujia-iot/tg-sms/pkg/errors"
)

// SmsAPI 短信相关接口
type SmsAPI struct {
	service     *service.SmsService
	sendTimeout time.Duration
}

// NewSmsAPI 创建短信接口
func NewSmsAPI(svc *service.SmsService, sendTimeout time.Duration) *SmsAPI {
	if sendTimeout <= 0 {
		sendTimeout = 30 * time.Second
	}
	return &SmsAPI{service: svc, sendTimeout: sendTimeout}
}

// SendSmsGin 发送短信
// @Summary 发送短信
// @Description 登录网关管理接口并发送一条短信，每次请求使用独立连接
// @Tags sms
// @Accept json
// @Produce json
// @Param request body SendSmsRequest true "短信发送请求"
// @Success 200 {object} StandardResponse
// @Failure 400 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /api/v1/sms/send [post]
func (api *SmsAPI) SendSmsGin(c *gin.Context) {
	var request SendSmsRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse("请求参数错误: "+err.Error(), http.StatusBadRequest))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), api.sendTimeout)
	defer cancel()

	record, err := api.service.Send(ctx, service.SendRequest{
		To:          request.To,
		Message:     request.Message,
		GatewayPort: request.GatewayPort,
	})
	if err != nil {
		status := statusForError(err)
		resp := NewErrorResponse("短信发送失败: "+err.Error(), status)
		resp.Data = record
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, NewStandardResponse(record, "短信已发送", constants.SuccessCode))
}

// GetRecordGin 查询发送记录
// @Summary 查询发送记录
// @Description 按记录ID查询一次发送的结果和诊断日志
// @Tags sms
// @Produce json
// @Param id path string true "记录ID"
// @Success 200 {object} StandardResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/sms/records/{id} [get]
func (api *SmsAPI) GetRecordGin(c *gin.Context) {
	record, err := api.service.GetRecord(c.Request.Context(), c.Param("id"))
	if err != nil {
		status := statusForError(err)
		c.JSON(status, NewErrorResponse(err.Error(), status))
		return
	}
	c.JSON(http.StatusOK, NewStandardResponse(record, constants.SuccessMessage, constants.SuccessCode))
}

// ListRecordsGin 最近的发送记录
// @Summary 最近的发送记录
// @Description 按时间倒序返回最近的发送记录
// @Tags sms
// @Produce json
// @Param limit query int false "返回条数" default(20)
// @Success 200 {object} StandardResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/sms/records [get]
func (api *SmsAPI) ListRecordsGin(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, NewErrorResponse("limit参数错误", http.StatusBadRequest))
			return
		}
		limit = n
	}

	records, err := api.service.RecentRecords(c.Request.Context(), limit)
	if err != nil {
		status := statusForError(err)
		c.JSON(status, NewErrorResponse(err.Error(), status))
		return
	}
	c.JSON(http.StatusOK, NewStandardResponse(records, constants.SuccessMessage, constants.SuccessCode))
}

// GetStatsGin 发送统计
// @Summary 发送统计
// @Description 发送次数、成功次数、按错误码统计的失败次数和平均耗时
// @Tags system
// @Produce json
// @Success 200 {object} StandardResponse
// @Router /api/v1/system/stats [get]
func (api *SmsAPI) GetStatsGin(c *gin.Context) {
	c.JSON(http.StatusOK, NewStandardResponse(api.service.MetricsSummary(), constants.SuccessMessage, constants.SuccessCode))
}

// PingGin 连通性检查
// @Summary 连通性检查
// @Tags system
// @Produce json
// @Success 200 {object} StandardResponse
// @Router /ping [get]
func (api *SmsAPI) PingGin(c *gin.Context) {
	result := map[string]interface{}{
		"message": "pong",
		"time":    time.Now().Unix(),
		"status":  "ok",
	}
	c.JSON(http.StatusOK, NewStandardResponse(result, "pong", constants.SuccessCode))
}

// GetHealthGin 健康检查
// @Summary 健康检查
// @Tags system
// @Produce json
// @Success 200 {object} StandardResponse
// @Router /api/v1/system/health [get]
func (api *SmsAPI) GetHealthGin(c *gin.Context) {
	c.JSON(http.StatusOK, NewStandardResponse(map[string]interface{}{"status": "healthy"}, "ok", constants.SuccessCode))
}

// statusForError 错误码到HTTP状态码的映射
func statusForError(err error) int {
	switch apperrors.CodeOf(err) {
	case apperrors.ErrInvalidParameter, apperrors.ErrNoRecipient:
		return http.StatusBadRequest
	case apperrors.ErrRecordNotFound:
		return http.StatusNotFound
	case apperrors.ErrResolution, apperrors.ErrConnection, apperrors.ErrWrite, apperrors.ErrRead,
		apperrors.ErrProtocolMismatch, apperrors.ErrEmptyResponse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
