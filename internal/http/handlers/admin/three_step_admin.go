package admin

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/wellnest-next/internal/constants"
	"github.com/wellnest-next/internal/http/response"
	"github.com/wellnest-next/internal/models"
	"github.com/wellnest-next/internal/repository"
	"github.com/wellnest-next/internal/service"

	"github.com/gin-gonic/gin"
)

// StepProgressView 管理端流程进度视图
type StepProgressView struct {
	ID                uint       `json:"id"`
	Identifier        string     `json:"identifier"`
	UserID            *uint      `json:"user_id,omitempty"`
	State             string     `json:"state"`
	EmailVerifiedAt   *time.Time `json:"email_verified_at,omitempty"`
	ReportGeneratedAt *time.Time `json:"report_generated_at,omitempty"`
	DecryptUnlockedAt *time.Time `json:"decrypt_unlocked_at,omitempty"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// GetThreeStepProgressList 获取三步验证进度列表 (Admin)
func (h *Handler) GetThreeStepProgressList(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.StepProgressListFilter{
		Page:       page,
		PageSize:   pageSize,
		Identifier: strings.TrimSpace(c.Query("identifier")),
	}
	if from, err := time.Parse(time.RFC3339, c.Query("updated_from")); err == nil {
		filter.UpdatedFrom = &from
	}
	if to, err := time.Parse(time.RFC3339, c.Query("updated_to")); err == nil {
		filter.UpdatedTo = &to
	}

	rows, total, err := h.ThreeStepService.ListProgress(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}

	views := make([]StepProgressView, 0, len(rows))
	for i := range rows {
		views = append(views, buildStepProgressView(&rows[i]))
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, views, pagination)
}

// GetThreeStepProgress 查询单个标识符的流程进度 (Admin)
func (h *Handler) GetThreeStepProgress(c *gin.Context) {
	identifier := strings.TrimSpace(c.Query("identifier"))
	if identifier == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	progress, err := h.ThreeStepService.GetProgress(identifier)
	if err != nil {
		if errors.Is(err, service.ErrInvalidEmail) {
			respondError(c, response.CodeBadRequest, "error.email_invalid", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	if progress == nil {
		response.Success(c, gin.H{
			"identifier": identifier,
			"state":      constants.StepStateUnstarted,
		})
		return
	}

	h.recordThreeStepAudit(c, constants.AuditActionProgressInspect, progress.Identifier)
	response.Success(c, buildStepProgressView(progress))
}

// PurgeThreeStepRequest 手工清理请求
// identifier 为空时执行全量过期清理。
type PurgeThreeStepRequest struct {
	Identifier string `json:"identifier"`
}

// PurgeThreeStep 手工清理三步验证状态 (Admin)
// 指定标识符时删除其进度记录（下一轮从头开始）；未指定时按保留期清理
// 过期验证码与滞留进度。
func (h *Handler) PurgeThreeStep(c *gin.Context) {
	var req PurgeThreeStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	identifier := strings.TrimSpace(req.Identifier)
	if identifier != "" {
		if err := h.ThreeStepService.PurgeIdentifier(identifier); err != nil {
			if errors.Is(err, service.ErrInvalidEmail) {
				respondError(c, response.CodeBadRequest, "error.email_invalid", nil)
				return
			}
			respondError(c, response.CodeInternal, "error.internal", err)
			return
		}
		h.recordThreeStepAudit(c, constants.AuditActionThreeStepPurge, identifier)
		response.Success(c, gin.H{"purged_identifier": identifier})
		return
	}

	codes, err := h.OtpService.PurgeExpired(0)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	progress, err := h.ThreeStepService.PurgeStale(0)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	artifacts, err := h.ReportService.PurgeArtifacts(0)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}

	h.recordThreeStepAudit(c, constants.AuditActionThreeStepPurge, "")
	response.Success(c, gin.H{
		"purged_codes":     codes,
		"purged_progress":  progress,
		"purged_artifacts": artifacts,
	})
}

func (h *Handler) recordThreeStepAudit(c *gin.Context, action, identifier string) {
	if h.AuthzAuditService == nil {
		return
	}
	var adminID uint
	if value, ok := c.Get("admin_id"); ok {
		if id, ok := value.(uint); ok {
			adminID = id
		}
	}
	detail := models.JSON{}
	if identifier != "" {
		detail["identifier"] = identifier
	}
	if err := h.AuthzAuditService.Record(service.AuthzAuditRecordInput{
		OperatorAdminID:  adminID,
		OperatorUsername: getAdminUsername(c),
		Action:           action,
		Method:           c.Request.Method,
		Object:           c.FullPath(),
		RequestID:        getRequestID(c),
		Detail:           detail,
	}); err != nil {
		requestLog(c).Warnw("three_step_audit_record_failed", "action", action, "error", err)
	}
}

func buildStepProgressView(progress *models.StepProgress) StepProgressView {
	return StepProgressView{
		ID:                progress.ID,
		Identifier:        progress.Identifier,
		UserID:            progress.UserID,
		State:             progress.State(),
		EmailVerifiedAt:   progress.EmailVerifiedAt,
		ReportGeneratedAt: progress.ReportGeneratedAt,
		DecryptUnlockedAt: progress.DecryptUnlockedAt,
		UpdatedAt:         progress.UpdatedAt,
	}
}
