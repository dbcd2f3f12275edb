package admin

import (
	"strconv"
	"strings"
	"time"

	"github.com/wellnest-next/internal/http/response"
	"github.com/wellnest-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetAuthzAuditLogs 获取权限审计日志列表 (Admin)
func (h *Handler) GetAuthzAuditLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.AuthzAuditLogListFilter{
		Page:     page,
		PageSize: pageSize,
		Action:   strings.TrimSpace(c.Query("action")),
		Role:     strings.TrimSpace(c.Query("role")),
		Object:   strings.TrimSpace(c.Query("object")),
		Method:   strings.TrimSpace(c.Query("method")),
	}
	if operatorID, err := strconv.ParseUint(c.Query("operator_admin_id"), 10, 64); err == nil {
		filter.OperatorAdminID = uint(operatorID)
	}
	if targetID, err := strconv.ParseUint(c.Query("target_admin_id"), 10, 64); err == nil {
		filter.TargetAdminID = uint(targetID)
	}
	if from, err := time.Parse(time.RFC3339, c.Query("created_from")); err == nil {
		filter.CreatedFrom = &from
	}
	if to, err := time.Parse(time.RFC3339, c.Query("created_to")); err == nil {
		filter.CreatedTo = &to
	}

	logs, total, err := h.AuthzAuditService.ListForAdmin(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, logs, pagination)
}
