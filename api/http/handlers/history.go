package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/artem13815/matcher/api/http/presenter"
	"github.com/artem13815/matcher/pkg/analysis"
	"github.com/artem13815/matcher/pkg/stats"
)

type HistoryHandler struct {
	repo     analysis.Repository
	counter  stats.Counter
	log      *zap.Logger
	defLimit int
	maxLimit int
}

func NewHistoryHandler(repo analysis.Repository, counter stats.Counter, log *zap.Logger, defLimit, maxLimit int) *HistoryHandler {
	return &HistoryHandler{repo: repo, counter: counter, log: log, defLimit: defLimit, maxLimit: maxLimit}
}

// List возвращает историю запросов текущего пользователя.
// @Summary История запросов пользователя
// @Tags    История
// @Produce json
// @Param   limit query int false "Лимит (по умолчанию 20, максимум 100)"
// @Param   offset query int false "Смещение"
// @Security BearerAuth
// @Success 200 {array} analysis.Request
// @Failure 401 {object} presenter.ErrorResponse
// @Router  /history [get]
func (h *HistoryHandler) List(c *fiber.Ctx) error {
	actorID, err := actorFromCtx(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, "не удалось определить пользователя")
	}
	limit, offset := parseLimitOffset(c, h.defLimit, h.maxLimit)
	items, err := h.repo.ListByUser(c.Context(), actorID, limit, offset)
	if err != nil {
		h.log.Error("history list failed", zap.Error(err))
		return presenter.Error(c, http.StatusInternalServerError, "не удалось получить историю")
	}
	return presenter.JSON(c, http.StatusOK, items)
}

// AdminList возвращает историю всех пользователей, опционально по одному user_id.
// @Summary История запросов (админ)
// @Tags    Админ
// @Produce json
// @Param   user_id query string false "Фильтр по пользователю (UUID)"
// @Param   limit query int false "Лимит (по умолчанию 20, максимум 100)"
// @Param   offset query int false "Смещение"
// @Security BearerAuth
// @Success 200 {array} analysis.Request
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 403 {object} presenter.ErrorResponse
// @Router  /admin/history [get]
func (h *HistoryHandler) AdminList(c *fiber.Ctx) error {
	if isAdmin, _ := c.Locals("isAdmin").(bool); !isAdmin {
		return presenter.Error(c, http.StatusForbidden, "нужны права администратора")
	}
	var userID *uuid.UUID
	if v := strings.TrimSpace(c.Query("user_id")); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return presenter.Error(c, http.StatusBadRequest, "невалидный user_id")
		}
		userID = &id
	}
	limit, offset := parseLimitOffset(c, h.defLimit, h.maxLimit)
	items, err := h.repo.ListAll(c.Context(), userID, limit, offset)
	if err != nil {
		h.log.Error("admin history list failed", zap.Error(err))
		return presenter.Error(c, http.StatusInternalServerError, "не удалось получить историю")
	}
	return presenter.JSON(c, http.StatusOK, items)
}

// AdminStats возвращает сводку счётчиков.
// @Summary Счётчики запросов (админ)
// @Tags    Админ
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]int64
// @Failure 403 {object} presenter.ErrorResponse
// @Router  /admin/stats [get]
func (h *HistoryHandler) AdminStats(c *fiber.Ctx) error {
	if isAdmin, _ := c.Locals("isAdmin").(bool); !isAdmin {
		return presenter.Error(c, http.StatusForbidden, "нужны права администратора")
	}
	snapshot, err := h.counter.Snapshot(c.Context())
	if err != nil {
		h.log.Error("stats snapshot failed", zap.Error(err))
		return presenter.Error(c, http.StatusInternalServerError, "не удалось получить статистику")
	}
	return presenter.JSON(c, http.StatusOK, snapshot)
}
