package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/artem13815/matcher/api/http/presenter"
	"github.com/artem13815/matcher/pkg/analysis"
	"github.com/artem13815/matcher/pkg/docparse"
	"github.com/artem13815/matcher/pkg/llm/gigachat"
)

type AnalyzeHandler struct {
	uc       analysis.UseCase
	log      *zap.Logger
	maxBytes int64 // лимит на файл резюме в analyze/file
}

func NewAnalyzeHandler(uc analysis.UseCase, log *zap.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{uc: uc, log: log, maxBytes: 15 << 20}
}

// Analyze запускает полный анализ пары вакансия+резюме.
// @Summary Анализ соответствия резюме вакансии
// @Tags    Анализ
// @Accept  json
// @Produce json
// @Param   input body analysis.AnalyzeInput true "Текст вакансии и профиль кандидата"
// @Security BearerAuth
// @Success 200 {object} analysis.Result
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Failure 502 {object} presenter.ErrorResponse
// @Router  /analyze [post]
func (h *AnalyzeHandler) Analyze(c *fiber.Ctx) error {
	var in analysis.AnalyzeInput
	if err := c.BodyParser(&in); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "невалидный JSON")
	}
	actorID, err := actorFromCtx(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, "не удалось определить пользователя")
	}

	out, err := h.uc.Analyze(c.Context(), actorID, in)
	if err != nil {
		return h.mapError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, out)
}

// AnalyzeFile принимает текст вакансии и файл резюме (pdf/docx).
// @Summary Анализ с резюме из файла
// @Tags    Анализ
// @Accept  multipart/form-data
// @Produce json
// @Param   vacancy_text formData string true "Текст вакансии"
// @Param   resume formData file true "Файл резюме (pdf или docx)"
// @Security BearerAuth
// @Success 200 {object} analysis.Result
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Failure 502 {object} presenter.ErrorResponse
// @Router  /analyze/file [post]
func (h *AnalyzeHandler) AnalyzeFile(c *fiber.Ctx) error {
	actorID, err := actorFromCtx(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, "не удалось определить пользователя")
	}
	fileHeader, err := c.FormFile("resume")
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "нужен файл resume")
	}
	if fileHeader.Size > h.maxBytes {
		return presenter.Error(c, http.StatusBadRequest, "файл слишком большой")
	}
	fh, err := fileHeader.Open()
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "не удалось прочитать файл")
	}
	defer fh.Close()
	data, err := io.ReadAll(io.LimitReader(fh, h.maxBytes))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "не удалось прочитать файл")
	}

	resumeText, err := docparse.Text(fileHeader.Filename, data)
	if err != nil {
		if errors.Is(err, docparse.ErrUnsupportedFormat) {
			return presenter.Error(c, http.StatusBadRequest, err.Error())
		}
		return presenter.Error(c, http.StatusBadRequest, "не удалось извлечь текст из файла")
	}

	in := analysis.AnalyzeInput{
		VacancyText: c.FormValue("vacancy_text"),
		Profile:     analysis.Profile{ResumeText: resumeText},
	}
	out, err := h.uc.Analyze(c.Context(), actorID, in)
	if err != nil {
		return h.mapError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, out)
}

// Gap запускает GAP-анализ без численного скоринга.
// @Summary GAP-анализ резюме относительно вакансии
// @Tags    Анализ
// @Accept  json
// @Produce json
// @Param   input body analysis.AnalyzeInput true "Текст вакансии и профиль кандидата"
// @Security BearerAuth
// @Success 200 {object} analysis.GapReport
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Failure 502 {object} presenter.ErrorResponse
// @Router  /analyze/gap [post]
func (h *AnalyzeHandler) Gap(c *fiber.Ctx) error {
	var in analysis.AnalyzeInput
	if err := c.BodyParser(&in); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "невалидный JSON")
	}
	actorID, err := actorFromCtx(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, "не удалось определить пользователя")
	}
	out, err := h.uc.Gap(c.Context(), actorID, in)
	if err != nil {
		return h.mapError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, out)
}

// mapError разводит классы ошибок: ошибка каллера — 400 со своим кодом,
// деградация апстрима — 502, остальное — 500 без деталей.
func (h *AnalyzeHandler) mapError(c *fiber.Ctx, err error) error {
	var vErr analysis.ErrValidation
	if errors.As(err, &vErr) {
		return presenter.Error(c, http.StatusBadRequest, string(vErr))
	}
	var gErr *gigachat.Error
	if errors.As(err, &gErr) {
		h.log.Error("llm upstream failure", zap.String("code", gErr.Code), zap.Error(gErr))
		return presenter.Error(c, http.StatusBadGateway, gErr.Code)
	}
	h.log.Error("analyze failed", zap.Error(err))
	return presenter.Error(c, http.StatusInternalServerError, "внутренняя ошибка")
}

func actorFromCtx(c *fiber.Ctx) (uuid.UUID, error) {
	userIDStr, _ := c.Locals("userId").(string)
	return uuid.Parse(userIDStr)
}
