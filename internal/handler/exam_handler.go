package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/primeivy/portal-backend/internal/middleware"
	"github.com/primeivy/portal-backend/internal/model"
	"github.com/primeivy/portal-backend/internal/response"
	"github.com/primeivy/portal-backend/internal/service"
	"github.com/primeivy/portal-backend/internal/source"
	"github.com/primeivy/portal-backend/internal/validator"
)

// ExamHandler exposes the exam-taking flow: the paper, session state,
// responses, flags, navigation, module submission, and the score report.
type ExamHandler struct {
	examService    *service.ExamService
	sessionService *service.SessionService
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(examService *service.ExamService, sessionService *service.SessionService) *ExamHandler {
	return &ExamHandler{
		examService:    examService,
		sessionService: sessionService,
	}
}

// GetPaper godoc
// GET /api/v1/exam/paper
// Returns the full exam paper with answer keys stripped.
func (h *ExamHandler) GetPaper(c *gin.Context) {
	paper, err := h.examService.Paper()
	if err != nil {
		h.failExamError(c, err)
		return
	}
	response.Success(c, http.StatusOK, paper)
}

// StartOrResume godoc
// POST /api/v1/exam/session
// Starts a new attempt, or returns the running one.
func (h *ExamHandler) StartOrResume(c *gin.Context) {
	view, err := h.sessionService.StartOrResume(h.username(c))
	if err != nil {
		h.failExamError(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// GetState godoc
// GET /api/v1/exam/session
// Returns the current session state.
func (h *ExamHandler) GetState(c *gin.Context) {
	view, err := h.sessionService.View(h.username(c))
	if err != nil {
		h.failSessionError(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// SubmitResponse godoc
// PUT /api/v1/exam/session/responses
// Records an answer; an empty value clears the stored response.
func (h *ExamHandler) SubmitResponse(c *gin.Context) {
	var req model.SubmitResponseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	view, err := h.sessionService.SubmitResponse(
		h.username(c),
		model.ModuleID(req.Module),
		*req.Index,
		model.QuestionType(req.Type),
		req.Value,
	)
	if err != nil {
		if errors.Is(err, service.ErrInvalidModule) {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
			return
		}
		h.failSessionError(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// ToggleFlag godoc
// POST /api/v1/exam/session/flags
// Toggles mark-for-review on a question of the current module.
func (h *ExamHandler) ToggleFlag(c *gin.Context) {
	var req model.ToggleFlagRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	view, err := h.sessionService.ToggleFlag(h.username(c), *req.Index)
	if err != nil {
		h.failSessionError(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// Navigate godoc
// POST /api/v1/exam/session/navigate
// Jumps to a question of the current module. Out-of-range indices are a
// silent no-op; the returned state is authoritative.
func (h *ExamHandler) Navigate(c *gin.Context) {
	var req model.NavigateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	view, err := h.sessionService.NavigateTo(h.username(c), *req.Index)
	if err != nil {
		h.failSessionError(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// Advance godoc
// POST /api/v1/exam/session/advance
// Moves to the next question, or into review after the module's last.
func (h *ExamHandler) Advance(c *gin.Context) {
	view, err := h.sessionService.Advance(h.username(c))
	if err != nil {
		h.failSessionError(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// Back godoc
// POST /api/v1/exam/session/back
// Moves to the previous question.
func (h *ExamHandler) Back(c *gin.Context) {
	view, err := h.sessionService.Back(h.username(c))
	if err != nil {
		h.failSessionError(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// Review godoc
// POST /api/v1/exam/session/review
// Opens the current module's review grid.
func (h *ExamHandler) Review(c *gin.Context) {
	view, err := h.sessionService.GoToReview(h.username(c))
	if err != nil {
		h.failSessionError(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// SubmitModule godoc
// POST /api/v1/exam/session/submit-module
// Completes the current module from review.
func (h *ExamHandler) SubmitModule(c *gin.Context) {
	view, err := h.sessionService.SubmitModule(h.username(c))
	if err != nil {
		h.failSessionError(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// Resume godoc
// POST /api/v1/exam/session/resume
// Ends the break early and starts module 3.
func (h *ExamHandler) Resume(c *gin.Context) {
	view, err := h.sessionService.ResumeFromBreak(h.username(c))
	if err != nil {
		h.failSessionError(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// Retake godoc
// POST /api/v1/exam/session/retake
// Clears the whole attempt and restarts at module 1.
func (h *ExamHandler) Retake(c *gin.Context) {
	view, err := h.sessionService.Retake(h.username(c))
	if err != nil {
		h.failSessionError(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// GetReport godoc
// GET /api/v1/exam/report
// Scores the finished attempt and returns the full report.
func (h *ExamHandler) GetReport(c *gin.Context) {
	report, err := h.sessionService.Report(h.username(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExamNotFinished):
			response.Fail(c, http.StatusConflict, response.ErrExamNotFinished)
		case errors.Is(err, source.ErrAnswerKeyMissing):
			response.Fail(c, http.StatusConflict, response.ErrAnswerKeyMissing)
		default:
			h.failSessionError(c, err)
		}
		return
	}
	response.Success(c, http.StatusOK, report)
}

// GetHistory godoc
// GET /api/v1/exam/history?limit=20
// Returns the user's persisted score summaries, newest first.
func (h *ExamHandler) GetHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	results, err := h.sessionService.History(c.Request.Context(), h.username(c), limit)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"results": results})
}

// ────────────────────────────────────────────────────────────────────────────
// Internal helpers
// ────────────────────────────────────────────────────────────────────────────

func (h *ExamHandler) username(c *gin.Context) string {
	claims := middleware.GetClaims(c)
	if claims == nil {
		return ""
	}
	return claims.Username
}

func (h *ExamHandler) failSessionError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrNoActiveAttempt) {
		response.Fail(c, http.StatusNotFound, response.ErrNoActiveAttempt)
		return
	}
	h.failExamError(c, err)
}

func (h *ExamHandler) failExamError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, source.ErrNoQuestions), errors.Is(err, source.ErrQuestionsSheetMissing):
		response.Fail(c, http.StatusServiceUnavailable, response.ErrNoQuestions)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
