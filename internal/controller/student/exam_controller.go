package student

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/Margays/internal/apperr"
	"github.com/lshigami/Margays/internal/auth"
	"github.com/lshigami/Margays/internal/dto"
	"github.com/lshigami/Margays/internal/service"
	"github.com/rs/zerolog/log"
)

type ExamController struct {
	attemptService service.AttemptService
	catalogService service.QuizCatalogService
}

func NewExamController(attemptService service.AttemptService, catalogService service.QuizCatalogService) *ExamController {
	return &ExamController{
		attemptService: attemptService,
		catalogService: catalogService,
	}
}

// ListQuizzes godoc
// @Summary List quizzes available to the caller
// @Description Published quizzes of the student's course whose availability window covers now.
// @Tags Student - Quizzes
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.QuizSummaryDTO
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /quizzes [get]
func (c *ExamController) ListQuizzes(ctx *gin.Context) {
	identity, ok := auth.FromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Missing identity"})
		return
	}
	quizzes, err := c.catalogService.ListAvailableQuizzes(identity)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, quizzes)
}

// GetQuizOverview godoc
// @Summary Get a quiz overview
// @Tags Student - Quizzes
// @Produce json
// @Security BearerAuth
// @Param quiz_id path int true "Quiz ID"
// @Success 200 {object} dto.QuizSummaryDTO
// @Failure 404 {object} dto.ErrorResponse
// @Router /quizzes/{quiz_id} [get]
func (c *ExamController) GetQuizOverview(ctx *gin.Context) {
	identity, ok := auth.FromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Missing identity"})
		return
	}
	quizID, err := parseIDParam(ctx, "quiz_id")
	if err != nil {
		return
	}
	overview, err := c.catalogService.GetQuizOverview(identity, quizID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, overview)
}

// StartExam godoc
// @Summary Start a proctored attempt
// @Description Opens a new attempt on a published quiz within its availability window.
// @Tags Student - Attempts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.StartAttemptRequest true "Quiz to attempt plus optional proctoring metadata"
// @Success 201 {object} dto.AttemptStartedDTO
// @Failure 400 {object} dto.ErrorResponse "Missing or malformed fields"
// @Failure 404 {object} dto.ErrorResponse "Quiz absent or not published"
// @Failure 409 {object} dto.ErrorResponse "Active attempt already exists or quiz not open"
// @Router /exam/start [post]
func (c *ExamController) StartExam(ctx *gin.Context) {
	identity, ok := auth.FromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Missing identity"})
		return
	}
	var req dto.StartAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("StartExam: failed to bind request")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	started, err := c.attemptService.Start(identity, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, started)
}

// GetAttemptQuestions godoc
// @Summary Get the ordered question list for an attempt
// @Description Returns the attempt's questions in quiz order with the answer key stripped.
// @Tags Student - Attempts
// @Produce json
// @Security BearerAuth
// @Param attempt_id path int true "Attempt ID"
// @Success 200 {array} dto.ExamQuestionDTO
// @Failure 403 {object} dto.ErrorResponse "Attempt owned by another student"
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Router /attempts/{attempt_id}/questions [get]
func (c *ExamController) GetAttemptQuestions(ctx *gin.Context) {
	identity, ok := auth.FromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Missing identity"})
		return
	}
	attemptID, err := parseIDParam(ctx, "attempt_id")
	if err != nil {
		return
	}
	questions, err := c.attemptService.GetQuestions(identity, attemptID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, questions)
}

// SubmitAttempt godoc
// @Summary Submit answers and finalize the attempt
// @Description Grades all quiz questions against the answer key and finalizes the attempt atomically.
// @Tags Student - Attempts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param attempt_id path int true "Attempt ID"
// @Param request body dto.SubmitAttemptRequest true "Submitted answers; omitted questions are unanswered"
// @Success 200 {object} dto.SubmissionResultDTO
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Attempt already submitted or blocked"
// @Router /attempts/{attempt_id}/submit [post]
func (c *ExamController) SubmitAttempt(ctx *gin.Context) {
	identity, ok := auth.FromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Missing identity"})
		return
	}
	attemptID, err := parseIDParam(ctx, "attempt_id")
	if err != nil {
		return
	}
	var req dto.SubmitAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Uint("attemptID", attemptID).Msg("SubmitAttempt: failed to bind request")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	result, err := c.attemptService.Submit(identity, attemptID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// BlockAttempt godoc
// @Summary Block an attempt after a proctoring violation
// @Description Terminal transition without grading, recorded with the client-reported reason.
// @Tags Student - Attempts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param attempt_id path int true "Attempt ID"
// @Param request body dto.BlockAttemptRequest true "Violation reason"
// @Success 200 {object} dto.BlockedDTO
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Attempt already finalized"
// @Router /attempts/{attempt_id}/block [post]
func (c *ExamController) BlockAttempt(ctx *gin.Context) {
	identity, ok := auth.FromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Missing identity"})
		return
	}
	attemptID, err := parseIDParam(ctx, "attempt_id")
	if err != nil {
		return
	}
	var req dto.BlockAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	blocked, err := c.attemptService.Block(identity, attemptID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, blocked)
}

// GetAttemptResult godoc
// @Summary Get the graded detail of a finalized attempt
// @Tags Student - Attempts
// @Produce json
// @Security BearerAuth
// @Param attempt_id path int true "Attempt ID"
// @Success 200 {object} dto.AttemptResultDTO
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Attempt still in progress"
// @Router /attempts/{attempt_id}/result [get]
func (c *ExamController) GetAttemptResult(ctx *gin.Context) {
	identity, ok := auth.FromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Missing identity"})
		return
	}
	attemptID, err := parseIDParam(ctx, "attempt_id")
	if err != nil {
		return
	}
	result, err := c.attemptService.GetResult(identity, attemptID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

func parseIDParam(ctx *gin.Context, name string) (uint, error) {
	raw := ctx.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid " + name + " format"})
		return 0, err
	}
	return uint(id), nil
}

// respondError maps the error taxonomy to HTTP statuses. Internal causes are
// logged here and never serialized.
func respondError(ctx *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindForbidden:
		status = http.StatusForbidden
	case apperr.KindConflict:
		status = http.StatusConflict
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindInternal:
		log.Error().Err(err).Str("path", ctx.FullPath()).Msg("Internal error handling request")
	}
	ctx.JSON(status, dto.ErrorResponse{Message: apperr.MessageOf(err)})
}
