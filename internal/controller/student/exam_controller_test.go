package student

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/Margays/internal/auth"
	"github.com/lshigami/Margays/internal/dto"
	"github.com/lshigami/Margays/internal/model"
	"github.com/lshigami/Margays/internal/repository"
	"github.com/lshigami/Margays/internal/service"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	db     *gorm.DB
	router *gin.Engine
	tokens *auth.TokenService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:ctrl_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&model.Quiz{}, &model.Question{}, &model.QuizQuestion{},
		&model.ExamAttempt{}, &model.AttemptResult{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	quizRepo := repository.NewQuizRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)
	resultRepo := repository.NewResultRepository(db)

	attemptSvc := service.NewAttemptService(quizRepo, questionRepo, attemptRepo, resultRepo, service.NewGradingService(), db)
	catalogSvc := service.NewQuizCatalogService(quizRepo)
	ctrl := NewExamController(attemptSvc, catalogSvc)

	tokens := auth.NewTokenService("controller-test-secret")
	router := gin.New()
	api := router.Group("/api/v1")
	api.Use(auth.Middleware(tokens))
	{
		api.GET("/quizzes", ctrl.ListQuizzes)
		api.GET("/quizzes/:quiz_id", ctrl.GetQuizOverview)
		api.POST("/exam/start", ctrl.StartExam)
		api.GET("/attempts/:attempt_id/questions", ctrl.GetAttemptQuestions)
		api.POST("/attempts/:attempt_id/submit", ctrl.SubmitAttempt)
		api.POST("/attempts/:attempt_id/block", ctrl.BlockAttempt)
		api.GET("/attempts/:attempt_id/result", ctrl.GetAttemptResult)
	}

	return &testEnv{db: db, router: router, tokens: tokens}
}

func (e *testEnv) token(t *testing.T, identity auth.Identity) string {
	t.Helper()
	token, err := e.tokens.Issue(identity, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) seedQuiz(t *testing.T, status string) model.Quiz {
	t.Helper()
	quiz := model.Quiz{Title: "Unit Quiz", CourseID: 7, TimeLimitMinutes: 20, Status: status}
	if err := e.db.Create(&quiz).Error; err != nil {
		t.Fatalf("seed quiz: %v", err)
	}
	options := []string{"B", "A", "C"}
	marks := []float64{2, 3, 5}
	for i := range options {
		q := model.Question{Text: fmt.Sprintf("Q%d", i+1), CorrectOption: options[i], Marks: marks[i]}
		if err := e.db.Create(&q).Error; err != nil {
			t.Fatalf("seed question: %v", err)
		}
		link := model.QuizQuestion{QuizID: quiz.ID, QuestionID: q.ID, QuestionOrder: i + 1}
		if err := e.db.Create(&link).Error; err != nil {
			t.Fatalf("seed link: %v", err)
		}
	}
	return quiz
}

var studentIdentity = auth.Identity{StudentID: 42, Role: "student", CourseID: 7}
var intruderIdentity = auth.Identity{StudentID: 99, Role: "student", CourseID: 7}

func TestRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)
	rec := env.request(t, http.MethodGet, "/api/v1/quizzes", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 without token", rec.Code)
	}
}

func TestStartExamFlow(t *testing.T) {
	env := newTestEnv(t)
	quiz := env.seedQuiz(t, model.QuizStatusPublished)
	token := env.token(t, studentIdentity)

	rec := env.request(t, http.MethodPost, "/api/v1/exam/start", token, dto.StartAttemptRequest{QuizID: quiz.ID})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var started dto.AttemptStartedDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &started); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if started.QuizTitle != "Unit Quiz" || started.TimeLimitMinutes != 20 {
		t.Errorf("started = %+v, want title and timer", started)
	}

	// Duplicate start maps to 409.
	rec = env.request(t, http.MethodPost, "/api/v1/exam/start", token, dto.StartAttemptRequest{QuizID: quiz.ID})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate start status = %d, want 409", rec.Code)
	}
}

func TestStartExamValidation(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, studentIdentity)

	rec := env.request(t, http.MethodPost, "/api/v1/exam/start", token, map[string]interface{}{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing quiz_id status = %d, want 400", rec.Code)
	}

	rec = env.request(t, http.MethodPost, "/api/v1/exam/start", token, dto.StartAttemptRequest{QuizID: 98765})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown quiz status = %d, want 404", rec.Code)
	}
}

func TestStartDraftQuizIs404(t *testing.T) {
	env := newTestEnv(t)
	quiz := env.seedQuiz(t, model.QuizStatusDraft)
	token := env.token(t, studentIdentity)

	rec := env.request(t, http.MethodPost, "/api/v1/exam/start", token, dto.StartAttemptRequest{QuizID: quiz.ID})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for draft quiz", rec.Code)
	}
}

func TestQuestionsNeverIncludeAnswerKey(t *testing.T) {
	env := newTestEnv(t)
	quiz := env.seedQuiz(t, model.QuizStatusPublished)
	token := env.token(t, studentIdentity)

	rec := env.request(t, http.MethodPost, "/api/v1/exam/start", token, dto.StartAttemptRequest{QuizID: quiz.ID})
	var started dto.AttemptStartedDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &started); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec = env.request(t, http.MethodGet, fmt.Sprintf("/api/v1/attempts/%d/questions", started.AttemptID), token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "correct_option") {
		t.Error("question payload leaked the answer key")
	}

	var questions []dto.ExamQuestionDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &questions); err != nil {
		t.Fatalf("decode questions: %v", err)
	}
	if len(questions) != 3 {
		t.Fatalf("question count = %d, want 3", len(questions))
	}
}

func TestOwnershipStatusCodes(t *testing.T) {
	env := newTestEnv(t)
	quiz := env.seedQuiz(t, model.QuizStatusPublished)
	owner := env.token(t, studentIdentity)
	intruder := env.token(t, intruderIdentity)

	rec := env.request(t, http.MethodPost, "/api/v1/exam/start", owner, dto.StartAttemptRequest{QuizID: quiz.ID})
	var started dto.AttemptStartedDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &started); err != nil {
		t.Fatalf("decode: %v", err)
	}

	questionsPath := fmt.Sprintf("/api/v1/attempts/%d/questions", started.AttemptID)
	if rec := env.request(t, http.MethodGet, questionsPath, intruder, nil); rec.Code != http.StatusForbidden {
		t.Errorf("foreign questions status = %d, want 403", rec.Code)
	}
	submitPath := fmt.Sprintf("/api/v1/attempts/%d/submit", started.AttemptID)
	if rec := env.request(t, http.MethodPost, submitPath, intruder, dto.SubmitAttemptRequest{}); rec.Code != http.StatusForbidden {
		t.Errorf("foreign submit status = %d, want 403", rec.Code)
	}
	blockPath := fmt.Sprintf("/api/v1/attempts/%d/block", started.AttemptID)
	if rec := env.request(t, http.MethodPost, blockPath, intruder, dto.BlockAttemptRequest{Reason: "x"}); rec.Code != http.StatusForbidden {
		t.Errorf("foreign block status = %d, want 403", rec.Code)
	}
	if rec := env.request(t, http.MethodGet, "/api/v1/attempts/424242/questions", owner, nil); rec.Code != http.StatusNotFound {
		t.Errorf("missing attempt status = %d, want 404", rec.Code)
	}
}

func TestSubmitAndResultFlow(t *testing.T) {
	env := newTestEnv(t)
	quiz := env.seedQuiz(t, model.QuizStatusPublished)
	token := env.token(t, studentIdentity)

	rec := env.request(t, http.MethodPost, "/api/v1/exam/start", token, dto.StartAttemptRequest{QuizID: quiz.ID})
	var started dto.AttemptStartedDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &started); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec = env.request(t, http.MethodGet, fmt.Sprintf("/api/v1/attempts/%d/questions", started.AttemptID), token, nil)
	var questions []dto.ExamQuestionDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &questions); err != nil {
		t.Fatalf("decode questions: %v", err)
	}

	submitPath := fmt.Sprintf("/api/v1/attempts/%d/submit", started.AttemptID)
	rec = env.request(t, http.MethodPost, submitPath, token, dto.SubmitAttemptRequest{
		Answers: []dto.AnswerEntry{
			{QuestionID: questions[0].QuestionID, Answer: "b"},
			{QuestionID: questions[1].QuestionID, Answer: "b"},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("submit status = %d: %s", rec.Code, rec.Body.String())
	}
	var result dto.SubmissionResultDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.TotalScore != 2 || result.CorrectCount != 1 {
		t.Errorf("result = %+v, want score 2 with 1 correct", result)
	}

	// Re-submitting a terminal attempt maps to 409.
	rec = env.request(t, http.MethodPost, submitPath, token, dto.SubmitAttemptRequest{})
	if rec.Code != http.StatusConflict {
		t.Errorf("second submit status = %d, want 409", rec.Code)
	}

	rec = env.request(t, http.MethodGet, fmt.Sprintf("/api/v1/attempts/%d/result", started.AttemptID), token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("result status = %d: %s", rec.Code, rec.Body.String())
	}
	var detail dto.AttemptResultDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decode detail: %v", err)
	}
	if detail.Status != model.AttemptStatusSubmitted || len(detail.Questions) != 3 {
		t.Errorf("detail = %+v, want submitted with 3 question rows", detail)
	}
}

func TestBlockFlow(t *testing.T) {
	env := newTestEnv(t)
	quiz := env.seedQuiz(t, model.QuizStatusPublished)
	token := env.token(t, studentIdentity)

	rec := env.request(t, http.MethodPost, "/api/v1/exam/start", token, dto.StartAttemptRequest{QuizID: quiz.ID})
	var started dto.AttemptStartedDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &started); err != nil {
		t.Fatalf("decode: %v", err)
	}

	blockPath := fmt.Sprintf("/api/v1/attempts/%d/block", started.AttemptID)
	rec = env.request(t, http.MethodPost, blockPath, token, dto.BlockAttemptRequest{Reason: "left fullscreen"})
	if rec.Code != http.StatusOK {
		t.Fatalf("block status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.request(t, http.MethodPost, blockPath, token, dto.BlockAttemptRequest{Reason: "left fullscreen"})
	if rec.Code != http.StatusConflict {
		t.Errorf("double block status = %d, want 409", rec.Code)
	}

	rec = env.request(t, http.MethodPost, blockPath, token, map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing reason status = %d, want 400", rec.Code)
	}
}

func TestCatalogEndpoints(t *testing.T) {
	env := newTestEnv(t)
	published := env.seedQuiz(t, model.QuizStatusPublished)
	env.seedQuiz(t, model.QuizStatusDraft)
	token := env.token(t, studentIdentity)

	rec := env.request(t, http.MethodGet, "/api/v1/quizzes", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d: %s", rec.Code, rec.Body.String())
	}
	var quizzes []dto.QuizSummaryDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &quizzes); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(quizzes) != 1 || quizzes[0].ID != published.ID {
		t.Errorf("catalog = %+v, want only the published quiz", quizzes)
	}
	if quizzes[0].QuestionCount != 3 {
		t.Errorf("question count = %d, want 3", quizzes[0].QuestionCount)
	}

	// A student from another course sees nothing.
	foreign := env.token(t, auth.Identity{StudentID: 7, Role: "student", CourseID: 12})
	rec = env.request(t, http.MethodGet, fmt.Sprintf("/api/v1/quizzes/%d", published.ID), foreign, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("foreign course overview status = %d, want 404", rec.Code)
	}
}
