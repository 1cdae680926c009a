package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"

	"github.com/agenthands/vynda/internal/config"
	"github.com/agenthands/vynda/internal/core/analysis"
	"github.com/agenthands/vynda/internal/core/consult"
	"github.com/agenthands/vynda/internal/core/model"
	"github.com/agenthands/vynda/internal/core/precedent"
	"github.com/agenthands/vynda/internal/core/probability"
	"github.com/agenthands/vynda/internal/core/schedule"
	"github.com/agenthands/vynda/internal/core/session"
	"github.com/agenthands/vynda/internal/core/upload"
	"github.com/agenthands/vynda/internal/llm"
)

type Server struct {
	Analyzer       *analysis.Analyzer
	Consultant     *consult.Consultant
	Sessions       *session.Store
	Logger         *slog.Logger
	MaxUploadBytes int64
}

// NewServer wires the analysis and chat providers and an empty session store.
// Without a usable provider the server runs on simulated analyses.
func NewServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	llmClient, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM client: %w", err)
	}
	if llmClient == nil {
		logger.Warn("no LLM provider configured, analyses will be simulated", "provider", cfg.LLM.Provider)
	} else {
		logger.Info("LLM provider ready", "provider", cfg.LLM.Provider, "model", cfg.LLM.Model)
	}

	clock := clockwork.NewRealClock()
	store := session.NewStore(
		schedule.New(clock),
		probability.OptionsFromConfig(cfg.Probability),
		clock,
		logger,
	)

	return &Server{
		Analyzer:       analysis.NewAnalyzer(llmClient, cfg.Analysis, cfg.Prompts, clock, logger),
		Consultant:     consult.NewConsultant(llmClient, cfg.Chat, cfg.Prompts, clock, logger),
		Sessions:       store,
		Logger:         logger,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
	}, nil
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.GET("/healthz", s.Health)

	cases := r.Group("/cases")
	cases.POST("", s.CreateCase)
	cases.POST("/demo", s.CreateDemo)
	cases.GET("/:id", s.GetCase)
	cases.DELETE("/:id", s.ResetCase)
	cases.GET("/:id/probability", s.GetProbability)
	cases.POST("/:id/evidence/:item/toggle", s.ToggleEvidence)
	cases.PUT("/:id/evidence/:item", s.SetEvidence)
	cases.GET("/:id/precedents", s.GetPrecedents)
	cases.GET("/:id/letter", s.GetLetter)
	cases.PUT("/:id/letter", s.EditLetter)
	cases.GET("/:id/letter/download", s.DownloadLetter)
	cases.GET("/:id/chat", s.GetChat)
	cases.POST("/:id/chat", s.SendChat)

	return r
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": s.Sessions.Len()})
}

type CreateCaseRequest struct {
	Text     string `json:"text"`
	Demo     bool   `json:"demo"`
	NoPolicy bool   `json:"no_policy"`
	Seed     int    `json:"seed"`
}

type CaseResponse struct {
	ID          string               `json:"id"`
	Source      analysis.Source      `json:"source"`
	Result      model.AnalysisResult `json:"result"`
	Probability probability.Snapshot `json:"probability"`
}

var uploadFields = []struct {
	field string
	label model.FileLabel
}{
	{"denial_letter", model.LabelDenialLetter},
	{"policy_doc", model.LabelPolicyDoc},
}

func (s *Server) CreateCase(c *gin.Context) {
	var req analysis.Request

	if c.ContentType() == "multipart/form-data" {
		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid upload"})
			return
		}
		for _, f := range uploadFields {
			for _, fh := range form.File[f.field] {
				file, err := upload.Read(fh, f.label, s.MaxUploadBytes)
				if err != nil {
					s.fail(c, err)
					return
				}
				req.Files = append(req.Files, file)
			}
		}
		req.Text = c.PostForm("text")
		req.NoPolicy = c.PostForm("no_policy") == "true"
		if req.Text == "" && len(req.Files) > 0 {
			req.Text = "UPLOADED_FILE"
		}
	} else {
		var body CreateCaseRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		req = analysis.Request{Text: body.Text, Demo: body.Demo, NoPolicy: body.NoPolicy, Seed: body.Seed}
	}

	if !req.Demo && req.Text == "" && len(req.Files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to analyze"})
		return
	}

	s.startCase(c, req)
}

func (s *Server) CreateDemo(c *gin.Context) {
	s.startCase(c, analysis.Request{Text: "DEMO", Demo: true})
}

func (s *Server) startCase(c *gin.Context, req analysis.Request) {
	out, err := s.Analyzer.Analyze(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}

	sess := s.Sessions.Create(out)
	c.JSON(http.StatusCreated, caseResponse(sess))
}

func caseResponse(sess *session.Session) CaseResponse {
	return CaseResponse{
		ID:          sess.ID,
		Source:      sess.Source,
		Result:      sess.Result(),
		Probability: sess.Probability(),
	}
}

func (s *Server) session(c *gin.Context) (*session.Session, bool) {
	sess, err := s.Sessions.Get(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) GetCase(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, caseResponse(sess))
}

func (s *Server) ResetCase(c *gin.Context) {
	if err := s.Sessions.Delete(c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}

func (s *Server) GetProbability(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess.Probability())
}

func (s *Server) ToggleEvidence(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	snap, err := sess.ToggleEvidence(c.Param("item"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

type SetEvidenceRequest struct {
	Present *bool `json:"present"`
}

func (s *Server) SetEvidence(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var req SetEvidenceRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Present == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	snap, err := sess.SetEvidence(c.Param("item"), *req.Present)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) GetPrecedents(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	r := sess.Result()
	c.JSON(http.StatusOK, gin.H{
		"cases": precedent.Cards(r.MemoryCases),
		"stats": r.CollectiveStats,
	})
}

func (s *Server) GetLetter(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	letter, found := sess.Letter()
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "No letter drafted"})
		return
	}
	c.JSON(http.StatusOK, letter)
}

func (s *Server) DownloadLetter(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	letter, found := sess.Letter()
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "No letter drafted"})
		return
	}

	name := strings.Join(strings.Fields(sess.Result().CaseSummary.PatientName), "_")
	if name == "" {
		name = "Draft"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "Appeal_"+name+".txt"))
	c.String(http.StatusOK, "%s\n\n%s\n", letter.Title, letter.Body)
}

type EditLetterRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (s *Server) EditLetter(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var req EditLetterRequest
	if err := c.ShouldBindJSON(&req); err != nil || (req.Title == "" && req.Body == "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	c.JSON(http.StatusOK, sess.EditLetter(req.Title, req.Body))
}

func (s *Server) GetChat(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": sess.Transcript()})
}

type ChatRequest struct {
	Message string `json:"message"`
}

func (s *Server) SendChat(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	ctx := c.Request.Context()
	reply, err := s.Consultant.Reply(ctx, sess.CaseContext(), sess.Transcript(), req.Message)
	if err != nil {
		s.fail(c, err)
		return
	}
	sess.RecordExchange(req.Message, reply)

	if c.Query("stream") != "1" {
		c.JSON(http.StatusOK, gin.H{"reply": reply, "messages": sess.Transcript()})
		return
	}

	c.Header("Cache-Control", "no-cache")
	err = s.Consultant.Stream(ctx, reply, func(chunk string) {
		c.SSEvent("chunk", chunk)
		c.Writer.Flush()
	})
	if err != nil {
		s.Logger.Debug("chat stream interrupted", "session", sess.ID, "error", err)
		return
	}
	c.SSEvent("done", reply)
}

func (s *Server) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Case not found"})
	case errors.Is(err, session.ErrUnknownItem):
		c.JSON(http.StatusNotFound, gin.H{"error": "Evidence item not found"})
	case errors.Is(err, upload.ErrTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
	case errors.Is(err, upload.ErrUnsupportedType):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "Unsupported file type"})
	case errors.Is(err, upload.ErrEmpty):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Empty file"})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Request cancelled"})
	default:
		s.Logger.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}
