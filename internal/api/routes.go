package api

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/RafaelAlves9/ML-Hate-Comments-Classification/internal/classifier"
	"github.com/RafaelAlves9/ML-Hate-Comments-Classification/internal/console"
	"github.com/RafaelAlves9/ML-Hate-Comments-Classification/internal/source"
	"github.com/RafaelAlves9/ML-Hate-Comments-Classification/internal/store"
	"github.com/RafaelAlves9/ML-Hate-Comments-Classification/internal/view"
)

// Config defines server dependencies.
type Config struct {
	Prediction     classifier.Config
	HistoryDBPath  string
	SilentDB       bool
	AllowedOrigins []string
	SessionIdleTTL time.Duration
}

// Server wires HTTP handlers with the analysis console and history.
type Server struct {
	client         *classifier.Client
	console        *console.Console
	db             *store.Database
	notifier       *StateNotifier
	allowedOrigins []string
	sessionTTL     time.Duration
}

const (
	upstreamProbeTimeout = 5 * time.Second
	defaultPageSize      = 25
	maxPageSize          = 100
)

// NewServer constructs the console server.
func NewServer(cfg Config) (*Server, error) {
	client := classifier.NewClient(cfg.Prediction)

	var db *store.Database
	var recorder console.Recorder
	if path := strings.TrimSpace(cfg.HistoryDBPath); path != "" {
		opened, err := store.Open(path, cfg.SilentDB)
		if err != nil {
			return nil, fmt.Errorf("history store: %w", err)
		}
		db = opened
		recorder = opened
		logrus.WithField("path", path).Info("analysis history enabled")
	} else {
		logrus.Info("analysis history disabled - no database path configured")
	}

	notifier := NewStateNotifier()
	sessions := view.NewRegistry(notifier.Publish)
	provider := source.NewMock()

	con, err := console.New(classifier.WithLogging(client), provider, sessions, recorder)
	if err != nil {
		return nil, fmt.Errorf("console: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"prediction_api": client.BaseURL(),
		"timeout":        cfg.Prediction.Timeout,
		"comment_source": provider.Name(),
	}).Info("prediction client configured")

	return &Server{
		client:         client,
		console:        con,
		db:             db,
		notifier:       notifier,
		allowedOrigins: cfg.AllowedOrigins,
		sessionTTL:     cfg.SessionIdleTTL,
	}, nil
}

// Close releases the history store.
func (s *Server) Close() error {
	return s.db.Close()
}

// RunBackground evicts idle sessions until ctx is cancelled.
func (s *Server) RunBackground(ctx context.Context) {
	if s.sessionTTL <= 0 {
		return
	}
	interval := s.sessionTTL / 4
	if interval < time.Second {
		interval = time.Second
	}
	s.console.Sessions().RunSweeper(ctx, interval, s.sessionTTL, func(n int) {
		logrus.WithField("sessions", n).Debug("evicted idle sessions")
	})
}

// Router configures gin routes.
func (s *Server) Router() (*gin.Engine, error) {
	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowCredentials = true
	if len(s.allowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = s.allowedOrigins
	}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", sessionHeader}
	corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	r.Use(cors.New(corsCfg))

	tmpl, err := loadTemplates()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)

	r.Use(sessionMiddleware())

	r.GET("/", s.handleIndex)
	r.POST("/single", s.handleFormSingle)
	r.POST("/batch", s.handleFormBatch)
	r.POST("/tab/:mode", s.handleFormTab)

	r.GET("/api/healthz", s.handleHealth)
	r.GET("/api/config", s.handleConfig)

	api := r.Group("/api")
	{
		api.GET("/state", s.handleState)
		api.GET("/state/stream", s.handleStateStream)
		api.POST("/single", s.handleSingle)
		api.POST("/batch", s.handleBatch)
		api.POST("/tab/:mode", s.handleTab)
		api.POST("/reset/:mode", s.handleReset)
		api.GET("/upstream", s.handleUpstream)
		api.GET("/history", s.handleHistory)
		api.GET("/history/:id", s.handleHistoryItem)
		api.GET("/export.csv", s.handleExportCSV)
		api.GET("/export.json", s.handleExportJSON)
	}

	return r, nil
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"prediction_api":  s.client.BaseURL(),
		"comment_source":  s.console.SourceName(),
		"history_enabled": s.db != nil,
		"modes":           view.Modes,
		"sessions":        s.console.Sessions().Len(),
		"stream_clients":  s.notifier.Count(),
	})
}

func (s *Server) handleState(c *gin.Context) {
	c.JSON(http.StatusOK, s.console.Snapshot(sessionID(c)))
}

func (s *Server) handleSingle(c *gin.Context) {
	var req SingleRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusOK, s.console.AnalyzeSingle(c.Request.Context(), sessionID(c), req.Comment))
}

func (s *Server) handleBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusOK, s.console.AnalyzeBatch(c.Request.Context(), sessionID(c), req.URL))
}

func (s *Server) handleTab(c *gin.Context) {
	mode, err := view.ParseMode(c.Param("mode"))
	if err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusOK, s.console.SwitchTab(sessionID(c), mode))
}

func (s *Server) handleReset(c *gin.Context) {
	mode, err := view.ParseMode(c.Param("mode"))
	if err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusOK, s.console.Reset(sessionID(c), mode))
}

func (s *Server) handleStateStream(c *gin.Context) {
	upgrader := websocket.Upgrader{
		HandshakeTimeout:  5 * time.Second,
		EnableCompression: true,
		CheckOrigin: func(r *http.Request) bool {
			if len(s.allowedOrigins) == 0 {
				return true
			}
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if origin == "" {
				return true
			}
			for _, allowed := range s.allowedOrigins {
				if strings.EqualFold(origin, allowed) {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("upgrade websocket")
		return
	}

	session := sessionID(c)
	client := s.notifier.Register(conn, session, s.console.Snapshot(session))
	logrus.WithField("remote", conn.RemoteAddr().String()).Info("state websocket connected")
	defer s.notifier.Unregister(client)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithField("remote", conn.RemoteAddr().String()).Info("state websocket closed")
			} else {
				logrus.WithError(err).Warn("state websocket unexpected close")
			}
			break
		}
	}
}

func (s *Server) handleUpstream(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), upstreamProbeTimeout)
	defer cancel()

	resp := UpstreamResponse{BaseURL: s.client.BaseURL()}
	health, err := s.client.Health(ctx)
	if err != nil {
		kind, message := view.Classify(err, view.ModeSingle)
		if kind == view.KindTransport {
			resp.Error = message
		} else {
			resp.Error = err.Error()
		}
		c.JSON(http.StatusOK, resp)
		return
	}
	resp.Reachable = true
	resp.Health = &health

	info, err := s.client.ModelInfo(ctx)
	if err != nil {
		logrus.WithError(err).Debug("model info unavailable")
	} else {
		resp.ModelInfo = info
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleHistory(c *gin.Context) {
	if !s.requireHistory(c) {
		return
	}
	page, _ := strconv.Atoi(c.Query("page"))
	if page < 0 {
		page = 0
	}
	pageSize, _ := strconv.Atoi(c.Query("pageSize"))
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	if page > math.MaxInt32/pageSize {
		s.renderError(c, http.StatusBadRequest, fmt.Errorf("page %d out of range", page))
		return
	}

	query := store.AnalysisQuery{
		Mode:    strings.TrimSpace(c.Query("mode")),
		Outcome: strings.TrimSpace(c.Query("outcome")),
		Offset:  page * pageSize,
		Limit:   pageSize,
	}
	if c.Query("scope") == "session" {
		query.SessionID = sessionID(c)
	}

	rows, total, err := s.db.ListAnalyses(query)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	dtos := make([]AnalysisDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, FromModel(row))
	}
	c.JSON(http.StatusOK, HistoryResponse{Items: dtos, Total: total})
}

func (s *Server) handleHistoryItem(c *gin.Context) {
	if !s.requireHistory(c) {
		return
	}
	id, err := parseUintParam(c.Param("id"))
	if err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}
	analysis, err := s.db.GetAnalysis(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.renderError(c, http.StatusNotFound, fmt.Errorf("analysis %d not found", id))
		} else {
			s.renderError(c, http.StatusInternalServerError, err)
		}
		return
	}
	items, err := s.db.ListItems(analysis.ID)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	resp := AnalysisDetailResponse{AnalysisDTO: FromModel(*analysis), Items: make([]AnalysisItemDTO, 0, len(items))}
	for _, item := range items {
		resp.Items = append(resp.Items, ItemFromModel(item))
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleExportCSV(c *gin.Context) {
	if !s.requireHistory(c) {
		return
	}
	rows, _, err := s.db.ListAnalyses(store.AnalysisQuery{Mode: c.Query("mode"), Outcome: c.Query("outcome")})
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=hate-speech-analyses.csv")
	c.Header("Content-Type", "text/csv")

	writer := csv.NewWriter(c.Writer)
	headers := []string{"id", "created_at", "session_id", "mode", "input", "source", "outcome", "error_kind", "message", "total", "flagged", "safe", "errored", "percentage", "duration_ms"}
	if err := writer.Write(headers); err != nil {
		return
	}
	for _, row := range rows {
		dto := FromModel(row)
		line := []string{
			strconv.FormatUint(uint64(dto.ID), 10),
			dto.CreatedAt.UTC().Format(time.RFC3339),
			dto.SessionID,
			dto.Mode,
			dto.Input,
			dto.Source,
			dto.Outcome,
			dto.ErrorKind,
			dto.Message,
			strconv.Itoa(dto.Total),
			strconv.Itoa(dto.Flagged),
			strconv.Itoa(dto.Safe),
			strconv.Itoa(dto.Errored),
			strconv.Itoa(dto.Percentage),
			strconv.FormatInt(dto.DurationMs, 10),
		}
		if err := writer.Write(line); err != nil {
			return
		}
	}
	writer.Flush()
}

func (s *Server) handleExportJSON(c *gin.Context) {
	if !s.requireHistory(c) {
		return
	}
	rows, _, err := s.db.ListAnalyses(store.AnalysisQuery{Mode: c.Query("mode"), Outcome: c.Query("outcome")})
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, err)
		return
	}
	dtos := make([]AnalysisDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, FromModel(row))
	}
	c.Header("Content-Disposition", "attachment; filename=hate-speech-analyses.json")
	c.JSON(http.StatusOK, dtos)
}

func (s *Server) requireHistory(c *gin.Context) bool {
	if s.db != nil {
		return true
	}
	s.renderError(c, http.StatusServiceUnavailable, errors.New("analysis history disabled"))
	return false
}

func (s *Server) renderError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}

func parseUintParam(value string) (uint, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, errors.New("identifier is required")
	}
	parsed, err := strconv.ParseUint(trimmed, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid identifier: %w", err)
	}
	if parsed == 0 {
		return 0, errors.New("identifier must be greater than zero")
	}
	return uint(parsed), nil
}
