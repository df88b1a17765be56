// Package server exposes the connector, meeting and summary usecases over
// a JSON HTTP API and streams notifier events over a websocket.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	hclog "github.com/hashicorp/go-hclog"

	connectordto "meetnote/internal/modules/connector/dto"
	connectorin "meetnote/internal/modules/connector/port/in"
	meetingdomain "meetnote/internal/modules/meeting/domain"
	meetingdto "meetnote/internal/modules/meeting/dto"
	meetingin "meetnote/internal/modules/meeting/port/in"
	summarydto "meetnote/internal/modules/summary/dto"
	summaryin "meetnote/internal/modules/summary/port/in"
	apperrors "meetnote/internal/platform/errors"
	"meetnote/internal/state"
)

type PreferencesSource interface {
	Preferences() state.Preferences
}

type Deps struct {
	Connector   connectorin.Usecase
	Meetings    meetingin.Usecase
	Summaries   summaryin.Usecase
	Preferences PreferencesSource
	Hub         *Hub
	Logger      hclog.Logger
}

type Server struct {
	deps   Deps
	engine *gin.Engine
}

type platformJSON struct {
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	ConnectedAt time.Time `json:"connected_at,omitzero"`
}

type stateJSON struct {
	Platforms   []platformJSON             `json:"platforms"`
	Active      []meetingdto.MeetingOutput `json:"active"`
	History     []meetingdto.MeetingOutput `json:"history"`
	Cancelled   []meetingdto.MeetingOutput `json:"cancelled"`
	Preferences *state.Preferences         `json:"preferences,omitempty"`
}

type startRequest struct {
	Platform string `json:"platform" binding:"required"`
}

func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = hclog.NewNullLogger()
	}
	if deps.Hub == nil {
		deps.Hub = NewHub(deps.Logger)
	}
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(deps.Logger))
	s := &Server{deps: deps, engine: engine}

	api := engine.Group("/api")
	api.GET("/state", s.getState)
	api.GET("/stats", s.getStats)
	api.POST("/platforms/:name/connect", s.connectPlatform)
	api.DELETE("/platforms/:name", s.disconnectPlatform)
	api.POST("/meetings", s.startMeeting)
	api.GET("/meetings/:id", s.getMeeting)
	api.POST("/meetings/:id/end", s.endMeeting)
	api.POST("/meetings/:id/cancel", s.cancelMeeting)
	api.GET("/history", s.listArchived)
	api.GET("/summaries/preview", s.previewSummary)
	api.GET("/events", deps.Hub.ServeWS)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.engine, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		s.deps.Logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	case <-ctx.Done():
	}
	s.deps.Hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http: %w", err)
	}
	return nil
}

func (s *Server) getState(c *gin.Context) {
	ctx := c.Request.Context()
	platforms, err := s.deps.Connector.List(ctx)
	if err != nil {
		s.fail(c, err)
		return
	}
	out := stateJSON{Platforms: make([]platformJSON, 0, len(platforms))}
	for _, p := range platforms {
		out.Platforms = append(out.Platforms, platformJSON{Name: p.Name, Status: p.Status, ConnectedAt: p.ConnectedAt})
	}
	if out.Active, err = s.deps.Meetings.ListActive(ctx); err != nil {
		s.fail(c, err)
		return
	}
	if out.History, err = s.deps.Meetings.ListHistory(ctx); err != nil {
		s.fail(c, err)
		return
	}
	if out.Cancelled, err = s.deps.Meetings.ListCancelled(ctx); err != nil {
		s.fail(c, err)
		return
	}
	if s.deps.Preferences != nil {
		prefs := s.deps.Preferences.Preferences()
		out.Preferences = &prefs
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getStats(c *gin.Context) {
	stats, err := s.deps.Meetings.Stats(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) connectPlatform(c *gin.Context) {
	out, err := s.deps.Connector.Connect(c.Request.Context(), connectordto.ConnectInput{Platform: c.Param("name")})
	switch {
	case errors.Is(err, apperrors.ErrAlreadyConnected):
		c.JSON(http.StatusOK, gin.H{"platform": out.Platform, "status": out.Status, "message": err.Error()})
	case errors.Is(err, apperrors.ErrConnectionPending):
		c.JSON(http.StatusAccepted, gin.H{"platform": out.Platform, "status": out.Status, "message": err.Error()})
	case err != nil:
		s.fail(c, err)
	default:
		c.JSON(http.StatusAccepted, gin.H{"platform": out.Platform, "status": out.Status, "ready_at": out.ReadyAt})
	}
}

func (s *Server) disconnectPlatform(c *gin.Context) {
	if err := s.deps.Connector.Disconnect(c.Request.Context(), connectordto.DisconnectInput{Platform: c.Param("name")}); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) startMeeting(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err))
		return
	}
	out, err := s.deps.Meetings.Start(c.Request.Context(), meetingdto.StartInput{Platform: req.Platform})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":           out.MeetingID,
		"platform":     out.Platform,
		"status":       out.Status,
		"start_time":   out.StartTime,
		"recording_at": out.RecordingAt,
	})
}

func (s *Server) getMeeting(c *gin.Context) {
	out, err := s.deps.Meetings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) endMeeting(c *gin.Context) {
	out, err := s.deps.Meetings.End(c.Request.Context(), meetingdto.EndInput{MeetingID: c.Param("id")})
	if err != nil {
		s.fail(c, err)
		return
	}
	body := gin.H{"id": out.MeetingID, "scheduled": out.Scheduled}
	if out.Scheduled {
		body["completes_at"] = out.CompletesAt
	}
	c.JSON(http.StatusAccepted, body)
}

func (s *Server) cancelMeeting(c *gin.Context) {
	out, err := s.deps.Meetings.Cancel(c.Request.Context(), meetingdto.CancelInput{MeetingID: c.Param("id")})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) listArchived(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.fail(c, fmt.Errorf("%w: limit must be a non-negative integer", apperrors.ErrInvalidInput))
			return
		}
		limit = n
	}
	out, err := s.deps.Meetings.ListArchived(c.Request.Context(), limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) previewSummary(c *gin.Context) {
	out, err := s.deps.Summaries.Preview(c.Request.Context(), summarydto.PreviewInput{Title: c.Query("title")})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"meeting_title": out.MeetingTitle, "ready_at": out.ReadyAt, "summary": summaryJSON(out.Summary)})
}

func summaryJSON(s summarydto.SummaryOutput) meetingdto.SummaryOutput {
	actions := make([]meetingdto.ActionItem, 0, len(s.ActionItems))
	for _, a := range s.ActionItems {
		actions = append(actions, meetingdto.ActionItem{Task: a.Task, Assignee: a.Assignee, DueDate: a.DueDate})
	}
	return meetingdto.SummaryOutput{
		Title:             s.Title,
		KeyPoints:         s.KeyPoints,
		ActionItems:       actions,
		Decisions:         s.Decisions,
		Sentiment:         s.Sentiment,
		ConfidencePercent: s.ConfidencePercent,
		Confidence:        s.Confidence,
		Provider:          s.Provider,
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.deps.Logger.Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrNotConnected), errors.Is(err, meetingdomain.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrNotConfigured):
		return http.StatusNotImplemented
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func requestLogger(logger hclog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start))
	}
}
