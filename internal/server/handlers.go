package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperr "github.com/timmfy/ai-radio/internal/errors"
	"github.com/timmfy/ai-radio/internal/radio"
	"github.com/timmfy/ai-radio/internal/recommend"
)

func (s *Server) routes() {
	s.engine.GET("/hc", healthCheck)
	s.engine.POST(recommend.GeneratePath, s.generateTracks)

	if s.radio == nil {
		return
	}
	r := s.engine.Group("/api/radio")
	r.GET("/state", s.radioState)
	r.GET("/ws", s.radioStream)
	r.POST("/prompt", s.radioPrompt)
	r.POST("/skip", s.radioCommand(s.radio.Skip))
	r.POST("/previous", s.radioCommand(s.radio.Previous))
	r.POST("/toggle", s.radioCommand(s.radio.PauseOrResume))
	r.POST("/seek", s.radioSeek)
}

func healthCheck(c *gin.Context) {
	c.String(http.StatusOK, "API is healthy!")
}

func (s *Server) generateTracks(c *gin.Context) {
	var input recommend.Request
	if err := c.ShouldBindJSON(&input); err != nil || input.Prompt == "" {
		c.JSON(http.StatusBadRequest, recommend.ErrorResponse{Error: "Invalid input"})
		return
	}

	songs, err := s.recommender.Recommend(c.Request.Context(), input.Prompt)
	if err != nil {
		s.log.Error().Err(err).Msg("generate tracks")
		c.JSON(http.StatusInternalServerError, recommend.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, recommend.Response{Songs: songs})
}

func (s *Server) radioState(c *gin.Context) {
	c.JSON(http.StatusOK, s.radio.Snapshot())
}

type promptRequest struct {
	Prompt string `json:"prompt"`
}

func (s *Server) radioPrompt(c *gin.Context) {
	var input promptRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	s.respond(c, s.radio.SubmitPrompt(commandContext(c), input.Prompt))
}

// seekRequest carries either an absolute position or a relative delta.
type seekRequest struct {
	PositionMS *int64 `json:"position_ms"`
	DeltaMS    *int64 `json:"delta_ms"`
}

func (s *Server) radioSeek(c *gin.Context) {
	var input seekRequest
	if err := c.ShouldBindJSON(&input); err != nil || (input.PositionMS == nil) == (input.DeltaMS == nil) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "one of position_ms or delta_ms is required"})
		return
	}

	ctx := commandContext(c)
	var err error
	if input.PositionMS != nil {
		err = s.radio.Seek(ctx, time.Duration(*input.PositionMS)*time.Millisecond)
	} else {
		err = s.radio.SeekBy(ctx, time.Duration(*input.DeltaMS)*time.Millisecond)
	}
	s.respond(c, err)
}

func (s *Server) radioCommand(fn func(context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.respond(c, fn(commandContext(c)))
	}
}

// commandContext detaches engine commands from the request. A client that
// disconnects does not cancel them; the engine applies its own timeout.
func commandContext(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}

// respond writes the session snapshot on success, or the error with a
// status derived from its kind.
func (s *Server) respond(c *gin.Context, err error) {
	if err != nil {
		c.JSON(statusFor(err), gin.H{
			"error":      err.Error(),
			"suggestion": apperr.GetSuggestion(err),
		})
		return
	}
	c.JSON(http.StatusOK, s.radio.Snapshot())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, radio.ErrEmptyPrompt):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrPremiumRequired):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrTrackNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrDeviceNotReady), errors.Is(err, apperr.ErrNoActiveDevice):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, apperr.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}
