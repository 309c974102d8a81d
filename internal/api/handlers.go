package api

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// bindIdentity hands the request's authenticated identity (if any) to the
// manager before a command that may trigger a gated transition.
func (s *Server) bindIdentity(c *gin.Context) {
	s.manager.SetIdentity(c.GetString("identity"))
}

func (s *Server) ListTracks(c *gin.Context) {
	tracks, err := s.catalog.List(0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tracks": tracks})
}

func (s *Server) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, s.manager.Snapshot())
}

func (s *Server) GetFrequency(c *gin.Context) {
	c.JSON(http.StatusOK, s.analyzer.Snapshot())
}

// StreamFrequency pushes frequency frames over SSE. The analyzer's
// sampling loop runs only while at least one stream is open.
func (s *Server) StreamFrequency(c *gin.Context) {
	s.analyzer.Subscribe()
	defer s.analyzer.Unsubscribe()

	ticker := time.NewTicker(33 * time.Millisecond)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case <-ticker.C:
			c.SSEvent("frequency", s.analyzer.Snapshot())
			return true
		}
	})
}

func (s *Server) PlayTrack(c *gin.Context) {
	var req struct {
		TrackID uint `json:"track_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	track, err := s.catalog.ByID(req.TrackID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown track"})
		return
	}

	s.bindIdentity(c)
	s.manager.PlayTrack(track)
	c.JSON(http.StatusOK, s.manager.Snapshot())
}

func (s *Server) PlayTracks(c *gin.Context) {
	var req struct {
		TrackIDs   []uint `json:"track_ids" binding:"required"`
		StartIndex int    `json:"start_index"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tracks, err := s.catalog.ByIDs(req.TrackIDs)
	if err != nil || len(tracks) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no playable tracks"})
		return
	}

	s.bindIdentity(c)
	s.manager.PlayTracks(tracks, req.StartIndex)
	c.JSON(http.StatusOK, s.manager.Snapshot())
}

func (s *Server) TogglePlay(c *gin.Context) {
	s.manager.TogglePlay()
	c.JSON(http.StatusOK, s.manager.Snapshot())
}

func (s *Server) Next(c *gin.Context) {
	s.bindIdentity(c)
	s.manager.Next()
	c.JSON(http.StatusOK, s.manager.Snapshot())
}

func (s *Server) Previous(c *gin.Context) {
	s.bindIdentity(c)
	s.manager.Previous()
	c.JSON(http.StatusOK, s.manager.Snapshot())
}

func (s *Server) AddToQueue(c *gin.Context) {
	var req struct {
		TrackID uint `json:"track_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	track, err := s.catalog.ByID(req.TrackID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown track"})
		return
	}
	item := s.manager.AddToQueue(track)
	c.JSON(http.StatusOK, gin.H{"queue_id": item.QueueID})
}

func (s *Server) AddNext(c *gin.Context) {
	var req struct {
		TrackID uint `json:"track_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	track, err := s.catalog.ByID(req.TrackID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown track"})
		return
	}
	item := s.manager.AddNext(track)
	c.JSON(http.StatusOK, gin.H{"queue_id": item.QueueID})
}

func (s *Server) RemoveFromQueue(c *gin.Context) {
	if !s.manager.RemoveFromQueue(c.Param("queueId")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown queue item"})
		return
	}
	c.JSON(http.StatusOK, s.manager.Snapshot())
}

func (s *Server) ReorderQueue(c *gin.Context) {
	var req struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !s.manager.ReorderQueue(req.From, req.To) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid positions"})
		return
	}
	c.JSON(http.StatusOK, s.manager.Snapshot())
}

func (s *Server) SkipTo(c *gin.Context) {
	s.bindIdentity(c)
	if !s.manager.SkipTo(c.Param("queueId")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown queue item"})
		return
	}
	c.JSON(http.StatusOK, s.manager.Snapshot())
}

func (s *Server) ToggleShuffle(c *gin.Context) {
	enabled := s.manager.ToggleShuffle()
	c.JSON(http.StatusOK, gin.H{"shuffle": enabled})
}

func (s *Server) ToggleRepeat(c *gin.Context) {
	mode := s.manager.ToggleRepeat()
	c.JSON(http.StatusOK, gin.H{"repeat": mode.String()})
}

func (s *Server) SetCrossfade(c *gin.Context) {
	var req struct {
		Seconds int `json:"seconds"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"crossfade_seconds": s.manager.SetCrossfade(req.Seconds)})
}

func (s *Server) RecordPlay(c *gin.Context) {
	var req struct {
		Completed bool `json:"completed"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.manager.RecordPlay(req.Completed)
	c.JSON(http.StatusOK, gin.H{"status": "recorded"})
}
