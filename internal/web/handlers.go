package web

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"ats-go/internal/ats"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Candidates

func (s *Server) handleListCandidates(c *gin.Context) {
	cs, err := s.service.SearchCandidates(c.Request.Context(), c.Query("q"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	if cs == nil {
		cs = []*ats.Candidate{}
	}
	c.JSON(http.StatusOK, gin.H{"candidates": cs, "count": len(cs)})
}

func (s *Server) handleGetCandidate(c *gin.Context) {
	cand, err := s.service.GetCandidate(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cand)
}

func (s *Server) handleCreateCandidate(c *gin.Context) {
	var req candidateRequest
	if !s.bind(c, &req) {
		return
	}
	docs, err := req.documents()
	if err != nil {
		s.writeError(c, err)
		return
	}

	var created *ats.Candidate
	err = s.track(c, "CreateCandidate", "governmentId="+req.GovernmentID, func(ctx context.Context) error {
		var err error
		created, err = s.service.CreateCandidate(ctx, req.input(), docs)
		return err
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) handleUpdateCandidate(c *gin.Context) {
	id := c.Param("id")
	var req candidateRequest
	if !s.bind(c, &req) {
		return
	}
	docs, err := req.documents()
	if err != nil {
		s.writeError(c, err)
		return
	}

	var updated *ats.Candidate
	err = s.track(c, "UpdateCandidate", "id="+id, func(ctx context.Context) error {
		var err error
		updated, err = s.service.UpdateCandidate(ctx, id, req.input(), docs)
		return err
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) handleDeleteCandidate(c *gin.Context) {
	id := c.Param("id")
	err := s.track(c, "DeleteCandidate", "id="+id, func(ctx context.Context) error {
		return s.service.DeleteCandidate(ctx, id)
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleDownloadDocument(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		badRequest(c, fmt.Errorf("document index must be a number"))
		return
	}

	var buf bytes.Buffer
	doc, err := s.service.OpenDocument(c.Request.Context(), c.Param("id"), index, &buf, s.dc)
	if err != nil {
		s.writeError(c, err)
		return
	}

	contentType := mime.TypeByExtension(filepath.Ext(doc.FileName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.FileName}))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// Lifecycle

func (s *Server) handleChangeStatus(c *gin.Context) {
	id := c.Param("id")
	var req statusRequest
	if !s.bind(c, &req) {
		return
	}
	status, err := ats.ParseStatus(req.Status)
	if err != nil {
		s.writeError(c, err)
		return
	}

	var updated *ats.Candidate
	err = s.track(c, "ChangeStatus", fmt.Sprintf("id=%s status=%s", id, status), func(ctx context.Context) error {
		var err error
		updated, err = s.service.ChangeStatus(ctx, id, status, req.Notes)
		return err
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) handleScheduleInterview(c *gin.Context) {
	id := c.Param("id")
	var req interviewRequest
	if !s.bind(c, &req) {
		return
	}
	ivReq, err := req.request()
	if err != nil {
		s.writeError(c, err)
		return
	}

	var (
		updated   *ats.Candidate
		interview *ats.Interview
	)
	err = s.track(c, "ScheduleInterview", fmt.Sprintf("id=%s interviewer=%s", id, req.InterviewerID), func(ctx context.Context) error {
		var err error
		updated, interview, err = s.service.ScheduleInterview(ctx, id, ivReq)
		return err
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"candidate": updated, "interview": interview})
}

func (s *Server) handleCandidateInterviews(c *gin.Context) {
	ivs, err := s.service.Interviews().ForCandidate(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	if ivs == nil {
		ivs = []*ats.Interview{}
	}
	c.JSON(http.StatusOK, gin.H{"interviews": ivs})
}

func (s *Server) handleListInterviews(c *gin.Context) {
	ivs, err := s.service.Interviews().All(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	if ivs == nil {
		ivs = []*ats.Interview{}
	}
	c.JSON(http.StatusOK, gin.H{"interviews": ivs})
}

func (s *Server) handleCancelInterview(c *gin.Context) {
	id := c.Param("id")
	var updated *ats.Candidate
	err := s.track(c, "CancelInterview", "id="+id, func(ctx context.Context) error {
		var err error
		updated, err = s.service.CancelInterview(ctx, id)
		return err
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Views

func (s *Server) handleCalendar(c *gin.Context) {
	events, err := s.service.Calendar(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (s *Server) handleBoard(c *gin.Context) {
	dash, err := s.service.Board(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dash)
}

func (s *Server) handleMetrics(c *gin.Context) {
	stages, err := s.service.Metrics(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stages": stages})
}

func (s *Server) handleInsights(c *gin.Context) {
	var req insightsRequest
	if !s.bind(c, &req) {
		return
	}
	out, err := s.service.AnalyzeFlow(c.Request.Context(), req.JobProfile)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"insights": out})
}

// Reference data

func (s *Server) handleListJobPositions(c *gin.Context) {
	ps, err := s.service.ListJobPositions(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	if ps == nil {
		ps = []*ats.JobPosition{}
	}
	c.JSON(http.StatusOK, gin.H{"jobPositions": ps})
}

func (s *Server) handleAddJobPosition(c *gin.Context) {
	var req nameRequest
	if !s.bind(c, &req) {
		return
	}
	var created *ats.JobPosition
	err := s.track(c, "AddJobPosition", "name="+req.Name, func(ctx context.Context) error {
		var err error
		created, err = s.service.AddJobPosition(ctx, req.Name)
		return err
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) handleListInterviewers(c *gin.Context) {
	is, err := s.service.ListInterviewers(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	if is == nil {
		is = []*ats.Interviewer{}
	}
	c.JSON(http.StatusOK, gin.H{"interviewers": is})
}

func (s *Server) handleAddInterviewer(c *gin.Context) {
	var req nameRequest
	if !s.bind(c, &req) {
		return
	}
	var created *ats.Interviewer
	err := s.track(c, "AddInterviewer", "name="+req.Name, func(ctx context.Context) error {
		var err error
		created, err = s.service.AddInterviewer(ctx, req.Name)
		return err
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// bind decodes the JSON body, responding 400 on failure.
func (s *Server) bind(c *gin.Context, dst any) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)
	if err := c.ShouldBindJSON(dst); err != nil {
		badRequest(c, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

// track runs fn as an audited operation in the request context.
func (s *Server) track(c *gin.Context, operation, parameters string, fn func(context.Context) error) error {
	return s.audit.Track(c.Request.Context(), operation, parameters, fn)
}
