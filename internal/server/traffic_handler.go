package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"gridsight/internal/dao"
	"gridsight/internal/model"
	"gridsight/internal/sink"
	"gridsight/internal/traffic"
	"gridsight/pkg/str"
)

// newCoordinator wires a per-request pipeline: shared capturer and
// analyzer, plus the sinks this request asked for.
func (s *Server) newCoordinator(jobUuid string, saveToDb, saveToStatic bool) *traffic.Coordinator {
	opts := []traffic.CoordinatorOption{
		traffic.WithZoom(s.conf.Analysis.Zoom),
		traffic.WithLogger(s.logger.WithField("component", "coordinator")),
	}

	var sinks sink.Multi
	if saveToDb {
		sinks = append(sinks, sink.NewDBSink(jobUuid))
	}
	if s.publisher != nil {
		sinks = append(sinks, s.publisher)
	}
	if len(sinks) > 0 {
		opts = append(opts, traffic.WithSink(sinks))
	}
	if saveToStatic && s.archiver != nil {
		opts = append(opts, traffic.WithArchiver(s.archiver))
	}

	return traffic.NewCoordinator(s.capturer, s.analyzer, opts...)
}

func (s *Server) createBatchJob(c *gin.Context, uuid string, count int, saveToStatic bool) *model.BatchJob {
	job := &model.BatchJob{
		Uuid:           uuid,
		LocationsCount: count,
		SavedToStatic:  saveToStatic,
	}
	if user := currentUser(c); user != nil {
		job.UserId = user.Id
	}
	if err := model.AddBatchJob(job); err != nil {
		s.logger.WithError(err).Error("create batch job record failed")
		return nil
	}
	return job
}

func (s *Server) finishBatchJob(job *model.BatchJob, completed int) {
	if job == nil {
		return
	}
	job.Completed = completed
	if err := model.UpdateBatchJob(job); err != nil {
		s.logger.WithError(err).Error("update batch job record failed")
	}
}

// handleAnalyze analyze one location
// @Summary Analyze traffic congestion at one location
// @Description Renders the traffic map around the coordinate and classifies the storefront-facing sector
// @Tags traffic
// @Accept json
// @Produce json
// @Param req body dao.AnalyzeRequest true "analyze request"
// @Success 200 {object} dao.AnalyzeResponse
// @Failure 400 {object} ErrorResponse "bad request"
// @Failure 401 {object} ErrorResponse "unauthorized"
// @Failure 500 {object} ErrorResponse "internal server error"
// @Router /api/v1/analyze [post]
func (s *Server) handleAnalyze(c *gin.Context) {
	var req dao.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, http.StatusBadRequest, err)
		return
	}

	loc, err := req.Location.ToLocation()
	if err != nil {
		s.writeError(c, http.StatusBadRequest, err)
		return
	}

	requestId := str.UUIDStr()
	view := traffic.NewViewParameters(loc, s.conf.Analysis.Zoom)

	// typical-traffic views are deterministic, so serve them from cache
	if s.cache != nil && view.Historical() {
		if cached := s.cache.Get(view); cached != nil {
			c.JSON(http.StatusOK, dao.AnalyzeResponse{
				RequestId:     requestId,
				Result:        *dao.FromAnalysisResult(cached),
				SavedToDb:     false,
				SavedToStatic: false,
			})
			return
		}
	}

	var job *model.BatchJob
	if req.SaveToDb {
		job = s.createBatchJob(c, requestId, 1, req.SaveToStatic)
	}

	coord := s.newCoordinator(requestId, job != nil, req.SaveToStatic)
	res, err := coord.AnalyzeOne(c.Request.Context(), loc)
	if err != nil {
		s.writeError(c, http.StatusBadRequest, err)
		return
	}

	completed := 0
	if res.Status == traffic.StatusSuccess {
		completed = 1
		if s.cache != nil && view.Historical() {
			s.cache.Set(view, &res)
		}
	}
	s.finishBatchJob(job, completed)

	c.JSON(http.StatusOK, dao.AnalyzeResponse{
		RequestId:     requestId,
		Result:        *dao.FromAnalysisResult(&res),
		SavedToDb:     job != nil,
		SavedToStatic: req.SaveToStatic && s.archiver != nil,
	})
}

// handleAnalyzeBatch analyze many locations
// @Summary Analyze traffic congestion at up to 20 locations
// @Description Runs capture+classify pipelines with bounded concurrency; one result per location, input order preserved
// @Tags traffic
// @Accept json
// @Produce json
// @Param req body dao.BatchAnalyzeRequest true "batch analyze request"
// @Success 200 {object} dao.BatchAnalyzeResponse
// @Failure 400 {object} ErrorResponse "bad request"
// @Failure 401 {object} ErrorResponse "unauthorized"
// @Failure 500 {object} ErrorResponse "internal server error"
// @Router /api/v1/analyze/batch [post]
func (s *Server) handleAnalyzeBatch(c *gin.Context) {
	var req dao.BatchAnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, http.StatusBadRequest, err)
		return
	}
	if max := s.conf.Analysis.MaxBatchSize; max > 0 && len(req.Locations) > max {
		s.writeError(c, http.StatusBadRequest,
			fmt.Errorf("max %d locations per request, got %d", max, len(req.Locations)))
		return
	}

	locs := make([]traffic.Location, 0, len(req.Locations))
	for i, spec := range req.Locations {
		loc, err := spec.ToLocation()
		if err != nil {
			s.writeError(c, http.StatusBadRequest, fmt.Errorf("location %d: %w", i, err))
			return
		}
		locs = append(locs, loc)
	}

	requestId := str.UUIDStr()

	var job *model.BatchJob
	if req.SaveToDb {
		job = s.createBatchJob(c, requestId, len(locs), req.SaveToStatic)
	}

	coord := s.newCoordinator(requestId, job != nil, req.SaveToStatic)
	results, err := coord.AnalyzeBatch(c.Request.Context(), locs, s.conf.Analysis.Concurrency)
	if err != nil {
		s.writeError(c, http.StatusBadRequest, err)
		return
	}

	completed := 0
	var failures []string
	specs := make([]dao.ResultSpec, 0, len(results))
	for _, res := range results {
		if res.Status == traffic.StatusSuccess {
			completed++
		} else if res.Error != "" {
			failures = append(failures, res.Error)
		}
		specs = append(specs, *dao.FromAnalysisResult(&res))
	}
	s.finishBatchJob(job, completed)

	c.JSON(http.StatusOK, dao.BatchAnalyzeResponse{
		RequestId:      requestId,
		LocationsCount: len(locs),
		Completed:      completed,
		Result:         specs,
		SavedToDb:      job != nil,
		SavedToStatic:  req.SaveToStatic && s.archiver != nil,
		Error:          strings.Join(failures, "\n"),
	})
}
