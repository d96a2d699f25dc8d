package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gridsight/internal/dao"
	"gridsight/internal/model"
)

const jobKey = "job"

func SetBatchJobToContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		jobUuid := c.Param("job_uuid")
		if jobUuid == "" {
			c.Next()
			return
		}

		job, err := model.GetBatchJobByUuid(jobUuid)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "internal server error",
			})
			return
		} else if job == nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error": "job not found",
			})
			return
		}
		c.Set(jobKey, job)
		c.Next()
	}
}

// handleListJobs list analyze jobs
// @Summary List past analyze jobs
// @Tags job
// @Produce json
// @Param start query int false "offset"
// @Param limit query int false "page size"
// @Success 200 {object} dao.ListBatchJobsResponse
// @Failure 500 {object} ErrorResponse "internal server error"
// @Router /api/v1/jobs [get]
func (s *Server) handleListJobs(c *gin.Context) {
	start, _ := strconv.Atoi(c.DefaultQuery("start", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	jobs, total, err := model.ListBatchJobs(start, limit)
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, err)
		return
	}

	items := make([]dao.BatchJobSpec, 0, len(jobs))
	for i := range jobs {
		spec, err := dao.FromBatchJobModel(&jobs[i])
		if err != nil {
			s.writeError(c, http.StatusInternalServerError, err)
			return
		}
		items = append(items, *spec)
	}

	c.JSON(http.StatusOK, dao.ListBatchJobsResponse{
		Total: total,
		Items: items,
	})
}

// handleGetJob get one analyze job with its per-location verdicts
// @Summary Get one analyze job
// @Tags job
// @Produce json
// @Param job_uuid path string true "job uuid"
// @Success 200 {object} dao.BatchJobSpec
// @Failure 404 {object} ErrorResponse "job not found"
// @Failure 500 {object} ErrorResponse "internal server error"
// @Router /api/v1/job/{job_uuid} [get]
func (s *Server) handleGetJob(c *gin.Context) {
	job := c.MustGet(jobKey).(*model.BatchJob)

	spec, err := dao.FromBatchJobModel(job)
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, err)
		return
	}

	logs, err := model.ListTrafficLogsByJobUuid(job.Uuid)
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, err)
		return
	}
	for i := range logs {
		spec.Logs = append(spec.Logs, *dao.FromTrafficLogModel(&logs[i]))
	}

	c.JSON(http.StatusOK, spec)
}
