package delivery

import (
	"net/http"

	"jobtrack-backend/internal/job/domain"
	"jobtrack-backend/internal/job/usecase"

	"github.com/gin-gonic/gin"
)

type JobHandler struct {
	jobUsecase usecase.JobUsecase
}

func NewJobHandler(jobUsecase usecase.JobUsecase) *JobHandler {
	return &JobHandler{jobUsecase: jobUsecase}
}

type createJobRequest struct {
	Employer string `json:"employer" binding:"required"`
	Title    string `json:"title" binding:"required"`
	Stage    string `json:"stage"`
}

func (h *JobHandler) CreateApplication(c *gin.Context) {
	var req createJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job := &domain.JobApplication{
		Employer: req.Employer,
		Title:    req.Title,
		Stage:    req.Stage,
	}
	if err := h.jobUsecase.CreateApplication(job); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, job)
}

func (h *JobHandler) ListApplications(c *gin.Context) {
	jobs, err := h.jobUsecase.ListApplications()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": jobs})
}

func (h *JobHandler) GetTimeline(c *gin.Context) {
	events, err := h.jobUsecase.GetTimeline(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}
