package delivery

import (
	"net/http"
	"strconv"
	"time"

	"jobtrack-backend/internal/ingest/domain"
	"jobtrack-backend/internal/ingest/repository"
	"jobtrack-backend/internal/ingest/usecase"
	"jobtrack-backend/pkg/apperr"

	"github.com/gin-gonic/gin"
)

type IngestHandler struct {
	integrations usecase.IntegrationUsecase
	sync         usecase.SyncUsecase
	review       usecase.ReviewUsecase
	runs         repository.SyncRunRepository
}

func NewIngestHandler(integrations usecase.IntegrationUsecase, sync usecase.SyncUsecase, review usecase.ReviewUsecase, runs repository.SyncRunRepository) *IngestHandler {
	return &IngestHandler{
		integrations: integrations,
		sync:         sync,
		review:       review,
		runs:         runs,
	}
}

// statusFor maps error codes onto HTTP statuses; unknown codes are 500s.
func statusFor(err error) int {
	switch apperr.CodeOf(err) {
	case apperr.CodeNotFound:
		return http.StatusNotFound
	case apperr.CodeBadRequest:
		return http.StatusBadRequest
	case apperr.CodeUnauthorized:
		return http.StatusUnauthorized
	case apperr.CodeCredentialsMissing, apperr.CodeUpstreamAuthError:
		return http.StatusBadGateway
	case apperr.CodeTimeout:
		return http.StatusGatewayTimeout
	case apperr.CodeUpstreamRequestError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func abortWith(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error(), "code": apperr.CodeOf(err)})
}

type connectRequest struct {
	RefreshToken string `json:"refresh_token"`
	AccessToken  string `json:"access_token"`
	ExpiresAt    string `json:"expires_at"`
	Scope        string `json:"scope"`
}

// Connect stores credentials for a mail account.
func (h *IngestHandler) Connect(c *gin.Context) {
	var req connectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	creds := domain.Credentials{
		RefreshToken: req.RefreshToken,
		AccessToken:  req.AccessToken,
		Scope:        req.Scope,
	}
	if req.ExpiresAt != "" {
		expiry, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "expires_at must be RFC3339"})
			return
		}
		creds.Expiry = expiry
	}

	integration, err := h.integrations.Connect(c.Param("provider"), c.Param("accountKey"), creds)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusCreated, integration)
}

func (h *IngestHandler) Disconnect(c *gin.Context) {
	if err := h.integrations.Disconnect(c.Request.Context(), c.Param("provider"), c.Param("accountKey")); err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "disconnected"})
}

func (h *IngestHandler) GetIntegration(c *gin.Context) {
	integration, err := h.integrations.Get(c.Param("provider"), c.Param("accountKey"))
	if err != nil {
		abortWith(c, err)
		return
	}
	if integration == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "integration not found"})
		return
	}
	c.JSON(http.StatusOK, integration)
}

func (h *IngestHandler) ListIntegrations(c *gin.Context) {
	integrations, err := h.integrations.List()
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"integrations": integrations})
}

type syncRequest struct {
	SearchDays  int `json:"search_days"`
	MaxMessages int `json:"max_messages"`
}

// TriggerSync runs one synchronous ingestion pass for the account.
func (h *IngestHandler) TriggerSync(c *gin.Context) {
	var req syncRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	summary, err := h.sync.RunSync(c.Request.Context(), c.Param("provider"), c.Param("accountKey"), usecase.SyncOptions{
		SearchDays:  req.SearchDays,
		MaxMessages: req.MaxMessages,
	})
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *IngestHandler) ListRuns(c *gin.Context) {
	integration, err := h.integrations.Get(c.Param("provider"), c.Param("accountKey"))
	if err != nil {
		abortWith(c, err)
		return
	}
	if integration == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "integration not found"})
		return
	}

	limit := 20
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	runs, err := h.runs.FindByIntegration(integration.ID, limit)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (h *IngestHandler) ListPendingMessages(c *gin.Context) {
	limit := 20
	offset := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	messages, total, err := h.review.ListPending(limit, offset)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"messages": messages,
		"limit":    limit,
		"offset":   offset,
		"total":    total,
	})
}

type approveRequest struct {
	JobID string `json:"job_id" binding:"required"`
}

func (h *IngestHandler) ApproveMessage(c *gin.Context) {
	var req approveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "job_id is required"})
		return
	}

	msg, err := h.review.Approve(c.Param("id"), req.JobID, c.GetString("subject"))
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

func (h *IngestHandler) DenyMessage(c *gin.Context) {
	msg, err := h.review.Deny(c.Param("id"), c.GetString("subject"))
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}
