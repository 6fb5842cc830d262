package api

import (
	authUsecase "jobtrack-backend/internal/auth/usecase"
	ingestDelivery "jobtrack-backend/internal/ingest/delivery"
	ingestRepo "jobtrack-backend/internal/ingest/repository"
	ingestUsecase "jobtrack-backend/internal/ingest/usecase"
	jobDelivery "jobtrack-backend/internal/job/delivery"
	jobUsecase "jobtrack-backend/internal/job/usecase"
	"jobtrack-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	authUsecase   authUsecase.AuthUsecase
	ingestHandler *ingestDelivery.IngestHandler
	jobHandler    *jobDelivery.JobHandler
	config        *config.Config
}

func NewHandler(
	authUc authUsecase.AuthUsecase,
	integrationUc ingestUsecase.IntegrationUsecase,
	syncUc ingestUsecase.SyncUsecase,
	reviewUc ingestUsecase.ReviewUsecase,
	jobUc jobUsecase.JobUsecase,
	runRepo ingestRepo.SyncRunRepository,
	cfg *config.Config,
) *Handler {
	return &Handler{
		authUsecase:   authUc,
		ingestHandler: ingestDelivery.NewIngestHandler(integrationUc, syncUc, reviewUc, runRepo),
		jobHandler:    jobDelivery.NewJobHandler(jobUc),
		config:        cfg,
	}
}

func (h *Handler) Start(addr string) error {
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	SetupRoutes(r, h)
	return r.Run(addr)
}
