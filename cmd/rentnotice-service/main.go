package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"bitbucket.org/mmdatafocus/rentnotice_backend/config"
	"bitbucket.org/mmdatafocus/rentnotice_backend/models"
	"bitbucket.org/mmdatafocus/rentnotice_backend/propwise"
	"bitbucket.org/mmdatafocus/rentnotice_backend/store"
	"bitbucket.org/mmdatafocus/rentnotice_backend/utils"
	"bitbucket.org/mmdatafocus/rentnotice_backend/workflow"
)

const defaultPort = "8080"

func main() {
	port := os.Getenv("RENTNOTICE_PORT")
	if port == "" {
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	fsClient, err := config.GetFirestoreClient(sigCtx)
	if err != nil {
		logger.WithFields(logrus.Fields{"field": "firestore"}).Fatal(err)
	}

	processor := &workflow.JobProcessor{
		Directory: store.NewFirestoreAccounts(fsClient, config.AccountCollection()),
		States:    store.NewAutomationStateStore(store.NewFirestoreDocuments(fsClient, config.AutomationStateCollection())),
		Registry:  workflow.NewRegistry(workflow.NewRentIncreaseAutomation()),
		Secrets:   config.AccessSecret,
		NewAPI: func(apiKey string) (propwise.API, error) {
			return propwise.NewClient(apiKey)
		},
		Logger: logger,
	}
	if archiver := utils.NewGCSArchiverFromEnv(); archiver != nil {
		processor.Archive = archiver
	}

	r := gin.New()
	r.Use(func(c *gin.Context) {
		cid := c.GetHeader("x-correlation-id")
		if cid == "" {
			cid = uuid.NewString()
		}
		c.Request = c.Request.WithContext(utils.SetCorrelationIdInContext(c.Request.Context(), cid))
		c.Next()
	})
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsConfig := cors.DefaultConfig()
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "OPTIONS")
	corsConfig.AddAllowHeaders("Origin", "Content-Type", "Authorization")
	r.Use(cors.New(corsConfig))
	r.Use(requestLogger(logger))
	r.Use(gin.Recovery())

	// Pub/Sub push endpoint for task lifecycle events.
	r.POST("/pubsub/task-events", func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Status(http.StatusNoContent)
			return
		}
		payload, err := workflow.DecodePushEnvelope(body)
		if err != nil {
			// Malformed deliveries are acked, not retried forever.
			c.Status(http.StatusNoContent)
			return
		}
		if _, err := processor.Run(c.Request.Context(), []string{payload.AccountId}, payload.Event); err != nil {
			config.LogError(logger, "service", "taskEventsHandler", "dispatch failed",
				map[string]any{"account_id": payload.AccountId}, err)
		}
		c.Status(http.StatusNoContent)
	})

	// Manual trigger for operators.
	r.POST("/api/automations/rent-increase/run", func(c *gin.Context) {
		var req struct {
			AccountIds []string `json:"account_ids"`
			Event      string   `json:"event"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		var event models.WorkflowEvent
		switch strings.ToLower(strings.TrimSpace(req.Event)) {
		case "created":
			event = models.WorkflowEvent{Type: models.EventTaskCreated}
		case "completed":
			event = models.WorkflowEvent{Type: models.EventTaskStatusChanged, Status: models.TaskStatusCompleted}
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "event must be created or completed"})
			return
		}
		dispatched, err := processor.Run(c.Request.Context(), req.AccountIds, event)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"dispatched": dispatched})
	})

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	select {
	case <-sigCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	case err := <-serverErrCh:
		if err != nil && err != http.ErrServerClosed {
			logger.WithFields(logrus.Fields{"field": "server"}).Error(err)
		}
	}
}

func splitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
		logger.WithFields(logrus.Fields{
			"status":         c.Writer.Status(),
			"method":         c.Request.Method,
			"path":           c.Request.URL.Path,
			"latency":        latency.String(),
			"correlation_id": cid,
		}).Info("request")
	}
}
