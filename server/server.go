package server

import (
	"context"
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/johnstarich/tally/pipeline"
	"go.uber.org/zap"
)

const (
	syncInterval = 1 * time.Hour
	loggerKey    = "logger"
)

// Runner runs an ingestion and returns its result
type Runner interface {
	Run(ctx context.Context) (pipeline.Result, error)
}

// Run starts the report server on addr and blocks until the server fails or ctx is canceled.
// If autoSync is set, runs start immediately and then on an interval until ctx is canceled.
func Run(ctx context.Context, autoSync bool, addr string, runner Runner, logger *zap.Logger) error {
	s := newSyncer(ctx, runner, logger)
	engine := newEngine(s, logger)

	if autoSync {
		go s.loop(ctx, syncInterval)
	}

	errs := make(chan error, 1)
	go func() {
		logger.Info("Starting server", zap.String("addr", addr))
		errs <- engine.Run(addr)
	}()
	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		logger.Info("Stopping server")
		return nil
	}
}

func newEngine(s *syncer, logger *zap.Logger) *gin.Engine {
	engine := gin.New()
	engine.Use(
		ginzap.Ginzap(logger, time.RFC3339, true),
		recovery(logger, true),
	)

	api := engine.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Set(loggerKey, logger)
	})
	setupAPI(api, s)
	return engine
}

func setupAPI(router gin.IRouter, s *syncer) {
	router.GET("/version", getVersion)
	router.POST("/sync", startSync(s))
	router.GET("/status", getStatus(s))
	router.GET("/report", getReport(s))
	router.GET("/vendors", getVendors(s))
}

func abortWithClientError(c *gin.Context, status int, err error) {
	logger := c.MustGet(loggerKey).(*zap.Logger)
	if status/100 == 5 {
		logger.Error("Aborting with server error", zap.Error(err))
	} else {
		logger.Info("Aborting with client error", zap.String("error", err.Error()))
	}
	c.AbortWithStatusJSON(status, map[string]string{
		"Error": err.Error(),
	})
}

func startSync(s *syncer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.Start() {
			c.AbortWithStatusJSON(http.StatusConflict, map[string]string{
				"Error": "A sync is already running",
			})
			return
		}
		c.Status(http.StatusAccepted)
	}
}

type statusResponse struct {
	Running   bool
	LastError string `json:",omitempty"`
}

func getStatus(s *syncer) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := statusResponse{Running: s.Running()}
		if err := s.LastError(); err != nil {
			status.LastError = err.Error()
		}
		c.JSON(http.StatusOK, status)
	}
}
