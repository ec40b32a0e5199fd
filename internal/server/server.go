package server

import (
	"context"
	goerrors "errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	_ "flockscope/docs"
	"flockscope/internal/analysis"
	"flockscope/internal/config"
	"flockscope/internal/service"
	"flockscope/pkg/log"
)

type Server struct {
	conf       *config.Config
	svc        *service.Service
	httpServer *http.Server
	logger     *logrus.Entry
}

func NewServer(ctx context.Context, conf *config.Config, svc *service.Service) (*Server, error) {
	s := &Server{
		conf:   conf,
		svc:    svc,
		logger: log.GetLogger(ctx),
	}

	return s, nil
}

func RequestId() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestId := c.GetHeader(log.HttpXRequestId)
		if requestId == "" {
			requestId = strings.ReplaceAll(uuid.New().String(), "-", "")
		}
		c.Header(log.HttpXRequestId, requestId)
		c.Request = c.Request.WithContext(log.WithRequestId(c.Request.Context(), requestId))
		c.Next()
	}
}

func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		t := time.Now()
		c.Next()
		latency := time.Since(t)
		status := c.Writer.Status()

		logger := log.GetLogger(c.Request.Context())
		if subject := c.GetString(subjectKey); subject != "" {
			logger = logger.WithField(subjectKey, subject)
		}
		logger.Info("ip: ", c.ClientIP(), " method: ", c.Request.Method, " path: ",
			c.Request.URL.Path, " status: ", status, " latency: ", latency)
	}
}

func (s *Server) Start() {
	gin.SetMode(gin.ReleaseMode)
	router := s.SetUpRouter()
	pprof.Register(router)
	s.httpServer = &http.Server{
		Addr:    s.conf.Addr,
		Handler: router,
	}

	var err error
	if s.conf.SSLCert != "" && s.conf.SSLKey != "" {
		s.logger.Infof("start https server on %s", s.conf.Addr)
		err = s.httpServer.ListenAndServeTLS(s.conf.SSLCert, s.conf.SSLKey)
	} else {
		s.logger.Infof("start http server on %s", s.conf.Addr)
		err = s.httpServer.ListenAndServe()
	}
	if err != nil && !goerrors.Is(err, http.ErrServerClosed) {
		s.logger.Fatal(err)
	}
}

// Shutdown waits for in-flight analyses up to the given context deadline.
func (s *Server) Shutdown(ctx context.Context) {
	if s.httpServer == nil {
		return
	}
	err := s.httpServer.Shutdown(ctx)
	if err != nil {
		s.logger.Errorf("server forced to shutdown: %v", err)
	}
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(c *gin.Context, code int, err error) {
	c.JSON(code, ErrorResponse{
		Error: err.Error(),
	})
}

// statusOf maps session failures onto HTTP status codes.
func statusOf(err error) int {
	var (
		openErr *analysis.SourceOpenError
		readErr *analysis.SourceReadError
		detErr  *analysis.DetectionError
	)
	switch {
	case goerrors.Is(err, analysis.ErrInvalidParams):
		return http.StatusBadRequest
	case goerrors.As(err, &openErr), goerrors.As(err, &readErr):
		return http.StatusUnprocessableEntity
	case goerrors.As(err, &detErr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
