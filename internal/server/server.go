package server

import (
	"context"
	goerrors "errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	_ "gridsight/docs"
	"gridsight/internal/cache"
	"gridsight/internal/capture"
	"gridsight/internal/config"
	"gridsight/internal/sink"
	"gridsight/internal/traffic"
	"gridsight/pkg/log"
)

const httpXRequestId = "X-Request-Id"

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	analyzer   *traffic.Analyzer
	capturer   traffic.Capturer
	archiver   traffic.Archiver
	cache      *cache.ResultCache
	publisher  *sink.Publisher
	logger     *logrus.Entry
}

func NewServer(ctx context.Context, conf *config.Config) (*Server, error) {
	// a broken color-band table must not come up at all
	classifier, err := conf.NewClassifier()
	if err != nil {
		return nil, err
	}

	s := &Server{
		conf:     conf,
		analyzer: traffic.NewAnalyzer(classifier, conf.Analysis.Geometry()),
		capturer: capture.NewRenderer(conf.Capture),
		logger:   log.GetLogger(ctx),
	}

	if conf.S3.AccessKeyID != "" {
		s.archiver, err = sink.NewScreenshotArchiver(conf.S3)
		if err != nil {
			return nil, err
		}
	}

	if conf.Cache.Enabled {
		s.cache, err = cache.Open(conf.Cache)
		if err != nil {
			return nil, err
		}
	}

	if conf.NSQ.NSQDAddr != "" {
		s.publisher, err = sink.NewPublisher(conf.NSQ)
		if err != nil {
			return nil, err
		}
	}

	return s, nil
}

func RequestId() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestId := c.GetHeader(httpXRequestId)
		if requestId == "" {
			requestId = strings.ReplaceAll(uuid.New().String(), "-", "")
		}
		c.Header(httpXRequestId, requestId)
		c.Next()
	}
}

func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		t := time.Now()
		c.Next()
		latency := time.Since(t)
		status := c.Writer.Status()

		logrus.Info("ip: ", c.ClientIP(), " method: ", c.Request.Method, " path: ",
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
		logrus.Infof("start https server on %s", s.conf.Addr)
		err = s.httpServer.ListenAndServeTLS(s.conf.SSLCert, s.conf.SSLKey)
	} else {
		logrus.Infof("start http server on %s", s.conf.Addr)
		err = s.httpServer.ListenAndServe()
	}
	if err != nil && !goerrors.Is(err, http.ErrServerClosed) {
		logrus.Fatal(err)
	}
}

func (s *Server) Shutdown() {
	if err := s.httpServer.Shutdown(context.Background()); err != nil {
		logrus.Fatalf("server forced to shutdown: %v", err)
	}
	if s.publisher != nil {
		s.publisher.Close()
	}
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			logrus.Errorf("close result cache: %v", err)
		}
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

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("compass", func(fl validator.FieldLevel) bool {
			_, err := traffic.ParseDirection(fl.Field().String())
			return err == nil
		})
	}
}
