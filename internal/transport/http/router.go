package httptransport

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gincontribstatic "github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"

	"transportadoras-server-go/internal/platform/config"
	"transportadoras-server-go/internal/platform/logging"
)

// Options configures the HTTP router builder.
type Options struct {
	Config            *config.Config
	Logger            *logging.Logger
	SessionMiddleware gin.HandlerFunc
	AccessMiddleware  gin.HandlerFunc
}

// Router bundles together the gin engine and common route groups.
type Router struct {
	Engine *gin.Engine
	// API is the /api group; public probes register here.
	API *gin.RouterGroup
	// Secured is the /api group behind the session gate.
	Secured *gin.RouterGroup
}

// Build constructs a gin engine pre-configured with recovery, logging, CORS,
// access recording and static serving of the app shell.
func Build(opts Options) (*Router, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("http router requires config")
	}
	if opts.Logger == nil {
		return nil, fmt.Errorf("http router requires logger")
	}
	logger := opts.Logger

	if strings.EqualFold(opts.Config.Log.Level, "debug") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(loggingMiddleware(logger))
	if opts.AccessMiddleware != nil {
		engine.Use(opts.AccessMiddleware)
	}

	_ = engine.SetTrustedProxies([]string{"0.0.0.0"})

	engine.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "HEAD", "OPTIONS", "PATCH"},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"X-Session-Token",
			"Accept",
		},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	staticRoot := opts.Config.Web.StaticDir
	if staticRoot == "" {
		staticRoot = "./web"
	}
	engine.Use(gincontribstatic.Serve("/", gincontribstatic.LocalFile(staticRoot, true)))
	engine.GET("/app", func(c *gin.Context) {
		c.File(staticRoot + "/index.html")
	})

	// JSON 404 for unknown API routes; everything else falls back to the
	// app shell so client-side routing keeps working.
	engine.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, ErrorBody{
				Error:   "404 - Rota não encontrada",
				Message: c.Request.URL.Path,
			})
			return
		}
		c.File(staticRoot + "/index.html")
	})

	api := engine.Group("/api")
	var secured *gin.RouterGroup
	if opts.SessionMiddleware != nil {
		secured = api.Group("")
		secured.Use(opts.SessionMiddleware)
	} else {
		secured = api
	}

	return &Router{
		Engine:  engine,
		API:     api,
		Secured: secured,
	}, nil
}

func loggingMiddleware(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		status := c.Writer.Status()

		logger.Info(
			"[HTTP] %s %s -> %d (%s)",
			c.Request.Method,
			c.Request.URL.Path,
			status,
			duration,
		)
	}
}
