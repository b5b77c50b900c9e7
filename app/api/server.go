package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lysyi3m/rss-picks/app/metrics"
)

const envelopeStatusKey = "envelope_status"

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
		SkipPaths: []string{"/metrics"},
	}))

	r.Use(gin.Recovery())
	r.Use(metricsMiddleware())

	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler) {
	browse := r.Group("/browse")
	{
		browse.GET("/all", handler.BrowseAll)
		browse.GET("/category", handler.BrowseCategories)
		browse.GET("/category/:category", handler.BrowseCategory)
		browse.GET("/author", handler.BrowseAuthors)
		browse.GET("/author/:author", handler.BrowseAuthor)
	}

	user := r.Group("/user")
	{
		user.GET("", handler.GetProfile)
		user.POST("", handler.Register)
		user.PUT("", handler.ChangePassword)
		user.DELETE("", handler.DeleteUser)

		user.GET("/login", handler.Login)
		user.GET("/feed", handler.UserFeed)

		user.GET("/author", handler.UserAuthorFeed)
		user.POST("/author", handler.AddAuthor)
		user.DELETE("/author", handler.RemoveAuthor)

		user.GET("/category", handler.UserCategoryFeed)
		user.POST("/category", handler.AddCategory)
		user.DELETE("/category", handler.RemoveCategory)
	}

	r.GET("/health", handler.GetHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":     "RSS Picks",
			"version":     handler.version,
			"description": "Feed browsing by author and category with per-user favorites",
			"endpoints": map[string]string{
				"browse_all":        "/browse/all",
				"browse_category":   "/browse/category/<category>",
				"browse_categories": "/browse/category (categories list)",
				"browse_author":     "/browse/author/<author>",
				"browse_authors":    "/browse/author (authors list)",
				"user":              "/user (GET profile, POST register, PUT password, DELETE account)",
				"login":             "/user/login",
				"feed":              "/user/feed",
				"user_author":       "/user/author (GET feed, POST add, DELETE remove)",
				"user_category":     "/user/category (GET feed, POST add, DELETE remove)",
				"health":            "/health",
				"metrics":           "/metrics",
			},
			"options": map[string]string{
				"format": "rss renders feed endpoints as RSS 2.0",
				"source": "name of a configured feed source",
			},
		})
	})

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}

func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		status := c.Writer.Status()
		if envelopeStatus, ok := c.Get(envelopeStatusKey); ok {
			status = envelopeStatus.(int)
		}

		metrics.RequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
		metrics.RequestDuration.WithLabelValues(route).Observe(time.Since(started).Seconds())
	}
}
