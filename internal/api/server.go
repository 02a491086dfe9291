package api

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/spark-labs/agent-scout/internal/db"
	"github.com/spark-labs/agent-scout/internal/ingest"
)

type Server struct {
	Store    *db.Store
	Echo     *echo.Echo
	DB       *pgxpool.Pool
	Pipeline *ingest.Pipeline
}

var (
	adminSecretOnce    sync.Once
	adminSecretRuntime string
	adminSecretErr     error
)

func NewServer(pool *pgxpool.Pool, pipeline *ingest.Pipeline) *Server {
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// CORS: allow frontend origins from env or default to localhost
	allowedOrigins := []string{"http://localhost:4200"}
	if extra := os.Getenv("CORS_ORIGINS"); extra != "" {
		for _, o := range strings.Split(extra, ",") {
			o = strings.TrimSpace(o)
			if o != "" {
				allowedOrigins = append(allowedOrigins, o)
			}
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, "X-Admin-Secret"},
	}))

	s := &Server{
		Store:    db.NewStore(pool),
		Echo:     e,
		DB:       pool,
		Pipeline: pipeline,
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.Echo.GET("/health", s.handleHealth)

	api := s.Echo.Group("/api/v1")
	api.GET("/projects", s.handleListProjects)
	api.GET("/projects/:slug", s.handleGetProject)
	api.GET("/stats", s.handleGetStats)

	admin := api.Group("/admin")
	admin.Use(s.adminMiddleware)
	admin.POST("/refresh-projects", s.handleRefreshProjects)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (s *Server) handleListProjects(c echo.Context) error {
	params := db.ListParams{
		Query:    c.QueryParam("q"),
		Status:   c.QueryParam("status"),
		Category: c.QueryParam("category"),
		SortBy:   c.QueryParam("sort"),
	}

	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			params.Limit = n
		}
	}
	if v := c.QueryParam("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			params.Offset = n
		}
	}

	result, err := s.Store.ListProjects(c.Request().Context(), params)
	if err != nil {
		log.Printf("[API] List projects failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleGetProject(c echo.Context) error {
	slug := c.Param("slug")
	project, err := s.Store.GetProjectBySlug(c.Request().Context(), slug)
	if err != nil {
		if db.IsNotFound(err) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
		}
		log.Printf("[API] Get project %s failed: %v", slug, err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	return c.JSON(http.StatusOK, project)
}

func (s *Server) handleGetStats(c echo.Context) error {
	stats, err := s.Store.GetStats(c.Request().Context())
	if err != nil {
		log.Printf("[API] Stats failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	return c.JSON(http.StatusOK, stats)
}

// handleRefreshProjects triggers a refresh synchronously. With ?slug= only
// that one project is scraped; a slug that cannot be scraped is a 404. A
// full-run failure is a 500; partial record failures still count as success.
func (s *Server) handleRefreshProjects(c echo.Context) error {
	ctx := c.Request().Context()

	if slug := strings.TrimSpace(c.QueryParam("slug")); slug != "" {
		project, result := s.Pipeline.UpdateOne(ctx, slug)
		if !result.Success {
			return c.JSON(http.StatusNotFound, result)
		}
		return c.JSON(http.StatusOK, map[string]interface{}{
			"success": true,
			"slug":    slug,
			"new":     result.New,
			"updated": result.Updated,
			"project": project,
		})
	}

	result := s.Pipeline.UpdateProjects(ctx)
	if !result.Success {
		return c.JSON(http.StatusInternalServerError, result)
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) Start(port string) error {
	return s.Echo.Start(":" + port)
}

func (s *Server) adminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		secret, err := adminSecret()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Server admin configuration error"})
		}

		authHeader := c.Request().Header.Get("Authorization")
		adminHeader := c.Request().Header.Get("X-Admin-Secret")

		if adminHeader == secret {
			return next(c)
		}
		if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
			if authHeader[7:] == secret {
				return next(c)
			}
		}

		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized admin access"})
	}
}

func adminSecret() (string, error) {
	adminSecretOnce.Do(func() {
		secret := strings.TrimSpace(os.Getenv("ADMIN_SECRET"))
		if secret != "" {
			adminSecretRuntime = secret
			return
		}

		buf := make([]byte, 48)
		if _, err := rand.Read(buf); err != nil {
			adminSecretErr = fmt.Errorf("failed to generate ADMIN_SECRET fallback: %w", err)
			return
		}

		adminSecretRuntime = base64.RawURLEncoding.EncodeToString(buf)
		log.Print("ADMIN_SECRET is not set; using ephemeral in-memory fallback secret")
	})

	if adminSecretErr != nil {
		return "", adminSecretErr
	}
	if adminSecretRuntime == "" {
		return "", fmt.Errorf("admin secret unavailable")
	}

	return adminSecretRuntime, nil
}
