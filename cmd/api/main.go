package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/trace"

	"github.com/mashreq/docs-platform/doc-orchestrator/internal/auth"
	"github.com/mashreq/docs-platform/doc-orchestrator/internal/config"
	"github.com/mashreq/docs-platform/doc-orchestrator/internal/gateway"
	"github.com/mashreq/docs-platform/doc-orchestrator/internal/llm"
	"github.com/mashreq/docs-platform/doc-orchestrator/internal/metrics"
	"github.com/mashreq/docs-platform/doc-orchestrator/internal/orchestration"
	"github.com/mashreq/docs-platform/doc-orchestrator/internal/store"

	_ "github.com/mashreq/docs-platform/doc-orchestrator/docs" // swagger docs
)

// @title Documentation Orchestrator API
// @version 1.0
// @description Multi-agent documentation generation service.
// @description
// @description Upload project files, and a team of specialist agents produces complete
// @description technical documentation: architecture, APIs, security, deployment, testing,
// @description user guides, and performance analysis.

// @contact.name API Support
// @contact.email docs-platform@mashreq.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.

func main() {
	// Initialize OpenTelemetry
	if err := initTracer(); err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to PostgreSQL with retry logic
	log.Println("Connecting to PostgreSQL database...")
	var pool *pgxpool.Pool

	for i := 0; i < 10; i++ {
		pool, err = pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err == nil {
			err = pool.Ping(context.Background())
			if err == nil {
				break
			}
		}
		log.Printf("Waiting for database... (attempt %d/10): %v", i+1, err)
		time.Sleep(3 * time.Second)
	}
	if err != nil {
		log.Fatalf("Failed to connect to database after retries: %v", err)
	}
	defer pool.Close()
	log.Println("Connected to PostgreSQL database")

	st := store.New(pool)
	if err := st.EnsureSchema(context.Background()); err != nil {
		log.Fatalf("Failed to ensure database schema: %v", err)
	}

	// Language model backend; nil means simulation mode
	var chatClient orchestration.ChatClient
	if client := openAIClient(cfg); client != nil {
		chatClient = client
	}

	generationMetrics, err := metrics.NewGenerationMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	orchestrator := orchestration.NewOrchestrator(
		orchestration.DefaultRoster(),
		chatClient,
		cfg.OpenAIModel,
		orchestration.DefaultQualityConfig(),
		orchestration.DefaultAssembleConfig(),
	)
	generator := orchestration.NewService(st, orchestrator, generationMetrics)

	jwtManager := auth.NewJWTManagerWithSecret(cfg.JWTSecret)
	authMW := auth.NewMiddleware(jwtManager)

	gatewayHandler := gateway.NewHandler(st, generator, jwtManager, generationMetrics, cfg.MaxFileSize)
	progressStream := gateway.NewProgressStream(st)

	// Setup Gin router
	router := gin.Default()
	router.Use(structuredLoggingMiddleware())

	// Health checks MUST be at the root for the WebService standard
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	router.GET("/ready", func(c *gin.Context) {
		if err := pool.Ping(context.Background()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"error":  "database connection failed",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	// Swagger documentation (public)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes
	api := router.Group("/api")

	// Public routes (no authentication required)
	api.POST("/auth/login", gatewayHandler.Login)

	// Reads allow anonymous access to public projects
	reads := api.Group("")
	reads.Use(authMW.OptionalAuth())
	reads.GET("/projects/:id", gatewayHandler.GetProject)
	reads.GET("/projects/:id/files", gatewayHandler.ListProjectFiles)
	reads.GET("/projects/:id/files/:name", gatewayHandler.GetProjectFile)
	reads.GET("/projects/:id/documentation/html", gatewayHandler.RenderDocumentationHTML)
	reads.GET("/ws/projects/:id/progress", progressStream.StreamProgress)

	// Protected routes (require JWT authentication)
	protected := api.Group("")
	protected.Use(authMW.RequireAuth())
	protected.POST("/projects", gatewayHandler.CreateProject)
	protected.GET("/projects", gatewayHandler.ListProjects)
	protected.PUT("/projects/:id", gatewayHandler.UpdateProject)
	protected.DELETE("/projects/:id", gatewayHandler.DeleteProject)
	protected.PUT("/projects/:id/documentation", gatewayHandler.UpdateDocumentation)
	protected.PUT("/projects/:id/documentation/sections/:number", gatewayHandler.UpdateDocumentationSection)
	protected.POST("/projects/:id/regenerate", gatewayHandler.RegenerateDocumentation)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Starting Documentation Orchestrator API server on port %s\n", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}

// openAIClient builds the backend client, or nil when no key is configured.
// Returning the concrete nil pointer through the interface would defeat the
// simulation-mode check, hence the indirection.
func openAIClient(cfg *config.Config) *llm.OpenAIClient {
	if cfg.OpenAIAPIKey == "" {
		log.Printf("WARN: OPENAI_API_KEY not set, documentation generation will run in simulation mode")
		return nil
	}
	return llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
}

// initTracer initializes OpenTelemetry tracing
func initTracer() error {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return fmt.Errorf("failed to create stdout exporter: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(tp)
	return nil
}

// structuredLoggingMiddleware provides structured JSON logging for all requests
func structuredLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		userID, _ := c.Get("user_id")

		logEntry := map[string]interface{}{
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": latency.Milliseconds(),
			"client_ip":  c.ClientIP(),
			"user_agent": c.Request.UserAgent(),
		}
		if userID != nil {
			logEntry["user_id"] = userID
		}
		if len(c.Errors) > 0 {
			logEntry["errors"] = c.Errors.String()
		}

		logJSON, _ := json.Marshal(logEntry)
		log.Println(string(logJSON))
	}
}
