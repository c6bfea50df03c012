package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"qrattend/internal/auth"
	"qrattend/internal/config"
	"qrattend/internal/httpmiddleware"
	"qrattend/internal/marking"
	"qrattend/internal/metrics"
	"qrattend/internal/queue"
	"qrattend/internal/record"
	"qrattend/internal/report"
	"qrattend/internal/store"
	"qrattend/internal/student"
	"qrattend/internal/token"
)

func main() {
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	redisClient := store.NewRedis(cfg.RedisAddr)

	var db *store.DB
	var recordStore record.Store
	switch cfg.StoreBackend {
	case "memory":
		recordStore = record.NewMemory()
	case "postgres":
		var err error
		db, err = store.NewDB(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		recordStore = record.NewPostgresStore(db.Client)
	default:
		recordStore = record.NewRedisStore(redisClient.Client)
	}
	defer func() {
		if db != nil {
			_ = db.Close()
		}
	}()

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "qrattend:marks")
	}

	marker := marking.NewService(recordStore)
	reports := report.NewAggregator(recordStore)

	r := gin.New()

	r.Use(gin.Recovery())

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))

	r.Use(corsMiddleware())
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := redisClient.Healthy(c.Request.Context())
		storeHealthy := cfg.StoreBackend == "memory" || (cfg.StoreBackend == "postgres" && db != nil) || redisHealthy
		status := http.StatusOK
		if !storeHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "store": cfg.StoreBackend})
	})

	r.POST("/v1/students/register", func(c *gin.Context) {
		var req struct {
			ID            string `json:"id" binding:"required"`
			Name          string `json:"name"`
			FirstName     string `json:"firstName"`
			LastName      string `json:"lastName"`
			MiddleInitial string `json:"middleInitial"`
			Email         string `json:"email"`
			Role          string `json:"role"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		role := auth.RoleStudent
		if req.Role == auth.RoleStaff {
			if cfg.StaffKey == "" || c.GetHeader("X-Staff-Key") != cfg.StaffKey {
				c.JSON(http.StatusForbidden, gin.H{"error": "staff key required"})
				return
			}
			role = auth.RoleStaff
		}

		stu := student.Student{
			ID:            req.ID,
			Name:          req.Name,
			FirstName:     req.FirstName,
			LastName:      req.LastName,
			MiddleInitial: req.MiddleInitial,
			Email:         req.Email,
		}
		tokens, err := auth.Issue(stu, role, cfg.JWTIssuer, cfg.JWTSigningKey, cfg.AccessTTL, cfg.RefreshTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"access_token":  tokens.AccessToken,
			"refresh_token": tokens.RefreshToken,
			"expires_at":    tokens.AccessExp.Unix(),
		})
	})

	authGroup := r.Group("/v1", auth.StudentAuth(cfg.JWTSigningKey, cfg.JWTIssuer))

	authGroup.GET("/attendance/status", func(c *gin.Context) {
		claims, ok := auth.FromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing claims"})
			return
		}
		today := record.DateKey(time.Now())
		st, err := marker.Status(c.Request.Context(), claims.Student, today)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "attendance store unavailable"})
			return
		}
		resp := gin.H{"state": st.State, "date": today}
		if st.MarkedAt != "" {
			resp["markedAt"] = st.MarkedAt
		}
		c.JSON(http.StatusOK, resp)
	})

	authGroup.POST("/attendance/scans", func(c *gin.Context) {
		var req struct {
			Payload string `json:"payload" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		claims, ok := auth.FromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing claims"})
			return
		}

		today := record.DateKey(time.Now())
		out, err := marker.SubmitScan(c.Request.Context(), req.Payload, claims.Student, today)
		switch {
		case errors.Is(err, token.ErrMalformed):
			metrics.ScansRejected.WithLabelValues("malformed_token").Inc()
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"code":  "malformed_token",
				"error": "invalid code, please scan the attendance code again",
			})
			return
		case errors.Is(err, marking.ErrWrongDate):
			metrics.ScansRejected.WithLabelValues("wrong_date").Inc()
			c.JSON(http.StatusConflict, gin.H{
				"code":  "wrong_date",
				"error": "this code is not valid for today, ask for today's code",
			})
			return
		case errors.Is(err, record.ErrStoreUnavailable):
			metrics.ScansRejected.WithLabelValues("store_unavailable").Inc()
			c.JSON(http.StatusServiceUnavailable, gin.H{"code": "store_unavailable", "error": "attendance store unavailable"})
			return
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if out.Status == marking.OutcomeAccepted {
			metrics.ScansAccepted.Inc()
			if body, err := json.Marshal(out.Record); err == nil {
				if err := q.Publish(c.Request.Context(), queue.Message{Type: queue.TypeMark, Body: body}); err != nil {
					log.Printf("queue publish failed: %v", err)
				}
			}
		} else {
			metrics.ScansDuplicate.Inc()
		}

		c.JSON(http.StatusOK, gin.H{
			"status":   out.Status,
			"markedAt": out.Record.MarkedAt,
			"record":   out.Record,
		})
	})

	authGroup.GET("/attendance/report", func(c *gin.Context) {
		claims, ok := auth.FromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing claims"})
			return
		}

		window := cfg.ReportWindowDays
		if v := c.Query("window"); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
				window = parsed
			}
		}

		rep, err := reports.Build(c.Request.Context(), claims.Student, window, time.Now())
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "attendance store unavailable"})
			return
		}
		metrics.ReportsBuilt.Inc()
		c.JSON(http.StatusOK, rep)
	})

	authGroup.POST("/sessions/codes", auth.RequireRole(auth.RoleStaff), func(c *gin.Context) {
		tok := token.Mint(record.DateKey(time.Now()))
		encoded, err := tok.Encode()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "encode failed"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"payload":   encoded,
			"sessionId": tok.SessionID,
			"date":      tok.SessionDate,
		})
	})

	// Graceful shutdown
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}

// CORS middleware for browser requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Staff-Key")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// Only add HSTS in production
		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
