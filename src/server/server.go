package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"dkit-partners/src/analytics"
	"dkit-partners/src/auth"
	"dkit-partners/src/helpers"
	"dkit-partners/src/interfaces"
	"dkit-partners/src/logger"
	"dkit-partners/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// APIServer
// -----------------------------------------------------------------------------

type APIServer struct {
	Config    *models.MConfig
	Logger    *logger.Logger
	DB        interfaces.IDatabase
	Analytics *analytics.Service
	Auth      *auth.Manager

	engine *gin.Engine

	// WebSocket clients
	clients    map[*Client]struct{}
	broadcast  chan models.MLiveUpdate // Strongly typed and Buffered Queue
	register   chan *Client
	unregister chan *Client
	quit       chan struct{}
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewAPIServer(cfg *models.MConfig, log *logger.Logger, db interfaces.IDatabase, svc *analytics.Service, authMgr *auth.Manager) *APIServer {
	// Set Gin mode
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &APIServer{
		Config:    cfg,
		Logger:    log,
		DB:        db,
		Analytics: svc,
		Auth:      authMgr,
		engine:    gin.Default(),
		clients:   make(map[*Client]struct{}),
		// Buffered channel to prevent lock/blocking on bursts of updates
		broadcast:  make(chan models.MLiveUpdate, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
	}

	// Add CORS Middleware
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PATCH, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// setup web routes
	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *APIServer) setupRoutes() {
	// Public endpoints
	s.engine.POST("/api/auth/register", s.handleRegister)
	s.engine.POST("/api/auth/login", s.handleLogin)
	s.engine.POST("/api/auth/logout", s.handleLogout)
	s.engine.GET("/api/health", s.handleHealth)

	// Session-scoped endpoints
	authorized := s.engine.Group("/", s.authMiddleware())
	authorized.GET("/api/me", s.handleMe)
	authorized.PATCH("/api/project", s.handleProjectUpdate)
	authorized.GET("/api/metrics", s.handleMetrics)
	authorized.GET("/api/transactions", s.handleTransactions)
	authorized.GET("/api/keys", s.handleListApiKeys)
	authorized.POST("/api/keys", s.handleCreateApiKey)
	authorized.DELETE("/api/keys/:id", s.handleDeleteApiKey)

	// WebSocket endpoint
	authorized.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *APIServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting server on %s", addr)

	go s.handleWebsockets()

	return s.engine.Run(addr)
}

// -----------------------------------------------------------------------------

func (s *APIServer) Stop() error {
	// Clean shutdown of the hub loop
	close(s.quit)
	return nil
}

// -----------------------------------------------------------------------------
// Auth middleware (the AuthContext seam: cookie -> trusted user)
// -----------------------------------------------------------------------------

const userContextKey = "user"

func (s *APIServer) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(auth.CookieName)

		user, err := s.Auth.Resolve(token)
		if err != nil {
			if helpers.IsUnauthenticated(err) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			} else {
				s.Logger.Error("Session resolution failed: %v", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
			}
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// -----------------------------------------------------------------------------

func currentUser(c *gin.Context) *models.MUser {
	user, _ := c.MustGet(userContextKey).(*models.MUser)
	return user
}

// -----------------------------------------------------------------------------

// requireProject returns the caller's project id, or writes the 404 response
// and reports false when the user has no project yet.
func (s *APIServer) requireProject(c *gin.Context) (string, bool) {
	user := currentUser(c)
	if user == nil || user.ProjectID == "" {
		c.JSON(http.StatusNotFound, gin.H{"message": "Project not found"})
		return "", false
	}
	return user.ProjectID, true
}

// -----------------------------------------------------------------------------

// fail maps a service error to its HTTP response.
func (s *APIServer) fail(c *gin.Context, err error) {
	switch {
	case helpers.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case helpers.IsUnauthenticated(err):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
	case helpers.IsProjectNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"message": "Project not found"})
	default:
		s.Logger.Error("Request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
	}
}

// -----------------------------------------------------------------------------

func (s *APIServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"service":   s.Config.Name,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// -----------------------------------------------------------------------------

func (s *APIServer) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetCookie(auth.CookieName, token, maxAge, "/", "", false, true)
}
