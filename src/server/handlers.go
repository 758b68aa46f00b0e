package server

import (
	"net/http"
	"strings"
	"time"

	"dkit-partners/src/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// Profile
// -----------------------------------------------------------------------------

func (s *APIServer) handleMe(c *gin.Context) {
	user := currentUser(c)

	var project models.MProject
	if user.ProjectID != "" {
		p, err := s.DB.GetProject(user.ProjectID)
		if err != nil {
			s.fail(c, err)
			return
		}
		if p != nil {
			project = *p
		}
	}

	c.JSON(http.StatusOK, models.MMeResponse{User: *user, Project: project})
}

// -----------------------------------------------------------------------------
// Project
// -----------------------------------------------------------------------------

func (s *APIServer) handleProjectUpdate(c *gin.Context) {
	projectID, ok := s.requireProject(c)
	if !ok {
		return
	}

	var updates models.MProjectUpdate
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	if err := validateProjectUpdate(updates); err != nil {
		s.fail(c, err)
		return
	}

	project, err := s.DB.UpdateProject(projectID, updates)
	if err != nil {
		s.fail(c, err)
		return
	}
	if project == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Project not found"})
		return
	}

	c.JSON(http.StatusOK, project)
}

// -----------------------------------------------------------------------------
// Metrics
// -----------------------------------------------------------------------------

func (s *APIServer) handleMetrics(c *gin.Context) {
	projectID, ok := s.requireProject(c)
	if !ok {
		return
	}

	from, err := parseRangeParam("from", c.Query("from"))
	if err != nil {
		s.fail(c, err)
		return
	}
	to, err := parseRangeParam("to", c.Query("to"))
	if err != nil {
		s.fail(c, err)
		return
	}

	report, err := s.Analytics.Report(projectID, from, to)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// -----------------------------------------------------------------------------
// Transactions
// -----------------------------------------------------------------------------

func (s *APIServer) handleTransactions(c *gin.Context) {
	projectID, ok := s.requireProject(c)
	if !ok {
		return
	}

	limit, err := parseLimitParam(c.Query("limit"))
	if err != nil {
		s.fail(c, err)
		return
	}

	txs, err := s.Analytics.Transactions(projectID, limit)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, txs)
}

// -----------------------------------------------------------------------------
// API keys
// -----------------------------------------------------------------------------

func (s *APIServer) handleListApiKeys(c *gin.Context) {
	projectID, ok := s.requireProject(c)
	if !ok {
		return
	}

	keys, err := s.DB.GetApiKeys(projectID)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, keys)
}

// -----------------------------------------------------------------------------

type createApiKeyRequest struct {
	Name string `json:"name"`
}

func (s *APIServer) handleCreateApiKey(c *gin.Context) {
	projectID, ok := s.requireProject(c)
	if !ok {
		return
	}

	var req createApiKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "API key name is required"})
		return
	}

	key := models.MApiKey{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Name:      req.Name,
		Key:       "dk_" + strings.ReplaceAll(uuid.New().String(), "-", ""),
		Status:    "active",
		CreatedAt: time.Now().UTC(),
	}
	if err := s.DB.CreateApiKey(key); err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, key)
}

// -----------------------------------------------------------------------------

func (s *APIServer) handleDeleteApiKey(c *gin.Context) {
	projectID, ok := s.requireProject(c)
	if !ok {
		return
	}

	deleted, err := s.DB.DeleteApiKey(c.Param("id"), projectID)
	if err != nil {
		s.fail(c, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"message": "API key not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "API key deleted successfully"})
}
