package server

import (
	"net/http"
	"time"

	"dkit-partners/src/auth"
	"dkit-partners/src/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// Account routes
// -----------------------------------------------------------------------------

// handleRegister creates the account, its (empty) project, and the seeded
// demo analytics, then opens a session.
func (s *APIServer) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	if err := validateRegisterRequest(req); err != nil {
		s.fail(c, err)
		return
	}

	existing, err := s.DB.GetUserByEmail(req.Email)
	if err != nil {
		s.fail(c, err)
		return
	}
	if existing != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "User already exists"})
		return
	}

	project := models.MProject{ID: uuid.New().String()}
	if err := s.DB.CreateProject(project); err != nil {
		s.fail(c, err)
		return
	}

	hash, err := s.Auth.HashPassword(req.Password)
	if err != nil {
		s.fail(c, err)
		return
	}

	user := models.MUser{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Email:     req.Email,
		Password:  hash,
		Role:      "PARTNER",
		ProjectID: project.ID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.DB.CreateUser(user); err != nil {
		s.fail(c, err)
		return
	}

	// Every fresh project starts with a full metric backfill and a swap log.
	if err := s.Analytics.SeedProject(project.ID); err != nil {
		s.fail(c, err)
		return
	}

	session, err := s.Auth.OpenSession(user.ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.setSessionCookie(c, session.Token, int(time.Until(session.ExpiresAt).Seconds()))

	c.JSON(http.StatusCreated, gin.H{
		"user":    user,
		"project": project,
	})
}

// -----------------------------------------------------------------------------

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *APIServer) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	user, err := s.DB.GetUserByEmail(req.Email)
	if err != nil {
		s.fail(c, err)
		return
	}
	if user == nil || !s.Auth.CheckPassword(user.Password, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
		return
	}

	session, err := s.Auth.OpenSession(user.ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.setSessionCookie(c, session.Token, int(time.Until(session.ExpiresAt).Seconds()))

	var project *models.MProject
	if user.ProjectID != "" {
		project, err = s.DB.GetProject(user.ProjectID)
		if err != nil {
			s.fail(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"user":    user,
		"project": project,
	})
}

// -----------------------------------------------------------------------------

func (s *APIServer) handleLogout(c *gin.Context) {
	token, _ := c.Cookie(auth.CookieName)
	if err := s.Auth.CloseSession(token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Logout failed"})
		return
	}

	s.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
