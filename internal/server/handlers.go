package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/plexutil/watchsweep/internal/models"
)

func (s *Server) handleIndex(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, indexHTML)
}

// handleLogin starts a device authorization and sends the browser to
// app.plex.tv. Plex redirects back to /callback once the user approves.
func (s *Server) handleLogin(c *gin.Context) {
	session, err := s.auth.BeginPIN(c.Request.Context())
	if err != nil {
		s.logger.WithError(err).Error("PIN creation failed")
		c.JSON(http.StatusBadGateway, gin.H{"status": "error", "message": "could not reach plex.tv"})
		return
	}

	forward := s.callbackURL(c, session.ID, session.Code)
	c.Redirect(http.StatusFound, s.auth.AuthURL(session.Code, forward))
}

// handleCallback polls the pending PIN once and records the token.
func (s *Server) handleCallback(c *gin.Context) {
	pinID, err := strconv.Atoi(c.Query("pin_id"))
	code := c.Query("pin_code")
	if err != nil || code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "missing pin_id or pin_code"})
		return
	}

	token, err := s.auth.PollPIN(c.Request.Context(), pinID, code)
	if errors.Is(err, models.ErrNotYetAuthorized) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusBadRequest, retryHTML)
		return
	}
	if err != nil {
		s.logger.WithError(err).Error("PIN check failed")
		c.JSON(http.StatusBadGateway, gin.H{"status": "error", "message": "could not verify authorization"})
		return
	}

	username, err := s.auth.Complete(c.Request.Context(), token)
	if err != nil {
		s.logger.WithError(err).Error("Token registration failed")
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "could not store credentials"})
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, fmt.Sprintf(thanksHTML, username))
}

// handleRunSync triggers a synchronization run.
func (s *Server) handleRunSync(c *gin.Context) {
	result, err := s.sync.Run(c.Request.Context())
	if err != nil {
		s.logger.WithError(err).Error("Sync run failed")
		c.JSON(http.StatusBadGateway, gin.H{"status": "error", "message": "synchronization failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"current":  result.CurrentCount,
		"previous": result.PreviousCount,
		"removed":  result.RemovedCount,
	})
}

// handleWebhook removes a single item across all watchlists when a media
// removal notification arrives.
func (s *Server) handleWebhook(c *gin.Context) {
	payload, err := parseWebhook(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	if payload.NotificationType != "media_removed" {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	id := payload.itemID()
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "payload carries no plexId"})
		return
	}

	result, err := s.sync.RemoveItem(c.Request.Context(), id)
	if err != nil {
		s.logger.WithError(err).Error("Event removal failed")
		c.JSON(http.StatusBadGateway, gin.H{"status": "error", "message": "removal failed"})
		return
	}

	if !result.Found {
		c.JSON(http.StatusNotFound, gin.H{"status": "not_found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": fmt.Sprintf("removed %d watchlist entries", len(result.Titles)),
	})
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// callbackURL builds the forward URL Plex redirects the browser to,
// carrying the PIN identifiers back to /callback.
func (s *Server) callbackURL(c *gin.Context, pinID int, code string) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}

	query := url.Values{}
	query.Set("pin_id", strconv.Itoa(pinID))
	query.Set("pin_code", code)

	u := url.URL{Scheme: scheme, Host: c.Request.Host, Path: "/callback", RawQuery: query.Encode()}
	return u.String()
}
