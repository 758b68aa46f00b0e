package server

import (
	"net/http"
	"time"

	"dkit-partners/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
//
// Each connected client is pinned to one project. The hub owns the client
// set; a refresh ticker keeps metrics fresh for projects with live viewers
// and pushes the rebuilt report. This is the maintenance path for backfill -
// the request path stays correct on its own, the ticker just keeps charts
// moving without polling.
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop
func (s *APIServer) handleWebsockets() {
	interval := time.Duration(s.Config.Analytics.RefreshIntervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case client := <-s.register:
			s.clients[client] = struct{}{}
			// Send the current report on connect
			if update, err := s.buildUpdate(client.projectID, "INITIAL"); err == nil {
				client.send <- update
			} else {
				s.Logger.Warning("Failed to build initial update for project %s: %v", client.projectID, err)
			}

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
			}

		case update := <-s.broadcast:
			s.dispatch(update)

		case <-ticker.C:
			s.refreshWatchedProjects()

		case <-s.quit:
			return
		}
	}
}

// -----------------------------------------------------------------------------

// dispatch fans an update out to the clients of its project.
func (s *APIServer) dispatch(update models.MLiveUpdate) {
	for client := range s.clients {
		if client.projectID != update.ProjectID {
			continue
		}
		select {
		case client.send <- update:
			// Message sent successfully
		default:
			// Client too slow, disconnect to prevent Hub blocking
			delete(s.clients, client)
			close(client.send)
		}
	}
}

// -----------------------------------------------------------------------------

// refreshWatchedProjects backfills and re-broadcasts every project that has
// at least one connected client.
func (s *APIServer) refreshWatchedProjects() {
	seen := make(map[string]struct{})
	for client := range s.clients {
		seen[client.projectID] = struct{}{}
	}

	for projectID := range seen {
		update, err := s.buildUpdate(projectID, "UPDATE")
		if err != nil {
			s.Logger.Error("Live refresh failed for project %s: %v", projectID, err)
			continue
		}
		s.dispatch(update)
	}
}

// -----------------------------------------------------------------------------

func (s *APIServer) buildUpdate(projectID, updateType string) (models.MLiveUpdate, error) {
	report, err := s.Analytics.Report(projectID, nil, nil)
	if err != nil {
		return models.MLiveUpdate{}, err
	}

	return models.MLiveUpdate{
		Type:      updateType,
		ProjectID: projectID,
		Metrics:   report,
		Timestamp: time.Now().Unix(),
	}, nil
}

// -----------------------------------------------------------------------------
// Data Exchange Interface Implementation
// -----------------------------------------------------------------------------

// Broadcast queues an update for delivery to the project's clients.
func (s *APIServer) Broadcast(update models.MLiveUpdate) {
	s.broadcast <- update
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

// handleWebSocket upgrades an authenticated request and pins the connection
// to the caller's project.
func (s *APIServer) handleWebSocket(c *gin.Context) {
	projectID, ok := s.requireProject(c)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Warning("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:       s,
		conn:      conn,
		projectID: projectID,
		send:      make(chan models.MLiveUpdate, 16),
	}

	s.register <- client

	go client.writePump()
	go client.readPump()
}
