package gateway

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mashreq/docs-platform/doc-orchestrator/internal/models"
	"github.com/mashreq/docs-platform/doc-orchestrator/internal/store"
)

var wsTracer = otel.Tracer("doc-orchestrator/progress-stream")

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// TODO: Implement proper origin checking for production
		return true
	},
}

const progressPollInterval = time.Second

// ProgressStream pushes generation progress to clients over a WebSocket. It
// polls the project row and forwards changes until the run reaches a
// terminal state.
type ProgressStream struct {
	store *store.Store
}

// NewProgressStream creates a progress streamer backed by the store.
func NewProgressStream(st *store.Store) *ProgressStream {
	return &ProgressStream{store: st}
}

// progressEvent is one update frame sent to the client.
type progressEvent struct {
	ProjectID     string  `json:"project_id"`
	Status        string  `json:"status"`
	Progress      int     `json:"progress"`
	StatusMessage *string `json:"status_message,omitempty"`
	Error         *string `json:"error,omitempty"`
}

// StreamProgress godoc
// @Summary Stream generation progress
// @Description WebSocket endpoint streaming real-time documentation generation progress
// @Tags projects
// @Param id path string true "Project ID"
// @Success 101 "Switching Protocols"
// @Failure 404 {object} map[string]string
// @Router /ws/projects/{id}/progress [get]
func (p *ProgressStream) StreamProgress(c *gin.Context) {
	ctx, span := wsTracer.Start(c.Request.Context(), "progress_stream.stream")
	defer span.End()

	projectID := c.Param("id")
	span.SetAttributes(attribute.String("project.id", projectID))

	project, err := p.store.GetProject(ctx, projectID)
	if err != nil {
		span.RecordError(err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		span.RecordError(err)
		log.Printf(`{"level":"error","message":"WebSocket upgrade failed","project_id":"%s","error":"%v"}`, projectID, err)
		return
	}
	defer conn.Close()

	// Drain client frames so close messages are noticed.
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	lastProgress := -1
	lastStatus := ""
	send := func(pr *models.Project) error {
		if pr.Progress == lastProgress && pr.Status == lastStatus {
			return nil
		}
		lastProgress = pr.Progress
		lastStatus = pr.Status
		return conn.WriteJSON(progressEvent{
			ProjectID:     pr.ID,
			Status:        pr.Status,
			Progress:      pr.Progress,
			StatusMessage: pr.StatusMessage,
			Error:         pr.ErrorMessage,
		})
	}

	if err := send(project); err != nil {
		return
	}
	if project.Status != models.ProjectStatusProcessing {
		return
	}

	ticker := time.NewTicker(progressPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-clientGone:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			project, err = p.store.GetProject(ctx, projectID)
			if err != nil {
				span.RecordError(err)
				return
			}
			if err := send(project); err != nil {
				return
			}
			if project.Status != models.ProjectStatusProcessing {
				return
			}
		}
	}
}
