package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"
	"golang.org/x/crypto/bcrypt"

	"github.com/mashreq/docs-platform/doc-orchestrator/internal/auth"
	"github.com/mashreq/docs-platform/doc-orchestrator/internal/fileproc"
	"github.com/mashreq/docs-platform/doc-orchestrator/internal/metrics"
	"github.com/mashreq/docs-platform/doc-orchestrator/internal/models"
	"github.com/mashreq/docs-platform/doc-orchestrator/internal/orchestration"
	"github.com/mashreq/docs-platform/doc-orchestrator/internal/store"
)

// generationTimeout bounds one background documentation run.
const generationTimeout = 10 * time.Minute

// Handler handles HTTP requests for the gateway layer
type Handler struct {
	store       *store.Store
	generator   *orchestration.Service
	jwtManager  *auth.JWTManager
	metrics     *metrics.GenerationMetrics
	maxFileSize int64
}

// NewHandler creates a new gateway handler. metrics may be nil.
func NewHandler(st *store.Store, generator *orchestration.Service, jwtManager *auth.JWTManager, gm *metrics.GenerationMetrics, maxFileSize int64) *Handler {
	return &Handler{
		store:       st,
		generator:   generator,
		jwtManager:  jwtManager,
		metrics:     gm,
		maxFileSize: maxFileSize,
	}
}

// Login godoc
// @Summary User login
// @Description Authenticate user and return JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login credentials"
// @Success 200 {object} models.LoginResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	user, err := h.store.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		log.Printf(`{"level":"warn","message":"User not found","email":"%s"}`, req.Email)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		log.Printf(`{"level":"warn","message":"Invalid password","email":"%s"}`, req.Email)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	expiresAt := time.Now().Add(24 * time.Hour)
	token, err := h.jwtManager.GenerateToken(c.Request.Context(), user.ID, user.Email, []string{"user"}, 24*time.Hour)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user.ToUserInfo(),
	})
}

// CreateProject godoc
// @Summary Create documentation project
// @Description Upload project files and start documentation generation
// @Tags projects
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Project title"
// @Param description formData string false "Project description"
// @Param files formData file false "Project files"
// @Success 201 {object} models.Project
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /projects [post]
func (h *Handler) CreateProject(c *gin.Context) {
	title := c.PostForm("title")
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Project title is required"})
		return
	}
	description := c.PostForm("description")

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form"})
		return
	}

	var files []models.FileRecord
	for _, fh := range form.File["files"] {
		if h.maxFileSize > 0 && fh.Size > h.maxFileSize {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("File %s exceeds the %d byte limit", fh.Filename, h.maxFileSize)})
			return
		}
		src, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Failed to open file %s", fh.Filename)})
			return
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Failed to read file %s", fh.Filename)})
			return
		}
		record, err := fileproc.Process(fh.Filename, data)
		if err != nil {
			log.Printf(`{"level":"warn","message":"File extraction failed","file":"%s","error":"%v"}`, fh.Filename, err)
		}
		files = append(files, record)
	}

	project := &models.Project{
		Title:       title,
		Description: description,
		Status:      models.ProjectStatusProcessing,
		Files:       files,
	}
	if userID, ok := c.Get(auth.ContextUserID); ok {
		id := userID.(string)
		project.CreatedBy = &id
	}

	if err := h.store.CreateProject(c.Request.Context(), project); err != nil {
		log.Printf(`{"level":"error","message":"Failed to create project","error":"%v"}`, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}

	h.launchGeneration(project.ID)
	c.JSON(http.StatusCreated, project)
}

// launchGeneration runs documentation generation in the background with its
// own detached context, so the HTTP request returns immediately.
func (h *Handler) launchGeneration(projectID string) {
	if h.metrics != nil {
		h.metrics.RecordStarted(context.Background())
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), generationTimeout)
		defer cancel()
		if err := h.generator.Generate(ctx, projectID); err != nil {
			log.Printf(`{"level":"error","message":"Generation failed","project_id":"%s","error":"%v"}`, projectID, err)
		}
	}()
}

// ListProjects godoc
// @Summary List projects
// @Description List the caller's own and public documentation projects, newest first
// @Tags projects
// @Produce json
// @Success 200 {array} models.Project
// @Security BearerAuth
// @Router /projects [get]
func (h *Handler) ListProjects(c *gin.Context) {
	var callerID string
	if userID, ok := c.Get(auth.ContextUserID); ok {
		callerID = userID.(string)
	}
	projects, err := h.store.ListProjects(c.Request.Context(), callerID)
	if err != nil {
		log.Printf(`{"level":"error","message":"Failed to list projects","error":"%v"}`, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list projects"})
		return
	}
	if projects == nil {
		projects = []models.Project{}
	}
	c.JSON(http.StatusOK, projects)
}

// GetProject godoc
// @Summary Get project
// @Description Fetch one project including its documentation and status
// @Tags projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} models.Project
// @Failure 404 {object} map[string]string
// @Router /projects/{id} [get]
func (h *Handler) GetProject(c *gin.Context) {
	project, ok := h.loadProject(c)
	if !ok {
		return
	}
	if !h.canRead(c, project) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}
	c.JSON(http.StatusOK, project)
}

// UpdateProjectRequest carries the editable project fields.
type UpdateProjectRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	IsPublic    *bool   `json:"is_public"`
}

// UpdateProject godoc
// @Summary Update project
// @Description Update the title, description, or visibility of a project
// @Tags projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param request body UpdateProjectRequest true "Fields to update"
// @Success 200 {object} models.Project
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /projects/{id} [put]
func (h *Handler) UpdateProject(c *gin.Context) {
	project, ok := h.loadProject(c)
	if !ok {
		return
	}
	if !h.canWrite(c, project) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	description := ""
	if req.Description != nil {
		description = *req.Description
	} else {
		description = project.Description
	}

	updated, err := h.store.UpdateProject(c.Request.Context(), project.ID, req.Title, description, req.IsPublic)
	if err != nil {
		log.Printf(`{"level":"error","message":"Failed to update project","project_id":"%s","error":"%v"}`, project.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteProject godoc
// @Summary Delete project
// @Description Permanently delete a project and its documentation
// @Tags projects
// @Param id path string true "Project ID"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /projects/{id} [delete]
func (h *Handler) DeleteProject(c *gin.Context) {
	project, ok := h.loadProject(c)
	if !ok {
		return
	}
	if !h.canWrite(c, project) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}
	if err := h.store.DeleteProject(c.Request.Context(), project.ID); err != nil {
		log.Printf(`{"level":"error","message":"Failed to delete project","project_id":"%s","error":"%v"}`, project.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete project"})
		return
	}
	c.Status(http.StatusNoContent)
}

// ProjectFileInfo summarizes one uploaded file without its content.
type ProjectFileInfo struct {
	Name       string `json:"name"`
	Size       int64  `json:"size"`
	Type       string `json:"type"`
	ImageCount int    `json:"image_count"`
}

// ListProjectFiles godoc
// @Summary List project files
// @Description List the uploaded files of a project without their contents
// @Tags projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {array} ProjectFileInfo
// @Failure 404 {object} map[string]string
// @Router /projects/{id}/files [get]
func (h *Handler) ListProjectFiles(c *gin.Context) {
	project, ok := h.loadProject(c)
	if !ok {
		return
	}
	if !h.canRead(c, project) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}
	infos := make([]ProjectFileInfo, 0, len(project.Files))
	for _, f := range project.Files {
		infos = append(infos, ProjectFileInfo{
			Name:       f.Name,
			Size:       f.Size,
			Type:       f.Type,
			ImageCount: len(f.EmbeddedImages),
		})
	}
	c.JSON(http.StatusOK, infos)
}

// GetProjectFile godoc
// @Summary Get project file
// @Description Fetch one uploaded file record including extracted content
// @Tags projects
// @Produce json
// @Param id path string true "Project ID"
// @Param name path string true "File name"
// @Success 200 {object} models.FileRecord
// @Failure 404 {object} map[string]string
// @Router /projects/{id}/files/{name} [get]
func (h *Handler) GetProjectFile(c *gin.Context) {
	project, ok := h.loadProject(c)
	if !ok {
		return
	}
	if !h.canRead(c, project) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}
	name := c.Param("name")
	for _, f := range project.Files {
		if f.Name == name {
			c.JSON(http.StatusOK, f)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "File not found", "code": models.ErrCodeFileNotFound})
}

// UpdateDocumentationRequest carries a full documentation replacement.
type UpdateDocumentationRequest struct {
	Documentation string `json:"documentation" binding:"required"`
}

// UpdateDocumentation godoc
// @Summary Replace documentation
// @Description Replace the full generated document with edited markdown
// @Tags documentation
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param request body UpdateDocumentationRequest true "New documentation"
// @Success 200 {object} models.Project
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /projects/{id}/documentation [put]
func (h *Handler) UpdateDocumentation(c *gin.Context) {
	project, ok := h.loadProject(c)
	if !ok {
		return
	}
	if !h.canWrite(c, project) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	var req UpdateDocumentationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := h.store.UpdateDocumentation(c.Request.Context(), project.ID, req.Documentation, nil); err != nil {
		log.Printf(`{"level":"error","message":"Failed to update documentation","project_id":"%s","error":"%v"}`, project.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update documentation"})
		return
	}
	updated, err := h.store.GetProject(c.Request.Context(), project.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reload project"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

// UpdateSectionRequest carries edited markdown for one section tab.
type UpdateSectionRequest struct {
	Content string `json:"content" binding:"required"`
}

// UpdateDocumentationSection godoc
// @Summary Update one documentation section
// @Description Replace the content of one section tab and rebuild the document
// @Tags documentation
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param number path int true "Section number"
// @Param request body UpdateSectionRequest true "New section content"
// @Success 200 {object} models.Project
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /projects/{id}/documentation/sections/{number} [put]
func (h *Handler) UpdateDocumentationSection(c *gin.Context) {
	project, ok := h.loadProject(c)
	if !ok {
		return
	}
	if !h.canWrite(c, project) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}
	if project.GenerationMetadata == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Project has no generated documentation yet"})
		return
	}

	var req UpdateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var number int
	if _, err := fmt.Sscanf(c.Param("number"), "%d", &number); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid section number"})
		return
	}

	var meta models.GenerationMetadata
	if err := json.Unmarshal([]byte(*project.GenerationMetadata), &meta); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Corrupt generation metadata"})
		return
	}

	found := false
	for i := range meta.Tabs {
		if meta.Tabs[i].SectionNumber == number {
			meta.Tabs[i].Content = req.Content
			meta.Tabs[i].WordCount = len(bytes.Fields([]byte(req.Content)))
			found = true
			break
		}
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Section not found"})
		return
	}

	document := renderDocument(meta.Tabs)
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode metadata"})
		return
	}
	metaStr := string(metaJSON)
	if err := h.store.UpdateDocumentation(c.Request.Context(), project.ID, document, &metaStr); err != nil {
		log.Printf(`{"level":"error","message":"Failed to update section","project_id":"%s","error":"%v"}`, project.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update section"})
		return
	}

	updated, err := h.store.GetProject(c.Request.Context(), project.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reload project"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

// renderDocument rebuilds the combined markdown from section tabs, keeping
// the same layout the assembler produces.
func renderDocument(tabs []models.SectionRecord) string {
	var b bytes.Buffer
	for _, t := range tabs {
		if t.SectionNumber == 0 {
			b.WriteString(t.Content)
			b.WriteString("\n\n---\n")
			continue
		}
		fmt.Fprintf(&b, "# %d. %s\n%s\n\n---\n", t.SectionNumber, t.Title, t.Content)
	}
	return b.String()
}

// RenderDocumentationHTML godoc
// @Summary Render documentation as HTML
// @Description Convert the generated markdown document to HTML
// @Tags documentation
// @Produce html
// @Param id path string true "Project ID"
// @Success 200 {string} string "HTML document"
// @Failure 404 {object} map[string]string
// @Router /projects/{id}/documentation/html [get]
func (h *Handler) RenderDocumentationHTML(c *gin.Context) {
	project, ok := h.loadProject(c)
	if !ok {
		return
	}
	if !h.canRead(c, project) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}
	if project.Documentation == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Documentation not generated yet"})
		return
	}

	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(*project.Documentation), &buf); err != nil {
		log.Printf(`{"level":"error","message":"Markdown conversion failed","project_id":"%s","error":"%v"}`, project.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render documentation"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// RegenerateDocumentation godoc
// @Summary Regenerate documentation
// @Description Reset the project and start a fresh generation run
// @Tags documentation
// @Produce json
// @Param id path string true "Project ID"
// @Success 202 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /projects/{id}/regenerate [post]
func (h *Handler) RegenerateDocumentation(c *gin.Context) {
	project, ok := h.loadProject(c)
	if !ok {
		return
	}
	if !h.canWrite(c, project) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}
	if err := h.store.ResetForRegeneration(c.Request.Context(), project.ID); err != nil {
		log.Printf(`{"level":"error","message":"Failed to reset project","project_id":"%s","error":"%v"}`, project.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start regeneration"})
		return
	}
	h.launchGeneration(project.ID)
	c.JSON(http.StatusAccepted, gin.H{"status": "processing", "project_id": project.ID})
}

// loadProject fetches the project from the path parameter, writing the 404
// response itself when missing.
func (h *Handler) loadProject(c *gin.Context) (*models.Project, bool) {
	project, err := h.store.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found", "code": models.ErrCodeProjectNotFound})
			return nil, false
		}
		log.Printf(`{"level":"error","message":"Failed to load project","project_id":"%s","error":"%v"}`, c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load project"})
		return nil, false
	}
	return project, true
}

// canRead allows owners, authenticated users on ownerless projects, and
// anyone on public projects.
func (h *Handler) canRead(c *gin.Context, p *models.Project) bool {
	if p.IsPublic || p.CreatedBy == nil {
		return true
	}
	userID, ok := c.Get(auth.ContextUserID)
	return ok && userID.(string) == *p.CreatedBy
}

// canWrite allows the owner, or any authenticated user when the project has
// no recorded owner.
func (h *Handler) canWrite(c *gin.Context, p *models.Project) bool {
	userID, ok := c.Get(auth.ContextUserID)
	if !ok {
		return false
	}
	if p.CreatedBy == nil {
		return true
	}
	return userID.(string) == *p.CreatedBy
}
