// Package httpapi serves the PDF tools over HTTP.
package httpapi

import (
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/a3tai/pdf-tools/internal/blog"
	"github.com/a3tai/pdf-tools/internal/config"
	"github.com/a3tai/pdf-tools/internal/descriptions"
	"github.com/a3tai/pdf-tools/internal/pdf"
	pdferrors "github.com/a3tai/pdf-tools/internal/pdf/errors"
)

// Handler handles the tool, catalog and blog endpoints
type Handler struct {
	config     *config.Config
	service    *pdf.Service
	serverInfo *pdf.ServerInfo
	posts      *blog.Store
	tools      map[string]bool
}

// NewHandler creates a handler. posts may be nil, in which case the blog
// endpoints report no posts.
func NewHandler(cfg *config.Config, service *pdf.Service, posts *blog.Store) *Handler {
	tools := make(map[string]bool, len(pdf.Tools))
	for _, t := range pdf.Tools {
		tools[t] = true
	}
	return &Handler{
		config:     cfg,
		service:    service,
		serverInfo: pdf.NewServerInfo(service),
		posts:      posts,
		tools:      tools,
	}
}

// Health reports that the server is up
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": h.config.ServerName,
		"version": h.config.Version,
	})
}

// ListTools returns the tool catalog
func (h *Handler) ListTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, descriptions.Catalog)
}

// ServerInfo returns limits, workspace contents and the catalog
func (h *Handler) ServerInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.serverInfo.Get(r.Context(), h.config.ServerName, h.config.Version))
}

// ListPosts returns the blog post summaries, newest first
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts := []blog.Summary{}
	if h.posts != nil {
		posts = h.posts.List()
	}
	writeJSON(w, http.StatusOK, posts)
}

// GetPost returns one post by slug
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	if h.posts != nil {
		if post, ok := h.posts.Get(slug); ok {
			writeJSON(w, http.StatusOK, post)
			return
		}
	}
	writeError(w, http.StatusNotFound, pdferrors.KindNotFound.String(), "post not found: "+slug, "")
}

// RunTool runs the tool named in the route. A multipart request uploads
// the files and receives the output file. A JSON request names workspace
// paths and receives the result as JSON.
func (h *Handler) RunTool(w http.ResponseWriter, r *http.Request) {
	tool := mux.Vars(r)["tool"]
	if !h.tools[tool] {
		writeError(w, http.StatusNotFound, pdferrors.KindNotFound.String(), "unknown tool: "+tool, "")
		return
	}

	limit := h.bodyLimit()
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		h.runUpload(w, r, tool)
		return
	}

	args, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeToolError(w, sizeError(tool, tooLarge.Limit))
			return
		}
		writeToolError(w, pdferrors.Validation(tool, "failed to read request body").WithDetails("%v", err))
		return
	}

	res, err := h.service.Invoke(r.Context(), tool, args)
	if err != nil {
		writeToolError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) runUpload(w http.ResponseWriter, r *http.Request, tool string) {
	u, err := h.saveUpload(r, tool)
	if err != nil {
		writeToolError(w, err)
		return
	}
	defer u.Close()

	res, err := h.service.Invoke(r.Context(), tool, u.args)
	if err != nil {
		writeToolError(w, err)
		return
	}

	if file, ok := res.(*pdf.Result); ok {
		writeFile(w, r, file)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// bodyLimit caps a request at MaxFiles full-size inputs, one image and
// room for the form fields
func (h *Handler) bodyLimit() int64 {
	return h.service.MaxFileSize()*int64(h.service.MaxFiles()+1) + 1<<20
}
