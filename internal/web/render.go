package web

import (
	"bytes"
	"encoding/json"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
)

// PageData is the template payload for the editor page.
type PageData struct {
	Title        string
	TemplateName string
	FormHTML     template.HTML
	Message      string
	Errors       []string
}

// Renderer owns the parsed layout template.
type Renderer struct {
	layout *template.Template
	logger *slog.Logger
}

// NewRenderer parses the layout from the given FS.
func NewRenderer(templateFS fs.FS, logger *slog.Logger) *Renderer {
	return &Renderer{
		layout: template.Must(template.New("layout.html").ParseFS(templateFS, "layout.html")),
		logger: logger,
	}
}

func (r *Renderer) renderPage(w http.ResponseWriter, status int, data PageData) {
	var buf bytes.Buffer
	if err := r.layout.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		r.logger.Error("web: template execution failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
