package web

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"

	"github.com/goliatone/go-labelform/pkg/form"
	"github.com/goliatone/go-labelform/pkg/labelsvc"
	"github.com/goliatone/go-labelform/pkg/orchestrator"
	"github.com/goliatone/go-labelform/pkg/render"
)

// maxUploadBytes caps template uploads; label files are a few kilobytes.
const maxUploadBytes = 10 << 20

// Handlers contains the HTTP route handlers for the editor UI.
type Handlers struct {
	orchestrator *orchestrator.Orchestrator
	renderer     *Renderer
	logger       *slog.Logger
}

// HandleIndex serves the editor page with the current form state.
func (h *Handlers) HandleIndex(w http.ResponseWriter, r *http.Request) {
	h.renderEditor(w, r, http.StatusOK, "", nil)
}

// HandleUpload accepts a multipart template upload and loads it. Rejected
// files re-render the page with the error inline, leaving any previously
// loaded template untouched.
func (h *Handlers) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.renderEditor(w, r, http.StatusBadRequest, "", []string{"upload too large or malformed"})
		return
	}
	file, header, err := r.FormFile("template")
	if err != nil {
		h.renderEditor(w, r, http.StatusBadRequest, "", []string{"choose a template file first"})
		return
	}
	defer file.Close()

	payload, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		h.renderEditor(w, r, http.StatusBadRequest, "", []string{"could not read upload"})
		return
	}

	if _, err := h.orchestrator.Load(r.Context(), header.Filename, payload); err != nil {
		h.logger.Warn("web: template load failed", "file", header.Filename, "error", err)
		h.renderEditor(w, r, statusForLoad(err), "", []string{loadMessage(err)})
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleClear drops the loaded template.
func (h *Handlers) HandleClear(w http.ResponseWriter, r *http.Request) {
	h.orchestrator.Clear()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleField applies one control edit. Text controls post value=, toggles
// post checked=true|false.
func (h *Handlers) HandleField(w http.ResponseWriter, r *http.Request) {
	f := h.orchestrator.Form()
	if f == nil {
		renderJSON(w, http.StatusConflict, map[string]string{"error": "no template loaded"})
		return
	}
	if err := r.ParseForm(); err != nil {
		renderJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed form body"})
		return
	}

	name := r.PathValue("name")
	var err error
	if checked, ok := formValue(r, "checked"); ok {
		err = f.SetChecked(name, checked == "true")
	} else if value, ok := formValue(r, "value"); ok {
		err = f.SetText(name, value)
	} else {
		renderJSON(w, http.StatusBadRequest, map[string]string{"error": "value or checked is required"})
		return
	}

	switch {
	case errors.Is(err, form.ErrUnknownControl):
		renderJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case err != nil:
		h.logger.Warn("web: field edit failed", "field", name, "error", err)
		renderJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandlePreview streams the current label raster as PNG.
func (h *Handlers) HandlePreview(w http.ResponseWriter, r *http.Request) {
	image, err := h.orchestrator.Preview(r.Context())
	switch {
	case errors.Is(err, orchestrator.ErrNoTemplate):
		renderJSON(w, http.StatusConflict, map[string]string{"error": "no template loaded"})
		return
	case errors.Is(err, labelsvc.ErrServiceUnavailable):
		renderJSON(w, http.StatusBadGateway, map[string]string{"error": "label service unavailable"})
		return
	case err != nil:
		h.logger.Error("web: preview failed", "error", err)
		renderJSON(w, http.StatusInternalServerError, map[string]string{"error": "preview failed"})
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(image)
}

// HandlePrint validates and submits a print request, reporting the outcome
// inline on the editor page.
func (h *Handlers) HandlePrint(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderEditor(w, r, http.StatusBadRequest, "", []string{"malformed form body"})
		return
	}

	receipt, err := h.orchestrator.Print(r.Context(), orchestrator.PrintRequest{
		Printer: r.PostFormValue("printer"),
		Copies:  r.PostFormValue("copies"),
	})
	switch {
	case errors.Is(err, orchestrator.ErrInvalidCopies),
		errors.Is(err, orchestrator.ErrNoPrinter):
		h.renderEditor(w, r, http.StatusUnprocessableEntity, "", []string{err.Error()})
	case errors.Is(err, orchestrator.ErrNoTemplate):
		h.renderEditor(w, r, http.StatusConflict, "", []string{"load a template before printing"})
	case err != nil:
		h.logger.Error("web: print failed", "error", err)
		h.renderEditor(w, r, http.StatusBadGateway, "", []string{"print failed: " + err.Error()})
	default:
		h.renderEditor(w, r, http.StatusOK, printMessage(receipt), nil)
	}
}

// HandlePrinters returns the available printers as JSON.
func (h *Handlers) HandlePrinters(w http.ResponseWriter, r *http.Request) {
	printers, err := h.orchestrator.Printers(r.Context())
	if err != nil {
		h.logger.Warn("web: printer listing failed", "error", err)
		renderJSON(w, http.StatusBadGateway, map[string]string{"error": "label service unavailable"})
		return
	}
	renderJSON(w, http.StatusOK, map[string]any{"printers": printers})
}

// HandleStatus reports the service indicator state as JSON.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, map[string]string{
		"status": string(h.orchestrator.Status(r.Context())),
	})
}

func (h *Handlers) renderEditor(w http.ResponseWriter, r *http.Request, status int, message string, errs []string) {
	formHTML, _, err := h.orchestrator.Render(r.Context(), "", render.RenderOptions{})
	if err != nil {
		h.logger.Error("web: form render failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.renderer.renderPage(w, status, PageData{
		Title:        "Label Form",
		TemplateName: h.orchestrator.TemplateName(),
		// The vanilla renderer sanitizes all user-controlled content.
		FormHTML: toHTML(formHTML),
		Message:  message,
		Errors:   errs,
	})
}

func statusForLoad(err error) int {
	switch {
	case errors.Is(err, orchestrator.ErrBadExtension), errors.Is(err, labelsvc.ErrParse):
		return http.StatusUnprocessableEntity
	case errors.Is(err, labelsvc.ErrServiceUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func loadMessage(err error) string {
	switch {
	case errors.Is(err, orchestrator.ErrBadExtension):
		return "that file type is not a label template"
	case errors.Is(err, labelsvc.ErrParse):
		return "the template could not be parsed"
	case errors.Is(err, labelsvc.ErrServiceUnavailable):
		return "label service unavailable"
	default:
		return "could not load the template"
	}
}

func toHTML(fragment []byte) template.HTML {
	return template.HTML(fragment)
}

func printMessage(receipt orchestrator.PrintReceipt) string {
	noun := "copies"
	if receipt.Copies == 1 {
		noun = "copy"
	}
	return fmt.Sprintf("Sent %d %s to %s", receipt.Copies, noun, receipt.Printer)
}

func formValue(r *http.Request, key string) (string, bool) {
	if _, ok := r.PostForm[key]; !ok {
		return "", false
	}
	return r.PostForm.Get(key), true
}
