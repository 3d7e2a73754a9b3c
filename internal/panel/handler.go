package panel

import (
	"embed"
	"errors"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

const maxFormMemory = 32 << 20

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.New("index.html").
	Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
	ParseFS(templateFS, "templates/index.html"))

// Handler exposes the control panel form and read API using go-chi.
type Handler struct {
	reg *Registry
	log *slog.Logger
}

// NewHandler returns a Handler backed by reg.
func NewHandler(reg *Registry, log *slog.Logger) *Handler {
	return &Handler{reg: reg, log: log}
}

// Routes mounts the panel endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.Index)
	r.Post("/", h.Submit)
	r.Get("/api/streams", h.GetStreams)
	r.Get("/success", h.Success)
}

// Index handles GET /: the stream list with its edit forms.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	records, err := h.reg.List()
	if err != nil {
		h.log.Error("list streams failed", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, struct{ Streams []StreamRecord }{records}); err != nil {
		h.log.Error("render index failed", slog.String("error", err.Error()))
	}
}

// GetStreams handles GET /api/streams: the configuration document verbatim.
func (h *Handler) GetStreams(w http.ResponseWriter, r *http.Request) {
	data, err := h.reg.Raw()
	if err != nil {
		h.log.Error("read streams failed", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Success handles GET /success.
func (h *Handler) Success(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "Stream configuration has been updated successfully!")
}

// Submit handles POST /. The form field "action" selects add, edit or delete;
// edit and delete address a record by "channel_id" or, failing that, "index".
// Successful and rejected submissions both redirect back to the list.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		h.log.Debug("invalid form", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	action := r.FormValue("action")
	var err error
	switch action {
	case "add":
		err = h.add(r)
	case "edit":
		err = h.edit(r)
	case "delete":
		err = h.delete(r)
	default:
		h.log.Debug("unknown action", slog.String("action", action))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch {
	case err == nil:
	case errors.Is(err, errBadIndex):
		h.log.Debug("malformed index", slog.String("action", action), slog.String("error", err.Error()))
		w.WriteHeader(http.StatusBadRequest)
		return
	case isRejection(err):
		h.log.Info("submission rejected", slog.String("action", action), slog.String("error", err.Error()))
	default:
		h.log.Error("submission failed", slog.String("action", action), slog.String("error", err.Error()))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

var errBadIndex = errors.New("malformed index")

// isRejection reports whether err left the configuration untouched because
// the request itself was invalid.
func isRejection(err error) bool {
	return errors.Is(err, ErrMissingField) ||
		errors.Is(err, ErrInvalidName) ||
		errors.Is(err, ErrIndexOutOfRange) ||
		errors.Is(err, ErrStreamNotFound)
}

func (h *Handler) add(r *http.Request) error {
	up, closeUpload := formUpload(r)
	defer closeUpload()

	_, err := h.reg.Add(formInput(r), up)
	return err
}

func (h *Handler) edit(r *http.Request) error {
	up, closeUpload := formUpload(r)
	defer closeUpload()

	in := formInput(r)
	if id := r.FormValue("channel_id"); id != "" {
		_, err := h.reg.EditByChannel(id, in, up)
		return err
	}

	index, err := formIndex(r)
	if err != nil {
		return err
	}
	_, err = h.reg.Edit(index, in, up)
	return err
}

func (h *Handler) delete(r *http.Request) error {
	if id := r.FormValue("channel_id"); id != "" {
		_, err := h.reg.DeleteByChannel(id)
		return err
	}

	index, err := formIndex(r)
	if err != nil {
		return err
	}
	_, err = h.reg.Delete(index)
	return err
}

func parseForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(maxFormMemory)
	}
	return r.ParseForm()
}

func formInput(r *http.Request) StreamInput {
	return StreamInput{
		Name:       r.FormValue("name"),
		SourceURL:  r.FormValue("source_url"),
		OutputPath: r.FormValue("output_path"),
	}
}

func formIndex(r *http.Request) (int, error) {
	index, err := strconv.Atoi(strings.TrimSpace(r.FormValue("index")))
	if err != nil {
		return 0, errBadIndex
	}
	return index, nil
}

// formUpload returns the "logo" file of a multipart form, or nil when none was
// sent. The returned func closes the file.
func formUpload(r *http.Request) (*Upload, func()) {
	if r.MultipartForm == nil {
		return nil, func() {}
	}

	file, header, err := r.FormFile("logo")
	if err != nil {
		return nil, func() {}
	}
	if header.Filename == "" {
		file.Close()
		return nil, func() {}
	}
	return &Upload{Filename: header.Filename, Content: file}, func() { file.Close() }
}
