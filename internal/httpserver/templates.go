package httpserver

import (
	"embed"
	"encoding/gob"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"net/url"
	"path"
	"sync"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var templateFS embed.FS

func init() {
	gob.Register(FlashMessage{})
}

type FlashMessage struct {
	Type    string
	Message string
}

// GetFlash drains the flash messages of the session.
func GetFlash(session *sessions.Session) []FlashMessage {
	var messages []FlashMessage
	for _, f := range session.Flashes() {
		if fm, ok := f.(FlashMessage); ok {
			messages = append(messages, fm)
		}
	}
	return messages
}

// TemplateCache holds the parsed admin pages and renders them for echo.
type TemplateCache struct {
	cache map[string]*template.Template
	mu    sync.RWMutex
	funcs template.FuncMap
}

func NewTemplateCache() *TemplateCache {
	return &TemplateCache{
		cache: make(map[string]*template.Template),
		funcs: template.FuncMap{
			"prevPage": func(page int) int { return page - 1 },
			"nextPage": func(page int) int { return page + 1 },
			"date":     func(t time.Time) string { return t.UTC().Format("2006-01-02 15:04") },
			"query":    pageQuery,
		},
	}
}

// Load parses every *.html file of fsys. A nil fsys means the embedded pages.
func (tc *TemplateCache) Load(fsys fs.FS) error {
	if fsys == nil {
		sub, err := fs.Sub(templateFS, "templates")
		if err != nil {
			return err
		}
		fsys = sub
	}

	tc.mu.Lock()
	defer tc.mu.Unlock()

	files, err := fs.Glob(fsys, "*.html")
	if err != nil {
		return err
	}
	for _, file := range files {
		name := path.Base(file)
		tmpl, err := template.New(name).Funcs(tc.funcs).ParseFS(fsys, file)
		if err != nil {
			slog.Error("template_parse_failed", "file", file, "error", err)
			return err
		}
		tc.cache[name] = tmpl
	}
	return nil
}

func (tc *TemplateCache) Get(name string) *template.Template {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.cache[name]
}

func (tc *TemplateCache) Render(w io.Writer, name string, data any, _ echo.Context) error {
	tmpl := tc.Get(name)
	if tmpl == nil {
		return fmt.Errorf("template %q not found", name)
	}
	return tmpl.Execute(w, data)
}

// pageQuery rebuilds the listing query string for another page.
func pageQuery(status, from, to string, page int) string {
	v := url.Values{}
	if status != "" {
		v.Set("status", status)
	}
	if from != "" {
		v.Set("from", from)
	}
	if to != "" {
		v.Set("to", to)
	}
	v.Set("page", fmt.Sprint(page))
	return v.Encode()
}
