package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/rpggio/costadvisor/internal/domain/prediction"
)

//go:embed templates/*.html
var templateFS embed.FS

const fallbackMessage = "Something went wrong while displaying this page. Please try again."

var funcs = template.FuncMap{
	"money":       money,
	"number":      number,
	"percent":     func(v float64) string { return fmt.Sprintf("%.1f%%", v*100) },
	"factorLabel": prediction.FactorLabel,
}

// money formats a whole amount with thousands separators. Nil pointers
// render as a dash.
func money(v any) string {
	switch n := v.(type) {
	case float64:
		return formatThousands(n)
	case *float64:
		if n != nil {
			return formatThousands(*n)
		}
	case int:
		return formatThousands(float64(n))
	case *int:
		if n != nil {
			return formatThousands(float64(*n))
		}
	}
	return "-"
}

// number formats a value with up to two decimals. Nil pointers render as a dash.
func number(v any) string {
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(math.Round(n*100)/100, 'f', -1, 64)
	case *float64:
		if n != nil {
			return strconv.FormatFloat(math.Round(*n*100)/100, 'f', -1, 64)
		}
	case int:
		return strconv.Itoa(n)
	case *int:
		if n != nil {
			return strconv.Itoa(*n)
		}
	}
	return "-"
}

// parseTemplates builds one template set per page, each sharing the layout.
func parseTemplates() (map[string]*template.Template, error) {
	pages, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	out := make(map[string]*template.Template)
	for _, page := range pages {
		name := strings.TrimSuffix(strings.TrimPrefix(page, "templates/"), ".html")
		if name == "layout" {
			continue
		}
		tmpl, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", page)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		out[name] = tmpl
	}
	return out, nil
}

// view is the data passed to every page.
type view struct {
	State *State
	Title string
	Error string
	Data  any
}

// render executes a page into a buffer first so a failing template never
// leaves a half-written response.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page, title string, data any) {
	h.renderView(w, r, status, page, view{State: StateFromContext(r.Context()), Title: title, Data: data})
}

func (h *Handler) renderView(w http.ResponseWriter, r *http.Request, status int, page string, v view) {
	tmpl, ok := h.templates[page]
	if !ok {
		h.renderFallback(w, r, fmt.Errorf("unknown page %q", page))
		return
	}
	if v.State == nil {
		v.State = StateFromContext(r.Context())
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout.html", v); err != nil {
		h.renderFallback(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) renderFallback(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("render failed", "path", r.URL.Path, "error", err)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = fmt.Fprintf(w, "<!doctype html><title>Error</title><p>%s</p><p><a href=\"/\">Home</a></p>",
		template.HTMLEscapeString(fallbackMessage))
}

// recoverer replaces a view that panics with the fallback message.
func recoverer(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.Error("view panicked", "path", r.URL.Path, "panic", rec)
					w.Header().Set("Content-Type", "text/html; charset=utf-8")
					w.WriteHeader(http.StatusInternalServerError)
					_, _ = fmt.Fprintf(w, "<!doctype html><title>Error</title><p>%s</p>", template.HTMLEscapeString(fallbackMessage))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func formatThousands(v float64) string {
	s := fmt.Sprintf("%.0f", v)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
