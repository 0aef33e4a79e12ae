package console

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"math"
	"net/http"
	"strings"

	"github.com/nna-wms/wmsconsole/pkg/httputil"
	"github.com/nna-wms/wmsconsole/pkg/menu"
	"github.com/nna-wms/wmsconsole/pkg/session"
	"github.com/nna-wms/wmsconsole/pkg/wms"
)

//go:embed templates/*.html
var templateFS embed.FS

// views holds one template set per page kind, each sharing the layout.
type views struct {
	pages  map[string]*template.Template
	signin *template.Template
	log    *slog.Logger
}

var funcs = template.FuncMap{
	"cell":  cell,
	"rowID": rowID,
}

func loadViews(log *slog.Logger) (*views, error) {
	v := &views{pages: make(map[string]*template.Template), log: log}
	for _, name := range []string{"home", "table", "form"} {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		v.pages[name] = t
	}
	t, err := template.New("signin").ParseFS(templateFS, "templates/signin.html")
	if err != nil {
		return nil, fmt.Errorf("parse signin template: %w", err)
	}
	v.signin = t
	return v, nil
}

// layoutData is what the layout template renders around a page body.
type layoutData struct {
	Title   string
	Sidebar []menu.Section
	User    string
	Body    any
}

// render writes page inside the layout. The sidebar comes from the menu tree
// of the current request.
func (v *views) render(w http.ResponseWriter, r *http.Request, status int, page, title string, body any) {
	data := layoutData{
		Title:   title,
		Sidebar: menu.Sidebar(treeFrom(r.Context()), r.URL.Path),
		Body:    body,
	}
	if s, ok := session.FromContext(r.Context()); ok && s.Claims != nil {
		data.User = s.Claims.Username
	}
	v.execute(w, status, v.pages[page], "layout", data)
}

// signInData feeds signin.html.
type signInData struct {
	Action string
	Error  string
}

func (v *views) renderSignIn(w http.ResponseWriter, status int, data signInData) {
	v.execute(w, status, v.signin, "signin", data)
}

// execute renders into a buffer first so a template error can still become a
// clean 500.
func (v *views) execute(w http.ResponseWriter, status int, t *template.Template, name string, data any) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		v.log.Error("template render failed", "template", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// column is one table header.
type column struct {
	Key   string
	Title string
}

func columnsOf(e wms.Entity) []column {
	cols := make([]column, len(e.Columns))
	for i, k := range e.Columns {
		cols[i] = column{Key: k, Title: wms.Title(k)}
	}
	return cols
}

// tableData feeds table.html.
type tableData struct {
	Columns    []column
	Rows       []map[string]any
	Detail     string
	Error      string
	BasePath   string
	CreatePath string
	UpdatePath string
}

// formData feeds form.html.
type formData struct {
	Action  string
	Method  string
	ID      int64
	Payload string
	Error   string
	Back    string
}

// rowsOf converts typed entities into generic rows keyed by JSON name.
func rowsOf(list any) ([]map[string]any, error) {
	data, err := json.Marshal(list)
	if err != nil {
		return nil, err
	}
	var rows []map[string]any
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case bool:
		if x {
			return "Yes"
		}
		return "No"
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1e15 {
			return fmt.Sprintf("%d", int64(x))
		}
		return fmt.Sprintf("%g", x)
	case string:
		return x
	default:
		data, _ := json.Marshal(x)
		return string(data)
	}
}

func rowID(row map[string]any) int64 {
	if f, ok := row["id"].(float64); ok {
		return int64(f)
	}
	return 0
}

// wantsJSON reports whether the client asked for JSON instead of HTML.
func wantsJSON(r *http.Request) bool {
	if r.URL.Query().Get("format") == "json" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// writeError answers with JSON or an HTML error page depending on the client.
func (v *views) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	if wantsJSON(r) {
		httputil.WriteError(w, status, code, message)
		return
	}
	v.render(w, r, status, "table", http.StatusText(status), tableData{Error: message})
}
