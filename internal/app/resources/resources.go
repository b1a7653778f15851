// internal/app/resources/resources.go
package resources

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"sync"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed assets/css/*.css assets/js/*.js
var assetsFS embed.FS

var (
	parseOnce sync.Once
	pages     *template.Template
	parseErr  error
)

// PageData is the view model every page shell receives.
type PageData struct {
	Title        string
	Email        string // signed-in email, empty when anonymous
	IsAdmin      bool
	CSRFToken    string
	GoogleSignIn bool
	DevSignIn    bool
	Message      string // page-specific notice, such as an auth error
}

// LoadTemplates parses the embedded page templates. It is safe to call more
// than once; BuildHandler calls it so a bad template fails startup.
func LoadTemplates() error {
	parseOnce.Do(func() {
		pages, parseErr = template.ParseFS(templatesFS, "templates/*.html")
	})
	return parseErr
}

// RenderPage writes page name (the template file name without .html) with
// the given status.
func RenderPage(w http.ResponseWriter, status int, name string, data PageData) error {
	if err := LoadTemplates(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name+".html", data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

// Assets returns the embedded assets filesystem.
func Assets() fs.FS {
	sub, err := fs.Sub(assetsFS, "assets")
	if err != nil {
		panic("failed to get assets subdirectory: " + err.Error())
	}
	return sub
}

// AssetsHandler returns an http.Handler that serves embedded assets.
// The prefix is stripped from the request path before looking up files.
func AssetsHandler(prefix string) http.Handler {
	fileServer := http.FileServer(http.FS(Assets()))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, prefix)
		path = strings.TrimPrefix(path, "/")
		r2 := r.Clone(r.Context())
		r2.URL.Path = "/" + path
		fileServer.ServeHTTP(w, r2)
	})
}
