package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/bobmcallan/raymonds/internal/common"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"hex": func(c common.ColorToken) template.CSS {
		return template.CSS("#" + c.Hex())
	},
	"width": func(fraction float64) template.CSS {
		return template.CSS(fmt.Sprintf("%.1f%%", fraction*100))
	},
	"pctWidth": func(pct float64) template.CSS {
		return template.CSS(fmt.Sprintf("%.1f%%", pct))
	},
	"upper": strings.ToUpper,
	"query": url.QueryEscape,
}

func parseTemplates() (*template.Template, error) {
	return template.New("dashboard").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
}

// render writes nothing until the template has executed.
func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error().Err(err).Str("template", name).Msg("Template render failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
