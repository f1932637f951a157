package api

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/RafaelAlves9/ML-Hate-Comments-Classification/internal/render"
	"github.com/RafaelAlves9/ML-Hate-Comments-Classification/internal/view"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

type pageData struct {
	Snapshot    view.Snapshot
	Single      view.State
	Batch       view.State
	Source      string
	Placeholder string
	History     bool
}

func loadTemplates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"isActive": func(active view.Mode, mode string) bool { return string(active) == mode },
	}).ParseFS(templateFS, "templates/*.tmpl")
}

func (s *Server) handleIndex(c *gin.Context) {
	snapshot := s.console.Snapshot(sessionID(c))
	c.HTML(http.StatusOK, "index.tmpl", pageData{
		Snapshot:    snapshot,
		Single:      snapshot.Single,
		Batch:       snapshot.Batch,
		Source:      s.console.SourceName(),
		Placeholder: render.Placeholder,
		History:     s.db != nil,
	})
}

func (s *Server) handleFormSingle(c *gin.Context) {
	s.console.AnalyzeSingle(c.Request.Context(), sessionID(c), c.PostForm("comment"))
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleFormBatch(c *gin.Context) {
	s.console.AnalyzeBatch(c.Request.Context(), sessionID(c), c.PostForm("url"))
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleFormTab(c *gin.Context) {
	mode, err := view.ParseMode(c.Param("mode"))
	if err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}
	s.console.SwitchTab(sessionID(c), mode)
	c.Redirect(http.StatusSeeOther, "/")
}
