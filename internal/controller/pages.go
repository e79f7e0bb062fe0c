package controller

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"task-tracker/internal/middleware"
	"task-tracker/internal/models"
	"task-tracker/pkg/logger"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const indexTemplate = "index.tmpl"

// Templates parses the embedded page templates for gin's HTML renderer.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(template.FuncMap{
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
	}).ParseFS(templateFS, "templates/*.tmpl"))
}

type pageData struct {
	Tasks       []models.Task
	Errors      []middleware.FieldError
	Flash       string
	Title       string
	Description string
}

func (ctl *Controller) renderIndex(c *gin.Context, status int, data pageData) {
	if data.Tasks == nil {
		tasks, err := ctl.tasks.ListRecent(c.Request.Context())
		if err != nil {
			_, msg := errorResponse(err)
			if data.Flash == "" {
				data.Flash = msg
			}
			status = http.StatusInternalServerError
		}
		data.Tasks = tasks
	}
	c.HTML(status, indexTemplate, data)
}

// Index renders the form and the recent window.
func (ctl *Controller) Index(c *gin.Context) {
	ctl.renderIndex(c, http.StatusOK, pageData{})
}

// SubmitTaskForm handles the urlencoded create form.
func (ctl *Controller) SubmitTaskForm(c *gin.Context) {
	fields := map[string]any{}
	if v, ok := c.GetPostForm("title"); ok {
		fields["title"] = v
	}
	if v, ok := c.GetPostForm("description"); ok {
		fields["description"] = v
	}
	in, errs := middleware.ValidateTaskFields(fields)
	if len(errs) > 0 {
		ctl.renderIndex(c, http.StatusBadRequest, pageData{
			Errors:      errs,
			Title:       c.PostForm("title"),
			Description: c.PostForm("description"),
		})
		return
	}
	if _, err := ctl.tasks.Create(c.Request.Context(), in); err != nil {
		status, msg := errorResponse(err)
		ctl.renderIndex(c, status, pageData{Flash: msg, Title: in.Title, Description: c.PostForm("description")})
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// CompleteTaskForm handles the Done button.
func (ctl *Controller) CompleteTaskForm(c *gin.Context) {
	id, valid := parseID(c)
	if !valid {
		ctl.renderIndex(c, http.StatusBadRequest, pageData{Flash: "Invalid task ID"})
		return
	}
	if _, err := ctl.tasks.Complete(c.Request.Context(), id); err != nil {
		status, msg := errorResponse(err)
		logger.Debug(c.Request.Context(), "Form completion rejected", "id", id, "reason", msg)
		ctl.renderIndex(c, status, pageData{Flash: msg})
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}
