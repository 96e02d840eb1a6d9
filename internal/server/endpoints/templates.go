package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/easel/internal/api"
	"github.com/jackzampolin/easel/internal/store"
	"github.com/jackzampolin/easel/internal/svcctx"
	"github.com/jackzampolin/easel/internal/template"
)

// TemplateView is a template row with its decoded list fields.
type TemplateView struct {
	ID            int64     `json:"id"`
	Text          string    `json:"text"`
	Favorite      bool      `json:"favorite"`
	Tags          []string  `json:"tags,omitempty"`
	Variables     []string  `json:"variables"`
	UsageCount    int       `json:"usage_count"`
	AverageRating float64   `json:"average_rating"`
	CreationDate  time.Time `json:"creation_date"`
	LastUsed      time.Time `json:"last_used"`
}

// NewTemplateView builds the view of a template row.
func NewTemplateView(p *store.Prompt) TemplateView {
	return TemplateView{
		ID:            p.ID,
		Text:          p.PromptText,
		Favorite:      p.Favorite,
		Tags:          p.TagList(),
		Variables:     p.VariableNames(),
		UsageCount:    p.UsageCount,
		AverageRating: p.AverageRating,
		CreationDate:  p.CreationDate,
		LastUsed:      p.LastUsed,
	}
}

// TemplatesResponse contains a list of templates.
type TemplatesResponse struct {
	Templates []TemplateView `json:"templates"`
}

// TemplateResponse contains a single template.
type TemplateResponse struct {
	Template TemplateView `json:"template"`
}

// CreateTemplateRequest is the request body for saving a template.
type CreateTemplateRequest struct {
	Text string `json:"text"`
}

// ListTemplatesEndpoint handles GET /api/v1/templates.
type ListTemplatesEndpoint struct{}

func (e *ListTemplatesEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/v1/templates", e.handler
}

func (e *ListTemplatesEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		List templates
//	@Description	Get all saved prompt templates
//	@Tags			templates
//	@Produce		json
//	@Success		200	{object}	TemplatesResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/v1/templates [get]
func (e *ListTemplatesEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	s := svcctx.StoreFrom(r.Context())

	rows, err := s.ListPrompts(store.PromptFilter{TemplatesOnly: true})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := TemplatesResponse{Templates: make([]TemplateView, len(rows))}
	for i := range rows {
		resp.Templates[i] = NewTemplateView(&rows[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

func (e *ListTemplatesEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := api.NewClient(getServerURL())
			var resp TemplatesResponse
			if err := client.Get(ctx, "/api/v1/templates", &resp); err != nil {
				return err
			}
			return api.Output(resp.Templates)
		},
	}
}

// CreateTemplateEndpoint handles POST /api/v1/templates.
type CreateTemplateEndpoint struct{}

func (e *CreateTemplateEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/v1/templates", e.handler
}

func (e *CreateTemplateEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Save a template
//	@Description	Save template text, upserting by exact text
//	@Tags			templates
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateTemplateRequest	true	"Template text"
//	@Success		200		{object}	TemplateResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/api/v1/templates [post]
func (e *CreateTemplateEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req CreateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	if ok, reason := template.Validate(req.Text); !ok {
		writeError(w, http.StatusBadRequest, "invalid template: "+reason)
		return
	}

	s := svcctx.StoreFrom(r.Context())
	p, err := s.SaveTemplate(req.Text)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, TemplateResponse{Template: NewTemplateView(p)})
}

func (e *CreateTemplateEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "add <text>",
		Short: "Save a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := api.NewClient(getServerURL())
			var resp TemplateResponse
			if err := client.Post(ctx, "/api/v1/templates", CreateTemplateRequest{Text: args[0]}, &resp); err != nil {
				return err
			}
			return api.Output(resp.Template)
		},
	}
}

// GetTemplateEndpoint handles GET /api/v1/templates/{id}.
type GetTemplateEndpoint struct{}

func (e *GetTemplateEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/v1/templates/{id}", e.handler
}

func (e *GetTemplateEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Get a template
//	@Description	Get a single template by id
//	@Tags			templates
//	@Produce		json
//	@Param			id	path		int	true	"Template id"
//	@Success		200	{object}	TemplateResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/v1/templates/{id} [get]
func (e *GetTemplateEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	s := svcctx.StoreFrom(r.Context())
	p, err := s.GetPrompt(id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "template not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !p.IsTemplate {
		writeError(w, http.StatusNotFound, "prompt is not a template")
		return
	}
	writeJSON(w, http.StatusOK, TemplateResponse{Template: NewTemplateView(p)})
}

func (e *GetTemplateEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := api.NewClient(getServerURL())
			var resp TemplateResponse
			if err := client.Get(ctx, "/api/v1/templates/"+args[0], &resp); err != nil {
				return err
			}
			return api.Output(resp.Template)
		},
	}
}

// DeleteTemplateEndpoint handles DELETE /api/v1/templates/{id}.
type DeleteTemplateEndpoint struct{}

func (e *DeleteTemplateEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/v1/templates/{id}", e.handler
}

func (e *DeleteTemplateEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Delete a template
//	@Description	Delete a template and its generation history
//	@Tags			templates
//	@Produce		json
//	@Param			id	path		int	true	"Template id"
//	@Success		200	{object}	map[string]string
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/v1/templates/{id} [delete]
func (e *DeleteTemplateEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	s := svcctx.StoreFrom(r.Context())
	if err := s.DeletePrompt(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "template not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (e *DeleteTemplateEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := api.NewClient(getServerURL())
			if err := client.Delete(ctx, "/api/v1/templates/"+args[0]); err != nil {
				return err
			}
			cmd.Println("deleted")
			return nil
		},
	}
}
