package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/easel/internal/api"
	"github.com/jackzampolin/easel/internal/store"
	"github.com/jackzampolin/easel/internal/svcctx"
)

// PromptView is a prompt history row as returned by the API.
type PromptView struct {
	ID            int64     `json:"id"`
	Text          string    `json:"text"`
	Favorite      bool      `json:"favorite"`
	Tags          []string  `json:"tags,omitempty"`
	IsTemplate    bool      `json:"is_template"`
	UsageCount    int       `json:"usage_count"`
	AverageRating float64   `json:"average_rating"`
	CreationDate  time.Time `json:"creation_date"`
	LastUsed      time.Time `json:"last_used"`
}

// NewPromptView builds the view of a prompt row.
func NewPromptView(p *store.Prompt) PromptView {
	return PromptView{
		ID:            p.ID,
		Text:          p.PromptText,
		Favorite:      p.Favorite,
		Tags:          p.TagList(),
		IsTemplate:    p.IsTemplate,
		UsageCount:    p.UsageCount,
		AverageRating: p.AverageRating,
		CreationDate:  p.CreationDate,
		LastUsed:      p.LastUsed,
	}
}

// PromptsResponse contains prompt history rows.
type PromptsResponse struct {
	Prompts []PromptView `json:"prompts"`
}

// PromptResponse contains a single prompt history row.
type PromptResponse struct {
	Prompt PromptView `json:"prompt"`
}

// FavoritePromptRequest is the request body for toggling a favorite flag.
type FavoritePromptRequest struct {
	Favorite bool `json:"favorite"`
}

// TagPromptRequest is the request body for replacing a prompt's tags.
type TagPromptRequest struct {
	Tags []string `json:"tags"`
}

// ListPromptsEndpoint handles GET /api/v1/prompts.
type ListPromptsEndpoint struct{}

func (e *ListPromptsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/v1/prompts", e.handler
}

func (e *ListPromptsEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		List prompt history
//	@Description	Get prompt history, most recently used first
//	@Tags			prompts
//	@Produce		json
//	@Param			favorites	query		bool	false	"Favorites only"
//	@Param			search		query		string	false	"Substring filter"
//	@Param			limit		query		int		false	"Max rows"
//	@Success		200			{object}	PromptsResponse
//	@Failure		500			{object}	ErrorResponse
//	@Router			/api/v1/prompts [get]
func (e *ListPromptsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	filter := store.PromptFilter{
		FavoritesOnly: r.URL.Query().Get("favorites") == "true",
		Search:        r.URL.Query().Get("search"),
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			filter.Limit = parsed
		}
	}

	s := svcctx.StoreFrom(r.Context())
	rows, err := s.ListPrompts(filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := PromptsResponse{Prompts: make([]PromptView, len(rows))}
	for i := range rows {
		resp.Prompts[i] = NewPromptView(&rows[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

func (e *ListPromptsEndpoint) Command(getServerURL func() string) *cobra.Command {
	var (
		favorites bool
		search    string
		limit     int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List prompt history",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := api.NewClient(getServerURL())

			q := url.Values{}
			if favorites {
				q.Set("favorites", "true")
			}
			if search != "" {
				q.Set("search", search)
			}
			if limit > 0 {
				q.Set("limit", strconv.Itoa(limit))
			}
			path := "/api/v1/prompts"
			if len(q) > 0 {
				path += "?" + q.Encode()
			}

			var resp PromptsResponse
			if err := client.Get(ctx, path, &resp); err != nil {
				return err
			}
			return api.Output(resp.Prompts)
		},
	}
	cmd.Flags().BoolVar(&favorites, "favorites", false, "Show favorites only")
	cmd.Flags().StringVar(&search, "search", "", "Filter by substring")
	cmd.Flags().IntVar(&limit, "limit", 0, "Max rows to return")
	return cmd
}

// FavoritePromptEndpoint handles POST /api/v1/prompts/{id}/favorite.
type FavoritePromptEndpoint struct{}

func (e *FavoritePromptEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/v1/prompts/{id}/favorite", e.handler
}

func (e *FavoritePromptEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Set favorite flag
//	@Description	Mark or unmark a prompt as favorite
//	@Tags			prompts
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int						true	"Prompt ID"
//	@Param			body	body		FavoritePromptRequest	true	"Favorite flag"
//	@Success		200		{object}	PromptResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/api/v1/prompts/{id}/favorite [post]
func (e *FavoritePromptEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid prompt id")
		return
	}

	var req FavoritePromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	s := svcctx.StoreFrom(r.Context())
	if err := s.SetFavorite(id, req.Favorite); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "prompt not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	p, err := s.GetPrompt(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, PromptResponse{Prompt: NewPromptView(p)})
}

func (e *FavoritePromptEndpoint) Command(getServerURL func() string) *cobra.Command {
	var remove bool
	cmd := &cobra.Command{
		Use:   "favorite <id>",
		Short: "Mark a prompt as favorite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := api.NewClient(getServerURL())
			var resp PromptResponse
			path := "/api/v1/prompts/" + args[0] + "/favorite"
			if err := client.Post(ctx, path, FavoritePromptRequest{Favorite: !remove}, &resp); err != nil {
				return err
			}
			return api.Output(resp.Prompt)
		},
	}
	cmd.Flags().BoolVar(&remove, "remove", false, "Clear the favorite flag instead")
	return cmd
}

// TagPromptEndpoint handles PUT /api/v1/prompts/{id}/tags.
type TagPromptEndpoint struct{}

func (e *TagPromptEndpoint) Route() (string, string, http.HandlerFunc) {
	return "PUT", "/api/v1/prompts/{id}/tags", e.handler
}

func (e *TagPromptEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Replace prompt tags
//	@Description	Replace the tag list on a prompt
//	@Tags			prompts
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int				true	"Prompt ID"
//	@Param			body	body		TagPromptRequest	true	"New tags"
//	@Success		200		{object}	PromptResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/api/v1/prompts/{id}/tags [put]
func (e *TagPromptEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid prompt id")
		return
	}

	var req TagPromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	s := svcctx.StoreFrom(r.Context())
	if err := s.SetTags(id, req.Tags); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "prompt not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	p, err := s.GetPrompt(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, PromptResponse{Prompt: NewPromptView(p)})
}

func (e *TagPromptEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "tag <id> [tag]...",
		Short: "Replace a prompt's tags",
		Long:  "Replace the tag list on a prompt. With no tags the list is cleared.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := api.NewClient(getServerURL())
			var resp PromptResponse
			path := "/api/v1/prompts/" + args[0] + "/tags"
			if err := client.Put(ctx, path, TagPromptRequest{Tags: args[1:]}, &resp); err != nil {
				return err
			}
			return api.Output(resp.Prompt)
		},
	}
}

// DeletePromptEndpoint handles DELETE /api/v1/prompts/{id}.
type DeletePromptEndpoint struct{}

func (e *DeletePromptEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/v1/prompts/{id}", e.handler
}

func (e *DeletePromptEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Delete a prompt
//	@Description	Delete a prompt and its generation history
//	@Tags			prompts
//	@Produce		json
//	@Param			id	path		int	true	"Prompt ID"
//	@Success		200	{object}	map[string]string
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/v1/prompts/{id} [delete]
func (e *DeletePromptEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid prompt id")
		return
	}

	s := svcctx.StoreFrom(r.Context())
	if err := s.DeletePrompt(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "prompt not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (e *DeletePromptEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a prompt and its generations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := api.NewClient(getServerURL())
			if err := client.Delete(ctx, "/api/v1/prompts/"+args[0]); err != nil {
				return err
			}
			cmd.Println("deleted")
			return nil
		},
	}
}
