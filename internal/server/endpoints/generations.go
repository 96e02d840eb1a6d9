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

// GenerationView is a generation history row with decoded parameters.
type GenerationView struct {
	ID           int64                  `json:"id"`
	PromptID     int64                  `json:"prompt_id"`
	ImagePath    string                 `json:"image_path"`
	Params       store.GenerationParams `json:"params"`
	TokenUsage   int                    `json:"token_usage"`
	Cost         float64                `json:"cost"`
	CreationDate time.Time              `json:"creation_date"`
	UserRating   int                    `json:"user_rating"`
}

// NewGenerationView builds the view of a generation row.
func NewGenerationView(g *store.Generation) GenerationView {
	return GenerationView{
		ID:           g.ID,
		PromptID:     g.PromptID,
		ImagePath:    g.ImagePath,
		Params:       g.Params(),
		TokenUsage:   g.TokenUsage,
		Cost:         g.Cost,
		CreationDate: g.CreationDate,
		UserRating:   g.UserRating,
	}
}

// GenerationsResponse contains generation history rows.
type GenerationsResponse struct {
	Generations []GenerationView `json:"generations"`
}

// GenerationResponse contains a single generation history row.
type GenerationResponse struct {
	Generation GenerationView `json:"generation"`
}

// RateGenerationRequest is the request body for rating a generation.
type RateGenerationRequest struct {
	Rating int `json:"rating"`
}

// ListGenerationsEndpoint handles GET /api/v1/generations.
type ListGenerationsEndpoint struct{}

func (e *ListGenerationsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/v1/generations", e.handler
}

func (e *ListGenerationsEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		List generations
//	@Description	Get generation history, newest first
//	@Tags			generations
//	@Produce		json
//	@Param			prompt_id	query		int	false	"Filter by prompt"
//	@Param			limit		query		int	false	"Max rows"
//	@Success		200			{object}	GenerationsResponse
//	@Failure		500			{object}	ErrorResponse
//	@Router			/api/v1/generations [get]
func (e *ListGenerationsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var promptID int64
	if p := r.URL.Query().Get("prompt_id"); p != "" {
		parsed, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid prompt_id")
			return
		}
		promptID = parsed
	}
	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	s := svcctx.StoreFrom(r.Context())
	rows, err := s.ListGenerations(promptID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := GenerationsResponse{Generations: make([]GenerationView, len(rows))}
	for i := range rows {
		resp.Generations[i] = NewGenerationView(&rows[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

func (e *ListGenerationsEndpoint) Command(getServerURL func() string) *cobra.Command {
	var (
		promptID int64
		limit    int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List generation history",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := api.NewClient(getServerURL())

			q := url.Values{}
			if promptID > 0 {
				q.Set("prompt_id", strconv.FormatInt(promptID, 10))
			}
			if limit > 0 {
				q.Set("limit", strconv.Itoa(limit))
			}
			path := "/api/v1/generations"
			if len(q) > 0 {
				path += "?" + q.Encode()
			}

			var resp GenerationsResponse
			if err := client.Get(ctx, path, &resp); err != nil {
				return err
			}
			return api.Output(resp.Generations)
		},
	}
	cmd.Flags().Int64Var(&promptID, "prompt", 0, "Filter by prompt ID")
	cmd.Flags().IntVar(&limit, "limit", 0, "Max rows to return")
	return cmd
}

// RateGenerationEndpoint handles POST /api/v1/generations/{id}/rating.
type RateGenerationEndpoint struct{}

func (e *RateGenerationEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/v1/generations/{id}/rating", e.handler
}

func (e *RateGenerationEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Rate a generation
//	@Description	Set a 1-5 rating and refresh the prompt's average
//	@Tags			generations
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int						true	"Generation ID"
//	@Param			body	body		RateGenerationRequest	true	"Rating"
//	@Success		200		{object}	GenerationResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/api/v1/generations/{id}/rating [post]
func (e *RateGenerationEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid generation id")
		return
	}

	var req RateGenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		writeError(w, http.StatusBadRequest, "rating must be between 1 and 5")
		return
	}

	s := svcctx.StoreFrom(r.Context())
	if err := s.RateGeneration(id, req.Rating); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "generation not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	g, err := s.GetGeneration(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, GenerationResponse{Generation: NewGenerationView(g)})
}

func (e *RateGenerationEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "rate <id> <rating>",
		Short: "Rate a generation from 1 to 5",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rating, err := strconv.Atoi(args[1])
			if err != nil {
				return errors.New("rating must be an integer between 1 and 5")
			}

			ctx := cmd.Context()
			client := api.NewClient(getServerURL())
			var resp GenerationResponse
			path := "/api/v1/generations/" + args[0] + "/rating"
			if err := client.Post(ctx, path, RateGenerationRequest{Rating: rating}, &resp); err != nil {
				return err
			}
			return api.Output(resp.Generation)
		},
	}
}
