package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/easel/internal/api"
	"github.com/jackzampolin/easel/internal/batch"
	"github.com/jackzampolin/easel/internal/expand"
	"github.com/jackzampolin/easel/internal/store"
	"github.com/jackzampolin/easel/internal/svcctx"
)

// GenerateRequest is the request body for a batch generation run.
type GenerateRequest struct {
	// Text is the template to render. TemplateID may be given instead to
	// render a stored template.
	Text       string `json:"text,omitempty"`
	TemplateID int64  `json:"template_id,omitempty"`

	Limit      int                 `json:"limit,omitempty"`
	Selections map[string][]string `json:"selections,omitempty"`
	Random     bool                `json:"random,omitempty"`
	Count      int                 `json:"count,omitempty"`
	Seed       int64               `json:"seed,omitempty"`

	Size    string `json:"size,omitempty"`
	Quality string `json:"quality,omitempty"`
	Style   string `json:"style,omitempty"`
	Model   string `json:"model,omitempty"`

	DryRun bool `json:"dry_run,omitempty"`
}

// GenerateResponse contains the run report.
type GenerateResponse struct {
	Report *batch.Report `json:"report"`
}

// GenerateEndpoint handles POST /api/v1/generate.
type GenerateEndpoint struct{}

func (e *GenerateEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/v1/generate", e.handler
}

func (e *GenerateEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Run a batch generation
//	@Description	Expand a template and render an image per expansion
//	@Tags			generate
//	@Accept			json
//	@Produce		json
//	@Param			body	body		GenerateRequest	true	"Template and run options"
//	@Success		200		{object}	GenerateResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/api/v1/generate [post]
func (e *GenerateEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	text := req.Text
	if text == "" && req.TemplateID > 0 {
		s := svcctx.StoreFrom(r.Context())
		p, err := s.GetPrompt(req.TemplateID)
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "template not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		text = p.PromptText
	}
	if text == "" {
		writeError(w, http.StatusBadRequest, "text or template_id is required")
		return
	}

	runner := svcctx.RunnerFrom(r.Context())
	report, err := runner.Run(r.Context(), text, batch.Options{
		Limit:      req.Limit,
		Selections: req.Selections,
		Random:     req.Random,
		Count:      req.Count,
		Seed:       req.Seed,
		Size:       req.Size,
		Quality:    req.Quality,
		Style:      req.Style,
		Model:      req.Model,
		DryRun:     req.DryRun,
	}, nil)
	if err != nil {
		if report == nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		// Cancelled mid-run; the partial report still describes what
		// happened before the cut.
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, GenerateResponse{Report: report})
}

func (e *GenerateEndpoint) Command(getServerURL func() string) *cobra.Command {
	var (
		templateID int64
		limit      int
		selects    []string
		random     bool
		count      int
		seed       int64
		size       string
		quality    string
		style      string
		model      string
		dryRun     bool
	)
	cmd := &cobra.Command{
		Use:   "generate [text]",
		Short: "Expand a template and generate an image per expansion",
		Long: `Expand a template and generate an image for every expansion.

The template comes from the positional argument or --template. Combination
mode enumerates value combinations up to --limit; --random draws --count
independent random renderings instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := GenerateRequest{
				TemplateID: templateID,
				Limit:      limit,
				Random:     random,
				Count:      count,
				Seed:       seed,
				Size:       size,
				Quality:    quality,
				Style:      style,
				Model:      model,
				DryRun:     dryRun,
			}
			if len(args) == 1 {
				req.Text = args[0]
			}
			if req.Text == "" && req.TemplateID == 0 {
				return errors.New("give the template text or --template")
			}

			selections, err := expand.ParseSelections(selects)
			if err != nil {
				return err
			}
			req.Selections = selections

			ctx := cmd.Context()
			client := api.NewClient(getServerURL())
			var resp GenerateResponse
			if err := client.Post(ctx, "/api/v1/generate", req, &resp); err != nil {
				return err
			}
			return api.Output(resp.Report)
		},
	}
	cmd.Flags().Int64Var(&templateID, "template", 0, "Stored template ID to render")
	cmd.Flags().IntVar(&limit, "limit", 0, "Max expansions, default "+strconv.Itoa(expand.DefaultLimit))
	cmd.Flags().StringArrayVar(&selects, "select", nil, "Pin values, name=v1,v2 (repeatable)")
	cmd.Flags().BoolVar(&random, "random", false, "Draw random values instead of enumerating")
	cmd.Flags().IntVar(&count, "count", 1, "Renderings to draw with --random")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Seed for reproducible random draws")
	cmd.Flags().StringVar(&size, "size", "", "Image size, e.g. 1024x1024")
	cmd.Flags().StringVar(&quality, "quality", "", "Image quality, e.g. standard or hd")
	cmd.Flags().StringVar(&style, "style", "", "Image style, e.g. vivid or natural")
	cmd.Flags().StringVar(&model, "model", "", "Override the configured model")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Expand and report without generating")
	return cmd
}
