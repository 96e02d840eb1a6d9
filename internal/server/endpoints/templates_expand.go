package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/easel/internal/api"
	"github.com/jackzampolin/easel/internal/expand"
	"github.com/jackzampolin/easel/internal/store"
	"github.com/jackzampolin/easel/internal/svcctx"
	"github.com/jackzampolin/easel/internal/template"
)

// ValidateRequest is the request body for template validation.
type ValidateRequest struct {
	Text string `json:"text"`
}

// ValidateResponse reports whether template text is well formed.
type ValidateResponse struct {
	Valid     bool     `json:"valid"`
	Reason    string   `json:"reason,omitempty"`
	Variables []string `json:"variables,omitempty"`
}

// ValidateTemplateEndpoint handles POST /api/v1/templates/validate.
type ValidateTemplateEndpoint struct{}

func (e *ValidateTemplateEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/v1/templates/validate", e.handler
}

func (e *ValidateTemplateEndpoint) RequiresInit() bool { return false }

// handler godoc
//
//	@Summary		Validate template text
//	@Description	Check template syntax and extract placeholder names
//	@Tags			templates
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ValidateRequest	true	"Template text"
//	@Success		200		{object}	ValidateResponse
//	@Failure		400		{object}	ErrorResponse
//	@Router			/api/v1/templates/validate [post]
func (e *ValidateTemplateEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	resp := ValidateResponse{}
	if ok, reason := template.Validate(req.Text); !ok {
		resp.Reason = reason
	} else {
		resp.Valid = true
		resp.Variables = template.ExtractVariables(req.Text)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (e *ValidateTemplateEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <text>",
		Short: "Validate template text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := api.NewClient(getServerURL())
			var resp ValidateResponse
			if err := client.Post(ctx, "/api/v1/templates/validate", ValidateRequest{Text: args[0]}, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// ExpandRequest selects a template and its expansion options. Either Text
// or TemplateID must be set.
type ExpandRequest struct {
	Text       string              `json:"text,omitempty"`
	TemplateID int64               `json:"template_id,omitempty"`
	Limit      int                 `json:"limit,omitempty"`
	Selections map[string][]string `json:"selections,omitempty"`
	UseRandom  bool                `json:"use_random,omitempty"`
	Count      int                 `json:"count,omitempty"`
	Seed       int64               `json:"seed,omitempty"`
}

// ExpandResponse carries the expansions of one dry run.
type ExpandResponse struct {
	Total      int                `json:"total"`
	Expansions []expand.Expansion `json:"expansions"`
}

// ExpandTemplateEndpoint handles POST /api/v1/templates/expand.
type ExpandTemplateEndpoint struct{}

func (e *ExpandTemplateEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/v1/templates/expand", e.handler
}

func (e *ExpandTemplateEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Expand a template
//	@Description	Dry-run expansion over stored variable pools
//	@Tags			templates
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ExpandRequest	true	"Expansion options"
//	@Success		200		{object}	ExpandResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/api/v1/templates/expand [post]
func (e *ExpandTemplateEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req ExpandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	s := svcctx.StoreFrom(r.Context())

	text := req.Text
	if text == "" && req.TemplateID > 0 {
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

	var rng *rand.Rand
	if req.Seed != 0 {
		rng = rand.New(rand.NewSource(req.Seed))
	}
	expander := expand.NewExpander(s, rng)

	var (
		seq *expand.Sequence
		err error
	)
	if req.UseRandom {
		seq, err = expander.ExpandRandom(text, req.Count)
	} else {
		seq, err = expander.Expand(text, expand.Options{
			Limit:      req.Limit,
			Selections: req.Selections,
		})
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ExpandResponse{
		Total:      seq.Total(),
		Expansions: seq.Collect(),
	})
}

func (e *ExpandTemplateEndpoint) Command(getServerURL func() string) *cobra.Command {
	var (
		text       string
		templateID int64
		limit      int
		selects    []string
		random     bool
		count      int
		seed       int64
	)
	cmd := &cobra.Command{
		Use:   "expand",
		Short: "Expand a template without generating images",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			selections, err := expand.ParseSelections(selects)
			if err != nil {
				return err
			}

			client := api.NewClient(getServerURL())
			var resp ExpandResponse
			err = client.Post(ctx, "/api/v1/templates/expand", ExpandRequest{
				Text:       text,
				TemplateID: templateID,
				Limit:      limit,
				Selections: selections,
				UseRandom:  random,
				Count:      count,
				Seed:       seed,
			}, &resp)
			if err != nil {
				return err
			}

			for _, ex := range resp.Expansions {
				fmt.Printf("[%d/%d] %s\n", ex.Index, resp.Total, ex.Text)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "Template text to expand")
	cmd.Flags().Int64Var(&templateID, "template", 0, "Saved template id to expand")
	cmd.Flags().IntVar(&limit, "limit", 0, "Cap for all-combinations expansion (default "+strconv.Itoa(expand.DefaultLimit)+")")
	cmd.Flags().StringArrayVar(&selects, "select", nil, "Value subset per variable, name=v1,v2 (repeatable)")
	cmd.Flags().BoolVar(&random, "random", false, "Resolve variables with random pool draws")
	cmd.Flags().IntVar(&count, "count", 1, "Number of random expansions (with --random)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Seed for reproducible random draws")
	return cmd
}
