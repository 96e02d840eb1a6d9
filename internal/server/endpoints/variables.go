package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/easel/internal/api"
	"github.com/jackzampolin/easel/internal/store"
	"github.com/jackzampolin/easel/internal/svcctx"
)

// VariableView is a variable pool with its decoded values.
type VariableView struct {
	Name         string    `json:"name"`
	Values       []string  `json:"values"`
	UsageCount   int       `json:"usage_count"`
	CreationDate time.Time `json:"creation_date"`
	LastUsed     time.Time `json:"last_used"`
}

// NewVariableView builds the view of a variable pool row.
func NewVariableView(v *store.Variable) VariableView {
	return VariableView{
		Name:         v.Name,
		Values:       v.Values(),
		UsageCount:   v.UsageCount,
		CreationDate: v.CreationDate,
		LastUsed:     v.LastUsed,
	}
}

// VariablesResponse contains all variable pools.
type VariablesResponse struct {
	Variables []VariableView `json:"variables"`
}

// VariableResponse contains a single variable pool.
type VariableResponse struct {
	Variable VariableView `json:"variable"`
}

// SetVariableRequest is the request body for creating a variable pool.
type SetVariableRequest struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// UpdateVariableRequest is the request body for replacing a pool's values.
type UpdateVariableRequest struct {
	Values []string `json:"values"`
}

// ListVariablesEndpoint handles GET /api/v1/variables.
type ListVariablesEndpoint struct{}

func (e *ListVariablesEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/v1/variables", e.handler
}

func (e *ListVariablesEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		List variable pools
//	@Description	Get all variable pools, name-ordered
//	@Tags			variables
//	@Produce		json
//	@Success		200	{object}	VariablesResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/v1/variables [get]
func (e *ListVariablesEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	s := svcctx.StoreFrom(r.Context())

	rows, err := s.ListVariables()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := VariablesResponse{Variables: make([]VariableView, len(rows))}
	for i := range rows {
		resp.Variables[i] = NewVariableView(&rows[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

func (e *ListVariablesEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List variable pools",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := api.NewClient(getServerURL())
			var resp VariablesResponse
			if err := client.Get(ctx, "/api/v1/variables", &resp); err != nil {
				return err
			}
			return api.Output(resp.Variables)
		},
	}
}

// SetVariableEndpoint handles POST /api/v1/variables.
type SetVariableEndpoint struct{}

func (e *SetVariableEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/v1/variables", e.handler
}

func (e *SetVariableEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Set a variable pool
//	@Description	Create or replace the value pool for a name
//	@Tags			variables
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SetVariableRequest	true	"Name and values"
//	@Success		200		{object}	VariableResponse
//	@Failure		400		{object}	ErrorResponse
//	@Router			/api/v1/variables [post]
func (e *SetVariableEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req SetVariableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	s := svcctx.StoreFrom(r.Context())
	v, err := s.SaveVariable(req.Name, req.Values)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, VariableResponse{Variable: NewVariableView(v)})
}

func (e *SetVariableEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "set <name> <value>...",
		Short: "Create or replace a variable pool",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := api.NewClient(getServerURL())
			var resp VariableResponse
			if err := client.Post(ctx, "/api/v1/variables", SetVariableRequest{
				Name:   args[0],
				Values: args[1:],
			}, &resp); err != nil {
				return err
			}
			return api.Output(resp.Variable)
		},
	}
}

// GetVariableEndpoint handles GET /api/v1/variables/{name...}.
type GetVariableEndpoint struct{}

func (e *GetVariableEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/v1/variables/{name...}", e.handler
}

func (e *GetVariableEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Get a variable pool
//	@Description	Get one variable pool by name
//	@Tags			variables
//	@Produce		json
//	@Param			name	path		string	true	"Variable name (URL-encoded)"
//	@Success		200		{object}	VariableResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/api/v1/variables/{name} [get]
func (e *GetVariableEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	name, err := pathName(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid name encoding")
		return
	}

	s := svcctx.StoreFrom(r.Context())
	v, err := s.GetVariable(name)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "variable not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, VariableResponse{Variable: NewVariableView(v)})
}

func (e *GetVariableEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show a variable pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := api.NewClient(getServerURL())
			var resp VariableResponse
			if err := client.Get(ctx, "/api/v1/variables/"+url.PathEscape(args[0]), &resp); err != nil {
				return err
			}
			return api.Output(resp.Variable)
		},
	}
}

// UpdateVariableEndpoint handles PUT /api/v1/variables/{name...}.
type UpdateVariableEndpoint struct{}

func (e *UpdateVariableEndpoint) Route() (string, string, http.HandlerFunc) {
	return "PUT", "/api/v1/variables/{name...}", e.handler
}

func (e *UpdateVariableEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Replace a variable pool
//	@Description	Replace the whole value list for a name
//	@Tags			variables
//	@Accept			json
//	@Produce		json
//	@Param			name	path		string					true	"Variable name (URL-encoded)"
//	@Param			body	body		UpdateVariableRequest	true	"New values"
//	@Success		200		{object}	VariableResponse
//	@Failure		400		{object}	ErrorResponse
//	@Router			/api/v1/variables/{name} [put]
func (e *UpdateVariableEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	name, err := pathName(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid name encoding")
		return
	}

	var req UpdateVariableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	s := svcctx.StoreFrom(r.Context())
	v, err := s.SaveVariable(name, req.Values)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, VariableResponse{Variable: NewVariableView(v)})
}

func (e *UpdateVariableEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "update <name> <value>...",
		Short: "Replace a variable pool's values",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := api.NewClient(getServerURL())
			var resp VariableResponse
			path := "/api/v1/variables/" + url.PathEscape(args[0])
			if err := client.Put(ctx, path, UpdateVariableRequest{Values: args[1:]}, &resp); err != nil {
				return err
			}
			return api.Output(resp.Variable)
		},
	}
}

// DeleteVariableEndpoint handles DELETE /api/v1/variables/{name...}.
type DeleteVariableEndpoint struct{}

func (e *DeleteVariableEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/v1/variables/{name...}", e.handler
}

func (e *DeleteVariableEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Delete a variable pool
//	@Description	Delete one variable pool by name
//	@Tags			variables
//	@Produce		json
//	@Param			name	path		string	true	"Variable name (URL-encoded)"
//	@Success		200		{object}	map[string]string
//	@Failure		404		{object}	ErrorResponse
//	@Router			/api/v1/variables/{name} [delete]
func (e *DeleteVariableEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	name, err := pathName(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid name encoding")
		return
	}

	s := svcctx.StoreFrom(r.Context())
	if err := s.DeleteVariable(name); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "variable not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (e *DeleteVariableEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <name>",
		Short: "Delete a variable pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := api.NewClient(getServerURL())
			if err := client.Delete(ctx, "/api/v1/variables/"+url.PathEscape(args[0])); err != nil {
				return err
			}
			cmd.Println("deleted")
			return nil
		},
	}
}
