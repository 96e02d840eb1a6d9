package endpoints

import (
	"net/http"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/easel/internal/api"
	"github.com/jackzampolin/easel/internal/store"
	"github.com/jackzampolin/easel/internal/svcctx"
)

// DailyStatsResponse contains per-date usage aggregates.
type DailyStatsResponse struct {
	Days []store.DailyUsage `json:"days"`
}

// StatsSummaryResponse contains the usage rollup and row counts.
type StatsSummaryResponse struct {
	Summary *store.UsageSummary `json:"summary"`
	Totals  *store.Totals       `json:"totals"`
}

// statsWindow reads the days query param; zero means all time.
func statsWindow(r *http.Request) int {
	if d := r.URL.Query().Get("days"); d != "" {
		if parsed, err := strconv.Atoi(d); err == nil && parsed > 0 {
			return parsed
		}
	}
	return 0
}

// DailyStatsEndpoint handles GET /api/v1/stats/daily.
type DailyStatsEndpoint struct{}

func (e *DailyStatsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/v1/stats/daily", e.handler
}

func (e *DailyStatsEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Daily usage
//	@Description	Get per-date token, cost, and generation aggregates
//	@Tags			stats
//	@Produce		json
//	@Param			days	query		int	false	"Window in days; omit for all time"
//	@Success		200		{object}	DailyStatsResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/api/v1/stats/daily [get]
func (e *DailyStatsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	s := svcctx.StoreFrom(r.Context())
	rows, err := s.UsageHistory(statsWindow(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if rows == nil {
		rows = []store.DailyUsage{}
	}
	writeJSON(w, http.StatusOK, DailyStatsResponse{Days: rows})
}

func (e *DailyStatsEndpoint) Command(getServerURL func() string) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Show daily usage aggregates",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := api.NewClient(getServerURL())

			path := "/api/v1/stats/daily"
			if days > 0 {
				path += "?days=" + strconv.Itoa(days)
			}

			var resp DailyStatsResponse
			if err := client.Get(ctx, path, &resp); err != nil {
				return err
			}
			return api.Output(resp.Days)
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "Window in days, 0 for all time")
	return cmd
}

// StatsSummaryEndpoint handles GET /api/v1/stats/summary.
type StatsSummaryEndpoint struct{}

func (e *StatsSummaryEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/v1/stats/summary", e.handler
}

func (e *StatsSummaryEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Usage summary
//	@Description	Roll up usage over a window plus stored row counts
//	@Tags			stats
//	@Produce		json
//	@Param			days	query		int	false	"Window in days; omit for all time"
//	@Success		200		{object}	StatsSummaryResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/api/v1/stats/summary [get]
func (e *StatsSummaryEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	s := svcctx.StoreFrom(r.Context())

	summary, err := s.Summarize(statsWindow(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	totals, err := s.Counts()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, StatsSummaryResponse{Summary: summary, Totals: totals})
}

func (e *StatsSummaryEndpoint) Command(getServerURL func() string) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show a usage summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := api.NewClient(getServerURL())

			path := "/api/v1/stats/summary"
			if days > 0 {
				path += "?days=" + strconv.Itoa(days)
			}

			var resp StatsSummaryResponse
			if err := client.Get(ctx, path, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "Window in days, 0 for all time")
	return cmd
}
