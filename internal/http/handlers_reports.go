package http

import (
	"net/http"

	"fishmarket/internal/core"
)

// streamFromQuery selects the rollup stream; the customer stream is the
// default.
func streamFromQuery(r *http.Request) (core.EntityKind, error) {
	switch r.URL.Query().Get("stream") {
	case "", "customer":
		return core.EntityCustomer, nil
	case "farmer":
		return core.EntityFarmer, nil
	default:
		return "", core.Invalid("stream", "must be 'customer' or 'farmer'")
	}
}

func (s *Server) handleDailyReport(w http.ResponseWriter, r *http.Request) {
	kind, err := streamFromQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	date := core.Today()
	if v := r.URL.Query().Get("date"); v != "" {
		date, err = core.ParseDate(v)
		if err != nil {
			writeError(w, r, err)
			return
		}
	}

	summary, err := s.svc.GetDailySummary(r.Context(), kind, date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryToResponse(summary))
}

func (s *Server) handleRangeReport(w http.ResponseWriter, r *http.Request) {
	kind, err := streamFromQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	start, err := core.ParseDate(r.URL.Query().Get("start"))
	if err != nil {
		writeError(w, r, core.Invalid("start", "must be YYYY-MM-DD"))
		return
	}
	end, err := core.ParseDate(r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, r, core.Invalid("end", "must be YYYY-MM-DD"))
		return
	}

	summaries, err := s.svc.GetDailySummaryRange(r.Context(), kind, start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]summaryResponse, len(summaries))
	for i := range summaries {
		out[i] = summaryToResponse(&summaries[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.GetDashboardStats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dashboardResponse{
		TodaySales:            stats.TodaySales,
		TodayCash:             stats.TodayCash,
		TodayTransactions:     stats.TodayTransactions,
		PendingCustomersCount: stats.PendingCustomersCount,
		PendingCustomersTotal: stats.PendingCustomersTotal,
		OwedFarmersCount:      stats.OwedFarmersCount,
		OwedFarmersTotal:      stats.OwedFarmersTotal,
		TotalCustomers:        stats.TotalCustomers,
		TotalFarmers:          stats.TotalFarmers,
		ActiveFishCategories:  stats.ActiveFishCategories,
	})
}
