package http

import (
	"net/http"

	"moneytracker/internal/log"
	"moneytracker/internal/report"
)

const partialDataNotice = "Some figures could not be loaded right now. The values shown may be incomplete."

type dashboardPage struct {
	Page
	report.Dashboard
}

type reportsPage struct {
	Page
	report.Report
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	p := s.newPage(w, r, "Dashboard", "dashboard")

	d, err := s.deps.Reports.Dashboard(r.Context(), currentUserID(r), s.today())
	if err != nil {
		s.logReportFailure(r, "dashboard", err)
		p.Notice = partialDataNotice
	}
	s.render(w, r, http.StatusOK, "dashboard.html", dashboardPage{Page: p, Dashboard: d})
}

// handleReports ignores the type and category filters; the page always
// shows both kinds side by side.
func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	p := s.newPage(w, r, "Reports", "reports")

	c := report.ParseCriteria(r.URL.Query(), report.PresetThisMonth)
	c.Kind, c.CategoryID = nil, nil

	rep, err := s.deps.Reports.Report(r.Context(), currentUserID(r), c, s.today())
	if err != nil {
		s.logReportFailure(r, "reports", err)
		p.Notice = partialDataNotice
	}
	s.render(w, r, http.StatusOK, "reports.html", reportsPage{Page: p, Report: rep})
}

func (s *Server) logReportFailure(r *http.Request, page string, err error) {
	log.FromContext(r.Context()).WithComponent(log.ComponentReport).ErrorContext(r.Context(),
		"Report figures unavailable",
		log.FieldError, err,
		log.FieldUserID, currentUserID(r),
		"page", page)
}
