package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"renewalboard/export"
	"renewalboard/manager"
	"renewalboard/performance"
)

type managerResponse struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	RenewalsMonth1 int     `json:"renewalsMonth1"`
	RenewalsMonth2 int     `json:"renewalsMonth2"`
	RenewalsMonth3 int     `json:"renewalsMonth3"`
	TotalRenewals  int     `json:"totalRenewals"`
	LatePercentage float64 `json:"latePercentage"`
	ManagedCount   int     `json:"managedCount"`
	QualityScore   int     `json:"qualityScore"`
	Classification string  `json:"classification"`
	CompliancePct  float64 `json:"compliancePct"`
	Band           string  `json:"band"`
	CreatedAt      string  `json:"createdAt"`
	UpdatedAt      string  `json:"updatedAt"`
}

type createManagerRequest struct {
	Name           string  `json:"name"`
	RenewalsMonth1 int     `json:"renewalsMonth1"`
	RenewalsMonth2 int     `json:"renewalsMonth2"`
	RenewalsMonth3 int     `json:"renewalsMonth3"`
	LatePercentage float64 `json:"latePercentage"`
	ManagedCount   int     `json:"managedCount"`
	QualityScore   int     `json:"qualityScore"`
}

type updateManagerRequest struct {
	Name           *string  `json:"name"`
	RenewalsMonth1 *int     `json:"renewalsMonth1"`
	RenewalsMonth2 *int     `json:"renewalsMonth2"`
	RenewalsMonth3 *int     `json:"renewalsMonth3"`
	LatePercentage *float64 `json:"latePercentage"`
	ManagedCount   *int     `json:"managedCount"`
	QualityScore   *int     `json:"qualityScore"`
}

type quartilesResponse struct {
	Q1 []managerResponse `json:"q1"`
	Q2 []managerResponse `json:"q2"`
	Q3 []managerResponse `json:"q3"`
	Q4 []managerResponse `json:"q4"`
}

type teamStatsResponse struct {
	Period               string            `json:"period"`
	Goal                 int               `json:"goal"`
	OverallCompliancePct float64           `json:"overallCompliancePct"`
	AverageCompliance    float64           `json:"averageCompliance"`
	AverageQuality       float64           `json:"averageQuality"`
	AverageLatePct       float64           `json:"averageLatePct"`
	CountMeetingGoal     int               `json:"countMeetingGoal"`
	TotalManagerCount    int               `json:"totalManagerCount"`
	TotalManaged         int               `json:"totalManaged"`
	Band                 string            `json:"band"`
	Quartiles            quartilesResponse `json:"quartiles"`
}

type scoredResponse struct {
	managerResponse
	Impact float64 `json:"impact"`
	Rank   int     `json:"rank"`
}

type classificationResponse struct {
	Items     []scoredResponse  `json:"items"`
	Quartiles quartilesResponse `json:"quartiles"`
}

type complianceResponse struct {
	Integral  []managerResponse `json:"integral"`
	GoalOnly  []managerResponse `json:"goalOnly"`
	BelowGoal []managerResponse `json:"belowGoal"`
}

func (s *Server) toManagerResponse(r manager.Record) managerResponse {
	sc := performance.Scope(r, performance.FullQuarter, s.goals)
	resp := managerResponse{
		ID:             r.ID,
		Name:           r.Name,
		RenewalsMonth1: r.RenewalsMonth1,
		RenewalsMonth2: r.RenewalsMonth2,
		RenewalsMonth3: r.RenewalsMonth3,
		TotalRenewals:  r.TotalRenewals,
		LatePercentage: r.LatePercentage,
		ManagedCount:   r.ManagedCount,
		QualityScore:   r.QualityScore,
		Classification: r.Classification,
		CompliancePct:  sc.CompliancePct,
		Band:           string(performance.Band(sc.CompliancePct)),
	}
	if !r.CreatedAt.IsZero() {
		resp.CreatedAt = r.CreatedAt.UTC().Format(time.RFC3339)
	}
	if !r.UpdatedAt.IsZero() {
		resp.UpdatedAt = r.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

func (s *Server) toManagerResponses(recs []manager.Record) []managerResponse {
	out := make([]managerResponse, 0, len(recs))
	for _, r := range recs {
		out = append(out, s.toManagerResponse(r))
	}
	return out
}

func (s *Server) toQuartilesResponse(q performance.Quartiles) quartilesResponse {
	return quartilesResponse{
		Q1: s.toManagerResponses(q.Q1),
		Q2: s.toManagerResponses(q.Q2),
		Q3: s.toManagerResponses(q.Q3),
		Q4: s.toManagerResponses(q.Q4),
	}
}

func (s *Server) toTeamStatsResponse(stats performance.TeamStats) teamStatsResponse {
	return teamStatsResponse{
		Period:               string(stats.Period),
		Goal:                 stats.Goal,
		OverallCompliancePct: stats.OverallCompliancePct,
		AverageCompliance:    stats.AverageCompliance,
		AverageQuality:       stats.AverageQuality,
		AverageLatePct:       stats.AverageLatePct,
		CountMeetingGoal:     stats.CountMeetingGoal,
		TotalManagerCount:    stats.TotalManagerCount,
		TotalManaged:         stats.TotalManaged,
		Band:                 string(performance.Band(stats.OverallCompliancePct)),
		Quartiles:            s.toQuartilesResponse(stats.Quartiles),
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListManagers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	recs, err := s.managers.List(r.Context(), manager.ListFilter{
		Query:     q.Get("q"),
		SortKey:   q.Get("sort"),
		SortOrder: q.Get("order"),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	items := s.toManagerResponses(recs)
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"total": len(items),
	})
}

func (s *Server) handleGetManager(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	rec, err := s.managers.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.toManagerResponse(rec))
}

func (s *Server) handleCreateManager(w http.ResponseWriter, r *http.Request) {
	var req createManagerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := s.managers.Create(r.Context(), manager.NewRecord{
		Name:           req.Name,
		RenewalsMonth1: req.RenewalsMonth1,
		RenewalsMonth2: req.RenewalsMonth2,
		RenewalsMonth3: req.RenewalsMonth3,
		LatePercentage: req.LatePercentage,
		ManagedCount:   req.ManagedCount,
		QualityScore:   req.QualityScore,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.toManagerResponse(rec))
}

func (s *Server) handleUpdateManager(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req updateManagerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := s.managers.Update(r.Context(), id, manager.Patch{
		Name:           req.Name,
		RenewalsMonth1: req.RenewalsMonth1,
		RenewalsMonth2: req.RenewalsMonth2,
		RenewalsMonth3: req.RenewalsMonth3,
		LatePercentage: req.LatePercentage,
		ManagedCount:   req.ManagedCount,
		QualityScore:   req.QualityScore,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.toManagerResponse(rec))
}

func (s *Server) handleDeleteManager(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := s.managers.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	period, err := performance.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	recs, err := s.managers.List(r.Context(), manager.ListFilter{})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	stats, err := performance.ComputeTeamStats(recs, period, s.goals, s.strategy)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, s.toTeamStatsResponse(stats))
}

func (s *Server) handleClassification(w http.ResponseWriter, r *http.Request) {
	recs, err := s.managers.List(r.Context(), manager.ListFilter{})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	cls := performance.ClassifyAndBucket(recs, s.strategy)
	items := make([]scoredResponse, 0, len(cls.Labeled))
	for _, sc := range cls.Labeled {
		items = append(items, scoredResponse{
			managerResponse: s.toManagerResponse(sc.Record),
			Impact:          sc.Impact,
			Rank:            sc.Rank,
		})
	}

	writeJSON(w, http.StatusOK, classificationResponse{
		Items:     items,
		Quartiles: s.toQuartilesResponse(cls.Quartiles),
	})
}

func (s *Server) handleCompliance(w http.ResponseWriter, r *http.Request) {
	recs, err := s.managers.List(r.Context(), manager.ListFilter{})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	report := performance.AnalyzeCompliance(recs, s.targets)
	writeJSON(w, http.StatusOK, complianceResponse{
		Integral:  s.toManagerResponses(report.Integral),
		GoalOnly:  s.toManagerResponses(report.GoalOnly),
		BelowGoal: s.toManagerResponses(report.BelowGoal),
	})
}

func (s *Server) handlePlan(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.plan)
}

func (s *Server) exportOptions() export.Options {
	return export.Options{MonthLabels: s.monthLabels, QuarterGoal: s.goals.FullQuarter}
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	recs, err := s.managers.List(r.Context(), manager.ListFilter{})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="renewals_q1.csv"`)
	if err := export.WriteCSV(w, recs, s.exportOptions()); err != nil {
		zap.L().Error("csv export failed", zap.Error(err))
	}
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	recs, err := s.managers.List(r.Context(), manager.ListFilter{})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="renewals_q1.xlsx"`)
	if err := export.WriteXLSX(w, recs, s.exportOptions()); err != nil {
		zap.L().Error("xlsx export failed", zap.Error(err))
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid manager id")
		return 0, false
	}
	return id, true
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *manager.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, vErr.Error())
	case errors.Is(err, manager.ErrNotFound):
		writeError(w, http.StatusNotFound, "manager not found")
	case errors.Is(err, performance.ErrEmptyDataset):
		writeError(w, http.StatusUnprocessableEntity, "no managers to aggregate")
	default:
		zap.L().Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
