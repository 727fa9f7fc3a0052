package handlers

import (
	"context"
	"net/http"

	"github.com/baechuer/report-service/internal/domain"
	"github.com/baechuer/report-service/internal/transport/http/response"
)

// ReportService is satisfied by *report.Service.
type ReportService interface {
	Run(ctx context.Context, id domain.ReportID) (any, error)
}

type ReportsHandler struct {
	svc      ReportService
	basePath string
}

// NewReportsHandler serves reports mounted under basePath (e.g. "/api/reports").
func NewReportsHandler(svc ReportService, basePath string) *ReportsHandler {
	return &ReportsHandler{svc: svc, basePath: basePath}
}

type catalogueItem struct {
	domain.ReportInfo
	Path string `json:"path"`
}

// Catalogue lists the available reports.
func (h *ReportsHandler) Catalogue(w http.ResponseWriter, r *http.Request) {
	infos := domain.Reports()
	out := make([]catalogueItem, 0, len(infos))
	for _, info := range infos {
		out = append(out, catalogueItem{ReportInfo: info, Path: h.basePath + "/" + info.ID.String()})
	}
	response.JSON(w, r, http.StatusOK, out)
}

func (h *ReportsHandler) UsersWithRoles(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, domain.ReportUsersRoles)
}

func (h *ReportsHandler) UsersWithProfiles(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, domain.ReportUsersProfiles)
}

func (h *ReportsHandler) RolesWithUsers(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, domain.ReportRolesUsers)
}

func (h *ReportsHandler) ProfilesFullOuter(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, domain.ReportProfilesFull)
}

func (h *ReportsHandler) UserRoleCombos(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, domain.ReportUserRoleCombos)
}

func (h *ReportsHandler) Referrals(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, domain.ReportReferrals)
}

func (h *ReportsHandler) LatestLogins(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, domain.ReportLatestLogin)
}

// Handler returns the handler for id, or nil if id is not a report.
func (h *ReportsHandler) Handler(id domain.ReportID) http.HandlerFunc {
	switch id {
	case domain.ReportUsersRoles:
		return h.UsersWithRoles
	case domain.ReportUsersProfiles:
		return h.UsersWithProfiles
	case domain.ReportRolesUsers:
		return h.RolesWithUsers
	case domain.ReportProfilesFull:
		return h.ProfilesFullOuter
	case domain.ReportUserRoleCombos:
		return h.UserRoleCombos
	case domain.ReportReferrals:
		return h.Referrals
	case domain.ReportLatestLogin:
		return h.LatestLogins
	default:
		return nil
	}
}

// UnknownReport answers any other path under the reports prefix.
func (h *ReportsHandler) UnknownReport(w http.ResponseWriter, r *http.Request) {
	response.Err(w, r, domain.ErrUnknownReport)
}

func (h *ReportsHandler) serve(w http.ResponseWriter, r *http.Request, id domain.ReportID) {
	rows, err := h.svc.Run(r.Context(), id)
	if err != nil {
		response.Err(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, rows)
}
