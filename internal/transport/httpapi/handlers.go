package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"civicsense/internal/domain/issue"
	"civicsense/internal/errs"
	"civicsense/internal/ports"
	"civicsense/internal/usecase/lifecycle"
)

type checkStatusRequest struct {
	IssueID string `json:"issueId"`
}

type createIssueRequest struct {
	FullName           string   `json:"fullName"`
	Email              string   `json:"email"`
	Mobile             string   `json:"mobile"`
	Age                *int     `json:"age"`
	Gender             string   `json:"gender"`
	Pincode            string   `json:"pincode"`
	City               string   `json:"city"`
	District           string   `json:"district"`
	State              string   `json:"state"`
	Country            string   `json:"country"`
	ResidentialAddress string   `json:"residentialAddress"`
	WorkAddress        string   `json:"workAddress"`
	IssueCategory      string   `json:"issueCategory"`
	CustomIssueType    string   `json:"customIssueType"`
	IssueDescription   string   `json:"issueDescription"`
	Latitude           *float64 `json:"latitude"`
	Longitude          *float64 `json:"longitude"`
	LocationAddress    string   `json:"locationAddress"`
	Priority           string   `json:"priority"`
	ImageFilename      string   `json:"imageFilename"`
}

type createIssueResponse struct {
	IssueID     string       `json:"issueId"`
	Status      issue.Status `json:"status"`
	SubmittedAt time.Time    `json:"submittedAt"`
}

type changeStatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

func (h *handler) checkStatus(w http.ResponseWriter, r *http.Request) {
	var req checkStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.IssueID) == "" {
		writeError(w, r, errs.Wrap(issue.ErrMissingField, "issueId"))
		return
	}

	out, err := h.svc.CheckStatus(r.Context(), req.IssueID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) createIssue(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r.Context())

	var req createIssueRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	// Reporters always file under their own contact key.
	email := req.Email
	if !principal.IsAdmin() {
		email = principal.Subject
	}

	created, err := h.svc.CreateIssue(r.Context(), issue.Submission{
		ReporterName:       req.FullName,
		ReporterEmail:      email,
		Mobile:             req.Mobile,
		Age:                req.Age,
		Gender:             req.Gender,
		Pincode:            req.Pincode,
		City:               req.City,
		District:           req.District,
		State:              req.State,
		Country:            req.Country,
		ResidentialAddress: req.ResidentialAddress,
		WorkAddress:        req.WorkAddress,
		Category:           req.IssueCategory,
		CustomIssueType:    req.CustomIssueType,
		Description:        req.IssueDescription,
		Latitude:           req.Latitude,
		Longitude:          req.Longitude,
		LocationAddress:    req.LocationAddress,
		Priority:           req.Priority,
		ImageFilename:      req.ImageFilename,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, createIssueResponse{
		IssueID:     created.PublicID,
		Status:      created.Status,
		SubmittedAt: created.SubmittedAt,
	})
}

func (h *handler) listMySubmissions(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r.Context())

	items, err := h.svc.ListIssuesForReporter(r.Context(), principal.Subject)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"submissions": items})
}

func (h *handler) getMySubmission(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r.Context())

	detail, err := h.svc.GetIssueForReporter(r.Context(), chi.URLParam(r, "publicID"), principal.Subject)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *handler) mySummary(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r.Context())

	summary, err := h.svc.Summarize(r.Context(), principal.Subject)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *handler) adminListIssues(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit, err := queryInt(query.Get("limit"), "limit")
	if err != nil {
		writeError(w, r, err)
		return
	}
	offset, err := queryInt(query.Get("offset"), "offset")
	if err != nil {
		writeError(w, r, err)
		return
	}

	items, err := h.svc.ListIssues(r.Context(), lifecycle.ListIssuesInput{
		Status:   query.Get("status"),
		Category: query.Get("category"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"issues": items})
}

func (h *handler) adminGetIssue(w http.ResponseWriter, r *http.Request) {
	detail, err := h.svc.GetIssueWithHistory(r.Context(), chi.URLParam(r, "publicID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *handler) adminChangeStatus(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFrom(r.Context())
	if !ok {
		writeError(w, r, ports.ErrUnauthenticated)
		return
	}

	var req changeStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	entry, err := h.svc.ChangeStatus(r.Context(), lifecycle.ChangeStatusInput{
		PublicID: chi.URLParam(r, "publicID"),
		Status:   req.Status,
		Notes:    req.Notes,
		Actor:    principal.ActorLabel(),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *handler) adminDeleteIssue(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteIssue(r.Context(), chi.URLParam(r, "publicID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func queryInt(raw string, name string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errs.Mark(errs.Wrapf(err, "query %s", name), issue.ErrValidation)
	}
	return value, nil
}
