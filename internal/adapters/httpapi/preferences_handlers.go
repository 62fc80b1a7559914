package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/triphive/triphive-api/internal/app/preferences"
	"github.com/triphive/triphive-api/internal/domain"
)

type preferenceBody struct {
	OriginAirport     *string             `json:"originAirport,omitempty"`
	BudgetCents       *int64              `json:"budgetCents,omitempty"`
	EarliestDeparture *openapi_types.Date `json:"earliestDeparture,omitempty"`
	LatestReturn      *openapi_types.Date `json:"latestReturn,omitempty"`
	Pace              *string             `json:"pace,omitempty"`
}

type preferenceResponse struct {
	Subject           string              `json:"subject"`
	OriginAirport     *string             `json:"originAirport,omitempty"`
	BudgetCents       *int64              `json:"budgetCents,omitempty"`
	EarliestDeparture *openapi_types.Date `json:"earliestDeparture,omitempty"`
	LatestReturn      *openapi_types.Date `json:"latestReturn,omitempty"`
	Pace              *string             `json:"pace,omitempty"`
	UpdatedAt         time.Time           `json:"updatedAt"`
}

func preferenceToResponse(p domain.Preference) preferenceResponse {
	out := preferenceResponse{
		Subject:       string(p.Subject),
		OriginAirport: p.OriginAirport,
		BudgetCents:   p.BudgetCents,
		UpdatedAt:     p.UpdatedAt,
	}
	if p.EarliestDeparture != nil {
		out.EarliestDeparture = &openapi_types.Date{Time: *p.EarliestDeparture}
	}
	if p.LatestReturn != nil {
		out.LatestReturn = &openapi_types.Date{Time: *p.LatestReturn}
	}
	if p.Pace != nil {
		v := string(*p.Pace)
		out.Pace = &v
	}
	return out
}

func (s *Server) handleSetPreferences(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	tripID := domain.TripID(chi.URLParam(r, "tripID"))

	var req preferenceBody
	if !decodeJSON(w, r, &req) {
		return
	}

	in := preferences.SetPreferencesInput{
		OriginAirport: req.OriginAirport,
		BudgetCents:   req.BudgetCents,
	}
	if req.EarliestDeparture != nil {
		t := req.EarliestDeparture.Time
		in.EarliestDeparture = &t
	}
	if req.LatestReturn != nil {
		t := req.LatestReturn.Time
		in.LatestReturn = &t
	}
	if req.Pace != nil {
		p := domain.TravelPace(*req.Pace)
		in.Pace = &p
	}

	saved, err := s.Preferences.SetPreferences(r.Context(), sub, tripID, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, preferenceToResponse(saved))
}

type preferencesListResponse struct {
	Preferences []preferenceResponse `json:"preferences"`
}

// handleGetPreferences returns the caller's own preference record, or every
// member's record when ?all=true.
func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	tripID := domain.TripID(chi.URLParam(r, "tripID"))

	if r.URL.Query().Get("all") == "true" {
		list, err := s.Preferences.ListPreferences(r.Context(), sub, tripID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		out := preferencesListResponse{Preferences: make([]preferenceResponse, 0, len(list))}
		for _, p := range list {
			out.Preferences = append(out.Preferences, preferenceToResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
		return
	}

	p, err := s.Preferences.GetMyPreferences(r.Context(), sub, tripID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, preferenceToResponse(p))
}
