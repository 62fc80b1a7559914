package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/triphive/triphive-api/internal/app/estimates"
	"github.com/triphive/triphive-api/internal/domain"
)

type estimateResponse struct {
	Destination           string `json:"destination"`
	MemberCount           int    `json:"memberCount"`
	FlightMinCents        int64  `json:"flightMinCents"`
	FlightMedianCents     int64  `json:"flightMedianCents"`
	CarHirePerPersonCents int64  `json:"carHirePerPersonCents"`
	PerPersonTotalCents   int64  `json:"perPersonTotalCents"`
	Currency              string `json:"currency"`
	Source                string `json:"source"`
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	tripID := domain.TripID(chi.URLParam(r, "tripID"))

	q := r.URL.Query()
	in := estimates.EstimateInput{Destination: q.Get("destination")}
	if in.Destination == "" {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "missing destination query parameter", nil)
		return
	}
	if v := q.Get("depart"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid depart date", nil)
			return
		}
		in.Depart = t
	}
	if v := q.Get("return"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid return date", nil)
			return
		}
		in.Return = t
	}

	est, err := s.Estimates.Estimate(r.Context(), sub, tripID, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, estimateResponse{
		Destination:           est.Destination,
		MemberCount:           est.MemberCount,
		FlightMinCents:        est.FlightMinCents,
		FlightMedianCents:     est.FlightMedianCents,
		CarHirePerPersonCents: est.CarHirePerPersonCents,
		PerPersonTotalCents:   est.PerPersonTotalCents,
		Currency:              est.Currency,
		Source:                string(est.Source),
	})
}
