package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/triphive/triphive-api/internal/app/voting"
	"github.com/triphive/triphive-api/internal/domain"
)

type destinationEntry struct {
	DestinationId string `json:"destinationId"`
	Name          string `json:"name"`
	Country       string `json:"country"`
	Iata          string `json:"iata"`
}

func destinationToEntry(d domain.Destination) destinationEntry {
	return destinationEntry{
		DestinationId: string(d.ID),
		Name:          d.Name,
		Country:       d.Country,
		Iata:          d.IATA,
	}
}

type addDestinationRequest struct {
	Name    string `json:"name"`
	Country string `json:"country"`
	Iata    string `json:"iata"`
}

func (s *Server) handleAddDestination(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	tripID := domain.TripID(chi.URLParam(r, "tripID"))

	var req addDestinationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	d, err := s.Voting.AddDestination(r.Context(), sub, tripID, voting.AddDestinationInput{
		Name:    req.Name,
		Country: req.Country,
		IATA:    req.Iata,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, destinationToEntry(d))
}

type destinationsResponse struct {
	Destinations []destinationEntry `json:"destinations"`
}

func (s *Server) handleListDestinations(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	tripID := domain.TripID(chi.URLParam(r, "tripID"))

	list, err := s.Voting.ListDestinations(r.Context(), sub, tripID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := destinationsResponse{Destinations: make([]destinationEntry, 0, len(list))}
	for _, d := range list {
		out.Destinations = append(out.Destinations, destinationToEntry(d))
	}
	writeJSON(w, http.StatusOK, out)
}

type castVoteRequest struct {
	Like bool `json:"like"`
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	tripID := domain.TripID(chi.URLParam(r, "tripID"))
	destinationID := domain.DestinationID(chi.URLParam(r, "destinationID"))

	var req castVoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := s.Voting.CastVote(r.Context(), sub, tripID, destinationID, req.Like); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type tallyEntry struct {
	Destination destinationEntry `json:"destination"`
	Likes       int              `json:"likes"`
	Votes       int              `json:"votes"`
	ApprovalPct int              `json:"approvalPct"`
}

type tallyResponse struct {
	Results []tallyEntry `json:"results"`
}

func (s *Server) handleTally(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	tripID := domain.TripID(chi.URLParam(r, "tripID"))

	tallies, err := s.Voting.Tally(r.Context(), sub, tripID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := tallyResponse{Results: make([]tallyEntry, 0, len(tallies))}
	for _, t := range tallies {
		out.Results = append(out.Results, tallyEntry{
			Destination: destinationToEntry(t.Destination),
			Likes:       t.Likes,
			Votes:       t.Votes,
			ApprovalPct: t.ApprovalPct,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
