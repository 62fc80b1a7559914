package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/triphive/triphive-api/internal/app/estimates"
	"github.com/triphive/triphive-api/internal/app/joincode"
	"github.com/triphive/triphive-api/internal/app/preferences"
	"github.com/triphive/triphive-api/internal/app/trips"
	"github.com/triphive/triphive-api/internal/app/voting"
	"github.com/triphive/triphive-api/internal/domain"
)

// Server is the HTTP adapter. It decodes requests, delegates to the
// application services, and encodes responses.
type Server struct {
	Trips       *trips.Service
	JoinCodes   *joincode.Service
	Preferences *preferences.Service
	Voting      *voting.Service
	Estimates   *estimates.Service
}

func NewServer(
	tripsSvc *trips.Service,
	joinSvc *joincode.Service,
	prefsSvc *preferences.Service,
	votingSvc *voting.Service,
	estimatesSvc *estimates.Service,
) *Server {
	return &Server{
		Trips:       tripsSvc,
		JoinCodes:   joinSvc,
		Preferences: prefsSvc,
		Voting:      votingSvc,
		Estimates:   estimatesSvc,
	}
}

// subject extracts the authenticated caller, writing a 401 when absent.
func subject(w http.ResponseWriter, r *http.Request) (domain.SubjectID, bool) {
	sub, ok := SubjectFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing subject", nil)
		return "", false
	}
	return domain.SubjectID(sub), true
}

type createTripRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

type tripCreatedResponse struct {
	TripId   string `json:"tripId"`
	Name     string `json:"name"`
	Status   string `json:"status"`
	JoinCode string `json:"joinCode"`
}

func (s *Server) handleCreateTrip(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	var req createTripRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	created, err := s.Trips.CreateTrip(r.Context(), sub, trips.CreateTripInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tripCreatedResponse{
		TripId:   string(created.ID),
		Name:     created.Name,
		Status:   string(created.Status),
		JoinCode: string(created.JoinCode),
	})
}

type myTripEntry struct {
	TripId    string    `json:"tripId"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type myTripsResponse struct {
	Trips []myTripEntry `json:"trips"`
}

func (s *Server) handleListMyTrips(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	mine, err := s.Trips.ListMyTrips(r.Context(), sub)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := myTripsResponse{Trips: make([]myTripEntry, 0, len(mine))}
	for _, m := range mine {
		out.Trips = append(out.Trips, myTripEntry{
			TripId:    string(m.Trip.ID),
			Name:      m.Trip.Name,
			Status:    string(m.Trip.Status),
			Role:      string(m.Role),
			CreatedAt: m.Trip.CreatedAt,
			UpdatedAt: m.Trip.UpdatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type memberEntry struct {
	Subject  string    `json:"subject"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}

type tripDetailsResponse struct {
	TripId      string        `json:"tripId"`
	Name        string        `json:"name"`
	Description *string       `json:"description,omitempty"`
	Status      string        `json:"status"`
	JoinCode    string        `json:"joinCode"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
	Members     []memberEntry `json:"members"`
}

func (s *Server) handleGetTrip(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	tripID := domain.TripID(chi.URLParam(r, "tripID"))

	details, err := s.Trips.GetTrip(r.Context(), sub, tripID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := tripDetailsResponse{
		TripId:      string(details.ID),
		Name:        details.Name,
		Description: details.Description,
		Status:      string(details.Status),
		JoinCode:    string(details.JoinCode),
		CreatedAt:   details.CreatedAt,
		UpdatedAt:   details.UpdatedAt,
		Members:     make([]memberEntry, 0, len(details.Members)),
	}
	for _, m := range details.Members {
		out.Members = append(out.Members, memberEntry{
			Subject:  string(m.Subject),
			Role:     string(m.Role),
			JoinedAt: m.JoinedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type membersResponse struct {
	Members []memberEntry `json:"members"`
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	tripID := domain.TripID(chi.URLParam(r, "tripID"))

	members, err := s.Trips.ListMembers(r.Context(), sub, tripID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := membersResponse{Members: make([]memberEntry, 0, len(members))}
	for _, m := range members {
		out.Members = append(out.Members, memberEntry{
			Subject:  string(m.Subject),
			Role:     string(m.Role),
			JoinedAt: m.JoinedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type joinTripRequest struct {
	Code string `json:"code"`
}

type joinTripResponse struct {
	TripId        string `json:"tripId"`
	TripName      string `json:"tripName"`
	Joined        bool   `json:"joined"`
	AlreadyMember bool   `json:"alreadyMember"`
}

func (s *Server) handleJoinTrip(w http.ResponseWriter, r *http.Request) {
	sub, ok := subject(w, r)
	if !ok {
		return
	}
	var req joinTripRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := s.JoinCodes.Redeem(r.Context(), sub, req.Code)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, joinTripResponse{
		TripId:        string(res.TripID),
		TripName:      res.TripName,
		Joined:        res.Joined,
		AlreadyMember: res.AlreadyMember,
	})
}
