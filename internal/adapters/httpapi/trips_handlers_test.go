package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	memdestinationrepo "github.com/triphive/triphive-api/internal/adapters/memory/destinationrepo"
	memmembershiprepo "github.com/triphive/triphive-api/internal/adapters/memory/membershiprepo"
	mempreferencerepo "github.com/triphive/triphive-api/internal/adapters/memory/preferencerepo"
	memtriprepo "github.com/triphive/triphive-api/internal/adapters/memory/triprepo"
	memviewcache "github.com/triphive/triphive-api/internal/adapters/memory/viewcache"
	"github.com/triphive/triphive-api/internal/adapters/travelapi"
	"github.com/triphive/triphive-api/internal/app/estimates"
	"github.com/triphive/triphive-api/internal/app/joincode"
	"github.com/triphive/triphive-api/internal/app/preferences"
	"github.com/triphive/triphive-api/internal/app/trips"
	"github.com/triphive/triphive-api/internal/app/voting"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	clk := fixedClock{t: time.Unix(1700000000, 0).UTC()}
	tripRepo := memtriprepo.NewRepo()
	memberships := memmembershiprepo.NewRepo()
	prefs := mempreferencerepo.NewRepo()
	destinations := memdestinationrepo.NewRepo()
	cache := memviewcache.NewRecorder()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	joinSvc := joincode.NewService(tripRepo, memberships, cache, clk, log)
	tripsSvc := trips.NewService(tripRepo, memberships, joinSvc, cache, clk)
	prefsSvc := preferences.NewService(prefs, tripRepo, memberships, clk)
	votingSvc := voting.NewService(destinations, tripRepo, memberships, clk)
	estimatesSvc := estimates.NewService(travelapi.NewMock(42), tripRepo, memberships, prefs)

	api := NewServer(tripsSvc, joinSvc, prefsSvc, votingSvc, estimatesSvc)
	return NewRouter(api, RouterOptions{Auth: NewDevAuthMiddleware("")})
}

func doJSON(t *testing.T, h http.Handler, method, path, subject string, body string) *httptest.ResponseRecorder {
	t.Helper()

	var rdr io.Reader
	if body != "" {
		rdr = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if subject != "" {
		req.Header.Set("X-Debug-Subject", subject)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func createTrip(t *testing.T, h http.Handler, subject, name string) tripCreatedResponse {
	t.Helper()

	rec := doJSON(t, h, http.MethodPost, "/trips", subject, `{"name":"`+name+`"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create trip status=%d body=%s", rec.Code, rec.Body.String())
	}
	var out tripCreatedResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode create trip: %v", err)
	}
	return out
}

func TestCreateTrip_MintsJoinCode(t *testing.T) {
	t.Parallel()
	h := newTestHandler(t)

	created := createTrip(t, h, "sub-owner", "Lisbon long weekend")
	if created.Name != "Lisbon long weekend" || created.Status != "PLANNING" {
		t.Fatalf("unexpected response: %+v", created)
	}
	if !regexp.MustCompile(`^[A-HJ-NP-Z]{3}[1-9]{2}$`).MatchString(created.JoinCode) {
		t.Fatalf("join code %q does not match pattern", created.JoinCode)
	}

	rec := doJSON(t, h, http.MethodGet, "/trips", "sub-owner", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list trips status=%d", rec.Code)
	}
	var listed myTripsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed.Trips) != 1 || listed.Trips[0].Role != "owner" || listed.Trips[0].TripId != created.TripId {
		t.Fatalf("unexpected list: %+v", listed)
	}
}

func TestCreateTrip_EmptyNameRejected(t *testing.T) {
	t.Parallel()
	h := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/trips", "sub-owner", `{"name":"   "}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestJoinTrip_FullFlow(t *testing.T) {
	t.Parallel()
	h := newTestHandler(t)

	created := createTrip(t, h, "sub-owner", "Porto")

	// Codes are case-insensitive and whitespace-tolerant at the edge.
	rec := doJSON(t, h, http.MethodPost, "/trips/join", "sub-joiner",
		`{"code":"  `+string(bytes.ToLower([]byte(created.JoinCode)))+` "}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("join status=%d body=%s", rec.Code, rec.Body.String())
	}
	var joined joinTripResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &joined); err != nil {
		t.Fatalf("decode join: %v", err)
	}
	if !joined.Joined || joined.AlreadyMember || joined.TripId != created.TripId || joined.TripName != "Porto" {
		t.Fatalf("unexpected join response: %+v", joined)
	}

	// Redeeming again is idempotent.
	rec = doJSON(t, h, http.MethodPost, "/trips/join", "sub-joiner", `{"code":"`+created.JoinCode+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("re-join status=%d body=%s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &joined); err != nil {
		t.Fatalf("decode re-join: %v", err)
	}
	if joined.Joined || !joined.AlreadyMember {
		t.Fatalf("expected alreadyMember, got %+v", joined)
	}

	rec = doJSON(t, h, http.MethodGet, "/trips/"+created.TripId+"/members", "sub-joiner", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("members status=%d body=%s", rec.Code, rec.Body.String())
	}
	var members membersResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &members); err != nil {
		t.Fatalf("decode members: %v", err)
	}
	if len(members.Members) != 2 {
		t.Fatalf("expected 2 members, got %+v", members)
	}
}

func TestJoinTrip_UnknownCodeIs404(t *testing.T) {
	t.Parallel()
	h := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/trips/join", "sub-joiner", `{"code":"ZZZ99"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var er ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &er); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if er.Error.Code != "INVALID_JOIN_CODE" {
		t.Fatalf("error code = %q", er.Error.Code)
	}
	if rid, err := er.Error.RequestId.Get(); err != nil || rid == "" {
		t.Fatalf("expected request id in envelope, got %v %v", rid, err)
	}
}

func TestGetTrip_NonMemberGets404(t *testing.T) {
	t.Parallel()
	h := newTestHandler(t)

	created := createTrip(t, h, "sub-owner", "Athens")

	rec := doJSON(t, h, http.MethodGet, "/trips/"+created.TripId, "sub-stranger", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodGet, "/trips/"+created.TripId, "sub-owner", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("owner status=%d body=%s", rec.Code, rec.Body.String())
	}
	var details tripDetailsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &details); err != nil {
		t.Fatalf("decode details: %v", err)
	}
	if details.JoinCode != created.JoinCode || len(details.Members) != 1 {
		t.Fatalf("unexpected details: %+v", details)
	}
}

func TestMalformedBodyIs422(t *testing.T) {
	t.Parallel()
	h := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/trips", "sub-owner", `{"name":`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var er ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &er); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if er.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("error code = %q", er.Error.Code)
	}
}
