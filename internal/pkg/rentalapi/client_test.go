package rentalapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/fleetrent/fleetrent-client/internal/rental"
	"github.com/fleetrent/fleetrent-client/internal/session"
)

func testSession() session.Session {
	return session.New("test-token", session.RoleManager, "u1")
}

func emptyPage() rental.Page[rental.Reservation] {
	return rental.Page[rental.Reservation]{Items: []rental.Reservation{}}
}

func TestFetchReservationsOmitsEmptyFilterFields(t *testing.T) {
	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		json.NewEncoder(w).Encode(emptyPage())
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, time.Second, "FleetRent/1.0 test")
	if _, err := client.FetchReservations(context.Background(), testSession(), rental.FilterSpec{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(gotQuery) != 1 || gotQuery.Get("page") != "0" {
		t.Fatalf("expected only page=0, got %v", gotQuery)
	}
	for _, forbidden := range []string{"from", "to", "status", "pageSize"} {
		if _, present := gotQuery[forbidden]; present {
			t.Fatalf("empty field %q must be omitted, got %v", forbidden, gotQuery)
		}
	}
}

func TestFetchReservationsSendsFilterAndAuth(t *testing.T) {
	var gotQuery url.Values
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/private/reservations" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		gotQuery = r.URL.Query()
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(emptyPage())
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, time.Second, "FleetRent/1.0 test")
	filter := rental.FilterSpec{
		From:   "2024-01-01",
		To:     "2024-01-31",
		Status: rental.StatusPending,
	}
	if _, err := client.FetchReservations(context.Background(), testSession(), filter); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotAuth != "Bearer test-token" {
		t.Fatalf("expected bearer token header, got %q", gotAuth)
	}
	expected := url.Values{
		"from":   {"2024-01-01"},
		"to":     {"2024-01-31"},
		"status": {"PENDING"},
		"page":   {"0"},
	}
	if len(gotQuery) != len(expected) {
		t.Fatalf("expected exactly %v, got %v", expected, gotQuery)
	}
	for key, want := range expected {
		if gotQuery.Get(key) != want[0] {
			t.Fatalf("expected %s=%s, got %v", key, want[0], gotQuery)
		}
	}
}

func TestTransitionStatusSendsTarget(t *testing.T) {
	var gotPath, gotMethod string
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(rental.Reservation{ID: 42, Status: rental.StatusConfirmed})
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, time.Second, "FleetRent/1.0 test")
	updated, err := client.TransitionStatus(context.Background(), testSession(), 42, rental.StatusConfirmed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotMethod != http.MethodPut || gotPath != "/api/private/reservations/42/status" {
		t.Fatalf("expected PUT /api/private/reservations/42/status, got %s %s", gotMethod, gotPath)
	}
	if gotBody["status"] != "CONFIRMED" {
		t.Fatalf("expected status=CONFIRMED in body, got %v", gotBody)
	}
	if updated.ID != 42 || updated.Status != rental.StatusConfirmed {
		t.Fatalf("unexpected reservation: %+v", updated)
	}
}

func TestAuthErrorSurfacedDistinctly(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(map[string]string{"message": "Token expired"})
		}))
		t.Cleanup(server.Close)

		client := NewClient(server.URL, time.Second, "FleetRent/1.0 test")
		_, err := client.FetchReservations(context.Background(), testSession(), rental.FilterSpec{})

		var authErr *AuthError
		if !errors.As(err, &authErr) {
			t.Fatalf("status %d: expected AuthError, got %v", status, err)
		}
		if authErr.Message != "Token expired" {
			t.Fatalf("expected backend message, got %q", authErr.Message)
		}
	}
}

func TestValidationErrorCarriesBackendMessageVerbatim(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"message": "Reservation already cancelled"})
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, time.Second, "FleetRent/1.0 test")
	_, err := client.TransitionStatus(context.Background(), testSession(), 7, rental.StatusConfirmed)

	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if valErr.Message != "Reservation already cancelled" {
		t.Fatalf("expected verbatim backend message, got %q", valErr.Message)
	}
	if valErr.StatusCode != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", valErr.StatusCode)
	}
}

func TestValidationErrorFallsBackToGenericMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, time.Second, "FleetRent/1.0 test")
	_, err := client.FetchReservations(context.Background(), testSession(), rental.FilterSpec{})

	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if valErr.Message != "failed to fetch reservations" {
		t.Fatalf("expected generic fallback, got %q", valErr.Message)
	}
}

func TestServerErrorClassified(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, time.Second, "FleetRent/1.0 test")
	_, err := client.FetchReservations(context.Background(), testSession(), rental.FilterSpec{})

	var srvErr *ServerError
	if !errors.As(err, &srvErr) {
		t.Fatalf("expected ServerError, got %v", err)
	}
	if !strings.Contains(srvErr.Error(), "try again later") {
		t.Fatalf("expected retry hint, got %q", srvErr.Error())
	}
}

func TestNetworkErrorClassified(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := NewClient(server.URL, time.Second, "FleetRent/1.0 test")
	_, err := client.FetchReservations(context.Background(), testSession(), rental.FilterSpec{})

	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
}

func TestTimeoutClassified(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		json.NewEncoder(w).Encode(emptyPage())
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, 20*time.Millisecond, "FleetRent/1.0 test")
	_, err := client.FetchReservations(context.Background(), testSession(), rental.FilterSpec{})

	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if !netErr.Timeout {
		t.Fatalf("expected timeout classification, got %v", netErr)
	}
}

func TestLoginBuildsSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/public/authentication/login" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "manager@example.com" || body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "Invalid email or password"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{
			"token":  "issued-token",
			"role":   "MANAGER",
			"userId": "u-17",
		})
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, time.Second, "FleetRent/1.0 test")
	sess, err := client.Login(context.Background(), "manager@example.com", "secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.Token != "issued-token" || sess.Role != session.RoleManager || sess.UserID != "u-17" {
		t.Fatalf("unexpected session: %+v", sess)
	}

	_, err = client.Login(context.Background(), "manager@example.com", "wrong")
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError for bad credentials, got %v", err)
	}
}
