package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	apperrors "github.com/hellocabs/hellocabs/internal/errors"
	"github.com/hellocabs/hellocabs/internal/lifecycle"
	"github.com/hellocabs/hellocabs/internal/models"
)

// stubRideService lets each test pin the behavior of a single call.
type stubRideService struct {
	bookFn     func(ctx context.Context, req *models.BookRideRequest, idempotencyKey string) (*models.Ride, error)
	getFn      func(ctx context.Context, id int64) (*models.RideResponse, error)
	listFn     func(ctx context.Context) ([]*models.RideResponse, error)
	updateFn   func(ctx context.Context, id int64, req *models.UpdateRideStatusRequest) (*models.Ride, error)
	confirmFn  func(ctx context.Context, rideID, cabID int64) (*models.Ride, error)
	cancelFn   func(ctx context.Context, id int64, req *models.CancelRideRequest) (*models.Ride, error)
	feedbackFn func(ctx context.Context, id int64, req *models.FeedbackRequest) (*models.Ride, error)
}

func (s *stubRideService) BookRide(ctx context.Context, req *models.BookRideRequest, idempotencyKey string) (*models.Ride, error) {
	return s.bookFn(ctx, req, idempotencyKey)
}

func (s *stubRideService) GetRide(ctx context.Context, id int64) (*models.RideResponse, error) {
	return s.getFn(ctx, id)
}

func (s *stubRideService) ListRides(ctx context.Context) ([]*models.RideResponse, error) {
	return s.listFn(ctx)
}

func (s *stubRideService) UpdateRideStatus(ctx context.Context, id int64, req *models.UpdateRideStatusRequest) (*models.Ride, error) {
	return s.updateFn(ctx, id, req)
}

func (s *stubRideService) ConfirmRide(ctx context.Context, rideID, cabID int64) (*models.Ride, error) {
	return s.confirmFn(ctx, rideID, cabID)
}

func (s *stubRideService) CancelRide(ctx context.Context, id int64, req *models.CancelRideRequest) (*models.Ride, error) {
	return s.cancelFn(ctx, id, req)
}

func (s *stubRideService) SubmitFeedback(ctx context.Context, id int64, req *models.FeedbackRequest) (*models.Ride, error) {
	return s.feedbackFn(ctx, id, req)
}

func sampleRide(status lifecycle.Status) *models.Ride {
	return &models.Ride{
		ID:               1,
		BookingRef:       "ref-1",
		CustomerID:       5,
		PickupLocationID: 1,
		DropLocationID:   2,
		PassengerMobile:  "9876543210",
		Status:           status,
		BookedAt:         time.Now(),
		Version:          1,
	}
}

func newRideRouter(svc *stubRideService) *chi.Mux {
	r := chi.NewRouter()
	NewRideHandler(svc).RegisterRoutes(r)
	return r
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not valid JSON: %v\n%s", err, rec.Body.String())
	}
	return body
}

func TestBookRideReturns201(t *testing.T) {
	svc := &stubRideService{
		bookFn: func(_ context.Context, req *models.BookRideRequest, _ string) (*models.Ride, error) {
			ride := sampleRide(lifecycle.StatusRequested)
			ride.CustomerID = req.CustomerID
			return ride, nil
		},
	}
	router := newRideRouter(svc)

	rec := doRequest(t, router, http.MethodPost, "/rides",
		`{"customer_id":5,"pickup_location_id":1,"drop_location_id":2,"passenger_mobile":"9876543210"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201\n%s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["status"] != "Requested" {
		t.Errorf("status field = %v, want Requested", body["status"])
	}
}

func TestBookRideInvalidBody(t *testing.T) {
	svc := &stubRideService{}
	router := newRideRouter(svc)

	rec := doRequest(t, router, http.MethodPost, "/rides", `{"customer_id":`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed JSON: status = %d, want 400", rec.Code)
	}

	rec = doRequest(t, router, http.MethodPost, "/rides",
		`{"customer_id":5,"pickup_location_id":1,"drop_location_id":2,"passenger_mobile":"123"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("short mobile number: status = %d, want 400", rec.Code)
	}
}

func TestGetRide(t *testing.T) {
	svc := &stubRideService{
		getFn: func(_ context.Context, id int64) (*models.RideResponse, error) {
			return sampleRide(lifecycle.StatusRequested).ToResponse(), nil
		},
	}
	router := newRideRouter(svc)

	rec := doRequest(t, router, http.MethodGet, "/rides/1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["message"] != "Ride found" {
		t.Errorf("message = %v, want %q", body["message"], "Ride found")
	}
}

func TestGetRideNotFound(t *testing.T) {
	svc := &stubRideService{
		getFn: func(_ context.Context, id int64) (*models.RideResponse, error) {
			return nil, apperrors.NotFound("ride")
		},
	}
	router := newRideRouter(svc)

	rec := doRequest(t, router, http.MethodGet, "/rides/42", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] != "not_found" {
		t.Errorf("error code = %v, want not_found", body["error"])
	}
}

func TestRidePathIDMustBePositiveInteger(t *testing.T) {
	svc := &stubRideService{}
	router := newRideRouter(svc)

	for _, path := range []string{"/rides/abc", "/rides/0", "/rides/-3"} {
		rec := doRequest(t, router, http.MethodGet, path, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("GET %s: status = %d, want 400", path, rec.Code)
		}
	}
}

func TestUpdateRideStatusMapsInvalidTransition(t *testing.T) {
	svc := &stubRideService{
		updateFn: func(_ context.Context, _ int64, _ *models.UpdateRideStatusRequest) (*models.Ride, error) {
			return nil, apperrors.InvalidTransition("Requested", "Picked")
		},
	}
	router := newRideRouter(svc)

	rec := doRequest(t, router, http.MethodPut, "/rides/1/status", `{"status":"Picked"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] != "invalid_transition" {
		t.Errorf("error code = %v, want invalid_transition", body["error"])
	}
}

func TestUpdateRideStatusRequiresStatusField(t *testing.T) {
	svc := &stubRideService{}
	router := newRideRouter(svc)

	rec := doRequest(t, router, http.MethodPut, "/rides/1/status", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing status: status = %d, want 400", rec.Code)
	}
}

func TestConfirmRide(t *testing.T) {
	var gotRideID, gotCabID int64
	svc := &stubRideService{
		confirmFn: func(_ context.Context, rideID, cabID int64) (*models.Ride, error) {
			gotRideID, gotCabID = rideID, cabID
			ride := sampleRide(lifecycle.StatusAccepted)
			ride.CabID = &cabID
			return ride, nil
		},
	}
	router := newRideRouter(svc)

	rec := doRequest(t, router, http.MethodPut, "/rides/1/confirm/7", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\n%s", rec.Code, rec.Body.String())
	}
	if gotRideID != 1 || gotCabID != 7 {
		t.Errorf("service called with (%d, %d), want (1, 7)", gotRideID, gotCabID)
	}
	body := decodeBody(t, rec)
	if body["message"] != "Cab Assigned" {
		t.Errorf("message = %v, want %q", body["message"], "Cab Assigned")
	}
}

func TestConfirmRideCabUnavailable(t *testing.T) {
	svc := &stubRideService{
		confirmFn: func(_ context.Context, _, cabID int64) (*models.Ride, error) {
			return nil, apperrors.CabUnavailable(cabID)
		},
	}
	router := newRideRouter(svc)

	rec := doRequest(t, router, http.MethodPut, "/rides/1/confirm/7", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] != "cab_unavailable" {
		t.Errorf("error code = %v, want cab_unavailable", body["error"])
	}
}

func TestCancelRide(t *testing.T) {
	svc := &stubRideService{
		cancelFn: func(_ context.Context, _ int64, req *models.CancelRideRequest) (*models.Ride, error) {
			ride := sampleRide(lifecycle.StatusCancelled)
			ride.CancellationReason = &req.Reason
			return ride, nil
		},
	}
	router := newRideRouter(svc)

	rec := doRequest(t, router, http.MethodDelete, "/rides/1", `{"reason":"Too Long"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\n%s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["message"] != "Ride cancelled successfully" {
		t.Errorf("message = %v, want %q", body["message"], "Ride cancelled successfully")
	}
}

func TestCancelRideRequiresReason(t *testing.T) {
	svc := &stubRideService{}
	router := newRideRouter(svc)

	rec := doRequest(t, router, http.MethodDelete, "/rides/1", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing reason: status = %d, want 400", rec.Code)
	}
}

func TestSubmitFeedback(t *testing.T) {
	svc := &stubRideService{
		feedbackFn: func(_ context.Context, _ int64, req *models.FeedbackRequest) (*models.Ride, error) {
			ride := sampleRide(lifecycle.StatusCompleted)
			ride.Feedback = &req.Feedback
			ride.Rating = &req.Rating
			return ride, nil
		},
	}
	router := newRideRouter(svc)

	rec := doRequest(t, router, http.MethodPut, "/rides/1/rating", `{"feedback":"Good","rating":4.5}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\n%s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["message"] != "Thanks for giving valuable feedback" {
		t.Errorf("message = %v, want %q", body["message"], "Thanks for giving valuable feedback")
	}
}

func TestSubmitFeedbackRatingOutOfRange(t *testing.T) {
	svc := &stubRideService{}
	router := newRideRouter(svc)

	rec := doRequest(t, router, http.MethodPut, "/rides/1/rating", `{"feedback":"great","rating":9}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("rating out of range: status = %d, want 400", rec.Code)
	}
}

func TestConcurrentUpdateMapsTo409(t *testing.T) {
	svc := &stubRideService{
		updateFn: func(_ context.Context, _ int64, _ *models.UpdateRideStatusRequest) (*models.Ride, error) {
			return nil, apperrors.ConcurrentUpdate("ride")
		},
	}
	router := newRideRouter(svc)

	rec := doRequest(t, router, http.MethodPut, "/rides/1/status", `{"status":"WaitingForConfirmation"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] != "concurrent_update" {
		t.Errorf("error code = %v, want concurrent_update", body["error"])
	}
}
