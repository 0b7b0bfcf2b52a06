package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/Vibush01/BeFit/internal/models"
	"github.com/Vibush01/BeFit/internal/services"
)

type stubMembershipService struct {
	submitErr    error
	listResult   []models.JoinRequestDetail
	listErr      error
	decideErr    error
	lastActorID  int64
	lastRole     string
	lastDeclared string
	lastGymID    int64
	lastRequest  int64
	lastAction   string
}

func (s *stubMembershipService) SubmitJoinRequest(_ context.Context, actorID int64, actorRole string, declaredRole string, gymID int64) (*models.JoinRequest, error) {
	s.lastActorID = actorID
	s.lastRole = actorRole
	s.lastDeclared = declaredRole
	s.lastGymID = gymID
	if s.submitErr != nil {
		return nil, s.submitErr
	}
	return &models.JoinRequest{ID: 1, AccountID: actorID, AccountRole: actorRole, GymID: gymID, Status: models.JoinRequestPending}, nil
}

func (s *stubMembershipService) ListJoinRequests(_ context.Context, actorID int64, _ string, gymID int64) ([]models.JoinRequestDetail, error) {
	s.lastActorID = actorID
	s.lastGymID = gymID
	return s.listResult, s.listErr
}

func (s *stubMembershipService) DecideJoinRequest(_ context.Context, actorID int64, _ string, requestID int64, action string) (*models.JoinRequest, error) {
	s.lastActorID = actorID
	s.lastRequest = requestID
	s.lastAction = action
	if s.decideErr != nil {
		return nil, s.decideErr
	}
	status := models.JoinRequestRejected
	if action == services.ActionApprove {
		status = models.JoinRequestApproved
	}
	return &models.JoinRequest{ID: requestID, GymID: actorID, Status: status}, nil
}

func TestSubmitJoinRequestReturnsCreated(t *testing.T) {
	service := &stubMembershipService{}
	app := newTestApp("42", models.RoleMember)
	app.Post("/api/gyms/request/:gymId", NewJoinRequestHandler(service).Submit)

	resp, payload := doRequest(t, app, http.MethodPost, "/api/gyms/request/7", `{"role":"member"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, payload)
	}

	var body map[string]any
	if err := json.Unmarshal(payload, &body); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(body) != 1 || body["message"] != "Join request sent" {
		t.Fatalf("expected only the acknowledgement, got %s", payload)
	}
	if service.lastActorID != 42 || service.lastGymID != 7 || service.lastDeclared != models.RoleMember {
		t.Fatalf("unexpected service call: %+v", service)
	}
}

func TestSubmitJoinRequestErrors(t *testing.T) {
	tests := []struct {
		name       string
		role       string
		target     string
		body       string
		serviceErr error
		wantStatus int
		wantError  string
	}{
		{name: "gym cannot submit", role: models.RoleGym, target: "/api/gyms/request/7", body: `{"role":"gym"}`, wantStatus: http.StatusForbidden, wantError: "Access denied"},
		{name: "malformed gym id", role: models.RoleMember, target: "/api/gyms/request/abc", body: `{"role":"member"}`, wantStatus: http.StatusBadRequest, wantError: "Invalid gym id"},
		{name: "role mismatch", role: models.RoleMember, target: "/api/gyms/request/7", body: `{"role":"trainer"}`, serviceErr: services.ErrRoleMismatch, wantStatus: http.StatusForbidden, wantError: "role mismatch"},
		{name: "gym missing", role: models.RoleMember, target: "/api/gyms/request/7", body: `{"role":"member"}`, serviceErr: services.ErrGymNotFound, wantStatus: http.StatusNotFound, wantError: "gym not found"},
		{name: "already in gym", role: models.RoleTrainer, target: "/api/gyms/request/7", body: `{"role":"trainer"}`, serviceErr: services.ErrAlreadyInGym, wantStatus: http.StatusBadRequest, wantError: "user is already part of a gym"},
		{name: "duplicate", role: models.RoleMember, target: "/api/gyms/request/7", body: `{"role":"member"}`, serviceErr: services.ErrDuplicateRequest, wantStatus: http.StatusBadRequest, wantError: "join request already exists"},
		{name: "storage failure", role: models.RoleMember, target: "/api/gyms/request/7", body: `{"role":"member"}`, serviceErr: errors.New("db down"), wantStatus: http.StatusInternalServerError, wantError: "Failed to send join request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp("42", tt.role)
			app.Post("/api/gyms/request/:gymId", NewJoinRequestHandler(&stubMembershipService{submitErr: tt.serviceErr}).Submit)

			resp, payload := doRequest(t, app, http.MethodPost, tt.target, tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, resp.StatusCode, payload)
			}
			if got := decodeError(t, payload); got != tt.wantError {
				t.Fatalf("expected error %q, got %q", tt.wantError, got)
			}
		})
	}
}

func TestListJoinRequestsReturnsRequests(t *testing.T) {
	service := &stubMembershipService{listResult: []models.JoinRequestDetail{{
		JoinRequest: models.JoinRequest{ID: 3, AccountID: 42, GymID: 7, Status: models.JoinRequestPending},
		Requester:   models.Requester{ID: 42, Name: "Mia", Email: "mia@example.com"},
	}}}
	app := newTestApp("7", models.RoleGym)
	app.Get("/api/gyms/requests/:gymId", NewJoinRequestHandler(service).List)

	resp, payload := doRequest(t, app, http.MethodGet, "/api/gyms/requests/7", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, payload)
	}

	var body struct {
		Requests []models.JoinRequestDetail `json:"requests"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(body.Requests) != 1 || body.Requests[0].Requester.Email != "mia@example.com" {
		t.Fatalf("unexpected requests: %+v", body.Requests)
	}
}

func TestListJoinRequestsForOtherGymIsForbidden(t *testing.T) {
	app := newTestApp("8", models.RoleGym)
	app.Get("/api/gyms/requests/:gymId", NewJoinRequestHandler(&stubMembershipService{listErr: services.ErrNotGymOwner}).List)

	resp, payload := doRequest(t, app, http.MethodGet, "/api/gyms/requests/7", "")
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", resp.StatusCode, payload)
	}
}

func TestDecideJoinRequest(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		serviceErr  error
		wantStatus  int
		wantMessage string
		wantError   string
	}{
		{name: "approve", body: `{"action":"approve"}`, wantStatus: http.StatusOK, wantMessage: "Request approved successfully"},
		{name: "reject", body: `{"action":"reject"}`, wantStatus: http.StatusOK, wantMessage: "Request rejected successfully"},
		{name: "invalid action", body: `{"action":"approved"}`, wantStatus: http.StatusBadRequest, wantError: "Invalid action"},
		{name: "already processed", body: `{"action":"approve"}`, serviceErr: services.ErrAlreadyProcessed, wantStatus: http.StatusBadRequest, wantError: "request has already been processed"},
		{name: "missing request", body: `{"action":"reject"}`, serviceErr: services.ErrRequestNotFound, wantStatus: http.StatusNotFound, wantError: "join request not found"},
		{name: "other gym", body: `{"action":"reject"}`, serviceErr: services.ErrNotGymOwner, wantStatus: http.StatusForbidden, wantError: "not authorized for this gym"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &stubMembershipService{decideErr: tt.serviceErr}
			app := newTestApp("7", models.RoleGym)
			app.Put("/api/gyms/request/:requestId", NewJoinRequestHandler(service).Decide)

			resp, payload := doRequest(t, app, http.MethodPut, "/api/gyms/request/3", tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, resp.StatusCode, payload)
			}
			if tt.wantError != "" {
				if got := decodeError(t, payload); got != tt.wantError {
					t.Fatalf("expected error %q, got %q", tt.wantError, got)
				}
				return
			}

			var body struct {
				Message string `json:"message"`
			}
			if err := json.Unmarshal(payload, &body); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if body.Message != tt.wantMessage {
				t.Fatalf("expected %q, got %q", tt.wantMessage, body.Message)
			}
			if service.lastRequest != 3 {
				t.Fatalf("expected request 3, got %d", service.lastRequest)
			}
		})
	}
}

func TestDecideJoinRequestRequiresGymRole(t *testing.T) {
	app := newTestApp("42", models.RoleMember)
	app.Put("/api/gyms/request/:requestId", NewJoinRequestHandler(&stubMembershipService{}).Decide)

	resp, _ := doRequest(t, app, http.MethodPut, "/api/gyms/request/3", `{"action":"approve"}`)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}
