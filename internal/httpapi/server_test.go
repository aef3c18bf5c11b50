package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/tovigym/gymgate/internal/gymgate/service"
	"github.com/tovigym/gymgate/internal/gymgate/store"
	"github.com/tovigym/gymgate/internal/gymgate/store/memory"
	"github.com/tovigym/gymgate/internal/gymgate/types"
	"github.com/tovigym/gymgate/internal/gymgate/vendorapi"
	"github.com/tovigym/gymgate/internal/httpapi"
)

// stubVendor answers every action successfully.
type stubVendor struct{}

func (stubVendor) RequestToken(context.Context, vendorapi.Credentials) (vendorapi.Token, error) {
	return vendorapi.Token{AccessToken: "tok-1", ExpiresIn: 3600}, nil
}

func (stubVendor) Subscribe(context.Context, vendorapi.Credentials, string, []string) (string, error) {
	return "sub-1", nil
}

func (stubVendor) PollMessages(context.Context, vendorapi.Credentials, string, string, int) ([]vendorapi.Message, error) {
	return nil, nil
}

func (stubVendor) AcknowledgeOffset(context.Context, vendorapi.Credentials, string, string) error {
	return nil
}

func (stubVendor) RegisterPerson(context.Context, vendorapi.Credentials, string, vendorapi.Person) (string, error) {
	return "person-1", nil
}

func (stubVendor) AssignPrivileges(context.Context, vendorapi.Credentials, string, string, string) error {
	return nil
}

type apiFixture struct {
	settings *memory.SettingsStore
	events   *memory.AccessEventStore
	handler  http.Handler
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	logger := zap.NewNop()
	settings := memory.NewSettingsStore()
	events := memory.NewAccessEventStore()
	members := memory.NewMemberStore(store.MemberRecord{
		MemberID: "M1",
		FullName: "Alex Morgan",
		IsActive: true,
	})

	tokens := service.NewTokenManager(settings, memory.NewTokenStore(), stubVendor{}, logger)
	settingsSvc := service.NewSettingsService(settings, tokens, logger)
	registration := service.NewRegistrationService(
		members, memory.NewCredentialStore(), memory.NewRegistrationLogStore(),
		settings, tokens, stubVendor{}, logger,
	)

	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:       logger,
		Addr:         "127.0.0.1:0",
		Settings:     settingsSvc,
		Registration: registration,
		Events:       events,
	})
	return &apiFixture{settings: settings, events: events, handler: srv.Handler()}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestGetIntegration_NotFound(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/v1/branches/B1/integration", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestSaveIntegration_RedactsSecrets(t *testing.T) {
	f := newAPIFixture(t)

	in := types.BranchSettings{
		APIURL:    "https://vendor.test",
		AppKey:    "k",
		AppSecret: "very-secret",
		IsActive:  false,
		Devices: []types.Device{
			{Name: "Main Entrance", SerialNumber: "DEV1", Password: "device-pw", IsActive: true},
		},
	}

	rec := f.do(t, http.MethodPut, "/v1/branches/B1/integration", in)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var out types.BranchSettings
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.AppSecret != "" {
		t.Error("expected app secret redacted")
	}
	if len(out.Devices) != 1 || out.Devices[0].Password != "" {
		t.Errorf("expected device password redacted, got %+v", out.Devices)
	}
	if out.Devices[0].ID == "" {
		t.Error("expected device id assigned")
	}

	// The secret is stored, only the response is redacted.
	stored, _ := f.settings.Get(context.Background(), "B1")
	if stored.AppSecret != "very-secret" {
		t.Errorf("expected stored secret intact, got %q", stored.AppSecret)
	}
}

func TestSaveIntegration_BadJSON(t *testing.T) {
	f := newAPIFixture(t)

	req := httptest.NewRequest(http.MethodPut, "/v1/branches/B1/integration",
		bytes.NewBufferString(`{"api_url": 12`))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSyncStatus(t *testing.T) {
	f := newAPIFixture(t)
	ctx := context.Background()

	_ = f.settings.Save(ctx, types.BranchSettings{BranchID: "B1", APIURL: "u", AppKey: "k", AppSecret: "s", IsActive: true})
	_ = f.settings.SetSubscriptionID(ctx, "B1", "sub-9")
	_ = f.settings.AdvanceOffset(ctx, "B1", "31")

	rec := f.do(t, http.MethodGet, "/v1/branches/B1/sync-status", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out["subscription_id"] != "sub-9" || out["last_offset"] != "31" {
		t.Errorf("unexpected sync status: %v", out)
	}
}

func TestListEvents(t *testing.T) {
	f := newAPIFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _ = f.events.RecordEvent(ctx, store.AccessEventRecord{
			BranchID:  "B1",
			DeviceSN:  "DEV1",
			EventType: types.EventTypeEntry,
			EventTime: time.Now().UTC(),
		})
	}

	rec := f.do(t, http.MethodGet, "/v1/branches/B1/events?limit=2", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var out struct {
		Events []map[string]any `json:"events"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(out.Events) != 2 {
		t.Errorf("expected 2 events with limit=2, got %d", len(out.Events))
	}
}

func TestRegisterMember_API(t *testing.T) {
	f := newAPIFixture(t)
	ctx := context.Background()

	_ = f.settings.Save(ctx, types.BranchSettings{
		BranchID: "B1", APIURL: "u", AppKey: "k", AppSecret: "s", IsActive: true,
		Devices: []types.Device{{ID: "dev-1", Name: "Main", Type: types.DeviceTypeCloud, SerialNumber: "DEV1", IsActive: true}},
	})

	rec := f.do(t, http.MethodPost, "/v1/members/M1/register",
		map[string]string{"branch_id": "B1", "device_type": "hikvision"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var out service.RegistrationResult
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Status != types.RegistrationSuccess || out.CredentialValue != "person-1" {
		t.Errorf("unexpected result: %+v", out)
	}
}

func TestRegisterMember_API_NotFound(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/v1/members/ghost/register",
		map[string]string{"branch_id": "B1", "device_type": "hikvision"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRegisterMember_API_UnknownDeviceType(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/v1/members/M1/register",
		map[string]string{"branch_id": "B1", "device_type": "suprema"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}
