package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/venue-ops/internal/config"
	"github.com/iliyamo/venue-ops/internal/queue"
	"github.com/iliyamo/venue-ops/internal/session"
)

const (
	secret  = "0123456789abcdef0123456789abcdef"
	planID  = "5f0c7a0e-8f4a-4b8e-9a57-1d3f2b6c9e10"
	orderID = "0b8f6a52-3c1d-4e57-a1f0-6d2e9c4b7a31"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.PurchaseOrderReceivedEvent
}

func (p *recordingPublisher) PublishPurchaseOrderReceived(_ context.Context, ev queue.PurchaseOrderReceivedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

type env struct {
	t      *testing.T
	mock   sqlmock.Sqlmock
	srv    http.Handler
	cookie *http.Cookie
	events *recordingPublisher
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})

	sessions := session.NewCookieService(secret, time.Hour)
	rec := httptest.NewRecorder()
	require.NoError(t, sessions.Persist(rec, httptest.NewRequest(http.MethodPost, "/", nil),
		&session.Session{UserID: "u1", Name: "Ann", Role: "MANAGER", IsLoggedIn: true}))

	events := &recordingPublisher{}
	e := New(Deps{DB: db, Sessions: sessions, Events: events})
	return &env{t: t, mock: mock, srv: e, cookie: rec.Result().Cookies()[0], events: events}
}

type response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Details []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"details"`
}

func (e *env) do(method, path, body string, authed bool) (int, response, map[string]json.RawMessage) {
	e.t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.AddCookie(e.cookie)
	}
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)

	var r response
	require.NoError(e.t, json.Unmarshal(rec.Body.Bytes(), &r), rec.Body.String())
	var raw map[string]json.RawMessage
	require.NoError(e.t, json.Unmarshal(rec.Body.Bytes(), &raw))
	return rec.Code, r, raw
}

func TestGuardedRouteWithoutSession(t *testing.T) {
	e := newEnv(t)
	code, r, raw := e.do(http.MethodGet, "/api/floorplans", "", false)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, r.Success)
	assert.NotEmpty(t, r.Error)
	assert.NotContains(t, raw, "data")
}

func TestHealthzIsOpen(t *testing.T) {
	e := newEnv(t)
	code, r, _ := e.do(http.MethodGet, "/healthz", "", false)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, r.Success)
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	e := newEnv(t)
	code, r, _ := e.do(http.MethodGet, "/nope", "", true)
	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, r.Success)
}

var floorPlanDetailCols = []string{
	"fp.id", "fp.name", "fp.width", "fp.height", "fp.created_at", "fp.updated_at",
	"vo.id", "vo.floor_plan_id", "vo.workstation_id", "vo.name", "vo.type",
	"vo.anchor_x", "vo.anchor_y", "vo.width", "vo.height", "vo.rotation", "vo.reservation_cost",
	"vo.created_at", "vo.updated_at", "ws.id", "ws.name", "ws.created_at", "ws.updated_at",
}

func TestCreateThenGetFloorPlan(t *testing.T) {
	e := newEnv(t)
	e.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO floor_plans")).
		WithArgs(sqlmock.AnyArg(), "Main Hall", 100.0, 100.0, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	code, r, _ := e.do(http.MethodPost, "/api/floorplans", `{"name":"Main Hall"}`, true)
	require.Equal(t, http.StatusCreated, code)
	assert.True(t, r.Success)
	var fp struct {
		ID      string            `json:"id"`
		Name    string            `json:"name"`
		Width   float64           `json:"width"`
		Height  float64           `json:"height"`
		Objects []json.RawMessage `json:"objects"`
	}
	require.NoError(t, json.Unmarshal(r.Data, &fp))
	assert.Len(t, fp.ID, 36)
	assert.Equal(t, 100.0, fp.Width)
	assert.Equal(t, 100.0, fp.Height)
	assert.NotNil(t, fp.Objects)
	assert.Empty(t, fp.Objects)

	ts := time.Now().UTC()
	e.mock.ExpectQuery(regexp.QuoteMeta("FROM floor_plans fp")).WithArgs(fp.ID).
		WillReturnRows(sqlmock.NewRows(floorPlanDetailCols).AddRow(
			fp.ID, "Main Hall", 100.0, 100.0, ts, ts,
			nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil))

	code, r, _ = e.do(http.MethodGet, "/api/floorplans/"+fp.ID, "", true)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(mustField(t, r.Data, "objects")))
}

func TestFloorPlanObjectsCarryDecimalStrings(t *testing.T) {
	e := newEnv(t)
	ts := time.Now().UTC()
	e.mock.ExpectQuery(regexp.QuoteMeta("FROM floor_plans fp")).WithArgs(planID).
		WillReturnRows(sqlmock.NewRows(floorPlanDetailCols).
			AddRow(planID, "Main Hall", 100.0, 100.0, ts, ts,
				"a0000000-0000-4000-8000-000000000001", planID, nil, "A table", "TABLE",
				1.0, 1.0, 1.0, 1.0, 0.0, "12.50", ts, ts, nil, nil, nil, nil).
			AddRow(planID, "Main Hall", 100.0, 100.0, ts, ts,
				"a0000000-0000-4000-8000-000000000002", planID, nil, "B booth", "BOOTH",
				2.0, 2.0, 1.0, 1.0, 0.0, nil, ts, ts, nil, nil, nil, nil))

	code, r, _ := e.do(http.MethodGet, "/api/floorplans/"+planID, "", true)
	require.Equal(t, http.StatusOK, code)
	var objs []struct {
		Name            string          `json:"name"`
		ReservationCost json.RawMessage `json:"reservationCost"`
	}
	require.NoError(t, json.Unmarshal(mustField(t, r.Data, "objects"), &objs))
	require.Len(t, objs, 2)
	assert.Equal(t, "A table", objs[0].Name)
	assert.Equal(t, `"12.5"`, string(objs[0].ReservationCost))
	assert.Equal(t, `null`, string(objs[1].ReservationCost))
}

func TestCreateMissingRequiredField(t *testing.T) {
	e := newEnv(t)
	code, r, raw := e.do(http.MethodPost, "/api/floorplans", `{"width":20}`, true)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, r.Success)
	assert.NotContains(t, raw, "data")
	require.NotEmpty(t, r.Details)
	assert.Equal(t, "name", r.Details[0].Field)
}

func TestMalformedBody(t *testing.T) {
	e := newEnv(t)
	code, r, _ := e.do(http.MethodPost, "/api/workstations", `{"name":`, true)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, r.Success)
}

func TestMalformedPathID(t *testing.T) {
	e := newEnv(t)
	code, r, _ := e.do(http.MethodGet, "/api/workstations/42", "", true)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "id", r.Details[0].Field)
}

func TestPatchUnknownIDIsNotFound(t *testing.T) {
	e := newEnv(t)
	e.mock.ExpectExec(regexp.QuoteMeta("UPDATE company_clients SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	e.mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM company_clients WHERE id = ?")).WithArgs(planID).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	code, r, _ := e.do(http.MethodPatch, "/api/company-clients/"+planID, `{"name":"Globex"}`, true)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "company client not found", r.Error)
}

func TestDuplicateVinylSlotConflicts(t *testing.T) {
	e := newEnv(t)
	e.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO vinyl_library_slots")).
		WithArgs(sqlmock.AnyArg(), 1, 4, 30, sqlmock.AnyArg()).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry '1-4'"})

	code, r, _ := e.do(http.MethodPost, "/api/vinyl-slots", `{"row":1,"column":4}`, true)
	assert.Equal(t, http.StatusConflict, code)
	assert.False(t, r.Success)
}

func TestUnknownFloorPlanReferenceIsBadRequest(t *testing.T) {
	e := newEnv(t)
	e.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO venue_objects")).
		WillReturnError(&mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"})

	body := `{"floorPlanId":"` + planID + `","name":"T1","type":"TABLE","anchorX":1,"anchorY":1}`
	code, _, _ := e.do(http.MethodPost, "/api/venue-objects", body, true)
	assert.Equal(t, http.StatusBadRequest, code)
}

var purchaseOrderCols = []string{"id", "supplier_name", "status", "total_amount", "expected_delivery_date",
	"actual_delivery_date", "notes", "created_at", "updated_at"}

func TestReceivedStatusStampsDeliveryDate(t *testing.T) {
	e := newEnv(t)
	before := time.Now().UTC().Add(-time.Second)

	e.mock.ExpectExec(regexp.QuoteMeta("UPDATE purchase_orders SET status = ?, actual_delivery_date = ?, updated_at = ? WHERE id = ?")).
		WithArgs("RECEIVED", sqlmock.AnyArg(), sqlmock.AnyArg(), orderID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	stamped := time.Now().UTC()
	e.mock.ExpectQuery(regexp.QuoteMeta("FROM purchase_orders WHERE id = ?")).WithArgs(orderID).
		WillReturnRows(sqlmock.NewRows(purchaseOrderCols).
			AddRow(orderID, "Acme", "RECEIVED", "42.00", nil, stamped, nil, before, stamped))
	e.mock.ExpectQuery(regexp.QuoteMeta("FROM purchase_order_items")).WithArgs(orderID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "purchase_order_id", "description", "quantity", "unit_cost"}).
			AddRow("c0000000-0000-4000-8000-000000000001", orderID, "cups", 10, "4.20"))

	code, r, _ := e.do(http.MethodPatch, "/api/purchase-orders/"+orderID+"/status", `{"status":"RECEIVED"}`, true)
	after := time.Now().UTC().Add(time.Second)
	require.Equal(t, http.StatusOK, code)

	var po struct {
		Status             string     `json:"status"`
		TotalAmount        string     `json:"totalAmount"`
		ActualDeliveryDate *time.Time `json:"actualDeliveryDate"`
	}
	require.NoError(t, json.Unmarshal(r.Data, &po))
	assert.Equal(t, "RECEIVED", po.Status)
	assert.Equal(t, "42", po.TotalAmount)
	require.NotNil(t, po.ActualDeliveryDate)
	assert.True(t, po.ActualDeliveryDate.After(before) && po.ActualDeliveryDate.Before(after))

	require.Len(t, e.events.events, 1)
	assert.Equal(t, orderID, e.events.events[0].PurchaseOrderID)
	assert.Equal(t, "42.00", e.events.events[0].TotalAmount)
	assert.Equal(t, "Ann", e.events.events[0].ReceivedBy)
}

func TestInvalidStatusRejected(t *testing.T) {
	e := newEnv(t)
	code, r, _ := e.do(http.MethodPatch, "/api/purchase-orders/"+orderID+"/status", `{"status":"LOST"}`, true)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "status", r.Details[0].Field)
	assert.Empty(t, e.events.events)
}

func TestDeleteAnswersWithID(t *testing.T) {
	e := newEnv(t)
	e.mock.ExpectExec(regexp.QuoteMeta("DELETE FROM storage_locations WHERE id = ?")).WithArgs(planID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	code, r, _ := e.do(http.MethodDelete, "/api/storage-locations/"+planID, "", true)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"id":"`+planID+`","deleted":true}`, string(r.Data))
}

func TestListReturnsEmptyArray(t *testing.T) {
	e := newEnv(t)
	e.mock.ExpectQuery(regexp.QuoteMeta("FROM dj_set_tracks WHERE session_id = ? ORDER BY played_at, id")).WithArgs(planID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "session_id", "vinyl_record_id", "played_at"}))

	code, r, _ := e.do(http.MethodGet, "/api/dj-set-tracks?sessionId="+planID, "", true)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(r.Data))
}

func TestLoginIssuesSessionCookie(t *testing.T) {
	e := newEnv(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	ts := time.Now().UTC()
	e.mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=?")).WithArgs("ann@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "password_hash", "role", "is_active", "created_at", "updated_at"}).
			AddRow("u1", "ann@example.com", "Ann", string(hash), "MANAGER", true, ts, ts))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"Ann@example.com","password":"correct horse"}`))
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, session.CookieName, cookies[0].Name)

	me := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	me.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	e.srv.ServeHTTP(rec, me)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Ann"`)
}

func TestLoginWrongPassword(t *testing.T) {
	e := newEnv(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	ts := time.Now().UTC()
	e.mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=?")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "password_hash", "role", "is_active", "created_at", "updated_at"}).
			AddRow("u1", "ann@example.com", "Ann", string(hash), "MANAGER", true, ts, ts))

	code, r, _ := e.do(http.MethodPost, "/api/auth/login", `{"email":"ann@example.com","password":"battery staple"}`, false)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "invalid credentials", r.Error)
}

func TestRateLimitedRequestUsesEnvelope(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	srv := New(Deps{
		DB:       db,
		Sessions: session.NewCookieService(secret, time.Hour),
		Redis:    rdb,
		RateLimit: config.RateLimitConfig{Enabled: true, Capacity: 1, RefillTokens: 1,
			RefillInterval: time.Minute, TTL: time.Hour, KeyStrategy: "ip", Prefix: "rl"},
	})

	srv.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/floorplans", nil))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/floorplans", nil))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"success":false,"error":"rate limit exceeded"}`, rec.Body.String())
}

func mustField(t *testing.T, data json.RawMessage, name string) json.RawMessage {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &m))
	v, ok := m[name]
	require.True(t, ok, "missing field %q", name)
	return v
}
