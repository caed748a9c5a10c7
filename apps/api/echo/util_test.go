package echoapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/trezcool/campusdesk/core"
	"github.com/trezcool/campusdesk/core/resource"
	"github.com/trezcool/campusdesk/core/session"
	"github.com/trezcool/campusdesk/services/upstream"
	"github.com/trezcool/campusdesk/storage/database/sqlx"
	"github.com/trezcool/campusdesk/storage/memstore"
	"github.com/trezcool/campusdesk/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

const upstreamNotes = `[
	{"_id":"n1","title":"Thermodynamics","owner":{"_id":"u1","name":"Ravi"},"branch":{"_id":"b1","name":"Mechanical"},
	 "semester":3,"views":120,"isApproved":true,"createdAt":"2024-03-09T10:00:00Z"},
	{"_id":"n2","title":"Fluid Mechanics","owner":{"_id":"u2","name":"Asha"},"branch":{"_id":"b1","name":"Mechanical"},
	 "semester":4,"views":40,"isApproved":false,"createdAt":"2024-02-20T10:00:00Z"},
	{"_id":"n3","title":"Data Structures","owner":null,"branch":{"_id":"b2","name":"CSE"},
	 "semester":3,"views":null,"isApproved":true,"createdAt":"2023-12-31T23:00:00Z"}
]`

const upstreamBranches = `[
	{"_id":"b1","name":"Mechanical","code":"ME","college":{"_id":"c1","name":"IIT Bombay"},"createdAt":"2024-01-05T10:00:00Z"},
	{"_id":"b2","name":"Computer Science","code":"CSE","college":{"_id":"c1","name":"IIT Bombay"},"createdAt":"2024-01-06T10:00:00Z"}
]`

// fakeUpstream plays the campus platform API.
type fakeUpstream struct {
	mu       sync.Mutex
	revoked  bool
	down     bool
	requests []string
	bodies   []string
}

func (f *fakeUpstream) revoke() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked = true
}

// takeDown makes every later request fail at the transport level.
func (f *fakeUpstream) takeDown() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down = true
}

func (f *fakeUpstream) lastBody() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.bodies) == 0 {
		return ""
	}
	return f.bodies[len(f.bodies)-1]
}

func (f *fakeUpstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	route := r.Method + " " + r.URL.Path

	f.mu.Lock()
	f.requests = append(f.requests, route)
	f.bodies = append(f.bodies, string(body))
	revoked, down := f.revoked, f.down
	f.mu.Unlock()

	if down {
		conn, _, err := w.(http.Hijacker).Hijack()
		if err == nil {
			_ = conn.Close()
		}
		return
	}

	reply := func(code int, data string) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_, _ = io.WriteString(w, data)
	}

	if route == "POST /admin/login" {
		var creds struct{ Email, Password string }
		_ = json.Unmarshal(body, &creds)
		if creds.Password != "secret" {
			reply(http.StatusUnauthorized, `{"message":"Invalid credentials"}`)
			return
		}
		reply(http.StatusOK, `{"token":"up-token","admin":{"_id":"a1","name":"Ada","email":"`+creds.Email+`"}}`)
		return
	}
	if revoked || r.Header.Get("Authorization") != "Bearer up-token" {
		reply(http.StatusUnauthorized, `{"message":"jwt expired"}`)
		return
	}

	switch route {
	case "GET /notes":
		reply(http.StatusOK, upstreamNotes)
	case "GET /payments":
		reply(http.StatusOK, `[]`)
	case "GET /transactions":
		reply(http.StatusInternalServerError, `{"message":"mongo connection lost"}`)
	case "GET /branches/c1":
		reply(http.StatusOK, upstreamBranches)
	case "POST /branches":
		reply(http.StatusCreated, `{"_id":"b9","name":"Civil"}`)
	case "PUT /notes/n1":
		reply(http.StatusOK, `{"_id":"n1","isApproved":true}`)
	case "DELETE /notes/n1":
		w.WriteHeader(http.StatusNoContent)
	default:
		reply(http.StatusNotFound, `{"message":"Not found"}`)
	}
}

func testConfig() *core.Config {
	return &core.Config{
		AppName:   "CampusDesk",
		Env:       "TEST",
		TestMode:  true,
		SecretKey: "test-secret",
		Server: core.ServerConfig{
			DisableReqLogs:            true,
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 24 * time.Hour,
		},
		Listing: core.ListingConfig{
			DefaultPageSize: 10,
			MaxPageSize:     50,
			MaxVisiblePages: 5,
			SnapshotTTL:     time.Minute,
			SessionTTL:      24 * time.Hour,
		},
	}
}

func setup(t *testing.T) (*Server, *fakeUpstream) {
	up := new(fakeUpstream)
	srv := httptest.NewServer(up)
	t.Cleanup(srv.Close)

	conf := testConfig()
	logger := testutil.NewLogger()
	client := upstream.NewClientWithHTTP(srv.URL, "/admin/login", srv.Client())
	sessionSvc := session.NewService(sqlxrepos.NewSessionRepository(testutil.OpenDB(t)), client, conf, logger)
	resourceSvc := resource.NewService(conf.Listing, client, memstore.NewSnapshotStore(), logger)
	validate, translator := core.NewValidator()

	app := NewServer(conf, logger, validate, translator, sessionSvc, resourceSvc)
	t.Cleanup(func() { _ = app.Close() })
	return app, up
}

func mockNow(t *testing.T, now time.Time) {
	orig := nowFunc
	nowFunc = func() time.Time { return now }
	t.Cleanup(func() { nowFunc = orig })
}

func login(t *testing.T, app http.Handler) string {
	req, rec := newRequest(http.MethodPost, "/v1/auth/login", []byte(`{"email":"ada@campus.edu","password":"secret"}`))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Token
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		if rec.Body.Len() > 0 {
			t.Errorf("failed! data = %v; want no data", rec.Body.String())
		}
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
