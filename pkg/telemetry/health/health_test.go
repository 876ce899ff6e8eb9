package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mercator-hq/rulescript/pkg/policy/scope"
)

type fakeStatus struct {
	lastLoad time.Time
	failures map[scope.Descriptor]error
}

func (f *fakeStatus) LastLoad() time.Time                  { return f.lastLoad }
func (f *fakeStatus) Failures() map[scope.Descriptor]error { return f.failures }

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		timeout time.Duration
		want    time.Duration
	}{
		{"default timeout", 0, DefaultCheckTimeout},
		{"custom timeout", 10 * time.Second, 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(tt.timeout)
			if checker.checkTimeout != tt.want {
				t.Errorf("checkTimeout = %v, want %v", checker.checkTimeout, tt.want)
			}
			if len(checker.Checks()) != 0 {
				t.Errorf("Checks() = %v, want none", checker.Checks())
			}
		})
	}
}

func TestRegisterCheck(t *testing.T) {
	checker := New(time.Second)
	checker.RegisterCheck("scripts", func(context.Context) error { return nil })
	checker.RegisterCheck("load", func(context.Context) error { return nil })

	got := checker.Checks()
	if len(got) != 2 || got[0] != "load" || got[1] != "scripts" {
		t.Errorf("Checks() = %v, want [load scripts]", got)
	}

	checker.UnregisterCheck("load")
	if got := checker.Checks(); len(got) != 1 {
		t.Errorf("Checks() after unregister = %v, want [scripts]", got)
	}
}

func TestCheckReadiness(t *testing.T) {
	tests := []struct {
		name   string
		checks map[string]CheckFunc
		want   string
	}{
		{"no checks", nil, StatusReady},
		{
			name: "all healthy",
			checks: map[string]CheckFunc{
				"a": func(context.Context) error { return nil },
				"b": func(context.Context) error { return nil },
			},
			want: StatusReady,
		},
		{
			name: "one unhealthy",
			checks: map[string]CheckFunc{
				"a": func(context.Context) error { return nil },
				"b": func(context.Context) error { return errors.New("broken") },
			},
			want: StatusDegraded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(time.Second)
			for name, check := range tt.checks {
				checker.RegisterCheck(name, check)
			}

			status := checker.CheckReadiness(context.Background())
			if status.Status != tt.want {
				t.Errorf("Status = %q, want %q", status.Status, tt.want)
			}
			if len(status.Checks) != len(tt.checks) {
				t.Errorf("len(Checks) = %d, want %d", len(status.Checks), len(tt.checks))
			}
		})
	}
}

func TestCheckReadiness_Timeout(t *testing.T) {
	checker := New(20 * time.Millisecond)
	checker.RegisterCheck("slow", func(ctx context.Context) error {
		<-ctx.Done()
		time.Sleep(50 * time.Millisecond)
		return nil
	})

	status := checker.CheckReadiness(context.Background())
	result := status.Checks["slow"]
	if result.Status != StatusUnhealthy {
		t.Errorf("slow Status = %q, want %q", result.Status, StatusUnhealthy)
	}
	if result.Message != ErrCheckTimeout.Error() {
		t.Errorf("slow Message = %q, want %q", result.Message, ErrCheckTimeout.Error())
	}
}

func TestLoadCheck(t *testing.T) {
	src := &fakeStatus{}
	check := LoadCheck(src)

	if err := check(context.Background()); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("check() before load = %v, want ErrNotLoaded", err)
	}

	src.lastLoad = time.Now()
	if err := check(context.Background()); err != nil {
		t.Errorf("check() after load = %v, want nil", err)
	}
}

func TestScriptsCheck(t *testing.T) {
	src := &fakeStatus{failures: map[scope.Descriptor]error{}}
	check := ScriptsCheck(src)

	if err := check(context.Background()); err != nil {
		t.Errorf("check() with no failures = %v, want nil", err)
	}

	src.failures[scope.New(scope.User, "bob")] = errors.New("bad")
	src.failures[scope.New(scope.Org, "acme")] = errors.New("bad")

	err := check(context.Background())
	if err == nil {
		t.Fatal("check() with failures = nil, want error")
	}
	want := "2 script(s) failing: ORG:acme, USER:bob"
	if err.Error() != want {
		t.Errorf("check() = %q, want %q", err.Error(), want)
	}
}

func TestLivenessHandler(t *testing.T) {
	handler := New(time.Second).LivenessHandler()

	tests := []struct {
		method   string
		wantCode int
		wantBody bool
	}{
		{http.MethodGet, http.StatusOK, true},
		{http.MethodHead, http.StatusOK, false},
		{http.MethodPost, http.StatusMethodNotAllowed, false},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler(rec, httptest.NewRequest(tt.method, LivenessPath, nil))

			if rec.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", rec.Code, tt.wantCode)
			}
			if !tt.wantBody {
				return
			}
			var status HealthStatus
			if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
				t.Fatalf("Unmarshal() failed: %v", err)
			}
			if status.Status != StatusOK {
				t.Errorf("Status = %q, want %q", status.Status, StatusOK)
			}
		})
	}
}

func TestReadinessHandler(t *testing.T) {
	src := &fakeStatus{failures: map[scope.Descriptor]error{}}
	checker := New(time.Second)
	checker.RegisterCheck("load", LoadCheck(src))
	checker.RegisterCheck("scripts", ScriptsCheck(src))
	handler := checker.ReadinessHandler()

	get := func() (int, HealthStatus) {
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, ReadinessPath, nil))
		var status HealthStatus
		if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
			t.Fatalf("Unmarshal() failed: %v", err)
		}
		return rec.Code, status
	}

	code, status := get()
	if code != http.StatusServiceUnavailable {
		t.Errorf("code before load = %d, want 503", code)
	}
	if status.Checks["load"].Message != ErrNotLoaded.Error() {
		t.Errorf("load Message = %q, want %q", status.Checks["load"].Message, ErrNotLoaded.Error())
	}

	src.lastLoad = time.Now()
	if code, status = get(); code != http.StatusOK || status.Status != StatusReady {
		t.Errorf("after load = %d %q, want 200 ready", code, status.Status)
	}

	src.failures[scope.New(scope.Branch, "north")] = errors.New("bad")
	code, status = get()
	if code != http.StatusServiceUnavailable {
		t.Errorf("code with failing script = %d, want 503", code)
	}
	if !strings.Contains(status.Checks["scripts"].Message, "BRANCH:north") {
		t.Errorf("scripts Message = %q, want BRANCH:north", status.Checks["scripts"].Message)
	}
}

func TestRegister(t *testing.T) {
	mux := http.NewServeMux()
	New(time.Second).Register(mux, "1.2.3", "abc123", "2026-01-01")

	for _, path := range []string{LivenessPath, ReadinessPath, VersionPath} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, VersionPath, nil))
	var info VersionInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("Unmarshal() failed: %v", err)
	}
	if info.Version != "1.2.3" || info.Commit != "abc123" || info.GoVersion == "" {
		t.Errorf("VersionInfo = %+v", info)
	}
}
