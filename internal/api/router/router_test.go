package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/karthikvn/clinicq/internal/appointments"
	"github.com/karthikvn/clinicq/internal/directory"
	"github.com/karthikvn/clinicq/internal/http/handlers"
	httpmiddleware "github.com/karthikvn/clinicq/internal/http/middleware"
	"github.com/karthikvn/clinicq/internal/notify"
	"github.com/karthikvn/clinicq/internal/queue"
	"github.com/karthikvn/clinicq/internal/scheduling"
)

func testRouter(t *testing.T, adminSecret string) http.Handler {
	t.Helper()
	repo := directory.NewInMemoryRepository()
	store := appointments.NewInMemoryStore()
	engine := queue.NewEngine(store)
	dispatcher := notify.NewDispatcher(notify.NewInMemoryStore(), nil, nil, nil, nil)
	svc := scheduling.NewService(
		repo, store,
		queue.NewSelector(repo, engine),
		queue.NewTokenAllocator(store),
		engine,
		nil, dispatcher, nil, nil,
	)
	crowd := queue.NewCrowdService(queue.NewCrowdAggregator(store, repo), nil, time.Minute, nil)
	reg := prometheus.NewRegistry()

	return New(&Config{
		Booking:        handlers.NewBookingHandler(svc, nil),
		Availability:   handlers.NewAvailabilityHandler(svc, nil),
		Crowd:          handlers.NewCrowdHandler(crowd, nil),
		Notifications:  handlers.NewNotificationsHandler(notify.NewInMemoryStore(), nil),
		Hospitals:      handlers.NewHospitalsHandler(directory.NewInMemoryHospitalRepository(), nil),
		AdminDashboard: handlers.NewAdminDashboardHandler(store, repo, crowd, reg, nil),
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		AdminAuthSecret: adminSecret,
	})
}

func get(r http.Handler, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRouterPublicEndpoints(t *testing.T) {
	r := testRouter(t, "secret")

	if rec := get(r, "/health", nil); rec.Code != http.StatusOK {
		t.Errorf("/health = %d, want 200", rec.Code)
	}
	if rec := get(r, "/api/crowd", nil); rec.Code != http.StatusOK {
		t.Errorf("/api/crowd = %d, want 200", rec.Code)
	}
	if rec := get(r, "/api/hospitals/states", nil); rec.Code != http.StatusOK {
		t.Errorf("/api/hospitals/states = %d, want 200", rec.Code)
	}
	if rec := get(r, "/metrics", nil); rec.Code != http.StatusOK {
		t.Errorf("/metrics = %d, want 200", rec.Code)
	}
}

func TestRouterAdminRequiresJWT(t *testing.T) {
	r := testRouter(t, "secret")

	if rec := get(r, "/admin/dashboard", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated /admin/dashboard = %d, want 401", rec.Code)
	}

	claims := httpmiddleware.StaffClaims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "adm-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	h := http.Header{}
	h.Set("Authorization", "Bearer "+token)
	if rec := get(r, "/admin/dashboard", h); rec.Code != http.StatusOK {
		t.Fatalf("authenticated /admin/dashboard = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	r := testRouter(t, "")
	if rec := get(r, "/nope", nil); rec.Code != http.StatusNotFound {
		t.Errorf("/nope = %d, want 404", rec.Code)
	}
}
