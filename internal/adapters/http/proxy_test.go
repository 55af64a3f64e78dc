package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/melih/beacon-paas/internal/core/domain"
)

func newProxyApp(svc *stubContainerService) *fiber.App {
	app := fiber.New()
	app.Use(NewProxyHandler(svc).ProxyRequest)
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("control plane") })
	return app
}

func TestProxyUnknownSubdomain(t *testing.T) {
	app := newProxyApp(&stubContainerService{})

	req := httptest.NewRequest(http.MethodGet, "http://ghost.localhost/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProxySkipsStoppedContainers(t *testing.T) {
	svc := &stubContainerService{containers: []domain.Container{
		{ID: "abc", Name: "myapp", State: "exited", IPAddress: "172.17.0.2", Port: 8080},
	}}
	app := newProxyApp(svc)

	req := httptest.NewRequest(http.MethodGet, "http://myapp.localhost/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProxyPassesThroughBareHost(t *testing.T) {
	app := newProxyApp(&stubContainerService{})

	req := httptest.NewRequest(http.MethodGet, "http://localhost/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "control plane", string(body))
}

func TestProxyRoutesToRunningContainer(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello from app"))
	}))
	defer backend.Close()

	u, err := url.Parse(backend.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	svc := &stubContainerService{containers: []domain.Container{
		{ID: "abc", Name: "myapp", State: "running", IPAddress: u.Hostname(), Port: port},
	}}
	app := newProxyApp(svc)

	req := httptest.NewRequest(http.MethodGet, "http://myapp.localhost/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "hello from app", string(body))
}

func TestProxyRejectsContainerWithoutPort(t *testing.T) {
	svc := &stubContainerService{containers: []domain.Container{
		{ID: "abc", Name: "myapp", State: "running", IPAddress: "172.17.0.2"},
	}}
	app := newProxyApp(svc)

	req := httptest.NewRequest(http.MethodGet, "http://myapp.localhost/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
}
