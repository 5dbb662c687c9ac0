package cluster

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	consul "github.com/hashicorp/consul/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHealthAggregator(t *testing.T) {
	agg := NewHealthAggregator()
	agg.AddCheck("hub", func() error { return nil })

	rec := httptest.NewRecorder()
	agg.Handler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())

	agg.AddCheck("nats", func() error { return errors.New("disconnected") })
	rec = httptest.NewRecorder()
	agg.Handler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"nats":"disconnected"}`, rec.Body.String())
}

func TestBasicHealthHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	NewBasicHealthHandler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alive")
}

// fakeAgent answers the handful of Consul agent endpoints the package uses.
type fakeAgent struct {
	mu           sync.Mutex
	registered   *consul.AgentServiceRegistration
	deregistered []string
}

func (f *fakeAgent) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.URL.Path == "/v1/status/leader":
		_, _ = io.WriteString(w, `"127.0.0.1:8300"`)
	case r.URL.Path == "/v1/agent/service/register":
		var reg consul.AgentServiceRegistration
		if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.registered = &reg
	case strings.HasPrefix(r.URL.Path, "/v1/agent/service/deregister/"):
		f.deregistered = append(f.deregistered, strings.TrimPrefix(r.URL.Path, "/v1/agent/service/deregister/"))
	default:
		http.NotFound(w, r)
	}
}

func TestRegisterAndDeregister(t *testing.T) {
	agent := &fakeAgent{}
	srv := httptest.NewServer(agent)
	defer srv.Close()

	addr := strings.TrimPrefix(srv.URL, "http://")
	client, err := NewConsulClient(" , "+addr, zap.NewNop())
	require.NoError(t, err)

	deregister, err := Register(client, Registration{ServiceName: "liarbar", Host: "bar-1", Port: 3000}, zap.NewNop())
	require.NoError(t, err)

	agent.mu.Lock()
	require.NotNil(t, agent.registered)
	assert.Equal(t, "liarbar-bar-1-3000", agent.registered.ID)
	assert.Equal(t, "liarbar", agent.registered.Name)
	assert.Equal(t, 3000, agent.registered.Port)
	require.NotNil(t, agent.registered.Check)
	assert.Equal(t, "http://bar-1:3000/health", agent.registered.Check.HTTP)
	agent.mu.Unlock()

	require.NoError(t, deregister())
	agent.mu.Lock()
	assert.Equal(t, []string{"liarbar-bar-1-3000"}, agent.deregistered)
	agent.mu.Unlock()
}

func TestNewConsulClientNoAgent(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := strings.TrimPrefix(srv.URL, "http://")
	srv.Close()

	_, err := NewConsulClient(addr, zap.NewNop())
	assert.Error(t, err)
}
