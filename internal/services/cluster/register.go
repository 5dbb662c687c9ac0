package cluster

import (
	"fmt"
	"os"

	consul "github.com/hashicorp/consul/api"
	"go.uber.org/zap"
)

type Registration struct {
	ServiceName string
	// Host is the name Consul uses to reach the health endpoint. Defaults
	// to $HOSTNAME, then os.Hostname.
	Host string
	Port int
}

func (r Registration) host() string {
	if r.Host != "" {
		return r.Host
	}
	if h := os.Getenv("HOSTNAME"); h != "" {
		return h
	}
	h, _ := os.Hostname()
	return h
}

// Register announces the service to the local Consul agent with an HTTP
// check against /health. The returned func removes the registration.
func Register(client *consul.Client, reg Registration, log *zap.Logger) (func() error, error) {
	host := reg.host()
	serviceID := fmt.Sprintf("%s-%s-%d", reg.ServiceName, host, reg.Port)

	registration := &consul.AgentServiceRegistration{
		ID:   serviceID,
		Name: reg.ServiceName,
		Port: reg.Port,
		Tags: []string{"websocket", "http"},
		Check: &consul.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s:%d/health", host, reg.Port),
			Timeout:                        "5s",
			Interval:                       "10s",
			DeregisterCriticalServiceAfter: "1m",
		},
	}

	if err := client.Agent().ServiceRegister(registration); err != nil {
		return nil, fmt.Errorf("register %s in consul: %w", serviceID, err)
	}
	log.Info("registered in consul", zap.String("serviceId", serviceID))

	return func() error {
		if err := client.Agent().ServiceDeregister(serviceID); err != nil {
			return fmt.Errorf("deregister %s: %w", serviceID, err)
		}
		log.Info("deregistered from consul", zap.String("serviceId", serviceID))
		return nil
	}, nil
}
