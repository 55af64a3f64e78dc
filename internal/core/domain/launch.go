package domain

import (
	"errors"
	"fmt"
	"strconv"
)

// AllInterfaces is the bind address the launched server defaults to.
const AllInterfaces = "0.0.0.0"

var (
	ErrNoImage   = errors.New("image is required")
	ErrPortUnset = errors.New("port is required and has no default")
	ErrPortRange = errors.New("port out of range")
)

// LaunchSpec is the startup contract for a container: which image to run and
// the listener configuration its server process binds to. The platform always
// supplies the port explicitly; an unset port fails validation rather than
// falling back to an arbitrary value.
type LaunchSpec struct {
	Image       string            `json:"image"`
	Name        string            `json:"name,omitempty"`
	Port        int               `json:"port"`
	HostPort    int               `json:"host_port,omitempty"` // 0 means same as Port
	BindAddress string            `json:"bind_address,omitempty"`
	Env         map[string]string `json:"env,omitempty"`
}

// Validate checks the spec eagerly, before any daemon call is made.
func (s *LaunchSpec) Validate() error {
	if s.Image == "" {
		return ErrNoImage
	}
	if s.Port == 0 {
		return ErrPortUnset
	}
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrPortRange, s.Port)
	}
	if s.HostPort < 0 || s.HostPort > 65535 {
		return fmt.Errorf("%w: host port %d", ErrPortRange, s.HostPort)
	}
	if s.BindAddress == "" {
		s.BindAddress = AllInterfaces
	}
	if s.HostPort == 0 {
		s.HostPort = s.Port
	}
	return nil
}

// Environment renders the env for the container, PORT always included.
// Listener configuration travels as explicit variables, never as a
// shell-interpolated command string.
func (s *LaunchSpec) Environment() []string {
	env := make([]string, 0, len(s.Env)+1)
	env = append(env, "PORT="+strconv.Itoa(s.Port))
	for k, v := range s.Env {
		if k == "PORT" {
			continue
		}
		env = append(env, k+"="+v)
	}
	return env
}
