package domain

// Container represents a container in the system (Docker, K8s, etc.)
type Container struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Image     string `json:"image"`
	Status    string `json:"status"`
	State     string `json:"state"` // running, exited, etc.
	IPAddress string `json:"ip_address,omitempty"`
	Port      int    `json:"port,omitempty"`      // port the app listens on inside the container
	HostPort  int    `json:"host_port,omitempty"` // host side of the binding, 0 when not published
}

// ExitStatus is the terminal observation of a running container:
// zero means clean shutdown, anything else means startup failure or crash.
type ExitStatus struct {
	Code  int    `json:"code"`
	Error string `json:"error,omitempty"`
}

func (e ExitStatus) Clean() bool {
	return e.Code == 0 && e.Error == ""
}
