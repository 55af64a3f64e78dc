package dockerfile

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/melih/beacon-paas/internal/core/domain"
)

// pythonTemplate is the build recipe for a Python web app. The manifest is
// copied and installed before the rest of the tree so that source edits do
// not invalidate the dependency layer. The server is launched through the
// entry point with its listener told where to bind via PORT; the bind address
// is all interfaces, as the container is only reachable through its published
// port anyway.
const pythonTemplate = `FROM {{.BaseImage}}

WORKDIR {{.WorkDir}}

COPY {{.Manifest}} .
RUN pip install --no-cache-dir -r {{.Manifest}}

COPY . .
{{if .Port}}
EXPOSE {{.Port}}
{{end}}
CMD ["python", "{{.EntryPoint}}"]
`

// streamlitTemplate covers entry points served by streamlit, which takes the
// listener configuration as flags rather than reading PORT itself.
const streamlitTemplate = `FROM {{.BaseImage}}

WORKDIR {{.WorkDir}}

COPY {{.Manifest}} .
RUN pip install --no-cache-dir -r {{.Manifest}}

COPY . .
{{if .Port}}
EXPOSE {{.Port}}
{{end}}
CMD streamlit run {{.EntryPoint}} --server.port=$PORT --server.address={{.BindAddress}}
`

var (
	pythonTmpl    = template.Must(template.New("python").Parse(pythonTemplate))
	streamlitTmpl = template.Must(template.New("streamlit").Parse(streamlitTemplate))
)

type params struct {
	BaseImage   string
	WorkDir     string
	Manifest    string
	EntryPoint  string
	Port        int
	BindAddress string
}

// Render produces the Dockerfile for a normalized build request.
func Render(req domain.BuildRequest, streamlit bool) ([]byte, error) {
	p := params{
		BaseImage:   req.BaseImage,
		WorkDir:     domain.DefaultWorkDir,
		Manifest:    req.Manifest,
		EntryPoint:  req.EntryPoint,
		Port:        req.Port,
		BindAddress: domain.AllInterfaces,
	}
	tmpl := pythonTmpl
	if streamlit {
		tmpl = streamlitTmpl
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, p); err != nil {
		return nil, fmt.Errorf("failed to render dockerfile: %w", err)
	}
	return buf.Bytes(), nil
}
