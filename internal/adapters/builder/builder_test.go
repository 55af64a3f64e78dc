package builder

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/melih/beacon-paas/internal/core/domain"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func normalizedRequest(t *testing.T, dir string) domain.BuildRequest {
	t.Helper()
	req := domain.BuildRequest{ContextDir: dir, ImageTag: "app:latest"}
	require.NoError(t, req.Normalize())
	return req
}

func TestPrepareContextRejectsMissingManifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "app.py", "print('hi')\n")

	err := PrepareContext(dir, normalizedRequest(t, dir))
	require.ErrorIs(t, err, ErrManifestMissing)
}

func TestPrepareContextRejectsMissingEntryPoint(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "requirements.txt", "flask==3.0.0\n")

	err := PrepareContext(dir, normalizedRequest(t, dir))
	require.ErrorIs(t, err, domain.ErrNoEntryPoint)
}

func TestPrepareContextInjectsDockerfile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "requirements.txt", "flask==3.0.0\n")
	writeFile(t, dir, "app.py", "print('hi')\n")

	require.NoError(t, PrepareContext(dir, normalizedRequest(t, dir)))

	out, err := os.ReadFile(filepath.Join(dir, "Dockerfile"))
	require.NoError(t, err)
	text := string(out)
	require.Contains(t, text, "COPY requirements.txt .")
	require.Less(t,
		strings.Index(text, "COPY requirements.txt ."),
		strings.Index(text, "COPY . ."),
		"manifest copy must precede the source copy")
}

func TestPrepareContextPicksStreamlitCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "requirements.txt", "streamlit>=1.30\npandas\n")
	writeFile(t, dir, "app.py", "import streamlit\n")

	require.NoError(t, PrepareContext(dir, normalizedRequest(t, dir)))

	out, err := os.ReadFile(filepath.Join(dir, "Dockerfile"))
	require.NoError(t, err)
	require.Contains(t, string(out), "streamlit run app.py --server.port=$PORT")
}

func TestPrepareContextKeepsExistingDockerfile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "requirements.txt", "flask==3.0.0\n")
	writeFile(t, dir, "app.py", "print('hi')\n")
	writeFile(t, dir, "Dockerfile", "FROM scratch\n")

	require.NoError(t, PrepareContext(dir, normalizedRequest(t, dir)))

	out, err := os.ReadFile(filepath.Join(dir, "Dockerfile"))
	require.NoError(t, err)
	require.Equal(t, "FROM scratch\n", string(out))
}

func TestManifestDeclares(t *testing.T) {
	manifest := []byte("# web stack\nstreamlit==1.31.0\npandas>=2.0\nGoogle-Cloud-BigQuery\n")
	require.True(t, manifestDeclares(manifest, "streamlit"))
	require.True(t, manifestDeclares(manifest, "pandas"))
	require.True(t, manifestDeclares(manifest, "google-cloud-bigquery"))
	require.False(t, manifestDeclares(manifest, "flask"))
	require.False(t, manifestDeclares(manifest, "pan"))
}

func TestDrainBuildStreamCollectsSteps(t *testing.T) {
	body := strings.NewReader(
		`{"stream":"Step 1/5 : FROM python:3.11-slim\n"}` + "\n" +
			`{"stream":" ---> Using cache\n"}` + "\n" +
			`{"stream":"Successfully built abc123\n"}` + "\n")

	steps, err := drainBuildStream(body)
	require.NoError(t, err)
	require.Len(t, steps, 3)
	require.Contains(t, steps[1], "Using cache")
}

func TestDrainBuildStreamSurfacesInstallerError(t *testing.T) {
	body := strings.NewReader(
		`{"stream":"Step 3/5 : RUN pip install --no-cache-dir -r requirements.txt\n"}` + "\n" +
			`{"errorDetail":{"code":1,"message":"Could not find a version that satisfies the requirement nosuchpkg"},"error":"Could not find a version that satisfies the requirement nosuchpkg"}` + "\n")

	_, err := drainBuildStream(body)
	require.Error(t, err)
	require.Contains(t, err.Error(), "nosuchpkg")
}
