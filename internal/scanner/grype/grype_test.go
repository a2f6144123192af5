package grype

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vulnreport/internal/model"
)

func loadFixture(t *testing.T) any {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "grype_output.json"))
	require.NoError(t, err)
	var raw any
	require.NoError(t, json.Unmarshal(data, &raw))
	return raw
}

func TestAdapter_ParseReport(t *testing.T) {
	got, err := New().ParseReport(loadFixture(t))
	require.NoError(t, err)

	want := []model.Vulnerability{
		{
			ID:               "CVE-2022-37434",
			PackageName:      "zlib",
			InstalledVersion: "1.2.12-r1",
			FixedVersion:     "1.2.12-r2",
			Severity:         model.SeverityCritical,
			Title:            "zlib through 1.2.12 has a heap-based buffer over-read.",
			Description:      "zlib through 1.2.12 has a heap-based buffer over-read.\nIt affects inflateGetHeader.",
			References:       []string{"https://www.openwall.com/lists/oss-security/2022/08/05/2"},
		},
		{
			ID:               "GHSA-xxxx-yyyy-zzzz",
			PackageName:      "busybox",
			InstalledVersion: "1.35.0-r17",
			Severity:         model.Severity("NEGLIGIBLE"),
			Title:            "GHSA-xxxx-yyyy-zzzz",
			References:       []string{"https://github.com/advisories/GHSA-xxxx-yyyy-zzzz"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseReport mismatch (-want +got):\n%s", diff)
	}
}

func TestAdapter_Detect(t *testing.T) {
	a := New()
	assert.True(t, a.Detect(loadFixture(t)))
	assert.True(t, a.Detect(map[string]any{"matches": []any{}, "descriptor": map[string]any{}}))
	assert.False(t, a.Detect(map[string]any{"matches": []any{}}))
	assert.False(t, a.Detect(map[string]any{"descriptor": map[string]any{}}))
	assert.False(t, a.Detect(map[string]any{"SchemaVersion": 2.0, "Results": []any{}}))
	assert.False(t, a.Detect("matches"))
}

func TestTitle_Truncates(t *testing.T) {
	long := strings.Repeat("a", 200)
	got := title(Vulnerability{ID: "X", Description: long})
	assert.Len(t, got, maxTitleLen)
	assert.True(t, strings.HasSuffix(got, "..."))
}
