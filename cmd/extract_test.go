// cmd/extract_test.go
package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/xkilldash9x/axtract/api/schemas"
	"github.com/xkilldash9x/axtract/internal/config"
)

func writeTempHTML(t *testing.T, name, markup string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(markup), 0o644))
	return path
}

func TestRunExtraction(t *testing.T) {
	// Verifies the worker pool winds down cleanly.
	defer goleak.VerifyNone(t)

	pageA := writeTempHTML(t, "a.html",
		`<html><body><a href="/home">Home</a></body></html>`)
	pageB := writeTempHTML(t, "b.html",
		`<html><body><button>Save</button><img alt="Logo"></body></html>`)

	cfg := config.NewDefaultConfig()
	cfg.Run = config.RunConfig{
		Inputs:      []string{pageA, pageB},
		Concurrency: 2,
	}

	results, err := runExtraction(cfg, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Results keep input order regardless of completion order.
	assert.Equal(t, pageA, results[0].Source)
	assert.Equal(t, pageB, results[1].Source)
	assert.Equal(t, len(results[0].Elements), results[0].Count)
	assert.NotZero(t, results[1].Count)
}

func TestRunExtraction_MissingFile(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Run = config.RunConfig{
		Inputs:      []string{"does-not-exist.html"},
		Concurrency: 1,
	}

	_, err := runExtraction(cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestWriteResults(t *testing.T) {
	results := []schemas.Result{{
		Source: "a.html",
		Count:  1,
		Elements: []schemas.ElementRecord{{
			Element:        "<a href=\"/home\">Home</a>",
			TagName:        "a",
			InnerText:      "Home",
			AccessibleText: "Home",
			XPath:          "/html/body/a",
			Selector:       "a",
			Href:           schemas.Str("/home"),
		}},
	}}

	t.Run("writes json to a file", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "out.json")
		err := writeResults(results, config.RunConfig{Output: out})
		require.NoError(t, err)

		data, err := os.ReadFile(out)
		require.NoError(t, err)

		var decoded []schemas.Result
		require.NoError(t, json.Unmarshal(data, &decoded))
		require.Len(t, decoded, 1)
		assert.Equal(t, "a.html", decoded[0].Source)
		assert.Equal(t, "Home", decoded[0].Elements[0].AccessibleText)
	})

	t.Run("pretty output is indented", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "pretty.json")
		err := writeResults(results, config.RunConfig{Output: out, Pretty: true})
		require.NoError(t, err)

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Contains(t, string(data), "\n  ")
	})
}
