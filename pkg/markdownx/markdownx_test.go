package markdownx_test

import (
	"testing"

	"github.com/mydigitalspace/knowledgehub/pkg/markdownx"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	out, err := markdownx.Render([]byte("# Heading\n\nSome **bold** text."))
	require.NoError(t, err)

	html := string(out)
	require.Contains(t, html, "<h1>Heading</h1>")
	require.Contains(t, html, "<strong>bold</strong>")
}

func TestRenderEscapesRawHTML(t *testing.T) {
	out, err := markdownx.Render([]byte("<script>alert(1)</script>"))
	require.NoError(t, err)
	require.NotContains(t, string(out), "<script>")
}

func TestRenderGFMTables(t *testing.T) {
	out, err := markdownx.Render([]byte("| a | b |\n|---|---|\n| 1 | 2 |"))
	require.NoError(t, err)
	require.Contains(t, string(out), "<table>")
}
