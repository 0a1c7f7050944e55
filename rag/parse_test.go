package rag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTMLParserExtractsText(t *testing.T) {
	body := []byte(`<html>
		<head><title>ignored</title><script>var x = 1;</script></head>
		<body>
			<nav>Home | Support</nav>
			<h1>Resetting the router</h1>
			<p>Hold the reset button for <b>ten seconds</b>.</p>
			<style>.hidden{display:none}</style>
			<footer>Copyright</footer>
		</body>
	</html>`)

	parser := NewHTMLParser()
	doc, err := parser.Parse("https://example.com/router", body)
	require.NoError(t, err)

	assert.Contains(t, doc.Content, "Resetting the router")
	assert.Contains(t, doc.Content, "ten seconds")
	assert.NotContains(t, doc.Content, "var x")
	assert.NotContains(t, doc.Content, "Home | Support")
	assert.NotContains(t, doc.Content, "Copyright")
	assert.Equal(t, "https://example.com/router", doc.Source)
	assert.Equal(t, "html", doc.Metadata["content_type"])
}

func TestHTMLParserCollapsesBlankLines(t *testing.T) {
	body := []byte(`<html><body><div></div><div></div><p>only line</p></body></html>`)
	doc, err := NewHTMLParser().Parse("src", body)
	require.NoError(t, err)
	assert.Equal(t, "only line", doc.Content)
}

func TestParserManagerUnknownKind(t *testing.T) {
	pm := NewParserManager(NewLogger("parse-test", LogLevelOff))
	_, err := pm.Parse("spreadsheet", "src", []byte("a,b,c"))
	assert.ErrorContains(t, err, "no parser available")
}
