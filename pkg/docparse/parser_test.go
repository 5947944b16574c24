package docparse

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestText_Docx(t *testing.T) {
	doc := `<?xml version="1.0"?><w:document><w:body>` +
		`<w:p><w:r><w:t>Аналитик данных</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Навыки:</w:t></w:r><w:tab/><w:r><w:t>SQL, Python</w:t></w:r></w:p>` +
		`</w:body></w:document>`

	got, err := Text("resume.docx", makeDocx(t, doc))
	require.NoError(t, err)
	assert.Contains(t, got, "Аналитик данных")
	assert.Contains(t, got, "Навыки: SQL, Python")
}

func TestText_DocxUpperCaseExtension(t *testing.T) {
	doc := `<w:document><w:body><w:p><w:r><w:t>текст</w:t></w:r></w:p></w:body></w:document>`
	got, err := Text("RESUME.DOCX", makeDocx(t, doc))
	require.NoError(t, err)
	assert.Equal(t, "текст", got)
}

func TestText_DocxWithoutDocumentXML(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/other.xml")
	require.NoError(t, err)
	_, _ = w.Write([]byte("<x/>"))
	require.NoError(t, zw.Close())

	_, err = Text("resume.docx", buf.Bytes())
	assert.Error(t, err)
}

func TestText_BrokenDocx(t *testing.T) {
	_, err := Text("resume.docx", []byte("это вовсе не zip"))
	assert.Error(t, err)
}

func TestText_UnsupportedFormat(t *testing.T) {
	for _, name := range []string{"resume.txt", "resume.doc", "resume", "resume.rtf"} {
		_, err := Text(name, []byte("данные"))
		assert.ErrorIs(t, err, ErrUnsupportedFormat, name)
	}
}

func TestCollapseWhitespace(t *testing.T) {
	in := "строка  с пробелами\t\tи\n\n\nпереносами  "
	got := collapseWhitespace(in)
	assert.Equal(t, "строка с пробелами и\nпереносами", got)
}
