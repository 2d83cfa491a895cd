package extract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindPlainText, KindOf("note.txt"))
	assert.Equal(t, KindPlainText, KindOf("NOTE.TXT"))
	assert.Equal(t, KindEmail, KindOf("mail.eml"))
	assert.Equal(t, KindOutlookMessage, KindOf("mail.msg"))
	assert.Equal(t, KindUnsupported, KindOf("image.png"))
	assert.Equal(t, KindUnsupported, KindOf("noext"))
}

func TestExtractPlainText(t *testing.T) {
	path := writeFile(t, "memo.txt", "Please update the firewall rules by Friday.")

	subject, body := Extract(path)
	assert.Equal(t, "memo.txt", subject)
	assert.Equal(t, "Please update the firewall rules by Friday.", body)
}

func TestExtractPlainTextInvalidUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memo.txt")
	require.NoError(t, os.WriteFile(path, []byte("ok\xff\xfebytes"), 0o644))

	_, body := Extract(path)
	assert.Equal(t, "okbytes", body)
}

func TestExtractEMLPlain(t *testing.T) {
	eml := "From: alice@example.com\r\n" +
		"To: ops@example.com\r\n" +
		"Subject: Server maintenance window\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"The maintenance window is 2026-09-12 02:00 UTC.\r\n"
	path := writeFile(t, "mail.eml", eml)

	subject, body := Extract(path)
	assert.Equal(t, "Server maintenance window", subject)
	assert.Contains(t, body, "maintenance window is 2026-09-12")
}

func TestExtractEMLMultipartPrefersPlainText(t *testing.T) {
	eml := "From: bob@example.com\r\n" +
		"Subject: Quarterly report\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: multipart/alternative; boundary=\"sep\"\r\n" +
		"\r\n" +
		"--sep\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"plain version\r\n" +
		"--sep\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"\r\n" +
		"<p>html version</p>\r\n" +
		"--sep--\r\n"
	path := writeFile(t, "mail.eml", eml)

	subject, body := Extract(path)
	assert.Equal(t, "Quarterly report", subject)
	assert.Contains(t, body, "plain version")
	assert.NotContains(t, body, "html version")
}

func TestExtractEMLHTMLOnly(t *testing.T) {
	eml := "Subject: HTML only\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"\r\n" +
		"<html><body><p>rendered content</p></body></html>\r\n"
	path := writeFile(t, "mail.eml", eml)

	_, body := Extract(path)
	assert.Contains(t, body, "rendered content")
}

func TestExtractEMLMissingSubjectFallsBackToFilename(t *testing.T) {
	eml := "From: carol@example.com\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"no subject here\r\n"
	path := writeFile(t, "untitled.eml", eml)

	subject, body := Extract(path)
	assert.Equal(t, "untitled.eml", subject)
	assert.Contains(t, body, "no subject here")
}

func TestExtractEMLWithBOM(t *testing.T) {
	eml := "\xEF\xBB\xBFSubject: BOM prefixed\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"content after bom\r\n"
	path := writeFile(t, "bom.eml", eml)

	subject, body := Extract(path)
	assert.Equal(t, "BOM prefixed", subject)
	assert.Contains(t, body, "content after bom")
}

func TestExtractUnsupported(t *testing.T) {
	path := writeFile(t, "image.png", "not really an image")

	subject, body := Extract(path)
	assert.Equal(t, "image.png", subject)
	assert.Empty(t, body)
}

func TestExtractCorruptMSG(t *testing.T) {
	path := writeFile(t, "broken.msg", strings.Repeat("x", 64))

	subject, body := Extract(path)
	assert.Equal(t, "broken.msg", subject)
	assert.Empty(t, body)
}

func TestExtractMissingFile(t *testing.T) {
	subject, body := Extract(filepath.Join(t.TempDir(), "gone.txt"))
	assert.Equal(t, "gone.txt", subject)
	assert.Empty(t, body)
}
