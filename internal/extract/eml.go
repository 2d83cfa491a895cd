package extract

import (
	"bytes"
	"fmt"
	"os"

	"github.com/jhillyerd/enmime"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// extractEML parses an RFC 822 message. The body follows the
// single-preferred-part strategy: the plain text body when one exists,
// otherwise the text down-converted from the HTML part. Part character sets
// are handled by the MIME parser.
func extractEML(path string) (subject, body string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	env, err := enmime.ReadEnvelope(bytes.NewReader(data))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse eml: %w", err)
	}

	subject = env.GetHeader("Subject")
	body = env.Text
	if body == "" {
		body = env.HTML
	}
	return subject, body, nil
}
