package extract

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/richardlehane/mscfb"
	"golang.org/x/text/encoding/unicode"
)

// MAPI property streams inside the CFB container. The 001F suffix marks
// UTF-16LE strings, 001E the 8-bit codepage variant.
const (
	msgSubjectUnicode = "__substg1.0_0037001F"
	msgSubjectANSI    = "__substg1.0_0037001E"
	msgBodyUnicode    = "__substg1.0_1000001F"
	msgBodyANSI       = "__substg1.0_1000001E"
)

// extractMSG opens the Outlook message's compound-file container and reads
// the subject and body property streams. The file handle is released before
// returning, error or not.
func extractMSG(path string) (subject, body string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", err
	}
	defer f.Close()

	doc, err := mscfb.New(f)
	if err != nil {
		return "", "", fmt.Errorf("failed to open msg container: %w", err)
	}

	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		var unicodeStream bool
		switch entry.Name {
		case msgSubjectUnicode, msgBodyUnicode:
			unicodeStream = true
		case msgSubjectANSI, msgBodyANSI:
		default:
			continue
		}

		data, err := io.ReadAll(entry)
		if err != nil {
			return "", "", fmt.Errorf("failed to read stream %s: %w", entry.Name, err)
		}
		text, err := decodeMSGString(data, unicodeStream)
		if err != nil {
			return "", "", fmt.Errorf("failed to decode stream %s: %w", entry.Name, err)
		}

		switch entry.Name {
		case msgSubjectUnicode:
			subject = text
		case msgSubjectANSI:
			if subject == "" {
				subject = text
			}
		case msgBodyUnicode:
			body = text
		case msgBodyANSI:
			if body == "" {
				body = text
			}
		}
	}

	return subject, body, nil
}

func decodeMSGString(data []byte, utf16le bool) (string, error) {
	if !utf16le {
		return strings.ToValidUTF8(string(data), ""), nil
	}
	dec := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	decoded, err := dec.Bytes(data)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(decoded), "\x00"), nil
}
