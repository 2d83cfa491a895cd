// Package extract turns a correspondence file into a (subject, body) pair of
// plain text. Extraction never fails loudly: any parse or decode error is
// logged and reported to the caller as an empty body, which the intake
// pipeline treats as the universal "nothing usable here" signal.
package extract

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Kind is the recognized input format, chosen once from the file extension.
type Kind int

const (
	KindPlainText Kind = iota
	KindEmail
	KindOutlookMessage
	KindUnsupported
)

// KindOf dispatches on the lowercased file extension.
func KindOf(path string) Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		return KindPlainText
	case ".eml":
		return KindEmail
	case ".msg":
		return KindOutlookMessage
	default:
		return KindUnsupported
	}
}

// Extract returns the subject and plain-text body of the file at path.
// The subject falls back to the filename whenever the format carries no
// usable subject of its own.
func Extract(path string) (subject, body string) {
	name := filepath.Base(path)

	var err error
	switch KindOf(path) {
	case KindPlainText:
		body, err = extractText(path)
		subject = name
	case KindEmail:
		subject, body, err = extractEML(path)
		if subject == "" {
			subject = name
		}
	case KindOutlookMessage:
		subject, body, err = extractMSG(path)
		if subject == "" {
			subject = name
		}
	default:
		slog.Warn("unsupported file type", "path", path, "ext", filepath.Ext(path))
		return name, ""
	}

	if err != nil {
		slog.Error("extraction failed", "path", path, "error", err)
		return name, ""
	}
	return subject, body
}

// extractText reads the whole file, dropping invalid UTF-8 byte sequences
// rather than failing on them.
func extractText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(data), ""), nil
}
