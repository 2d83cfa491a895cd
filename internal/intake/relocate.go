package intake

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/triageworks/sentinel/pkg/cerr"
)

// SanitizeProjectID reduces a project id to filename-safe characters
// (alphanumerics, hyphen, underscore). An absent or fully-stripped id
// becomes the UNKNOWN sentinel.
func SanitizeProjectID(projectID string) string {
	var sb strings.Builder
	for _, r := range projectID {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			sb.WriteRune(r)
		}
	}
	if sb.Len() == 0 {
		return "UNKNOWN"
	}
	return sb.String()
}

// Relocate moves a claimed file to its terminal archive location, renamed to
// {project}-#{taskID}{ext}. A missing source is reported as NotFound (a
// concurrent actor may have removed it); any other failure is Internal.
// Either way the caller must surface it: after this point a task record
// already references the file.
func Relocate(source, targetDir, projectID string, taskID int) (string, error) {
	if _, err := os.Stat(source); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", cerr.NewError(cerr.NotFound, "source file not found", err)
		}
		return "", cerr.NewError(cerr.Internal, "failed to stat source file", err)
	}
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return "", cerr.NewError(cerr.Internal, "failed to create target directory", err)
	}

	name := fmt.Sprintf("%s-#%d%s", SanitizeProjectID(projectID), taskID, filepath.Ext(source))
	dest := filepath.Join(targetDir, name)

	if err := moveFile(source, dest); err != nil {
		return "", cerr.NewError(cerr.Internal, "failed to move file to archive", err)
	}
	return dest, nil
}

// moveFile renames, falling back to copy+delete across filesystems. On
// success exactly one copy of the file exists, at dest.
func moveFile(source, dest string) error {
	if err := os.Rename(source, dest); err == nil {
		return nil
	} else if errors.Is(err, fs.ErrNotExist) {
		return err
	}

	in, err := os.Open(source)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		_ = os.Remove(dest)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dest)
		return err
	}
	return os.Remove(source)
}
