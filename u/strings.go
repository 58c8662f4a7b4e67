package u

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandTildeInPath replaces leading ~ with user's home directory
func ExpandTildeInPath(s string) string {
	if s == "~" || strings.HasPrefix(s, "~/") || strings.HasPrefix(s, `~\`) {
		dir, err := os.UserHomeDir()
		if err != nil {
			return s
		}
		return filepath.Join(dir, s[1:])
	}
	return s
}
