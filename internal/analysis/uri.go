package analysis

import (
	"regexp"
	"runtime"
	"strings"
)

// uriEscapes are the percent-encoded sequences the original LSP protocol
// layer decodes/encodes explicitly rather than deferring to a general URL
// parser (original_source/src/protocol.rs).
var uriEscapes = []struct {
	encoded string
	literal string
}{
	{"%20", " "},
	{"%28", "("},
	{"%29", ")"},
	{"%5B", "["},
	{"%5D", "]"},
}

var driveLetterPath = regexp.MustCompile(`^/[A-Za-z]:/`)

// URIToPath converts a file:// LSP URI to a filesystem path. Returns ("",
// false) for anything that isn't a file URI.
func URIToPath(uri string) (string, bool) {
	if !strings.HasPrefix(uri, "file://") {
		return "", false
	}
	pathStr := strings.TrimPrefix(uri, "file://")

	for _, esc := range uriEscapes {
		pathStr = strings.ReplaceAll(pathStr, esc.encoded, esc.literal)
	}

	if runtime.GOOS == "windows" {
		if driveLetterPath.MatchString(pathStr) {
			pathStr = strings.TrimPrefix(pathStr, "/")
		}
		pathStr = strings.ReplaceAll(pathStr, "/", "\\")
	}

	return pathStr, true
}

// PathToURI converts a filesystem path to a file:// LSP URI.
func PathToURI(path string) string {
	pathStr := path
	if runtime.GOOS == "windows" {
		pathStr = strings.ReplaceAll(pathStr, "\\", "/")
		return "file:///" + strings.TrimPrefix(pathStr, "/")
	}
	for _, esc := range uriEscapes {
		pathStr = strings.ReplaceAll(pathStr, esc.literal, esc.encoded)
	}
	return "file://" + pathStr
}
