package sbremote

import (
	"strings"
)

// validated paths are absolute, so "~" and "#" never start a word and are literal
const shellMetacharacters = " \t\n;&|<>()$`\\\"'*?[]{}!"

// NOTE: path is interpolated as-is. it comes from our own config, but if it ever
// becomes caller-controlled this is a command injection vector.
func ReadFileCommand(path string) string {
	return "sudo cat " + path
}

// paths that the remote shell would interpret as something else than a plain path
func HasShellMetacharacters(path string) bool {
	return strings.ContainsAny(path, shellMetacharacters)
}
