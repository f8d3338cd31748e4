// Package nodepath validates and dissects absolute host node paths such as
// "/obj/geo1". Paths are slash-separated, always absolute, and every segment
// is restricted to the identifier characters hosts accept in node names.
package nodepath

import (
	"fmt"
	"regexp"
	"strings"
)

// segmentRegex matches a single path segment, e.g. `geo1` or `render_v2`.
var segmentRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// isValidSegmentName checks for undesirable but technically matching names.
func isValidSegmentName(name string) bool {
	if name == "." || name == ".." || name == "-" {
		return false
	}
	return true
}

// Parse splits an absolute node path into its segments, validating each one.
func Parse(rawPath string) ([]string, error) {
	if rawPath == "" {
		return nil, fmt.Errorf("node path cannot be empty")
	}
	if !strings.HasPrefix(rawPath, "/") {
		return nil, fmt.Errorf("node path %q is not absolute", rawPath)
	}
	if rawPath == "/" {
		return nil, nil
	}

	segments := strings.Split(rawPath[1:], "/")
	for _, segment := range segments {
		if segment == "" {
			return nil, fmt.Errorf("node path %q contains an empty segment", rawPath)
		}
		if !segmentRegex.MatchString(segment) {
			return nil, fmt.Errorf("invalid path segment format: %q", segment)
		}
		if !isValidSegmentName(segment) {
			return nil, fmt.Errorf("invalid segment name: %q", segment)
		}
	}
	return segments, nil
}

// Validate reports whether rawPath is a well-formed absolute node path.
func Validate(rawPath string) error {
	_, err := Parse(rawPath)
	return err
}

// Base returns the final segment of the path, the node's own name.
func Base(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}

// Parent returns the path of the node's network, "/" at the root.
func Parent(path string) string {
	i := strings.LastIndexByte(path, '/')
	if i <= 0 {
		return "/"
	}
	return path[:i]
}
