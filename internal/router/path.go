package router

import "strings"

// MaxDepth is the deepest path, in segments after the base path, that is dispatched.
const MaxDepth = 4

// ParsePath returns the segments of path that follow basePath.
//
// basePath may appear after a mount directory (/apps/crud/v1/api/artists).
// The query string, trailing slash and empty segments are dropped. ok is
// false when basePath does not occur on a segment boundary.
//
//	ParsePath("/v1/api/artists/7/", "/v1/api") => ["artists", "7"], true
func ParsePath(path, basePath string) (segments []string, ok bool) {
	path, _, _ = strings.Cut(path, "?")
	basePath = "/" + strings.Trim(basePath, "/")

	rest, found := path, basePath == "/"
	for offset := 0; !found && offset <= len(path); {
		idx := strings.Index(path[offset:], basePath)
		if idx < 0 {
			break
		}
		end := offset + idx + len(basePath)
		if end == len(path) || path[end] == '/' {
			rest, found = path[end:], true
			break
		}
		offset = end
	}
	if !found {
		return nil, false
	}

	segments = []string{}
	for _, segment := range strings.Split(rest, "/") {
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	return segments, true
}
