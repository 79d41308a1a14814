package urlutil

import (
	gopath "path"
	"strings"
)

// normalizePathSegments collapses "."/".."/duplicate separators the way a
// filesystem path normalizer would, preserving a meaningful trailing slash
// unless the caller wants it stripped.
func normalizePathSegments(p string, stripTrailingSlash bool) string {
	if p == "" {
		return p
	}
	trailingSlash := strings.HasSuffix(p, "/") && len(p) > 1
	p = gopath.Clean(p)
	if trailingSlash && !stripTrailingSlash {
		p += "/"
	}
	return p
}

// stripIndexSegment drops a final path segment whose name, ignoring one
// extension, is exactly "index".
func stripIndexSegment(p string) string {
	i := strings.LastIndexByte(p, '/')
	last := p[i+1:]
	name := last
	if ext := gopath.Ext(last); ext != "" && ext != last {
		name = strings.TrimSuffix(last, ext)
	}
	if name != "index" {
		return p
	}
	if i < 0 {
		return ""
	}
	return p[:i]
}
