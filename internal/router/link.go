package router

import (
	"context"
	"net/url"
	"strings"
)

// FollowLink navigates to href when it is a same-origin absolute path,
// either "/forms" or "http://origin/forms". Anything else (relative paths,
// other origins, mailto: and similar) is left alone and FollowLink returns
// false.
func (r *Router) FollowLink(ctx context.Context, href string) bool {
	path, ok := r.internalPath(href)
	if !ok {
		return false
	}
	r.Navigate(ctx, path)
	return true
}

func (r *Router) internalPath(href string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil || u.Opaque != "" {
		return "", false
	}
	if u.Scheme != "" || u.Host != "" {
		if r.origin == nil || u.Host != r.origin.Host {
			return "", false
		}
		if u.Scheme != "" && u.Scheme != r.origin.Scheme {
			return "", false
		}
	}
	if !strings.HasPrefix(u.Path, "/") {
		return "", false
	}
	path := u.EscapedPath()
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return path, true
}
