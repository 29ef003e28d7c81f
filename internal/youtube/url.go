// Package youtube resolves YouTube links to video ids and downloads caption
// tracks from the public watch page.
package youtube

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/iliyamo/smartplay/internal/common"
)

// ResolveID extracts the video id from the accepted YouTube URL shapes:
//
//	https://www.youtube.com/watch?v=<id>
//	https://youtu.be/<id>
//	https://www.youtube.com/embed/<id>
//	https://www.youtube.com/shorts/<id>
//
// m., music. and other youtube.com subdomains are accepted as well.  Every
// failure wraps common.ErrInvalidURL.
func ResolveID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty", common.ErrInvalidURL)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrInvalidURL, err)
	}
	scheme := strings.ToLower(u.Scheme)
	if (scheme != "http" && scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: not an absolute http(s) url", common.ErrInvalidURL)
	}
	host := strings.ToLower(u.Hostname())

	var id string
	switch {
	case isYouTubeHost(host):
		if v := u.Query().Get("v"); v != "" {
			id = v
		} else if rest, ok := strings.CutPrefix(u.Path, "/embed/"); ok {
			id = firstSegment(rest)
		} else if rest, ok := strings.CutPrefix(u.Path, "/shorts/"); ok {
			id = firstSegment(rest)
		}
	case host == "youtu.be" || host == "www.youtu.be":
		id = firstSegment(strings.TrimPrefix(u.Path, "/"))
	default:
		return "", fmt.Errorf("%w: unsupported host %q", common.ErrInvalidURL, host)
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("%w: no video id", common.ErrInvalidURL)
	}
	return id, nil
}

func isYouTubeHost(host string) bool {
	return host == "youtube.com" || strings.HasSuffix(host, ".youtube.com")
}

func firstSegment(p string) string {
	if i := strings.IndexByte(p, '/'); i >= 0 {
		return p[:i]
	}
	return p
}
