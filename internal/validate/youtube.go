// Package validate checks submitted video links.  The only accepted
// content provider is YouTube; a link passes when it parses as a
// YouTube URL from which a video identifier can be extracted.  The
// scheduler treats this package as its opaque payload validator.
package validate

import (
    "errors"
    "net/url"
    "strings"
)

// ErrNotYouTube is returned when the link does not point at an
// accepted YouTube host or carries no extractable video identifier.
var ErrNotYouTube = errors.New("link is not a valid youtube video")

// youtubeHosts lists the hostnames accepted for long-form links.
var youtubeHosts = map[string]bool{
    "youtube.com":       true,
    "www.youtube.com":   true,
    "m.youtube.com":     true,
    "music.youtube.com": true,
}

// YouTubeValidator validates links and extracts the video identifier
// that gets stored alongside the queue item.
type YouTubeValidator struct{}

// NewYouTubeValidator returns a ready-to-use validator.
func NewYouTubeValidator() *YouTubeValidator { return &YouTubeValidator{} }

// Validate parses the link and returns the YouTube video ID.  Accepted
// forms:
//
//	https://www.youtube.com/watch?v=<id>
//	https://youtu.be/<id>
//	https://www.youtube.com/shorts/<id>
//	https://www.youtube.com/embed/<id>
//	https://www.youtube.com/live/<id>
//
// Anything else, including other providers and links without a video
// ID, fails with ErrNotYouTube.
func (v *YouTubeValidator) Validate(link string) (string, error) {
    link = strings.TrimSpace(link)
    if link == "" {
        return "", ErrNotYouTube
    }
    u, err := url.Parse(link)
    if err != nil {
        return "", ErrNotYouTube
    }
    if u.Scheme != "http" && u.Scheme != "https" {
        return "", ErrNotYouTube
    }

    host := strings.ToLower(u.Hostname())
    var id string
    switch {
    case host == "youtu.be":
        // Short link: the ID is the first path segment.
        id = firstSegment(u.Path)
    case youtubeHosts[host]:
        switch {
        case u.Path == "/watch":
            id = u.Query().Get("v")
        case strings.HasPrefix(u.Path, "/shorts/"):
            id = firstSegment(strings.TrimPrefix(u.Path, "/shorts"))
        case strings.HasPrefix(u.Path, "/embed/"):
            id = firstSegment(strings.TrimPrefix(u.Path, "/embed"))
        case strings.HasPrefix(u.Path, "/live/"):
            id = firstSegment(strings.TrimPrefix(u.Path, "/live"))
        }
    default:
        return "", ErrNotYouTube
    }

    if !validVideoID(id) {
        return "", ErrNotYouTube
    }
    return id, nil
}

// firstSegment returns the first non-empty path segment.
func firstSegment(path string) string {
    for _, seg := range strings.Split(path, "/") {
        if seg != "" {
            return seg
        }
    }
    return ""
}

// validVideoID checks the character set YouTube uses for video IDs.
// Length is left open beyond a sanity bound so future ID formats keep
// working.
func validVideoID(id string) bool {
    if len(id) < 8 || len(id) > 64 {
        return false
    }
    for _, r := range id {
        switch {
        case r >= 'a' && r <= 'z':
        case r >= 'A' && r <= 'Z':
        case r >= '0' && r <= '9':
        case r == '-' || r == '_':
        default:
            return false
        }
    }
    return true
}
