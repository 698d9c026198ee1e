package render

import (
	"net/url"
	"regexp"
	"strings"

	"inkwell/api/internal/block"
)

// Embed describes a resolvable third-party player.
type Embed struct {
	Provider string `json:"provider"`
	ID       string `json:"id"`
	Src      string `json:"src"`
}

var (
	youtubeID = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	vimeoID   = regexp.MustCompile(`^[0-9]+$`)
	loomID    = regexp.MustCompile(`^[A-Za-z0-9]+$`)
)

// ParseEmbed extracts a provider identifier from a pasted URL. It returns
// nil for anything it cannot resolve; it never fails loudly.
func ParseEmbed(raw string) *Embed {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil
	}
	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimPrefix(host, "m.")
	segs := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })

	var provider, id string
	switch host {
	case "youtube.com", "youtube-nocookie.com", "music.youtube.com":
		provider = "youtube"
		switch {
		case len(segs) == 1 && segs[0] == "watch":
			id = u.Query().Get("v")
		case len(segs) >= 2 && (segs[0] == "embed" || segs[0] == "shorts" || segs[0] == "live" || segs[0] == "v"):
			id = segs[1]
		}
	case "youtu.be":
		provider = "youtube"
		if len(segs) > 0 {
			id = segs[0]
		}
	case "vimeo.com", "player.vimeo.com":
		provider = "vimeo"
		if len(segs) > 0 {
			id = segs[len(segs)-1]
		}
	case "loom.com":
		provider = "loom"
		if len(segs) >= 2 && (segs[0] == "share" || segs[0] == "embed") {
			id = segs[1]
		}
	default:
		return nil
	}

	if !validID(provider, id) {
		return nil
	}
	return &Embed{Provider: provider, ID: id, Src: embedSrc(provider, id)}
}

func validID(provider, id string) bool {
	switch provider {
	case "youtube":
		return youtubeID.MatchString(id)
	case "vimeo":
		return vimeoID.MatchString(id)
	case "loom":
		return loomID.MatchString(id)
	}
	return false
}

func embedSrc(provider, id string) string {
	if !validID(provider, id) {
		return ""
	}
	switch provider {
	case "youtube":
		return "https://www.youtube.com/embed/" + id
	case "vimeo":
		return "https://player.vimeo.com/video/" + id
	case "loom":
		return "https://www.loom.com/embed/" + id
	}
	return ""
}

// resolveEmbed refreshes provider and id from the payload URL.
func resolveEmbed(d *block.EmbedData) {
	if e := ParseEmbed(d.URL); e != nil {
		d.Provider, d.EmbedID = e.Provider, e.ID
		return
	}
	d.Provider, d.EmbedID = "", ""
}
