package panel

import (
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"hls-restream-panel/internal/platform/fsutil"
)

const (
	// DefaultEPGURL is the guide location announced in the playlist header.
	DefaultEPGURL = "/metadata/linktomastertvxml/master.xml.gz"
	// DefaultGroupTitle is the group label of every playlist entry.
	DefaultGroupTitle = "Movies"
	// DefaultBaseURL is the public origin of the HLS and image file server.
	DefaultBaseURL = "http://localhost:9090"

	playlistLogoExt = "png"
)

// PlaylistConfig controls where and how the master playlist is written.
type PlaylistConfig struct {
	Path       string
	TempSuffix string
	BaseURL    string
	EPGURL     string
	GroupTitle string

	// DeriveLogoExt makes tvg-logo use the extension of the uploaded logo
	// instead of the fixed ".png" existing players expect.
	DeriveLogoExt bool
}

// Playlist regenerates the extended-M3U master playlist from the store's
// records. The file is always rewritten from scratch.
type Playlist struct {
	cfg PlaylistConfig
}

// NewPlaylist returns a Playlist, filling defaults for empty fields.
func NewPlaylist(cfg PlaylistConfig) *Playlist {
	if cfg.TempSuffix == "" {
		cfg.TempSuffix = fsutil.DefaultTempSuffix
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.EPGURL == "" {
		cfg.EPGURL = DefaultEPGURL
	}
	if cfg.GroupTitle == "" {
		cfg.GroupTitle = DefaultGroupTitle
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Playlist{cfg: cfg}
}

// Path returns the playlist file path.
func (p *Playlist) Path() string {
	return p.cfg.Path
}

// Regenerate atomically replaces the playlist file with Render(records).
func (p *Playlist) Regenerate(records []StreamRecord) error {
	err := fsutil.WriteAtomic(p.cfg.Path, p.cfg.TempSuffix, 0o644, func(w io.Writer) error {
		_, err := io.WriteString(w, p.Render(records))
		return err
	})
	if err != nil {
		return fmt.Errorf("write playlist: %w", err)
	}
	return nil
}

// Render builds the playlist text: one header line, then an #EXTINF line and
// a URL line per record, numbered 1..N by position.
func (p *Playlist) Render(records []StreamRecord) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("#EXTM3U url-tvg=\"%s\"\n", p.cfg.EPGURL))

	for i, rec := range records {
		b.WriteString(fmt.Sprintf(
			"#EXTINF:-1 channel-id=\"%s\" tvg-id=\"%s\" tvg-chno=\"%d\" tvg-name=\"%s\" tvg-logo=\"%s\" group-title=\"%s\", %s\n",
			rec.ChannelID, rec.ChannelID, i+1, rec.Name, p.logoRef(rec), p.cfg.GroupTitle, rec.Name,
		))
		b.WriteString(p.StreamURL(rec))
		b.WriteString("\n")
	}

	return b.String()
}

// StreamURL is the public playback URL of a record: the base origin, the
// fixed /hls/ segment and the output path with one leading slash removed.
func (p *Playlist) StreamURL(rec StreamRecord) string {
	return p.cfg.BaseURL + "/hls/" + strings.TrimPrefix(rec.OutputPath, "/")
}

func (p *Playlist) logoRef(rec StreamRecord) string {
	ext := playlistLogoExt
	if p.cfg.DeriveLogoExt {
		if e := logoExt(rec.Logo); e != "" {
			ext = e
		}
	}
	return "/metadata/images/" + rec.SanitizedName() + "." + ext
}

// logoExt returns the lower-case extension of a stored logo URL, or "".
func logoExt(logo string) string {
	if logo == "" {
		return ""
	}
	u, err := url.Parse(logo)
	if err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(path.Ext(u.Path), "."))
}
