package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Panel holds the file locations and public URLs of the control panel.
type Panel struct {
	StorePath       string
	StoreTempSuffix string

	PlaylistPath          string
	PlaylistBaseURL       string
	PlaylistEPGURL        string
	PlaylistGroupTitle    string
	PlaylistDeriveLogoExt bool

	AssetsRoot    string
	AssetsBaseURL string

	HLSRoot string
	PIDDir  string
}

func (Panel) Init(cmd *cobra.Command) error {
	fs := cmd.PersistentFlags()
	fs.String("store.path", "/var/www/hls/streams.json", "path of the streams configuration document")
	fs.String("store.temp-suffix", ".tmp", "suffix of the temporary file used for atomic writes")
	fs.String("playlist.path", "/var/www/streamdata/master.m3u", "path of the generated master playlist")
	fs.String("playlist.base-url", "http://localhost:9090", "public origin of the HLS file server")
	fs.String("playlist.epg-url", "/metadata/linktomastertvxml/master.xml.gz", "guide location announced in the playlist header")
	fs.String("playlist.group-title", "Movies", "group label of playlist entries")
	fs.Bool("playlist.derive-logo-ext", false, "use the uploaded logo extension in tvg-logo instead of .png")
	fs.String("assets.root", "/var/www/streamdata", "directory published by the file server, logos live under metadata/images")
	fs.String("assets.base-url", "http://localhost:9090", "public origin of the assets root")
	fs.String("hls.root", "/var/www/hls", "directory the transcoder writes output paths under")
	fs.String("pids.dir", "/var/www/hls/pids", "directory of transcoder pid files")

	for _, key := range []string{
		"store.path", "store.temp-suffix",
		"playlist.path", "playlist.base-url", "playlist.epg-url", "playlist.group-title", "playlist.derive-logo-ext",
		"assets.root", "assets.base-url",
		"hls.root", "pids.dir",
	} {
		if err := bind(cmd, key); err != nil {
			return err
		}
	}
	return nil
}

func (p *Panel) Set() {
	p.StorePath = viper.GetString("store.path")
	p.StoreTempSuffix = viper.GetString("store.temp-suffix")

	p.PlaylistPath = viper.GetString("playlist.path")
	p.PlaylistBaseURL = viper.GetString("playlist.base-url")
	p.PlaylistEPGURL = viper.GetString("playlist.epg-url")
	p.PlaylistGroupTitle = viper.GetString("playlist.group-title")
	p.PlaylistDeriveLogoExt = viper.GetBool("playlist.derive-logo-ext")

	p.AssetsRoot = viper.GetString("assets.root")
	p.AssetsBaseURL = viper.GetString("assets.base-url")

	p.HLSRoot = viper.GetString("hls.root")
	p.PIDDir = viper.GetString("pids.dir")
}

// Server holds the HTTP listener settings.
type Server struct {
	Bind string
}

func (Server) Init(cmd *cobra.Command) error {
	cmd.PersistentFlags().String("bind", "0.0.0.0:5000", "address/port to serve the panel")
	return bind(cmd, "bind")
}

func (s *Server) Set() {
	s.Bind = viper.GetString("bind")
}

// Log holds the logging settings.
type Log struct {
	Level      string
	Format     string
	Console    bool
	File       string
	MaxSize    int
	MaxBackups int
	MaxAge     int
}

func (Log) Init(cmd *cobra.Command) error {
	fs := cmd.PersistentFlags()
	fs.String("log.level", "info", "log level (debug, info, warn, error)")
	fs.String("log.format", "json", "log format (json, text)")
	fs.Bool("log.console", true, "enable console logging")
	fs.String("log.file", "", "enable file logging and specify its path")
	fs.Int("log.maxsize", 100, "size in MB of the logfile before it's rolled")
	fs.Int("log.maxbackups", 0, "max number of rolled files to keep")
	fs.Int("log.maxage", 0, "max age in days to keep a logfile")

	for _, key := range []string{"log.level", "log.format", "log.console", "log.file", "log.maxsize", "log.maxbackups", "log.maxage"} {
		if err := bind(cmd, key); err != nil {
			return err
		}
	}
	return nil
}

func (l *Log) Set() {
	l.Level = viper.GetString("log.level")
	l.Format = viper.GetString("log.format")
	l.Console = viper.GetBool("log.console")
	l.File = viper.GetString("log.file")
	l.MaxSize = viper.GetInt("log.maxsize")
	l.MaxBackups = viper.GetInt("log.maxbackups")
	l.MaxAge = viper.GetInt("log.maxage")
}
