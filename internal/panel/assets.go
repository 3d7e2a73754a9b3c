package panel

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"hls-restream-panel/internal/platform/fsutil"
)

// DefaultAllowedExt lists the accepted logo extensions.
var DefaultAllowedExt = []string{"png", "svg"}

// AssetConfig locates the logo images and their public URLs.
type AssetConfig struct {
	// Root is the directory the external file server publishes at BaseURL.
	Root string
	// ImageDir is where logos are written. Defaults to Root/metadata/images.
	ImageDir string
	// BaseURL is the public origin of Root.
	BaseURL string
	// AllowedExt lists accepted extensions, lower case, without the dot.
	AllowedExt []string
}

// Upload is a logo file received from a form.
type Upload struct {
	Filename string
	Content  io.Reader
}

// AssetManager validates, stores and removes per-stream logo images.
type AssetManager struct {
	cfg     AssetConfig
	allowed map[string]bool
	urlDir  string
}

// NewAssetManager returns an AssetManager, filling defaults for empty fields.
func NewAssetManager(cfg AssetConfig) *AssetManager {
	if cfg.ImageDir == "" {
		cfg.ImageDir = filepath.Join(cfg.Root, "metadata", "images")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if len(cfg.AllowedExt) == 0 {
		cfg.AllowedExt = DefaultAllowedExt
	}

	allowed := make(map[string]bool, len(cfg.AllowedExt))
	for _, ext := range cfg.AllowedExt {
		allowed[strings.ToLower(strings.TrimPrefix(ext, "."))] = true
	}

	urlDir := "metadata/images"
	if rel, err := filepath.Rel(cfg.Root, cfg.ImageDir); err == nil && !escapesRoot(rel) {
		urlDir = filepath.ToSlash(rel)
	}

	return &AssetManager{cfg: cfg, allowed: allowed, urlDir: urlDir}
}

// ImageDir returns the directory logos are written to.
func (m *AssetManager) ImageDir() string {
	return m.cfg.ImageDir
}

// Allowed reports whether filename carries an accepted extension.
func (m *AssetManager) Allowed(filename string) bool {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return false
	}
	return m.allowed[strings.ToLower(filename[i+1:])]
}

// StoreLogo writes up as the logo of rec and points rec.Logo at its public
// URL. Uploads without an accepted extension are ignored and leave rec.Logo
// unchanged; stored reports whether the upload was taken.
//
// The file is named after the record, not the upload, so a logo uploaded with
// a different extension than before leaves the old file in place.
func (m *AssetManager) StoreLogo(rec *StreamRecord, up *Upload) (stored bool, err error) {
	if up == nil || up.Content == nil || !m.Allowed(up.Filename) {
		return false, nil
	}

	safe := SecureFilename(up.Filename)
	i := strings.LastIndex(safe, ".")
	if i < 0 || !m.allowed[strings.ToLower(safe[i+1:])] {
		return false, nil
	}
	ext := strings.ToLower(safe[i+1:])

	if err := os.MkdirAll(m.cfg.ImageDir, 0o755); err != nil {
		return false, fmt.Errorf("create image dir: %w", err)
	}

	filename := rec.SanitizedName() + "." + ext
	err = fsutil.WriteAtomic(filepath.Join(m.cfg.ImageDir, filename), "", 0o644, func(w io.Writer) error {
		_, err := io.Copy(w, up.Content)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("write logo: %w", err)
	}

	rec.Logo = m.cfg.BaseURL + "/" + (&url.URL{Path: path.Join(m.urlDir, filename)}).EscapedPath()
	return true, nil
}

// DeleteLogo removes the file behind rec.Logo. A record without a logo or a
// file that is already gone is not an error.
func (m *AssetManager) DeleteLogo(rec StreamRecord) error {
	if rec.Logo == "" {
		return nil
	}

	p, err := m.LogoPath(rec.Logo)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove logo: %w", err)
	}
	return nil
}

// LogoPath maps a public logo URL back to its file under Root. The URL path
// is decoded, so escaped filenames resolve to the file StoreLogo wrote.
func (m *AssetManager) LogoPath(logo string) (string, error) {
	u, err := url.Parse(logo)
	if err != nil {
		return "", fmt.Errorf("parse logo url: %w", err)
	}

	root := filepath.Clean(m.cfg.Root)
	full := filepath.Join(root, filepath.FromSlash(strings.TrimLeft(u.Path, "/")))
	rel, err := filepath.Rel(root, full)
	if err != nil || rel == "." || escapesRoot(rel) {
		return "", fmt.Errorf("logo path %q outside asset root", u.Path)
	}
	return full, nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SecureFilename reduces an uploaded filename to a flat ASCII name that is
// safe to join onto a directory. It may return "".
func SecureFilename(name string) string {
	name = norm.NFKD.String(name)

	var ascii strings.Builder
	for _, r := range name {
		if r < 0x80 {
			ascii.WriteRune(r)
		}
	}
	name = ascii.String()

	name = strings.NewReplacer("/", " ", "\\", " ").Replace(name)
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}

func escapesRoot(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel)
}
