package panel

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestAssets(t *testing.T) *AssetManager {
	t.Helper()
	return NewAssetManager(AssetConfig{Root: t.TempDir(), BaseURL: "http://localhost:9090/"})
}

func TestAssetManager_StoreLogo(t *testing.T) {
	m := newTestAssets(t)
	rec := StreamRecord{Name: "My Channel"}

	stored, err := m.StoreLogo(&rec, &Upload{Filename: "logo.PNG", Content: strings.NewReader("png-bytes")})
	if err != nil || !stored {
		t.Fatalf("StoreLogo: stored=%v err=%v", stored, err)
	}
	if rec.Logo != "http://localhost:9090/metadata/images/My_Channel.png" {
		t.Errorf("Logo = %q", rec.Logo)
	}

	data, err := os.ReadFile(filepath.Join(m.ImageDir(), "My_Channel.png"))
	if err != nil {
		t.Fatalf("logo file: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Errorf("logo content = %q", data)
	}
}

func TestAssetManager_StoreLogo_rejected(t *testing.T) {
	m := newTestAssets(t)
	const previous = "http://localhost:9090/metadata/images/Keep.svg"

	for _, up := range []*Upload{
		nil,
		{Filename: "", Content: strings.NewReader("x")},
		{Filename: "logo.gif", Content: strings.NewReader("x")},
		{Filename: "logo", Content: strings.NewReader("x")},
		{Filename: "png", Content: strings.NewReader("x")},
	} {
		rec := StreamRecord{Name: "Keep", Logo: previous}
		stored, err := m.StoreLogo(&rec, up)
		if err != nil || stored {
			t.Errorf("upload %+v: stored=%v err=%v", up, stored, err)
		}
		if rec.Logo != previous {
			t.Errorf("upload %+v changed logo to %q", up, rec.Logo)
		}
	}

	entries, _ := os.ReadDir(m.ImageDir())
	if len(entries) != 0 {
		t.Errorf("rejected uploads must not write files, found %d", len(entries))
	}
}

func TestAssetManager_StoreLogo_unsafe_filename(t *testing.T) {
	m := newTestAssets(t)
	rec := StreamRecord{Name: "Safe"}

	stored, err := m.StoreLogo(&rec, &Upload{Filename: "../../etc/evil.svg", Content: strings.NewReader("<svg/>")})
	if err != nil || !stored {
		t.Fatalf("StoreLogo: stored=%v err=%v", stored, err)
	}
	if _, err := os.Stat(filepath.Join(m.ImageDir(), "Safe.svg")); err != nil {
		t.Errorf("expected Safe.svg in image dir: %v", err)
	}
}

func TestAssetManager_StoreLogo_extension_change_leaves_old_file(t *testing.T) {
	m := newTestAssets(t)
	rec := StreamRecord{Name: "Chan"}

	if _, err := m.StoreLogo(&rec, &Upload{Filename: "a.png", Content: strings.NewReader("1")}); err != nil {
		t.Fatal(err)
	}
	if _, err := m.StoreLogo(&rec, &Upload{Filename: "b.svg", Content: strings.NewReader("2")}); err != nil {
		t.Fatal(err)
	}

	if !strings.HasSuffix(rec.Logo, "/Chan.svg") {
		t.Errorf("Logo = %q", rec.Logo)
	}
	for _, name := range []string{"Chan.png", "Chan.svg"} {
		if _, err := os.Stat(filepath.Join(m.ImageDir(), name)); err != nil {
			t.Errorf("expected %s on disk: %v", name, err)
		}
	}
}

func TestAssetManager_DeleteLogo(t *testing.T) {
	m := newTestAssets(t)
	rec := StreamRecord{Name: "My Channel"}
	if _, err := m.StoreLogo(&rec, &Upload{Filename: "x.png", Content: strings.NewReader("x")}); err != nil {
		t.Fatal(err)
	}

	if err := m.DeleteLogo(rec); err != nil {
		t.Fatalf("DeleteLogo: %v", err)
	}
	if _, err := os.Stat(filepath.Join(m.ImageDir(), "My_Channel.png")); !os.IsNotExist(err) {
		t.Errorf("logo should be removed: %v", err)
	}

	t.Run("already_gone", func(t *testing.T) {
		if err := m.DeleteLogo(rec); err != nil {
			t.Errorf("missing file should not fail: %v", err)
		}
	})

	t.Run("no_logo", func(t *testing.T) {
		if err := m.DeleteLogo(StreamRecord{Name: "x"}); err != nil {
			t.Errorf("record without logo should not fail: %v", err)
		}
	})

	t.Run("outside_root", func(t *testing.T) {
		if err := m.DeleteLogo(StreamRecord{Logo: "http://localhost:9090/../../etc/passwd"}); err == nil {
			t.Error("expected error for path escaping the asset root")
		}
	})
}

func TestSecureFilename(t *testing.T) {
	cases := map[string]string{
		"logo.png":              "logo.png",
		"My Logo.svg":           "My_Logo.svg",
		"../../etc/passwd":      "etc_passwd",
		`C:\Users\me\logo.PNG`:  "C_Users_me_logo.PNG",
		"münchen.png":           "munchen.png",
		"  .hidden.svg ":        "hidden.svg",
		"logo<script>.png":      "logoscript.png",
		"\u65e5\u672c\u8a9e.png": "png",
	}
	for in, want := range cases {
		if got := SecureFilename(in); got != want {
			t.Errorf("SecureFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAssetManager_logo_url_escapes_name(t *testing.T) {
	cases := map[string]string{
		"News #1":   "http://localhost:9090/metadata/images/News_%231.png",
		"Sport?HD":  "http://localhost:9090/metadata/images/Sport%3FHD.png",
		"100% Hits": "http://localhost:9090/metadata/images/100%25_Hits.png",
	}
	for name, wantURL := range cases {
		t.Run(name, func(t *testing.T) {
			m := newTestAssets(t)
			rec := StreamRecord{Name: name}
			if _, err := m.StoreLogo(&rec, &Upload{Filename: "logo.png", Content: strings.NewReader("x")}); err != nil {
				t.Fatalf("StoreLogo: %v", err)
			}
			if rec.Logo != wantURL {
				t.Errorf("Logo = %q, want %q", rec.Logo, wantURL)
			}

			file := filepath.Join(m.ImageDir(), rec.SanitizedName()+".png")
			if got, err := m.LogoPath(rec.Logo); err != nil || got != file {
				t.Errorf("LogoPath = %q, %v; want %q", got, err, file)
			}

			if err := m.DeleteLogo(rec); err != nil {
				t.Fatalf("DeleteLogo: %v", err)
			}
			if _, err := os.Stat(file); !os.IsNotExist(err) {
				t.Errorf("logo should be removed: %v", err)
			}
		})
	}
}
