package mimetype

import "testing"

func TestForPath_KnownExtensions(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"index.html", "text/html"},
		{"legacy.htm", "text/html"},
		{"style.css", "text/css"},
		{"app.js", "application/javascript"},
		{"data.json", "application/json"},
		{"logo.png", "image/png"},
		{"photo.jpg", "image/jpeg"},
		{"photo.jpeg", "image/jpeg"},
		{"anim.gif", "image/gif"},
		{"icon.svg", "image/svg+xml"},
		{"favicon.ico", "image/x-icon"},
		{"readme.txt", "text/plain"},
		{"app.wasm", "application/wasm"},
		{"font.woff", "font/woff"},
		{"font.woff2", "font/woff2"},
		{"font.ttf", "font/ttf"},
		{"font.otf", "font/otf"},
		{"clip.mp4", "video/mp4"},
		{"clip.webm", "video/webm"},
		{"sound.ogg", "audio/ogg"},
		{"track.mp3", "audio/mpeg"},
	}

	for _, tt := range tests {
		if got := ForPath(tt.path); got != tt.expected {
			t.Errorf("ForPath(%q) = %q, want %q", tt.path, got, tt.expected)
		}
	}
}

func TestForPath_UnknownExtension(t *testing.T) {
	// "gz" is not in the table, even behind a recognized ".tar"
	if got := ForPath("archive.tar.gz"); got != Fallback {
		t.Errorf("ForPath(archive.tar.gz) = %q, want %q", got, Fallback)
	}
}

func TestForPath_NoExtension(t *testing.T) {
	if got := ForPath("Makefile"); got != Fallback {
		t.Errorf("ForPath(Makefile) = %q, want %q", got, Fallback)
	}
}

func TestForPath_CaseInsensitive(t *testing.T) {
	if got := ForPath("SHOUTING.HTML"); got != "text/html" {
		t.Errorf("ForPath(SHOUTING.HTML) = %q, want text/html", got)
	}
}
