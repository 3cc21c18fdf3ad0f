package objectstore

import (
	"testing"

	"github.com/google/uuid"
)

func TestKey(t *testing.T) {
	id := uuid.MustParse("7f1c7b1e-6c1b-4a36-9c52-5d3c9d1b2a10")

	tests := []struct {
		name     string
		folder   string
		filename string
		want     string
	}{
		{name: "default folder", folder: "", filename: "notes.pdf", want: "uploads/7f1c7b1e-6c1b-4a36-9c52-5d3c9d1b2a10-notes.pdf"},
		{name: "named folder", folder: "Semester 3", filename: "os unit 1.pdf", want: "Semester_3/7f1c7b1e-6c1b-4a36-9c52-5d3c9d1b2a10-os_unit_1.pdf"},
		{name: "path traversal stripped", folder: "../etc", filename: "../../passwd", want: "etc/7f1c7b1e-6c1b-4a36-9c52-5d3c9d1b2a10-passwd"},
		{name: "empty file name", folder: "OS", filename: "  ", want: "OS/7f1c7b1e-6c1b-4a36-9c52-5d3c9d1b2a10-file"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := Key(tt.folder, id, tt.filename); got != tt.want {
				t.Fatalf("Key(%q, %q) = %q, want %q", tt.folder, tt.filename, got, tt.want)
			}
		})
	}
}

func TestPublicURL(t *testing.T) {
	got := PublicURL("http://localhost:9000/notes/", "uploads/a b.pdf")
	if got != "http://localhost:9000/notes/uploads/a%20b.pdf" {
		t.Fatalf("unexpected url: %s", got)
	}
}

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "uploads/file.pdf", want: "uploads/file.pdf"},
		{name: "simple prefix", prefix: "root", key: "uploads/file.pdf", want: "root/uploads/file.pdf"},
		{name: "prefix and key slashes", prefix: "/root/", key: "/uploads/file.pdf", want: "root/uploads/file.pdf"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}
