package fetch

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
)

func gzipped(t *testing.T, content string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	if _, err := gw.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestClient_Index(t *testing.T) {
	const content = "File: 02packages\n\nJSON\t2.0\tM/MA/MAKAMAKA/JSON-2.0.tar.gz\n"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/modules/02packages.details.txt.gz" {
			w.Header().Set("Content-Type", "application/gzip")
			w.Write(gzipped(t, content))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := New(server.URL, "", "")
	path, err := c.Index(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != content {
		t.Errorf("fetched content = %q, want %q", data, content)
	}
}

func TestClient_Perms(t *testing.T) {
	const content = "File: 06perms\n\nSome::Pkg,NEEDHELP,c\n"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/modules/06perms.txt.gz" {
			w.Write(gzipped(t, content))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := New(server.URL, "", "")
	path, err := c.Perms(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("Perms() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != content {
		t.Errorf("fetched content = %q, want %q", data, content)
	}
}

func TestClient_UncompressedPath(t *testing.T) {
	const content = "File: 02packages\n\nJSON\t2.0\tM/MA/MAKAMAKA/JSON-2.0.tar.gz\n"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/modules/02packages.details.txt" {
			w.Write([]byte(content))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	// A path without the .gz suffix is fetched verbatim, no decompression.
	c := New(server.URL, "modules/02packages.details.txt", "")
	path, err := c.Index(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("Index() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != content {
		t.Errorf("fetched content = %q, want %q", data, content)
	}
}

func TestClient_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	dir := t.TempDir()
	c := New(server.URL, "", "")
	if _, err := c.Index(context.Background(), dir); err == nil {
		t.Fatal("Index() error = nil, want HTTP error")
	} else if !strings.Contains(err.Error(), "HTTP 500") {
		t.Errorf("error = %v, want mention of HTTP 500", err)
	}

	// A failed fetch leaves nothing behind for the store to pick up.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("dest dir has %d leftover files", len(entries))
	}
}

func TestClient_CorruptGzip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not gzip"))
	}))
	defer server.Close()

	c := New(server.URL, "", "")
	if _, err := c.Index(context.Background(), t.TempDir()); err == nil {
		t.Fatal("Index() error = nil, want gzip error")
	}
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	if got := New("https://cpan.metacpan.org/", "", "").Mirror(); got != "https://cpan.metacpan.org" {
		t.Errorf("Mirror() = %q", got)
	}
}
