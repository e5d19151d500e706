package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	log "github.com/sirupsen/logrus"
)

const (
	// Default paths under the mirror root, as served by every CPAN mirror.
	IndexPath = "modules/02packages.details.txt.gz"
	PermsPath = "modules/06perms.txt.gz"
)

// Client fetches index and permissions files from a CPAN mirror. Responses
// are decompressed and written to a temp file in destDir; the caller renames
// the file into its final slot, so a failed fetch never touches the stored
// generations.
type Client struct {
	mirror    string
	indexPath string
	permsPath string
	client    *http.Client
}

// New creates a Client for the given mirror URL. Empty resource paths fall
// back to the standard compressed mirror paths; a mirror serving plain
// ".txt" files works by configuring the uncompressed paths, decompression
// keys on the ".gz" suffix.
func New(mirror, indexPath, permsPath string) *Client {
	if indexPath == "" {
		indexPath = IndexPath
	}
	if permsPath == "" {
		permsPath = PermsPath
	}
	return &Client{
		mirror:    strings.TrimSuffix(mirror, "/"),
		indexPath: indexPath,
		permsPath: permsPath,
		client:    &http.Client{Timeout: 5 * time.Minute},
	}
}

// Mirror returns the configured mirror URL.
func (c *Client) Mirror() string {
	return c.mirror
}

// Index fetches the package index into a temp file and returns its path.
func (c *Client) Index(ctx context.Context, destDir string) (string, error) {
	return c.fetch(ctx, c.indexPath, destDir, "02packages-*.txt")
}

// Perms fetches the permissions list into a temp file and returns its path.
func (c *Client) Perms(ctx context.Context, destDir string) (string, error) {
	return c.fetch(ctx, c.permsPath, destDir, "06perms-*.txt")
}

func (c *Client) fetch(ctx context.Context, path, destDir, pattern string) (string, error) {
	url := fmt.Sprintf("%s/%s", c.mirror, path)
	log.Debugf("fetching %s", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s: HTTP %d", url, resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return "", fmt.Errorf("decompressing %s: %w", url, err)
		}
		defer gz.Close()
		body = gz
	}

	out, err := os.CreateTemp(destDir, pattern)
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}

	n, err := io.Copy(out, body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(out.Name())
		return "", fmt.Errorf("writing %s: %w", out.Name(), err)
	}

	log.Debugf("fetched %s (%d bytes)", path, n)
	return out.Name(), nil
}
