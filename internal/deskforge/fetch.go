package deskforge

import (
	"archive/tar"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
)

// Pinned gum release for the binary-download fallback. Bumped manually when
// the upstream release is vetted.
const (
	gumVersion     = "0.14.5"
	gumReleaseBase = "https://github.com/charmbracelet/gum/releases/download"
	gumInstallPath = "/usr/local/bin/gum"
)

func newHTTPClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = 10
	return &http.Client{
		Transport: transport,
		Timeout:   90 * time.Second,
	}
}

func httpGet(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: unexpected status %s", url, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// gumArtifactName maps the Go architecture to the upstream release naming.
func gumArtifactName() (string, error) {
	var machine string
	switch runtime.GOARCH {
	case "amd64":
		machine = "x86_64"
	case "arm64":
		machine = "arm64"
	case "386":
		machine = "i386"
	default:
		return "", fmt.Errorf("no gum release artifact for %s", runtime.GOARCH)
	}
	return fmt.Sprintf("gum_%s_Linux_%s.tar.gz", gumVersion, machine), nil
}

// lookupChecksum finds the published SHA-256 for artifact in a checksums.txt
// body ("<hex>  <name>" per line).
func lookupChecksum(checksums []byte, artifact string) (string, error) {
	for _, line := range strings.Split(string(checksums), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 2 && fields[1] == artifact {
			return fields[0], nil
		}
	}
	return "", fmt.Errorf("no checksum entry for %s", artifact)
}

// extractGumBinary walks a gzip tarball and writes the single gum binary to
// dest with execute permissions.
func extractGumBinary(tarball []byte, dest string) error {
	gz, err := gzip.NewReader(bytes.NewReader(tarball))
	if err != nil {
		return fmt.Errorf("gzip: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("tar: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg || filepath.Base(hdr.Name) != "gum" {
			continue
		}

		tmp, err := os.CreateTemp(filepath.Dir(dest), ".gum-*")
		if err != nil {
			return err
		}
		if _, err := io.Copy(tmp, tr); err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			return err
		}
		if err := tmp.Chmod(0o755); err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			return err
		}
		if err := tmp.Close(); err != nil {
			os.Remove(tmp.Name())
			return err
		}
		return os.Rename(tmp.Name(), dest)
	}
	return fmt.Errorf("gum binary not found in release tarball")
}

// downloadGumBinary fetches the pinned gum release, verifies it against the
// published SHA-256 sums and installs the binary. Last resort of the
// UI-backend upgrade; every failure here is non-fatal to the run.
func downloadGumBinary(ctx context.Context) error {
	artifact, err := gumArtifactName()
	if err != nil {
		return err
	}

	client := newHTTPClient()
	base := fmt.Sprintf("%s/v%s", gumReleaseBase, gumVersion)

	checksums, err := httpGet(ctx, client, fmt.Sprintf("%s/gum_%s_checksums.txt", base, gumVersion))
	if err != nil {
		return fmt.Errorf("fetching checksums: %w", err)
	}
	want, err := lookupChecksum(checksums, artifact)
	if err != nil {
		return err
	}

	debugf("Downloading %s/%s\n", base, artifact)
	tarball, err := httpGet(ctx, client, base+"/"+artifact)
	if err != nil {
		return fmt.Errorf("fetching release: %w", err)
	}

	sum := sha256.Sum256(tarball)
	if got := hex.EncodeToString(sum[:]); got != want {
		return fmt.Errorf("checksum mismatch for %s: got %s, want %s", artifact, got, want)
	}

	return extractGumBinary(tarball, gumInstallPath)
}
