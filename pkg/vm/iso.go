package vm

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// ErrChecksumMismatch is returned when the downloaded installation image does
// not match the manifest. The bad file is deleted before this is returned.
var ErrChecksumMismatch = fmt.Errorf("checksum mismatch")

// FetchISO downloads the installation image and its checksum manifest when
// they are not cached yet, then verifies the image against the manifest.
func (h *Harness) FetchISO() error {
	if _, err := os.Stat(h.SumsPath()); err != nil {
		if err := h.download(h.Mirror+"/"+SumsName, h.SumsPath()); err != nil {
			return fmt.Errorf("fetch checksum manifest: %w", err)
		}
	}
	if _, err := os.Stat(h.ISOPath()); err != nil {
		log.Infof("downloading %s, this can take a while", ISOName)
		if err := h.download(h.Mirror+"/"+ISOName, h.ISOPath()); err != nil {
			return fmt.Errorf("fetch installation image: %w", err)
		}
	}
	return h.VerifyISO()
}

// VerifyISO computes the image's SHA-256 and compares it against the manifest
// entry. On mismatch the image is deleted and ErrChecksumMismatch returned,
// so the next run downloads a fresh copy.
func (h *Harness) VerifyISO() error {
	want, err := h.manifestEntry(ISOName)
	if err != nil {
		return err
	}

	f, err := os.Open(h.ISOPath())
	if err != nil {
		return fmt.Errorf("open installation image: %w", err)
	}
	defer f.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, f); err != nil {
		return fmt.Errorf("hash installation image: %w", err)
	}
	got := hex.EncodeToString(hash.Sum(nil))

	if !strings.EqualFold(got, want) {
		_ = f.Close()
		if err := os.Remove(h.ISOPath()); err != nil {
			log.Warnf("failed to delete corrupt image %s: %v", h.ISOPath(), err)
		}
		return fmt.Errorf("%w for %s: manifest %s, computed %s (corrupt download deleted)", ErrChecksumMismatch, ISOName, want, got)
	}

	log.Debugf("%s checksum verified", ISOName)
	return nil
}

// manifestEntry finds the checksum for the named file in the sha256sums.txt
// style manifest (lines of "<hex>  <filename>").
func (h *Harness) manifestEntry(name string) (string, error) {
	f, err := os.Open(h.SumsPath())
	if err != nil {
		return "", fmt.Errorf("open checksum manifest: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 2 {
			continue
		}
		if strings.TrimPrefix(fields[1], "*") == name {
			return fields[0], nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read checksum manifest: %w", err)
	}
	return "", fmt.Errorf("no manifest entry for %s", name)
}

func (h *Harness) download(url, dest string) error {
	client := h.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	log.Debugf("downloading %s to %s", url, dest)
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %s", url, resp.Status)
	}

	part := dest + ".part"
	out, err := os.Create(part)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		_ = os.Remove(part)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(part)
		return err
	}

	return os.Rename(part, dest)
}
