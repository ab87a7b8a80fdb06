// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"go.yaml.in/yaml/v3"

	"github.com/snlongmore/morning-report/internal/httputil"
	"github.com/snlongmore/morning-report/pkg/types"
)

// PDFFetcher downloads paper PDFs into papersDir/[date]/, with a YAML
// metadata sidecar next to each one.
type PDFFetcher struct {
	HTTP *httputil.RetryClient
	Dir  string
	Log  *logrus.Logger
}

// NewPDFFetcher returns a fetcher rooted at papersDir.
func NewPDFFetcher(client *httputil.RetryClient, papersDir string, log *logrus.Logger) *PDFFetcher {
	return &PDFFetcher{HTTP: client, Dir: papersDir, Log: log}
}

// DownloadPDFs fetches each paper's PDF, skipping files already on disk.
// Individual failures are logged and do not stop the rest of the batch.
// It returns the number of files actually written.
func (f *PDFFetcher) DownloadPDFs(ctx context.Context, papers []types.ClassifiedPaper, date string) int {
	if len(papers) == 0 {
		return 0
	}

	dir := filepath.Join(f.Dir, date)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		f.Log.WithError(err).WithField("dir", dir).Error("creating download directory")
		return 0
	}

	downloaded := 0
	for _, p := range papers {
		slug := fileSlug(p.ArxivID)
		pdfPath := filepath.Join(dir, slug+".pdf")

		if _, err := os.Stat(pdfPath); err == nil {
			f.Log.WithField("paper", p.ArxivID).Debug("PDF already on disk, skipping")
			continue
		}

		if err := f.downloadFile(ctx, p.PDFURL, pdfPath); err != nil {
			f.Log.WithError(err).WithField("paper", p.ArxivID).Warn("PDF download failed")
			continue
		}
		downloaded++

		if err := writeMetadata(p, filepath.Join(dir, slug+".yaml")); err != nil {
			f.Log.WithError(err).WithField("paper", p.ArxivID).Warn("writing metadata sidecar failed")
		}
	}

	f.Log.WithFields(logrus.Fields{
		"requested":  len(papers),
		"downloaded": downloaded,
	}).Info("PDF downloads complete")
	return downloaded
}

// downloadFile fetches url to destPath using a temporary file, renaming
// on success so a partial download never lands at the final path.
func (f *PDFFetcher) downloadFile(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/pdf")

	resp, err := f.HTTP.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".download-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

func writeMetadata(p types.ClassifiedPaper, path string) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// fileSlug makes an arXiv ID safe as a filename. Old-style IDs contain
// a slash (e.g. "astro-ph/0601001").
func fileSlug(arxivID string) string {
	return strings.ReplaceAll(arxivID, "/", "_")
}
