package artifacts

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/pkg/errors"

	"github.com/skillet-ai/skillet/pkg/logger"
	"github.com/skillet-ai/skillet/pkg/skillsapi"
)

// FileInfo is the metadata of one generated file.
type FileInfo struct {
	ID           string    `json:"file_id"`
	Filename     string    `json:"filename"`
	SizeBytes    int64     `json:"size"`
	MimeType     string    `json:"mime_type"`
	CreatedAt    time.Time `json:"created_at"`
	Downloadable bool      `json:"downloadable"`
}

// DownloadResult records the outcome of one file download.
type DownloadResult struct {
	FileID      string `json:"file_id"`
	OutputPath  string `json:"output_path"`
	Size        int64  `json:"size"`
	Success     bool   `json:"success"`
	Overwritten bool   `json:"overwritten,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Downloader saves generated files into the outputs directory convention.
type Downloader struct {
	client    *skillsapi.Client
	outputDir string
	prefix    string
	overwrite bool
}

// DownloaderOption configures a Downloader.
type DownloaderOption func(*Downloader)

// WithOutputDir sets where files land. Default ./outputs.
func WithOutputDir(dir string) DownloaderOption {
	return func(d *Downloader) { d.outputDir = dir }
}

// WithPrefix prepends a label to every saved filename.
func WithPrefix(prefix string) DownloaderOption {
	return func(d *Downloader) { d.prefix = prefix }
}

// WithOverwrite controls whether existing files are replaced. Default true.
func WithOverwrite(overwrite bool) DownloaderOption {
	return func(d *Downloader) { d.overwrite = overwrite }
}

// NewDownloader builds a Downloader around an API client.
func NewDownloader(client *skillsapi.Client, opts ...DownloaderOption) *Downloader {
	d := &Downloader{
		client:    client,
		outputDir: "outputs",
		overwrite: true,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func filesBetas() []anthropic.AnthropicBeta {
	return []anthropic.AnthropicBeta{anthropic.AnthropicBeta(skillsapi.BetaFilesAPI)}
}

// FileInfo fetches a file's metadata.
func (d *Downloader) FileInfo(ctx context.Context, fileID string) (*FileInfo, error) {
	var meta *anthropic.FileMetadata
	err := d.client.ExecuteWithRetry(ctx, func() error {
		var opErr error
		sdk := d.client.SDK()
		meta, opErr = sdk.Beta.Files.GetMetadata(ctx, fileID, anthropic.BetaFileGetMetadataParams{
			Betas: filesBetas(),
		})
		return opErr
	})
	if err != nil {
		return nil, errors.Wrapf(err, "retrieving metadata for %s", fileID)
	}

	return &FileInfo{
		ID:           meta.ID,
		Filename:     meta.Filename,
		SizeBytes:    meta.SizeBytes,
		MimeType:     meta.MimeType,
		CreatedAt:    meta.CreatedAt,
		Downloadable: meta.Downloadable,
	}, nil
}

// Download fetches one file's content and writes it to outputPath. The
// result reports failure instead of returning an error so batch downloads
// keep going.
func (d *Downloader) Download(ctx context.Context, fileID, outputPath string) DownloadResult {
	result := DownloadResult{FileID: fileID, OutputPath: outputPath}

	_, statErr := os.Stat(outputPath)
	exists := statErr == nil
	if exists && !d.overwrite {
		result.Error = fmt.Sprintf("file already exists: %s", outputPath)
		return result
	}

	if dir := filepath.Dir(outputPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			result.Error = err.Error()
			return result
		}
	}

	var content []byte
	err := d.client.ExecuteWithRetry(ctx, func() error {
		sdk := d.client.SDK()
		resp, opErr := sdk.Beta.Files.Download(ctx, fileID, anthropic.BetaFileDownloadParams{
			Betas: filesBetas(),
		})
		if opErr != nil {
			return opErr
		}
		defer resp.Body.Close()
		content, opErr = io.ReadAll(resp.Body)
		return opErr
	})
	if err != nil {
		result.Error = err.Error()
		return result
	}

	if err := os.WriteFile(outputPath, content, 0o644); err != nil {
		result.Error = err.Error()
		return result
	}

	result.Size = int64(len(content))
	result.Success = true
	result.Overwritten = exists
	return result
}

// DownloadAll extracts every generated file from a response and downloads
// each into the outputs directory. Filenames come from file metadata; when
// metadata is unavailable a positional fallback name is used.
func (d *Downloader) DownloadAll(ctx context.Context, message *anthropic.BetaMessage) []DownloadResult {
	fileIDs := ExtractFileIDs(message)
	results := make([]DownloadResult, 0, len(fileIDs))

	for i, fileID := range fileIDs {
		filename := fmt.Sprintf("file_%d.bin", i+1)
		if info, err := d.FileInfo(ctx, fileID); err == nil && info.Filename != "" {
			filename = info.Filename
		} else if err != nil {
			logger.G(ctx).WithError(err).WithField("file_id", fileID).Debug("no metadata, using fallback filename")
		}
		if d.prefix != "" {
			filename = d.prefix + filename
		}

		results = append(results, d.Download(ctx, fileID, filepath.Join(d.outputDir, filename)))
	}
	return results
}

// Summary renders the batch outcome, one line per file plus totals.
func Summary(results []DownloadResult) string {
	var sb strings.Builder
	sb.WriteString("\nFile Download Summary\n")
	sb.WriteString(strings.Repeat("=", 50))
	sb.WriteString("\n")

	succeeded := 0
	var totalSize int64
	for _, r := range results {
		if r.Success {
			notice := ""
			if r.Overwritten {
				notice = " [overwritten]"
			}
			fmt.Fprintf(&sb, "✓ %s (%.1f KB)%s\n", r.OutputPath, float64(r.Size)/1024, notice)
			succeeded++
			totalSize += r.Size
		} else {
			fmt.Fprintf(&sb, "✗ %s - Error: %s\n", r.OutputPath, r.Error)
		}
	}

	fmt.Fprintf(&sb, "\nTotal: %d/%d files downloaded successfully\n", succeeded, len(results))
	if succeeded > 0 {
		fmt.Fprintf(&sb, "Total size: %.2f MB\n", float64(totalSize)/(1024*1024))
	}
	return sb.String()
}
