// Package extract pulls searchable text out of files.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Veraticus/sortsense/internal/common"
	"github.com/Veraticus/sortsense/internal/model"
)

// Extension groups.
var (
	ImageExtensions  = extSet(".png", ".jpg", ".jpeg", ".tif", ".tiff", ".bmp", ".jfif", ".webp")
	PDFExtensions    = extSet(".pdf")
	TextExtensions   = extSet(".txt", ".md", ".rtf", ".json", ".xml", ".csv", ".log")
	OfficeExtensions = extSet(".docx", ".xlsx", ".pptx")
)

func extSet(exts ...string) map[string]bool {
	m := make(map[string]bool, len(exts))
	for _, e := range exts {
		m[e] = true
	}
	return m
}

// IsImage reports whether path has an image extension.
func IsImage(path string) bool {
	return ImageExtensions[strings.ToLower(filepath.Ext(path))]
}

// Result is the outcome of extracting one file. Err is set when Method is
// MethodError.
type Result struct {
	Err    error
	Method model.ExtractionMethod
	Text   string
}

// Tools names the external programs used for extraction.
type Tools struct {
	Tesseract string
	Pdftotext string
	Pdftoppm  string
}

// Runner executes an external program and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Extractor dispatches on file extension. Every external program call is
// bounded by the configured timeout.
type Extractor struct {
	run     Runner
	tools   Tools
	timeout time.Duration
	maxLen  int
}

// New creates an extractor. Tools that cannot be found on PATH are
// disabled.
func New(tools Tools, timeout time.Duration, maxLen int) *Extractor {
	return &Extractor{
		run:     execRunner,
		tools:   resolveTools(tools),
		timeout: timeout,
		maxLen:  maxLen,
	}
}

// NewWithRunner creates an extractor that uses run for external programs.
// Tool names are used as given.
func NewWithRunner(tools Tools, timeout time.Duration, maxLen int, run Runner) *Extractor {
	return &Extractor{run: run, tools: tools, timeout: timeout, maxLen: maxLen}
}

func resolveTools(t Tools) Tools {
	lookup := func(name string) string {
		if name == "" {
			return ""
		}
		p, err := exec.LookPath(name)
		if err != nil {
			slog.Debug("Extraction tool not available", "tool", name)
			return ""
		}
		return p
	}
	return Tools{
		Tesseract: lookup(t.Tesseract),
		Pdftotext: lookup(t.Pdftotext),
		Pdftoppm:  lookup(t.Pdftoppm),
	}
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", filepath.Base(name), err, msg)
		}
		return nil, fmt.Errorf("%s: %w", filepath.Base(name), err)
	}
	return out, nil
}

// Available reports which external tools were found.
func (e *Extractor) Available() map[string]bool {
	return map[string]bool{
		"tesseract": e.tools.Tesseract != "",
		"pdftotext": e.tools.Pdftotext != "",
		"pdftoppm":  e.tools.Pdftoppm != "",
	}
}

// Extract returns the text of path and how it was obtained. Failures are
// reported in the result; Extract never aborts the caller.
func (e *Extractor) Extract(ctx context.Context, path string) Result {
	ext := strings.ToLower(filepath.Ext(path))

	var res Result
	switch {
	case TextExtensions[ext]:
		res = e.fromText(path)
	case PDFExtensions[ext]:
		res = e.fromPDF(ctx, path)
	case ImageExtensions[ext]:
		res = e.fromImage(ctx, path)
	case OfficeExtensions[ext]:
		res = e.fromOffice(path)
	default:
		return Result{Method: model.MethodFilename}
	}

	if res.Err != nil {
		slog.Debug("Extraction failed", "path", path, "error", res.Err)
		res.Method = model.MethodError
		res.Err = common.NewPathError(common.ErrExtraction, "extract", path, res.Err)
		res.Text = ""
	}
	res.Text = e.truncate(res.Text)
	return res
}

func (e *Extractor) fromText(path string) Result {
	f, err := os.Open(path)
	if err != nil {
		return Result{Err: err}
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, int64(e.maxLen)*utf8.UTFMax))
	if err != nil {
		return Result{Err: err}
	}
	return Result{Method: model.MethodText, Text: strings.ToValidUTF8(string(data), "")}
}

func (e *Extractor) fromPDF(ctx context.Context, path string) Result {
	if e.tools.Pdftotext != "" {
		out, err := e.call(ctx, e.tools.Pdftotext, "-l", "2", path, "-")
		if err != nil {
			return Result{Err: err}
		}
		if text := strings.TrimSpace(string(out)); text != "" {
			return Result{Method: model.MethodPDF, Text: text}
		}
	}
	return e.ocrPDF(ctx, path)
}

func (e *Extractor) ocrPDF(ctx context.Context, path string) Result {
	if e.tools.Pdftoppm == "" || e.tools.Tesseract == "" {
		return Result{Method: model.MethodSkip}
	}

	tmp, err := os.MkdirTemp("", "sortsense-ocr-")
	if err != nil {
		return Result{Err: err}
	}
	defer func() { _ = os.RemoveAll(tmp) }()

	prefix := filepath.Join(tmp, "page")
	if _, err := e.call(ctx, e.tools.Pdftoppm, "-png", "-f", "1", "-l", "1", path, prefix); err != nil {
		return Result{Err: err}
	}

	for _, candidate := range []string{prefix + "-1.png", prefix + "-01.png", prefix + "-001.png"} {
		if _, err := os.Stat(candidate); err == nil {
			return e.fromImage(ctx, candidate)
		}
	}
	return Result{Method: model.MethodSkip}
}

func (e *Extractor) fromImage(ctx context.Context, path string) Result {
	if e.tools.Tesseract == "" {
		return Result{Method: model.MethodSkip}
	}
	out, err := e.call(ctx, e.tools.Tesseract, path, "stdout")
	if err != nil {
		return Result{Err: err}
	}
	return Result{Method: model.MethodOCR, Text: strings.TrimSpace(string(out))}
}

func (e *Extractor) fromOffice(path string) Result {
	text, err := officeText(path, e.maxLen)
	if err != nil {
		return Result{Err: err}
	}
	return Result{Method: model.MethodOffice, Text: text}
}

// call runs an external program under the extraction timeout.
func (e *Extractor) call(ctx context.Context, name string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	out, err := e.run(ctx, name, args...)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s timed out after %s", filepath.Base(name), e.timeout)
		}
		return nil, err
	}
	return out, nil
}

func (e *Extractor) truncate(s string) string {
	return Truncate(s, e.maxLen)
}

// Truncate shortens s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
