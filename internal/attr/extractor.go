// Package attr derives comparable attributes from file candidates for the
// classifier to score.
package attr

import (
	"bytes"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/nazjaz/curator/internal/model"
)

// DefaultContentMaxBytes caps how much of a file is sampled for content
// keywords.
const DefaultContentMaxBytes = 256 * 1024

// DefaultTextExtensions is the extension allow-list for content sampling.
var DefaultTextExtensions = []string{
	".txt", ".md", ".csv", ".log", ".json", ".yaml", ".yml",
	".xml", ".html", ".ini", ".conf", ".tex",
}

// fallbackDecoders are tried in order when a sample is not valid UTF-8.
var fallbackDecoders = []struct {
	decoder *encoding.Decoder
	name    string
}{
	{charmap.Windows1252.NewDecoder(), "windows-1252"},
	{charmap.ISO8859_1.NewDecoder(), "iso-8859-1"},
}

// Options configures attribute extraction.
type Options struct {
	TextExtensions  []string
	Vocabulary      []string
	ContentMaxBytes int64
}

// Extractor derives an AttributeBundle from a file candidate. Extraction
// never fails hard: unreadable files yield a bundle with whatever partial
// signal was obtainable and ExtractionError set.
type Extractor struct {
	textExts   map[string]struct{}
	vocabulary []string
	maxBytes   int64
}

// New creates an extractor from options, applying defaults for zero values.
func New(opts Options) *Extractor {
	if opts.ContentMaxBytes <= 0 {
		opts.ContentMaxBytes = DefaultContentMaxBytes
	}
	exts := opts.TextExtensions
	if exts == nil {
		exts = DefaultTextExtensions
	}

	textExts := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		textExts[strings.ToLower(e)] = struct{}{}
	}

	vocab := make([]string, len(opts.Vocabulary))
	for i, kw := range opts.Vocabulary {
		vocab[i] = strings.ToLower(kw)
	}

	return &Extractor{
		maxBytes:   opts.ContentMaxBytes,
		textExts:   textExts,
		vocabulary: vocab,
	}
}

// Extract builds the attribute bundle for a candidate. The caller supplies
// now so age computation stays deterministic under test.
func (e *Extractor) Extract(candidate model.FileCandidate, now time.Time) model.AttributeBundle {
	bundle := model.AttributeBundle{
		Candidate:      candidate,
		FilenameTokens: Tokenize(candidate.Name()),
		AgeDays:        ageDays(candidate.ModifiedTime, now),
	}

	if !e.sampleable(candidate) {
		return bundle
	}

	sample, err := readSample(candidate.AbsolutePath, e.maxBytes)
	if err != nil {
		bundle.ExtractionError = err.Error()
		return bundle
	}
	if len(sample) == 0 {
		return bundle
	}

	mime := mimetype.Detect(sample)
	bundle.DetectedMIME = mime.String()
	if bytes.ContainsRune(sample, 0) || binaryContent(mime) {
		// Binary content; the allow-listed extension lied.
		return bundle
	}

	text, encName := decodeText(sample)
	bundle.DetectedEncoding = encName
	if text == "" {
		// Total decode failure leaves the content signal empty.
		return bundle
	}

	text = strings.ToLower(text)
	for _, kw := range e.vocabulary {
		if strings.Contains(text, kw) {
			bundle.ContentKeywords = append(bundle.ContentKeywords, kw)
		}
	}

	return bundle
}

// sampleable gates content reads: under the size ceiling, extension on the
// text allow-list.
func (e *Extractor) sampleable(candidate model.FileCandidate) bool {
	if len(e.vocabulary) == 0 {
		return false
	}
	if candidate.SizeBytes > e.maxBytes {
		return false
	}
	_, ok := e.textExts[candidate.Extension]
	return ok
}

// binaryContent reports whether the detected type identifies the sample as
// a concrete binary format. application/octet-stream is exempt: legacy
// single-byte text detects as it, and the fallback decoders handle that.
func binaryContent(m *mimetype.MIME) bool {
	if m.Is("application/octet-stream") {
		return false
	}
	for ; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return false
		}
	}
	return true
}

// Tokenize lower-cases a filename and splits it on non-alphanumeric
// boundaries, deduplicating while preserving first-seen order.
func Tokenize(name string) []string {
	name = strings.ToLower(name)

	fields := strings.FieldsFunc(name, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})

	seen := make(map[string]struct{}, len(fields))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		tokens = append(tokens, f)
	}
	return tokens
}

func ageDays(modified, now time.Time) int {
	if !now.After(modified) {
		// Clock skew clamps to zero rather than going negative.
		return 0
	}
	return int(now.Sub(modified).Hours() / 24)
}

func readSample(path string, maxBytes int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes))
	if err != nil {
		return nil, err
	}
	return data, nil
}

// decodeText decodes a content sample as UTF-8, then walks the fallback
// encoding list. Returns the decoded text and the encoding name, or empty
// strings when nothing decodes.
func decodeText(sample []byte) (string, string) {
	if utf8.Valid(sample) {
		return string(sample), "utf-8"
	}
	for _, fb := range fallbackDecoders {
		decoded, err := fb.decoder.Bytes(sample)
		if err != nil {
			continue
		}
		return string(decoded), fb.name
	}
	return "", ""
}
