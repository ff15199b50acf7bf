package pubcms

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/image/draw"
	"golang.org/x/text/unicode/norm"
)

const (
	jpegQuality   = 85
	uploadsSubdir = "uploads"
)

var allowedImageExts = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"gif":  {},
}

// AllowedImage reports whether filename has one of the accepted image
// extensions. The check is case-insensitive and needs a dot.
func AllowedImage(filename string) bool {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return false
	}
	_, ok := allowedImageExts[strings.ToLower(filename[i+1:])]
	return ok
}

// SanitizeFilename reduces an uploaded filename to a safe basename: directory
// parts are dropped, accents folded to ASCII, whitespace becomes '_', and
// anything outside [A-Za-z0-9._-] is removed.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	var b strings.Builder
	for _, r := range norm.NFKD.String(name) {
		switch {
		case unicode.IsSpace(r):
			b.WriteByte('_')
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "._")
}

// ImageMarkup returns the fragment appended to an article body for an
// uploaded image.
func ImageMarkup(src string) string {
	return `<br><img src="` + html.EscapeString(src) + `" style="max-width:100%;">`
}

// ImageStore persists uploaded images in a public directory.
type ImageStore struct {
	dir       string
	urlPrefix string
	maxSize   int64
	maxWidth  int
}

// NewImageStore creates an ImageStore writing to dir and serving files under
// urlPrefix. maxWidth <= 0 disables downscaling.
func NewImageStore(dir, urlPrefix string, maxSize int64, maxWidth int) *ImageStore {
	return &ImageStore{dir: dir, urlPrefix: strings.TrimSuffix(urlPrefix, "/"), maxSize: maxSize, maxWidth: maxWidth}
}

// URL returns the public URL of a stored file.
func (s *ImageStore) URL(name string) string {
	return s.urlPrefix + "/" + path.Base(name)
}

// Save validates and writes one uploaded file, returning the stored name.
// Validation failures wrap ErrRejectedUpload.
func (s *ImageStore) Save(fh *multipart.FileHeader) (string, error) {
	if !AllowedImage(fh.Filename) {
		return "", fmt.Errorf("%q: extension not allowed: %w", fh.Filename, ErrRejectedUpload)
	}
	name := SanitizeFilename(fh.Filename)
	if !AllowedImage(name) {
		return "", fmt.Errorf("%q: unusable filename: %w", fh.Filename, ErrRejectedUpload)
	}
	if s.maxSize > 0 && fh.Size > s.maxSize {
		return "", fmt.Errorf("%q: %d bytes exceeds limit: %w", fh.Filename, fh.Size, ErrRejectedUpload)
	}

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()
	raw, err := io.ReadAll(src)
	if err != nil {
		return "", err
	}

	data, err := s.process(raw)
	if err != nil {
		return "", fmt.Errorf("%q: %v: %w", fh.Filename, err, ErrRejectedUpload)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create uploads dir: %w", err)
	}
	name = s.uniqueName(name)
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return name, nil
}

// SaveAll stores each file independently. Rejected files are reported
// through onReject and skipped; any other error aborts.
func (s *ImageStore) SaveAll(files []*multipart.FileHeader, onReject func(error)) ([]string, error) {
	var saved []string
	for _, fh := range files {
		if fh == nil || fh.Filename == "" {
			continue
		}
		name, err := s.Save(fh)
		if errors.Is(err, ErrRejectedUpload) {
			if onReject != nil {
				onReject(err)
			}
			continue
		}
		if err != nil {
			return saved, err
		}
		saved = append(saved, name)
	}
	return saved, nil
}

// Markup renders the body fragment for every stored name.
func (s *ImageStore) Markup(names []string) string {
	var b strings.Builder
	for _, n := range names {
		b.WriteString(ImageMarkup(s.URL(n)))
	}
	return b.String()
}

// process checks that raw decodes as an image and downscales PNG and JPEG
// images wider than maxWidth. GIFs are kept as uploaded so animations survive.
func (s *ImageStore) process(raw []byte) ([]byte, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if format == "gif" {
		if _, err := gif.DecodeAll(bytes.NewReader(raw)); err != nil {
			return nil, fmt.Errorf("decode gif: %w", err)
		}
		return raw, nil
	}
	if s.maxWidth <= 0 || cfg.Width <= s.maxWidth {
		if _, _, err := image.Decode(bytes.NewReader(raw)); err != nil {
			return nil, fmt.Errorf("decode image: %w", err)
		}
		return raw, nil
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	bounds := img.Bounds()
	newH := bounds.Dy() * s.maxWidth / bounds.Dx()
	if newH < 1 {
		newH = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, s.maxWidth, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	switch format {
	case "png":
		err = png.Encode(&buf, dst)
	default:
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality})
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

// uniqueName appends a counter if name already exists in the directory.
func (s *ImageStore) uniqueName(name string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	candidate := name
	for counter := 2; ; counter++ {
		if _, err := os.Stat(filepath.Join(s.dir, candidate)); errors.Is(err, os.ErrNotExist) {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d%s", base, counter, ext)
	}
}
