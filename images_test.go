package pubcms

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func gifBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewPaletted(image.Rect(0, 0, 4, 4), color.Palette{color.Black, color.White})
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, img, nil))
	return buf.Bytes()
}

// fileHeaders builds multipart file headers the way a browser upload would.
func fileHeaders(t *testing.T, files map[string][]byte) []*multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, data := range files {
		fw, err := mw.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, "/", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req.MultipartForm.File["images"]
}

func TestAllowedImage(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"photo.png", true},
		{"photo.JPG", true},
		{"photo.jpeg", true},
		{"anim.Gif", true},
		{"photo.EXE", false},
		{"photo", false},
		{"png", false},
		{"archive.png.zip", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AllowedImage(tt.name), "AllowedImage(%q)", tt.name)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"photo.jpg", "photo.jpg"},
		{"../../etc/passwd.png", "passwd.png"},
		{`C:\Users\ana\poză nouă.png`, "poza_noua.png"},
		{"my photo (1).jpg", "my_photo_1.jpg"},
		{".hidden.png", "hidden.png"},
		{"ștefan.gif", "stefan.gif"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeFilename(tt.input), "SanitizeFilename(%q)", tt.input)
	}
}

func TestImageMarkup(t *testing.T) {
	assert.Equal(t, `<br><img src="/static/uploads/a.png" style="max-width:100%;">`, ImageMarkup("/static/uploads/a.png"))
}

func TestImageStoreSave(t *testing.T) {
	dir := t.TempDir()
	s := NewImageStore(dir, "/static/uploads/", 1<<20, 1600)

	fhs := fileHeaders(t, map[string][]byte{"photo.JPG": pngBytes(t, 10, 10)})
	name, err := s.Save(fhs[0])
	require.NoError(t, err)
	assert.Equal(t, "photo.JPG", name)
	assert.FileExists(t, filepath.Join(dir, "photo.JPG"))
	assert.Equal(t, "/static/uploads/photo.JPG", s.URL(name))

	again, err := s.Save(fhs[0])
	require.NoError(t, err)
	assert.Equal(t, "photo-2.JPG", again, "collisions get a counter")
}

func TestImageStoreRejects(t *testing.T) {
	dir := t.TempDir()
	s := NewImageStore(dir, "/static/uploads", 64, 1600)

	fhs := fileHeaders(t, map[string][]byte{"photo.EXE": pngBytes(t, 2, 2)})
	_, err := s.Save(fhs[0])
	assert.ErrorIs(t, err, ErrRejectedUpload)

	fhs = fileHeaders(t, map[string][]byte{"fake.png": []byte("not an image at all")})
	_, err = s.Save(fhs[0])
	assert.ErrorIs(t, err, ErrRejectedUpload)

	fhs = fileHeaders(t, map[string][]byte{"big.png": pngBytes(t, 200, 200)})
	_, err = s.Save(fhs[0])
	assert.ErrorIs(t, err, ErrRejectedUpload)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing written for rejected files")
}

func TestImageStoreDownscale(t *testing.T) {
	dir := t.TempDir()
	s := NewImageStore(dir, "/static/uploads", 1<<20, 50)

	fhs := fileHeaders(t, map[string][]byte{"wide.png": pngBytes(t, 200, 100)})
	name, err := s.Save(fhs[0])
	require.NoError(t, err)

	f, err := os.Open(filepath.Join(dir, name))
	require.NoError(t, err)
	defer f.Close()
	cfg, format, err := image.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 50, cfg.Width)
	assert.Equal(t, 25, cfg.Height)
}

func TestImageStoreKeepsGIF(t *testing.T) {
	dir := t.TempDir()
	s := NewImageStore(dir, "/static/uploads", 1<<20, 2)
	raw := gifBytes(t)

	fhs := fileHeaders(t, map[string][]byte{"anim.gif": raw})
	name, err := s.Save(fhs[0])
	require.NoError(t, err)

	stored, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, raw, stored)
}

func TestImageStoreSaveAll(t *testing.T) {
	dir := t.TempDir()
	s := NewImageStore(dir, "/static/uploads", 1<<20, 1600)

	fhs := fileHeaders(t, map[string][]byte{
		"photo.EXE": pngBytes(t, 2, 2),
		"photo.JPG": pngBytes(t, 2, 2),
	})
	var rejected []error
	names, err := s.SaveAll(fhs, func(err error) { rejected = append(rejected, err) })
	require.NoError(t, err)
	assert.Equal(t, []string{"photo.JPG"}, names)
	require.Len(t, rejected, 1)
	assert.ErrorIs(t, rejected[0], ErrRejectedUpload)
	assert.Equal(t, `<br><img src="/static/uploads/photo.JPG" style="max-width:100%;">`, s.Markup(names))
}
