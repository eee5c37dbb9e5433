package storage

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/apperr"
)

// buildUpload assembles a real multipart.FileHeader the way gin would hand
// one to a handler.
func buildUpload(t *testing.T, filename, contentType string, body []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(body)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	reader := multipart.NewReader(&buf, w.Boundary())
	form, err := reader.ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })

	files := form.File["image"]
	require.Len(t, files, 1)
	return files[0]
}

func TestValidateImage(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		size        int
		wantErr     bool
	}{
		{name: "jpeg accepted", filename: "cover.jpg", contentType: "image/jpeg", size: 64},
		{name: "png accepted", filename: "cover.png", contentType: "image/png", size: 64},
		{name: "webp accepted", filename: "cover.webp", contentType: "image/webp", size: 64},
		{name: "uppercase extension accepted", filename: "COVER.JPG", contentType: "image/jpeg", size: 64},
		{name: "content type with charset accepted", filename: "cover.png", contentType: "image/png; charset=binary", size: 64},
		{name: "executable rejected", filename: "payload.exe", contentType: "application/octet-stream", size: 64, wantErr: true},
		{name: "extension and type disagree", filename: "cover.png", contentType: "image/jpeg", size: 64, wantErr: true},
		{name: "image type with wrong extension", filename: "cover.txt", contentType: "image/png", size: 64, wantErr: true},
		{name: "no extension", filename: "cover", contentType: "image/png", size: 64, wantErr: true},
		{name: "oversized", filename: "big.jpg", contentType: "image/jpeg", size: MaxImageBytes + 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := buildUpload(t, tt.filename, tt.contentType, bytes.Repeat([]byte{0xff}, tt.size))
			err := ValidateImage(header)
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, apperr.IsKind(err, apperr.KindValidation))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaveAndRemove(t *testing.T) {
	store, err := NewImageStore(t.TempDir())
	require.NoError(t, err)

	header := buildUpload(t, "cover.jpg", "image/jpeg", []byte("fake image bytes"))

	urlPath, err := store.Save(header)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(urlPath, URLPrefix+"/"))
	assert.True(t, strings.HasSuffix(urlPath, ".jpg"))

	name := strings.TrimPrefix(urlPath, URLPrefix+"/")
	data, err := os.ReadFile(filepath.Join(store.Dir(), name))
	require.NoError(t, err)
	assert.Equal(t, "fake image bytes", string(data))

	require.NoError(t, store.Remove(urlPath))
	_, err = os.Stat(filepath.Join(store.Dir(), name))
	assert.True(t, os.IsNotExist(err))

	// Removing twice or removing a foreign path is not an error.
	assert.NoError(t, store.Remove(urlPath))
	assert.NoError(t, store.Remove("https://cdn.example.com/cover.jpg"))
	assert.NoError(t, store.Remove(URLPrefix+"/../escape.jpg"))
}

func TestSaveRejectsInvalidUpload(t *testing.T) {
	store, err := NewImageStore(t.TempDir())
	require.NoError(t, err)

	header := buildUpload(t, "payload.exe", "application/octet-stream", []byte("MZ"))
	_, err = store.Save(header)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries, "no file may be left behind after a rejected upload")
}
