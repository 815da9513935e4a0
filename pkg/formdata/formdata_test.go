package formdata

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartRequest(t *testing.T, build func(w *multipart.Writer)) (*Form, error) {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	build(w)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return Parse(req)
}

func TestParse_FieldsAndFiles(t *testing.T) {
	form, err := multipartRequest(t, func(w *multipart.Writer) {
		require.NoError(t, w.WriteField("title", "Day five"))
		require.NoError(t, w.WriteField("mood", "happy"))
		fw, err := w.CreateFormFile("media", "photo.png")
		require.NoError(t, err)
		_, err = fw.Write([]byte("not-really-a-png"))
		require.NoError(t, err)
	})
	require.NoError(t, err)

	assert.Equal(t, "Day five", form.Value("title"))
	assert.Equal(t, "happy", form.Value("mood"))
	assert.Equal(t, "", form.Value("missing"))

	fh := form.File("media")
	require.NotNil(t, fh)
	assert.Equal(t, "photo.png", fh.Filename)
	assert.Nil(t, form.File("report"))
}

func TestParse_RepeatedFieldFirstValueWins(t *testing.T) {
	form, err := multipartRequest(t, func(w *multipart.Writer) {
		require.NoError(t, w.WriteField("title", "first"))
		require.NoError(t, w.WriteField("title", "second"))
	})
	require.NoError(t, err)

	assert.Equal(t, "first", form.Value("title"))
}

func TestParse_RepeatedFileFirstWins(t *testing.T) {
	form, err := multipartRequest(t, func(w *multipart.Writer) {
		for _, name := range []string{"a.pdf", "b.pdf"} {
			fw, err := w.CreateFormFile("report", name)
			require.NoError(t, err)
			_, err = fw.Write([]byte("pdf"))
			require.NoError(t, err)
		}
	})
	require.NoError(t, err)

	fh := form.File("report")
	require.NotNil(t, fh)
	assert.Equal(t, "a.pdf", fh.Filename)
}

func TestParse_MalformedBody(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader("not multipart at all"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=missing")

	_, err := Parse(req)
	assert.Error(t, err)
}
