package imgbed

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Wsine/imgfans/core"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// received 假图床记录的请求
type received struct {
	mu          sync.Mutex
	auth        string
	accept      string
	filename    string
	contentType string
	data        []byte
	calls       int
}

func sampleResult(name string, size int64) gin.H {
	base := "https://cdn.imgfans.test/i/abc123/" + name
	return gin.H{
		"success": true,
		"file": gin.H{
			"id":           "abc123",
			"name":         name,
			"size":         size,
			"mimeType":     "image/png",
			"url":          base,
			"downloadUrl":  base + "?download=1",
			"thumbnailUrl": base + "?thumb=1",
			"expiresAt":    nil,
			"references": gin.H{
				"direct_link":   gin.H{"label": "Direct link", "code": base},
				"download_link": gin.H{"label": "Download link", "code": base + "?download=1"},
				"bbcode":        gin.H{"label": "BBCode", "code": "[img]" + base + "[/img]"},
				"html":          gin.H{"label": "HTML", "code": `<img src="` + base + `" alt="` + name + `">`},
				"markdown":      gin.H{"label": "Markdown", "code": "![" + name + "](" + base + ")"},
			},
		},
	}
}

// newFakeImgfans 启动一个假的图床服务
func newFakeImgfans(t *testing.T, handler gin.HandlerFunc) (*httptest.Server, *received) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rec := &received{}
	r := gin.New()
	r.POST("/api/upload", func(c *gin.Context) {
		rec.mu.Lock()
		rec.calls++
		rec.auth = c.GetHeader("Authorization")
		rec.accept = c.GetHeader("Accept")
		if fh, err := c.FormFile("file"); err == nil {
			rec.filename = fh.Filename
			rec.contentType = fh.Header.Get("Content-Type")
			if f, err := fh.Open(); err == nil {
				rec.data, _ = io.ReadAll(f)
				f.Close()
			}
		}
		rec.mu.Unlock()

		if handler != nil {
			handler(c)
			return
		}
		c.JSON(http.StatusOK, sampleResult(rec.filename, int64(len(rec.data))))
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, rec
}

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	client, err := NewClient(&core.ClientConfig{
		Token:      "secret-token",
		BaseURL:    srv.URL + "/api/",
		HTTPClient: srv.Client(),
	})
	require.NoError(t, err)
	return client
}

type failingTransport struct{ t *testing.T }

func (f failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	f.t.Fatal("unexpected network call")
	return nil, nil
}

func TestNewClientRequiresToken(t *testing.T) {
	for _, token := range []string{"", "  "} {
		client, err := NewClient(&core.ClientConfig{
			Token:      token,
			HTTPClient: &http.Client{Transport: failingTransport{t}},
		})
		require.Error(t, err)
		assert.Nil(t, client)
		assert.True(t, core.IsKind(err, core.KindConfiguration))
	}

	_, err := NewClient(nil)
	assert.True(t, core.IsKind(err, core.KindConfiguration))
}

func TestNewClientDefaultEndpoint(t *testing.T) {
	client, err := NewClient(&core.ClientConfig{Token: "t"})
	require.NoError(t, err)
	assert.Equal(t, core.DefaultBaseURL+"/upload", client.Endpoint())
	assert.Equal(t, "imgfans", client.GetName())
}

func TestUploadDataURI(t *testing.T) {
	srv, rec := newFakeImgfans(t, nil)
	client := newTestClient(t, srv)

	result, err := client.Upload(context.Background(), "data:image/png;base64,QUJD", "")
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret-token", rec.auth)
	assert.Equal(t, "application/json", rec.accept)
	assert.Equal(t, "image.png", rec.filename)
	assert.Equal(t, "image/png", rec.contentType)
	assert.Equal(t, []byte("ABC"), rec.data)

	require.True(t, result.Success)
	require.NotNil(t, result.File)
	assert.Equal(t, int64(3), result.File.Size)
	assert.Nil(t, result.File.ExpiresAt)

	link, err := DirectLink(result)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.imgfans.test/i/abc123/image.png", link)
}

func TestUploadFromRemoteURL(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/gif")
		w.Write([]byte("GIF89a-bytes"))
	}))
	defer remote.Close()

	srv, rec := newFakeImgfans(t, nil)
	client := newTestClient(t, srv)

	_, err := client.Upload(context.Background(), remote.URL+"/pics/cat.gif", "")
	require.NoError(t, err)
	assert.Equal(t, "cat.gif", rec.filename)
	assert.Equal(t, "image/gif", rec.contentType)
	assert.Equal(t, []byte("GIF89a-bytes"), rec.data)
}

func TestUploadLargeStream(t *testing.T) {
	srv, rec := newFakeImgfans(t, nil)
	client := newTestClient(t, srv)

	payload := bytes.Repeat([]byte{0xAB}, 8<<20)
	_, err := client.Upload(context.Background(), bytes.NewReader(payload), "big.bin")
	require.NoError(t, err)
	assert.Equal(t, "big.bin", rec.filename)
	assert.Equal(t, len(payload), len(rec.data))
}

func TestUploadStatusErrors(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    gin.H
		message string
	}{
		{name: "too large", status: http.StatusRequestEntityTooLarge, body: gin.H{"success": false, "message": "max 10MB"}, message: "文件过大"},
		{name: "unsupported", status: http.StatusUnsupportedMediaType, body: gin.H{"success": false}, message: "不支持的文件类型"},
		{name: "unauthorized", status: http.StatusUnauthorized, body: gin.H{"success": false, "message": "token revoked"}, message: "API Token 无效或缺失"},
		{name: "server message", status: http.StatusInternalServerError, body: gin.H{"success": false, "message": "storage offline"}, message: "storage offline"},
		{name: "generic", status: http.StatusBadGateway, body: gin.H{}, message: "上传失败 (HTTP 502)"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := newFakeImgfans(t, func(c *gin.Context) {
				c.JSON(tc.status, tc.body)
			})
			client := newTestClient(t, srv)

			result, err := client.Upload(context.Background(), []byte("img"), "")
			require.Error(t, err)
			assert.Nil(t, result)

			var ie *core.ImgfansError
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, core.KindTransport, ie.Kind)
			assert.Equal(t, tc.status, ie.StatusCode)
			assert.Contains(t, ie.Message, tc.message)
			assert.NotEmpty(t, ie.Payload)
		})
	}
}

func TestUploadSuccessFalse(t *testing.T) {
	srv, _ := newFakeImgfans(t, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "rejected by moderation"})
	})
	client := newTestClient(t, srv)

	_, err := client.Upload(context.Background(), []byte("img"), "")
	require.Error(t, err)
	assert.True(t, core.IsKind(err, core.KindTransport))
	assert.Contains(t, err.Error(), "rejected by moderation")
}

func TestUploadInvalidJSON(t *testing.T) {
	srv, _ := newFakeImgfans(t, func(c *gin.Context) {
		c.String(http.StatusOK, "<html>ok</html>")
	})
	client := newTestClient(t, srv)

	_, err := client.Upload(context.Background(), []byte("img"), "")
	require.Error(t, err)
	assert.True(t, core.IsKind(err, core.KindInvalidResponse))
}

func TestUploadConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	client, err := NewClient(&core.ClientConfig{Token: "t", BaseURL: baseURL, Timeout: 5 * time.Second})
	require.NoError(t, err)

	_, err = client.Upload(context.Background(), []byte("img"), "")
	require.Error(t, err)

	var ie *core.ImgfansError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, core.KindTransport, ie.Kind)
	assert.Zero(t, ie.StatusCode)
	assert.Contains(t, ie.Message, "connection refused")
	assert.NotNil(t, ie.Err)
}

func TestUploadInvalidInputMakesNoRequest(t *testing.T) {
	srv, rec := newFakeImgfans(t, nil)
	client := newTestClient(t, srv)

	_, err := client.Upload(context.Background(), "definitely/not/a/file.png", "")
	require.Error(t, err)
	assert.True(t, core.IsKind(err, core.KindInvalidInput))

	_, err = client.Upload(context.Background(), struct{}{}, "")
	require.Error(t, err)
	assert.True(t, core.IsKind(err, core.KindUnsupportedInput))

	assert.Zero(t, rec.calls)
}

func TestUploadConcurrent(t *testing.T) {
	srv, rec := newFakeImgfans(t, nil)
	client := newTestClient(t, srv)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.Upload(context.Background(), []byte("img"), "")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 8, rec.calls)
}
