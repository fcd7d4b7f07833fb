package web

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-labelform/pkg/orchestrator"
	"github.com/goliatone/go-labelform/pkg/testsupport"
)

const sampleMarkup = `<DieCutLabel>
  <ObjectInfo>
    <TextObject>
      <Name>Name</Name>
      <StyledText><Element><String>Ada</String></Element></StyledText>
    </TextObject>
  </ObjectInfo>
  <ObjectInfo>
    <ImageObject>
      <Name>Badge</Name>
      <Text>ABC123</Text>
    </ImageObject>
  </ObjectInfo>
</DieCutLabel>`

func newTestServer(t *testing.T) (*httptest.Server, *testsupport.FakeService) {
	t.Helper()
	service := testsupport.NewFakeService()
	o := orchestrator.New(
		orchestrator.WithService(service),
		orchestrator.WithDebounce(5*time.Millisecond),
		orchestrator.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	srv := NewServer(o, "127.0.0.1:0", slog.New(slog.NewTextHandler(io.Discard, nil)))
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts, service
}

func uploadTemplate(t *testing.T, ts *httptest.Server, filename, contents string) *http.Response {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("template", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(contents))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	client := noRedirectClient(ts)
	res, err := client.Post(ts.URL+"/template", writer.FormDataContentType(), &body)
	require.NoError(t, err)
	t.Cleanup(func() { res.Body.Close() })
	return res
}

func noRedirectClient(ts *httptest.Server) *http.Client {
	client := *ts.Client()
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &client
}

func readBody(t *testing.T, res *http.Response) string {
	t.Helper()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return string(body)
}

func TestIndexShowsBlankState(t *testing.T) {
	ts, _ := newTestServer(t)

	res, err := ts.Client().Get(ts.URL + "/")
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusOK, res.StatusCode)
	body := readBody(t, res)
	assert.Contains(t, body, "No editable fields")
	assert.Contains(t, body, `action="/template"`)
}

func TestUploadThenIndexShowsControls(t *testing.T) {
	ts, _ := newTestServer(t)

	res := uploadTemplate(t, ts, "badge.label", sampleMarkup)
	require.Equal(t, http.StatusSeeOther, res.StatusCode)

	page, err := ts.Client().Get(ts.URL + "/")
	require.NoError(t, err)
	defer page.Body.Close()
	body := readBody(t, page)

	assert.Contains(t, body, "badge.label")
	assert.Contains(t, body, `<textarea name="Name"`)
	assert.Contains(t, body, `<input type="checkbox" name="Badge"`)
}

func TestUploadRejectsWrongExtensionInline(t *testing.T) {
	ts, service := newTestServer(t)

	res := uploadTemplate(t, ts, "badge.txt", sampleMarkup)
	require.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
	assert.Contains(t, readBody(t, res), "not a label template")
	assert.Empty(t, service.Opened)
}

func TestClearDropsTemplate(t *testing.T) {
	ts, _ := newTestServer(t)
	uploadTemplate(t, ts, "badge.label", sampleMarkup)

	client := noRedirectClient(ts)
	res, err := client.Post(ts.URL+"/template/clear", "application/x-www-form-urlencoded", nil)
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusSeeOther, res.StatusCode)

	page, err := ts.Client().Get(ts.URL + "/")
	require.NoError(t, err)
	defer page.Body.Close()
	assert.Contains(t, readBody(t, page), "No editable fields")
}

func TestFieldEditFlowsToDocument(t *testing.T) {
	ts, service := newTestServer(t)
	uploadTemplate(t, ts, "badge.label", sampleMarkup)
	doc := service.Opened[0]

	res, err := ts.Client().Post(ts.URL+"/fields/Name",
		"application/x-www-form-urlencoded",
		strings.NewReader(url.Values{"value": {"Grace"}}.Encode()))
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusNoContent, res.StatusCode)

	require.Eventually(t, func() bool {
		return doc.Texts["Name"] == "Grace"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestFieldEditUnknownControl(t *testing.T) {
	ts, _ := newTestServer(t)
	uploadTemplate(t, ts, "badge.label", sampleMarkup)

	res, err := ts.Client().Post(ts.URL+"/fields/Nope",
		"application/x-www-form-urlencoded",
		strings.NewReader("value=x"))
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestFieldEditWithoutTemplate(t *testing.T) {
	ts, _ := newTestServer(t)

	res, err := ts.Client().Post(ts.URL+"/fields/Name",
		"application/x-www-form-urlencoded",
		strings.NewReader("value=x"))
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusConflict, res.StatusCode)
}

func TestPreviewStreamsImage(t *testing.T) {
	ts, service := newTestServer(t)
	uploadTemplate(t, ts, "badge.label", sampleMarkup)
	service.Opened[0].PreviewPNG = []byte{0x89, 'P', 'N', 'G'}

	res, err := ts.Client().Get(ts.URL + "/preview")
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "image/png", res.Header.Get("Content-Type"))
	assert.Equal(t, "\x89PNG", readBody(t, res))
}

func TestPreviewWithoutTemplate(t *testing.T) {
	ts, _ := newTestServer(t)

	res, err := ts.Client().Get(ts.URL + "/preview")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusConflict, res.StatusCode)
}

func TestPrintValidationErrorsRenderInline(t *testing.T) {
	ts, service := newTestServer(t)
	uploadTemplate(t, ts, "badge.label", sampleMarkup)
	doc := service.Opened[0]

	res, err := ts.Client().PostForm(ts.URL+"/print", url.Values{
		"printer": {"LabelWriter 450"},
		"copies":  {"0"},
	})
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
	assert.Contains(t, readBody(t, res), "positive integer")
	assert.Empty(t, doc.PrintCalls)
}

func TestPrintSuccessShowsReceipt(t *testing.T) {
	ts, service := newTestServer(t)
	uploadTemplate(t, ts, "badge.label", sampleMarkup)
	doc := service.Opened[0]

	res, err := ts.Client().PostForm(ts.URL+"/print", url.Values{
		"printer": {"LabelWriter 450"},
		"copies":  {"2"},
	})
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, readBody(t, res), "Sent 2 copies to LabelWriter 450")
	require.Len(t, doc.PrintCalls, 1)
	assert.Contains(t, doc.PrintCalls[0].Params, "<Copies>2</Copies>")
}

func TestPrintersEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	res, err := ts.Client().Get(ts.URL + "/printers")
	require.NoError(t, err)
	defer res.Body.Close()

	var body struct {
		Printers []struct{ Name string }
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	require.Len(t, body.Printers, 1)
	assert.Equal(t, "LabelWriter 450", body.Printers[0].Name)
}

func TestStatusEndpoint(t *testing.T) {
	ts, service := newTestServer(t)

	res, err := ts.Client().Get(ts.URL + "/status")
	require.NoError(t, err)
	var body map[string]string
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	res.Body.Close()
	assert.Equal(t, "connected", body["status"])

	service.Env.ServicePresent = false
	res, err = ts.Client().Get(ts.URL + "/status")
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	res.Body.Close()
	assert.Equal(t, "disconnected", body["status"])
}
