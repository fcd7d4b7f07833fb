package dymo

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-labelform/pkg/labelsvc"
)

const sampleMarkup = `<DieCutLabel>
  <ObjectInfo>
    <TextObject>
      <Name>Name</Name>
      <StyledText><Element><String>Ada</String></Element></StyledText>
    </TextObject>
  </ObjectInfo>
</DieCutLabel>`

// fakeService records requests and replays canned responses per action.
type fakeService struct {
	mux      *http.ServeMux
	requests []*http.Request
	forms    []map[string]string
}

func newFakeService(t *testing.T) (*fakeService, *Client) {
	t.Helper()
	fake := &fakeService{mux: http.NewServeMux()}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		form := make(map[string]string)
		for key := range r.PostForm {
			form[key] = r.PostForm.Get(key)
		}
		fake.requests = append(fake.requests, r)
		fake.forms = append(fake.forms, form)
		fake.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)
	return fake, New(WithBaseURL(server.URL), WithHTTPClient(server.Client()))
}

func (f *fakeService) handle(action string, handler http.HandlerFunc) {
	f.mux.HandleFunc("/"+action, handler)
}

func respond(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}
}

func TestCheckEnvironment(t *testing.T) {
	fake, client := newFakeService(t)
	fake.handle("StatusConnected", respond("true"))

	env, err := client.CheckEnvironment(context.Background())
	require.NoError(t, err)
	assert.True(t, env.FrameworkPresent)
	assert.True(t, env.ServicePresent)
}

func TestCheckEnvironmentServiceDown(t *testing.T) {
	client := New(WithBaseURL("http://127.0.0.1:1"))

	env, err := client.CheckEnvironment(context.Background())
	require.ErrorIs(t, err, labelsvc.ErrServiceUnavailable)
	assert.True(t, env.FrameworkPresent)
	assert.False(t, env.ServicePresent)
}

func TestPrinters(t *testing.T) {
	fake, client := newFakeService(t)
	fake.handle("GetPrinters", respond(`<Printers>
  <LabelWriterPrinter>
    <Name>DYMO LabelWriter 450</Name>
    <IsConnected>True</IsConnected>
  </LabelWriterPrinter>
  <TapePrinter>
    <Name>DYMO LabelManager</Name>
    <IsConnected>False</IsConnected>
  </TapePrinter>
</Printers>`))

	printers, err := client.Printers(context.Background())
	require.NoError(t, err)
	require.Len(t, printers, 2)
	assert.Equal(t, labelsvc.Printer{Name: "DYMO LabelWriter 450", Type: "LabelWriterPrinter"}, printers[0])
	assert.Equal(t, labelsvc.Printer{Name: "DYMO LabelManager", Type: "TapePrinter"}, printers[1])
}

func TestOpenRejectsMalformedMarkup(t *testing.T) {
	_, client := newFakeService(t)

	_, err := client.Open(context.Background(), "this is not xml")
	require.ErrorIs(t, err, labelsvc.ErrParse)

	_, err = client.Open(context.Background(), "<DieCutLabel><Unclosed></DieCutLabel>")
	require.ErrorIs(t, err, labelsvc.ErrParse)
}

func TestDocumentFieldStateIsLocal(t *testing.T) {
	_, client := newFakeService(t)

	doc, err := client.Open(context.Background(), sampleMarkup)
	require.NoError(t, err)

	assert.Equal(t, []string{"Name"}, doc.FieldNames())
	value, err := doc.FieldText("Name")
	require.NoError(t, err)
	assert.Equal(t, "Ada", value)

	require.NoError(t, doc.SetFieldText("Name", "Grace"))
	value, err = doc.FieldText("Name")
	require.NoError(t, err)
	assert.Equal(t, "Grace", value)

	_, err = doc.FieldText("Nope")
	require.ErrorIs(t, err, labelsvc.ErrFieldNotFound)
	require.ErrorIs(t, doc.SetFieldText("Nope", "x"), labelsvc.ErrFieldNotFound)
}

func TestRenderPreviewSubmitsEditsAndDecodes(t *testing.T) {
	fake, client := newFakeService(t)
	png := []byte{0x89, 'P', 'N', 'G'}
	fake.handle("RenderLabel", respond(`"`+base64.StdEncoding.EncodeToString(png)+`"`))

	doc, err := client.Open(context.Background(), sampleMarkup)
	require.NoError(t, err)
	require.NoError(t, doc.SetFieldText("Name", "Grace"))

	image, err := doc.RenderPreview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, png, image)

	require.Len(t, fake.forms, 1)
	form := fake.forms[0]
	assert.Contains(t, form["labelXml"], "<DieCutLabel>")
	assert.Contains(t, form["labelSetXml"], "Grace")
}

func TestPrintSubmission(t *testing.T) {
	fake, client := newFakeService(t)
	fake.handle("PrintLabel", respond("true"))

	doc, err := client.Open(context.Background(), sampleMarkup)
	require.NoError(t, err)

	params := labelsvc.PrintParamsXML(2)
	labelSet := labelsvc.LabelSetXML([]labelsvc.FieldValue{{Name: "Name", Value: "Grace"}})
	require.NoError(t, doc.Print(context.Background(), "DYMO LabelWriter 450", params, labelSet))

	require.Len(t, fake.forms, 1)
	form := fake.forms[0]
	assert.Equal(t, "DYMO LabelWriter 450", form["printerName"])
	assert.Contains(t, form["printParamsXml"], "<Copies>2</Copies>")
	assert.Contains(t, form["labelSetXml"], "Grace")
}

func TestPrintRejection(t *testing.T) {
	fake, client := newFakeService(t)
	fake.handle("PrintLabel", respond("false"))

	doc, err := client.Open(context.Background(), sampleMarkup)
	require.NoError(t, err)

	err = doc.Print(context.Background(), "DYMO LabelWriter 450", labelsvc.PrintParamsXML(1), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rejected")
}

func TestServerErrorSurfacesStatus(t *testing.T) {
	fake, client := newFakeService(t)
	fake.handle("GetPrinters", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := client.Printers(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}
