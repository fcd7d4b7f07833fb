package dymo

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"

	"github.com/goliatone/go-labelform/internal/markup"
	"github.com/goliatone/go-labelform/pkg/labelsvc"
)

// document holds the template markup plus client-side field state. The web
// service exposes no per-field accessors, so reads and writes resolve
// locally and edits travel to the service inside the label set XML.
type document struct {
	client *Client
	raw    string

	mu    sync.Mutex
	names []string
	texts map[string]string
}

var _ labelsvc.Document = (*document)(nil)

func newDocument(client *Client, raw string) *document {
	doc := &document{
		client: client,
		raw:    raw,
		texts:  make(map[string]string),
	}
	for _, def := range markup.ExtractFields(raw) {
		doc.names = append(doc.names, def.Name)
		doc.texts[def.Name] = def.Text
	}
	return doc
}

func (d *document) FieldNames() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.names...)
}

func (d *document) FieldText(name string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	value, ok := d.texts[name]
	if !ok {
		return "", fmt.Errorf("dymo: %q: %w", name, labelsvc.ErrFieldNotFound)
	}
	return value, nil
}

func (d *document) SetFieldText(name, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.texts[name]; !ok {
		return fmt.Errorf("dymo: %q: %w", name, labelsvc.ErrFieldNotFound)
	}
	d.texts[name] = value
	return nil
}

// RenderPreview asks the service to raster the label with the current field
// values applied. The service answers with a JSON-quoted base64 PNG.
func (d *document) RenderPreview(ctx context.Context) ([]byte, error) {
	body, err := d.client.postForm(ctx, "RenderLabel", url.Values{
		"labelXml":        {d.raw},
		"renderParamsXml": {""},
		"printerName":     {""},
		"labelSetXml":     {labelsvc.LabelSetXML(d.values())},
	})
	if err != nil {
		return nil, err
	}

	var encoded string
	if err := json.Unmarshal(body, &encoded); err != nil {
		// Some service builds answer with the bare base64 payload.
		encoded = string(body)
	}
	image, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("dymo: decode preview image: %w", err)
	}
	return image, nil
}

func (d *document) Print(ctx context.Context, printer, params, labelSet string) error {
	body, err := d.client.postForm(ctx, "PrintLabel", url.Values{
		"printerName":    {printer},
		"printParamsXml": {params},
		"labelXml":       {d.raw},
		"labelSetXml":    {labelSet},
	})
	if err != nil {
		return err
	}
	if string(body) != "true" {
		return fmt.Errorf("dymo: print rejected: %s", body)
	}
	return nil
}

func (d *document) values() []labelsvc.FieldValue {
	d.mu.Lock()
	defer d.mu.Unlock()
	values := make([]labelsvc.FieldValue, 0, len(d.names))
	for _, name := range d.names {
		values = append(values, labelsvc.FieldValue{Name: name, Value: d.texts[name]})
	}
	return values
}
