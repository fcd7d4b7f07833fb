// Package dymo talks to the DYMO Label web service, the local HTTP daemon
// that fronts the printing runtime. It implements the labelsvc contracts so
// the editor core never sees HTTP.
package dymo

import (
	"context"
	"crypto/tls"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-labelform/pkg/labelsvc"
)

// DefaultBaseURL is where the DYMO web service listens on every platform.
const DefaultBaseURL = "https://127.0.0.1:41951/DYMO/DLS/Printing"

const defaultTimeout = 10 * time.Second

// Option customises the client.
type Option func(*Client)

// WithBaseURL points the client at a different service endpoint.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) {
		if httpc != nil {
			c.httpc = httpc
		}
	}
}

// WithLogger overrides the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client is a thin HTTP wrapper over the web service actions.
type Client struct {
	baseURL string
	httpc   *http.Client
	logger  *slog.Logger
}

var _ labelsvc.Service = (*Client)(nil)

// New builds a client for the local web service. The service identifies
// itself with a self-signed loopback certificate, so the default transport
// skips verification; callers talking to anything else should supply their
// own HTTP client.
func New(options ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpc: &http.Client{
			Timeout: defaultTimeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
		logger: slog.Default(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Initialize probes the service once; it keeps no connection state.
func (c *Client) Initialize(ctx context.Context) error {
	_, err := c.connected(ctx)
	return err
}

// CheckEnvironment reports whether the web service is reachable and
// answering. The framework itself is this client, so FrameworkPresent tracks
// construction, not the probe.
func (c *Client) CheckEnvironment(ctx context.Context) (labelsvc.Environment, error) {
	ok, err := c.connected(ctx)
	if err != nil {
		return labelsvc.Environment{FrameworkPresent: true}, err
	}
	return labelsvc.Environment{FrameworkPresent: true, ServicePresent: ok}, nil
}

// Printers enumerates the printers the service knows about.
func (c *Client) Printers(ctx context.Context) ([]labelsvc.Printer, error) {
	body, err := c.get(ctx, "GetPrinters")
	if err != nil {
		return nil, err
	}

	var envelope struct {
		LabelWriters []printerEntry `xml:"LabelWriterPrinter"`
		TapePrinters []printerEntry `xml:"TapePrinter"`
	}
	if err := xml.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("dymo: decode printer list: %w", err)
	}

	var printers []labelsvc.Printer
	for _, entry := range envelope.LabelWriters {
		printers = append(printers, labelsvc.Printer{Name: entry.Name, Type: "LabelWriterPrinter"})
	}
	for _, entry := range envelope.TapePrinters {
		printers = append(printers, labelsvc.Printer{Name: entry.Name, Type: "TapePrinter"})
	}
	return printers, nil
}

type printerEntry struct {
	Name        string `xml:"Name"`
	IsConnected string `xml:"IsConnected"`
}

// Open validates the markup is well-formed XML and hands back a document
// whose field state lives client-side; the service only sees the markup
// again at preview and print time.
func (c *Client) Open(ctx context.Context, raw string) (labelsvc.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := wellFormed(raw); err != nil {
		return nil, fmt.Errorf("dymo: %w: %v", labelsvc.ErrParse, err)
	}
	return newDocument(c, raw), nil
}

func (c *Client) connected(ctx context.Context) (bool, error) {
	body, err := c.get(ctx, "StatusConnected")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(string(body)) == "true", nil
}

func (c *Client) get(ctx context.Context, action string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+action, nil)
	if err != nil {
		return nil, fmt.Errorf("dymo: build request: %w", err)
	}
	return c.do(req, action)
}

func (c *Client) postForm(ctx context.Context, action string, values url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+action,
		strings.NewReader(values.Encode()))
	if err != nil {
		return nil, fmt.Errorf("dymo: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, action)
}

func (c *Client) do(req *http.Request, action string) ([]byte, error) {
	res, err := c.httpc.Do(req)
	if err != nil {
		c.logger.Debug("dymo: request failed", "action", action, "error", err)
		return nil, fmt.Errorf("dymo: %s: %w: %v", action, labelsvc.ErrServiceUnavailable, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("dymo: %s: read response: %w", action, err)
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dymo: %s: service returned %s: %s",
			action, res.Status, strings.TrimSpace(string(body)))
	}
	return body, nil
}

// wellFormed runs the markup through an XML decoder without retaining it.
func wellFormed(raw string) error {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	seen := false
	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if _, ok := token.(xml.StartElement); ok {
			seen = true
		}
	}
	if !seen {
		return errors.New("no elements")
	}
	return nil
}
