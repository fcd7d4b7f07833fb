// Package markup extracts field definitions from raw label-template markup.
//
// The extractor is intentionally independent of the rendering service: the
// two template dialects expose field identity slightly differently through
// their APIs, and neither reports field kinds. The markup itself is the only
// reliable source for the text/image distinction, so it is scanned here with
// a plain token walk.
package markup

import (
	"encoding/xml"
	"io"
	"log/slog"
	"strings"
)

// Kind classifies a field for editing purposes. The markup distinguishes more
// specific object tags (address, barcode, graphic variants) but only the
// text/image split drives control shape.
type Kind int

const (
	KindText Kind = iota
	KindImage
)

func (k Kind) String() string {
	if k == KindImage {
		return "image"
	}
	return "text"
}

// objectSuffix marks element tags that declare a field, per the template
// format's convention (TextObject, AddressObject, ImageObject, ...).
const objectSuffix = "Object"

// FieldDef is one field declaration found in the markup, in document order.
type FieldDef struct {
	Name string
	Tag  string
	Kind Kind
	Text string
}

// KindFor classifies an object tag name.
func KindFor(tag string) Kind {
	if strings.Contains(tag, "Image") || strings.Contains(tag, "Graphic") {
		return KindImage
	}
	return KindText
}

// ExtractFields scans the markup for field declarations and returns them in
// document order. Duplicate names keep their original position but the later
// declaration's tag and text win. Extraction never fails: malformed input
// yields an empty result and a logged warning.
func ExtractFields(raw string) []FieldDef {
	var (
		out   []FieldDef
		index = map[string]int{}
		stack []*frame
	)

	decoder := xml.NewDecoder(strings.NewReader(raw))
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			slog.Warn("markup: field extraction abandoned on parse error", "error", err)
			return nil
		}

		switch t := token.(type) {
		case xml.StartElement:
			tag := t.Name.Local
			if strings.HasSuffix(tag, objectSuffix) {
				stack = append(stack, &frame{tag: tag})
				continue
			}
			if top := current(stack); top != nil {
				switch tag {
				case "Name":
					if !top.named {
						top.capture = captureName
					}
				case "String", "Text":
					top.capture = captureText
				}
			}
		case xml.CharData:
			if top := current(stack); top != nil {
				switch top.capture {
				case captureName:
					top.name += string(t)
				case captureText:
					top.text += string(t)
				}
			}
		case xml.EndElement:
			top := current(stack)
			if top == nil {
				continue
			}
			switch t.Name.Local {
			case top.tag:
				stack = stack[:len(stack)-1]
				if top.name == "" {
					continue
				}
				def := FieldDef{Name: top.name, Tag: top.tag, Kind: KindFor(top.tag), Text: top.text}
				if at, seen := index[top.name]; seen {
					out[at] = def
					continue
				}
				index[top.name] = len(out)
				out = append(out, def)
			case "Name":
				if top.capture == captureName {
					top.capture = captureNone
					top.named = true
				}
			case "String", "Text":
				if top.capture == captureText {
					top.capture = captureNone
				}
			}
		}
	}

	return out
}

// ExtractFieldKinds maps field names to kinds. See ExtractFields for the
// tolerance guarantees.
func ExtractFieldKinds(raw string) map[string]Kind {
	defs := ExtractFields(raw)
	out := make(map[string]Kind, len(defs))
	for _, def := range defs {
		out[def.Name] = def.Kind
	}
	return out
}

type captureMode int

const (
	captureNone captureMode = iota
	captureName
	captureText
)

// frame tracks one open *Object element; nested objects attribute their Name
// child to the innermost frame.
type frame struct {
	tag     string
	name    string
	text    string
	named   bool
	capture captureMode
}

func current(stack []*frame) *frame {
	if len(stack) == 0 {
		return nil
	}
	return stack[len(stack)-1]
}
