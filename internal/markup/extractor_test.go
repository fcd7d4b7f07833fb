package markup

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sampleLabel = `<?xml version="1.0" encoding="utf-8"?>
<DieCutLabel Version="8.0" Units="twips">
  <PaperOrientation>Landscape</PaperOrientation>
  <ObjectInfo>
    <TextObject>
      <Name>Address</Name>
      <ForeColor Alpha="255" Red="0" Green="0" Blue="0" />
      <StyledText>
        <Element>
          <String>123 Main St</String>
        </Element>
      </StyledText>
    </TextObject>
  </ObjectInfo>
  <ObjectInfo>
    <ImageObject>
      <Name>Logo</Name>
      <Image>iVBORw0KGgo=</Image>
    </ImageObject>
  </ObjectInfo>
  <ObjectInfo>
    <BarcodeObject>
      <Name>Serial</Name>
      <Text>SN-0001</Text>
    </BarcodeObject>
  </ObjectInfo>
</DieCutLabel>`

func TestExtractFieldsDocumentOrder(t *testing.T) {
	t.Parallel()

	got := ExtractFields(sampleLabel)
	want := []FieldDef{
		{Name: "Address", Tag: "TextObject", Kind: KindText, Text: "123 Main St"},
		{Name: "Logo", Tag: "ImageObject", Kind: KindImage},
		{Name: "Serial", Tag: "BarcodeObject", Kind: KindText, Text: "SN-0001"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("extracted fields mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractFieldKindsClassification(t *testing.T) {
	t.Parallel()

	kinds := ExtractFieldKinds(sampleLabel)
	want := map[string]Kind{
		"Address": KindText,
		"Logo":    KindImage,
		"Serial":  KindText,
	}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Fatalf("kind map mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractFieldsLastDeclarationWins(t *testing.T) {
	t.Parallel()

	const doc = `<Label>
  <TextObject><Name>Field</Name><String>first</String></TextObject>
  <GraphicObject><Name>Field</Name></GraphicObject>
</Label>`

	got := ExtractFields(doc)
	if len(got) != 1 {
		t.Fatalf("expected a single definition, got %d", len(got))
	}
	if got[0].Kind != KindImage || got[0].Tag != "GraphicObject" {
		t.Fatalf("expected later declaration to win, got %+v", got[0])
	}
}

func TestExtractFieldsNestedObjects(t *testing.T) {
	t.Parallel()

	const doc = `<Label>
  <GroupObject>
    <Name>Outer</Name>
    <TextObject><Name>Inner</Name><String>hi</String></TextObject>
  </GroupObject>
</Label>`

	kinds := ExtractFieldKinds(doc)
	if _, ok := kinds["Outer"]; !ok {
		t.Fatalf("expected outer group field, got %v", kinds)
	}
	if _, ok := kinds["Inner"]; !ok {
		t.Fatalf("expected inner field attributed to the nested object, got %v", kinds)
	}
}

func TestExtractFieldsMalformedInput(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"truncated":   `<Label><TextObject><Name>Oops</Name>`,
		"garbage":     `not markup at all {{{`,
		"empty":       ``,
		"mismatched":  `<Label><TextObject></Label>`,
		"binaryish":   "\x00\x01\x02",
		"onlyprolog":  `<?xml version="1.0"?>`,
		"objectnoend": `<TextObject><Name>`,
	}

	for name, doc := range cases {
		doc := doc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if got := ExtractFieldKinds(doc); len(got) != 0 {
				t.Fatalf("expected empty mapping for malformed input, got %v", got)
			}
		})
	}
}

func TestExtractFieldsAnonymousObjectSkipped(t *testing.T) {
	t.Parallel()

	const doc = `<Label><TextObject><String>no name here</String></TextObject></Label>`
	if got := ExtractFields(doc); len(got) != 0 {
		t.Fatalf("expected unnamed objects to be skipped, got %v", got)
	}
}

func TestKindForVariants(t *testing.T) {
	t.Parallel()

	cases := []struct {
		tag  string
		want Kind
	}{
		{"TextObject", KindText},
		{"AddressObject", KindText},
		{"BarcodeObject", KindText},
		{"ImageObject", KindImage},
		{"GraphicObject", KindImage},
		{"QRCodeObject", KindText},
	}
	for _, tc := range cases {
		if got := KindFor(tc.tag); got != tc.want {
			t.Errorf("KindFor(%q) = %v, want %v", tc.tag, got, tc.want)
		}
	}
}
