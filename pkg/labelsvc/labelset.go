package labelsvc

import (
	"encoding/xml"
	"strings"
)

// FieldValue is one name/value pair destined for a label-set record.
type FieldValue struct {
	Name  string
	Value string
}

type printParams struct {
	XMLName xml.Name `xml:"LabelWriterPrintParams"`
	Copies  int      `xml:"Copies"`
}

type objectData struct {
	Name  string `xml:"Name,attr"`
	Value string `xml:",chardata"`
}

type labelRecord struct {
	Objects []objectData `xml:"ObjectData"`
}

type labelSet struct {
	XMLName xml.Name      `xml:"LabelSet"`
	Records []labelRecord `xml:"LabelRecord"`
}

// PrintParamsXML builds the print-parameter markup for a job with the given
// copy count.
func PrintParamsXML(copies int) string {
	if copies < 1 {
		copies = 1
	}
	out, err := xml.Marshal(printParams{Copies: copies})
	if err != nil {
		return ""
	}
	return string(out)
}

// LabelSetXML builds a single-record label set carrying the supplied field
// values. Field order is preserved so the payload is reproducible.
func LabelSetXML(values []FieldValue) string {
	record := labelRecord{Objects: make([]objectData, 0, len(values))}
	for _, value := range values {
		name := strings.TrimSpace(value.Name)
		if name == "" {
			continue
		}
		record.Objects = append(record.Objects, objectData{Name: name, Value: value.Value})
	}
	out, err := xml.Marshal(labelSet{Records: []labelRecord{record}})
	if err != nil {
		return ""
	}
	return string(out)
}
