package invoice

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
	"github.com/go-faster/errors"
)

var ErrUnsupportedFormat = errors.New("unsupported invoice file format")

// DecodeXML maps an XML document onto an Invoice:
//
//	<invoice>
//	  <supplier><name>ACME</name>...</supplier>
//	  <items>
//	    <item><item>Widget</item><quantity>2</quantity>...</item>
//	  </items>
//	</invoice>
//
// Elements with children become mappings, leaves become strings. The items
// element, and any element marked array="true", becomes a sequence of its
// children whatever their tag.
func DecodeXML(data []byte) (Invoice, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, errors.Wrap(err, "parse invoice XML")
	}
	root := doc.Root()
	if root == nil {
		return nil, errors.New("invoice XML has no root element")
	}
	obj, ok := xmlValue(root).(map[string]any)
	if !ok {
		return nil, errors.Errorf("invoice XML root <%s> has no child elements", root.Tag)
	}
	return Invoice(obj), nil
}

func xmlValue(el *etree.Element) any {
	children := el.ChildElements()
	if isXMLArray(el) {
		arr := make([]any, 0, len(children))
		for _, c := range children {
			arr = append(arr, xmlValue(c))
		}
		return arr
	}
	if len(children) == 0 {
		return strings.TrimSpace(el.Text())
	}
	obj := make(map[string]any, len(children))
	for _, c := range children {
		obj[c.Tag] = xmlValue(c)
	}
	return obj
}

func isXMLArray(el *etree.Element) bool {
	if v := el.SelectAttrValue("array", ""); v != "" {
		return v == "true"
	}
	return el.Tag == KeyItems
}

// Load reads an invoice from a .json or .xml file.
func Load(path string) (Invoice, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read invoice file")
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return DecodeJSON(data)
	case ".xml":
		return DecodeXML(data)
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%q", filepath.Ext(path))
	}
}
