package deppkg

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"os"

	"github.com/SShadowS/al-call-hierarchy/internal/callgraph"
)

// navxHeaderSize is the size of the NAVX header prepended to .app files
// before the ZIP archive proper begins.
const navxHeaderSize = 40

// AppMetadata is the App element's attributes from NavxManifest.xml.
type AppMetadata struct {
	ID        string
	Name      string
	Publisher string
	Version   string
}

// ExternalMethod is a single method name on an external object.
type ExternalMethod struct {
	Name string
}

// ExternalObject is one object (codeunit, table, ...) exported by a
// dependency package.
type ExternalObject struct {
	Name       string
	ObjectKind callgraph.ObjectKind
	Methods    []ExternalMethod
}

// Package is the parsed contents of a single .app file.
type Package struct {
	Metadata AppMetadata
	Objects  []ExternalObject
}

type manifestApp struct {
	ID        string `xml:"Id,attr"`
	Name      string `xml:"Name,attr"`
	Publisher string `xml:"Publisher,attr"`
	Version   string `xml:"Version,attr"`
}

// manifestDoc matches NavxManifest.xml loosely enough to find the nested
// App element regardless of its exact ancestor chain.
type manifestDoc struct {
	XMLName xml.Name
	Apps    []manifestApp `xml:"App"`
	// App elements can be nested under a Packages/Package/App chain; walk
	// generic children to find one if the direct match above is empty.
	Inner []manifestDoc `xml:",any"`
}

func (d *manifestDoc) findApp() (manifestApp, bool) {
	if len(d.Apps) > 0 {
		return d.Apps[0], true
	}
	for _, inner := range d.Inner {
		if a, ok := inner.findApp(); ok {
			return a, true
		}
	}
	return manifestApp{}, false
}

// symbolReference mirrors SymbolReference.json's 14 PascalCase object
// arrays.
type symbolReference struct {
	Tables                    []symbolObject `json:"Tables"`
	Codeunits                 []symbolObject `json:"Codeunits"`
	Pages                     []symbolObject `json:"Pages"`
	Reports                   []symbolObject `json:"Reports"`
	Queries                   []symbolObject `json:"Queries"`
	XmlPorts                  []symbolObject `json:"XmlPorts"`
	Interfaces                []symbolObject `json:"Interfaces"`
	EnumTypes                 []symbolObject `json:"EnumTypes"`
	ControlAddIns             []symbolObject `json:"ControlAddIns"`
	PageExtensions            []symbolObject `json:"PageExtensions"`
	TableExtensions           []symbolObject `json:"TableExtensions"`
	EnumExtensionTypes        []symbolObject `json:"EnumExtensionTypes"`
	PermissionSets            []symbolObject `json:"PermissionSets"`
	PermissionSetExtensions   []symbolObject `json:"PermissionSetExtensions"`
}

type symbolObject struct {
	Name    string         `json:"Name"`
	Methods []symbolMethod `json:"Methods"`
}

type symbolMethod struct {
	Name string `json:"Name"`
}

// Extract opens path, skips its 40-byte NAVX header, and parses the
// resulting ZIP archive's NavxManifest.xml and SymbolReference.json.
//
// archive/zip and encoding/xml are used here with no ecosystem substitute:
// none of the example repos vendor a ZIP or XML library (bufbuild-buf's
// klauspost/pgzip is a gzip codec, not a ZIP reader; no example imports an
// XML parser).
func Extract(path string) (Package, error) {
	f, err := os.Open(path)
	if err != nil {
		return Package{}, fmt.Errorf("deppkg: open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Package{}, fmt.Errorf("deppkg: stat %s: %w", path, err)
	}

	archive, err := zip.NewReader(io.NewSectionReader(f, navxHeaderSize, info.Size()-navxHeaderSize), info.Size()-navxHeaderSize)
	if err != nil {
		return Package{}, fmt.Errorf("deppkg: %s is not a valid app package: %w", path, err)
	}

	metadata, err := parseManifest(archive)
	if err != nil {
		return Package{}, err
	}
	objects, err := parseSymbols(archive)
	if err != nil {
		return Package{}, err
	}

	return Package{Metadata: metadata, Objects: objects}, nil
}

func parseManifest(archive *zip.Reader) (AppMetadata, error) {
	f, err := archive.Open("NavxManifest.xml")
	if err != nil {
		return AppMetadata{}, fmt.Errorf("deppkg: NavxManifest.xml not found: %w", err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return AppMetadata{}, fmt.Errorf("deppkg: read NavxManifest.xml: %w", err)
	}

	var doc manifestDoc
	if err := xml.Unmarshal(content, &doc); err != nil {
		return AppMetadata{}, fmt.Errorf("deppkg: parse NavxManifest.xml: %w", err)
	}
	app, ok := doc.findApp()
	if !ok {
		return AppMetadata{}, fmt.Errorf("deppkg: App element not found in NavxManifest.xml")
	}
	return AppMetadata{ID: app.ID, Name: app.Name, Publisher: app.Publisher, Version: app.Version}, nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func parseSymbols(archive *zip.Reader) ([]ExternalObject, error) {
	f, err := archive.Open("SymbolReference.json")
	if err != nil {
		return nil, fmt.Errorf("deppkg: SymbolReference.json not found: %w", err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("deppkg: read SymbolReference.json: %w", err)
	}
	content = bytes.TrimPrefix(content, utf8BOM)

	// The JSON may have null-byte padding after the real content; decode
	// only the first value instead of unmarshalling the whole buffer.
	dec := json.NewDecoder(bytes.NewReader(content))
	var symbols symbolReference
	if err := dec.Decode(&symbols); err != nil {
		return nil, fmt.Errorf("deppkg: parse SymbolReference.json: %w", err)
	}

	var objects []ExternalObject
	add := func(objs []symbolObject, kind callgraph.ObjectKind) {
		for _, o := range objs {
			methods := make([]ExternalMethod, 0, len(o.Methods))
			for _, m := range o.Methods {
				methods = append(methods, ExternalMethod{Name: m.Name})
			}
			objects = append(objects, ExternalObject{Name: o.Name, ObjectKind: kind, Methods: methods})
		}
	}

	add(symbols.Tables, callgraph.ObjectTable)
	add(symbols.Codeunits, callgraph.ObjectCodeunit)
	add(symbols.Pages, callgraph.ObjectPage)
	add(symbols.Reports, callgraph.ObjectReport)
	add(symbols.Queries, callgraph.ObjectQuery)
	add(symbols.XmlPorts, callgraph.ObjectXmlPort)
	add(symbols.Interfaces, callgraph.ObjectInterface)
	add(symbols.EnumTypes, callgraph.ObjectEnum)
	add(symbols.ControlAddIns, callgraph.ObjectControlAddIn)
	add(symbols.PageExtensions, callgraph.ObjectPageExtension)
	add(symbols.TableExtensions, callgraph.ObjectTableExtension)
	add(symbols.EnumExtensionTypes, callgraph.ObjectEnumExtension)
	add(symbols.PermissionSets, callgraph.ObjectPermissionSet)
	add(symbols.PermissionSetExtensions, callgraph.ObjectPermissionSetExtension)

	return objects, nil
}
