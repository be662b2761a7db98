// Package pdfw is the low-level PDF object/stream writer: object
// allocation, xref/trailer emission, and the handful of dict/stream
// shapes the Paginator & Renderer assembles a document out of (§6
// Output: PDF >= 1.7, Catalog/Pages tree, Type0 composite fonts with
// ToUnicode CMaps, DCTDecode/FlateDecode image XObjects, URI link
// annotations, flate-compressed content streams). Grounded on the
// object/xref/trailer writer pattern shared by the pack's PDF
// generators (cogentcore/core paint/pdf) and the font/CID-embedding
// shape of andybalholm/pdf.
package pdfw

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"sort"

	"go.uber.org/zap"

	"docxpdf/internal/docxerr"
)

// Ref is a forward-declarable indirect object reference. Callers reserve
// one with NextRef before they know an object's final contents (e.g. a
// page needs its Pages-tree parent ref before the tree itself is
// assembled).
type Ref int

// Name is a PDF name token, written as "/Name".
type Name string

// Array is an ordered PDF array.
type Array []interface{}

// Dict is a PDF dictionary. Keys are written in sorted order so output
// is deterministic (useful for diffing test fixtures).
type Dict map[Name]interface{}

// Stream pairs a dict with its raw (pre-filter) byte payload. Writer
// applies dict["Filter"] during emission and fills in /Length itself.
type Stream struct {
	Dict    Dict
	Raw     []byte
	NoFlate bool // true for already-compressed payloads (e.g. raw JPEG bytes for DCTDecode)
}

// Writer assembles one PDF file. Object ids are a monotonic counter
// local to the call (§5 Resource discipline: "no leak across calls").
type Writer struct {
	w       io.Writer
	pos     int
	err     error
	offsets []int // offsets[i] is object (i+1)'s byte offset; filled lazily via Put
	log     *zap.Logger
}

// New starts a Writer, emitting the PDF header immediately.
func New(w io.Writer, log *zap.Logger) *Writer {
	pw := &Writer{w: w, log: log}
	pw.write("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")
	return pw
}

// NextRef reserves the next object number without writing anything.
func (w *Writer) NextRef() Ref {
	w.offsets = append(w.offsets, -1)
	return Ref(len(w.offsets))
}

func (w *Writer) write(s string) {
	if w.err != nil {
		return
	}
	n, err := io.WriteString(w.w, s)
	w.pos += n
	w.err = err
}

func (w *Writer) writeBytes(b []byte) {
	if w.err != nil {
		return
	}
	n, err := w.w.Write(b)
	w.pos += n
	w.err = err
}

// Put writes val as the body of ref, which must have come from NextRef
// on this Writer and not have been written yet.
func (w *Writer) Put(ref Ref, val interface{}) {
	if int(ref) < 1 || int(ref) > len(w.offsets) {
		panic("pdfw: Put with unknown ref")
	}
	w.offsets[ref-1] = w.pos
	w.write(fmt.Sprintf("%d 0 obj\n", ref))
	w.writeVal(val)
	w.write("\nendobj\n")
}

// PutStream writes ref as a stream object, flate-compressing Raw unless
// NoFlate is set (DCTDecode JPEG passthrough is already compressed).
func (w *Writer) PutStream(ref Ref, s Stream) {
	body := s.Raw
	if !s.NoFlate {
		var buf bytes.Buffer
		zw := zlib.NewWriter(&buf)
		zw.Write(s.Raw)
		zw.Close()
		body = buf.Bytes()
		s.Dict = addFilter(s.Dict, "FlateDecode")
	}
	if s.Dict == nil {
		s.Dict = Dict{}
	}
	s.Dict["Length"] = len(body)

	w.offsets[ref-1] = w.pos
	w.write(fmt.Sprintf("%d 0 obj\n", ref))
	w.writeVal(s.Dict)
	w.write("\nstream\n")
	w.writeBytes(body)
	w.write("\nendstream\nendobj\n")
}

func addFilter(d Dict, filter Name) Dict {
	if d == nil {
		d = Dict{}
	}
	switch existing := d["Filter"].(type) {
	case nil:
		d["Filter"] = filter
	case Name:
		d["Filter"] = Array{filter, existing}
	case Array:
		d["Filter"] = append(Array{filter}, existing...)
	}
	return d
}

func (w *Writer) writeVal(v interface{}) {
	switch t := v.(type) {
	case nil:
		w.write("null")
	case bool:
		if t {
			w.write("true")
		} else {
			w.write("false")
		}
	case int:
		w.write(fmt.Sprintf("%d", t))
	case float64:
		w.write(trimFloat(t))
	case string:
		w.write("(" + escapeString(t) + ")")
	case Name:
		w.write("/" + string(t))
	case Ref:
		w.write(fmt.Sprintf("%d 0 R", t))
	case Array:
		w.write("[")
		for i, e := range t {
			if i > 0 {
				w.write(" ")
			}
			w.writeVal(e)
		}
		w.write("]")
	case Dict:
		w.write("<<")
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, string(k))
		}
		sort.Strings(keys)
		for _, k := range keys {
			w.write("/" + k + " ")
			w.writeVal(t[Name(k)])
		}
		w.write(">>")
	default:
		panic(fmt.Sprintf("pdfw: unsupported value type %T", v))
	}
}

func trimFloat(f float64) string {
	s := fmt.Sprintf("%.3f", f)
	// Trim trailing zeros (but keep at least one digit after '.').
	i := len(s)
	for i > 0 && s[i-1] == '0' {
		i--
	}
	if i > 0 && s[i-1] == '.' {
		i++ // keep one zero: "12.000" -> "12.0"
	}
	return s[:i]
}

func escapeString(s string) string {
	var b bytes.Buffer
	for _, r := range s {
		switch r {
		case '(', ')', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\r':
			b.WriteString("\\r")
		case '\n':
			b.WriteString("\\n")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Close writes the xref table and trailer and returns the underlying
// write error, if any, wrapped as a docxerr.Pdf failure.
func (w *Writer) Close(root, info Ref) error {
	if w.err != nil {
		return docxerr.New(docxerr.Pdf, w.err)
	}
	xrefPos := w.pos
	w.write(fmt.Sprintf("xref\n0 %d\n0000000000 65535 f \n", len(w.offsets)+1))
	for _, off := range w.offsets {
		if off < 0 {
			off = 0
		}
		w.write(fmt.Sprintf("%010d 00000 n \n", off))
	}
	w.write("trailer\n")
	w.writeVal(Dict{
		"Size": len(w.offsets) + 1,
		"Root": root,
		"Info": info,
	})
	w.write(fmt.Sprintf("\nstartxref\n%d\n%%%%EOF\n", xrefPos))
	if w.err != nil {
		return docxerr.New(docxerr.Pdf, w.err)
	}
	return nil
}
