package docio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
	"gopkg.in/yaml.v3"

	"github.com/specialistvlad/nifconv/internal/document"
)

// CompressedSuffix marks a zstd-wrapped document file.
const CompressedSuffix = ".zst"

var (
	ErrMalformed      = errors.New("malformed document")
	ErrUnknownVersion = errors.New("unknown document version")
)

// IsCompressed reports whether a file name carries the zstd suffix.
func IsCompressed(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), CompressedSuffix)
}

// Decode reads a YAML document. The version tag selects the schema.
func Decode(r io.Reader) (*document.Arena, error) {
	var f wireFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	schema := document.SchemaFor(f.Version)
	if schema == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVersion, f.Version)
	}

	blocks := make([]*document.Block, len(f.Blocks))
	for i, wb := range f.Blocks {
		if wb.Type == "" {
			return nil, fmt.Errorf("%w: block %d has no type", ErrMalformed, i)
		}
		b := &document.Block{Type: wb.Type, Fields: make([]document.Field, 0, len(wb.Fields))}
		for _, wf := range wb.Fields {
			if wf.Name == "" {
				return nil, fmt.Errorf("%w: block %d has an unnamed field", ErrMalformed, i)
			}
			v, err := fromWire(wf)
			if err != nil {
				return nil, fmt.Errorf("block %d field %q: %w", i, wf.Name, err)
			}
			b.Fields = append(b.Fields, document.F(wf.Name, v))
		}
		blocks[i] = b
	}
	for i, b := range blocks {
		for _, l := range b.Links() {
			if l.Target >= len(blocks) {
				return nil, fmt.Errorf("%w: block %d field %q links to %d of %d blocks",
					ErrMalformed, i, l.Path, l.Target, len(blocks))
			}
		}
	}
	return document.FromBlocks(f.Version, schema, blocks), nil
}

// Encode writes doc as YAML.
func Encode(w io.Writer, doc document.Reader) error {
	f := wireFile{Version: doc.Version(), Blocks: make([]wireBlock, doc.BlockCount())}
	for id := range f.Blocks {
		b, err := doc.Block(id)
		if err != nil {
			return err
		}
		wb := wireBlock{Type: b.Type}
		for _, field := range b.Fields {
			wf, err := toWire(field.Name, field.Value)
			if err != nil {
				return fmt.Errorf("block %d field %q: %w", id, field.Name, err)
			}
			wb.Fields = append(wb.Fields, wf)
		}
		f.Blocks[id] = wb
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&f); err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	return enc.Close()
}

// Unmarshal decodes raw file contents, decompressing them first when name
// carries the zstd suffix.
func Unmarshal(name string, raw []byte) (*document.Arena, error) {
	if !IsCompressed(name) {
		return Decode(bytes.NewReader(raw))
	}
	dec, err := zstd.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	defer dec.Close()
	return Decode(dec)
}

// Marshal encodes doc for a file called name.
func Marshal(name string, doc document.Reader) ([]byte, error) {
	var buf bytes.Buffer
	if !IsCompressed(name) {
		if err := Encode(&buf, doc); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	enc, err := zstd.NewWriter(&buf)
	if err != nil {
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	if err := Encode(enc, doc); err != nil {
		enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("closing encoder: %w", err)
	}
	return buf.Bytes(), nil
}
