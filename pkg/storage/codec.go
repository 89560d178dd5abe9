package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"fredcat/pkg/dataset"

	"github.com/parquet-go/parquet-go"
)

// Codec serializes a table to one file format.
type Codec interface {
	// Extension is the file suffix including the dot
	Extension() string
	Encode(w io.Writer, t *dataset.Table) error
	Decode(r io.ReaderAt, size int64) (*dataset.Table, error)
}

// CodecFor returns the codec for a format name ("csv" or "parquet").
func CodecFor(format string) (Codec, error) {
	switch strings.ToLower(format) {
	case "csv", "":
		return CSVCodec{}, nil
	case "parquet":
		return ParquetCodec{}, nil
	default:
		return nil, fmt.Errorf("unsupported storage format %q", format)
	}
}

// CSVCodec writes a header row followed by one line per record. There is no
// index column.
type CSVCodec struct{}

func (CSVCodec) Extension() string { return ".csv" }

func (CSVCodec) Encode(w io.Writer, t *dataset.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}

func (CSVCodec) Decode(r io.ReaderAt, size int64) (*dataset.Table, error) {
	cr := csv.NewReader(io.NewSectionReader(r, 0, size))

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return &dataset.Table{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	t := dataset.New(header...)
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv record: %w", err)
		}
		t.Rows = append(t.Rows, record)
	}
	return t, nil
}

// columnOrderKey stores the original column order in parquet metadata;
// parquet groups sort their fields by name.
const columnOrderKey = "fredcat.columns"

// ParquetCodec stores every column as a required UTF-8 string.
type ParquetCodec struct{}

func (ParquetCodec) Extension() string { return ".parquet" }

func (ParquetCodec) Encode(w io.Writer, t *dataset.Table) error {
	if len(t.Columns) == 0 {
		return errors.New("parquet: table has no columns")
	}

	group := parquet.Group{}
	for _, c := range t.Columns {
		group[c] = parquet.String()
	}
	schema := parquet.NewSchema("categories", group)

	// map table positions to leaf column indexes
	leaf := make([]int, len(t.Columns))
	for i, c := range t.Columns {
		for j, f := range schema.Fields() {
			if f.Name() == c {
				leaf[i] = j
				break
			}
		}
	}

	pw := parquet.NewWriter(w, schema,
		parquet.KeyValueMetadata(columnOrderKey, encodeNames(t.Columns)))

	rows := make([]parquet.Row, 0, len(t.Rows))
	for _, rec := range t.Rows {
		row := make(parquet.Row, len(t.Columns))
		for i, cell := range rec {
			row[leaf[i]] = parquet.ValueOf(cell).Level(0, 0, leaf[i])
		}
		rows = append(rows, row)
	}
	if _, err := pw.WriteRows(rows); err != nil {
		return fmt.Errorf("write parquet rows: %w", err)
	}
	return pw.Close()
}

func (ParquetCodec) Decode(r io.ReaderAt, size int64) (*dataset.Table, error) {
	file, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("open parquet file: %w", err)
	}

	fields := file.Schema().Fields()
	leafNames := make([]string, len(fields))
	for i, f := range fields {
		leafNames[i] = f.Name()
	}

	columns := leafNames
	if v, ok := file.Lookup(columnOrderKey); ok {
		if order, err := decodeNames(v); err == nil && len(order) == len(leafNames) {
			columns = order
		}
	}
	position := make(map[string]int, len(columns))
	for i, c := range columns {
		position[c] = i
	}
	toTable := make([]int, len(leafNames))
	for j, name := range leafNames {
		toTable[j] = position[name]
	}

	t := dataset.New(columns...)
	buf := make([]parquet.Row, 256)
	for _, rg := range file.RowGroups() {
		rows := rg.Rows()
		for {
			n, err := rows.ReadRows(buf)
			for _, row := range buf[:n] {
				rec := make([]string, len(columns))
				for _, v := range row {
					if v.IsNull() {
						continue
					}
					rec[toTable[v.Column()]] = string(v.ByteArray())
				}
				t.Rows = append(t.Rows, rec)
			}
			if err != nil {
				if errors.Is(err, io.EOF) {
					break
				}
				rows.Close()
				return nil, fmt.Errorf("read parquet rows: %w", err)
			}
			if n == 0 {
				break
			}
		}
		rows.Close()
	}
	return t, nil
}

// encodeNames joins names as one CSV line so commas in column names
// survive the metadata round trip.
func encodeNames(names []string) string {
	var b strings.Builder
	cw := csv.NewWriter(&b)
	_ = cw.Write(names)
	cw.Flush()
	return strings.TrimRight(b.String(), "\r\n")
}

func decodeNames(v string) ([]string, error) {
	return csv.NewReader(strings.NewReader(v)).Read()
}
