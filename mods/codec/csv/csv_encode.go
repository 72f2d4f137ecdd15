package csv

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"sync"
	"unicode/utf8"

	"github.com/chiragpatel1229/Virtual-CAN-HIL-System-with-AI-Based-Monitoring/mods/stream"
)

type Exporter struct {
	rownum int64

	writer *csv.Writer
	comma  rune

	output         stream.OutputStream
	showRownum     bool
	precision      int
	substituteNull string

	heading  bool
	colNames []string

	closeOnce sync.Once
}

func NewEncoder() *Exporter {
	return &Exporter{
		precision:      -1,
		substituteNull: "NULL",
	}
}

func (ex *Exporter) ContentType() string {
	return "text/csv; charset=utf-8"
}

func (ex *Exporter) SetOutputStream(o stream.OutputStream) {
	ex.output = o
}

func (ex *Exporter) SetPrecision(precision int) {
	ex.precision = precision
}

func (ex *Exporter) SetRownum(show bool) {
	ex.showRownum = show
}

func (ex *Exporter) SetHeader(show bool) {
	ex.heading = show
}

func (ex *Exporter) SetDelimiter(delimiter string) {
	delim, _ := utf8.DecodeRuneInString(delimiter)
	ex.comma = delim
}

func (ex *Exporter) SetColumns(labels ...string) {
	ex.colNames = labels
}

func (ex *Exporter) SetSubstituteNull(nullString string) {
	ex.substituteNull = nullString
}

func (ex *Exporter) Open() error {
	ex.writer = csv.NewWriter(ex.output)

	if ex.comma != 0 {
		ex.writer.Comma = ex.comma
	}

	if ex.heading {
		header := ex.colNames
		if ex.showRownum {
			header = append([]string{"ROWNUM"}, header...)
		}
		if err := ex.writer.Write(header); err != nil {
			return err
		}
	}
	return nil
}

func (ex *Exporter) AddRow(values []any) error {
	ex.rownum++

	cols := make([]string, len(values))
	for i, v := range values {
		cols[i] = ex.format(v)
	}
	if ex.showRownum {
		cols = append([]string{strconv.FormatInt(ex.rownum, 10)}, cols...)
	}
	return ex.writer.Write(cols)
}

func (ex *Exporter) format(v any) string {
	switch val := v.(type) {
	case nil:
		return ex.substituteNull
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint8:
		return strconv.FormatUint(uint64(val), 10)
	case uint16:
		return strconv.FormatUint(uint64(val), 10)
	case uint32:
		return strconv.FormatUint(uint64(val), 10)
	case float32:
		return ex.formatFloat(float64(val))
	case float64:
		return ex.formatFloat(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func (ex *Exporter) formatFloat(val float64) string {
	if ex.precision < 0 {
		return strconv.FormatFloat(val, 'f', -1, 64)
	}
	return strconv.FormatFloat(val, 'f', ex.precision, 64)
}

func (ex *Exporter) Flush() error {
	ex.writer.Flush()
	return ex.output.Flush()
}

func (ex *Exporter) Close() error {
	var err error
	ex.closeOnce.Do(func() {
		ex.writer.Flush()
		err = ex.output.Close()
	})
	return err
}
