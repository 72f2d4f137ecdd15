package csv_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/chiragpatel1229/Virtual-CAN-HIL-System-with-AI-Based-Monitoring/mods/codec/csv"
	"github.com/chiragpatel1229/Virtual-CAN-HIL-System-with-AI-Based-Monitoring/mods/stream"
	"github.com/stretchr/testify/require"
)

func TestCsvEncoder(t *testing.T) {
	enc := csv.NewEncoder()
	require.Equal(t, "text/csv; charset=utf-8", enc.ContentType())

	w := &bytes.Buffer{}
	out := &stream.WriterOutputStream{Writer: w}

	enc.SetOutputStream(out)
	enc.SetPrecision(3)
	enc.SetRownum(true)
	enc.SetColumns("col1", "col2", "col3", "col4")
	enc.SetHeader(true)
	err := enc.Open()
	require.Nil(t, err)

	enc.AddRow([]any{
		uint16(3700),
		float64(3.141592),
		"text some",
		true,
	})
	enc.AddRow([]any{
		int64(98765),
		float32(2.5),
		nil,
		false,
	})

	enc.Close()

	expects := []string{
		"ROWNUM,col1,col2,col3,col4",
		"1,3700,3.142,text some,true",
		"2,98765,2.500,NULL,false",
		"",
	}
	require.Equal(t, strings.Join(expects, "\n"), w.String())
}

func TestCsvEncoderDelimiter(t *testing.T) {
	enc := csv.NewEncoder()

	w := &bytes.Buffer{}
	enc.SetOutputStream(&stream.WriterOutputStream{Writer: w})
	enc.SetDelimiter("|")
	enc.SetColumns("a", "b")
	enc.SetHeader(true)
	require.Nil(t, enc.Open())

	enc.AddRow([]any{float64(1.5), uint8(25)})
	enc.Close()

	expects := []string{
		"a|b",
		"1.5|25",
		"",
	}
	require.Equal(t, strings.Join(expects, "\n"), w.String())
}
