package ocigenai

import (
	"bufio"
	"bytes"
	"io"
)

// sseDecoder reads server-sent events and yields each event's concatenated
// data payload. The inference service emits one JSON object per event.
type sseDecoder struct {
	r *bufio.Reader
}

func newSSEDecoder(r io.Reader) *sseDecoder {
	return &sseDecoder{r: bufio.NewReaderSize(r, 64*1024)}
}

// Next returns the data payload of the next event, or io.EOF when the
// connection closes cleanly between events. Multiple data: lines within
// one event are joined with '\n' per the SSE spec.
func (d *sseDecoder) Next() ([]byte, error) {
	var data [][]byte
	for {
		line, err := d.r.ReadBytes('\n')
		line = bytes.TrimRight(line, "\r\n")

		if err != nil {
			if len(line) > 0 {
				data = appendSSEData(data, line)
			}
			if len(data) > 0 {
				return bytes.Join(data, []byte("\n")), nil
			}
			return nil, err
		}

		if len(line) == 0 {
			// Blank line terminates an event.
			if len(data) == 0 {
				continue
			}
			return bytes.Join(data, []byte("\n")), nil
		}
		if line[0] == ':' {
			continue
		}
		data = appendSSEData(data, line)
	}
}

func appendSSEData(dst [][]byte, line []byte) [][]byte {
	val, ok := bytes.CutPrefix(line, []byte("data:"))
	if !ok {
		// Non-data fields (event:, id:, retry:) are irrelevant here.
		return dst
	}
	if len(val) > 0 && val[0] == ' ' {
		val = val[1:]
	}
	return append(dst, append([]byte(nil), val...))
}
