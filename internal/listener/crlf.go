package listener

import (
	"bytes"
	"io"
)

// crlfReadWriter normalizes line endings for terminal protocols. Reads turn
// \r\n, telnet's \r\x00 and bare \r into \n, writes turn \n into \r\n.
type crlfReadWriter struct {
	rw io.ReadWriter

	// a \r ended the previous read; a leading \n in this one is its pair.
	pendingCR bool
}

func newCRLFReadWriter(rw io.ReadWriter) io.ReadWriter {
	return &crlfReadWriter{rw: rw}
}

func (c *crlfReadWriter) Read(p []byte) (int, error) {
	for {
		n, err := c.rw.Read(p)
		if n == 0 {
			return 0, err
		}

		data := bytes.ReplaceAll(p[:n], []byte{0}, nil)
		if c.pendingCR && len(data) > 0 && data[0] == '\n' {
			data = data[1:]
		}
		c.pendingCR = len(data) > 0 && data[len(data)-1] == '\r'

		data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
		data = bytes.ReplaceAll(data, []byte("\r"), []byte("\n"))
		n = copy(p, data)

		// A read holding only the second half of a split \r\n yields nothing.
		if n > 0 || err != nil {
			return n, err
		}
	}
}

func (c *crlfReadWriter) Write(p []byte) (int, error) {
	converted := bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))
	_, err := c.rw.Write(converted)
	// Report the caller's length, not the expanded one.
	return len(p), err
}
