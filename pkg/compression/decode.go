package compression

import (
	"bufio"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"
	"strings"
)

const (
	// EncodingGzip is the gzip content coding
	EncodingGzip = "gzip"
	// EncodingDeflate is the deflate content coding
	EncodingDeflate = "deflate"
)

// AcceptEncoding is the Accept-Encoding value sent by the client.
const AcceptEncoding = EncodingGzip + ", " + EncodingDeflate

// Supported reports whether the content coding can be decoded.
func Supported(encoding string) bool {
	switch normalize(encoding) {
	case EncodingGzip, "x-gzip", EncodingDeflate:
		return true
	default:
		return false
	}
}

// NewReader wraps body with a decoder for the given content coding.
// Closing the returned reader closes body.
func NewReader(encoding string, body io.ReadCloser) (io.ReadCloser, error) {
	switch normalize(encoding) {
	case EncodingGzip, "x-gzip":
		zr, err := gzip.NewReader(body)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return &decodedBody{Reader: zr, decoder: zr, body: body}, nil
	case EncodingDeflate:
		return newDeflateReader(body)
	default:
		return body, nil
	}
}

// "deflate" is zlib-wrapped per RFC 9110 but some servers send raw DEFLATE.
func newDeflateReader(body io.ReadCloser) (io.ReadCloser, error) {
	br := bufio.NewReader(body)
	header, err := br.Peek(2)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read deflate header: %w", err)
	}

	if len(header) == 2 && isZlibHeader(header[0], header[1]) {
		zr, err := zlib.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to create zlib reader: %w", err)
		}
		return &decodedBody{Reader: zr, decoder: zr, body: body}, nil
	}

	fr := flate.NewReader(br)
	return &decodedBody{Reader: fr, decoder: fr, body: body}, nil
}

func isZlibHeader(cmf, flg byte) bool {
	return cmf&0x0f == 8 && (uint16(cmf)<<8|uint16(flg))%31 == 0
}

func normalize(encoding string) string {
	return strings.ToLower(strings.TrimSpace(encoding))
}

type decodedBody struct {
	io.Reader
	decoder io.Closer
	body    io.Closer
}

func (d *decodedBody) Close() error {
	derr := d.decoder.Close()
	if err := d.body.Close(); err != nil {
		return err
	}
	return derr
}
