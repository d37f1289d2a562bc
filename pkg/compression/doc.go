// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package compression decodes compressed HTTP response bodies.

The Digipost client advertises gzip and deflate support and decodes
responses according to their Content-Encoding header:

	body, err := compression.NewReader(resp.Header.Get("Content-Encoding"), resp.Body)

Unknown or identity encodings pass the body through untouched.

# References

  - GZIP RFC 1952: https://datatracker.ietf.org/doc/html/rfc1952
  - DEFLATE (zlib) RFC 1950: https://datatracker.ietf.org/doc/html/rfc1950
*/
package compression
