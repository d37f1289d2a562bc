// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package transport implements the HTTPS transport for the Digipost API.

Outbound requests pass through an ordered chain of middleware before
reaching the network. Each middleware takes the next send step and returns
a new one:

	type SendFunc func(*http.Request) (*http.Response, error)
	type Middleware func(next SendFunc) SendFunc

The chain is composed over an http.RoundTripper, so it plugs into any
*http.Client:

	rt := transport.Chain(base,
	    metrics.Middleware(),
	    transport.Authenticate(authConfig),
	    transport.Logging(logger, true),
	    transport.Decompress(),
	)

The first middleware listed is the outermost.

# Authentication

[Authenticate] signs every request. It sets X-Digipost-UserId, Date,
Accept and User-Agent, hashes the body into X-Content-SHA256 when one is
present, and attaches X-Digipost-Signature computed over the canonical
string (see package signature).

Request bodies are read fully into memory before the first byte is sent,
since the content hash must cover the complete payload. Large uploads are
therefore materialized in memory.

# TLS Configuration

	config := transport.DefaultHTTPSConfig()
	// MinTLSVersion: TLS 1.2
	// MaxTLSVersion: TLS 1.3
	// Timeout: 30s
*/
package transport
