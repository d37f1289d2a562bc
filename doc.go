// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package godigipost is a Go client for the Digipost document delivery API.

# Overview

go-digipost lets a broker send documents to Digipost recipients and manage
the sender's inbox and archives. Every request is authenticated by signing
a canonical form of the request with the broker's enterprise certificate.

# Package Structure

The library is organized into the following packages:

	github.com/sirosfoundation/go-digipost/pkg/digipost    - API client and resource types
	github.com/sirosfoundation/go-digipost/pkg/signature   - Canonical string, content hash, RSA signer
	github.com/sirosfoundation/go-digipost/pkg/transport   - Signing, logging, metrics and decompression middleware
	github.com/sirosfoundation/go-digipost/pkg/response    - Response classification and decoding
	github.com/sirosfoundation/go-digipost/pkg/identity    - Broker certificates from PKCS#12, PEM or PKCS#11
	github.com/sirosfoundation/go-digipost/pkg/entrypoint  - Entrypoint parsing and caching
	github.com/sirosfoundation/go-digipost/pkg/mime        - multipart/mixed bodies
	github.com/sirosfoundation/go-digipost/pkg/compression - gzip and deflate response decoding
	github.com/sirosfoundation/go-digipost/pkg/apierror    - Error types

# Quick Start

To send a document:

	import (
	    "github.com/sirosfoundation/go-digipost/pkg/digipost"
	    "github.com/sirosfoundation/go-digipost/pkg/identity"
	)

	id, err := identity.Open(brokerID, &identity.Source{
	    Mode:     identity.SourcePKCS12,
	    Path:     "broker.p12",
	    Password: password,
	})

	client, err := digipost.NewClient(&digipost.Config{Environment: digipost.Test}, id)

	delivery, err := client.SendMessage(ctx, &digipost.Message{
	    Recipient:       digipost.Recipient{DigipostAddress: "ola.nordmann#1234"},
	    PrimaryDocument: digipost.NewDocument("Invoice", "pdf", pdf),
	})

# Request Signing

Each request carries these headers:

  - Date: RFC 1123 time of the request
  - X-Digipost-UserId: the broker id
  - X-Content-SHA256: base64 SHA-256 of the body, when there is a body
  - X-Digipost-Signature: base64 RSA PKCS#1 v1.5 SHA-256 signature

The signature covers the method, the lower-cased path, the Date header, the
content hash, the broker id and the lower-cased query, one per line.

# Command Line

cmd/digipost wraps the client for scripting and troubleshooting. The sign
and verify commands compute signatures without contacting the API.

# License

BSD-2-Clause License
*/
package godigipost
