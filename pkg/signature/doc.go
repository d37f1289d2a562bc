// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package signature implements the Digipost request-signature protocol.

Every request sent to the Digipost API carries an X-Digipost-Signature
header. The server recomputes a canonical string from the request and
verifies the signature with the broker's registered certificate.

# Canonical String

The canonical string is built from the request in a fixed order, each
element terminated by a newline:

	POST
	/1337/message
	date: Mon, 01 Jan 2024 00:00:00 GMT
	x-content-sha256: <base64 SHA-256 of body>
	x-digipost-userid: 1337
	<query string>

The content hash line is present only when the request has a body. Path
and query are lower-cased, the method is upper-cased.

	ctx := signature.NewContext(req.Method, req.URL, date, brokerID, hash)
	canonical := signature.CanonicalString(ctx)

# Signing

Signatures are RSA PKCS#1 v1.5 over the SHA-256 digest of the canonical
string, base64-encoded:

	signer, err := signature.NewRSASigner(privateKey, certificate)
	sig, err := signer.Sign(canonical)

The key may be any crypto.Signer holding an RSA key, including keys held
in a PKCS#11 token.

# References

  - Digipost API: https://digipost.github.io/digipost-api-client-dotnet/
  - RSA PKCS#1 v1.5: https://datatracker.ietf.org/doc/html/rfc8017
*/
package signature
