// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package mime handles MIME multipart packaging for Digipost message delivery.

A message is delivered as a multipart/mixed request: the first part holds
the message XML, followed by one part per document keyed by the document
UUID.

# MIME Structure

	Content-Type: multipart/mixed; boundary="----=_Part_..."

	------=_Part_...
	Content-Type: application/vnd.digipost-v8+xml
	Content-Disposition: attachment; filename="message"

	<message xmlns="http://api.digipost.no/schema/v8">...</message>

	------=_Part_...
	Content-Type: application/pdf
	Content-Disposition: attachment; filename="6f8c1d7a-..."

	[Binary document content]

# Creating Multipart Messages

	msg := mime.NewMessage(
	    mime.Part{ContentType: transport.MediaTypeV8, Filename: "message", Data: messageXML},
	    mime.Part{ContentType: "application/pdf", Filename: doc.UUID, Data: pdf},
	)
	body, contentType, err := msg.Serialize()

# Parsing Multipart Messages

	msg, err := mime.Parse(r, contentType)
	for _, part := range msg.Parts {
	    // part.Filename, part.ContentType, part.Data
	}
*/
package mime
