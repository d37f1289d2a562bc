// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package digipost provides a client for the Digipost document delivery API.

Every request is signed with the broker's enterprise certificate. The client
fetches the sender's entrypoint, follows its hypermedia links, and decodes
the XML responses into the types in this package.

# Client Creation

Load a broker identity and create a client for an environment:

	id, err := identity.Open(brokerID, &identity.Source{
	    Mode:     identity.SourcePKCS12,
	    Path:     "broker.p12",
	    Password: os.Getenv("DIGIPOST_P12_PASSWORD"),
	})
	if err != nil {
	    log.Fatal(err)
	}
	defer id.Close()

	client, err := digipost.NewClient(&digipost.Config{
	    Environment: digipost.Production,
	    Logger:      logger,
	}, id)

# Sending Messages

	doc := digipost.NewDocument("Invoice", "pdf", pdfBytes)
	delivery, err := client.SendMessage(ctx, &digipost.Message{
	    Recipient:       digipost.Recipient{PersonalIdentificationNumber: "01013300001"},
	    PrimaryDocument: doc,
	})

# Other Operations

The client also covers recipient identification and search, the sender's
inbox, archives, document status and events, and shared documents.

Entrypoints and sender information are cached per client. Entries expire
after five minutes without use and always after one hour.

# Errors

Non-2xx responses are returned as *apierror.RemoteError. Bodies that
cannot be decoded produce *apierror.ParseError. Problems with the client's
own setup are *apierror.ConfigurationError.
*/
package digipost
