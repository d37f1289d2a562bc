package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sirosfoundation/go-digipost/pkg/digipost"
)

func newEntrypointCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "root",
		Short: "Print the links of the sender's entrypoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client(cmd.Context())
			if err != nil {
				return err
			}
			root, err := client.GetRoot(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, name := range root.Names() {
				link, _ := root.Link(name)
				fmt.Fprintf(out, "%-40s %s\n", name, link.URI)
			}
			return nil
		},
	}
}

func newSenderCmd(a *app) *cobra.Command {
	var orgNumber, partID string
	var senderID int64

	cmd := &cobra.Command{
		Use:   "sender",
		Short: "Show sender information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client(cmd.Context())
			if err != nil {
				return err
			}

			var info *digipost.SenderInformation
			if orgNumber != "" {
				info, err = client.GetSenderInformationByOrganisation(cmd.Context(), orgNumber, partID)
			} else {
				if senderID == 0 {
					senderID = client.SenderID()
				}
				info, err = client.GetSenderInformation(cmd.Context(), senderID)
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), info)
		},
	}

	cmd.Flags().Int64Var(&senderID, "id", 0, "sender id (defaults to the configured sender)")
	cmd.Flags().StringVar(&orgNumber, "org", "", "look up by organisation number")
	cmd.Flags().StringVar(&partID, "part", "", "part id for --org")
	return cmd
}

func newSearchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search <term>",
		Short: "Search for recipients",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client(cmd.Context())
			if err != nil {
				return err
			}
			result, err := client.Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result.Recipients)
		},
	}
}

func newIdentifyCmd(a *app) *cobra.Command {
	var id digipost.Identification

	cmd := &cobra.Command{
		Use:   "identify",
		Short: "Check whether a recipient can be reached through Digipost",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			set := 0
			for _, v := range []string{id.PersonalIdentificationNumber, id.OrganisationNumber, id.DigipostAddress} {
				if v != "" {
					set++
				}
			}
			if set != 1 {
				return fmt.Errorf("exactly one of --pin, --org or --digipost-address is required")
			}

			client, err := a.client(cmd.Context())
			if err != nil {
				return err
			}
			result, err := client.Identify(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"result": result.Code,
				"type":   result.Type.String(),
				"data":   result.Data,
				"error":  result.Error,
			})
		},
	}

	cmd.Flags().StringVar(&id.PersonalIdentificationNumber, "pin", "", "personal identification number")
	cmd.Flags().StringVar(&id.OrganisationNumber, "org", "", "organisation number")
	cmd.Flags().StringVar(&id.DigipostAddress, "digipost-address", "", "Digipost address")
	return cmd
}

func newInboxCmd(a *app) *cobra.Command {
	var offset, limit int

	cmd := &cobra.Command{
		Use:   "inbox",
		Short: "List documents in the sender's inbox",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client(cmd.Context())
			if err != nil {
				return err
			}
			inbox, err := client.FetchInbox(cmd.Context(), offset, limit)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), inbox.Documents)
		},
	}

	cmd.Flags().IntVar(&offset, "offset", 0, "index of the first document")
	cmd.Flags().IntVar(&limit, "limit", digipost.DefaultInboxLimit, "maximum number of documents")
	return cmd
}

func newArchivesCmd(a *app) *cobra.Command {
	var referenceID string

	cmd := &cobra.Command{
		Use:   "archives",
		Short: "List the sender's archives",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client(cmd.Context())
			if err != nil {
				return err
			}

			var archives []digipost.Archive
			if referenceID != "" {
				archives, err = client.FetchArchiveDocumentsByReferenceID(cmd.Context(), referenceID)
			} else {
				archives, err = client.FetchArchives(cmd.Context())
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), archives)
		},
	}

	cmd.Flags().StringVar(&referenceID, "reference-id", "", "only documents with this reference id")
	return cmd
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status <document-uuid>",
		Short: "Show the delivery status of a sent document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid document uuid: %w", err)
			}
			client, err := a.client(cmd.Context())
			if err != nil {
				return err
			}
			status, err := client.GetDocumentStatus(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), status)
		},
	}
}
