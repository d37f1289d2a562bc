package main

import (
	"crypto/rsa"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sirosfoundation/go-digipost/pkg/signature"
)

// signFlags describe a request to sign offline
type signFlags struct {
	method   string
	rawURL   string
	date     string
	bodyFile string
}

func (f *signFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.method, "method", "X", "GET", "HTTP method")
	cmd.Flags().StringVar(&f.rawURL, "url", "", "request URL")
	cmd.Flags().StringVar(&f.date, "date", "", "Date header value (defaults to now)")
	cmd.Flags().StringVar(&f.bodyFile, "body", "", "file holding the request body")
	_ = cmd.MarkFlagRequired("url")
}

// canonical builds the canonical string for the described request.
func (f *signFlags) canonical(brokerID int64, now time.Time) (string, error) {
	u, err := url.Parse(f.rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}

	date := f.date
	if date == "" {
		date = signature.FormatDate(now)
	}

	var hash *string
	if f.bodyFile != "" {
		body, err := os.ReadFile(f.bodyFile)
		if err != nil {
			return "", fmt.Errorf("reading body: %w", err)
		}
		h := signature.ContentHash(body)
		hash = &h
	}

	return signature.CanonicalString(signature.NewContext(f.method, u, date, brokerID, hash)), nil
}

func newSignCmd(a *app) *cobra.Command {
	var flags signFlags

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Print the canonical string and signature for a request without sending it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.loadIdentity()
			if err != nil {
				return err
			}
			canonical, err := flags.canonical(id.BrokerID(), time.Now())
			if err != nil {
				return err
			}
			sig, err := id.Signer().Sign(canonical)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, "=== SIGNATURE DATA START===\n"+canonical+"=== SIGNATURE DATA END ===\n")
			fmt.Fprintln(out, sig)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func newVerifyCmd(a *app) *cobra.Command {
	var flags signFlags
	var sig string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check a request signature against the broker certificate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.date == "" {
				return fmt.Errorf("--date is required to verify a signature")
			}
			id, err := a.loadIdentity()
			if err != nil {
				return err
			}
			canonical, err := flags.canonical(id.BrokerID(), time.Now())
			if err != nil {
				return err
			}

			pub, ok := id.Certificate().PublicKey.(*rsa.PublicKey)
			if !ok {
				return fmt.Errorf("certificate does not hold an RSA key")
			}
			if err := signature.Verify(pub, canonical, sig); err != nil {
				return fmt.Errorf("signature is not valid: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "signature OK")
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&sig, "signature", "", "base64 X-Digipost-Signature value")
	_ = cmd.MarkFlagRequired("signature")
	return cmd
}
