// Copyright 2025 The placesbot Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/jcodagnone/placesbot/email"
	"github.com/spf13/cobra"
)

var emailCmd = &cobra.Command{
	Use:   "email",
	Short: "Transcript email settings",
}

var emailCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the SMTP credentials without sending anything",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(rootCmd.PersistentFlags())
		if err != nil {
			return err
		}

		m := cfg.mailer()
		if m == nil {
			fmt.Println("❌ Add GMAIL_USER and GMAIL_APP_PASSWORD to your .env file")

			return email.ErrMissingCredentials
		}

		if err := m.Check(cmd.Context()); err != nil {
			if errors.Is(err, email.ErrAuthentication) {
				fmt.Println("❌ Gmail authentication failed! Use App Password from: https://myaccount.google.com/apppasswords")
			} else {
				fmt.Printf("❌ Gmail connection failed: %v\n", err)
			}

			return err
		}

		fmt.Printf("✅ Gmail connection successful for %s\n", cfg.GmailUser)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(emailCmd)
	emailCmd.AddCommand(emailCheckCmd)
}
