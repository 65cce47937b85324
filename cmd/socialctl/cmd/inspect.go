package cmd

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/pilab-dev/shadow-social/services"
	"github.com/spf13/cobra"
)

// ErrInvalidToken is returned by validate when the token is unusable.
var ErrInvalidToken = errors.New("access token is missing or expired")

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [file]",
		Short: "Summarise a property value",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readProperty(cmd, args)
			if err != nil {
				return err
			}

			return printValue(cmd, services.NewPropertyStatus(propertyName(args), data, time.Now()))
		},
	}
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Check that the access token is present and not expired",
		Long: `Checks the stored access token locally. The token is not sent to Facebook,
use debug-token for that. Exits non-zero when the token is unusable.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readProperty(cmd, args)
			if err != nil {
				return err
			}

			if !data.IsValid() {
				fmt.Fprintln(cmd.OutOrStdout(), "invalid")
				return ErrInvalidToken
			}

			fmt.Fprintf(cmd.OutOrStdout(), "valid, expires at %s\n", data.ExpiresAt.UTC().Format(time.RFC3339))

			return nil
		},
	}
}

func newPagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pages [file]",
		Short: "List the linked business pages",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readProperty(cmd, args)
			if err != nil {
				return err
			}

			if len(data.BusinessPages) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No business pages linked.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SELECTED\tID\tNAME")
			for _, page := range data.BusinessPages {
				mark := ""
				if data.SelectedBusinessPage != nil && data.SelectedBusinessPage.ID == page.ID {
					mark = "*"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", mark, page.ID, page.Name)
			}

			return tw.Flush()
		},
	}
}

func newSelectPageCmd() *cobra.Command {
	var (
		pageID  string
		inPlace bool
	)

	selectCmd := &cobra.Command{
		Use:   "select-page [file]",
		Short: "Select one of the linked business pages",
		Long: `Marks a linked page as selected and prints the updated serialized value.
With --in-place the file is rewritten instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readProperty(cmd, args)
			if err != nil {
				return err
			}

			if err := data.SelectBusinessPage(pageID); err != nil {
				return err
			}

			serialized, err := data.Serialize()
			if err != nil {
				return err
			}

			if inPlace {
				if len(args) == 0 || args[0] == "-" {
					return errors.New("--in-place needs a file argument")
				}

				return os.WriteFile(args[0], []byte(serialized+"\n"), 0o600)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), serialized)

			return err
		},
	}

	selectCmd.Flags().StringVar(&pageID, "id", "", "business page ID")
	selectCmd.Flags().BoolVarP(&inPlace, "in-place", "i", false, "rewrite the input file")
	_ = selectCmd.MarkFlagRequired("id")

	return selectCmd
}

func propertyName(args []string) string {
	if len(args) == 0 || args[0] == "-" {
		return "stdin"
	}

	return args[0]
}
