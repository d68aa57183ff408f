package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"user-service/internal/domain"
)

type userRow struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func usersCmd(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:   "users",
		Short: "List, create and delete users",
	}
	c.AddCommand(usersListCmd(a))
	c.AddCommand(usersCreateCmd(a))
	c.AddCommand(usersDeleteCmd(a))
	return c
}

func usersListCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users in creation order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, done, err := a.start(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			us, err := s.list.Execute(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([]userRow, 0, len(us))
			for _, u := range us {
				rows = append(rows, userRow{ID: u.ID().String(), Name: u.Name(), Email: u.Email().String()})
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}
			if len(rows) == 0 {
				fmt.Fprintln(out, "(no users)")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tEMAIL\tNAME")
			for _, r := range rows {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", r.ID, r.Email, r.Name)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func usersCreateCmd(a *app) *cobra.Command {
	var email, name, password string
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if passwordStdin {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password from stdin: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}

			s, done, err := a.start(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			u, err := s.create.Execute(cmd.Context(), email, name, password)
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", u.Email(), u.ID())
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address (unique)")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&password, "password", "", "password (prefer --password-stdin)")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	cmd.MarkFlagsMutuallyExclusive("password", "password-stdin")
	return cmd
}

func usersDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <email>",
		Short: "Delete the user owning an email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, done, err := a.start(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			if err := s.delete.Execute(cmd.Context(), args[0]); err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", strings.ToLower(strings.TrimSpace(args[0])))
			return nil
		},
	}
}

// describe 给命令行用户一句能看懂的话，保留原错误链
func describe(err error) error {
	var ve *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrUnavailable):
		return err
	case errors.As(err, &ve):
		return fmt.Errorf("invalid %s (%s): %w", ve.Field, ve.Reason, err)
	case errors.Is(err, domain.ErrDuplicateUser):
		return fmt.Errorf("a user with that email already exists: %w", err)
	case errors.Is(err, domain.ErrUserNotFound):
		return fmt.Errorf("no user with that email: %w", err)
	}
	return err
}
