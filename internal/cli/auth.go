package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/TWRT/join-board/internal/models"
	"github.com/TWRT/join-board/internal/service"
)

type loginFlags struct {
	email    string
	password string
	remember bool
	guest    bool
}

// NewLoginCommand creates the login command.
func NewLoginCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &loginFlags{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		Long: `Log in with email and password, or with --guest as the shared guest
account. With --remember the email is kept for the next login; the password
is never stored.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				return runLogin(ctx, a, flags)
			})
		},
	}

	cmd.Flags().StringVar(&flags.email, "email", "", "account email (defaults to the remembered one)")
	cmd.Flags().StringVar(&flags.password, "password", "", "account password")
	cmd.Flags().BoolVar(&flags.remember, "remember", false, "remember the email for the next login")
	cmd.Flags().BoolVar(&flags.guest, "guest", false, "log in as guest")
	cmd.MarkFlagsMutuallyExclusive("guest", "email")
	cmd.MarkFlagsMutuallyExclusive("guest", "password")

	return cmd
}

func runLogin(ctx context.Context, a *app, flags *loginFlags) error {
	var (
		user *models.Identity
		err  error
	)
	if flags.guest {
		user, err = a.auth.GuestLogin(ctx)
	} else {
		email := flags.email
		if email == "" {
			if email, err = a.auth.RememberedEmail(ctx); err != nil {
				return err
			}
		}
		if email == "" || flags.password == "" {
			return NewExitError(ExitCommandError, "--email and --password are required")
		}
		user, err = a.auth.Login(ctx, email, flags.password, flags.remember)
	}
	if errors.Is(err, service.ErrWrongPassword) {
		return WrapExitError(ExitLoginRequired, "login failed", err)
	}
	if err != nil {
		return err
	}

	return a.out.Print(user, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "Logged in as %s\n", user.Name)
		return err
	})
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				if err := a.auth.Logout(ctx); err != nil {
					return err
				}
				return a.out.Print(map[string]bool{"ok": true}, func(w io.Writer) error {
					_, err := fmt.Fprintln(w, "Logged out")
					return err
				})
			})
		},
	}
}

type registerFlags struct {
	name     string
	email    string
	password string
	repeat   string
}

// NewRegisterCommand creates the register command.
func NewRegisterCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &registerFlags{}

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				color, err := a.auth.Register(ctx, flags.name, flags.email, flags.password, flags.repeat)
				if errors.Is(err, service.ErrPasswordMismatch) {
					return WrapExitError(ExitCommandError, "register", err)
				}
				if err != nil {
					return err
				}
				out := map[string]string{"name": flags.name, "email": flags.email, "color": color}
				return a.out.Print(out, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "Registered %s (%s). Run `board login` to continue.\n", flags.name, color)
					return err
				})
			})
		},
	}

	cmd.Flags().StringVar(&flags.name, "name", "", "display name")
	cmd.Flags().StringVar(&flags.email, "email", "", "account email")
	cmd.Flags().StringVar(&flags.password, "password", "", "password")
	cmd.Flags().StringVar(&flags.repeat, "repeat", "", "password again")
	for _, name := range []string{"name", "email", "password", "repeat"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}
