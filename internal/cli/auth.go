package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hcms-console/hcms-console/internal/auth"
	"github.com/hcms-console/hcms-console/internal/gateway"
	"github.com/hcms-console/hcms-console/internal/identity"
	"github.com/hcms-console/hcms-console/internal/screen"
	"github.com/hcms-console/hcms-console/internal/session"
)

func loginCommand(c *client) *cobra.Command {
	var user, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the credential",
		Long: `Sign in with an email or username. Without --password the password is read
from the first line of standard input.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(user) == "" {
				return errors.New("--user is required")
			}
			if password == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return errors.New("password is required")
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if password == "" {
				return errors.New("password is required")
			}

			ctx := cmd.Context()
			c.store.SetLoading(true)
			defer c.store.SetLoading(false)
			token, err := auth.NewClient(c.anon).Login(ctx, auth.LoginRequest{EmailOrUsername: user, Password: password})
			if err != nil {
				msg := gateway.Message(err, "Login failed")
				c.store.SetLastError(msg)
				return errors.New(msg)
			}
			if err := c.store.SetCredential(ctx, token); err != nil {
				if errors.Is(err, identity.ErrMalformedToken) || errors.Is(err, identity.ErrUnknownRole) {
					return errors.New("login failed: the server returned an unreadable token")
				}
				return err
			}
			id := c.store.Identity()
			c.board.Success(fmt.Sprintf("Signed in as %s (%s)", id.Email, id.Role.Label()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&user, "user", "u", "", "email or username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (read from stdin when omitted)")
	return cmd
}

func logoutCommand(c *client) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !c.store.Snapshot().Authenticated() {
				c.board.Info("Not signed in")
				return nil
			}
			if err := c.store.Clear(cmd.Context(), session.ReasonLogout); err != nil {
				return err
			}
			c.board.Success("Signed out")
			return nil
		},
	}
}

func whoamiCommand(c *client) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id := c.store.Identity()
			if id == nil {
				return ErrNotLoggedIn
			}
			c.printer.Field("Email", id.Email)
			c.printer.Field("Role", id.Role.Label())
			if !id.ExpiresAt.IsZero() {
				c.printer.Field("Expires", id.ExpiresAt.Local().Format("02 Jan 2006 15:04"))
			}
			return nil
		},
	}
}

type registerFlags struct {
	Username string `form:"username" validate:"required,min=3"`
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=6"`
	Role     string `form:"role" validate:"required,oneof=EMPLOYEE MANAGER ADMIN SUPER_ADMIN"`
}

func registerCommand(c *client) *cobra.Command {
	var f registerFlags
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f.Role = strings.ToUpper(strings.TrimSpace(f.Role))
			if err := screen.NewValidator().Struct(f); err != nil {
				return fieldErrors(screen.FormErrors(err))
			}
			err := auth.NewClient(c.anon).Register(cmd.Context(), auth.RegisterRequest{
				Username: f.Username,
				Email:    f.Email,
				Password: f.Password,
				Role:     f.Role,
			})
			if err != nil {
				return c.failure(err, "Registration failed")
			}
			c.board.Success("Account created, sign in with hcmsctl login")
			return nil
		},
	}
	cmd.Flags().StringVar(&f.Username, "username", "", "username")
	cmd.Flags().StringVar(&f.Email, "email", "", "email address")
	cmd.Flags().StringVar(&f.Password, "password", "", "password")
	cmd.Flags().StringVar(&f.Role, "role", string(identity.RoleEmployee), "EMPLOYEE, MANAGER, ADMIN or SUPER_ADMIN")
	return cmd
}
