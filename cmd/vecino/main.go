package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"vecino/internal/bootstrap"
	authdto "vecino/internal/modules/auth/dto"
	"vecino/internal/platform/config"
	apperrors "vecino/internal/platform/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, describe(err))
		os.Exit(1)
	}
}

type globalFlags struct {
	home       string
	configPath string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "vecino",
		Short:         "Report neighbourhood incidents to the municipality",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.home, "home", "", "state directory (default $HOME/.vecino)")
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default <home>/config.yaml)")

	root.AddCommand(newLoginCmd(flags))
	root.AddCommand(newLogoutCmd(flags))
	root.AddCommand(newWhoamiCmd(flags))
	root.AddCommand(newRegisterCmd(flags))
	root.AddCommand(newCategoriesCmd(flags))
	root.AddCommand(newLocateCmd(flags))
	root.AddCommand(newReportCmd(flags))
	root.AddCommand(newHistoryCmd(flags))
	root.AddCommand(newAnnouncementsCmd(flags))
	root.AddCommand(newTUICmd(flags))
	root.AddCommand(newStubCmd())
	return root
}

func loadConfig(flags *globalFlags) (config.Config, error) {
	home := flags.home
	if home == "" {
		var err error
		if home, err = config.DefaultHome(); err != nil {
			return config.Config{}, err
		}
	}
	return config.Load(home, flags.configPath)
}

func loadApp(flags *globalFlags) (*bootstrap.App, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(cfg, os.Stderr)
}

// withApp runs fn against a freshly wired app. An Unauthorized error clears
// the stored session before it is reported.
func withApp(cmd *cobra.Command, flags *globalFlags, fn func(ctx context.Context, app *bootstrap.App) error) error {
	app, err := loadApp(flags)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := app.Close(); cerr != nil {
			app.Logger.Warn("close app", "error", cerr)
		}
	}()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	err = fn(ctx, app)
	if apperrors.RequiresLogin(err) {
		app.AuthCLI.Logout(ctx)
	}
	return err
}

var domainKinds = []error{
	apperrors.ErrValidation,
	apperrors.ErrNotFound,
	apperrors.ErrNoSession,
	apperrors.ErrInvalidCredentials,
	apperrors.ErrUnauthorized,
	apperrors.ErrNetwork,
	apperrors.ErrMalformedResponse,
	apperrors.ErrServer,
}

func describe(err error) string {
	if apperrors.RequiresLogin(err) {
		return "session expired, run `vecino login`"
	}
	for _, kind := range domainKinds {
		if errors.Is(err, kind) {
			return apperrors.UserMessage(err)
		}
	}
	return err.Error()
}

func prompt(in io.Reader, out io.Writer, label string) (string, error) {
	_, _ = fmt.Fprint(out, label)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newLoginCmd(flags *globalFlags) *cobra.Command {
	var rut, password string
	cmd := &cobra.Command{
		Use:   "login --rut <rut>",
		Short: "Sign in and store the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(rut) == "" {
				return fmt.Errorf("--rut is required")
			}
			if password == "" {
				password = os.Getenv("VECINO_PASSWORD")
			}
			if password == "" {
				var err error
				if password, err = prompt(cmd.InOrStdin(), cmd.ErrOrStderr(), "password: "); err != nil {
					return err
				}
			}
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.AuthCLI.Login(ctx, rut, password)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "logged in as user %d admin=%t\n", out.UserID, out.IsAdmin)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&rut, "rut", "", "national id, e.g. 12345678-5")
	cmd.Flags().StringVar(&password, "password", "", "password (default $VECINO_PASSWORD, else prompt)")
	return cmd
}

func newLogoutCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			bootstrap.Logout(ctx, cfg, os.Stderr)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

func newWhoamiCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.AuthCLI.Whoami(ctx)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "user %d admin=%t\n", out.UserID, out.IsAdmin)
				return nil
			})
		},
	}
}

func newRegisterCmd(flags *globalFlags) *cobra.Command {
	input := authdto.RegisterInput{}
	cmd := &cobra.Command{
		Use:   "register --rut <rut> --name <name> --email <email>",
		Short: "Create a citizen account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if input.Password == "" {
				var err error
				if input.Password, err = prompt(cmd.InOrStdin(), cmd.ErrOrStderr(), "password: "); err != nil {
					return err
				}
			}
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.AuthCLI.Register(ctx, input)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "registered %s as user %d, run `vecino login --rut %s`\n", out.RUT, out.UserID, out.RUT)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&input.RUT, "rut", "", "national id")
	cmd.Flags().StringVar(&input.Password, "password", "", "password (prompted when empty)")
	cmd.Flags().StringVar(&input.Name, "name", "", "full name")
	cmd.Flags().StringVar(&input.Email, "email", "", "email address")
	cmd.Flags().StringVar(&input.Phone, "phone", "", "mobile number, digits only (optional)")
	return cmd
}

func newCategoriesCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List report categories and their departments",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				categories, err := app.CatalogCLI.List(ctx)
				if err != nil {
					return err
				}
				if len(categories) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no categories")
					return nil
				}
				for _, c := range categories {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s (%d)\n", c.ID, c.Name, c.DepartmentName, c.DepartmentID)
				}
				return nil
			})
		},
	}
}

func newLocateCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "locate",
		Short: "Resolve the current location the way a report would",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.LocationCLI.Locate(ctx)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%.6f,%.6f device=%t reason=%s\n", out.Latitude, out.Longitude, out.WasDeviceLocation, out.Reason)
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "trace: %s\n", strings.Join(out.Trace, " -> "))
				return nil
			})
		},
	}
}

func newHistoryCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List your reports, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				items, err := app.FeedCLI.History(ctx)
				if err != nil {
					return err
				}
				if len(items) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no reports")
					return nil
				}
				for _, p := range items {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\t%s\n", p.ID, p.RawDate, p.Status, p.Category, p.Title)
				}
				return nil
			})
		},
	}
}

func newAnnouncementsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "announcements",
		Short: "List municipal announcements, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, flags, func(ctx context.Context, app *bootstrap.App) error {
				items, err := app.FeedCLI.Announcements(ctx)
				if err != nil {
					return err
				}
				if len(items) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no announcements")
					return nil
				}
				for _, a := range items {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", a.RawDate, a.Status, a.Title)
					if a.Subtitle != "" {
						_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\t%s\n", a.Subtitle)
					}
				}
				return nil
			})
		},
	}
}

func newTUICmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse your reports and announcements",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(flags)
			if err != nil {
				return err
			}
			defer app.Close()
			return bootstrap.RunTUI(app)
		},
	}
}
