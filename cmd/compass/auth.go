package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/careercompass/compass/internal/finder"
	"github.com/careercompass/compass/internal/session"
)

var (
	authEmail    string
	authPassword string
	regName      string
	regConfirm   string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and remember the session",
	Long:  "Sign in to the backend. The password is read from stdin when --password is not given.",
	Args:  cobra.NoArgs,
	RunE:  runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and remember the session",
	Args:  cobra.NoArgs,
	RunE:  runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved session",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, registerCmd} {
		c.Flags().StringVar(&authEmail, "email", "", "account email")
		c.Flags().StringVar(&authPassword, "password", "", "account password (default: read from stdin)")
	}
	registerCmd.Flags().StringVar(&regName, "name", "", "full name")
	registerCmd.Flags().StringVar(&regConfirm, "confirm", "", "password confirmation (default: same as --password)")
	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	cfg := mustConfig(logger)
	a := mustApp(cfg, logger, setupNotifier(cfg, logger))
	defer a.close()

	password, err := passwordOrStdin(cmd.InOrStdin(), authPassword)
	if err != nil {
		return err
	}
	redirect, err := a.accounts.Login(cmd.Context(), finder.LoginForm{Email: authEmail, Password: password})
	if err != nil {
		return err
	}
	if err := a.rememberSession(strings.TrimSpace(authEmail)); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (next: %s)\n", strings.TrimSpace(authEmail), redirect)
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	cfg := mustConfig(logger)
	a := mustApp(cfg, logger, setupNotifier(cfg, logger))
	defer a.close()

	password, err := passwordOrStdin(cmd.InOrStdin(), authPassword)
	if err != nil {
		return err
	}
	confirm := regConfirm
	if !cmd.Flags().Changed("confirm") {
		confirm = password
	}
	redirect, err := a.accounts.Register(cmd.Context(), finder.RegisterForm{
		FullName:        regName,
		Email:           authEmail,
		Password:        password,
		ConfirmPassword: confirm,
	})
	if err != nil {
		return err
	}
	if err := a.rememberSession(strings.TrimSpace(authEmail)); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Account created for %s (next: %s)\n", strings.TrimSpace(authEmail), redirect)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	cfg := mustConfig(logger)
	if err := session.Clear(cfg.SessionPath); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
	return nil
}

func passwordOrStdin(in io.Reader, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
