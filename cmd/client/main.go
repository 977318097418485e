package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/freshxpress/dashboard/internal/apiclient"
	"github.com/freshxpress/dashboard/internal/dashboard"
	"github.com/freshxpress/dashboard/internal/files"
	"github.com/freshxpress/dashboard/internal/session"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// Default backend base URL; can override with FRESHXPRESS_BACKEND_URL or --server.
const defaultServer = "http://localhost:5000"

var errNotSignedIn = errors.New("not signed in; run `client login` first")

// errShown marks a failure whose message was already printed for the user.
var errShown = errors.New("failure already reported")

var (
	serverURL string
	tokenDir  string
	verbose   bool

	logger *zap.Logger
	tokens *files.TokenFile
	client *apiclient.Client
)

var rootCmd = &cobra.Command{
	Use:   "client",
	Short: "FreshXpress admin CLI",
	Long: `Command line access to the FreshXpress farmer registry.

The bearer token obtained by "login" is kept in ~/.freshxpress/token and sent
with every other command. A rejected token is removed and you are asked to
sign in again.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if tokenDir == "" {
			if tokenDir, err = files.DefaultDir(); err != nil {
				return err
			}
		}
		tokens = files.NewTokenFile(tokenDir)

		base := defaultServer
		if env := os.Getenv("FRESHXPRESS_BACKEND_URL"); env != "" {
			base = env
		}
		if serverURL != "" {
			base = serverURL
		}
		client = apiclient.New(base, &http.Client{Timeout: 15 * time.Second}, logger).WithTokens(tokens)
		logger.Debug("client ready", zap.String("server", client.BaseURL()), zap.String("token_file", tokens.Path()))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session token",
	Args:  cobra.NoArgs,
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session token",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List farmers, ten per page",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var showCmd = &cobra.Command{
	Use:   "show [farmer-id]",
	Short: "Show the full record of a farmer",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var verifyCmd = &cobra.Command{
	Use:   "verify [farmer-id]",
	Short: "Toggle the verification status of a farmer",
	Long: `Flips the verification status of a farmer: an unverified farmer is
verified, a verified one has verification revoked. You are asked to confirm
unless --yes is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

var (
	loginEmail    string
	listPage      int
	verifiedFirst bool
	assumeYes     bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "backend API base URL (e.g. https://api.example.com)")
	rootCmd.PersistentFlags().StringVar(&tokenDir, "token-dir", "", "directory holding the session token (default ~/.freshxpress)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "account email")
	listCmd.Flags().IntVarP(&listPage, "page", "p", 1, "page number")
	listCmd.Flags().BoolVar(&verifiedFirst, "verified-first", false, "list verified farmers first")
	verifyCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "do not ask for confirmation")

	rootCmd.AddCommand(loginCmd, logoutCmd, listCmd, showCmd, verifyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errShown) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

// report prints a user-facing message verbatim and returns errShown.
func report(cmd *cobra.Command, msg string) error {
	fmt.Fprintln(cmd.ErrOrStderr(), msg)
	return errShown
}

func runLogin(cmd *cobra.Command, args []string) error {
	in := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	email := loginEmail
	if email == "" {
		fmt.Fprint(out, "Email Address: ")
		line, err := in.ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read email: %w", err)
		}
		email = strings.TrimSpace(line)
	}
	fmt.Fprint(out, "Password: ")
	password, err := readPassword(in)
	fmt.Fprintln(out)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	fmt.Fprintln(out, "Signing in...")
	token, err := client.Login(cmd.Context(), email, password)
	if err != nil {
		var se *apiclient.StatusError
		if errors.As(err, &se) {
			return report(cmd, se.Message)
		}
		logger.Debug("login transport error", zap.Error(err))
		return report(cmd, "An error occurred")
	}

	if err := tokens.SetToken(token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	fmt.Fprintln(out, "Signed in.")
	return nil
}

// readPassword reads without echo from a terminal, or a plain line otherwise.
func readPassword(in *bufio.Reader) (string, error) {
	if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		return string(b), err
	}
	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	sess := session.New(tokens, func() {
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
	})
	return sess.Logout()
}

// requireSession refuses to run protected commands without a stored token.
func requireSession() error {
	if !session.New(tokens, nil).IsAuthenticated() {
		return errNotSignedIn
	}
	return nil
}

// backendErr turns auth outcomes into the sign-in hint.
func backendErr(err error) error {
	if apiclient.Classify(err).NeedsLogin() {
		return errNotSignedIn
	}
	return err
}

func runList(cmd *cobra.Command, args []string) error {
	if err := requireSession(); err != nil {
		return err
	}
	farmers, err := client.ListFarmers(cmd.Context())
	if err != nil {
		return fmt.Errorf("could not load farmers: %w", backendErr(err))
	}
	page := dashboard.Paginate(dashboard.SortByVerification(farmers, verifiedFirst), listPage)
	return renderList(cmd.OutOrStdout(), page)
}

func runShow(cmd *cobra.Command, args []string) error {
	if err := requireSession(); err != nil {
		return err
	}
	var detail dashboard.Detail
	ticket := detail.Begin(args[0])
	f, err := client.GetFarmer(cmd.Context(), args[0])
	if err != nil && apiclient.Classify(err).NeedsLogin() {
		return errNotSignedIn
	}
	if err != nil {
		logger.Debug("get farmer", zap.Error(err))
	}
	detail.Resolve(ticket, f, err)
	if detail.State() != dashboard.StateLoaded {
		return report(cmd, "Farmer not found")
	}
	return renderDetail(cmd.OutOrStdout(), detail.Farmer())
}

func runVerify(cmd *cobra.Command, args []string) error {
	if err := requireSession(); err != nil {
		return err
	}
	id := args[0]
	out := cmd.OutOrStdout()

	var detail dashboard.Detail
	ticket := detail.Begin(id)
	f, err := client.GetFarmer(cmd.Context(), id)
	if err != nil {
		return backendErr(err)
	}
	detail.Resolve(ticket, f, nil)
	if detail.State() != dashboard.StateLoaded {
		return report(cmd, "Farmer not found")
	}

	flow := dashboard.NewVerificationFlow(f.IsVerify)
	if err := flow.Request(); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s is %s.\n", f.FullName, dashboard.StatusLabel(f.IsVerify))
	if !assumeYes && !confirm(cmd.InOrStdin(), out, flow.Prompt()) {
		flow.Cancel()
		fmt.Fprintln(out, "Cancelled.")
		return nil
	}

	fmt.Fprintln(out, "Updating...")
	err = flow.Confirm(cmd.Context(), func(ctx context.Context, verified bool) error {
		return client.SetVerification(ctx, id, verified)
	})
	if err != nil {
		return fmt.Errorf("could not update verification status: %w", backendErr(err))
	}
	detail.SetVerified(flow.Verified())
	fmt.Fprintf(out, "Verification Status: %s\n", dashboard.StatusLabel(detail.Farmer().IsVerify))
	return nil
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", prompt)
	line, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
