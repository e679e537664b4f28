package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/pscheid92/vybe/internal/config"
	"github.com/pscheid92/vybe/internal/domain"
	apperrors "github.com/pscheid92/vybe/internal/errors"
	"github.com/pscheid92/vybe/internal/logging"
	"github.com/pscheid92/vybe/internal/platform/correlation"
	"github.com/pscheid92/vybe/internal/platform/version"
	"github.com/pscheid92/vybe/internal/session"
)

const usage = `Usage: vybe <command> [flags]

Commands:
  login     -email <email> [-password <password>]
  register  -email <email> [-password <password>]
  logout    [-remote]
  whoami
  status
  version

Without -password, the password is read from the first line of stdin.
`

type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		_, _ = fmt.Fprint(stderr, usage)
		return 2
	}

	s := streams{in: stdin, out: stdout, err: stderr}
	command, rest := args[0], args[1:]

	if command == "version" {
		info := version.Get()
		_, _ = fmt.Fprintf(stdout, "vybe %s (commit %s, built %s, %s)\n", info.Version, info.Commit, info.BuildTime, info.GoVersion)
		return 0
	}
	if command == "help" || command == "-h" || command == "--help" {
		_, _ = fmt.Fprint(stdout, usage)
		return 0
	}

	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
		return 1
	}
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, _ = correlation.Ensure(ctx)

	a, err := newApp(ctx, cfg)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	defer a.close()

	switch command {
	case "login":
		return a.login(ctx, rest, s)
	case "register":
		return a.register(ctx, rest, s)
	case "logout":
		return a.logout(ctx, rest, s)
	case "whoami":
		return a.whoami(ctx, s)
	case "status":
		return a.status(ctx, s)
	default:
		_, _ = fmt.Fprintf(stderr, "Unknown command %q\n\n%s", command, usage)
		return 2
	}
}

func parseCredentials(name string, args []string, s streams) (email, password string, err error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(s.err)
	fs.StringVar(&email, "email", "", "account email")
	fs.StringVar(&password, "password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return "", "", err
	}

	if email == "" {
		return "", "", errors.New("-email is required")
	}
	if password == "" {
		line, err := bufio.NewReader(s.in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", "", fmt.Errorf("failed to read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}
	if password == "" {
		return "", "", errors.New("password is required")
	}
	return email, password, nil
}

func report(s streams, res domain.Result) int {
	if !res.Success {
		_, _ = fmt.Fprintln(s.err, res.Message)
		return 1
	}
	_, _ = fmt.Fprintln(s.out, res.Message)
	return 0
}

func (a *app) login(ctx context.Context, args []string, s streams) int {
	email, password, err := parseCredentials("login", args, s)
	if err != nil {
		_, _ = fmt.Fprintln(s.err, err)
		return 2
	}

	res := a.manager.Login(ctx, email, password)
	code := report(s, res)
	if user := a.manager.User(); res.Success && user != nil {
		_, _ = fmt.Fprintf(s.out, "Signed in as %s\n", user.Email)
	}
	return code
}

func (a *app) register(ctx context.Context, args []string, s streams) int {
	email, password, err := parseCredentials("register", args, s)
	if err != nil {
		_, _ = fmt.Fprintln(s.err, err)
		return 2
	}

	code := report(s, a.manager.Register(ctx, email, password))
	if code == 0 {
		_, _ = fmt.Fprintln(s.out, "Run 'vybe login' to sign in.")
	}
	return code
}

func (a *app) logout(ctx context.Context, args []string, s streams) int {
	fs := flag.NewFlagSet("logout", flag.ContinueOnError)
	fs.SetOutput(s.err)
	remote := fs.Bool("remote", false, "also revoke the session on the server")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if err := a.manager.Start(ctx); err != nil {
		_, _ = fmt.Fprintln(s.err, err)
	}

	if *remote && a.manager.Session().IsAuthenticated {
		if err := a.client.Logout(ctx); err != nil {
			_, _ = fmt.Fprintf(s.err, "Server logout failed: %s\n", apperrors.Message(err))
		}
	}

	a.manager.Logout(ctx)
	_, _ = fmt.Fprintln(s.out, "Logged out")
	return 0
}

func (a *app) whoami(ctx context.Context, s streams) int {
	if err := a.manager.Start(ctx); err != nil {
		_, _ = fmt.Fprintln(s.err, err)
		return 1
	}
	if !a.manager.Session().IsAuthenticated {
		_, _ = fmt.Fprintln(s.err, "Not logged in")
		return 1
	}

	st := session.NewCurrentUserRequestTTL(a.client, a.cache, a.cfg.CacheTTL).Refetch(ctx)
	if st.Err != nil {
		_, _ = fmt.Fprintln(s.err, st.Err.Message)
		return 1
	}

	user := st.Data
	_, _ = fmt.Fprintf(s.out, "%s\nid: %s\nactive: %t\n", user.Email, user.ID, user.IsActive)
	return 0
}

func (a *app) status(ctx context.Context, s streams) int {
	if err := a.manager.Start(ctx); err != nil {
		_, _ = fmt.Fprintln(s.err, err)
		return 1
	}

	_, _ = fmt.Fprintf(s.out, "state: %s\n", a.manager.State())
	if user := a.manager.User(); user != nil {
		_, _ = fmt.Fprintf(s.out, "user: %s\n", user.Email)
	}
	_, _ = fmt.Fprintf(s.out, "server: %s\n", a.cfg.APIBaseURL)

	if err := a.ping(ctx); err != nil {
		_, _ = fmt.Fprintf(s.out, "token store: %s (unreachable: %v)\n", a.cfg.TokenStore, err)
		return 1
	}
	_, _ = fmt.Fprintf(s.out, "token store: %s (ok)\n", a.cfg.TokenStore)
	return 0
}
