package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/trezcool/campusdesk/core"
	"github.com/trezcool/campusdesk/core/listing"
	"github.com/trezcool/campusdesk/core/resource"
	"github.com/trezcool/campusdesk/core/session"
)

var (
	readPasswordFunc = term.ReadPassword // mockable
	nowFunc          = time.Now          // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf      *core.Config
	db        *sqlx.DB
	sessions  *session.Service
	resources *resource.Service
	validate  *validator.Validate
	out       io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  login -email EMAIL - open a dashboard session; the password will be prompted next")
	fmt.Fprintln(cli.out, "  logout -session ID - close a dashboard session")
	fmt.Fprintln(cli.out, "  purgesessions - delete every expired session")
	fmt.Fprintln(cli.out, "  kinds - list the record kinds and their filters")
	fmt.Fprintln(cli.out, "  list -session ID -kind KIND [OPTIONS] - print one page of records")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose migration command (up, down, status, ...)")
}

// filterFlags collects repeated -filter key=value flags.
type filterFlags map[string][]string

func (ff filterFlags) String() string {
	pairs := make([]string, 0, len(ff))
	for k, vals := range ff {
		for _, v := range vals {
			pairs = append(pairs, k+"="+v)
		}
	}
	return strings.Join(pairs, ",")
}

func (ff filterFlags) Set(s string) error {
	k, v, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(k) == "" {
		return fmt.Errorf("filter %q must be of form key=value", s)
	}
	k = strings.TrimSpace(k)
	ff[k] = append(ff[k], strings.TrimSpace(v))
	return nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	loginCmd := flag.NewFlagSet("login", flag.ContinueOnError)
	loginEmail := loginCmd.String("email", "", "The admin's email. The password will be prompted next.")

	logoutCmd := flag.NewFlagSet("logout", flag.ContinueOnError)
	logoutSession := logoutCmd.String("session", "", "The session ID printed by login.")

	listCmd := flag.NewFlagSet("list", flag.ContinueOnError)
	listSession := listCmd.String("session", "", "The session ID printed by login.")
	listKind := listCmd.String("kind", "", "The kind of records: "+strings.Join(resource.Kinds(), ", "))
	listSearch := listCmd.String("search", "", "Case-insensitive text search.")
	listRange := listCmd.String("range", "", "Creation date range: "+strings.Join(listing.RangeKeys(), ", "))
	listPage := listCmd.Int("page", 1, "The page to print.")
	listPageSize := listCmd.Int("page-size", 0, "Records per page (defaults to the configured size).")
	listCollege := listCmd.String("college", "", "Restrict college scoped kinds to one college.")
	listOrdering := listCmd.String("ordering", "", "Comma separated fields, prefixed with - for descending order.")
	listRefresh := listCmd.Bool("refresh", false, "Refetch the records even if a fresh snapshot exists.")
	listFilters := make(filterFlags)
	listCmd.Var(listFilters, "filter", "A kind specific filter as key=value; may be repeated.")

	for _, fs := range []*flag.FlagSet{loginCmd, logoutCmd, listCmd} {
		fs.SetOutput(cli.out)
	}

	switch args[1] {
	case "login":
		if err := loginCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *loginEmail == "" {
			loginCmd.Usage()
			return errHelp
		}
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			loginCmd.Usage()
			return errHelp
		}
		return cli.login(*loginEmail, string(pwd))

	case "logout":
		if err := logoutCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *logoutSession == "" {
			logoutCmd.Usage()
			return errHelp
		}
		return cli.logout(*logoutSession)

	case "purgesessions":
		return cli.purgeSessions()

	case "kinds":
		return cli.printKinds()

	case "list":
		if err := listCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *listSession == "" || *listKind == "" {
			listCmd.Usage()
			return errHelp
		}
		q := resource.Query{
			Search:   *listSearch,
			Range:    *listRange,
			Page:     *listPage,
			PageSize: *listPageSize,
			Ordering: *listOrdering,
			College:  *listCollege,
			Refresh:  *listRefresh,
			Filters:  map[string][]string(listFilters),
		}
		return cli.list(*listSession, *listKind, q)

	case "migrate":
		if len(args) < 3 {
			fmt.Fprintln(cli.out, "Usage: migrate COMMAND [ARGS]")
			return errHelp
		}
		return cli.migrate(args[2:])

	default:
		cli.printUsage()
		return errHelp
	}
}
