package main

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
)

func (cli *commandLine) login(email, pwd string) error {
	sess, err := cli.sessions.Login(context.Background(), email, pwd)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Logged in as %s <%s>\n", sess.Name, sess.Email)
	fmt.Fprintf(cli.out, "Session: %s (expires %s)\n", sess.ID, humanize.RelTime(sess.ExpiresAt, nowFunc(), "ago", "from now"))
	return nil
}

func (cli *commandLine) logout(sessionID string) error {
	if err := cli.sessions.Logout(context.Background(), sessionID); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "Logged out")
	return nil
}

func (cli *commandLine) purgeSessions() error {
	n, err := cli.sessions.PurgeExpired(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Deleted %s expired session(s)\n", humanize.Comma(n))
	return nil
}
