package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/trezcool/campusdesk/core"
	"github.com/trezcool/campusdesk/core/listing"
	"github.com/trezcool/campusdesk/core/resource"
)

func (cli *commandLine) list(sessionID, kind string, q resource.Query) error {
	ctx := context.Background()
	sess, err := cli.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}

	q.Clean(cli.conf.Listing)
	if err := q.Validate(cli.validate, cli.conf.Listing); err != nil {
		return err
	}

	now := nowFunc()
	listed, err := cli.resources.ListKind(ctx, kind, sess.Token, q, now)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(listed.Columns, "\t")))
	for _, row := range listed.Rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			if i < len(listed.Columns) && listed.Columns[i] == "created" {
				cell = relTime(cell, now)
			}
			cells[i] = cell
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	if err := w.Flush(); err != nil {
		return errors.Wrap(err, "printing records")
	}

	if listed.TotalItems == 0 {
		fmt.Fprintln(cli.out, "No records found")
		return nil
	}
	fmt.Fprintf(cli.out, "\nPage %d of %d (%s records)  %s\n",
		listed.PageNum, listed.TotalPages, humanize.Comma(int64(listed.TotalItems)), pager(listed.Controls, listed.PageNum))
	return nil
}

// pager renders page controls, the current page in brackets.
func pager(controls []listing.PageControl, current int) string {
	tokens := make([]string, 0, len(controls))
	for _, c := range controls {
		switch {
		case c.Kind == listing.ControlEllipsis:
			tokens = append(tokens, "...")
		case c.Number == current:
			tokens = append(tokens, "["+strconv.Itoa(c.Number)+"]")
		default:
			tokens = append(tokens, strconv.Itoa(c.Number))
		}
	}
	return strings.Join(tokens, " ")
}

func relTime(ts string, now time.Time) string {
	t, ok := listing.ParseTimestamp(ts, time.UTC)
	if !ok {
		return ts
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

func (cli *commandLine) printKinds() error {
	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tAPPROVABLE\tFILTERS\tORDERINGS")
	for _, kind := range resource.Kinds() {
		ep, _ := resource.Lookup(kind)
		approvable := "no"
		if ep.Approvable() {
			approvable = "yes"
		}
		filters := append([]string{"search", "range"}, ep.FilterParams()...)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", kind, approvable, strings.Join(filters, ","), strings.Join(ep.OrderingFields(), ","))
	}
	return errors.Wrap(w.Flush(), "printing kinds")
}

// fieldErrors flattens a validation error for the terminal.
func fieldErrors(err error) string {
	verr, ok := errors.Cause(err).(*core.ValidationError)
	if !ok || len(verr.Fields) == 0 {
		return err.Error()
	}
	msgs := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		msgs = append(msgs, f.Field+": "+f.Error)
	}
	return strings.Join(msgs, "; ")
}
