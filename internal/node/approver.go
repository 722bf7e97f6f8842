package node

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/frostlabs/frostgate/internal/dapp"
	flog "github.com/frostlabs/frostgate/internal/log"
)

// ConsoleApprover is the interactive approval surface. Requests that need
// consent are announced on the console and resolved with approve/reject
// commands read from it.
type ConsoleApprover struct {
	pipeline *dapp.Pipeline
	in       io.Reader
	out      io.Writer
}

// NewConsoleApprover creates an approver over the given streams.
func NewConsoleApprover(p *dapp.Pipeline, in io.Reader, out io.Writer) *ConsoleApprover {
	return &ConsoleApprover{pipeline: p, in: in, out: out}
}

// Notify announces a newly parked request.
func (a *ConsoleApprover) Notify(p *dapp.PendingRequest) {
	fmt.Fprintf(a.out, "\n=== Approval required (request %d) ===\n", p.Request.ID)
	fmt.Fprintf(a.out, "  method: %s\n", p.Request.Method)
	if p.Request.Peer.Name != "" {
		fmt.Fprintf(a.out, "  dapp:   %s (%s)\n", p.Request.Peer.Name, p.Request.Peer.URL)
	}
	if p.DisplayData != nil {
		if raw, err := json.MarshalIndent(p.DisplayData, "  ", "  "); err == nil {
			fmt.Fprintf(a.out, "  %s\n", raw)
		}
	}
	fmt.Fprintf(a.out, "Type 'approve %d' or 'reject %d'.\n> ", p.Request.ID, p.Request.ID)
}

// Run reads commands until the context is cancelled or input closes.
func (a *ConsoleApprover) Run(ctx context.Context) {
	scanner := bufio.NewScanner(a.in)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}
		a.handleLine(ctx, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		flog.Pipeline.Warn().Err(err).Msg("approval console closed")
	}
}

func (a *ConsoleApprover) handleLine(ctx context.Context, line string) {
	if line == "" {
		return
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case "approve":
		if len(fields) != 2 {
			fmt.Fprintln(a.out, "usage: approve <request-id>")
			return
		}
		id, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			fmt.Fprintf(a.out, "bad request id %q\n", fields[1])
			return
		}
		if !a.pipeline.Approve(ctx, id) {
			fmt.Fprintf(a.out, "no pending request %d\n", id)
		}

	case "reject":
		if len(fields) < 2 {
			fmt.Fprintln(a.out, "usage: reject <request-id> [reason]")
			return
		}
		id, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			fmt.Fprintf(a.out, "bad request id %q\n", fields[1])
			return
		}
		reason := strings.Join(fields[2:], " ")
		if !a.pipeline.Reject(ctx, id, reason) {
			fmt.Fprintf(a.out, "no pending request %d\n", id)
		}

	case "pending":
		pending := a.pipeline.Pending()
		if len(pending) == 0 {
			fmt.Fprintln(a.out, "no pending requests")
			return
		}
		for _, p := range pending {
			fmt.Fprintf(a.out, "  %d  %s  %s\n", p.Request.ID, p.Request.Method, p.Request.Peer.Name)
		}

	case "help":
		fmt.Fprintln(a.out, "commands: approve <id>, reject <id> [reason], pending, help")

	default:
		fmt.Fprintf(a.out, "unknown command %q (try 'help')\n", fields[0])
	}
}
