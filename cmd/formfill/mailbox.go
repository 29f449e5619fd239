package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formfill/pkg/mailbox"
)

func newMailboxCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mailbox",
		Short: "Manage temporary mailboxes",
		Long: `Create, read and watch temporary mailboxes on the mailbox backend
(FORMFILL_MAILBOX_URL). Mailboxes may be addressed by id or by e-mail
address.

Examples:
  formfill mailbox create
  formfill mailbox messages swift4821@temp.atv.local
  formfill mailbox watch 7d3f0b88-2c1e-4b7a-9d3e-1f0a2b3c4d5e`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var createFormat, listFormat string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a mailbox and print its address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.mailboxClient()
			if err != nil {
				return err
			}
			account, err := client.Create(cmd.Context())
			if err != nil {
				return err
			}
			if strings.EqualFold(createFormat, formatJSON) {
				return writeJSON(cmd.OutOrStdout(), account)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", pterm.Green(account.Email), pterm.Gray(account.ID.String()))
			return nil
		},
	}
	create.Flags().StringVarP(&createFormat, "format", "f", "text", "output format: text or json")

	messages := &cobra.Command{
		Use:   "messages <id|address>",
		Short: "List messages, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.mailboxClient()
			if err != nil {
				return err
			}
			account, err := resolveAccount(cmd.Context(), client, args[0])
			if err != nil {
				return err
			}
			list, err := client.Messages(cmd.Context(), account.ID)
			if err != nil {
				return err
			}
			if strings.EqualFold(listFormat, formatJSON) {
				return writeJSON(cmd.OutOrStdout(), list)
			}
			return writeMessageTable(cmd.OutOrStdout(), list)
		},
	}
	messages.Flags().StringVarP(&listFormat, "format", "f", formatTable, "output format: table or json")

	var timeout time.Duration
	watch := &cobra.Command{
		Use:   "watch <id|address>",
		Short: "Print messages as they arrive until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.mailboxClient()
			if err != nil {
				return err
			}
			account, err := resolveAccount(cmd.Context(), client, args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			pterm.Info.Printfln("watching %s", account.Email)
			printer := newMessagePrinter(cmd.OutOrStdout())
			return a.watcher(client).Watch(ctx, account.ID, printer.print)
		},
	}
	watch.Flags().DurationVar(&timeout, "timeout", 0, "stop watching after this long (0: until interrupted)")

	remove := &cobra.Command{
		Use:   "delete <id|address>",
		Short: "Delete a mailbox and its messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.mailboxClient()
			if err != nil {
				return err
			}
			account, err := resolveAccount(cmd.Context(), client, args[0])
			if err != nil {
				return err
			}
			if err := client.Delete(cmd.Context(), account.ID); err != nil {
				return err
			}
			pterm.Success.Printfln("deleted %s", account.Email)
			return nil
		},
	}

	cmd.AddCommand(create, messages, watch, remove)
	return cmd
}

func (a *app) mailboxClient() (*mailbox.Client, error) {
	return mailbox.NewClient(a.cfg.MailboxURL, mailbox.WithLogger(a.logger))
}

func (a *app) watcher(client *mailbox.Client) *mailbox.Watcher {
	return mailbox.NewWatcher(client, mailbox.WithReconnectDelay(a.cfg.ReconnectDelay))
}

// resolveAccount accepts a mailbox id or its e-mail address.
func resolveAccount(ctx context.Context, client *mailbox.Client, ref string) (mailbox.Account, error) {
	if id, err := uuid.Parse(strings.TrimSpace(ref)); err == nil {
		return client.Account(ctx, id)
	}
	return client.ByAddress(ctx, ref)
}

func writeMessageTable(out io.Writer, list []mailbox.Message) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(out, pterm.Gray("no messages"))
		return err
	}
	data := pterm.TableData{{"Received", "From", "Subject"}}
	for _, msg := range list {
		data = append(data, []string{msg.ReceivedAt.Local().Format(time.DateTime), msg.Sender, truncate(msg.Subject, 60)})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, table)
	return err
}

// messagePrinter prints each message once, however often the watcher
// delivers the full list. Writes are serialised with other output through mu.
type messagePrinter struct {
	mu   *sync.Mutex
	out  io.Writer
	seen map[uuid.UUID]struct{}
}

func newMessagePrinter(out io.Writer) *messagePrinter {
	return &messagePrinter{mu: &sync.Mutex{}, out: out, seen: map[uuid.UUID]struct{}{}}
}

func (p *messagePrinter) print(list []mailbox.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	// The list is newest first; print oldest unseen first.
	for i := len(list) - 1; i >= 0; i-- {
		msg := list[i]
		if _, ok := p.seen[msg.ID]; ok {
			continue
		}
		p.seen[msg.ID] = struct{}{}
		fmt.Fprintf(p.out, "%s %s %s\n", pterm.LightCyan("✉"), pterm.Yellow(msg.Sender), msg.Subject)
	}
}
