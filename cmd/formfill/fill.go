package main

import (
	"context"
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-formfill/pkg/browser"
	"github.com/goliatone/go-formfill/pkg/mailbox"
	"github.com/goliatone/go-formfill/pkg/model"
	"github.com/goliatone/go-formfill/pkg/orchestrator"
	"github.com/goliatone/go-formfill/pkg/synth"
)

type fillOptions struct {
	dryRun       bool
	persona      bool
	useMailbox   bool
	watch        bool
	watchTimeout time.Duration
	format       string
	browserURL   string
	headless     bool
}

func newFillCmd(a *app) *cobra.Command {
	var opts fillOptions
	cmd := &cobra.Command{
		Use:   "fill <url>",
		Short: "Fill the forms of a live page in Chrome",
		Long: `Open the page in Chrome (launched, or reached through FORMFILL_BROWSER_URL),
plan the fill and apply it, dispatching input and change events so page
scripts see the new values.

With --mailbox a temporary mailbox is created and its address is used as the
e-mail value; --watch then prints incoming messages (confirmation links,
codes) while the fill runs and afterwards, until interrupted or until
--watch-timeout.

Examples:
  formfill fill https://example.test/join --persona
  formfill fill https://example.test/join --data me.json --dry-run
  formfill fill https://example.test/join --persona --mailbox --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("headless") {
				opts.headless = a.cfg.Headless
			}
			if !cmd.Flags().Changed("browser-url") {
				opts.browserURL = a.cfg.BrowserURL
			}
			if opts.watch && !opts.useMailbox {
				return fmt.Errorf("--watch requires --mailbox")
			}
			return a.runFill(cmd, args[0], opts)
		},
	}
	flags := cmd.Flags()
	flags.BoolVar(&opts.dryRun, "dry-run", false, "plan against the live page without changing it")
	flags.BoolVar(&opts.persona, "persona", false, "fill every field type from a generated persona (--data values win)")
	flags.BoolVar(&opts.useMailbox, "mailbox", false, "create a temporary mailbox and use its address as the e-mail value")
	flags.BoolVar(&opts.watch, "watch", false, "print messages arriving in the mailbox")
	flags.DurationVar(&opts.watchTimeout, "watch-timeout", 0, "stop watching after this long (0: until interrupted)")
	flags.StringVarP(&opts.format, "format", "f", formatTable, "output format: table, json, text or html")
	flags.StringVar(&opts.browserURL, "browser-url", "", "DevTools URL of a running browser")
	flags.BoolVar(&opts.headless, "headless", true, "run a launched browser headless")
	return cmd
}

func (a *app) runFill(cmd *cobra.Command, url string, opts fillOptions) error {
	ctx := cmd.Context()
	out := newMessagePrinter(cmd.OutOrStdout())

	data, err := a.dataBag()
	if err != nil {
		return err
	}

	var (
		client  *mailbox.Client
		account mailbox.Account
	)
	if opts.useMailbox {
		if client, err = a.mailboxClient(); err != nil {
			return err
		}
		if account, err = client.Create(ctx); err != nil {
			return err
		}
		pterm.Info.Printfln("mailbox %s", account.Email)
	}

	if opts.persona {
		persona := a.generator().Persona(synth.PersonaOptions{Email: account.Email, Year: time.Now().Year()})
		for ft, value := range data {
			persona[ft] = value
		}
		data = persona
	}
	if account.Email != "" {
		data[model.FieldTypeEmail] = account.Email
	}

	options, err := a.orchestratorOptions()
	if err != nil {
		return err
	}

	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	if opts.watchTimeout > 0 {
		watchCtx, stopWatch = context.WithTimeout(ctx, opts.watchTimeout)
		defer stopWatch()
	}
	group, groupCtx := errgroup.WithContext(watchCtx)

	if opts.watch {
		group.Go(func() error {
			return a.watcher(client).Watch(groupCtx, account.ID, out.print)
		})
	}

	group.Go(func() error {
		fillErr := a.fillPage(groupCtx, url, opts, options, data, out)
		if !opts.watch || fillErr != nil {
			stopWatch()
		}
		return fillErr
	})

	return group.Wait()
}

func (a *app) fillPage(ctx context.Context, url string, opts fillOptions, options []orchestrator.Option, data model.DataBag, out *messagePrinter) error {
	session, err := browser.Open(ctx,
		browser.WithControlURL(opts.browserURL),
		browser.WithHeadless(opts.headless),
		browser.WithLogger(a.logger),
	)
	if err != nil {
		return err
	}
	defer func() {
		if err := session.Close(); err != nil {
			a.logger.Warnw("closing browser", "error", err)
		}
	}()

	if err := session.Navigate(ctx, url); err != nil {
		return err
	}
	options = append(options, orchestrator.WithExecutor(session))
	result, err := orchestrator.New(options...).Run(ctx, orchestrator.Request{
		Source: session,
		Data:   data,
		DryRun: opts.dryRun,
	})
	if err != nil {
		return err
	}

	out.mu.Lock()
	err = writeResult(out.out, opts.format, result)
	if err == nil && result.Applied != nil && result.Applied.Failed() > 0 {
		fmt.Fprintln(out.out, pterm.Yellow(fmt.Sprintf("! %d step(s) could not be applied", result.Applied.Failed())))
	}
	out.mu.Unlock()
	if err != nil {
		return err
	}
	if err := result.Outcome(); err != nil {
		return &outcomeError{err: err}
	}
	return nil
}
