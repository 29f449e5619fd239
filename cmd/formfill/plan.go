package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formfill/pkg/classifier"
	"github.com/goliatone/go-formfill/pkg/discovery"
	"github.com/goliatone/go-formfill/pkg/discovery/htmldoc"
	"github.com/goliatone/go-formfill/pkg/exclusion"
	"github.com/goliatone/go-formfill/pkg/model"
	"github.com/goliatone/go-formfill/pkg/orchestrator"
	"github.com/goliatone/go-formfill/pkg/report"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

func newPlanCmd(a *app) *cobra.Command {
	var (
		format string
		url    string
		output string
	)
	cmd := &cobra.Command{
		Use:   "plan <file.html|->",
		Short: "Plan a fill for a saved HTML page without touching it",
		Long: `Parse a saved HTML page, classify its controls and print the fill plan.
Use "-" to read the page from stdin.

Formats:
  table  - Human readable table (default)
  json   - Page, plan and summary as JSON
  text   - Plain text report
  html   - Standalone HTML report

Exits with status 2 when the page has nothing to fill.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, closeOut, err := openOutput(cmd, output)
			if err != nil {
				return err
			}
			defer closeOut()

			options, err := a.orchestratorOptions()
			if err != nil {
				return err
			}
			data, err := a.dataBag()
			if err != nil {
				return err
			}
			result, err := orchestrator.New(options...).Run(cmd.Context(), orchestrator.Request{
				Source: htmlSource(cmd, args[0], url),
				Data:   data,
				DryRun: true,
			})
			if err != nil {
				return err
			}
			if err := writeResult(out, format, result); err != nil {
				return err
			}
			if err := result.Outcome(); err != nil {
				return &outcomeError{err: err}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format: table, json, text or html")
	cmd.Flags().StringVar(&url, "url", "", "URL recorded for the page")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write output to a file instead of stdout")
	return cmd
}

func newInspectCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "inspect <file.html|->",
		Short: "Explain how every control on a saved page is classified",
		Long: `List every control on the page, including controls outside forms, with
the pattern or declared kind that classified it and the reason it would be
skipped, if any.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dict, err := a.dictionary()
			if err != nil {
				return err
			}
			page, err := htmlSource(cmd, args[0], "").Discover(cmd.Context())
			if err != nil && !errors.Is(err, discovery.ErrNoControls) {
				return err
			}
			rows := inspectPage(page, classifier.New(classifier.WithDictionary(dict)), exclusion.New(exclusion.WithDictionary(dict)))
			return writeInspection(cmd.OutOrStdout(), format, rows)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format: table or json")
	return cmd
}

func htmlSource(cmd *cobra.Command, path, url string) discovery.Source {
	var options []htmldoc.Option
	if url != "" {
		options = append(options, htmldoc.WithURL(url))
	}
	if path == "-" {
		return htmldoc.NewSource(func() (io.ReadCloser, error) {
			return io.NopCloser(cmd.InOrStdin()), nil
		}, options...)
	}
	return htmldoc.FileSource(path, options...)
}

func openOutput(cmd *cobra.Command, path string) (io.Writer, func(), error) {
	if path == "" {
		return cmd.OutOrStdout(), func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

func writeResult(out io.Writer, format string, result orchestrator.Result) error {
	switch strings.ToLower(format) {
	case formatTable, "":
		return writePlanTable(out, result)
	case formatJSON:
		return writeJSON(out, result)
	}
	reportFormat, err := report.ParseFormat(format)
	if err != nil {
		return err
	}
	return report.New().Render(out, reportFormat, report.NewView(result.Page, result.Plan))
}

func writePlanTable(out io.Writer, result orchestrator.Result) error {
	view := report.NewView(result.Page, result.Plan)
	data := pterm.TableData{{"Ref", "Control", "Label", "Field type", "Action"}}
	for _, row := range view.Rows {
		fieldType := row.FieldType
		if fieldType == "" {
			fieldType = "-"
		}
		action := truncate(row.Action, 48)
		if !row.Eligible {
			action = pterm.Gray(action)
		}
		data = append(data, []string{row.Ref, row.Control, truncate(row.Label, 32), fieldType, action})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(out, table)

	summary := result.Summary
	line := fmt.Sprintf("eligible %d, filled %d, skipped %d", summary.TotalEligible, summary.FilledCount, summary.SkippedCount)
	if result.Plan.FallbackPass {
		line += " (no forms: planned every control)"
	}
	if summary.Success {
		fmt.Fprintln(out, pterm.Green("✓ ")+line)
	} else {
		fmt.Fprintln(out, pterm.Yellow("! ")+line)
	}
	return nil
}

type inspection struct {
	Ref        string           `json:"ref"`
	Control    string           `json:"control"`
	InForm     bool             `json:"inForm"`
	Match      classifier.Match `json:"match"`
	SkipReason string           `json:"skipReason,omitempty"`
}

func inspectPage(page discovery.Page, c *classifier.Classifier, policy *exclusion.Policy) []inspection {
	rows := make([]inspection, 0, len(page.Controls))
	for _, control := range page.Controls {
		row := inspection{
			Ref:     control.Ref,
			Control: report.DescribeControl(control),
			InForm:  control.InForm,
			Match:   c.Explain(control),
		}
		if reason, skip := policy.Reason(control); skip {
			row.SkipReason = string(reason)
		} else if control.Kind.IsNonData() {
			row.SkipReason = string(model.SkipNonDataControl)
		}
		rows = append(rows, row)
	}
	return rows
}

func writeInspection(out io.Writer, format string, rows []inspection) error {
	if strings.EqualFold(format, formatJSON) {
		return writeJSON(out, rows)
	}
	data := pterm.TableData{{"Ref", "Control", "Form", "Field type", "By", "Pattern", "Skip"}}
	for _, row := range rows {
		form := ""
		if row.InForm {
			form = "yes"
		}
		fieldType := string(row.Match.FieldType)
		if fieldType == "" {
			fieldType = "-"
		}
		data = append(data, []string{
			row.Ref, row.Control, form, fieldType, string(row.Match.Source), row.Match.Pattern, row.SkipReason,
		})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, table)
	return err
}

func writeJSON(out io.Writer, value any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
