package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formfill/internal/prompt"
	"github.com/goliatone/go-formfill/pkg/model"
	"github.com/goliatone/go-formfill/pkg/synth"
)

func newPersonaCmd(a *app) *cobra.Command {
	var (
		interactive bool
		email       string
		domain      string
		format      string
		output      string
	)
	cmd := &cobra.Command{
		Use:   "persona",
		Short: "Generate a consistent data bag for a fictional person",
		Long: `Generate a value for every field type. Names, date of birth and age agree
with each other, as do the address parts. Values from --data replace the
generated ones. The JSON output can be passed back through --data.

Examples:
  formfill persona --seed 7
  formfill persona --format json -o me.json
  formfill persona --interactive --domain example.test`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.dataBag()
			if err != nil {
				return err
			}
			bag := a.generator().Persona(synth.PersonaOptions{
				Email:  email,
				Domain: domain,
				Year:   time.Now().Year(),
			})
			for ft, value := range data {
				bag[ft] = value
			}

			if interactive {
				bag, err = prompt.EditDataBag(cmd.Context(), prompt.NewSurveyDriver(), bag)
				if errors.Is(err, prompt.ErrDiscarded) {
					pterm.Warning.Println("changes discarded")
					return nil
				}
				if err != nil {
					return err
				}
			}

			out, closeOut, err := openOutput(cmd, output)
			if err != nil {
				return err
			}
			defer closeOut()
			if strings.EqualFold(format, formatJSON) {
				return writeJSON(out, bag)
			}
			return writePersonaTable(out, bag)
		},
	}
	flags := cmd.Flags()
	flags.BoolVarP(&interactive, "interactive", "i", false, "review and edit the values before printing")
	flags.StringVar(&email, "email", "", "use this e-mail address verbatim")
	flags.StringVar(&domain, "domain", "", "domain for the generated e-mail address")
	flags.StringVarP(&format, "format", "f", formatTable, "output format: table or json")
	flags.StringVarP(&output, "output", "o", "", "write output to a file instead of stdout")
	return cmd
}

func writePersonaTable(out io.Writer, bag model.DataBag) error {
	data := pterm.TableData{{"Field type", "Value"}}
	for _, ft := range presentTypes(bag) {
		data = append(data, []string{string(ft), bag[ft]})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, table)
	return err
}
