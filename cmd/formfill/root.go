package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formfill/internal/config"
	"github.com/goliatone/go-formfill/internal/logging"
	"github.com/goliatone/go-formfill/pkg/classifier"
	"github.com/goliatone/go-formfill/pkg/dictionary"
	"github.com/goliatone/go-formfill/pkg/exclusion"
	"github.com/goliatone/go-formfill/pkg/model"
	"github.com/goliatone/go-formfill/pkg/orchestrator"
	"github.com/goliatone/go-formfill/pkg/planner"
	"github.com/goliatone/go-formfill/pkg/synth"
)

// classifierCacheSize bounds the memo shared by every plan of one process.
const classifierCacheSize = 512

// app carries the state resolved by the root command for its subcommands.
type app struct {
	envFile       string
	logLevel      string
	logJSON       bool
	seed          int64
	dictionaryDir string
	dataFile      string
	overridesFile string

	cfg    *config.Config
	logger *zap.SugaredLogger
}

func newRootCmd() *cobra.Command {
	a := &app{logger: logging.Nop()}

	root := &cobra.Command{
		Use:   "formfill",
		Short: "Classify form fields and plan or perform form fills",
		Long: `formfill recognises what each form control on a page asks for (first
name, e-mail, phone, ...) and decides how to fill it: caller supplied data
first, synthetic values otherwise. Controls in headers, navigation, footers
and sidebars, disabled or read-only controls and technical inputs are left
alone.

Examples:
  formfill plan signup.html                 # Show the plan for a saved page
  formfill plan signup.html --format json   # Machine readable plan
  formfill inspect signup.html              # Explain every classification
  formfill fill https://example.test/join   # Fill a live page in Chrome
  formfill persona --interactive            # Generate and edit a data bag
  formfill mailbox create                   # Create a temporary mailbox`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.envFile, "env-file", ".env", "dotenv file read before the environment")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.BoolVar(&a.logJSON, "log-json", false, "emit JSON logs")
	flags.Int64Var(&a.seed, "seed", -1, "random seed for reproducible plans (negative: time based)")
	flags.StringVar(&a.dictionaryDir, "dictionary", "", "directory of extra dictionary YAML/JSON files")
	flags.StringVar(&a.dataFile, "data", "", "JSON file mapping field types to values")
	flags.StringVar(&a.overridesFile, "overrides", "", "JSON file with per-control labels and overrides")

	root.AddCommand(
		newPlanCmd(a),
		newInspectCmd(a),
		newFillCmd(a),
		newPersonaCmd(a),
		newMailboxCmd(a),
	)
	return root
}

// init resolves configuration, then lets explicit flags win over it.
func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if flags.Changed("log-json") {
		cfg.LogJSON = a.logJSON
	}
	if flags.Changed("dictionary") {
		cfg.DictionaryDir = a.dictionaryDir
	}
	if flags.Changed("seed") {
		cfg.Seed = nil
		if a.seed >= 0 {
			seed := uint64(a.seed)
			cfg.Seed = &seed
		}
	}

	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, JSON: cfg.LogJSON})
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

// dictionary returns the embedded dictionary, extended by the configured
// directory when one is set.
func (a *app) dictionary() (dictionary.Dictionary, error) {
	dict := dictionary.Default()
	if a.cfg == nil || a.cfg.DictionaryDir == "" {
		return dict, nil
	}
	extended, err := dict.Extend(os.DirFS(a.cfg.DictionaryDir))
	if err != nil {
		return dictionary.Dictionary{}, err
	}
	a.logger.Debugw("dictionary extended", "dir", a.cfg.DictionaryDir)
	return extended, nil
}

// generator returns a synthetic value generator honouring the seed.
func (a *app) generator() *synth.Generator {
	if a.cfg != nil && a.cfg.Seed != nil {
		return synth.New(synth.NewRand(*a.cfg.Seed))
	}
	return synth.New(nil)
}

// orchestratorOptions assembles the planning pipeline shared by plan and fill.
func (a *app) orchestratorOptions() ([]orchestrator.Option, error) {
	dict, err := a.dictionary()
	if err != nil {
		return nil, err
	}
	cached, err := classifier.NewCached(classifier.New(classifier.WithDictionary(dict)), classifierCacheSize)
	if err != nil {
		return nil, err
	}
	gen := a.generator()

	options := []orchestrator.Option{
		orchestrator.WithLogger(a.logger),
		orchestrator.WithPlannerOptions(
			planner.WithClassifier(cached),
			planner.WithPolicy(exclusion.New(exclusion.WithDictionary(dict))),
			planner.WithRand(gen.Rand()),
			planner.WithSynthesizer(gen),
		),
	}

	if a.overridesFile != "" {
		dir, name := filepath.Split(a.overridesFile)
		if dir == "" {
			dir = "."
		}
		overrides, err := orchestrator.NewJSONOverridesFromFS(os.DirFS(dir), name)
		if err != nil {
			return nil, err
		}
		options = append(options,
			orchestrator.WithPageTransformer(overrides),
			orchestrator.WithPlanDecorators(overrides),
		)
	}
	return options, nil
}

// dataBag loads the --data file. An absent flag yields an empty bag.
func (a *app) dataBag() (model.DataBag, error) {
	if a.dataFile == "" {
		return model.DataBag{}, nil
	}
	raw, err := os.ReadFile(a.dataFile)
	if err != nil {
		return nil, fmt.Errorf("read data file: %w", err)
	}
	var values map[string]string
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("parse data file %s: %w", a.dataFile, err)
	}
	bag, unknown := model.DataBagFromMap(values)
	if len(unknown) > 0 {
		a.logger.Warnw("ignoring unknown field types in data file", "file", a.dataFile, "keys", unknown)
	}
	return bag, nil
}

// presentTypes lists the field types bag has values for, in canonical order.
func presentTypes(bag model.DataBag) []model.FieldType {
	var types []model.FieldType
	for _, ft := range model.AllFieldTypes() {
		if _, ok := bag.Lookup(ft); ok {
			types = append(types, ft)
		}
	}
	return types
}
