package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"go.uber.org/zap"

	formflow "github.com/goliatone/go-formflow"
	"github.com/goliatone/go-formflow/pkg/orchestrator"
	"github.com/goliatone/go-formflow/pkg/renderers/tui"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/sources"
	"github.com/goliatone/go-formflow/pkg/sources/sqlsource"
	"github.com/goliatone/go-formflow/pkg/sources/stub"
	"github.com/goliatone/go-formflow/pkg/values"
	"github.com/goliatone/go-formflow/pkg/workflow"
)

type config struct {
	schema    string
	values    string
	user      string
	workflow  string
	activity  string
	process   string
	preset    string
	roleField string
	db        string
	seed      string
	format    string
	output    string
	debug     bool
}

func main() {
	var cfg config
	flag.StringVar(&cfg.schema, "schema", "", "form schema path (JSON or YAML)")
	flag.StringVar(&cfg.values, "values", "", "JSON file of field values to start from")
	flag.StringVar(&cfg.user, "user", "", "JSON file with the signed-in user (firstName, lastName, email)")
	flag.StringVar(&cfg.workflow, "workflow", "", "JSON file with the workflow session")
	flag.StringVar(&cfg.activity, "activity", "", "activity id selecting the workflow block")
	flag.StringVar(&cfg.process, "process", "", "process id of a saved submission to resume")
	flag.StringVar(&cfg.preset, "preset", "", "JSON preset applied to loaded submissions")
	flag.StringVar(&cfg.roleField, "role-field", "", "field receiving Primary/Coapplicant on resume")
	flag.StringVar(&cfg.db, "db", "", "SQLite database backing option lists (demo stubs if empty)")
	flag.StringVar(&cfg.seed, "seed", "", "YAML seed loaded into the database")
	flag.StringVar(&cfg.format, "format", "json", "output format: json or summary")
	flag.StringVar(&cfg.output, "output", "", "output file (stdout if empty)")
	flag.BoolVar(&cfg.debug, "debug", false, "log diagnostics to stderr")
	flag.Parse()

	if strings.TrimSpace(cfg.schema) == "" {
		flag.Usage()
		os.Exit(2)
	}

	logger := zap.NewNop()
	if cfg.debug {
		dev, err := zap.NewDevelopment()
		if err != nil {
			log.Fatalf("Failed to build logger: %v", err)
		}
		logger = dev
	}
	defer logger.Sync() //nolint:errcheck

	out, err := run(context.Background(), cfg, logger)
	if err != nil {
		log.Fatalf("Failed to run form: %v", err)
	}

	if cfg.output != "" {
		if err := os.WriteFile(cfg.output, out, 0o644); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
		fmt.Printf("Answers written to %s\n", cfg.output)
		return
	}
	fmt.Println(string(out))
}

func run(ctx context.Context, cfg config, logger *zap.Logger) ([]byte, error) {
	doc, err := formflow.LoadDocument(cfg.schema)
	if err != nil {
		return nil, err
	}

	set, closeSet, err := openSources(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	defer closeSet()

	opts := []orchestrator.Option{
		orchestrator.WithSources(set),
		orchestrator.WithLogger(logger),
	}
	if cfg.user != "" {
		data, err := os.ReadFile(cfg.user)
		if err != nil {
			return nil, fmt.Errorf("read user: %w", err)
		}
		opts = append(opts, orchestrator.WithIdentity(workflow.ParseIdentity(data)))
	}
	var session []byte
	if cfg.workflow != "" {
		session, err = os.ReadFile(cfg.workflow)
		if err != nil {
			return nil, fmt.Errorf("read workflow: %w", err)
		}
		opts = append(opts, orchestrator.WithWorkflowSession(session))
	}
	if cfg.preset != "" {
		data, err := os.ReadFile(cfg.preset)
		if err != nil {
			return nil, fmt.Errorf("read preset: %w", err)
		}
		preset, err := orchestrator.NewJSONPresetTransformer(data)
		if err != nil {
			return nil, err
		}
		opts = append(opts, orchestrator.WithSubmissionTransformer(preset))
	}
	if cfg.roleField != "" {
		opts = append(opts, orchestrator.WithRoleField(schema.FieldID(cfg.roleField)))
	}

	o := formflow.NewOrchestrator(doc, opts...)
	if session != nil && cfg.activity != "" {
		o.SetBlocked(workflow.ParseSession(session, cfg.activity).Blocked().IDs()...)
	}

	if cfg.process != "" {
		if err := o.LoadSubmission(ctx, sources.SubmissionRef{ProcessID: cfg.process}); err != nil {
			return nil, err
		}
	} else {
		o.ApplyDefaults()
	}
	if cfg.values != "" {
		vals, err := readValues(cfg.values)
		if err != nil {
			return nil, err
		}
		o.Hydrate(vals)
	}

	format := tui.OutputFormatJSON
	if strings.EqualFold(cfg.format, string(tui.OutputFormatSummary)) {
		format = tui.OutputFormatSummary
	}
	return formflow.RunTerminal(ctx, o,
		tui.WithOutputFormat(format),
		tui.WithLogger(logger),
		tui.WithTheme(tui.Theme{PanelPrefix: "== ", InfoPrefix: "  ", ErrorPrefix: "! "}),
	)
}

func openSources(ctx context.Context, cfg config, logger *zap.Logger) (sources.Set, func(), error) {
	if cfg.db == "" {
		if cfg.seed != "" {
			return sources.Set{}, nil, fmt.Errorf("-seed requires -db")
		}
		return stub.New().Set(), func() {}, nil
	}
	store, err := sqlsource.Open(ctx, cfg.db, sqlsource.WithLogger(logger))
	if err != nil {
		return sources.Set{}, nil, err
	}
	if cfg.seed != "" {
		if err := store.LoadSeedFile(ctx, cfg.seed); err != nil {
			store.Close()
			return sources.Set{}, nil, err
		}
	}
	return store.Set(), func() { store.Close() }, nil
}

func readValues(path string) (values.Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read values: %w", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse values: %w", err)
	}
	vals := values.New()
	for key, v := range raw {
		vals.Set(schema.FieldID(key), v)
	}
	return vals, nil
}
