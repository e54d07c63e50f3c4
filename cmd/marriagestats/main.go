package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/spektr-org/marriagestats/config"
	"github.com/spektr-org/marriagestats/logger"
	"github.com/spektr-org/marriagestats/report"
)

// ============================================================================
// MARRIAGESTATS CLI — Marriage registry charts, maps and tables
// ============================================================================

const version = "0.1.0"

func main() {
	// ── Flags ─────────────────────────────────────────────────────────────
	configPath := flag.String("config", "", "Path to a YAML config overlaid on the embedded defaults")
	only := flag.String("only", "", "Run only the reports of this kind")
	showVersion := flag.Bool("version", false, "Print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `marriagestats — Marriage registry reports

Usage:
  marriagestats
  marriagestats --config run.yaml
  marriagestats --only region_map

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Environment:
  %s    Config file used when --config is not given

Report kinds:
  trend_by_pairing     tendencia.png
  trend_same_sex       tendencia_mismo_sexo.png
  trend_opposite_sex   tendencia_sexo_opuesto.png
  age                  edades_hombres.png, edades_mujeres.png
  region_map           mapa_<year>.png
  residence            console table
`, config.EnvPath)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("marriagestats %s\n", version)
		os.Exit(0)
	}

	// ── Config ────────────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	reports := cfg.Reports
	if *only != "" {
		reports = cfg.Only(*only)
		if len(reports) == 0 {
			fmt.Fprintf(os.Stderr, "Error: no reports of kind %q\n", *only)
			flag.Usage()
			os.Exit(1)
		}
	}

	// ── Logger ────────────────────────────────────────────────────────────
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	runID := uuid.NewString()
	log.Info("run started", "run_id", runID, "reports", len(reports), "output_dir", cfg.OutputDir)

	// ── Run ───────────────────────────────────────────────────────────────
	env, err := report.NewEnv(cfg, log, runID, os.Stdout)
	if err != nil {
		log.Fatal("setup failed", "run_id", runID, "error", err)
	}
	if err := report.Run(env, reports); err != nil {
		log.Fatal("run failed", "run_id", runID, "error", err)
	}
	log.Info("run finished", "run_id", runID)
}
