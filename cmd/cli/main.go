// Command cli runs a validation suite from the command line and prints the
// aggregated result as JSON.
//
// Usage:
//
//	cli -file data.csv -rules rules.json [-suite name] [-limit 1000]
//
// The rules file holds a JSON array of rule specifications, the same shape
// the HTTP API accepts.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"goexpect/adapters/llm"
	"goexpect/adapters/memory"
	"goexpect/adapters/source"
	"goexpect/app"
	"goexpect/domain/core"
	"goexpect/domain/dataset"
	"goexpect/domain/rules"
	"goexpect/models"
)

func main() {
	filePath := flag.String("file", "", "path to a CSV or XLSX file to validate")
	rulesPath := flag.String("rules", "", "path to a JSON file with rule specifications")
	suiteID := flag.String("suite", "cli", "suite identifier recorded with the run")
	rowLimit := flag.Int("limit", app.DefaultRowLimit, "max rows to read (0 = full scan)")
	flag.Parse()

	if *filePath == "" || *rulesPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()

	specs, err := loadSpecs(*rulesPath)
	if err != nil {
		log.Fatalf("[CLI] %v", err)
	}

	registry := rules.NewRegistry()
	service := app.NewValidationService(
		source.NewResolver(),
		llm.NewJudgeAdapter(models.DefaultAIConfig()),
		memory.NewRunRecorder(),
		registry,
	)
	service.SetRowLimit(*rowLimit)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	run, err := service.Run(ctx, core.SuiteID(*suiteID), dataset.Descriptor{FilePath: *filePath}, specs)
	if err != nil {
		log.Fatalf("[CLI] validation failed: %v", err)
	}

	out, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		log.Fatalf("[CLI] %v", err)
	}
	fmt.Println(string(out))

	if !run.Success {
		os.Exit(1)
	}
}

func loadSpecs(path string) ([]rules.Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var specs []rules.Spec
	if err := json.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("failed to parse rules file: %w", err)
	}
	return specs, nil
}
