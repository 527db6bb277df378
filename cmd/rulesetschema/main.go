// Command rulesetschema writes the JSON schema of class rule-set assets,
// for editor validation of internal/data/rulesets/*.yaml.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	"github.com/udisondev/skirmish/internal/data"
)

func main() {
	var outPath string
	flag.StringVar(&outPath, "out", "", "output path for the JSON schema (stdout if empty)")
	flag.Parse()

	out, err := render(buildSchema())
	if err != nil {
		slog.Error("rulesetschema", "err", err)
		os.Exit(1)
	}

	if outPath == "" {
		os.Stdout.Write(out)
		return
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		slog.Error("create output dir", "err", err)
		os.Exit(1)
	}
	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		slog.Error("write schema", "err", err)
		os.Exit(1)
	}
	slog.Info("schema written", "path", outPath, "bytes", len(out))
}

func buildSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
	}
	schema := reflector.Reflect(&data.RuleSet{})
	schema.Title = "Skirmish Rule Set"
	schema.Description = "Class asset: base stats, triggers and abilities copied into an actor on class assignment."
	return schema
}

func render(schema *jsonschema.Schema) ([]byte, error) {
	out, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return append(out, '\n'), nil
}
