package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"github.com/talonworks/sortie/pkg/battle"
	"github.com/talonworks/sortie/pkg/logger"
	"github.com/talonworks/sortie/pkg/report"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print JSON schemas for the wire and debrief formats",
	Long: `Print the JSON schema for the snapshot feed, the battle results
or the archived debrief format, for renderers and external tooling.`,
	RunE: printSchema,
}

func init() {
	schemaCmd.Flags().String("type", "snapshot", "schema to print: snapshot, results or debrief")
	schemaCmd.Flags().StringP("output", "o", "", "write the schema to a file instead of stdout")
}

func printSchema(cmd *cobra.Command, _ []string) error {
	kind, _ := cmd.Flags().GetString("type")

	schema, err := buildSchema(kind)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}
	data = append(data, '\n')

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("failed to write schema: %w", err)
	}
	logger.Successf("Schema written to: %s", output)
	return nil
}

func buildSchema(kind string) (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{DoNotReference: true}

	var schema *jsonschema.Schema
	switch strings.ToLower(kind) {
	case "snapshot":
		schema = reflector.ReflectFromType(reflect.TypeOf(battle.Snapshot{}))
		if schema == nil {
			return nil, fmt.Errorf("failed to reflect snapshot schema")
		}
		schema.Title = "Battle Snapshot"
		schema.Description = "Per-tick world state broadcast to renderers over the websocket feed."
	case "results":
		schema = reflector.ReflectFromType(reflect.TypeOf(battle.BattleResults{}))
		if schema == nil {
			return nil, fmt.Errorf("failed to reflect results schema")
		}
		schema.Title = "Battle Results"
		schema.Description = "Aggregate outcome of a battle, decided before the simulation runs."
	case "debrief":
		schema = reflector.ReflectFromType(reflect.TypeOf(report.Debrief{}))
		if schema == nil {
			return nil, fmt.Errorf("failed to reflect debrief schema")
		}
		schema.Title = "Battle Debrief"
		schema.Description = "Archived record of a finished battle, including its event timeline."
	default:
		return nil, fmt.Errorf("unknown schema type %s (want snapshot, results or debrief)", kind)
	}
	return schema, nil
}
