package main

import (
	"encoding/json"
	"os"

	"github.com/invopop/jsonschema"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"flockscope/internal/analysis"
)

var reflector = jsonschema.Reflector{
	AllowAdditionalProperties: false,
	DoNotReference:            true,
}

var schemaCommand = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of an analysis result",
	Run: func(cmd *cobra.Command, args []string) {
		schema := reflector.Reflect(&analysis.Result{})
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(schema); err != nil {
			logrus.WithError(err).Fatal("encode schema failed")
		}
	},
}
