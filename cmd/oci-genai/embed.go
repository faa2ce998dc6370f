package main

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"
)

var (
	embedModel         string
	embedCompartmentID string
)

var embedCmd = &cobra.Command{
	Use:   "embed <text>",
	Short: "Generate an embedding vector for text",
	Args:  cobra.ExactArgs(1),
	RunE:  runEmbed,
}

func init() {
	embedCmd.Flags().StringVarP(&embedModel, "model", "m", "", "embedding model to use")
	embedCmd.Flags().StringVarP(&embedCompartmentID, "compartment-id", "c", "", "OCI compartment ID (defaults to OCI_COMPARTMENT_ID)")
}

func runEmbed(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	if embedModel != "" {
		settings.EmbeddingModel = embedModel
	}
	if embedCompartmentID != "" {
		settings.CompartmentID = embedCompartmentID
	}

	bot, err := newClient(settings)
	if err != nil {
		return err
	}

	result, err := bot.Embedding(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, styleAccent.Render(fmt.Sprintf("Generated %d-dimensional embedding", result.Dimension())))

	preview := result.Vector
	if len(preview) > 5 {
		preview = preview[:5]
	}
	fmt.Fprintf(out, "First values: %v\n", preview)

	var sumSquares float64
	for _, v := range result.Vector {
		sumSquares += v * v
	}
	fmt.Fprintf(out, "Magnitude: %.6f\n", math.Sqrt(sumSquares))
	return nil
}
