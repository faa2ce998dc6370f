package main

import (
	"fmt"
	"strconv"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/djvolz/oci-genai-chatbot/llm/providers/ocigenai"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the known chat and embedding models",
	Run: func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()

		fmt.Fprintln(out, styleAccent.Render("Chat models"))
		chat := uitable.New()
		chat.MaxColWidth = 60
		chat.AddRow("MODEL", "DESCRIPTION")
		for _, m := range ocigenai.ChatModels() {
			chat.AddRow(m.ID, m.Description)
		}
		fmt.Fprintln(out, chat)

		fmt.Fprintln(out)
		fmt.Fprintln(out, styleAccent.Render("Embedding models"))
		embed := uitable.New()
		embed.MaxColWidth = 60
		embed.AddRow("MODEL", "DESCRIPTION", "DIMENSIONS")
		for _, m := range ocigenai.EmbeddingModels() {
			embed.AddRow(m.ID, m.Description, strconv.Itoa(m.Dimensions))
		}
		fmt.Fprintln(out, embed)
	},
}
