package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/djvolz/oci-genai-chatbot/chatbot"
	"github.com/djvolz/oci-genai-chatbot/llm"
)

// System prompts for the developer-focused interaction modes.
var modePrompts = map[string]string{
	"suggest": "You are an AI coding assistant. Provide helpful suggestions and explanations for code. Always ask for confirmation before making changes.",
	"code":    "You are an expert programmer. Write clean, efficient code with clear explanations. Format code properly with syntax highlighting.",
	"explain": "You are a technical documentation expert. Explain code, algorithms, and concepts clearly and concisely.",
	"debug":   "You are a debugging expert. Help identify and fix issues in code. Provide step-by-step debugging guidance.",
	"review":  "You are a code reviewer. Analyze code for best practices, potential issues, and improvement suggestions.",
}

var (
	chatModel         string
	chatTemperature   float64
	chatMaxTokens     int
	chatSystemPrompt  string
	chatCompartmentID string
	chatMode          string
	chatNoStream      bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	RunE:  runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatModel, "model", "m", "", "chat model to use")
	chatCmd.Flags().Float64VarP(&chatTemperature, "temperature", "t", -1, "response temperature (0.0-2.0)")
	chatCmd.Flags().IntVar(&chatMaxTokens, "max-tokens", 0, "maximum tokens to generate")
	chatCmd.Flags().StringVarP(&chatSystemPrompt, "system-prompt", "s", "", "system prompt to set context")
	chatCmd.Flags().StringVarP(&chatCompartmentID, "compartment-id", "c", "", "OCI compartment ID (defaults to OCI_COMPARTMENT_ID)")
	chatCmd.Flags().StringVar(&chatMode, "mode", "", "interaction mode: suggest, code, explain, debug, review")
	chatCmd.Flags().BoolVar(&chatNoStream, "no-stream", false, "wait for complete responses instead of streaming")
}

func runChat(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	if chatModel != "" {
		settings.Model = chatModel
	}
	if chatTemperature >= 0 {
		settings.Temperature = chatTemperature
	}
	if chatMaxTokens > 0 {
		settings.MaxTokens = chatMaxTokens
	}
	if chatCompartmentID != "" {
		settings.CompartmentID = chatCompartmentID
	}

	systemPrompt := settings.SystemPrompt
	if chatSystemPrompt != "" {
		systemPrompt = chatSystemPrompt
	}
	if chatMode != "" {
		prompt, ok := modePrompts[chatMode]
		if !ok {
			return fmt.Errorf("unknown mode %q (available: %s)", chatMode, strings.Join(modeNames(), ", "))
		}
		systemPrompt = prompt
	}

	bot, err := newClient(settings)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), styleError.Render("Failed to initialize chatbot: "+err.Error()))
		fmt.Fprintln(cmd.ErrOrStderr(), styleDim.Render("Check that ~/.oci/config exists and OCI_COMPARTMENT_ID is set."))
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, styleAccent.Render("oci-genai"), styleDim.Render("model: "+settings.Model))
	fmt.Fprintln(out, styleDim.Render("Type your message. Commands: /reset, /history, /mode, /help, exit"))
	fmt.Fprintln(out)

	scanner := newLineScanner(os.Stdin)
	for {
		fmt.Fprint(out, styleUser.Render("You")+" > ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "exit" || line == "quit" || line == "bye":
			fmt.Fprintln(out, styleDim.Render("Goodbye!"))
			return nil
		case strings.HasPrefix(line, "/"):
			if done := handleCommand(out, bot, line, &systemPrompt); done {
				return nil
			}
			continue
		}

		if err := sendTurn(cmd.Context(), out, bot, line, systemPrompt); err != nil {
			fmt.Fprintln(out, styleError.Render("Error: "+err.Error()))
		}
		fmt.Fprintln(out)
	}
}

// maxInputLine bounds a single pasted prompt. bufio's default 64KB token
// limit would end the session with ErrTooLong.
const maxInputLine = 1024 * 1024

func newLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxInputLine)
	return scanner
}

func sendTurn(ctx context.Context, out io.Writer, bot *chatbot.Client, line, systemPrompt string) error {
	var opts []chatbot.RequestOption
	if systemPrompt != "" {
		opts = append(opts, chatbot.WithSystemPrompt(systemPrompt))
	}

	fmt.Fprint(out, styleBot.Render("Bot")+" > ")
	if chatNoStream {
		reply, err := bot.Chat(ctx, line, opts...)
		if err != nil {
			fmt.Fprintln(out)
			return err
		}
		fmt.Fprintln(out, reply)
		return nil
	}

	stream, err := bot.ChatStream(ctx, line, opts...)
	if err != nil {
		fmt.Fprintln(out)
		return err
	}
	defer stream.Close()
	for {
		fragment, err := stream.Recv()
		if err != nil {
			fmt.Fprintln(out)
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		fmt.Fprint(out, fragment)
	}
}

// handleCommand processes slash commands; it reports whether the session
// should end.
func handleCommand(out io.Writer, bot *chatbot.Client, line string, systemPrompt *string) bool {
	parts := strings.Fields(strings.TrimPrefix(line, "/"))
	if len(parts) == 0 {
		return false
	}
	switch parts[0] {
	case "exit", "quit":
		fmt.Fprintln(out, styleDim.Render("Goodbye!"))
		return true
	case "reset":
		bot.ResetHistory()
		fmt.Fprintln(out, styleDim.Render("Conversation history cleared."))
	case "history":
		printHistory(out, bot.History())
	case "mode":
		if len(parts) < 2 {
			fmt.Fprintln(out, styleDim.Render("Available modes: "+strings.Join(modeNames(), ", ")))
			break
		}
		prompt, ok := modePrompts[parts[1]]
		if !ok {
			fmt.Fprintln(out, styleError.Render("Unknown mode: "+parts[1]))
			break
		}
		// A mode switch changes the system prompt, which requires a fresh
		// transcript.
		bot.ResetHistory()
		*systemPrompt = prompt
		fmt.Fprintln(out, styleDim.Render("Mode changed to "+parts[1]+" (history cleared)."))
	case "help":
		fmt.Fprintln(out, styleDim.Render("/reset    clear conversation history"))
		fmt.Fprintln(out, styleDim.Render("/history  show conversation history"))
		fmt.Fprintln(out, styleDim.Render("/mode     switch interaction mode"))
		fmt.Fprintln(out, styleDim.Render("/exit     end the session"))
	default:
		fmt.Fprintln(out, styleError.Render("Unknown command: /"+parts[0]))
	}
	return false
}

func printHistory(out io.Writer, history []llm.Message) {
	if len(history) == 0 {
		fmt.Fprintln(out, styleDim.Render("No conversation history yet."))
		return
	}
	for _, msg := range history {
		switch msg.Role {
		case llm.RoleUser:
			fmt.Fprintln(out, styleUser.Render("You:"), msg.Content)
		case llm.RoleAssistant:
			fmt.Fprintln(out, styleBot.Render("Bot:"), msg.Content)
		default:
			fmt.Fprintln(out, styleDim.Render("System: "+msg.Content))
		}
	}
}

func modeNames() []string {
	names := make([]string, 0, len(modePrompts))
	for name := range modePrompts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
