// Vigil — conversational risk console for wearable biometrics.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "vigil",
	Short: "Vigil — conversational risk console for wearable biometrics.",
	Long: `Vigil is an interactive console over wearable biometric data. Operators
ask for metrics, risk analyses, and reports in plain language (English or
Chinese); Vigil maps each request to tool calls, gates high-impact actions
like incident creation behind explicit approval, and renders the results
back into the conversation.`,
	RunE:          runChat, // Default to the interactive console.
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(chatCmd, versionCmd)
	_ = godotenv.Load()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}
