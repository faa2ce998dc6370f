// Command oci-genai is a terminal chatbot and embedding client for the
// OCI Generative AI service.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
