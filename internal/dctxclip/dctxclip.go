// Package dctxclip wraps atotto/clipboard, the library the pack's
// evmts-agent/tui stack pulls in transitively for the same purpose, for
// dircontxt's -c/--clipboard mode: copy the manifest text to the system
// clipboard instead of leaving a .llmcontext.txt file behind.
package dctxclip

import (
	"fmt"

	"github.com/atotto/clipboard"
)

// Copy places text on the system clipboard.
func Copy(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	return nil
}
