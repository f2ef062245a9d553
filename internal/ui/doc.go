// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI mirrors the single library screen:
//  1. [ListView] : Browse imported videos, play with enter
//  2. [ImportPromptView] : Enter the paths to import
//  3. [ImportView] : Monitor the import loop with a progress bar
//  4. [ConfirmDeleteView] : Confirm removal of the selected video
//  5. [ResultView] : Summary of the last import batch
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the ImportEngine, so the screen keeps rendering while files are copied.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, a, d, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
