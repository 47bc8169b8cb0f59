// Package tui provides terminal user interface components for repolens.
//
// This package uses the Bubble Tea framework for the interactive report
// browser used by the browse command.
//
// # Report Browser
//
// The browser lists a report grouped into sections (languages, frameworks,
// dependencies per ecosystem, manifests, ignored patterns, skipped paths and
// commands) and allows selection:
//
//	opts := tui.BrowseOptions{Target: target, AllowReadme: true}
//	result, err := tui.RunBrowser(r, opts)
//	switch result.Action {
//	case tui.ActionSelect:
//	    // Show result.Entry
//	case tui.ActionReadme:
//	    // Generate a README with result.Readme
//	case tui.ActionQuit:
//	    // Exit
//	}
//
// # Browser Features
//
//   - Keyboard navigation (j/k or arrows), headers auto-skipped
//   - Quick actions: Enter (select), r (README wizard), / (filter), q (quit)
//   - Status glyphs: ✓ parsed or detected, ⚠ partial or skipped, ○ ignored
//   - README wizard when AllowReadme is true (repository, provider, model, output)
//
// SimpleView renders the same sections as plain text for non-interactive
// output.
//
// # Dependencies
//
// Uses the Charm libraries:
//   - github.com/charmbracelet/bubbletea - TUI framework
//   - github.com/charmbracelet/bubbles - UI components
//   - github.com/charmbracelet/lipgloss - Styling
package tui
