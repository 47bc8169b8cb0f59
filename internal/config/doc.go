// Package config loads repolens configuration.
//
// Configuration comes from three layers, later ones winning:
//
//   - built-in defaults
//   - an optional repolens.toml, given with --config or found in the
//     current directory or $XDG_CONFIG_HOME/repolens
//   - environment variables prefixed with REPOLENS_, with dots in keys
//     replaced by underscores (REPOLENS_LLM_MODEL overrides llm.model)
//
// # File Format
//
//	[analysis]
//	workers = 8
//	sample_files = 10
//	sample_bytes = 4096
//	max_manifest_bytes = 1048576
//	insights = true
//
//	[[analysis.extra_ignore]]
//	pattern = "fixtures"
//	reason = "test fixtures"
//	kind = "dir"
//
//	[catalog]
//	files = ["./catalog.local.yaml"]
//
//	[llm]
//	provider = "ollama"        # or "gemini"
//	model = "llama3.2:latest"
//	host = "http://localhost:11434"
//	api_key_env = "GEMINI_API_KEY"
//	timeout = "15m"
//
//	[readme]
//	output = "README.md"
//	clone_dir = "cloned_repo"
//	keep_clone = false
//
// # Validation
//
// Load validates after decoding; Validate can be called again after flags
// have been applied on top of a loaded Config.
package config
