// Package defaults provides embedded default assets (config and command presets).
package defaults

import _ "embed"

//go:embed default_config.toml
var DefaultConfigTOML []byte

//go:embed default_commands.toml
var DefaultCommandsTOML []byte
