// Package config provides configuration management for the slide puzzle.
//
// The config package handles:
//   - Loading game configurations from JSON or YAML files
//   - Configuration validation through the engine rules
//   - Default configuration management
//   - Configuration discovery and listing
//
// Configuration Format:
//
// Each file in the config directory describes one rule set: the time limit
// per level, the first level that offers extra time after a timeout, whether
// shuffles must be solvable, which shortcuts are enabled, the continuation
// questions and the player-facing messages. Missing messages fall back to the
// built-in texts.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Load specific configuration (extension optional)
//	gameConfig, err := manager.LoadConfig("relaxed")
//
//	// Get default configuration ("classic" when present)
//	defaultConfig := manager.GetDefault()
package config
