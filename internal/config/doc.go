// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package config provides configuration management for chatbot.

# Key Components

  - Config: endpoint, conversation, ui, server and log sections
  - Load / LoadFromPath: TOML file, defaults, CHATBOT_* overrides, validation
  - Encode / SaveTOML: TOML output, atomic write with 0600 permissions
  - Watch: fsnotify-based reload of a config file

# Usage

	cfg, err := config.Load("")
	if err != nil {
		return err
	}
	client := generate.NewClientWithConfig(&generate.ClientConfig{
		Endpoint: cfg.Endpoint.URL,
		Timeout:  cfg.Endpoint.Timeout(),
	})
*/
package config
