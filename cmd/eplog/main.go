// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"github.com/tombee/eplog/internal/cli"
	"github.com/tombee/eplog/internal/commands/add"
	"github.com/tombee/eplog/internal/commands/databases"
	execcmd "github.com/tombee/eplog/internal/commands/exec"
	"github.com/tombee/eplog/internal/commands/initialize"
	"github.com/tombee/eplog/internal/commands/list"
	settingscmd "github.com/tombee/eplog/internal/commands/settings"
	versioncmd "github.com/tombee/eplog/internal/commands/version"
)

// Version information (injected via ldflags at build time)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	// Set version information from build-time ldflags
	cli.SetVersion(version, commit, buildDate)

	// Create root command and add subcommands
	rootCmd := cli.NewRootCommand()

	// Core journal commands
	rootCmd.AddCommand(add.NewAddCommand())
	rootCmd.AddCommand(list.NewListCommand())

	// Setup and configuration
	rootCmd.AddCommand(initialize.NewInitCommand())
	rootCmd.AddCommand(databases.NewDatabasesCommand())
	rootCmd.AddCommand(settingscmd.NewSettingsCommand())

	// Scripting
	rootCmd.AddCommand(execcmd.NewExecCommand())

	// Version command
	rootCmd.AddCommand(versioncmd.NewVersionCommand())

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		cli.HandleExitError(err)
	}
}
