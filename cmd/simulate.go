// Copyright 2025 Arion Yau
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

package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/wokar/lgnetcast/internal/logger"
	"github.com/wokar/lgnetcast/internal/simulator"
)

var (
	simulateListenAddr string
	simulateKey        string
	simulateConfigPath string
	simulateInitConfig bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a NetCast TV simulator",
	Long: `Run an HTTP server that behaves like a NetCast TV: it accepts pairing,
remote key presses, channel changes and status queries. Useful for
trying the client without a real TV on the network.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// The simulator is a foreground daemon, logging is always on
		logger.SetSilentMode(false)
		if verbose {
			logger.SetLevel("debug")
		}
		log = logger.New()

		if simulateInitConfig {
			return writeSimulatorConfig(cmd)
		}

		config, err := loadSimulatorConfiguration()
		if err != nil {
			return err
		}

		sim := simulator.New(config)

		done := make(chan error, 1)
		go func() {
			done <- sim.Start(simulateListenAddr)
		}()

		// Handle graceful shutdown
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received shutdown signal")
			if err := sim.Stop(); err != nil {
				log.Error().Err(err).Msg("Error stopping simulator")
			}
		case err := <-done:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
		}

		log.Info().Msg("Simulator stopped")
		return nil
	},
}

// writeSimulatorConfig creates a configuration file with a freshly
// generated pairing key.
func writeSimulatorConfig(cmd *cobra.Command) error {
	configPath := simulateConfigPath
	if configPath == "" {
		configPath = "netcast-sim.yml"
	}

	config, err := simulator.NewConfigWithKey()
	if err != nil {
		return fmt.Errorf("failed to generate configuration: %w", err)
	}
	if simulateKey != "" {
		config.PairingKey = simulateKey
	}

	if err := simulator.SaveConfig(config, configPath); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}

	cmd.Printf("Simulator configuration created: %s\n", configPath)
	cmd.Printf("Pairing key: %s\n", config.PairingKey)
	return nil
}

// loadSimulatorConfiguration loads the config file when one was given and
// applies CLI flag overrides.
func loadSimulatorConfiguration() (*simulator.Config, error) {
	var config *simulator.Config

	if simulateConfigPath != "" {
		if _, statErr := os.Stat(simulateConfigPath); statErr == nil {
			loaded, err := simulator.LoadConfig(simulateConfigPath)
			if err != nil {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
			config = loaded
		} else if !os.IsNotExist(statErr) {
			return nil, fmt.Errorf("failed to check config file: %w", statErr)
		}
	}

	if config == nil {
		config = simulator.NewDefaultConfig()
	}

	if simulateKey != "" {
		config.PairingKey = simulateKey
	}

	return config, nil
}

func init() {
	simulateCmd.Flags().StringVarP(&simulateListenAddr, "listen", "l", "127.0.0.1:8080", "address to listen on")
	simulateCmd.Flags().StringVarP(&simulateKey, "pairing-key", "k", "", "pairing key the simulator accepts")
	simulateCmd.Flags().StringVarP(&simulateConfigPath, "config", "c", "", "simulator configuration file")
	simulateCmd.Flags().BoolVar(&simulateInitConfig, "init-config", false, "write a configuration file and exit")

	rootCmd.AddCommand(simulateCmd)
}
