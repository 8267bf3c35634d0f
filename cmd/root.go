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

	"github.com/spf13/cobra"
	"github.com/wokar/lgnetcast/internal/logger"
	"github.com/wokar/lgnetcast/internal/netcast"
)

var (
	verbose bool
	log     = logger.New()
)

var rootCmd = &cobra.Command{
	Use:   "lgnetcast",
	Short: "Remote control for LG NetCast smart TVs",
	Long: `lgnetcast talks to LG smart TVs running NetCast (2012-2013 models) over
their HTTP/XML remote-control protocol. It can pair with a TV, press
remote keys, switch channels and read back status like the current
channel or volume.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logger.SetSilentMode(false)
			logger.SetLevel("debug")
			log = logger.New()
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	rootCmd.AddCommand(cliCmd)
}

// guideError turns protocol errors into messages that tell the user what
// to do next instead of only what went wrong.
func guideError(err error, host string) error {
	var connErr *netcast.ConnectionError
	if errors.As(err, &connErr) {
		if connErr.Timeout() {
			return fmt.Errorf("%w (the TV did not answer in time; check that it is switched on)", err)
		}
		return fmt.Errorf("%w (check the address and that the TV is on your network)", err)
	}

	var authErr *netcast.AuthError
	if errors.As(err, &authErr) {
		return fmt.Errorf("%w (run 'lgnetcast pair --host %s' and read the key off the TV screen)", err, host)
	}

	if errors.Is(err, netcast.ErrNoSession) {
		return fmt.Errorf("%w (pass --key to pair before sending)", err)
	}

	var protoErr *netcast.ProtocolError
	var parseErr *netcast.ParseError
	if errors.As(err, &protoErr) || errors.As(err, &parseErr) {
		return fmt.Errorf("%w (is %s really a NetCast TV?)", err, host)
	}

	return err
}
