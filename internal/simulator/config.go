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

package simulator

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the simulated TV configuration
type Config struct {
	PairingKey  string            `yaml:"pairing_key"`
	MaxSessions int               `yaml:"max_sessions"`
	SessionTTL  string            `yaml:"session_ttl"`
	Fixtures    map[string]string `yaml:"fixtures"`

	ttl time.Duration
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.PairingKey == "" {
		return fmt.Errorf("pairing_key is required")
	}
	if c.MaxSessions < 0 {
		return fmt.Errorf("max_sessions must not be negative")
	}
	if c.SessionTTL != "" {
		ttl, err := time.ParseDuration(c.SessionTTL)
		if err != nil {
			return fmt.Errorf("invalid session_ttl: %w", err)
		}
		if ttl < 0 {
			return fmt.Errorf("session_ttl must not be negative")
		}
		c.ttl = ttl
	}
	return nil
}

// SessionExpiry returns the parsed session lifetime, zero when sessions
// never expire.
func (c *Config) SessionExpiry() time.Duration {
	return c.ttl
}

// GetFixture returns the response fixture for a query target. Configured
// fixtures win over the built-in defaults.
func (c *Config) GetFixture(target string) (string, bool) {
	if fixture, exists := c.Fixtures[target]; exists {
		return fixture, true
	}
	fixture, exists := defaultFixtures[target]
	return fixture, exists
}

// Save saves the configuration to a YAML file
func (c *Config) Save(filepath string) error {
	return SaveConfig(c, filepath)
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(config *Config, filepath string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// NewConfigWithKey creates a configuration with a freshly generated
// pairing key
func NewConfigWithKey() (*Config, error) {
	key, err := generatePairingKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate pairing key: %w", err)
	}

	config := NewDefaultConfig()
	config.PairingKey = key
	return config, nil
}

// NewDefaultConfig creates a default configuration template
func NewDefaultConfig() *Config {
	return &Config{
		PairingKey:  "889955",
		MaxSessions: 4,
		Fixtures:    map[string]string{},
	}
}

// generatePairingKey returns a six digit key, the format NetCast TVs
// show on screen.
func generatePairingKey() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n), nil
}

// defaultFixtures answer the stock query targets with plausible TV state.
// screen_image is deliberately empty: the simulator has no screen to
// grab, and an empty envelope is a valid answer.
var defaultFixtures = map[string]string{
	"volume_info": `<data><mute>false</mute><minLevel>0</minLevel><maxLevel>100</maxLevel><level>17</level></data>`,
	"cur_channel": `<data><chtype>terrestrial</chtype><major>7</major><minor>0</minor><sourceIndex>1</sourceIndex><physicalNum>30</physicalNum><chname>ARTE</chname><progName>Tracks</progName></data>`,
	"channel_list": `<dataList name="Channel List">` +
		`<data><chtype>terrestrial</chtype><major>1</major><minor>0</minor><sourceIndex>1</sourceIndex><physicalNum>5</physicalNum><chname>Das Erste</chname></data>` +
		`<data><chtype>terrestrial</chtype><major>7</major><minor>0</minor><sourceIndex>1</sourceIndex><physicalNum>30</physicalNum><chname>ARTE</chname></data>` +
		`<data><chtype>cable</chtype><major>13</major><minor>0</minor><sourceIndex>2</sourceIndex><physicalNum>41</physicalNum><chname>MDR</chname></data>` +
		`</dataList>`,
	"context_ui":   `<data><mode>HomeMenu</mode></data>`,
	"is_3d":        `<data><is3D>false</is3D></data>`,
	"screen_image": ``,
}
