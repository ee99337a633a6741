/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package listener

import (
	"github.com/carverauto/bootbeacon/pkg/logger"
	"github.com/carverauto/bootbeacon/pkg/models"
	"github.com/carverauto/bootbeacon/pkg/registry"
)

const defaultListenAddr = ":8090"

// Config is the listener's configuration, loaded from a JSON file.
type Config struct {
	ListenAddr string `json:"listen_addr"`

	// APIKey guards the admin routes. Leaving it empty disables them.
	APIKey string `json:"api_key"`

	CORS     models.CORSConfig      `json:"cors"`
	Registry *registry.Config       `json:"registry"`
	Database *models.DatabaseConfig `json:"database"`
	Events   *models.EventsConfig   `json:"events"`
	Logging  *logger.Config         `json:"logging"`
}

// Validate fills defaults and validates the nested registry policy.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		c.ListenAddr = defaultListenAddr
	}

	if c.Registry == nil {
		c.Registry = &registry.Config{}
	}

	return c.Registry.Validate()
}
