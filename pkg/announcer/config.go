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

package announcer

import (
	"errors"
	"os"
	"time"

	"github.com/carverauto/bootbeacon/pkg/logger"
	"github.com/carverauto/bootbeacon/pkg/models"
)

const (
	defaultMaxAttempts    = 3
	defaultAttemptTimeout = 10 * time.Second
	defaultRetryDelay     = 10 * time.Second

	defaultAddressFile = "/boot/bootbeacon-listener.txt"
	defaultMarkerFile  = "/run/bootbeacon/announce.done"
)

var errHostnameUnavailable = errors.New("hostname not configured and not available from the OS")

// Config is the announcer's configuration, loaded from a JSON file.
type Config struct {
	// AddressFile is the boot-accessible text file holding the listener's
	// host:port.
	AddressFile string `json:"address_file"`

	// MarkerFile is the boot-scoped completion marker path. It must live on
	// storage cleared across reboots, such as /run.
	MarkerFile string `json:"marker_file"`

	// Hostname overrides the OS hostname in the announcement payload.
	Hostname string `json:"hostname"`

	MaxAttempts    int             `json:"max_attempts"`
	AttemptTimeout models.Duration `json:"attempt_timeout"`
	RetryDelay     models.Duration `json:"retry_delay"`

	Logging *logger.Config `json:"logging"`
}

// Validate fills in defaults and resolves the announced hostname.
func (c *Config) Validate() error {
	if c.AddressFile == "" {
		c.AddressFile = defaultAddressFile
	}

	if c.MarkerFile == "" {
		c.MarkerFile = defaultMarkerFile
	}

	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}

	if c.AttemptTimeout <= 0 {
		c.AttemptTimeout = models.Duration(defaultAttemptTimeout)
	}

	if c.RetryDelay <= 0 {
		c.RetryDelay = models.Duration(defaultRetryDelay)
	}

	if c.Hostname == "" {
		hostname, err := os.Hostname()
		if err != nil {
			return errors.Join(errHostnameUnavailable, err)
		}

		c.Hostname = hostname
	}

	return nil
}
