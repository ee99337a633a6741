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

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/bootbeacon/pkg/logger"
	"github.com/carverauto/bootbeacon/pkg/models"
)

type testConfig struct {
	ListenAddr string                 `json:"listen_addr"`
	Retention  models.Duration        `json:"retention"`
	Database   *models.DatabaseConfig `json:"database"`
	validated  bool
}

var errMissingListenAddr = errors.New("listen_addr is required")

func (c *testConfig) Validate() error {
	c.validated = true

	if c.ListenAddr == "" {
		return errMissingListenAddr
	}

	return nil
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadAndValidate(t *testing.T) {
	path := writeConfigFile(t, `{"listen_addr": ":8090", "retention": "72h"}`)

	var cfg testConfig

	c := NewConfig(logger.NewTestLogger())
	require.NoError(t, c.LoadAndValidate(context.Background(), path, "BOOTBEACON_TEST_", &cfg))

	assert.Equal(t, ":8090", cfg.ListenAddr)
	assert.Equal(t, 72*time.Hour, time.Duration(cfg.Retention))
	assert.True(t, cfg.validated)
}

func TestLoadAndValidateMissingFile(t *testing.T) {
	var cfg testConfig

	c := NewConfig(logger.NewTestLogger())
	err := c.LoadAndValidate(context.Background(), "/nonexistent/config.json", "BOOTBEACON_TEST_", &cfg)
	require.Error(t, err)
}

func TestLoadAndValidateRejectsInvalid(t *testing.T) {
	path := writeConfigFile(t, `{"retention": "72h"}`)

	var cfg testConfig

	c := NewConfig(logger.NewTestLogger())
	err := c.LoadAndValidate(context.Background(), path, "BOOTBEACON_TEST_", &cfg)
	require.ErrorIs(t, err, errMissingListenAddr)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("BOOTBEACON_TEST_LISTEN_ADDR", ":9000")
	t.Setenv("BOOTBEACON_TEST_RETENTION", "30m")
	t.Setenv("BOOTBEACON_TEST_DATABASE_HOST", "db.local")

	cfg := testConfig{ListenAddr: ":8090"}
	require.NoError(t, ApplyEnvOverrides("BOOTBEACON_TEST_", &cfg))

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, 30*time.Minute, time.Duration(cfg.Retention))
	require.NotNil(t, cfg.Database)
	assert.Equal(t, "db.local", cfg.Database.Host)
}

func TestApplyEnvOverridesLeavesNilStructs(t *testing.T) {
	var cfg testConfig

	require.NoError(t, ApplyEnvOverrides("BOOTBEACON_UNSET_", &cfg))
	assert.Nil(t, cfg.Database)
}

func TestApplyEnvOverridesRejectsNonPointer(t *testing.T) {
	err := ApplyEnvOverrides("X_", testConfig{})
	require.ErrorIs(t, err, ErrInvalidConfigPtr)
}
