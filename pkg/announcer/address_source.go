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
	"fmt"
	"net"
	"os"
	"strings"
)

// AddressSource supplies the listener's address as an opaque host:port string.
type AddressSource interface {
	Resolve() (string, error)
}

// FileAddressSource reads the listener address from a fixed text file,
// typically on the boot partition where it can be edited from another
// system while the device is powered off.
type FileAddressSource struct {
	path string
}

func NewFileAddressSource(path string) *FileAddressSource {
	return &FileAddressSource{path: path}
}

// Resolve reads and validates the configured file. The file is often edited
// on another OS, so CRLF line endings and surrounding whitespace are
// tolerated; only the first line is used.
func (s *FileAddressSource) Resolve() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrAddressMissing, s.path)
		}

		return "", fmt.Errorf("%w: %s: %w", ErrAddressUnreadable, s.path, err)
	}

	content := strings.TrimSpace(string(data))
	if content == "" {
		return "", fmt.Errorf("%w: %s is empty", ErrAddressMissing, s.path)
	}

	addr, _, _ := strings.Cut(content, "\n")
	addr = strings.TrimSpace(addr)

	host, port, err := net.SplitHostPort(addr)
	if err != nil || host == "" || port == "" {
		return "", fmt.Errorf("%w: %q", ErrAddressInvalid, addr)
	}

	return addr, nil
}
