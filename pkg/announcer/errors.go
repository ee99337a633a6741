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

import "errors"

// Configuration and environment failures are fatal for this boot cycle and
// are kept distinct so a post-mortem can tell them apart in the log and in
// the process exit status.
var (
	// ErrAddressMissing indicates the address source file does not exist or
	// is empty.
	ErrAddressMissing = errors.New("listener address source missing")

	// ErrAddressUnreadable indicates the address source exists but could not
	// be read.
	ErrAddressUnreadable = errors.New("listener address source unreadable")

	// ErrAddressInvalid indicates the address source content is not a valid
	// host:port string.
	ErrAddressInvalid = errors.New("listener address source invalid")

	// ErrMarkerStore indicates the completion marker storage failed, so the
	// at-most-one-cycle-per-boot guarantee cannot be upheld.
	ErrMarkerStore = errors.New("completion marker storage failed")
)
