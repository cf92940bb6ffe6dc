/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"os"

	"github.com/atotto/clipboard"

	"topodraw/internal/storage"
)

// writeClipboard is swapped in tests; headless CI has no clipboard.
var writeClipboard = clipboard.WriteAll

// JSON renders the snapshot in the import format.
func JSON(s Snapshot) ([]byte, error) {
	return storage.MarshalDesign(s.Design())
}

// WriteJSON writes the JSON snapshot to path.
func WriteJSON(s Snapshot, path string) error {
	data, err := JSON(s)
	if err != nil {
		return err
	}
	out, err := resolveOut(path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// CopyJSON puts the JSON snapshot on the system clipboard.
func CopyJSON(s Snapshot) error {
	data, err := JSON(s)
	if err != nil {
		return err
	}
	if err := writeClipboard(string(data)); err != nil {
		return fmt.Errorf("copy json: %w", err)
	}
	return nil
}
