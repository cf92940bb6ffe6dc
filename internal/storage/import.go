/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"topodraw/internal/domain"
)

// ErrInvalidSnapshot wraps every rejection of imported JSON.
var ErrInvalidSnapshot = errors.New("invalid design snapshot")

//go:embed design.schema.json
var designSchema []byte

var schemaLoader = gojsonschema.NewBytesLoader(designSchema)

// Schema returns the JSON schema used to validate design documents.
func Schema() []byte { return designSchema }

// ImportJSON parses an exported snapshot into a new, unsaved design: the
// id and timestamps are dropped so saving it creates a fresh library entry.
// Absent nodes or edges are not an error.
func ImportJSON(data []byte) (domain.Design, error) {
	d, err := ParseDesign(data)
	if err != nil {
		return domain.Design{}, err
	}
	d.ID = ""
	d.CreatedAt, d.UpdatedAt = time.Time{}, time.Time{}
	return d, nil
}

// ParseDesign validates data against the schema, then decodes and
// normalizes it. Unlike ImportJSON it keeps the id and timestamps.
func ParseDesign(data []byte) (domain.Design, error) {
	if !json.Valid(data) {
		return domain.Design{}, fmt.Errorf("%w: malformed JSON", ErrInvalidSnapshot)
	}
	res, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return domain.Design{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return domain.Design{}, fmt.Errorf("%w: %s", ErrInvalidSnapshot, strings.Join(msgs, "; "))
	}
	var d domain.Design
	if err := json.Unmarshal(data, &d); err != nil {
		return domain.Design{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	return d.Normalize(), nil
}
