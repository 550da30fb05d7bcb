// Copyright 2025 The MIDIFlux Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package profileio

import (
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// profileSchemaURL is an opaque resource name; the document never leaves
// this process so it need not resolve over the network.
const profileSchemaURL = "midiflux://profile.schema.json"

// profileSchema is the structural shape every profile document must
// satisfy before the domain layer (Profile.Validate) ever sees it:
// required top-level fields, and that every mapping carries an input
// and a typed action. Per-action-kind parameter shapes are intentionally
// left to the individual Action.Validate() implementations, which know
// their own constraints (range checks, non-empty commands, and so on)
// far better than a schema could restate them.
const profileSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["name", "devices"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "description": {"type": "string"},
    "initialStates": {
      "type": "object",
      "additionalProperties": {"type": "integer"}
    },
    "devices": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["deviceName", "mappings"],
        "properties": {
          "deviceName": {"type": "string", "minLength": 1},
          "mappings": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["input", "action"],
              "properties": {
                "id": {"type": "string"},
                "description": {"type": "string"},
                "enabled": {"type": "boolean"},
                "input": {
                  "type": "object",
                  "required": ["inputType"],
                  "properties": {
                    "channel": {"type": "integer", "minimum": 0, "maximum": 16},
                    "inputType": {"type": "string"},
                    "inputNumber": {"type": "integer", "minimum": 0, "maximum": 127}
                  }
                },
                "action": {
                  "type": "object",
                  "required": ["type"],
                  "properties": {
                    "type": {"type": "string", "minLength": 1}
                  }
                }
              }
            }
          }
        }
      }
    }
  }
}`

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// compiledSchema lazily compiles the embedded schema once per process.
func compiledSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource(profileSchemaURL, strings.NewReader(profileSchema)); err != nil {
			compileErr = err
			return
		}
		compiled, compileErr = c.Compile(profileSchemaURL)
	})
	return compiled, compileErr
}

// validateStructure checks a decoded (map[string]interface{}-shaped)
// profile document against profileSchema.
func validateStructure(doc interface{}) error {
	sch, err := compiledSchema()
	if err != nil {
		return err
	}
	return sch.Validate(doc)
}
