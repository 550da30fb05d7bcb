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

// Package profileio is the sole place file I/O happens: it reads profile
// documents from disk, validates their shape against a JSON Schema,
// strict-decodes them into midiflux.Profile values, and optionally
// watches a profile file for changes and reloads on the fly. The root
// midiflux package never touches the filesystem; it receives profiles only
// as decoded values, such as the ones this package returns.
package profileio
