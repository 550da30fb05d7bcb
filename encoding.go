// Copyright 2015 The TCell Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use file except in compliance with the License.
// You may obtain a copy of the license at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package midiflux

import (
	"sync"

	"golang.org/x/text/encoding"
)

var charsets map[string]encoding.Encoding
var charsetLk sync.Mutex

// RegisterCharset registers a text encoding for use when decoding SysEx
// payloads that embed device-supplied text (patch names, device name
// strings) in something other than UTF-8. Most controllers that send
// textual SysEx use plain ASCII, but a few embed Shift_JIS or an 8859
// variant; see golang.org/x/text/encoding for the available stock
// encodings, e.g.:
//
//	import "golang.org/x/text/encoding/charmap"
//
//	  ...
//	  RegisterCharset("ISO8859-15", charmap.ISO8859_15)
//
// Aliases can be registered as well, for example "8859-15" could be an
// alias for "ISO8859-15".
func RegisterCharset(name string, enc encoding.Encoding) {
	charsetLk.Lock()
	if charsets == nil {
		charsets = make(map[string]encoding.Encoding)
	}
	charsets[name] = enc
	charsetLk.Unlock()
}

// GetCharset locates a previously registered charset by name. It returns
// nil for UTF-8/ASCII, which need no transform, and for any name that was
// never registered.
func GetCharset(name string) encoding.Encoding {
	charsetLk.Lock()
	defer charsetLk.Unlock()
	if enc, ok := charsets[name]; ok {
		return enc
	}
	return nil
}
