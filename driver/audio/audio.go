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

// Package audio is a reference midiflux.AudioSink backed by
// github.com/ebitengine/oto/v3. It plays uncompressed PCM WAV files;
// device selection is host-level (oto opens one system output per
// process) so the device argument to Play is only checked against the
// name this Sink was constructed for.
package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// Sink plays WAV files through one shared oto context. Construct with
// New, which blocks until the platform's audio backend is ready.
type Sink struct {
	mu     sync.Mutex
	ctx    *oto.Context
	device string

	players []*oto.Player // retained so GC doesn't stop in-flight playback
}

// New opens the system's default audio output at the given sample rate
// and channel count. device names the logical output this Sink answers
// to in Play's device argument; pass "" to accept any.
func New(device string, sampleRate, channels int) (*Sink, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatSignedInt16LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("opening audio context: %w", err)
	}
	<-ready
	return &Sink{ctx: ctx, device: device}, nil
}

// Play implements midiflux.AudioSink. It decodes a little-endian 16-bit
// PCM WAV file at path and starts it playing at volume (0-100), without
// waiting for playback to finish.
func (s *Sink) Play(path string, volume int, device string) error {
	if s.device != "" && device != "" && device != s.device {
		return fmt.Errorf("audio sink bound to device %q, got %q", s.device, device)
	}
	pcm, err := decodeWAV(path)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	player := s.ctx.NewPlayer(bytes.NewReader(pcm))
	player.SetVolume(clampVolume(volume))
	player.Play()
	s.players = append(s.players, player)
	s.reapLocked()
	return nil
}

// reapLocked drops finished players from the retained slice. Callers
// hold s.mu.
func (s *Sink) reapLocked() {
	live := s.players[:0]
	for _, p := range s.players {
		if p.IsPlaying() {
			live = append(live, p)
		} else {
			_ = p.Close()
		}
	}
	s.players = live
}

func clampVolume(v int) float64 {
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	return float64(v) / 100.0
}

// decodeWAV reads a canonical PCM WAV file's data chunk. oto plays raw
// PCM only; nothing in the dependency set offers container decoding, so
// this minimal RIFF/WAVE parser stands in for one.
func decodeWAV(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("not a RIFF/WAVE file")
	}
	pos := 12
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8
		if body+size > len(data) {
			break
		}
		if id == "data" {
			return data[body : body+size], nil
		}
		pos = body + size
		if size%2 == 1 {
			pos++
		}
	}
	return nil, fmt.Errorf("no data chunk found")
}
