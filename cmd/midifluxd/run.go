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

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cozmopolit/midiflux"
	"github.com/cozmopolit/midiflux/driver/audio"
	"github.com/cozmopolit/midiflux/driver/gomidi"
	"github.com/cozmopolit/midiflux/profileio"
)

var (
	profilePath  string
	metricsAddr  string
	audioDevice  string
	sysexCharset string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Attach to MIDI hardware and dispatch according to a profile",
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringVarP(&profilePath, "profile", "p", "", "path to the profile document (required)")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "if set, serve Prometheus metrics on this address (e.g. :9090)")
	runCmd.Flags().StringVar(&audioDevice, "audio-device", "", "logical audio output name for PlaySound actions")
	runCmd.Flags().StringVar(&sysexCharset, "sysex-charset", "", "charset name (see the encoding subpackage) used to log decoded SysEx text")
	_ = runCmd.MarkFlagRequired("profile")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer logger.Sync()
	log := logger.Sugar()

	profile, err := profileio.LoadFile(profilePath)
	if err != nil {
		return fmt.Errorf("loading profile: %w", err)
	}
	if err := profile.Validate(); err != nil {
		return fmt.Errorf("profile failed validation: %w", err)
	}

	midiDrv, err := gomidi.New()
	if err != nil {
		return fmt.Errorf("opening MIDI backend: %w", err)
	}

	audioSink, err := audio.New(audioDevice, 44100, 2)
	if err != nil {
		log.Warnw("audio backend unavailable, PlaySound actions will be logged and skipped", "err", err)
	}

	sinks := buildSinks(log, midiDrv, audioSink)

	reg := prometheus.NewRegistry()
	metrics := midiflux.NewMetrics(reg)

	state := midiflux.NewStateManager()
	dispatcher := midiflux.NewDispatcher(state, sinks, log, metrics)
	dispatcher.SetSysExCharset(sysexCharset)
	midiDrv.SetListener(dispatcher)

	controller := midiflux.NewProfileController(dispatcher, state, midiDrv, log)
	if err := controller.Load(profile); err != nil {
		return fmt.Errorf("applying profile: %w", err)
	}

	watcher, err := profileio.NewWatcher(profilePath, log)
	if err != nil {
		log.Warnw("profile hot-reload unavailable", "err", err)
	} else {
		go watcher.Watch(func(p *midiflux.Profile) {
			log.Infow("reloading profile", "name", p.Name)
			if err := controller.Load(p); err != nil {
				log.Errorw("failed to apply reloaded profile, keeping previous one active", "err", err)
			}
		})
		defer watcher.Close()
	}

	go dispatcher.Run()

	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: metricsAddr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Errorw("metrics server stopped", "err", err)
			}
		}()
		defer srv.Close()
	}

	log.Infow("midifluxd running", "profile", profile.Name)

	sig := make(chan os.Signal, 1)
	midiflux.NotifyShutdown(sig)
	<-sig

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dispatcher.Shutdown(ctx); err != nil {
		log.Errorw("dispatcher shutdown error", "err", err)
	}
	return midiDrv.Shutdown(ctx)
}

func buildSinks(log *zap.SugaredLogger, midiDrv *gomidi.Driver, audioSink *audio.Sink) *midiflux.Sinks {
	unbound := &unboundSink{log: log}
	var audioIface midiflux.AudioSink = unbound
	if audioSink != nil {
		audioIface = audioSink
	}
	return &midiflux.Sinks{
		Keyboard: unbound,
		Mouse:    unbound,
		Gamepad:  unbound,
		Command:  unbound,
		Audio:    audioIface,
		MidiOut:  midiDrv,
	}
}
