// Command divide-wav runs every channel of a WAV file through the frequency
// divider, producing a band-limited square one octave below the input.
//
// Usage:
//
//	divide-wav input.wav output.wav
//	divide-wav -poly input.wav output.wav         # Force the polyphonic path
//	divide-wav -bits 24 -v input.wav output.wav   # 24-bit output, debug logging
//	divide-wav -window kaiser input.wav out.wav   # Kaiser-windowed minBLEP
//
// Files with up to four channels run through the four divider lanes
// together. Files with more channels, or any file with -poly, are split into
// groups of up to sixteen polyphonic channels, one divider per group; the
// groups run in parallel unless -parallel=false.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/pprof"
	"time"

	divider "github.com/tphakala/go-audio-divider"
)

const (
	// Number of frames per processing chunk.
	chunkFrames = 16384

	// Sample format constants.
	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32

	// Conversion constants.
	maxInt16 = 32767.0
	maxInt24 = 8388607.0
	maxInt32 = 2147483647.0

	// Progress reporting.
	progressInterval = 10
	percentScale     = 100

	// CLI.
	minRequiredArgs = 2
)

func main() {
	if err := run(); err != nil {
		slog.Error("divide-wav failed", "err", err)
		os.Exit(1)
	}
}

func run() error {
	poly := flag.Bool("poly", false, "Process every channel on the polyphonic path")
	volts := flag.Float64("volts", divider.DefaultVoltsPerUnit, "Volts per full-scale unit fed to the divider")
	bits := flag.Int("bits", 0, "Output bit depth: 16, 24 or 32 (0 keeps the input depth)")
	window := flag.String("window", "blackman-harris", "minBLEP window: blackman-harris, kaiser")
	parallel := flag.Bool("parallel", true, "Process channel groups concurrently")
	verbose := flag.Bool("v", false, "Verbose (debug) logging")
	cpuprofile := flag.String("cpuprofile", "", "Write CPU profile to file (for PGO)")
	flag.Parse()

	initLogger(*verbose)

	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] input.wav output.wav\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s bass.wav bass_sub.wav          # One octave down\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -poly choir.wav choir_sub.wav  # Polyphonic path\n", os.Args[0])
		return errors.New("insufficient arguments")
	}

	config := divider.DefaultConfig()
	w, err := parseWindow(*window)
	if err != nil {
		return err
	}
	config.Window = w

	if *bits != 0 && !supportedBitDepth(*bits) {
		return fmt.Errorf("unsupported output bit depth %d", *bits)
	}

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	opts := options{
		config:       config,
		poly:         *poly,
		voltsPerUnit: *volts,
		bitDepth:     *bits,
		parallel:     *parallel,
	}

	inputPath, outputPath := args[0], args[1]
	slog.Debug("starting",
		"input", inputPath,
		"output", outputPath,
		"poly", opts.poly,
		"window", config.Window,
		"voltsPerUnit", opts.voltsPerUnit,
		"parallel", opts.parallel,
	)

	start := time.Now()
	stats, err := divideWAV(inputPath, outputPath, opts)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("Divided %s -> %s\n", filepath.Base(inputPath), filepath.Base(outputPath))
	fmt.Printf("  %d Hz, %d channels, %d-bit -> %d-bit\n",
		stats.sampleRate, stats.channels, stats.inputBitDepth, stats.outputBitDepth)
	fmt.Printf("  %d frames in %d group(s) (%s layout, %s path)\n",
		stats.frames, stats.groups, stats.layout, stats.modeSummary())
	if elapsed > 0 && stats.sampleRate > 0 {
		fmt.Printf("  Duration: %.2fs, Speed: %.1fx realtime\n",
			elapsed.Seconds(),
			float64(stats.frames)/float64(stats.sampleRate)/elapsed.Seconds())
	}

	return nil
}
