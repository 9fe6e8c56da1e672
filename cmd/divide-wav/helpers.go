package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	divider "github.com/tphakala/go-audio-divider"
)

// PCM format tag for the WAV encoder.
const wavFormatPCM = 1

// logger is the package-wide structured logger.
var logger = slog.Default()

// initLogger configures the shared slog logger and installs it as the
// default.
func initLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	})
	logger = slog.New(h)
	slog.SetDefault(logger)
}

// options holds the command line settings.
type options struct {
	config       *divider.Config
	poly         bool
	voltsPerUnit float64
	bitDepth     int
	parallel     bool
}

// divideStats summarizes a run.
type divideStats struct {
	sampleRate     int
	channels       int
	inputBitDepth  int
	outputBitDepth int
	frames         int64
	groups         int
	layout         divider.Layout
	modes          []divider.Mode
}

// modeSummary lists the path each channel group's divider took, e.g.
// "poly, mono" for 17 channels.
func (s *divideStats) modeSummary() string {
	names := make([]string, len(s.modes))
	for i, m := range s.modes {
		names[i] = m.String()
	}
	return strings.Join(names, ", ")
}

// parseWindow maps a window name to a divider window.
func parseWindow(name string) (divider.Window, error) {
	switch strings.ToLower(name) {
	case "blackman-harris", "bh", "":
		return divider.WindowBlackmanHarris, nil
	case "kaiser":
		return divider.WindowKaiser, nil
	default:
		return 0, fmt.Errorf("unknown window %q", name)
	}
}

// wavInputInfo holds validated input file information.
type wavInputInfo struct {
	file        *os.File
	decoder     *wav.Decoder
	rate        int
	channels    int
	bitDepth    int
	totalFrames int64
	format      *audio.Format
}

// openWAVInput opens and validates a WAV file, returning format information.
func openWAVInput(path string) (*wavInputInfo, error) {
	inputFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	decoder := wav.NewDecoder(inputFile)
	if !decoder.IsValidFile() {
		_ = inputFile.Close()
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}

	format := decoder.Format()
	info := &wavInputInfo{
		file:     inputFile,
		decoder:  decoder,
		rate:     format.SampleRate,
		channels: format.NumChannels,
		bitDepth: int(decoder.BitDepth),
		format:   format,
	}

	if info.channels < 1 || info.rate < 1 {
		_ = inputFile.Close()
		return nil, fmt.Errorf("invalid WAV format in %s: %d Hz, %d channels", path, info.rate, info.channels)
	}

	if duration, err := decoder.Duration(); err == nil {
		info.totalFrames = int64(duration.Seconds() * float64(info.rate))
	}

	logger.Debug("input format",
		"path", path,
		"sampleRate", info.rate,
		"channels", info.channels,
		"bitDepth", info.bitDepth,
		"frames", info.totalFrames,
	)

	return info, nil
}

// Close closes the input file.
func (w *wavInputInfo) Close() error {
	return w.file.Close()
}

// wavOutputWriter wraps the output file and its encoder.
type wavOutputWriter struct {
	file    *os.File
	encoder *wav.Encoder
	buf     *audio.IntBuffer
}

// createWAVOutput creates the output file and encoder.
func createWAVOutput(path string, sampleRate, bitDepth, channels int) (*wavOutputWriter, error) {
	outputFile, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	return &wavOutputWriter{
		file:    outputFile,
		encoder: wav.NewEncoder(outputFile, sampleRate, bitDepth, channels, wavFormatPCM),
		buf: &audio.IntBuffer{
			Format: &audio.Format{
				NumChannels: channels,
				SampleRate:  sampleRate,
			},
			SourceBitDepth: bitDepth,
		},
	}, nil
}

// WriteSamples writes interleaved samples to the output file.
func (w *wavOutputWriter) WriteSamples(samples []int) error {
	w.buf.Data = samples
	return w.encoder.Write(w.buf)
}

// Close finalizes the WAV header and closes the file.
func (w *wavOutputWriter) Close() error {
	if err := w.encoder.Close(); err != nil {
		_ = w.file.Close()
		return fmt.Errorf("failed to finalize WAV file: %w", err)
	}
	return w.file.Close()
}

// channelGroup is a run of consecutive file channels handled by one
// processor.
type channelGroup struct {
	first, count int
}

// planGroups splits the file channels between processors. Up to four
// channels share one lane processor unless poly is set; otherwise channels
// are grouped by MaxPolyphony on the polyphonic path.
func planGroups(channels int, poly bool) (divider.Layout, []channelGroup) {
	if !poly && channels <= divider.Lanes {
		return divider.LayoutLanes, []channelGroup{{first: 0, count: channels}}
	}

	var groups []channelGroup
	for first := 0; first < channels; first += divider.MaxPolyphony {
		groups = append(groups, channelGroup{
			first: first,
			count: min(divider.MaxPolyphony, channels-first),
		})
	}
	return divider.LayoutPoly, groups
}

// newGroupProcessors creates one processor per channel group.
func newGroupProcessors(
	config *divider.Config,
	layout divider.Layout,
	groups []channelGroup,
	sampleRate int,
	voltsPerUnit float64,
) ([]*divider.Processor[float32], error) {
	procs := make([]*divider.Processor[float32], len(groups))
	for i, g := range groups {
		p, err := divider.NewProcessor[float32](config, layout, g.count, float64(sampleRate), voltsPerUnit)
		if err != nil {
			return nil, fmt.Errorf("failed to create divider for channels %d-%d: %w",
				g.first+1, g.first+g.count, err)
		}
		procs[i] = p
	}
	return procs, nil
}

// processGroups runs every group's processor over its slice of the
// channel buffers, in place.
func processGroups(procs []*divider.Processor[float32], groups []channelGroup, channelBufs [][]float32, parallel bool) error {
	if !parallel || len(procs) == 1 {
		for i, g := range groups {
			bufs := channelBufs[g.first : g.first+g.count]
			if err := procs[i].Process(bufs, bufs); err != nil {
				return fmt.Errorf("dividing channels %d-%d: %w", g.first+1, g.first+g.count, err)
			}
		}
		return nil
	}

	var wg sync.WaitGroup
	var processErr error
	var errMu sync.Mutex

	for i, g := range groups {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bufs := channelBufs[g.first : g.first+g.count]
			if err := procs[i].Process(bufs, bufs); err != nil {
				errMu.Lock()
				if processErr == nil {
					processErr = fmt.Errorf("dividing channels %d-%d: %w", g.first+1, g.first+g.count, err)
				}
				errMu.Unlock()
			}
		}()
	}
	wg.Wait()

	return processErr
}

// supportedBitDepth reports whether bits is a PCM depth the command reads
// and writes.
func supportedBitDepth(bits int) bool {
	switch bits {
	case bitsPerSample16, bitsPerSample24, bitsPerSample32:
		return true
	default:
		return false
	}
}

// getMaxValue returns the maximum sample value for the given bit depth.
func getMaxValue(bitDepth int) float64 {
	switch bitDepth {
	case bitsPerSample24:
		return maxInt24
	case bitsPerSample32:
		return maxInt32
	default:
		return maxInt16
	}
}

// deinterleaveInto converts interleaved int samples into per-channel float
// buffers of length frames.
func deinterleaveInto(data []int, channelBufs [][]float32, frames int, invMaxVal float64) {
	numChannels := len(channelBufs)
	for ch := range numChannels {
		channelBufs[ch] = channelBufs[ch][:frames]
	}
	for i := range frames {
		base := i * numChannels
		for ch, buf := range channelBufs {
			buf[i] = float32(float64(data[base+ch]) * invMaxVal)
		}
	}
}

// interleaveInto converts per-channel float buffers into interleaved ints,
// clipping to full scale. It returns the number of samples written.
func interleaveInto(channelBufs [][]float32, dst []int, maxVal float64) int {
	if len(channelBufs) == 0 {
		return 0
	}
	numChannels := len(channelBufs)
	frames := len(channelBufs[0])
	for i := range frames {
		base := i * numChannels
		for ch, buf := range channelBufs {
			sample := min(max(float64(buf[i]), -1), 1)
			dst[base+ch] = int(sample * maxVal)
		}
	}
	return frames * numChannels
}

// progressTracker handles progress reporting.
type progressTracker struct {
	totalFrames  int64
	lastProgress int
}

// reportIfNeeded logs progress when another threshold has been crossed.
func (p *progressTracker) reportIfNeeded(currentFrames int64) {
	if p.totalFrames == 0 {
		return
	}
	progress := int(float64(currentFrames) / float64(p.totalFrames) * percentScale)
	if progress >= p.lastProgress+progressInterval {
		logger.Debug("progress", "percent", progress)
		p.lastProgress = progress
	}
}

// divideWAV divides every channel of inputPath into outputPath.
func divideWAV(inputPath, outputPath string, opts options) (stats *divideStats, err error) {
	input, err := openWAVInput(inputPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = input.Close() }()

	if !supportedBitDepth(input.bitDepth) {
		return nil, fmt.Errorf("unsupported input bit depth %d", input.bitDepth)
	}
	outBits := opts.bitDepth
	if outBits == 0 {
		outBits = input.bitDepth
	}
	if !supportedBitDepth(outBits) {
		return nil, fmt.Errorf("unsupported output bit depth %d", outBits)
	}

	layout, groups := planGroups(input.channels, opts.poly)
	procs, err := newGroupProcessors(opts.config, layout, groups, input.rate, opts.voltsPerUnit)
	if err != nil {
		return nil, err
	}
	logger.Debug("channel plan", "layout", layout, "groups", len(groups))

	output, err := createWAVOutput(outputPath, input.rate, outBits, input.channels)
	if err != nil {
		return nil, err
	}
	// Capture close errors on the success path; the header is written there.
	defer func() {
		if closeErr := output.Close(); err == nil {
			err = closeErr
		}
	}()

	stats = &divideStats{
		sampleRate:     input.rate,
		channels:       input.channels,
		inputBitDepth:  input.bitDepth,
		outputBitDepth: outBits,
		groups:         len(groups),
		layout:         layout,
	}

	inBuf := &audio.IntBuffer{
		Data:   make([]int, chunkFrames*input.channels),
		Format: input.format,
	}
	outData := make([]int, chunkFrames*input.channels)
	channelBufs := make([][]float32, input.channels)
	for ch := range channelBufs {
		channelBufs[ch] = make([]float32, chunkFrames)
	}
	invMaxVal := 1 / getMaxValue(input.bitDepth)
	maxVal := getMaxValue(outBits)
	progress := &progressTracker{totalFrames: input.totalFrames}

	for {
		n, err := input.decoder.PCMBuffer(inBuf)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to read audio data: %w", err)
		}
		frames := n / input.channels
		if frames == 0 {
			break
		}

		deinterleaveInto(inBuf.Data[:frames*input.channels], channelBufs, frames, invMaxVal)

		if err := processGroups(procs, groups, channelBufs, opts.parallel); err != nil {
			return nil, err
		}

		written := interleaveInto(channelBufs, outData, maxVal)
		if err := output.WriteSamples(outData[:written]); err != nil {
			return nil, fmt.Errorf("failed to write audio data: %w", err)
		}

		stats.frames += int64(frames)
		progress.reportIfNeeded(stats.frames)

		inBuf.Data = inBuf.Data[:cap(inBuf.Data)]
	}

	// A group of one channel runs the mono path even on the poly layout.
	stats.modes = make([]divider.Mode, len(procs))
	for i, p := range procs {
		stats.modes[i] = p.Divider().Mode()
	}

	return stats, nil
}
