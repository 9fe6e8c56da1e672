package main

// Default command-line flag values
const (
	defaultFrequency = 1000.0 // 1 kHz test tone
	defaultSeconds   = 1.0    // Test signal length
)

// Test signal parameters
const (
	testAmplitude = 0.8 // Peak of the generated tone, in full-scale units
	settleSeconds = 0.1 // Output skipped before measuring
)

// Demo channel configurations
const (
	monoChannels   = 1
	stereoChannels = 2
	surround5_1    = 6
	polyChannels   = 16
)
