package tts

import (
	"bytes"
	"encoding/binary"
	"math"
)

const (
	toneSampleRate = 44100
	toneDuration   = 0.5
	toneStartFreq  = 880.0
	toneEndFreq    = 440.0
	toneStartGain  = 0.5
	toneEndGain    = 0.01
)

// AlertTone renders the step-expiry chime: a half-second sine sweep from
// 880Hz down to 440Hz with an exponential fade, packaged as a 16-bit mono
// WAV file.
func AlertTone() []byte {
	n := int(toneSampleRate * toneDuration)
	samples := make([]int16, n)

	decay := math.Log(toneEndGain / toneStartGain)
	phase := 0.0
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n)
		freq := toneStartFreq + (toneEndFreq-toneStartFreq)*t
		phase += 2 * math.Pi * freq / toneSampleRate
		gain := toneStartGain * math.Exp(decay*t)
		samples[i] = int16(math.Sin(phase) * gain * math.MaxInt16)
	}

	return encodeWAV(samples, toneSampleRate)
}

// encodeWAV wraps 16-bit mono PCM samples in a RIFF/WAVE container.
func encodeWAV(samples []int16, sampleRate int) []byte {
	dataLen := len(samples) * 2
	var buf bytes.Buffer

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*2))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataLen))
	binary.Write(&buf, binary.LittleEndian, samples)

	return buf.Bytes()
}
