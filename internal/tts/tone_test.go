package tts

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestAlertToneIsValidWAV(t *testing.T) {
	wav := AlertTone()

	if len(wav) < 44 {
		t.Fatalf("tone is only %d bytes, shorter than a WAV header", len(wav))
	}
	if !bytes.Equal(wav[0:4], []byte("RIFF")) || !bytes.Equal(wav[8:12], []byte("WAVE")) {
		t.Fatal("missing RIFF/WAVE magic")
	}

	riffLen := binary.LittleEndian.Uint32(wav[4:8])
	if int(riffLen) != len(wav)-8 {
		t.Errorf("RIFF length = %d, want %d", riffLen, len(wav)-8)
	}

	channels := binary.LittleEndian.Uint16(wav[22:24])
	sampleRate := binary.LittleEndian.Uint32(wav[24:28])
	bitsPerSample := binary.LittleEndian.Uint16(wav[34:36])
	if channels != 1 {
		t.Errorf("channels = %d, want mono", channels)
	}
	if sampleRate != 44100 {
		t.Errorf("sample rate = %d, want 44100", sampleRate)
	}
	if bitsPerSample != 16 {
		t.Errorf("bits per sample = %d, want 16", bitsPerSample)
	}

	dataLen := binary.LittleEndian.Uint32(wav[40:44])
	if int(dataLen) != len(wav)-44 {
		t.Errorf("data length = %d, want %d", dataLen, len(wav)-44)
	}
	if dataLen != 22050*2 {
		t.Errorf("sample count = %d, want 22050 for half a second", dataLen/2)
	}
}

func TestAlertToneFadesOut(t *testing.T) {
	wav := AlertTone()
	samples := wav[44:]

	peak := func(from, to int) int16 {
		var p int16
		for i := from; i < to; i++ {
			s := int16(binary.LittleEndian.Uint16(samples[i*2 : i*2+2]))
			if s < 0 {
				s = -s
			}
			if s > p {
				p = s
			}
		}
		return p
	}

	n := len(samples) / 2
	head := peak(0, n/10)
	tail := peak(n-n/10, n)
	if head <= tail*4 {
		t.Errorf("tone does not decay: head peak %d, tail peak %d", head, tail)
	}
}
