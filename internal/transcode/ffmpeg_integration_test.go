package transcode

import (
	"bytes"
	"context"
	"encoding/binary"
	"math"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func requireFFmpeg(t *testing.T) string {
	t.Helper()
	path, err := exec.LookPath("ffmpeg")
	if err != nil {
		t.Skip("ffmpeg not found in PATH; skipping integration test")
	}
	return path
}

// pcm16Sine renders a mono sine tone as little-endian 16-bit samples.
func pcm16Sine(durationSec float64, freqHz float64) []byte {
	samples := int(float64(SampleRate) * durationSec)
	pcm := make([]byte, 0, samples*2)
	for i := 0; i < samples; i++ {
		v := math.Sin(2 * math.Pi * freqHz * float64(i) / float64(SampleRate))
		sample := int16(v * 0.4 * math.MaxInt16)
		pcm = binary.LittleEndian.AppendUint16(pcm, uint16(sample))
	}
	return pcm
}

// wrapPCM16WAV frames raw PCM with a minimal RIFF/WAVE header.
func wrapPCM16WAV(pcm []byte, sampleRate int, channels int) []byte {
	const bitsPerSample = 16
	byteRate := sampleRate * channels * (bitsPerSample / 8)
	blockAlign := channels * (bitsPerSample / 8)

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(&buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample))
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)
	return buf.Bytes()
}

func TestIntegrationTranscodeCanonicalFixedPoint(t *testing.T) {
	path := requireFFmpeg(t)

	pcm := pcm16Sine(0.5, 440)
	wav := wrapPCM16WAV(pcm, SampleRate, Channels)

	ffmpeg := New(path, 30*time.Second, nil)
	out, err := ffmpeg.Transcode(context.Background(), wav)
	require.NoError(t, err)
	require.Equal(t, pcm, out, "canonical input must pass through bit-identical")
}

func TestIntegrationTranscodeResamplesStereo(t *testing.T) {
	path := requireFFmpeg(t)

	// 8 kHz stereo input must come out mono at 16 kHz, roughly twice as long.
	const inRate = 8000
	samples := inRate / 2
	pcm := make([]byte, 0, samples*4)
	for i := 0; i < samples; i++ {
		v := math.Sin(2 * math.Pi * 220 * float64(i) / float64(inRate))
		sample := int16(v * 0.4 * math.MaxInt16)
		pcm = binary.LittleEndian.AppendUint16(pcm, uint16(sample))
		pcm = binary.LittleEndian.AppendUint16(pcm, uint16(sample))
	}
	wav := wrapPCM16WAV(pcm, inRate, 2)

	ffmpeg := New(path, 30*time.Second, nil)
	out, err := ffmpeg.Transcode(context.Background(), wav)
	require.NoError(t, err)

	wantSamples := SampleRate / 2
	gotSamples := len(out) / 2
	require.InDelta(t, wantSamples, gotSamples, float64(SampleRate)/100)
}

func TestIntegrationTranscodeRejectsGarbage(t *testing.T) {
	path := requireFFmpeg(t)

	ffmpeg := New(path, 30*time.Second, nil)
	_, err := ffmpeg.Transcode(context.Background(), []byte("definitely not a media container"))
	require.ErrorIs(t, err, ErrTranscode)
}
