// Package audiosink plays queued APU samples through the host audio
// device and optionally captures them to a WAV file.
package audiosink

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/gordonklaus/portaudio"
)

// channels is fixed at 1: the APU mixer already collapses all five
// channels to a single mono output per sample.
const channels = 1

const defaultSampleRate = 44100

// Sink plays samples via PortAudio on a ring buffer, dropping samples
// the callback can't keep up with rather than blocking the emulator's
// single cooperative thread.
type Sink struct {
	stream     *portaudio.Stream
	ring       chan float32
	volume     float32
	sampleRate int

	recordFile *os.File
	encoder    *wav.Encoder
}

// New opens the default PortAudio output stream at sampleRate (44100
// when sampleRate <= 0).
func New(sampleRate int) (*Sink, error) {
	if sampleRate <= 0 {
		sampleRate = defaultSampleRate
	}
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("audiosink: initialize portaudio: %w", err)
	}

	s := &Sink{
		ring:       make(chan float32, sampleRate),
		volume:     1.0,
		sampleRate: sampleRate,
	}

	callback := func(out []float32) {
		for i := range out {
			select {
			case v := <-s.ring:
				out[i] = v * s.volume
			default:
				out[i] = 0
			}
		}
	}

	stream, err := portaudio.OpenDefaultStream(0, channels, float64(sampleRate), 0, callback)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("audiosink: open stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("audiosink: start stream: %w", err)
	}
	s.stream = stream
	return s, nil
}

// SetVolume scales the mixed output the stream plays, clamped to
// [0,1].
func (s *Sink) SetVolume(v float32) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	s.volume = v
}

// QueueSamples implements scheduler.AudioSink: it feeds the playback
// ring buffer and, while a WAV capture is active, encodes the same
// samples to disk.
func (s *Sink) QueueSamples(samples []float32) {
	for _, v := range samples {
		select {
		case s.ring <- v:
		default:
		}
	}
	if s.encoder != nil {
		s.writeToEncoder(samples)
	}
}

func (s *Sink) writeToEncoder(samples []float32) {
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: s.sampleRate},
		Data:           make([]int, len(samples)),
		SourceBitDepth: 16,
	}
	for i, v := range samples {
		buf.Data[i] = int(v * 32767)
	}
	if err := s.encoder.Write(buf); err != nil {
		s.encoder = nil
	}
}

// StartRecording begins capturing every queued sample to a 16-bit PCM
// WAV file at path, until StopRecording is called.
func (s *Sink) StartRecording(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("audiosink: create %s: %w", path, err)
	}
	s.recordFile = f
	s.encoder = wav.NewEncoder(f, s.sampleRate, 16, channels, 1)
	return nil
}

// StopRecording finalizes and closes an active WAV capture; a no-op if
// none is active.
func (s *Sink) StopRecording() error {
	if s.encoder == nil {
		return nil
	}
	err := s.encoder.Close()
	s.encoder = nil
	if closeErr := s.recordFile.Close(); err == nil {
		err = closeErr
	}
	s.recordFile = nil
	return err
}

// Close stops playback and releases the PortAudio stream.
func (s *Sink) Close() error {
	_ = s.StopRecording()
	if s.stream == nil {
		return nil
	}
	err := s.stream.Close()
	portaudio.Terminate()
	return err
}
