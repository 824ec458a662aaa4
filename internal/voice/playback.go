package voice

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os/exec"

	"layeh.com/gopus"

	"yomiage/internal/tts"
)

const (
	channels   = 2
	sampleRate = 48000
	frameSize  = 960 // 20ms at 48kHz
)

// Engine synthesizes an utterance and streams it as opus frames.
// Audio path: TTS endpoint (mp3) -> ffmpeg (s16le PCM) -> opus.
type Engine struct {
	tts    *tts.Client
	volume float64
}

// NewEngine creates a playback engine with the given output volume,
// where 1.0 is unity gain.
func NewEngine(client *tts.Client, volume float64) *Engine {
	if volume <= 0 || volume > 2 {
		volume = 0.8
	}
	return &Engine{tts: client, volume: volume}
}

// Speak implements Speaker.
func (e *Engine) Speak(ctx context.Context, conn Conn, text string) error {
	audio, err := e.tts.Open(ctx, text)
	if err != nil {
		return err
	}
	defer audio.Close()

	pcm, cleanup, err := decodePCM(audio)
	if err != nil {
		return fmt.Errorf("decode speech audio: %w", err)
	}
	defer cleanup()

	return e.stream(ctx, conn, pcm)
}

// decodePCM pipes compressed audio through ffmpeg, producing s16le
// stereo PCM at the Discord voice sample rate.
func decodePCM(src io.Reader) (io.ReadCloser, func(), error) {
	cmd := exec.Command("ffmpeg",
		"-i", "pipe:0",
		"-f", "s16le",
		"-ar", fmt.Sprintf("%d", sampleRate),
		"-ac", fmt.Sprintf("%d", channels),
		"-loglevel", "warning",
		"pipe:1",
	)
	cmd.Stdin = src

	out, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("stdout pipe error: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("command start error: %w", err)
	}

	cleanup := func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	}
	return out, cleanup, nil
}

// stream encodes PCM frames to opus and sends them until the source is
// exhausted or the context is canceled.
func (e *Engine) stream(ctx context.Context, conn Conn, pcm io.Reader) error {
	encoder, err := gopus.NewEncoder(sampleRate, channels, gopus.Audio)
	if err != nil {
		return fmt.Errorf("encoder error: %w", err)
	}

	if err := conn.Speaking(true); err != nil {
		return fmt.Errorf("set speaking: %w", err)
	}
	defer func() {
		_ = conn.Speaking(false)
	}()

	pcmBuf := make([]byte, frameSize*channels*2)
	intBuf := make([]int16, frameSize*channels)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		_, err := io.ReadFull(pcm, pcmBuf)
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read error: %w", err)
		}

		for i := range intBuf {
			intBuf[i] = scaleSample(binary.LittleEndian.Uint16(pcmBuf[i*2:i*2+2]), e.volume)
		}

		frame, err := encoder.Encode(intBuf, frameSize, len(pcmBuf))
		if err != nil {
			return fmt.Errorf("encode error: %w", err)
		}
		if err := conn.Send(ctx, frame); err != nil {
			return err
		}
	}
}

func scaleSample(raw uint16, volume float64) int16 {
	v := float64(int16(raw)) * volume
	if v > 32767 {
		v = 32767
	} else if v < -32768 {
		v = -32768
	}
	return int16(v)
}
