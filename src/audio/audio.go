// Package audio plays a wavetable oscillator through the default output device.
package audio

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/hajimehoshi/oto"
	"go.uber.org/zap"

	"github.com/jinjor/wavetable-osc/src/wavetable"
)

// Audio renders an oscillator into PCM bytes. All access to the oscillator
// goes through Audio, which serializes it.
type Audio struct {
	sync.Mutex
	ctx        context.Context
	otoContext *oto.Context
	logger     *zap.Logger
	cfg        Config
	osc        *wavetable.Osc
	out        []float32
}

var _ io.Reader = (*Audio)(nil)

// NewAudio opens the output device. The oscillator is owned by the returned
// Audio from now on.
func NewAudio(osc *wavetable.Osc, cfg Config, logger *zap.Logger) (*Audio, error) {
	a, err := newAudio(osc, cfg, logger)
	if err != nil {
		return nil, err
	}
	otoContext, err := oto.NewContext(cfg.SampleRate, cfg.ChannelNum, cfg.BitDepthInBytes, cfg.bufferSizeInBytes())
	if err != nil {
		return nil, fmt.Errorf("open output device: %w", err)
	}
	a.otoContext = otoContext
	return a, nil
}

func newAudio(osc *wavetable.Osc, cfg Config, logger *zap.Logger) (*Audio, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if osc.NumTables() == 0 {
		return nil, wavetable.ErrNoTables
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Audio{
		ctx:    context.Background(),
		logger: logger,
		cfg:    cfg,
		osc:    osc,
		out:    make([]float32, cfg.SamplesPerCycle),
	}, nil
}

func (a *Audio) Read(buf []byte) (int, error) {
	select {
	case <-a.ctx.Done():
		a.logger.Debug("Read() interrupted.")
		return 0, io.EOF
	default:
	}
	a.Lock()
	defer a.Unlock()

	bufSamples := len(buf) / a.cfg.bytesPerSample()
	if bufSamples > len(a.out) {
		a.out = make([]float32, bufSamples)
	}
	out := a.out[:bufSamples]
	a.osc.SetFrequency(a.cfg.Freq / float64(a.cfg.SampleRate))
	if err := a.osc.Fill(out); err != nil {
		return 0, err
	}
	for ch := 0; ch < a.cfg.ChannelNum; ch++ {
		writeBuffer(out, a.cfg.Gain, buf, ch, a.cfg.ChannelNum, a.cfg.BitDepthInBytes)
	}
	return bufSamples * a.cfg.bytesPerSample(), nil
}

func writeBuffer(out []float32, gain float64, buf []byte, ch int, channelNum int, bitDepthInBytes int) {
	bytesPerSample := bitDepthInBytes * channelNum
	for i, v := range out {
		value := float64(v) * gain
		if value > 1 {
			value = 1
		} else if value < -1 {
			value = -1
		}
		switch bitDepthInBytes {
		case 1:
			const max = 127
			b := int(value * max)
			buf[bytesPerSample*i+ch] = byte(b + 128)
		case 2:
			const max = 32767
			b := int16(value * max)
			buf[bytesPerSample*i+2*ch] = byte(b)
			buf[bytesPerSample*i+2*ch+1] = byte(b >> 8)
		}
	}
}

// SetFreq changes the played frequency in Hz.
func (a *Audio) SetFreq(freq float64) error {
	if err := a.cfg.checkFreq(freq); err != nil {
		return err
	}
	a.Lock()
	defer a.Unlock()
	a.cfg.Freq = freq
	a.logger.Debug("set frequency", zap.Float64("freq", freq))
	return nil
}

// SetGain changes the output gain.
func (a *Audio) SetGain(gain float64) error {
	if err := checkGain(gain); err != nil {
		return err
	}
	a.Lock()
	defer a.Unlock()
	a.cfg.Gain = gain
	a.logger.Debug("set gain", zap.Float64("gain", gain))
	return nil
}

// Close ...
func (a *Audio) Close() error {
	a.logger.Info("Closing Audio...")
	if a.otoContext == nil {
		return nil
	}
	return a.otoContext.Close()
}

// Start plays until ctx is done.
func (a *Audio) Start(ctx context.Context) error {
	p := a.otoContext.NewPlayer()
	defer func() {
		if err := p.Close(); err != nil {
			a.logger.Error("failed to close player", zap.Error(err))
		}
	}()
	a.ctx = ctx

	// block until cancel() called
	if _, err := io.CopyBuffer(p, a, make([]byte, a.cfg.bufferSizeInBytes())); err != nil {
		return err
	}
	a.logger.Info("Start() ended.")
	return nil
}
