package audio

import "fmt"

// Config describes the output stream and the initial oscillator settings.
type Config struct {
	SampleRate      int
	ChannelNum      int
	BitDepthInBytes int
	SamplesPerCycle int // samples rendered per Read, per channel

	Freq float64 // Hz
	Gain float64 // 0 ~ 1
}

// DefaultConfig returns a 48kHz 16bit stereo configuration playing A4.
func DefaultConfig() Config {
	return Config{
		SampleRate:      48000,
		ChannelNum:      2,
		BitDepthInBytes: 2,
		SamplesPerCycle: 1024,
		Freq:            442.0,
		Gain:            0.3,
	}
}

func (c Config) bytesPerSample() int {
	return c.BitDepthInBytes * c.ChannelNum
}

// bufferSizeInBytes should be >= 4096 for oto
func (c Config) bufferSizeInBytes() int {
	return c.SamplesPerCycle * c.bytesPerSample()
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", c.SampleRate)
	}
	if c.ChannelNum != 1 && c.ChannelNum != 2 {
		return fmt.Errorf("invalid number of channels %d", c.ChannelNum)
	}
	if c.BitDepthInBytes != 1 && c.BitDepthInBytes != 2 {
		return fmt.Errorf("invalid bit depth %d bytes", c.BitDepthInBytes)
	}
	if c.SamplesPerCycle <= 0 {
		return fmt.Errorf("invalid samples per cycle %d", c.SamplesPerCycle)
	}
	if err := c.checkFreq(c.Freq); err != nil {
		return err
	}
	return checkGain(c.Gain)
}

func (c Config) checkFreq(freq float64) error {
	if !(freq > 0 && freq < float64(c.SampleRate)/2) {
		return fmt.Errorf("frequency %v Hz is not between 0 and %v Hz", freq, float64(c.SampleRate)/2)
	}
	return nil
}

func checkGain(gain float64) error {
	if !(gain >= 0 && gain <= 1) {
		return fmt.Errorf("gain %v is not between 0 and 1", gain)
	}
	return nil
}
