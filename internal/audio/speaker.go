package audio

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
)

// speakerSampleRate is the fixed output rate; sounds at other rates are
// resampled.
const speakerSampleRate = beep.SampleRate(44100)

// SpeakerPlayer plays sound files on the default audio device. The
// device is opened on first use and shared by all workers.
type SpeakerPlayer struct {
	volume float64

	once    sync.Once
	initErr error
}

// NewSpeakerPlayer returns a player with the given volume offset, in
// powers of two (0 is unchanged, -1 is half amplitude).
func NewSpeakerPlayer(volume float64) *SpeakerPlayer {
	return &SpeakerPlayer{volume: volume}
}

func (p *SpeakerPlayer) init() error {
	p.once.Do(func() {
		if err := speaker.Init(speakerSampleRate, speakerSampleRate.N(time.Second/10)); err != nil {
			p.initErr = fmt.Errorf("%w: %v", ErrNoAudioDevice, err)
		}
	})
	return p.initErr
}

// Play decodes path and blocks until it has been played.
func (p *SpeakerPlayer) Play(path string) error {
	if err := p.init(); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrIO, path, err)
	}
	defer f.Close()

	streamer, format, err := decodeFile(f, path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDecode, path, err)
	}
	defer streamer.Close()

	var s beep.Streamer = streamer
	if format.SampleRate != speakerSampleRate {
		s = beep.Resample(4, format.SampleRate, speakerSampleRate, s)
	}
	if p.volume != 0 {
		s = &effects.Volume{Streamer: s, Base: 2, Volume: p.volume}
	}

	done := make(chan struct{})
	speaker.Play(beep.Seq(s, beep.Callback(func() {
		close(done)
	})))
	<-done

	if err := streamer.Err(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrPlayback, path, err)
	}
	return nil
}
