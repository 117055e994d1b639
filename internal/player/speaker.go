package player

import (
	"context"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/rs/zerolog/log"
)

const (
	speakerSampleRate = beep.SampleRate(44100)
	resampleQuality   = 4
	timeUpdateEvery   = 250 * time.Millisecond
	eventBuffer       = 64
)

var (
	speakerOnce sync.Once
	speakerErr  error
)

func initSpeaker() error {
	speakerOnce.Do(func() {
		speakerErr = speaker.Init(speakerSampleRate, speakerSampleRate.N(time.Second/10))
	})
	return speakerErr
}

// loaded is a decoded source wired into the playback chain:
// stream -> resampler (rate) -> ctrl (pause) -> volume.
type loaded struct {
	file      io.Closer
	stream    beep.StreamSeekCloser
	format    beep.Format
	resampler *beep.Resampler
	ctrl      *beep.Ctrl
	volume    *effects.Volume
	finished  atomic.Bool
	inMixer   bool
}

// Speaker is a Device backed by the system sound card through beep.
type Speaker struct {
	mu     sync.Mutex
	client *http.Client
	events chan Event
	done   chan struct{}
	cancel context.CancelFunc

	source      string
	gen         uint64
	cur         *loaded
	wantPlay    bool
	pendingSeek time.Duration
	level       float64
	muted       bool
	rate        float64
	closed      bool
}

var _ Device = (*Speaker)(nil)

// NewSpeaker creates a device. The sound card is opened on first Play.
func NewSpeaker() *Speaker {
	s := &Speaker{
		client: &http.Client{Timeout: 60 * time.Second},
		events: make(chan Event, eventBuffer),
		done:   make(chan struct{}),
		level:  1,
		rate:   1,
	}
	go s.tick()
	return s
}

// Events returns the notification channel.
func (s *Speaker) Events() <-chan Event { return s.events }

// SetSource drops the current source and starts loading url in the background.
func (s *Speaker) SetSource(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.unloadLocked()
	s.gen++
	s.source = url
	s.wantPlay = false
	s.pendingSeek = 0
	if url == "" {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.load(ctx, s.gen, url)
}

// Source returns the url of the current source.
func (s *Speaker) Source() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

func (s *Speaker) load(ctx context.Context, gen uint64, url string) {
	log.Debug().Str("source", url).Msg("loading source")

	r, ext, err := openSource(ctx, s.client, url)
	if err != nil {
		s.fail(gen, url, err)
		return
	}
	stream, format, err := decode(r, ext)
	if err != nil {
		r.Close()
		s.fail(gen, url, err)
		return
	}

	s.mu.Lock()
	if gen != s.gen || s.closed {
		s.mu.Unlock()
		stream.Close()
		r.Close()
		return
	}

	l := &loaded{file: r, stream: stream, format: format}
	s.buildChain(l)
	if s.pendingSeek > 0 {
		_ = stream.Seek(clampPos(format.SampleRate.N(s.pendingSeek), stream.Len()))
	}
	s.cur = l
	dur := format.SampleRate.D(stream.Len())
	var playErr error
	if s.wantPlay {
		playErr = s.startLocked()
	}
	s.mu.Unlock()

	s.emit(Event{Type: LoadedMetadata, Source: url, Duration: dur})
	if playErr != nil {
		s.emit(Event{Type: Error, Source: url, Err: playErr})
	}
}

func (s *Speaker) fail(gen uint64, url string, err error) {
	s.mu.Lock()
	stale := gen != s.gen
	s.mu.Unlock()
	if stale {
		return
	}
	log.Warn().Err(err).Str("source", url).Msg("loading source failed")
	s.emit(Event{Type: Error, Source: url, Err: err})
}

// Play starts or resumes playback.
func (s *Speaker) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.source == "" {
		return ErrNoSource
	}
	if s.cur == nil {
		s.wantPlay = true
		return nil
	}
	return s.startLocked()
}

func (s *Speaker) startLocked() error {
	if err := initSpeaker(); err != nil {
		return err
	}
	l := s.cur
	if l.finished.Load() {
		// The mixer dropped the finished chain; replay from the start unless
		// a seek already moved the stream back.
		if l.stream.Position() >= l.stream.Len() {
			_ = l.stream.Seek(0)
		}
		s.buildChain(l)
		l.finished.Store(false)
		l.inMixer = false
	}

	speaker.Lock()
	l.ctrl.Paused = false
	speaker.Unlock()

	if !l.inMixer {
		l.inMixer = true
		gen, src := s.gen, s.source
		speaker.Play(beep.Seq(l.volume, beep.Callback(func() {
			l.finished.Store(true)
			// Runs on the mixer goroutine with the speaker locked.
			go s.ended(gen, src)
		})))
	}
	return nil
}

// buildChain wires a fresh playback chain around l.stream.
func (s *Speaker) buildChain(l *loaded) {
	l.resampler = beep.ResampleRatio(resampleQuality, s.ratio(l.format), l.stream)
	l.ctrl = &beep.Ctrl{Streamer: l.resampler, Paused: true}
	l.volume = &effects.Volume{
		Streamer: l.ctrl,
		Base:     2,
		Volume:   levelToVolume(s.level),
		Silent:   s.muted,
	}
}

func (s *Speaker) ended(gen uint64, src string) {
	s.mu.Lock()
	stale := gen != s.gen
	var dur time.Duration
	if !stale && s.cur != nil {
		dur = s.cur.format.SampleRate.D(s.cur.stream.Len())
	}
	s.mu.Unlock()
	if stale {
		return
	}
	s.emit(Event{Type: Ended, Source: src, Position: dur, Duration: dur})
}

// Pause pauses playback. Pausing a loading source cancels a pending Play.
func (s *Speaker) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wantPlay = false
	if s.cur == nil {
		return
	}
	speaker.Lock()
	s.cur.ctrl.Paused = true
	speaker.Unlock()
}

// CurrentTime returns the playback position.
func (s *Speaker) CurrentTime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.positionLocked()
}

func (s *Speaker) positionLocked() time.Duration {
	if s.cur == nil {
		return s.pendingSeek
	}
	speaker.Lock()
	pos := s.cur.stream.Position()
	speaker.Unlock()
	return s.cur.format.SampleRate.D(pos)
}

// SetCurrentTime seeks to d, clamped to the stream bounds.
func (s *Speaker) SetCurrentTime(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur == nil {
		s.pendingSeek = max(d, 0)
		return
	}
	l := s.cur
	n := clampPos(l.format.SampleRate.N(d), l.stream.Len())
	speaker.Lock()
	if err := l.stream.Seek(n); err != nil {
		log.Debug().Err(err).Msg("seek failed")
	}
	speaker.Unlock()
}

func clampPos(n, length int) int {
	return min(max(n, 0), length)
}

// Duration returns the decoded length, or 0 while loading.
func (s *Speaker) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur == nil {
		return 0
	}
	return s.cur.format.SampleRate.D(s.cur.stream.Len())
}

// SetVolume sets the volume level (0.0 to 1.0).
func (s *Speaker) SetVolume(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.level = clampLevel(v)
	if s.cur != nil {
		speaker.Lock()
		s.cur.volume.Volume = levelToVolume(s.level)
		speaker.Unlock()
	}
}

// SetMuted silences output without touching the volume level.
func (s *Speaker) SetMuted(muted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.muted = muted
	if s.cur != nil {
		speaker.Lock()
		s.cur.volume.Silent = muted
		speaker.Unlock()
	}
}

// SetPlaybackRate changes speed (and pitch). Non-positive rates are ignored.
func (s *Speaker) SetPlaybackRate(r float64) {
	if r <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rate = r
	if s.cur != nil {
		speaker.Lock()
		s.cur.resampler.SetRatio(s.ratio(s.cur.format))
		speaker.Unlock()
	}
}

func (s *Speaker) ratio(format beep.Format) float64 {
	return float64(format.SampleRate) / float64(speakerSampleRate) * s.rate
}

// Close stops playback and releases the source.
func (s *Speaker) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.gen++
	s.unloadLocked()
	close(s.done)
	return nil
}

func (s *Speaker) unloadLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.cur == nil {
		return
	}
	if s.cur.inMixer {
		speaker.Clear()
	}
	s.cur.stream.Close()
	s.cur.file.Close()
	s.cur = nil
}

// tick emits TimeUpdate while a source is playing.
func (s *Speaker) tick() {
	t := time.NewTicker(timeUpdateEvery)
	defer t.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-t.C:
		}

		s.mu.Lock()
		var ev Event
		active := false
		if l := s.cur; l != nil && l.inMixer && !l.finished.Load() {
			speaker.Lock()
			paused := l.ctrl.Paused
			pos := l.stream.Position()
			speaker.Unlock()
			if !paused {
				active = true
				ev = Event{
					Type:     TimeUpdate,
					Source:   s.source,
					Position: l.format.SampleRate.D(pos),
					Duration: l.format.SampleRate.D(l.stream.Len()),
				}
			}
		}
		s.mu.Unlock()

		if active {
			// Drop rather than queue stale positions.
			select {
			case s.events <- ev:
			default:
			}
		}
	}
}

func (s *Speaker) emit(ev Event) {
	select {
	case s.events <- ev:
	case <-s.done:
	}
}
