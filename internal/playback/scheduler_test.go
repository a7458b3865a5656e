package playback

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/verte-zerg/suuji/internal/logger"
	"github.com/verte-zerg/suuji/internal/model"
	"github.com/verte-zerg/suuji/internal/speech"
)

type fakePort struct {
	mu    sync.Mutex
	texts []string
	opts  []speech.Options
	dones []func(error)
	stops int
}

func (f *fakePort) Synthesize(text string, opts speech.Options, done func(error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	f.opts = append(f.opts, opts)
	f.dones = append(f.dones, done)
}

func (f *fakePort) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
}

func (f *fakePort) complete(t *testing.T, i int, err error) {
	t.Helper()
	f.mu.Lock()
	if i >= len(f.dones) {
		f.mu.Unlock()
		t.Fatalf("no utterance %d (have %d)", i, len(f.dones))
	}
	done := f.dones[i]
	f.mu.Unlock()
	done(err)
}

func (f *fakePort) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.texts...)
}

func newScheduler(port speech.Port) *Scheduler {
	return New(port, speech.DefaultOptions(), logger.Nop())
}

func TestPlaySequencesInOrder(t *testing.T) {
	fake := &fakePort{}
	s := newScheduler(fake)
	texts := []string{"いち", "に", "さん", "よん", "ご"}

	if err := s.Play(texts); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	for i := range texts {
		if got := len(fake.calls()); got != i+1 {
			t.Fatalf("before completing %d: expected %d port calls, got %d", i, i+1, got)
		}
		idx, ok := s.Current()
		if !ok || idx != i {
			t.Fatalf("expected current %d, got %d (ok=%v)", i, idx, ok)
		}
		fake.complete(t, i, nil)
	}

	if !reflect.DeepEqual(fake.calls(), texts) {
		t.Fatalf("unexpected order: %v", fake.calls())
	}
	if s.State() != Idle {
		t.Fatalf("expected idle after last completion, got %s", s.State())
	}
	if _, ok := s.Current(); ok {
		t.Fatalf("expected no current index when idle")
	}
}

func TestPlayEmptySequence(t *testing.T) {
	fake := &fakePort{}
	s := newScheduler(fake)
	if err := s.Play(nil); !errors.Is(err, ErrEmptySequence) {
		t.Fatalf("expected ErrEmptySequence, got %v", err)
	}
	if len(fake.calls()) != 0 || s.State() != Idle {
		t.Fatalf("empty sequence must not touch the port or state")
	}
}

func TestPlayWhilePlaying(t *testing.T) {
	fake := &fakePort{}
	s := newScheduler(fake)
	if err := s.Play([]string{"いち", "に"}); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if err := s.Play([]string{"さん"}); !errors.Is(err, ErrAlreadyPlaying) {
		t.Fatalf("expected ErrAlreadyPlaying, got %v", err)
	}
	if got := fake.calls(); !reflect.DeepEqual(got, []string{"いち"}) {
		t.Fatalf("second sequence must not start, calls %v", got)
	}
}

func TestStopMidSequence(t *testing.T) {
	fake := &fakePort{}
	s := newScheduler(fake)
	if err := s.Play([]string{"a", "b", "c", "d", "e"}); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	fake.complete(t, 0, nil)
	fake.complete(t, 1, nil)

	s.Stop()
	if s.State() != Idle {
		t.Fatalf("expected idle after stop, got %s", s.State())
	}
	if fake.stops != 1 {
		t.Fatalf("expected one port stop, got %d", fake.stops)
	}

	// The utterance that was in flight reports late.
	fake.complete(t, 2, nil)
	if got := len(fake.calls()); got != 3 {
		t.Fatalf("late completion resumed playback: %d calls", got)
	}
	if s.State() != Idle {
		t.Fatalf("late completion changed state to %s", s.State())
	}
}

func TestStopIsIdempotent(t *testing.T) {
	fake := &fakePort{}
	s := newScheduler(fake)

	s.Stop()
	if fake.stops != 0 {
		t.Fatalf("stop on idle scheduler reached the port")
	}

	if err := s.Play([]string{"a", "b"}); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	s.Stop()
	s.Stop()
	if fake.stops != 1 {
		t.Fatalf("expected a single port stop, got %d", fake.stops)
	}
}

func TestStaleCompletionAfterRestart(t *testing.T) {
	fake := &fakePort{}
	s := newScheduler(fake)
	if err := s.Play([]string{"a", "b"}); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	s.Stop()
	if err := s.Play([]string{"c", "d"}); err != nil {
		t.Fatalf("second Play failed: %v", err)
	}

	// Completion of "a" carries the first epoch and must not advance "c".
	fake.complete(t, 0, nil)
	if got := fake.calls(); !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Fatalf("stale completion advanced playback: %v", got)
	}

	fake.complete(t, 1, nil)
	if got := fake.calls(); !reflect.DeepEqual(got, []string{"a", "c", "d"}) {
		t.Fatalf("unexpected calls: %v", got)
	}
}

func TestFailureIsNoticeAndAdvances(t *testing.T) {
	fake := &fakePort{}
	s := newScheduler(fake)

	var notices []error
	s.Subscribe(func(st Status) {
		if st.Notice != nil {
			notices = append(notices, st.Notice)
		}
	})

	if err := s.Play([]string{"a", "b"}); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	boom := errors.New("device busy")
	fake.complete(t, 0, boom)

	if got := fake.calls(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("failure must advance playback, calls %v", got)
	}
	if len(notices) != 1 || !errors.Is(notices[0], boom) {
		t.Fatalf("expected one notice, got %v", notices)
	}
}

func TestPreemptionEndsSequence(t *testing.T) {
	fake := &fakePort{}
	s := newScheduler(fake)
	if err := s.Play([]string{"a", "b"}); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	fake.complete(t, 0, speech.ErrPreempted)
	if s.State() != Idle {
		t.Fatalf("expected idle after preemption, got %s", s.State())
	}
	if got := len(fake.calls()); got != 1 {
		t.Fatalf("preempted sequence continued: %d calls", got)
	}
}

func TestSharedArbiterPreemptsOtherScheduler(t *testing.T) {
	fake := &fakePort{}
	arb := speech.NewArbiter(fake, logger.Nop())
	browse := newScheduler(arb)
	quiz := newScheduler(arb)

	if err := browse.Play([]string{"a", "b", "c"}); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if err := quiz.Play([]string{"ひゃく"}); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if browse.State() != Idle {
		t.Fatalf("expected browse scheduler to be preempted, got %s", browse.State())
	}
	if quiz.State() != Playing {
		t.Fatalf("expected quiz scheduler to be playing, got %s", quiz.State())
	}

	fake.complete(t, 1, nil)
	if quiz.State() != Idle {
		t.Fatalf("expected quiz scheduler idle after completion")
	}
	if got := fake.calls(); !reflect.DeepEqual(got, []string{"a", "ひゃく"}) {
		t.Fatalf("unexpected calls: %v", got)
	}
}

func TestSubscribeReportsTransitions(t *testing.T) {
	fake := &fakePort{}
	s := newScheduler(fake)

	var states []State
	var indexes []int
	unsubscribe := s.Subscribe(func(st Status) {
		states = append(states, st.State)
		indexes = append(indexes, st.Index)
	})

	if err := s.Play([]string{"a", "b"}); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	fake.complete(t, 0, nil)
	fake.complete(t, 1, nil)

	wantStates := []State{Playing, Playing, Idle}
	if !reflect.DeepEqual(states, wantStates) {
		t.Fatalf("states = %v; want %v", states, wantStates)
	}
	if !reflect.DeepEqual(indexes[:2], []int{0, 1}) {
		t.Fatalf("indexes = %v", indexes)
	}

	unsubscribe()
	if err := s.Play([]string{"c"}); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if len(states) != 3 {
		t.Fatalf("observer called after unsubscribe")
	}
}

func TestWaitReturnsWhenFinished(t *testing.T) {
	fake := &fakePort{}
	s := newScheduler(fake)
	if err := s.Wait(context.Background()); err != nil {
		t.Fatalf("Wait on idle scheduler: %v", err)
	}

	if err := s.Play([]string{"a"}); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := s.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline while playing, got %v", err)
	}

	fake.mu.Lock()
	done := fake.dones[0]
	fake.mu.Unlock()
	go done(nil)
	ctx2, cancel2 := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel2()
	if err := s.Wait(ctx2); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
}

func TestSetOptionsAppliesToNextSequence(t *testing.T) {
	fake := &fakePort{}
	s := newScheduler(fake)
	if err := s.Play([]string{"a", "b"}); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	romaji := s.Options()
	romaji.Alphabet = model.Romaji
	s.SetOptions(romaji)

	fake.complete(t, 0, nil)
	if fake.opts[1].Alphabet != model.Kana {
		t.Fatalf("running sequence must keep its options")
	}
	fake.complete(t, 1, nil)

	if err := s.Play([]string{"c"}); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if fake.opts[2].Alphabet != model.Romaji {
		t.Fatalf("expected new options for the next sequence")
	}
}

func TestStopBeforeNextLaunchSilencesSequence(t *testing.T) {
	fake := &fakePort{}
	s := newScheduler(fake)

	stopped := false
	s.Subscribe(func(st Status) {
		if !stopped && st.State == Playing && st.Index == 1 {
			stopped = true
			s.Stop()
		}
	})

	if err := s.Play([]string{"a", "b", "c"}); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	fake.complete(t, 0, nil)

	if !stopped {
		t.Fatalf("observer never saw index 1")
	}
	if got := fake.calls(); !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("port spoke after Stop returned: %v", got)
	}
	if s.State() != Idle {
		t.Fatalf("expected idle, got %s", s.State())
	}
}

func TestStoppedSchedulerDoesNotPreemptNewSpeaker(t *testing.T) {
	fake := &fakePort{}
	arb := speech.NewArbiter(fake, logger.Nop())
	browse := newScheduler(arb)
	quiz := newScheduler(arb)

	handedOver := false
	browse.Subscribe(func(st Status) {
		if !handedOver && st.State == Playing && st.Index == 1 {
			handedOver = true
			browse.Stop()
			if err := quiz.Play([]string{"x"}); err != nil {
				t.Errorf("quiz Play failed: %v", err)
			}
		}
	})

	if err := browse.Play([]string{"a", "b", "c"}); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	fake.complete(t, 0, nil)

	if got := fake.calls(); !reflect.DeepEqual(got, []string{"a", "x"}) {
		t.Fatalf("unexpected calls: %v", got)
	}
	if browse.State() != Idle {
		t.Fatalf("expected browse idle, got %s", browse.State())
	}
	if quiz.State() != Playing {
		t.Fatalf("expected quiz still playing, got %s", quiz.State())
	}
}

func TestImmediateCompletionDuringLaunch(t *testing.T) {
	fake := &fakePort{}
	s := newScheduler(speech.NewArbiter(fake, logger.Nop()))

	var notices []error
	s.Subscribe(func(st Status) {
		if st.Notice != nil {
			notices = append(notices, st.Notice)
		}
	})

	// The arbiter rejects the empty text before Synthesize returns.
	if err := s.Play([]string{"a", "", "c"}); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	fake.complete(t, 0, nil)

	if got := fake.calls(); !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Fatalf("unexpected calls: %v", got)
	}
	if len(notices) != 1 || !errors.Is(notices[0], speech.ErrEmptyText) {
		t.Fatalf("expected an empty-text notice, got %v", notices)
	}
	if idx, ok := s.Current(); !ok || idx != 2 {
		t.Fatalf("expected current 2, got %d (ok=%v)", idx, ok)
	}
}

func TestRelayKeepsLatestStatus(t *testing.T) {
	ch := make(chan Status, 2)
	relay := Relay(ch)
	for i := 0; i < 5; i++ {
		relay(Status{State: Playing, Index: i})
	}
	relay(Status{State: Idle, Index: 5})

	var got []Status
	for len(ch) > 0 {
		got = append(got, <-ch)
	}
	want := []Status{{State: Playing, Index: 4}, {State: Idle, Index: 5}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("queued = %+v; want %+v", got, want)
	}
}

func TestRelayDeliversFinalIdleFromScheduler(t *testing.T) {
	fake := &fakePort{}
	s := newScheduler(fake)
	ch := make(chan Status, 1)
	s.Subscribe(Relay(ch))

	if err := s.Play([]string{"a", "b", "c"}); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		fake.complete(t, i, nil)
	}
	if st := <-ch; st.State != Idle {
		t.Fatalf("expected the final idle status, got %s", st.State)
	}
}
