package synth

import (
	"math"
	"testing"
)

const testRate = 48000.0

func TestEnvelopeStages(t *testing.T) {
	var e Envelope
	e.SetTimes(0.01, 0.02, 0.5, 0.04)

	if e.Stage() != StageIdle {
		t.Fatalf("new envelope stage = %v, want idle", e.Stage())
	}
	if level, done := e.Tick(testRate); level != 0 || done {
		t.Fatalf("idle tick = (%v, %v), want (0, false)", level, done)
	}

	e.Trigger()
	attackSamples := int(0.01 * testRate)
	for i := 0; i < attackSamples-1; i++ {
		e.Tick(testRate)
	}
	if e.Stage() != StageAttack {
		t.Errorf("stage before attack end = %v, want attack", e.Stage())
	}
	for i := 0; i < 2; i++ {
		e.Tick(testRate)
	}
	if e.Stage() != StageDecay {
		t.Errorf("stage after attack = %v, want decay", e.Stage())
	}

	for i := 0; i < int(0.02*testRate)+1; i++ {
		e.Tick(testRate)
	}
	if e.Stage() != StageSustain || e.Level() != 0.5 {
		t.Errorf("after decay = (%v, %v), want (sustain, 0.5)", e.Stage(), e.Level())
	}

	// Sustain holds indefinitely
	for i := 0; i < 100000; i++ {
		e.Tick(testRate)
	}
	if e.Stage() != StageSustain || e.Level() != 0.5 {
		t.Errorf("sustain drifted to (%v, %v)", e.Stage(), e.Level())
	}

	e.Release()
	releaseSamples := int(0.04 * testRate)
	finished := -1
	for i := 0; i < releaseSamples+2; i++ {
		if _, done := e.Tick(testRate); done {
			finished = i
			break
		}
	}
	if finished < releaseSamples-2 || finished > releaseSamples+1 {
		t.Errorf("release finished after %d samples, want about %d", finished+1, releaseSamples)
	}
	if e.Stage() != StageIdle || e.Level() != 0 {
		t.Errorf("after release = (%v, %v), want (idle, 0)", e.Stage(), e.Level())
	}
}

func TestEnvelopeZeroTimesJump(t *testing.T) {
	var e Envelope
	e.SetTimes(0, 0, 0.6, 0)
	e.Trigger()

	level, _ := e.Tick(testRate)
	if level != 0.6 || e.Stage() != StageSustain {
		t.Errorf("first tick = (%v, %v), want (0.6, sustain)", level, e.Stage())
	}

	e.Release()
	level, done := e.Tick(testRate)
	if level != 0 || !done || e.Stage() != StageIdle {
		t.Errorf("release tick = (%v, %v, %v), want (0, true, idle)", level, done, e.Stage())
	}
}

func TestEnvelopeContinuity(t *testing.T) {
	const attack, decay, sustain, release = 0.005, 0.01, 0.3, 0.02
	maxStep := math.Max(1/(attack*testRate), math.Max((1-sustain)/(decay*testRate), 1/(release*testRate))) + 1e-12

	var e Envelope
	e.SetTimes(attack, decay, sustain, release)

	prev := 0.0
	check := func(step string) {
		t.Helper()
		level, _ := e.Tick(testRate)
		if level < 0 || level > 1 {
			t.Fatalf("%s: level %v outside [0,1]", step, level)
		}
		if math.Abs(level-prev) > maxStep {
			t.Fatalf("%s: jump %v -> %v exceeds %v", step, prev, level, maxStep)
		}
		prev = level
	}

	e.Trigger()
	for i := 0; i < 150; i++ {
		check("attack")
	}
	// release in the middle of the attack
	e.Release()
	for i := 0; i < 300; i++ {
		check("early release")
	}
	// re-trigger in the middle of the release
	e.Trigger()
	for i := 0; i < 2000; i++ {
		check("re-trigger")
	}
	e.Release()
	for i := 0; i < 2000; i++ {
		check("release")
	}
	if e.Stage() != StageIdle {
		t.Errorf("stage = %v, want idle", e.Stage())
	}
}

func TestEnvelopeRetriggerKeepsLevel(t *testing.T) {
	var e Envelope
	e.SetTimes(0.01, 0.01, 0.5, 0.1)
	e.Trigger()
	for i := 0; i < 2000; i++ {
		e.Tick(testRate)
	}
	e.Release()
	for i := 0; i < 100; i++ {
		e.Tick(testRate)
	}
	before := e.Level()

	e.Trigger()
	if e.Stage() != StageAttack || e.Level() != before {
		t.Errorf("re-trigger = (%v, %v), want (attack, %v)", e.Stage(), e.Level(), before)
	}
	level, _ := e.Tick(testRate)
	if level <= before {
		t.Errorf("attack from %v went to %v", before, level)
	}
}

func TestEnvelopeReleaseWhileIdle(t *testing.T) {
	var e Envelope
	e.SetTimes(0.1, 0.1, 0.5, 0.1)
	e.Release()
	if e.Stage() != StageIdle {
		t.Errorf("release while idle moved to %v", e.Stage())
	}
}

func TestEnvelopeClampsParameters(t *testing.T) {
	var e Envelope
	e.SetTimes(-1, math.NaN(), 3, -5)
	e.Trigger()
	level, _ := e.Tick(testRate)
	if level != 1 || e.Stage() != StageSustain {
		t.Errorf("tick = (%v, %v), want (1, sustain)", level, e.Stage())
	}
}

func TestEnvelopeSustainChangeSlews(t *testing.T) {
	const decay = 0.01
	maxStep := 1/(decay*testRate) + 1e-12

	var e Envelope
	e.SetTimes(0, decay, 0.1, 0.1)
	e.Trigger()
	for e.Stage() != StageSustain {
		e.Tick(testRate)
	}

	e.SetTimes(0, decay, 0.9, 0.1)
	prev := e.Level()
	for i := 0; i < int(decay*testRate); i++ {
		level, _ := e.Tick(testRate)
		if d := math.Abs(level - prev); d > maxStep {
			t.Fatalf("sample %d jumped %v -> %v", i, prev, level)
		}
		prev = level
	}
	if e.Level() != 0.9 || e.Stage() != StageSustain {
		t.Errorf("after slew = (%v, %v), want (0.9, sustain)", e.Level(), e.Stage())
	}

	// lowering back down slews the same way
	e.SetTimes(0, decay, 0.1, 0.1)
	if level, _ := e.Tick(testRate); math.Abs(level-0.9) > maxStep {
		t.Errorf("first tick after lowering = %v", level)
	}
}

func TestEnvelopeSustainRaisedMidDecay(t *testing.T) {
	const decay = 0.02
	maxStep := 1/(decay*testRate) + 1e-12

	var e Envelope
	e.SetTimes(0, decay, 0.2, 0.1)
	e.Trigger()
	for e.Level() > 0.6 {
		e.Tick(testRate)
	}
	if e.Stage() != StageDecay {
		t.Fatalf("stage = %v, want decay", e.Stage())
	}

	e.SetTimes(0, decay, 1, 0.1)
	prev := e.Level()
	for e.Stage() == StageDecay {
		level, _ := e.Tick(testRate)
		if d := math.Abs(level - prev); d > maxStep {
			t.Fatalf("decay jumped %v -> %v", prev, level)
		}
		prev = level
	}
	if e.Stage() != StageSustain || e.Level() != 1 {
		t.Errorf("after raise = (%v, %v), want (sustain, 1)", e.Stage(), e.Level())
	}
}
