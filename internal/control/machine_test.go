package control

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func down(key string) Event   { return Event{Kind: KeyDown, Key: key} }
func repeat(key string) Event { return Event{Kind: KeyDown, Key: key, Repeat: true} }
func up(key string) Event     { return Event{Kind: KeyUp, Key: key} }

var _ = Describe("Machine", func() {
	var (
		clock   *FrameClock
		state   *State
		machine *Machine
	)

	BeforeEach(func() {
		clock = NewFrameClock()
		state = NewState()
		machine = NewMachine(state, clock)
	})

	Describe("toggles", func() {
		It("toggles trails and radials on each key-down", func() {
			machine.Handle(down("t"))
			machine.Handle(up("t"))
			machine.Handle(down("l"))
			Expect(state.Snapshot().Trails).To(BeTrue())
			Expect(state.Snapshot().Radials).To(BeTrue())

			machine.Handle(down("T"))
			Expect(state.Snapshot().Trails).To(BeFalse())
		})

		It("ignores auto-repeat key-downs", func() {
			machine.Handle(down("t"))
			machine.Handle(repeat("t"))
			machine.Handle(repeat("t"))
			Expect(state.Snapshot().Trails).To(BeTrue())

			machine.Handle(down("p"))
			machine.Handle(repeat("p"))
			Expect(state.Snapshot().Paused).To(BeTrue())
		})

		It("toggles pause", func() {
			machine.Handle(down("p"))
			Expect(state.Snapshot().Paused).To(BeTrue())
			machine.Handle(down("p"))
			Expect(state.Snapshot().Paused).To(BeFalse())
		})

		It("sets replay and clears step state on r", func() {
			state.SetPaused(true)
			machine.Handle(down("s"))
			Expect(state.Snapshot().StepOnce).To(BeTrue())

			machine.Handle(down("r"))
			snap := state.Snapshot()
			Expect(snap.Replay).To(BeTrue())
			Expect(snap.StepOnce).To(BeFalse())
			Expect(clock.Pending()).To(Equal(0))
		})
	})

	Describe("step key", func() {
		It("pauses a running session", func() {
			machine.Handle(down("s"))
			snap := state.Snapshot()
			Expect(snap.Paused).To(BeTrue())
			Expect(snap.StepOnce).To(BeFalse())
			Expect(clock.Pending()).To(Equal(0))
		})

		Context("while paused", func() {
			BeforeEach(func() {
				state.SetPaused(true)
			})

			It("requests exactly one step on a 150ms tap", func() {
				machine.Handle(down("s"))
				Expect(state.Snapshot().StepOnce).To(BeTrue())

				clock.Advance(150 * time.Millisecond)
				machine.Handle(up("s"))
				clock.Advance(time.Second)

				snap := state.Snapshot()
				Expect(snap.StepHold).To(BeFalse())
				Expect(snap.StepOnce).To(BeTrue())
				Expect(state.ConsumeStepOnce()).To(BeTrue())
				Expect(state.Snapshot().Paused).To(BeTrue())
			})

			It("engages continuous stepping after a 250ms hold", func() {
				machine.Handle(down("s"))
				clock.Advance(199 * time.Millisecond)
				Expect(state.Snapshot().StepHold).To(BeFalse())

				clock.Advance(51 * time.Millisecond)
				Expect(state.Snapshot().StepHold).To(BeTrue())

				machine.Handle(up("s"))
				Expect(state.Snapshot().StepHold).To(BeFalse())
			})

			It("does not re-arm on auto-repeat", func() {
				machine.Handle(down("s"))
				clock.Advance(100 * time.Millisecond)
				machine.Handle(repeat("s"))
				clock.Advance(100 * time.Millisecond)
				Expect(state.Snapshot().StepHold).To(BeTrue())
			})

			It("ignores a timer that fires after pause was toggled", func() {
				machine.Handle(down("s"))
				machine.Handle(down("p"))
				clock.Advance(time.Second)
				Expect(state.Snapshot().StepHold).To(BeFalse())
			})

			It("honours a custom hold delay", func() {
				machine = NewMachine(state, clock, WithHoldDelay(50*time.Millisecond))
				machine.Handle(down("s"))
				clock.Advance(60 * time.Millisecond)
				Expect(state.Snapshot().StepHold).To(BeTrue())
			})
		})
	})

	Describe("done", func() {
		BeforeEach(func() {
			state.SetPaused(true)
			state.SetDone(true)
		})

		It("makes p and s no-ops", func() {
			machine.Handle(down("p"))
			machine.Handle(up("p"))
			machine.Handle(down("s"))
			clock.Advance(time.Second)

			snap := state.Snapshot()
			Expect(snap.Paused).To(BeTrue())
			Expect(snap.StepOnce).To(BeFalse())
			Expect(snap.StepHold).To(BeFalse())
		})

		It("still accepts r, t and l", func() {
			machine.Handle(down("t"))
			machine.Handle(down("l"))
			machine.Handle(down("r"))

			snap := state.Snapshot()
			Expect(snap.Trails).To(BeTrue())
			Expect(snap.Radials).To(BeTrue())
			Expect(snap.Replay).To(BeTrue())

			Expect(state.TakeReplay()).To(BeTrue())
			Expect(state.Snapshot().Done).To(BeFalse())
			Expect(state.TakeReplay()).To(BeFalse())
		})
	})

	Describe("arrows", func() {
		It("tracks held arrows", func() {
			machine.Handle(down("up"))
			machine.Handle(down("left"))
			machine.Handle(repeat("left"))
			Expect(machine.Arrows()).To(Equal(Arrows{Up: true, Left: true}))

			machine.Handle(up("up"))
			Expect(machine.Arrows()).To(Equal(Arrows{Left: true}))
		})
	})

	Describe("focus loss", func() {
		It("clears held keys and cancels the hold timer", func() {
			state.SetPaused(true)
			machine.Handle(down("right"))
			machine.Handle(down("s"))
			machine.Handle(Event{Kind: FocusLost})

			clock.Advance(time.Second)
			snap := state.Snapshot()
			Expect(snap.StepHold).To(BeFalse())
			Expect(snap.StepOnce).To(BeFalse())
			Expect(machine.Arrows()).To(Equal(Arrows{}))
			Expect(clock.Pending()).To(Equal(0))
		})
	})
})

var _ = Describe("FrameClock", func() {
	It("fires due timers in deadline order", func() {
		clock := NewFrameClock()
		var fired []int
		clock.AfterFunc(30*time.Millisecond, func() { fired = append(fired, 3) })
		clock.AfterFunc(10*time.Millisecond, func() { fired = append(fired, 1) })
		t := clock.AfterFunc(20*time.Millisecond, func() { fired = append(fired, 2) })
		t.Stop()
		t.Stop()

		clock.Advance(25 * time.Millisecond)
		Expect(fired).To(Equal([]int{1}))
		clock.AdvanceTo(40 * time.Millisecond)
		Expect(fired).To(Equal([]int{1, 3}))
		Expect(clock.Now()).To(Equal(40 * time.Millisecond))
	})

	It("lets a callback arm another timer", func() {
		clock := NewFrameClock()
		count := 0
		clock.AfterFunc(time.Millisecond, func() {
			count++
			clock.AfterFunc(time.Millisecond, func() { count++ })
		})
		clock.Advance(time.Millisecond)
		Expect(count).To(Equal(1))
		clock.Advance(time.Millisecond)
		Expect(count).To(Equal(2))
	})
})

var _ = Describe("RealClock", func() {
	It("starts continuous stepping from the timer goroutine", func() {
		state := NewState()
		state.SetPaused(true)
		machine := NewMachine(state, nil, WithHoldDelay(10*time.Millisecond))

		machine.Handle(down("s"))
		Expect(state.Snapshot().StepOnce).To(BeTrue())
		Eventually(func() bool { return state.Snapshot().StepHold }).
			WithTimeout(time.Second).
			WithPolling(5 * time.Millisecond).
			Should(BeTrue())

		machine.Handle(up("s"))
		Expect(state.Snapshot().StepHold).To(BeFalse())
	})

	It("does not fire after release", func() {
		state := NewState()
		state.SetPaused(true)
		machine := NewMachine(state, RealClock{}, WithHoldDelay(20*time.Millisecond))

		machine.Handle(down("s"))
		machine.Handle(up("s"))
		Consistently(func() bool { return state.Snapshot().StepHold }).
			WithTimeout(60 * time.Millisecond).
			WithPolling(5 * time.Millisecond).
			Should(BeFalse())
	})
})
