/*
 * Copyright (c) 2023 AlertAvert.com.  All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Author: Marco Massenzio (marco@alertavert.com)
 */

package fsm_test

import (
	"fmt"
	"iter"
	"sync"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/massenz/go-lazyfsm/fsm"
)

var _ = Describe("Lazy Machine", func() {

	var turnstile fsm.Config[string, string]

	BeforeEach(func() {
		turnstile = fsm.Config[string, string]{
			Transition: turnstileRule,
			Initial:    "locked",
			States:     fsm.SetOf(turnstileStates...),
			Alphabet:   fsm.SetOf(turnstileTokens...),
		}
	})

	Context("when constructed", func() {
		It("exposes the supplied configuration", func() {
			m, err := fsm.New(turnstile)
			Expect(err).ToNot(HaveOccurred())
			Expect(m.Initial()).To(Equal("locked"))
			Expect(m.States().Contains("unlocked")).To(BeTrue())
			Expect(m.States().Contains("ajar")).To(BeFalse())
			Expect(m.Alphabet().Contains("coin")).To(BeTrue())
		})
		It("defaults the accepting states to all states", func() {
			m, err := fsm.New(turnstile)
			Expect(err).ToNot(HaveOccurred())
			Expect(m.FinalStates().Contains("locked")).To(BeTrue())
			Expect(m.FinalStates().Contains("unlocked")).To(BeTrue())
		})
		It("honors an explicit set of accepting states", func() {
			turnstile.FinalStates = []string{"locked"}
			m, err := fsm.New(turnstile)
			Expect(err).ToNot(HaveOccurred())
			Expect(m.FinalStates().Contains("locked")).To(BeTrue())
			Expect(m.FinalStates().Contains("unlocked")).To(BeFalse())
		})
		It("rejects accepting states that are not machine states", func() {
			turnstile.FinalStates = []string{"locked", "ajar"}
			_, err := fsm.New(turnstile)
			Expect(err).To(MatchError(fsm.InvalidFinalStatesError))
		})
		It("checks the accepting states before the initial state", func() {
			turnstile.Initial = "ajar"
			turnstile.FinalStates = []string{"also broken"}
			_, err := fsm.New(turnstile)
			Expect(err).To(MatchError(fsm.InvalidFinalStatesError))
		})
		It("rejects an initial state that is not a machine state", func() {
			turnstile.Initial = "ajar"
			_, err := fsm.New(turnstile)
			Expect(err).To(MatchError(fsm.InvalidInitialStateError))
		})
		It("requires a state set", func() {
			turnstile.States = nil
			_, err := fsm.New(turnstile)
			Expect(err).To(MatchError(fsm.MissingStatesConfigError))
		})
		It("requires a transition function", func() {
			turnstile.Transition = nil
			_, err := fsm.New(turnstile)
			Expect(err).To(MatchError(fsm.MissingTransitionConfigError))
		})
	})

	Context("when stepping", func() {
		var m *fsm.Machine[string, string]

		BeforeEach(func() {
			var err error
			m, err = fsm.New(turnstile)
			Expect(err).ToNot(HaveOccurred())
		})

		It("computes the next state", func() {
			Expect(m.Step("locked", "coin")).To(Equal("unlocked"))
			Expect(m.Step("unlocked", "push")).To(Equal("locked"))
		})
		It("rejects a current state outside the state set", func() {
			_, err := m.Step("broken by an angry customer", "coin")
			Expect(err).To(MatchError(fsm.InvalidStateError))
		})
		It("reports the invalid state before the invalid token", func() {
			// Both checks would fail here; the state check wins.
			_, err := m.Step("ajar", "kick")
			Expect(err).To(MatchError(fsm.InvalidStateError))
		})
		It("rejects a token outside the alphabet, even for a legal transition", func() {
			cfg := turnstile
			cfg.Alphabet = fsm.SetOf("coin") // no push, only coin
			restricted, err := fsm.New(cfg)
			Expect(err).ToNot(HaveOccurred())
			_, err = restricted.Step("locked", "push")
			Expect(err).To(MatchError(fsm.InvalidInputTokenError))
		})
		It("accepts any token when no alphabet is declared", func() {
			cfg := turnstile
			cfg.Alphabet = nil
			anyToken, err := fsm.New(cfg)
			Expect(err).ToNot(HaveOccurred())
			_, err = anyToken.Step("locked", "surprise input")
			Expect(err).To(MatchError(fsm.IllegalTransitionError))
		})
		It("propagates an illegal transition unchanged", func() {
			cfg := turnstile
			cfg.Alphabet = fsm.SetOf(append(turnstileTokens, "surprise input")...)
			m, err := fsm.New(cfg)
			Expect(err).ToNot(HaveOccurred())
			_, err = m.Step("locked", "surprise input")
			Expect(err).To(MatchError(fsm.IllegalTransitionError))
			// The rule's own context must survive the trip.
			Expect(err.Error()).To(ContainSubstring("surprise input"))
		})
		It("rejects a computed state outside the state set", func() {
			cfg := turnstile
			cfg.Transition = func(string, string) (string, error) {
				return "what states are we supposed to support again?", nil
			}
			m, err := fsm.New(cfg)
			Expect(err).ToNot(HaveOccurred())
			_, err = m.Step("locked", "coin")
			Expect(err).To(MatchError(fsm.InvalidStateError))
		})
		It("classifies any other rule failure, hiding the cause", func() {
			cfg := turnstile
			cfg.Transition = func(string, string) (string, error) {
				return "", fmt.Errorf("cosmic ray bit flip")
			}
			m, err := fsm.New(cfg)
			Expect(err).ToNot(HaveOccurred())
			_, err = m.Step("locked", "coin")
			Expect(err).To(MatchError(fsm.TransitionFunctionError))
			Expect(err.Error()).ToNot(ContainSubstring("cosmic ray"))
		})
		It("survives a panicking rule", func() {
			cfg := turnstile
			cfg.Transition = func(string, string) (string, error) {
				panic("assertion failed in the rule")
			}
			m, err := fsm.New(cfg)
			Expect(err).ToNot(HaveOccurred())
			_, err = m.Step("locked", "coin")
			Expect(err).To(MatchError(fsm.TransitionFunctionError))
			Expect(err.Error()).ToNot(ContainSubstring("assertion failed"))
		})
	})

	Context("when processing sequences", func() {
		var m *fsm.Machine[string, string]

		BeforeEach(func() {
			var err error
			m, err = fsm.New(turnstile)
			Expect(err).ToNot(HaveOccurred())
		})

		It("returns the initial state for no input", func() {
			Expect(m.Process()).To(Equal("locked"))
		})
		It("always starts from the machine's initial state", func() {
			Expect(m.Process("coin")).To(Equal("unlocked"))
			// The previous run leaves no trace.
			Expect(m.Process("push")).To(Equal("locked"))
		})
		It("is equivalent to folding Step over the input", func() {
			inputs := []string{"coin", "coin", "push", "coin", "push", "push"}
			state := m.Initial()
			for _, input := range inputs {
				var err error
				state, err = m.Step(state, input)
				Expect(err).ToNot(HaveOccurred())
			}
			Expect(m.Process(inputs...)).To(Equal(state))
		})
		It("aborts on the first failing step", func() {
			calls := 0
			cfg := turnstile
			cfg.Transition = func(state, input string) (string, error) {
				calls++
				return turnstileRule(state, input)
			}
			counting, err := fsm.New(cfg)
			Expect(err).ToNot(HaveOccurred())
			_, err = counting.Process("coin", "jiggle", "push", "push")
			Expect(err).To(MatchError(fsm.InvalidInputTokenError))
			Expect(calls).To(Equal(1))
		})
		It("pulls a lazy sequence only as far as needed", func() {
			produced := 0
			tokens := []string{"coin", "jiggle", "push", "push"}
			lazy := iter.Seq[string](func(yield func(string) bool) {
				for _, t := range tokens {
					produced++
					if !yield(t) {
						return
					}
				}
			})
			_, err := m.ProcessSeq(lazy)
			Expect(err).To(MatchError(fsm.InvalidInputTokenError))
			Expect(produced).To(Equal(2))
		})
		It("supports independent concurrent runs", func() {
			var wg sync.WaitGroup
			for i := 0; i < 10; i++ {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					Expect(m.Process("coin", "push", "coin")).To(Equal("unlocked"))
				}()
			}
			wg.Wait()
		})
	})

	Context("when checking acceptance", func() {
		It("returns an accepting final state", func() {
			turnstile.FinalStates = []string{"unlocked"}
			m, err := fsm.New(turnstile)
			Expect(err).ToNot(HaveOccurred())
			Expect(m.ProcessAndCheck("coin")).To(Equal("unlocked"))
		})
		It("rejects a valid but non-accepting final state", func() {
			// At night the machines should be locked.
			turnstile.FinalStates = []string{"locked"}
			m, err := fsm.New(turnstile)
			Expect(err).ToNot(HaveOccurred())
			_, err = m.ProcessAndCheck("coin")
			Expect(err).To(MatchError(fsm.InvalidFinalStateError))
		})
		It("accepts nothing when the accepting set is empty", func() {
			turnstile.FinalStates = []string{}
			m, err := fsm.New(turnstile)
			Expect(err).ToNot(HaveOccurred())
			_, err = m.ProcessAndCheck()
			Expect(err).To(MatchError(fsm.InvalidFinalStateError))
		})
		It("lets processing errors pass through unchanged", func() {
			turnstile.FinalStates = []string{"locked"}
			m, err := fsm.New(turnstile)
			Expect(err).ToNot(HaveOccurred())
			_, err = m.ProcessAndCheck("jiggle")
			Expect(err).To(MatchError(fsm.InvalidInputTokenError))
		})
	})

	Context("with unenumerable domains", func() {
		It("only needs membership tests", func() {
			// Q is all non-negative integers; Σ is every string of digits.
			counter, err := fsm.New(fsm.Config[int, string]{
				Transition: func(current int, input string) (int, error) {
					return current + len(input), nil
				},
				Initial: 0,
				States:  fsm.SetFunc[int](func(s int) bool { return s >= 0 }),
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(counter.Process("a", "bb", "ccc")).To(Equal(6))
		})
	})
})
