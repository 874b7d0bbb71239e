/*
 * Copyright (c) 2023 AlertAvert.com.  All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Author: Marco Massenzio (marco@alertavert.com)
 */

// Package fsm implements a lazy finite state machine interpreter: the
// transition relation is never enumerated or stored, it is computed on
// demand by a caller-supplied rule. This allows the state and alphabet sets
// to be conceptually infinite (they are only ever membership-tested), and
// the rule itself to be non-deterministic, expensive to evaluate, or
// externally sourced.
package fsm

import (
	"errors"
	"fmt"
	"iter"
	"slices"

	log "github.com/massenz/slf4go/logging"
)

var (
	// Logger is made accessible so that its `Level` can be changed,
	// or it can be silenced entirely (log.NONE) during testing.
	Logger = log.NewLog("fsm")
)

// TransitionFunc computes the state following `current` when `input` is
// consumed. The rule signals that no transition is defined for the pair by
// returning an error wrapping IllegalTransitionError; any other error (or a
// panic while evaluating the rule) is classified by the machine as a
// TransitionFunctionError.
type TransitionFunc[S comparable, T comparable] func(current S, input T) (S, error)

// Config carries the full (Q, Σ, q0, F, δ) machine definition to New.
type Config[S comparable, T comparable] struct {
	// Transition is the δ rule driving the machine (required).
	Transition TransitionFunc[S, T]

	// Initial is q0, the state every Process run starts from; it must be a
	// member of States.
	Initial S

	// States is Q, the set of valid states (required). Only membership is
	// ever tested, so a SetFunc over an unenumerable domain works fine.
	States Set[S]

	// FinalStates is F, the accepting states; every element must be a member
	// of States. Leave nil to make every state accepting. An empty (non-nil)
	// slice declares a machine that accepts nothing.
	FinalStates []S

	// Alphabet is Σ; when non-nil every input token is checked for
	// membership before the rule is invoked. Leave nil to accept any token.
	Alphabet Set[T]
}

// Machine is the interpreter built by New. It is immutable once
// constructed and holds no processing state: the "current state" of a run
// only lives in the caller's loop, so a single Machine can serve any number
// of concurrent runs, provided the rule and sets it was configured with are
// themselves safe for concurrent use.
type Machine[S comparable, T comparable] struct {
	delta    TransitionFunc[S, T]
	initial  S
	states   Set[S]
	finals   Set[S]
	alphabet Set[T]
}

// New validates the configuration and returns the machine.
//
// The final states are checked first (failing with InvalidFinalStatesError
// on the first element, in declaration order, that is not a valid state),
// then the initial state (InvalidInitialStateError). Q and Σ are not
// otherwise inspected; they may well be unenumerable.
func New[S comparable, T comparable](cfg Config[S, T]) (*Machine[S, T], error) {
	if cfg.States == nil {
		Logger.Error("Missing states in machine configuration")
		return nil, MissingStatesConfigError
	}
	if cfg.Transition == nil {
		Logger.Error("Missing transition function in machine configuration")
		return nil, MissingTransitionConfigError
	}
	// F defaults to the whole of Q, which makes the subset check trivially
	// true (and keeps Q unenumerated).
	finals := cfg.States
	if cfg.FinalStates != nil {
		for _, state := range cfg.FinalStates {
			if !cfg.States.Contains(state) {
				return nil, fmt.Errorf("%w: %v", InvalidFinalStatesError, state)
			}
		}
		finals = SetOf(cfg.FinalStates...)
	}
	if !cfg.States.Contains(cfg.Initial) {
		return nil, fmt.Errorf("%w: %v", InvalidInitialStateError, cfg.Initial)
	}
	return &Machine[S, T]{
		delta:    cfg.Transition,
		initial:  cfg.Initial,
		states:   cfg.States,
		finals:   finals,
		alphabet: cfg.Alphabet,
	}, nil
}

// Step consumes a single input token from `current` and returns the next
// state. The order of the checks is part of the contract, since it decides
// which error wins when several would apply:
//
//  1. `current` must be a valid state (InvalidStateError);
//  2. `input` must be in the alphabet, when one was declared
//     (InvalidInputTokenError);
//  3. the rule is invoked: an illegal-transition error is propagated
//     unchanged, anything else it fails with becomes
//     TransitionFunctionError;
//  4. the computed state must be a valid state (InvalidStateError).
func (m *Machine[S, T]) Step(current S, input T) (S, error) {
	var none S
	if !m.states.Contains(current) {
		return none, fmt.Errorf("%w: %v", InvalidStateError, current)
	}
	if m.alphabet != nil && !m.alphabet.Contains(input) {
		return none, fmt.Errorf("%w: %v", InvalidInputTokenError, input)
	}
	next, err := m.invoke(current, input)
	if err != nil {
		if errors.Is(err, IllegalTransitionError) {
			return none, err
		}
		// The fault belongs to the rule, not to its caller: log it here,
		// but do not surface it.
		Logger.Debug("transition rule failed on (%v, %v): %s", current, input, err)
		return none, TransitionFunctionError
	}
	if !m.states.Contains(next) {
		return none, fmt.Errorf("%w: %v", InvalidStateError, next)
	}
	return next, nil
}

// invoke runs the rule, converting a panic into a plain error so that Step
// can classify it like any other rule fault.
func (m *Machine[S, T]) invoke(current S, input T) (next S, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("transition rule panic: %v", r)
		}
	}()
	return m.delta(current, input)
}

// Process folds Step over the input tokens, starting (always) from the
// machine's initial state, and returns the state reached after the last
// one; no tokens at all returns the initial state. The last token is not
// assumed to be the end of the "real" input: processing a prefix to inspect
// an intermediate state is fine.
//
// The first failing Step aborts the run, and its error is returned
// unchanged.
func (m *Machine[S, T]) Process(inputs ...T) (S, error) {
	return m.ProcessSeq(slices.Values(inputs))
}

// ProcessSeq is Process over a lazily-produced sequence; the sequence is
// only pulled as tokens are consumed, and not at all past a failure.
func (m *Machine[S, T]) ProcessSeq(inputs iter.Seq[T]) (S, error) {
	state := m.initial
	for input := range inputs {
		next, err := m.Step(state, input)
		if err != nil {
			var none S
			return none, err
		}
		state = next
	}
	return state, nil
}

// ProcessAndCheck runs Process, then additionally requires the state
// reached to be an accepting one, failing with InvalidFinalStateError when
// it is not. Errors from the underlying run pass through unchanged.
func (m *Machine[S, T]) ProcessAndCheck(inputs ...T) (S, error) {
	return m.ProcessAndCheckSeq(slices.Values(inputs))
}

// ProcessAndCheckSeq is ProcessAndCheck over a lazily-produced sequence.
func (m *Machine[S, T]) ProcessAndCheckSeq(inputs iter.Seq[T]) (S, error) {
	final, err := m.ProcessSeq(inputs)
	if err != nil {
		return final, err
	}
	if !m.finals.Contains(final) {
		var none S
		return none, fmt.Errorf("%w: %v", InvalidFinalStateError, final)
	}
	return final, nil
}

// Initial returns the machine's q0.
func (m *Machine[S, T]) Initial() S {
	return m.initial
}

// States returns the machine's state set.
func (m *Machine[S, T]) States() Set[S] {
	return m.states
}

// FinalStates returns the machine's accepting states; when none were
// declared, this is the full state set.
func (m *Machine[S, T]) FinalStates() Set[S] {
	return m.finals
}

// Alphabet returns the machine's alphabet, nil when any token is accepted.
func (m *Machine[S, T]) Alphabet() Set[T] {
	return m.alphabet
}
