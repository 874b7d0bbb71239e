/*
 * Copyright (c) 2023 AlertAvert.com.  All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Author: Marco Massenzio (marco@alertavert.com)
 */

package fsm

import "fmt"

// The machine's error taxonomy; every error returned by a Machine (or by
// New) wraps exactly one of these sentinels, so callers can branch with
// `errors.Is`.
//
// IllegalTransitionError and InvalidFinalStateError are "expected" outcomes
// (the machine rejecting an input sequence); the others indicate a defect in
// the configuration, the inputs, or the transition rule itself.
var (
	// InvalidFinalStatesError is returned by New when one of the declared
	// final states is not a valid machine state.
	InvalidFinalStatesError = fmt.Errorf("all final states must be valid machine states")

	// InvalidInitialStateError is returned by New when the initial state is
	// not a valid machine state.
	InvalidInitialStateError = fmt.Errorf("the initial state must be one of the machine states")

	// InvalidStateError is returned by Step when either the current state,
	// or the state computed by the transition rule, is not a valid machine
	// state.
	InvalidStateError = fmt.Errorf("not a valid machine state")

	// InvalidInputTokenError is returned by Step when the machine declares
	// an alphabet and the input token is not part of it.
	InvalidInputTokenError = fmt.Errorf("input token is not in the machine alphabet")

	// IllegalTransitionError is the rule's way to signal that no transition
	// is defined for the given (state, token) pair; the rule returns an
	// error wrapping this sentinel and Step propagates it unchanged.
	IllegalTransitionError = fmt.Errorf("no transition defined for this state and input token")

	// TransitionFunctionError is returned by Step when the rule fails (or
	// panics) for any reason other than an illegal transition; the original
	// fault is logged, but deliberately not exposed to the caller.
	TransitionFunctionError = fmt.Errorf("the transition function could not compute a next state")

	// InvalidFinalStateError is returned by ProcessAndCheck when the state
	// reached after the last input token is valid, but not accepting.
	InvalidFinalStateError = fmt.Errorf("the state reached is not an accepting state")

	// MissingStatesConfigError is returned by New when the configuration
	// carries no state set at all.
	MissingStatesConfigError = fmt.Errorf("a machine must declare its set of valid states")

	// MissingTransitionConfigError is returned by New when the configuration
	// carries no transition function.
	MissingTransitionConfigError = fmt.Errorf("a machine must be given a transition function")
)
