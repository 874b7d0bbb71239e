/*
 * Copyright (c) 2023 AlertAvert.com.  All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Author: Marco Massenzio (marco@alertavert.com)
 */

// Package script builds machine transition rules from Starlark sources, for
// machines whose transition logic is authored outside the Go program.
//
// A rule script declares a function
//
//	def delta(state, input):
//	    ...
//
// which returns the next state as a string, or None to signal that no
// transition is defined for the pair (the machine reports this as an
// IllegalTransitionError). Any evaluation failure inside the script is a
// rule fault, which the machine classifies as a TransitionFunctionError.
package script

import (
	"fmt"
	"os"
	"path/filepath"

	log "github.com/massenz/slf4go/logging"
	"go.starlark.net/starlark"

	"github.com/massenz/go-lazyfsm/fsm"
)

// RuleFunction is the name the script must bind its transition function to.
const RuleFunction = "delta"

var (
	MissingRuleFunctionError = "rule script %s does not define a %s(state, input) function"
	NotCallableRuleError     = "%s in rule script %s is not a function"

	Logger = log.NewLog("script")
)

// NewRule evaluates the Starlark source and adapts its delta function into
// a TransitionFunc over string states and tokens.
//
// The module's globals are frozen once evaluated, so the returned rule is
// safe for concurrent runs against the same machine.
func NewRule(name string, src []byte) (fsm.TransitionFunc[string, string], error) {
	thread := &starlark.Thread{Name: name}
	globals, err := starlark.ExecFile(thread, name, src, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot evaluate rule script %s: %w", name, err)
	}
	value, found := globals[RuleFunction]
	if !found {
		return nil, fmt.Errorf(MissingRuleFunctionError, name, RuleFunction)
	}
	delta, callable := value.(starlark.Callable)
	if !callable {
		return nil, fmt.Errorf(NotCallableRuleError, RuleFunction, name)
	}
	Logger.Debug("compiled transition rule %s from script %s", delta.Name(), name)
	return func(current string, input string) (string, error) {
		t := &starlark.Thread{Name: name}
		result, err := starlark.Call(t, delta,
			starlark.Tuple{starlark.String(current), starlark.String(input)}, nil)
		if err != nil {
			// A script fault; the machine will classify it.
			return "", err
		}
		switch next := result.(type) {
		case starlark.NoneType:
			return "", fmt.Errorf("%w: from %s with input %s",
				fsm.IllegalTransitionError, current, input)
		case starlark.String:
			return string(next), nil
		default:
			return "", fmt.Errorf("rule script %s returned %s (%s), expected a state or None",
				name, next.String(), next.Type())
		}
	}, nil
}

// LoadRuleFile reads and compiles a rule script from `path`.
func LoadRuleFile(path string) (fsm.TransitionFunc[string, string], error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewRule(filepath.Base(path), src)
}
