/*
 * Copyright (c) 2023 AlertAvert.com.  All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Author: Marco Massenzio (marco@alertavert.com)
 */

package fsm

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	MissingStatesDefinitionError = fmt.Errorf(
		"a definition must declare at least one state")
	EmptyStartingStateDefinitionError = fmt.Errorf(
		"the starting_state must be non-empty")
	MismatchStartingStateDefinitionError = fmt.Errorf(
		"the starting_state must be one of the declared states")
	UndeclaredStateDefinitionError  = "state %s is used in a transition, but never declared"
	UnreachableStateDefinitionError = "state %s is not used in any of the transitions"
)

// Transition is one row of a Definition's transition table.
type Transition struct {
	From  string `yaml:"from"`
	To    string `yaml:"to"`
	Input string `yaml:"input"`
}

// Definition is a declarative machine description over string states and
// tokens, usually loaded from YAML; Compile turns it into a Machine whose
// rule looks transitions up in the table.
//
// This is a convenience for the common, fully-enumerable case; machines
// over richer types, or with computed or unenumerable transition relations,
// are built directly with New.
type Definition struct {
	Name          string       `yaml:"name,omitempty"`
	States        []string     `yaml:"states"`
	StartingState string       `yaml:"starting_state"`
	FinalStates   []string     `yaml:"final_states,omitempty"`
	Alphabet      []string     `yaml:"alphabet,omitempty"`
	Transitions   []Transition `yaml:"transitions"`
}

// LoadDefinition parses a YAML definition. Validation is deferred to
// Compile, since a definition paired with an external rule (CompileWith)
// needs no transition table at all.
func LoadDefinition(contents []byte) (*Definition, error) {
	var d Definition
	if err := yaml.Unmarshal(contents, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// LoadDefinitionFile reads a YAML definition from `path`.
func LoadDefinitionFile(path string) (*Definition, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadDefinition(contents)
}

func (d *Definition) hasState(state string) bool {
	for _, s := range d.States {
		if s == state {
			return true
		}
	}
	return false
}

// CheckValid verifies that the definition declares at least one state, that
// the starting state is one of them, that transitions only mention declared
// states, and that every declared state takes part in at least one
// transition.
func (d *Definition) CheckValid() error {
	if len(d.States) == 0 {
		return MissingStatesDefinitionError
	}
	if d.StartingState == "" {
		return EmptyStartingStateDefinitionError
	}
	if !d.hasState(d.StartingState) {
		return MismatchStartingStateDefinitionError
	}
	for _, t := range d.Transitions {
		if !d.hasState(t.From) {
			return fmt.Errorf(UndeclaredStateDefinitionError, t.From)
		}
		if !d.hasState(t.To) {
			return fmt.Errorf(UndeclaredStateDefinitionError, t.To)
		}
	}
	// TODO: we should actually build the full graph and check it's fully connected.
	for _, s := range d.States {
		found := false
		for _, t := range d.Transitions {
			if s == t.From || s == t.To {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf(UnreachableStateDefinitionError, s)
		}
	}
	return nil
}

type tablePair struct {
	from, input string
}

// Compile validates the definition and builds the machine; (state, token)
// pairs missing from the transition table fail with IllegalTransitionError.
func (d *Definition) Compile() (*Machine[string, string], error) {
	if err := d.CheckValid(); err != nil {
		Logger.Error("invalid machine definition [%s]: %s", d.Name, err)
		return nil, err
	}
	table := make(map[tablePair]string, len(d.Transitions))
	for _, t := range d.Transitions {
		table[tablePair{t.From, t.Input}] = t.To
	}
	return d.CompileWith(func(current string, input string) (string, error) {
		next, found := table[tablePair{current, input}]
		if !found {
			return "", fmt.Errorf("%w: from %s on %s",
				IllegalTransitionError, current, input)
		}
		return next, nil
	})
}

// CompileWith builds the machine using `rule` in place of the definition's
// transition table: the definition only contributes states, starting state,
// accepting states and alphabet. The transition-table checks of CheckValid
// do not apply; New still enforces the construction invariants.
func (d *Definition) CompileWith(rule TransitionFunc[string, string]) (*Machine[string, string], error) {
	cfg := Config[string, string]{
		Transition:  rule,
		Initial:     d.StartingState,
		States:      SetOf(d.States...),
		FinalStates: d.FinalStates,
	}
	if d.Alphabet != nil {
		cfg.Alphabet = SetOf(d.Alphabet...)
	}
	return New(cfg)
}
