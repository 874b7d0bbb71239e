/*
 * Copyright (c) 2023 AlertAvert.com.  All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Author: Marco Massenzio (marco@alertavert.com)
 */

package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/massenz/go-lazyfsm/fsm"
	"github.com/massenz/go-lazyfsm/script"
)

const (
	exitOk = iota
	// The machine rejected the input sequence; an expected outcome.
	exitRejected
	// A defect in the definition, the rule, or the input tokens.
	exitError
)

// newMachine builds the machine from the YAML definition, using either its
// transition table or, when `ruleFile` is given, a Starlark rule.
func newMachine(configFile string, ruleFile string) (*fsm.Machine[string, string], error) {
	def, err := fsm.LoadDefinitionFile(configFile)
	if err != nil {
		return nil, err
	}
	if ruleFile == "" {
		return def.Compile()
	}
	logger.Debug("using scripted transition rule from %s", ruleFile)
	rule, err := script.LoadRuleFile(ruleFile)
	if err != nil {
		return nil, err
	}
	return def.CompileWith(rule)
}

// tokens returns the input tokens for the run: the command-line arguments,
// or whitespace-separated words from stdin when there are none.
func tokens(args []string) []string {
	if len(args) > 0 {
		return args
	}
	var toks []string
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		toks = append(toks, scanner.Text())
	}
	return toks
}

func run(machine *fsm.Machine[string, string], inputs []string, check bool) int {
	logger.Debug("processing %d input tokens from state %s",
		len(inputs), machine.Initial())
	var final string
	var err error
	if check {
		final, err = machine.ProcessAndCheck(inputs...)
	} else {
		final, err = machine.Process(inputs...)
	}
	if err != nil {
		if errors.Is(err, fsm.IllegalTransitionError) ||
			errors.Is(err, fsm.InvalidFinalStateError) {
			fmt.Fprintln(os.Stderr, "rejected:", err)
			return exitRejected
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		return exitError
	}
	fmt.Println(final)
	return exitOk
}
