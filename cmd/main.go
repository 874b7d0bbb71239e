/*
 * Copyright (c) 2023 AlertAvert.com.  All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Author: Marco Massenzio (marco@alertavert.com)
 */

// lazyfsm drives a machine definition over a sequence of input tokens and
// prints the state it ends in.
//
//	lazyfsm -config turnstile.yaml coin push coin
//
// Tokens are taken from the command line, or read from stdin when none are
// given. The exit code distinguishes an input sequence the machine rejected
// (1) from a defect in the definition, the rule or the tokens (2).
package main

import (
	"flag"
	"fmt"
	"os"

	log "github.com/massenz/slf4go/logging"

	"github.com/massenz/go-lazyfsm/fsm"
	"github.com/massenz/go-lazyfsm/script"
)

var (
	// Release is set by the Makefile at build time
	Release string

	logger = log.NewLog("lazyfsm")
)

func main() {
	var check = flag.Bool("check", false,
		"If set, the final state is additionally required to be an accepting state")
	var configFile = flag.String("config", "",
		"Path to the YAML machine definition (required)")
	var debug = flag.Bool("debug", false, "Verbose logs")
	var ruleFile = flag.String("rule", "",
		"(optional) Path to a Starlark script whose delta(state, input) function "+
			"replaces the definition's transition table")
	var trace = flag.Bool("trace", false,
		"Extremely verbose logs, including every processing step "+
			"(will override the -debug option)")
	flag.Parse()

	if *configFile == "" && flag.NArg() == 0 {
		// Nothing to do, print the version and exit
		fmt.Println("lazyfsm Rel.", Release)
		os.Exit(exitOk)
	}
	setLogLevel(*debug, *trace)

	if *configFile == "" {
		logger.Error("no machine definition given (use -config)")
		os.Exit(exitError)
	}
	machine, err := newMachine(*configFile, *ruleFile)
	if err != nil {
		logger.Error("cannot build the machine: %s", err)
		os.Exit(exitError)
	}
	os.Exit(run(machine, tokens(flag.Args()), *check))
}

// setLogLevel sets the loggers' level depending on -debug / -trace.
// If both are set, then -trace takes priority.
func setLogLevel(debug bool, trace bool) {
	level := log.LogLevel(log.INFO)
	if debug && !trace {
		level = log.DEBUG
	} else if trace {
		level = log.TRACE
	}
	logger.Level = level
	fsm.Logger.Level = level
	script.Logger.Level = level
}
