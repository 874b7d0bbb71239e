/*
 * Copyright (c) 2023 AlertAvert.com.  All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Author: Marco Massenzio (marco@alertavert.com)
 */

package fsm

// Set is the only capability the machine requires of its state and alphabet
// sets: membership testing. A Set is never enumerated, so the backing domain
// may be conceptually infinite (all non-negative integers, all Unicode code
// points, etc.).
type Set[T comparable] interface {
	Contains(member T) bool
}

// SetFunc adapts a membership predicate into a Set, for domains that cannot
// (or should not) be enumerated.
type SetFunc[T comparable] func(member T) bool

func (f SetFunc[T]) Contains(member T) bool {
	return f(member)
}

type hashSet[T comparable] map[T]struct{}

func (s hashSet[T]) Contains(member T) bool {
	_, found := s[member]
	return found
}

// SetOf returns a map-backed Set holding exactly the given members.
func SetOf[T comparable](members ...T) Set[T] {
	s := make(hashSet[T], len(members))
	for _, m := range members {
		s[m] = struct{}{}
	}
	return s
}
