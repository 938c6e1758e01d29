/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package partition maps message keys to application-level partition ids.
//
// Partition ids are 1-based and are interpreted by the broker only; the
// producer never uses them to pick a connection.
package partition

import (
	"fmt"
	"hash/fnv"
	"math"
)

// Select returns the partition for key in [1, total].
// The hash is FNV-1a (64-bit), so the result is stable across calls and
// processes. total must be in [1, math.MaxInt32] so every id fits the
// int32 wire field; Select panics otherwise.
func Select(key string, total int) int32 {
	if total <= 0 || int64(total) > math.MaxInt32 {
		panic(fmt.Sprintf("partition: total partitions must be in [1, %d], got %d", math.MaxInt32, total))
	}

	h := fnv.New64a()
	h.Write([]byte(key))

	//nolint:gosec // total <= MaxInt32 bounds the result
	return int32(h.Sum64()%uint64(total)) + 1
}

// LCG constants.
const (
	lcgA uint32 = 1664525
	lcgC uint32 = 1013904223
	lcgM uint32 = 1 << 31
)

// SimpleRandom advances seed one linear congruential step and returns a
// value in [0, poolSize). It panics if poolSize is 0.
func SimpleRandom(seed, poolSize uint32) uint32 {
	if poolSize == 0 {
		panic("partition: pool size must be greater than 0")
	}
	next := (lcgA*seed + lcgC) % lcgM
	return next % poolSize
}
