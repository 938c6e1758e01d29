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

package producer

import "testing"

func TestNextSlot(t *testing.T) {
	tests := []struct {
		name string
		pool int
		want []int
	}{
		{"single", 1, []int{0, 0, 0}},
		{"pair", 2, []int{1, 0, 1, 0}},
		{"three", 3, []int{1, 2, 0, 1, 2, 0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cursor := 0
			for i, want := range tt.want {
				cursor = nextSlot(cursor, tt.pool)
				if cursor != want {
					t.Fatalf("step %d: got slot %d, want %d", i, cursor, want)
				}
			}
		})
	}
}

func TestNextSlotOutOfRangeCursorWraps(t *testing.T) {
	if got := nextSlot(9, 3); got != 0 {
		t.Errorf("nextSlot(9, 3) = %d, want 0", got)
	}
}
