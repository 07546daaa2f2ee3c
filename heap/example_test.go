/*
 * Copyright 2024 CloudWeGo Authors
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

package heap

import "fmt"

func Example() {
	a, ok := NewAllocator()
	if !ok {
		return
	}

	b1 := a.Alloc(100)  // 100 is already ≡4 mod 8, so the block size matches the request exactly
	b2 := a.Alloc(1000) // 1000 isn't; rounds up to 1004

	fmt.Printf("b1: len=%d cap=%d\n", len(b1), cap(b1))
	fmt.Printf("b2: len=%d cap=%d\n", len(b2), cap(b2))

	a.Free(b1)
	a.Free(b2)

	// Output:
	// b1: len=100 cap=100
	// b2: len=1000 cap=1004
}

func ExampleAllocator_Realloc() {
	a, ok := NewAllocator()
	if !ok {
		return
	}

	b := a.Alloc(10)
	copy(b, []byte("hi"))

	b = a.Realloc(b, 4)
	fmt.Printf("shrunk: %s len=%d\n", b[:2], len(b))

	a.Free(b)

	// Output:
	// shrunk: hi len=4
}
