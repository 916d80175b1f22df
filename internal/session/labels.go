package session

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// NotAProblem is the sentinel label meaning a page should not be filed
// under any problem number.
const NotAProblem = -1

// Labels maps a 1-based page number to the ordered list of problem
// numbers assigned to that page. A page either carries positive problem
// numbers or the NotAProblem sentinel, never both.
type Labels map[int][]int

// Add assigns a problem number to a page.
// Adding the sentinel clears any existing numbers for the page.
// Adding a positive number while the sentinel is present is a no-op;
// the sentinel must be removed first.
func (l Labels) Add(page, problem int) {
	if problem == NotAProblem {
		l[page] = []int{NotAProblem}
		return
	}
	if problem <= 0 {
		return
	}
	existing := l[page]
	for _, n := range existing {
		if n == NotAProblem || n == problem {
			return
		}
	}
	l[page] = append(existing, problem)
}

// Remove unassigns a problem number (or the sentinel) from a page.
// Removing the last entry removes the page key entirely.
func (l Labels) Remove(page, problem int) {
	existing, ok := l[page]
	if !ok {
		return
	}
	kept := existing[:0]
	for _, n := range existing {
		if n != problem {
			kept = append(kept, n)
		}
	}
	if len(kept) == 0 {
		delete(l, page)
		return
	}
	l[page] = kept
}

// Pairs expands the assignment into (page, problem) stamping pairs in
// ascending page order, each page's numbers in stored order. Sentinel
// and non-positive entries produce no pairs.
func (l Labels) Pairs() []Pair {
	pages := make([]int, 0, len(l))
	for page := range l {
		pages = append(pages, page)
	}
	sort.Ints(pages)

	var pairs []Pair
	for _, page := range pages {
		for _, problem := range l[page] {
			if problem <= 0 {
				continue
			}
			pairs = append(pairs, Pair{Page: page, Problem: problem})
		}
	}
	return pairs
}

// Clone returns a deep copy. Background tasks snapshot labels at launch
// so later edits by the client cannot change what an in-flight task
// processes.
func (l Labels) Clone() Labels {
	c := make(Labels, len(l))
	for page, problems := range l {
		c[page] = append([]int(nil), problems...)
	}
	return c
}

// Pair is one (page, problem number) stamping unit.
type Pair struct {
	Page    int
	Problem int
}

// MarshalJSON encodes the wire shape: page-number string -> int array.
func (l Labels) MarshalJSON() ([]byte, error) {
	m := make(map[string][]int, len(l))
	for page, problems := range l {
		m[strconv.Itoa(page)] = problems
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes the wire shape and re-applies the assignment
// rules, so a payload carrying both the sentinel and positive numbers
// for one page normalizes to the sentinel alone.
func (l *Labels) UnmarshalJSON(data []byte) error {
	var m map[string][]int
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	out := make(Labels, len(m))
	for key, problems := range m {
		page, err := strconv.Atoi(key)
		if err != nil || page < 1 {
			return fmt.Errorf("invalid page number %q", key)
		}
		for _, problem := range problems {
			out.Add(page, problem)
		}
	}
	*l = out
	return nil
}
