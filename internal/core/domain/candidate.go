package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Candidate is one possible decomposition of a participant's inputs.
type Candidate struct {
	Outputs   []Output
	Cost      int64
	HasChange bool
}

// NewCandidate sorts the outputs by descending amount.
func NewCandidate(outputs []Output, cost int64, hasChange bool) Candidate {
	sorted := append([]Output{}, outputs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Amount() != sorted[j].Amount() {
			return sorted[i].Amount() > sorted[j].Amount()
		}
		return sorted[i].ScriptType() < sorted[j].ScriptType()
	})
	return Candidate{sorted, cost, hasChange}
}

// Key is the canonical form of the candidate: its ascending
// (amount, script type) pairs.
func (c Candidate) Key() string {
	parts := make([]string, 0, len(c.Outputs))
	for i := len(c.Outputs) - 1; i >= 0; i-- {
		o := c.Outputs[i]
		parts = append(parts, fmt.Sprintf("%d:%d", o.Amount(), o.ScriptType()))
	}
	return strings.Join(parts, ",")
}

func (c Candidate) EffectiveCost() int64 {
	return OutputsEffectiveCost(c.Outputs)
}

func (c Candidate) Vsize() int {
	return OutputsVsize(c.Outputs)
}

func (c Candidate) LargestAmount() int64 {
	if len(c.Outputs) <= 0 {
		return 0
	}
	return c.Outputs[0].Amount()
}

// MixesScriptTypes tells whether at least two script kinds are used.
func (c Candidate) MixesScriptTypes() bool {
	for _, o := range c.Outputs {
		if o.ScriptType() != c.Outputs[0].ScriptType() {
			return true
		}
	}
	return false
}

func (c Candidate) Amounts() []int64 {
	amounts := make([]int64, 0, len(c.Outputs))
	for _, o := range c.Outputs {
		amounts = append(amounts, o.Amount())
	}
	return amounts
}

// CandidateSet keeps candidates unique by Key, in insertion order.
type CandidateSet struct {
	keys       map[string]struct{}
	candidates []Candidate
}

func NewCandidateSet() *CandidateSet {
	return &CandidateSet{make(map[string]struct{}), make([]Candidate, 0)}
}

// Add registers the candidate unless an equivalent one is already there.
func (s *CandidateSet) Add(c Candidate) bool {
	key := c.Key()
	if _, ok := s.keys[key]; ok {
		return false
	}
	s.keys[key] = struct{}{}
	s.candidates = append(s.candidates, c)
	return true
}

func (s *CandidateSet) Len() int {
	return len(s.candidates)
}

func (s *CandidateSet) List() []Candidate {
	return append([]Candidate{}, s.candidates...)
}
