package domain

import "fmt"

type Participant struct {
	Index  int
	Inputs []int64
}

func (p Participant) InputSum() int64 {
	tot := int64(0)
	for _, in := range p.Inputs {
		tot += in
	}
	return tot
}

func (p Participant) validate() error {
	if len(p.Inputs) <= 0 {
		return fmt.Errorf("participant %d: %w", p.Index, ErrNoInputs)
	}
	for _, in := range p.Inputs {
		if in <= 0 {
			return fmt.Errorf("participant %d: %w", p.Index, ErrInvalidInput)
		}
	}
	return nil
}

type Result struct {
	ParticipantIndex int
	Outputs          []int64
	Leftover         int64
}

func (r Result) TotOutputAmount() int64 {
	tot := int64(0)
	for _, o := range r.Outputs {
		tot += o
	}
	return tot
}
