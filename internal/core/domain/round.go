package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	UndefinedStage RoundStage = iota
	RegistrationStage
	DecompositionStage
)

type RoundStage int

func (s RoundStage) String() string {
	switch s {
	case RegistrationStage:
		return "REGISTRATION_STAGE"
	case DecompositionStage:
		return "DECOMPOSITION_STAGE"
	default:
		return "UNDEFINED_STAGE"
	}
}

type Stage struct {
	Code   RoundStage
	Ended  bool
	Failed bool
}

type Round struct {
	Id                string
	StartingTimestamp int64
	EndingTimestamp   int64
	Stage             Stage
	Participants      []Participant
	Results           []Result
	FeeRate           int64
	ChangeFee         int64
	FailReason        string
	Version           uint
	changes           []RoundEvent
}

func NewRound() *Round {
	return &Round{
		Id:           uuid.New().String(),
		Participants: make([]Participant, 0),
		Results:      make([]Result, 0),
		changes:      make([]RoundEvent, 0),
	}
}

func NewRoundFromEvents(events []RoundEvent) *Round {
	r := &Round{}

	for _, event := range events {
		r.On(event, true)
	}

	r.changes = append([]RoundEvent{}, events...)

	return r
}

func (r *Round) Events() []RoundEvent {
	return r.changes
}

func (r *Round) On(event RoundEvent, replayed bool) {
	switch e := event.(type) {
	case RoundStarted:
		r.Stage.Code = RegistrationStage
		r.Id = e.Id
		r.StartingTimestamp = e.Timestamp
	case ParticipantsRegistered:
		r.Participants = append([]Participant{}, e.Participants...)
	case DecompositionStarted:
		r.Stage.Code = DecompositionStage
		r.FeeRate = e.FeeRate
		r.ChangeFee = e.ChangeFee
	case ParticipantDecomposed:
		r.Results = append(r.Results, e.Result)
	case RoundFinalized:
		r.Stage.Ended = true
		r.EndingTimestamp = e.Timestamp
	case RoundFailed:
		r.Stage.Failed = true
		r.FailReason = e.Err
		r.EndingTimestamp = e.Timestamp
	}

	if replayed {
		r.Version++
	}
}

func (r *Round) StartRegistration() ([]RoundEvent, error) {
	empty := Stage{}
	if r.Stage != empty {
		return nil, fmt.Errorf("not in a valid stage to start participants registration")
	}

	event := RoundStarted{
		Id:        r.Id,
		Timestamp: time.Now().Unix(),
	}
	r.raise(event)

	return []RoundEvent{event}, nil
}

func (r *Round) RegisterParticipants(groups [][]int64) ([]RoundEvent, error) {
	if r.Stage.Code != RegistrationStage || r.IsFailed() {
		return nil, fmt.Errorf("not in a valid stage to register participants")
	}
	if len(groups) <= 0 {
		return nil, fmt.Errorf("missing participants to register")
	}

	participants := make([]Participant, 0, len(groups))
	for i, inputs := range groups {
		p := Participant{Index: i, Inputs: append([]int64{}, inputs...)}
		if err := p.validate(); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}

	event := ParticipantsRegistered{
		Id:           r.Id,
		Participants: participants,
	}
	r.raise(event)

	return []RoundEvent{event}, nil
}

func (r *Round) StartDecomposition(feeRate, changeFee int64) ([]RoundEvent, error) {
	if r.Stage.Code != RegistrationStage || r.IsFailed() {
		return nil, fmt.Errorf("not in a valid stage to start decomposition")
	}
	if len(r.Participants) <= 0 {
		return nil, fmt.Errorf("no participants registered")
	}

	event := DecompositionStarted{
		Id:        r.Id,
		FeeRate:   feeRate,
		ChangeFee: changeFee,
	}
	r.raise(event)

	return []RoundEvent{event}, nil
}

func (r *Round) RecordDecomposition(result Result) ([]RoundEvent, error) {
	if r.Stage.Code != DecompositionStage || r.IsFailed() {
		return nil, fmt.Errorf("not in a valid stage to record decompositions")
	}
	if r.Stage.Ended {
		return nil, fmt.Errorf("decomposition already ended")
	}
	if result.ParticipantIndex != len(r.Results) {
		return nil, fmt.Errorf(
			"expected decomposition of participant %d, got %d",
			len(r.Results), result.ParticipantIndex,
		)
	}

	event := ParticipantDecomposed{
		Id:     r.Id,
		Result: result,
	}
	r.raise(event)

	return []RoundEvent{event}, nil
}

func (r *Round) EndDecomposition() ([]RoundEvent, error) {
	if r.Stage.Code != DecompositionStage || r.IsFailed() {
		return nil, fmt.Errorf("not in a valid stage to end decomposition")
	}
	if r.Stage.Ended {
		return nil, fmt.Errorf("decomposition already ended")
	}
	if len(r.Results) != len(r.Participants) {
		return nil, fmt.Errorf(
			"%d participants left to decompose", len(r.Participants)-len(r.Results),
		)
	}

	event := RoundFinalized{
		Id:        r.Id,
		Timestamp: time.Now().Unix(),
	}
	r.raise(event)

	return []RoundEvent{event}, nil
}

func (r *Round) Fail(err error) []RoundEvent {
	if r.Stage.Failed {
		return nil
	}
	event := RoundFailed{
		Id:        r.Id,
		Err:       err.Error(),
		Timestamp: time.Now().Unix(),
	}
	r.raise(event)

	return []RoundEvent{event}
}

func (r *Round) IsStarted() bool {
	empty := Stage{}
	return !r.IsFailed() && (r.Stage != empty && !r.IsEnded())
}

func (r *Round) IsEnded() bool {
	return !r.IsFailed() && (r.Stage.Code == DecompositionStage && r.Stage.Ended)
}

func (r *Round) IsFailed() bool {
	return r.Stage.Failed
}

// Leftovers returns the unallocated amount of every decomposed participant.
func (r *Round) Leftovers() []int64 {
	leftovers := make([]int64, 0, len(r.Results))
	for _, res := range r.Results {
		leftovers = append(leftovers, res.Leftover)
	}
	return leftovers
}

func (r *Round) TotInputAmount() int64 {
	tot := int64(0)
	for _, p := range r.Participants {
		tot += p.InputSum()
	}
	return tot
}

func (r *Round) TotOutputAmount() int64 {
	tot := int64(0)
	for _, res := range r.Results {
		tot += res.TotOutputAmount()
	}
	return tot
}

// SharedOutputCount counts the output values produced by at least two
// different participants.
func (r *Round) SharedOutputCount() int {
	owners := make(map[int64]map[int]struct{})
	for _, res := range r.Results {
		for _, amount := range res.Outputs {
			if _, ok := owners[amount]; !ok {
				owners[amount] = make(map[int]struct{})
			}
			owners[amount][res.ParticipantIndex] = struct{}{}
		}
	}

	count := 0
	for _, o := range owners {
		if len(o) > 1 {
			count++
		}
	}
	return count
}

func (r *Round) raise(event RoundEvent) {
	if r.changes == nil {
		r.changes = make([]RoundEvent, 0)
	}
	r.changes = append(r.changes, event)
	r.On(event, false)
}
