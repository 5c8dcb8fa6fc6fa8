package domain

type RoundEvent interface {
	isEvent()
}

func (r RoundStarted) isEvent()           {}
func (r ParticipantsRegistered) isEvent() {}
func (r DecompositionStarted) isEvent()   {}
func (r ParticipantDecomposed) isEvent()  {}
func (r RoundFinalized) isEvent()         {}
func (r RoundFailed) isEvent()            {}

type RoundStarted struct {
	Id        string
	Timestamp int64
}

type ParticipantsRegistered struct {
	Id           string
	Participants []Participant
}

type DecompositionStarted struct {
	Id        string
	FeeRate   int64
	ChangeFee int64
}

type ParticipantDecomposed struct {
	Id     string
	Result Result
}

type RoundFinalized struct {
	Id        string
	Timestamp int64
}

type RoundFailed struct {
	Id        string
	Err       string
	Timestamp int64
}
