package httpservice

import (
	"net/http"

	"github.com/ark-network/mixer/internal/core/application"
	"github.com/ark-network/mixer/internal/core/domain"
	"github.com/gin-gonic/gin"
)

type handler struct {
	svc application.Service
}

func newHandler(svc application.Service) *handler {
	return &handler{svc}
}

func (h *handler) getInfo(c *gin.Context) {
	info, err := h.svc.GetInfo(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"roundInterval":          info.RoundInterval,
		"feeRate":                info.FeeRate,
		"minAllowedOutputAmount": info.MinAllowedOutputAmount,
		"maxAllowedOutputAmount": info.MaxAllowedOutputAmount,
		"isTaprootAllowed":       info.IsTaprootAllowed,
		"maxTransactionSize":     info.MaxTransactionSize,
		"maxVsizeCredential":     info.MaxVsizeCredential,
	})
}

func (h *handler) getLeftovers(c *gin.Context) {
	leftovers := h.svc.Leftovers()
	total := int64(0)
	for _, l := range leftovers {
		total += l
	}
	c.JSON(http.StatusOK, gin.H{
		"leftovers": leftovers,
		"total":     total,
	})
}

func (h *handler) getLastRound(c *gin.Context) {
	round := h.svc.LastRound()
	if round == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no round run yet"})
		return
	}
	c.JSON(http.StatusOK, toRoundJSON(round))
}

func (h *handler) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type resultJSON struct {
	Participant int     `json:"participant"`
	Inputs      []int64 `json:"inputs"`
	Outputs     []int64 `json:"outputs"`
	Leftover    int64   `json:"leftover"`
}

type roundJSON struct {
	Id            string       `json:"id"`
	Stage         string       `json:"stage"`
	Failed        bool         `json:"failed"`
	FailReason    string       `json:"failReason,omitempty"`
	FeeRate       int64        `json:"feeRate"`
	ChangeFee     int64        `json:"changeFee"`
	SharedOutputs int          `json:"sharedOutputs"`
	Results       []resultJSON `json:"results"`
}

func toRoundJSON(round *domain.Round) roundJSON {
	results := make([]resultJSON, 0, len(round.Results))
	for _, r := range round.Results {
		var inputs []int64
		if r.ParticipantIndex < len(round.Participants) {
			inputs = round.Participants[r.ParticipantIndex].Inputs
		}
		results = append(results, resultJSON{
			Participant: r.ParticipantIndex,
			Inputs:      inputs,
			Outputs:     r.Outputs,
			Leftover:    r.Leftover,
		})
	}

	return roundJSON{
		Id:            round.Id,
		Stage:         round.Stage.Code.String(),
		Failed:        round.IsFailed(),
		FailReason:    round.FailReason,
		FeeRate:       round.FeeRate,
		ChangeFee:     round.ChangeFee,
		SharedOutputs: round.SharedOutputCount(),
		Results:       results,
	}
}
