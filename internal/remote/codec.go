// Package remote carries stepper calls over a websocket using a fixed
// little-endian binary layout.
//
// Request (24 bytes):  wp1x wp1y velx vely throttle steering (float32)
// Reply   (21 bytes):  wp1x wp1y velx vely rotation (float32), done (uint8)
package remote

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/obsview/internal/dynamo"
)

const (
	RequestSize = 6 * 4
	ReplySize   = 5*4 + 1
)

var (
	// ErrShortReply is returned for a reply that is not ReplySize bytes.
	ErrShortReply = errors.New("remote: short reply")

	// ErrBadRequest is returned for a request that is not RequestSize bytes.
	ErrBadRequest = errors.New("remote: malformed request")
)

func putF32(b []byte, v float64) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(float32(v)))
}

func getF32(b []byte) float64 {
	return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
}

func putObs(b []byte, obs dynamo.Observation) {
	putF32(b[0:], obs.Wp1X)
	putF32(b[4:], obs.Wp1Y)
	putF32(b[8:], obs.VelX)
	putF32(b[12:], obs.VelY)
}

func getObs(b []byte) dynamo.Observation {
	return dynamo.Observation{
		Wp1X: getF32(b[0:]),
		Wp1Y: getF32(b[4:]),
		VelX: getF32(b[8:]),
		VelY: getF32(b[12:]),
	}
}

func EncodeRequest(obs dynamo.Observation, a dynamo.Action) []byte {
	b := make([]byte, RequestSize)
	putObs(b, obs)
	putF32(b[16:], a.Throttle)
	putF32(b[20:], a.Steering)
	return b
}

func DecodeRequest(b []byte) (dynamo.Observation, dynamo.Action, error) {
	if len(b) != RequestSize {
		return dynamo.Observation{}, dynamo.Action{}, fmt.Errorf("%w: %d bytes", ErrBadRequest, len(b))
	}
	a := dynamo.Action{Throttle: getF32(b[16:]), Steering: getF32(b[20:])}
	return getObs(b), a, nil
}

func EncodeReply(obs dynamo.Observation, rotation float64, done bool) []byte {
	b := make([]byte, ReplySize)
	putObs(b, obs)
	putF32(b[16:], rotation)
	if done {
		b[20] = 1
	}
	return b
}

func DecodeReply(b []byte) (dynamo.Observation, float64, bool, error) {
	if len(b) != ReplySize {
		return dynamo.Observation{}, 0, false, fmt.Errorf("%w: %d bytes", ErrShortReply, len(b))
	}
	return getObs(b), getF32(b[16:]), b[20] != 0, nil
}
