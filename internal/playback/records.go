// Package playback loads and writes the line-delimited playback record and
// manifest formats.
package playback

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/san-kum/obsview/internal/dynamo"
	"go.uber.org/zap"
)

// FieldsPerRow is the column count of a playback row:
// wp1x, wp1y, velx, vely, throttle, steering, angleDelta, done.
const FieldsPerRow = 8

var (
	// ErrEmpty is returned when a source holds no usable rows.
	ErrEmpty = errors.New("playback: no records")

	errFieldCount = errors.New("wrong field count")
)

// Records is an ordered, immutable list of frames. Index 0 is the initial
// condition and index i is the state after step i.
type Records []dynamo.Frame

// Initial returns the observation a rollout over r starts from.
func (r Records) Initial() dynamo.Observation {
	if len(r) == 0 {
		return dynamo.Observation{}
	}
	return r[0].Obs
}

// Load fetches id from src and parses it.
func Load(ctx context.Context, src Source, id string, log *zap.Logger) (Records, error) {
	if log == nil {
		log = zap.NewNop()
	}
	data, err := src.Fetch(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load records %s: %w", id, err)
	}
	recs, err := Parse(bytes.NewReader(data), log.With(zap.String("source", id)))
	if err != nil {
		return nil, fmt.Errorf("load records %s: %w", id, err)
	}
	return recs, nil
}

// Parse reads playback rows from r. Rows that do not hold exactly
// FieldsPerRow numeric fields are skipped and logged. Blank lines are
// ignored.
func Parse(r io.Reader, log *zap.Logger) (Records, error) {
	if log == nil {
		log = zap.NewNop()
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	records := make(Records, 0, 256)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				log.Warn("skipping unreadable playback line", zap.Int("line", pe.Line), zap.Error(pe.Err))
				continue
			}
			return nil, err
		}

		line, _ := cr.FieldPos(0)
		frame, err := parseRow(row)
		if err != nil {
			log.Warn("skipping playback line",
				zap.Int("line", line),
				zap.Int("fields", len(row)),
				zap.Error(err))
			continue
		}
		records = append(records, frame)
	}

	if len(records) == 0 {
		return nil, ErrEmpty
	}
	return records, nil
}

func parseRow(row []string) (dynamo.Frame, error) {
	if len(row) != FieldsPerRow {
		return dynamo.Frame{}, errFieldCount
	}

	var vals [FieldsPerRow]float64
	for i, field := range row {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return dynamo.Frame{}, fmt.Errorf("field %d: %w", i, err)
		}
		vals[i] = v
	}

	frame := dynamo.Frame{
		Obs: dynamo.Observation{
			Wp1X: vals[0],
			Wp1Y: vals[1],
			VelX: vals[2],
			VelY: vals[3],
		},
		Action: dynamo.Action{
			Throttle: vals[4],
			Steering: vals[5],
		},
		AngleDelta: vals[6],
	}
	if vals[7] != 0 {
		frame.Done = dynamo.Finished()
	}
	return frame, nil
}

// Write encodes frames in the playback format, one row per frame.
func Write(w io.Writer, frames []dynamo.Frame) error {
	cw := csv.NewWriter(w)
	row := make([]string, FieldsPerRow)
	for _, f := range frames {
		row[0] = formatFloat(f.Obs.Wp1X)
		row[1] = formatFloat(f.Obs.Wp1Y)
		row[2] = formatFloat(f.Obs.VelX)
		row[3] = formatFloat(f.Obs.VelY)
		row[4] = formatFloat(f.Action.Throttle)
		row[5] = formatFloat(f.Action.Steering)
		row[6] = formatFloat(f.AngleDelta)
		row[7] = "0"
		if f.Done.Terminal {
			row[7] = "1"
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
