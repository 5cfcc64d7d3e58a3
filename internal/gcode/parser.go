package gcode

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/piwi3910/fluxholes/internal/model"
)

// MoveType classifies a parsed toolpath movement.
type MoveType int

const (
	MoveRapid   MoveType = iota // G0 in XY
	MoveFeed                    // G1 in XY
	MovePlunge                  // Z decreasing without XY travel
	MoveRetract                 // Z increasing without XY travel
	MoveArc                     // G2 or G3
)

// Move is a single parsed movement with absolute endpoints.
type Move struct {
	Type     MoveType
	From     [3]float64
	To       [3]float64
	Center   [2]float64 // Arc centre, only for MoveArc
	CW       bool       // Arc direction, only for MoveArc
	FeedRate float64
}

// Length returns the distance travelled by m.
func (m Move) Length() float64 {
	if m.Type != MoveArc {
		dx, dy, dz := m.To[0]-m.From[0], m.To[1]-m.From[1], m.To[2]-m.From[2]
		return math.Sqrt(dx*dx + dy*dy + dz*dz)
	}
	r := math.Hypot(m.From[0]-m.Center[0], m.From[1]-m.Center[1])
	a0 := math.Atan2(m.From[1]-m.Center[1], m.From[0]-m.Center[0])
	a1 := math.Atan2(m.To[1]-m.Center[1], m.To[0]-m.Center[0])
	sweep := a1 - a0
	if m.CW {
		sweep = -sweep
	}
	for sweep <= 1e-12 {
		sweep += 2 * math.Pi
	}
	return r * sweep
}

var wordRe = regexp.MustCompile(`([XYZFIJ])(-?\d+\.?\d*)`)

// Parse reads G0/G1/G2/G3 commands in absolute mode. Other lines and
// comments (";" to end of line or parenthesised) are ignored.
func Parse(code string) []Move {
	var moves []Move
	var cur [3]float64
	feed := 0.0

	for _, line := range strings.Split(code, "\n") {
		if idx := strings.Index(line, ";"); idx >= 0 {
			line = line[:idx]
		}
		if idx := strings.Index(line, "("); idx >= 0 {
			if end := strings.Index(line, ")"); end > idx {
				line = line[:idx] + line[end+1:]
			}
		}
		line = strings.ToUpper(strings.TrimSpace(line))
		if line == "" {
			continue
		}

		cmd, _, _ := strings.Cut(line, " ")
		var rapid, arc, cw bool
		switch cmd {
		case "G0", "G00":
			rapid = true
		case "G1", "G01":
		case "G2", "G02":
			arc, cw = true, true
		case "G3", "G03":
			arc = true
		default:
			continue
		}

		next := cur
		var i, j float64
		for _, m := range wordRe.FindAllStringSubmatch(line, -1) {
			v, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				continue
			}
			switch m[1] {
			case "X":
				next[0] = v
			case "Y":
				next[1] = v
			case "Z":
				next[2] = v
			case "F":
				feed = v
			case "I":
				i = v
			case "J":
				j = v
			}
		}

		mv := Move{From: cur, To: next, FeedRate: feed}
		if arc {
			mv.Type = MoveArc
			mv.Center = [2]float64{cur[0] + i, cur[1] + j}
			mv.CW = cw
		} else {
			mv.Type = classifyMove(rapid, cur, next)
		}
		moves = append(moves, mv)
		cur = next
	}
	return moves
}

func classifyMove(rapid bool, from, to [3]float64) MoveType {
	dz := to[2] - from[2]
	hasXY := from[0] != to[0] || from[1] != to[1]

	switch {
	case dz > 1e-3 && !hasXY:
		return MoveRetract
	case rapid:
		return MoveRapid
	case dz < -1e-3 && !hasXY:
		return MovePlunge
	default:
		return MoveFeed
	}
}

// Summary totals a parsed program.
type Summary struct {
	Moves         int
	Plunges       int
	Arcs          int
	RapidDistance float64
	CutDistance   float64 // Feed, plunge and arc moves
	Minutes       float64 // Estimated machining time
}

// Summarize totals moves and estimates machining time, using the feed rate
// of each cutting move and RapidRate for rapids and retracts.
func Summarize(moves []Move, s model.MachineSettings) Summary {
	sum := Summary{Moves: len(moves)}
	for _, m := range moves {
		l := m.Length()
		switch m.Type {
		case MoveRapid, MoveRetract:
			sum.RapidDistance += l
			if s.RapidRate > 0 {
				sum.Minutes += l / s.RapidRate
			}
			continue
		case MovePlunge:
			sum.Plunges++
		case MoveArc:
			sum.Arcs++
		}
		sum.CutDistance += l
		if m.FeedRate > 0 {
			sum.Minutes += l / m.FeedRate
		}
	}
	return sum
}
