package accuracy

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	. "github.com/cricklet/raychess/internal/game"
	. "github.com/cricklet/raychess/internal/helpers"
	"github.com/cricklet/raychess/internal/search"
)

// Epd is one test position: a board plus the moves a good engine should
// (bm) or should not (am) play.
type Epd struct {
	Line       string
	ID         string
	Position   Position
	BestMoves  []Move
	AvoidMoves []Move
}

// Passes reports whether move satisfies the position's bm and am lists.
func (e Epd) Passes(move Move) bool {
	if len(e.BestMoves) > 0 && !FindInSlice(e.BestMoves, func(m Move) bool { return m == move }).HasValue() {
		return false
	}
	if len(e.AvoidMoves) > 0 && FindInSlice(e.AvoidMoves, func(m Move) bool { return m == move }).HasValue() {
		return false
	}
	return true
}

// EpdToFen keeps the four board fields; the clocks are left to default.
func EpdToFen(line string) string {
	fields := strings.Fields(line)
	if len(fields) > 4 {
		fields = fields[:4]
	}
	return strings.Join(fields, " ")
}

// operation returns the value of an epd opcode such as bm or id.
func operation(line string, opcode string) Optional[string] {
	fields := strings.Fields(line)
	if len(fields) <= 4 {
		return Empty[string]()
	}
	// some suites carry a placeholder or the clocks before the operations
	ops := fields[4:]
	for len(ops) > 0 && (ops[0] == "-" || isNumber(ops[0])) {
		ops = ops[1:]
	}
	for _, op := range strings.Split(strings.Join(ops, " "), ";") {
		op = strings.TrimSpace(op)
		if strings.HasPrefix(op, opcode+" ") {
			return Some(strings.TrimSpace(strings.TrimPrefix(op, opcode+" ")))
		}
	}
	return Empty[string]()
}

func movesFromOperation(p *Position, line string, opcode string) ([]Move, Error) {
	value := operation(line, opcode)
	if value.IsEmpty() {
		return []Move{}, NilError
	}

	result := []Move{}
	for _, san := range strings.Fields(strings.ReplaceAll(value.Value(), ",", " ")) {
		move, err := MoveFromSan(p, san)
		if !IsNil(err) {
			return nil, err
		}
		result = append(result, move)
	}
	return result, NilError
}

func ParseEpd(line string) (Epd, Error) {
	p, err := PositionFromFen(EpdToFen(line))
	if !IsNil(err) {
		return Epd{}, err
	}

	bestMoves, err := movesFromOperation(&p, line, "bm")
	if !IsNil(err) {
		return Epd{}, Join(Errorf("bm in %v", line), err)
	}
	avoidMoves, err := movesFromOperation(&p, line, "am")
	if !IsNil(err) {
		return Epd{}, Join(Errorf("am in %v", line), err)
	}
	if len(bestMoves) == 0 && len(avoidMoves) == 0 {
		return Epd{}, Errorf("no bm or am in epd: %v", line)
	}

	return Epd{
		Line:       line,
		ID:         strings.Trim(operation(line, "id").ValueOr(""), `"`),
		Position:   p,
		BestMoves:  bestMoves,
		AvoidMoves: avoidMoves,
	}, NilError
}

// LoadEpd parses one position per non-empty line.
func LoadEpd(r io.Reader) ([]Epd, Error) {
	result := []Epd{}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		epd, err := ParseEpd(line)
		if !IsNil(err) {
			return nil, err
		}
		result = append(result, epd)
	}
	if err := scanner.Err(); err != nil {
		return nil, Wrap(err)
	}
	return result, NilError
}

func isNumber(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

func isFile(c byte) bool { return c >= 'a' && c <= 'h' }
func isRank(c byte) bool { return c >= '1' && c <= '8' }

// MoveFromSan resolves standard algebraic notation (Nf3, exd5, e8=Q,
// O-O) against the legal moves of p.
func MoveFromSan(p *Position, san string) (Move, Error) {
	s := strings.TrimRight(san, "+#!?")
	legal := search.LegalMoves(p)

	if castle := strings.ReplaceAll(s, "0", "O"); castle == "O-O" || castle == "O-O-O" {
		match := FindInSlice(legal, func(m Move) bool {
			return m.IsCastle() && m.SanCastleString() == castle
		})
		if match.IsEmpty() {
			return NullMove, Errorf("%v is not legal in %v", san, p.Fen())
		}
		return match.Value(), NilError
	}

	isCapture := strings.Contains(s, "x")
	s = strings.Replace(s, "x", "", 1)
	s = strings.Replace(s, "=", "", 1)

	promotion := InvalidPiece
	if len(s) > 2 && strings.ContainsAny(s[len(s)-1:], "NBRQ") {
		promotion = PieceTypeFromString(strings.ToLower(s[len(s)-1:]))
		s = s[:len(s)-1]
	}
	if len(s) < 2 {
		return NullMove, Errorf("couldn't parse %v", san)
	}

	target, err := BoardIndexFromString(s[len(s)-2:])
	if !IsNil(err) {
		return NullMove, Join(Errorf("couldn't parse %v", san), err)
	}

	prefix := s[:len(s)-2]
	piece := Pawn
	if len(prefix) > 0 && strings.ContainsAny(prefix[:1], "NBRQK") {
		piece = PieceTypeFromString(strings.ToLower(prefix[:1]))
		prefix = prefix[1:]
	}

	matches := FilterSlice(legal, func(m Move) bool {
		if m.To() != target || m.Piece() != piece || m.Promotion() != promotion {
			return false
		}
		if isCapture && !m.IsCapture() {
			return false
		}
		from := FileRankFromIndex(m.From())
		for i := 0; i < len(prefix); i++ {
			c := prefix[i]
			if isFile(c) && from.File.String() != string(c) {
				return false
			}
			if isRank(c) && from.Rank.String() != string(c) {
				return false
			}
		}
		return true
	})

	if len(matches) == 0 {
		return NullMove, Errorf("%v is not legal in %v", san, p.Fen())
	}
	if len(matches) > 1 {
		return NullMove, Errorf("%v is ambiguous in %v", san, p.Fen())
	}
	return matches[0], NilError
}
