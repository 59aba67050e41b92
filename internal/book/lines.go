package book

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	. "github.com/cricklet/raychess/internal/game"
	. "github.com/cricklet/raychess/internal/helpers"
	"github.com/cricklet/raychess/internal/search"
)

// LineTree merges opening lines that share a prefix. Each node counts the
// lines that pass through it, which becomes the book weight of its move.
type LineTree struct {
	moves map[string]*LineTree
	count int
}

func LineTreeFromLines(lines [][]string) LineTree {
	result := LineTree{moves: map[string]*LineTree{}}

	for _, line := range lines {
		current := &result
		for _, move := range line {
			next, contains := current.moves[move]
			if !contains {
				next = &LineTree{moves: map[string]*LineTree{}}
				current.moves[move] = next
			}
			next.count++
			current = next
		}
	}

	return result
}

func (tree *LineTree) sortedMoves() []string {
	moves := make([]string, 0, len(tree.moves))
	for move := range tree.moves {
		moves = append(moves, move)
	}
	sort.Strings(moves)
	return moves
}

func (tree *LineTree) String() string {
	contents := []string{}
	for _, move := range tree.sortedMoves() {
		next := tree.moves[move]
		contents = append(contents, fmt.Sprintf("%v(%v): %v", move, next.count, next.String()))
	}
	return fmt.Sprintf("LineTree[%s]", strings.Join(contents, ", "))
}

// Size is the number of moves in the tree.
func (tree *LineTree) Size() int {
	result := 0
	for _, next := range tree.moves {
		result += 1 + next.Size()
	}
	return result
}

// ParseLines reads one line of space separated moves per text line. Blank
// lines and lines starting with # are skipped.
func ParseLines(r io.Reader) ([][]string, Error) {
	result := [][]string{}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		result = append(result, strings.Fields(text))
	}
	if err := scanner.Err(); err != nil {
		return nil, Wrap(err)
	}
	return result, NilError
}

// Write stores every move of the tree, played out from start. onMove is
// called after each stored move.
func (tree *LineTree) Write(store *Store, start Position, onMove func()) Error {
	return tree.write(store, &start, []string{}, onMove)
}

func (tree *LineTree) write(store *Store, p *Position, line []string, onMove func()) Error {
	for _, text := range tree.sortedMoves() {
		next := tree.moves[text]

		move, err := search.MoveFromString(p, text)
		if !IsNil(err) {
			return Join(Errorf("bad line %v", strings.Join(append(line, text), " ")), err)
		}

		err = store.Add(p.Hash(), move.String(), next.count)
		if !IsNil(err) {
			return err
		}
		if onMove != nil {
			onMove()
		}

		child := p.WithMove(move)
		err = next.write(store, &child, append(line, text), onMove)
		if !IsNil(err) {
			return err
		}
	}
	return NilError
}
