// Package rules enumerates the squares each piece kind can reach by its
// movement pattern alone. Whether a move exposes the mover's king is decided
// by the game package.
package rules

import (
	"chessrules/internal/board"
	"chessrules/internal/core"
)

type offset struct{ dr, dc int }

var (
	orthogonal = []offset{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	diagonal   = []offset{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	allRays    = append(append([]offset{}, orthogonal...), diagonal...)

	knightJumps = []offset{
		{2, 1}, {2, -1}, {-2, 1}, {-2, -1},
		{1, 2}, {1, -2}, {-1, 2}, {-1, -2},
	}
	kingSteps = allRays
)

// generator appends the geometric moves of the piece standing on from.
type generator func(b *board.Board, from board.Position, piece core.Piece, moves []board.Move) []board.Move

var generators = map[core.Kind]generator{
	core.Rook:   slider(orthogonal),
	core.Bishop: slider(diagonal),
	core.Queen:  slider(allRays),
	core.Knight: stepper(knightJumps),
	core.King:   stepper(kingSteps),
	core.Pawn:   pawnMoves,
}

// Geometry returns every move the occupant of from can make by its pattern,
// ignoring self-check. An empty square yields nil.
func Geometry(b *board.Board, from board.Position) []board.Move {
	piece, ok := b.Get(from)
	if !ok {
		return nil
	}
	gen, ok := generators[piece.Kind]
	if !ok {
		return nil
	}
	return gen(b, from, piece, nil)
}

// Attacks reports whether any piece of color by can geometrically reach
// target on b.
func Attacks(b *board.Board, by core.Color, target board.Position) bool {
	hit := false
	var buf []board.Move
	b.ForEach(func(pos board.Position, piece core.Piece) {
		if hit || piece.Color != by {
			return
		}
		gen, ok := generators[piece.Kind]
		if !ok {
			return
		}
		buf = gen(b, pos, piece, buf[:0])
		for _, m := range buf {
			if m.To == target {
				hit = true
				return
			}
		}
	})
	return hit
}

func slider(dirs []offset) generator {
	return func(b *board.Board, from board.Position, piece core.Piece, moves []board.Move) []board.Move {
		for _, d := range dirs {
			for pos, ok := from.Offset(d.dr, d.dc); ok; pos, ok = pos.Offset(d.dr, d.dc) {
				occupant, occupied := b.Get(pos)
				if occupied && occupant.Color == piece.Color {
					break
				}
				moves = append(moves, board.Move{From: from, To: pos})
				if occupied {
					break
				}
			}
		}
		return moves
	}
}

func stepper(steps []offset) generator {
	return func(b *board.Board, from board.Position, piece core.Piece, moves []board.Move) []board.Move {
		for _, s := range steps {
			pos, ok := from.Offset(s.dr, s.dc)
			if !ok {
				continue
			}
			if occupant, occupied := b.Get(pos); occupied && occupant.Color == piece.Color {
				continue
			}
			moves = append(moves, board.Move{From: from, To: pos})
		}
		return moves
	}
}

func pawnMoves(b *board.Board, from board.Position, piece core.Piece, moves []board.Move) []board.Move {
	dir, home, last := 1, 2, board.Size
	if piece.Color == core.ColorBlack {
		dir, home, last = -1, board.Size-1, 1
	}

	add := func(to board.Position) {
		if to.Row() != last {
			moves = append(moves, board.Move{From: from, To: to})
			return
		}
		for _, k := range core.PromotionKinds {
			moves = append(moves, board.Move{From: from, To: to, Promotion: k})
		}
	}

	if one, ok := from.Offset(dir, 0); ok {
		if _, occupied := b.Get(one); !occupied {
			add(one)
			if from.Row() == home {
				if two, ok := from.Offset(2*dir, 0); ok {
					if _, occupied := b.Get(two); !occupied {
						add(two)
					}
				}
			}
		}
	}

	for _, dc := range []int{-1, 1} {
		to, ok := from.Offset(dir, dc)
		if !ok {
			continue
		}
		if occupant, occupied := b.Get(to); occupied && occupant.Color != piece.Color {
			add(to)
		}
	}
	return moves
}
