package core

import "time"

// Request types

type CreateGameRequest struct {
	Name  string `json:"name,omitempty" validate:"omitempty,max=64"`
	White string `json:"white,omitempty" validate:"omitempty,max=32"` // Display name only
	Black string `json:"black,omitempty" validate:"omitempty,max=32"`
	FEN   string `json:"fen,omitempty" validate:"omitempty,max=100"`
}

type MoveRequest struct {
	Move string `json:"move" validate:"required,min=4,max=5"` // UCI form, "e7e8q" for promotion
}

type BoardRequest struct {
	Placement string `json:"placement" validate:"required,min=15,max=71"` // FEN piece placement field
}

type TurnRequest struct {
	Turn string `json:"turn" validate:"required,oneof=w b white black"`
}

type JoinRequest struct {
	Color string `json:"color" validate:"required,oneof=w b white black"`
	Name  string `json:"name" validate:"required,max=32"`
}

// Response types

type GameResponse struct {
	GameID   string    `json:"gameId"`
	Name     string    `json:"name,omitempty"`
	White    string    `json:"white,omitempty"`
	Black    string    `json:"black,omitempty"`
	FEN      string    `json:"fen"`
	Turn     string    `json:"turn"`  // "w" or "b"
	State    string    `json:"state"` // "ongoing", "check", "checkmate", "stalemate"
	Version  int       `json:"version"`
	LastMove *MoveInfo `json:"lastMove,omitempty"`
}

type GameSummary struct {
	GameID    string    `json:"gameId"`
	Name      string    `json:"name,omitempty"`
	White     string    `json:"white,omitempty"`
	Black     string    `json:"black,omitempty"`
	FEN       string    `json:"fen"`
	Turn      string    `json:"turn"`
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type GameListResponse struct {
	Games []GameSummary `json:"games"`
	Count int           `json:"count"`
}

type MoveInfo struct {
	Move        string `json:"move"`
	PlayerColor string `json:"playerColor"` // "w" or "b"
}

type LegalMovesResponse struct {
	Square string   `json:"square"`
	Moves  []string `json:"moves"`
}

type StatusResponse struct {
	Color     string `json:"color"`
	Check     bool   `json:"check"`
	Checkmate bool   `json:"checkmate"`
	Stalemate bool   `json:"stalemate"`
}

type BoardResponse struct {
	Placement string `json:"placement"`
	Board     string `json:"board"` // ASCII representation
}

type TurnResponse struct {
	Turn string `json:"turn"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}
