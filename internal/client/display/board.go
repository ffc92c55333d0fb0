package display

import (
	"strings"

	"chessrules/internal/core"
)

// RenderBoard prints an ASCII board, coloring pieces and coordinates
func (p *Printer) RenderBoard(asciiBoard string) {
	if !p.color {
		p.Println(asciiBoard)
		return
	}

	lines := strings.Split(asciiBoard, "\n")
	last := len(lines) - 1

	var sb strings.Builder
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		isFileLine := i == 0 || i == last

		for _, char := range line {
			switch {
			case char >= 'a' && char <= 'h' && isFileLine:
				sb.WriteString(Cyan + string(char) + Reset)
			case char >= 'A' && char <= 'Z':
				// White pieces
				sb.WriteString(Blue + string(char) + Reset)
			case char >= 'a' && char <= 'z':
				// Black pieces
				sb.WriteString(Red + string(char) + Reset)
			case char >= '1' && char <= '8':
				sb.WriteString(Cyan + string(char) + Reset)
			default:
				sb.WriteRune(char)
			}
		}
		sb.WriteByte('\n')
	}
	p.Printf("%s", sb.String())
}

// ColorForTurn returns a colored side name
func (p *Printer) ColorForTurn(turn core.Color) string {
	if turn == core.ColorWhite {
		return p.Paint(Blue, turn.Name())
	}
	return p.Paint(Red, turn.Name())
}
