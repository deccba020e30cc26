package sgf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"termhex/hex"
)

var ErrMalformed = errors.New("malformed sgf")

// GameInfo holds metadata parsed from an SGF file header.
type GameInfo struct {
	FilePath    string
	FileName    string
	ID          string
	BoardSize   int
	PlayerBlack string
	PlayerWhite string
	Date        string
	Result      string
	MoveCount   int
}

// Mode infers who played which seat from the player names.
func (g GameInfo) Mode() hex.Mode {
	switch {
	case g.PlayerWhite == NameBot:
		return hex.HumanVsBot
	case g.PlayerBlack == NameBot:
		return hex.BotVsHuman
	}
	return hex.HumanVsHuman
}

// Winner returns the player named in the result, or Empty.
func (g GameInfo) Winner() hex.Owner {
	switch {
	case strings.HasPrefix(g.Result, "B+"):
		return hex.Player1
	case strings.HasPrefix(g.Result, "W+"):
		return hex.Player2
	}
	return hex.Empty
}

// ParseHeader reads an SGF file and extracts metadata from the root node.
func ParseHeader(filePath string) (*GameInfo, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return parseInfo(filePath, string(data))
}

func parseInfo(filePath, content string) (*GameInfo, error) {
	props := parseProperties(content)

	if gm, ok := props["GM"]; ok && gm != "11" {
		return nil, fmt.Errorf("%w: GM[%s] is not a Hex record", ErrMalformed, gm)
	}

	boardSize := 11 // the FF[4] default for Hex
	if v, ok := props["SZ"]; ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 2 || n > hex.MaxBoardSize {
			return nil, fmt.Errorf("%w: SZ[%s]", ErrMalformed, v)
		}
		boardSize = n
	}

	return &GameInfo{
		FilePath:    filePath,
		FileName:    filepath.Base(filePath),
		ID:          props["GN"],
		BoardSize:   boardSize,
		PlayerBlack: props["PB"],
		PlayerWhite: props["PW"],
		Date:        props["DT"],
		Result:      props["RE"],
		MoveCount:   len(moveValues(content)),
	}, nil
}

// ParseMoves reads the move sequence of an SGF file.
func ParseMoves(filePath string) ([]hex.Move, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	info, err := parseInfo(filePath, string(data))
	if err != nil {
		return nil, err
	}
	return parseMoves(string(data), info.BoardSize)
}

func parseMoves(content string, size int) ([]hex.Move, error) {
	values := moveValues(content)
	moves := make([]hex.Move, 0, len(values))
	for i, v := range values {
		if v == swapValue {
			moves = append(moves, hex.Move{Swap: true})
			continue
		}
		c, err := parseCellName(v, size)
		if err != nil {
			return nil, fmt.Errorf("%w: move %d: %w", ErrMalformed, i+1, err)
		}
		moves = append(moves, hex.Move{Coord: c})
	}
	return moves, nil
}

// Load replays an SGF file onto a fresh session. The session has no bot;
// callers that resume play against one replay the moves themselves.
func Load(filePath string) (*GameInfo, *hex.Session, error) {
	info, err := ParseHeader(filePath)
	if err != nil {
		return nil, nil, err
	}
	moves, err := ParseMoves(filePath)
	if err != nil {
		return nil, nil, err
	}
	s, err := hex.NewSession(info.BoardSize, hex.HumanVsHuman)
	if err != nil {
		return nil, nil, err
	}
	if err := s.Replay(moves); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return info, s, nil
}

// parseCellName converts a cell name like "c3" to a coordinate.
func parseCellName(v string, size int) (hex.Coord, error) {
	if len(v) < 2 {
		return hex.Coord{}, fmt.Errorf("invalid cell %q", v)
	}
	col := int(v[0]) - 'a'
	row, err := strconv.Atoi(v[1:])
	if err != nil || col < 0 || col >= size || row < 1 || row > size {
		return hex.Coord{}, fmt.Errorf("invalid cell %q", v)
	}
	return hex.Coord{Row: row - 1, Col: col}, nil
}

// parseProperties extracts KEY[value] pairs from the root node of an SGF string.
func parseProperties(content string) map[string]string {
	props := make(map[string]string)

	// Find the root node: starts after "(;"
	start := strings.Index(content, "(;")
	if start == -1 {
		return props
	}
	start += 2

	// Root node ends at the next ";" or ")" outside a value
	end := len(content)
	for i := start; i < len(content); i++ {
		if content[i] == '[' {
			i = skipValue(content, i)
			continue
		}
		if content[i] == ';' || content[i] == ')' {
			end = i
			break
		}
	}

	extractProps(content[start:end], func(key, val string) {
		props[key] = val // last value wins for simple props
	})
	return props
}

// extractProps calls fn for every KEY[value] pair of a node string.
func extractProps(node string, fn func(key, val string)) {
	i := 0
	for i < len(node) {
		for i < len(node) && strings.ContainsRune(" \n\r\t", rune(node[i])) {
			i++
		}
		if i >= len(node) {
			break
		}

		// Read property identifier (uppercase letters)
		keyStart := i
		for i < len(node) && node[i] >= 'A' && node[i] <= 'Z' {
			i++
		}
		if i == keyStart {
			i++
			continue
		}
		key := node[keyStart:i]

		// Read all property values (e.g., AB[a1][b2])
		for i < len(node) && node[i] == '[' {
			end := skipValue(node, i)
			val := strings.ReplaceAll(node[i+1:min(end, len(node))], `\]`, "]")
			fn(key, val)
			i = end + 1
		}
	}
}

// skipValue returns the index of the "]" closing the value opened at i.
func skipValue(s string, i int) int {
	i++
	for i < len(s) && s[i] != ']' {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		i++
	}
	return i
}

// moveValues returns the B and W values of every node after the root, in order.
func moveValues(content string) []string {
	var values []string
	for _, node := range parseNodes(content) {
		extractProps(strings.TrimPrefix(node, ";"), func(key, val string) {
			if key == "B" || key == "W" {
				values = append(values, strings.ToLower(strings.TrimSpace(val)))
			}
		})
	}
	return values
}

// parseNodes returns all node strings after the root node.
func parseNodes(content string) []string {
	var nodes []string

	start := strings.Index(content, "(;")
	if start == -1 {
		return nodes
	}

	// Skip root node to find subsequent ";"
	i := start + 2
	for i < len(content) && content[i] != ';' {
		if content[i] == '[' {
			i = skipValue(content, i)
		}
		i++
	}

	for i < len(content) {
		if content[i] != ';' {
			i++
			continue
		}
		nodeStart := i
		i++
		for i < len(content) && content[i] != ';' && content[i] != ')' {
			if content[i] == '[' {
				i = skipValue(content, i)
			}
			i++
		}
		nodes = append(nodes, content[nodeStart:min(i, len(content))])
	}

	return nodes
}

// ListGames scans a directory for .sgf files and returns their parsed headers,
// sorted newest-first (by filename, which contains timestamps).
func ListGames(dir string) ([]GameInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read history dir: %w", err)
	}

	var games []GameInfo
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sgf") {
			continue
		}
		info, err := ParseHeader(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		games = append(games, *info)
	}

	return games, nil
}
