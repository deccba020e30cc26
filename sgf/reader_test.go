package sgf

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"termhex/hex"
)

const testSGF = `(;FF[4]GM[11]CA[UTF-8]AP[termhex:1.0]SZ[5]PB[Human]PW[Bot]DT[2026-01-15]RE[W+]GN[3f2a]
;B[c2];W[swap-pieces];B[c3];W[a4])`

func writeTempSGF(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp sgf: %v", err)
	}
	return path
}

func TestParseHeader(t *testing.T) {
	path := writeTempSGF(t, t.TempDir(), "test.sgf", testSGF)

	info, err := ParseHeader(path)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}

	if info.BoardSize != 5 {
		t.Errorf("BoardSize = %d, want 5", info.BoardSize)
	}
	if info.PlayerBlack != "Human" {
		t.Errorf("PlayerBlack = %q, want %q", info.PlayerBlack, "Human")
	}
	if info.PlayerWhite != "Bot" {
		t.Errorf("PlayerWhite = %q, want %q", info.PlayerWhite, "Bot")
	}
	if info.Date != "2026-01-15" {
		t.Errorf("Date = %q, want %q", info.Date, "2026-01-15")
	}
	if info.Result != "W+" {
		t.Errorf("Result = %q, want %q", info.Result, "W+")
	}
	if info.ID != "3f2a" {
		t.Errorf("ID = %q, want %q", info.ID, "3f2a")
	}
	if info.MoveCount != 4 {
		t.Errorf("MoveCount = %d, want 4", info.MoveCount)
	}
	if info.Mode() != hex.HumanVsBot {
		t.Errorf("Mode() = %s, want hb", info.Mode())
	}
	if info.Winner() != hex.Player2 {
		t.Errorf("Winner() = %v, want Player 2", info.Winner())
	}
}

func TestParseHeaderMissingFile(t *testing.T) {
	_, err := ParseHeader("/nonexistent/file.sgf")
	if err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestParseHeaderRejectsOtherGames(t *testing.T) {
	path := writeTempSGF(t, t.TempDir(), "go.sgf", `(;GM[1]FF[4]SZ[19];B[pd])`)
	if _, err := ParseHeader(path); !errors.Is(err, ErrMalformed) {
		t.Errorf("ParseHeader = %v, want ErrMalformed", err)
	}
}

func TestParseHeaderEscapedValue(t *testing.T) {
	path := writeTempSGF(t, t.TempDir(), "esc.sgf", `(;GM[11]SZ[7]PB[x\]y;z]PW[Bot];B[a1])`)
	info, err := ParseHeader(path)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if info.PlayerBlack != "x]y;z" {
		t.Errorf("PlayerBlack = %q, want %q", info.PlayerBlack, "x]y;z")
	}
	if info.PlayerWhite != "Bot" || info.MoveCount != 1 {
		t.Errorf("header after escaped value not parsed: %+v", info)
	}
}

func TestParseMoves(t *testing.T) {
	path := writeTempSGF(t, t.TempDir(), "test.sgf", testSGF)

	moves, err := ParseMoves(path)
	if err != nil {
		t.Fatalf("ParseMoves: %v", err)
	}

	want := []hex.Move{
		{Coord: hex.Coord{Row: 1, Col: 2}},
		{Swap: true},
		{Coord: hex.Coord{Row: 2, Col: 2}},
		{Coord: hex.Coord{Row: 3, Col: 0}},
	}
	if len(moves) != len(want) {
		t.Fatalf("len(moves) = %d, want %d", len(moves), len(want))
	}
	for i := range want {
		if moves[i] != want[i] {
			t.Errorf("moves[%d] = %+v, want %+v", i, moves[i], want[i])
		}
	}
}

func TestParseMovesRejectsBadCell(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{
		"offboard.sgf": `(;GM[11]SZ[5];B[f1])`,
		"row0.sgf":     `(;GM[11]SZ[5];B[a0])`,
		"pass.sgf":     `(;GM[11]SZ[5];B[])`,
	} {
		path := writeTempSGF(t, dir, name, content)
		if _, err := ParseMoves(path); !errors.Is(err, ErrMalformed) {
			t.Errorf("%s: ParseMoves = %v, want ErrMalformed", name, err)
		}
	}
}

func TestLoad(t *testing.T) {
	path := writeTempSGF(t, t.TempDir(), "test.sgf", testSGF)

	info, s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if info.BoardSize != s.Size() {
		t.Errorf("session size = %d, want %d", s.Size(), info.BoardSize)
	}

	// c2 was swapped to b3 for white.
	cells := s.Board().Cells()
	if cells[2][1] != hex.Player2 {
		t.Errorf("cells[2][1] = %v, want Player 2", cells[2][1])
	}
	if cells[1][2] != hex.Empty {
		t.Errorf("cells[1][2] = %v, want Empty", cells[1][2])
	}
	if cells[2][2] != hex.Player1 {
		t.Errorf("cells[2][2] = %v, want Player 1", cells[2][2])
	}
	if cells[3][0] != hex.Player2 {
		t.Errorf("cells[3][0] = %v, want Player 2", cells[3][0])
	}
	if s.CurrentPlayer() != hex.Player1 {
		t.Errorf("CurrentPlayer() = %v, want Player 1", s.CurrentPlayer())
	}
}

func TestLoadRejectsIllegalRecord(t *testing.T) {
	path := writeTempSGF(t, t.TempDir(), "dup.sgf", `(;GM[11]SZ[5];B[a1];W[a1])`)
	if _, _, err := Load(path); !errors.Is(err, ErrMalformed) || !errors.Is(err, hex.ErrIllegalMove) {
		t.Errorf("Load = %v, want ErrMalformed wrapping ErrIllegalMove", err)
	}
}

func TestListGames(t *testing.T) {
	dir := t.TempDir()

	writeTempSGF(t, dir, "2026-01-10_100000_9x9_aaaa.sgf", `(;GM[11]FF[4]SZ[9]PB[Human]PW[Bot]DT[2026-01-10]RE[?])`)
	writeTempSGF(t, dir, "2026-01-11_100000_11x11_bbbb.sgf", `(;GM[11]FF[4]SZ[11]PB[Human]PW[Human]DT[2026-01-11]RE[B+])`)
	writeTempSGF(t, dir, "2026-01-12_100000_13x13_cccc.sgf", `(;GM[11]FF[4]SZ[13]PB[Bot]PW[Human]DT[2026-01-12]RE[W+])`)
	writeTempSGF(t, dir, "2026-01-13_100000_19x19_dddd.sgf", `(;GM[1]FF[4]SZ[19]DT[2026-01-13])`)

	// Also create a non-sgf file to ensure it's skipped
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not an sgf"), 0644)

	games, err := ListGames(dir)
	if err != nil {
		t.Fatalf("ListGames: %v", err)
	}

	if len(games) != 3 {
		t.Fatalf("len(games) = %d, want 3", len(games))
	}

	// Should be newest-first
	for i, want := range []string{"2026-01-12", "2026-01-11", "2026-01-10"} {
		if games[i].Date != want {
			t.Errorf("games[%d].Date = %q, want %s", i, games[i].Date, want)
		}
	}
	if games[0].BoardSize != 13 {
		t.Errorf("games[0].BoardSize = %d, want 13", games[0].BoardSize)
	}
	if games[0].Mode() != hex.BotVsHuman {
		t.Errorf("games[0].Mode() = %s, want bh", games[0].Mode())
	}
}

func TestListGamesEmptyDir(t *testing.T) {
	games, err := ListGames(t.TempDir())
	if err != nil {
		t.Fatalf("ListGames: %v", err)
	}
	if len(games) != 0 {
		t.Errorf("len(games) = %d, want 0", len(games))
	}
}

func TestListGamesNonexistentDir(t *testing.T) {
	games, err := ListGames("/nonexistent/dir")
	if err != nil {
		t.Fatalf("ListGames should not error for nonexistent dir: %v", err)
	}
	if games != nil {
		t.Errorf("games should be nil for nonexistent dir")
	}
}

func TestWriterThenReader(t *testing.T) {
	dir := t.TempDir()

	// Play a short game on a real session
	s, err := hex.NewSession(3, hex.HumanVsHuman)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if err := s.ApplyMove(hex.Coord{Row: 0, Col: 1}, false); err != nil {
		t.Fatalf("ApplyMove: %v", err)
	}
	if err := s.Swap(); err != nil {
		t.Fatalf("Swap: %v", err)
	}
	for _, c := range []hex.Coord{{Row: 0, Col: 2}, {Row: 0, Col: 0}, {Row: 1, Col: 2}, {Row: 2, Col: 0}, {Row: 2, Col: 2}} {
		if err := s.ApplyMove(c, false); err != nil {
			t.Fatalf("ApplyMove %v: %v", c, err)
		}
	}
	if s.Running() {
		t.Fatal("game should be over")
	}

	rec, err := NewGameRecord(dir, 3, hex.HumanVsHuman)
	if err != nil {
		t.Fatalf("NewGameRecord: %v", err)
	}
	if err := rec.Sync(s.Record()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if err := rec.SetResult(s.Winner()); err != nil {
		t.Fatalf("SetResult: %v", err)
	}
	rec.Close()

	info, loaded, err := Load(rec.FilePath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if info.MoveCount != 7 {
		t.Errorf("MoveCount = %d, want 7", info.MoveCount)
	}
	if info.Winner() != s.Winner() {
		t.Errorf("Winner() = %v, want %v", info.Winner(), s.Winner())
	}
	if loaded.Running() || loaded.Winner() != s.Winner() {
		t.Errorf("loaded game: running=%v winner=%v", loaded.Running(), loaded.Winner())
	}
	got, want := loaded.Board().Cells(), s.Board().Cells()
	for r := range want {
		for c := range want[r] {
			if got[r][c] != want[r][c] {
				t.Errorf("cell (%d,%d) = %v, want %v", r, c, got[r][c], want[r][c])
			}
		}
	}
}
