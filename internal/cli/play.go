package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/robalobadob/cowsbulls/internal/game"
)

const hint = "Hint: Bulls = correct digit in correct position. Cows = correct digit wrong position."

var (
	errorText   = color.New(color.FgRed)
	warnText    = color.New(color.FgYellow)
	successText = color.New(color.FgGreen, color.Bold)
	headerText  = color.New(color.FgCyan, color.Bold)
)

// PlayCmd returns the play command
func PlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a two-player game in this terminal",
		Long: `Play Cows & Bulls hot-seat: both players share this terminal.

Each player enters a secret of 4 unique digits (hidden while typing when
stdin is a terminal; leave blank for a random one). Players then take turns
guessing the other's secret until one gets 4 bulls.

During play:
  :history   show both players' guesses
  :reset     start over with new secrets
  :quit      leave the game`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPlayer(cmd.InOrStdin(), cmd.OutOrStdout())
			if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
				fd := int(f.Fd())
				p.readSecret = func() (string, error) {
					b, err := term.ReadPassword(fd)
					fmt.Fprintln(p.out)
					return string(b), err
				}
			}
			return p.run()
		},
	}
	return cmd
}

// errQuit ends the session without an error.
var errQuit = errors.New("quit")

// player drives a hot-seat game over a line-oriented reader and writer.
type player struct {
	in         *bufio.Reader
	out        io.Writer
	readSecret func() (string, error)
}

func newPlayer(in io.Reader, out io.Writer) *player {
	p := &player{in: bufio.NewReader(in), out: out}
	p.readSecret = p.readLine
	return p
}

// readLine returns the next trimmed line; io.EOF once input is exhausted.
func (p *player) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// run plays games until the players quit or input ends.
func (p *player) run() error {
	headerText.Fprintln(p.out, "Cows & Bulls - Two Player")
	e := game.New()
	for {
		err := p.playOnce(e)
		if errors.Is(err, errQuit) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		e.Reset()
	}
}

// playOnce runs one game from secret entry to the restart prompt.
func (p *player) playOnce(e *game.Engine) error {
	for _, slot := range []game.Slot{game.Player1, game.Player2} {
		if err := p.setupSecret(e, slot); err != nil {
			return err
		}
	}
	if e.SecretsIdentical() {
		warnText.Fprintln(p.out, "Both secrets are identical - consider using different secrets.")
	}
	if err := e.Start(); err != nil {
		return err
	}
	fmt.Fprintln(p.out, hint)

	for e.Phase() == game.InPlay {
		turn := e.Turn()
		fmt.Fprintf(p.out, "Player %d enter 4-digit guess: ", int(turn))
		line, err := p.readLine()
		if err != nil {
			return err
		}
		switch line {
		case ":quit", ":q":
			return errQuit
		case ":history":
			p.printHistory(e)
			continue
		case ":reset":
			warnText.Fprintln(p.out, "Game reset.")
			return nil
		}

		out, err := e.SubmitGuess(turn, line)
		if errors.Is(err, game.ErrValidation) {
			warnText.Fprintln(p.out, "Enter a 4-digit numeric guess.")
			continue
		}
		if err != nil {
			return err
		}
		if out.IsWin {
			successText.Fprintf(p.out, "Player %d guessed it right and wins!\n", int(turn))
			break
		}
		fmt.Fprintf(p.out, "Wrong guess! %s\n", out.Feedback)
	}

	p.printHistory(e)
	for _, slot := range []game.Slot{game.Player1, game.Player2} {
		sec, _ := e.SecretOf(slot)
		fmt.Fprintf(p.out, "Player %d secret was %s\n", int(slot), sec)
	}
	return p.askRestart()
}

// setupSecret prompts slot for a secret until a valid one is entered.
func (p *player) setupSecret(e *game.Engine, slot game.Slot) error {
	for {
		fmt.Fprintf(p.out, "Player %d secret (4 unique digits, blank for random): ", int(slot))
		raw, err := p.readSecret()
		if err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == ":quit" || raw == ":q" {
			return errQuit
		}
		if raw == "" {
			raw = string(game.RandomSecret())
			fmt.Fprintf(p.out, "Player %d random secret: %s (memorize it)\n", int(slot), raw)
		}
		if err := e.SetSecret(slot, raw); err != nil {
			errorText.Fprintf(p.out, "Player %d secret must be 4 unique digits (0-9).\n", int(slot))
			continue
		}
		successText.Fprintf(p.out, "Player %d secret set.\n", int(slot))
		return nil
	}
}

func (p *player) printHistory(e *game.Engine) {
	headerText.Fprintln(p.out, "Guess History")
	for _, slot := range []game.Slot{game.Player1, game.Player2} {
		fmt.Fprintf(p.out, "Player %d guesses (%d):\n", int(slot), e.GuessCount(slot))
		h := e.History(slot)
		if len(h) == 0 {
			fmt.Fprintln(p.out, "- No guesses yet.")
		}
		for _, entry := range h {
			fmt.Fprintf(p.out, "- %s -> %s\n", entry.Guess, entry.Feedback)
		}
	}
}

func (p *player) askRestart() error {
	for {
		fmt.Fprint(p.out, "Play again? [r]estart / [q]uit: ")
		line, err := p.readLine()
		if err != nil {
			return err
		}
		switch strings.ToLower(line) {
		case "r", "restart":
			return nil
		case "q", "quit":
			return errQuit
		}
	}
}
