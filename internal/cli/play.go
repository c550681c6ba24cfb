package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"quizplay-service/internal/app"
	"quizplay-service/internal/config"
	"quizplay-service/internal/domain"
	"quizplay-service/internal/infra/memory"
)

const terminalSession = "terminal"

// NewPlayCmd runs one attempt in the terminal over the same engine the server uses.
func NewPlayCmd(configPath *string) *cobra.Command {
	var (
		quizID string
		name   string
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Take a quiz in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return runPlay(cmd.Context(), cfg, cmd.InOrStdin(), cmd.OutOrStdout(), quizID, name)
		},
	}
	cmd.Flags().StringVar(&quizID, "quiz", "", "quiz id to take (prompted when empty)")
	cmd.Flags().StringVar(&name, "name", "player", "display name")
	return cmd
}

func runPlay(ctx context.Context, cfg config.Config, in io.Reader, out io.Writer, quizID, name string) error {
	catalog, err := seedCatalog(ctx, cfg, zap.NewNop())
	if err != nil {
		return err
	}
	service := app.NewService(memory.NewSessionStore(), catalog)
	service.Open(ctx, terminalSession)
	defer service.Leave(ctx, terminalSession)

	identity := domain.Identity{Name: name, Email: name + "@localhost"}
	if err := service.Dispatch(ctx, terminalSession, app.Login{Identity: identity}); err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	if quizID == "" {
		quizID, err = pickQuiz(catalog, scanner, out)
		if err != nil {
			return err
		}
	}
	if err := service.Dispatch(ctx, terminalSession, app.Navigate{Target: app.TakePrefix + quizID}); err != nil {
		return err
	}

	for {
		view := service.Open(ctx, terminalSession)
		switch view.Page {
		case domain.PageResults:
			printResult(out, view.Result)
			return nil
		case domain.PageTaking:
		default:
			return fmt.Errorf("%w: %s", domain.ErrQuizNotFound, quizID)
		}

		printQuestion(out, view.Attempt)
		if !scanner.Scan() {
			fmt.Fprintln(out, "\nInput ended. Attempt discarded.")
			return scanner.Err()
		}
		action, quit, err := parsePlayInput(scanner.Text())
		if err != nil {
			fmt.Fprintln(out, err)
			continue
		}
		if quit {
			fmt.Fprintln(out, "Attempt discarded.")
			return nil
		}
		if action == nil {
			continue
		}
		if err := service.Dispatch(ctx, terminalSession, action); err != nil {
			fmt.Fprintln(out, err)
			continue
		}
		if sel, ok := action.(app.SelectAnswer); ok {
			if fb := service.Open(ctx, terminalSession).Attempt; fb != nil && fb.Feedback != nil {
				printFeedback(out, fb, sel.Index)
			}
		}
	}
}

func pickQuiz(catalog *app.Catalog, scanner *bufio.Scanner, out io.Writer) (string, error) {
	quizzes := catalog.List(nil)
	if len(quizzes) == 0 {
		return "", fmt.Errorf("catalog is empty")
	}
	for i, q := range quizzes {
		fmt.Fprintf(out, "%2d) %s (%d questions)\n", i+1, q.Title, len(q.Questions))
	}
	for {
		fmt.Fprint(out, "Pick a quiz: ")
		if !scanner.Scan() {
			return "", io.ErrUnexpectedEOF
		}
		n, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
		if err != nil || n < 1 || n > len(quizzes) {
			fmt.Fprintf(out, "enter a number between 1 and %d\n", len(quizzes))
			continue
		}
		return quizzes[n-1].ID, nil
	}
}

// parsePlayInput maps a line to an action: a letter selects an option,
// n/p move, "j N" jumps to question N, q quits.
func parsePlayInput(line string) (app.Action, bool, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return nil, false, nil
	}
	switch fields[0] {
	case "q", "quit":
		return nil, true, nil
	case "n", "next":
		return app.Advance{}, false, nil
	case "p", "prev", "previous":
		return app.Retreat{}, false, nil
	case "j", "jump":
		if len(fields) != 2 {
			return nil, false, fmt.Errorf("usage: j <question number>")
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, false, fmt.Errorf("usage: j <question number>")
		}
		return app.JumpTo{Index: n - 1}, false, nil
	}
	if len(fields[0]) == 1 && fields[0][0] >= 'a' && fields[0][0] <= 'z' {
		return app.SelectAnswer{Index: int(fields[0][0] - 'a')}, false, nil
	}
	return nil, false, fmt.Errorf("unknown input %q", line)
}

func printQuestion(out io.Writer, a *app.AttemptView) {
	if a == nil {
		return
	}
	fmt.Fprintf(out, "\n%s  [%d/%d]  %ds\n", a.Title, a.Number, a.Total, a.Elapsed)
	fmt.Fprintf(out, "Q%d: %s\n", a.Number, a.Question.Prompt)
	for i, opt := range a.Question.Options {
		marker := "  "
		if i == a.Selected {
			marker = "> "
		}
		fmt.Fprintf(out, "%s%c) %s\n", marker, 'A'+i, opt)
	}
	fmt.Fprintln(out, "Answer with a letter, n next, p previous, j N jump, q quit.")
}

func printFeedback(out io.Writer, a *app.AttemptView, index int) {
	if a.Feedback.Correct {
		fmt.Fprintf(out, "%c is correct!\n", 'A'+index)
		return
	}
	fmt.Fprintf(out, "%c is incorrect.\n", 'A'+index)
}

func printResult(out io.Writer, r *app.ResultView) {
	if r == nil {
		return
	}
	fmt.Fprintf(out, "\n%s: %d/%d (%d%%) %s, time %s\n", r.Title, r.Score, r.TotalQuestions, r.Percentage, r.Tier, r.TimeLabel)
	for _, item := range r.Items {
		mark := "x"
		if item.IsCorrect {
			mark = "✓"
		}
		answer := "unanswered"
		if item.SelectedAnswer != domain.Unanswered {
			answer = item.Options[item.SelectedAnswer]
		}
		fmt.Fprintf(out, " %s %d. %s: %s (correct: %s)\n", mark, item.Number, item.Prompt, answer, item.Options[item.CorrectAnswer])
	}
}
