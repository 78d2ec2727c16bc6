package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"surveyflow/internal/engine"
	"surveyflow/internal/model"
	"surveyflow/internal/render"
	"surveyflow/internal/service"
)

var errInputClosed = errors.New("input closed before the survey was submitted")

const takeHelp = `Commands:
  <n>=<answer>  answer question Qn on this page (a bare answer works when the page has one question)
  n, next      next page, or submit on the last page
  b, back      previous page
  q, quit      discard your answers and exit
Choices are typed by number: 2, or 1,3 for several. Matrix rows as row:column, e.g. 1:2;2:3.
`

var takeCmd = &cobra.Command{
	Use:   "take <surveyId>",
	Short: "Take a survey in the terminal",
	Args:  cobra.ExactArgs(1),
	RunE:  runTake,
}

func init() {
	takeCmd.Flags().Int("respondent", 0, "Respondent ID sent with the submission")
}

func runTake(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	surveyID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid survey id %q", args[0])
	}
	respondentID, _ := cmd.Flags().GetInt("respondent")

	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	b, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.Close(context.Background())

	surveySvc := service.NewSurveyService(b.source, b.cache, log)
	sessions := service.NewSessionService(surveySvc, b.submitter, nil, cfg.Sessions.MaxIdle, log)

	started, err := sessions.Start(ctx, surveyID, model.StartSessionRequest{
		RespondentID:    respondentID,
		ContextMetadata: map[string]interface{}{"channel": "cli"},
	})
	if err != nil {
		return err
	}

	return takeSession(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), sessions, started.SessionID)
}

// takeSession drives one session from line-based input until it is
// submitted or the user quits.
func takeSession(ctx context.Context, in io.Reader, out io.Writer, sessions *service.SessionService, sessionID string) error {
	view, err := sessions.View(sessionID)
	if err != nil {
		return err
	}
	if err := render.WriteView(out, view); err != nil {
		return err
	}
	fmt.Fprint(out, takeHelp)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			sessions.Discard(sessionID)
			if err := scanner.Err(); err != nil {
				return err
			}
			return errInputClosed
		}
		line := strings.TrimSpace(scanner.Text())

		switch strings.ToLower(line) {
		case "":
			continue

		case "?", "h", "help":
			fmt.Fprint(out, takeHelp)
			continue

		case "q", "quit":
			if err := sessions.Discard(sessionID); err != nil {
				return err
			}
			fmt.Fprintln(out, "Survey discarded.")
			return nil

		case "b", "back":
			moved, next, err := sessions.Back(sessionID)
			if err != nil {
				return err
			}
			view = next
			if !moved {
				fmt.Fprintln(out, "Already on the first page.")
				continue
			}

		case "n", "next":
			outcome, next, err := sessions.Next(ctx, sessionID)
			var subErr *engine.SubmissionError
			if err != nil && !errors.As(err, &subErr) {
				return err
			}
			view = next
			if outcome == engine.OutcomeCompleted {
				if err := render.WriteView(out, view); err != nil {
					return err
				}
				sessions.Discard(sessionID)
				return nil
			}

		default:
			next, err := answer(sessions, sessionID, view, line)
			if err != nil {
				fmt.Fprintf(out, "  %v\n", err)
				continue
			}
			view = next
		}

		if err := render.WriteView(out, view); err != nil {
			return err
		}
	}
}

func answer(sessions *service.SessionService, sessionID string, view engine.View, line string) (engine.View, error) {
	n, input := 1, line
	if head, tail, ok := strings.Cut(line, "="); ok {
		k, err := strconv.Atoi(strings.TrimSpace(head))
		if err != nil {
			return view, fmt.Errorf("%q is not a question number", strings.TrimSpace(head))
		}
		n, input = k, tail
	} else if _, ok := render.PageQuestion(view.Page, 2); ok {
		return view, errors.New("this page has several questions; answer with <n>=<answer>")
	}

	q, ok := render.PageQuestion(view.Page, n)
	if !ok {
		return view, fmt.Errorf("there is no question Q%d on this page", n)
	}
	a, err := render.ParseInput(q, input)
	if err != nil {
		return view, err
	}

	sess, err := sessions.Get(sessionID)
	if err != nil {
		return view, err
	}
	return sessions.SetAnswer(sess, q.ID, a)
}
