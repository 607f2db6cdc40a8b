package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/civicsprep/civics-practice/internal/api"
	"github.com/civicsprep/civics-practice/internal/config"
	"github.com/civicsprep/civics-practice/internal/domain/entities"
	"github.com/civicsprep/civics-practice/internal/logger"
	"github.com/civicsprep/civics-practice/internal/session"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zl, err := logger.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zl.Sync() }()

	client := api.New(cfg.Client.BaseURL, nil, zl)

	if err := run(context.Background(), client, zl, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, client *api.Client, zl *zap.Logger, in io.Reader, out io.Writer) error {
	configs, err := client.ListTestConfigs(ctx)
	if err != nil {
		return fmt.Errorf("loading test configs: %w", err)
	}

	reader := bufio.NewReader(in)

	testConfig, err := chooseVariant(reader, out, configs)
	if err != nil {
		return err
	}

	ctrl := session.New(client, testConfig, zl)
	ctrl.Start(ctx)

	for {
		if msg := ctrl.Err(); msg != "" {
			return fmt.Errorf("could not start the test: %s", msg)
		}

		if err := runSession(ctx, ctrl, reader, out); err != nil {
			return err
		}

		printResults(out, ctrl)

		fmt.Fprint(out, "\nTake another practice test? [y/N] ")
		line, err := reader.ReadString('\n')
		if err != nil || !strings.EqualFold(strings.TrimSpace(line), "y") {
			return nil
		}
		ctrl.Restart(ctx)
	}
}

func chooseVariant(reader *bufio.Reader, out io.Writer, configs []entities.TestConfig) (entities.TestConfig, error) {
	fmt.Fprintln(out, "U.S. Naturalization Civics Practice Test")
	fmt.Fprintln(out)
	for i, tc := range configs {
		fmt.Fprintf(out, "  %d) %s test: %d questions asked of %d, %d correct to pass\n",
			i+1, tc.TestType, tc.QuestionsAsked, tc.TotalQuestions, tc.PassThreshold)
		if tc.FilingDateInfo != "" {
			fmt.Fprintf(out, "     %s\n", tc.FilingDateInfo)
		}
	}

	fmt.Fprintf(out, "\nChoose a test [1-%d]: ", len(configs))
	line, err := reader.ReadString('\n')
	if err != nil {
		return entities.TestConfig{}, fmt.Errorf("reading selection: %w", err)
	}

	choice, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || choice < 1 || choice > len(configs) {
		return entities.TestConfig{}, fmt.Errorf("invalid selection %q", strings.TrimSpace(line))
	}

	return configs[choice-1], nil
}

func runSession(ctx context.Context, ctrl *session.Controller, reader *bufio.Reader, out io.Writer) error {
	total := ctrl.Config().QuestionsAsked

	for ctrl.Phase() == session.PhaseRunning {
		idx, question, ok := ctrl.Current()
		if !ok {
			break
		}

		fmt.Fprintf(out, "\nQuestion %d of %d:\n%s\n> ", idx+1, total, question.Text)
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("reading answer: %w", err)
		}

		ctrl.SetDraft(strings.TrimSpace(line))
		ctrl.Submit(ctx)

		verdict, graded := ctrl.LastVerdict()
		if !graded {
			continue
		}

		switch verdict {
		case entities.VerdictCorrect:
			fmt.Fprintln(out, "Correct!")
		case entities.VerdictIncorrect:
			fmt.Fprintln(out, "Incorrect.")
		default:
			fmt.Fprintln(out, "Could not grade this answer; it counts as incorrect.")
		}
		printAcceptedAnswers(out, ctrl)

		ctrl.NextQuestion()
	}

	return nil
}

func printAcceptedAnswers(out io.Writer, ctrl *session.Controller) {
	answers := ctrl.Answers()
	if len(answers) == 0 {
		return
	}
	last := answers[len(answers)-1]
	if len(last.Question.Answers) == 0 {
		return
	}

	fmt.Fprintln(out, "Accepted answers:")
	for _, a := range last.Question.Answers {
		fmt.Fprintf(out, "  - %s\n", a)
	}
}

func printResults(out io.Writer, ctrl *session.Controller) {
	cfg := ctrl.Config()
	correct := ctrl.CorrectCount()

	fmt.Fprintf(out, "\nYou answered %d of %d questions correctly.\n", correct, cfg.QuestionsAsked)
	if ctrl.Passed() {
		fmt.Fprintf(out, "You passed! (%d or more correct answers required)\n", cfg.PassThreshold)
	} else {
		fmt.Fprintf(out, "You did not pass this time. (%d or more correct answers required)\n", cfg.PassThreshold)
	}
}
