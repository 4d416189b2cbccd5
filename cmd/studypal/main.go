// Command studypal drives the study service from a terminal. It keeps a
// session the way the browser page does and writes the rendered results as
// standalone HTML pages.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"html/template"
	"io"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"quizolute/internal/client"
	"quizolute/internal/logging"
	"quizolute/internal/models"
	"quizolute/internal/web"
)

const usage = `Usage: studypal [flags] <command> [command flags] [args]

Commands:
  generate  -mode flashcards|summary|quiz [-out page.html] [-review] files...
  chat      [-out page.html] [files...]   read questions from stdin
  search    [-out page.html] query...
  health

Flags:
`

func main() {
	server := flag.String("server", envOr("QUIZOLUTE_URL", "http://localhost:3000"), "Base URL of the study service")
	logLevel := flag.String("log-level", "warn", "Log level: debug|info|warn|error")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	log, err := logging.New(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	api := client.New(*server, nil)
	session := web.NewSession(api, log)

	cmd, args := flag.Arg(0), flag.Args()[1:]
	switch cmd {
	case "generate":
		err = runGenerate(ctx, session, args)
	case "chat":
		err = runChat(ctx, session, args)
	case "search":
		err = runSearch(ctx, session, args)
	case "health":
		err = runHealth(ctx, api)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Debug("command failed", zap.String("command", cmd), zap.Error(err))
		fmt.Fprintf(os.Stderr, "studypal %s: %v\n", cmd, err)
		os.Exit(1)
	}
}

func runGenerate(ctx context.Context, session *web.Session, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	mode := fs.String("mode", string(models.ModeFlashcards), "flashcards|summary|quiz")
	out := fs.String("out", "", "Write the HTML page here instead of stdout")
	review := fs.Bool("review", false, "Review flashcards or answer quiz questions interactively before writing")
	_ = fs.Parse(args)

	if err := session.SetMode(models.Mode(*mode)); err != nil {
		return err
	}
	if err := addFiles(session, fs.Args()); err != nil {
		return err
	}

	fmt.Fprintln(os.Stderr, web.LoadingMessage(session.Mode()))
	outcome, err := session.Generate(ctx)
	if err != nil {
		return err
	}
	if outcome.Err != nil {
		fmt.Fprintln(os.Stderr, outcome.Err)
	} else if *review {
		in := bufio.NewScanner(os.Stdin)
		switch session.Mode() {
		case models.ModeFlashcards:
			reviewDeck(session.Deck(), in)
		case models.ModeQuiz:
			outcome.HTML = takeQuiz(session.Quiz(), in)
		}
	}

	body := web.RenderFileList(session.Files()) + outcome.HTML
	return writePage(*out, web.ModeLabel(session.Mode()), body)
}

func runChat(ctx context.Context, session *web.Session, args []string) error {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	out := fs.String("out", "", "Write the transcript page here when stdin closes")
	_ = fs.Parse(args)

	// Files ground the conversation the same way a summary generation does.
	if fs.NArg() > 0 {
		if err := addFiles(session, fs.Args()); err != nil {
			return err
		}
		if err := session.SetMode(models.ModeSummary); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, web.LoadingMessage(models.ModeSummary))
		outcome, err := session.Generate(ctx)
		if err != nil {
			return err
		}
		if outcome.Err != nil {
			fmt.Fprintln(os.Stderr, outcome.Err)
		}
	}

	in := bufio.NewScanner(os.Stdin)
	fmt.Fprint(os.Stderr, "> ")
	for in.Scan() {
		if ctx.Err() != nil {
			break
		}
		fmt.Fprintln(os.Stderr, "Thinking...")
		outcome, ok := session.Chat(ctx, in.Text())
		if ok {
			fmt.Println(outcome.Reply.Content)
		}
		fmt.Fprint(os.Stderr, "> ")
	}
	fmt.Fprintln(os.Stderr)

	if *out == "" {
		return in.Err()
	}
	return writePage(*out, "Chat", session.Transcript())
}

func runSearch(ctx context.Context, session *web.Session, args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	out := fs.String("out", "", "Write the HTML page here instead of stdout")
	_ = fs.Parse(args)

	query := strings.Join(fs.Args(), " ")
	if strings.TrimSpace(query) == "" {
		return errors.New("no search query provided")
	}

	html, err := session.Search(ctx, query)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	return writePage(*out, "Search: "+query, html)
}

func runHealth(ctx context.Context, api *client.Client) error {
	health, err := api.Health(ctx)
	if err != nil {
		return err
	}
	token := "not configured"
	if health.TokenConfigured {
		token = "configured"
	}
	fmt.Printf("status:  %s\ntoken:   %s\ntext:    %s\nvision:  %s\nchecked: %s\n",
		health.Status, token, health.Models.Text, health.Models.Vision, health.Timestamp)
	return nil
}

// reviewDeck walks the due cards, asking for a rating after each answer.
func reviewDeck(deck *web.ReviewDeck, in *bufio.Scanner) {
	if deck == nil {
		return
	}
	for {
		now := time.Now()
		card, err := deck.Next(now)
		if err != nil {
			stats := deck.Stats(now)
			fmt.Fprintf(os.Stderr, "No cards due. %d total, %d learning, %d in review.\n",
				stats.Total, stats.Learning, stats.Review)
			return
		}

		fmt.Fprintf(os.Stderr, "\nQuestion %d: %s\n(press Enter to flip)", card.Index+1, card.Card.Question)
		if !in.Scan() {
			return
		}
		fmt.Fprintf(os.Stderr, "Answer: %s\nRate again/hard/good/easy: ", card.Card.Answer)
		if !in.Scan() {
			return
		}
		rating, err := web.ParseRating(in.Text())
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		if _, err := deck.Rate(card.Index, rating, time.Now()); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}

// takeQuiz asks each question once and returns the quiz rendered with the
// picks applied.
func takeQuiz(quiz *web.Quiz, in *bufio.Scanner) template.HTML {
	if quiz == nil {
		return web.RenderQuiz(nil)
	}
	for i, q := range quiz.Views() {
		fmt.Fprintf(os.Stderr, "\nQuestion %d: %s\n", i+1, q.Question)
		options := make([]string, len(q.Options))
		for j, opt := range q.Options {
			options[j] = opt.Text
			fmt.Fprintf(os.Stderr, "  %s\n", opt.Text)
		}
		fmt.Fprint(os.Stderr, "Your answer (letter): ")
		if !in.Scan() {
			break
		}
		pick := web.CorrectOptionIndex(models.QuizQuestion{Options: options, Correct: in.Text()})
		if pick < 0 {
			fmt.Fprintln(os.Stderr, "skipped")
			continue
		}
		correct, _, err := quiz.Answer(i, pick)
		switch {
		case err != nil:
			fmt.Fprintln(os.Stderr, err)
		case correct:
			fmt.Fprintln(os.Stderr, "Correct!")
		default:
			fmt.Fprintf(os.Stderr, "Incorrect, the answer is %s.\n", q.Correct)
		}
		if q.Explanation != "" {
			fmt.Fprintln(os.Stderr, q.Explanation)
		}
	}
	correct, answered := quiz.Score()
	fmt.Fprintf(os.Stderr, "\nScore: %d/%d\n", correct, answered)
	return web.RenderQuiz(quiz)
}

func addFiles(session *web.Session, paths []string) error {
	if len(paths) == 0 {
		return errors.New("no files given")
	}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		session.AddFile(filepath.Base(path), mime.TypeByExtension(filepath.Ext(path)), data)
	}
	return nil
}

func writePage(path, title string, body template.HTML) error {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	_, err := io.WriteString(w, string(web.RenderPage(title, body)))
	return err
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
