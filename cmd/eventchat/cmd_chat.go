package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/elee1766/eventchat/src/app"
	"github.com/elee1766/eventchat/src/chat"
	"github.com/elee1766/eventchat/src/conversation"
	"github.com/elee1766/eventchat/src/render"
	"github.com/elee1766/eventchat/src/syncview"
	"github.com/elee1766/eventchat/src/usage"
)

const chatHelp = `Commands:
  /like N          like or unlike recommendation N
  /likes           liked events among the current recommendations
  /show N          full details of recommendation N
  /suggest N       send suggested question N
  /login TOKEN     log in
  /register TOKEN  link this session to an account
  /logout          return to the anonymous session
  /quit            exit`

// ChatCmd starts the interactive conversation
type ChatCmd struct{}

// Run executes the chat command
func (c *ChatCmd) Run(ctx context.Context, cli *CLI) error {
	conf, err := cli.loadConfig()
	if err != nil {
		return err
	}
	logger, logFile := createChatLogger(conf.Observability.LogLevel, conf.Observability.LogFormat, conf.Observability.LogFile)
	defer logFile.Close()

	var a *app.App
	console := render.NewConsoleProcessor(render.ConsoleConfig{
		Writer:     os.Stdout,
		Width:      conf.Chat.Width,
		ShowStatus: conf.Chat.ShowStatus,
		Logger:     logger,
		Liked: func(item conversation.RecommendationItem) bool {
			return a != nil && a.IsLiked(ctx, item)
		},
	})
	sink := chat.NewSyncEventSink(logger, console)
	defer sink.Close()

	a, err = cli.openApp(ctx, conf, sink, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	r := &repl{app: a, console: console, out: os.Stdout}
	return r.run(ctx, os.Stdin)
}

type repl struct {
	app     *app.App
	console *render.ConsoleProcessor
	out     io.Writer
}

func (r *repl) run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(r.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(r.out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		quit, err := r.handle(ctx, strings.TrimSpace(scanner.Text()))
		if err != nil {
			fmt.Fprintf(r.out, "%s\n", describeError(err))
		}
		if quit {
			return nil
		}
	}
}

// handle runs one input line and reports whether the session should end
func (r *repl) handle(ctx context.Context, line string) (bool, error) {
	if line == "" {
		return false, nil
	}
	if !strings.HasPrefix(line, "/") {
		err := r.app.Chat.Submit(ctx, line)
		if errors.Is(err, usage.ErrBlocked) {
			// the banner and prompt were already printed
			return false, nil
		}
		return false, err
	}

	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/quit", "/exit":
		return true, nil
	case "/help":
		fmt.Fprintln(r.out, chatHelp)
		return false, nil
	case "/like":
		return false, r.like(ctx, arg)
	case "/likes":
		return false, r.likes(ctx)
	case "/show":
		return false, r.show(arg)
	case "/suggest":
		n, err := index(arg, len(syncview.SuggestedQuestions()))
		if err != nil {
			return false, err
		}
		return false, r.app.Chat.SubmitSuggestion(ctx, syncview.SuggestedQuestions()[n])
	case "/login":
		if arg == "" {
			return false, errors.New("usage: /login TOKEN")
		}
		r.console.Reset()
		_, err := r.app.Chat.Login(ctx, arg)
		return false, err
	case "/register":
		if arg == "" {
			return false, errors.New("usage: /register TOKEN")
		}
		_, err := r.app.Chat.Register(ctx, arg)
		return false, err
	case "/logout":
		r.console.Reset()
		_, err := r.app.Chat.Logout(ctx)
		return false, err
	default:
		return false, fmt.Errorf("unknown command %s, try /help", cmd)
	}
}

func (r *repl) like(ctx context.Context, arg string) error {
	recs := r.app.Chat.View().Recommendations
	n, err := index(arg, len(recs))
	if err != nil {
		return err
	}
	item := recs[n]
	liked, err := r.app.Favorites.Toggle(ctx, r.app.UserID(), item)
	if err != nil {
		return err
	}
	verb := "Unliked"
	if liked {
		verb = "Liked"
	}
	fmt.Fprintf(r.out, "%s %s\n", verb, item.Data.DisplayName())
	return nil
}

func (r *repl) likes(ctx context.Context) error {
	liked, err := r.app.Favorites.Filter(ctx, r.app.UserID(), r.app.Chat.View().Recommendations)
	if err != nil {
		return err
	}
	fmt.Fprintln(r.out, r.console.Likes(liked))
	return nil
}

func (r *repl) show(arg string) error {
	view := r.app.Chat.View()
	if !view.HasEvents() {
		return errors.New("no recommendations yet")
	}
	n, err := index(arg, len(view.Recommendations))
	if err != nil {
		return err
	}
	fmt.Fprintln(r.out, r.console.Details(n+1, view.Recommendations[n]))
	return nil
}

// index parses a 1-based choice among n items
func index(arg string, n int) (int, error) {
	if n == 0 {
		return 0, errors.New("nothing to choose from")
	}
	i, err := strconv.Atoi(arg)
	if err != nil || i < 1 || i > n {
		return 0, fmt.Errorf("choose a number between 1 and %d", n)
	}
	return i - 1, nil
}
