package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/lifehub/studycore/internal/apperr"
	"github.com/lifehub/studycore/internal/config"
	"github.com/lifehub/studycore/internal/importer"
	"github.com/lifehub/studycore/internal/logger"
	"github.com/lifehub/studycore/internal/retention"
	"github.com/lifehub/studycore/internal/scheduler"
	"github.com/lifehub/studycore/internal/session"
	"github.com/lifehub/studycore/internal/storage"
)

const usage = `usage: studyctl [flags] COMMAND [ARGS]

commands:
  import DECK SOURCE    import cards from a directory or git URL into DECK
  due                   list due cards (--deck limits to one deck)
  review                run an interactive review session (--deck limits to one deck);
                        q cancels the session
  history CARD_ID       list every recorded response for a card
  parent KIND NAME      create a SUBJECT, BOOK, COURSE_ONLINE or PROJECT
  topic NAME            create a topic (--parent-kind, --parent-id)
  rate TOPIC_ID RATING  record a 1-5 retention rating for a topic
  retention             summarize topic retention
  sessions              list review sessions
  session SESSION_ID    show a session and the state of each card in it
  settings              show study settings (--save stores the configured ones)
  daemon                run the retention digest and deck sync jobs

flags:
`

type app struct {
	cfg      *config.Config
	log      *logger.Logger
	store    *storage.Store
	sched    *scheduler.Scheduler
	sessions *session.Manager
	tracker  *retention.Tracker
	importer *importer.Importer
	in       *bufio.Reader
	out      io.Writer
	flags    cliFlags
}

type cliFlags struct {
	deck       string
	parentKind string
	parentID   string
	save       bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode distinguishes rejected input, missing records and wrong session states
// from other failures.
func exitCode(err error) int {
	switch {
	case apperr.IsValidation(err):
		return 2
	case apperr.IsNotFound(err):
		return 3
	case apperr.IsInvalidState(err):
		return 4
	}
	return 1
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := config.NewFlagSet("studyctl")
	var flags cliFlags
	fs.StringVar(&flags.deck, "deck", "", "deck name")
	fs.StringVar(&flags.parentKind, "parent-kind", "", "parent kind for new topics and decks")
	fs.StringVar(&flags.parentID, "parent-id", "", "parent id for new topics and decks")
	fs.BoolVar(&flags.save, "save", false, "store the configured study settings")
	fs.Usage = func() {
		fmt.Fprint(stdout, usage)
		fs.SetOutput(stdout)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return fmt.Errorf("no command given")
	}

	cfg, err := config.Load(fs)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer log.Sync()

	a, err := newApp(ctx, cfg, log, stdin, stdout)
	if err != nil {
		return err
	}
	defer a.store.Close()
	a.flags = flags

	return a.dispatch(ctx, fs.Arg(0), fs.Args()[1:])
}

func newApp(ctx context.Context, cfg *config.Config, log *logger.Logger, stdin io.Reader, stdout io.Writer) (*app, error) {
	store, err := storage.Open(ctx, cfg.Database.Driver, cfg.Database.DSN, log)
	if err != nil {
		return nil, err
	}
	tracker, err := retention.NewTracker(store, cfg.Retention.Policy, log)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	sched := scheduler.New(store, cfg.Study.Settings())
	return &app{
		cfg:      cfg,
		log:      log,
		store:    store,
		sched:    sched,
		sessions: session.NewManager(store, sched, log),
		tracker:  tracker,
		importer: importer.New(store, cfg.Sync.ReposDir, log),
		in:       bufio.NewReader(stdin),
		out:      stdout,
	}, nil
}

func (a *app) dispatch(ctx context.Context, cmd string, args []string) error {
	handlers := map[string]struct {
		nargs int
		run   func(context.Context, []string) error
	}{
		"import":    {2, a.cmdImport},
		"due":       {0, a.cmdDue},
		"review":    {0, a.cmdReview},
		"history":   {1, a.cmdHistory},
		"parent":    {2, a.cmdParent},
		"topic":     {1, a.cmdTopic},
		"rate":      {2, a.cmdRate},
		"retention": {0, a.cmdRetention},
		"sessions":  {0, a.cmdSessions},
		"session":   {1, a.cmdSession},
		"settings":  {0, a.cmdSettings},
		"daemon":    {0, a.cmdDaemon},
	}
	h, ok := handlers[cmd]
	if !ok {
		return fmt.Errorf("unknown command %q", cmd)
	}
	if len(args) != h.nargs {
		return fmt.Errorf("%s expects %d argument(s), got %d", cmd, h.nargs, len(args))
	}
	return h.run(ctx, args)
}
