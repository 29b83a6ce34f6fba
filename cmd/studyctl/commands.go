package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/lifehub/studycore/internal/apperr"
	"github.com/lifehub/studycore/internal/domain"
	"github.com/lifehub/studycore/internal/jobs"
	"github.com/lifehub/studycore/internal/memory"
	"github.com/lifehub/studycore/internal/session"
)

func (a *app) cmdImport(ctx context.Context, args []string) error {
	parent, err := a.parentFlag()
	if err != nil {
		return err
	}
	deck, err := a.importer.EnsureDeck(ctx, a.cfg.User, args[0], parent)
	if err != nil {
		return err
	}
	r, err := a.importer.Import(ctx, deck.ID, args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s: %d files, %d cards parsed, %d new, %d restored, %d suspended, %d unchanged\n",
		deck.Name, r.Files, r.Parsed, r.Inserted, r.Restored, r.Suspended, r.Unchanged)
	if r.Revision != "" {
		fmt.Fprintf(a.out, "revision %s\n", r.Revision)
	}
	return nil
}

func (a *app) cmdDue(ctx context.Context, _ []string) error {
	scope, _, err := a.scope(ctx)
	if err != nil {
		return err
	}
	now := time.Now()
	due, err := a.sched.DueCards(ctx, scope, now)
	if err != nil {
		return err
	}
	if len(due) == 0 {
		fmt.Fprintln(a.out, "nothing due")
		return nil
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTAGE\tDUE\tEASE\tFRONT")
	for _, c := range due {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%s\n", c.ID, c.Stage, dueLabel(c, now), c.EaseFactor, firstLine(c.Front))
	}
	return w.Flush()
}

func (a *app) cmdReview(ctx context.Context, _ []string) error {
	_, deckID, err := a.scope(ctx)
	if err != nil {
		return err
	}
	rs, err := a.sessions.Start(ctx, a.cfg.User, deckID)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "session %s: %d cards (%s)\n", rs.ID, rs.TotalCards, rs.Algorithm)

	quit := false
	for {
		card, err := a.sessions.Next(ctx, rs.ID)
		if err != nil {
			return err
		}
		if card == nil {
			break
		}
		var rating domain.Rating
		var spent time.Duration
		rating, spent, quit, err = a.ask(ctx, rs.ID, *card)
		if err != nil {
			return err
		}
		if quit {
			break
		}
		if _, _, err := a.sessions.RecordResponse(ctx, session.Response{
			SessionID:   rs.ID,
			FlashcardID: card.ID,
			Rating:      rating,
			TimeSpent:   spent,
		}); err != nil {
			return err
		}
	}

	if quit {
		return a.cancelReview(ctx, rs.ID)
	}
	done, err := a.sessions.Finish(ctx, rs.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "reviewed %d of %d, %d correct, score %.0f%%\n",
		done.CardsReviewed, done.TotalCards, done.CardsCorrect, done.Score*100)
	return nil
}

// cancelReview abandons the session and reports how much of the snapshot was left.
func (a *app) cancelReview(ctx context.Context, sessionID string) error {
	rs, err := a.sessions.Cancel(ctx, sessionID)
	if err != nil {
		return err
	}
	cards, err := a.sessions.Cards(ctx, sessionID)
	if err != nil {
		return err
	}
	left := 0
	for _, sc := range cards {
		if sc.State != domain.SessionCardReviewed {
			left++
		}
	}
	fmt.Fprintf(a.out, "cancelled after %d of %d, %d correct, %d left\n",
		rs.CardsReviewed, rs.TotalCards, rs.CardsCorrect, left)
	return nil
}

// ask shows a card and reads a rating. quit is set when the learner stops or input ends.
func (a *app) ask(ctx context.Context, sessionID string, card domain.Flashcard) (domain.Rating, time.Duration, bool, error) {
	shown := time.Now()
	fmt.Fprintf(a.out, "\nQ: %s\n", card.Front)
	if card.Context != "" {
		fmt.Fprintf(a.out, "C: %s\n", card.Context)
	}
	fmt.Fprint(a.out, "[enter] reveal, q quit > ")
	line, ok := a.readLine()
	if !ok || line == "q" {
		return "", 0, true, nil
	}
	fmt.Fprintf(a.out, "A: %s\n", card.Back)

	preview, err := a.sessions.Preview(ctx, sessionID, card)
	if err != nil {
		return "", 0, false, err
	}
	ratings := []domain.Rating{domain.Again, domain.Hard, domain.Good, domain.Easy}
	opts := make([]string, len(ratings))
	for i, r := range ratings {
		opts[i] = fmt.Sprintf("%d) %s %s", r.Grade(), strings.ToLower(string(r)), formatDays(preview[r]))
	}
	for {
		fmt.Fprintf(a.out, "%s > ", strings.Join(opts, "  "))
		line, ok := a.readLine()
		if !ok || line == "q" {
			return "", 0, true, nil
		}
		r, err := domain.ParseRating(line)
		if err == nil {
			return r, time.Since(shown), false, nil
		}
		fmt.Fprintln(a.out, err)
	}
}

func (a *app) cmdHistory(ctx context.Context, args []string) error {
	logs, err := a.sessions.CardHistory(ctx, args[0])
	if err != nil {
		return err
	}
	if len(logs) == 0 {
		fmt.Fprintln(a.out, "no reviews")
		return nil
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "REVIEWED\tRATING\tSTAGE\tINTERVAL\tSECONDS")
	for _, l := range logs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s -> %s\t%d\n", l.ReviewedAt.Format(time.RFC3339), l.Rating, l.PriorStage,
			formatInterval(l.PriorIntervalDays), formatInterval(l.IntervalDays), l.TimeSpentSeconds)
	}
	return w.Flush()
}

func (a *app) cmdParent(ctx context.Context, args []string) error {
	p, err := a.store.CreateParent(ctx, nil, domain.ParentKind(strings.ToUpper(args[0])), a.cfg.User, args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s %s\n", p.Kind(), p.RefID())
	return nil
}

func (a *app) cmdTopic(ctx context.Context, args []string) error {
	parent, err := a.parentFlag()
	if err != nil {
		return err
	}
	t, err := a.tracker.CreateTopic(ctx, a.cfg.User, args[0], parent)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "topic %s %s\n", t.ID, t.Status)
	return nil
}

func (a *app) cmdRate(ctx context.Context, args []string) error {
	rating, err := strconv.Atoi(args[1])
	if err != nil {
		return apperr.Validationf("rating", "rating must be a number from %d to %d, got %q",
			domain.MinRetentionRating, domain.MaxRetentionRating, args[1])
	}
	t, err := a.tracker.RecordRating(ctx, args[0], rating, time.Time{})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s: %s\n", t.Name, t.Status)
	return nil
}

func (a *app) cmdRetention(ctx context.Context, _ []string) error {
	summaries, err := a.tracker.Summarize(ctx, a.cfg.User)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Fprintln(a.out, "no topics")
		return nil
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TOPIC\tSTATUS\tAVG\tSAMPLES\tTREND")
	for _, s := range summaries {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%d\t%+d\n", s.Topic.Name, s.Topic.Status, s.Average, s.Samples, s.Trend)
	}
	return w.Flush()
}

func (a *app) cmdSessions(ctx context.Context, _ []string) error {
	sessions, err := a.sessions.List(ctx, a.cfg.User, "")
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tSTATUS\tREVIEWED\tSCORE")
	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%.2f\n",
			s.ID, s.StartedAt.Format(time.RFC3339), s.Status, s.CardsReviewed, s.TotalCards, s.Score)
	}
	return w.Flush()
}

func (a *app) cmdSession(ctx context.Context, args []string) error {
	rs, err := a.sessions.Get(ctx, args[0])
	if err != nil {
		return err
	}
	cards, err := a.sessions.Cards(ctx, rs.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "session %s %s (%s), reviewed %d of %d, %d correct\n",
		rs.ID, rs.Status, rs.Algorithm, rs.CardsReviewed, rs.TotalCards, rs.CardsCorrect)
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "POS\tCARD\tSTATE")
	for _, sc := range cards {
		fmt.Fprintf(w, "%d\t%s\t%s\n", sc.Position+1, sc.FlashcardID, sc.State)
	}
	return w.Flush()
}

func (a *app) cmdSettings(ctx context.Context, _ []string) error {
	if a.flags.save {
		st := a.cfg.Study.Settings()
		st.UserID = a.cfg.User
		if err := a.store.SaveSettings(ctx, nil, &st); err != nil {
			return err
		}
	}
	st, err := a.sched.Settings(ctx, nil, a.cfg.User)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "algorithm %s\nnew cards per day %d\nmax reviews per session %d\ndesired retention %.2f\n",
		st.Algorithm, st.NewCardsPerDay, st.MaxReviewsPerSession, st.DesiredRetention)
	return nil
}

func (a *app) cmdDaemon(ctx context.Context, _ []string) error {
	j := jobs.New(jobs.Config{
		UserID:          a.cfg.User,
		SummaryInterval: a.cfg.Retention.SummaryInterval,
		SyncInterval:    a.cfg.Sync.Interval,
	}, a.tracker, a.sched, a.importer, a.log)
	if err := j.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	j.Stop()
	return nil
}

// scope resolves --deck into a deck scope, or every deck of the user.
func (a *app) scope(ctx context.Context) (domain.Scope, *string, error) {
	if a.flags.deck == "" {
		return domain.AllScope{UserID: a.cfg.User}, nil, nil
	}
	d, err := a.store.FindDeckByName(ctx, nil, a.cfg.User, a.flags.deck)
	if err != nil {
		return nil, nil, err
	}
	if d == nil {
		return nil, nil, apperr.NotFoundf("deck", "deck %q not found", a.flags.deck)
	}
	return domain.DeckScope{DeckID: d.ID}, &d.ID, nil
}

func (a *app) parentFlag() (domain.Parent, error) {
	p, err := domain.NewParent(domain.ParentKind(strings.ToUpper(a.flags.parentKind)), a.flags.parentID)
	if err != nil {
		return nil, apperr.Validation("parent", err)
	}
	return p, nil
}

func (a *app) readLine() (string, bool) {
	line, err := a.in.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimSpace(line), true
}

func dueLabel(c domain.Flashcard, now time.Time) string {
	if c.NextReviewAt == nil {
		return "new"
	}
	late := now.Sub(*c.NextReviewAt)
	if late < 24*time.Hour {
		return "today"
	}
	return fmt.Sprintf("%dd late", int(late.Hours()/24))
}

func formatDays(s memory.State) string {
	return formatInterval(s.IntervalDays)
}

func formatInterval(days float64) string {
	if days < 10 {
		return strconv.FormatFloat(days, 'f', 1, 64) + "d"
	}
	return strconv.Itoa(int(days+0.5)) + "d"
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}
