package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/linuxstory/internal/app"
	"github.com/abhisek/linuxstory/internal/engine"
	"github.com/abhisek/linuxstory/internal/locale"
	"github.com/abhisek/linuxstory/internal/progress"
	"github.com/abhisek/linuxstory/internal/session"
	"github.com/abhisek/linuxstory/internal/shell"
	"github.com/abhisek/linuxstory/internal/store"
	"github.com/abhisek/linuxstory/internal/story"
	"github.com/abhisek/linuxstory/internal/watch"
	"github.com/abhisek/linuxstory/internal/world"
)

// snapshotsKept is how many progress snapshots the database retains.
const snapshotsKept = 10

// progressDeps is everything needed to read or change progress without
// touching the sandbox.
type progressDeps struct {
	graph   *story.Graph
	catalog *locale.Catalog
	store   *store.Store
	events  *store.EventRepo
	tracker *progress.Tracker
	engine  *engine.Engine
}

func (d *progressDeps) Close() error {
	return d.store.Close()
}

// openProgress loads the story, opens the database and builds the engine
// positioned at the persisted cursor.
func openProgress(cmd *cobra.Command) (*progressDeps, error) {
	ctx := cmd.Context()

	g, err := loadStory(cmd)
	if err != nil {
		return nil, err
	}
	cat, err := loadCatalog(cmd, g)
	if err != nil {
		return nil, err
	}

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	var backing progress.Store = st.ProgressRepo(snapshotsKept)
	if p, _ := cmd.Flags().GetString("state"); p != "" {
		backing = progress.NewFileStore(p)
	}

	events := st.EventRepo(uuid.NewString())
	tracker := progress.NewTracker(backing, progress.DefaultConfig(), logger)
	eng, err := engine.New(ctx, g, tracker, engine.Options{
		Logger:   logger,
		Recorder: session.NewEventLog(events),
	})
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("load progress: %w", err)
	}

	logger.Info("progress loaded",
		zap.String("db", dbPath),
		zap.String("session", events.SessionID()),
		zap.Stringer("cursor", eng.View().Cursor))

	return &progressDeps{
		graph:   g,
		catalog: cat,
		store:   st,
		events:  events,
		tracker: tracker,
		engine:  eng,
	}, nil
}

func loadStory(cmd *cobra.Command) (*story.Graph, error) {
	p, _ := cmd.Flags().GetString("story")
	if p == "" {
		return story.Default()
	}
	g, err := story.LoadFile(p)
	if err != nil {
		return nil, fmt.Errorf("load story %s: %w", p, err)
	}
	return g, nil
}

func loadCatalog(cmd *cobra.Command, g *story.Graph) (*locale.Catalog, error) {
	cat := locale.New(g.Strings())
	if p, _ := cmd.Flags().GetString("strings"); p != "" {
		overrides, err := locale.LoadFile(p)
		if err != nil {
			return nil, err
		}
		cat.Merge(overrides)
	}
	return cat, nil
}

func sandboxRoot(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("sandbox"); p != "" {
		return p, nil
	}
	return world.DefaultRoot()
}

// playDeps adds the sandbox, its watcher and the shell to progressDeps.
type playDeps struct {
	*progressDeps
	sandbox *world.Sandbox
	watcher *watch.Watcher
	session *session.Session
}

func (d *playDeps) Close() error {
	return errors.Join(d.watcher.Close(), d.progressDeps.Close())
}

func openPlay(cmd *cobra.Command) (*playDeps, error) {
	pd, err := openProgress(cmd)
	if err != nil {
		return nil, err
	}

	root, err := sandboxRoot(cmd)
	if err != nil {
		pd.Close()
		return nil, err
	}
	sb, err := world.New(root, logger)
	if err != nil {
		pd.Close()
		return nil, fmt.Errorf("prepare sandbox: %w", err)
	}
	w, err := watch.New(sb.Root(), watch.DefaultConfig(), logger)
	if err != nil {
		pd.Close()
		return nil, fmt.Errorf("watch sandbox: %w", err)
	}
	w.Start(cmd.Context())

	sess := session.New(session.Deps{
		Engine:  pd.engine,
		Shell:   shell.New(sb, w, shell.DefaultConfig(), logger),
		Sandbox: sb,
		Changes: w,
		Catalog: pd.catalog,
		Logger:  logger,
	})

	return &playDeps{progressDeps: pd, sandbox: sb, watcher: w, session: sess}, nil
}

// runApp launches the TUI, first jumping to target when it is set.
func runApp(cmd *cobra.Command, target *story.StepID) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	d, err := openPlay(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	if target != nil {
		if _, err := d.engine.JumpTo(ctx, target.Challenge, target.Index); err != nil {
			return err
		}
	}

	debug, _ := cmd.Flags().GetBool("debug")
	return app.Run(ctx, d.session, app.Options{
		Events: d.events,
		Debug:  debug,
		Intro:  target == nil,
	})
}
